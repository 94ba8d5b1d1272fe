// Package manager owns the classification model for the lifetime of the
// process. It is structured into small files by concern:
//
//   - manager.go: core Manager type and simple getters.
//   - config.go: ManagerConfig and package defaults; NewWithConfig applies defaults.
//   - types.go: lifecycle State and the Snapshot projection.
//   - errors.go: error types and predicates (IsNotReady, IsTooBusy, ...).
//   - start.go: provisioning and loading of the model artifacts.
//   - admission.go: bounded queue and in-flight slots for classify calls.
//   - classify.go: Classify, from uploaded bytes to a ranked response.
//   - status_report.go: Status/Snapshot reporting helpers.
//   - close.go: draining shutdown.
//   - sanity.go: runtime and artifact checks for the `check` command.
//
// The model is loaded once by Start and is read-only afterwards. Until Start
// finishes successfully every Classify call fails with a not-ready error.
package manager
