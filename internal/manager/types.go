package manager

import "time"

// State represents the lifecycle state of the manager.
type State string

const (
	StateDownloading State = "downloading"
	StateLoading     State = "loading"
	StateReady       State = "ready"
	StateError       State = "error"
	StateDraining    State = "draining"
	StateClosed      State = "closed"
)

// ModelInfo is a minimal view of the loaded model.
type ModelInfo struct {
	Name       string
	Path       string
	NumClasses int
	ReadyAt    time.Time
}

// Snapshot is a read-only projection of the manager state.
type Snapshot struct {
	State        State
	CurrentModel *ModelInfo
	Err          string
}
