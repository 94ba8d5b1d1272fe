package manager

import (
	"os"

	"grove/internal/classifier"
	"grove/internal/common/fsutil"
	"grove/internal/provision"
)

// SanityReport describes runtime checks for external dependencies.
type SanityReport struct {
	RuntimeAvailable bool   `json:"runtime_available"`
	ModelPath        string `json:"model_path"`
	ModelPresent     bool   `json:"model_present"`
	LabelsPath       string `json:"labels_path"`
	LabelsPresent    bool   `json:"labels_present"`
	Provisioned      bool   `json:"provisioned"`
	TmpDir           string `json:"tmp_dir"`
	TmpDirWritable   bool   `json:"tmp_dir_writable"`
	Error            string `json:"error,omitempty"`
}

// OK reports whether the process could start serving with this setup.
func (r SanityReport) OK() bool {
	return r.RuntimeAvailable && r.TmpDirWritable && r.Error == ""
}

// SanityCheck reports whether the runtime is built in, which artifacts are
// already on disk, and whether the upload directory is writable. It does not
// mutate state and is safe to call at any time.
func (m *Manager) SanityCheck() SanityReport {
	r := SanityReport{
		RuntimeAvailable: classifier.RuntimeAvailable || m.customOpener,
		ModelPath:        m.model.Path,
		ModelPresent:     fsutil.IsRegularFile(m.model.Path),
		LabelsPath:       m.labels.Path,
		LabelsPresent:    fsutil.IsRegularFile(m.labels.Path),
		Provisioned:      provision.Present(m.RequiredArtifacts()...),
		TmpDir:           m.tmpDir,
	}
	if !r.RuntimeAvailable {
		r.Error = classifier.ErrRuntimeUnavailable.Error()
	}
	if err := os.MkdirAll(m.tmpDir, 0o755); err != nil {
		if r.Error == "" {
			r.Error = err.Error()
		}
		return r
	}
	f, err := os.CreateTemp(m.tmpDir, "sanity-*")
	if err != nil {
		if r.Error == "" {
			r.Error = err.Error()
		}
		return r
	}
	name := f.Name()
	_ = f.Close()
	_ = os.Remove(name)
	r.TmpDirWritable = true
	return r
}
