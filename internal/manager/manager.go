package manager

import (
	"image"
	"io"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"grove/internal/classifier"
	"grove/internal/provision"
	"grove/pkg/types"
)

// Manager provisions, loads and serves one classification model.
type Manager struct {
	mu        sync.RWMutex
	state     State
	started   bool
	err       string
	clf       *classifier.Classifier
	md        classifier.Metadata
	readyAt   time.Time
	artifacts []types.Artifact

	model  provision.Artifact
	labels provision.Artifact

	prov         Provisioner
	opener       classifier.Opener
	customOpener bool
	embedded     classifier.MetadataReader
	runtime      classifier.Options

	log       zerolog.Logger
	publisher EventPublisher

	tmpDir    string
	maxUpload int64
	maxPixels int
	decode    func(io.ReadSeeker, int) (image.Image, error)

	// Queueing primitives
	queueCh       chan struct{} // buffered: admitted requests (waiting + running)
	genCh         chan struct{} // buffered: one slot per runtime session
	maxQueueDepth int
	maxWait       time.Duration
	drainTimeout  time.Duration

	predictions atomic.Uint64
	startTime   time.Time
}

// Ready reports whether Classify calls are being served.
func (m *Manager) Ready() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state == StateReady && m.clf != nil
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Labels returns the classes of the loaded model, or nil before it is ready.
func (m *Manager) Labels() []types.Label {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.clf == nil {
		return nil
	}
	return m.md.Labels()
}

// MaxUploadBytes is the largest accepted upload.
func (m *Manager) MaxUploadBytes() int64 { return m.maxUpload }

// ModelName is the file name of the model artifact.
func (m *Manager) ModelName() string { return filepath.Base(m.model.Path) }
