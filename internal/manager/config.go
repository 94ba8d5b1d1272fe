package manager

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"grove/internal/classifier"
	"grove/internal/imageproc"
	"grove/internal/provision"
)

// Defaults applied when corresponding ManagerConfig fields are unset.
const (
	defaultMaxQueueDepth  = 32
	defaultMaxWait        = 30 * time.Second
	defaultDrainTimeout   = 5 * time.Second
	defaultMaxUploadBytes = 10 << 20
	defaultSessions       = 1
)

// Provisioner makes artifacts available locally. *provision.Provisioner
// satisfies it.
type Provisioner interface {
	EnsureAll(ctx context.Context, artifacts ...provision.Artifact) ([]provision.Result, error)
}

// ManagerConfig encapsulates all tunables for Manager construction.
type ManagerConfig struct {
	// Model and Labels are provisioned by Start before loading.
	Model  provision.Artifact
	Labels provision.Artifact

	Provisioner Provisioner       // nil uses provision.New with Logger
	Opener      classifier.Opener // nil uses classifier.Open
	// EmbeddedMetadata reads labels from the model when no labels file is
	// configured. nil uses classifier.ReadEmbeddedMetadata.
	EmbeddedMetadata classifier.MetadataReader
	Runtime          classifier.Options

	Logger    zerolog.Logger
	Publisher EventPublisher

	// TmpDir receives request-private upload files.
	TmpDir         string
	MaxUploadBytes int64
	// MaxPixels caps width*height of uploads; <= 0 uses imageproc.DefaultMaxPixels.
	MaxPixels int

	MaxQueueDepth int
	MaxWait       time.Duration
	DrainTimeout  time.Duration
}

// NewWithConfig constructs a Manager from ManagerConfig.
func NewWithConfig(cfg ManagerConfig) *Manager {
	m := &Manager{
		state:     StateDownloading,
		model:     cfg.Model,
		labels:    cfg.Labels,
		prov:      cfg.Provisioner,
		opener:    cfg.Opener,
		embedded:  cfg.EmbeddedMetadata,
		runtime:   cfg.Runtime,
		log:       cfg.Logger,
		publisher: cfg.Publisher,
		tmpDir:    cfg.TmpDir,
		maxUpload: cfg.MaxUploadBytes,
		maxPixels: cfg.MaxPixels,
		decode:    imageproc.Decode,
		startTime: time.Now(),
	}
	if m.model.Name == "" {
		m.model.Name = "model"
	}
	if m.labels.Name == "" {
		m.labels.Name = "labels"
	}
	if m.prov == nil {
		m.prov = provision.New(provision.Config{Logger: cfg.Logger})
	}
	if m.opener == nil {
		m.opener = classifier.Open
	} else {
		m.customOpener = true
	}
	if m.embedded == nil {
		m.embedded = classifier.ReadEmbeddedMetadata
	}
	if m.publisher == nil {
		m.publisher = noopPublisher{}
	}
	if m.tmpDir == "" {
		m.tmpDir = filepath.Join(os.TempDir(), "grove")
	}
	if m.maxUpload <= 0 {
		m.maxUpload = defaultMaxUploadBytes
	}
	if m.runtime.Sessions <= 0 {
		m.runtime.Sessions = defaultSessions
	}
	// Apply defaults if unset
	if cfg.MaxQueueDepth <= 0 {
		m.maxQueueDepth = defaultMaxQueueDepth
	} else {
		m.maxQueueDepth = cfg.MaxQueueDepth
	}
	if m.maxQueueDepth < m.runtime.Sessions {
		m.maxQueueDepth = m.runtime.Sessions
	}
	if cfg.MaxWait <= 0 {
		m.maxWait = defaultMaxWait
	} else {
		m.maxWait = cfg.MaxWait
	}
	if cfg.DrainTimeout <= 0 {
		m.drainTimeout = defaultDrainTimeout
	} else {
		m.drainTimeout = cfg.DrainTimeout
	}
	m.queueCh = make(chan struct{}, m.maxQueueDepth)
	m.genCh = make(chan struct{}, m.runtime.Sessions)
	return m
}
