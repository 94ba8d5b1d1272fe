package config

import (
	"os"
	"path/filepath"
	"time"
)

const (
	defaultAddr            = ":8080"
	defaultModelPath       = "models/model.onnx"
	defaultMaxUploadBytes  = 10 << 20
	defaultMaxPixels       = 40_000_000
	defaultMaxQueueDepth   = 32
	defaultMaxWait         = 30 * time.Second
	defaultSessions        = 1
	defaultDrainTimeout    = 5 * time.Second
	defaultDownloadTimeout = 10 * time.Minute
)

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Addr:                   defaultAddr,
		ModelPath:              defaultModelPath,
		TmpDir:                 filepath.Join(os.TempDir(), "grove"),
		MaxUploadBytes:         defaultMaxUploadBytes,
		MaxPixels:              defaultMaxPixels,
		MaxQueueDepth:          defaultMaxQueueDepth,
		MaxWaitMS:              int(defaultMaxWait / time.Millisecond),
		Sessions:               defaultSessions,
		DrainTimeoutMS:         int(defaultDrainTimeout / time.Millisecond),
		DownloadTimeoutSeconds: int(defaultDownloadTimeout / time.Second),
		LogLevel:               "info",
		LogFormat:              "json",
	}
}

// Merge overlays the non-zero fields of o onto c and returns the result.
func (c Config) Merge(o Config) Config {
	if o.Addr != "" {
		c.Addr = o.Addr
	}
	if o.ModelURL != "" {
		c.ModelURL = o.ModelURL
	}
	if o.ModelPath != "" {
		c.ModelPath = o.ModelPath
	}
	if o.ModelSHA256 != "" {
		c.ModelSHA256 = o.ModelSHA256
	}
	if o.LabelsURL != "" {
		c.LabelsURL = o.LabelsURL
	}
	if o.LabelsPath != "" {
		c.LabelsPath = o.LabelsPath
	}
	if len(o.AllowedOrigins) > 0 {
		c.AllowedOrigins = append([]string(nil), o.AllowedOrigins...)
	}
	if o.TmpDir != "" {
		c.TmpDir = o.TmpDir
	}
	if o.MaxUploadBytes != 0 {
		c.MaxUploadBytes = o.MaxUploadBytes
	}
	if o.MaxPixels != 0 {
		c.MaxPixels = o.MaxPixels
	}
	if o.MaxQueueDepth != 0 {
		c.MaxQueueDepth = o.MaxQueueDepth
	}
	if o.MaxWaitMS != 0 {
		c.MaxWaitMS = o.MaxWaitMS
	}
	if o.Sessions != 0 {
		c.Sessions = o.Sessions
	}
	if o.DrainTimeoutMS != 0 {
		c.DrainTimeoutMS = o.DrainTimeoutMS
	}
	if o.DownloadTimeoutSeconds != 0 {
		c.DownloadTimeoutSeconds = o.DownloadTimeoutSeconds
	}
	if o.PredictTimeoutSeconds != 0 {
		c.PredictTimeoutSeconds = o.PredictTimeoutSeconds
	}
	if o.ONNXLibrary != "" {
		c.ONNXLibrary = o.ONNXLibrary
	}
	if o.LogLevel != "" {
		c.LogLevel = o.LogLevel
	}
	if o.LogFormat != "" {
		c.LogFormat = o.LogFormat
	}
	return c
}

// ResolvedLabelsPath returns LabelsPath, or the model path with its extension
// replaced by ".labels.json" when unset.
func (c Config) ResolvedLabelsPath() string {
	if c.LabelsPath != "" {
		return c.LabelsPath
	}
	ext := filepath.Ext(c.ModelPath)
	return c.ModelPath[:len(c.ModelPath)-len(ext)] + ".labels.json"
}

// MaxWait returns MaxWaitMS as a duration.
func (c Config) MaxWait() time.Duration { return time.Duration(c.MaxWaitMS) * time.Millisecond }

// DrainTimeout returns DrainTimeoutMS as a duration.
func (c Config) DrainTimeout() time.Duration {
	return time.Duration(c.DrainTimeoutMS) * time.Millisecond
}

// DownloadTimeout returns DownloadTimeoutSeconds as a duration.
func (c Config) DownloadTimeout() time.Duration {
	return time.Duration(c.DownloadTimeoutSeconds) * time.Second
}

// PredictTimeout returns PredictTimeoutSeconds as a duration (0 disables).
func (c Config) PredictTimeout() time.Duration {
	return time.Duration(c.PredictTimeoutSeconds) * time.Second
}
