package config

import (
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"

	"grove/internal/common/fsutil"
)

// Validate checks the configuration for values the service cannot run with.
func (c Config) Validate() error {
	if strings.TrimSpace(c.ModelPath) == "" {
		return fmt.Errorf("model_path is required")
	}
	for name, u := range map[string]string{"model_url": c.ModelURL, "labels_url": c.LabelsURL} {
		if u == "" {
			continue
		}
		pu, err := url.Parse(u)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		if pu.Scheme != "http" && pu.Scheme != "https" {
			return fmt.Errorf("%s: scheme must be http or https, got %q", name, pu.Scheme)
		}
		if pu.Host == "" {
			return fmt.Errorf("%s: missing host", name)
		}
	}
	if c.ModelSHA256 != "" {
		b, err := hex.DecodeString(c.ModelSHA256)
		if err != nil || len(b) != 32 {
			return fmt.Errorf("model_sha256 must be 64 hex characters")
		}
	}
	if c.MaxUploadBytes < 0 || c.MaxPixels < 0 || c.MaxQueueDepth < 0 || c.MaxWaitMS < 0 || c.Sessions < 0 ||
		c.DrainTimeoutMS < 0 || c.DownloadTimeoutSeconds < 0 || c.PredictTimeoutSeconds < 0 {
		return fmt.Errorf("limits and timeouts must not be negative")
	}
	switch c.LogFormat {
	case "", "json", "console":
	default:
		return fmt.Errorf("log_format must be json or console, got %q", c.LogFormat)
	}
	return nil
}

// ExpandPaths expands a leading '~' in every path field.
func (c Config) ExpandPaths() (Config, error) {
	for _, p := range []*string{&c.ModelPath, &c.LabelsPath, &c.TmpDir, &c.ONNXLibrary} {
		v, err := fsutil.ExpandHome(*p)
		if err != nil {
			return c, err
		}
		*p = v
	}
	return c, nil
}
