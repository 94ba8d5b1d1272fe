package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds runtime parameters for the service.
// Zero values mean "unspecified" and are replaced by Default() values in Merge.
type Config struct {
	Addr string `json:"addr" yaml:"addr" toml:"addr"`

	ModelURL    string `json:"model_url" yaml:"model_url" toml:"model_url"`
	ModelPath   string `json:"model_path" yaml:"model_path" toml:"model_path"`
	ModelSHA256 string `json:"model_sha256" yaml:"model_sha256" toml:"model_sha256"`
	LabelsURL   string `json:"labels_url" yaml:"labels_url" toml:"labels_url"`
	LabelsPath  string `json:"labels_path" yaml:"labels_path" toml:"labels_path"`

	AllowedOrigins []string `json:"allowed_origins" yaml:"allowed_origins" toml:"allowed_origins"`

	TmpDir                 string `json:"tmp_dir" yaml:"tmp_dir" toml:"tmp_dir"`
	MaxUploadBytes         int64  `json:"max_upload_bytes" yaml:"max_upload_bytes" toml:"max_upload_bytes"`
	MaxPixels              int    `json:"max_pixels" yaml:"max_pixels" toml:"max_pixels"`
	MaxQueueDepth          int    `json:"max_queue_depth" yaml:"max_queue_depth" toml:"max_queue_depth"`
	MaxWaitMS              int    `json:"max_wait_ms" yaml:"max_wait_ms" toml:"max_wait_ms"`
	Sessions               int    `json:"sessions" yaml:"sessions" toml:"sessions"`
	DrainTimeoutMS         int    `json:"drain_timeout_ms" yaml:"drain_timeout_ms" toml:"drain_timeout_ms"`
	DownloadTimeoutSeconds int    `json:"download_timeout_seconds" yaml:"download_timeout_seconds" toml:"download_timeout_seconds"`
	PredictTimeoutSeconds  int    `json:"predict_timeout_seconds" yaml:"predict_timeout_seconds" toml:"predict_timeout_seconds"`

	ONNXLibrary string `json:"onnx_library" yaml:"onnx_library" toml:"onnx_library"`

	LogLevel  string `json:"log_level" yaml:"log_level" toml:"log_level"`
	LogFormat string `json:"log_format" yaml:"log_format" toml:"log_format"`
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}
