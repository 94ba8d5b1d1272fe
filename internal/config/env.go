package config

import (
	"fmt"
	"strconv"
	"strings"
)

// EnvPrefix is prepended to every environment variable name read by FromEnv.
const EnvPrefix = "GROVE_"

// FromEnv builds a Config from GROVE_* variables using lookup (os.Getenv in
// production). Unset variables leave the corresponding field zero.
func FromEnv(lookup func(string) string) (Config, error) {
	var cfg Config
	get := func(name string) string { return strings.TrimSpace(lookup(EnvPrefix + name)) }

	cfg.Addr = get("ADDR")
	cfg.ModelURL = get("MODEL_URL")
	cfg.ModelPath = get("MODEL_PATH")
	cfg.ModelSHA256 = get("MODEL_SHA256")
	cfg.LabelsURL = get("LABELS_URL")
	cfg.LabelsPath = get("LABELS_PATH")
	cfg.AllowedOrigins = SplitCSV(get("ALLOWED_ORIGINS"))
	cfg.TmpDir = get("TMP_DIR")
	cfg.ONNXLibrary = get("ONNX_LIBRARY")
	cfg.LogLevel = get("LOG_LEVEL")
	cfg.LogFormat = get("LOG_FORMAT")

	ints := []struct {
		name string
		dst  *int
	}{
		{"MAX_QUEUE_DEPTH", &cfg.MaxQueueDepth},
		{"MAX_PIXELS", &cfg.MaxPixels},
		{"MAX_WAIT_MS", &cfg.MaxWaitMS},
		{"SESSIONS", &cfg.Sessions},
		{"DRAIN_TIMEOUT_MS", &cfg.DrainTimeoutMS},
		{"DOWNLOAD_TIMEOUT_SECONDS", &cfg.DownloadTimeoutSeconds},
		{"PREDICT_TIMEOUT_SECONDS", &cfg.PredictTimeoutSeconds},
	}
	for _, e := range ints {
		v := get(e.name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("%s%s: %w", EnvPrefix, e.name, err)
		}
		*e.dst = n
	}
	if v := get("MAX_UPLOAD_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return cfg, fmt.Errorf("%sMAX_UPLOAD_BYTES: %w", EnvPrefix, err)
		}
		cfg.MaxUploadBytes = n
	}
	return cfg, nil
}

// SplitCSV splits a comma separated list, trimming blanks and dropping empties.
func SplitCSV(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
