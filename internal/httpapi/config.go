package httpapi

import "time"

// maxUploadBytes bounds the image payload of POST /predict. Multipart
// framing gets multipartOverhead on top.
var maxUploadBytes int64 = 10 << 20

const multipartOverhead = 64 << 10

// SetMaxUploadBytes configures the maximum accepted upload size.
func SetMaxUploadBytes(n int64) {
	if n <= 0 {
		maxUploadBytes = 10 << 20
		return
	}
	maxUploadBytes = n
}

// predictTimeout bounds a /predict request. Zero means no additional timeout
// beyond server/connection timeouts.
var predictTimeout time.Duration

// SetPredictTimeoutSeconds sets the predict timeout in seconds (0 disables).
func SetPredictTimeoutSeconds(sec int64) {
	if sec < 0 {
		sec = 0
	}
	predictTimeout = time.Duration(sec) * time.Second
}

// CORS configuration (opt-in). If disabled, no CORS middleware is added.
var (
	corsEnabled        bool
	corsAllowedOrigins []string
	corsAllowedMethods []string
	corsAllowedHeaders []string
)

var (
	defaultCORSMethods = []string{"GET", "POST", "OPTIONS"}
	defaultCORSHeaders = []string{"Content-Type", "X-Log-Level", "X-Request-Id"}
)

// SetCORSOptions configures CORS behavior for the HTTP server. Empty methods
// or headers fall back to what the predict endpoint needs.
func SetCORSOptions(enabled bool, origins, methods, headers []string) {
	corsEnabled = enabled
	corsAllowedOrigins = append([]string(nil), origins...)
	corsAllowedMethods = append([]string(nil), methods...)
	corsAllowedHeaders = append([]string(nil), headers...)
	if len(corsAllowedMethods) == 0 {
		corsAllowedMethods = append([]string(nil), defaultCORSMethods...)
	}
	if len(corsAllowedHeaders) == 0 {
		corsAllowedHeaders = append([]string(nil), defaultCORSHeaders...)
	}
}
