package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"grove/internal/manager"
	"grove/pkg/types"
)

// HTTPError allows services to provide an HTTP status code for an error.
type HTTPError interface {
	error
	StatusCode() int
}

// Error kinds carried in types.ErrorResponse.Kind.
const (
	KindNotReady             = "not_ready"
	KindUnsupportedMediaType = "unsupported_media_type"
	KindInvalidImage         = "invalid_image"
	KindPayloadTooLarge      = "payload_too_large"
	KindTooBusy              = "too_busy"
	KindInference            = "inference"
	KindTimeout              = "timeout"
	KindBadRequest           = "bad_request"
	KindInternal             = "internal"
)

// mapError converts a service error into a status code and kind.
func mapError(err error) (int, string) {
	var mbe *http.MaxBytesError
	switch {
	case manager.IsNotReady(err):
		return http.StatusServiceUnavailable, KindNotReady
	case manager.IsUnsupportedMediaType(err):
		return http.StatusUnsupportedMediaType, KindUnsupportedMediaType
	case manager.IsInvalidImage(err):
		return http.StatusBadRequest, KindInvalidImage
	case manager.IsPayloadTooLarge(err), errors.As(err, &mbe):
		return http.StatusRequestEntityTooLarge, KindPayloadTooLarge
	case manager.IsTooBusy(err):
		return http.StatusTooManyRequests, KindTooBusy
	case manager.IsInference(err):
		return http.StatusInternalServerError, KindInference
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, KindTimeout
	}
	var he HTTPError
	if errors.As(err, &he) {
		return he.StatusCode(), KindInternal
	}
	return http.StatusInternalServerError, KindInternal
}

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, kind, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{Error: msg, Code: status, Kind: kind})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
