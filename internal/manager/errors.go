package manager

import (
	"errors"
	"fmt"
	"time"
)

// notReadyError signals that the model is not loaded (return 503).
type notReadyError struct{ state State }

func (e notReadyError) Error() string { return "model not ready: " + string(e.state) }

// IsNotReady reports whether err indicates the model is not loaded yet.
func IsNotReady(err error) bool {
	var e notReadyError
	return errors.As(err, &e)
}

// tooBusyError signals queue timeout/overflow for 429 mapping.
type tooBusyError struct{ wait string }

func (e tooBusyError) Error() string { return "too busy: no inference slot within " + e.wait }

// IsTooBusy reports whether err indicates backpressure (return 429).
func IsTooBusy(err error) bool {
	var e tooBusyError
	return errors.As(err, &e)
}

// unsupportedMediaTypeError rejects inputs outside the accepted image formats.
type unsupportedMediaTypeError struct{ err error }

func (e unsupportedMediaTypeError) Error() string { return e.err.Error() }
func (e unsupportedMediaTypeError) Unwrap() error { return e.err }

// IsUnsupportedMediaType reports whether err rejects the input format (return 415).
func IsUnsupportedMediaType(err error) bool {
	var e unsupportedMediaTypeError
	return errors.As(err, &e)
}

// invalidImageError reports bytes of an accepted type that failed to decode.
type invalidImageError struct{ err error }

func (e invalidImageError) Error() string { return e.err.Error() }
func (e invalidImageError) Unwrap() error { return e.err }

// IsInvalidImage reports whether err indicates undecodable input (return 400).
func IsInvalidImage(err error) bool {
	var e invalidImageError
	return errors.As(err, &e)
}

// payloadTooLargeError reports an upload above the configured limit.
type payloadTooLargeError struct{ limit int64 }

func (e payloadTooLargeError) Error() string {
	return fmt.Sprintf("upload exceeds %d bytes", e.limit)
}

// IsPayloadTooLarge reports whether err rejects an oversized upload (return 413).
func IsPayloadTooLarge(err error) bool {
	var e payloadTooLargeError
	return errors.As(err, &e)
}

// inferenceError wraps a runtime failure while running the model.
type inferenceError struct{ err error }

func (e inferenceError) Error() string { return "inference failed: " + e.err.Error() }
func (e inferenceError) Unwrap() error { return e.err }

// IsInference reports whether err is a model runtime failure (return 500).
func IsInference(err error) bool {
	var e inferenceError
	return errors.As(err, &e)
}

// modelLoadError reports that the provisioned artifacts could not be loaded.
// It is fatal at startup.
type modelLoadError struct {
	path string
	err  error
}

func (e modelLoadError) Error() string { return "load model " + e.path + ": " + e.err.Error() }
func (e modelLoadError) Unwrap() error { return e.err }

// IsModelLoad reports whether err is a model load failure.
func IsModelLoad(err error) bool {
	var e modelLoadError
	return errors.As(err, &e)
}

// ErrAlreadyStarted is returned by a second call to Start.
var ErrAlreadyStarted = errors.New("manager already started")

// Constructors for callers (and tests) that need to produce manager errors.

func ErrNotReady(state State) error               { return notReadyError{state: state} }
func ErrTooBusy(wait time.Duration) error         { return tooBusyError{wait: wait.String()} }
func ErrUnsupportedMediaType(cause error) error   { return unsupportedMediaTypeError{err: cause} }
func ErrInvalidImage(cause error) error           { return invalidImageError{err: cause} }
func ErrPayloadTooLarge(limit int64) error        { return payloadTooLargeError{limit: limit} }
func ErrInference(cause error) error              { return inferenceError{err: cause} }
func ErrModelLoad(path string, cause error) error { return modelLoadError{path: path, err: cause} }
