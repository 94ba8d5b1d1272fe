package provision

import (
	"errors"
	"fmt"
)

// downloadError reports a failed artifact fetch. It is fatal at startup.
type downloadError struct {
	name   string
	url    string
	status int
	err    error
}

func (e *downloadError) Error() string {
	switch {
	case e.status != 0:
		return fmt.Sprintf("download %s from %s: unexpected status %d", e.name, e.url, e.status)
	case e.err != nil && e.url != "":
		return fmt.Sprintf("download %s from %s: %v", e.name, e.url, e.err)
	case e.err != nil:
		return fmt.Sprintf("download %s: %v", e.name, e.err)
	default:
		return "download " + e.name + " failed"
	}
}

func (e *downloadError) Unwrap() error { return e.err }

// StatusCode returns the HTTP status the remote returned, or 0.
func (e *downloadError) StatusCode() int { return e.status }

// ErrNoSource is wrapped by the download error returned when an artifact is
// missing locally and has no URL to fetch it from.
var ErrNoSource = errors.New("artifact missing and no source url configured")

// ErrChecksumMismatch is wrapped when the downloaded bytes do not match the
// expected sha256.
var ErrChecksumMismatch = errors.New("sha256 mismatch")

// IsDownloadError reports whether err is (or wraps) a download failure.
func IsDownloadError(err error) bool {
	var de *downloadError
	return errors.As(err, &de)
}

// DownloadStatus returns the remote HTTP status carried by a download error, or 0.
func DownloadStatus(err error) int {
	var de *downloadError
	if errors.As(err, &de) {
		return de.status
	}
	return 0
}
