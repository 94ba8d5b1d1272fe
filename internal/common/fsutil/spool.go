package fsutil

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrSpoolLimit is returned when the spooled input exceeds the configured limit.
var ErrSpoolLimit = errors.New("input exceeds size limit")

// Spool is a request-private temporary file holding an uploaded body.
// Callers must call Remove on every exit path.
type Spool struct {
	f    *os.File
	size int64
}

// SpoolToTemp copies r into a new temporary file under dir. A limit <= 0
// disables the size check. On error no file is left behind.
func SpoolToTemp(dir, pattern string, r io.Reader, limit int64) (*Spool, error) {
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create spool dir: %w", err)
		}
	}
	f, err := os.CreateTemp(dir, pattern)
	if err != nil {
		return nil, fmt.Errorf("create spool file: %w", err)
	}
	s := &Spool{f: f}

	src := r
	if limit > 0 {
		// read one byte past the limit so an oversized body is detectable
		src = io.LimitReader(r, limit+1)
	}
	n, err := io.Copy(f, src)
	if err != nil {
		s.Remove()
		return nil, fmt.Errorf("spool body: %w", err)
	}
	if limit > 0 && n > limit {
		s.Remove()
		return nil, ErrSpoolLimit
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		s.Remove()
		return nil, fmt.Errorf("rewind spool: %w", err)
	}
	s.size = n
	return s, nil
}

// Size returns the number of bytes spooled.
func (s *Spool) Size() int64 { return s.size }

// File returns the open file positioned at the start of the content.
func (s *Spool) File() *os.File { return s.f }

// Rewind seeks back to the start of the content.
func (s *Spool) Rewind() error {
	_, err := s.f.Seek(0, io.SeekStart)
	return err
}

// Remove closes and deletes the temporary file. It is safe to call more than once.
func (s *Spool) Remove() {
	if s == nil || s.f == nil {
		return
	}
	name := s.f.Name()
	_ = s.f.Close()
	_ = os.Remove(name)
	s.f = nil
}
