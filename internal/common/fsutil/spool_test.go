package fsutil

import (
	"errors"
	"io"
	"os"
	"strings"
	"testing"
)

func dirEntries(t *testing.T, dir string) int {
	t.Helper()
	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	return len(ents)
}

func TestSpoolToTemp(t *testing.T) {
	dir := t.TempDir()
	s, err := SpoolToTemp(dir, "upload-*", strings.NewReader("hello world"), 64)
	if err != nil {
		t.Fatalf("spool: %v", err)
	}
	if s.Size() != 11 {
		t.Fatalf("size=%d", s.Size())
	}
	b, err := io.ReadAll(s.File())
	if err != nil || string(b) != "hello world" {
		t.Fatalf("content=%q err=%v", b, err)
	}
	if err := s.Rewind(); err != nil {
		t.Fatalf("rewind: %v", err)
	}
	if dirEntries(t, dir) != 1 {
		t.Fatalf("expected one spool file")
	}
	s.Remove()
	s.Remove()
	if n := dirEntries(t, dir); n != 0 {
		t.Fatalf("expected spool dir empty after Remove, got %d entries", n)
	}
}

func TestSpoolToTemp_LimitRemovesFile(t *testing.T) {
	dir := t.TempDir()
	_, err := SpoolToTemp(dir, "upload-*", strings.NewReader(strings.Repeat("x", 100)), 10)
	if !errors.Is(err, ErrSpoolLimit) {
		t.Fatalf("expected ErrSpoolLimit, got %v", err)
	}
	if n := dirEntries(t, dir); n != 0 {
		t.Fatalf("expected no leftover files, got %d", n)
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("boom") }

func TestSpoolToTemp_ReadErrorRemovesFile(t *testing.T) {
	dir := t.TempDir()
	if _, err := SpoolToTemp(dir, "upload-*", failingReader{}, 0); err == nil {
		t.Fatalf("expected error")
	}
	if n := dirEntries(t, dir); n != 0 {
		t.Fatalf("expected no leftover files, got %d", n)
	}
}

func TestSpoolToTemp_ExactLimitAccepted(t *testing.T) {
	dir := t.TempDir()
	s, err := SpoolToTemp(dir, "upload-*", strings.NewReader("0123456789"), 10)
	if err != nil {
		t.Fatalf("spool: %v", err)
	}
	defer s.Remove()
	if s.Size() != 10 {
		t.Fatalf("size=%d", s.Size())
	}
}
