package manager

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"grove/internal/classifier"
	"grove/internal/provision"
)

const testLabels = `{"classes":["healthy","powdery_mildew","leaf_rust"],"image_size":8,` +
	`"descriptions":{"powdery_mildew":"White fungal growth on the leaf surface."}}`

var testClasses = []string{"healthy", "powdery_mildew", "leaf_rust"}

// fakeRunner is a lightweight in-memory runner used for tests.
type fakeRunner struct {
	out     []float32
	err     error
	gate    chan struct{} // when non-nil, Run blocks until closed
	entered chan struct{}
	calls   atomic.Int32
	closed  atomic.Int32
}

func (f *fakeRunner) Run(ctx context.Context, input []float32) ([]float32, error) {
	f.calls.Add(1)
	if f.entered != nil {
		select {
		case f.entered <- struct{}{}:
		default:
		}
	}
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.out, nil
}

func (f *fakeRunner) Close() error { f.closed.Add(1); return nil }

func (f *fakeRunner) opener() classifier.Opener {
	return func(modelPath string, md classifier.Metadata, opts classifier.Options) (classifier.Runner, error) {
		return f, nil
	}
}

type testEnv struct {
	dir    string
	tmp    string
	runner *fakeRunner
	pub    *MemoryPublisher
	cfg    ManagerConfig
}

// newTestEnv writes a model and labels file to disk and returns a config
// wired to a fake runner.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	modelPath := filepath.Join(dir, "plant.onnx")
	labelsPath := filepath.Join(dir, "plant.labels.json")
	if err := os.WriteFile(modelPath, []byte("onnx-bytes"), 0o644); err != nil {
		t.Fatalf("write model: %v", err)
	}
	if err := os.WriteFile(labelsPath, []byte(testLabels), 0o644); err != nil {
		t.Fatalf("write labels: %v", err)
	}
	env := &testEnv{
		dir:    dir,
		tmp:    filepath.Join(dir, "uploads"),
		runner: &fakeRunner{out: []float32{0.1, 2.5, 0.3}},
		pub:    NewMemoryPublisher(),
	}
	env.cfg = ManagerConfig{
		Model:        provision.Artifact{Name: "model", Path: modelPath},
		Labels:       provision.Artifact{Name: "labels", Path: labelsPath},
		Opener:       env.runner.opener(),
		Publisher:    env.pub,
		TmpDir:       env.tmp,
		MaxWait:      200 * time.Millisecond,
		DrainTimeout: time.Second,
	}
	return env
}

func (e *testEnv) start(t *testing.T) *Manager {
	t.Helper()
	m := NewWithConfig(e.cfg)
	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func solidImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{40, 150, 60, 255})
		}
	}
	return img
}

func jpegFixture(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, solidImage(32, 24), nil); err != nil {
		t.Fatalf("jpeg: %v", err)
	}
	return buf.Bytes()
}

func pngFixture(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, solidImage(16, 16)); err != nil {
		t.Fatalf("png: %v", err)
	}
	return buf.Bytes()
}

// assertNoTempFiles fails when dir holds any entry. A missing dir counts as empty.
func assertNoTempFiles(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return
		}
		t.Fatalf("readdir: %v", err)
	}
	if len(entries) != 0 {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Fatalf("temp files left behind: %v", names)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
