package e2e

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"grove/internal/classifier"
	"grove/internal/httpapi"
	"grove/internal/manager"
	"grove/internal/provision"
)

const labelsJSON = `{"classes":["healthy","powdery_mildew","leaf_rust"],"image_size":8}`

// artifactServer serves a model and labels file and counts downloads.
type artifactServer struct {
	*httptest.Server
	modelHits  atomic.Int32
	labelsHits atomic.Int32
}

func newArtifactServer(t *testing.T) *artifactServer {
	t.Helper()
	as := &artifactServer{}
	as.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/plant.onnx":
			as.modelHits.Add(1)
			_, _ = w.Write([]byte("onnx-bytes"))
		case "/plant.labels.json":
			as.labelsHits.Add(1)
			_, _ = w.Write([]byte(labelsJSON))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(as.Close)
	return as
}

// stubRunner scores every image the same; gate, when set, holds Run until closed.
type stubRunner struct {
	gate    chan struct{}
	entered chan struct{}
}

func (s *stubRunner) Run(ctx context.Context, input []float32) ([]float32, error) {
	if s.entered != nil {
		select {
		case s.entered <- struct{}{}:
		default:
		}
	}
	if s.gate != nil {
		select {
		case <-s.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return []float32{0.2, 3.1, 0.4}, nil
}

func (s *stubRunner) Close() error { return nil }

type stack struct {
	dir     string
	tmp     string
	artSrv  *artifactServer
	mgr     *manager.Manager
	srv     *httptest.Server
	runner  *stubRunner
	modelFS string
}

// newStack wires a real provisioner and HTTP API around a stub runner.
func newStack(t *testing.T, as *artifactServer, dir string, runner *stubRunner, tune func(*manager.ManagerConfig)) *stack {
	t.Helper()
	s := &stack{
		dir:     dir,
		tmp:     filepath.Join(dir, "uploads"),
		artSrv:  as,
		runner:  runner,
		modelFS: filepath.Join(dir, "models", "plant.onnx"),
	}
	cfg := manager.ManagerConfig{
		Model:       provision.Artifact{Name: "model", URL: as.URL + "/plant.onnx", Path: s.modelFS},
		Labels:      provision.Artifact{Name: "labels", URL: as.URL + "/plant.labels.json", Path: filepath.Join(dir, "models", "plant.labels.json")},
		Provisioner: provision.New(provision.Config{Timeout: 5 * time.Second}),
		Opener: func(string, classifier.Metadata, classifier.Options) (classifier.Runner, error) {
			return runner, nil
		},
		TmpDir:       s.tmp,
		MaxWait:      time.Second,
		DrainTimeout: 2 * time.Second,
	}
	if tune != nil {
		tune(&cfg)
	}
	s.mgr = manager.NewWithConfig(cfg)
	s.srv = httptest.NewServer(httpapi.NewMux(s.mgr))
	t.Cleanup(s.srv.Close)
	t.Cleanup(func() { _ = s.mgr.Close() })
	return s
}

func (s *stack) start(t *testing.T) {
	t.Helper()
	if err := s.mgr.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
}

func jpegBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 40, 30))
	for y := 0; y < 30; y++ {
		for x := 0; x < 40; x++ {
			img.Set(x, y, color.RGBA{60, 140, 50, 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("jpeg: %v", err)
	}
	return buf.Bytes()
}

// postFile uploads data as multipart field "file" and returns status and body.
func postFile(t *testing.T, url, filename, contentType string, data []byte) (int, []byte) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(map[string][]string)
	h["Content-Disposition"] = []string{`form-data; name="file"; filename="` + filename + `"`}
	h["Content-Type"] = []string{contentType}
	part, err := mw.CreatePart(h)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	_, _ = part.Write(data)
	_ = mw.Close()

	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, url, &buf)
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do req: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp.StatusCode, body
}

// postStatus uploads data as a JPEG and returns the status code, or -1 when the
// request fails. It is safe to call from goroutines other than the test's.
func postStatus(url string, data []byte) int {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "leaf.jpg")
	if err != nil {
		return -1
	}
	_, _ = part.Write(data)
	_ = mw.Close()
	resp, err := http.Post(url, mw.FormDataContentType(), &buf)
	if err != nil {
		return -1
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
	return resp.StatusCode
}

func httpGet(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do req: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, body
}

func assertEmptyDir(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return
		}
		t.Fatalf("readdir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected %s to be empty, found %d entries", dir, len(entries))
	}
}
