package e2e

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"grove/internal/manager"
	"grove/pkg/types"
)

// TestE2E_ProvisionAndPredict downloads the artifacts on first start, serves a
// prediction, rejects non-images and leaves no upload files behind.
func TestE2E_ProvisionAndPredict(t *testing.T) {
	as := newArtifactServer(t)
	s := newStack(t, as, t.TempDir(), &stubRunner{}, nil)

	resp, _ := httpGet(t, s.srv.URL+"/readyz")
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("readyz before start: %d", resp.StatusCode)
	}
	if code, _ := postFile(t, s.srv.URL+"/predict", "leaf.jpg", "image/jpeg", jpegBytes(t)); code != http.StatusServiceUnavailable {
		t.Fatalf("predict before start: %d", code)
	}

	s.start(t)

	resp, _ = httpGet(t, s.srv.URL+"/readyz")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("readyz after start: %d", resp.StatusCode)
	}

	code, body := postFile(t, s.srv.URL+"/predict?top_k=2", "leaf.jpg", "image/jpeg", jpegBytes(t))
	if code != http.StatusOK {
		t.Fatalf("predict: %d %s", code, body)
	}
	var pr types.PredictResponse
	if err := json.Unmarshal(body, &pr); err != nil {
		t.Fatalf("decode predict: %v", err)
	}
	if pr.Label != "powdery_mildew" || pr.Confidence <= 0 || pr.Confidence > 1 {
		t.Fatalf("unexpected prediction: %+v", pr)
	}
	if len(pr.Predictions) != 2 || pr.Model != "plant.onnx" || pr.MediaType != "image/jpeg" {
		t.Fatalf("unexpected response fields: %+v", pr)
	}

	code, body = postFile(t, s.srv.URL+"/predict", "notes.txt", "text/plain", []byte("not an image"))
	if code != http.StatusUnsupportedMediaType {
		t.Fatalf("text upload: %d %s", code, body)
	}
	var er types.ErrorResponse
	if err := json.Unmarshal(body, &er); err != nil || er.Kind != "unsupported_media_type" {
		t.Fatalf("error body: %s (%v)", body, err)
	}

	// Declared as an image but the bytes are not one.
	code, _ = postFile(t, s.srv.URL+"/predict", "leaf.jpg", "image/jpeg", []byte("plain text pretending"))
	if code != http.StatusUnsupportedMediaType && code != http.StatusBadRequest {
		t.Fatalf("disguised upload: %d", code)
	}

	resp, body = httpGet(t, s.srv.URL+"/labels")
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), "leaf_rust") {
		t.Fatalf("labels: %d %s", resp.StatusCode, body)
	}

	resp, body = httpGet(t, s.srv.URL+"/status")
	var st types.StatusResponse
	if err := json.Unmarshal(body, &st); err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("status: %d %v", resp.StatusCode, err)
	}
	if st.State != "ready" || st.NumClasses != 3 || st.PredictionsTotal != 1 {
		t.Fatalf("unexpected status: %+v", st)
	}

	if as.modelHits.Load() != 1 || as.labelsHits.Load() != 1 {
		t.Fatalf("downloads: model=%d labels=%d", as.modelHits.Load(), as.labelsHits.Load())
	}
	assertEmptyDir(t, s.tmp)
}

// TestE2E_SecondStartSkipsDownload reuses the artifacts a previous process
// left on disk.
func TestE2E_SecondStartSkipsDownload(t *testing.T) {
	as := newArtifactServer(t)
	dir := t.TempDir()

	first := newStack(t, as, dir, &stubRunner{}, nil)
	first.start(t)
	if err := first.mgr.Close(); err != nil {
		t.Fatalf("close first: %v", err)
	}

	second := newStack(t, as, dir, &stubRunner{}, nil)
	second.start(t)
	if as.modelHits.Load() != 1 || as.labelsHits.Load() != 1 {
		t.Fatalf("expected one download each, got model=%d labels=%d", as.modelHits.Load(), as.labelsHits.Load())
	}
	if code, body := postFile(t, second.srv.URL+"/predict", "leaf.jpg", "image/jpeg", jpegBytes(t)); code != http.StatusOK {
		t.Fatalf("predict on second start: %d %s", code, body)
	}
}

// TestE2E_Backpressure429 returns 429 when the queue is full and the wait
// budget elapses.
func TestE2E_Backpressure429(t *testing.T) {
	as := newArtifactServer(t)
	runner := &stubRunner{gate: make(chan struct{}), entered: make(chan struct{}, 1)}
	s := newStack(t, as, t.TempDir(), runner, func(cfg *manager.ManagerConfig) {
		cfg.MaxQueueDepth = 1
		cfg.MaxWait = 20 * time.Millisecond
	})
	s.start(t)
	data := jpegBytes(t)

	first := make(chan int, 1)
	go func() {
		first <- postStatus(s.srv.URL+"/predict", data)
	}()
	select {
	case <-runner.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("first request never reached the model")
	}

	code, body := postFile(t, s.srv.URL+"/predict", "b.jpg", "image/jpeg", data)
	if code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d %s", code, body)
	}

	close(runner.gate)
	if got := <-first; got != http.StatusOK {
		t.Fatalf("first request: %d", got)
	}
	assertEmptyDir(t, s.tmp)
}

// TestE2E_DownloadFailure leaves the service not ready with the error visible
// in /status.
func TestE2E_DownloadFailure(t *testing.T) {
	as := newArtifactServer(t)
	s := newStack(t, as, t.TempDir(), &stubRunner{}, func(cfg *manager.ManagerConfig) {
		cfg.Model.URL = as.URL + "/missing.onnx"
	})
	if err := s.mgr.Start(context.Background()); err == nil {
		t.Fatal("expected start to fail")
	}
	resp, _ := httpGet(t, s.srv.URL+"/readyz")
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("readyz: %d", resp.StatusCode)
	}
	_, body := httpGet(t, s.srv.URL+"/status")
	var st types.StatusResponse
	if err := json.Unmarshal(body, &st); err != nil {
		t.Fatalf("status: %v", err)
	}
	if st.State != "error" || !strings.Contains(st.LastError, "404") {
		t.Fatalf("unexpected status after failed download: %+v", st)
	}
}

// TestE2E_CloseDrainsInflight lets a running prediction finish, then refuses
// new work.
func TestE2E_CloseDrainsInflight(t *testing.T) {
	as := newArtifactServer(t)
	runner := &stubRunner{gate: make(chan struct{}), entered: make(chan struct{}, 1)}
	s := newStack(t, as, t.TempDir(), runner, nil)
	s.start(t)
	data := jpegBytes(t)

	inflight := make(chan int, 1)
	go func() {
		inflight <- postStatus(s.srv.URL+"/predict", data)
	}()
	<-runner.entered

	closed := make(chan error, 1)
	go func() { closed <- s.mgr.Close() }()
	time.Sleep(20 * time.Millisecond)
	close(runner.gate)

	if got := <-inflight; got != http.StatusOK {
		t.Fatalf("in-flight request: %d", got)
	}
	if err := <-closed; err != nil {
		t.Fatalf("close: %v", err)
	}
	if code, _ := postFile(t, s.srv.URL+"/predict", "b.jpg", "image/jpeg", data); code != http.StatusServiceUnavailable {
		t.Fatalf("predict after close: %d", code)
	}
}
