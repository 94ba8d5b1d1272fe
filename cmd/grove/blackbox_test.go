package main

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

// findFreePort picks an available TCP port on localhost.
func findFreePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()
	return ln.Addr().(*net.TCPAddr).Port
}

func buildBinary(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("builds the grove binary")
	}
	bin := filepath.Join(t.TempDir(), "grove")
	cmd := exec.Command("go", "build", "-o", bin, ".")
	cmd.Env = append(os.Environ(), "CGO_ENABLED=0")
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("go build failed: %v\n%s", err, out)
	}
	return bin
}

func get(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	b, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, b
}

func TestBlackbox_VersionCommand(t *testing.T) {
	bin := buildBinary(t)
	out, err := exec.Command(bin, "version").CombinedOutput()
	if err != nil {
		t.Fatalf("version: %v\n%s", err, out)
	}
	if !strings.HasPrefix(string(out), "grove ") {
		t.Fatalf("version output %q", out)
	}
}

// TestBlackbox_ServesWhileProvisioning checks that probes answer while the
// model download is still in progress, and that a failed download stops the
// process with a non-zero exit.
func TestBlackbox_ServesWhileProvisioning(t *testing.T) {
	bin := buildBinary(t)

	release := make(chan struct{})
	var once sync.Once
	unblock := func() { once.Do(func() { close(release) }) }
	artifacts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		http.NotFound(w, r)
	}))
	t.Cleanup(artifacts.Close)
	t.Cleanup(unblock)

	dir := t.TempDir()
	port := findFreePort(t)
	base := fmt.Sprintf("http://127.0.0.1:%d", port)
	cmd := exec.Command(bin, "serve",
		"--addr", fmt.Sprintf("127.0.0.1:%d", port),
		"--model-url", artifacts.URL+"/plant.onnx",
		"--model-path", filepath.Join(dir, "plant.onnx"),
		"--labels-url", artifacts.URL+"/plant.labels.json",
		"--tmp-dir", filepath.Join(dir, "tmp"),
	)
	cmd.Env = append(os.Environ(), "GROVE_CONFIG=")
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		t.Fatalf("start server: %v", err)
	}
	exited := make(chan error, 1)
	go func() { exited <- cmd.Wait() }()
	t.Cleanup(func() { _ = cmd.Process.Kill() })

	deadline := time.Now().Add(10 * time.Second)
	for {
		resp, err := http.Get(base + "/healthz")
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				break
			}
		}
		if time.Now().After(deadline) {
			t.Fatal("server did not become healthy in time")
		}
		time.Sleep(50 * time.Millisecond)
	}

	resp, body := get(t, base+"/readyz")
	if resp.StatusCode != http.StatusServiceUnavailable || !strings.Contains(string(body), "downloading") {
		t.Fatalf("/readyz while downloading: %d %s", resp.StatusCode, body)
	}
	resp, _ = get(t, base+"/labels")
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("/labels while downloading: %d", resp.StatusCode)
	}

	unblock()
	select {
	case err := <-exited:
		if err == nil {
			t.Fatal("expected non-zero exit after failed download")
		}
	case <-time.After(15 * time.Second):
		t.Fatal("server kept running after failed download")
	}
	if _, err := os.Stat(filepath.Join(dir, "plant.onnx")); !os.IsNotExist(err) {
		t.Fatalf("partial model left on disk: %v", err)
	}
}
