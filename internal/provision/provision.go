// Package provision makes model artifacts available on local disk. An
// artifact that already exists is left untouched; a missing one is streamed
// from its URL into a "<path>.partial" file that is renamed into place only
// after the whole body arrived (and, when configured, its sha256 matched).
package provision

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"grove/internal/common/fsutil"
)

const (
	partialSuffix           = ".partial"
	defaultProgressInterval = 16 << 20
	defaultUserAgent        = "grove"
)

// Artifact identifies a file by its remote URL and local destination.
type Artifact struct {
	Name   string
	URL    string
	Path   string
	SHA256 string // optional, lowercase hex
}

// Result describes the outcome of Ensure for one artifact.
type Result struct {
	Name       string
	Path       string
	Downloaded bool
	Bytes      int64
}

// Config tunes a Provisioner. Zero values pick defaults.
type Config struct {
	Client           *http.Client
	Logger           zerolog.Logger
	UserAgent        string
	ProgressInterval int64
	Timeout          time.Duration // per artifact; 0 means none beyond ctx
}

// Provisioner downloads artifacts that are missing locally.
type Provisioner struct {
	client           *http.Client
	log              zerolog.Logger
	userAgent        string
	progressInterval int64
	timeout          time.Duration
}

// New constructs a Provisioner.
func New(cfg Config) *Provisioner {
	p := &Provisioner{
		client:           cfg.Client,
		log:              cfg.Logger,
		userAgent:        cfg.UserAgent,
		progressInterval: cfg.ProgressInterval,
		timeout:          cfg.Timeout,
	}
	if p.client == nil {
		p.client = http.DefaultClient
	}
	if p.userAgent == "" {
		p.userAgent = defaultUserAgent
	}
	if p.progressInterval <= 0 {
		p.progressInterval = defaultProgressInterval
	}
	return p
}

// Ensure makes a available at a.Path, downloading it when absent.
func (p *Provisioner) Ensure(ctx context.Context, a Artifact) (Result, error) {
	res := Result{Name: a.Name, Path: a.Path}
	if a.Name == "" {
		res.Name = filepath.Base(a.Path)
		a.Name = res.Name
	}
	if fi, err := os.Stat(a.Path); err == nil {
		if !fi.Mode().IsRegular() {
			downloadsTotal.WithLabelValues(a.Name, "failed").Inc()
			return res, &downloadError{name: a.Name, err: fmt.Errorf("%s exists but is not a regular file", a.Path)}
		}
		res.Bytes = fi.Size()
		p.log.Debug().Str("artifact", a.Name).Str("path", a.Path).Int64("bytes", res.Bytes).Msg("artifact present, skipping download")
		downloadsTotal.WithLabelValues(a.Name, "skipped").Inc()
		return res, nil
	}
	if strings.TrimSpace(a.URL) == "" {
		downloadsTotal.WithLabelValues(a.Name, "failed").Inc()
		return res, &downloadError{name: a.Name, err: fmt.Errorf("%s: %w", a.Path, ErrNoSource)}
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	start := time.Now()
	p.log.Info().Str("artifact", a.Name).Str("url", a.URL).Str("path", a.Path).Msg("downloading artifact")
	n, err := p.download(ctx, a)
	if err != nil {
		downloadsTotal.WithLabelValues(a.Name, "failed").Inc()
		p.log.Error().Err(err).Str("artifact", a.Name).Msg("download failed")
		return res, err
	}
	res.Downloaded = true
	res.Bytes = n
	downloadsTotal.WithLabelValues(a.Name, "downloaded").Inc()
	p.log.Info().Str("artifact", a.Name).Int64("bytes", n).Dur("dur", time.Since(start)).Msg("artifact downloaded")
	return res, nil
}

// EnsureAll provisions artifacts concurrently. The first failure cancels the
// remaining downloads; results are returned in input order.
func (p *Provisioner) EnsureAll(ctx context.Context, artifacts ...Artifact) ([]Result, error) {
	results := make([]Result, len(artifacts))
	g, gctx := errgroup.WithContext(ctx)
	for i, a := range artifacts {
		i, a := i, a
		g.Go(func() error {
			r, err := p.Ensure(gctx, a)
			results[i] = r
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

func (p *Provisioner) download(ctx context.Context, a Artifact) (int64, error) {
	derr := func(err error) error { return &downloadError{name: a.Name, url: a.URL, err: err} }

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.URL, nil)
	if err != nil {
		return 0, derr(err)
	}
	req.Header.Set("User-Agent", p.userAgent)
	resp, err := p.client.Do(req)
	if err != nil {
		return 0, derr(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// drain a little so the connection can be reused
		_, _ = io.CopyN(io.Discard, resp.Body, 4<<10)
		return 0, &downloadError{name: a.Name, url: a.URL, status: resp.StatusCode}
	}

	if err := os.MkdirAll(filepath.Dir(a.Path), 0o755); err != nil {
		return 0, derr(fmt.Errorf("make artifact directory: %w", err))
	}
	partial := a.Path + partialSuffix
	out, err := os.OpenFile(partial, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return 0, derr(fmt.Errorf("open file: %w", err))
	}
	committed := false
	defer func() {
		if !committed {
			_ = out.Close()
			_ = os.Remove(partial)
		}
	}()

	var h hash.Hash
	dst := io.Writer(out)
	if a.SHA256 != "" {
		h = sha256.New()
		dst = io.MultiWriter(out, h)
	}
	pw := &progressWriter{w: dst, log: p.log, name: a.Name, total: resp.ContentLength, every: p.progressInterval}
	n, err := io.Copy(pw, resp.Body)
	downloadBytesTotal.WithLabelValues(a.Name).Add(float64(n))
	if err != nil {
		return n, derr(err)
	}
	if resp.ContentLength > 0 && n != resp.ContentLength {
		return n, derr(fmt.Errorf("short body: got %d of %d bytes", n, resp.ContentLength))
	}
	if h != nil {
		if got := hex.EncodeToString(h.Sum(nil)); !strings.EqualFold(got, a.SHA256) {
			return n, derr(fmt.Errorf("%w: got %s want %s", ErrChecksumMismatch, got, a.SHA256))
		}
	}
	if err := out.Sync(); err != nil {
		return n, derr(fmt.Errorf("sync: %w", err))
	}
	if err := out.Close(); err != nil {
		return n, derr(fmt.Errorf("close: %w", err))
	}
	committed = true
	if err := os.Rename(partial, a.Path); err != nil {
		_ = os.Remove(partial)
		return n, derr(fmt.Errorf("rename: %w", err))
	}
	return n, nil
}

// progressWriter logs download progress every `every` bytes.
type progressWriter struct {
	w       io.Writer
	log     zerolog.Logger
	name    string
	total   int64
	written int64
	next    int64
	every   int64
}

func (pw *progressWriter) Write(b []byte) (int, error) {
	n, err := pw.w.Write(b)
	pw.written += int64(n)
	if pw.written >= pw.next+pw.every {
		pw.next = pw.written
		ev := pw.log.Info().Str("artifact", pw.name).Int64("completed", pw.written)
		if pw.total > 0 {
			ev = ev.Int64("total", pw.total)
		}
		ev.Msg("download progress")
	}
	return n, err
}

// Present reports whether every artifact already exists locally.
func Present(artifacts ...Artifact) bool {
	for _, a := range artifacts {
		if !fsutil.IsRegularFile(a.Path) {
			return false
		}
	}
	return true
}
