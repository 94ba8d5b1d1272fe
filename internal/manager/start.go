package manager

import (
	"context"
	"time"

	"grove/internal/classifier"
	"grove/internal/common/fsutil"
	"grove/internal/provision"
	"grove/pkg/types"
)

// Start provisions the model and labels artifacts, then loads them. Without a
// labels URL or file on disk the labels are read from the model's own
// metadata. It returns a download error (see provision.IsDownloadError) or a
// model load error (IsModelLoad); both leave the manager in StateError and are
// meant to be fatal for the process.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return ErrAlreadyStarted
	}
	m.started = true
	m.mu.Unlock()

	if !m.advance(StateDownloading) {
		return notReadyError{state: m.State()}
	}
	m.publish(EventProvisionStart, map[string]any{"model_url": m.model.URL, "labels_url": m.labels.URL})
	start := time.Now()
	required := m.RequiredArtifacts()
	results, err := m.prov.EnsureAll(ctx, required...)
	if err != nil {
		return m.fail("provision", err)
	}
	m.recordArtifacts(results)
	m.publish(EventProvisionDone, map[string]any{"duration_ms": time.Since(start).Milliseconds()})

	if !m.advance(StateLoading) {
		return notReadyError{state: m.State()}
	}
	m.publish(EventLoadStart, map[string]any{"path": m.model.Path})
	var md classifier.Metadata
	if m.labelsFromFile() {
		m.log.Info().Str("model", m.model.Path).Str("labels", m.labels.Path).Msg("loading model")
		md, err = classifier.LoadMetadata(m.labels.Path)
		if err != nil {
			return m.fail("labels", modelLoadError{path: m.labels.Path, err: err})
		}
	} else {
		m.log.Info().Str("model", m.model.Path).Msg("loading model, labels from model metadata")
		md, err = m.embedded(m.model.Path, m.runtime)
		if err != nil {
			return m.fail("labels", modelLoadError{path: m.model.Path, err: err})
		}
	}
	runner, err := m.opener(m.model.Path, md, m.runtime)
	if err != nil {
		return m.fail("runtime", modelLoadError{path: m.model.Path, err: err})
	}
	clf := classifier.New(md, runner)

	m.mu.Lock()
	if m.state != StateLoading {
		// closed while loading
		st := m.state
		m.mu.Unlock()
		_ = clf.Close()
		return notReadyError{state: st}
	}
	m.clf = clf
	m.md = md
	m.readyAt = time.Now()
	m.state = StateReady
	m.err = ""
	m.mu.Unlock()
	modelReady.Set(1)

	m.publish(EventLoadReady, map[string]any{"classes": len(md.Classes), "duration_ms": time.Since(start).Milliseconds()})
	m.log.Info().Int("classes", len(md.Classes)).Dur("took", time.Since(start)).Msg("model ready")
	return nil
}

// RequiredArtifacts lists what Start provisions: always the model, and the
// labels file when it has a URL or already exists.
func (m *Manager) RequiredArtifacts() []provision.Artifact {
	if m.labelsFromFile() {
		return []provision.Artifact{m.model, m.labels}
	}
	return []provision.Artifact{m.model}
}

func (m *Manager) labelsFromFile() bool {
	return m.labels.URL != "" || fsutil.IsRegularFile(m.labels.Path)
}

// advance moves to s unless Close already began.
func (m *Manager) advance(s State) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == StateDraining || m.state == StateClosed {
		return false
	}
	m.state = s
	return true
}

func (m *Manager) fail(phase string, err error) error {
	m.mu.Lock()
	if m.state != StateDraining && m.state != StateClosed {
		m.state = StateError
	}
	m.err = err.Error()
	m.mu.Unlock()
	modelReady.Set(0)
	m.publish(EventLoadError, map[string]any{"phase": phase, "error": err.Error()})
	m.log.Error().Err(err).Str("phase", phase).Msg("model start failed")
	return err
}

func (m *Manager) recordArtifacts(results []provision.Result) {
	urls := map[string]string{m.model.Name: m.model.URL, m.labels.Name: m.labels.URL}
	out := make([]types.Artifact, 0, len(results))
	for _, r := range results {
		out = append(out, types.Artifact{
			Name:       r.Name,
			URL:        urls[r.Name],
			Path:       r.Path,
			SizeBytes:  r.Bytes,
			Downloaded: r.Downloaded,
		})
	}
	m.mu.Lock()
	m.artifacts = out
	m.mu.Unlock()
}
