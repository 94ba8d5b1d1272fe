package manager

import (
	"time"

	"grove/pkg/types"
)

// Snapshot returns a read-only view of the manager state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s := Snapshot{State: m.state, Err: m.err}
	if m.clf != nil {
		s.CurrentModel = &ModelInfo{
			Name:       m.ModelName(),
			Path:       m.model.Path,
			NumClasses: len(m.md.Classes),
			ReadyAt:    m.readyAt,
		}
	}
	return s
}

// Status builds a detailed status response for / and /status.
func (m *Manager) Status() types.StatusResponse {
	m.mu.RLock()
	defer m.mu.RUnlock()
	now := time.Now()
	inflight := len(m.genCh)
	queued := len(m.queueCh) - inflight
	if queued < 0 {
		queued = 0
	}
	resp := types.StatusResponse{
		State:            string(m.state),
		Ready:            m.state == StateReady && m.clf != nil,
		LastError:        m.err,
		Artifacts:        make([]types.Artifact, len(m.artifacts)),
		QueueLen:         queued,
		Inflight:         inflight,
		MaxQueueDepth:    cap(m.queueCh),
		PredictionsTotal: m.predictions.Load(),
		ServerTimeUnix:   now.Unix(),
	}
	copy(resp.Artifacts, m.artifacts)
	if resp.Ready {
		resp.NumClasses = len(m.md.Classes)
		resp.UptimeSeconds = int64(now.Sub(m.readyAt).Seconds())
	}
	return resp
}
