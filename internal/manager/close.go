package manager

import "time"

// Close stops serving and releases the model.
// - Sets state to draining so new Classify calls fail with not-ready.
// - Waits up to drainTimeout for in-flight and queued requests to finish.
// - Closes the runtime and moves to StateClosed.
// It is safe to call more than once.
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.state == StateClosed || m.state == StateDraining {
		m.mu.Unlock()
		return nil
	}
	m.state = StateDraining
	m.mu.Unlock()
	modelReady.Set(0)
	m.publish(EventCloseStart, nil)

	deadline := time.Now().Add(m.drainTimeout)
	for {
		qlen := len(m.queueCh)
		inflight := len(m.genCh)
		if inflight == 0 && qlen == 0 {
			break
		}
		if time.Now().After(deadline) {
			m.publish(EventCloseTimeout, map[string]any{"inflight": inflight, "queue": qlen})
			m.log.Warn().Int("inflight", inflight).Int("queue", qlen).Msg("drain timeout; closing with work in flight")
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	m.mu.Lock()
	clf := m.clf
	m.clf = nil
	m.state = StateClosed
	m.mu.Unlock()

	var err error
	if clf != nil {
		err = clf.Close()
	}
	m.publish(EventCloseDone, nil)
	return err
}
