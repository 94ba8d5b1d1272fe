package manager

import (
	"context"
	"time"

	"grove/internal/classifier"
)

// beginClassify reserves a queue slot and then one of the in-flight slots.
// It returns the classifier to use and a release func to be deferred.
func (m *Manager) beginClassify(ctx context.Context) (*classifier.Classifier, func(), error) {
	noop := func() {}
	// Fast path: respect an already-canceled context
	if err := ctx.Err(); err != nil {
		return nil, noop, err
	}

	timer := time.NewTimer(m.maxWait)
	defer timer.Stop()
	select {
	case m.queueCh <- struct{}{}:
		// reserved queue slot
	case <-ctx.Done():
		return nil, noop, ctx.Err()
	case <-timer.C:
		return nil, noop, tooBusyError{wait: m.maxWait.String()}
	}

	// Close waits for the queue to empty after switching to draining, so the
	// state check must happen while holding a slot.
	m.mu.RLock()
	clf, st := m.clf, m.state
	m.mu.RUnlock()
	if st != StateReady || clf == nil {
		<-m.queueCh
		return nil, noop, notReadyError{state: st}
	}

	acquired := false
	defer func() {
		if !acquired {
			<-m.queueCh
		}
	}()
	select {
	case m.genCh <- struct{}{}:
		acquired = true
		return clf, func() { <-m.genCh; <-m.queueCh }, nil
	case <-ctx.Done():
		return nil, noop, ctx.Err()
	case <-timer.C:
		return nil, noop, tooBusyError{wait: m.maxWait.String()}
	}
}
