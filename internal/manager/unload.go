package manager

import (
	"context"
	"time"
)

// Unload releases the current model. Unloading when nothing is loaded is a
// no-op. The only possible error is LockContention.
func (m *Manager) Unload(ctx context.Context) error {
	leave, err := m.enter(ctx)
	if err != nil {
		return err
	}
	defer leave()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unloadLocked()
	return nil
}

// unloadLocked drains in-flight references, closes the model and clears the
// handle. Callers hold the exclusive section and m.mu. It reports whether a
// model was unloaded.
func (m *Manager) unloadLocked() bool {
	h := m.cur
	if h == nil {
		return false
	}
	start := time.Now()
	h.refs.Wait()
	if err := h.model.Close(); err != nil {
		m.log.Warn().Err(err).Str("path", h.path).Msg("model close failed")
	}
	m.cur = nil
	m.publisher.Publish(Event{Name: EventUnloadDone, Path: h.path, Fields: map[string]any{
		"drain_ms": time.Since(start).Milliseconds(),
	}})
	m.log.Info().Str("path", h.path).Msg("model unloaded")
	return true
}
