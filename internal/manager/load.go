package manager

import (
	"context"
	"errors"
	"strings"
	"time"

	"memoryd/internal/common/fsutil"
	"memoryd/internal/runtime"
)

// Load replaces the current model with the one at path.
//
// The path is validated before the exclusive section is entered, so a
// missing file never unloads a working model. Inside the section the
// current model is unloaded (waiting for in-flight generations), the settle
// delay is observed, placement is re-probed and the new model is loaded with
// every layer on the GPU when possible. A failed GPU load is retried on the
// CPU.
func (m *Manager) Load(ctx context.Context, path string, contextTokens int) error {
	if contextTokens <= 0 {
		contextTokens = DefaultContextTokens
	}
	p, err := fsutil.ExpandHome(strings.TrimSpace(path))
	if err != nil || p == "" || !fsutil.IsRegularFile(p) {
		lerr := &LifecycleError{Kind: FileNotFound, Path: path}
		m.log.Warn().Str("path", path).Msg("model file not found")
		loadsTotal.WithLabelValues("file_not_found").Inc()
		return lerr
	}

	leave, err := m.enter(ctx)
	if err != nil {
		loadsTotal.WithLabelValues("lock_contention").Inc()
		return err
	}
	defer leave()

	start := time.Now()
	m.publisher.Publish(Event{Name: EventLoadStart, Path: p, Fields: map[string]any{"context_tokens": contextTokens}})

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.unloadLocked() && m.settle > 0 {
		time.Sleep(m.settle)
	}

	layers := 0
	if m.probePlacement() {
		layers = gpuLayersAll
	}
	model, err := m.loadModel(p, layers, contextTokens)
	if err != nil && layers > 0 {
		m.log.Warn().Err(err).Str("path", p).Msg("gpu load failed, falling back to cpu")
		layers = 0
		model, err = m.loadModel(p, 0, contextTokens)
	}
	if err != nil {
		lerr := &LifecycleError{Kind: RuntimeLoadFailed, Path: p, Err: err}
		m.setLastErr(lerr)
		m.publisher.Publish(Event{Name: EventLoadFailed, Path: p, Fields: map[string]any{"error": err.Error()}})
		m.log.Error().Err(err).Str("path", p).Msg("model load failed")
		loadsTotal.WithLabelValues("failed").Inc()
		return lerr
	}

	m.cur = &Handle{
		model:         model,
		path:          p,
		contextTokens: contextTokens,
		placement:     Placement{GPULayers: layers},
		loadedAt:      time.Now(),
	}
	m.loadsTotal.Add(1)
	m.setLastErr(nil)
	dur := time.Since(start)
	loadDuration.Observe(dur.Seconds())
	loadsTotal.WithLabelValues("ok").Inc()
	m.publisher.Publish(Event{Name: EventLoadDone, Path: p, Fields: map[string]any{
		"context_tokens": contextTokens,
		"gpu_layers":     layers,
		"duration_ms":    dur.Milliseconds(),
	}})
	m.log.Info().Str("path", p).Int("context_tokens", contextTokens).
		Stringer("placement", m.cur.placement).Dur("dur", dur).Msg("model loaded")
	return nil
}

func (m *Manager) loadModel(path string, gpuLayers, contextTokens int) (runtime.Model, error) {
	if m.backend == nil {
		return nil, runtime.ErrUnavailable
	}
	model, err := m.backend.Load(path, runtime.LoadParams{
		GPULayers:     gpuLayers,
		ContextTokens: contextTokens,
		Threads:       m.threads,
	})
	if err == nil && model == nil {
		err = errors.New("runtime returned no model")
	}
	return model, err
}

// enter acquires the exclusive load/unload section.
func (m *Manager) enter(ctx context.Context) (func(), error) {
	t := time.NewTimer(m.lockWait)
	defer t.Stop()
	select {
	case m.excl <- struct{}{}:
		return func() { <-m.excl }, nil
	case <-ctx.Done():
		return nil, &LifecycleError{Kind: LockContention, Err: ctx.Err()}
	case <-t.C:
		return nil, &LifecycleError{Kind: LockContention}
	}
}
