package manager

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"memoryd/internal/runtime"
)

func TestStatusUnloadedByDefault(t *testing.T) {
	m := newTestManager(t, nil, nil)
	st := m.Status()
	if st.Loaded {
		t.Fatalf("expected unloaded, got %+v", st)
	}
	if m.Ready() {
		t.Fatalf("ready without a model")
	}
	if _, _, ok := m.Acquire(); ok {
		t.Fatalf("acquire succeeded without a model")
	}
}

func TestLoadCPUOnly(t *testing.T) {
	b := &runtime.ScriptedBackend{}
	m := newTestManager(t, b, nil)
	p := createModelFile(t, t.TempDir(), "a.gguf")
	if err := m.Load(testCtx(t), p, 4096); err != nil {
		t.Fatalf("load: %v", err)
	}
	st := m.Status()
	if !st.Loaded || st.ContextTokens != 4096 || st.Placement.GPULayers != 0 || st.Path != p {
		t.Fatalf("unexpected status: %+v", st)
	}
	if m.PlacementCapability() != CPUOnly {
		t.Fatalf("capability=%s", m.PlacementCapability())
	}
	_, params := b.LastLoad()
	if params.GPULayers != 0 || params.ContextTokens != 4096 {
		t.Fatalf("unexpected load params: %+v", params)
	}
}

func TestLoadGPUOffloadsAllLayers(t *testing.T) {
	b := &runtime.ScriptedBackend{GPU: true}
	m := newTestManager(t, b, nil)
	if m.PlacementCapability() != GPUCapable {
		t.Fatalf("capability=%s", m.PlacementCapability())
	}
	p := createModelFile(t, t.TempDir(), "a.gguf")
	if err := m.Load(testCtx(t), p, 0); err != nil {
		t.Fatalf("load: %v", err)
	}
	st := m.Status()
	if st.Placement.GPULayers != 99 || !st.Placement.OnGPU() {
		t.Fatalf("expected 99 gpu layers, got %+v", st.Placement)
	}
	if st.ContextTokens != DefaultContextTokens {
		t.Fatalf("expected default context, got %d", st.ContextTokens)
	}
	if info := m.GPUInfo(); !info.Available || info.Backend != "GPU" || info.Runtime != "scripted" {
		t.Fatalf("unexpected gpu info: %+v", info)
	}
}

func TestLoadMissingFileKeepsCurrentModel(t *testing.T) {
	b := &runtime.ScriptedBackend{}
	pub := &recordingPublisher{}
	m := newTestManager(t, b, pub)
	p := createModelFile(t, t.TempDir(), "good.gguf")
	if err := m.Load(testCtx(t), p, 2048); err != nil {
		t.Fatalf("load: %v", err)
	}
	before := m.Status()

	err := m.Load(testCtx(t), "/nonexistent/model.bin", 2048)
	if !IsFileNotFound(err) {
		t.Fatalf("expected FileNotFound, got %v", err)
	}
	var le *LifecycleError
	if !errors.As(err, &le) || le.StatusCode() != http.StatusNotFound {
		t.Fatalf("expected 404 lifecycle error, got %#v", err)
	}
	after := m.Status()
	if !after.Loaded || after.Path != before.Path || after.ContextTokens != before.ContextTokens {
		t.Fatalf("status changed after failed load: before=%+v after=%+v", before, after)
	}
	if b.Closes() != 0 {
		t.Fatalf("working model was closed")
	}
	for _, name := range pub.Names() {
		if name == EventUnloadDone {
			t.Fatalf("unexpected unload event: %v", pub.Names())
		}
	}
}

func TestLoadReplacesPreviousModel(t *testing.T) {
	b := &runtime.ScriptedBackend{}
	pub := &recordingPublisher{}
	m := newTestManager(t, b, pub)
	dir := t.TempDir()
	p1 := createModelFile(t, dir, "one.gguf")
	p2 := createModelFile(t, dir, "two.gguf")
	if err := m.Load(testCtx(t), p1, 1024); err != nil {
		t.Fatalf("load one: %v", err)
	}
	if err := m.Load(testCtx(t), p2, 2048); err != nil {
		t.Fatalf("load two: %v", err)
	}
	if b.Loads() != 2 || b.Closes() != 1 {
		t.Fatalf("loads=%d closes=%d", b.Loads(), b.Closes())
	}
	if st := m.Status(); st.Path != p2 || st.ContextTokens != 2048 {
		t.Fatalf("unexpected status: %+v", st)
	}
	want := []string{EventLoadStart, EventLoadDone, EventLoadStart, EventUnloadDone, EventLoadDone}
	got := pub.Names()
	if len(got) != len(want) {
		t.Fatalf("events=%v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("events=%v want %v", got, want)
		}
	}
}

func TestLoadRuntimeFailure(t *testing.T) {
	b := &runtime.ScriptedBackend{LoadErr: errors.New("bad magic")}
	m := newTestManager(t, b, nil)
	p := createModelFile(t, t.TempDir(), "broken.gguf")
	err := m.Load(testCtx(t), p, 2048)
	if !IsRuntimeLoadFailed(err) {
		t.Fatalf("expected RuntimeLoadFailed, got %v", err)
	}
	if m.Status().Loaded {
		t.Fatalf("status loaded after failure")
	}
	if m.LastError() == "" {
		t.Fatalf("last error not recorded")
	}
}

func TestLoadWithoutBackendIsUnavailable(t *testing.T) {
	m := New(Config{SettleDelay: -1})
	p := createModelFile(t, t.TempDir(), "a.gguf")
	err := m.Load(testCtx(t), p, 2048)
	var le *LifecycleError
	if !errors.As(err, &le) || le.StatusCode() != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 lifecycle error, got %v", err)
	}
}

func TestUnloadIdempotent(t *testing.T) {
	b := &runtime.ScriptedBackend{}
	m := newTestManager(t, b, nil)
	if err := m.Unload(testCtx(t)); err != nil {
		t.Fatalf("unload empty: %v", err)
	}
	p := createModelFile(t, t.TempDir(), "a.gguf")
	if err := m.Load(testCtx(t), p, 2048); err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := m.Unload(testCtx(t)); err != nil {
		t.Fatalf("unload: %v", err)
	}
	if err := m.Unload(testCtx(t)); err != nil {
		t.Fatalf("second unload: %v", err)
	}
	if m.Status().Loaded || b.Closes() != 1 {
		t.Fatalf("loaded=%v closes=%d", m.Status().Loaded, b.Closes())
	}
}

func TestUnloadWaitsForAcquiredHandle(t *testing.T) {
	b := &runtime.ScriptedBackend{}
	m := newTestManager(t, b, nil)
	p := createModelFile(t, t.TempDir(), "a.gguf")
	if err := m.Load(testCtx(t), p, 2048); err != nil {
		t.Fatalf("load: %v", err)
	}
	h, release, ok := m.Acquire()
	if !ok || h.Path() != p {
		t.Fatalf("acquire failed")
	}
	done := make(chan struct{})
	go func() {
		_ = m.Unload(context.Background())
		close(done)
	}()
	select {
	case <-done:
		t.Fatalf("unload finished while handle was held")
	case <-time.After(50 * time.Millisecond):
	}
	if b.Closes() != 0 {
		t.Fatalf("model closed while in use")
	}
	release()
	release() // idempotent
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("unload did not finish after release")
	}
	if b.Closes() != 1 {
		t.Fatalf("closes=%d", b.Closes())
	}
}

func TestLockContention(t *testing.T) {
	m := New(Config{Backend: &runtime.ScriptedBackend{}, SettleDelay: -1, LockWait: 20 * time.Millisecond})
	m.excl <- struct{}{} // hold the exclusive section
	defer func() { <-m.excl }()
	p := createModelFile(t, t.TempDir(), "a.gguf")
	if err := m.Load(context.Background(), p, 2048); !IsLockContention(err) {
		t.Fatalf("expected LockContention, got %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := m.Unload(ctx); !IsLockContention(err) {
		t.Fatalf("expected LockContention on canceled ctx, got %v", err)
	}
}

func TestConcurrentLoadsAreSerialized(t *testing.T) {
	b := &runtime.ScriptedBackend{}
	m := New(Config{Backend: b, SettleDelay: time.Millisecond, LockWait: 5 * time.Second})
	dir := t.TempDir()
	paths := []string{
		createModelFile(t, dir, "a.gguf"),
		createModelFile(t, dir, "b.gguf"),
		createModelFile(t, dir, "c.gguf"),
	}
	var wg sync.WaitGroup
	for _, p := range paths {
		wg.Add(1)
		go func(p string) {
			defer wg.Done()
			if err := m.Load(context.Background(), p, 512); err != nil {
				t.Errorf("load %s: %v", p, err)
			}
		}(p)
	}
	wg.Wait()
	if b.Loads() != 3 || b.Closes() != 2 {
		t.Fatalf("loads=%d closes=%d", b.Loads(), b.Closes())
	}
	if !m.Status().Loaded || m.LoadsTotal() != 3 {
		t.Fatalf("unexpected final status %+v loads=%d", m.Status(), m.LoadsTotal())
	}
}
