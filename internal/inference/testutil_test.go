package inference

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"memoryd/internal/manager"
	"memoryd/internal/runtime"
)

// loadedManager returns a manager with a scripted model loaded.
func loadedManager(t *testing.T, b *runtime.ScriptedBackend, ctxTokens int) *manager.Manager {
	t.Helper()
	p := filepath.Join(t.TempDir(), "m.gguf")
	if err := os.WriteFile(p, []byte("GGUF"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	m := manager.New(manager.Config{Backend: b, SettleDelay: -1, LockWait: time.Second})
	if err := m.Load(testCtx(t), p, ctxTokens); err != nil {
		t.Fatalf("load: %v", err)
	}
	return m
}

func newTestEngine(t *testing.T, b *runtime.ScriptedBackend) *Engine {
	t.Helper()
	return New(Config{Models: loadedManager(t, b, 2048), MaxWait: 200 * time.Millisecond})
}

func testCtx(t *testing.T) context.Context {
	t.Helper()
	c, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return c
}

// collect runs a generation and returns the fragments it produced.
func collect(t *testing.T, e *Engine, req Request) ([]string, Result, error) {
	t.Helper()
	var got []string
	res, err := e.Generate(testCtx(t), req, func(f string) error {
		got = append(got, f)
		return nil
	})
	return got, res, err
}
