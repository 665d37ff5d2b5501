package manager

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"memoryd/internal/runtime"
)

// createModelFile writes a small placeholder model artifact and returns its path.
func createModelFile(t *testing.T, dir, name string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte("GGUF"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return p
}

// newTestManager returns a manager over a scripted backend with no settle delay.
func newTestManager(t *testing.T, b *runtime.ScriptedBackend, pub EventPublisher) *Manager {
	t.Helper()
	if b == nil {
		b = &runtime.ScriptedBackend{Pieces: []string{"ok"}}
	}
	return New(Config{Backend: b, SettleDelay: -1, LockWait: time.Second, Publisher: pub})
}

// testCtx returns a context with a short timeout, canceled on test cleanup.
func testCtx(t *testing.T) context.Context {
	t.Helper()
	c, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return c
}

// recordingPublisher keeps the names of published lifecycle events.
type recordingPublisher struct {
	mu    sync.Mutex
	names []string
}

func (p *recordingPublisher) Publish(e Event) {
	p.mu.Lock()
	p.names = append(p.names, e.Name)
	p.mu.Unlock()
}

// Names returns the event names in publish order.
func (p *recordingPublisher) Names() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.names...)
}
