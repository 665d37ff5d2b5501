package assistant

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"memoryd/internal/inference"
	"memoryd/internal/manager"
	"memoryd/internal/memindex"
	"memoryd/internal/memstore"
	"memoryd/internal/runtime"
)

type fixture struct {
	svc     *Service
	store   *memstore.Store
	index   *memindex.Index
	backend *runtime.ScriptedBackend
	mgr     *manager.Manager
	dir     string
}

type options struct {
	embedder memindex.Embedder
	noLoad   bool
}

// newFixture builds a Service over a temp SQLite file, the hash embedder and
// a scripted model answering "Hello there".
func newFixture(t *testing.T, opt options) *fixture {
	t.Helper()
	ctx := testCtx(t)
	dir := t.TempDir()
	st, err := memstore.Open(ctx, filepath.Join(dir, "memoryd.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	vs, err := memindex.NewSQLStore(ctx, st.DB())
	if err != nil {
		t.Fatalf("vector store: %v", err)
	}
	emb := opt.embedder
	if emb == nil {
		emb = memindex.HashEmbedder{Dim: 4096}
	}
	ix := memindex.New(memindex.Config{Embedder: emb, Store: vs})

	b := &runtime.ScriptedBackend{Pieces: []string{"Hello", " there"}}
	mgr := manager.New(manager.Config{Backend: b, SettleDelay: -1, LockWait: time.Second})
	if !opt.noLoad {
		p := writeModel(t, dir, "m.gguf")
		if err := mgr.Load(ctx, p, 0); err != nil {
			t.Fatalf("load: %v", err)
		}
	}
	eng := inference.New(inference.Config{Models: mgr, MaxWait: 200 * time.Millisecond})
	svc := New(Config{Store: st, Index: ix, Engine: eng, Manager: mgr, ModelsDir: dir, Temperature: 0})
	t.Cleanup(svc.Wait)
	return &fixture{svc: svc, store: st, index: ix, backend: b, mgr: mgr, dir: dir}
}

func writeModel(t *testing.T, dir, name string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte("GGUF"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return p
}

var errEmbed = errors.New("embedding model not ready")

type failingEmbedder struct{}

func (failingEmbedder) Name() string { return "failing" }

func (failingEmbedder) Embed(context.Context, []string) ([][]float32, error) { return nil, errEmbed }

// drain collects the fragments and the terminal event of a stream.
func drain(t *testing.T, events <-chan inference.Event) (string, inference.Event) {
	t.Helper()
	var text string
	var last inference.Event
	n := 0
	timeout := time.After(2 * time.Second)
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				if n != 1 {
					t.Fatalf("got %d finished events", n)
				}
				return text, last
			}
			if ev.Finished {
				n++
				last = ev
				continue
			}
			text += ev.Fragment
		case <-timeout:
			t.Fatalf("stream did not finish")
		}
	}
}

func testCtx(t *testing.T) context.Context {
	t.Helper()
	c, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return c
}
