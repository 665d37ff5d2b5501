package memindex

import (
	"context"
	"database/sql"
	"path/filepath"
	"sync"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "index.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newTestStore(t *testing.T) *SQLStore {
	t.Helper()
	s, err := NewSQLStore(testCtx(t), openTestDB(t))
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	return s
}

// countingEmbedder records every text it embeds.
type countingEmbedder struct {
	inner Embedder
	err   error

	mu    sync.Mutex
	texts []string
	calls int
}

func (c *countingEmbedder) Name() string { return "counting" }

func (c *countingEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	c.mu.Lock()
	c.calls++
	c.texts = append(c.texts, texts...)
	err := c.err
	c.mu.Unlock()
	if err != nil {
		return nil, err
	}
	inner := c.inner
	if inner == nil {
		inner = HashEmbedder{Dim: 32}
	}
	return inner.Embed(ctx, texts)
}

func (c *countingEmbedder) embedded() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.texts...)
}

// fixedEmbedder returns vectors looked up by text.
type fixedEmbedder map[string][]float32

func (f fixedEmbedder) Name() string { return "fixed" }

func (f fixedEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = f[t]
	}
	return out, nil
}

func newTestIndex(t *testing.T, e Embedder) *Index {
	t.Helper()
	return New(Config{Embedder: e, Store: newTestStore(t)})
}

func testCtx(t *testing.T) context.Context {
	t.Helper()
	c, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return c
}
