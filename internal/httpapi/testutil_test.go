package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"memoryd/internal/assistant"
	"memoryd/internal/inference"
	"memoryd/internal/manager"
	"memoryd/internal/memindex"
	"memoryd/internal/memstore"
	"memoryd/internal/runtime"
)

type testServer struct {
	h       http.Handler
	svc     *assistant.Service
	backend *runtime.ScriptedBackend
	dir     string
}

// newTestServer wires the real service over a temp database, the hash
// embedder and a scripted model answering "Hello there".
func newTestServer(t *testing.T, load bool) *testServer {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
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
	ix := memindex.New(memindex.Config{Embedder: memindex.HashEmbedder{Dim: 4096}, Store: vs})

	b := &runtime.ScriptedBackend{Pieces: []string{"Hello", " there"}}
	mgr := manager.New(manager.Config{Backend: b, SettleDelay: -1, LockWait: time.Second})
	writeFile(t, filepath.Join(dir, "m.gguf"))
	if load {
		if err := mgr.Load(ctx, filepath.Join(dir, "m.gguf"), 0); err != nil {
			t.Fatalf("load: %v", err)
		}
	}
	eng := inference.New(inference.Config{Models: mgr, MaxWait: 200 * time.Millisecond})
	svc := assistant.New(assistant.Config{Store: st, Index: ix, Engine: eng, Manager: mgr, ModelsDir: dir})
	t.Cleanup(svc.Wait)
	return &testServer{h: NewMux(svc), svc: svc, backend: b, dir: dir}
}

func writeFile(t *testing.T, p string) {
	t.Helper()
	if err := os.WriteFile(p, []byte("GGUF"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func (ts *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd *bytes.Reader
	switch b := body.(type) {
	case nil:
		rd = bytes.NewReader(nil)
	case string:
		rd = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	ts.h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("json: %v body=%s", err, w.Body.String())
	}
	return v
}
