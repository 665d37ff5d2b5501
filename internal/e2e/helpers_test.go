package e2e

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"memoryd/internal/assistant"
	"memoryd/internal/httpapi"
	"memoryd/internal/inference"
	"memoryd/internal/manager"
	"memoryd/internal/memindex"
	"memoryd/internal/memstore"
	"memoryd/internal/runtime"
	"memoryd/pkg/types"
)

type stack struct {
	url     string
	svc     *assistant.Service
	backend *runtime.ScriptedBackend
}

// newStack serves the whole application over a real listener, with one
// scripted model file alpha.gguf in the models directory.
func newStack(t *testing.T, b *runtime.ScriptedBackend, maxWait time.Duration) *stack {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "alpha.gguf"), []byte("GGUF"), 0o644); err != nil {
		t.Fatalf("write model: %v", err)
	}
	st, err := memstore.Open(ctx, filepath.Join(dir, "data", "memoryd.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	vs, err := memindex.NewSQLStore(ctx, st.DB())
	if err != nil {
		t.Fatalf("vector store: %v", err)
	}
	ix := memindex.New(memindex.Config{Embedder: memindex.WrapLRU(memindex.HashEmbedder{}, 64, time.Minute), Store: vs})
	mgr := manager.New(manager.Config{Backend: b, SettleDelay: -1, LockWait: time.Second})
	eng := inference.New(inference.Config{Models: mgr, MaxWait: maxWait})
	svc := assistant.New(assistant.Config{Store: st, Index: ix, Engine: eng, Manager: mgr, ModelsDir: dir})

	srv := httptest.NewServer(httpapi.NewMux(svc))
	t.Cleanup(func() {
		eng.Stop()
		srv.Close()
		svc.Wait()
	})
	return &stack{url: srv.URL, svc: svc, backend: b}
}

func (s *stack) post(t *testing.T, path string, body any) *http.Response {
	t.Helper()
	var rd io.Reader = http.NoBody
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		rd = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(http.MethodPost, s.url+path, rd)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	return resp
}

func (s *stack) get(t *testing.T, path string) *http.Response {
	t.Helper()
	resp, err := http.Get(s.url + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return v
}

// readStream reads NDJSON events until the terminal one.
func readStream(t *testing.T, sc *bufio.Scanner) (string, types.StreamEvent) {
	t.Helper()
	var text string
	for sc.Scan() {
		var ev types.StreamEvent
		if err := json.Unmarshal(sc.Bytes(), &ev); err != nil {
			t.Fatalf("line %q: %v", sc.Text(), err)
		}
		if ev.Finished {
			if sc.Scan() {
				t.Fatalf("event after the terminal one: %q", sc.Text())
			}
			return text, ev
		}
		text += ev.Fragment
	}
	t.Fatalf("stream ended without a terminal event: %v", sc.Err())
	return "", types.StreamEvent{}
}
