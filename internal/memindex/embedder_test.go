package memindex

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestHashEmbedderDeterministicAndNormalized(t *testing.T) {
	h := HashEmbedder{Dim: 64}
	a, _ := h.Embed(context.Background(), []string{"passage: Hello world", "query: hello, WORLD!"})
	if len(a[0]) != 64 {
		t.Fatalf("dim=%d", len(a[0]))
	}
	if s := Cosine(a[0], a[1]); !near(s, 1) {
		t.Fatalf("framing or case changed the vector: %v", s)
	}
	var n float64
	for _, f := range a[0] {
		n += float64(f * f)
	}
	if n < 0.999 || n > 1.001 {
		t.Fatalf("norm^2=%v", n)
	}
	empty, _ := h.Embed(context.Background(), []string{""})
	if Cosine(empty[0], a[0]) != 0 {
		t.Fatalf("empty text should give a zero vector")
	}
}

func TestLRUCachesPerText(t *testing.T) {
	inner := &countingEmbedder{}
	e := WrapLRU(inner, 8, time.Minute)
	ctx := context.Background()
	v1, err := e.Embed(ctx, []string{"a", "b"})
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	v1[0][0] = 42 // callers may mutate results
	v2, err := e.Embed(ctx, []string{"b", "a", "c"})
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	if got := inner.embedded(); len(got) != 3 || got[2] != "c" {
		t.Fatalf("inner saw %q", got)
	}
	if v2[1][0] == 42 {
		t.Fatalf("cache returned a shared slice")
	}
	if e.Name() != "counting" {
		t.Fatalf("name=%s", e.Name())
	}
	if WrapLRU(inner, 0, time.Minute) != Embedder(inner) {
		t.Fatalf("zero size should not wrap")
	}
}

func TestOllamaEmbedderRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embeddings" {
			http.NotFound(w, r)
			return
		}
		var req ollamaEmbedRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if calls.Add(1) == 1 {
			http.Error(w, "warming up", http.StatusServiceUnavailable)
			return
		}
		if req.Model != "mini" || req.Prompt != "query: hi" {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(ollamaEmbedResponse{Embedding: []float64{0.5, -0.25}})
	}))
	defer srv.Close()

	e := NewOllamaEmbedder(OllamaConfig{BaseURL: srv.URL, Model: "mini", MaxRetries: 3, Backoff: time.Millisecond})
	vecs, err := e.Embed(context.Background(), []string{"query: hi"})
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	if len(vecs) != 1 || vecs[0][0] != 0.5 || vecs[0][1] != -0.25 {
		t.Fatalf("vecs=%v", vecs)
	}
	if calls.Load() != 2 {
		t.Fatalf("calls=%d", calls.Load())
	}
	if e.Name() != "ollama-mini" {
		t.Fatalf("name=%s", e.Name())
	}
}

func TestOllamaEmbedderClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()
	e := NewOllamaEmbedder(OllamaConfig{BaseURL: srv.URL, MaxRetries: 3, Backoff: time.Millisecond})
	if _, err := e.Embed(context.Background(), []string{"x"}); err == nil {
		t.Fatalf("expected error")
	}
	if calls.Load() != 1 {
		t.Fatalf("4xx retried: calls=%d", calls.Load())
	}
}
