//go:build llama

package memindex

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	llama "github.com/go-skynet/go-llama.cpp"
)

// LlamaEmbedder computes embeddings in-process with a GGUF embedding model.
type LlamaEmbedder struct {
	mu      sync.Mutex
	l       *llama.LLama
	name    string
	threads int
}

// NewLlamaEmbedder loads the model at path with embeddings enabled.
func NewLlamaEmbedder(path string, contextTokens, threads int) (e *LlamaEmbedder, err error) {
	defer func() {
		if r := recover(); r != nil {
			e, err = nil, fmt.Errorf("llama embedder load panic: %v", r)
		}
	}()
	if contextTokens <= 0 {
		contextTokens = 512
	}
	l, err := llama.New(path, llama.EnableEmbeddings, llama.SetContext(contextTokens))
	if err != nil {
		return nil, err
	}
	return &LlamaEmbedder{l: l, name: "llama-" + filepath.Base(path), threads: max(1, threads)}, nil
}

func (e *LlamaEmbedder) Name() string { return e.name }

func (e *LlamaEmbedder) Embed(ctx context.Context, texts []string) (out [][]float32, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.l == nil {
		return nil, errors.New("llama embedder closed")
	}
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("llama embeddings panic: %v", r)
		}
	}()
	out = make([][]float32, len(texts))
	for i, t := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		v, err := e.l.Embeddings(t, llama.SetThreads(e.threads))
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (e *LlamaEmbedder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.l != nil {
		e.l.Free()
		e.l = nil
	}
	return nil
}
