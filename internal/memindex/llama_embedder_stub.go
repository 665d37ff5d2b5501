//go:build !llama

package memindex

import (
	"context"

	"memoryd/internal/runtime"
)

// LlamaEmbedder is unavailable without the 'llama' build tag.
type LlamaEmbedder struct{}

// NewLlamaEmbedder always fails with runtime.ErrUnavailable.
func NewLlamaEmbedder(path string, contextTokens, threads int) (*LlamaEmbedder, error) {
	return nil, runtime.ErrUnavailable
}

func (e *LlamaEmbedder) Name() string { return "llama" }

func (e *LlamaEmbedder) Embed(context.Context, []string) ([][]float32, error) {
	return nil, runtime.ErrUnavailable
}

func (e *LlamaEmbedder) Close() error { return nil }
