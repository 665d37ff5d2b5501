// Package runtime defines the boundary between memoryd and the engine that
// executes a model's forward pass. The engine itself is external: the
// go-llama.cpp backend is compiled with `-tags=llama`, default builds get a
// stub that reports the dependency as unavailable, and ScriptedBackend serves
// tests and UI development.
package runtime

import (
	"context"
	"errors"
)

// Token is a vocabulary id produced by a model's tokenizer.
type Token int32

// LoadParams configures how a model artifact is placed in memory.
type LoadParams struct {
	// GPULayers is the number of layers offloaded to a GPU; 0 keeps the model on the CPU.
	GPULayers int
	// ContextTokens is the window sessions created from the model default to.
	ContextTokens int
	// Threads used for prompt processing and decoding (0 = runtime default).
	Threads int
}

// Backend loads model artifacts.
type Backend interface {
	// SupportsGPU reports whether layers can be offloaded to a GPU.
	SupportsGPU() bool
	// Name identifies the backend in logs and status output ("llama.cpp", "scripted").
	Name() string
	Load(path string, params LoadParams) (Model, error)
}

// Model is a loaded model artifact.
type Model interface {
	Tokenize(text string) ([]Token, error)
	Detokenize(tok Token) (string, error)
	IsEndOfSequence(tok Token) bool
	// NewSession creates an inference context holding up to ctxTokens positions.
	NewSession(ctxTokens int) (Session, error)
	Close() error
}

// Session is one inference context. Positions advance with each Decode.
type Session interface {
	// Decode appends batch at the next positions and evaluates it.
	Decode(batch []Token) error
	// LogitsAt returns the logits for the i-th token of the last decoded batch.
	LogitsAt(i int) ([]float32, error)
	Close() error
}

// PredictOptions drive a runtime-owned sampling loop.
type PredictOptions struct {
	MaxTokens   int
	Temperature float32
	Seed        uint32
	Threads     int
	StopWords   []string
}

// Predictor is implemented by models whose runtime only exposes a complete
// sampling loop instead of per-position logits. onPiece receives every
// detokenized piece; returning false stops the loop.
type Predictor interface {
	Predict(ctx context.Context, prompt string, opts PredictOptions, onPiece func(piece string) bool) error
}

// ErrUnavailable is returned by backends compiled without their native library.
var ErrUnavailable = errors.New("model runtime not built into this binary")

// ErrNotSupported is returned by operations a runtime does not expose.
var ErrNotSupported = errors.New("operation not supported by model runtime")
