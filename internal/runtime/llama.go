//go:build llama

package runtime

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	llama "github.com/go-skynet/go-llama.cpp"
)

// LlamaBackend loads GGUF models in-process through go-llama.cpp.
type LlamaBackend struct {
	threads int
}

// NewLlamaBackend returns a backend whose predictions use threads CPU threads.
func NewLlamaBackend(threads int) *LlamaBackend {
	return &LlamaBackend{threads: threads}
}

func (b *LlamaBackend) SupportsGPU() bool { return gpuOffload }

func (b *LlamaBackend) Name() string { return "llama.cpp" }

func (b *LlamaBackend) Load(path string, params LoadParams) (m Model, err error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("model path is empty")
	}
	defer func() {
		if r := recover(); r != nil {
			m, err = nil, fmt.Errorf("llama load panic: %v", r)
		}
	}()
	opts := []llama.ModelOption{
		llama.SetContext(params.ContextTokens),
		llama.SetGPULayers(params.GPULayers),
	}
	l, err := llama.New(path, opts...)
	if err != nil {
		return nil, err
	}
	threads := params.Threads
	if threads <= 0 {
		threads = b.threads
	}
	return &llamaModel{l: l, threads: threads}, nil
}

// llamaModel owns the loaded model. go-llama.cpp runs its own sampling loop
// and exposes no per-position logits, so the model is driven through Predict.
type llamaModel struct {
	mu      sync.Mutex
	l       *llama.LLama
	threads int
}

func (m *llamaModel) Tokenize(text string) ([]Token, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.l == nil {
		return nil, errors.New("llama model closed")
	}
	_, ids, err := m.l.TokenizeString(text)
	if err != nil {
		return nil, err
	}
	out := make([]Token, len(ids))
	for i, id := range ids {
		out[i] = Token(id)
	}
	return out, nil
}

func (m *llamaModel) Detokenize(Token) (string, error) { return "", ErrNotSupported }

func (m *llamaModel) IsEndOfSequence(Token) bool { return false }

func (m *llamaModel) NewSession(int) (Session, error) { return nil, ErrNotSupported }

func (m *llamaModel) Predict(ctx context.Context, prompt string, opts PredictOptions, onPiece func(string) bool) (err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.l == nil {
		return errors.New("llama model closed")
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("llama predict panic: %v", r)
		}
	}()
	m.l.SetTokenCallback(func(tok string) bool {
		if ctx.Err() != nil {
			return false
		}
		return onPiece(tok)
	})
	threads := opts.Threads
	if threads <= 0 {
		threads = m.threads
	}
	po := []llama.PredictOption{
		llama.SetTokens(max(1, opts.MaxTokens)),
		llama.SetThreads(max(1, threads)),
		llama.SetTemperature(opts.Temperature),
		llama.SetSeed(int(opts.Seed)),
	}
	if len(opts.StopWords) > 0 {
		po = append(po, llama.SetStopWords(opts.StopWords...))
	}
	if _, err := m.l.Predict(prompt, po...); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}
	return nil
}

func (m *llamaModel) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.l != nil {
		m.l.Free()
		m.l = nil
	}
	return nil
}
