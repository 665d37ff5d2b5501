package runtime

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"
)

// Token ids used by scripted models.
const (
	ScriptedEOS   Token = 2
	scriptedFirst Token = 1000
)

// ScriptedBackend is an in-memory Backend whose models always complete with
// the same pieces. Each step puts the highest logit on the next scripted
// piece, so greedy decoding reproduces Pieces exactly and then emits
// ScriptedEOS. Used by tests and by `serve --runtime=scripted`.
type ScriptedBackend struct {
	Pieces []string
	GPU    bool
	// Native makes loaded models implement Predictor instead of exposing logits.
	Native bool

	LoadErr     error
	TokenizeErr error
	// DecodeErrAt fails the n-th Decode call of a session (1-based, 0 = never).
	DecodeErrAt int
	// StepDelay is slept on every generation step after the prompt.
	StepDelay   time.Duration

	mu         sync.Mutex
	loads      int
	closes     int
	lastParams LoadParams
	lastPath   string
	seeds      []uint32
	lastPrompt string
}

func (b *ScriptedBackend) SupportsGPU() bool { return b.GPU }

func (b *ScriptedBackend) Name() string { return "scripted" }

func (b *ScriptedBackend) Load(path string, params LoadParams) (Model, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.LoadErr != nil {
		return nil, b.LoadErr
	}
	b.loads++
	b.lastParams = params
	b.lastPath = path
	m := &scriptedModel{b: b, ctxTokens: params.ContextTokens}
	if b.Native {
		return &scriptedPredictModel{scriptedModel: m}, nil
	}
	return m, nil
}

// Loads reports how many models were loaded.
func (b *ScriptedBackend) Loads() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.loads
}

// Closes reports how many models were closed.
func (b *ScriptedBackend) Closes() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closes
}

// LastLoad returns the path and parameters of the most recent load.
func (b *ScriptedBackend) LastLoad() (string, LoadParams) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastPath, b.lastParams
}

// LastPrompt returns the most recent text tokenized or predicted.
func (b *ScriptedBackend) LastPrompt() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastPrompt
}

// Seeds returns the seeds passed to Predict, in order.
func (b *ScriptedBackend) Seeds() []uint32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]uint32(nil), b.seeds...)
}

type scriptedModel struct {
	b         *ScriptedBackend
	ctxTokens int
	closed    bool
}

// Tokenize maps every byte to one token; empty text yields no tokens.
func (m *scriptedModel) Tokenize(text string) ([]Token, error) {
	if m.b.TokenizeErr != nil {
		return nil, m.b.TokenizeErr
	}
	m.b.mu.Lock()
	m.b.lastPrompt = text
	m.b.mu.Unlock()
	out := make([]Token, 0, len(text))
	for i := 0; i < len(text); i++ {
		out = append(out, Token(10+int(text[i])))
	}
	return out, nil
}

func (m *scriptedModel) Detokenize(tok Token) (string, error) {
	i := int(tok - scriptedFirst)
	if i < 0 || i >= len(m.b.Pieces) {
		return "", fmt.Errorf("unknown token %d", tok)
	}
	return m.b.Pieces[i], nil
}

func (m *scriptedModel) IsEndOfSequence(tok Token) bool { return tok == ScriptedEOS }

func (m *scriptedModel) NewSession(ctxTokens int) (Session, error) {
	if m.closed {
		return nil, errors.New("model closed")
	}
	if ctxTokens <= 0 {
		ctxTokens = m.ctxTokens
	}
	return &scriptedSession{m: m, ctxTokens: ctxTokens}, nil
}

func (m *scriptedModel) Close() error {
	m.b.mu.Lock()
	defer m.b.mu.Unlock()
	if !m.closed {
		m.closed = true
		m.b.closes++
	}
	return nil
}

type scriptedSession struct {
	m         *scriptedModel
	ctxTokens int
	pos       int
	decodes   int
	step      int
	lastBatch int
}

func (s *scriptedSession) Decode(batch []Token) error {
	s.decodes++
	if s.m.b.DecodeErrAt > 0 && s.decodes == s.m.b.DecodeErrAt {
		return errors.New("scripted decode failure")
	}
	if len(batch) == 0 {
		return errors.New("empty batch")
	}
	if s.ctxTokens > 0 && s.pos+len(batch) > s.ctxTokens {
		return fmt.Errorf("context window exceeded: %d > %d", s.pos+len(batch), s.ctxTokens)
	}
	if s.decodes > 1 {
		s.step++
		if d := s.m.b.StepDelay; d > 0 {
			time.Sleep(d)
		}
	}
	s.pos += len(batch)
	s.lastBatch = len(batch)
	return nil
}

// LogitsAt scores ScriptedEOS and every piece; the next scripted piece (or
// EOS once the script is exhausted) gets the highest logit. Ids the model
// cannot detokenize are -Inf so sampling never draws them.
func (s *scriptedSession) LogitsAt(i int) ([]float32, error) {
	if i != s.lastBatch-1 {
		return nil, fmt.Errorf("logits unavailable for index %d", i)
	}
	n := int(scriptedFirst) + len(s.m.b.Pieces)
	logits := make([]float32, n)
	inf := float32(math.Inf(-1))
	for id := range logits {
		if Token(id) != ScriptedEOS && Token(id) < scriptedFirst {
			logits[id] = inf
		}
	}
	want := ScriptedEOS
	if s.step < len(s.m.b.Pieces) {
		want = scriptedFirst + Token(s.step)
	}
	logits[want] = 10
	return logits, nil
}

func (s *scriptedSession) Close() error { return nil }

type scriptedPredictModel struct {
	*scriptedModel
}

func (m *scriptedPredictModel) NewSession(int) (Session, error) { return nil, ErrNotSupported }

func (m *scriptedPredictModel) Predict(ctx context.Context, prompt string, opts PredictOptions, onPiece func(string) bool) error {
	m.b.mu.Lock()
	m.b.seeds = append(m.b.seeds, opts.Seed)
	m.b.lastPrompt = prompt
	m.b.mu.Unlock()
	for i, p := range m.b.Pieces {
		if opts.MaxTokens > 0 && i >= opts.MaxTokens {
			return nil
		}
		if ctx.Err() != nil {
			return nil
		}
		if d := m.b.StepDelay; d > 0 && i > 0 {
			time.Sleep(d)
		}
		if !onPiece(p) {
			return nil
		}
	}
	return nil
}
