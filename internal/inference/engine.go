// Package inference turns a rendered prompt into a cancellable stream of
// text fragments using the model held by the lifecycle manager.
//
// Engine is the explicit inference context: it owns the draw counter, the
// shared cancellation flag and the single generation slot. Sampling runs
// in-process when the runtime exposes logits; runtimes that only provide a
// complete sampling loop (runtime.Predictor) are driven with the same
// temperature, seed and stop handling.
package inference

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"memoryd/internal/manager"
	"memoryd/internal/runtime"
)

// Defaults applied when corresponding Config fields are unset.
const (
	DefaultMaxTokens = 512
	defaultMaxWait   = 30 * time.Second
)

// ModelSource hands out the currently loaded model. *manager.Manager
// implements it.
type ModelSource interface {
	Acquire() (h *manager.Handle, release func(), ok bool)
}

// Config holds Engine tunables.
type Config struct {
	Models ModelSource
	// StopSequences defaults to DefaultStopSequences.
	StopSequences []string
	MaxTokens     int
	// MaxWait bounds how long a generation waits for the running one.
	MaxWait time.Duration
	Threads int
	Logger  *zerolog.Logger
}

type Engine struct {
	models    ModelSource
	stops     []string
	maxTokens int
	maxWait   time.Duration
	threads   int
	log       zerolog.Logger

	slot chan struct{}
	seed atomic.Uint64
	stop atomic.Bool
}

func New(cfg Config) *Engine {
	e := &Engine{
		models:    cfg.Models,
		stops:     cfg.StopSequences,
		maxTokens: cfg.MaxTokens,
		maxWait:   cfg.MaxWait,
		threads:   cfg.Threads,
		slot:      make(chan struct{}, 1),
	}
	if len(e.stops) == 0 {
		e.stops = DefaultStopSequences
	}
	if e.maxTokens <= 0 {
		e.maxTokens = DefaultMaxTokens
	}
	if e.maxWait <= 0 {
		e.maxWait = defaultMaxWait
	}
	if cfg.Logger != nil {
		e.log = cfg.Logger.With().Str("component", "inference").Logger()
	} else {
		e.log = zerolog.Nop()
	}
	e.seed.Store(initialSeed)
	return e
}

// Stop sets the shared cancellation flag. The running generation ends
// before emitting its next fragment. The flag is cleared when the next
// generation starts.
func (e *Engine) Stop() { e.stop.Store(true) }

// Stopped reports the state of the cancellation flag.
func (e *Engine) Stopped() bool { return e.stop.Load() }

// nextSeed returns a fresh value of the never-resetting draw counter.
func (e *Engine) nextSeed() uint64 { return e.seed.Add(1) - 1 }

// Stream runs a generation on its own goroutine. The returned channel
// yields fragments followed by exactly one Finished event and is then
// closed; callers must drain it. Canceling ctx ends the generation.
func (e *Engine) Stream(ctx context.Context, req Request) <-chan Event {
	out := make(chan Event)
	id := uuid.NewString()
	go func() {
		defer close(out)
		res, err := e.Generate(ctx, req, func(fragment string) error {
			select {
			case out <- Event{ID: id, Fragment: fragment}:
				return nil
			case <-ctx.Done():
				return ErrStopped
			}
		})
		out <- Event{ID: id, Finished: true, Reason: res.Reason, Tokens: res.Tokens, Err: err}
	}()
	return out
}

// Generate runs one generation, invoking onFragment for every non-empty
// fragment. onFragment may return ErrStopped to end early; any other error
// ends the generation and is returned. End of sequence, a stop sequence,
// cancellation and max tokens all finish without error.
func (e *Engine) Generate(ctx context.Context, req Request, onFragment func(string) error) (res Result, err error) {
	start := time.Now()
	defer func() {
		if err != nil {
			res.Reason = FinishError
		}
		generationsTotal.WithLabelValues(string(res.Reason)).Inc()
		generationDuration.Observe(time.Since(start).Seconds())
		ev := e.log.Debug()
		if err != nil {
			ev = e.log.Warn().Err(err)
		}
		ev.Str("reason", string(res.Reason)).Int("tokens", res.Tokens).
			Int("fragments", res.Fragments).Dur("dur", time.Since(start)).Msg("generation finished")
	}()

	leave, err := e.admit(ctx)
	if err != nil {
		return res, err
	}
	defer leave()
	e.stop.Store(false)

	if e.models == nil {
		return res, genErr(ModelNotLoaded, nil)
	}
	h, release, ok := e.models.Acquire()
	if !ok {
		return res, genErr(ModelNotLoaded, nil)
	}
	defer release()
	model := h.Model()

	tokens, err := model.Tokenize(req.Prompt)
	if err != nil {
		return res, genErr(TokenizeFailed, err)
	}
	if len(tokens) == 0 {
		return res, genErr(EmptyPrompt, nil)
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = e.maxTokens
	}

	em := &emitter{
		filter:     newStopFilter(e.stops),
		onFragment: onFragment,
		cancelled:  func() bool { return ctx.Err() != nil || e.stop.Load() },
	}
	e.log.Debug().Int("prompt_tokens", len(tokens)).Float32("temperature", req.Temperature).
		Int("max_tokens", maxTokens).Msg("generation started")

	if p, ok := model.(runtime.Predictor); ok {
		res, err = e.predict(ctx, p, req, maxTokens, em)
	} else {
		res, err = e.sampleLoop(model, h.ContextTokens(), tokens, req.Temperature, maxTokens, em)
	}
	res.Fragments = em.fragments
	if err == nil && em.err != nil && !errors.Is(em.err, ErrStopped) {
		err = em.err
	}
	return res, err
}

// sampleLoop prefills the prompt and samples up to maxTokens tokens.
func (e *Engine) sampleLoop(model runtime.Model, ctxTokens int, prompt []runtime.Token, temperature float32, maxTokens int, em *emitter) (Result, error) {
	var res Result
	sess, err := model.NewSession(ctxTokens)
	if err != nil {
		return res, genErr(DecodeFailed, err)
	}
	defer sess.Close()
	if err := sess.Decode(prompt); err != nil {
		return res, genErr(DecodeFailed, err)
	}
	last := len(prompt) - 1
	pos := len(prompt)

	for i := 0; i < maxTokens; i++ {
		if em.cancelled() {
			res.Reason = FinishCancelled
			return res, nil
		}
		logits, err := sess.LogitsAt(last)
		if err != nil {
			return res, genErr(SampleFailed, err)
		}
		tok, err := sampleToken(logits, temperature, e.nextSeed())
		if err != nil {
			return res, genErr(SampleFailed, err)
		}
		if model.IsEndOfSequence(tok) {
			res.Reason = FinishEOS
			em.finish()
			return res, nil
		}
		piece, err := model.Detokenize(tok)
		if err != nil {
			return res, genErr(TokenizeFailed, err)
		}
		res.Tokens++
		switch em.push(piece) {
		case pushCancelled:
			res.Reason = FinishCancelled
			return res, nil
		case pushStop:
			res.Reason = FinishStop
			return res, nil
		}
		if ctxTokens > 0 && pos >= ctxTokens {
			res.Reason = FinishLength
			em.finish()
			return res, nil
		}
		if err := sess.Decode([]runtime.Token{tok}); err != nil {
			return res, genErr(DecodeFailed, err)
		}
		pos++
		last = 0
	}
	res.Reason = FinishLength
	em.finish()
	return res, nil
}

// predict hands sampling to the runtime and filters its pieces.
func (e *Engine) predict(ctx context.Context, p runtime.Predictor, req Request, maxTokens int, em *emitter) (Result, error) {
	var res Result
	var outcome pushOutcome
	opts := runtime.PredictOptions{
		MaxTokens:   maxTokens,
		Temperature: req.Temperature,
		Seed:        uint32(e.nextSeed()),
		Threads:     e.threads,
		StopWords:   e.stops,
	}
	if opts.Temperature < 0 {
		opts.Temperature = 0
	}
	err := p.Predict(ctx, req.Prompt, opts, func(piece string) bool {
		res.Tokens++
		outcome = em.push(piece)
		return outcome == pushContinue
	})
	switch {
	case outcome == pushCancelled || em.cancelled():
		res.Reason = FinishCancelled
	case outcome == pushStop:
		res.Reason = FinishStop
	case err != nil:
		return res, genErr(DecodeFailed, err)
	case res.Tokens >= maxTokens:
		res.Reason = FinishLength
		em.finish()
	default:
		res.Reason = FinishEOS
		em.finish()
	}
	return res, nil
}

type pushOutcome int

const (
	pushContinue pushOutcome = iota
	pushStop
	pushCancelled
)

// emitter applies the fragment rules shared by both sampling paths.
type emitter struct {
	filter     *stopFilter
	onFragment func(string) error
	cancelled  func() bool
	fragments  int
	err        error
}

func (em *emitter) push(piece string) pushOutcome {
	fragment, stop := em.filter.push(piece)
	if fragment != "" {
		if em.cancelled() {
			return pushCancelled
		}
		if !em.emit(fragment) {
			return pushCancelled
		}
	}
	if stop {
		return pushStop
	}
	return pushContinue
}

// finish emits bytes held back by the filter at a natural end.
func (em *emitter) finish() {
	if rest := em.filter.flush(); rest != "" && !em.cancelled() {
		em.emit(rest)
	}
}

func (em *emitter) emit(fragment string) bool {
	if err := em.onFragment(fragment); err != nil {
		em.err = err
		return false
	}
	em.fragments++
	fragmentsTotal.Inc()
	return true
}
