// Package assistant is the application layer of memoryd. It ties the
// conversation store, the semantic index, the context assembler, the
// generation engine and the model lifecycle manager together.
//
// Indexing is always a side effect of another operation: saving a message
// or adding a memory fact indexes it in the background, and a failure there
// is logged and never fails the operation itself.
package assistant

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"memoryd/internal/assemble"
	"memoryd/internal/inference"
	"memoryd/internal/manager"
	"memoryd/internal/memindex"
	"memoryd/internal/memstore"
)

// Defaults applied when corresponding Config fields are unset.
const (
	DefaultTemperature  = 0.7
	defaultIndexTimeout = 2 * time.Minute
)

// Config wires the collaborators of a Service.
type Config struct {
	Store   *memstore.Store
	Index   *memindex.Index
	Engine  *inference.Engine
	Manager *manager.Manager
	// ModelsDir resolves model ids passed to LoadModel.
	ModelsDir string
	// SystemPrompt is the base system prompt; empty uses the default.
	SystemPrompt string
	Temperature  float32
	MaxTokens    int
	// IndexTimeout bounds one background indexing task.
	IndexTimeout time.Duration
	Logger       *zerolog.Logger
}

type Service struct {
	store     *memstore.Store
	index     *memindex.Index
	engine    *inference.Engine
	mgr       *manager.Manager
	asm       *assemble.Assembler
	modelsDir string

	systemPrompt string
	temperature  float32
	maxTokens    int
	indexTimeout time.Duration

	log zerolog.Logger
	bg  sync.WaitGroup
}

func New(cfg Config) *Service {
	s := &Service{
		store:        cfg.Store,
		index:        cfg.Index,
		engine:       cfg.Engine,
		mgr:          cfg.Manager,
		modelsDir:    cfg.ModelsDir,
		systemPrompt: cfg.SystemPrompt,
		temperature:  cfg.Temperature,
		maxTokens:    cfg.MaxTokens,
		indexTimeout: cfg.IndexTimeout,
		log:          zerolog.Nop(),
	}
	if cfg.Logger != nil {
		s.log = cfg.Logger.With().Str("component", "assistant").Logger()
	}
	if s.temperature < 0 {
		s.temperature = 0
	}
	if s.indexTimeout <= 0 {
		s.indexTimeout = defaultIndexTimeout
	}
	acfg := assemble.Config{Logger: cfg.Logger}
	if s.store != nil {
		acfg.Facts = s.store
		acfg.Keywords = s.store
		acfg.Persona = s.store
	}
	if s.index != nil {
		acfg.Semantic = s
	}
	s.asm = assemble.New(acfg)
	return s
}

// Wait blocks until background indexing tasks have finished.
func (s *Service) Wait() { s.bg.Wait() }

// indexAsync indexes content on its own goroutine. Failures are logged.
func (s *Service) indexAsync(kind memindex.SourceKind, id int64, content string) {
	if s.index == nil {
		return
	}
	s.bg.Add(1)
	go func() {
		defer s.bg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.indexTimeout)
		defer cancel()
		if err := s.index.Index(ctx, kind, id, content); err != nil {
			s.log.Warn().Err(err).Str("kind", string(kind)).Int64("id", id).Msg("indexing failed")
		}
	}()
}

// unindex removes an embedding. Failures are logged.
func (s *Service) unindex(ctx context.Context, kind memindex.SourceKind, id int64) {
	if s.index == nil {
		return
	}
	if err := s.index.Delete(ctx, kind, id); err != nil {
		s.log.Warn().Err(err).Str("kind", string(kind)).Int64("id", id).Msg("embedding delete failed")
	}
}
