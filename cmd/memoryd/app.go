package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"memoryd/internal/assistant"
	"memoryd/internal/common/fsutil"
	"memoryd/internal/config"
	"memoryd/internal/inference"
	"memoryd/internal/manager"
	"memoryd/internal/memindex"
	"memoryd/internal/memstore"
	"memoryd/internal/runtime"
)

// app owns every long-lived component of the process.
type app struct {
	cfg     config.Config
	store   *memstore.Store
	index   *memindex.Index
	mgr     *manager.Manager
	engine  *inference.Engine
	svc     *assistant.Service
	log     *zerolog.Logger
	closers []io.Closer
}

func buildApp(ctx context.Context, cfg config.Config, runtimeName string, log *zerolog.Logger) (*app, error) {
	a := &app{cfg: cfg, log: log}

	dbPath, err := fsutil.ExpandHome(cfg.Storage.DBPath)
	if err != nil {
		return nil, err
	}
	st, err := memstore.Open(ctx, dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	a.store = st
	a.closers = append(a.closers, st)

	vs, err := memindex.NewSQLStore(ctx, st.DB())
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("open vector store: %w", err)
	}
	emb, err := a.newEmbedder(cfg.Embedding)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.index = memindex.New(memindex.Config{
		Embedder: memindex.WrapLRU(emb, cfg.Embedding.CacheSize, cfg.Embedding.CacheTTL.Std()),
		Store:    vs,
		Logger:   log,
	})

	backend, err := newBackend(runtimeName, cfg.Model.Threads)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.mgr = manager.New(manager.Config{
		Backend:     backend,
		SettleDelay: cfg.Model.SettleDelay.Std(),
		Threads:     cfg.Model.Threads,
		Publisher:   logPublisher{log: log.With().Str("component", "lifecycle").Logger()},
		Logger:      log,
	})
	a.engine = inference.New(inference.Config{
		Models:        a.mgr,
		StopSequences: cfg.Generation.StopSequences,
		MaxTokens:     cfg.Generation.MaxTokens,
		MaxWait:       cfg.Generation.MaxWait.Std(),
		Threads:       cfg.Model.Threads,
		Logger:        log,
	})
	temp := config.DefaultTemperature
	if cfg.Generation.Temperature != nil {
		temp = *cfg.Generation.Temperature
	}
	a.svc = assistant.New(assistant.Config{
		Store:        st,
		Index:        a.index,
		Engine:       a.engine,
		Manager:      a.mgr,
		ModelsDir:    cfg.Model.ModelsDir,
		SystemPrompt: cfg.Prompt.SystemPrompt,
		Temperature:  temp,
		MaxTokens:    cfg.Generation.MaxTokens,
		Logger:       log,
	})
	return a, nil
}

func (a *app) newEmbedder(cfg config.EmbeddingConfig) (memindex.Embedder, error) {
	switch strings.ToLower(cfg.Backend) {
	case "hash":
		return memindex.HashEmbedder{Dim: cfg.HashDim}, nil
	case "llama":
		if cfg.LlamaModel == "" {
			return nil, fmt.Errorf("embedding.llama_model is required for the llama embedder")
		}
		p, err := fsutil.ExpandHome(cfg.LlamaModel)
		if err != nil {
			return nil, err
		}
		e, err := memindex.NewLlamaEmbedder(p, a.cfg.Model.ContextLength, a.cfg.Model.Threads)
		if err != nil {
			return nil, fmt.Errorf("load embedding model: %w", err)
		}
		a.closers = append(a.closers, e)
		return e, nil
	case "ollama":
		return memindex.NewOllamaEmbedder(memindex.OllamaConfig{BaseURL: cfg.OllamaURL, Model: cfg.OllamaModel}), nil
	default:
		return nil, fmt.Errorf("unknown embedding backend %q (want ollama, llama or hash)", cfg.Backend)
	}
}

// scriptedStepDelay paces the scripted runtime like a small local model.
const scriptedStepDelay = 40 * time.Millisecond

func newBackend(name string, threads int) (runtime.Backend, error) {
	switch strings.ToLower(name) {
	case "", "llama":
		return runtime.NewLlamaBackend(threads), nil
	case "scripted":
		return &runtime.ScriptedBackend{
			Pieces:    []string{"This", " is", " a", " scripted", " reply", "."},
			StepDelay: scriptedStepDelay,
		}, nil
	default:
		return nil, fmt.Errorf("unknown runtime %q (want llama or scripted)", name)
	}
}

// Close waits for background indexing, unloads the model and closes the
// database. Closers run in reverse order.
func (a *app) Close() {
	if a.svc != nil {
		a.svc.Wait()
	}
	if a.mgr != nil && a.mgr.Status().Loaded {
		if err := a.mgr.Unload(context.Background()); err != nil {
			a.log.Warn().Err(err).Msg("unload on shutdown")
		}
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			a.log.Warn().Err(err).Msg("close")
		}
	}
	a.closers = nil
}

// logPublisher writes model lifecycle events to the log.
type logPublisher struct {
	log zerolog.Logger
}

func (p logPublisher) Publish(e manager.Event) {
	ev := p.log.Info()
	if e.Name == manager.EventLoadFailed {
		ev = p.log.Warn()
	}
	ev.Str("event", e.Name).Str("path", e.Path).Fields(e.Fields).Msg("model lifecycle")
}
