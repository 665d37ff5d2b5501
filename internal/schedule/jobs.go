package schedule

import (
	"context"
	"errors"

	"memoryd/internal/memstore"
	"memoryd/internal/persona"
)

// Indexer re-indexes stored messages. *assistant.Service implements it.
type Indexer interface {
	IndexAllMessages(ctx context.Context) (int, error)
}

// PersonaAnalyzer rebuilds the persona. *assistant.Service implements it.
type PersonaAnalyzer interface {
	AnalyzePersona(ctx context.Context) (memstore.Persona, error)
}

// ReindexJob indexes messages that are missing from the semantic index or
// changed since they were indexed.
type ReindexJob struct{ Indexer Indexer }

func (ReindexJob) Name() string { return "reindex" }

func (j ReindexJob) Run(ctx context.Context) error {
	_, err := j.Indexer.IndexAllMessages(ctx)
	return err
}

// PersonaJob refreshes the persona. Having no user messages yet is not an
// error.
type PersonaJob struct{ Analyzer PersonaAnalyzer }

func (PersonaJob) Name() string { return "persona" }

func (j PersonaJob) Run(ctx context.Context) error {
	_, err := j.Analyzer.AnalyzePersona(ctx)
	if errors.Is(err, persona.ErrNoMessages) {
		return nil
	}
	return err
}
