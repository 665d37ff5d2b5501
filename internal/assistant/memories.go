package assistant

import (
	"context"

	"memoryd/internal/memindex"
	"memoryd/internal/memstore"
	"memoryd/internal/persona"
)

// AddMemory stores a memory fact and indexes it in the background.
func (s *Service) AddMemory(ctx context.Context, m memstore.Memory) (memstore.Memory, error) {
	m, err := s.store.AddMemory(ctx, m)
	if err != nil {
		return m, err
	}
	s.indexAsync(memindex.KindMemory, m.ID, m.Content)
	return m, nil
}

// ListMemories returns all facts, or those of one category.
func (s *Service) ListMemories(ctx context.Context, category string) ([]memstore.Memory, error) {
	if category != "" {
		return s.store.MemoriesByCategory(ctx, category)
	}
	return s.store.ListMemories(ctx)
}

func (s *Service) TopMemories(ctx context.Context, limit int) ([]memstore.Memory, error) {
	return s.store.TopMemories(ctx, limit)
}

// DeleteMemory deletes a fact and its embedding.
func (s *Service) DeleteMemory(ctx context.Context, id int64) error {
	if err := s.store.DeleteMemory(ctx, id); err != nil {
		return err
	}
	s.unindex(ctx, memindex.KindMemory, id)
	return nil
}

func (s *Service) GetPersona(ctx context.Context) (memstore.Persona, bool, error) {
	return s.store.GetPersona(ctx)
}

// AnalyzePersona rebuilds the persona from every stored user message and
// saves it.
func (s *Service) AnalyzePersona(ctx context.Context) (memstore.Persona, error) {
	msgs, err := s.store.AllUserMessages(ctx)
	if err != nil {
		return memstore.Persona{}, err
	}
	p, err := persona.Analyze(msgs)
	if err != nil {
		return p, err
	}
	p, err = s.store.SavePersona(ctx, p)
	if err != nil {
		return p, err
	}
	s.log.Info().Int("messages", p.MessagesAnalyzed).Str("style", p.WritingStyle).Str("tone", p.Tone).Msg("persona analyzed")
	return p, nil
}
