package assistant

import (
	"context"
	"errors"
	"time"

	"memoryd/internal/assemble"
	"memoryd/internal/memindex"
	"memoryd/internal/memstore"
)

// DefaultRAGLimit is used when FindContext gets a non-positive limit.
const DefaultRAGLimit = 5

// FindContext searches messages and memory facts semantically and returns
// each hit with its content. Hits whose source no longer exists are
// skipped.
func (s *Service) FindContext(ctx context.Context, query string, limit int, minSimilarity float32) ([]assemble.ContextHit, error) {
	if s.index == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = DefaultRAGLimit
	}
	hits, err := s.index.SearchText(ctx, query, memindex.KindAny, limit, minSimilarity)
	if err != nil {
		return nil, err
	}
	out := make([]assemble.ContextHit, 0, len(hits))
	for _, h := range hits {
		content, err := s.sourceContent(ctx, h)
		if errors.Is(err, memstore.ErrNotFound) {
			s.log.Debug().Str("kind", string(h.Kind)).Int64("id", h.SourceID).Msg("stale embedding")
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, assemble.ContextHit{Kind: h.Kind, SourceID: h.SourceID, Content: content, Similarity: h.Similarity})
	}
	return out, nil
}

func (s *Service) sourceContent(ctx context.Context, h memindex.Hit) (string, error) {
	switch h.Kind {
	case memindex.KindMemory:
		m, err := s.store.GetMemory(ctx, h.SourceID)
		return m.Content, err
	default:
		m, err := s.store.GetMessage(ctx, h.SourceID)
		return m.Content, err
	}
}

// IndexAllMessages indexes every stored message and returns how many
// embeddings were written. Unchanged messages are skipped.
func (s *Service) IndexAllMessages(ctx context.Context) (int, error) {
	msgs, err := s.store.AllMessages(ctx)
	if err != nil {
		return 0, err
	}
	items := make([]memindex.Item, len(msgs))
	for i, m := range msgs {
		items[i] = memindex.Item{Kind: memindex.KindMessage, SourceID: m.ID, Content: m.Content}
	}
	start := time.Now()
	n, err := s.index.IndexBatch(ctx, items)
	s.log.Info().Int("messages", len(msgs)).Int("indexed", n).Dur("dur", time.Since(start)).Err(err).Msg("index all messages")
	return n, err
}

func (s *Service) IndexStats(ctx context.Context) (memindex.Stats, error) {
	return s.index.Stats(ctx)
}
