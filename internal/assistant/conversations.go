package assistant

import (
	"context"

	"memoryd/internal/memindex"
	"memoryd/internal/memstore"
)

func (s *Service) CreateSession(ctx context.Context, title string) (memstore.Session, error) {
	return s.store.CreateSession(ctx, title)
}

func (s *Service) ListSessions(ctx context.Context) ([]memstore.Session, error) {
	return s.store.ListSessions(ctx)
}

// DeleteSession deletes the session, its messages and their embeddings.
func (s *Service) DeleteSession(ctx context.Context, id int64) error {
	ids, err := s.store.DeleteSession(ctx, id)
	if err != nil {
		return err
	}
	for _, mid := range ids {
		s.unindex(ctx, memindex.KindMessage, mid)
	}
	return nil
}

func (s *Service) ListMessages(ctx context.Context, sessionID int64) ([]memstore.Message, error) {
	if _, err := s.store.GetSession(ctx, sessionID); err != nil {
		return nil, err
	}
	return s.store.ListMessages(ctx, sessionID)
}

// SaveMessage stores a message and indexes it in the background.
func (s *Service) SaveMessage(ctx context.Context, sessionID int64, content string, isUser bool) (memstore.Message, error) {
	m, err := s.store.InsertMessage(ctx, sessionID, content, isUser)
	if err != nil {
		return m, err
	}
	s.indexAsync(memindex.KindMessage, m.ID, m.Content)
	return m, nil
}

// SearchMessages runs a full-text search across all sessions.
func (s *Service) SearchMessages(ctx context.Context, query string, limit int) ([]memstore.GlobalMessage, error) {
	return s.store.SearchMessages(ctx, query, limit)
}

func (s *Service) DataStats(ctx context.Context) (memstore.DataStats, error) {
	return s.store.Stats(ctx)
}
