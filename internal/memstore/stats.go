package memstore

import "context"

// Stats counts stored sessions, messages and facts. EstimatedTokens assumes
// four characters per token.
func (s *Store) Stats(ctx context.Context) (DataStats, error) {
	var st DataStats
	q := `SELECT
	(SELECT COUNT(1) FROM sessions),
	(SELECT COUNT(1) FROM messages),
	(SELECT COUNT(1) FROM messages WHERE is_user = 1),
	(SELECT COUNT(1) FROM memory),
	(SELECT COALESCE(SUM(LENGTH(content)), 0) FROM messages)`
	if err := s.db.QueryRowContext(ctx, q).Scan(&st.Sessions, &st.Messages, &st.UserMessages, &st.Memories, &st.Characters); err != nil {
		return DataStats{}, err
	}
	st.AssistantMessages = st.Messages - st.UserMessages
	st.EstimatedTokens = st.Characters / 4
	return st, nil
}
