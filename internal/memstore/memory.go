package memstore

import (
	"context"
	"database/sql"
	"strings"

	"github.com/didi/gendry/builder"
)

const (
	DefaultCategory   = "fact"
	DefaultImportance = 5
)

var memoryFields = []string{"id", "content", "category", "source_session_id", "source_message_id", "importance", "created_at"}

// AddMemory stores a fact. Empty category becomes "fact"; importance is
// clamped to 1..10 with 0 meaning the default of 5.
func (s *Store) AddMemory(ctx context.Context, m Memory) (Memory, error) {
	m.Content = strings.TrimSpace(m.Content)
	if m.Content == "" {
		return Memory{}, ErrEmptyContent
	}
	if m.Category = strings.TrimSpace(m.Category); m.Category == "" {
		m.Category = DefaultCategory
	}
	switch {
	case m.Importance == 0:
		m.Importance = DefaultImportance
	case m.Importance < 1:
		m.Importance = 1
	case m.Importance > 10:
		m.Importance = 10
	}
	m.CreatedAt = fromMillis(millis(s.now()))
	data := map[string]interface{}{
		"content":           m.Content,
		"category":          m.Category,
		"source_session_id": nullID(m.SourceSessionID),
		"source_message_id": nullID(m.SourceMessageID),
		"importance":        m.Importance,
		"created_at":        millis(m.CreatedAt),
	}
	sqlStr, args, err := builder.BuildInsert("memory", []map[string]interface{}{data})
	if err != nil {
		return Memory{}, err
	}
	res, err := s.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return Memory{}, err
	}
	if m.ID, err = res.LastInsertId(); err != nil {
		return Memory{}, err
	}
	return m, nil
}

// ListMemories returns all facts, most important and newest first.
func (s *Store) ListMemories(ctx context.Context) ([]Memory, error) {
	return s.selectMemories(ctx, map[string]interface{}{"_orderby": "importance desc, created_at desc, id desc"})
}

func (s *Store) MemoriesByCategory(ctx context.Context, category string) ([]Memory, error) {
	return s.selectMemories(ctx, map[string]interface{}{
		"category": category,
		"_orderby": "importance desc, created_at desc, id desc",
	})
}

// TopMemories returns the limit most important facts regardless of topic.
func (s *Store) TopMemories(ctx context.Context, limit int) ([]Memory, error) {
	if limit <= 0 {
		return []Memory{}, nil
	}
	return s.selectMemories(ctx, map[string]interface{}{
		"_orderby": "importance desc, created_at desc, id desc",
		"_limit":   []uint{0, uint(limit)},
	})
}

func (s *Store) GetMemory(ctx context.Context, id int64) (Memory, error) {
	ms, err := s.selectMemories(ctx, map[string]interface{}{"id": id})
	if err != nil {
		return Memory{}, err
	}
	if len(ms) == 0 {
		return Memory{}, ErrNotFound
	}
	return ms[0], nil
}

func (s *Store) DeleteMemory(ctx context.Context, id int64) error {
	sqlStr, args, err := builder.BuildDelete("memory", map[string]interface{}{"id": id})
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) selectMemories(ctx context.Context, where map[string]interface{}) ([]Memory, error) {
	sqlStr, args, err := builder.BuildSelect("memory", where, memoryFields)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]Memory, 0)
	for rows.Next() {
		var (
			m        Memory
			src, msg sql.NullInt64
			created  int64
		)
		if err := rows.Scan(&m.ID, &m.Content, &m.Category, &src, &msg, &m.Importance, &created); err != nil {
			return nil, err
		}
		m.SourceSessionID = src.Int64
		m.SourceMessageID = msg.Int64
		m.CreatedAt = fromMillis(created)
		out = append(out, m)
	}
	return out, rows.Err()
}

func nullID(id int64) interface{} {
	if id <= 0 {
		return nil
	}
	return id
}
