package memstore

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/didi/gendry/builder"
)

// DefaultSessionTitle is used when a session is created without a title.
const DefaultSessionTitle = "New chat"

func (s *Store) CreateSession(ctx context.Context, title string) (Session, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		title = DefaultSessionTitle
	}
	now := s.now()
	data := map[string]interface{}{
		"title":         title,
		"created_at":    millis(now),
		"message_count": 0,
	}
	sqlStr, args, err := builder.BuildInsert("sessions", []map[string]interface{}{data})
	if err != nil {
		return Session{}, err
	}
	res, err := s.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return Session{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Session{}, err
	}
	return Session{ID: id, Title: title, CreatedAt: fromMillis(millis(now))}, nil
}

// ListSessions returns sessions newest first.
func (s *Store) ListSessions(ctx context.Context) ([]Session, error) {
	where := map[string]interface{}{"_orderby": "created_at desc, id desc"}
	sqlStr, args, err := builder.BuildSelect("sessions", where, []string{"id", "title", "created_at", "message_count"})
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]Session, 0)
	for rows.Next() {
		var (
			it      Session
			created int64
		)
		if err := rows.Scan(&it.ID, &it.Title, &created, &it.MessageCount); err != nil {
			return nil, err
		}
		it.CreatedAt = fromMillis(created)
		out = append(out, it)
	}
	return out, rows.Err()
}

func (s *Store) GetSession(ctx context.Context, id int64) (Session, error) {
	sqlStr, args, err := builder.BuildSelect("sessions", map[string]interface{}{"id": id},
		[]string{"id", "title", "created_at", "message_count"})
	if err != nil {
		return Session{}, err
	}
	var (
		it      Session
		created int64
	)
	if err := s.db.QueryRowContext(ctx, sqlStr, args...).Scan(&it.ID, &it.Title, &created, &it.MessageCount); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Session{}, ErrNotFound
		}
		return Session{}, err
	}
	it.CreatedAt = fromMillis(created)
	return it, nil
}

// DeleteSession removes a session and its messages and returns the ids of
// the deleted messages.
func (s *Store) DeleteSession(ctx context.Context, id int64) ([]int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	sqlStr, args, err := builder.BuildSelect("messages", map[string]interface{}{"session_id": id}, []string{"id"})
	if err != nil {
		return nil, err
	}
	rows, err := tx.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	var ids []int64
	for rows.Next() {
		var mid int64
		if err := rows.Scan(&mid); err != nil {
			rows.Close()
			return nil, err
		}
		ids = append(ids, mid)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sqlStr, args, err = builder.BuildDelete("messages", map[string]interface{}{"session_id": id})
	if err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, sqlStr, args...); err != nil {
		return nil, err
	}
	sqlStr, args, err = builder.BuildDelete("sessions", map[string]interface{}{"id": id})
	if err != nil {
		return nil, err
	}
	res, err := tx.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return ids, tx.Commit()
}
