package memstore

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"unicode"

	"github.com/didi/gendry/builder"
)

// InsertMessage appends a message to a session and bumps its message count.
func (s *Store) InsertMessage(ctx context.Context, sessionID int64, content string, isUser bool) (Message, error) {
	if strings.TrimSpace(content) == "" {
		return Message{}, ErrEmptyContent
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Message{}, err
	}
	defer func() { _ = tx.Rollback() }()

	now := s.now()
	data := map[string]interface{}{
		"session_id": sessionID,
		"content":    content,
		"is_user":    boolInt(isUser),
		"timestamp":  millis(now),
	}
	sqlStr, args, err := builder.BuildInsert("messages", []map[string]interface{}{data})
	if err != nil {
		return Message{}, err
	}
	res, err := tx.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		if strings.Contains(err.Error(), "FOREIGN KEY") {
			return Message{}, ErrNotFound
		}
		return Message{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Message{}, err
	}
	if _, err := tx.ExecContext(ctx, "UPDATE sessions SET message_count = message_count + 1 WHERE id = ?", sessionID); err != nil {
		return Message{}, err
	}
	if err := tx.Commit(); err != nil {
		return Message{}, err
	}
	return Message{ID: id, SessionID: sessionID, Content: content, IsUser: isUser, Timestamp: fromMillis(millis(now))}, nil
}

// ListMessages returns a session's messages oldest first.
func (s *Store) ListMessages(ctx context.Context, sessionID int64) ([]Message, error) {
	where := map[string]interface{}{
		"session_id": sessionID,
		"_orderby":   "timestamp asc, id asc",
	}
	sqlStr, args, err := builder.BuildSelect("messages", where, []string{"id", "session_id", "content", "is_user", "timestamp"})
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]Message, 0)
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// AllMessages returns every stored message in insertion order.
func (s *Store) AllMessages(ctx context.Context) ([]Message, error) {
	where := map[string]interface{}{"_orderby": "id asc"}
	sqlStr, args, err := builder.BuildSelect("messages", where, []string{"id", "session_id", "content", "is_user", "timestamp"})
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// AllUserMessages returns the content of every user message, oldest first.
func (s *Store) AllUserMessages(ctx context.Context) ([]string, error) {
	where := map[string]interface{}{
		"is_user":  1,
		"_orderby": "timestamp asc, id asc",
	}
	sqlStr, args, err := builder.BuildSelect("messages", where, []string{"content"})
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

const globalSelect = `
SELECT m.id, m.session_id, m.content, m.is_user, m.timestamp, s.title
FROM messages m
JOIN sessions s ON m.session_id = s.id
`

// GetMessage returns one message with its session title.
func (s *Store) GetMessage(ctx context.Context, id int64) (GlobalMessage, error) {
	row := s.db.QueryRowContext(ctx, globalSelect+"WHERE m.id = ?", id)
	gm, err := scanGlobal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return GlobalMessage{}, ErrNotFound
	}
	return gm, err
}

// SearchMessages runs a full-text query across all sessions, newest first.
// Words are matched as literal terms; the uppercase keyword OR between words
// is kept as the FTS operator.
func (s *Store) SearchMessages(ctx context.Context, query string, limit int) ([]GlobalMessage, error) {
	return s.searchFTS(ctx, query, 0, limit)
}

// SearchOtherSessions is SearchMessages restricted to sessions other than
// exclude. The limit applies after the restriction.
func (s *Store) SearchOtherSessions(ctx context.Context, query string, exclude int64, limit int) ([]GlobalMessage, error) {
	return s.searchFTS(ctx, query, exclude, limit)
}

func (s *Store) searchFTS(ctx context.Context, query string, exclude int64, limit int) ([]GlobalMessage, error) {
	match := ftsQuery(query)
	if match == "" {
		return []GlobalMessage{}, nil
	}
	if limit <= 0 {
		limit = 20
	}
	q := globalSelect + `WHERE m.id IN (SELECT rowid FROM messages_fts WHERE messages_fts MATCH ?)
AND m.session_id != ?
ORDER BY m.timestamp DESC, m.id DESC
LIMIT ?`
	return s.queryGlobal(ctx, q, match, exclude, limit)
}

// RecentMessages returns the newest messages across all sessions.
func (s *Store) RecentMessages(ctx context.Context, limit int) ([]GlobalMessage, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.queryGlobal(ctx, globalSelect+"ORDER BY m.timestamp DESC, m.id DESC LIMIT ?", limit)
}

func (s *Store) queryGlobal(ctx context.Context, q string, args ...interface{}) ([]GlobalMessage, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]GlobalMessage, 0)
	for rows.Next() {
		gm, err := scanGlobal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, gm)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanMessage(r scanner) (Message, error) {
	var (
		m      Message
		isUser int
		ts     int64
	)
	if err := r.Scan(&m.ID, &m.SessionID, &m.Content, &isUser, &ts); err != nil {
		return Message{}, err
	}
	m.IsUser = isUser != 0
	m.Timestamp = fromMillis(ts)
	return m, nil
}

func scanGlobal(r scanner) (GlobalMessage, error) {
	var (
		gm     GlobalMessage
		isUser int
		ts     int64
	)
	if err := r.Scan(&gm.ID, &gm.SessionID, &gm.Content, &isUser, &ts, &gm.SessionTitle); err != nil {
		return GlobalMessage{}, err
	}
	gm.IsUser = isUser != 0
	gm.Timestamp = fromMillis(ts)
	return gm, nil
}

// ftsQuery reduces input to quoted letter/digit terms so user text cannot
// inject FTS syntax.
func ftsQuery(input string) string {
	var b strings.Builder
	for _, r := range input {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	fields := strings.Fields(b.String())
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		if f == "OR" {
			if len(terms) > 0 && terms[len(terms)-1] != "OR" {
				terms = append(terms, f)
			}
			continue
		}
		terms = append(terms, `"`+f+`"`)
	}
	for len(terms) > 0 && terms[len(terms)-1] == "OR" {
		terms = terms[:len(terms)-1]
	}
	return strings.Join(terms, " ")
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
