package memindex

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/didi/gendry/builder"
)

// Store persists embedding records.
type Store interface {
	// Fingerprint returns the stored fingerprint for (kind, id).
	Fingerprint(ctx context.Context, kind SourceKind, id int64) (fp string, ok bool, err error)
	// Put inserts r or replaces the record with the same (Kind, SourceID).
	Put(ctx context.Context, r Record) error
	Delete(ctx context.Context, kind SourceKind, id int64) error
	// List returns records in storage order, filtered by kind unless KindAny.
	List(ctx context.Context, kind SourceKind) ([]Record, error)
	// Dimension is the vector length of stored records, 0 when empty.
	Dimension(ctx context.Context) (int, error)
	Counts(ctx context.Context) (map[SourceKind]int, error)
}

const embeddingsTable = "embeddings"

const embeddingsSchema = `
CREATE TABLE IF NOT EXISTS embeddings (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	source_type TEXT NOT NULL,
	source_id INTEGER NOT NULL,
	content_hash TEXT NOT NULL,
	vector BLOB NOT NULL,
	created_at INTEGER NOT NULL,
	UNIQUE(source_type, source_id)
);
CREATE INDEX IF NOT EXISTS idx_embeddings_source_type ON embeddings(source_type);
`

// SQLStore keeps records in the embeddings table of a SQLite database.
// Vectors are stored as little-endian float32 blobs and created_at as unix
// milliseconds.
type SQLStore struct {
	db *sql.DB
}

// NewSQLStore creates the embeddings table if needed.
func NewSQLStore(ctx context.Context, db *sql.DB) (*SQLStore, error) {
	if _, err := db.ExecContext(ctx, embeddingsSchema); err != nil {
		return nil, fmt.Errorf("create embeddings table: %w", err)
	}
	return &SQLStore{db: db}, nil
}

func (s *SQLStore) Fingerprint(ctx context.Context, kind SourceKind, id int64) (string, bool, error) {
	where := map[string]interface{}{
		"source_type": string(kind),
		"source_id":   id,
	}
	sqlStr, args, err := builder.BuildSelect(embeddingsTable, where, []string{"content_hash"})
	if err != nil {
		return "", false, err
	}
	var fp string
	if err := s.db.QueryRowContext(ctx, sqlStr, args...).Scan(&fp); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	return fp, true, nil
}

func (s *SQLStore) Put(ctx context.Context, r Record) error {
	created := r.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	data := map[string]interface{}{
		"source_type":  string(r.Kind),
		"source_id":    r.SourceID,
		"content_hash": r.Fingerprint,
		"vector":       encodeVector(r.Vector),
		"created_at":   created.UnixMilli(),
	}
	sqlStr, args, err := builder.BuildInsert(embeddingsTable, []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr = strings.Replace(sqlStr, "INSERT INTO", "INSERT OR REPLACE INTO", 1)
	_, err = s.db.ExecContext(ctx, sqlStr, args...)
	return err
}

func (s *SQLStore) Delete(ctx context.Context, kind SourceKind, id int64) error {
	where := map[string]interface{}{
		"source_type": string(kind),
		"source_id":   id,
	}
	sqlStr, args, err := builder.BuildDelete(embeddingsTable, where)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, sqlStr, args...)
	return err
}

func (s *SQLStore) List(ctx context.Context, kind SourceKind) ([]Record, error) {
	where := map[string]interface{}{"_orderby": "id asc"}
	if kind != KindAny {
		where["source_type"] = string(kind)
	}
	sqlStr, args, err := builder.BuildSelect(embeddingsTable, where,
		[]string{"source_type", "source_id", "content_hash", "vector", "created_at"})
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Record
	for rows.Next() {
		var (
			r       Record
			kindStr string
			blob    []byte
			created int64
		)
		if err := rows.Scan(&kindStr, &r.SourceID, &r.Fingerprint, &blob, &created); err != nil {
			return nil, err
		}
		if r.Vector, err = decodeVector(blob); err != nil {
			return nil, fmt.Errorf("%s %d: %w", kindStr, r.SourceID, err)
		}
		r.Kind = SourceKind(kindStr)
		r.CreatedAt = time.UnixMilli(created)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLStore) Dimension(ctx context.Context) (int, error) {
	where := map[string]interface{}{"_limit": []uint{0, 1}}
	sqlStr, args, err := builder.BuildSelect(embeddingsTable, where, []string{"length(vector)"})
	if err != nil {
		return 0, err
	}
	var n int
	if err := s.db.QueryRowContext(ctx, sqlStr, args...).Scan(&n); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, err
	}
	return n / 4, nil
}

func (s *SQLStore) Counts(ctx context.Context) (map[SourceKind]int, error) {
	where := map[string]interface{}{"_groupby": "source_type"}
	sqlStr, args, err := builder.BuildSelect(embeddingsTable, where, []string{"source_type", "COUNT(1)"})
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[SourceKind]int{}
	for rows.Next() {
		var k string
		var n int
		if err := rows.Scan(&k, &n); err != nil {
			return nil, err
		}
		out[SourceKind(k)] = n
	}
	return out, rows.Err()
}
