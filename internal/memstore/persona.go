package memstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/didi/gendry/builder"
)

var personaFields = []string{
	"writing_style", "avg_message_length", "common_phrases", "topics_of_interest",
	"language", "emoji_usage", "tone", "messages_analyzed", "last_updated",
}

// GetPersona returns the stored persona; ok is false when none was saved.
func (s *Store) GetPersona(ctx context.Context) (p Persona, ok bool, err error) {
	where := map[string]interface{}{"_limit": []uint{0, 1}}
	sqlStr, args, err := builder.BuildSelect("user_persona", where, personaFields)
	if err != nil {
		return Persona{}, false, err
	}
	var (
		phrases, topics string
		updated         int64
	)
	err = s.db.QueryRowContext(ctx, sqlStr, args...).Scan(&p.WritingStyle, &p.AvgMessageLength, &phrases, &topics,
		&p.Language, &p.EmojiUsage, &p.Tone, &p.MessagesAnalyzed, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return Persona{}, false, nil
	}
	if err != nil {
		return Persona{}, false, err
	}
	if err := json.Unmarshal([]byte(phrases), &p.CommonPhrases); err != nil {
		return Persona{}, false, err
	}
	if err := json.Unmarshal([]byte(topics), &p.TopicsOfInterest); err != nil {
		return Persona{}, false, err
	}
	p.LastUpdated = fromMillis(updated)
	return p, true, nil
}

// SavePersona replaces the single stored persona. LastUpdated is set to now.
func (s *Store) SavePersona(ctx context.Context, p Persona) (Persona, error) {
	phrases, err := json.Marshal(nonNil(p.CommonPhrases))
	if err != nil {
		return Persona{}, err
	}
	topics, err := json.Marshal(nonNil(p.TopicsOfInterest))
	if err != nil {
		return Persona{}, err
	}
	p.LastUpdated = fromMillis(millis(s.now()))
	data := map[string]interface{}{
		"writing_style":      p.WritingStyle,
		"avg_message_length": p.AvgMessageLength,
		"common_phrases":     string(phrases),
		"topics_of_interest": string(topics),
		"language":           p.Language,
		"emoji_usage":        p.EmojiUsage,
		"tone":               p.Tone,
		"messages_analyzed":  p.MessagesAnalyzed,
		"last_updated":       millis(p.LastUpdated),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Persona{}, err
	}
	defer func() { _ = tx.Rollback() }()
	var id int64
	err = tx.QueryRowContext(ctx, "SELECT id FROM user_persona ORDER BY id LIMIT 1").Scan(&id)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return Persona{}, err
	}
	var (
		sqlStr string
		args   []interface{}
	)
	if id > 0 {
		sqlStr, args, err = builder.BuildUpdate("user_persona", map[string]interface{}{"id": id}, data)
	} else {
		sqlStr, args, err = builder.BuildInsert("user_persona", []map[string]interface{}{data})
	}
	if err != nil {
		return Persona{}, err
	}
	if _, err := tx.ExecContext(ctx, sqlStr, args...); err != nil {
		return Persona{}, err
	}
	return p, tx.Commit()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
