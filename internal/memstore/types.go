package memstore

import "time"

type Session struct {
	ID           int64
	Title        string
	CreatedAt    time.Time
	MessageCount int
}

type Message struct {
	ID        int64
	SessionID int64
	Content   string
	IsUser    bool
	Timestamp time.Time
}

// GlobalMessage is a message together with the title of its session.
type GlobalMessage struct {
	Message
	SessionTitle string
}

// Role is "user" or "assistant".
func (m Message) Role() string {
	if m.IsUser {
		return "user"
	}
	return "assistant"
}

// Memory is a long-term fact about the user.
type Memory struct {
	ID       int64
	Content  string
	Category string
	// Source ids are 0 when unknown.
	SourceSessionID int64
	SourceMessageID int64
	// Importance ranges 1..10.
	Importance int
	CreatedAt  time.Time
}

// Persona is the stored heuristic profile of the user's writing.
type Persona struct {
	WritingStyle     string
	AvgMessageLength float64
	CommonPhrases    []string
	TopicsOfInterest []string
	Language         string
	EmojiUsage       string
	Tone             string
	MessagesAnalyzed int
	LastUpdated      time.Time
}

type DataStats struct {
	Sessions          int
	Messages          int
	UserMessages      int
	AssistantMessages int
	Memories          int
	Characters        int64
	EstimatedTokens   int64
}
