package types

import "time"

// Model represents a model file found in the models directory.
type Model struct {
	// File name, used as the model id.
	// example: qwen2.5-3b-instruct-q4_k_m.gguf
	ID string `json:"id" example:"qwen2.5-3b-instruct-q4_k_m.gguf"`
	// File name without extension.
	// example: qwen2.5-3b-instruct-q4_k_m
	Name string `json:"name" example:"qwen2.5-3b-instruct-q4_k_m"`
	// Absolute path to the model file on disk.
	// example: /home/user/models/llm/qwen2.5-3b-instruct-q4_k_m.gguf
	Path string `json:"path" example:"/home/user/models/llm/qwen2.5-3b-instruct-q4_k_m.gguf"`
	// File size in bytes.
	// example: 2104932768
	SizeBytes int64 `json:"size_bytes" example:"2104932768"`
	// True for the currently loaded model.
	Loaded bool `json:"loaded"`
}

// Session is one chat.
type Session struct {
	ID           int64     `json:"id" example:"1"`
	Title        string    `json:"title" example:"New chat"`
	CreatedAt    time.Time `json:"created_at"`
	MessageCount int       `json:"message_count" example:"4"`
}

// Message is one stored chat message.
type Message struct {
	ID        int64     `json:"id" example:"12"`
	SessionID int64     `json:"session_id" example:"1"`
	Content   string    `json:"content" example:"My cat is called Tom"`
	IsUser    bool      `json:"is_user" example:"true"`
	Timestamp time.Time `json:"timestamp"`
	// Title of the owning session, set by cross-session searches.
	SessionTitle string `json:"session_title,omitempty" example:"Pets"`
}

// Memory is a long-term fact about the user.
type Memory struct {
	ID              int64     `json:"id" example:"3"`
	Content         string    `json:"content" example:"User's name is Alex"`
	Category        string    `json:"category" example:"name"`
	SourceSessionID int64     `json:"source_session_id,omitempty" example:"1"`
	SourceMessageID int64     `json:"source_message_id,omitempty" example:"12"`
	Importance      int       `json:"importance" example:"8"`
	CreatedAt       time.Time `json:"created_at"`
}

// Persona is the heuristic profile of the user's writing.
type Persona struct {
	WritingStyle     string    `json:"writing_style" example:"casual"`
	AvgMessageLength float64   `json:"avg_message_length" example:"42.5"`
	CommonPhrases    []string  `json:"common_phrases"`
	TopicsOfInterest []string  `json:"topics_of_interest"`
	Language         string    `json:"language" example:"en"`
	EmojiUsage       string    `json:"emoji_usage" example:"minimal"`
	Tone             string    `json:"tone" example:"friendly"`
	MessagesAnalyzed int       `json:"messages_analyzed" example:"120"`
	LastUpdated      time.Time `json:"last_updated"`
	// One-line summary as used in prompts.
	Summary string `json:"summary" example:"Style: casual, Tone: friendly, Language: en"`
}
