package types

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: invalid JSON body
	Error string `json:"error" example:"invalid JSON body"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}

// ModelsResponse wraps the list of models returned by GET /models.
type ModelsResponse struct {
	Models []Model `json:"models"`
}

// LoadRequest is the body of POST /models/load. Either Path or Model (a
// file name in the models directory) is required.
type LoadRequest struct {
	Path  string `json:"path,omitempty" example:"/home/user/models/llm/model.gguf"`
	Model string `json:"model,omitempty" example:"model.gguf"`
	// Context window in tokens; 0 uses the configured default.
	// example: 2048
	ContextLength int `json:"context_length,omitempty" example:"2048"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// "loaded" or "unloaded".
	// example: loaded
	State string `json:"state" example:"loaded"`
	// Path of the loaded model.
	Path string `json:"path,omitempty"`
	// Context window of the loaded model in tokens.
	// example: 2048
	ContextLength int `json:"context_length,omitempty" example:"2048"`
	// Layers offloaded to the GPU; 0 means CPU placement.
	// example: 99
	GPULayers int `json:"gpu_layers" example:"99"`
	// Placement capability probed from the runtime: cpu_only or gpu_capable.
	// example: gpu_capable
	Capability string `json:"capability" example:"gpu_capable"`
	// True while a generation holds the generation slot.
	Generating bool `json:"generating"`
	// Last lifecycle error, if any.
	LastError string `json:"last_error,omitempty"`
	// example: 1700000000
	LoadedAtUnix int64 `json:"loaded_at_unix,omitempty" example:"1700000000"`
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// example: 1700003600
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700003600"`
	// example: 3
	LoadsTotal uint64 `json:"loads_total" example:"3"`
}

// GPUInfoResponse is returned by GET /gpu.
type GPUInfoResponse struct {
	Available bool   `json:"available" example:"true"`
	Backend   string `json:"backend" example:"GPU"`
	Runtime   string `json:"runtime" example:"llama"`
}

// Turn is one prior message of a conversation.
type Turn struct {
	// user or assistant.
	// example: user
	Role    string `json:"role" example:"user"`
	Content string `json:"content" example:"Hi"`
}

// GenerateRequest is the body of POST /generate.
type GenerateRequest struct {
	// The new user message.
	// example: What is my cat called?
	Prompt string `json:"prompt" example:"What is my cat called?"`
	// Session the message belongs to; excluded from cross-chat context and
	// used for history when History is omitted.
	// example: 1
	SessionID int64 `json:"session_id,omitempty" example:"1"`
	// Conversation history; overrides the stored history when present.
	History []Turn `json:"history,omitempty"`
	// Base system prompt; empty uses the configured one.
	SystemPrompt string `json:"system_prompt,omitempty"`
	// Sampling temperature; 0 is greedy, omitted uses the default.
	// example: 0.7
	Temperature *float32 `json:"temperature,omitempty" example:"0.7"`
	// Maximum number of tokens to generate.
	// example: 512
	MaxTokens int `json:"max_tokens,omitempty" example:"512"`
	// Send Prompt to the model unchanged, without memory or chat framing.
	Raw bool `json:"raw,omitempty"`
}

// StopResponse is returned by POST /generate/stop.
type StopResponse struct {
	// Whether a generation was running when the flag was set.
	Generating bool `json:"generating"`
}

type CreateSessionRequest struct {
	// example: Weekend plans
	Title string `json:"title,omitempty" example:"Weekend plans"`
}

type CreateMessageRequest struct {
	Content string `json:"content" example:"My cat is called Tom"`
	IsUser  bool   `json:"is_user" example:"true"`
}

type CreateMemoryRequest struct {
	Content         string `json:"content" example:"User's name is Alex"`
	Category        string `json:"category,omitempty" example:"name"`
	Importance      int    `json:"importance,omitempty" example:"8"`
	SourceSessionID int64  `json:"source_session_id,omitempty"`
	SourceMessageID int64  `json:"source_message_id,omitempty"`
}

// RAGSearchRequest is the body of POST /rag/search.
type RAGSearchRequest struct {
	Query string `json:"query" example:"cat name"`
	// example: 5
	Limit int `json:"limit,omitempty" example:"5"`
	// example: 0.4
	MinSimilarity float32 `json:"min_similarity,omitempty" example:"0.4"`
}

// RAGHit is a semantic search hit with its content.
type RAGHit struct {
	// message or memory.
	// example: memory
	SourceKind string  `json:"source_kind" example:"memory"`
	SourceID   int64   `json:"source_id" example:"3"`
	Content    string  `json:"content" example:"User has a cat called Tom"`
	Similarity float32 `json:"similarity" example:"0.83"`
}

type RAGSearchResponse struct {
	Hits []RAGHit `json:"hits"`
}

// IndexResponse is returned by POST /index/messages.
type IndexResponse struct {
	// Number of embeddings written.
	// example: 12
	Indexed int `json:"indexed" example:"12"`
}

// IndexStatsResponse is returned by GET /index/stats.
type IndexStatsResponse struct {
	Total     int            `json:"total" example:"140"`
	ByKind    map[string]int `json:"by_kind"`
	Dimension int            `json:"dimension" example:"384"`
	Embedder  string         `json:"embedder" example:"ollama-nomic-embed-text"`
}

// DataStatsResponse summarizes stored conversations.
type DataStatsResponse struct {
	Sessions          int   `json:"sessions"`
	Messages          int   `json:"messages"`
	UserMessages      int   `json:"user_messages"`
	AssistantMessages int   `json:"assistant_messages"`
	Memories          int   `json:"memories"`
	Characters        int64 `json:"characters"`
	EstimatedTokens   int64 `json:"estimated_tokens"`
}
