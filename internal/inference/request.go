package inference

// Request is the immutable input of one generation.
type Request struct {
	Prompt string
	// Temperature <= 0 selects greedy decoding.
	Temperature float32
	// MaxTokens <= 0 uses the engine default.
	MaxTokens int
}

// FinishReason explains why a generation ended.
type FinishReason string

const (
	FinishEOS       FinishReason = "eos"
	FinishStop      FinishReason = "stop"
	FinishCancelled FinishReason = "cancelled"
	FinishLength    FinishReason = "length"
	FinishError     FinishReason = "error"
)

// Result summarizes a completed generation.
type Result struct {
	Reason    FinishReason
	Tokens    int
	Fragments int
}

// Event is one element of a generation stream: a text fragment, or the
// single terminal event with Finished set.
type Event struct {
	ID       string
	Fragment string
	Finished bool
	Reason   FinishReason
	Tokens   int
	Err      error
}
