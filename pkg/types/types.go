// Package types holds the JSON wire types of the memoryd HTTP API.
package types

// StreamEvent is one NDJSON line of a /generate response: a fragment, or
// the single terminal event with Finished set.
type StreamEvent struct {
	// Generation id shared by every line of one response.
	ID string `json:"id" example:"5b0c1f3e-8a44-4b7e-9d1a-0b6f2a7d9c11"`
	// Generated text.
	Fragment string `json:"fragment,omitempty" example:"Your cat"`
	Finished bool   `json:"finished,omitempty"`
	// eos, stop, cancelled, length or error.
	Reason string `json:"reason,omitempty" example:"eos"`
	// Tokens generated.
	Tokens int    `json:"tokens,omitempty" example:"42"`
	Error  string `json:"error,omitempty"`
	// Memory sections included in the prompt, on the terminal event.
	Sections []string `json:"sections,omitempty"`
}
