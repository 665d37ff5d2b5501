package assistant

import (
	"context"

	"memoryd/internal/assemble"
	"memoryd/internal/inference"
	"memoryd/internal/memstore"
)

// HistoryLimit is the number of stored turns used as history when a
// request names a session but carries no history.
const HistoryLimit = 20

// GenerateRequest is one user turn to answer.
type GenerateRequest struct {
	Utterance string
	SessionID int64
	// History overrides the stored session history when non-nil.
	History      []assemble.Turn
	SystemPrompt string
	// Temperature nil uses the configured default; 0 is greedy.
	Temperature *float32
	MaxTokens   int
	// Raw sends Utterance to the model as the complete prompt.
	Raw bool
}

// Generation is a running generation and the context it was built from.
type Generation struct {
	Context assemble.AssembledContext
	Events  <-chan inference.Event
}

// Generate assembles the prompt and starts streaming. The Events channel
// always ends with exactly one Finished event.
func (s *Service) Generate(ctx context.Context, req GenerateRequest) (*Generation, error) {
	var ac assemble.AssembledContext
	if req.Raw {
		ac.Prompt = req.Utterance
	} else {
		history := req.History
		if history == nil && req.SessionID != 0 {
			h, err := s.sessionHistory(ctx, req.SessionID, req.Utterance)
			if err != nil {
				return nil, err
			}
			history = h
		}
		system := req.SystemPrompt
		if system == "" {
			system = s.systemPrompt
		}
		ac = s.asm.Assemble(ctx, assemble.Request{
			SystemPrompt: assemble.SanitizeSystemPrompt(system),
			Utterance:    req.Utterance,
			SessionID:    req.SessionID,
			History:      history,
		})
	}
	temp := s.temperature
	if req.Temperature != nil {
		temp = *req.Temperature
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = s.maxTokens
	}
	s.log.Debug().Int64("session", req.SessionID).Strs("sections", sectionNames(ac.Sections)).Int("prompt_bytes", len(ac.Prompt)).Msg("generate")
	events := s.engine.Stream(ctx, inference.Request{Prompt: ac.Prompt, Temperature: temp, MaxTokens: maxTokens})
	return &Generation{Context: ac, Events: events}, nil
}

// StopGeneration sets the shared cancellation flag.
func (s *Service) StopGeneration() { s.engine.Stop() }

func (s *Service) Generating() bool { return s.engine.Busy() }

// sessionHistory returns the last stored turns of a session. A trailing
// user message equal to utterance is dropped since it is the new turn.
func (s *Service) sessionHistory(ctx context.Context, sessionID int64, utterance string) ([]assemble.Turn, error) {
	msgs, err := s.ListMessages(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if n := len(msgs); n > 0 && msgs[n-1].IsUser && msgs[n-1].Content == utterance {
		msgs = msgs[:n-1]
	}
	if len(msgs) > HistoryLimit {
		msgs = msgs[len(msgs)-HistoryLimit:]
	}
	return Turns(msgs), nil
}

// Turns converts stored messages to prompt turns.
func Turns(msgs []memstore.Message) []assemble.Turn {
	out := make([]assemble.Turn, len(msgs))
	for i, m := range msgs {
		out[i] = assemble.Turn{Role: m.Role(), Content: m.Content}
	}
	return out
}

func sectionNames(secs []assemble.Section) []string {
	out := make([]string, len(secs))
	for i, s := range secs {
		out[i] = string(s)
	}
	return out
}
