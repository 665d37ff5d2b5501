package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"memoryd/internal/assemble"
	"memoryd/internal/assistant"
	"memoryd/internal/inference"
	"memoryd/pkg/types"
)

// generate godoc
// @Summary      Answer a user message with memory-augmented context
// @Description  Streams NDJSON: one line per fragment, then exactly one line with finished=true.
// @Tags         generate
// @Accept       json
// @Produce      application/x-ndjson
// @Param        body  body      types.GenerateRequest  true  "generation request"
// @Success      200   {object}  types.StreamEvent
// @Failure      409   {object}  types.ErrorResponse  "no model loaded"
// @Failure      429   {object}  types.ErrorResponse  "another generation is running"
// @Router       /generate [post]
func (h *handlers) generate(w http.ResponseWriter, r *http.Request) {
	var req types.GenerateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		writeJSONError(w, http.StatusBadRequest, "prompt is required")
		return
	}
	if req.Temperature != nil && *req.Temperature < 0 {
		writeJSONError(w, http.StatusBadRequest, "temperature must be >= 0")
		return
	}

	lvl := requestLogLevel(r)
	start := time.Now()
	rid := middleware.GetReqID(r.Context())
	if lvl >= LevelInfo {
		logger().Info().Str("request_id", rid).Int64("session_id", req.SessionID).Bool("raw", req.Raw).Msg("generate start")
	}

	// Shutdown of the server cancels the generation too.
	ctx, cancel := joinContexts(r.Context())
	defer cancel()
	if generateTimeout > 0 {
		var tcancel context.CancelFunc
		ctx, tcancel = context.WithTimeout(ctx, generateTimeout)
		defer tcancel()
	}

	gen, err := h.svc.Generate(ctx, assistant.GenerateRequest{
		Utterance:    req.Prompt,
		SessionID:    req.SessionID,
		History:      turns(req.History),
		SystemPrompt: req.SystemPrompt,
		Temperature:  req.Temperature,
		MaxTokens:    req.MaxTokens,
		Raw:          req.Raw,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	// A generation that fails before its first fragment is reported with a
	// status code instead of a stream.
	first, ok := <-gen.Events
	if !ok {
		writeJSONError(w, http.StatusInternalServerError, "generation ended without a result")
		return
	}
	if first.Finished && first.Err != nil {
		drainEvents(gen.Events)
		status := writeError(w, r, first.Err)
		if lvl >= LevelInfo {
			logger().Info().Str("request_id", rid).Int("status", status).Dur("dur", time.Since(start)).Err(first.Err).Msg("generate end")
		}
		return
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.WriteHeader(http.StatusOK)
	var flush func()
	if f, ok := w.(http.Flusher); ok {
		flush = f.Flush
	}
	out := io.Writer(w)
	if lvl >= LevelDebug {
		out = io.MultiWriter(w, &loggingLineWriter{})
	}
	enc := json.NewEncoder(out)
	sections := sectionNames(gen.Context.Sections)
	var last inference.Event
	writeOK := true
	for ev := first; ; {
		if ev.Finished {
			last = ev
		}
		if writeOK {
			if err := enc.Encode(streamEvent(ev, sections)); err != nil {
				// Client went away; keep draining so the generation can end.
				writeOK = false
				cancel()
			} else {
				if ev.Finished {
					streamEventsTotal.WithLabelValues("finished").Inc()
				} else {
					streamEventsTotal.WithLabelValues("fragment").Inc()
				}
				if flush != nil {
					flush()
				}
			}
		}
		next, ok := <-gen.Events
		if !ok {
			break
		}
		ev = next
	}
	if lvl >= LevelInfo {
		z := logger().Info().Str("request_id", rid).Str("reason", string(last.Reason)).Int("tokens", last.Tokens).Dur("dur", time.Since(start))
		if last.Err != nil {
			z = z.Err(last.Err)
		}
		z.Msg("generate end")
	}
}

// @Summary  Stop the running generation
// @Tags     generate
// @Produce  json
// @Success  200  {object}  types.StopResponse
// @Router   /generate/stop [post]
func (h *handlers) stopGeneration(w http.ResponseWriter, r *http.Request) {
	running := h.svc.Generating()
	h.svc.StopGeneration()
	writeJSON(w, http.StatusOK, types.StopResponse{Generating: running})
}

func streamEvent(ev inference.Event, sections []string) types.StreamEvent {
	out := types.StreamEvent{ID: ev.ID, Fragment: ev.Fragment}
	if ev.Finished {
		out.Finished = true
		out.Reason = string(ev.Reason)
		out.Tokens = ev.Tokens
		out.Sections = sections
		if ev.Err != nil {
			out.Error = ev.Err.Error()
		}
	}
	return out
}

func drainEvents(ch <-chan inference.Event) {
	for range ch {
	}
}

func turns(in []types.Turn) []assemble.Turn {
	if in == nil {
		return nil
	}
	out := make([]assemble.Turn, len(in))
	for i, t := range in {
		out[i] = assemble.Turn{Role: t.Role, Content: t.Content}
	}
	return out
}

func sectionNames(secs []assemble.Section) []string {
	if len(secs) == 0 {
		return nil
	}
	out := make([]string, len(secs))
	for i, s := range secs {
		out[i] = string(s)
	}
	return out
}
