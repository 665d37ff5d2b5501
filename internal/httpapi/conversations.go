package httpapi

import (
	"net/http"
	"strings"

	"memoryd/internal/memstore"
	"memoryd/pkg/types"
)

// @Summary  List chat sessions, newest first
// @Tags     sessions
// @Produce  json
// @Success  200  {array}  types.Session
// @Router   /sessions [get]
func (h *handlers) listSessions(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.ListSessions(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]types.Session, len(list))
	for i, s := range list {
		out[i] = sessionDTO(s)
	}
	writeJSON(w, http.StatusOK, out)
}

// @Summary  Create a chat session
// @Tags     sessions
// @Accept   json
// @Produce  json
// @Param    body  body      types.CreateSessionRequest  false  "title"
// @Success  201   {object}  types.Session
// @Router   /sessions [post]
func (h *handlers) createSession(w http.ResponseWriter, r *http.Request) {
	var req types.CreateSessionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	s, err := h.svc.CreateSession(r.Context(), strings.TrimSpace(req.Title))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sessionDTO(s))
}

// @Summary  Delete a session with its messages and their embeddings
// @Tags     sessions
// @Param    id  path  int  true  "session id"
// @Success  204
// @Router   /sessions/{id} [delete]
func (h *handlers) deleteSession(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteSession(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// @Summary  List the messages of a session, oldest first
// @Tags     sessions
// @Produce  json
// @Param    id  path     int  true  "session id"
// @Success  200  {array}  types.Message
// @Failure  404  {object}  types.ErrorResponse
// @Router   /sessions/{id}/messages [get]
func (h *handlers) listMessages(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	list, err := h.svc.ListMessages(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]types.Message, len(list))
	for i, m := range list {
		out[i] = messageDTO(m)
	}
	writeJSON(w, http.StatusOK, out)
}

// @Summary  Save a message; it is indexed for semantic search in the background
// @Tags     sessions
// @Accept   json
// @Produce  json
// @Param    id    path      int                         true  "session id"
// @Param    body  body      types.CreateMessageRequest  true  "message"
// @Success  201   {object}  types.Message
// @Failure  404   {object}  types.ErrorResponse
// @Router   /sessions/{id}/messages [post]
func (h *handlers) createMessage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req types.CreateMessageRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	m, err := h.svc.SaveMessage(r.Context(), id, req.Content, req.IsUser)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, messageDTO(m))
}

// @Summary  Full-text search across all sessions, newest first
// @Tags     sessions
// @Produce  json
// @Param    q      query    string  true   "search words"
// @Param    limit  query    int     false  "max results"
// @Success  200    {array}  types.Message
// @Router   /messages/search [get]
func (h *handlers) searchMessages(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeJSONError(w, http.StatusBadRequest, "q is required")
		return
	}
	list, err := h.svc.SearchMessages(r.Context(), q, queryLimit(r, defaultSearchLimit))
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]types.Message, len(list))
	for i, m := range list {
		out[i] = messageDTO(m.Message)
		out[i].SessionTitle = m.SessionTitle
	}
	writeJSON(w, http.StatusOK, out)
}

// @Summary  Conversation statistics
// @Tags     sessions
// @Produce  json
// @Success  200  {object}  types.DataStatsResponse
// @Router   /stats [get]
func (h *handlers) dataStats(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.DataStats(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, types.DataStatsResponse{
		Sessions:          st.Sessions,
		Messages:          st.Messages,
		UserMessages:      st.UserMessages,
		AssistantMessages: st.AssistantMessages,
		Memories:          st.Memories,
		Characters:        st.Characters,
		EstimatedTokens:   st.EstimatedTokens,
	})
}

func sessionDTO(s memstore.Session) types.Session {
	return types.Session{ID: s.ID, Title: s.Title, CreatedAt: s.CreatedAt, MessageCount: s.MessageCount}
}

func messageDTO(m memstore.Message) types.Message {
	return types.Message{ID: m.ID, SessionID: m.SessionID, Content: m.Content, IsUser: m.IsUser, Timestamp: m.Timestamp}
}
