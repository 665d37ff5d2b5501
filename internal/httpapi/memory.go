package httpapi

import (
	"net/http"

	"memoryd/internal/memstore"
	"memoryd/internal/persona"
	"memoryd/pkg/types"
)

// @Summary  List memory facts
// @Tags     memory
// @Produce  json
// @Param    category  query    string  false  "only this category"
// @Success  200       {array}  types.Memory
// @Router   /memories [get]
func (h *handlers) listMemories(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.ListMemories(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, memoriesDTO(list))
}

// @Summary  Most important memory facts
// @Tags     memory
// @Produce  json
// @Param    limit  query    int  false  "max results"
// @Success  200    {array}  types.Memory
// @Router   /memories/top [get]
func (h *handlers) topMemories(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.TopMemories(r.Context(), queryLimit(r, defaultTopLimit))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, memoriesDTO(list))
}

// @Summary  Add a memory fact; it is indexed in the background
// @Tags     memory
// @Accept   json
// @Produce  json
// @Param    body  body      types.CreateMemoryRequest  true  "fact"
// @Success  201   {object}  types.Memory
// @Router   /memories [post]
func (h *handlers) createMemory(w http.ResponseWriter, r *http.Request) {
	var req types.CreateMemoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	m, err := h.svc.AddMemory(r.Context(), memstore.Memory{
		Content:         req.Content,
		Category:        req.Category,
		Importance:      req.Importance,
		SourceSessionID: req.SourceSessionID,
		SourceMessageID: req.SourceMessageID,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, memoryDTO(m))
}

// @Summary  Delete a memory fact and its embedding
// @Tags     memory
// @Param    id  path  int  true  "memory id"
// @Success  204
// @Failure  404  {object}  types.ErrorResponse
// @Router   /memories/{id} [delete]
func (h *handlers) deleteMemory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteMemory(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// @Summary  Stored persona
// @Tags     persona
// @Produce  json
// @Success  200  {object}  types.Persona
// @Failure  404  {object}  types.ErrorResponse
// @Router   /persona [get]
func (h *handlers) getPersona(w http.ResponseWriter, r *http.Request) {
	p, ok, err := h.svc.GetPersona(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !ok {
		writeJSONError(w, http.StatusNotFound, "persona not analyzed yet")
		return
	}
	writeJSON(w, http.StatusOK, personaDTO(p))
}

// @Summary  Analyze the user's messages and store the persona
// @Tags     persona
// @Produce  json
// @Success  200  {object}  types.Persona
// @Failure  409  {object}  types.ErrorResponse  "no user messages"
// @Router   /persona/analyze [post]
func (h *handlers) analyzePersona(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.AnalyzePersona(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, personaDTO(p))
}

// @Summary  Semantic search over messages and memory facts
// @Tags     rag
// @Accept   json
// @Produce  json
// @Param    body  body      types.RAGSearchRequest  true  "query"
// @Success  200   {object}  types.RAGSearchResponse
// @Failure  503   {object}  types.ErrorResponse  "embedding model unavailable"
// @Router   /rag/search [post]
func (h *handlers) ragSearch(w http.ResponseWriter, r *http.Request) {
	var req types.RAGSearchRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Query == "" {
		writeJSONError(w, http.StatusBadRequest, "query is required")
		return
	}
	hits, err := h.svc.FindContext(r.Context(), req.Query, req.Limit, req.MinSimilarity)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := types.RAGSearchResponse{Hits: make([]types.RAGHit, len(hits))}
	for i, hit := range hits {
		out.Hits[i] = types.RAGHit{SourceKind: string(hit.Kind), SourceID: hit.SourceID, Content: hit.Content, Similarity: hit.Similarity}
	}
	writeJSON(w, http.StatusOK, out)
}

// @Summary  Index every stored message; unchanged messages are skipped
// @Tags     rag
// @Produce  json
// @Success  200  {object}  types.IndexResponse
// @Router   /index/messages [post]
func (h *handlers) indexMessages(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.IndexAllMessages(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, types.IndexResponse{Indexed: n})
}

// @Summary  Embedding statistics
// @Tags     rag
// @Produce  json
// @Success  200  {object}  types.IndexStatsResponse
// @Router   /index/stats [get]
func (h *handlers) indexStats(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.IndexStats(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	byKind := make(map[string]int, len(st.ByKind))
	for k, n := range st.ByKind {
		byKind[string(k)] = n
	}
	writeJSON(w, http.StatusOK, types.IndexStatsResponse{Total: st.Total, ByKind: byKind, Dimension: st.Dimension, Embedder: st.Embedder})
}

func memoryDTO(m memstore.Memory) types.Memory {
	return types.Memory{
		ID:              m.ID,
		Content:         m.Content,
		Category:        m.Category,
		SourceSessionID: m.SourceSessionID,
		SourceMessageID: m.SourceMessageID,
		Importance:      m.Importance,
		CreatedAt:       m.CreatedAt,
	}
}

func memoriesDTO(list []memstore.Memory) []types.Memory {
	out := make([]types.Memory, len(list))
	for i, m := range list {
		out[i] = memoryDTO(m)
	}
	return out
}

func personaDTO(p memstore.Persona) types.Persona {
	return types.Persona{
		WritingStyle:     p.WritingStyle,
		AvgMessageLength: p.AvgMessageLength,
		CommonPhrases:    nonNil(p.CommonPhrases),
		TopicsOfInterest: nonNil(p.TopicsOfInterest),
		Language:         p.Language,
		EmojiUsage:       p.EmojiUsage,
		Tone:             p.Tone,
		MessagesAnalyzed: p.MessagesAnalyzed,
		LastUpdated:      p.LastUpdated,
		Summary:          persona.Summary(p),
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
