package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"memoryd/internal/assemble"
	"memoryd/internal/assistant"
	"memoryd/internal/manager"
	"memoryd/internal/memindex"
	"memoryd/internal/memstore"
	"memoryd/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
// *assistant.Service implements it.
type Service interface {
	ListModels() ([]types.Model, error)
	LoadModel(ctx context.Context, ref string, contextTokens int) error
	UnloadModel(ctx context.Context) error
	Status() assistant.Status
	GPUInfo() manager.GPUInfo
	Ready() bool

	Generate(ctx context.Context, req assistant.GenerateRequest) (*assistant.Generation, error)
	StopGeneration()
	Generating() bool

	CreateSession(ctx context.Context, title string) (memstore.Session, error)
	ListSessions(ctx context.Context) ([]memstore.Session, error)
	DeleteSession(ctx context.Context, id int64) error
	ListMessages(ctx context.Context, sessionID int64) ([]memstore.Message, error)
	SaveMessage(ctx context.Context, sessionID int64, content string, isUser bool) (memstore.Message, error)
	SearchMessages(ctx context.Context, query string, limit int) ([]memstore.GlobalMessage, error)
	DataStats(ctx context.Context) (memstore.DataStats, error)

	AddMemory(ctx context.Context, m memstore.Memory) (memstore.Memory, error)
	ListMemories(ctx context.Context, category string) ([]memstore.Memory, error)
	TopMemories(ctx context.Context, limit int) ([]memstore.Memory, error)
	DeleteMemory(ctx context.Context, id int64) error
	GetPersona(ctx context.Context) (memstore.Persona, bool, error)
	AnalyzePersona(ctx context.Context) (memstore.Persona, error)

	FindContext(ctx context.Context, query string, limit int, minSimilarity float32) ([]assemble.ContextHit, error)
	IndexAllMessages(ctx context.Context) (int, error)
	IndexStats(ctx context.Context) (memindex.Stats, error)
}

// Default limits of list endpoints.
const (
	defaultSearchLimit = 20
	defaultTopLimit    = 5
)

func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: corsAllowedMethods,
			AllowedHeaders: corsAllowedHeaders,
		}))
	}
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})

	h := &handlers{svc: svc}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("no model loaded"))
	})
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	// Streaming responses are not compressed.
	r.Post("/generate", h.generate)
	r.Group(func(r chi.Router) {
		r.Use(middleware.Compress(5))

		r.Get("/models", h.listModels)
		r.Post("/models/load", h.loadModel)
		r.Post("/models/unload", h.unloadModel)
		r.Get("/status", h.status)
		r.Get("/gpu", h.gpu)
		r.Post("/generate/stop", h.stopGeneration)

		r.Get("/sessions", h.listSessions)
		r.Post("/sessions", h.createSession)
		r.Delete("/sessions/{id}", h.deleteSession)
		r.Get("/sessions/{id}/messages", h.listMessages)
		r.Post("/sessions/{id}/messages", h.createMessage)
		r.Get("/messages/search", h.searchMessages)
		r.Get("/stats", h.dataStats)

		r.Get("/memories", h.listMemories)
		r.Post("/memories", h.createMemory)
		r.Get("/memories/top", h.topMemories)
		r.Delete("/memories/{id}", h.deleteMemory)
		r.Get("/persona", h.getPersona)
		r.Post("/persona/analyze", h.analyzePersona)

		r.Post("/rag/search", h.ragSearch)
		r.Post("/index/messages", h.indexMessages)
		r.Get("/index/stats", h.indexStats)
	})

	MountSwagger(r)
	return r
}

type handlers struct {
	svc Service
}

// decodeJSON enforces the content type and body limit and decodes into v.
// It writes the error response itself and reports whether decoding worked.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		// Oversized bodies are reported as invalid JSON too.
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeJSONError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

func queryLimit(r *http.Request, def int) int {
	n, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || n <= 0 {
		return def
	}
	return n
}
