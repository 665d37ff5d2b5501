package memindex

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
)

// OllamaConfig configures an OllamaEmbedder.
type OllamaConfig struct {
	BaseURL string
	Model   string
	Client  *http.Client
	// MaxRetries for transport errors and 5xx responses.
	MaxRetries uint64
	// Backoff is the base of the Fibonacci retry delay.
	Backoff time.Duration
}

// OllamaEmbedder calls a local Ollama server's /api/embeddings endpoint,
// one request per text.
type OllamaEmbedder struct {
	baseURL    string
	model      string
	client     *http.Client
	maxRetries uint64
	backoff    time.Duration
}

func NewOllamaEmbedder(cfg OllamaConfig) *OllamaEmbedder {
	e := &OllamaEmbedder{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		model:      cfg.Model,
		client:     cfg.Client,
		maxRetries: cfg.MaxRetries,
		backoff:    cfg.Backoff,
	}
	if e.baseURL == "" {
		e.baseURL = "http://localhost:11434"
	}
	if e.model == "" {
		e.model = "nomic-embed-text"
	}
	if e.client == nil {
		e.client = &http.Client{Timeout: 60 * time.Second}
	}
	if e.backoff <= 0 {
		e.backoff = time.Second
	}
	return e
}

func (e *OllamaEmbedder) Name() string { return "ollama-" + e.model }

type ollamaEmbedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaEmbedResponse struct {
	Embedding []float64 `json:"embedding"`
}

func (e *OllamaEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		var vec []float32
		b := retry.WithMaxRetries(e.maxRetries, retry.NewFibonacci(e.backoff))
		err := retry.Do(ctx, b, func(ctx context.Context) error {
			v, err := e.embedOne(ctx, text)
			if err != nil {
				return err
			}
			vec = v
			return nil
		})
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

// embedOne performs one request. Transport failures and 5xx responses are
// marked retryable.
func (e *OllamaEmbedder) embedOne(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(ollamaEmbedRequest{Model: e.model, Prompt: text})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/api/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := e.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, retry.RetryableError(fmt.Errorf("ollama request: %w", err))
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		err := fmt.Errorf("ollama status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
		if resp.StatusCode >= 500 {
			return nil, retry.RetryableError(err)
		}
		return nil, err
	}
	var er ollamaEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(er.Embedding) == 0 {
		return nil, errors.New("ollama returned an empty embedding")
	}
	vec := make([]float32, len(er.Embedding))
	for j, v := range er.Embedding {
		vec[j] = float32(v)
	}
	return vec, nil
}
