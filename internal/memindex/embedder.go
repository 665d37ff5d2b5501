package memindex

import "context"

// Embedder turns texts into fixed-length vectors. Query and passage framing
// is added by Index; embedders see the framed text as-is.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	// Name identifies the embedding model; vectors from different names are
	// not comparable.
	Name() string
}

const (
	queryPrefix   = "query: "
	passagePrefix = "passage: "
)
