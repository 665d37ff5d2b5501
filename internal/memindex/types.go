package memindex

import "time"

// SourceKind names the table an embedded unit of content comes from.
type SourceKind string

const (
	KindMessage SourceKind = "message"
	KindMemory  SourceKind = "memory"
	// KindAny matches every kind in searches and listings.
	KindAny SourceKind = ""
)

// Valid reports whether k names a concrete source kind.
func (k SourceKind) Valid() bool { return k == KindMessage || k == KindMemory }

// Record is one stored embedding, unique per (Kind, SourceID).
type Record struct {
	Kind        SourceKind
	SourceID    int64
	Fingerprint string
	Vector      []float32
	CreatedAt   time.Time
}

// Hit is a search result. Hits are ordered by descending Similarity.
type Hit struct {
	Kind       SourceKind `json:"source_kind"`
	SourceID   int64      `json:"source_id"`
	Similarity float32    `json:"similarity"`
}

// Item is one unit of content submitted to IndexBatch.
type Item struct {
	Kind     SourceKind
	SourceID int64
	Content  string
}

// Stats summarizes the stored embeddings.
type Stats struct {
	Total     int                `json:"total"`
	ByKind    map[SourceKind]int `json:"by_kind"`
	Dimension int                `json:"dimension"`
	Embedder  string             `json:"embedder"`
}
