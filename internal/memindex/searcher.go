package memindex

import (
	"context"
	"sort"
)

// Searcher ranks candidate records against a query vector. The linear scan
// is the default; an approximate nearest-neighbor index can replace it
// without changing callers.
type Searcher interface {
	Search(ctx context.Context, query []float32, candidates []Record, topK int, minSimilarity float32) []Hit
}

// LinearSearcher scores every candidate. Cost is O(n*d); it is meant for
// corpora of thousands of records.
type LinearSearcher struct{}

func (LinearSearcher) Search(ctx context.Context, query []float32, candidates []Record, topK int, minSimilarity float32) []Hit {
	if topK <= 0 || len(query) == 0 {
		return nil
	}
	hits := make([]Hit, 0, min(len(candidates), 64))
	for i, r := range candidates {
		if i%1024 == 0 && ctx.Err() != nil {
			return nil
		}
		if len(r.Vector) != len(query) {
			continue
		}
		s := Cosine(query, r.Vector)
		if s < minSimilarity {
			continue
		}
		hits = append(hits, Hit{Kind: r.Kind, SourceID: r.SourceID, Similarity: s})
	}
	// ties keep storage order
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Similarity > hits[j].Similarity })
	if len(hits) > topK {
		hits = hits[:topK]
	}
	return hits
}
