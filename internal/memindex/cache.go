package memindex

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// WrapLRU caches embeddings of e in an expiring LRU keyed by the exact
// text. A non-positive size or ttl returns e unchanged.
func WrapLRU(e Embedder, size int, ttl time.Duration) Embedder {
	if e == nil || size <= 0 || ttl <= 0 {
		return e
	}
	return &lruEmbedder{
		next:  e,
		cache: expirable.NewLRU[string, []float32](size, nil, ttl),
	}
}

type lruEmbedder struct {
	next  Embedder
	cache *expirable.LRU[string, []float32]
}

func (l *lruEmbedder) Name() string { return l.next.Name() }

func (l *lruEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	var (
		missing []string
		slots   []int
	)
	for i, t := range texts {
		if v, ok := l.cache.Get(t); ok {
			out[i] = cloneVector(v)
			embedCacheTotal.WithLabelValues("hit").Inc()
			continue
		}
		embedCacheTotal.WithLabelValues("miss").Inc()
		missing = append(missing, t)
		slots = append(slots, i)
	}
	if len(missing) == 0 {
		return out, nil
	}
	vecs, err := l.next.Embed(ctx, missing)
	if err != nil {
		return nil, err
	}
	for j, v := range vecs {
		if j >= len(slots) {
			break
		}
		l.cache.Add(missing[j], cloneVector(v))
		out[slots[j]] = v
	}
	return out, nil
}

func cloneVector(v []float32) []float32 {
	if len(v) == 0 {
		return nil
	}
	c := make([]float32, len(v))
	copy(c, v)
	return c
}
