// Package memindex stores embeddings of messages and memory facts and ranks
// them against query vectors by cosine similarity.
//
// Content is fingerprinted before embedding, so re-indexing unchanged
// content never calls the embedding model. Writes are serialized; searches
// run concurrently with each other.
package memindex

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// batchSize bounds the number of passages per Embed call in IndexBatch.
const batchSize = 16

// Config assembles an Index.
type Config struct {
	Embedder Embedder
	Store    Store
	// Searcher defaults to LinearSearcher.
	Searcher Searcher
	Logger   *zerolog.Logger
}

type Index struct {
	embedder Embedder
	store    Store
	searcher Searcher
	log      zerolog.Logger

	// mu serializes writes; searches share it.
	mu sync.RWMutex
	// flight collapses concurrent Index calls for the same content.
	flight singleflight.Group
}

func New(cfg Config) *Index {
	ix := &Index{
		embedder: cfg.Embedder,
		store:    cfg.Store,
		searcher: cfg.Searcher,
	}
	if ix.searcher == nil {
		ix.searcher = LinearSearcher{}
	}
	if cfg.Logger != nil {
		ix.log = cfg.Logger.With().Str("component", "memindex").Logger()
	} else {
		ix.log = zerolog.Nop()
	}
	return ix
}

// EmbedderName returns the name of the embedding model.
func (ix *Index) EmbedderName() string {
	if ix.embedder == nil {
		return ""
	}
	return ix.embedder.Name()
}

// EmbedQuery embeds text with query framing, for searching.
func (ix *Index) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vecs, err := ix.embed(ctx, "embed_query", []string{queryPrefix + text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedPassage embeds text with passage framing, for storing.
func (ix *Index) EmbedPassage(ctx context.Context, text string) ([]float32, error) {
	vecs, err := ix.EmbedPassages(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedPassages embeds several texts with passage framing in one call.
func (ix *Index) EmbedPassages(ctx context.Context, texts []string) ([][]float32, error) {
	framed := make([]string, len(texts))
	for i, t := range texts {
		framed[i] = passagePrefix + t
	}
	return ix.embed(ctx, "embed_passage", framed)
}

func (ix *Index) embed(ctx context.Context, op string, texts []string) ([][]float32, error) {
	if ix.embedder == nil {
		return nil, embedErr(op, errors.New("no embedder configured"))
	}
	vecs, err := ix.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, embedErr(op, err)
	}
	if len(vecs) != len(texts) {
		return nil, embedErr(op, fmt.Errorf("embedder returned %d vectors for %d texts", len(vecs), len(texts)))
	}
	for _, v := range vecs {
		if len(v) == 0 {
			return nil, embedErr(op, errors.New("embedder returned an empty vector"))
		}
	}
	return vecs, nil
}

// Index embeds content as a passage and stores it under (kind, id). When the
// stored fingerprint matches, nothing is embedded or written.
func (ix *Index) Index(ctx context.Context, kind SourceKind, id int64, content string) error {
	if !kind.Valid() {
		return storageErr("index", fmt.Errorf("%w: %q", ErrInvalidKind, kind))
	}
	fp := Fingerprint(content)
	key := fmt.Sprintf("%s/%d/%s", kind, id, fp)
	_, err, _ := ix.flight.Do(key, func() (interface{}, error) {
		return nil, ix.indexOne(ctx, kind, id, content, fp)
	})
	return err
}

func (ix *Index) indexOne(ctx context.Context, kind SourceKind, id int64, content, fp string) error {
	stored, ok, err := ix.store.Fingerprint(ctx, kind, id)
	if err != nil {
		indexTotal.WithLabelValues("error").Inc()
		return storageErr("index", err)
	}
	if ok && stored == fp {
		indexTotal.WithLabelValues("unchanged").Inc()
		return nil
	}
	vec, err := ix.EmbedPassage(ctx, content)
	if err != nil {
		indexTotal.WithLabelValues("error").Inc()
		return err
	}
	if err := ix.put(ctx, Record{Kind: kind, SourceID: id, Fingerprint: fp, Vector: vec}); err != nil {
		indexTotal.WithLabelValues("error").Inc()
		return err
	}
	indexTotal.WithLabelValues("indexed").Inc()
	ix.log.Debug().Str("kind", string(kind)).Int64("id", id).Int("dim", len(vec)).Msg("indexed")
	return nil
}

// IndexBatch indexes items whose fingerprint changed, embedding them in
// batches. It returns how many records were written. Items processed before
// a failure stay indexed.
func (ix *Index) IndexBatch(ctx context.Context, items []Item) (int, error) {
	type pending struct {
		item Item
		fp   string
	}
	var todo []pending
	for _, it := range items {
		if !it.Kind.Valid() {
			return 0, storageErr("index_batch", fmt.Errorf("%w: %q", ErrInvalidKind, it.Kind))
		}
		fp := Fingerprint(it.Content)
		stored, ok, err := ix.store.Fingerprint(ctx, it.Kind, it.SourceID)
		if err != nil {
			return 0, storageErr("index_batch", err)
		}
		if ok && stored == fp {
			indexTotal.WithLabelValues("unchanged").Inc()
			continue
		}
		todo = append(todo, pending{item: it, fp: fp})
	}
	written := 0
	for start := 0; start < len(todo); start += batchSize {
		// a concurrent Index call may have stored some items meanwhile
		var chunk []pending
		for _, p := range todo[start:min(start+batchSize, len(todo))] {
			stored, ok, err := ix.store.Fingerprint(ctx, p.item.Kind, p.item.SourceID)
			if err != nil {
				return written, storageErr("index_batch", err)
			}
			if ok && stored == p.fp {
				indexTotal.WithLabelValues("unchanged").Inc()
				continue
			}
			chunk = append(chunk, p)
		}
		if len(chunk) == 0 {
			continue
		}
		texts := make([]string, len(chunk))
		for i, p := range chunk {
			texts[i] = p.item.Content
		}
		vecs, err := ix.EmbedPassages(ctx, texts)
		if err != nil {
			indexTotal.WithLabelValues("error").Add(float64(len(chunk)))
			return written, err
		}
		for i, p := range chunk {
			r := Record{Kind: p.item.Kind, SourceID: p.item.SourceID, Fingerprint: p.fp, Vector: vecs[i]}
			if err := ix.put(ctx, r); err != nil {
				indexTotal.WithLabelValues("error").Inc()
				return written, err
			}
			indexTotal.WithLabelValues("indexed").Inc()
			written++
		}
	}
	return written, nil
}

// put writes r after checking its dimension against the stored vectors.
func (ix *Index) put(ctx context.Context, r Record) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	dim, err := ix.store.Dimension(ctx)
	if err != nil {
		return storageErr("index", err)
	}
	if dim != 0 && len(r.Vector) != dim {
		// the only record of a different size may be the one being replaced
		n, err := ix.countLocked(ctx)
		if err != nil {
			return storageErr("index", err)
		}
		_, own, err := ix.store.Fingerprint(ctx, r.Kind, r.SourceID)
		if err != nil {
			return storageErr("index", err)
		}
		if !(n == 1 && own) {
			return embedErr("index", fmt.Errorf("%w: got %d, index holds %d", ErrDimensionMismatch, len(r.Vector), dim))
		}
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	if err := ix.store.Put(ctx, r); err != nil {
		return storageErr("index", err)
	}
	return nil
}

func (ix *Index) countLocked(ctx context.Context) (int, error) {
	counts, err := ix.store.Counts(ctx)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, c := range counts {
		n += c
	}
	return n, nil
}

// Search ranks stored records of kind (KindAny for all) against query and
// returns at most topK hits with similarity >= minSimilarity.
func (ix *Index) Search(ctx context.Context, query []float32, kind SourceKind, topK int, minSimilarity float32) ([]Hit, error) {
	start := time.Now()
	defer func() { searchDuration.Observe(time.Since(start).Seconds()) }()
	ix.mu.RLock()
	records, err := ix.store.List(ctx, kind)
	ix.mu.RUnlock()
	if err != nil {
		return nil, storageErr("search", err)
	}
	return ix.searcher.Search(ctx, query, records, topK, minSimilarity), nil
}

// SearchText embeds text as a query and searches with it.
func (ix *Index) SearchText(ctx context.Context, text string, kind SourceKind, topK int, minSimilarity float32) ([]Hit, error) {
	q, err := ix.EmbedQuery(ctx, text)
	if err != nil {
		return nil, err
	}
	return ix.Search(ctx, q, kind, topK, minSimilarity)
}

// Delete removes the record for (kind, id). Deleting a missing record is not
// an error.
func (ix *Index) Delete(ctx context.Context, kind SourceKind, id int64) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if err := ix.store.Delete(ctx, kind, id); err != nil {
		return storageErr("delete", err)
	}
	return nil
}

// Stats reports record counts, the stored dimension and the embedder name.
func (ix *Index) Stats(ctx context.Context) (Stats, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	counts, err := ix.store.Counts(ctx)
	if err != nil {
		return Stats{}, storageErr("stats", err)
	}
	dim, err := ix.store.Dimension(ctx)
	if err != nil {
		return Stats{}, storageErr("stats", err)
	}
	st := Stats{ByKind: map[SourceKind]int{KindMessage: 0, KindMemory: 0}, Dimension: dim, Embedder: ix.EmbedderName()}
	for k, n := range counts {
		st.ByKind[k] = n
		st.Total += n
	}
	return st, nil
}
