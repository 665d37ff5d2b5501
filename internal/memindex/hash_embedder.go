package memindex

import (
	"context"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/cespare/xxhash/v2"
)

// DefaultHashDimension is the vector length of HashEmbedder when unset.
const DefaultHashDimension = 256

// HashEmbedder is a deterministic bag-of-words embedder: each lowercased
// word is hashed into a signed bucket and the vector is L2-normalized. It
// needs no model and serves offline setups and tests. The query/passage
// framing word is not counted.
type HashEmbedder struct {
	Dim int
}

func (h HashEmbedder) dim() int {
	if h.Dim <= 0 {
		return DefaultHashDimension
	}
	return h.Dim
}

func (h HashEmbedder) Name() string { return "hash-" + strconv.Itoa(h.dim()) }

func (h HashEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = h.embed(t)
	}
	return out, nil
}

func (h HashEmbedder) embed(text string) []float32 {
	d := h.dim()
	v := make([]float32, d)
	text = strings.TrimPrefix(text, queryPrefix)
	text = strings.TrimPrefix(text, passagePrefix)
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		sum := xxhash.Sum64String(w)
		idx := sum % uint64(d)
		if sum>>63 == 1 {
			v[idx]--
		} else {
			v[idx]++
		}
	}
	var norm float64
	for _, f := range v {
		norm += float64(f) * float64(f)
	}
	if norm == 0 {
		return v
	}
	inv := float32(1 / math.Sqrt(norm))
	for i := range v {
		v[i] *= inv
	}
	return v
}
