package embed

import (
	"context"

	"github.com/cockroachdb/errors"
	lru "github.com/hashicorp/golang-lru/v2"
)

// Cached memoises vectors of an inner embedder for the life of the process.
// Reference names are embedded on every institute lookup, so repeated passes
// only pay for the query text.
type Cached struct {
	inner Embedder
	cache *lru.Cache[string, []float32]
}

// NewCached wraps inner with an LRU of size entries.
func NewCached(inner Embedder, size int) (*Cached, error) {
	if size <= 0 {
		size = 4096
	}
	cache, err := lru.New[string, []float32](size)
	if err != nil {
		return nil, err
	}
	return &Cached{inner: inner, cache: cache}, nil
}

// ModelID implements Embedder.
func (c *Cached) ModelID() string { return c.inner.ModelID() }

// Len returns the number of cached vectors.
func (c *Cached) Len() int { return c.cache.Len() }

// Embed implements Embedder, sending only uncached texts to the inner
// embedder.
func (c *Cached) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	var missing []string
	var missingIdx []int
	for i, t := range texts {
		if v, ok := c.cache.Get(t); ok {
			out[i] = v
			continue
		}
		missing = append(missing, t)
		missingIdx = append(missingIdx, i)
	}
	if len(missing) == 0 {
		return out, nil
	}

	vecs, err := c.inner.Embed(ctx, missing)
	if err != nil {
		return nil, err
	}
	if len(vecs) != len(missing) {
		return nil, errors.Newf("embed: got %d vectors for %d inputs", len(vecs), len(missing))
	}
	for j, v := range vecs {
		out[missingIdx[j]] = v
		c.cache.Add(missing[j], v)
	}
	return out, nil
}
