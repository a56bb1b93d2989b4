package match

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/cognicore/obisquery/pkg/obis/embed"
)

// Semantic scores names by cosine similarity of their embeddings.
type Semantic struct {
	embedder embed.Embedder
}

// NewSemantic builds a semantic matcher over e.
func NewSemantic(e embed.Embedder) *Semantic {
	return &Semantic{embedder: e}
}

// Scores returns one cosine similarity in [-1, 1] per name. The query and
// the names are embedded in a single call.
func (s *Semantic) Scores(ctx context.Context, query string, names []string) ([]float64, error) {
	if len(names) == 0 {
		return nil, nil
	}
	texts := make([]string, 0, len(names)+1)
	texts = append(texts, query)
	texts = append(texts, names...)

	vecs, err := s.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, errors.Wrap(err, "embed names")
	}
	if len(vecs) != len(texts) {
		return nil, errors.Newf("embedder returned %d vectors for %d texts", len(vecs), len(texts))
	}

	out := make([]float64, len(names))
	for i := range names {
		out[i] = embed.Cosine(vecs[0], vecs[i+1])
	}
	return out, nil
}
