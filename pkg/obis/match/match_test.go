package match

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/obisquery/pkg/obis/catalog"
	"github.com/cognicore/obisquery/pkg/obis/embed"
)

// tableEmbedder returns fixed vectors per text; unknown texts get the zero
// vector.
type tableEmbedder map[string][]float32

func (t tableEmbedder) ModelID() string { return "table" }

func (t tableEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, s := range texts {
		v, ok := t[s]
		if !ok {
			v = []float32{0, 0}
		}
		out[i] = v
	}
	return out, nil
}

type failingEmbedder struct{}

func (failingEmbedder) ModelID() string { return "failing" }
func (failingEmbedder) Embed(context.Context, []string) ([][]float32, error) {
	return nil, errors.New("model offline")
}

func TestLexical(t *testing.T) {
	tests := []struct {
		query, name string
		want        float64
	}{
		{"marine institute", "Flanders Marine Institute - Belgium", 1},
		{"Institute Marine", "flanders marine institute", 1},
		{"flanders institute ghent", "Flanders Marine Institute", 2.0 / 3.0},
		{"vliz", "Flanders Marine Institute", 0},
		{"", "Anything", 0},
		{"marine marine", "Marine Biological Association", 1},
		{"mar", "Marine", 0},
	}
	for _, tc := range tests {
		assert.InDelta(t, tc.want, Lexical(tc.query, tc.name), 1e-9, "%q vs %q", tc.query, tc.name)
	}
}

func TestHybridBlendsEqually(t *testing.T) {
	emb := tableEmbedder{
		"marine institute": {1, 0},
		"Marine Institute": {1, 0},
		"Ocean Lab":        {0.6, 0.8},
		"Oceanic Marine":   {-1, 0},
	}
	h := NewHybrid(NewSemantic(emb), Options{})
	entities := []catalog.Entity{
		{ID: "1", Name: "Ocean Lab"},
		{ID: "2", Name: "Marine Institute"},
		{ID: "3", Name: "Oceanic Marine"},
	}

	got, err := h.Rank(context.Background(), "marine institute", entities, 0)
	require.NoError(t, err)
	require.Len(t, got, 3)

	for _, c := range got {
		assert.InDelta(t, 0.5*c.Lexical+0.5*c.Semantic, c.Score, 1e-12)
	}
	assert.Equal(t, "2", got[0].ID)
	assert.InDelta(t, 1.0, got[0].Score, 1e-9)
	assert.Equal(t, "1", got[1].ID)
	assert.InDelta(t, 0.3, got[1].Score, 1e-6)
	assert.Equal(t, "3", got[2].ID)
	assert.Equal(t, 0.0, got[2].Semantic, "negative cosine is clamped")
	assert.InDelta(t, 0.25, got[2].Score, 1e-9)
}

func TestHybridTopNAndStableTies(t *testing.T) {
	h := NewHybrid(NewSemantic(tableEmbedder{}), Options{TopN: 2})
	entities := []catalog.Entity{
		{ID: "a", Name: "North Sea"},
		{ID: "b", Name: "Sea of Japan"},
		{ID: "c", Name: "Red Sea"},
	}

	got, err := h.Rank(context.Background(), "sea", entities, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, []string{"a", "b"}, []string{got[0].ID, got[1].ID})

	got, err = h.Rank(context.Background(), "sea", entities, 10)
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestHybridMonotonicInSimilarity(t *testing.T) {
	h := NewHybrid(NewSemantic(embed.NewHash(0)), Options{})
	entities := []catalog.Entity{
		{ID: "far", Name: "Woods Hole Oceanographic Institution - United States"},
		{ID: "mid", Name: "Flanders Institute - Belgium"},
		{ID: "near", Name: "Flanders Marine Institute - Belgium"},
	}

	got, err := h.Rank(context.Background(), "Flanders Marine Institute", entities, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"near", "mid", "far"}, []string{got[0].ID, got[1].ID, got[2].ID})
}

func TestHybridPropagatesEmbedderError(t *testing.T) {
	h := NewHybrid(NewSemantic(failingEmbedder{}), Options{})
	_, err := h.Rank(context.Background(), "q", []catalog.Entity{{ID: "1", Name: "x"}}, 0)
	assert.Error(t, err)

	got, err := h.Rank(context.Background(), "q", nil, 0)
	assert.NoError(t, err)
	assert.Empty(t, got)
}

func TestCustomWeightsAreRescaled(t *testing.T) {
	emb := tableEmbedder{"q": {1, 0}, "q name": {1, 0}}
	h := NewHybrid(NewSemantic(emb), Options{Weights: Weights{Lexical: 3, Semantic: 1}})

	got, err := h.Rank(context.Background(), "q", []catalog.Entity{{ID: "1", Name: "q name"}}, 0)
	require.NoError(t, err)
	assert.InDelta(t, 0.75*1+0.25*1, got[0].Score, 1e-12)

	assert.Error(t, Weights{}.Validate())
	assert.Error(t, Weights{Lexical: -1, Semantic: 2}.Validate())
	assert.NoError(t, DefaultWeights().Validate())
}

func TestThresholdsClassify(t *testing.T) {
	th := DefaultThresholds()
	assert.Equal(t, Reject, th.Classify(0.4999))
	assert.Equal(t, Uncertain, th.Classify(0.50), "the floor itself is accepted")
	assert.Equal(t, Uncertain, th.Classify(0.7999))
	assert.Equal(t, Confident, th.Classify(0.80))
	assert.Equal(t, Confident, th.Classify(1))
	assert.Equal(t, "uncertain", Uncertain.String())

	assert.NoError(t, th.Validate())
	assert.Error(t, Thresholds{Floor: 0.9, Confident: 0.8}.Validate())
}

func TestThresholdsAccepted(t *testing.T) {
	th := DefaultThresholds()
	cands := []Candidate{{Name: "a", Score: 0.75}, {Name: "b", Score: 0.5}, {Name: "c", Score: 0.49}}
	got := th.Accepted(cands)
	assert.Len(t, got, 2)
	assert.Empty(t, th.Accepted([]Candidate{{Score: 0.1}}))
}
