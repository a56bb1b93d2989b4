package match

import (
	"context"
	"sort"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/cognicore/obisquery/pkg/obis/catalog"
	"github.com/cognicore/obisquery/pkg/obis/internalerr"
)

// DefaultTopN is how many candidates Rank returns when asked for 0.
const DefaultTopN = 5

// Candidate is a scored reference entity.
type Candidate struct {
	ID    string
	Name  string
	Score float64

	// Component scores, before weighting.
	Lexical  float64
	Semantic float64
}

// Weights sets how lexical and semantic scores are blended. They are
// rescaled to sum to 1 so the blended score stays in [0, 1].
type Weights struct {
	Lexical  float64
	Semantic float64
}

// DefaultWeights blends both matchers equally.
func DefaultWeights() Weights {
	return Weights{Lexical: 0.5, Semantic: 0.5}
}

// Validate rejects negative weights and an all-zero blend.
func (w Weights) Validate() error {
	if w.Lexical < 0 || w.Semantic < 0 || w.Lexical+w.Semantic <= 0 {
		return errors.Wrapf(internalerr.ErrInvalidConfig, "blend weights lexical=%v semantic=%v", w.Lexical, w.Semantic)
	}
	return nil
}

func (w Weights) normalized() Weights {
	sum := w.Lexical + w.Semantic
	if sum <= 0 {
		return DefaultWeights()
	}
	return Weights{Lexical: w.Lexical / sum, Semantic: w.Semantic / sum}
}

// Options configures a Hybrid ranker.
type Options struct {
	Weights Weights
	TopN    int
	Logger  *zap.SugaredLogger
}

// Hybrid ranks entities by a weighted blend of Lexical and Semantic scores.
type Hybrid struct {
	semantic *Semantic
	weights  Weights
	topN     int
	log      *zap.SugaredLogger
}

// NewHybrid builds a ranker. Zero options select DefaultWeights and
// DefaultTopN.
func NewHybrid(semantic *Semantic, opts Options) *Hybrid {
	w := opts.Weights
	if w == (Weights{}) {
		w = DefaultWeights()
	}
	topN := opts.TopN
	if topN <= 0 {
		topN = DefaultTopN
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Hybrid{semantic: semantic, weights: w.normalized(), topN: topN, log: log}
}

// Rank scores every entity against query and returns the best topN (the
// configured default when topN <= 0) in descending score order. Equal
// scores keep catalog order.
func (h *Hybrid) Rank(ctx context.Context, query string, entities []catalog.Entity, topN int) ([]Candidate, error) {
	if topN <= 0 {
		topN = h.topN
	}
	if len(entities) == 0 {
		return nil, nil
	}

	names := make([]string, len(entities))
	for i, e := range entities {
		names[i] = e.Name
	}
	semantic, err := h.semantic.Scores(ctx, query, names)
	if err != nil {
		return nil, err
	}

	candidates := make([]Candidate, len(entities))
	for i, e := range entities {
		lex := Lexical(query, e.Name)
		sem := clamp01(semantic[i])
		candidates[i] = Candidate{
			ID:       e.ID,
			Name:     e.Name,
			Lexical:  lex,
			Semantic: sem,
			Score:    h.weights.Semantic*sem + h.weights.Lexical*lex,
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	if len(candidates) > topN {
		candidates = candidates[:topN]
	}

	h.log.Debugw("ranked candidates", "query", query, "count", len(entities), "top", candidates[0].Name, "score", candidates[0].Score)
	return candidates, nil
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
