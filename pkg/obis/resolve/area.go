package resolve

import (
	"context"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/cognicore/obisquery/pkg/obis/catalog"
	"github.com/cognicore/obisquery/pkg/obis/lexicon"
	"github.com/cognicore/obisquery/pkg/obis/match"
	"github.com/cognicore/obisquery/pkg/obis/params"
)

const areaNotFound = "The area specified doesn't match any OBIS list of areas"

// AreaResolver matches area names by case-insensitive substring containment
// in the area name or identifier. Area ids are a closed vocabulary the
// extractor is expected to echo back, so there is no fuzzy scoring here.
type AreaResolver struct {
	Catalog Catalog
	Aliases *lexicon.Lexicon
	// Suggestions caps the "Did you mean" list on a miss. Zero disables it.
	Suggestions int
}

// Field implements Resolver.
func (r *AreaResolver) Field() string { return params.KeyArea }

// Resolve implements Resolver. Several matching areas are all kept, as a
// comma-joined id list in catalog order.
func (r *AreaResolver) Resolve(ctx context.Context, m *params.Map, destination string) Outcome {
	query := r.Aliases.Rewrite(lexicon.Area, queryOf(m, params.KeyArea))

	areas, err := r.Catalog.Get(ctx, catalog.KindArea)
	if err != nil {
		return failed(params.KeyArea, query, err)
	}

	needle := strings.ToLower(query)
	var hits []catalog.Entity
	if needle != "" {
		for _, a := range areas {
			if strings.Contains(strings.ToLower(a.Name), needle) || strings.Contains(strings.ToLower(a.ID), needle) {
				hits = append(hits, a)
			}
		}
	}

	if len(hits) == 0 {
		report := areaNotFound
		if s := r.suggest(query, areas); len(s) > 0 {
			report += ". Did you mean: " + strings.Join(s, ", ") + "?"
		}
		return notFound(params.KeyArea, query, report)
	}

	ids := make([]string, len(hits))
	names := make([]string, len(hits))
	candidates := make([]match.Candidate, len(hits))
	for i, h := range hits {
		ids[i] = h.ID
		names[i] = h.Name
		candidates[i] = match.Candidate{ID: h.ID, Name: h.Name, Score: 1, Lexical: 1}
	}

	out := Outcome{
		Kind:        Resolved,
		Field:       params.KeyArea,
		Query:       query,
		Destination: destination,
		Value:       strings.Join(ids, ","),
		Chosen:      strings.Join(names, ", "),
		Candidates:  candidates,
	}
	if len(hits) > 1 {
		out.Kind = Ambiguous
		out.Report = "Multiple area matches found: " + strings.Join(names, ", ")
	}

	if err := apply(m, &out); err != nil {
		return failed(params.KeyArea, query, err)
	}
	return out
}

func (r *AreaResolver) suggest(query string, areas []catalog.Entity) []string {
	if r.Suggestions <= 0 || query == "" {
		return nil
	}
	names := make([]string, len(areas))
	for i, a := range areas {
		names[i] = a.Name
	}
	ranks := fuzzy.RankFindNormalizedFold(query, names)
	sort.Stable(ranks)

	out := make([]string, 0, r.Suggestions)
	for _, rk := range ranks {
		if len(out) == r.Suggestions {
			break
		}
		out = append(out, rk.Target)
	}
	return out
}
