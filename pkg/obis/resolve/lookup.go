package resolve

import (
	"context"
	"fmt"
	"strings"

	"github.com/cognicore/obisquery/pkg/obis/match"
	"github.com/cognicore/obisquery/pkg/obis/params"
)

// DefaultMaxAlternatives caps the numbered list in multi-match reports.
const DefaultMaxAlternatives = 5

// LookupResolver resolves a field through an external lookup service:
// zero hits is NotFound, one hit resolves silently and several hits use the
// first while reporting up to MaxAlternatives of them.
type LookupResolver struct {
	field  string
	lookup Lookup

	// MaxAlternatives caps the report list (DefaultMaxAlternatives when 0).
	MaxAlternatives int

	value    func(hit Match, destination string) string
	chosen   func(hit Match) string
	line     func(hit Match) string
	header   string // format with the query
	missing  func(query string) string
	reportOn bool
}

// NewCommonNameResolver resolves a vernacular name to a scientific name, or
// to the taxon id when the destination is "id".
func NewCommonNameResolver(l Lookup) *LookupResolver {
	return &LookupResolver{
		field:  params.KeyCommonName,
		lookup: l,
		value: func(hit Match, destination string) string {
			if destination == params.KeyScientificName {
				return hit.Label
			}
			return hit.ID
		},
		chosen:   func(hit Match) string { return hit.Label },
		line:     func(hit Match) string { return hit.Display + " -> " + hit.Label },
		header:   "Multiple scientific name matches found for %q:",
		missing:  func(q string) string { return "No scientific names found for " + q },
		reportOn: true,
	}
}

// NewDatasetNameResolver resolves a dataset title to its UUID.
func NewDatasetNameResolver(l Lookup) *LookupResolver {
	return &LookupResolver{
		field:    params.KeyDatasetName,
		lookup:   l,
		value:    func(hit Match, _ string) string { return hit.ID },
		chosen:   func(hit Match) string { return hit.Label },
		line:     func(hit Match) string { return hit.Label + " -> " + hit.ID },
		header:   "Multiple dataset matches found for %q:",
		missing:  func(string) string { return "The dataset specified doesn't match any OBIS list of datasets" },
		reportOn: true,
	}
}

// NewScientificNameResolver resolves a scientific name to its taxon id,
// taking the first hit without a report.
func NewScientificNameResolver(l Lookup) *LookupResolver {
	return &LookupResolver{
		field:   params.KeyScientificName,
		lookup:  l,
		value:   func(hit Match, _ string) string { return hit.ID },
		chosen:  func(hit Match) string { return hit.Label },
		missing: func(q string) string { return "No taxa found for " + q },
	}
}

// Field implements Resolver.
func (r *LookupResolver) Field() string { return r.field }

// Resolve implements Resolver.
func (r *LookupResolver) Resolve(ctx context.Context, m *params.Map, destination string) Outcome {
	query := queryOf(m, r.field)

	hits, err := r.lookup.Search(ctx, query)
	if err != nil {
		return failed(r.field, query, err)
	}
	if len(hits) == 0 {
		return notFound(r.field, query, r.missing(query))
	}

	first := hits[0]
	out := Outcome{
		Kind:        Resolved,
		Field:       r.field,
		Query:       query,
		Destination: destination,
		Value:       r.value(first, destination),
		Chosen:      r.chosen(first),
		Candidates:  make([]match.Candidate, len(hits)),
	}
	for i, h := range hits {
		out.Candidates[i] = match.Candidate{ID: h.ID, Name: r.chosen(h)}
	}

	if len(hits) > 1 && r.reportOn {
		out.Kind = Ambiguous
		out.Report = r.report(query, hits, out.Chosen)
	}

	if err := apply(m, &out); err != nil {
		return failed(r.field, query, err)
	}
	return out
}

func (r *LookupResolver) report(query string, hits []Match, chosen string) string {
	limit := r.MaxAlternatives
	if limit <= 0 {
		limit = DefaultMaxAlternatives
	}
	if len(hits) > limit {
		hits = hits[:limit]
	}

	var b strings.Builder
	fmt.Fprintf(&b, r.header, query)
	for i, h := range hits {
		fmt.Fprintf(&b, "\n%d. %s", i+1, r.line(h))
	}
	fmt.Fprintf(&b, "\nFetching records for %s", chosen)
	return b.String()
}
