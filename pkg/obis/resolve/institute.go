package resolve

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/cognicore/obisquery/pkg/obis/catalog"
	"github.com/cognicore/obisquery/pkg/obis/lexicon"
	"github.com/cognicore/obisquery/pkg/obis/match"
	"github.com/cognicore/obisquery/pkg/obis/params"
)

// InstituteResolver matches institute names with the hybrid ranker.
type InstituteResolver struct {
	Catalog    Catalog
	Ranker     Ranker
	Thresholds match.Thresholds
	TopN       int
	Aliases    *lexicon.Lexicon
	Logger     *zap.SugaredLogger
}

// Field implements Resolver.
func (r *InstituteResolver) Field() string { return params.KeyInstitute }

// Resolve implements Resolver. The query is the institute name, followed by
// the pending area name when one is present. A resolved institute takes
// precedence over area: any area key is removed from m.
func (r *InstituteResolver) Resolve(ctx context.Context, m *params.Map, destination string) Outcome {
	name := r.Aliases.Rewrite(lexicon.Institute, queryOf(m, params.KeyInstitute))
	query := name
	if area := queryOf(m, params.KeyArea); area != "" {
		query += " " + area
	}

	entities, err := r.Catalog.Get(ctx, catalog.KindInstitute)
	if err != nil {
		return failed(params.KeyInstitute, query, err)
	}
	candidates, err := r.Ranker.Rank(ctx, query, entities, r.TopN)
	if err != nil {
		return failed(params.KeyInstitute, query, err)
	}

	notFoundReport := fmt.Sprintf("OBIS doesn't have any institutes named %s", name)
	if len(candidates) == 0 {
		return notFound(params.KeyInstitute, query, notFoundReport)
	}

	top := candidates[0]
	out := Outcome{
		Field:       params.KeyInstitute,
		Query:       query,
		Destination: destination,
		Value:       top.ID,
		Chosen:      top.Name,
		Candidates:  candidates,
	}

	switch r.Thresholds.Classify(top.Score) {
	case match.Reject:
		return notFound(params.KeyInstitute, query, notFoundReport)
	case match.Uncertain:
		accepted := r.Thresholds.Accepted(candidates)
		names := make([]string, len(accepted))
		for i, c := range accepted {
			names[i] = c.Name
		}
		out.Kind = Ambiguous
		if len(accepted) == 1 {
			out.Report = fmt.Sprintf("The closest OBIS institute name to the input is %s. Records for %s will be fetched",
				top.Name, top.Name)
		} else {
			out.Report = fmt.Sprintf("OBIS has %d closest matching institute names with the input. They are %s. Records for %s will be fetched",
				len(accepted), strings.Join(names, ", "), top.Name)
		}
	default:
		out.Kind = Resolved
	}

	if err := apply(m, &out); err != nil {
		return failed(params.KeyInstitute, query, err)
	}
	if m.Delete(params.KeyArea) && r.Logger != nil {
		r.Logger.Debugw("area dropped in favour of institute", "institute", top.Name)
	}
	return out
}
