// Package resolve turns free-text entity names in a parameter map into the
// canonical identifiers the OBIS API expects.
//
// Each Resolver owns one trigger key. On success it deletes the trigger and
// writes the destination key in one step; on any other outcome the map is
// left untouched. The Orchestrator runs the resolvers of an endpoint profile
// in a fixed order and stops at the first fatal outcome.
package resolve

import (
	"context"
	"fmt"
	"strings"

	"github.com/cognicore/obisquery/pkg/obis/catalog"
	"github.com/cognicore/obisquery/pkg/obis/internalerr"
	"github.com/cognicore/obisquery/pkg/obis/match"
	"github.com/cognicore/obisquery/pkg/obis/params"
)

// Resolver resolves one trigger key of m into destination.
type Resolver interface {
	Field() string
	Resolve(ctx context.Context, m *params.Map, destination string) Outcome
}

// Catalog provides reference sets.
type Catalog interface {
	Get(ctx context.Context, kind catalog.Kind) ([]catalog.Entity, error)
}

// Ranker orders reference entities by similarity to a query.
type Ranker interface {
	Rank(ctx context.Context, query string, entities []catalog.Entity, topN int) ([]match.Candidate, error)
}

// Match is one hit from an entity lookup service.
type Match struct {
	Display string // displayName
	ID      string // canonicalId
	Label   string // scientific name or dataset title
}

// Lookup searches an external entity service by free text. An empty result
// means no match.
type Lookup interface {
	Search(ctx context.Context, query string) ([]Match, error)
}

// LookupFunc adapts a function to Lookup.
type LookupFunc func(ctx context.Context, query string) ([]Match, error)

// Search implements Lookup.
func (f LookupFunc) Search(ctx context.Context, query string) ([]Match, error) {
	return f(ctx, query)
}

func failed(field, query string, err error) Outcome {
	msg := internalerr.UserMessage(err, "")
	report := fmt.Sprintf("Error resolving %s %q", field, query)
	if msg != "" {
		report += ": " + msg
	}
	return Outcome{Kind: Failed, Field: field, Query: query, Report: report, Err: err}
}

func notFound(field, query, report string) Outcome {
	return Outcome{Kind: NotFound, Field: field, Query: query, Report: report}
}

// apply writes a successful outcome into m: the trigger is deleted and the
// destination written together.
func apply(m *params.Map, o *Outcome) error {
	if err := m.Set(o.Destination, o.Value); err != nil {
		return err
	}
	m.Delete(o.Field)
	return nil
}

func queryOf(m *params.Map, key string) string {
	s, _ := m.String(key)
	return strings.TrimSpace(s)
}

// hasTrigger reports whether key carries a non-blank value. Null and blank
// triggers count as absent.
func hasTrigger(m *params.Map, key string) bool {
	return queryOf(m, key) != ""
}
