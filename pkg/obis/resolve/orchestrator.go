package resolve

import (
	"context"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/cognicore/obisquery/pkg/obis/internalerr"
	"github.com/cognicore/obisquery/pkg/obis/params"
	"github.com/cognicore/obisquery/pkg/obis/report"
)

// Options configures an Orchestrator.
type Options struct {
	Resolvers []Resolver
	Reporter  report.Reporter
	Logger    *zap.SugaredLogger
}

// Orchestrator runs field resolvers over a parameter map.
type Orchestrator struct {
	resolvers map[string]Resolver
	reporter  report.Reporter
	log       *zap.SugaredLogger
}

// NewOrchestrator indexes the resolvers by the field they own. A later
// resolver for the same field replaces an earlier one.
func NewOrchestrator(opts Options) *Orchestrator {
	o := &Orchestrator{
		resolvers: make(map[string]Resolver, len(opts.Resolvers)),
		reporter:  opts.Reporter,
		log:       opts.Logger,
	}
	if o.log == nil {
		o.log = zap.NewNop().Sugar()
	}
	for _, r := range opts.Resolvers {
		o.resolvers[r.Field()] = r
	}
	return o
}

// ResolveAll resolves m with the occurrence search profile.
func (o *Orchestrator) ResolveAll(ctx context.Context, m *params.Map) Result {
	return o.Resolve(ctx, DefaultProfile(), m)
}

// ResolveFor resolves m with the profile of endpoint e.
func (o *Orchestrator) ResolveFor(ctx context.Context, e *params.Endpoint, m *params.Map) Result {
	return o.Resolve(ctx, ProfileFor(e), m)
}

// Resolve runs the profile's steps whose trigger key is present in m, in
// profile order, mutating m in place. It stops at the first NotFound or
// Failed outcome and returns Aborted; otherwise Complete. Every report is
// passed verbatim to the reporter. A map with no trigger keys is returned
// unchanged. Null or blank trigger keys are dropped without a lookup.
func (o *Orchestrator) Resolve(ctx context.Context, profile Profile, m *params.Map) Result {
	res := Result{State: Complete, Params: m}

	for _, step := range profile {
		// Checked per step: an earlier resolver may have consumed this key.
		if !m.Has(step.Trigger) {
			continue
		}
		if !hasTrigger(m, step.Trigger) {
			m.Delete(step.Trigger)
			continue
		}

		var out Outcome
		if err := ctx.Err(); err != nil {
			out = failed(step.Trigger, queryOf(m, step.Trigger), err)
		} else if r, ok := o.resolvers[step.Trigger]; ok {
			out = r.Resolve(ctx, m, step.Destination)
		} else {
			err := errors.Wrapf(internalerr.ErrInvalidConfig, "no resolver for %s", step.Trigger)
			out = failed(step.Trigger, queryOf(m, step.Trigger), err)
		}

		o.log.Debugw("field resolved",
			"field", step.Trigger,
			"query", out.Query,
			"outcome", out.Kind.String(),
			"value", out.Value,
		)
		res.Outcomes = append(res.Outcomes, out)

		if out.Report != "" && o.reporter != nil {
			o.reporter.Log(ctx, out.Report, nil)
		}
		if out.Kind.Fatal() {
			res.State = Aborted
			res.Final = &res.Outcomes[len(res.Outcomes)-1]
			return res
		}
	}
	return res
}

// Explain converts the outcomes of a pass into artifact explanations.
func (r Result) Explain() []report.Resolution {
	out := make([]report.Resolution, 0, len(r.Outcomes))
	for _, o := range r.Outcomes {
		if o.Kind.Fatal() {
			continue
		}
		res := report.Resolution{
			Field:       o.Field,
			Query:       o.Query,
			Destination: o.Destination,
			Value:       o.Value,
		}
		if len(o.Candidates) > 0 {
			res.Score = o.Candidates[0].Score
			for _, c := range o.Candidates[1:] {
				res.Alternatives = append(res.Alternatives, c.Name)
			}
		}
		out = append(out, res)
	}
	return out
}
