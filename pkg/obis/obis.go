// Package obis is the request-to-artifact facade: it reads parameters from a
// natural-language request, resolves entity names into OBIS identifiers,
// queries the API and packages the result.
package obis

import (
	"context"
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/cognicore/obisquery/pkg/obis/internalerr"
	"github.com/cognicore/obisquery/pkg/obis/params"
	"github.com/cognicore/obisquery/pkg/obis/report"
	"github.com/cognicore/obisquery/pkg/obis/resolve"
	"github.com/cognicore/obisquery/pkg/obis/validate"
)

// Extractor reads endpoint parameters out of a free-text request.
type Extractor interface {
	Extract(ctx context.Context, e *params.Endpoint, request string) (*params.Extraction, error)
}

// Executor runs a sealed query.
type Executor interface {
	Query(ctx context.Context, q params.Canonical) (*params.QueryResult, error)
}

// Options configures an Agent.
type Options struct {
	Registry     *params.Registry
	Extractor    Extractor
	Orchestrator *resolve.Orchestrator
	Executor     Executor
	Reporter     report.Reporter
	Artifacts    *report.Builder
	// BaseURL is used for URLs shown to the user; defaults to the public API.
	BaseURL string
	Logger  *zap.SugaredLogger
}

// Agent answers requests against one OBIS deployment.
type Agent struct {
	registry  *params.Registry
	extractor Extractor
	orch      *resolve.Orchestrator
	executor  Executor
	reporter  report.Reporter
	artifacts *report.Builder
	baseURL   string
	log       *zap.SugaredLogger
}

// New creates an Agent with the given dependencies.
func New(opts Options) *Agent {
	a := &Agent{
		registry:  opts.Registry,
		extractor: opts.Extractor,
		orch:      opts.Orchestrator,
		executor:  opts.Executor,
		reporter:  opts.Reporter,
		artifacts: opts.Artifacts,
		baseURL:   opts.BaseURL,
		log:       opts.Logger,
	}
	if a.registry == nil {
		a.registry = params.DefaultRegistry()
	}
	if a.orch == nil {
		a.orch = resolve.NewOrchestrator(resolve.Options{})
	}
	if a.reporter == nil {
		a.reporter = report.NewRecorder()
	}
	if a.artifacts == nil {
		a.artifacts = report.NewBuilder()
	}
	if a.baseURL == "" {
		a.baseURL = params.BaseURL
	}
	if a.log == nil {
		a.log = zap.NewNop().Sugar()
	}
	return a
}

// Answer collects everything produced while serving one request.
type Answer struct {
	Endpoint   string
	Request    string
	Query      params.Canonical
	URL        string
	Warnings   []string
	Resolution resolve.Result
	Result     *params.QueryResult
	Validation validate.Report
	Artifact   *report.Artifact
}

// Endpoint looks up an endpoint by name.
func (a *Agent) Endpoint(name string) (*params.Endpoint, error) {
	e, ok := a.registry.Lookup(name)
	if !ok {
		return nil, errors.WithHint(
			errors.Wrapf(internalerr.ErrInvalidInput, "unknown endpoint %q", name),
			"known endpoints: "+strings.Join(a.registry.Names(), ", "))
	}
	return e, nil
}

// Ask serves a natural-language request end to end.
func (a *Agent) Ask(ctx context.Context, endpoint, request string) (*Answer, error) {
	e, err := a.Endpoint(endpoint)
	if err != nil {
		return nil, err
	}
	if a.extractor == nil {
		return nil, errors.Wrap(internalerr.ErrInvalidConfig, "no parameter extractor configured")
	}

	a.reporter.Log(ctx, "Generating search parameters", nil)
	ex, err := a.extractor.Extract(ctx, e, request)
	if err != nil {
		return nil, errors.Wrap(err, "extract parameters")
	}
	if ex.Params == nil {
		ex.Params = params.NewMap()
	}
	if ex.ClarificationNeeded {
		if !resolve.ProfileFor(e).CanProceed(ex.Params, ex.UnresolvedParams) {
			reason := ex.Reason
			if reason == "" {
				reason = "The request needs more detail before OBIS can be queried"
			}
			a.reporter.Log(ctx, reason, ex.UnresolvedParams)
			return &Answer{Endpoint: e.Name, Request: request},
				errors.WithHint(errors.Wrap(internalerr.ErrClarificationNeeded, "extract parameters"), reason)
		}
		a.log.Debugw("clarification bypassed", "unresolved", ex.UnresolvedParams)
	}

	ans, err := a.prepare(ctx, e, ex.Params)
	if ans != nil {
		ans.Request = request
	}
	if err != nil {
		return ans, err
	}
	return ans, a.execute(ctx, e, ans)
}

// Prepare resolves and seals an already extracted parameter map without
// querying OBIS.
func (a *Agent) Prepare(ctx context.Context, endpoint string, m *params.Map) (*Answer, error) {
	e, err := a.Endpoint(endpoint)
	if err != nil {
		return nil, err
	}
	return a.prepare(ctx, e, m)
}

// Run resolves m and queries OBIS. request describes the query in the
// artifact and drives intent checks; it may be empty.
func (a *Agent) Run(ctx context.Context, endpoint, request string, m *params.Map) (*Answer, error) {
	e, err := a.Endpoint(endpoint)
	if err != nil {
		return nil, err
	}
	ans, err := a.prepare(ctx, e, m)
	if ans != nil {
		ans.Request = request
	}
	if err != nil {
		return ans, err
	}
	return ans, a.execute(ctx, e, ans)
}

func (a *Agent) prepare(ctx context.Context, e *params.Endpoint, m *params.Map) (*Answer, error) {
	ans := &Answer{Endpoint: e.Name}

	normalized, warnings, err := params.Normalize(e, m)
	ans.Warnings = append(ans.Warnings, warnings...)
	if err != nil {
		return ans, err
	}

	ans.Resolution = a.orch.ResolveFor(ctx, e, normalized)
	if !ans.Resolution.OK() {
		return ans, resolutionError(ans.Resolution)
	}

	// Resolved identifiers are coerced like any other value.
	normalized, warnings, err = params.Normalize(e, ans.Resolution.Params)
	ans.Warnings = append(ans.Warnings, warnings...)
	if err != nil {
		return ans, err
	}
	for _, w := range ans.Warnings {
		a.log.Warnw("parameter adjusted", "endpoint", e.Name, "warning", w)
	}

	q, err := params.Seal(e, normalized)
	if err != nil {
		return ans, err
	}
	ans.Query = q
	ans.URL = q.URL(a.baseURL)
	a.reporter.Log(ctx, "Generated search parameters", normalized)
	return ans, nil
}

func (a *Agent) execute(ctx context.Context, e *params.Endpoint, ans *Answer) error {
	if a.executor == nil {
		return errors.Wrap(internalerr.ErrInvalidConfig, "no query executor configured")
	}
	a.reporter.Log(ctx, fmt.Sprintf("Sending a GET request to the OBIS %s API at %s", e.Name, ans.URL), nil)

	res, err := a.executor.Query(ctx, ans.Query)
	if err != nil {
		a.reporter.Log(ctx, "Failed to connect to OBIS", nil)
		return errors.WithHint(errors.Wrap(err, "query OBIS"), "Failed to connect to OBIS")
	}
	ans.Result = res
	a.reporter.Log(ctx, fmt.Sprintf("The API query returned %d out of %d matching records in OBIS",
		res.Retrieved(), res.Total), nil)

	ans.Validation = validate.Result(ans.Request, ans.Query.Params(), res.URL,
		validate.Response{Total: res.Total, Results: res.Results}, e)
	for _, w := range ans.Validation.Warnings {
		a.log.Infow("validation warning", "endpoint", e.Name, "warning", w)
	}
	if !ans.Validation.Valid {
		return errors.WithHint(
			errors.Wrap(internalerr.ErrInvalidInput, "query failed validation"),
			strings.Join(ans.Validation.HardErrors, "; "))
	}

	description := "OBIS data for the prompt: " + ans.Request
	if ans.Request == "" {
		description = "OBIS " + e.Name + " data"
	}
	artifact := a.artifacts.Build(e.Name, description, res.URL, res.Retrieved(), res.Total, ans.Resolution.Explain())
	ans.Artifact = &artifact
	a.reporter.Artifact(ctx, artifact)
	return nil
}

func resolutionError(r resolve.Result) error {
	final := r.Final
	if final == nil {
		return errors.New("resolution aborted")
	}
	var err error
	switch {
	case final.Err != nil:
		err = errors.Wrapf(final.Err, "resolve %s", final.Field)
	default:
		err = errors.Wrapf(internalerr.ErrNotFound, "resolve %s %q", final.Field, final.Query)
	}
	return errors.WithHint(err, final.Report)
}
