package obisapi

import (
	"context"
	"encoding/json"

	"github.com/cockroachdb/errors"

	"github.com/cognicore/obisquery/pkg/obis/internalerr"
	"github.com/cognicore/obisquery/pkg/obis/params"
)

type queryEnvelope struct {
	Total   *int            `json:"total"`
	Results json.RawMessage `json:"results"`
}

// Query executes a sealed parameter set against its endpoint. Responses
// whose "results" is not a list (statistics, facets) keep Results empty and
// leave the payload in Raw.
func (c *Client) Query(ctx context.Context, q params.Canonical) (*params.QueryResult, error) {
	if q.IsZero() {
		return nil, errors.Wrap(internalerr.ErrInvalidInput, "query: parameters not sealed")
	}
	u := q.URL(c.base)
	c.log.Infow("querying OBIS", "endpoint", q.Endpoint().Name, "url", u)

	status, body, err := c.fetch(ctx, u)
	if err != nil {
		return nil, err
	}
	res := &params.QueryResult{URL: u, Status: status, Raw: json.RawMessage(body)}

	var env queryEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		// Single-record lookups may answer with a bare object or list.
		return res, nil
	}
	if len(env.Results) > 0 && env.Results[0] == '[' {
		if err := json.Unmarshal(env.Results, &res.Results); err != nil {
			return nil, internalerr.Upstream(errors.Wrapf(err, "decode results from %s", u), service)
		}
	}
	if env.Total != nil {
		res.Total = *env.Total
	} else {
		res.Total = len(res.Results)
	}
	c.log.Infow("OBIS query returned", "retrieved", res.Retrieved(), "total", res.Total)
	return res, nil
}
