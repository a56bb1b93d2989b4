package obisapi

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/cognicore/obisquery/pkg/obis/catalog"
	"github.com/cognicore/obisquery/pkg/obis/internalerr"
)

type referenceResponse struct {
	Total   int `json:"total"`
	Results []struct {
		ID      flexID `json:"id"`
		Name    string `json:"name"`
		Type    string `json:"type"`
		Country string `json:"country"`
	} `json:"results"`
}

// Fetch implements catalog.Source by listing every area or institute.
func (c *Client) Fetch(ctx context.Context, kind catalog.Kind) ([]catalog.Entity, error) {
	var path string
	switch kind {
	case catalog.KindArea:
		path = "area"
	case catalog.KindInstitute:
		path = "institute"
	default:
		return nil, errors.Wrapf(internalerr.ErrInvalidInput, "unknown catalog kind %q", kind)
	}

	var payload referenceResponse
	if err := c.getJSON(ctx, c.endpointURL(path, nil), &payload); err != nil {
		return nil, errors.Wrapf(err, "list %ss", kind)
	}

	out := make([]catalog.Entity, 0, len(payload.Results))
	for _, r := range payload.Results {
		out = append(out, catalog.Entity{
			ID:    string(r.ID),
			Name:  strings.TrimSpace(r.Name),
			Kind:  kind,
			Extra: strings.TrimSpace(r.Country),
			Type:  r.Type,
		})
	}
	c.log.Debugw("reference set fetched", "kind", kind, "count", len(out), "total", payload.Total)
	return out, nil
}

var _ catalog.Source = (*Client)(nil)
