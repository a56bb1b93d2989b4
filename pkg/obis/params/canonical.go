package params

import (
	"net/url"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/cognicore/obisquery/pkg/obis/internalerr"
)

// BaseURL is the public OBIS API root.
const BaseURL = "https://api.obis.org/"

// Canonical is a parameter set that holds only canonical keys for its
// endpoint. It can only be obtained from Seal, so code that accepts a
// Canonical never sees an unresolved free-text name.
type Canonical struct {
	endpoint *Endpoint
	params   *Map
}

// Seal checks that no trigger key of e remains in m and freezes a copy.
func Seal(e *Endpoint, m *Map) (Canonical, error) {
	if e == nil {
		return Canonical{}, errors.Wrap(internalerr.ErrInvalidInput, "seal: nil endpoint")
	}
	if pending := e.Pending(m); len(pending) > 0 {
		return Canonical{}, errors.Wrapf(internalerr.ErrInvalidInput,
			"seal %s: unresolved parameters %s", e.Name, strings.Join(pending, ", "))
	}
	if e.PathParam != "" {
		if v, ok := m.String(e.PathParam); !ok || v == "" {
			return Canonical{}, errors.WithHint(
				errors.Wrapf(internalerr.ErrInvalidInput, "seal %s: missing %s", e.Name, e.PathParam),
				"the request does not identify a single record to fetch")
		}
	}
	return Canonical{endpoint: e, params: m.Clone()}, nil
}

// Endpoint returns the endpoint the parameters were sealed for.
func (c Canonical) Endpoint() *Endpoint { return c.endpoint }

// Params returns a copy of the sealed parameters.
func (c Canonical) Params() *Map { return c.params.Clone() }

// IsZero reports whether c was never sealed.
func (c Canonical) IsZero() bool { return c.endpoint == nil }

// URL renders the request URL relative to base (BaseURL when empty).
// Extension endpoints carry their path parameter as the last path segment.
func (c Canonical) URL(base string) string {
	if base == "" {
		base = BaseURL
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	if c.endpoint == nil {
		return base
	}

	path := c.endpoint.Path
	query := c.params.Clone()
	if c.endpoint.PathParam != "" {
		id, _ := query.String(c.endpoint.PathParam)
		query.Delete(c.endpoint.PathParam)
		path += "/" + url.PathEscape(id)
	}

	u := base + path
	if enc := query.Encode(); enc != "" {
		u += "?" + enc
	}
	return u
}
