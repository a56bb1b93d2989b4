// Package obisapi talks to the OBIS REST API: it enumerates the area and
// institute reference sets, searches datasets and taxa by name and executes
// sealed queries.
package obisapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/cognicore/obisquery/pkg/obis/internalerr"
	"github.com/cognicore/obisquery/pkg/obis/params"
)

const service = "OBIS"

// Options configures a Client.
type Options struct {
	BaseURL       string
	Timeout       time.Duration
	RatePerSecond float64
	Burst         int
	// MaxMatches caps dataset and taxon search hits.
	MaxMatches int

	HTTPClient *http.Client
	Logger     *zap.SugaredLogger
}

// Client is an OBIS API client. Every request waits on a shared rate limiter.
type Client struct {
	base       string
	http       *http.Client
	limiter    *rate.Limiter
	maxMatches int
	log        *zap.SugaredLogger
}

// New builds a Client. Zero options fall back to the public API with five
// requests per second.
func New(opts Options) *Client {
	base := opts.BaseURL
	if base == "" {
		base = params.BaseURL
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	limit := rate.Limit(opts.RatePerSecond)
	if opts.RatePerSecond <= 0 {
		limit = rate.Limit(5)
	}
	burst := opts.Burst
	if burst <= 0 {
		burst = 5
	}
	maxMatches := opts.MaxMatches
	if maxMatches <= 0 {
		maxMatches = 10
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Client{
		base:       base,
		http:       hc,
		limiter:    rate.NewLimiter(limit, burst),
		maxMatches: maxMatches,
		log:        log,
	}
}

// BaseURL returns the API root, with a trailing slash.
func (c *Client) BaseURL() string { return c.base }

func (c *Client) endpointURL(path string, q url.Values) string {
	u := c.base + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}

// fetch performs a GET and returns the body of a 2xx response.
func (c *Client) fetch(ctx context.Context, rawURL string) (int, []byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return 0, nil, ctx.Err()
		}
		return 0, nil, internalerr.Upstream(err, service)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, internalerr.Upstream(errors.Wrap(err, "read body"), service)
	}
	c.log.Debugw("obis request", "url", rawURL, "status", resp.StatusCode, "took", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, body, internalerr.Upstream(
			errors.Newf("%s returned %d %s", rawURL, resp.StatusCode, http.StatusText(resp.StatusCode)), service)
	}
	return resp.StatusCode, body, nil
}

func (c *Client) getJSON(ctx context.Context, rawURL string, out any) error {
	_, body, err := c.fetch(ctx, rawURL)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return internalerr.Upstream(errors.Wrapf(err, "decode %s", rawURL), service)
	}
	return nil
}

// flexID decodes identifiers OBIS sends either as numbers or as strings.
type flexID string

func (f *flexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*f = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexID(s)
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		*f = flexID(n.String())
	}
	return nil
}
