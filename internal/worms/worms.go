// Package worms resolves vernacular species names through the World
// Register of Marine Species REST service.
package worms

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/cognicore/obisquery/pkg/obis/internalerr"
	"github.com/cognicore/obisquery/pkg/obis/resolve"
)

// DefaultBaseURL is the public WoRMS REST root.
const DefaultBaseURL = "https://www.marinespecies.org/rest/"

const service = "WoRMS"

// Client searches WoRMS by vernacular name.
type Client struct {
	BaseURL string
	// Like enables partial vernacular matching.
	Like       bool
	HTTPClient *http.Client
	Logger     *zap.SugaredLogger
}

type aphiaRecord struct {
	AphiaID        int64  `json:"AphiaID"`
	ScientificName string `json:"scientificname"`
	Status         string `json:"status"`
	ValidAphiaID   int64  `json:"valid_AphiaID"`
	ValidName      string `json:"valid_name"`
}

// Search implements resolve.Lookup. Each match pairs the searched
// vernacular with the accepted scientific name and its AphiaID; duplicate
// accepted names are collapsed in response order.
func (c *Client) Search(ctx context.Context, vernacular string) ([]resolve.Match, error) {
	vernacular = strings.TrimSpace(vernacular)
	if vernacular == "" {
		return nil, nil
	}
	base := c.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	u := strings.TrimSuffix(base, "/") + "/AphiaRecordsByVernacular/" + url.PathEscape(vernacular)
	if c.Like {
		u += "?like=true&offset=1"
	} else {
		u += "?like=false&offset=1"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.httpClient().Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, internalerr.Upstream(err, service)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNoContent, resp.StatusCode == http.StatusNotFound:
		return nil, nil
	case resp.StatusCode != http.StatusOK:
		return nil, internalerr.Upstream(errors.Newf("vernacular search returned %d", resp.StatusCode), service)
	}

	var records []aphiaRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, internalerr.Upstream(errors.Wrap(err, "decode vernacular search"), service)
	}

	seen := make(map[string]bool, len(records))
	out := make([]resolve.Match, 0, len(records))
	for _, r := range records {
		name, id := r.ScientificName, r.AphiaID
		if r.ValidName != "" && r.ValidAphiaID != 0 {
			name, id = r.ValidName, r.ValidAphiaID
		}
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, resolve.Match{
			Display: vernacular,
			ID:      strconv.FormatInt(id, 10),
			Label:   name,
		})
	}
	c.logger().Debugw("vernacular search", "query", vernacular, "count", len(out))
	return out, nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: 10 * time.Second}
}

func (c *Client) logger() *zap.SugaredLogger {
	if c.Logger != nil {
		return c.Logger
	}
	return zap.NewNop().Sugar()
}

var _ resolve.Lookup = (*Client)(nil)
