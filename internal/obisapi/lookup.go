package obisapi

import (
	"context"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"golang.org/x/net/html"

	"github.com/cognicore/obisquery/pkg/obis/resolve"
)

type datasetSearchResponse struct {
	Total   int `json:"total"`
	Results []struct {
		ID    flexID `json:"id"`
		Title string `json:"title"`
		URL   string `json:"url"`
	} `json:"results"`
}

// SearchDatasets finds datasets whose metadata matches q. Display and Label
// are the dataset title with any markup removed; ID is the dataset UUID.
func (c *Client) SearchDatasets(ctx context.Context, q string) ([]resolve.Match, error) {
	v := url.Values{}
	v.Set("q", q)
	v.Set("size", strconv.Itoa(c.maxMatches))

	var payload datasetSearchResponse
	if err := c.getJSON(ctx, c.endpointURL("dataset/search2", v), &payload); err != nil {
		return nil, errors.Wrapf(err, "search datasets %q", q)
	}
	out := make([]resolve.Match, 0, len(payload.Results))
	for _, r := range payload.Results {
		if r.ID == "" {
			continue
		}
		title := StripHTML(r.Title)
		out = append(out, resolve.Match{Display: title, ID: string(r.ID), Label: title})
	}
	return capMatches(out, c.maxMatches), nil
}

type taxonResponse struct {
	Total   int `json:"total"`
	Results []struct {
		TaxonID        flexID `json:"taxonID"`
		ScientificName string `json:"scientificName"`
		TaxonRank      string `json:"taxonRank"`
	} `json:"results"`
}

// SearchTaxa looks up taxa by scientific name. ID is the AphiaID.
func (c *Client) SearchTaxa(ctx context.Context, name string) ([]resolve.Match, error) {
	var payload taxonResponse
	if err := c.getJSON(ctx, c.endpointURL("taxon/"+url.PathEscape(name), nil), &payload); err != nil {
		return nil, errors.Wrapf(err, "search taxa %q", name)
	}
	out := make([]resolve.Match, 0, len(payload.Results))
	for _, r := range payload.Results {
		if r.TaxonID == "" {
			continue
		}
		display := r.ScientificName
		if r.TaxonRank != "" {
			display += " (" + r.TaxonRank + ")"
		}
		out = append(out, resolve.Match{Display: display, ID: string(r.TaxonID), Label: r.ScientificName})
	}
	return capMatches(out, c.maxMatches), nil
}

// Datasets adapts SearchDatasets to resolve.Lookup.
func (c *Client) Datasets() resolve.Lookup { return resolve.LookupFunc(c.SearchDatasets) }

// Taxa adapts SearchTaxa to resolve.Lookup.
func (c *Client) Taxa() resolve.Lookup { return resolve.LookupFunc(c.SearchTaxa) }

func capMatches(m []resolve.Match, n int) []resolve.Match {
	if n > 0 && len(m) > n {
		return m[:n]
	}
	return m
}

// StripHTML returns the text content of s with whitespace collapsed.
// Dataset titles sometimes carry inline markup such as <i>Genus species</i>.
func StripHTML(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.Join(strings.Fields(s), " ")
	}
	z := html.NewTokenizer(strings.NewReader(s))
	var b strings.Builder
	for {
		switch z.Next() {
		case html.ErrorToken:
			if z.Err() != io.EOF {
				return strings.Join(strings.Fields(s), " ")
			}
			return strings.Join(strings.Fields(b.String()), " ")
		case html.TextToken:
			b.Write(z.Text())
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			tag, _ := z.TagName()
			if blockTags[string(tag)] {
				b.WriteByte(' ')
			}
		}
	}
}

var blockTags = map[string]bool{"br": true, "p": true, "div": true, "li": true}
