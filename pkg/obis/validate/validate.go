// Package validate runs rule-based sanity checks on a finished query: does
// the URL hit the intended endpoint, do the parameters reflect what the user
// asked for, and is the response internally consistent.
package validate

import (
	"strings"

	"github.com/cognicore/obisquery/pkg/obis/params"
)

// Report is the combined outcome. Hard errors make the result invalid;
// warnings are advisory.
type Report struct {
	Valid      bool     `json:"valid"`
	HardErrors []string `json:"hard_errors"`
	Warnings   []string `json:"warnings"`
}

// Response is the part of an OBIS response the checks look at.
type Response struct {
	Total   int
	Results []map[string]any
}

type intentRule struct {
	keywords []string
	anyOf    []string
	message  string
}

var intentRules = []intentRule{
	{
		keywords: []string{"species", "occurrence", "taxon", "records", "brachyura", "crab", "fish"},
		anyOf:    []string{params.KeyScientificName, params.KeyID, "taxonid"},
		message:  "User intent suggests species query, but no taxon filter present.",
	},
	{
		keywords: []string{"ocean", "sea", "atlantic", "pacific", "area", "region"},
		anyOf:    []string{params.KeyAreaID},
		message:  "User intent suggests area filter, but areaid not present.",
	},
	{
		keywords: []string{"institute", "university", "museum"},
		anyOf:    []string{params.KeyInstituteID},
		message:  "User intent suggests institute filter, but instituteid not present.",
	},
	{
		keywords: []string{"dataset"},
		anyOf:    []string{params.KeyDatasetID},
		message:  "User intent suggests dataset query, but datasetid not present.",
	},
}

// IntentAlignment warns when the request mentions something the parameters
// do not filter on.
func IntentAlignment(request string, p *params.Map) []string {
	req := strings.ToLower(request)
	var issues []string
	for _, rule := range intentRules {
		if !containsAny(req, rule.keywords) {
			continue
		}
		present := false
		for _, k := range rule.anyOf {
			if p.Has(k) {
				present = true
				break
			}
		}
		if !present {
			issues = append(issues, rule.message)
		}
	}
	return issues
}

// URL returns hard errors for a request URL that misses its endpoint path
// or carries null values.
func URL(url string, e *params.Endpoint) []string {
	var issues []string
	if !strings.Contains(url, "/"+e.Path) {
		issues = append(issues, "Wrong OBIS endpoint used. Expected '"+e.Path+"' in URL.")
	}
	if strings.Contains(url, "None") || strings.Contains(url, "null") || strings.Contains(url, "<nil>") {
		issues = append(issues, "URL contains null/None values.")
	}
	return issues
}

// ResponseConsistency warns about responses that contradict themselves or
// the scientific name filter.
func ResponseConsistency(p *params.Map, resp Response) []string {
	var issues []string
	if resp.Total > 0 && len(resp.Results) == 0 {
		issues = append(issues, "OBIS returned total > 0 but empty results (pagination or limit issue).")
	}

	target, ok := p.String(params.KeyScientificName)
	if ok && target != "" && len(resp.Results) > 0 {
		target = strings.ToLower(target)
		sample := resp.Results
		if len(sample) > 10 {
			sample = sample[:10]
		}
		matches := 0
		for _, r := range sample {
			name, _ := r["scientificName"].(string)
			if name == "" {
				name, _ = r["scientificname"].(string)
			}
			if strings.Contains(strings.ToLower(name), target) {
				matches++
			}
		}
		if matches == 0 {
			issues = append(issues, "Returned records do not match scientificname filter.")
		}
	}
	return issues
}

// Result runs every check.
func Result(request string, p *params.Map, url string, resp Response, e *params.Endpoint) Report {
	hard := URL(url, e)
	var warnings []string
	warnings = append(warnings, IntentAlignment(request, p)...)
	warnings = append(warnings, ResponseConsistency(p, resp)...)
	return Report{
		Valid:      len(hard) == 0,
		HardErrors: hard,
		Warnings:   warnings,
	}
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
