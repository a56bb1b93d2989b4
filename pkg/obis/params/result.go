package params

import "encoding/json"

// Extraction is a parameter map read from free text, with the reader's
// request for clarification when it could not fill everything.
type Extraction struct {
	Params              *Map     `json:"params"`
	ClarificationNeeded bool     `json:"clarification_needed"`
	UnresolvedParams    []string `json:"unresolved_params"`
	Reason              string   `json:"reason"`
}

// QueryResult is the decoded answer to a sealed query.
type QueryResult struct {
	URL     string
	Status  int
	Total   int
	Results []map[string]any
	Raw     json.RawMessage
}

// Retrieved is the number of records in this page.
func (r *QueryResult) Retrieved() int { return len(r.Results) }
