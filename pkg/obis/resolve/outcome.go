package resolve

import (
	"github.com/cognicore/obisquery/pkg/obis/match"
	"github.com/cognicore/obisquery/pkg/obis/params"
)

// Kind tags a field resolution outcome.
type Kind int

const (
	// Resolved means the field was replaced by a confident canonical value.
	Resolved Kind = iota
	// Ambiguous means the best candidate was used and the alternatives were
	// reported. Not fatal.
	Ambiguous
	// NotFound means nothing usable matched. Fatal for the pass.
	NotFound
	// Failed means a collaborator errored. Fatal for the pass.
	Failed
)

func (k Kind) String() string {
	switch k {
	case Resolved:
		return "resolved"
	case Ambiguous:
		return "ambiguous"
	case NotFound:
		return "not_found"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Fatal reports whether the outcome aborts the pass.
func (k Kind) Fatal() bool { return k == NotFound || k == Failed }

// Outcome is the result of resolving one free-text field.
type Outcome struct {
	Kind        Kind
	Field       string // trigger key
	Query       string // text that was matched
	Destination string
	Value       string // written to Destination on success
	Chosen      string // human-readable name of the chosen candidate
	Candidates  []match.Candidate
	Report      string // verbatim text for the reporter, empty when silent
	Err         error
}

// State is the terminal state of a resolution pass.
type State int

const (
	Complete State = iota
	Aborted
)

func (s State) String() string {
	if s == Complete {
		return "complete"
	}
	return "aborted"
}

// Result is the outcome of a whole pass.
type Result struct {
	State    State
	Params   *params.Map
	Outcomes []Outcome
	// Final is the outcome that aborted the pass, nil when Complete.
	Final *Outcome
}

// OK reports whether the pass completed.
func (r Result) OK() bool { return r.State == Complete }

// Reason returns the human-readable abort reason, empty when Complete.
func (r Result) Reason() string {
	if r.Final == nil {
		return ""
	}
	return r.Final.Report
}

// Reports returns every non-empty report in processing order.
func (r Result) Reports() []string {
	var out []string
	for _, o := range r.Outcomes {
		if o.Report != "" {
			out = append(out, o.Report)
		}
	}
	return out
}
