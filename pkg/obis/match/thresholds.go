package match

import (
	"github.com/cockroachdb/errors"

	"github.com/cognicore/obisquery/pkg/obis/internalerr"
)

// Decision is the acceptance class of a score.
type Decision int

const (
	// Reject means no usable match.
	Reject Decision = iota
	// Uncertain means the match is used but the alternatives are reported.
	Uncertain
	// Confident means the match is used silently.
	Confident
)

func (d Decision) String() string {
	switch d {
	case Reject:
		return "reject"
	case Uncertain:
		return "uncertain"
	case Confident:
		return "confident"
	default:
		return "unknown"
	}
}

// Thresholds are the acceptance floor and the confidence ceiling of the
// resolver. Both are deployment-tunable.
type Thresholds struct {
	Floor     float64
	Confident float64
}

// DefaultThresholds returns floor 0.50 and confidence 0.80.
func DefaultThresholds() Thresholds {
	return Thresholds{Floor: 0.50, Confident: 0.80}
}

// Validate checks 0 <= Floor <= Confident <= 1.
func (t Thresholds) Validate() error {
	if t.Floor < 0 || t.Confident > 1 || t.Floor > t.Confident {
		return errors.Wrapf(internalerr.ErrInvalidConfig, "thresholds floor=%v confident=%v", t.Floor, t.Confident)
	}
	return nil
}

// Classify maps a score to a Decision. A score equal to Floor is accepted.
func (t Thresholds) Classify(score float64) Decision {
	switch {
	case score < t.Floor:
		return Reject
	case score < t.Confident:
		return Uncertain
	default:
		return Confident
	}
}

// Accepted returns the leading candidates that clear the floor. Input must
// be sorted by descending score.
func (t Thresholds) Accepted(candidates []Candidate) []Candidate {
	for i, c := range candidates {
		if c.Score < t.Floor {
			return candidates[:i]
		}
	}
	return candidates
}
