// Package internalerr holds the sentinel errors shared across obisquery.
//
// Sentinels are created with github.com/cockroachdb/errors so callers can wrap
// them with context (errors.Wrap) and user hints (errors.WithHint) while still
// matching with errors.Is.
package internalerr

import (
	"github.com/cockroachdb/errors"
)

// Sentinel errors for common cases
var (
	ErrNotFound            = errors.New("not found")
	ErrAmbiguous           = errors.New("ambiguous match")
	ErrInvalidInput        = errors.New("invalid input")
	ErrInvalidConfig       = errors.New("invalid configuration")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrEmptyCatalog        = errors.New("reference catalog is empty")
	ErrClarificationNeeded = errors.New("clarification needed")
)

// Upstream wraps a transport or decoding failure from an external service.
func Upstream(err error, service string) error {
	if err == nil {
		return nil
	}
	return errors.Mark(errors.Wrapf(err, "%s", service), ErrUpstreamUnavailable)
}

// IsUpstream reports whether err came from an unavailable upstream service.
func IsUpstream(err error) bool {
	return errors.Is(err, ErrUpstreamUnavailable)
}

// UserMessage returns the first hint attached to err, or fallback when none is set.
// Raw error text is never returned so internal details stay out of user output.
func UserMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}
	if hints := errors.GetAllHints(err); len(hints) > 0 {
		return hints[0]
	}
	return fallback
}
