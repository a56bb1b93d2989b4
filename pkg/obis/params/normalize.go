package params

import (
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/cognicore/obisquery/pkg/obis/internalerr"
)

var dateLayouts = []string{"2006-01-02", "2006/01/02", "02-01-2006", "02/01/2006"}

// Normalize validates m against the endpoint schema and returns a new map
// with values coerced to their field kinds. Keys the endpoint does not accept
// are dropped and reported as warnings; nil values are dropped silently.
func Normalize(e *Endpoint, m *Map) (*Map, []string, error) {
	out := NewMap()
	var warnings []string

	for _, p := range m.Pairs() {
		field, ok := e.Field(p.Key)
		if !ok {
			warnings = append(warnings, "dropped unsupported parameter "+strconv.Quote(p.Key)+" for "+e.Name)
			continue
		}
		if p.Value == nil {
			continue
		}
		v, err := coerce(field, p.Value)
		if err != nil {
			return nil, warnings, err
		}
		out.om.Set(p.Key, v)
	}

	if size, ok := out.Get("size"); ok && size.(int64) > MaxSize {
		out.om.Set("size", int64(MaxSize))
		warnings = append(warnings, "size clamped to "+strconv.Itoa(MaxSize))
	}

	start, hasStart := out.Get("startdepth")
	end, hasEnd := out.Get("enddepth")
	if hasStart && hasEnd && end.(int64) < start.(int64) {
		return nil, warnings, errors.WithHint(
			errors.Wrap(internalerr.ErrInvalidInput, "enddepth before startdepth"),
			"enddepth must be greater than or equal to startdepth")
	}

	return out, warnings, nil
}

func coerce(f Field, value any) (any, error) {
	switch f.Kind {
	case KindInt:
		switch v := value.(type) {
		case int64:
			return v, nil
		case string:
			n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
			if err != nil {
				return nil, invalid(f, "expected an integer, got %q", v)
			}
			return n, nil
		}
		return nil, invalid(f, "expected an integer, got %v", value)

	case KindBool:
		switch v := value.(type) {
		case bool:
			return v, nil
		case string:
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				return nil, invalid(f, "expected true or false, got %q", v)
			}
			return b, nil
		}
		return nil, invalid(f, "expected true or false, got %v", value)

	case KindDate:
		s := strings.TrimSpace(formatValue(value))
		d, err := ParseDate(s)
		if err != nil {
			return nil, invalid(f, "incorrect date format %q, allowed formats: YYYY-MM-DD, YYYY/MM/DD, DD-MM-YYYY, DD/MM/YYYY", s)
		}
		return d, nil

	case KindUUID:
		s := strings.TrimSpace(formatValue(value))
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, invalid(f, "expected a UUID, got %q", s)
		}
		return id.String(), nil

	default:
		return formatValue(value), nil
	}
}

// ParseDate accepts the date layouts users commonly type and returns the
// date as YYYY-MM-DD.
func ParseDate(s string) (string, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02"), nil
		}
	}
	return "", errors.Wrapf(internalerr.ErrInvalidInput, "unparseable date %q", s)
}

func invalid(f Field, format string, args ...any) error {
	err := errors.Wrapf(internalerr.ErrInvalidInput, "parameter %q: "+format, append([]any{f.Name}, args...)...)
	return errors.WithHint(err, "invalid value for "+f.Name)
}
