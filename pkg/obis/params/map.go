// Package params models OBIS query parameters: an insertion-ordered parameter
// map, the per-endpoint schemas that describe which keys an API accepts, and
// the sealed Canonical form handed to the query executor.
package params

import (
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/cognicore/obisquery/pkg/obis/internalerr"
)

// Map is an ordered mapping from API field name to a scalar value
// (string, int64, bool) or nil. Insertion order is preserved through JSON
// round-trips and URL encoding.
type Map struct {
	om *orderedmap.OrderedMap[string, any]
}

// Pair is a single key/value entry, used to build maps in order.
type Pair struct {
	Key   string
	Value any
}

// NewMap creates an empty map.
func NewMap() *Map {
	return &Map{om: orderedmap.New[string, any]()}
}

// MapOf builds a map from pairs in the given order. Values are normalised
// with the same rules as Set; invalid values panic, so MapOf is meant for
// literals and tests.
func MapOf(pairs ...Pair) *Map {
	m := NewMap()
	for _, p := range pairs {
		if err := m.Set(p.Key, p.Value); err != nil {
			panic(err)
		}
	}
	return m
}

// Len returns the number of keys.
func (m *Map) Len() int {
	if m == nil || m.om == nil {
		return 0
	}
	return m.om.Len()
}

// Has reports whether key is present (even with a nil value).
func (m *Map) Has(key string) bool {
	if m == nil || m.om == nil {
		return false
	}
	_, ok := m.om.Get(key)
	return ok
}

// Get returns the value stored under key.
func (m *Map) Get(key string) (any, bool) {
	if m == nil || m.om == nil {
		return nil, false
	}
	return m.om.Get(key)
}

// String returns the value under key rendered as a string. Missing keys and
// nil values yield ("", false).
func (m *Map) String(key string) (string, bool) {
	v, ok := m.Get(key)
	if !ok || v == nil {
		return "", false
	}
	return formatValue(v), true
}

// Set stores value under key. An existing key keeps its position.
func (m *Map) Set(key string, value any) error {
	if key == "" {
		return errors.Wrap(internalerr.ErrInvalidInput, "empty parameter name")
	}
	v, err := normalizeValue(value)
	if err != nil {
		return errors.Wrapf(err, "parameter %q", key)
	}
	if m.om == nil {
		m.om = orderedmap.New[string, any]()
	}
	m.om.Set(key, v)
	return nil
}

// Delete removes key and reports whether it was present.
func (m *Map) Delete(key string) bool {
	if m == nil || m.om == nil {
		return false
	}
	_, ok := m.om.Delete(key)
	return ok
}

// Keys returns the keys in insertion order.
func (m *Map) Keys() []string {
	keys := make([]string, 0, m.Len())
	if m.Len() == 0 {
		return keys
	}
	for pair := m.om.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Pairs returns the entries in insertion order.
func (m *Map) Pairs() []Pair {
	out := make([]Pair, 0, m.Len())
	if m.Len() == 0 {
		return out
	}
	for pair := m.om.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, Pair{Key: pair.Key, Value: pair.Value})
	}
	return out
}

// Clone returns an independent copy.
func (m *Map) Clone() *Map {
	out := NewMap()
	for _, p := range m.Pairs() {
		out.om.Set(p.Key, p.Value)
	}
	return out
}

// Equal reports whether both maps hold the same entries in the same order.
func (m *Map) Equal(other *Map) bool {
	a, b := m.Pairs(), other.Pairs()
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Key != b[i].Key || a[i].Value != b[i].Value {
			return false
		}
	}
	return true
}

// Encode renders the map as a URL query string in insertion order.
// Nil values are skipped.
func (m *Map) Encode() string {
	var buf strings.Builder
	for _, p := range m.Pairs() {
		if p.Value == nil {
			continue
		}
		if buf.Len() > 0 {
			buf.WriteByte('&')
		}
		buf.WriteString(url.QueryEscape(p.Key))
		buf.WriteByte('=')
		buf.WriteString(url.QueryEscape(formatValue(p.Value)))
	}
	return buf.String()
}

// MarshalJSON implements json.Marshaler, preserving key order.
func (m *Map) MarshalJSON() ([]byte, error) {
	if m == nil || m.om == nil {
		return []byte("{}"), nil
	}
	return m.om.MarshalJSON()
}

// UnmarshalJSON implements json.Unmarshaler, preserving key order. Numbers
// become int64 when integral; arrays of scalars are joined with commas.
func (m *Map) UnmarshalJSON(data []byte) error {
	raw := orderedmap.New[string, any]()
	if err := raw.UnmarshalJSON(data); err != nil {
		return errors.Wrap(internalerr.ErrInvalidInput, err.Error())
	}
	m.om = orderedmap.New[string, any]()
	for pair := raw.Oldest(); pair != nil; pair = pair.Next() {
		if err := m.Set(pair.Key, pair.Value); err != nil {
			return err
		}
	}
	return nil
}

// GoString renders the map as JSON for %#v and log fields.
func (m *Map) GoString() string {
	data, err := json.Marshal(m)
	if err != nil {
		return "{}"
	}
	return string(data)
}

func normalizeValue(value any) (any, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case string:
		return v, nil
	case bool:
		return v, nil
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) || math.IsNaN(v) {
			return nil, errors.Wrapf(internalerr.ErrInvalidInput, "non-integral number %v", v)
		}
		return int64(v), nil
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return nil, errors.Wrapf(internalerr.ErrInvalidInput, "non-integral number %s", v)
		}
		return n, nil
	case []string:
		return strings.Join(v, ","), nil
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			s, err := normalizeValue(item)
			if err != nil {
				return nil, err
			}
			if s == nil {
				continue
			}
			parts = append(parts, formatValue(s))
		}
		return strings.Join(parts, ","), nil
	default:
		return nil, errors.Wrapf(internalerr.ErrInvalidInput, "unsupported value type %T", value)
	}
}

func formatValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case int64:
		return strconv.FormatInt(t, 10)
	default:
		return fmt.Sprint(t)
	}
}
