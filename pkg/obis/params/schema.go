package params

import (
	"sort"
	"strings"
)

// Free-text trigger keys. The upstream extractor fills these with names that
// have to be resolved into canonical identifiers before a query is issued.
const (
	KeyInstitute      = "institute"
	KeyArea           = "area"
	KeyCommonName     = "commonname"
	KeyDatasetName    = "datasetname"
	KeyScientificName = "scientificname"
)

// Canonical destination keys.
const (
	KeyInstituteID = "instituteid"
	KeyAreaID      = "areaid"
	KeyDatasetID   = "datasetid"
	KeyID          = "id"
)

// FieldKind describes how a field value is validated and normalised.
type FieldKind int

const (
	KindString FieldKind = iota
	KindInt
	KindBool
	KindDate
	KindUUID
	KindList
)

func (k FieldKind) String() string {
	switch k {
	case KindInt:
		return "integer"
	case KindBool:
		return "boolean"
	case KindDate:
		return "date YYYY-MM-DD"
	case KindUUID:
		return "uuid"
	case KindList:
		return "comma separated list"
	default:
		return "string"
	}
}

// Field is one accepted query parameter.
type Field struct {
	Name        string
	Kind        FieldKind
	Description string
	FreeText    bool // resolved into a canonical key before querying
}

// Resolution binds a free-text trigger key to the canonical key it becomes
// on a given endpoint.
type Resolution struct {
	Trigger     string
	Destination string
}

// Endpoint describes one OBIS API the agent can query.
type Endpoint struct {
	Name        string
	Path        string
	Description string
	Fields      []Field
	Resolutions []Resolution

	// PathParam names the field whose value is appended to Path
	// (e.g. taxon/{id}). Empty for plain query endpoints.
	PathParam string
}

// Field returns the field definition for name.
func (e *Endpoint) Field(name string) (Field, bool) {
	for _, f := range e.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Destination returns the canonical key a trigger resolves to on this endpoint.
func (e *Endpoint) Destination(trigger string) (string, bool) {
	for _, r := range e.Resolutions {
		if r.Trigger == trigger {
			return r.Destination, true
		}
	}
	return "", false
}

// Triggers returns the free-text keys this endpoint resolves.
func (e *Endpoint) Triggers() []string {
	out := make([]string, 0, len(e.Resolutions))
	for _, r := range e.Resolutions {
		out = append(out, r.Trigger)
	}
	return out
}

// Pending returns the trigger keys still present in m, in resolution order.
func (e *Endpoint) Pending(m *Map) []string {
	var out []string
	for _, r := range e.Resolutions {
		if m.Has(r.Trigger) {
			out = append(out, r.Trigger)
		}
	}
	return out
}

// Registry holds the known endpoints by name.
type Registry struct {
	byName map[string]*Endpoint
}

// NewRegistry builds a registry from endpoint definitions.
func NewRegistry(endpoints ...*Endpoint) *Registry {
	r := &Registry{byName: make(map[string]*Endpoint, len(endpoints))}
	for _, e := range endpoints {
		r.byName[e.Name] = e
	}
	return r
}

// Lookup returns the endpoint called name (case-insensitive).
func (r *Registry) Lookup(name string) (*Endpoint, bool) {
	e, ok := r.byName[strings.ToLower(strings.TrimSpace(name))]
	return e, ok
}

// Names returns all endpoint names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
