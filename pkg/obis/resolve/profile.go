package resolve

import (
	"slices"

	"github.com/cognicore/obisquery/pkg/obis/params"
)

// Order is the fixed processing order of trigger keys. Institute runs before
// area because a resolved institute consumes any pending area key.
var Order = []string{
	params.KeyInstitute,
	params.KeyArea,
	params.KeyDatasetName,
	params.KeyScientificName,
	params.KeyCommonName,
}

// Step binds a trigger key to the destination it is written to.
type Step struct {
	Trigger     string
	Destination string
}

// Profile is the ordered dispatch table for one endpoint.
type Profile []Step

// ProfileFor builds the profile of e in processing order.
func ProfileFor(e *params.Endpoint) Profile {
	var p Profile
	for _, trigger := range Order {
		if dest, ok := e.Destination(trigger); ok {
			p = append(p, Step{Trigger: trigger, Destination: dest})
		}
	}
	return p
}

// DefaultProfile is the occurrence search profile.
func DefaultProfile() Profile {
	return Profile{
		{params.KeyInstitute, params.KeyInstituteID},
		{params.KeyArea, params.KeyAreaID},
		{params.KeyDatasetName, params.KeyDatasetID},
		{params.KeyCommonName, params.KeyScientificName},
	}
}

// Owns reports whether p resolves trigger.
func (p Profile) Owns(trigger string) bool {
	return slices.ContainsFunc(p, func(s Step) bool { return s.Trigger == trigger })
}

// Pending returns the steps whose trigger key holds a non-blank value in m.
func (p Profile) Pending(m *params.Map) Profile {
	var out Profile
	for _, s := range p {
		if hasTrigger(m, s.Trigger) {
			out = append(out, s)
		}
	}
	return out
}

// CanProceed applies the clarification bypass rule. An extractor that asks
// for clarification is overridden only when every unresolved item is a
// destination key this profile fills from a trigger key present in m.
// An empty unresolved list never bypasses.
func (p Profile) CanProceed(m *params.Map, unresolved []string) bool {
	if len(unresolved) == 0 {
		return false
	}
	for _, u := range unresolved {
		owned := slices.ContainsFunc(p, func(s Step) bool {
			return s.Destination == u && hasTrigger(m, s.Trigger)
		})
		if !owned {
			return false
		}
	}
	return true
}
