package config

import (
	"os"
	"sort"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/cognicore/obisquery/pkg/obis/internalerr"
	"github.com/cognicore/obisquery/pkg/obis/params"
)

// Prompts holds the extraction instructions and per-endpoint few-shot
// examples given to the language model.
type Prompts struct {
	System    string                    `yaml:"system"`
	Endpoints map[string]EndpointPrompt `yaml:"endpoints"`
}

// EndpointPrompt carries guidance and examples for one endpoint.
type EndpointPrompt struct {
	Guidance string    `yaml:"guidance"`
	Examples []Example `yaml:"examples"`
}

// Example is one request with the parameters it should produce.
type Example struct {
	Request       string         `yaml:"request"`
	Params        map[string]any `yaml:"params"`
	Clarification bool           `yaml:"clarification"`
	Unresolved    []string       `yaml:"unresolved"`
}

// LoadPrompts loads prompts from a YAML file and overlays them on the
// built-in defaults. An empty path returns the defaults.
func LoadPrompts(path string) (*Prompts, error) {
	p := DefaultPrompts()
	if path == "" {
		return p, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read prompts %s", path)
	}
	var loaded Prompts
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return nil, errors.Wrapf(internalerr.ErrInvalidConfig, "parse prompts %s: %v", path, err)
	}
	if err := loaded.Validate(); err != nil {
		return nil, errors.Wrapf(err, "prompts %s", path)
	}
	p.merge(&loaded)
	return p, nil
}

// Validate checks that every example's params are flat scalar values.
func (p *Prompts) Validate() error {
	for _, name := range p.Names() {
		for i, ex := range p.Endpoints[name].Examples {
			if _, err := ex.ParamMap(); err != nil {
				return errors.Wrapf(internalerr.ErrInvalidConfig, "endpoint %s example %d: %v", name, i+1, err)
			}
		}
	}
	return nil
}

// ParamMap returns the example params as a map with sorted keys.
func (e Example) ParamMap() (*params.Map, error) {
	keys := make([]string, 0, len(e.Params))
	for k := range e.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	m := params.NewMap()
	for _, k := range keys {
		if err := m.Set(k, e.Params[k]); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (p *Prompts) merge(o *Prompts) {
	if o.System != "" {
		p.System = o.System
	}
	for name, ep := range o.Endpoints {
		p.Endpoints[name] = ep
	}
}

// For returns the prompt for endpoint, or a zero value.
func (p *Prompts) For(endpoint string) EndpointPrompt {
	if p == nil {
		return EndpointPrompt{}
	}
	return p.Endpoints[endpoint]
}

// Names lists endpoints with prompts, sorted.
func (p *Prompts) Names() []string {
	names := make([]string, 0, len(p.Endpoints))
	for name := range p.Endpoints {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

const defaultSystem = `You extract OBIS API query parameters from a user's request.
Reply with a single JSON object with these keys:
  "params": object of parameter name to value, using only the parameters listed below;
  "clarification_needed": true when the request cannot be answered without more detail;
  "unresolved_params": list of parameter names you could not fill;
  "reason": short explanation when clarification is needed.
Put free-text names of institutes, areas, datasets and species in the name
parameters (institute, area, datasetname, scientificname, commonname); never
invent numeric ids or UUIDs. Dates use YYYY-MM-DD.`

// DefaultPrompts returns the built-in prompts.
func DefaultPrompts() *Prompts {
	return &Prompts{
		System: defaultSystem,
		Endpoints: map[string]EndpointPrompt{
			"occurrence": {
				Guidance: "Use commonname for vernacular species names and scientificname for Latin binomials.",
				Examples: []Example{
					{
						Request: "Cod records in the Baltic Sea since 2010",
						Params:  map[string]any{"commonname": "cod", "area": "Baltic Sea", "startdate": "2010-01-01"},
					},
					{
						Request: "Occurrences collected by the Flanders Marine Institute",
						Params:  map[string]any{"institute": "Flanders Marine Institute"},
					},
				},
			},
			"checklist": {
				Examples: []Example{
					{
						Request: "Which species have been recorded in the Gulf of Mexico?",
						Params:  map[string]any{"area": "Gulf of Mexico"},
					},
				},
			},
			"dataset": {
				Examples: []Example{
					{
						Request: "Datasets about Atlantic cod",
						Params:  map[string]any{"commonname": "Atlantic cod"},
					},
				},
			},
			"taxon": {
				Examples: []Example{
					{
						Request:       "Tell me about that fish",
						Params:        map[string]any{},
						Clarification: true,
						Unresolved:    []string{"scientificname"},
					},
				},
			},
		},
	}
}
