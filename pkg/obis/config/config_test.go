package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/obisquery/pkg/obis/internalerr"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadWithViper(New())
	require.NoError(t, err)

	assert.Equal(t, "https://api.obis.org/", cfg.OBIS.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.OBIS.Timeout)
	assert.Equal(t, "hash", cfg.Embeddings.Provider)
	assert.Equal(t, 0.50, cfg.Thresholds().Floor)
	assert.Equal(t, 0.80, cfg.Thresholds().Confident)
	assert.Equal(t, 5, cfg.Resolver.TopN)
	assert.Equal(t, "sqlite", cfg.Catalog.Backend)
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "obisquery.yaml")
	yaml := `
resolver:
  floor: 0.4
  confident: 0.9
catalog:
  backend: memory
log:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))
	t.Setenv("OBISQUERY_LLM_API_KEY", "secret")
	t.Setenv("OBISQUERY_RESOLVER_TOP_N", "3")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 0.4, cfg.Resolver.Floor)
	assert.Equal(t, 0.9, cfg.Resolver.Confident)
	assert.Equal(t, "memory", cfg.Catalog.Backend)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "secret", cfg.LLM.APIKey)
	assert.Equal(t, 3, cfg.Resolver.TopN)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func() Config {
		cfg, err := LoadWithViper(New())
		require.NoError(t, err)
		return *cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"floor above confident", func(c *Config) { c.Resolver.Floor, c.Resolver.Confident = 0.9, 0.8 }},
		{"floor out of range", func(c *Config) { c.Resolver.Floor = -0.1 }},
		{"zero weights", func(c *Config) { c.Resolver.LexicalWeight, c.Resolver.SemanticWeight = 0, 0 }},
		{"zero top n", func(c *Config) { c.Resolver.TopN = 0 }},
		{"unknown embedder", func(c *Config) { c.Embeddings.Provider = "magic" }},
		{"http embedder without url", func(c *Config) { c.Embeddings.Provider = "http" }},
		{"unknown backend", func(c *Config) { c.Catalog.Backend = "redis" }},
		{"sqlite without path", func(c *Config) { c.Catalog.Path = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, internalerr.ErrInvalidConfig)
		})
	}

	cfg := base()
	assert.NoError(t, cfg.Validate())
}

func TestLoadPrompts(t *testing.T) {
	p, err := LoadPrompts("")
	require.NoError(t, err)
	assert.Contains(t, p.System, "JSON")
	assert.NotEmpty(t, p.For("occurrence").Examples)

	path := filepath.Join(t.TempDir(), "prompts.yaml")
	data := `
endpoints:
  facet:
    guidance: Use facets for breakdowns.
    examples:
      - request: Top species in the North Sea
        params:
          area: North Sea
          facets: scientificName
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	p, err = LoadPrompts(path)
	require.NoError(t, err)
	assert.Contains(t, p.System, "JSON", "system prompt kept when file omits it")
	facet := p.For("facet")
	assert.Equal(t, "Use facets for breakdowns.", facet.Guidance)
	require.Len(t, facet.Examples, 1)
	assert.Equal(t, "North Sea", facet.Examples[0].Params["area"])
	assert.Contains(t, p.Names(), "occurrence")

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("endpoints: [1, 2"), 0o644))
	_, err = LoadPrompts(bad)
	assert.ErrorIs(t, err, internalerr.ErrInvalidConfig)
}

func TestLoadPromptsRejectsNestedExampleParams(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompts.yaml")
	data := `
endpoints:
  occurrence:
    examples:
      - request: Cod near Norway
        params:
          commonname: cod
          area:
            name: Norway
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	_, err := LoadPrompts(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, internalerr.ErrInvalidConfig)
	assert.Contains(t, err.Error(), "endpoint occurrence example 1")
}

func TestDefaultPromptsAreValid(t *testing.T) {
	p := DefaultPrompts()
	require.NoError(t, p.Validate())

	m, err := p.For("occurrence").Examples[0].ParamMap()
	require.NoError(t, err)
	assert.Equal(t, []string{"area", "commonname", "startdate"}, m.Keys())
}
