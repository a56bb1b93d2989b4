// Package config loads obisquery settings from defaults, an optional config
// file and OBISQUERY_* environment variables, in increasing precedence.
package config

import (
	"time"

	"github.com/cockroachdb/errors"

	"github.com/cognicore/obisquery/pkg/obis/internalerr"
	"github.com/cognicore/obisquery/pkg/obis/match"
)

// Config is the full runtime configuration.
type Config struct {
	OBIS       OBIS       `mapstructure:"obis"`
	WoRMS      WoRMS      `mapstructure:"worms"`
	LLM        LLM        `mapstructure:"llm"`
	Embeddings Embeddings `mapstructure:"embeddings"`
	Resolver   Resolver   `mapstructure:"resolver"`
	Catalog    Catalog    `mapstructure:"catalog"`
	Prompts    Files      `mapstructure:"prompts"`
	Aliases    Files      `mapstructure:"aliases"`
	Log        Log        `mapstructure:"log"`
}

// OBIS configures the OBIS API client.
type OBIS struct {
	BaseURL       string        `mapstructure:"base_url"`
	Timeout       time.Duration `mapstructure:"timeout"`
	RatePerSecond float64       `mapstructure:"rate_per_second"`
	Burst         int           `mapstructure:"burst"`
}

// WoRMS configures the vernacular name service.
type WoRMS struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// LLM configures the parameter extractor.
type LLM struct {
	BaseURL string        `mapstructure:"base_url"`
	APIKey  string        `mapstructure:"api_key"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// Embeddings selects the semantic matcher's embedder.
type Embeddings struct {
	Provider   string        `mapstructure:"provider"` // hash | http
	BaseURL    string        `mapstructure:"base_url"`
	APIKey     string        `mapstructure:"api_key"`
	Model      string        `mapstructure:"model"`
	Dimensions int           `mapstructure:"dimensions"`
	CacheSize  int           `mapstructure:"cache_size"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// Resolver holds the tunable constants of name resolution.
type Resolver struct {
	Floor           float64 `mapstructure:"floor"`
	Confident       float64 `mapstructure:"confident"`
	LexicalWeight   float64 `mapstructure:"lexical_weight"`
	SemanticWeight  float64 `mapstructure:"semantic_weight"`
	TopN            int     `mapstructure:"top_n"`
	MaxAlternatives int     `mapstructure:"max_alternatives"`
	AreaSuggestions int     `mapstructure:"area_suggestions"`
}

// Catalog selects where reference sets are cached.
type Catalog struct {
	Backend string `mapstructure:"backend"` // sqlite | memory
	Path    string `mapstructure:"path"`
}

// Files points at an optional YAML file.
type Files struct {
	Path string `mapstructure:"path"`
}

// Log configures the zap logger.
type Log struct {
	JSON  bool   `mapstructure:"json"`
	Level string `mapstructure:"level"`
}

// Thresholds returns the resolver's acceptance thresholds.
func (c *Config) Thresholds() match.Thresholds {
	return match.Thresholds{Floor: c.Resolver.Floor, Confident: c.Resolver.Confident}
}

// Weights returns the lexical/semantic blend.
func (c *Config) Weights() match.Weights {
	return match.Weights{Lexical: c.Resolver.LexicalWeight, Semantic: c.Resolver.SemanticWeight}
}

// Validate rejects settings the resolver cannot work with.
func (c *Config) Validate() error {
	if err := c.Thresholds().Validate(); err != nil {
		return err
	}
	if err := c.Weights().Validate(); err != nil {
		return err
	}
	if c.Resolver.TopN < 1 {
		return errors.Wrapf(internalerr.ErrInvalidConfig, "resolver.top_n must be at least 1, got %d", c.Resolver.TopN)
	}
	switch c.Embeddings.Provider {
	case "hash":
	case "http":
		if c.Embeddings.BaseURL == "" || c.Embeddings.Model == "" {
			return errors.Wrap(internalerr.ErrInvalidConfig, "embeddings.provider=http needs embeddings.base_url and embeddings.model")
		}
	default:
		return errors.Wrapf(internalerr.ErrInvalidConfig, "unknown embeddings.provider %q", c.Embeddings.Provider)
	}
	switch c.Catalog.Backend {
	case "memory":
	case "sqlite":
		if c.Catalog.Path == "" {
			return errors.Wrap(internalerr.ErrInvalidConfig, "catalog.backend=sqlite needs catalog.path")
		}
	default:
		return errors.Wrapf(internalerr.ErrInvalidConfig, "unknown catalog.backend %q", c.Catalog.Backend)
	}
	return nil
}
