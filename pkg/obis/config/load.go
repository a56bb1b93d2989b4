package config

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"

	"github.com/cognicore/obisquery/pkg/obis/internalerr"
)

// EnvPrefix prefixes every environment override, e.g. OBISQUERY_LLM_API_KEY.
const EnvPrefix = "OBISQUERY"

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	v.SetDefault("obis.base_url", "https://api.obis.org/")
	v.SetDefault("obis.timeout", "10s")
	v.SetDefault("obis.rate_per_second", 5.0)
	v.SetDefault("obis.burst", 5)

	v.SetDefault("worms.base_url", "https://www.marinespecies.org/rest/")
	v.SetDefault("worms.timeout", "10s")

	v.SetDefault("llm.base_url", "https://api.openai.com/v1")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.model", "gpt-4o-mini")
	v.SetDefault("llm.timeout", "30s")

	v.SetDefault("embeddings.provider", "hash")
	v.SetDefault("embeddings.base_url", "")
	v.SetDefault("embeddings.api_key", "")
	v.SetDefault("embeddings.model", "")
	v.SetDefault("embeddings.dimensions", 256)
	v.SetDefault("embeddings.cache_size", 4096)
	v.SetDefault("embeddings.timeout", "15s")

	// Uncalibrated defaults; tune against real query logs.
	v.SetDefault("resolver.floor", 0.50)
	v.SetDefault("resolver.confident", 0.80)
	v.SetDefault("resolver.lexical_weight", 0.5)
	v.SetDefault("resolver.semantic_weight", 0.5)
	v.SetDefault("resolver.top_n", 5)
	v.SetDefault("resolver.max_alternatives", 5)
	v.SetDefault("resolver.area_suggestions", 3)

	v.SetDefault("catalog.backend", "sqlite")
	v.SetDefault("catalog.path", "obis-catalog.db")

	v.SetDefault("prompts.path", "")
	v.SetDefault("aliases.path", "")

	v.SetDefault("log.json", false)
	v.SetDefault("log.level", "info")
}

// New returns a viper instance with defaults and environment binding.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)
	return v
}

// Load reads configuration from defaults, the optional file at path (YAML,
// TOML or JSON by extension) and the environment, then validates it.
func Load(path string) (*Config, error) {
	v := New()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config file %s", path)
		}
	}
	return LoadWithViper(v)
}

// LoadWithViper decodes and validates configuration from v.
func LoadWithViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(internalerr.ErrInvalidConfig, err.Error())
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
