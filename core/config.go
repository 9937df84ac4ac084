package core

import (
	"fmt"
	"time"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Config holds the engine configuration.
type Config struct {
	// DefaultLimit is the row limit applied when a query has no LIMIT
	// clause. Zero leaves such queries unlimited.
	DefaultLimit int `mapstructure:"default_limit" json:"default_limit" yaml:"default_limit"`

	// DisableAgg rejects all aggregate functions like count, sum, etc
	DisableAgg bool `mapstructure:"disable_agg_functions" json:"disable_agg_functions" yaml:"disable_agg_functions"`

	// PlanCacheSize is the number of compiled plans kept in the LRU
	// plan cache.
	PlanCacheSize int `mapstructure:"plan_cache_size" json:"plan_cache_size" yaml:"plan_cache_size"`

	// ResultCacheSize is the number of query results kept in the
	// result cache. Zero disables result caching.
	ResultCacheSize int `mapstructure:"result_cache_size" json:"result_cache_size" yaml:"result_cache_size"`

	// ResultCacheTTL bounds how long a cached result may be served.
	ResultCacheTTL time.Duration `mapstructure:"result_cache_ttl" json:"result_cache_ttl" yaml:"result_cache_ttl"`
}

func (c *Config) setDefaults() {
	if c.PlanCacheSize <= 0 {
		c.PlanCacheSize = 500
	}
	if c.ResultCacheTTL <= 0 {
		c.ResultCacheTTL = 5 * time.Minute
	}
}

// ReadInConfig reads the engine config file from disk.
func ReadInConfig(configFile string) (*Config, error) {
	return ReadInConfigFS(configFile, afero.NewOsFs())
}

// ReadInConfigFS reads the engine config file from the given filesystem.
func ReadInConfigFS(configFile string, fs afero.Fs) (*Config, error) {
	b, err := afero.ReadFile(fs, configFile)
	if err != nil {
		return nil, fmt.Errorf("error reading config: %w", err)
	}

	// yaml.v3 has no native duration support so the TTL reads as a
	// string and parses here.
	var raw struct {
		DefaultLimit    int    `yaml:"default_limit"`
		DisableAgg      bool   `yaml:"disable_agg_functions"`
		PlanCacheSize   int    `yaml:"plan_cache_size"`
		ResultCacheSize int    `yaml:"result_cache_size"`
		ResultCacheTTL  string `yaml:"result_cache_ttl"`
	}
	if err := yaml.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	c := &Config{
		DefaultLimit:    raw.DefaultLimit,
		DisableAgg:      raw.DisableAgg,
		PlanCacheSize:   raw.PlanCacheSize,
		ResultCacheSize: raw.ResultCacheSize,
	}
	if raw.ResultCacheTTL != "" {
		d, err := time.ParseDuration(raw.ResultCacheTTL)
		if err != nil {
			return nil, fmt.Errorf("result_cache_ttl: %w", err)
		}
		c.ResultCacheTTL = d
	}
	return c, nil
}
