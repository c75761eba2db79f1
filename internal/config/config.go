package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds the search gateway configuration, sourced entirely from
// environment variables per the deployment contract.
type Config struct {
	Port      int    `env:"PORT" envDefault:"8080"`
	APIPrefix string `env:"API_PREFIX" envDefault:"/api/v1"`

	DatabaseURL string `env:"DATABASE_URL" envDefault:"postgres://localhost:5432/catalog"`

	OpenSearchNode            string `env:"OPENSEARCH_NODE" envDefault:"http://localhost:9200"`
	OpenSearchIndexVariants   string `env:"OPENSEARCH_INDEX_VARIANTS" envDefault:"variants"`

	RedisHost     string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort     int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`

	ThrottleTTL   int `env:"THROTTLE_TTL" envDefault:"60"`
	ThrottleLimit int `env:"THROTTLE_LIMIT" envDefault:"100"`

	CacheTTLSearch int `env:"CACHE_TTL_SEARCH" envDefault:"300"`
	CacheTTLFacets int `env:"CACHE_TTL_FACETS" envDefault:"600"`

	SearchSalesBoostFactor   float64 `env:"SEARCH_SALES_BOOST_FACTOR" envDefault:"1.2"`
	SearchSalesBoostModifier string  `env:"SEARCH_SALES_BOOST_MODIFIER" envDefault:"log1p"`

	TimeoutRequest    int `env:"TIMEOUT_REQUEST" envDefault:"30"`
	TimeoutOpenSearch int `env:"TIMEOUT_OPENSEARCH" envDefault:"15"`
	TimeoutDatabase   int `env:"TIMEOUT_DATABASE" envDefault:"10"`
	TimeoutConnect    int `env:"TIMEOUT_CONNECT" envDefault:"5"`

	CircuitErrorThreshold  float64 `env:"CIRCUIT_ERROR_THRESHOLD" envDefault:"0.5"`
	CircuitResetTimeout    int     `env:"CIRCUIT_RESET_TIMEOUT" envDefault:"30"`
	CircuitVolumeThreshold int     `env:"CIRCUIT_VOLUME_THRESHOLD" envDefault:"5"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	Env      string `env:"ENV" envDefault:"local"`
}

// Load reads configuration from environment variables and validates it.
func Load() (Config, error) {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}
	if c.ThrottleLimit <= 0 {
		return fmt.Errorf("throttle_limit must be positive, got %d", c.ThrottleLimit)
	}
	if c.CircuitErrorThreshold <= 0 || c.CircuitErrorThreshold > 1 {
		return fmt.Errorf("circuit_error_threshold must be in (0,1], got %f", c.CircuitErrorThreshold)
	}
	switch c.SearchSalesBoostModifier {
	case "log1p", "log", "sqrt", "none":
		// ok
	default:
		return fmt.Errorf("search_sales_boost_modifier must be one of log1p|log|sqrt|none, got %q", c.SearchSalesBoostModifier)
	}
	return nil
}
