package commons

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"go.yaml.in/yaml/v3"

	"dorebell/internal/config"
)

type fileConfig struct {
	RateLimits map[string]config.RateLimitPolicy `yaml:"rateLimits"`
	Product    *config.ProductConfig             `yaml:"product"`
}

// LoadConfig loads the environment configuration and merges the rate limit
// policies and product settings from the YAML file at path. A missing file
// keeps the built-in defaults.
func LoadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading environment config: %w", err)
	}

	if path == "" {
		path = cfg.ConfigFile
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	for scope, p := range fc.RateLimits {
		if p.Window <= 0 || p.Max <= 0 {
			return nil, fmt.Errorf("invalid rate limit policy for %q: window and max must be positive", scope)
		}
		if cfg.RateLimit.Policies == nil {
			cfg.RateLimit.Policies = make(map[string]config.RateLimitPolicy, len(fc.RateLimits))
		}
		cfg.RateLimit.Policies[scope] = p
	}

	if fc.Product != nil {
		if fc.Product.Name != "" {
			cfg.Product.Name = fc.Product.Name
		}
		if fc.Product.Price != "" {
			cfg.Product.Price = fc.Product.Price
		}
	}

	return cfg, nil
}
