package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Config represents the persistent binder configuration stored as config.toml
// in the .binder/ directory. The TOML layout uses sections for logical grouping.
type Config struct {
	Version   int             `toml:"version"`
	Bank      BankConfig      `toml:"bank"`
	Resolver  ResolverConfig  `toml:"resolver"`
	Cache     CacheConfig     `toml:"cache"`
	Admission AdmissionConfig `toml:"admission"`
	API       APIConfig       `toml:"api"`
	Warm      WarmConfig      `toml:"warm"`
	Watch     WatchConfig     `toml:"watch"`
}

// BankConfig holds settings locating the memory bank itself.
type BankConfig struct {
	// Root is the directory the markdown documents live under.
	Root string `toml:"root,omitempty"`
}

// ResolverConfig holds transclusion resolution settings.
type ResolverConfig struct {
	MaxDepth uint `toml:"max_depth,omitempty"`
}

// CacheConfig holds two-tier cache settings. Durations are strings in
// time.ParseDuration syntax ("5m", "90s").
type CacheConfig struct {
	TTL         string `toml:"ttl,omitempty"`
	LRUCapacity uint   `toml:"lru_capacity,omitempty"`
}

// AdmissionConfig holds admission gate settings.
type AdmissionConfig struct {
	MaxConcurrent uint   `toml:"max_concurrent,omitempty"`
	Timeout       string `toml:"timeout,omitempty"`
	MaxAttempts   uint   `toml:"max_attempts,omitempty"`
	BaseDelay     string `toml:"base_delay,omitempty"`
}

// APIConfig holds API server settings.
type APIConfig struct {
	Listen string `toml:"listen,omitempty"`
}

// WarmConfig holds cache warming settings.
type WarmConfig struct {
	// Mandatory lists document names every warming run loads first.
	Mandatory []string `toml:"mandatory,omitempty"`
}

// WatchConfig holds filesystem watcher settings.
type WatchConfig struct {
	Enabled bool `toml:"enabled"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"bank.root": {
		get: func(c *Config) string { return c.Bank.Root },
		set: func(c *Config, v string) error { c.Bank.Root = v; return nil },
	},
	"resolver.max_depth": {
		get: func(c *Config) string { return formatUint(c.Resolver.MaxDepth) },
		set: func(c *Config, v string) error {
			n, err := parseUint("resolver.max_depth", v)
			if err != nil {
				return err
			}
			c.Resolver.MaxDepth = n
			return nil
		},
	},
	"cache.ttl": {
		get: func(c *Config) string { return c.Cache.TTL },
		set: func(c *Config, v string) error {
			if err := validateDuration("cache.ttl", v); err != nil {
				return err
			}
			c.Cache.TTL = v
			return nil
		},
	},
	"cache.lru_capacity": {
		get: func(c *Config) string { return formatUint(c.Cache.LRUCapacity) },
		set: func(c *Config, v string) error {
			n, err := parseUint("cache.lru_capacity", v)
			if err != nil {
				return err
			}
			c.Cache.LRUCapacity = n
			return nil
		},
	},
	"admission.max_concurrent": {
		get: func(c *Config) string { return formatUint(c.Admission.MaxConcurrent) },
		set: func(c *Config, v string) error {
			n, err := parseUint("admission.max_concurrent", v)
			if err != nil {
				return err
			}
			c.Admission.MaxConcurrent = n
			return nil
		},
	},
	"admission.timeout": {
		get: func(c *Config) string { return c.Admission.Timeout },
		set: func(c *Config, v string) error {
			if err := validateDuration("admission.timeout", v); err != nil {
				return err
			}
			c.Admission.Timeout = v
			return nil
		},
	},
	"admission.max_attempts": {
		get: func(c *Config) string { return formatUint(c.Admission.MaxAttempts) },
		set: func(c *Config, v string) error {
			n, err := parseUint("admission.max_attempts", v)
			if err != nil {
				return err
			}
			c.Admission.MaxAttempts = n
			return nil
		},
	},
	"admission.base_delay": {
		get: func(c *Config) string { return c.Admission.BaseDelay },
		set: func(c *Config, v string) error {
			if err := validateDuration("admission.base_delay", v); err != nil {
				return err
			}
			c.Admission.BaseDelay = v
			return nil
		},
	},
	"api.listen": {
		get: func(c *Config) string { return c.API.Listen },
		set: func(c *Config, v string) error { c.API.Listen = v; return nil },
	},
	"warm.mandatory": {
		get: func(c *Config) string { return strings.Join(c.Warm.Mandatory, ",") },
		set: func(c *Config, v string) error {
			c.Warm.Mandatory = splitList(v)
			return nil
		},
	},
	"watch.enabled": {
		get: func(c *Config) string { return strconv.FormatBool(c.Watch.Enabled) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for watch.enabled: %w", err)
			}
			c.Watch.Enabled = b
			return nil
		},
	},
}

func formatUint(n uint) string {
	if n == 0 {
		return ""
	}
	return strconv.FormatUint(uint64(n), 10)
}

func parseUint(key, v string) (uint, error) {
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %w", key, err)
	}
	return uint(n), nil
}

func validateDuration(key, v string) error {
	if _, err := time.ParseDuration(v); err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	return nil
}

// splitList splits a comma-separated value, trimming whitespace and dropping
// empty entries.
func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
