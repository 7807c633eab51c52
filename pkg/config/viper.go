package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/inkwellhq/binder/pkg/dotdir"
)

// InitViper creates and returns a configured *viper.Viper.
// It sets defaults from NewDefaultConfig(), reads the config.toml file
// (if found via dotdir resolution), and binds environment variables
// with the BINDER_ prefix.
//
// Config precedence (highest to lowest):
//  1. CLI flags (once bound via BindRegisteredFlags)
//  2. Environment variables (BINDER_BANK_ROOT, BINDER_API_LISTEN, etc.)
//  3. config.toml file values
//  4. Defaults from NewDefaultConfig()
func InitViper(configDir string) (*viper.Viper, error) {
	v := viper.New()

	// 1. Register all defaults from NewDefaultConfig().
	setViperDefaults(v)

	// 2. Config file discovery via dotdir resolution.
	v.SetConfigName("config")
	v.SetConfigType("toml")

	ddm := dotdir.NewManager()
	target, err := ddm.Target(configDir)
	if err != nil {
		return nil, fmt.Errorf("resolving config dir: %w", err)
	}

	if target != "" {
		v.AddConfigPath(target)
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file not found errors are fine, defaults will apply.
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	// 3. Environment variables: BINDER_BANK_ROOT, BINDER_CACHE_TTL, etc.
	v.SetEnvPrefix("BINDER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v, nil
}

// setViperDefaults registers defaults from NewDefaultConfig() into viper
// using dotted-key notation. This keeps defaults.go as the single source of truth.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("version", d.Version)

	// Bank
	v.SetDefault("bank.root", d.Bank.Root)

	// Resolver
	v.SetDefault("resolver.max_depth", d.Resolver.MaxDepth)

	// Cache
	v.SetDefault("cache.ttl", d.Cache.TTL)
	v.SetDefault("cache.lru_capacity", d.Cache.LRUCapacity)

	// Admission
	v.SetDefault("admission.max_concurrent", d.Admission.MaxConcurrent)
	v.SetDefault("admission.timeout", d.Admission.Timeout)
	v.SetDefault("admission.max_attempts", d.Admission.MaxAttempts)
	v.SetDefault("admission.base_delay", d.Admission.BaseDelay)

	// API
	v.SetDefault("api.listen", d.API.Listen)

	// Warm
	v.SetDefault("warm.mandatory", d.Warm.Mandatory)

	// Watch
	v.SetDefault("watch.enabled", d.Watch.Enabled)
}
