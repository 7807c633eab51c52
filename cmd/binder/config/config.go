// Package configcmder provides the config command for managing persistent
// binder configuration stored in the .binder/ directory.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent binder configuration.

Configuration is stored as config.toml in the .binder/ directory and provides
default values for command flags. CLI flags always take precedence over
config file values.

Keys use dotted notation matching the TOML section structure:
  bank.root,
  resolver.max_depth,
  cache.ttl, cache.lru_capacity,
  admission.max_concurrent, admission.timeout,
  admission.max_attempts, admission.base_delay,
  api.listen, warm.mandatory, watch.enabled

Use subcommands to get, set, or list configuration values:
  binder config set <key> <value>    Set a configuration value
  binder config get <key>            Get a configuration value
  binder config list                 List all configuration values

Examples:
  binder config set bank.root /srv/memory-bank
  binder config set cache.ttl 10m
  binder config get resolver.max_depth
  binder config list`

const configShortDesc string = "Manage persistent binder configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}
