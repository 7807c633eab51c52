// Package bindercmder
package bindercmder

import (
	"github.com/spf13/cobra"

	configcmder "github.com/inkwellhq/binder/cmd/binder/config"
	graphcmder "github.com/inkwellhq/binder/cmd/binder/graph"
	resolvecmder "github.com/inkwellhq/binder/cmd/binder/resolve"
	servecmder "github.com/inkwellhq/binder/cmd/binder/serve"
	warmcmder "github.com/inkwellhq/binder/cmd/binder/warm"
	versioncmder "github.com/inkwellhq/binder/cmd/version"
)

const binderLongDesc string = `Binder serves a memory bank of interlinked markdown documents
to AI coding assistants, expanding ![[transclusion]] directives recursively
with cycle and depth guards, a two-tier cache, and an admission gate.

Common commands:
  binder serve               Run the HTTP API and MCP server
  binder resolve <name>      Resolve one document and print it
  binder graph               Inspect the dependency graph
  binder warm                Run the cache warming strategies once`

const binderShortDesc string = "Binder - Memory Bank Resolution Engine"

func NewBinderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "binder",
		Short: binderShortDesc,
		Long:  binderLongDesc,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override the .binder/ config directory")

	// Add subcommands
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(resolvecmder.NewResolveCmd())
	cmd.AddCommand(graphcmder.NewGraphCmd())
	cmd.AddCommand(warmcmder.NewWarmCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
