// Package graphcmder provides the graph command for inspecting the memory
// bank's dependency graph.
package graphcmder

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/inkwellhq/binder/pkg/config"
	"github.com/inkwellhq/binder/pkg/document/fsstore"
	"github.com/inkwellhq/binder/pkg/document/markdown"
	"github.com/inkwellhq/binder/pkg/graph"
)

type GraphCommander struct {
	root    string
	diagram bool
	order   []string
}

const graphLongDesc string = `Inspect the memory bank's dependency graph.

Scans every document for [[reference]] links and ![[transclusion]] directives
and prints the resulting graph as JSON: nodes, edges, and any detected cycles.

With --diagram the graph renders as a terminal box diagram, cycle members
highlighted. With --order the output is a dependency-respecting loading order
for the given seed documents.

Examples:
  binder graph
  binder graph --diagram
  binder graph --order project-brief,active-context`

const graphShortDesc string = "Inspect the dependency graph"

var graphFlags = config.FlagSet{
	config.FlagRoot: {Name: "root", Shorthand: "r", ViperKey: "bank.root", Description: "Memory bank root directory"},
}

func NewGraphCmd() *cobra.Command {
	cmder := &GraphCommander{}

	cmd := &cobra.Command{
		Use:   "graph",
		Short: graphShortDesc,
		Long:  graphLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")

			v, err := config.InitViper(configDir)
			if err != nil {
				return err
			}
			config.BindRegisteredFlags(v, cmd, graphFlags, []string{config.FlagRoot})
			cmder.fromViper(v)

			return cmder.run()
		},
	}

	config.AddStringFlag(cmd, graphFlags, config.FlagRoot, &cmder.root)
	cmd.Flags().BoolVar(&cmder.diagram, "diagram", false, "Render the graph as a terminal diagram")
	cmd.Flags().StringSliceVar(&cmder.order, "order", nil, "Print the loading order for these seed documents")

	return cmd
}

func (c *GraphCommander) fromViper(v *viper.Viper) {
	c.root = v.GetString("bank.root")
}

func (c *GraphCommander) run() error {
	store, err := fsstore.NewStore(c.root)
	if err != nil {
		return fmt.Errorf("opening memory bank: %w", err)
	}
	defer store.Close()

	g, err := graph.Build(context.Background(), store, markdown.NewParser())
	if err != nil {
		return fmt.Errorf("building dependency graph: %w", err)
	}

	if len(c.order) > 0 {
		for _, name := range g.LoadingOrder(c.order) {
			fmt.Println(name)
		}
		return nil
	}

	snapshot := g.Snapshot()

	if c.diagram {
		fmt.Println(snapshot.Diagram())
		return nil
	}

	payload, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling graph snapshot: %w", err)
	}

	fmt.Println(string(payload))
	return nil
}
