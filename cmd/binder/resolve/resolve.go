// Package resolvecmder provides the resolve command for expanding one
// document straight from the local memory bank.
package resolvecmder

import (
	"context"
	"fmt"
	"os"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/inkwellhq/binder/pkg/bank"
	"github.com/inkwellhq/binder/pkg/cliui"
	"github.com/inkwellhq/binder/pkg/config"
	"github.com/inkwellhq/binder/pkg/document/fsstore"
	"github.com/inkwellhq/binder/pkg/document/markdown"
	"github.com/inkwellhq/binder/pkg/logger"
)

type ResolveCommander struct {
	root     string
	maxDepth uint
	raw      bool
	debug    bool
}

const resolveLongDesc string = `Resolve a memory-bank document and print it.

Every ![[embed]] directive is replaced with the referenced document's (or
section's) fully expanded content. When stdout is a terminal the result is
rendered as markdown; use --raw to print the plain expanded text.

Examples:
  binder resolve project-brief
  binder resolve architecture/caching --raw
  binder resolve project-brief --root /srv/memory-bank`

const resolveShortDesc string = "Resolve a document and print it"

var resolveFlags = config.FlagSet{
	config.FlagRoot:     {Name: "root", Shorthand: "r", ViperKey: "bank.root", Description: "Memory bank root directory"},
	config.FlagMaxDepth: {Name: "max-depth", ViperKey: "resolver.max_depth", Description: "Maximum transclusion recursion depth"},
}

func NewResolveCmd() *cobra.Command {
	cmder := &ResolveCommander{}

	cmd := &cobra.Command{
		Use:   "resolve <name>",
		Short: resolveShortDesc,
		Long:  resolveLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %v", err)
			}
			configDir, _ := cmd.Flags().GetString("config-dir")

			v, err := config.InitViper(configDir)
			if err != nil {
				return err
			}
			config.BindRegisteredFlags(v, cmd, resolveFlags, []string{config.FlagRoot, config.FlagMaxDepth})
			cmder.fromViper(v)

			return cmder.run(args[0])
		},
	}

	config.AddStringFlag(cmd, resolveFlags, config.FlagRoot, &cmder.root)
	config.AddUintFlag(cmd, resolveFlags, config.FlagMaxDepth, &cmder.maxDepth)
	cmd.Flags().BoolVar(&cmder.raw, "raw", false, "Print the plain expanded text without markdown rendering")

	return cmd
}

func (c *ResolveCommander) fromViper(v *viper.Viper) {
	c.root = v.GetString("bank.root")
	c.maxDepth = v.GetUint("resolver.max_depth")
}

func (c *ResolveCommander) run(name string) error {
	log := logger.Nop()
	if c.debug {
		log = logger.New(logger.WithDebug(true), logger.WithPretty(true))
	}

	store, err := fsstore.NewStore(c.root)
	if err != nil {
		return fmt.Errorf("opening memory bank: %w", err)
	}
	defer store.Close()

	ctx := context.Background()

	b, err := bank.New(ctx, bank.Config{
		Store:    store,
		Parser:   markdown.NewParser(),
		MaxDepth: int(c.maxDepth),
		Logger:   log,
	})
	if err != nil {
		return fmt.Errorf("creating bank: %w", err)
	}

	resolution, err := b.ResolveDocument(ctx, name)
	if err != nil {
		return err
	}

	if c.plainOutput() {
		fmt.Print(resolution.Resolved)
		if len(resolution.Resolved) > 0 && resolution.Resolved[len(resolution.Resolved)-1] != '\n' {
			fmt.Println()
		}
		return nil
	}

	rendered, err := cliui.RenderMarkdown(resolution.Resolved)
	if err != nil {
		// Fall back to plain text if glamour fails
		fmt.Print(resolution.Resolved)
		return nil
	}

	fmt.Print(rendered)
	return nil
}

// plainOutput reports whether markdown rendering should be skipped: the user
// asked for raw text, stdout is not a terminal, or the terminal reports no
// color support.
func (c *ResolveCommander) plainOutput() bool {
	if c.raw {
		return true
	}
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return true
	}
	return termenv.NewOutput(os.Stdout).Profile == termenv.Ascii
}
