// Package warmcmder provides the warm command for running the cache warming
// strategies once against the local memory bank.
package warmcmder

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/inkwellhq/binder/pkg/bank"
	"github.com/inkwellhq/binder/pkg/cache"
	"github.com/inkwellhq/binder/pkg/cliui"
	"github.com/inkwellhq/binder/pkg/config"
	"github.com/inkwellhq/binder/pkg/document/fsstore"
	"github.com/inkwellhq/binder/pkg/document/markdown"
	"github.com/inkwellhq/binder/pkg/logger"
)

type WarmCommander struct {
	root      string
	mandatory []string
	debug     bool
}

const warmLongDesc string = `Run the cache warming strategies once.

Each registered strategy (mandatory documents, hot keys, recently used,
high fan-out) proposes document names, which are resolved and cached in
priority order. Useful for checking what a server would preload at startup.

Examples:
  binder warm
  binder warm --root /srv/memory-bank`

const warmShortDesc string = "Run the cache warming strategies once"

var warmFlags = config.FlagSet{
	config.FlagRoot: {Name: "root", Shorthand: "r", ViperKey: "bank.root", Description: "Memory bank root directory"},
}

func NewWarmCmd() *cobra.Command {
	cmder := &WarmCommander{}

	cmd := &cobra.Command{
		Use:   "warm",
		Short: warmShortDesc,
		Long:  warmLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
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
			config.BindRegisteredFlags(v, cmd, warmFlags, []string{config.FlagRoot})
			cmder.fromViper(v)

			return cmder.run()
		},
	}

	config.AddStringFlag(cmd, warmFlags, config.FlagRoot, &cmder.root)

	return cmd
}

func (c *WarmCommander) fromViper(v *viper.Viper) {
	c.root = v.GetString("bank.root")
	c.mandatory = v.GetStringSlice("warm.mandatory")
}

func (c *WarmCommander) run() error {
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

	var b *bank.Bank
	err = cliui.Step(os.Stdout, "Scanning memory bank", func() error {
		b, err = bank.New(ctx, bank.Config{
			Store:              store,
			Parser:             markdown.NewParser(),
			MandatoryDocuments: c.mandatory,
			Logger:             log,
		})
		return err
	})
	if err != nil {
		return fmt.Errorf("creating bank: %w", err)
	}

	var results []cache.StrategyResult
	_ = cliui.Step(os.Stdout, "Running warming strategies", func() error {
		results = b.Warm(ctx)
		return nil
	})

	fmt.Println()
	for _, r := range results {
		var outcome string
		if r.Success {
			outcome = fmt.Sprintf("warmed %d", r.Warmed)
		} else {
			outcome = fmt.Sprintf("failed: %v", r.Error)
		}
		fmt.Printf("  %s %-20s %s %s\n",
			mark(r.Success),
			r.Strategy,
			outcome,
			cliui.StepStyle.Render(fmt.Sprintf("(%s)", cliui.FormatDuration(r.Elapsed))),
		)
	}
	fmt.Println()

	stats := b.CacheHealth()
	fmt.Printf("  cache: %d entries\n\n", stats.Size)

	return nil
}

func mark(success bool) string {
	if success {
		return cliui.SuccessMark
	}
	return cliui.FailMark
}
