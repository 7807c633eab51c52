// Package servecmder provides the serve command running the binder API and
// MCP server over one shared resolution engine.
package servecmder

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/inkwellhq/binder/api"
	apimcp "github.com/inkwellhq/binder/api/mcp"
	"github.com/inkwellhq/binder/pkg/bank"
	"github.com/inkwellhq/binder/pkg/config"
	"github.com/inkwellhq/binder/pkg/document/fsstore"
	"github.com/inkwellhq/binder/pkg/document/markdown"
	"github.com/inkwellhq/binder/pkg/dotdir"
	"github.com/inkwellhq/binder/pkg/logger"
)

type ServeCommander struct {
	root          string
	listen        string
	maxDepth      uint
	cacheTTL      string
	lruCapacity   uint
	maxConcurrent uint
	timeout       string
	maxAttempts   uint
	baseDelay     string
	watch         bool
	mandatory     []string
	debug         bool
	configDir     string
	logger        *slog.Logger
}

const serveLongDesc string = `Run the binder server.

Serves the memory bank over two surfaces on one listener:
  HTTP API    /resolve/<name>, /graph, /health/cache, /health/admission, /warm
  MCP         /mcp (streamable HTTP, for AI coding assistants)

On startup the cache warming strategies run once, seeded with any persisted
recent-document state. With --watch (the default) the bank is rescanned when
documents change on disk.`

const serveShortDesc string = "Run the binder server"

// serveFlags is the registry of flags this command binds into viper.
var serveFlags = config.FlagSet{
	config.FlagRoot:          {Name: "root", Shorthand: "r", ViperKey: "bank.root", Description: "Memory bank root directory"},
	config.FlagAPIListen:     {Name: "listen", Shorthand: "l", ViperKey: "api.listen", Description: "Address for the server to listen on"},
	config.FlagMaxDepth:      {Name: "max-depth", ViperKey: "resolver.max_depth", Description: "Maximum transclusion recursion depth"},
	config.FlagCacheTTL:      {Name: "cache-ttl", ViperKey: "cache.ttl", Description: "Hot-tier cache entry lifetime (e.g. 5m)"},
	config.FlagLRUCapacity:   {Name: "lru-capacity", ViperKey: "cache.lru_capacity", Description: "Warm-tier cache capacity"},
	config.FlagMaxConcurrent: {Name: "max-concurrent", ViperKey: "admission.max_concurrent", Description: "Maximum concurrent admitted resolutions"},
	config.FlagTimeout:       {Name: "timeout", ViperKey: "admission.timeout", Description: "Per-attempt resolution deadline (e.g. 30s)"},
	config.FlagMaxAttempts:   {Name: "max-attempts", ViperKey: "admission.max_attempts", Description: "Maximum resolution attempts under retry"},
	config.FlagBaseDelay:     {Name: "base-delay", ViperKey: "admission.base_delay", Description: "Base retry backoff delay (e.g. 500ms)"},
	config.FlagWatch:         {Name: "watch", ViperKey: "watch.enabled", Description: "Watch the bank for changes and rebuild"},
}

var serveFlagKeys = []string{
	config.FlagRoot,
	config.FlagAPIListen,
	config.FlagMaxDepth,
	config.FlagCacheTTL,
	config.FlagLRUCapacity,
	config.FlagMaxConcurrent,
	config.FlagTimeout,
	config.FlagMaxAttempts,
	config.FlagBaseDelay,
	config.FlagWatch,
}

func NewServeCmd() *cobra.Command {
	cmder := &ServeCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %v", err)
			}
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")

			v, err := config.InitViper(cmder.configDir)
			if err != nil {
				return err
			}
			config.BindRegisteredFlags(v, cmd, serveFlags, serveFlagKeys)
			cmder.fromViper(v)

			return cmder.run()
		},
	}

	config.AddStringFlag(cmd, serveFlags, config.FlagRoot, &cmder.root)
	config.AddStringFlag(cmd, serveFlags, config.FlagAPIListen, &cmder.listen)
	config.AddUintFlag(cmd, serveFlags, config.FlagMaxDepth, &cmder.maxDepth)
	config.AddStringFlag(cmd, serveFlags, config.FlagCacheTTL, &cmder.cacheTTL)
	config.AddUintFlag(cmd, serveFlags, config.FlagLRUCapacity, &cmder.lruCapacity)
	config.AddUintFlag(cmd, serveFlags, config.FlagMaxConcurrent, &cmder.maxConcurrent)
	config.AddStringFlag(cmd, serveFlags, config.FlagTimeout, &cmder.timeout)
	config.AddUintFlag(cmd, serveFlags, config.FlagMaxAttempts, &cmder.maxAttempts)
	config.AddStringFlag(cmd, serveFlags, config.FlagBaseDelay, &cmder.baseDelay)
	config.AddBoolFlag(cmd, serveFlags, config.FlagWatch, &cmder.watch)

	return cmd
}

// fromViper re-reads every setting through the viper precedence chain
// (flag > env > config file > default).
func (c *ServeCommander) fromViper(v *viper.Viper) {
	c.root = v.GetString("bank.root")
	c.listen = v.GetString("api.listen")
	c.maxDepth = v.GetUint("resolver.max_depth")
	c.cacheTTL = v.GetString("cache.ttl")
	c.lruCapacity = v.GetUint("cache.lru_capacity")
	c.maxConcurrent = v.GetUint("admission.max_concurrent")
	c.timeout = v.GetString("admission.timeout")
	c.maxAttempts = v.GetUint("admission.max_attempts")
	c.baseDelay = v.GetString("admission.base_delay")
	c.watch = v.GetBool("watch.enabled")
	c.mandatory = v.GetStringSlice("warm.mandatory")
}

func (c *ServeCommander) run() error {
	c.logger = c.buildLogger()

	cacheTTL, err := time.ParseDuration(c.cacheTTL)
	if err != nil {
		return fmt.Errorf("invalid cache TTL %q: %w", c.cacheTTL, err)
	}
	timeout, err := time.ParseDuration(c.timeout)
	if err != nil {
		return fmt.Errorf("invalid admission timeout %q: %w", c.timeout, err)
	}

	store, err := fsstore.NewStore(c.root)
	if err != nil {
		return fmt.Errorf("opening memory bank: %w", err)
	}
	defer store.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b, err := bank.New(ctx, bank.Config{
		Store:              store,
		Parser:             markdown.NewParser(),
		MaxDepth:           int(c.maxDepth),
		CacheTTL:           cacheTTL,
		LRUCapacity:        int(c.lruCapacity),
		MaxConcurrent:      int64(c.maxConcurrent),
		ResolveTimeout:     timeout,
		MaxAttempts:        int(c.maxAttempts),
		MandatoryDocuments: c.mandatory,
		Logger:             c.logger,
	})
	if err != nil {
		return fmt.Errorf("creating bank: %w", err)
	}

	c.seedRecent(ctx, b)

	results := b.Warm(ctx)
	for _, r := range results {
		c.logger.Info("warming strategy finished",
			"strategy", r.Strategy,
			"warmed", r.Warmed,
			"elapsed", r.Elapsed,
			"success", r.Success,
		)
	}

	mcpServer, err := apimcp.NewServer(apimcp.Config{
		Bank:   b,
		Logger: c.logger,
	})
	if err != nil {
		return fmt.Errorf("creating MCP server: %w", err)
	}

	apiConfig := api.Config{
		ListenAddr: c.listen,
	}
	server := api.NewServer(apiConfig, b, mcpServer.Handler(), c.logger)

	// Channel to capture errors from goroutines
	errChan := make(chan error, 2)

	if c.watch {
		go func() {
			if err := b.Watch(ctx); err != nil {
				errChan <- fmt.Errorf("watcher error: %w", err)
			}
		}()
	}

	go func() {
		if err := server.Run(); err != nil {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()

	c.logger.Info("binder serving",
		"root", store.Root(),
		"listen", c.listen,
		"watch", c.watch,
	)

	// Wait for interrupt signal or error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		c.logger.Info("received signal, shutting down", "signal", sig.String())
		c.saveRecent(b)
		return server.Shutdown()
	}
}

// buildLogger writes pretty output to the terminal and, when a .binder/
// directory is available, JSON records to binder.log inside it. The log file
// stays open for the life of the process.
func (c *ServeCommander) buildLogger() *slog.Logger {
	pretty := logger.New(logger.WithDebug(c.debug), logger.WithPretty(true))

	target, err := dotdir.NewManager().Target(c.configDir)
	if err != nil {
		return pretty
	}

	f, err := os.OpenFile(filepath.Join(target, "binder.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return pretty
	}

	file := logger.New(logger.WithDebug(c.debug), logger.WithJSON(true), logger.WithWriter(f))
	return logger.Multi(pretty, file)
}

// seedRecent warms the cache with the recent-document state persisted by the
// previous run, if any.
func (c *ServeCommander) seedRecent(ctx context.Context, b *bank.Bank) {
	state, err := dotdir.NewManager().LoadRecentState(c.configDir)
	if err != nil {
		c.logger.Warn("could not load recent-document state", "error", err)
		return
	}
	if state == nil || len(state.Keys) == 0 {
		return
	}

	warmed := b.WarmDocuments(ctx, state.Keys)
	c.logger.Info("seeded cache from recent-document state",
		"keys", len(state.Keys),
		"warmed", warmed,
	)
}

// saveRecent persists the cache's recent keys so the next run can seed from
// them.
func (c *ServeCommander) saveRecent(b *bank.Bank) {
	state := &dotdir.RecentState{
		Keys:    b.RecentKeys(recentStateKeys),
		SavedAt: time.Now(),
	}
	if len(state.Keys) == 0 {
		return
	}

	if err := dotdir.NewManager().SaveRecent(state, c.configDir); err != nil {
		c.logger.Warn("could not save recent-document state", "error", err)
	}
}

// recentStateKeys bounds how many recent keys persist across restarts.
const recentStateKeys = 20
