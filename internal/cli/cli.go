// Package cli implements the forge command-line interface.
package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/forgewm/forge/pkg/buildinfo"
	"github.com/forgewm/forge/pkg/cache"
	"github.com/forgewm/forge/pkg/config"
	"github.com/forgewm/forge/pkg/scenario"
	"github.com/forgewm/forge/pkg/snapshot"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "forge"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
	LogWarn  = log.WarnLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// ConfigPath overrides the XDG configuration file location.
	ConfigPath string
	verbose    bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Forge tiles windows into a workspace, monitor and window tree",
		Long: `Forge arranges windows as a tree of workspaces, monitors and windows and
computes a rectangle for every visible window. Scenario files script window
events so layouts can be replayed, inspected and served over HTTP.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.verbose {
				c.SetLogLevel(LogDebug)
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.ConfigPath, "config", "", "config file (default $XDG_CONFIG_HOME/forge/config.toml)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.treeCommand())
	root.AddCommand(c.dotCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the configuration and applies its log level unless
// --verbose already asked for debug output.
func (c *CLI) loadConfig() (config.Config, error) {
	cfg, err := config.Load(c.ConfigPath)
	if err != nil {
		return config.Config{}, err
	}
	if !c.verbose {
		c.SetLogLevel(cfg.LogLevel())
	}
	return cfg, nil
}

// =============================================================================
// Cache Factory
// =============================================================================

// newCache opens the configured cache backend. An unreachable backend
// degrades to no caching with a warning.
func (c *CLI) newCache(ctx context.Context, cfg config.Config, noCache bool) cache.Cache {
	if noCache || cfg.Cache.Backend == config.BackendNone {
		return cache.NewNullCache()
	}

	if cfg.Cache.Backend == config.BackendRedis {
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{Addr: cfg.Cache.RedisAddr})
		if err != nil {
			c.Logger.Warn("cache disabled", "backend", cfg.Cache.Backend, "err", err)
			return cache.NewNullCache()
		}
		return cache.Instrument(rc)
	}

	dir, err := cacheDir(cfg)
	if err != nil {
		c.Logger.Warn("cache disabled", "err", err)
		return cache.NewNullCache()
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		c.Logger.Warn("cache disabled", "dir", dir, "err", err)
		return cache.NewNullCache()
	}
	return cache.Instrument(fc)
}

// cacheDir returns the configured file cache directory, or the XDG default.
func cacheDir(cfg config.Config) (string, error) {
	if cfg.Cache.Dir != "" {
		return cfg.Cache.Dir, nil
	}
	return cache.DefaultDir()
}

// =============================================================================
// Scenario Runner
// =============================================================================

// result is a snapshot plus where it came from.
type result struct {
	snap   *snapshot.Snapshot
	key    string
	cached bool
}

// runScenario replays the scenario at path and captures the result. The
// snapshot is cached under the file content and the layout options, so
// unchanged scenarios are not replayed.
func (c *CLI) runScenario(ctx context.Context, cfg config.Config, ch cache.Cache, path string) (*result, error) {
	logger := loggerFromContext(ctx)

	s, data, err := scenario.ReadFile(path)
	if err != nil {
		return nil, err
	}

	key := cache.SnapshotKey(cache.Hash(data), cache.SnapshotKeyOpts{
		Gap:             cfg.Gap,
		WorkspaceLayout: cfg.WorkspaceLayout,
		MonitorLayout:   cfg.MonitorLayout,
		FloatClasses:    cfg.FloatClasses,
	})

	if data, hit, err := ch.Get(ctx, key); err != nil {
		logger.Warn("cache read failed", "err", err)
	} else if hit {
		snap, err := snapshot.Unmarshal(data)
		if err == nil {
			logger.Debug("snapshot from cache", "key", key)
			return &result{snap: snap, key: key, cached: true}, nil
		}
		logger.Warn("discarding cached snapshot", "err", err)
	}

	opts, err := cfg.ManagerOptions(logger)
	if err != nil {
		return nil, err
	}

	prog := newProgress(logger)
	r, err := scenario.Run(ctx, s, opts)
	if err != nil {
		return nil, err
	}
	prog.done("Replayed "+pluralize(len(s.Events), "event"), "scenario", path)

	snap := r.Snapshot()
	if out, err := snap.Marshal(); err == nil {
		if err := ch.Set(ctx, key, out, cfg.Cache.TTL.Duration); err != nil {
			logger.Warn("cache write failed", "err", err)
		}
	}
	return &result{snap: snap, key: key}, nil
}
