// Package cli implements the safephase command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/safephase/pkg/buildinfo"
	"github.com/matzehuels/safephase/pkg/cache"
	sperrors "github.com/matzehuels/safephase/pkg/errors"
	"github.com/matzehuels/safephase/pkg/netxml"
	"github.com/matzehuels/safephase/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "safephase"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config *Config

	configFile string
	noCache    bool
}

// New creates a new CLI instance with a default logger and configuration.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: defaultConfig(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Enumerate the safe signal phases of SUMO junctions",
		Long: `safephase computes every set of connections of a signalized junction that
may show green at the same time without a collision course, from the
junction's foe matrix in a SUMO network or a matrix JSON file.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := c.loadConfig(); err != nil {
				return err
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configFile, "config", "", "config file (default $XDG_CONFIG_HOME/safephase/config.toml)")
	root.PersistentFlags().BoolVar(&c.noCache, "no-cache", false, "disable the result cache")

	root.AddCommand(c.enumerateCommand())
	root.AddCommand(c.junctionsCommand())
	root.AddCommand(c.statesCommand())
	root.AddCommand(c.auditCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

func (c *CLI) loadConfig() error {
	cfg, unknown, err := loadConfig(c.configFile)
	if err != nil {
		return err
	}
	for _, key := range unknown {
		c.Logger.Warn("unknown config key", "key", key)
	}
	c.Config = cfg
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner backed by the configured cache.
func (c *CLI) newRunner(ctx context.Context) (*pipeline.Runner, error) {
	backend, err := c.newCache(ctx)
	if err != nil {
		return nil, err
	}
	var keyer cache.Keyer
	if c.Config.Cache.Prefix != "" {
		keyer = cache.NewScopedKeyer(nil, c.Config.Cache.Prefix)
	}
	return pipeline.NewRunner(backend, keyer, c.Logger), nil
}

// newCache opens the configured cache backend. A file cache whose directory
// cannot be determined falls back to no caching.
func (c *CLI) newCache(ctx context.Context) (cache.Cache, error) {
	if c.noCache {
		return cache.NewNullCache(), nil
	}
	switch c.Config.Cache.Backend {
	case backendNone:
		return cache.NewNullCache(), nil
	case backendRedis:
		return cache.NewRedisCache(ctx, c.Config.Cache.RedisAddr)
	case backendBadger:
		dir, err := c.cacheDir()
		if err != nil {
			return nil, err
		}
		return cache.NewBadgerCache(cache.BadgerConfig{Path: filepath.Join(dir, "badger")})
	case "", backendFile:
		dir, err := c.cacheDir()
		if err != nil {
			c.Logger.Warn("cache disabled", "error", err)
			return cache.NewNullCache(), nil
		}
		return cache.NewFileCache(dir)
	}
	return nil, sperrors.New(sperrors.ErrCodeInvalidConfig, "unknown cache backend %q", c.Config.Cache.Backend)
}

// loadNetwork reads a network file through the configured cache.
func (c *CLI) loadNetwork(ctx context.Context, path string) (*netxml.Network, error) {
	opts, err := c.baseOptions()
	if err != nil {
		return nil, err
	}
	runner, err := c.newRunner(ctx)
	if err != nil {
		return nil, err
	}
	defer runner.Close()

	net, hit, err := runner.LoadNetwork(ctx, path, opts)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("loaded network", "path", path, "cached", hit)
	return net, nil
}

// baseOptions returns pipeline options with config defaults applied.
func (c *CLI) baseOptions() (pipeline.Options, error) {
	ttl, err := c.Config.cacheTTL()
	if err != nil {
		return pipeline.Options{}, err
	}
	return pipeline.Options{
		MaxPhases: c.Config.Enumerate.MaxPhases,
		CacheTTL:  ttl,
		Logger:    c.Logger,
	}, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the configured cache directory or the XDG default
// (~/.cache/safephase/).
func (c *CLI) cacheDir() (string, error) {
	if c.Config != nil && c.Config.Cache.Dir != "" {
		return c.Config.Cache.Dir, nil
	}
	return cacheDir()
}

func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
