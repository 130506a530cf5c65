package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/safephase/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the enumeration result cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached results",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := c.cacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}

			switch c.Config.Cache.Backend {
			case backendBadger:
				db, err := cache.NewBadgerCache(cache.BadgerConfig{Path: filepath.Join(dir, "badger")})
				if err != nil {
					return err
				}
				defer db.Close()
				if err := db.Clear(); err != nil {
					return err
				}
				printSuccess("Cleared badger cache")
			case backendRedis:
				printWarning("Redis entries expire on their own; clear them on the server if needed")
				return nil
			case backendNone:
				printInfo("Caching is disabled")
				return nil
			default:
				fc, err := cache.NewFileCache(dir)
				if err != nil {
					return err
				}
				n, err := fc.Clear()
				if err != nil {
					return err
				}
				printSuccess("Cleared %d cached entries", n)
			}
			printDetail("Directory: %s", dir)
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := c.cacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			fmt.Fprintln(stdout, dir)
			return nil
		},
	}
}
