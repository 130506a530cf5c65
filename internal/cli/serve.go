package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/safephase/internal/server"
	"github.com/matzehuels/safephase/pkg/catalog"
	"github.com/matzehuels/safephase/pkg/observability"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string
	var maxPhases int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the enumeration HTTP API",
		Long: `Serve safe-phase enumeration over HTTP. Results are cached with the
configured cache backend and recorded in the catalog (MongoDB when
catalog.mongo_uri is set, in memory otherwise). Prometheus metrics are
exposed on /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			if addr == "" {
				addr = c.Config.Server.Addr
			}
			if maxPhases == 0 {
				maxPhases = c.Config.Enumerate.MaxPhases
			}
			timeout, err := c.Config.serverTimeout()
			if err != nil {
				return err
			}

			metrics := observability.NewPrometheus(nil)
			observability.Install(metrics)
			defer observability.Reset()

			runner, err := c.newRunner(ctx)
			if err != nil {
				return err
			}
			defer runner.Close()

			var store catalog.Store = catalog.NewMemoryStore()
			if uri := c.Config.Catalog.MongoURI; uri != "" {
				mongoStore, err := catalog.NewMongoStore(ctx, uri, c.Config.Catalog.Database)
				if err != nil {
					return err
				}
				store = mongoStore
				logger.Info("catalog connected", "database", c.Config.Catalog.Database)
			}
			defer store.Close(context.WithoutCancel(ctx))

			srv := server.New(server.Config{
				Runner:    runner,
				Catalog:   store,
				Logger:    logger,
				Metrics:   metrics.Handler(),
				MaxPhases: maxPhases,
				Timeout:   timeout,
			})
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().IntVar(&maxPhases, "max-phases", 0, "per-request phase limit (0 = config default, or 100000 if unset)")

	return cmd
}
