package main

import (
	"github.com/piwi3910/matcalc/internal/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Serve the calculators, the material catalog and the order history
under /api/v1. Stops gracefully on SIGINT or SIGTERM.`,
	Args: cobra.NoArgs,
	RunE: withEnv(func(cmd *cobra.Command, _ []string, e *env) error {
		if cmd.Flags().Changed("port") {
			e.cfg.Server.Port = servePort
		}

		history, err := e.history(cmd.Context())
		if err != nil {
			e.logger.Error("Failed to open store", zap.String("driver", e.cfg.Store.Driver), zap.Error(err))
			return err
		}

		e.logger.Info("Starting matcalc",
			zap.String("version", Version),
			zap.String("build_time", BuildTime),
			zap.String("store", e.cfg.Store.Driver),
			zap.Int("materials", len(e.catalog.Materials)),
		)

		srv := server.New(e.logger, server.Options{
			Version:      Version,
			Mode:         e.cfg.Server.Mode,
			Catalog:      e.catalog,
			CatalogPath:  e.cfg.CatalogPath,
			Defaults:     e.defaults,
			DefaultsPath: e.defaultsPath,
			History:      history,
			RateLimit:    e.cfg.RateLimit,
		})
		return srv.Run(cmd.Context(), e.cfg.Server)
	}),
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "listen port (overrides server.port)")
	rootCmd.AddCommand(serveCmd)
}
