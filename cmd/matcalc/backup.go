package main

import (
	"errors"
	"fmt"

	"github.com/piwi3910/matcalc/internal/project"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Export or restore defaults, catalog and order history",
}

var backupExportCmd = &cobra.Command{
	Use:   "export <backup.json>",
	Short: "Write everything to one JSON file",
	Args:  cobra.ExactArgs(1),
	RunE: withEnv(func(cmd *cobra.Command, args []string, e *env) error {
		history, err := e.history(cmd.Context())
		if err != nil {
			return err
		}
		orders, err := history.List(cmd.Context())
		if err != nil {
			return err
		}
		if err := project.ExportAllData(args[0], e.defaults, e.catalog, orders); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d material(s), %d order(s) written to %s\n", len(e.catalog.Materials), len(orders), args[0])
		return nil
	}),
}

var backupImportCmd = &cobra.Command{
	Use:   "import <backup.json>",
	Short: "Restore a backup; orders already present are kept",
	Args:  cobra.ExactArgs(1),
	RunE: withEnv(func(cmd *cobra.Command, args []string, e *env) error {
		backup, err := project.ImportAllData(args[0])
		if err != nil {
			return err
		}
		if err := project.SaveDefaults(e.defaultsPath, backup.Defaults); err != nil {
			return fmt.Errorf("failed to save defaults: %w", err)
		}
		if err := project.SaveCatalog(e.cfg.CatalogPath, backup.Catalog); err != nil {
			return fmt.Errorf("failed to save catalog: %w", err)
		}

		history, err := e.history(cmd.Context())
		if err != nil {
			return err
		}
		restored := 0
		for _, rec := range backup.Orders {
			if _, err := history.Append(cmd.Context(), rec); err != nil {
				if errors.Is(err, project.ErrOrderExists) {
					continue
				}
				return err
			}
			restored++
		}
		e.logger.Info("Backup restored", zap.String("file", args[0]), zap.String("version", backup.Version), zap.Int("orders", restored))
		fmt.Fprintf(cmd.OutOrStdout(), "%d material(s), %d of %d order(s) restored\n",
			len(backup.Catalog.Materials), restored, len(backup.Orders))
		return nil
	}),
}

func init() {
	backupCmd.AddCommand(backupExportCmd, backupImportCmd)
	rootCmd.AddCommand(backupCmd)
}
