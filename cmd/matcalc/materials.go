package main

import (
	"fmt"

	"github.com/piwi3910/matcalc/internal/importer"
	"github.com/piwi3910/matcalc/internal/project"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var materialsCmd = &cobra.Command{
	Use:     "materials",
	Aliases: []string{"mat"},
	Short:   "Manage the material catalog",
}

var materialsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalog materials",
	Args:  cobra.NoArgs,
	RunE: withEnv(func(cmd *cobra.Command, _ []string, e *env) error {
		if jsonOut {
			return printJSON(cmd.OutOrStdout(), e.catalog)
		}
		tw := newTable(cmd.OutOrStdout())
		fmt.Fprintln(tw, "KEY\tNAME\tBAR (mm)\tDENSITY (g/cm³)\tBAR /kg\tPLATE /kg\tSCRAP /kg")
		for _, m := range e.catalog.Materials {
			fmt.Fprintf(tw, "%s\t%s\t%.0f\t%.2f\t%s\t%s\t%s\n", m.Key, m.Name, m.StandardBarLength,
				m.Density, money(m.BarUnitPrice), money(m.PlateUnitPrice), money(m.ScrapUnitPrice))
		}
		return tw.Flush()
	}),
}

var materialsImportCmd = &cobra.Command{
	Use:   "import <catalog.yaml|catalog.json>",
	Short: "Add materials from a file; existing keys are kept",
	Args:  cobra.ExactArgs(1),
	RunE: withEnv(func(cmd *cobra.Command, args []string, e *env) error {
		imported, err := importer.LoadCatalogFile(args[0])
		if err != nil {
			return err
		}
		_, added, err := project.ImportCatalog(e.cfg.CatalogPath, e.catalog, imported)
		if err != nil {
			return fmt.Errorf("failed to save catalog: %w", err)
		}
		e.logger.Info("Catalog imported", zap.String("file", args[0]), zap.Int("added", added))
		fmt.Fprintf(cmd.OutOrStdout(), "%d material(s) added, %d skipped\n", added, len(imported.Materials)-added)
		return nil
	}),
}

var materialsExportCmd = &cobra.Command{
	Use:   "export <catalog.yaml|catalog.json>",
	Short: "Write the catalog to a file",
	Args:  cobra.ExactArgs(1),
	RunE: withEnv(func(cmd *cobra.Command, args []string, e *env) error {
		if err := importer.WriteCatalogFile(args[0], e.catalog); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d material(s) written to %s\n", len(e.catalog.Materials), args[0])
		return nil
	}),
}

func init() {
	materialsCmd.AddCommand(materialsListCmd, materialsImportCmd, materialsExportCmd)
	rootCmd.AddCommand(materialsCmd)
}
