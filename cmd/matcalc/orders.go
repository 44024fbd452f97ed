package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/piwi3910/matcalc/internal/engine"
	"github.com/piwi3910/matcalc/internal/export"
	"github.com/piwi3910/matcalc/internal/project"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var ordersCmd = &cobra.Command{
	Use:   "orders",
	Short: "Browse and export saved calculations",
}

var ordersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved orders, newest first",
	Args:  cobra.NoArgs,
	RunE: withEnv(func(cmd *cobra.Command, _ []string, e *env) error {
		history, err := e.history(cmd.Context())
		if err != nil {
			return err
		}
		orders, err := history.List(cmd.Context())
		if err != nil {
			return err
		}
		if jsonOut {
			return printJSON(cmd.OutOrStdout(), orders)
		}
		tw := newTable(cmd.OutOrStdout())
		fmt.Fprintln(tw, "ID\tDATE\tCUSTOMER\tPRODUCT\tMATERIAL\tFORM\tQTY\tCOST")
		for _, o := range orders {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%d\t%s\n", o.ID, o.Timestamp.Local().Format("2006-01-02 15:04"),
				o.Customer, o.ProductName, o.MaterialKey, o.Form, o.Quantity, money(o.Result().EffectiveCost()))
		}
		return tw.Flush()
	}),
}

var ordersShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one saved order",
	Args:  cobra.ExactArgs(1),
	RunE: withEnv(func(cmd *cobra.Command, args []string, e *env) error {
		history, err := e.history(cmd.Context())
		if err != nil {
			return err
		}
		rec, err := history.Get(cmd.Context(), args[0])
		if err != nil {
			return orderErr(args[0], err)
		}
		if jsonOut {
			return printJSON(cmd.OutOrStdout(), rec)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %s %s\n\n", rec.ID, rec.Timestamp.Local().Format("2006-01-02 15:04"), rec.MaterialKey, rec.Form)
		return printResult(cmd.OutOrStdout(), rec.Result())
	}),
}

var ordersDeleteCmd = &cobra.Command{
	Use:   "delete <id>...",
	Short: "Delete saved orders",
	Args:  cobra.MinimumNArgs(1),
	RunE: withEnv(func(cmd *cobra.Command, args []string, e *env) error {
		history, err := e.history(cmd.Context())
		if err != nil {
			return err
		}
		for _, id := range args {
			if err := history.Delete(cmd.Context(), id); err != nil {
				return orderErr(id, err)
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d order(s) deleted\n", len(args))
		return nil
	}),
}

var ordersClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every saved order",
	Args:  cobra.NoArgs,
	RunE: withEnv(func(cmd *cobra.Command, _ []string, e *env) error {
		history, err := e.history(cmd.Context())
		if err != nil {
			return err
		}
		n, err := history.Clear(cmd.Context())
		if err != nil {
			return err
		}
		e.logger.Info("Order history cleared", zap.Int("deleted", n))
		fmt.Fprintf(cmd.OutOrStdout(), "%d order(s) deleted\n", n)
		return nil
	}),
}

var ordersExportCmd = &cobra.Command{
	Use:   "export <orders.json|orders.xlsx>",
	Short: "Export the order history as JSON or an Excel workbook",
	Args:  cobra.ExactArgs(1),
	RunE: withEnv(func(cmd *cobra.Command, args []string, e *env) error {
		history, err := e.history(cmd.Context())
		if err != nil {
			return err
		}
		path := args[0]
		switch strings.ToLower(filepath.Ext(path)) {
		case ".xlsx":
			orders, err := history.List(cmd.Context())
			if err != nil {
				return err
			}
			if err := export.ExportOrdersXLSX(path, orders); err != nil {
				return fmt.Errorf("failed to write workbook: %w", err)
			}
		case ".json":
			if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
				return err
			}
			f, err := os.Create(path)
			if err != nil {
				return err
			}
			if err := history.ExportJSON(cmd.Context(), f); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unsupported export format %q (use .json or .xlsx)", filepath.Ext(path))
		}
		e.logger.Info("Orders exported", zap.String("path", path))
		return nil
	}),
}

var ordersQuoteCmd = &cobra.Command{
	Use:   "quote <id> <quote.pdf>",
	Short: "Render the PDF quote of a saved order",
	Args:  cobra.ExactArgs(2),
	RunE: withEnv(func(cmd *cobra.Command, args []string, e *env) error {
		history, err := e.history(cmd.Context())
		if err != nil {
			return err
		}
		rec, err := history.Get(cmd.Context(), args[0])
		if err != nil {
			return orderErr(args[0], err)
		}

		mat, _ := e.catalog.Lookup(rec.MaterialKey)
		q := export.Quote{OrderID: rec.ID, Meta: rec.OrderMeta, Material: mat, Result: rec.Result(), Created: rec.Timestamp}
		if rec.IsPlate {
			spec := rec.PlateSpec()
			q.Plate = &spec
		} else {
			spec := rec.RodSpec()
			q.Rod = &spec
			if plan, err := engine.PlanCuts(spec); err == nil {
				q.Plan = &plan
			}
		}
		return export.ExportQuotePDF(args[1], q)
	}),
}

var ordersTagsCmd = &cobra.Command{
	Use:   "tags <id> <tags.pdf>",
	Short: "Render QR bar tags for a saved rod order",
	Args:  cobra.ExactArgs(2),
	RunE: withEnv(func(cmd *cobra.Command, args []string, e *env) error {
		history, err := e.history(cmd.Context())
		if err != nil {
			return err
		}
		rec, err := history.Get(cmd.Context(), args[0])
		if err != nil {
			return orderErr(args[0], err)
		}
		if rec.IsPlate {
			return fmt.Errorf("order %s is a plate order; bar tags need a rod order", rec.ID)
		}
		plan, err := engine.PlanCuts(rec.RodSpec())
		if err != nil {
			return err
		}
		mat, _ := e.catalog.Lookup(rec.MaterialKey)
		return export.ExportBarTags(args[1], rec.ID, mat.Name, plan)
	}),
}

func orderErr(id string, err error) error {
	if errors.Is(err, project.ErrNotFound) {
		return fmt.Errorf("order %s not found", id)
	}
	return err
}

func init() {
	ordersCmd.AddCommand(ordersListCmd, ordersShowCmd, ordersDeleteCmd, ordersClearCmd,
		ordersExportCmd, ordersQuoteCmd, ordersTagsCmd)
	rootCmd.AddCommand(ordersCmd)
}
