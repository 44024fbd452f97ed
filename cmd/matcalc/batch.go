package main

import (
	"fmt"

	"github.com/piwi3910/matcalc/internal/engine"
	"github.com/piwi3910/matcalc/internal/importer"
	"github.com/piwi3910/matcalc/internal/model"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var batchSave bool

var batchCmd = &cobra.Command{
	Use:   "batch <sheet.csv|sheet.xlsx>",
	Short: "Calculate every row of a CSV or Excel sheet",
	Long: `Read rod and plate rows from a CSV or Excel sheet and calculate them
in parallel. Columns are matched by header (label, kind, material, shape,
diameter, width, height, length, quantity, cutting_loss, thickness,
plate_width, plate_length); sheets without a header use that order.
Rows that fail are reported and do not stop the batch.`,
	Args: cobra.ExactArgs(1),
	RunE: withEnv(runBatch),
}

type batchLine struct {
	Label       string                   `json:"label"`
	MaterialKey string                   `json:"materialKey"`
	Result      *model.CalculationResult `json:"result,omitempty"`
	Error       string                   `json:"error,omitempty"`
}

func runBatch(cmd *cobra.Command, args []string, e *env) error {
	imported := importer.ImportFile(args[0])
	items, errs, warnings := importer.BuildBatchItems(imported.Rows, e.catalog, e.defaults)
	errs = append(imported.Errors, errs...)
	warnings = append(imported.Warnings, warnings...)

	stderr := cmd.ErrOrStderr()
	for _, w := range warnings {
		fmt.Fprintln(stderr, "warning:", w)
	}
	for _, msg := range errs {
		fmt.Fprintln(stderr, "error:", msg)
	}
	if len(items) == 0 {
		return fmt.Errorf("no calculable rows in %s", args[0])
	}

	outcomes, err := engine.CalculateBatch(cmd.Context(), items)
	if err != nil {
		return err
	}

	lines := make([]batchLine, len(outcomes))
	var total float64
	failed := 0
	for i, o := range outcomes {
		lines[i] = batchLine{Label: o.Label, MaterialKey: items[i].MaterialKey}
		if o.Err != nil {
			lines[i].Error = o.Err.Error()
			failed++
			continue
		}
		res := o.Result
		lines[i].Result = &res
		total += res.EffectiveCost()
	}

	if batchSave {
		if err := saveBatch(cmd, e, items, outcomes); err != nil {
			return err
		}
	}
	e.logger.Info("Batch calculated", zap.String("file", args[0]), zap.Int("rows", len(items)), zap.Int("failed", failed))

	if jsonOut {
		return printJSON(cmd.OutOrStdout(), lines)
	}
	tw := newTable(cmd.OutOrStdout())
	fmt.Fprintln(tw, "LABEL\tMATERIAL\tBARS\tWEIGHT (kg)\tCOST\tPER PIECE\t")
	for _, l := range lines {
		if l.Result == nil {
			fmt.Fprintf(tw, "%s\t%s\t-\t-\t-\t-\t%s\n", l.Label, l.MaterialKey, l.Error)
			continue
		}
		bars := "-"
		if !l.Result.IsPlate {
			bars = fmt.Sprint(l.Result.BarsNeeded)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.3f\t%s\t%s\t\n", l.Label, l.MaterialKey, bars,
			l.Result.StockWeightKg, money(l.Result.EffectiveCost()), money(l.Result.CostPerPiece))
	}
	fmt.Fprintf(tw, "TOTAL\t\t\t\t%s\t\t\n", money(total))
	return tw.Flush()
}

func saveBatch(cmd *cobra.Command, e *env, items []engine.BatchItem, outcomes []engine.BatchOutcome) error {
	history, err := e.history(cmd.Context())
	if err != nil {
		return err
	}
	for i, o := range outcomes {
		if o.Err != nil {
			continue
		}
		item := items[i]
		meta := model.OrderMeta{ProductName: item.Label}
		var rec model.OrderRecord
		if item.Rod != nil {
			rec = model.NewRodOrder(meta, item.MaterialKey, *item.Rod, o.Result)
		} else {
			rec = model.NewPlateOrder(meta, item.MaterialKey, *item.Plate, o.Result)
		}
		if _, err := history.Append(cmd.Context(), rec); err != nil {
			return fmt.Errorf("failed to save %s: %w", item.Label, err)
		}
	}
	return nil
}

func init() {
	batchCmd.Flags().BoolVar(&batchSave, "save", false, "save successful rows to order history")
	rootCmd.AddCommand(batchCmd)
}
