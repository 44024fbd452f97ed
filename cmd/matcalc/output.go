package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/piwi3910/matcalc/internal/engine"
	"github.com/piwi3910/matcalc/internal/model"
	"github.com/shopspring/decimal"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func money(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

func printResult(w io.Writer, res model.CalculationResult) error {
	tw := newTable(w)
	if !res.IsPlate {
		fmt.Fprintf(tw, "Bars needed\t%d\n", res.BarsNeeded)
		fmt.Fprintf(tw, "Pieces per bar\t%d\n", res.PiecesPerBar)
		fmt.Fprintf(tw, "Usable bar length\t%.1f mm\n", res.UsableBarLength)
	}
	fmt.Fprintf(tw, "Quantity\t%d\n", res.Quantity)
	fmt.Fprintf(tw, "Stock weight\t%.3f kg\n", res.StockWeightKg)
	fmt.Fprintf(tw, "Product weight\t%.3f kg\n", res.ProductWeightKg)
	fmt.Fprintf(tw, "Material cost\t%s\n", money(res.MaterialCost))
	fmt.Fprintf(tw, "Cost per piece\t%s\n", money(res.CostPerPiece))
	fmt.Fprintf(tw, "Utilization\t%.2f %%\n", res.UtilizationRate)
	fmt.Fprintf(tw, "Wastage\t%.2f %%\n", res.Wastage)
	if res.ScrapActive() {
		fmt.Fprintf(tw, "Scrap weight\t%.3f kg\n", *res.ScrapWeightKg)
		fmt.Fprintf(tw, "Scrap savings\t%s\n", money(*res.ScrapSavings))
		fmt.Fprintf(tw, "Real cost\t%s\n", money(*res.RealCost))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	printWarnings(w, res.Warnings)
	for _, s := range res.Suggestions {
		fmt.Fprintf(w, "  hint: %s\n", s)
	}
	return nil
}

func printWarnings(w io.Writer, warnings []model.ValidationWarning) {
	for _, warn := range warnings {
		line := fmt.Sprintf("  [%s] %s", warn.Kind, warn.Message)
		if warn.Field != "" {
			line = fmt.Sprintf("  [%s] %s: %s", warn.Kind, warn.Field, warn.Message)
		}
		if warn.Suggestion != "" {
			line += " (" + warn.Suggestion + ")"
		}
		fmt.Fprintln(w, line)
	}
}

func printPlan(w io.Writer, plan model.CutPlan) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "BAR\tPIECES\tUSED (mm)\tREMNANT (mm)\t")
	for _, b := range plan.Bars {
		keep := ""
		if b.Reusable {
			keep = "keep"
		}
		fmt.Fprintf(tw, "%d\t%d\t%.1f\t%.1f\t%s\n", b.Index, b.Pieces, b.UsedLength, b.Remnant, keep)
	}
	return tw.Flush()
}

func printComparison(w io.Writer, results []engine.ComparisonResult) error {
	best := engine.BestScenario(results)
	tw := newTable(w)
	fmt.Fprintln(tw, "\tSCENARIO\tBARS\tCOST\tUTILIZATION\t")
	for i, r := range results {
		mark := ""
		if i == best {
			mark = "*"
		}
		if !r.Feasible() {
			fmt.Fprintf(tw, "%s\t%s\t-\t-\t-\t%v\n", mark, r.Scenario.Name, r.Err)
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%.2f %%\t\n", mark, r.Scenario.Name,
			r.Result.BarsNeeded, money(r.Result.EffectiveCost()), r.Result.UtilizationRate)
	}
	return tw.Flush()
}

func printSummary(w io.Writer, s model.ValidationSummary) {
	if s.Valid {
		fmt.Fprintln(w, "valid")
	} else {
		fmt.Fprintln(w, "invalid")
	}
	for _, e := range s.Errors {
		fmt.Fprintf(w, "  error: %s\n", e)
	}
	for _, warn := range s.Warnings {
		fmt.Fprintf(w, "  warning: %s\n", warn)
	}
	for _, hint := range s.Suggestions {
		fmt.Fprintf(w, "  hint: %s\n", hint)
	}
}
