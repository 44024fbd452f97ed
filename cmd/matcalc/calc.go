package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/piwi3910/matcalc/internal/engine"
	"github.com/piwi3910/matcalc/internal/export"
	"github.com/piwi3910/matcalc/internal/importer"
	"github.com/piwi3910/matcalc/internal/model"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// rodFlags are the inputs shared by the rod and compare commands. Flags
// left unset fall back to the catalog and the user defaults.
type rodFlags struct {
	material     string
	shape        string
	diameter     float64
	width        float64
	height       float64
	length       float64
	quantity     int
	kerf         float64
	head         float64
	tail         float64
	barLength    float64
	price        float64
	actualWeight float64
	recovery     float64
	scrapPrice   float64
	dxf          string
}

func (f *rodFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVarP(&f.material, "material", "m", "steel", "material key from the catalog")
	fs.StringVar(&f.shape, "shape", "circle", "cross-section: circle, square, hexagon or rectangle")
	fs.Float64VarP(&f.diameter, "diameter", "d", 0, "diameter or side (mm); across corners for hexagon")
	fs.Float64Var(&f.width, "width", 0, "rectangle width (mm)")
	fs.Float64Var(&f.height, "height", 0, "rectangle height (mm)")
	fs.Float64VarP(&f.length, "length", "l", 0, "finished product length (mm)")
	fs.IntVarP(&f.quantity, "qty", "q", 0, "number of pieces")
	fs.Float64Var(&f.kerf, "kerf", 0, "cutting loss per piece (mm)")
	fs.Float64Var(&f.head, "head", 0, "head cut (mm)")
	fs.Float64Var(&f.tail, "tail", 0, "tail cut (mm)")
	fs.Float64Var(&f.barLength, "bar-length", 0, "standard bar length (mm)")
	fs.Float64Var(&f.price, "price", 0, "material price per kg")
	fs.Float64Var(&f.actualWeight, "actual-weight", 0, "measured weight per finished piece (g), enables scrap recovery")
	fs.Float64Var(&f.recovery, "recovery", 0, "scrap recovery ratio (%)")
	fs.Float64Var(&f.scrapPrice, "scrap-price", 0, "scrap price per kg")
	fs.StringVar(&f.dxf, "dxf", "", "read the cross-section from a DXF drawing")
}

func (f *rodFlags) form(cmd *cobra.Command) (model.RodForm, error) {
	form := model.RodForm{
		MaterialKey:   f.material,
		Shape:         f.shape,
		Diameter:      f.diameter,
		Width:         f.width,
		Height:        f.height,
		ProductLength: f.length,
		Quantity:      f.quantity,
		CuttingLoss:   f.kerf,
	}
	if f.dxf != "" {
		sec, err := importer.ImportSectionDXF(f.dxf)
		if err != nil {
			return form, err
		}
		form.Shape = string(sec.Shape)
		form.Diameter, form.Width, form.Height = sec.Diameter, sec.Width, sec.Height
	}

	changed := cmd.Flags().Changed
	optional := func(name string, v float64) *float64 {
		if changed(name) {
			return model.Float(v)
		}
		return nil
	}
	form.HeadCut = optional("head", f.head)
	form.TailCut = optional("tail", f.tail)
	form.StandardBarLength = optional("bar-length", f.barLength)
	form.MaterialPrice = optional("price", f.price)
	form.ActualProductWeight = optional("actual-weight", f.actualWeight)
	form.RecoveryRatio = optional("recovery", f.recovery)
	form.ScrapUnitPrice = optional("scrap-price", f.scrapPrice)
	return form, nil
}

// quoteFlags control what happens to a finished calculation.
type quoteFlags struct {
	save     bool
	plan     bool
	customer string
	product  string
	pdf      string
	tags     string
}

func (f *quoteFlags) register(cmd *cobra.Command, rod bool) {
	fs := cmd.Flags()
	fs.BoolVar(&f.save, "save", false, "save the calculation to order history")
	fs.StringVar(&f.customer, "customer", "", "customer name for the saved order")
	fs.StringVar(&f.product, "product", "", "product name for the saved order")
	fs.StringVar(&f.pdf, "pdf", "", "write a PDF quote to this path")
	if rod {
		fs.BoolVar(&f.plan, "plan", false, "print the bar-by-bar cut plan")
		fs.StringVar(&f.tags, "tags", "", "write QR bar tags (PDF) to this path")
	}
}

func (f *quoteFlags) meta() model.OrderMeta {
	return model.OrderMeta{Customer: f.customer, ProductName: f.product}
}

// lookupMaterial resolves key against the catalog. A miss falls back to the
// default material and returns a materialKey warning for the result.
func lookupMaterial(e *env, key string) (model.MaterialDefaults, *model.ValidationWarning) {
	mat, ok := e.catalog.Lookup(key)
	if ok {
		return mat, nil
	}
	e.logger.Warn("Unknown material, using default", zap.String("material", key), zap.String("fallback", mat.Key))
	return mat, &model.ValidationWarning{
		Kind:       model.WarningWarn,
		Field:      "materialKey",
		Message:    fmt.Sprintf("Material %q is not in the catalog; %s values were used", key, mat.Key),
		Suggestion: "Add the material with 'matcalc materials import' or pick an existing key",
	}
}

// withNote appends an optional warning to a result.
func withNote(res *model.CalculationResult, note *model.ValidationWarning) {
	if note == nil {
		return
	}
	res.Warnings = append(res.Warnings, *note)
	res.Suggestions = model.SuggestionsOf(res.Warnings)
}

var (
	rodOpts   rodFlags
	rodQuote  quoteFlags
	plateOpts struct {
		material  string
		thickness float64
		width     float64
		length    float64
		quantity  int
		price     float64
	}
	plateQuote quoteFlags
	scrapOpts  model.ScrapSpec
	unitCost   float64
	cmpOpts    rodFlags
)

var rodCmd = &cobra.Command{
	Use:   "rod",
	Short: "Calculate bars, weight and cost for turned parts",
	Example: `  matcalc rod -m steel -d 10 -l 100 -q 100 --kerf 2
  matcalc rod -m brass --shape hexagon -d 17 -l 42 -q 500 --kerf 2.5 --plan
  matcalc rod -m steel --dxf section.dxf -l 80 -q 200 --actual-weight 38 --save`,
	Args: cobra.NoArgs,
	RunE: withEnv(runRod),
}

func runRod(cmd *cobra.Command, _ []string, e *env) error {
	form, err := rodOpts.form(cmd)
	if err != nil {
		return err
	}
	form.Order = rodQuote.meta()
	mat, note := lookupMaterial(e, form.MaterialKey)

	spec, err := model.BuildRodSpec(form, mat, e.defaults)
	if err != nil {
		return err
	}
	res, err := engine.CalculateRod(spec)
	if err != nil {
		return err
	}
	withNote(&res, note)
	plan, err := engine.PlanCuts(spec)
	if err != nil {
		return err
	}

	q := export.Quote{Meta: form.Order, Material: mat, Rod: &spec, Result: res, Plan: &plan}
	if err := finishQuote(cmd, e, &q, rodQuote, model.NewRodOrder(form.Order, mat.Key, spec, res)); err != nil {
		return err
	}
	if rodQuote.tags != "" {
		if err := export.ExportBarTags(rodQuote.tags, q.OrderID, mat.Name, plan); err != nil {
			return fmt.Errorf("failed to write bar tags: %w", err)
		}
		e.logger.Info("Bar tags written", zap.String("path", rodQuote.tags), zap.Int("bars", len(plan.Bars)))
	}

	out := cmd.OutOrStdout()
	if jsonOut {
		return printJSON(out, struct {
			Spec    model.RodSpec           `json:"spec"`
			Result  model.CalculationResult `json:"result"`
			CutPlan model.CutPlan           `json:"cutPlan"`
			OrderID string                  `json:"orderId,omitempty"`
		}{spec, res, plan, q.OrderID})
	}
	if err := printResult(out, res); err != nil {
		return err
	}
	if rodQuote.plan {
		fmt.Fprintln(out)
		return printPlan(out, plan)
	}
	return nil
}

var plateCmd = &cobra.Command{
	Use:     "plate",
	Short:   "Calculate weight and cost for plate stock",
	Example: `  matcalc plate -m aluminum -t 10 --width 200 --length 300 -q 4`,
	Args:    cobra.NoArgs,
	RunE:    withEnv(runPlate),
}

func runPlate(cmd *cobra.Command, _ []string, e *env) error {
	form := model.PlateForm{
		MaterialKey: plateOpts.material,
		Thickness:   plateOpts.thickness,
		Width:       plateOpts.width,
		Length:      plateOpts.length,
		Quantity:    plateOpts.quantity,
		Order:       plateQuote.meta(),
	}
	if cmd.Flags().Changed("price") {
		form.PlateUnitPrice = model.Float(plateOpts.price)
	}
	mat, note := lookupMaterial(e, form.MaterialKey)

	spec := model.BuildPlateSpec(form, mat, e.defaults)
	res, err := engine.CalculatePlate(spec)
	if err != nil {
		return err
	}
	withNote(&res, note)

	q := export.Quote{Meta: form.Order, Material: mat, Plate: &spec, Result: res}
	if err := finishQuote(cmd, e, &q, plateQuote, model.NewPlateOrder(form.Order, mat.Key, spec, res)); err != nil {
		return err
	}

	if jsonOut {
		return printJSON(cmd.OutOrStdout(), struct {
			Spec    model.PlateSpec         `json:"spec"`
			Result  model.CalculationResult `json:"result"`
			OrderID string                  `json:"orderId,omitempty"`
		}{spec, res, q.OrderID})
	}
	return printResult(cmd.OutOrStdout(), res)
}

// finishQuote saves the order and writes the PDF quote when asked to.
func finishQuote(cmd *cobra.Command, e *env, q *export.Quote, opts quoteFlags, rec model.OrderRecord) error {
	if opts.save {
		history, err := e.history(cmd.Context())
		if err != nil {
			return err
		}
		saved, err := history.Append(cmd.Context(), rec)
		if err != nil {
			return fmt.Errorf("failed to save order: %w", err)
		}
		q.OrderID = saved.ID
		q.Created = saved.Timestamp
		e.logger.Info("Order saved", zap.String("id", saved.ID))
	}
	if opts.pdf != "" {
		if err := export.ExportQuotePDF(opts.pdf, *q); err != nil {
			return fmt.Errorf("failed to write quote: %w", err)
		}
		e.logger.Info("Quote written", zap.String("path", opts.pdf))
	}
	return nil
}

var scrapCmd = &cobra.Command{
	Use:   "scrap",
	Short: "Recompute scrap savings for an existing rod result",
	Long: `Recompute scrap weight, savings and real cost from a previous rod
result's stock weight and cost, without rerunning the rod calculation.
The cost may be given as a total or as a unit cost per piece.`,
	Example: `  matcalc scrap --stock-weight 7.707 --total-cost 53946.72 -q 100 --actual-weight 55 --recovery 90 --scrap-price 5600`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		spec := scrapOpts
		if !cmd.Flags().Changed("total-cost") && cmd.Flags().Changed("unit-cost") {
			spec.TotalCost = unitCost * float64(spec.Quantity)
		}
		res, err := engine.CalculateScrap(spec)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if jsonOut {
			return printJSON(out, res)
		}
		tw := newTable(out)
		fmt.Fprintf(tw, "Scrap weight\t%.3f kg\n", res.ScrapWeight)
		fmt.Fprintf(tw, "Scrap savings\t%s\n", money(res.ScrapSavings))
		fmt.Fprintf(tw, "Real cost\t%s\n", money(res.RealCost))
		fmt.Fprintf(tw, "Unit cost\t%s\n", money(res.UnitCost))
		fmt.Fprintf(tw, "Scrap ratio\t%.3f %%\n", res.ScrapRatio)
		fmt.Fprintf(tw, "Cost savings\t%.2f %%\n", res.CostSavingsRatio)
		if err := tw.Flush(); err != nil {
			return err
		}
		printWarnings(out, res.Warnings)
		return nil
	},
}

var compareCmd = &cobra.Command{
	Use:     "compare",
	Short:   "Compare what-if variants of a rod calculation",
	Example: `  matcalc compare -m steel -d 10 -l 100 -q 100 --kerf 2`,
	Args:    cobra.NoArgs,
	RunE: withEnv(func(cmd *cobra.Command, _ []string, e *env) error {
		form, err := cmpOpts.form(cmd)
		if err != nil {
			return err
		}
		mat, note := lookupMaterial(e, form.MaterialKey)
		spec, err := model.BuildRodSpec(form, mat, e.defaults)
		if err != nil {
			return err
		}
		results := engine.CompareScenarios(engine.BuildDefaultScenarios(spec))
		for i := range results {
			if results[i].Feasible() {
				withNote(&results[i].Result, note)
			}
		}
		if jsonOut {
			type scenario struct {
				Name   string                   `json:"name"`
				Result *model.CalculationResult `json:"result,omitempty"`
				Error  string                   `json:"error,omitempty"`
				Best   bool                     `json:"best,omitempty"`
			}
			best := engine.BestScenario(results)
			out := make([]scenario, len(results))
			for i, r := range results {
				out[i] = scenario{Name: r.Scenario.Name, Best: i == best}
				if r.Feasible() {
					res := r.Result
					out[i].Result = &res
				} else {
					out[i].Error = r.Err.Error()
				}
			}
			return printJSON(cmd.OutOrStdout(), out)
		}
		return printComparison(cmd.OutOrStdout(), results)
	}),
}

var validateCmd = &cobra.Command{
	Use:   "validate <spec.json|->",
	Short: "Check a rod or plate spec without failing on the first problem",
	Long: `Read a rod or plate spec as JSON and report every error, warning and
hint at once. A spec with any plate dimension is checked as a plate.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := readInput(cmd, args[0])
		if err != nil {
			return err
		}
		summary, err := validateSpec(data)
		if err != nil {
			return err
		}
		if jsonOut {
			return printJSON(cmd.OutOrStdout(), summary)
		}
		printSummary(cmd.OutOrStdout(), summary)
		if !summary.Valid {
			return fmt.Errorf("spec has %d error(s)", len(summary.Errors))
		}
		return nil
	},
}

func validateSpec(data []byte) (model.ValidationSummary, error) {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return model.ValidationSummary{}, fmt.Errorf("failed to parse spec: %w", err)
	}
	for _, k := range []string{"plateThickness", "plateWidth", "plateLength"} {
		if _, ok := keys[k]; ok {
			var spec model.PlateSpec
			if err := json.Unmarshal(data, &spec); err != nil {
				return model.ValidationSummary{}, fmt.Errorf("failed to parse plate spec: %w", err)
			}
			return engine.ValidatePlateSpec(spec), nil
		}
	}
	var spec model.RodSpec
	if err := json.Unmarshal(data, &spec); err != nil {
		return model.ValidationSummary{}, fmt.Errorf("failed to parse rod spec: %w", err)
	}
	return engine.ValidateRodSpec(spec), nil
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}

var sectionCmd = &cobra.Command{
	Use:   "section <drawing.dxf>",
	Short: "Detect a bar cross-section from a DXF drawing",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sec, err := importer.ImportSectionDXF(args[0])
		if err != nil {
			return err
		}
		if jsonOut {
			return printJSON(cmd.OutOrStdout(), sec)
		}
		if sec.Shape.UsesWidthHeight() {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %.3f x %.3f mm\n", sec.Shape, sec.Width, sec.Height)
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %.3f mm\n", sec.Shape, sec.Diameter)
		return nil
	},
}

func init() {
	rodOpts.register(rodCmd)
	rodQuote.register(rodCmd, true)

	pf := plateCmd.Flags()
	pf.StringVarP(&plateOpts.material, "material", "m", "steel", "material key from the catalog")
	pf.Float64VarP(&plateOpts.thickness, "thickness", "t", 0, "plate thickness (mm)")
	pf.Float64Var(&plateOpts.width, "width", 0, "plate width (mm)")
	pf.Float64Var(&plateOpts.length, "length", 0, "plate length (mm)")
	pf.IntVarP(&plateOpts.quantity, "qty", "q", 0, "number of plates")
	pf.Float64Var(&plateOpts.price, "price", 0, "plate price per kg")
	plateQuote.register(plateCmd, false)

	sf := scrapCmd.Flags()
	sf.Float64Var(&scrapOpts.TotalWeight, "stock-weight", 0, "stock weight of the rod result (kg)")
	sf.Float64Var(&scrapOpts.TotalCost, "total-cost", 0, "material cost of the rod result")
	sf.Float64Var(&unitCost, "unit-cost", 0, "cost per piece, used when --total-cost is not set")
	sf.IntVarP(&scrapOpts.Quantity, "qty", "q", 0, "number of pieces")
	sf.Float64Var(&scrapOpts.ActualProductWeight, "actual-weight", 0, "measured weight per finished piece (g)")
	sf.Float64Var(&scrapOpts.RecoveryRatio, "recovery", 100, "scrap recovery ratio (%)")
	sf.Float64Var(&scrapOpts.ScrapUnitPrice, "scrap-price", 0, "scrap price per kg")

	cmpOpts.register(compareCmd)

	rootCmd.AddCommand(rodCmd, plateCmd, scrapCmd, compareCmd, validateCmd, sectionCmd)
}
