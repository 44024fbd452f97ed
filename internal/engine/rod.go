package engine

import (
	"math"

	"github.com/piwi3910/matcalc/internal/model"
)

// rodLayout is the cutting geometry shared by the calculator and the cut planner.
type rodLayout struct {
	area         float64 // mm²
	unitLength   float64 // mm
	usableLength float64 // mm
	piecesPerBar int
	barsNeeded   int
}

// CalculateRod computes bars needed, weight, cost and utilization for bar
// stock. Structurally invalid input fails with InvalidInput, UnknownShape or
// InfeasibleCut; plausibility findings ride along in Warnings.
func CalculateRod(spec model.RodSpec) (model.CalculationResult, error) {
	layout, err := layoutRod(spec)
	if err != nil {
		return model.CalculationResult{}, err
	}

	qty := float64(spec.Quantity)
	utilization := qty * layout.unitLength / (float64(layout.barsNeeded) * layout.usableLength) * 100

	stockVolume := layout.area * float64(layout.barsNeeded) * spec.StandardBarLength
	stockWeight := model.MassKg(stockVolume, spec.MaterialDensity)
	productWeight := model.MassKg(layout.area*spec.ProductLength, spec.MaterialDensity) * qty
	cost := stockWeight * spec.MaterialPrice

	res := model.CalculationResult{
		Form:              model.FormRod,
		BarsNeeded:        layout.barsNeeded,
		PiecesPerBar:      layout.piecesPerBar,
		UnitLength:        layout.unitLength,
		UsableBarLength:   layout.usableLength,
		StandardBarLength: spec.StandardBarLength,
		CrossSectionArea:  layout.area,
		Quantity:          spec.Quantity,
		StockWeightKg:     stockWeight,
		ProductWeightKg:   productWeight,
		MaterialCost:      cost,
		CostPerPiece:      cost / qty,
		UtilizationRate:   utilization,
		Wastage:           100 - utilization,
	}

	if spec.ScrapActive() {
		adj := ApplyScrap(stockWeight, cost, spec.Quantity,
			*spec.ActualProductWeight, *spec.RecoveryRatio, *spec.ScrapUnitPrice)
		res.ActualProductWeightKg = model.Float(adj.ActualProductWeightKg)
		res.ScrapWeightKg = model.Float(adj.ScrapWeightKg)
		res.ScrapSavings = model.Float(adj.ScrapSavings)
		res.RealCost = model.Float(adj.RealCost)
	}

	res.Warnings = append(ValidateRod(spec), CheckRodResult(spec, res)...)
	res.Suggestions = model.SuggestionsOf(res.Warnings)
	return res, nil
}

// layoutRod validates the structural inputs and derives the cutting layout.
func layoutRod(spec model.RodSpec) (rodLayout, error) {
	if !spec.Shape.Valid() {
		return rodLayout{}, model.UnknownShape(string(spec.Shape))
	}
	area, err := CrossSectionalArea(spec.Shape, spec.Diameter, spec.Width, spec.Height)
	if err != nil {
		return rodLayout{}, err
	}
	if err := checkRodInput(spec); err != nil {
		return rodLayout{}, err
	}

	unitLength := spec.ProductLength + spec.CuttingLoss
	usable := spec.StandardBarLength - spec.HeadCut - spec.TailCut
	if usable <= 0 {
		return rodLayout{}, model.InfeasibleCut("standardBarLength",
			"usable bar length is %.1f mm after head cut %.1f mm and tail cut %.1f mm",
			usable, spec.HeadCut, spec.TailCut)
	}
	if unitLength <= 0 {
		return rodLayout{}, model.InfeasibleCut("productLength", "unit length must be greater than zero")
	}

	piecesPerBar := int(math.Floor(usable / unitLength))
	if piecesPerBar <= 0 {
		return rodLayout{}, model.InfeasibleCut("productLength",
			"unit length %.1f mm does not fit in usable bar length %.1f mm", unitLength, usable)
	}

	return rodLayout{
		area:         area,
		unitLength:   unitLength,
		usableLength: usable,
		piecesPerBar: piecesPerBar,
		barsNeeded:   ceilDiv(spec.Quantity, piecesPerBar),
	}, nil
}

// ceilDiv divides rounding up without forming q+p-1, which overflows near
// math.MaxInt.
func ceilDiv(q, p int) int {
	n := q / p
	if q%p != 0 {
		n++
	}
	return n
}

func checkRodInput(spec model.RodSpec) error {
	err := checkFinite(
		numField{"diameter", spec.Diameter},
		numField{"width", spec.Width},
		numField{"height", spec.Height},
		numField{"productLength", spec.ProductLength},
		numField{"cuttingLoss", spec.CuttingLoss},
		numField{"headCut", spec.HeadCut},
		numField{"tailCut", spec.TailCut},
		numField{"standardBarLength", spec.StandardBarLength},
		numField{"materialDensity", spec.MaterialDensity},
		numField{"materialPrice", spec.MaterialPrice},
	)
	if err != nil {
		return err
	}
	if err := checkQuantity(spec.Quantity); err != nil {
		return err
	}

	switch {
	case spec.ProductLength <= 0:
		return model.InvalidInput("productLength", "product length must be greater than zero")
	case spec.CuttingLoss < 0:
		return model.InvalidInput("cuttingLoss", "cutting loss cannot be negative")
	case spec.HeadCut < 0:
		return model.InvalidInput("headCut", "head cut cannot be negative")
	case spec.TailCut < 0:
		return model.InvalidInput("tailCut", "tail cut cannot be negative")
	case spec.StandardBarLength <= 0:
		return model.InvalidInput("standardBarLength", "standard bar length must be greater than zero")
	case spec.MaterialDensity <= 0:
		return model.InvalidInput("materialDensity", "material density must be greater than zero (kg/m³)")
	case spec.MaterialPrice <= 0:
		return model.InvalidInput("materialPrice", "material price must be greater than zero")
	}
	for _, f := range scrapFields(spec) {
		if f.value == nil {
			continue
		}
		if err := checkFinite(numField{f.name, *f.value}); err != nil {
			return err
		}
		if *f.value < 0 {
			return model.InvalidInput(f.name, "%s cannot be negative", f.name)
		}
	}
	return nil
}

type optionalField struct {
	name  string
	value *float64
}

func scrapFields(spec model.RodSpec) []optionalField {
	return []optionalField{
		{"actualProductWeight", spec.ActualProductWeight},
		{"recoveryRatio", spec.RecoveryRatio},
		{"scrapUnitPrice", spec.ScrapUnitPrice},
	}
}

type numField struct {
	name  string
	value float64
}

// checkFinite rejects NaN and ±Inf, which slip past every <= 0 comparison.
func checkFinite(fields ...numField) error {
	for _, f := range fields {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return model.InvalidInput(f.name, "%s must be a finite number", f.name)
		}
	}
	return nil
}

func checkQuantity(q int) error {
	switch {
	case q <= 0:
		return model.InvalidInput("quantity", "quantity must be a positive integer, got %d", q)
	case q > MaxQuantity:
		return model.InvalidInput("quantity", "quantity %d exceeds the limit of %d pieces", q, MaxQuantity)
	}
	return nil
}
