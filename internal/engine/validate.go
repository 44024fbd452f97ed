package engine

import (
	"fmt"

	"github.com/piwi3910/matcalc/internal/model"
)

// Hard limits. A quantity above MaxQuantity is rejected with InvalidInput so
// bar counts, weights and costs stay far from integer and float overflow.
// PlanCuts lays bars out one by one and refuses plans above MaxPlanBars.
const (
	MaxQuantity = 1_000_000
	MaxPlanBars = 10_000
)

// Plausibility limits. Inputs beyond them are legal but usually mistakes.
const (
	maxQuantity          = 100000
	minDensityKgPerM3    = 1000.0
	maxDensityKgPerM3    = 20000.0
	maxUnitPrice         = 50000.0
	maxBarDimension      = 500.0   // mm
	maxProductLength     = 10000.0 // mm
	maxClampShare        = 0.30    // head+tail share of the bar that is flagged
	clampSuggestShare    = 0.10
	minPlateThickness    = 0.5   // mm
	maxPlateThickness    = 100.0 // mm
	maxPlateWidth        = 3000.0
	maxPlateLength       = 12000.0
	lowUtilization       = 60.0
	veryLowUtilization   = 30.0
	highWastage          = 70.0
	minPlausibleUnitCost = 1000.0
	maxPlausibleUnitCost = 100000.0
	maxTotalWeightKg     = 10000.0
	maxTotalCost         = 50000000.0
	maxSavingsShare      = 0.80
	maxScrapShare        = 0.50
)

// ValidateRod inspects a rod spec for physical plausibility. It never fails:
// structural problems are reported as error-kind warnings so a caller can show
// them all at once. CalculateRod rejects the same problems with a typed error.
func ValidateRod(spec model.RodSpec) []model.ValidationWarning {
	ws := validateCommon(spec.Quantity, spec.MaterialDensity, spec.MaterialPrice, "materialPrice")

	switch {
	case !spec.Shape.Valid():
		ws = append(ws, errorf("shape", "choose circle, square, hexagon or rectangle",
			"unsupported shape %q", spec.Shape))
	case spec.Shape.UsesWidthHeight():
		if spec.Width <= 0 {
			ws = append(ws, errorf("width", "enter the rectangle width in mm", "rectangle width must be greater than zero"))
		}
		if spec.Height <= 0 {
			ws = append(ws, errorf("height", "enter the rectangle height in mm", "rectangle height must be greater than zero"))
		}
		if spec.Width > maxBarDimension || spec.Height > maxBarDimension {
			ws = append(ws, warnf("width", "confirm this is oversized stock",
				"width or height exceeds %.0f mm", maxBarDimension))
		}
	default:
		if spec.Diameter <= 0 {
			ws = append(ws, errorf("diameter", "enter the bar diameter in mm",
				"%s diameter must be greater than zero", spec.Shape))
		} else if spec.Diameter > maxBarDimension {
			ws = append(ws, warnf("diameter", "confirm this is oversized stock",
				"diameter exceeds %.0f mm", maxBarDimension))
		}
	}

	if spec.ProductLength <= 0 {
		ws = append(ws, errorf("productLength", "", "product length must be greater than zero"))
	} else if spec.ProductLength > maxProductLength {
		ws = append(ws, warnf("productLength", "", "product length exceeds %.0f m", maxProductLength/1000))
	}

	if spec.StandardBarLength <= 0 {
		ws = append(ws, errorf("standardBarLength", "", "standard bar length must be greater than zero"))
	} else if spec.StandardBarLength < spec.ProductLength {
		ws = append(ws, errorf("standardBarLength", "use a longer standard bar",
			"standard bar length %.0f mm is shorter than the product length %.0f mm",
			spec.StandardBarLength, spec.ProductLength))
	}

	if spec.CuttingLoss < 0 {
		ws = append(ws, errorf("cuttingLoss", "", "cutting loss cannot be negative"))
	} else if spec.CuttingLoss > spec.ProductLength && spec.ProductLength > 0 {
		ws = append(ws, warnf("cuttingLoss", "check the saw kerf value",
			"cutting loss %.1f mm is larger than the product length", spec.CuttingLoss))
	}

	if spec.HeadCut < 0 {
		ws = append(ws, errorf("headCut", "", "head cut cannot be negative"))
	}
	if spec.TailCut < 0 {
		ws = append(ws, errorf("tailCut", "", "tail cut cannot be negative"))
	}
	clamp := spec.HeadCut + spec.TailCut
	if spec.StandardBarLength > 0 {
		if clamp >= spec.StandardBarLength {
			ws = append(ws, errorf("tailCut", "reduce head/tail cut or use a longer bar",
				"head cut + tail cut (%.0f mm) leaves no usable bar length", clamp))
		} else if clamp > spec.StandardBarLength*maxClampShare {
			ws = append(ws, warnf("tailCut", "reduce head/tail cut",
				"head cut + tail cut exceeds %.0f%% of the standard bar length", maxClampShare*100))
		}
	}

	return append(ws, validateScrapInputs(spec)...)
}

func validateScrapInputs(spec model.RodSpec) []model.ValidationWarning {
	var ws []model.ValidationWarning
	present := 0
	for _, f := range scrapFields(spec) {
		if f.value == nil {
			continue
		}
		if *f.value < 0 {
			ws = append(ws, errorf(f.name, "enter 0 or more", "%s cannot be negative", f.name))
		}
		if *f.value > 0 {
			present++
		}
	}
	if present > 0 && !spec.ScrapActive() {
		ws = append(ws, model.ValidationWarning{
			Kind:       model.WarningInfo,
			Field:      "actualProductWeight",
			Message:    "scrap recovery is inactive until actual product weight, recovery ratio and scrap unit price are all set",
			Suggestion: "fill in all three scrap fields to include scrap savings",
		})
	}
	if spec.RecoveryRatio != nil {
		ws = append(ws, checkRecoveryRatio(*spec.RecoveryRatio)...)
	}
	return ws
}

func checkRecoveryRatio(ratio float64) []model.ValidationWarning {
	if ratio <= 100 {
		return nil
	}
	return []model.ValidationWarning{warnf("recoveryRatio", "enter a recovery ratio of 100% or less",
		"recovery ratio %.1f%% exceeds 100%%; savings are capped at 100%%", ratio)}
}

// ValidatePlate inspects a plate spec for physical plausibility.
func ValidatePlate(spec model.PlateSpec) []model.ValidationWarning {
	ws := validateCommon(spec.Quantity, spec.MaterialDensity, spec.PlateUnitPrice, "plateUnitPrice")

	switch {
	case spec.Thickness <= 0:
		ws = append(ws, errorf("plateThickness", "", "plate thickness must be greater than zero"))
	case spec.Thickness < minPlateThickness:
		ws = append(ws, warnf("plateThickness", "confirm this is sheet metal",
			"plate thickness is below %.1f mm", minPlateThickness))
	case spec.Thickness > maxPlateThickness:
		ws = append(ws, warnf("plateThickness", "confirm this is thick plate",
			"plate thickness exceeds %.0f mm", maxPlateThickness))
	}
	if spec.Width <= 0 {
		ws = append(ws, errorf("plateWidth", "", "plate width must be greater than zero"))
	} else if spec.Width > maxPlateWidth {
		ws = append(ws, warnf("plateWidth", "", "plate width exceeds %.0f m", maxPlateWidth/1000))
	}
	if spec.Length <= 0 {
		ws = append(ws, errorf("plateLength", "", "plate length must be greater than zero"))
	} else if spec.Length > maxPlateLength {
		ws = append(ws, warnf("plateLength", "", "plate length exceeds %.0f m", maxPlateLength/1000))
	}
	return ws
}

func validateCommon(quantity int, density, price float64, priceField string) []model.ValidationWarning {
	var ws []model.ValidationWarning
	if quantity <= 0 {
		ws = append(ws, errorf("quantity", "enter at least 1 piece", "quantity must be greater than zero"))
	} else if quantity > maxQuantity {
		ws = append(ws, warnf("quantity", "double-check the quantity", "quantity %d is unusually large", quantity))
	}
	if density <= 0 {
		ws = append(ws, errorf("materialDensity", "", "material density must be greater than zero"))
	} else if density < minDensityKgPerM3 || density > maxDensityKgPerM3 {
		ws = append(ws, warnf("materialDensity", "density is in kg/m³; multiply g/cm³ by 1000",
			"material density %.1f kg/m³ is outside the usual %.0f-%.0f kg/m³ range",
			density, minDensityKgPerM3, maxDensityKgPerM3))
	}
	if price <= 0 {
		ws = append(ws, errorf(priceField, "", "unit price must be greater than zero"))
	} else if price > maxUnitPrice {
		ws = append(ws, warnf(priceField, "", "unit price %.0f per kg is unusually high", price))
	}
	return ws
}

// CheckRodResult inspects a computed rod result for poor efficiency and
// implausible totals.
func CheckRodResult(spec model.RodSpec, res model.CalculationResult) []model.ValidationWarning {
	var ws []model.ValidationWarning

	if res.UtilizationRate < lowUtilization {
		msg := fmt.Sprintf("utilization rate is low (%.1f%%)", res.UtilizationRate)
		if res.UtilizationRate < veryLowUtilization {
			msg = fmt.Sprintf("utilization rate is very low (%.1f%%)", res.UtilizationRate)
		}
		ws = append(ws, model.ValidationWarning{
			Kind:       model.WarningWarn,
			Field:      "utilizationRate",
			Message:    msg,
			Suggestion: "increase quantity or reduce head/tail cut to raise utilization above 60%",
		})
	}
	if res.Wastage > highWastage {
		ws = append(ws, warnf("wastage", "review the dimensions against the standard bar length",
			"wastage is very high (%.1f%%)", res.Wastage))
	}
	if spec.StandardBarLength > 0 && spec.HeadCut+spec.TailCut > spec.StandardBarLength*clampSuggestShare {
		ws = append(ws, infof("headCut", "shorter head/tail cuts or a longer standard bar would reduce waste",
			"head and tail cuts take %.1f%% of each bar", (spec.HeadCut+spec.TailCut)/spec.StandardBarLength*100))
	}

	ws = append(ws, checkTotals(res)...)

	if res.ScrapActive() && spec.ScrapActive() && res.Quantity > 0 {
		nominalUnitG := model.KgToGrams(res.ProductWeightKg) / float64(res.Quantity)
		ws = append(ws, checkScrap(*spec.ActualProductWeight, nominalUnitG,
			res.StockWeightKg, res.MaterialCost, model.ScrapAdjustment{
				ScrapWeightKg: *res.ScrapWeightKg,
				ScrapSavings:  *res.ScrapSavings,
				RealCost:      *res.RealCost,
			})...)
	}
	return ws
}

// CheckPlateResult inspects a computed plate result for implausible totals.
func CheckPlateResult(res model.CalculationResult) []model.ValidationWarning {
	return checkTotals(res)
}

func checkTotals(res model.CalculationResult) []model.ValidationWarning {
	var ws []model.ValidationWarning
	if res.CostPerPiece > 0 && res.CostPerPiece < minPlausibleUnitCost {
		ws = append(ws, infof("costPerPiece", "", "cost per piece is very low (%.0f); check the unit price", res.CostPerPiece))
	} else if res.CostPerPiece > maxPlausibleUnitCost {
		ws = append(ws, infof("costPerPiece", "", "cost per piece is high (%.0f); consider a cheaper material", res.CostPerPiece))
	}
	if res.StockWeightKg > maxTotalWeightKg {
		ws = append(ws, warnf("stockWeightKg", "", "total stock weight %.0f kg is very large", res.StockWeightKg))
	}
	if res.MaterialCost > maxTotalCost {
		ws = append(ws, warnf("materialCost", "", "material cost %.0f is very large", res.MaterialCost))
	}
	return ws
}

func checkScrap(actualUnitG, nominalUnitG, stockKg, cost float64, adj model.ScrapAdjustment) []model.ValidationWarning {
	var ws []model.ValidationWarning
	if nominalUnitG > 0 && actualUnitG > nominalUnitG {
		ws = append(ws, warnf("actualProductWeight", "re-measure the actual product weight",
			"actual product weight %.1f g is above the calculated unit weight %.1f g", actualUnitG, nominalUnitG))
	}
	if cost > 0 && adj.ScrapSavings > cost*maxSavingsShare {
		ws = append(ws, warnf("scrapSavings", "check the scrap unit price",
			"scrap savings are %.0f%% of the material cost", adj.ScrapSavings/cost*100))
	}
	if stockKg > 0 && adj.ScrapWeightKg > stockKg*maxScrapShare {
		ws = append(ws, infof("scrapWeight", "a smaller stock size would cut machining scrap",
			"more than half of the stock weight becomes scrap (%.1f%%)", adj.ScrapWeightKg/stockKg*100))
	}
	return ws
}

// ValidateRodSpec runs the plausibility checks and, when they pass, the
// result checks of a trial calculation.
func ValidateRodSpec(spec model.RodSpec) model.ValidationSummary {
	ws := ValidateRod(spec)
	if !model.HasErrors(ws) {
		res, err := CalculateRod(spec)
		if err != nil {
			ws = append(ws, fromError(err))
		} else {
			ws = res.Warnings
		}
	}
	return model.Summarize(ws)
}

// ValidatePlateSpec is the plate counterpart of ValidateRodSpec.
func ValidatePlateSpec(spec model.PlateSpec) model.ValidationSummary {
	ws := ValidatePlate(spec)
	if !model.HasErrors(ws) {
		res, err := CalculatePlate(spec)
		if err != nil {
			ws = append(ws, fromError(err))
		} else {
			ws = res.Warnings
		}
	}
	return model.Summarize(ws)
}

func fromError(err error) model.ValidationWarning {
	w := model.ValidationWarning{Kind: model.WarningError, Message: err.Error()}
	if ce, ok := model.AsCalcError(err); ok {
		w.Field = ce.Field
		w.Message = ce.Message
	}
	return w
}

func errorf(field, suggestion, format string, args ...any) model.ValidationWarning {
	return model.ValidationWarning{Kind: model.WarningError, Field: field, Message: fmt.Sprintf(format, args...), Suggestion: suggestion}
}

func warnf(field, suggestion, format string, args ...any) model.ValidationWarning {
	return model.ValidationWarning{Kind: model.WarningWarn, Field: field, Message: fmt.Sprintf(format, args...), Suggestion: suggestion}
}

func infof(field, suggestion, format string, args ...any) model.ValidationWarning {
	return model.ValidationWarning{Kind: model.WarningInfo, Field: field, Message: fmt.Sprintf(format, args...), Suggestion: suggestion}
}
