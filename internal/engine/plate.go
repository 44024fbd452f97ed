package engine

import "github.com/piwi3910/matcalc/internal/model"

// CalculatePlate computes weight and cost for flat stock. Plates carry no
// off-cut accounting, so utilization is 100% and wastage 0 by definition,
// and scrap is never reported.
func CalculatePlate(spec model.PlateSpec) (model.CalculationResult, error) {
	if err := checkPlateInput(spec); err != nil {
		return model.CalculationResult{}, err
	}

	qty := float64(spec.Quantity)
	perPiece := model.MassKg(spec.Width*spec.Length*spec.Thickness, spec.MaterialDensity)
	total := perPiece * qty
	cost := total * spec.PlateUnitPrice

	res := model.CalculationResult{
		Form:            model.FormPlate,
		IsPlate:         true,
		Quantity:        spec.Quantity,
		StockWeightKg:   total,
		ProductWeightKg: total,
		MaterialCost:    cost,
		CostPerPiece:    cost / qty,
		UtilizationRate: 100,
		Wastage:         0,
	}
	res.Warnings = append(ValidatePlate(spec), CheckPlateResult(res)...)
	res.Suggestions = model.SuggestionsOf(res.Warnings)
	return res, nil
}

func checkPlateInput(spec model.PlateSpec) error {
	err := checkFinite(
		numField{"plateThickness", spec.Thickness},
		numField{"plateWidth", spec.Width},
		numField{"plateLength", spec.Length},
		numField{"materialDensity", spec.MaterialDensity},
		numField{"plateUnitPrice", spec.PlateUnitPrice},
	)
	if err != nil {
		return err
	}

	switch {
	case spec.Thickness <= 0:
		return model.InvalidInput("plateThickness", "plate thickness must be greater than zero")
	case spec.Width <= 0:
		return model.InvalidInput("plateWidth", "plate width must be greater than zero")
	case spec.Length <= 0:
		return model.InvalidInput("plateLength", "plate length must be greater than zero")
	case spec.MaterialDensity <= 0:
		return model.InvalidInput("materialDensity", "material density must be greater than zero (kg/m³)")
	case spec.PlateUnitPrice <= 0:
		return model.InvalidInput("plateUnitPrice", "plate unit price must be greater than zero")
	}
	return checkQuantity(spec.Quantity)
}
