package engine

import (
	"math"

	"github.com/piwi3910/matcalc/internal/model"
)

// ApplyScrap computes the recoverable scrap for a rod job.
//
// Scrap is the stock weight minus the actual finished weight, clamped at
// zero: a product heavier than the stock is bad input, not negative scrap.
// Recovery ratios above 100% are capped at 100% for the savings.
func ApplyScrap(stockWeightKg, materialCost float64, quantity int, actualProductWeightG, recoveryRatioPct, scrapUnitPrice float64) model.ScrapAdjustment {
	actualKg := model.GramsToKg(actualProductWeightG * float64(quantity))
	scrap := math.Max(0, stockWeightKg-actualKg)
	ratio := math.Min(recoveryRatioPct, 100)
	savings := scrap * scrapUnitPrice * ratio / 100
	return model.ScrapAdjustment{
		ActualProductWeightKg: actualKg,
		ScrapWeightKg:         scrap,
		ScrapSavings:          savings,
		RealCost:              materialCost - savings,
	}
}

// CalculateScrap recomputes scrap against an already computed rod result,
// without rerunning the rod calculation. When any scrap input is left at
// zero the result carries no scrap: real cost equals the total cost.
func CalculateScrap(spec model.ScrapSpec) (model.ScrapResult, error) {
	if err := checkScrapInput(spec); err != nil {
		return model.ScrapResult{}, err
	}
	if !spec.Active() {
		return inactiveScrap(spec), nil
	}

	stock := spec.StockWeight()
	adj := ApplyScrap(stock, spec.TotalCost, spec.Quantity,
		spec.ActualProductWeight, spec.RecoveryRatio, spec.ScrapUnitPrice)

	res := model.ScrapResult{
		ScrapWeight:              adj.ScrapWeightKg,
		ScrapSavings:             adj.ScrapSavings,
		RealCost:                 adj.RealCost,
		UnitCost:                 adj.RealCost / float64(spec.Quantity),
		UpdatedTotalWeight:       model.Float(adj.ActualProductWeightKg),
		TotalActualProductWeight: model.Float(adj.ActualProductWeightKg),
	}
	res.ScrapRatio, res.CostSavingsRatio = ScrapEfficiency(stock, adj.ScrapWeightKg, spec.TotalCost, adj.ScrapSavings)

	nominalUnitG := model.KgToGrams(spec.TotalWeight) / float64(spec.Quantity)
	res.Warnings = append(checkRecoveryRatio(spec.RecoveryRatio),
		checkScrap(spec.ActualProductWeight, nominalUnitG, stock, spec.TotalCost, adj)...)
	if res.Warnings == nil {
		res.Warnings = []model.ValidationWarning{}
	}
	return res, nil
}

// ScrapEfficiency returns the scrap share of the stock weight (%, 3 places)
// and the savings share of the material cost (%, 2 places).
func ScrapEfficiency(stockWeightKg, scrapWeightKg, materialCost, scrapSavings float64) (scrapRatio, costSavingsRatio float64) {
	if stockWeightKg > 0 {
		scrapRatio = model.RoundTo(scrapWeightKg/stockWeightKg*100, 3)
	}
	if materialCost > 0 {
		costSavingsRatio = model.RoundTo(scrapSavings/materialCost*100, 2)
	}
	return scrapRatio, costSavingsRatio
}

// inactiveScrap reports the job unchanged. A given actual product weight still
// updates the total weight.
func inactiveScrap(spec model.ScrapSpec) model.ScrapResult {
	res := model.ScrapResult{
		RealCost:           spec.TotalCost,
		UnitCost:           spec.TotalCost / float64(spec.Quantity),
		UpdatedTotalWeight: model.Float(spec.TotalWeight),
		Warnings:           []model.ValidationWarning{},
	}
	if spec.ActualProductWeight > 0 {
		actual := model.GramsToKg(spec.ActualProductWeight * float64(spec.Quantity))
		res.UpdatedTotalWeight = model.Float(actual)
		res.TotalActualProductWeight = model.Float(actual)
	}
	return res
}

func checkScrapInput(spec model.ScrapSpec) error {
	var stock float64
	if spec.MaterialTotalWeight != nil {
		stock = *spec.MaterialTotalWeight
	}
	err := checkFinite(
		numField{"totalWeight", spec.TotalWeight},
		numField{"materialTotalWeight", stock},
		numField{"totalCost", spec.TotalCost},
		numField{"actualProductWeight", spec.ActualProductWeight},
		numField{"recoveryRatio", spec.RecoveryRatio},
		numField{"scrapUnitPrice", spec.ScrapUnitPrice},
	)
	if err != nil {
		return err
	}
	if err := checkQuantity(spec.Quantity); err != nil {
		return err
	}

	switch {
	case spec.TotalCost < 0:
		return model.InvalidInput("totalCost", "total cost cannot be negative")
	case spec.StockWeight() <= 0:
		return model.InvalidInput("totalWeight", "stock weight must be greater than zero")
	case spec.ActualProductWeight < 0:
		return model.InvalidInput("actualProductWeight", "actual product weight cannot be negative")
	case spec.RecoveryRatio < 0:
		return model.InvalidInput("recoveryRatio", "recovery ratio cannot be negative")
	case spec.ScrapUnitPrice < 0:
		return model.InvalidInput("scrapUnitPrice", "scrap unit price cannot be negative")
	}
	return nil
}
