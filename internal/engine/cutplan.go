package engine

import "github.com/piwi3910/matcalc/internal/model"

// PlanCuts lays the pieces of a rod job onto bars greedily: every bar is
// filled with piecesPerBar pieces and the last bar takes the remainder.
// The plan always accounts for exactly spec.Quantity pieces. Jobs that
// need more than MaxPlanBars bars are rejected on the quantity field.
func PlanCuts(spec model.RodSpec) (model.CutPlan, error) {
	layout, err := layoutRod(spec)
	if err != nil {
		return model.CutPlan{}, err
	}
	if layout.barsNeeded > MaxPlanBars {
		return model.CutPlan{}, model.InvalidInput("quantity",
			"cut plan needs %d bars, more than the %d bars a plan can list", layout.barsNeeded, MaxPlanBars)
	}

	plan := model.CutPlan{
		StandardBarLength: spec.StandardBarLength,
		UnitLength:        layout.unitLength,
		PiecesPerBar:      layout.piecesPerBar,
		Bars:              make([]model.BarCut, 0, layout.barsNeeded),
	}

	remaining := spec.Quantity
	for i := 1; remaining > 0; i++ {
		pieces := layout.piecesPerBar
		if remaining < pieces {
			pieces = remaining
		}
		used := float64(pieces) * layout.unitLength
		remnant := layout.usableLength - used
		plan.Bars = append(plan.Bars, model.BarCut{
			Index:      i,
			Pieces:     pieces,
			UsedLength: used,
			HeadCut:    spec.HeadCut,
			TailCut:    spec.TailCut,
			Remnant:    remnant,
			Reusable:   remnant >= model.MinReusableRemnant,
		})
		remaining -= pieces
	}
	return plan, nil
}
