package engine

import (
	"fmt"

	"github.com/piwi3910/matcalc/internal/model"
)

// ComparisonScenario is a named variant of a rod spec.
type ComparisonScenario struct {
	Name string
	Spec model.RodSpec
}

// ComparisonResult holds the outcome of one scenario. Err is set when the
// variant is infeasible; the comparison itself never aborts.
type ComparisonResult struct {
	Scenario ComparisonScenario
	Result   model.CalculationResult
	Err      error
}

// Feasible reports whether the scenario produced a result.
func (c ComparisonResult) Feasible() bool {
	return c.Err == nil
}

// AlternateBarLengths are the standard bar lengths (mm) offered as what-if variants.
var AlternateBarLengths = []float64{3000, 4000}

// CompareScenarios runs the rod calculator for each scenario in order.
func CompareScenarios(scenarios []ComparisonScenario) []ComparisonResult {
	results := make([]ComparisonResult, 0, len(scenarios))
	for _, scenario := range scenarios {
		res, err := CalculateRod(scenario.Spec)
		results = append(results, ComparisonResult{
			Scenario: scenario,
			Result:   res,
			Err:      err,
		})
	}
	return results
}

// BuildDefaultScenarios derives what-if variants from base: alternative bar
// lengths, a thinner blade and no clamping loss.
func BuildDefaultScenarios(base model.RodSpec) []ComparisonScenario {
	scenarios := []ComparisonScenario{
		{Name: "Current Settings", Spec: base},
	}

	for _, length := range AlternateBarLengths {
		if length == base.StandardBarLength {
			continue
		}
		alt := base
		alt.StandardBarLength = length
		scenarios = append(scenarios, ComparisonScenario{
			Name: fmt.Sprintf("Bar %.0fmm", length),
			Spec: alt,
		})
	}

	// Thinner blade
	if base.CuttingLoss > 1.0 {
		thin := base
		thin.CuttingLoss = base.CuttingLoss * 0.5
		scenarios = append(scenarios, ComparisonScenario{
			Name: fmt.Sprintf("Kerf %.1fmm (half)", thin.CuttingLoss),
			Spec: thin,
		})
	}

	if base.HeadCut > 0 || base.TailCut > 0 {
		noClamp := base
		noClamp.HeadCut = 0
		noClamp.TailCut = 0
		scenarios = append(scenarios, ComparisonScenario{
			Name: "No Head/Tail Cut",
			Spec: noClamp,
		})
	}

	return scenarios
}

// BestScenario returns the index of the feasible result with the lowest
// effective cost, or -1 when none is feasible.
func BestScenario(results []ComparisonResult) int {
	best := -1
	for i, r := range results {
		if !r.Feasible() {
			continue
		}
		if best == -1 || r.Result.EffectiveCost() < results[best].Result.EffectiveCost() {
			best = i
		}
	}
	return best
}
