package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDefaultScenarios(t *testing.T) {
	scenarios := BuildDefaultScenarios(steelRod())

	names := make([]string, len(scenarios))
	for i, s := range scenarios {
		names[i] = s.Name
	}
	assert.Equal(t, []string{
		"Current Settings",
		"Bar 3000mm",
		"Bar 4000mm",
		"Kerf 1.0mm (half)",
		"No Head/Tail Cut",
	}, names)

	assert.Equal(t, 3000.0, scenarios[1].Spec.StandardBarLength)
	assert.Equal(t, 1.0, scenarios[3].Spec.CuttingLoss)
	assert.Zero(t, scenarios[4].Spec.HeadCut)
	assert.Zero(t, scenarios[4].Spec.TailCut)
}

func TestBuildDefaultScenarios_SkipsRedundantVariants(t *testing.T) {
	base := steelRod()
	base.StandardBarLength = 3000
	base.CuttingLoss = 1
	base.HeadCut = 0
	base.TailCut = 0

	scenarios := BuildDefaultScenarios(base)
	require.Len(t, scenarios, 2)
	assert.Equal(t, "Bar 4000mm", scenarios[1].Name)
}

func TestCompareScenarios(t *testing.T) {
	scenarios := BuildDefaultScenarios(steelRod())
	shortBar := steelRod()
	shortBar.StandardBarLength = 200
	scenarios = append(scenarios, ComparisonScenario{Name: "Too short", Spec: shortBar})

	results := CompareScenarios(scenarios)
	require.Len(t, results, len(scenarios))

	for _, r := range results[:len(results)-1] {
		assert.True(t, r.Feasible(), r.Scenario.Name)
	}
	assert.False(t, results[len(results)-1].Feasible())

	best := BestScenario(results)
	require.GreaterOrEqual(t, best, 0)
	for _, r := range results {
		if r.Feasible() {
			assert.LessOrEqual(t, results[best].Result.EffectiveCost(), r.Result.EffectiveCost())
		}
	}
}

func TestBestScenario_NoneFeasible(t *testing.T) {
	bad := steelRod()
	bad.Quantity = 0
	results := CompareScenarios([]ComparisonScenario{{Name: "bad", Spec: bad}})
	assert.Equal(t, -1, BestScenario(results))
}
