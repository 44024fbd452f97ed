package engine

import (
	"errors"
	"math"
	"testing"

	"github.com/piwi3910/matcalc/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanCuts(t *testing.T) {
	plan, err := PlanCuts(steelRod())
	require.NoError(t, err)

	require.Len(t, plan.Bars, 5)
	assert.Equal(t, 100, plan.TotalPieces())
	assert.Equal(t, 21, plan.PiecesPerBar)

	for i, bar := range plan.Bars[:4] {
		assert.Equal(t, i+1, bar.Index)
		assert.Equal(t, 21, bar.Pieces)
		assert.InDelta(t, 88.0, bar.Remnant, 1e-9)
		assert.False(t, bar.Reusable)
	}

	last := plan.Bars[4]
	assert.Equal(t, 16, last.Pieces)
	assert.InDelta(t, 1632.0, last.UsedLength, 1e-9)
	assert.InDelta(t, 598.0, last.Remnant, 1e-9)
	assert.True(t, last.Reusable)

	assert.Len(t, plan.ReusableRemnants(), 1)
	assert.InDelta(t, 4*88.0+598, plan.TotalRemnant(), 1e-9)
}

func TestPlanCuts_MatchesCalculator(t *testing.T) {
	for _, qty := range []int{1, 20, 21, 22, 63, 250} {
		spec := steelRod()
		spec.Quantity = qty

		plan, err := PlanCuts(spec)
		require.NoError(t, err)
		res, err := CalculateRod(spec)
		require.NoError(t, err)

		assert.Len(t, plan.Bars, res.BarsNeeded)
		assert.Equal(t, qty, plan.TotalPieces())
	}
}

func TestPlanCuts_Infeasible(t *testing.T) {
	spec := steelRod()
	spec.TailCut = 2480
	_, err := PlanCuts(spec)
	assert.True(t, errors.Is(err, model.ErrInfeasibleCut))
}

func TestPlanCuts_HugeQuantityRejected(t *testing.T) {
	spec := steelRod()
	spec.Quantity = math.MaxInt64
	assert.NotPanics(t, func() {
		_, err := PlanCuts(spec)
		assert.True(t, errors.Is(err, model.ErrInvalidInput))
	})
}

func TestPlanCuts_BarLimit(t *testing.T) {
	spec := steelRod()
	spec.Quantity = MaxPlanBars * 21
	plan, err := PlanCuts(spec)
	require.NoError(t, err)
	assert.Len(t, plan.Bars, MaxPlanBars)

	spec.Quantity++
	_, err = PlanCuts(spec)
	require.Error(t, err)
	ce, ok := model.AsCalcError(err)
	require.True(t, ok)
	assert.Equal(t, model.KindInvalidInput, ce.Kind)
	assert.Equal(t, "quantity", ce.Field)
}
