package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holdfast/yieldscore/internal/domain"
)

func baseParams() Parameters {
	p := DefaultParameters(0.05, 0.15, 0.002, 0.20)
	p.Simulations = 2000
	p.Seed = 42
	return p
}

func TestSimulateSeededDeterminism(t *testing.T) {
	engine := NewEngine()
	params := baseParams()

	first, err := engine.Simulate(params)
	require.NoError(t, err)
	second, err := engine.Simulate(params)
	require.NoError(t, err)

	assert.Equal(t, first.Probability, second.Probability)
	assert.Equal(t, first.MeanTerminalNAV, second.MeanTerminalNAV)
	assert.Equal(t, first.P5TerminalNAV, second.P5TerminalNAV)
	assert.Equal(t, first.MedianNAV, second.MedianNAV)
	assert.Equal(t, first.Tier, second.Tier)
	assert.Equal(t, int64(42), first.Seed)
}

func TestSimulateDifferentSeedsDiverge(t *testing.T) {
	engine := NewEngine()
	a := baseParams()
	b := baseParams()
	b.Seed = 43

	ra, err := engine.Simulate(a)
	require.NoError(t, err)
	rb, err := engine.Simulate(b)
	require.NoError(t, err)

	assert.NotEqual(t, ra.MeanTerminalNAV, rb.MeanTerminalNAV)
}

func TestSimulateUnseededRecordsSeed(t *testing.T) {
	engine := NewEngine()
	params := baseParams()
	params.Seed = 0
	params.Simulations = 200

	res, err := engine.Simulate(params)
	require.NoError(t, err)
	assert.NotZero(t, res.Seed, "the clock seed must be recorded for replay")
}

func TestSimulateDragMonotonicity(t *testing.T) {
	engine := NewEngine()
	drags := []float64{0.000, 0.002, 0.005, 0.010, 0.020}

	prev := -1.0
	for _, drag := range drags {
		params := baseParams()
		params.DistributionDragMonthly = drag
		res, err := engine.Simulate(params)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, res.Probability, prev,
			"erosion probability must not fall as drag rises (drag %.3f)", drag)
		prev = res.Probability
	}
}

func TestSimulateBenignParamsStayLowRisk(t *testing.T) {
	engine := NewEngine()
	params := baseParams()
	params.ExpectedReturnAnnual = 0.08
	params.VolatilityAnnual = 0.08
	params.DistributionDragMonthly = 0

	res, err := engine.Simulate(params)
	require.NoError(t, err)
	assert.Less(t, res.Probability, 0.10)
	assert.LessOrEqual(t, res.Tier, domain.TierLow)
}

func TestSimulateExtremeInputsBreachVetoCeiling(t *testing.T) {
	engine := NewEngine()
	params := baseParams()
	params.ExpectedReturnAnnual = -0.40
	params.VolatilityAnnual = 0.60
	params.DistributionDragMonthly = 0.012

	res, err := engine.Simulate(params)
	require.NoError(t, err)
	assert.Greater(t, res.Probability, 0.25)
	assert.Equal(t, domain.TierSevere, res.Tier)
	assert.Equal(t, MaxPenaltyPoints, res.PenaltyPoints)
}

func TestSimulateOptionCapLimitsUpside(t *testing.T) {
	engine := NewEngine()

	uncapped := baseParams()
	uncapped.ExpectedReturnAnnual = 0.15
	uncapped.VolatilityAnnual = 0.25

	capped := uncapped
	capped.HasOptionOverlay = true
	capped.UpsideCapMonthly = 0.01

	ru, err := engine.Simulate(uncapped)
	require.NoError(t, err)
	rc, err := engine.Simulate(capped)
	require.NoError(t, err)

	assert.Less(t, rc.MeanTerminalNAV, ru.MeanTerminalNAV)
	assert.GreaterOrEqual(t, rc.Probability, ru.Probability)
}

func TestSimulateNonFinitePathsCountAsEroded(t *testing.T) {
	engine := NewEngine()
	params := baseParams()
	params.Simulations = 100
	params.HorizonMonths = 24
	params.VolatilityAnnual = 1e170 // overflows compounding into +/-Inf

	res, err := engine.Simulate(params)
	require.NoError(t, err)
	assert.True(t, res.Degenerate)
	assert.Greater(t, res.DegeneratePaths, 0)
	assert.False(t, res.Probability > 1 || res.Probability < 0)
	assert.Equal(t, 1.0, res.Probability, "every blown-up path counts as eroded")
}

func TestSimulateValidation(t *testing.T) {
	engine := NewEngine()

	params := baseParams()
	params.HorizonMonths = 0
	_, err := engine.Simulate(params)
	assert.Error(t, err)

	params = baseParams()
	params.ErosionThreshold = 1.5
	_, err = engine.Simulate(params)
	assert.Error(t, err)

	params = baseParams()
	params.Transitions[0] = [numRegimes]float64{0.5, 0.5, 0.5, 0.5} // not row-stochastic
	_, err = engine.Simulate(params)
	assert.Error(t, err)
}
