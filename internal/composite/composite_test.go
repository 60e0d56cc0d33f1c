package composite

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holdfast/yieldscore/internal/domain"
	"github.com/holdfast/yieldscore/internal/weights"
)

func flatSet(income, durability, valuation, technical float64) weights.WeightSet {
	return weights.WeightSet{
		Class: domain.ClassDividendStock,
		Weights: map[weights.Component]float64{
			weights.Income:     income,
			weights.Durability: durability,
			weights.Valuation:  valuation,
			weights.Technical:  technical,
		},
	}
}

func TestAggregateWeightedSum(t *testing.T) {
	sub := domain.SubScores{Income: 80, Durability: 60, Valuation: 40, Technical: 20}
	got := Aggregate(sub, flatSet(0.25, 0.35, 0.20, 0.20))
	assert.InDelta(t, 80*0.25+60*0.35+40*0.20+20*0.20, got, 1e-9)
}

func TestAggregateDoesNotRenormalize(t *testing.T) {
	sub := domain.SubScores{Income: 100, Durability: 100, Valuation: 100, Technical: 100}
	// A set that sums below 1.0 must produce a proportionally lower score,
	// not get scaled back up.
	got := Aggregate(sub, flatSet(0.25, 0.25, 0.25, 0.0))
	assert.InDelta(t, 75, got, 1e-9)
}

func TestApplyPenaltiesCap(t *testing.T) {
	flags := []domain.RiskFlag{
		{Name: "a", Penalty: 20},
		{Name: "b", Penalty: 20},
		{Name: "c", Penalty: 20},
		{Name: "d", Penalty: 20},
	}
	adjusted, total, applied := ApplyPenalties(90, flags, nil)
	assert.Equal(t, MaxTotalPenalty, total, "penalty pile-ups cap at the maximum")
	assert.InDelta(t, 40, adjusted, 1e-9)
	assert.Len(t, applied, 4)
}

func TestPenaltiesAloneCannotZeroAScore(t *testing.T) {
	flags := []domain.RiskFlag{{Name: "huge", Penalty: 500}}
	adjusted, total, _ := ApplyPenalties(60, flags, nil)
	assert.Equal(t, MaxTotalPenalty, total)
	assert.InDelta(t, 10, adjusted, 1e-9)
}

func TestSentimentAsymmetry(t *testing.T) {
	positive := []SentimentSignal{{Source: "wire", Score: 0.9, Magnitude: 1.0}}
	adjusted, total, applied := ApplyPenalties(70, nil, positive)
	assert.InDelta(t, 70, adjusted, 1e-9, "positive sentiment must never move the score")
	assert.Zero(t, total)
	assert.Empty(t, applied)

	mild := []SentimentSignal{{Source: "wire", Score: -0.2, Magnitude: 1.0}}
	adjusted, total, _ = ApplyPenalties(70, nil, mild)
	assert.InDelta(t, 70, adjusted, 1e-9, "sentiment above the threshold is ignored")
	assert.Zero(t, total)

	harsh := []SentimentSignal{{Source: "wire", Score: -0.9, Magnitude: 1.0}}
	adjusted, total, applied = ApplyPenalties(70, nil, harsh)
	assert.Less(t, adjusted, 70.0)
	assert.Greater(t, total, 0.0)
	require.Len(t, applied, 1)
	assert.Equal(t, "negative_sentiment", applied[0].Name)
	assert.LessOrEqual(t, applied[0].Penalty, MaxSentimentPenalty)
}

func TestSentimentScalesWithMagnitude(t *testing.T) {
	strong := []SentimentSignal{{Source: "wire", Score: -0.8, Magnitude: 1.0}}
	weak := []SentimentSignal{{Source: "wire", Score: -0.8, Magnitude: 0.2}}

	_, strongTotal, _ := ApplyPenalties(70, nil, strong)
	_, weakTotal, _ := ApplyPenalties(70, nil, weak)
	assert.Greater(t, strongTotal, weakTotal)
}

func TestDeriveFlags(t *testing.T) {
	sub := domain.SubScores{Income: 85, Durability: 10, Valuation: 60, Technical: 55}
	erosion := &domain.ErosionResult{
		Probability:   0.12,
		Tier:          domain.TierModerate,
		PenaltyPoints: 8,
		HorizonMonths: 24,
	}
	features := domain.FeatureBag{Values: map[string]float64{
		domain.FeatCoverage:   0.9,
		domain.FeatVolatility: 0.5,
		domain.FeatDiscount:   0.12,
	}}

	flags := DeriveFlags(sub, erosion, features)
	names := make([]string, 0, len(flags))
	for _, f := range flags {
		names = append(names, f.Name)
	}
	assert.Contains(t, names, "nav_erosion_moderate")
	assert.Contains(t, names, "coverage_below_1x")
	assert.Contains(t, names, "extreme_volatility")
	assert.Contains(t, names, "rich_premium_to_nav")
	assert.Contains(t, names, "score_dispersion")
}

func TestDeriveFlagsQuietWhenHealthy(t *testing.T) {
	sub := domain.SubScores{Income: 70, Durability: 75, Valuation: 65, Technical: 60}
	features := domain.FeatureBag{Values: map[string]float64{
		domain.FeatCoverage:   1.8,
		domain.FeatVolatility: 0.15,
	}}
	assert.Empty(t, DeriveFlags(sub, nil, features))
}

func TestVetoErosionCeiling(t *testing.T) {
	res := CheckVeto(VetoInput{
		PostPenalty: 72,
		Durability:  65,
		Erosion:     &domain.ErosionResult{Probability: 0.31, HorizonMonths: 24},
	})
	require.True(t, res.Triggered)
	assert.Zero(t, res.Score)
	assert.NotEmpty(t, res.Reason)

	// Exactly at the ceiling does not trip; the trigger is strictly greater.
	res = CheckVeto(VetoInput{
		PostPenalty: 72,
		Durability:  65,
		Erosion:     &domain.ErosionResult{Probability: 0.25, HorizonMonths: 24},
	})
	assert.False(t, res.Triggered)
	assert.InDelta(t, 72, res.Score, 1e-9)
}

func TestVetoCoverageWindow(t *testing.T) {
	below := []float64{0.95, 0.90, 0.85, 0.92}

	res := CheckVeto(VetoInput{PostPenalty: 60, Durability: 55, CoverageHistory: below})
	assert.True(t, res.Triggered)

	// A shorter window cannot trip no matter how bad the readings are.
	res = CheckVeto(VetoInput{PostPenalty: 60, Durability: 55, CoverageHistory: below[:3]})
	assert.False(t, res.Triggered)

	// One healthy observation inside the window clears it.
	mixed := []float64{0.95, 1.10, 0.85, 0.92}
	res = CheckVeto(VetoInput{PostPenalty: 60, Durability: 55, CoverageHistory: mixed})
	assert.False(t, res.Triggered)
}

func TestVetoDurabilityFloor(t *testing.T) {
	res := CheckVeto(VetoInput{PostPenalty: 45, Durability: 12})
	require.True(t, res.Triggered)
	assert.Zero(t, res.Score)

	res = CheckVeto(VetoInput{PostPenalty: 45, Durability: DurabilityVetoFloor})
	assert.False(t, res.Triggered, "exactly at the floor survives")
}

func TestVetoConcatenatesAllReasons(t *testing.T) {
	res := CheckVeto(VetoInput{
		PostPenalty:     50,
		Durability:      5,
		Erosion:         &domain.ErosionResult{Probability: 0.40, HorizonMonths: 24},
		CoverageHistory: []float64{0.9, 0.8, 0.7, 0.6},
	})
	require.True(t, res.Triggered)
	parts := strings.Split(res.Reason, "; ")
	assert.Len(t, parts, 3, "every trigger that fired must be reported")
}
