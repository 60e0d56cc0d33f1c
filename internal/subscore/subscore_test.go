package subscore

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/holdfast/yieldscore/internal/domain"
)

func bag(values map[string]float64) domain.FeatureBag {
	return domain.FeatureBag{Values: values}
}

func TestCurveInterpolatesAndClamps(t *testing.T) {
	c := NewCurve(
		CurvePoint{X: 0, Y: 0},
		CurvePoint{X: 10, Y: 100},
	)
	assert.InDelta(t, 50, c.Score(5), 1e-9)
	assert.InDelta(t, 0, c.Score(-3), 1e-9, "below the first point clamps to its value")
	assert.InDelta(t, 100, c.Score(42), 1e-9, "above the last point clamps to its value")
}

func TestEmptyBagGetsExactlyPartialCredit(t *testing.T) {
	empty := bag(nil)
	ctx := ClassContext{Class: domain.ClassDividendStock}

	for name, fn := range map[string]Func{
		"income":     Income,
		"durability": Durability,
		"valuation":  Valuation,
		"technical":  Technical,
	} {
		res := fn(empty, ctx)
		assert.InDelta(t, PartialCreditScore, res.Score, 1e-9,
			"%s with no inputs should land exactly on partial credit", name)
		assert.NotEmpty(t, res.MissingInputs, name)
	}
}

func TestMissingInputsAreNamed(t *testing.T) {
	res := Income(bag(map[string]float64{
		domain.FeatYield: 0.04,
	}), ClassContext{Class: domain.ClassDividendStock})

	assert.Contains(t, res.MissingInputs, "distribution_rate")
	assert.Contains(t, res.MissingInputs, "dividend_growth")
	assert.NotContains(t, res.MissingInputs, "yield")
}

func TestIncomeYieldBandsAreClassAware(t *testing.T) {
	// 11% yield: alarming on a dividend stock, normal on a covered-call fund.
	features := bag(map[string]float64{domain.FeatYield: 0.11})

	stock := Income(features, ClassContext{Class: domain.ClassDividendStock})
	cc := Income(features, ClassContext{Class: domain.ClassCoveredCall})

	assert.Greater(t, cc.Score, stock.Score)
}

func TestIncomeRewardsModestStockYield(t *testing.T) {
	low := Income(bag(map[string]float64{domain.FeatYield: 0.005}),
		ClassContext{Class: domain.ClassDividendStock})
	healthy := Income(bag(map[string]float64{domain.FeatYield: 0.04}),
		ClassContext{Class: domain.ClassDividendStock})

	assert.Greater(t, healthy.Score, low.Score)
}

func TestDurabilityCoverageBandsAreClassAware(t *testing.T) {
	// 1.05x coverage is thin for a dividend stock but near target for a CEF.
	features := bag(map[string]float64{domain.FeatCoverage: 1.05})

	stock := Durability(features, ClassContext{Class: domain.ClassDividendStock})
	cef := Durability(features, ClassContext{Class: domain.ClassClosedEnd})

	assert.Greater(t, cef.Score, stock.Score)
}

func TestDurabilityREITUsesFFOPayout(t *testing.T) {
	features := bag(map[string]float64{
		domain.FeatFFOPayout: 0.75,
		domain.FeatCoverage:  1.25,
	})
	res := Durability(features, ClassContext{Class: domain.ClassREIT})

	var found bool
	for _, c := range res.Components {
		if c.Name == "payout_ratio" && !c.Missing {
			found = true
		}
	}
	assert.True(t, found, "REIT durability should read the FFO payout feature")
}

func TestValuationCEFUsesDiscount(t *testing.T) {
	cheap := Valuation(bag(map[string]float64{
		domain.FeatDiscount:  -0.12,
		domain.FeatDiscountZ: -1.0,
	}), ClassContext{Class: domain.ClassClosedEnd})

	rich := Valuation(bag(map[string]float64{
		domain.FeatDiscount:  0.10,
		domain.FeatDiscountZ: 2.0,
	}), ClassContext{Class: domain.ClassClosedEnd})

	assert.Greater(t, cheap.Score, rich.Score)
}

func TestValuationStockNeedsBothPERatios(t *testing.T) {
	// Relative P/E needs both the current and the historical average; with
	// one absent the component falls back to partial credit.
	res := Valuation(bag(map[string]float64{
		domain.FeatPE: 14.0,
	}), ClassContext{Class: domain.ClassDividendStock})

	assert.Contains(t, res.MissingInputs, "pe_relative")
}

func TestTechnicalVolatilityBandsAreClassAware(t *testing.T) {
	// 25% volatility is disqualifying for a bond fund, routine for a mREIT.
	features := bag(map[string]float64{domain.FeatVolatility: 0.25})

	bond := Technical(features, ClassContext{Class: domain.ClassBondFund})
	mreit := Technical(features, ClassContext{Class: domain.ClassMortgageREIT})

	assert.Greater(t, mreit.Score, bond.Score)
}

func TestTechnicalPunishesDeepDrawdown(t *testing.T) {
	calm := Technical(bag(map[string]float64{
		domain.FeatPriceVs200D: 1.02,
		domain.FeatDrawdown:    -0.05,
		domain.FeatVolatility:  0.14,
	}), ClassContext{Class: domain.ClassDividendStock})

	stressed := Technical(bag(map[string]float64{
		domain.FeatPriceVs200D: 0.80,
		domain.FeatDrawdown:    -0.45,
		domain.FeatVolatility:  0.40,
	}), ClassContext{Class: domain.ClassDividendStock})

	assert.Greater(t, calm.Score, stressed.Score)
}

func TestComponentWeightsSumToOne(t *testing.T) {
	full := bag(map[string]float64{
		domain.FeatYield:       0.04,
		domain.FeatDistRate:    0.04,
		domain.FeatDivGrowth5:  0.05,
		domain.FeatCoverage:    2.0,
		domain.FeatLeverage:    0.2,
		domain.FeatPayoutRatio: 0.5,
		domain.FeatDivStreak:   10,
		domain.FeatPriceVs200D: 1.0,
		domain.FeatDrawdown:    -0.1,
		domain.FeatVolatility:  0.15,
	})
	for name, fn := range map[string]Func{
		"income":     Income,
		"durability": Durability,
		"technical":  Technical,
	} {
		res := fn(full, ClassContext{Class: domain.ClassDividendStock})
		sum := 0.0
		for _, c := range res.Components {
			sum += c.Weight
		}
		assert.InDelta(t, 1.0, sum, 1e-9, name)
	}
}
