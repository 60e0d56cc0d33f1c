package gates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holdfast/yieldscore/internal/domain"
	"github.com/holdfast/yieldscore/internal/weights"
)

func passingStockBag() domain.FeatureBag {
	return domain.FeatureBag{Values: map[string]float64{
		domain.FeatYield:       0.035,
		domain.FeatCoverage:    2.0,
		domain.FeatDivStreak:   12,
		domain.FeatPayoutRatio: 0.55,
		domain.FeatADVUSD:      5_000_000,
	}}
}

func TestDividendStockGatePasses(t *testing.T) {
	r := NewRouter()
	res := r.Evaluate("JNJ", domain.ClassDividendStock, passingStockBag(), weights.DefaultSnapshot())

	assert.True(t, res.Passed)
	assert.Equal(t, "dividend_stock_gate", res.Gate)
	assert.Empty(t, res.Failures)
	assert.NotEmpty(t, res.Criteria)
}

func TestGateBoundaryValuePasses(t *testing.T) {
	r := NewRouter()
	snap := weights.DefaultSnapshot()

	bag := passingStockBag()
	bag.Values[domain.FeatYield] = 0.02       // exactly min_yield
	bag.Values[domain.FeatPayoutRatio] = 0.90 // exactly max_payout_ratio

	res := r.Evaluate("EDGE", domain.ClassDividendStock, bag, snap)
	assert.True(t, res.Passed, "values exactly at threshold must pass: %v", res.Failures)
}

func TestGateCollectsEveryFailure(t *testing.T) {
	r := NewRouter()

	bag := passingStockBag()
	bag.Values[domain.FeatYield] = 0.15      // above ceiling
	bag.Values[domain.FeatCoverage] = 0.8    // below floor
	bag.Values[domain.FeatPayoutRatio] = 1.2 // above ceiling

	res := r.Evaluate("BAD", domain.ClassDividendStock, bag, weights.DefaultSnapshot())
	require.False(t, res.Passed)
	assert.Len(t, res.Failures, 3, "all failing criteria must be reported, not just the first")
}

func TestGateMissingFeatureFailsClosed(t *testing.T) {
	r := NewRouter()

	bag := passingStockBag()
	delete(bag.Values, domain.FeatCoverage)

	res := r.Evaluate("NODATA", domain.ClassDividendStock, bag, weights.DefaultSnapshot())
	require.False(t, res.Passed)

	var missing bool
	for _, c := range res.Criteria {
		if c.Name == "dividend_coverage" {
			missing = c.Missing
		}
	}
	assert.True(t, missing, "absent feature should be marked missing and fail the criterion")
}

func TestGateMissingThresholdFailsClosed(t *testing.T) {
	r := NewRouter()
	snap := weights.DefaultSnapshot()
	delete(snap.Thresholds[domain.ClassDividendStock], "min_coverage")

	res := r.Evaluate("NOCONF", domain.ClassDividendStock, passingStockBag(), snap)
	assert.False(t, res.Passed, "missing threshold configuration must not silently pass")
}

func TestCoveredCallGate(t *testing.T) {
	r := NewRouter()
	bag := domain.FeatureBag{Values: map[string]float64{
		domain.FeatAUMUSD:          8_000_000_000,
		domain.FeatHistYears:       10,
		domain.FeatDistRate:        0.12,
		domain.FeatPremiumCoverage: 0.85,
		domain.FeatADVUSD:          60_000_000,
	}}

	res := r.Evaluate("QYLD", domain.ClassCoveredCall, bag, weights.DefaultSnapshot())
	assert.True(t, res.Passed, "failures: %v", res.Failures)
	assert.Equal(t, "covered_call_gate", res.Gate)

	bag.Values[domain.FeatDistRate] = 0.22
	res = r.Evaluate("YOLO", domain.ClassCoveredCall, bag, weights.DefaultSnapshot())
	assert.False(t, res.Passed)
}

func TestClosedEndGateDiscountBand(t *testing.T) {
	r := NewRouter()
	bag := domain.FeatureBag{Values: map[string]float64{
		domain.FeatDiscount: -0.08,
		domain.FeatCoverage: 1.0,
		domain.FeatLeverage: 0.30,
		domain.FeatADVUSD:   2_000_000,
	}}
	res := r.Evaluate("PDI", domain.ClassClosedEnd, bag, weights.DefaultSnapshot())
	assert.True(t, res.Passed, "failures: %v", res.Failures)

	// Premium richer than +5% fails.
	bag.Values[domain.FeatDiscount] = 0.09
	res = r.Evaluate("RICH", domain.ClassClosedEnd, bag, weights.DefaultSnapshot())
	assert.False(t, res.Passed)

	// Discount deeper than -25% also fails.
	bag.Values[domain.FeatDiscount] = -0.30
	res = r.Evaluate("DEEP", domain.ClassClosedEnd, bag, weights.DefaultSnapshot())
	assert.False(t, res.Passed)
}

func TestUnknownClassRoutesToUniversalGate(t *testing.T) {
	r := NewRouter()
	bag := domain.FeatureBag{Values: map[string]float64{
		domain.FeatPrice:       12.30,
		domain.FeatADVUSD:      400_000,
		domain.FeatYield:       0.07,
		domain.FeatVolatility:  0.22,
		domain.FeatPriceVs200D: 0.96,
	}}

	res := r.Evaluate("MYSTERY", domain.ClassUnknown, bag, weights.DefaultSnapshot())
	assert.Equal(t, "universal_gate", res.Gate)
	assert.True(t, res.Passed, "failures: %v", res.Failures)
}

func TestUniversalGatePriceFloor(t *testing.T) {
	r := NewRouter()
	bag := domain.FeatureBag{Values: map[string]float64{
		domain.FeatPrice:       0.45, // sub-dollar
		domain.FeatADVUSD:      900_000,
		domain.FeatYield:       0.12,
		domain.FeatVolatility:  0.50,
		domain.FeatPriceVs200D: 0.70,
	}}

	res := r.Evaluate("PENNY", domain.ClassUnknown, bag, weights.DefaultSnapshot())
	assert.False(t, res.Passed)
}

func TestUniversalGateCompleteness(t *testing.T) {
	r := NewRouter()
	bag := domain.FeatureBag{Values: map[string]float64{
		domain.FeatPrice:  20.0,
		domain.FeatADVUSD: 1_000_000,
	}}

	res := r.Evaluate("SPARSE", domain.ClassUnknown, bag, weights.DefaultSnapshot())
	require.False(t, res.Passed, "thin feature bags must not pass the universal gate")
}
