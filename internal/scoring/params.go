package scoring

import (
	"github.com/holdfast/yieldscore/internal/domain"
	"github.com/holdfast/yieldscore/internal/sim"
)

// DefaultErosionThreshold marks a path eroded when terminal NAV falls more
// than 20% below its start.
const DefaultErosionThreshold = 0.20

type classSimDefaults struct {
	expectedReturn float64
	volatility     float64
}

// Conservative total-return and volatility priors used when the feature bag
// lacks direct measurements.
var simDefaults = map[domain.AssetClass]classSimDefaults{
	domain.ClassCoveredCall:  {expectedReturn: 0.05, volatility: 0.14},
	domain.ClassMortgageREIT: {expectedReturn: 0.04, volatility: 0.30},
	domain.ClassClosedEnd:    {expectedReturn: 0.05, volatility: 0.18},
}

// DeriveSimParameters maps a security's features onto the simulation inputs.
// Only called for erosion-exposed classes; other classes never simulate.
func DeriveSimParameters(sec domain.Security) sim.Parameters {
	defaults, ok := simDefaults[sec.Class]
	if !ok {
		defaults = classSimDefaults{expectedReturn: 0.05, volatility: 0.18}
	}

	vol := defaults.volatility
	if v, ok := sec.Features.Value(domain.FeatVolatility); ok && v > 0 {
		vol = v
	}

	expected := defaults.expectedReturn
	if exp, ok := sec.Features.Value(domain.FeatExpense); ok && exp > 0 {
		expected -= exp
	}

	params := sim.DefaultParameters(expected, vol, deriveDrag(sec), DefaultErosionThreshold)

	if sec.Class == domain.ClassCoveredCall {
		params.HasOptionOverlay = true
		if capMonthly, ok := sec.Features.Value(domain.FeatUpsideCap); ok && capMonthly > 0 {
			params.UpsideCapMonthly = capMonthly
		} else {
			params.UpsideCapMonthly = 0.02
		}
	}
	return params
}

// deriveDrag estimates the monthly share of NAV the distribution leaks. A
// fully covered payout leaks nothing; the uncovered fraction of the
// distribution rate is paid out of principal.
func deriveDrag(sec domain.Security) float64 {
	rate, ok := sec.Features.Value(domain.FeatDistRate)
	if !ok {
		rate, ok = sec.Features.Value(domain.FeatYield)
	}
	if !ok || rate <= 0 {
		return 0
	}

	cov, covOK := coverageFor(sec)
	if !covOK {
		// Unknown coverage on an erosion-exposed class: assume a modest
		// shortfall rather than none.
		cov = 0.85
	}
	if cov >= 1 {
		return 0
	}
	if cov < 0 {
		cov = 0
	}
	return rate * (1 - cov) / 12
}

func coverageFor(sec domain.Security) (float64, bool) {
	if sec.Class == domain.ClassCoveredCall {
		if v, ok := sec.Features.Value(domain.FeatPremiumCoverage); ok {
			return v, true
		}
	}
	if v, ok := sec.Features.Value(domain.FeatCoverage); ok {
		return v, true
	}
	if v, ok := sec.Features.Value(domain.FeatNIICoverage); ok {
		return v, true
	}
	return 0, false
}
