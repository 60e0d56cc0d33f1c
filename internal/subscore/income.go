package subscore

import (
	"github.com/holdfast/yieldscore/internal/domain"
)

// Income scores how much the security pays and whether the payout level is
// sane for its class. A yield that is too rich for the class scores worse
// than a modest one: in this universe an outlier yield is usually a warning,
// not a gift.
func Income(features domain.FeatureBag, ctx ClassContext) Result {
	return combine([]Component{
		component("yield", 0.50, features, domain.FeatYield, yieldCurve(ctx.Class)),
		component("distribution_rate", 0.25, features, domain.FeatDistRate, distRateCurve(ctx.Class)),
		component("dividend_growth", 0.25, features, domain.FeatDivGrowth5, NewCurve(
			CurvePoint{X: -0.10, Y: 10},
			CurvePoint{X: 0.00, Y: 55},
			CurvePoint{X: 0.03, Y: 80},
			CurvePoint{X: 0.07, Y: 100},
			CurvePoint{X: 0.15, Y: 90},
			CurvePoint{X: 0.25, Y: 70},
		)),
	})
}

// yieldCurve returns the class-appropriate yield zone. A covered-call fund
// living at 9% is normal; a common stock at 9% is usually distressed.
func yieldCurve(class domain.AssetClass) Curve {
	switch class {
	case domain.ClassCoveredCall:
		return NewCurve(
			CurvePoint{X: 0.03, Y: 20},
			CurvePoint{X: 0.06, Y: 75},
			CurvePoint{X: 0.08, Y: 100},
			CurvePoint{X: 0.12, Y: 85},
			CurvePoint{X: 0.15, Y: 45},
			CurvePoint{X: 0.20, Y: 10},
		)
	case domain.ClassMortgageREIT, domain.ClassBDC:
		return NewCurve(
			CurvePoint{X: 0.04, Y: 30},
			CurvePoint{X: 0.08, Y: 85},
			CurvePoint{X: 0.11, Y: 100},
			CurvePoint{X: 0.14, Y: 70},
			CurvePoint{X: 0.18, Y: 25},
		)
	case domain.ClassClosedEnd, domain.ClassBondFund, domain.ClassPreferred:
		return NewCurve(
			CurvePoint{X: 0.02, Y: 25},
			CurvePoint{X: 0.05, Y: 80},
			CurvePoint{X: 0.07, Y: 100},
			CurvePoint{X: 0.10, Y: 75},
			CurvePoint{X: 0.14, Y: 30},
		)
	default: // dividend stocks, dividend ETFs, REITs
		return NewCurve(
			CurvePoint{X: 0.01, Y: 30},
			CurvePoint{X: 0.025, Y: 75},
			CurvePoint{X: 0.04, Y: 100},
			CurvePoint{X: 0.06, Y: 85},
			CurvePoint{X: 0.08, Y: 55},
			CurvePoint{X: 0.12, Y: 15},
		)
	}
}

// distRateCurve penalizes distribution rates that outrun what the class can
// structurally earn back.
func distRateCurve(class domain.AssetClass) Curve {
	switch class {
	case domain.ClassCoveredCall:
		return NewCurve(
			CurvePoint{X: 0.06, Y: 100},
			CurvePoint{X: 0.10, Y: 90},
			CurvePoint{X: 0.13, Y: 60},
			CurvePoint{X: 0.16, Y: 25},
			CurvePoint{X: 0.20, Y: 5},
		)
	case domain.ClassClosedEnd:
		return NewCurve(
			CurvePoint{X: 0.05, Y: 100},
			CurvePoint{X: 0.08, Y: 85},
			CurvePoint{X: 0.11, Y: 50},
			CurvePoint{X: 0.15, Y: 15},
		)
	default:
		return NewCurve(
			CurvePoint{X: 0.04, Y: 100},
			CurvePoint{X: 0.07, Y: 85},
			CurvePoint{X: 0.10, Y: 55},
			CurvePoint{X: 0.14, Y: 20},
		)
	}
}
