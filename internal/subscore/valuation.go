package subscore

import (
	"math"

	"github.com/holdfast/yieldscore/internal/domain"
)

// Valuation scores whether the current price is a reasonable entry for the
// class. Each class has its own natural yardstick: CEFs trade on discount to
// NAV, REITs on price/FFO, common stocks on earnings multiples relative to
// their own history.
func Valuation(features domain.FeatureBag, ctx ClassContext) Result {
	switch ctx.Class {
	case domain.ClassClosedEnd:
		return combine([]Component{
			component("discount", 0.55, features, domain.FeatDiscount, NewCurve(
				CurvePoint{X: -0.20, Y: 70}, // very deep discounts flag trouble
				CurvePoint{X: -0.12, Y: 100},
				CurvePoint{X: -0.05, Y: 85},
				CurvePoint{X: 0.00, Y: 60},
				CurvePoint{X: 0.05, Y: 30},
				CurvePoint{X: 0.15, Y: 0},
			)),
			component("discount_z", 0.45, features, domain.FeatDiscountZ, NewCurve(
				CurvePoint{X: -2.5, Y: 100},
				CurvePoint{X: -1.0, Y: 85},
				CurvePoint{X: 0.0, Y: 55},
				CurvePoint{X: 1.0, Y: 30},
				CurvePoint{X: 2.5, Y: 5},
			)),
		})
	case domain.ClassREIT:
		return combine([]Component{
			component("price_to_ffo", 0.60, features, domain.FeatPFFO, NewCurve(
				CurvePoint{X: 8, Y: 95},
				CurvePoint{X: 12, Y: 100},
				CurvePoint{X: 16, Y: 75},
				CurvePoint{X: 20, Y: 45},
				CurvePoint{X: 28, Y: 10},
			)),
			component("price_vs_trend", 0.40, features, domain.FeatPriceVs200D, priceVsTrendCurve()),
		})
	case domain.ClassPreferred:
		return combine([]Component{
			component("call_buffer", 0.60, features, domain.FeatCallBuffer, NewCurve(
				CurvePoint{X: -0.05, Y: 10},
				CurvePoint{X: 0.00, Y: 50},
				CurvePoint{X: 0.03, Y: 85},
				CurvePoint{X: 0.08, Y: 100},
			)),
			component("price_vs_trend", 0.40, features, domain.FeatPriceVs200D, priceVsTrendCurve()),
		})
	case domain.ClassDividendStock:
		return combine([]Component{
			peRelativeComponent(features),
			component("price_vs_trend", 0.40, features, domain.FeatPriceVs200D, priceVsTrendCurve()),
		})
	default:
		// Funds and remaining classes: trend position plus expense drag.
		return combine([]Component{
			component("price_vs_trend", 0.60, features, domain.FeatPriceVs200D, priceVsTrendCurve()),
			component("expense_ratio", 0.40, features, domain.FeatExpense, NewCurve(
				CurvePoint{X: 0.001, Y: 100},
				CurvePoint{X: 0.004, Y: 90},
				CurvePoint{X: 0.008, Y: 70},
				CurvePoint{X: 0.012, Y: 45},
				CurvePoint{X: 0.020, Y: 10},
			)),
		})
	}
}

// peRelativeComponent scores the earnings multiple against the stock's own
// five-year average; both inputs must be present for a real reading.
func peRelativeComponent(features domain.FeatureBag) Component {
	pe, okPE := features.Value(domain.FeatPE)
	avg, okAvg := features.Value(domain.FeatPE5YAvg)
	if !okPE || !okAvg || avg <= 0 || pe <= 0 {
		return Component{Name: "pe_relative", Score: PartialCreditScore, Weight: 0.60, Missing: true}
	}
	ratio := pe / avg
	if math.IsNaN(ratio) || math.IsInf(ratio, 0) {
		return Component{Name: "pe_relative", Score: PartialCreditScore, Weight: 0.60, Missing: true}
	}
	curve := NewCurve(
		CurvePoint{X: 0.60, Y: 100},
		CurvePoint{X: 0.85, Y: 90},
		CurvePoint{X: 1.00, Y: 70},
		CurvePoint{X: 1.20, Y: 45},
		CurvePoint{X: 1.50, Y: 15},
	)
	return Component{Name: "pe_relative", Score: curve.Score(ratio), Weight: 0.60}
}

func priceVsTrendCurve() Curve {
	return NewCurve(
		CurvePoint{X: 0.75, Y: 25}, // far below trend: falling knife
		CurvePoint{X: 0.90, Y: 70},
		CurvePoint{X: 0.97, Y: 100},
		CurvePoint{X: 1.05, Y: 85},
		CurvePoint{X: 1.15, Y: 55},
		CurvePoint{X: 1.30, Y: 25},
	)
}
