package subscore

import (
	"github.com/holdfast/yieldscore/internal/domain"
)

// Technical scores price behavior: trend position, drawdown from the recent
// high, and realized volatility judged against the class's normal range. It
// carries the smallest default weight and exists mostly to catch securities
// whose fundamentals have not caught up with a broken chart.
func Technical(features domain.FeatureBag, ctx ClassContext) Result {
	return combine([]Component{
		component("trend_position", 0.40, features, domain.FeatPriceVs200D, NewCurve(
			CurvePoint{X: 0.70, Y: 5},
			CurvePoint{X: 0.85, Y: 40},
			CurvePoint{X: 0.95, Y: 80},
			CurvePoint{X: 1.00, Y: 95},
			CurvePoint{X: 1.10, Y: 100},
			CurvePoint{X: 1.25, Y: 75},
		)),
		component("drawdown", 0.30, features, domain.FeatDrawdown, NewCurve(
			CurvePoint{X: -0.50, Y: 0},
			CurvePoint{X: -0.30, Y: 30},
			CurvePoint{X: -0.15, Y: 70},
			CurvePoint{X: -0.05, Y: 95},
			CurvePoint{X: 0.00, Y: 100},
		)),
		component("volatility", 0.30, features, domain.FeatVolatility, volatilityCurve(ctx.Class)),
	})
}

// volatilityCurve sets the acceptable realized-volatility band per class.
// Leveraged credit vehicles run hotter than bond funds by construction, so
// the same reading is judged on different scales.
func volatilityCurve(class domain.AssetClass) Curve {
	switch class {
	case domain.ClassBondFund, domain.ClassPreferred:
		return NewCurve(
			CurvePoint{X: 0.03, Y: 100},
			CurvePoint{X: 0.07, Y: 90},
			CurvePoint{X: 0.12, Y: 60},
			CurvePoint{X: 0.18, Y: 25},
			CurvePoint{X: 0.25, Y: 5},
		)
	case domain.ClassMortgageREIT, domain.ClassBDC:
		return NewCurve(
			CurvePoint{X: 0.12, Y: 100},
			CurvePoint{X: 0.20, Y: 90},
			CurvePoint{X: 0.30, Y: 60},
			CurvePoint{X: 0.45, Y: 25},
			CurvePoint{X: 0.60, Y: 5},
		)
	default:
		return NewCurve(
			CurvePoint{X: 0.08, Y: 100},
			CurvePoint{X: 0.15, Y: 90},
			CurvePoint{X: 0.22, Y: 65},
			CurvePoint{X: 0.35, Y: 30},
			CurvePoint{X: 0.50, Y: 5},
		)
	}
}
