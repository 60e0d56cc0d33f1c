package subscore

import (
	"github.com/holdfast/yieldscore/internal/domain"
)

// Durability scores whether the payout survives: coverage, leverage, payout
// discipline, and the track record or asset-value trend appropriate to the
// class. This is the component the VETO floor watches.
func Durability(features domain.FeatureBag, ctx ClassContext) Result {
	return combine([]Component{
		component("coverage", 0.40, features, domain.FeatCoverage, coverageCurve(ctx.Class)),
		leverageComponent(features, ctx),
		component("payout_ratio", 0.20, features, payoutFeature(ctx.Class), payoutCurve(ctx.Class)),
		trackRecordComponent(features, ctx),
	})
}

// coverageCurve encodes the class-specific safe band for distribution
// coverage. A debt-servicing vehicle running at 1.0x is living on the edge;
// an equity CEF at 1.0x is doing its job.
func coverageCurve(class domain.AssetClass) Curve {
	switch class {
	case domain.ClassClosedEnd, domain.ClassCoveredCall:
		return NewCurve(
			CurvePoint{X: 0.70, Y: 5},
			CurvePoint{X: 0.90, Y: 45},
			CurvePoint{X: 1.00, Y: 85},
			CurvePoint{X: 1.10, Y: 100},
			CurvePoint{X: 1.40, Y: 95},
		)
	case domain.ClassBDC, domain.ClassMortgageREIT:
		return NewCurve(
			CurvePoint{X: 0.80, Y: 5},
			CurvePoint{X: 1.00, Y: 50},
			CurvePoint{X: 1.10, Y: 85},
			CurvePoint{X: 1.25, Y: 100},
			CurvePoint{X: 1.60, Y: 95},
		)
	default:
		return NewCurve(
			CurvePoint{X: 0.90, Y: 5},
			CurvePoint{X: 1.20, Y: 50},
			CurvePoint{X: 1.50, Y: 85},
			CurvePoint{X: 2.00, Y: 100},
			CurvePoint{X: 4.00, Y: 95},
		)
	}
}

// leverageComponent reads the leverage input appropriate to the class: REITs
// report debt/EBITDA, funds and BDCs report a leverage ratio.
func leverageComponent(features domain.FeatureBag, ctx ClassContext) Component {
	if ctx.Class == domain.ClassREIT {
		return component("leverage", 0.20, features, domain.FeatDebtToEBITDA, NewCurve(
			CurvePoint{X: 3.0, Y: 100},
			CurvePoint{X: 5.0, Y: 85},
			CurvePoint{X: 6.5, Y: 55},
			CurvePoint{X: 8.0, Y: 20},
			CurvePoint{X: 10.0, Y: 0},
		))
	}
	curve := NewCurve(
		CurvePoint{X: 0.00, Y: 100},
		CurvePoint{X: 0.25, Y: 90},
		CurvePoint{X: 0.40, Y: 65},
		CurvePoint{X: 0.60, Y: 30},
		CurvePoint{X: 0.80, Y: 5},
	)
	if ctx.Class == domain.ClassBDC {
		// Regulatory leverage for BDCs runs to 2:1; the safe band is wider.
		curve = NewCurve(
			CurvePoint{X: 0.50, Y: 100},
			CurvePoint{X: 1.00, Y: 90},
			CurvePoint{X: 1.25, Y: 65},
			CurvePoint{X: 1.60, Y: 30},
			CurvePoint{X: 2.00, Y: 5},
		)
	}
	return component("leverage", 0.20, features, domain.FeatLeverage, curve)
}

func payoutFeature(class domain.AssetClass) string {
	if class == domain.ClassREIT {
		return domain.FeatFFOPayout
	}
	return domain.FeatPayoutRatio
}

func payoutCurve(class domain.AssetClass) Curve {
	if class == domain.ClassREIT {
		// FFO payout: REITs are expected to pay out most of FFO.
		return NewCurve(
			CurvePoint{X: 0.60, Y: 95},
			CurvePoint{X: 0.75, Y: 100},
			CurvePoint{X: 0.90, Y: 75},
			CurvePoint{X: 1.00, Y: 35},
			CurvePoint{X: 1.15, Y: 5},
		)
	}
	return NewCurve(
		CurvePoint{X: 0.30, Y: 95},
		CurvePoint{X: 0.50, Y: 100},
		CurvePoint{X: 0.70, Y: 80},
		CurvePoint{X: 0.90, Y: 45},
		CurvePoint{X: 1.05, Y: 10},
	)
}

// trackRecordComponent rewards a long dividend streak for payers and a
// stable asset base for NAV vehicles.
func trackRecordComponent(features domain.FeatureBag, ctx ClassContext) Component {
	switch ctx.Class {
	case domain.ClassBDC:
		return component("nav_trend", 0.20, features, domain.FeatNAVTrend, trendCurve())
	case domain.ClassMortgageREIT:
		return component("book_value_trend", 0.20, features, domain.FeatBookTrend, trendCurve())
	case domain.ClassClosedEnd, domain.ClassCoveredCall, domain.ClassBondFund:
		return component("nav_trend", 0.20, features, domain.FeatNAVTrend, trendCurve())
	default:
		return component("dividend_streak", 0.20, features, domain.FeatDivStreak, NewCurve(
			CurvePoint{X: 0, Y: 20},
			CurvePoint{X: 5, Y: 60},
			CurvePoint{X: 10, Y: 80},
			CurvePoint{X: 20, Y: 95},
			CurvePoint{X: 25, Y: 100},
		))
	}
}

func trendCurve() Curve {
	return NewCurve(
		CurvePoint{X: -0.20, Y: 0},
		CurvePoint{X: -0.10, Y: 25},
		CurvePoint{X: -0.03, Y: 60},
		CurvePoint{X: 0.00, Y: 80},
		CurvePoint{X: 0.05, Y: 100},
	)
}
