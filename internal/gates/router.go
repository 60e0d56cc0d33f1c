package gates

import (
	"github.com/holdfast/yieldscore/internal/domain"
	"github.com/holdfast/yieldscore/internal/weights"
)

// Router dispatches a security to its class-specific quality gate. Dispatch
// is an explicit lookup table over the fixed AssetClass enumeration with one
// fallback variant, so the routing is exhaustive and statically checkable.
// The router is stateless and safe for concurrent use across tickers.
type Router struct {
	gates map[domain.AssetClass]gate
}

type gate struct {
	name     string
	criteria []CriterionSpec
}

// NewRouter builds the router with every class gate registered.
func NewRouter() *Router {
	r := &Router{gates: make(map[domain.AssetClass]gate)}

	r.register(domain.ClassDividendStock, "dividend_stock_gate", []CriterionSpec{
		{Name: "yield_floor", Feature: domain.FeatYield, Threshold: "min_yield", Op: domain.OpMin},
		{Name: "yield_ceiling", Feature: domain.FeatYield, Threshold: "max_yield", Op: domain.OpMax},
		{Name: "dividend_coverage", Feature: domain.FeatCoverage, Threshold: "min_coverage", Op: domain.OpMin},
		{Name: "dividend_streak", Feature: domain.FeatDivStreak, Threshold: "min_streak_years", Op: domain.OpMin},
		{Name: "payout_ceiling", Feature: domain.FeatPayoutRatio, Threshold: "max_payout_ratio", Op: domain.OpMax},
		{Name: "liquidity", Feature: domain.FeatADVUSD, Threshold: "min_adv_usd", Op: domain.OpMin},
	})

	r.register(domain.ClassDividendETF, "dividend_etf_gate", []CriterionSpec{
		{Name: "aum_floor", Feature: domain.FeatAUMUSD, Threshold: "min_aum_usd", Op: domain.OpMin},
		{Name: "track_record", Feature: domain.FeatHistYears, Threshold: "min_history_years", Op: domain.OpMin},
		{Name: "expense_ceiling", Feature: domain.FeatExpense, Threshold: "max_expense_ratio", Op: domain.OpMax},
		{Name: "liquidity", Feature: domain.FeatADVUSD, Threshold: "min_adv_usd", Op: domain.OpMin},
	})

	r.register(domain.ClassCoveredCall, "covered_call_gate", []CriterionSpec{
		{Name: "aum_floor", Feature: domain.FeatAUMUSD, Threshold: "min_aum_usd", Op: domain.OpMin},
		{Name: "track_record", Feature: domain.FeatHistYears, Threshold: "min_history_years", Op: domain.OpMin},
		{Name: "distribution_sanity", Feature: domain.FeatDistRate, Threshold: "max_distribution_rate", Op: domain.OpMax},
		{Name: "premium_coverage", Feature: domain.FeatPremiumCoverage, Threshold: "min_premium_coverage", Op: domain.OpMin},
		{Name: "liquidity", Feature: domain.FeatADVUSD, Threshold: "min_adv_usd", Op: domain.OpMin},
	})

	r.register(domain.ClassClosedEnd, "closed_end_gate", []CriterionSpec{
		{Name: "discount_floor", Feature: domain.FeatDiscount, Threshold: "min_discount", Op: domain.OpMin},
		{Name: "premium_ceiling", Feature: domain.FeatDiscount, Threshold: "max_premium", Op: domain.OpMax},
		{Name: "distribution_coverage", Feature: domain.FeatCoverage, Threshold: "min_coverage", Op: domain.OpMin},
		{Name: "leverage_ceiling", Feature: domain.FeatLeverage, Threshold: "max_leverage", Op: domain.OpMax},
		{Name: "liquidity", Feature: domain.FeatADVUSD, Threshold: "min_adv_usd", Op: domain.OpMin},
	})

	r.register(domain.ClassREIT, "reit_gate", []CriterionSpec{
		{Name: "ffo_payout_ceiling", Feature: domain.FeatFFOPayout, Threshold: "max_ffo_payout", Op: domain.OpMax},
		{Name: "leverage_ceiling", Feature: domain.FeatDebtToEBITDA, Threshold: "max_debt_to_ebitda", Op: domain.OpMax},
		{Name: "coverage_floor", Feature: domain.FeatCoverage, Threshold: "min_coverage", Op: domain.OpMin},
		{Name: "liquidity", Feature: domain.FeatADVUSD, Threshold: "min_adv_usd", Op: domain.OpMin},
	})

	r.register(domain.ClassMortgageREIT, "mortgage_reit_gate", []CriterionSpec{
		{Name: "spread_floor", Feature: domain.FeatSpread, Threshold: "min_spread", Op: domain.OpMin},
		{Name: "book_value_trend", Feature: domain.FeatBookTrend, Threshold: "min_book_trend", Op: domain.OpMin},
		{Name: "coverage_floor", Feature: domain.FeatCoverage, Threshold: "min_coverage", Op: domain.OpMin},
		{Name: "liquidity", Feature: domain.FeatADVUSD, Threshold: "min_adv_usd", Op: domain.OpMin},
	})

	r.register(domain.ClassBDC, "bdc_gate", []CriterionSpec{
		{Name: "nii_coverage", Feature: domain.FeatNIICoverage, Threshold: "min_nii_coverage", Op: domain.OpMin},
		{Name: "nav_trend", Feature: domain.FeatNAVTrend, Threshold: "min_nav_trend", Op: domain.OpMin},
		{Name: "leverage_ceiling", Feature: domain.FeatLeverage, Threshold: "max_leverage", Op: domain.OpMax},
		{Name: "liquidity", Feature: domain.FeatADVUSD, Threshold: "min_adv_usd", Op: domain.OpMin},
	})

	r.register(domain.ClassBondFund, "bond_fund_gate", []CriterionSpec{
		{Name: "duration_ceiling", Feature: domain.FeatDuration, Threshold: "max_duration", Op: domain.OpMax},
		{Name: "credit_floor", Feature: domain.FeatCreditQuality, Threshold: "min_credit_quality", Op: domain.OpMin},
		{Name: "expense_ceiling", Feature: domain.FeatExpense, Threshold: "max_expense_ratio", Op: domain.OpMax},
		{Name: "liquidity", Feature: domain.FeatADVUSD, Threshold: "min_adv_usd", Op: domain.OpMin},
	})

	r.register(domain.ClassPreferred, "preferred_gate", []CriterionSpec{
		{Name: "call_buffer", Feature: domain.FeatCallBuffer, Threshold: "min_call_buffer", Op: domain.OpMin},
		{Name: "coverage_floor", Feature: domain.FeatCoverage, Threshold: "min_coverage", Op: domain.OpMin},
		{Name: "liquidity", Feature: domain.FeatADVUSD, Threshold: "min_adv_usd", Op: domain.OpMin},
	})

	return r
}

func (r *Router) register(class domain.AssetClass, name string, criteria []CriterionSpec) {
	r.gates[class] = gate{name: name, criteria: criteria}
}

// Evaluate selects the class gate (or the universal fallback for classes not
// in the table) and runs every criterion in order. The gate passes only when
// all criteria pass; on failure the caller stops the run before simulation
// and sub-scoring.
func (r *Router) Evaluate(ticker string, class domain.AssetClass, features domain.FeatureBag, snap *weights.Snapshot) domain.GateResult {
	g, ok := r.gates[class]
	if !ok {
		return r.evaluateUniversal(ticker, class, features, snap)
	}

	result := domain.GateResult{Gate: g.name, Passed: true}
	for _, spec := range g.criteria {
		c := spec.evaluate(class, features, snap)
		result.Criteria = append(result.Criteria, c)
		if !c.Passed {
			result.Passed = false
			result.Failures = append(result.Failures, failureDetail(c))
		}
	}
	return result
}
