package domain

// Canonical feature names. The feature provider populates the bag with these
// keys; gates and sub-scorers look them up by name. Keeping the vocabulary in
// one place is what lets partial data flow through the pipeline safely.
const (
	// Universal
	FeatPrice       = "price"
	FeatADVUSD      = "avg_daily_volume_usd"
	FeatAUMUSD      = "aum_usd"
	FeatHistYears   = "history_years"
	FeatVolatility  = "volatility_1y"
	FeatPriceVs200D = "price_vs_200d" // ratio: price / 200-day moving average
	FeatDrawdown    = "drawdown_from_high"

	// Income
	FeatYield      = "yield"
	FeatDistRate   = "distribution_rate" // annualized distribution / NAV
	FeatExpense    = "expense_ratio"
	FeatDivGrowth5 = "dividend_growth_5y"
	FeatDivStreak  = "dividend_streak_years"

	// Durability
	FeatCoverage     = "coverage_ratio" // earnings/NII/FFO coverage of the payout
	FeatPayoutRatio  = "payout_ratio"
	FeatFFOPayout    = "ffo_payout_ratio"
	FeatNIICoverage  = "nii_coverage"
	FeatDebtToEBITDA = "debt_to_ebitda"
	FeatLeverage     = "leverage_ratio"
	FeatNAVTrend     = "nav_trend_1y"
	FeatBookTrend    = "book_value_trend_1y"
	FeatSpread       = "net_interest_spread"

	// Valuation
	FeatDiscount   = "discount_to_nav"
	FeatDiscountZ  = "discount_z_score"
	FeatPE         = "pe_ratio"
	FeatPE5YAvg    = "pe_ratio_5y_avg"
	FeatPFFO       = "price_to_ffo"
	FeatCallBuffer = "call_buffer_pct"

	// Option overlay / simulation inputs
	FeatPremiumCoverage = "premium_coverage" // option premium income / distribution
	FeatUpsideCap       = "upside_cap_monthly"
	FeatDuration        = "duration_years"
	FeatCreditQuality   = "credit_quality_score" // 1=CCC .. 7=AAA

	// Tax-relevant
	FeatQualifiedPct = "qualified_dividend_pct"
	FeatROCPct       = "return_of_capital_pct"

	// Labels
	LabelIssuesK1 = "issues_k1"
	LabelDomicile = "domicile"
)
