package gates

import (
	"fmt"

	"github.com/holdfast/yieldscore/internal/domain"
	"github.com/holdfast/yieldscore/internal/weights"
)

// completenessInputs is the feature set the universal gate samples to judge
// whether enough data exists to score anything at all.
var completenessInputs = []string{
	domain.FeatPrice,
	domain.FeatADVUSD,
	domain.FeatYield,
	domain.FeatCoverage,
	domain.FeatVolatility,
	domain.FeatPriceVs200D,
}

// evaluateUniversal is the conservative class-agnostic fallback for
// unrecognized classes: minimum liquidity, a positive price, and a minimum
// data completeness ratio. It exists so an unexpected tag degrades to a
// strict gate instead of skipping gating entirely.
func (r *Router) evaluateUniversal(ticker string, class domain.AssetClass, features domain.FeatureBag, snap *weights.Snapshot) domain.GateResult {
	result := domain.GateResult{Gate: "universal_gate", Passed: true}

	specs := []CriterionSpec{
		{Name: "liquidity", Feature: domain.FeatADVUSD, Threshold: "min_adv_usd", Op: domain.OpMin},
		{Name: "price_floor", Feature: domain.FeatPrice, Threshold: "min_price", Op: domain.OpMin},
	}
	for _, spec := range specs {
		c := spec.evaluate(domain.ClassUnknown, features, snap)
		result.Criteria = append(result.Criteria, c)
		if !c.Passed {
			result.Passed = false
			result.Failures = append(result.Failures, failureDetail(c))
		}
	}

	// Completeness is synthesized from the bag rather than read out of it.
	minCompleteness, ok := snap.Threshold(domain.ClassUnknown, "min_completeness")
	completeness := features.Completeness(completenessInputs)
	c := domain.CriterionResult{
		Name:      "data_completeness",
		Observed:  completeness,
		Threshold: minCompleteness,
		Op:        domain.OpMin,
		Passed:    ok && completeness >= minCompleteness,
		Missing:   !ok,
	}
	result.Criteria = append(result.Criteria, c)
	if !c.Passed {
		result.Passed = false
		result.Failures = append(result.Failures,
			fmt.Sprintf("data_completeness: %.2f below required %.2f", completeness, minCompleteness))
	}

	return result
}
