package gates

import (
	"fmt"

	"github.com/holdfast/yieldscore/internal/domain"
	"github.com/holdfast/yieldscore/internal/weights"
)

// CriterionSpec declares one gate criterion: which feature it reads, which
// named threshold it compares against, and the documented inequality. A value
// exactly at the threshold passes: OpMin is >=, OpMax is <=.
type CriterionSpec struct {
	Name      string
	Feature   string
	Threshold string
	Op        domain.CriterionOp
}

// evaluate runs one criterion against the feature bag. A missing feature
// fails the criterion: the gate stage grants no partial credit, that belongs
// to the sub-scorers. A missing threshold likewise fails closed, since an
// unverifiable safety check must not pass silently.
func (cs CriterionSpec) evaluate(class domain.AssetClass, features domain.FeatureBag, snap *weights.Snapshot) domain.CriterionResult {
	result := domain.CriterionResult{
		Name: cs.Name,
		Op:   cs.Op,
	}

	threshold, ok := snap.Threshold(class, cs.Threshold)
	if !ok {
		result.Missing = true
		return result
	}
	result.Threshold = threshold

	observed, ok := features.Value(cs.Feature)
	if !ok {
		result.Missing = true
		return result
	}
	result.Observed = observed

	switch cs.Op {
	case domain.OpMin:
		result.Passed = observed >= threshold
	case domain.OpMax:
		result.Passed = observed <= threshold
	}
	return result
}

func failureDetail(c domain.CriterionResult) string {
	if c.Missing {
		return fmt.Sprintf("%s: required input missing", c.Name)
	}
	return fmt.Sprintf("%s: %.4g %s %.4g failed", c.Name, c.Observed, c.Op, c.Threshold)
}
