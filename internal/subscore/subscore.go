package subscore

import (
	"github.com/holdfast/yieldscore/internal/domain"
)

// PartialCreditScore is awarded to a sub-component whose input is absent.
// Half credit keeps incomplete-but-not-absent data from zeroing a security
// while still costing it ground against fully documented peers.
const PartialCreditScore = 50.0

// ClassContext carries the asset class into a sub-scorer so the same nominal
// input can be judged against class-appropriate bounds.
type ClassContext struct {
	Class domain.AssetClass
}

// Component is one weighted piece of a sub-score.
type Component struct {
	Name    string  `json:"name"`
	Score   float64 `json:"score"`  // 0-100
	Weight  float64 `json:"weight"` // within the sub-score, sums to 1.0
	Missing bool    `json:"missing,omitempty"`
}

// Result is the outcome of one sub-scorer: a 0-100 score with per-component
// attribution and the list of inputs that received partial credit.
type Result struct {
	Score         float64     `json:"score"`
	Components    []Component `json:"components"`
	MissingInputs []string    `json:"missing_inputs,omitempty"`
}

// Func is the contract every sub-scorer satisfies: a pure function from the
// feature snapshot and class context to a bounded score.
type Func func(features domain.FeatureBag, ctx ClassContext) Result

// combine folds weighted components into a Result, collecting missing-input
// names along the way.
func combine(components []Component) Result {
	res := Result{Components: components}
	for _, c := range components {
		res.Score += c.Score * c.Weight
		if c.Missing {
			res.MissingInputs = append(res.MissingInputs, c.Name)
		}
	}
	res.Score = clampScore(res.Score)
	return res
}

// component evaluates one input through its zone curve, granting partial
// credit when the feature is absent.
func component(name string, weight float64, features domain.FeatureBag, feat string, curve Curve) Component {
	v, ok := features.Value(feat)
	if !ok {
		return Component{Name: name, Score: PartialCreditScore, Weight: weight, Missing: true}
	}
	return Component{Name: name, Score: curve.Score(v), Weight: weight}
}

func clampScore(s float64) float64 {
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}
