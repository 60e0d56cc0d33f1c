package composite

import (
	"github.com/holdfast/yieldscore/internal/domain"
	"github.com/holdfast/yieldscore/internal/weights"
)

// Aggregate combines the four sub-scores with the class weight set into the
// pre-penalty composite on the 0-100 scale. It is a plain weighted sum: the
// sum-to-1.0 invariant is enforced upstream by the accessor, and a weight set
// that routes weight away from an inapplicable component does so itself.
// There is no implicit renormalization here.
func Aggregate(sub domain.SubScores, ws weights.WeightSet) float64 {
	score := sub.Income*ws.Weights[weights.Income] +
		sub.Durability*ws.Weights[weights.Durability] +
		sub.Valuation*ws.Weights[weights.Valuation] +
		sub.Technical*ws.Weights[weights.Technical]

	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
