package sim

import (
	"github.com/holdfast/yieldscore/internal/domain"
)

// Probability bands for the five risk tiers. Boundaries belong to the higher
// tier: a probability of exactly 0.05 is low, not minimal.
const (
	bandMinimal  = 0.05
	bandLow      = 0.10
	bandModerate = 0.15
	bandElevated = 0.25
)

// MaxPenaltyPoints caps the erosion penalty contribution regardless of tier.
const MaxPenaltyPoints = 20.0

// TierFor maps an erosion probability to its discrete risk tier.
func TierFor(probability float64) domain.RiskTier {
	switch {
	case probability < bandMinimal:
		return domain.TierMinimal
	case probability < bandLow:
		return domain.TierLow
	case probability < bandModerate:
		return domain.TierModerate
	case probability < bandElevated:
		return domain.TierElevated
	default:
		return domain.TierSevere
	}
}

// PenaltyFor maps a risk tier to its fixed penalty-point deduction.
func PenaltyFor(tier domain.RiskTier) float64 {
	switch tier {
	case domain.TierMinimal:
		return 0
	case domain.TierLow:
		return 3
	case domain.TierModerate:
		return 8
	case domain.TierElevated:
		return 15
	default:
		return MaxPenaltyPoints
	}
}
