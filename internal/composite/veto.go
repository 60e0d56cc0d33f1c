package composite

import (
	"fmt"
	"strings"

	"github.com/holdfast/yieldscore/internal/domain"
)

const (
	// ErosionVetoCeiling trips the override when the simulated probability of
	// eroding past the threshold at the horizon exceeds it.
	ErosionVetoCeiling = 0.25

	// CoverageWindowMin is the minimum number of trailing coverage
	// observations required before the sustained-failure trigger can fire.
	CoverageWindowMin = 4

	// DurabilityVetoFloor trips the override when the Durability sub-score
	// falls below it.
	DurabilityVetoFloor = 20.0
)

// VetoInput gathers everything the trip-wires inspect. The veto runs
// strictly after the composite is complete so sub-scores stay visible to
// downstream analytics even when the security is zeroed.
type VetoInput struct {
	PostPenalty     float64
	Durability      float64
	Erosion         *domain.ErosionResult
	CoverageHistory []float64 // trailing coverage observations, oldest first
}

// CheckVeto evaluates the three independent trigger families. Any one is
// sufficient; every trigger that fired is recorded in the reason string. A
// triggered veto forces the emitted score to exactly zero; there is no
// partial outcome.
func CheckVeto(in VetoInput) domain.VetoResult {
	var reasons []string

	if in.Erosion != nil && in.Erosion.Probability > ErosionVetoCeiling {
		reasons = append(reasons, fmt.Sprintf(
			"NAV erosion probability %.1f%% exceeds %.0f%% ceiling at %d months",
			in.Erosion.Probability*100, ErosionVetoCeiling*100, in.Erosion.HorizonMonths))
	}

	if n := len(in.CoverageHistory); n >= CoverageWindowMin {
		allBelow := true
		for _, cov := range in.CoverageHistory {
			if cov >= 1.0 {
				allBelow = false
				break
			}
		}
		if allBelow {
			reasons = append(reasons, fmt.Sprintf(
				"distribution coverage below 1.0x for all %d trailing observations", n))
		}
	}

	if in.Durability < DurabilityVetoFloor {
		reasons = append(reasons, fmt.Sprintf(
			"durability score %.1f below %.0f floor", in.Durability, DurabilityVetoFloor))
	}

	if len(reasons) == 0 {
		return domain.VetoResult{Triggered: false, Score: in.PostPenalty}
	}
	return domain.VetoResult{
		Triggered: true,
		Reason:    strings.Join(reasons, "; "),
		Score:     0,
	}
}
