package composite

import (
	"fmt"
	"math"

	"github.com/holdfast/yieldscore/internal/domain"
)

const (
	// MaxTotalPenalty caps the combined deduction. No pile-up of penalties
	// can zero a score on its own; only the VETO engine does that.
	MaxTotalPenalty = 50.0

	// NegativeSentimentThreshold is the floor below which an external
	// sentiment signal starts costing points. Anything above it, including
	// strongly positive sentiment, contributes exactly nothing: outside
	// optimism never inflates a score.
	NegativeSentimentThreshold = -0.3

	// MaxSentimentPenalty bounds what one external signal can deduct.
	MaxSentimentPenalty = 10.0
)

// SentimentSignal is one external opinion: score in [-1, 1], magnitude in
// [0, 1] expressing the source's conviction/volume.
type SentimentSignal struct {
	Source    string  `json:"source"`
	Score     float64 `json:"score"`
	Magnitude float64 `json:"magnitude"`
}

// DeriveFlags computes internal risk flags from already-scored state. Each
// flag carries its fixed deduction.
func DeriveFlags(sub domain.SubScores, erosion *domain.ErosionResult, features domain.FeatureBag) []domain.RiskFlag {
	var flags []domain.RiskFlag

	if erosion != nil && erosion.PenaltyPoints > 0 {
		flags = append(flags, domain.RiskFlag{
			Name:    "nav_erosion_" + erosion.Tier.String(),
			Penalty: erosion.PenaltyPoints,
			Detail:  fmt.Sprintf("%.1f%% probability of eroding past threshold at %d months", erosion.Probability*100, erosion.HorizonMonths),
		})
	}

	if cov, ok := features.Value(domain.FeatCoverage); ok && cov < 1.0 {
		flags = append(flags, domain.RiskFlag{
			Name:    "coverage_below_1x",
			Penalty: 10,
			Detail:  fmt.Sprintf("distribution coverage %.2fx", cov),
		})
	}

	if vol, ok := features.Value(domain.FeatVolatility); ok && vol > 0.45 {
		flags = append(flags, domain.RiskFlag{
			Name:    "extreme_volatility",
			Penalty: 5,
			Detail:  fmt.Sprintf("realized volatility %.0f%%", vol*100),
		})
	}

	if disc, ok := features.Value(domain.FeatDiscount); ok && disc > 0.10 {
		flags = append(flags, domain.RiskFlag{
			Name:    "rich_premium_to_nav",
			Penalty: 5,
			Detail:  fmt.Sprintf("trading %.1f%% above NAV", disc*100),
		})
	}

	// A scorecard this lopsided usually means one pillar is masking rot in
	// another; flag the spread rather than trusting the average.
	minSub := math.Min(math.Min(sub.Income, sub.Durability), math.Min(sub.Valuation, sub.Technical))
	maxSub := math.Max(math.Max(sub.Income, sub.Durability), math.Max(sub.Valuation, sub.Technical))
	if maxSub-minSub > 70 {
		flags = append(flags, domain.RiskFlag{
			Name:    "score_dispersion",
			Penalty: 5,
			Detail:  fmt.Sprintf("sub-score spread %.0f points", maxSub-minSub),
		})
	}

	return flags
}

// ApplyPenalties deducts internal flags and qualifying external signals from
// the raw composite. Returns the adjusted score, the total deduction after
// the cap, and the applied flag list in order.
func ApplyPenalties(raw float64, flags []domain.RiskFlag, signals []SentimentSignal) (float64, float64, []domain.RiskFlag) {
	applied := make([]domain.RiskFlag, 0, len(flags)+len(signals))
	total := 0.0

	for _, f := range flags {
		applied = append(applied, f)
		total += f.Penalty
	}

	for _, sig := range signals {
		if sig.Score >= NegativeSentimentThreshold {
			continue // positive or mildly negative sentiment is ignored
		}
		mag := sig.Magnitude
		if mag < 0 {
			mag = 0
		}
		if mag > 1 {
			mag = 1
		}
		severity := (NegativeSentimentThreshold - sig.Score) / (1 + NegativeSentimentThreshold)
		penalty := math.Min(MaxSentimentPenalty, MaxSentimentPenalty*severity*mag)
		if penalty <= 0 {
			continue
		}
		applied = append(applied, domain.RiskFlag{
			Name:    "negative_sentiment",
			Penalty: penalty,
			Detail:  fmt.Sprintf("%s: score %.2f magnitude %.2f", sig.Source, sig.Score, sig.Magnitude),
		})
		total += penalty
	}

	if total > MaxTotalPenalty {
		total = MaxTotalPenalty
	}

	adjusted := raw - total
	if adjusted < 0 {
		adjusted = 0
	}
	return adjusted, total, applied
}
