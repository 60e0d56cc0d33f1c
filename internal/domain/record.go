package domain

import (
	"time"
)

// SchemaVersion identifies the ScoreRecord layout. Bumped whenever a field is
// added or its meaning changes, so persisted history stays interpretable.
const SchemaVersion = "2.1"

// CriterionOp documents the inequality a gate criterion uses. A value exactly
// at the threshold passes for both operators: min-type criteria are ">=",
// max-type criteria are "<=". There is no ambiguous equality handling.
type CriterionOp string

const (
	OpMin CriterionOp = ">=" // observed >= threshold passes
	OpMax CriterionOp = "<=" // observed <= threshold passes
)

// CriterionResult records one gate criterion evaluation.
type CriterionResult struct {
	Name      string      `json:"name"`
	Observed  float64     `json:"observed"`
	Threshold float64     `json:"threshold"`
	Op        CriterionOp `json:"op"`
	Missing   bool        `json:"missing,omitempty"` // feature absent: criterion fails
	Passed    bool        `json:"passed"`
}

// GateResult is the structured pass/fail outcome of the quality gate. A failed
// gate is a terminal, valid outcome: the run stops before simulation and
// sub-scoring, and the record carries this result with a zero composite.
type GateResult struct {
	Gate     string            `json:"gate"`
	Passed   bool              `json:"passed"`
	Criteria []CriterionResult `json:"criteria"`
	Failures []string          `json:"failures,omitempty"`
}

// RiskTier is the discrete NAV-erosion risk level, ordered by severity.
type RiskTier int

const (
	TierMinimal RiskTier = iota
	TierLow
	TierModerate
	TierElevated
	TierSevere
)

func (t RiskTier) String() string {
	switch t {
	case TierMinimal:
		return "minimal"
	case TierLow:
		return "low"
	case TierModerate:
		return "moderate"
	case TierElevated:
		return "elevated"
	case TierSevere:
		return "severe"
	}
	return "unknown"
}

// ErosionResult is the Monte Carlo engine output: probability that NAV decays
// past the erosion threshold at the horizon, plus the derived tier and
// penalty. Cacheable for 30 days keyed on (ticker, parameter fingerprint).
type ErosionResult struct {
	Probability     float64  `json:"probability"`
	Tier            RiskTier `json:"tier"`
	PenaltyPoints   float64  `json:"penalty_points"`
	HorizonMonths   int      `json:"horizon_months"`
	Simulations     int      `json:"simulations"`
	Seed            int64    `json:"seed"`
	MeanTerminalNAV float64  `json:"mean_terminal_nav"`
	P5TerminalNAV   float64  `json:"p5_terminal_nav"`
	MedianNAV       float64  `json:"median_terminal_nav"`
	DegeneratePaths int      `json:"degenerate_paths,omitempty"`
	Degenerate      bool     `json:"degenerate,omitempty"` // some paths were clamped
}

// SubScores holds the four independent 0-100 component scores.
type SubScores struct {
	Income     float64 `json:"income"`
	Durability float64 `json:"durability"`
	Valuation  float64 `json:"valuation"`
	Technical  float64 `json:"technical"`
}

// RiskFlag is one detected risk condition and its fixed point deduction.
type RiskFlag struct {
	Name    string  `json:"name"`
	Penalty float64 `json:"penalty"`
	Detail  string  `json:"detail,omitempty"`
}

// CompositeResult captures the weighted aggregation and the penalty pass.
type CompositeResult struct {
	SubScores     SubScores  `json:"sub_scores"`
	WeightVersion string     `json:"weight_version"`
	PrePenalty    float64    `json:"pre_penalty"`
	Flags         []RiskFlag `json:"flags,omitempty"`
	TotalPenalty  float64    `json:"total_penalty"`
	PostPenalty   float64    `json:"post_penalty"`
}

// VetoResult reports the post-composite safety override. When Triggered the
// emitted score is exactly zero and Reason concatenates every trigger that
// fired, not just the first.
type VetoResult struct {
	Triggered bool    `json:"triggered"`
	Reason    string  `json:"reason,omitempty"`
	Score     float64 `json:"score"` // 0 when triggered, else post-penalty composite
}

// TaxMetadata is the tax-relevant block attached to every record. It is
// informational for the downstream tax module and never influences the score.
type TaxMetadata struct {
	QualifiedDividendPct float64 `json:"qualified_dividend_pct"`
	ReturnOfCapitalPct   float64 `json:"return_of_capital_pct"`
	IssuesK1             bool    `json:"issues_k1"`
	PreferredAccount     string  `json:"preferred_account"` // "taxable" or "tax_deferred"
	WithholdingNote      string  `json:"withholding_note,omitempty"`
}

// ScoreRecord is the complete, append-only scoring snapshot. Re-running with
// the same weight version and feature snapshot reproduces it exactly, up to
// ID, timestamp, and the simulation draw when unseeded.
type ScoreRecord struct {
	ID            string           `json:"id"`
	Ticker        string           `json:"ticker"`
	Class         AssetClass       `json:"class"`
	SchemaVersion string           `json:"schema_version"`
	Gate          GateResult       `json:"gate"`
	Erosion       *ErosionResult   `json:"erosion,omitempty"` // nil for classes without exposure
	Composite     *CompositeResult `json:"composite,omitempty"`
	Veto          VetoResult       `json:"veto"`
	Score         float64          `json:"score"` // the emitted value
	Tax           TaxMetadata      `json:"tax"`   // always present, veto or not
	Provenance    []string         `json:"provenance"`
	// Coverage observed at scoring time, kept so later runs can evaluate
	// the trailing coverage window without refetching features.
	Coverage     *float64  `json:"coverage,omitempty"`
	Confidence   float64   `json:"confidence"`
	Degraded     bool      `json:"degraded,omitempty"` // sentiment provider was down
	ClassChanged bool      `json:"class_changed,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// Scoreable reports whether the record represents a security that passed the
// gate and was actually scored, as opposed to a gate rejection.
func (r *ScoreRecord) Scoreable() bool { return r.Gate.Passed }

// ShadowEntry tracks one shadow-portfolio prediction for the learning loop.
type ShadowEntry struct {
	Ticker         string     `json:"ticker"`
	Class          AssetClass `json:"class"`
	PredictedScore float64    `json:"predicted_score"`
	SubScores      SubScores  `json:"sub_scores"`
	WeightVersion  string     `json:"weight_version"`
	PredictedAt    time.Time  `json:"predicted_at"`
	// Realized outcome after the evaluation horizon: total return including
	// distributions, NaN-free once populated.
	RealizedReturn *float64   `json:"realized_return,omitempty"`
	RealizedAt     *time.Time `json:"realized_at,omitempty"`
}

// CompletionEvent is the fire-and-forget notification emitted after a record
// is appended. Downstream subscribers (tax module, alerting, portfolio
// builder) consume it; the scorer requires no acknowledgment.
type CompletionEvent struct {
	Ticker    string     `json:"ticker"`
	Score     float64    `json:"score"`
	Veto      bool       `json:"veto"`
	Class     AssetClass `json:"class"`
	Timestamp time.Time  `json:"timestamp"`
}
