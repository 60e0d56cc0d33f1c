package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the failure taxonomy. A gate rejection is not here:
// it is a valid terminal outcome carried in the ScoreRecord, not an error
// condition.
var (
	// ErrDataUnavailable means the feature or classification provider failed
	// or returned too little to score. The affected ticker is reported and
	// skipped; it never aborts a batch.
	ErrDataUnavailable = errors.New("data unavailable")

	// ErrExternalSignalUnavailable means the sentiment provider was down.
	// Scoring proceeds without external signals and the record is flagged
	// degraded; this error is only surfaced by the provider layer itself.
	ErrExternalSignalUnavailable = errors.New("external signals unavailable")
)

// InvalidWeightSetError reports a weight set that failed the sum-to-1.0 or
// completeness check at load time. Configuration-level: it affects every
// subsequent score, so callers log it loudly and fall back to the last
// known-good snapshot.
type InvalidWeightSetError struct {
	Class   AssetClass
	Version string
	Sum     float64
	Reason  string
}

func (e *InvalidWeightSetError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid weight set %s for class %s: %s", e.Version, e.Class, e.Reason)
	}
	return fmt.Sprintf("invalid weight set %s for class %s: weights sum to %.4f, expected 1.0 (±0.001)", e.Version, e.Class, e.Sum)
}

// DataUnavailableError wraps ErrDataUnavailable with the ticker and cause so
// batch output can report per-item failures without losing context.
type DataUnavailableError struct {
	Ticker string
	Cause  error
}

func (e *DataUnavailableError) Error() string {
	return fmt.Sprintf("%s: data unavailable: %v", e.Ticker, e.Cause)
}

func (e *DataUnavailableError) Unwrap() error { return ErrDataUnavailable }
