package providers

import (
	"context"

	"github.com/holdfast/yieldscore/internal/composite"
	"github.com/holdfast/yieldscore/internal/domain"
)

// FeatureProvider returns the flat feature snapshot for a ticker. Partial
// data is valid: absent fields flow through as partial credit downstream.
// A hard failure means the ticker is unscoreable right now.
type FeatureProvider interface {
	Features(ctx context.Context, ticker string) (domain.FeatureBag, []string, error)
}

// ClassificationProvider returns the asset-class tag and its confidence.
// The scoring core trusts the tag as given and never re-derives it.
type ClassificationProvider interface {
	Classify(ctx context.Context, ticker string) (domain.AssetClass, float64, error)
}

// SentimentProvider returns zero or more external sentiment signals for a
// ticker. An empty slice is valid and simply skips the external-signal
// penalty path; an error marks the run degraded but never fails it.
type SentimentProvider interface {
	Sentiment(ctx context.Context, ticker string) ([]composite.SentimentSignal, error)
}
