package scoring

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/holdfast/yieldscore/internal/composite"
	"github.com/holdfast/yieldscore/internal/domain"
	"github.com/holdfast/yieldscore/internal/events"
	"github.com/holdfast/yieldscore/internal/gates"
	"github.com/holdfast/yieldscore/internal/metrics"
	"github.com/holdfast/yieldscore/internal/persistence"
	"github.com/holdfast/yieldscore/internal/providers"
	"github.com/holdfast/yieldscore/internal/sim"
	"github.com/holdfast/yieldscore/internal/simcache"
	"github.com/holdfast/yieldscore/internal/subscore"
	"github.com/holdfast/yieldscore/internal/taxmeta"
	"github.com/holdfast/yieldscore/internal/weights"
)

// CoverageWindowMonths is how far back the veto engine looks for trailing
// coverage observations.
const CoverageWindowMonths = 24

// confidenceFeatures is the feature set whose completeness becomes the
// record's confidence value.
var confidenceFeatures = []string{
	domain.FeatPrice, domain.FeatADVUSD, domain.FeatYield,
	domain.FeatVolatility, domain.FeatPriceVs200D, domain.FeatCoverage,
}

// Simulator abstracts the Monte Carlo engine so tests can count or stub
// simulation calls.
type Simulator interface {
	Simulate(params sim.Parameters) (*domain.ErosionResult, error)
}

// Options tunes one scoring run.
type Options struct {
	// ForceFreshSimulation bypasses the erosion cache for this run.
	ForceFreshSimulation bool
	// Seed pins the simulation RNG for reproducible runs; zero seeds from
	// the clock.
	Seed int64
	// SkipPersist computes the record without appending it to history.
	SkipPersist bool
}

// Deps carries everything a Pipeline needs. Sentiment, Shadow, and Bus are
// optional; the rest are required.
type Deps struct {
	Weights   *weights.Accessor
	Gates     *gates.Router
	Engine    Simulator
	Cache     simcache.Cache
	Features  providers.FeatureProvider
	Classes   providers.ClassificationProvider
	Sentiment providers.SentimentProvider
	Scores    persistence.ScoreRepo
	Shadow    persistence.ShadowRepo
	Bus       *events.Bus
	Metrics   *metrics.Registry
	Log       zerolog.Logger
}

// Pipeline runs the full scoring flow for one ticker: gate, class-conditional
// erosion simulation, sub-scores, composite, penalties, veto, output record.
type Pipeline struct {
	deps Deps
}

// NewPipeline validates the wiring and returns a ready pipeline.
func NewPipeline(deps Deps) (*Pipeline, error) {
	switch {
	case deps.Weights == nil:
		return nil, fmt.Errorf("pipeline requires a weights accessor")
	case deps.Gates == nil:
		return nil, fmt.Errorf("pipeline requires a gate router")
	case deps.Engine == nil:
		return nil, fmt.Errorf("pipeline requires a simulation engine")
	case deps.Features == nil || deps.Classes == nil:
		return nil, fmt.Errorf("pipeline requires feature and classification providers")
	case deps.Scores == nil:
		return nil, fmt.Errorf("pipeline requires a score repository")
	}
	if deps.Cache == nil {
		deps.Cache = simcache.NewMemory(0)
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.NewNopRegistry()
	}
	return &Pipeline{deps: deps}, nil
}

// Score runs the pipeline for one ticker and returns the appended record.
func (p *Pipeline) Score(ctx context.Context, ticker string, opts Options) (*domain.ScoreRecord, error) {
	snap, err := p.deps.Weights.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("no usable weight snapshot: %w", err)
	}
	p.noteWeightVersion(snap.Version)
	return p.scoreWithSnapshot(ctx, ticker, snap, opts)
}

// noteWeightVersion marks the active weight version on the info gauge. Called
// once per snapshot load, not per ticker.
func (p *Pipeline) noteWeightVersion(version string) {
	p.deps.Metrics.WeightVersion.Reset()
	p.deps.Metrics.WeightVersion.WithLabelValues(version).Set(1)
}

func (p *Pipeline) scoreWithSnapshot(ctx context.Context, ticker string, snap *weights.Snapshot, opts Options) (*domain.ScoreRecord, error) {
	start := time.Now()
	defer func() { p.deps.Metrics.PipelineDuration.Observe(time.Since(start).Seconds()) }()

	log := p.deps.Log.With().Str("ticker", ticker).Logger()

	class, classConf, err := p.deps.Classes.Classify(ctx, ticker)
	if err != nil {
		p.deps.Metrics.ScoringRuns.WithLabelValues("unknown", "error").Inc()
		return nil, fmt.Errorf("classify %s: %w", ticker, err)
	}
	if !class.Valid() {
		class = domain.ClassUnknown
	}

	bag, sources, err := p.deps.Features.Features(ctx, ticker)
	if err != nil {
		p.deps.Metrics.ScoringRuns.WithLabelValues(string(class), "error").Inc()
		return nil, err
	}

	sec := domain.Security{
		Ticker:     ticker,
		Class:      class,
		Features:   bag,
		Provenance: sources,
		AsOf:       time.Now().UTC(),
	}

	prev, err := p.deps.Scores.Latest(ctx, ticker)
	if err != nil {
		log.Warn().Err(err).Msg("latest record lookup failed, continuing without history")
		prev = nil
	}

	rec := &domain.ScoreRecord{
		ID:            uuid.NewString(),
		Ticker:        ticker,
		Class:         class,
		SchemaVersion: domain.SchemaVersion,
		Tax:           taxmeta.Build(sec),
		Provenance:    sources,
		Confidence:    confidence(bag, classConf),
		ClassChanged:  prev != nil && prev.Class != class,
		Timestamp:     time.Now().UTC(),
	}
	if cov, ok := bag.Value(domain.FeatCoverage); ok {
		rec.Coverage = &cov
	}
	if rec.ClassChanged {
		log.Info().
			Str("previous_class", string(prev.Class)).
			Str("class", string(class)).
			Msg("asset class changed since last score")
	}

	rec.Gate = p.deps.Gates.Evaluate(ticker, class, bag, snap)
	if !rec.Gate.Passed {
		p.deps.Metrics.GateFailures.WithLabelValues(rec.Gate.Gate).Inc()
		p.deps.Metrics.ScoringRuns.WithLabelValues(string(class), "gate_rejected").Inc()
		log.Info().Str("gate", rec.Gate.Gate).Strs("failures", rec.Gate.Failures).Msg("gate rejected")
		return rec, p.finish(ctx, rec, opts)
	}

	if class.ErosionExposed() {
		erosion, err := p.erosion(ctx, sec, opts)
		if err != nil {
			p.deps.Metrics.ScoringRuns.WithLabelValues(string(class), "error").Inc()
			return nil, fmt.Errorf("erosion simulation for %s: %w", ticker, err)
		}
		rec.Erosion = erosion
	}

	cctx := subscore.ClassContext{Class: class}
	income := subscore.Income(bag, cctx)
	durability := subscore.Durability(bag, cctx)
	valuation := subscore.Valuation(bag, cctx)
	technical := subscore.Technical(bag, cctx)

	sub := domain.SubScores{
		Income:     income.Score,
		Durability: durability.Score,
		Valuation:  valuation.Score,
		Technical:  technical.Score,
	}

	ws := snap.SetFor(class)
	raw := composite.Aggregate(sub, ws)

	var signals []composite.SentimentSignal
	if p.deps.Sentiment != nil {
		signals, err = p.deps.Sentiment.Sentiment(ctx, ticker)
		if err != nil {
			if !errors.Is(err, domain.ErrExternalSignalUnavailable) {
				log.Warn().Err(err).Msg("sentiment provider failed")
			}
			rec.Degraded = true
			signals = nil
		}
	}

	flags := composite.DeriveFlags(sub, rec.Erosion, bag)
	post, totalPenalty, applied := composite.ApplyPenalties(raw, flags, signals)

	rec.Composite = &domain.CompositeResult{
		SubScores:     sub,
		WeightVersion: snap.Version,
		PrePenalty:    raw,
		Flags:         applied,
		TotalPenalty:  totalPenalty,
		PostPenalty:   post,
	}

	rec.Veto = composite.CheckVeto(composite.VetoInput{
		PostPenalty:     post,
		Durability:      sub.Durability,
		Erosion:         rec.Erosion,
		CoverageHistory: p.coverageWindow(ctx, ticker, rec.Coverage),
	})
	rec.Score = rec.Veto.Score

	outcome := "scored"
	if rec.Veto.Triggered {
		outcome = "veto"
		p.deps.Metrics.Vetoes.WithLabelValues(string(class)).Inc()
		log.Warn().Str("reason", rec.Veto.Reason).Msg("veto triggered")
	}
	p.deps.Metrics.ScoringRuns.WithLabelValues(string(class), outcome).Inc()

	return rec, p.finish(ctx, rec, opts)
}

// erosion serves the simulation from the 30-day cache when the parameter
// fingerprint matches, otherwise runs it fresh.
func (p *Pipeline) erosion(ctx context.Context, sec domain.Security, opts Options) (*domain.ErosionResult, error) {
	params := DeriveSimParameters(sec)
	params.Seed = opts.Seed

	if !opts.ForceFreshSimulation {
		if cached, ok := p.deps.Cache.Get(ctx, sec.Ticker, params); ok {
			p.deps.Metrics.SimCacheHits.Inc()
			return cached, nil
		}
	}
	p.deps.Metrics.SimCacheMisses.Inc()

	simStart := time.Now()
	res, err := p.deps.Engine.Simulate(params)
	p.deps.Metrics.SimDuration.Observe(time.Since(simStart).Seconds())
	if err != nil {
		return nil, err
	}
	p.deps.Cache.Set(ctx, sec.Ticker, params, res)
	return res, nil
}

// coverageWindow assembles trailing coverage observations, oldest first,
// ending with the current reading.
func (p *Pipeline) coverageWindow(ctx context.Context, ticker string, current *float64) []float64 {
	since := time.Now().AddDate(0, -CoverageWindowMonths, 0)
	hist, err := p.deps.Scores.History(ctx, ticker, since)
	if err != nil {
		p.deps.Log.Warn().Err(err).Str("ticker", ticker).Msg("coverage history lookup failed")
		hist = nil
	}

	var window []float64
	for i := len(hist) - 1; i >= 0; i-- { // history arrives newest first
		if hist[i].Coverage != nil {
			window = append(window, *hist[i].Coverage)
		}
	}
	if current != nil {
		window = append(window, *current)
	}
	return window
}

// finish persists the record, emits the completion event, and files a shadow
// entry so the learning loop can evaluate this prediction later.
func (p *Pipeline) finish(ctx context.Context, rec *domain.ScoreRecord, opts Options) error {
	if opts.SkipPersist {
		return nil
	}
	if err := p.deps.Scores.Append(ctx, rec); err != nil {
		return fmt.Errorf("append score record: %w", err)
	}

	if p.deps.Shadow != nil && rec.Scoreable() && !rec.Veto.Triggered {
		entry := domain.ShadowEntry{
			Ticker:         rec.Ticker,
			Class:          rec.Class,
			PredictedScore: rec.Score,
			SubScores:      rec.Composite.SubScores,
			WeightVersion:  rec.Composite.WeightVersion,
			PredictedAt:    rec.Timestamp,
		}
		if err := p.deps.Shadow.Append(ctx, entry); err != nil {
			p.deps.Log.Warn().Err(err).Str("ticker", rec.Ticker).Msg("shadow entry append failed")
		}
	}

	if p.deps.Bus != nil {
		p.deps.Bus.Publish(domain.CompletionEvent{
			Ticker:    rec.Ticker,
			Score:     rec.Score,
			Veto:      rec.Veto.Triggered,
			Class:     rec.Class,
			Timestamp: rec.Timestamp,
		})
	}
	return nil
}

func confidence(bag domain.FeatureBag, classConf float64) float64 {
	c := bag.Completeness(confidenceFeatures)
	if classConf > 0 && classConf < 1 {
		c *= classConf
	}
	return c
}
