package learner

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/stat"

	"github.com/holdfast/yieldscore/internal/domain"
	"github.com/holdfast/yieldscore/internal/persistence"
	"github.com/holdfast/yieldscore/internal/weights"
)

// Phase is the learning-cycle state. The cycle only ever moves forward
// through these in order; a failed cycle resets to collecting without
// publishing anything.
type Phase string

const (
	PhaseCollecting Phase = "collecting"
	PhaseEvaluating Phase = "evaluating"
	PhaseAdjusting  Phase = "adjusting"
	PhasePublishing Phase = "publishing"
)

const (
	// MaxStep caps how far any single weight moves in one cycle.
	MaxStep = 0.05
	// MinSamplesPerClass is the smallest realized-outcome sample that
	// justifies adjusting a class's weights.
	MinSamplesPerClass = 30

	weightFloor = 0.05
	weightCeil  = 0.60
)

// ClassEval is the evaluation outcome for one asset class.
type ClassEval struct {
	Class        domain.AssetClass             `json:"class"`
	Samples      int                           `json:"samples"`
	Correlations map[weights.Component]float64 `json:"correlations"`
	HitRate      float64                       `json:"hit_rate"`
	Adjusted     bool                          `json:"adjusted"`
	NewWeights   map[weights.Component]float64 `json:"new_weights,omitempty"`
}

// CycleReport records what one quarterly cycle observed and changed.
type CycleReport struct {
	StartedAt      time.Time   `json:"started_at"`
	WindowFrom     time.Time   `json:"window_from"`
	WindowTo       time.Time   `json:"window_to"`
	BaseVersion    string      `json:"base_version"`
	Published      string      `json:"published,omitempty"`
	Classes        []ClassEval `json:"classes"`
	TotalSamples   int         `json:"total_samples"`
	SkippedPublish string      `json:"skipped_publish,omitempty"`
}

// Learner runs the quarterly weight-adjustment cycle against the shadow
// portfolio's realized outcomes.
type Learner struct {
	shadow  persistence.ShadowRepo
	weights persistence.WeightsRepo
	log     zerolog.Logger

	mu    sync.Mutex
	phase Phase
}

func New(shadow persistence.ShadowRepo, weightsRepo persistence.WeightsRepo, log zerolog.Logger) *Learner {
	return &Learner{
		shadow:  shadow,
		weights: weightsRepo,
		log:     log,
		phase:   PhaseCollecting,
	}
}

// Phase reports the current cycle state.
func (l *Learner) Phase() Phase {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.phase
}

func (l *Learner) setPhase(p Phase) {
	l.mu.Lock()
	l.phase = p
	l.mu.Unlock()
	l.log.Info().Str("phase", string(p)).Msg("learning cycle phase")
}

// RunCycle evaluates the previous quarter's shadow predictions and, when the
// evidence supports it, publishes an adjusted weight version. The current
// version is never modified; adjustment always creates a new one.
func (l *Learner) RunCycle(ctx context.Context, now time.Time) (*CycleReport, error) {
	defer l.setPhase(PhaseCollecting)

	from, to := previousQuarter(now)
	report := &CycleReport{
		StartedAt:  now.UTC(),
		WindowFrom: from,
		WindowTo:   to,
	}

	l.setPhase(PhaseEvaluating)
	entries, err := l.shadow.Window(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("load shadow window: %w", err)
	}
	report.TotalSamples = len(entries)

	version, err := l.weights.CurrentVersion(ctx)
	if err != nil {
		return nil, fmt.Errorf("current weight version: %w", err)
	}
	base, err := l.weights.Load(ctx, version)
	if err != nil {
		return nil, fmt.Errorf("load base snapshot: %w", err)
	}
	report.BaseVersion = base.Version

	byClass := groupByClass(entries)
	evals := l.evaluate(byClass)
	report.Classes = evals

	l.setPhase(PhaseAdjusting)
	next, changed := l.adjust(base, evals)
	if !changed {
		report.SkippedPublish = "no class met the sample or signal bar"
		l.log.Info().Int("samples", len(entries)).Msg("cycle complete, nothing to publish")
		return report, nil
	}

	next.Version = nextVersion(now)
	for class, set := range next.Sets {
		set.Version = next.Version
		next.Sets[class] = set
	}
	if err := next.Validate(); err != nil {
		return nil, fmt.Errorf("adjusted snapshot failed validation: %w", err)
	}

	l.setPhase(PhasePublishing)
	if err := l.weights.InsertVersion(ctx, *next); err != nil {
		return nil, err
	}
	report.Published = next.Version
	l.log.Info().
		Str("base", base.Version).
		Str("published", next.Version).
		Msg("published adjusted weight version")
	return report, nil
}

func groupByClass(entries []domain.ShadowEntry) map[domain.AssetClass][]domain.ShadowEntry {
	out := make(map[domain.AssetClass][]domain.ShadowEntry)
	for _, e := range entries {
		out[e.Class] = append(out[e.Class], e)
	}
	return out
}

// evaluate computes, per class, the correlation of each sub-score with the
// realized return and the overall prediction hit rate.
func (l *Learner) evaluate(byClass map[domain.AssetClass][]domain.ShadowEntry) []ClassEval {
	classes := make([]domain.AssetClass, 0, len(byClass))
	for c := range byClass {
		classes = append(classes, c)
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i] < classes[j] })

	var evals []ClassEval
	for _, class := range classes {
		entries := byClass[class]
		eval := ClassEval{
			Class:        class,
			Samples:      len(entries),
			Correlations: make(map[weights.Component]float64, 4),
		}

		realized := make([]float64, len(entries))
		predicted := make([]float64, len(entries))
		for i, e := range entries {
			realized[i] = *e.RealizedReturn
			predicted[i] = e.PredictedScore
		}

		for _, comp := range weights.Components() {
			xs := make([]float64, len(entries))
			for i, e := range entries {
				xs[i] = subScoreFor(e.SubScores, comp)
			}
			r := stat.Correlation(xs, realized, nil)
			if math.IsNaN(r) {
				r = 0
			}
			eval.Correlations[comp] = r
		}
		eval.HitRate = hitRate(predicted, realized)
		evals = append(evals, eval)
	}
	return evals
}

// hitRate is the fraction of predictions that ranked on the correct side:
// above-median scores paired with above-median realized returns.
func hitRate(predicted, realized []float64) float64 {
	if len(predicted) == 0 {
		return 0
	}
	pm := median(predicted)
	rm := median(realized)
	hits := 0
	for i := range predicted {
		if (predicted[i] >= pm) == (realized[i] >= rm) {
			hits++
		}
	}
	return float64(hits) / float64(len(predicted))
}

func median(xs []float64) float64 {
	cp := append([]float64(nil), xs...)
	sort.Float64s(cp)
	return stat.Quantile(0.5, stat.Empirical, cp, nil)
}

// adjust builds the candidate next snapshot. For each class with enough
// samples, the strongest-signal component gains MaxStep and the weakest
// loses it, keeping the sum at exactly 1.0.
func (l *Learner) adjust(base *weights.Snapshot, evals []ClassEval) (*weights.Snapshot, bool) {
	next := cloneSnapshot(base)
	changed := false

	for i := range evals {
		eval := &evals[i]
		if eval.Samples < MinSamplesPerClass {
			continue
		}
		set, ok := next.Sets[eval.Class]
		if !ok {
			continue
		}

		best, worst := extremes(eval.Correlations)
		if best == worst || eval.Correlations[best]-eval.Correlations[worst] < 0.05 {
			continue // signal too weak to act on
		}

		step := MaxStep
		// Respect the floor and ceiling; shrink the step if either bound
		// would be crossed, so the transfer stays symmetric.
		if set.Weights[best]+step > weightCeil {
			step = weightCeil - set.Weights[best]
		}
		if set.Weights[worst]-step < weightFloor {
			step = set.Weights[worst] - weightFloor
		}
		if step <= 0 {
			continue
		}

		set.Weights[best] += step
		set.Weights[worst] -= step
		next.Sets[eval.Class] = set

		eval.Adjusted = true
		eval.NewWeights = copyWeights(set.Weights)
		changed = true

		l.log.Info().
			Str("class", string(eval.Class)).
			Str("raised", string(best)).
			Str("lowered", string(worst)).
			Float64("step", step).
			Msg("adjusted class weights")
	}
	return next, changed
}

func extremes(corr map[weights.Component]float64) (best, worst weights.Component) {
	comps := weights.Components()
	best, worst = comps[0], comps[0]
	for _, c := range comps {
		if corr[c] > corr[best] {
			best = c
		}
		if corr[c] < corr[worst] {
			worst = c
		}
	}
	return best, worst
}

func subScoreFor(s domain.SubScores, c weights.Component) float64 {
	switch c {
	case weights.Income:
		return s.Income
	case weights.Durability:
		return s.Durability
	case weights.Valuation:
		return s.Valuation
	default:
		return s.Technical
	}
}

func cloneSnapshot(base *weights.Snapshot) *weights.Snapshot {
	next := &weights.Snapshot{
		Version:    base.Version,
		Sets:       make(map[domain.AssetClass]weights.WeightSet, len(base.Sets)),
		Thresholds: make(map[domain.AssetClass]map[string]float64, len(base.Thresholds)),
	}
	for class, set := range base.Sets {
		next.Sets[class] = weights.WeightSet{
			Version: set.Version,
			Class:   set.Class,
			Weights: copyWeights(set.Weights),
		}
	}
	for class, ths := range base.Thresholds {
		cp := make(map[string]float64, len(ths))
		for k, v := range ths {
			cp[k] = v
		}
		next.Thresholds[class] = cp
	}
	return next
}

func copyWeights(w map[weights.Component]float64) map[weights.Component]float64 {
	cp := make(map[weights.Component]float64, len(w))
	for k, v := range w {
		cp[k] = v
	}
	return cp
}

// previousQuarter returns the [start, end) of the calendar quarter before
// the one containing now.
func previousQuarter(now time.Time) (time.Time, time.Time) {
	y, m := now.Year(), now.Month()
	qStart := time.Date(y, ((m-1)/3)*3+1, 1, 0, 0, 0, 0, time.UTC)
	return qStart.AddDate(0, -3, 0), qStart
}

func nextVersion(now time.Time) string {
	from, _ := previousQuarter(now)
	q := (int(from.Month())-1)/3 + 1
	return fmt.Sprintf("v%dq%d", from.Year(), q)
}
