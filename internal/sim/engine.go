package sim

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/holdfast/yieldscore/internal/domain"
)

// Default simulation shape. Callers can override both on Parameters.
const (
	DefaultSimulations   = 4000
	DefaultHorizonMonths = 24
)

// Parameters drives one erosion simulation. Derived from the security's
// features by the caller; the engine itself is a pure function over them
// with no I/O, caching, or shared state.
type Parameters struct {
	ExpectedReturnAnnual float64 `json:"expected_return_annual"`
	VolatilityAnnual     float64 `json:"volatility_annual"`
	// DistributionDragMonthly is the constant share of NAV the scheduled
	// payout leaks each month (the part not earned back).
	DistributionDragMonthly float64 `json:"distribution_drag_monthly"`
	// Option overlay: cap monthly upside at the strike-implied return before
	// compounding. Ignored unless HasOptionOverlay.
	HasOptionOverlay bool    `json:"has_option_overlay"`
	UpsideCapMonthly float64 `json:"upside_cap_monthly"`
	// ErosionThreshold is the loss fraction that counts as eroded: a path is
	// eroded when terminal NAV < (1 - ErosionThreshold) of start.
	ErosionThreshold float64 `json:"erosion_threshold"`

	HorizonMonths int `json:"horizon_months"`
	Simulations   int `json:"simulations"`

	Regimes     [numRegimes]RegimeParams `json:"regimes"`
	Transitions TransitionMatrix         `json:"transitions"`

	// Seed makes the run deterministic. Zero means seed from the clock; the
	// seed actually used is always recorded on the result so any record can
	// be reproduced.
	Seed int64 `json:"seed"`
}

// DefaultParameters fills the regime model and shape defaults around the
// security-specific inputs.
func DefaultParameters(expectedReturn, volatility, dragMonthly, erosionThreshold float64) Parameters {
	return Parameters{
		ExpectedReturnAnnual:    expectedReturn,
		VolatilityAnnual:        volatility,
		DistributionDragMonthly: dragMonthly,
		ErosionThreshold:        erosionThreshold,
		HorizonMonths:           DefaultHorizonMonths,
		Simulations:             DefaultSimulations,
		Regimes:                 DefaultRegimeParams(),
		Transitions:             DefaultTransitionMatrix(),
	}
}

// Validate rejects parameter sets the simulation cannot interpret.
func (p Parameters) Validate() error {
	if p.HorizonMonths <= 0 {
		return fmt.Errorf("horizon must be positive, got %d", p.HorizonMonths)
	}
	if p.Simulations <= 0 {
		return fmt.Errorf("simulation count must be positive, got %d", p.Simulations)
	}
	if p.ErosionThreshold <= 0 || p.ErosionThreshold >= 1 {
		return fmt.Errorf("erosion threshold must be in (0,1), got %.4f", p.ErosionThreshold)
	}
	if p.VolatilityAnnual < 0 {
		return fmt.Errorf("volatility must be non-negative, got %.4f", p.VolatilityAnnual)
	}
	return p.Transitions.Validate()
}

// Engine runs multi-regime NAV erosion simulations.
type Engine struct{}

// NewEngine returns the stateless simulation engine.
func NewEngine() *Engine { return &Engine{} }

// Simulate runs the stochastic NAV forecast and returns the erosion
// probability at the horizon plus the derived risk tier and penalty.
//
// The simulation dimension is the inner loop: each month, regime states
// advance and returns are drawn for every path in one pass over contiguous
// slices, then compounded multiplicatively. NAV floors at zero; a wiped-out
// path stays eroded. Any path that turns non-finite is clamped to eroded
// rather than contaminating the aggregate probability.
func (e *Engine) Simulate(params Parameters) (*domain.ErosionResult, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid simulation parameters: %w", err)
	}

	seed := params.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	n := params.Simulations
	meanMonthly := params.ExpectedReturnAnnual / 12.0
	volMonthly := params.VolatilityAnnual / math.Sqrt(12.0)

	nav := make([]float64, n)
	regimes := make([]MarketRegime, n)
	degenerate := make([]bool, n)
	for i := range nav {
		nav[i] = 1.0
		regimes[i] = RegimeGrind // neutral starting state
	}

	for month := 0; month < params.HorizonMonths; month++ {
		for i := 0; i < n; i++ {
			if degenerate[i] {
				continue
			}

			regimes[i] = params.Transitions.next(regimes[i], rng.Float64())
			rp := params.Regimes[regimes[i]]

			r := meanMonthly*rp.MeanMult + rng.NormFloat64()*volMonthly*rp.VolMult
			if params.HasOptionOverlay && r > params.UpsideCapMonthly {
				r = params.UpsideCapMonthly
			}
			r -= params.DistributionDragMonthly * rp.IncomeMult

			nav[i] *= 1.0 + r
			if nav[i] < 0 {
				nav[i] = 0
			}
			if math.IsNaN(nav[i]) || math.IsInf(nav[i], 0) {
				degenerate[i] = true
				nav[i] = 0 // counts as eroded, excluded from NAV stats
			}
		}
	}

	erosionFloor := 1.0 - params.ErosionThreshold
	eroded := 0
	degenerateCount := 0
	finite := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		if degenerate[i] {
			degenerateCount++
			eroded++
			continue
		}
		if nav[i] < erosionFloor {
			eroded++
		}
		finite = append(finite, nav[i])
	}

	result := &domain.ErosionResult{
		Probability:     float64(eroded) / float64(n),
		HorizonMonths:   params.HorizonMonths,
		Simulations:     n,
		Seed:            seed,
		DegeneratePaths: degenerateCount,
		Degenerate:      degenerateCount > 0,
	}
	if len(finite) > 0 {
		sort.Float64s(finite)
		result.MeanTerminalNAV = stat.Mean(finite, nil)
		result.P5TerminalNAV = stat.Quantile(0.05, stat.Empirical, finite, nil)
		result.MedianNAV = stat.Quantile(0.50, stat.Empirical, finite, nil)
	}

	result.Tier = TierFor(result.Probability)
	result.PenaltyPoints = PenaltyFor(result.Tier)
	return result, nil
}
