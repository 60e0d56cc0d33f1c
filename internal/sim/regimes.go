package sim

import (
	"fmt"
	"math"
)

// MarketRegime is one of the fixed market states the simulation draws
// returns under. Regime persistence and switching are governed by a Markov
// transition matrix sampled once per simulated month.
type MarketRegime int

const (
	RegimeCalm MarketRegime = iota
	RegimeGrind
	RegimeDrawdown
	RegimePanic

	numRegimes = 4
)

func (r MarketRegime) String() string {
	switch r {
	case RegimeCalm:
		return "calm"
	case RegimeGrind:
		return "grind"
	case RegimeDrawdown:
		return "drawdown"
	case RegimePanic:
		return "panic"
	}
	return "unknown"
}

// RegimeParams calibrates one regime. MeanMult and VolMult scale the
// security's base monthly mean return and volatility. IncomeMult scales how
// much of the scheduled payout leaks principal in that regime: richer option
// premiums in stressed regimes offset part of the distribution drag.
type RegimeParams struct {
	MeanMult   float64 `yaml:"mean_mult"`
	VolMult    float64 `yaml:"vol_mult"`
	IncomeMult float64 `yaml:"income_mult"`
}

// TransitionMatrix is row-stochastic: row i gives the probability of moving
// from regime i to each regime next month.
type TransitionMatrix [numRegimes][numRegimes]float64

// Validate checks each row sums to 1 and contains no negative entries.
func (m TransitionMatrix) Validate() error {
	for i, row := range m {
		sum := 0.0
		for _, p := range row {
			if p < 0 {
				return fmt.Errorf("transition matrix row %d has negative probability", i)
			}
			sum += p
		}
		if math.Abs(sum-1.0) > 1e-6 {
			return fmt.Errorf("transition matrix row %d sums to %.8f, expected 1.0", i, sum)
		}
	}
	return nil
}

// next samples the following regime given a uniform draw in [0,1).
func (m TransitionMatrix) next(current MarketRegime, u float64) MarketRegime {
	cum := 0.0
	for j := 0; j < numRegimes; j++ {
		cum += m[current][j]
		if u < cum {
			return MarketRegime(j)
		}
	}
	return MarketRegime(numRegimes - 1)
}

// DefaultRegimeParams returns the built-in four-state calibration. Regimes
// are sticky: the diagonal of the default matrix keeps the expected regime
// duration at several months.
func DefaultRegimeParams() [numRegimes]RegimeParams {
	return [numRegimes]RegimeParams{
		RegimeCalm:     {MeanMult: 1.2, VolMult: 0.7, IncomeMult: 1.00},
		RegimeGrind:    {MeanMult: 0.6, VolMult: 1.0, IncomeMult: 1.00},
		RegimeDrawdown: {MeanMult: -1.5, VolMult: 1.6, IncomeMult: 0.90},
		RegimePanic:    {MeanMult: -4.0, VolMult: 2.8, IncomeMult: 0.80},
	}
}

// DefaultTransitionMatrix returns the built-in regime persistence model.
func DefaultTransitionMatrix() TransitionMatrix {
	return TransitionMatrix{
		//               calm   grind  drawdn panic
		RegimeCalm:     {0.88, 0.09, 0.025, 0.005},
		RegimeGrind:    {0.10, 0.80, 0.08, 0.02},
		RegimeDrawdown: {0.05, 0.15, 0.70, 0.10},
		RegimePanic:    {0.02, 0.08, 0.35, 0.55},
	}
}
