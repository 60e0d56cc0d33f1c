package weights

import (
	"math"

	"github.com/holdfast/yieldscore/internal/domain"
)

// Component names the four sub-scores a weight set allocates across.
type Component string

const (
	Income     Component = "income"
	Durability Component = "durability"
	Valuation  Component = "valuation"
	Technical  Component = "technical"
)

// Components lists the required components in stable order. A weight set must
// cover exactly these; routing weight away from an inapplicable component is
// done inside the set itself, never by renormalization downstream.
func Components() []Component {
	return []Component{Income, Durability, Valuation, Technical}
}

// SumTolerance is the allowed deviation from 1.0 for a weight set's total.
const SumTolerance = 0.001

// WeightSet is a named, versioned allocation for one asset class. Loaded
// read-only per run and replaced wholesale on update, never patched.
type WeightSet struct {
	Version string                `yaml:"version" json:"version"`
	Class   domain.AssetClass     `yaml:"class" json:"class"`
	Weights map[Component]float64 `yaml:"weights" json:"weights"`
}

// Sum returns the total of the allocation.
func (ws WeightSet) Sum() float64 {
	total := 0.0
	for _, w := range ws.Weights {
		total += w
	}
	return total
}

// Validate checks completeness and the sum-to-1.0 invariant. It never
// renormalizes: a bad set is rejected so the caller can fall back.
func (ws WeightSet) Validate() error {
	for _, c := range Components() {
		w, ok := ws.Weights[c]
		if !ok {
			return &domain.InvalidWeightSetError{
				Class:   ws.Class,
				Version: ws.Version,
				Reason:  "missing component " + string(c),
			}
		}
		if w < 0 || w > 1 {
			return &domain.InvalidWeightSetError{
				Class:   ws.Class,
				Version: ws.Version,
				Reason:  "component " + string(c) + " outside [0,1]",
			}
		}
	}
	if len(ws.Weights) != len(Components()) {
		return &domain.InvalidWeightSetError{
			Class:   ws.Class,
			Version: ws.Version,
			Reason:  "unexpected extra components",
		}
	}
	if sum := ws.Sum(); math.Abs(sum-1.0) > SumTolerance {
		return &domain.InvalidWeightSetError{
			Class:   ws.Class,
			Version: ws.Version,
			Sum:     sum,
		}
	}
	return nil
}

// Snapshot is an immutable view of every class's weight set and gate/veto
// thresholds at one configuration version. A batch loads one snapshot and
// scores every ticker against it.
type Snapshot struct {
	Version    string
	Sets       map[domain.AssetClass]WeightSet
	Thresholds map[domain.AssetClass]map[string]float64
}

// SetFor returns the weight set for a class, falling back to the dividend
// stock allocation for unrecognized classes (matching the universal gate).
func (s *Snapshot) SetFor(class domain.AssetClass) WeightSet {
	if ws, ok := s.Sets[class]; ok {
		return ws
	}
	return s.Sets[domain.ClassDividendStock]
}

// Threshold looks up a named gate/veto threshold for a class, with a reported
// miss so gates can fail closed on absent configuration.
func (s *Snapshot) Threshold(class domain.AssetClass, name string) (float64, bool) {
	if m, ok := s.Thresholds[class]; ok {
		if v, ok := m[name]; ok {
			return v, true
		}
	}
	if m, ok := s.Thresholds[domain.ClassUnknown]; ok {
		if v, ok := m[name]; ok {
			return v, true
		}
	}
	return 0, false
}

// Validate checks every weight set in the snapshot.
func (s *Snapshot) Validate() error {
	for _, ws := range s.Sets {
		if err := ws.Validate(); err != nil {
			return err
		}
	}
	return nil
}
