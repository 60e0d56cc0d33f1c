package domain

import (
	"time"
)

// AssetClass tags a security with the income vehicle family it belongs to.
// The set is a fixed enumeration: gate dispatch and weight lookup key on it,
// and anything outside the list routes to the universal fallback gate.
type AssetClass string

const (
	ClassDividendStock AssetClass = "dividend_stock"
	ClassDividendETF   AssetClass = "dividend_etf"
	ClassCoveredCall   AssetClass = "covered_call_etf"
	ClassClosedEnd     AssetClass = "closed_end_fund"
	ClassREIT          AssetClass = "reit"
	ClassMortgageREIT  AssetClass = "mortgage_reit"
	ClassBDC           AssetClass = "bdc"
	ClassBondFund      AssetClass = "bond_fund"
	ClassPreferred     AssetClass = "preferred"
	ClassUnknown       AssetClass = "unknown"
)

// AllClasses lists every recognized asset class, in stable order.
func AllClasses() []AssetClass {
	return []AssetClass{
		ClassDividendStock,
		ClassDividendETF,
		ClassCoveredCall,
		ClassClosedEnd,
		ClassREIT,
		ClassMortgageREIT,
		ClassBDC,
		ClassBondFund,
		ClassPreferred,
	}
}

// ErosionExposed reports whether the class carries structural NAV decay and
// therefore requires a Monte Carlo erosion run before scoring completes.
func (c AssetClass) ErosionExposed() bool {
	switch c {
	case ClassCoveredCall, ClassMortgageREIT, ClassClosedEnd:
		return true
	}
	return false
}

// Valid reports whether the class is one of the recognized enum values.
func (c AssetClass) Valid() bool {
	for _, known := range AllClasses() {
		if c == known {
			return true
		}
	}
	return c == ClassUnknown
}

func (c AssetClass) String() string { return string(c) }

// FeatureBag is the flat feature snapshot collected for one security. Values
// holds numeric features; Labels holds categorical ones. Absent keys are
// tolerated everywhere downstream: sub-scorers award partial credit rather
// than failing.
type FeatureBag struct {
	Values map[string]float64 `json:"values"`
	Labels map[string]string  `json:"labels,omitempty"`
}

// NewFeatureBag returns an empty bag ready for population.
func NewFeatureBag() FeatureBag {
	return FeatureBag{
		Values: make(map[string]float64),
		Labels: make(map[string]string),
	}
}

// Value returns a numeric feature and whether it was present.
func (fb FeatureBag) Value(name string) (float64, bool) {
	v, ok := fb.Values[name]
	return v, ok
}

// Label returns a categorical feature and whether it was present.
func (fb FeatureBag) Label(name string) (string, bool) {
	l, ok := fb.Labels[name]
	return l, ok
}

// Completeness returns the fraction of the requested feature names that are
// present in the bag. Used for the universal gate and the confidence value.
func (fb FeatureBag) Completeness(names []string) float64 {
	if len(names) == 0 {
		return 1.0
	}
	present := 0
	for _, name := range names {
		if _, ok := fb.Values[name]; ok {
			present++
		}
	}
	return float64(present) / float64(len(names))
}

// Security is the immutable input to one scoring run. A fresh snapshot is
// produced for every run by the feature provider; nothing in the pipeline
// mutates it.
type Security struct {
	Ticker     string     `json:"ticker"`
	Class      AssetClass `json:"class"`
	Features   FeatureBag `json:"features"`
	Provenance []string   `json:"provenance"` // data sources that fed the bag
	AsOf       time.Time  `json:"as_of"`
}
