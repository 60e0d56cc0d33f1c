package weights

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/holdfast/yieldscore/internal/domain"
)

// fileDoc mirrors the on-disk layout of config/weights.yaml. Versions are
// append-only entries; publishing a new version adds a key and moves the
// current pointer, it never edits an existing entry.
type fileDoc struct {
	CurrentVersion string                `yaml:"current_version"`
	Versions       map[string]versionDoc `yaml:"versions"`
}

type versionDoc struct {
	Sets       map[string]map[string]float64 `yaml:"sets"`
	Thresholds map[string]map[string]float64 `yaml:"thresholds"`
}

// FileStore is the YAML-backed weight/threshold store used by the CLI and in
// development. Production deployments point the accessor at the postgres
// store instead; both honor the same versioning semantics.
type FileStore struct {
	path string
}

// NewFileStore creates a store reading from the given YAML path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// CurrentVersion returns the version pointer from the file.
func (fs *FileStore) CurrentVersion(ctx context.Context) (string, error) {
	doc, err := fs.read()
	if err != nil {
		return "", err
	}
	if doc.CurrentVersion == "" {
		return "", fmt.Errorf("weights file %s has no current_version", fs.path)
	}
	return doc.CurrentVersion, nil
}

// Load materializes one version into an immutable snapshot.
func (fs *FileStore) Load(ctx context.Context, version string) (*Snapshot, error) {
	doc, err := fs.read()
	if err != nil {
		return nil, err
	}
	vdoc, ok := doc.Versions[version]
	if !ok {
		return nil, fmt.Errorf("weights file %s has no version %q", fs.path, version)
	}

	snap := &Snapshot{
		Version:    version,
		Sets:       make(map[domain.AssetClass]WeightSet, len(vdoc.Sets)),
		Thresholds: make(map[domain.AssetClass]map[string]float64, len(vdoc.Thresholds)),
	}
	for class, raw := range vdoc.Sets {
		ws := WeightSet{
			Version: version,
			Class:   domain.AssetClass(class),
			Weights: make(map[Component]float64, len(raw)),
		}
		for name, w := range raw {
			ws.Weights[Component(name)] = w
		}
		snap.Sets[ws.Class] = ws
	}
	for class, raw := range vdoc.Thresholds {
		m := make(map[string]float64, len(raw))
		for name, v := range raw {
			m[name] = v
		}
		snap.Thresholds[domain.AssetClass(class)] = m
	}
	return snap, nil
}

func (fs *FileStore) read() (*fileDoc, error) {
	data, err := os.ReadFile(fs.path)
	if err != nil {
		return nil, fmt.Errorf("read weights file %s: %w", fs.path, err)
	}
	var doc fileDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse weights file %s: %w", fs.path, err)
	}
	return &doc, nil
}

// StaticStore serves a fixed snapshot. Used by tests and as the built-in
// default when no weights file is configured.
type StaticStore struct {
	Snap *Snapshot
}

func (s *StaticStore) CurrentVersion(ctx context.Context) (string, error) {
	return s.Snap.Version, nil
}

func (s *StaticStore) Load(ctx context.Context, version string) (*Snapshot, error) {
	if version != s.Snap.Version {
		return nil, fmt.Errorf("static store only has version %q", s.Snap.Version)
	}
	return s.Snap, nil
}

// DefaultSnapshot returns the built-in weight sets and gate thresholds.
// The allocations encode the safety bias of the system: durability carries
// the largest weight everywhere, and the most decay-prone classes shift even
// further toward durability at the expense of technicals.
func DefaultSnapshot() *Snapshot {
	sets := map[domain.AssetClass][4]float64{
		// income, durability, valuation, technical
		domain.ClassDividendStock: {0.25, 0.35, 0.20, 0.20},
		domain.ClassDividendETF:   {0.30, 0.30, 0.20, 0.20},
		domain.ClassCoveredCall:   {0.30, 0.40, 0.15, 0.15},
		domain.ClassClosedEnd:     {0.25, 0.30, 0.30, 0.15},
		domain.ClassREIT:          {0.25, 0.35, 0.25, 0.15},
		domain.ClassMortgageREIT:  {0.25, 0.45, 0.15, 0.15},
		domain.ClassBDC:           {0.25, 0.40, 0.20, 0.15},
		domain.ClassBondFund:      {0.30, 0.35, 0.20, 0.15},
		domain.ClassPreferred:     {0.30, 0.35, 0.20, 0.15},
	}

	snap := &Snapshot{
		Version:    "builtin-v1",
		Sets:       make(map[domain.AssetClass]WeightSet, len(sets)),
		Thresholds: defaultThresholds(),
	}
	for class, alloc := range sets {
		snap.Sets[class] = WeightSet{
			Version: snap.Version,
			Class:   class,
			Weights: map[Component]float64{
				Income:     alloc[0],
				Durability: alloc[1],
				Valuation:  alloc[2],
				Technical:  alloc[3],
			},
		}
	}
	return snap
}

func defaultThresholds() map[domain.AssetClass]map[string]float64 {
	return map[domain.AssetClass]map[string]float64{
		domain.ClassDividendStock: {
			"min_yield":        0.02,
			"max_yield":        0.12,
			"min_coverage":     1.2,
			"min_streak_years": 5,
			"max_payout_ratio": 0.90,
			"min_adv_usd":      1_000_000,
		},
		domain.ClassDividendETF: {
			"min_aum_usd":       100_000_000,
			"min_history_years": 3,
			"max_expense_ratio": 0.60,
			"min_adv_usd":       1_000_000,
		},
		domain.ClassCoveredCall: {
			"min_aum_usd":           200_000_000,
			"min_history_years":     2,
			"max_distribution_rate": 0.14,
			"min_premium_coverage":  0.60,
			"min_adv_usd":           2_000_000,
		},
		domain.ClassClosedEnd: {
			"min_discount": -0.25, // discount no deeper than -25%
			"max_premium":  0.05,  // premium no richer than +5%
			"min_coverage": 0.90,
			"max_leverage": 0.40,
			"min_adv_usd":  500_000,
		},
		domain.ClassREIT: {
			"max_ffo_payout":     0.95,
			"max_debt_to_ebitda": 7.0,
			"min_coverage":       1.05,
			"min_adv_usd":        1_000_000,
		},
		domain.ClassMortgageREIT: {
			"min_spread":     0.010,
			"min_book_trend": -0.15, // book value decline capped at -15%/yr
			"min_coverage":   0.95,
			"min_adv_usd":    1_000_000,
		},
		domain.ClassBDC: {
			"min_nii_coverage": 1.0,
			"min_nav_trend":    -0.10,
			"max_leverage":     1.25,
			"min_adv_usd":      500_000,
		},
		domain.ClassBondFund: {
			"max_duration":       10.0,
			"min_credit_quality": 3.0, // 1=CCC .. 7=AAA, require BB or better on average
			"max_expense_ratio":  0.80,
			"min_adv_usd":        500_000,
		},
		domain.ClassPreferred: {
			"min_call_buffer": 0.0,
			"min_coverage":    1.5,
			"min_adv_usd":     250_000,
		},
		// Universal fallback thresholds, also the last-resort lookup tier.
		domain.ClassUnknown: {
			"min_adv_usd":      250_000,
			"min_price":        1.0,
			"min_completeness": 0.40,
		},
	}
}
