package taxmeta

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/holdfast/yieldscore/internal/domain"
)

func sec(class domain.AssetClass, values map[string]float64, labels map[string]string) domain.Security {
	return domain.Security{
		Ticker:   "T",
		Class:    class,
		Features: domain.FeatureBag{Values: values, Labels: labels},
	}
}

func TestBuildUsesProvidedBreakdown(t *testing.T) {
	meta := Build(sec(domain.ClassCoveredCall, map[string]float64{
		domain.FeatQualifiedPct: 0.15,
		domain.FeatROCPct:       0.55,
	}, nil))

	assert.InDelta(t, 0.15, meta.QualifiedDividendPct, 1e-9)
	assert.InDelta(t, 0.55, meta.ReturnOfCapitalPct, 1e-9)
	// Heavy return of capital is tax-efficient enough to stay in taxable.
	assert.Equal(t, "taxable", meta.PreferredAccount)
}

func TestBuildClassDefaults(t *testing.T) {
	stock := Build(sec(domain.ClassDividendStock, nil, nil))
	assert.InDelta(t, 0.90, stock.QualifiedDividendPct, 1e-9)
	assert.Equal(t, "taxable", stock.PreferredAccount)

	reit := Build(sec(domain.ClassREIT, nil, nil))
	assert.InDelta(t, 0.05, reit.QualifiedDividendPct, 1e-9)
	assert.Equal(t, "tax_deferred", reit.PreferredAccount)

	cc := Build(sec(domain.ClassCoveredCall, nil, nil))
	assert.InDelta(t, 0.30, cc.ReturnOfCapitalPct, 1e-9)
	assert.Equal(t, "tax_deferred", cc.PreferredAccount)
}

func TestBuildClampsOutOfRangeInputs(t *testing.T) {
	meta := Build(sec(domain.ClassBondFund, map[string]float64{
		domain.FeatQualifiedPct: 1.4,
		domain.FeatROCPct:       -0.2,
	}, nil))
	assert.Equal(t, 1.0, meta.QualifiedDividendPct)
	assert.Equal(t, 0.0, meta.ReturnOfCapitalPct)
}

func TestBuildK1AndDomicile(t *testing.T) {
	meta := Build(sec(domain.ClassBDC, nil, map[string]string{
		domain.LabelIssuesK1: "true",
		domain.LabelDomicile: "CA",
	}))
	assert.True(t, meta.IssuesK1)
	assert.NotEmpty(t, meta.WithholdingNote)

	meta = Build(sec(domain.ClassBDC, nil, map[string]string{
		domain.LabelDomicile: "US",
	}))
	assert.False(t, meta.IssuesK1)
	assert.Empty(t, meta.WithholdingNote)
}
