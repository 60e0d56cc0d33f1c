package taxmeta

import (
	"github.com/holdfast/yieldscore/internal/domain"
)

// Build assembles the tax-relevant metadata block for a security. It is
// attached to every ScoreRecord unconditionally: the downstream tax module
// depends on the field being present whether or not the security was vetoed.
// Nothing in it ever feeds back into the score.
func Build(sec domain.Security) domain.TaxMetadata {
	meta := domain.TaxMetadata{
		PreferredAccount: "taxable",
	}

	if q, ok := sec.Features.Value(domain.FeatQualifiedPct); ok {
		meta.QualifiedDividendPct = clampPct(q)
	} else {
		meta.QualifiedDividendPct = defaultQualifiedPct(sec.Class)
	}

	if roc, ok := sec.Features.Value(domain.FeatROCPct); ok {
		meta.ReturnOfCapitalPct = clampPct(roc)
	} else if sec.Class == domain.ClassCoveredCall || sec.Class == domain.ClassClosedEnd {
		// Option-overlay and managed-distribution funds routinely classify a
		// slice of the payout as return of capital.
		meta.ReturnOfCapitalPct = 0.30
	}

	if k1, ok := sec.Features.Label(domain.LabelIssuesK1); ok && k1 == "true" {
		meta.IssuesK1 = true
	}

	// Ordinary-income-heavy payers belong in deferred accounts when the
	// choice exists.
	if meta.QualifiedDividendPct < 0.50 && meta.ReturnOfCapitalPct < 0.50 {
		meta.PreferredAccount = "tax_deferred"
	}

	if domicile, ok := sec.Features.Label(domain.LabelDomicile); ok && domicile != "US" {
		meta.WithholdingNote = "foreign domicile: dividend withholding may apply"
	}

	return meta
}

// defaultQualifiedPct is the class-typical share of the payout taxed as
// qualified dividends when the provider did not supply one.
func defaultQualifiedPct(class domain.AssetClass) float64 {
	switch class {
	case domain.ClassDividendStock, domain.ClassDividendETF, domain.ClassPreferred:
		return 0.90
	case domain.ClassCoveredCall:
		return 0.20 // option premium is ordinary income
	case domain.ClassREIT, domain.ClassMortgageREIT, domain.ClassBDC:
		return 0.05 // pass-through ordinary income
	case domain.ClassBondFund:
		return 0.0
	default:
		return 0.50
	}
}

func clampPct(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
