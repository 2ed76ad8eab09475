package explain

import (
	"testing"

	"github.com/propworks/rentaudit/internal/canonical"
	"github.com/stretchr/testify/assert"
)

func TestExplainLeaseCliff(t *testing.T) {
	f := canonical.AuditFinding{
		UnitNumber: "A-101",
		RuleID:     canonical.RuleLeaseCliff,
		Evidence: canonical.LeaseCliffEvidence{
			PrevMonth: "Jan 2026",
			PrevRent:  2000,
			CurrMonth: "Feb 2026",
			CurrRent:  900,
			DropPct:   0.55,
		},
	}

	got := Explain(f)
	assert.Contains(t, got, "Unit A-101")
	assert.Contains(t, got, "$2,000.00 in Jan 2026")
	assert.Contains(t, got, "$900.00 in Feb 2026")
	assert.Contains(t, got, "55.0%")
	assert.Contains(t, got, "$1,100.00")
}

func TestExplainRentProration(t *testing.T) {
	base := canonical.AuditFinding{UnitNumber: "A-101", RuleID: canonical.RuleRentProration}

	t.Run("move-in proration", func(t *testing.T) {
		f := base
		f.Evidence = canonical.RentProrationEvidence{
			ExpectedRent: 1150, ActualRent: 698, Month: "Jan 2026", IsLeaseStart: true,
		}
		assert.Contains(t, Explain(f), "move-in proration")
	})

	t.Run("unexplained shortfall", func(t *testing.T) {
		f := base
		f.Evidence = canonical.RentProrationEvidence{
			ExpectedRent: 1150, ActualRent: 698, Month: "Mar 2026",
		}
		got := Explain(f)
		assert.Contains(t, got, "$452.00 less than expected")
	})

	t.Run("overage", func(t *testing.T) {
		f := base
		f.Evidence = canonical.RentProrationEvidence{
			ExpectedRent: 1150, ActualRent: 1300, Month: "Jan 2026", IsLeaseStart: true,
		}
		got := Explain(f)
		assert.Contains(t, got, "exceeds the base rent")
		assert.Contains(t, got, "$150.00")
	})
}

func TestExplainFeeMismatch_Direction(t *testing.T) {
	f := canonical.AuditFinding{UnitNumber: "A-101", RuleID: canonical.RuleFeeMismatch}

	f.Evidence = canonical.FeeMismatchEvidence{
		FeeType: "Valet Trash", ExpectedAmount: 35, ActualAmount: 45, Month: "Jan 2026",
	}
	assert.Contains(t, Explain(f), "$10.00 over")

	f.Evidence = canonical.FeeMismatchEvidence{
		FeeType: "Valet Trash", ExpectedAmount: 35, ActualAmount: 30, Month: "Jan 2026",
	}
	assert.Contains(t, Explain(f), "$5.00 under")
}

func TestExplainDoubleDiscount(t *testing.T) {
	f := canonical.AuditFinding{
		UnitNumber: "B-201",
		RuleID:     canonical.RuleDoubleDiscount,
		Evidence: canonical.DoubleDiscountEvidence{
			IsEmployeeUnit:   true,
			ResidentName:     "Clayton Curtis",
			TotalConcessions: 676,
			ConcessionCount:  1,
		},
	}

	got := Explain(f)
	assert.Contains(t, got, "Clayton Curtis")
	assert.Contains(t, got, "1 concession(s)")
	assert.Contains(t, got, "$676.00")
}

func TestExplainMissingCharges_TruncatesLongLists(t *testing.T) {
	f := canonical.AuditFinding{
		UnitNumber: "A-101",
		RuleID:     canonical.RuleMissingCharge,
		Evidence: canonical.MissingChargesEvidence{
			ExpectedFees: []string{"Billing Fee", "CAM", "Cable", "HOA", "Package Locker", "Pest Control"},
		},
	}

	got := Explain(f)
	assert.Contains(t, got, "Billing Fee, CAM, Cable, HOA, Package Locker...")
	assert.NotContains(t, got, "Pest Control")
}

func TestExplain_ZeroValueEvidenceDoesNotPanic(t *testing.T) {
	// Zero-value variants render with placeholder text instead of failing.
	variants := []canonical.Evidence{
		canonical.LeaseCliffEvidence{},
		canonical.RentProrationEvidence{},
		canonical.ConcessionMisalignedEvidence{},
		canonical.ExcessiveConcessionEvidence{},
		canonical.MissingChargesEvidence{},
		canonical.FeeMismatchEvidence{},
		canonical.DoubleDiscountEvidence{},
	}
	for _, ev := range variants {
		f := canonical.AuditFinding{UnitNumber: "A-101", Evidence: ev}
		assert.NotEmpty(t, Explain(f))
	}
}

func TestExplain_UnknownEvidenceFallsBack(t *testing.T) {
	f := canonical.AuditFinding{UnitNumber: "A-101"}
	assert.Equal(t, "No explanation available", Explain(f))

	f.Explanation = "manually entered note"
	assert.Equal(t, "manually entered note", Explain(f))
}

func TestFormatCurrency(t *testing.T) {
	assert.Equal(t, "$0.00", formatCurrency(0))
	assert.Equal(t, "$1,234.56", formatCurrency(1234.56))
	assert.Equal(t, "-$1,234.56", formatCurrency(-1234.56))
	assert.Equal(t, "$1,000,000.00", formatCurrency(1_000_000))
	assert.Equal(t, "$999.99", formatCurrency(999.99))
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "55.0%", formatPercent(0.55))
	assert.Equal(t, "100.0%", formatPercent(1))
	assert.Equal(t, "0.0%", formatPercent(0))
}
