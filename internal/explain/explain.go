// Package explain renders human-readable narratives for audit findings. It is
// a stateless, pure function of the finding's evidence variant.
package explain

import (
	"fmt"
	"strings"

	"github.com/propworks/rentaudit/internal/canonical"
)

// Explain generates the narrative for a finding. The switch over evidence
// variants is total; findings carrying no recognized evidence fall back to
// their stored explanation or a fixed placeholder.
func Explain(f canonical.AuditFinding) string {
	switch ev := f.Evidence.(type) {
	case canonical.LeaseCliffEvidence:
		return explainLeaseCliff(f, ev)
	case canonical.RentProrationEvidence:
		return explainRentProration(f, ev)
	case canonical.ConcessionMisalignedEvidence:
		return explainConcessionMisaligned(f, ev)
	case canonical.ExcessiveConcessionEvidence:
		return explainExcessiveConcession(f, ev)
	case canonical.MissingChargesEvidence:
		return explainMissingCharges(f, ev)
	case canonical.FeeMismatchEvidence:
		return explainFeeMismatch(f, ev)
	case canonical.DoubleDiscountEvidence:
		return explainDoubleDiscount(f, ev)
	default:
		if f.Explanation != "" {
			return f.Explanation
		}
		return "No explanation available"
	}
}

func explainLeaseCliff(f canonical.AuditFinding, ev canonical.LeaseCliffEvidence) string {
	return fmt.Sprintf(
		"Revenue cliff detected in Unit %s. Rent dropped from %s in %s to %s in %s, "+
			"a decline of %s (%s). This indicates a potential lease expiration or renewal issue.",
		f.UnitNumber,
		formatCurrency(ev.PrevRent), orUnknown(ev.PrevMonth),
		formatCurrency(ev.CurrRent), orUnknown(ev.CurrMonth),
		formatPercent(ev.DropPct), formatCurrency(ev.PrevRent-ev.CurrRent),
	)
}

func explainRentProration(f canonical.AuditFinding, ev canonical.RentProrationEvidence) string {
	month := orUnknown(ev.Month)

	if ev.ActualRent < ev.ExpectedRent {
		if ev.IsLeaseStart {
			return fmt.Sprintf(
				"Unit %s shows partial rent of %s in %s (expected: %s). "+
					"This appears to be a move-in proration, but verify the move-in date is correct.",
				f.UnitNumber, formatCurrency(ev.ActualRent), month, formatCurrency(ev.ExpectedRent),
			)
		}
		return fmt.Sprintf(
			"Unit %s charged %s in %s, but expected base rent is %s. This is %s less than "+
				"expected. Verify if there's a valid proration or rent adjustment.",
			f.UnitNumber, formatCurrency(ev.ActualRent), month, formatCurrency(ev.ExpectedRent),
			formatCurrency(ev.ExpectedRent-ev.ActualRent),
		)
	}
	return fmt.Sprintf(
		"Unit %s charged %s in %s, which exceeds the base rent of %s by %s. "+
			"Verify this increase is authorized.",
		f.UnitNumber, formatCurrency(ev.ActualRent), month, formatCurrency(ev.ExpectedRent),
		formatCurrency(ev.ActualRent-ev.ExpectedRent),
	)
}

func explainConcessionMisaligned(f canonical.AuditFinding, ev canonical.ConcessionMisalignedEvidence) string {
	return fmt.Sprintf(
		"Unit %s has a concession of %s in %s, but no rent charge in that month. "+
			"Concessions should align with the months when rent is charged.",
		f.UnitNumber, formatCurrency(ev.ConcessionAmount), orUnknown(ev.ConcessionMonth),
	)
}

func explainExcessiveConcession(f canonical.AuditFinding, ev canonical.ExcessiveConcessionEvidence) string {
	return fmt.Sprintf(
		"Unit %s has an excessive concession in %s. Rent: %s, Concession: %s (%s of rent). "+
			"Concessions exceeding 50%% of rent should be reviewed for accuracy.",
		f.UnitNumber, orUnknown(ev.Month), formatCurrency(ev.Rent),
		formatCurrency(ev.Concession), formatPercent(ev.ConcessionPct),
	)
}

func explainMissingCharges(f canonical.AuditFinding, ev canonical.MissingChargesEvidence) string {
	preview := ev.ExpectedFees
	suffix := ""
	if len(preview) > 5 {
		preview = preview[:5]
		suffix = "..."
	}
	return fmt.Sprintf(
		"Unit %s is missing recurring charges. Expected fees include: %s%s. "+
			"Verify if these charges should be applied.",
		f.UnitNumber, strings.Join(preview, ", "), suffix,
	)
}

func explainFeeMismatch(f canonical.AuditFinding, ev canonical.FeeMismatchEvidence) string {
	diff := ev.ActualAmount - ev.ExpectedAmount
	direction := "under"
	if diff > 0 {
		direction = "over"
	}
	return fmt.Sprintf(
		"Unit %s has incorrect %s amount in %s. Expected: %s, Actual: %s (difference: %s %s). "+
			"Verify fee schedule is correctly applied.",
		f.UnitNumber, orUnknown(ev.FeeType), orUnknown(ev.Month),
		formatCurrency(ev.ExpectedAmount), formatCurrency(ev.ActualAmount),
		formatCurrency(abs(diff)), direction,
	)
}

func explainDoubleDiscount(f canonical.AuditFinding, ev canonical.DoubleDiscountEvidence) string {
	return fmt.Sprintf(
		"Unit %s (Resident: %s) is marked as an employee unit but also has %d concession(s) "+
			"totaling %s. This may represent a double discount. Verify that employee allowance "+
			"and promotional concessions are not both applied.",
		f.UnitNumber, orUnknown(ev.ResidentName), ev.ConcessionCount, formatCurrency(ev.TotalConcessions),
	)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
