// Package anomaly orchestrates rule execution, ranks the resulting findings,
// and exposes read filters and summary statistics over the latest pass.
package anomaly

import (
	"sort"

	"github.com/propworks/rentaudit/internal/canonical"
	"github.com/propworks/rentaudit/internal/rules"
)

// Detector runs detection over a (units, transactions) snapshot and retains
// the ranked findings of the most recent pass.
type Detector struct {
	cfg          rules.Config
	units        []canonical.Unit
	transactions []canonical.RecurringTransaction
	findings     []canonical.AuditFinding
}

// SummaryStats summarizes one detection pass.
type SummaryStats struct {
	TotalFindings int                        `json:"total_findings"`
	BySeverity    map[canonical.Severity]int `json:"by_severity"`
	ByRule        map[string]int             `json:"by_rule"`
	AffectedUnits int                        `json:"affected_units"`
}

// New builds a detector over an immutable snapshot.
func New(cfg rules.Config, units []canonical.Unit, transactions []canonical.RecurringTransaction) *Detector {
	return &Detector{cfg: cfg, units: units, transactions: transactions}
}

// Detect runs every rule and returns findings sorted by severity rank, then
// unit number, then month. Unit-scoped findings (no month) sort before any
// month-scoped finding of the same unit.
func (d *Detector) Detect() []canonical.AuditFinding {
	findings := rules.New(d.cfg, d.units, d.transactions).RunAll()

	sort.SliceStable(findings, func(i, j int) bool {
		a, b := findings[i], findings[j]
		if a.Severity.Rank() != b.Severity.Rank() {
			return a.Severity.Rank() < b.Severity.Rank()
		}
		if a.UnitNumber != b.UnitNumber {
			return a.UnitNumber < b.UnitNumber
		}
		return a.MonthKey() < b.MonthKey()
	})

	d.findings = findings
	return append([]canonical.AuditFinding(nil), findings...)
}

// Findings returns the retained findings of the latest pass.
func (d *Detector) Findings() []canonical.AuditFinding {
	return append([]canonical.AuditFinding(nil), d.findings...)
}

// FindingsBySeverity filters the latest pass by severity level.
func (d *Detector) FindingsBySeverity(severity canonical.Severity) []canonical.AuditFinding {
	return d.filter(func(f canonical.AuditFinding) bool { return f.Severity == severity })
}

// FindingsByUnit filters the latest pass by unit id.
func (d *Detector) FindingsByUnit(unitID string) []canonical.AuditFinding {
	return d.filter(func(f canonical.AuditFinding) bool { return f.UnitID == unitID })
}

// FindingsByRule filters the latest pass by rule id.
func (d *Detector) FindingsByRule(ruleID canonical.RuleID) []canonical.AuditFinding {
	return d.filter(func(f canonical.AuditFinding) bool { return f.RuleID == ruleID })
}

// SummaryStats aggregates the latest pass. All four severity buckets are
// always present, even when zero.
func (d *Detector) SummaryStats() SummaryStats {
	stats := SummaryStats{
		TotalFindings: len(d.findings),
		BySeverity: map[canonical.Severity]int{
			canonical.SeverityCritical: 0,
			canonical.SeverityHigh:     0,
			canonical.SeverityMedium:   0,
			canonical.SeverityLow:      0,
		},
		ByRule: make(map[string]int),
	}

	unitSet := make(map[string]struct{})
	for _, f := range d.findings {
		stats.BySeverity[f.Severity]++
		stats.ByRule[f.RuleName]++
		unitSet[f.UnitID] = struct{}{}
	}
	stats.AffectedUnits = len(unitSet)
	return stats
}

func (d *Detector) filter(keep func(canonical.AuditFinding) bool) []canonical.AuditFinding {
	var out []canonical.AuditFinding
	for _, f := range d.findings {
		if keep(f) {
			out = append(out, f)
		}
	}
	return out
}
