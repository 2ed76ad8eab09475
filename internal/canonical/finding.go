package canonical

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Severity ranks how urgently a finding needs review.
type Severity string

const (
	SeverityCritical Severity = "Critical"
	SeverityHigh     Severity = "High"
	SeverityMedium   Severity = "Medium"
	SeverityLow      Severity = "Low"
)

// Rank returns the sort rank for a severity, lower is more severe. Unknown
// severities sort last.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityHigh:
		return 1
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 3
	default:
		return 999
	}
}

// RuleID identifies one of the fixed audit rules.
type RuleID string

const (
	RuleLeaseCliff           RuleID = "LEASE_CLIFF"
	RuleRentProration        RuleID = "RENT_PRORATION"
	RuleConcessionMisaligned RuleID = "CONCESSION_MISALIGNED"
	RuleExcessiveConcession  RuleID = "EXCESSIVE_CONCESSION"
	RuleMissingCharge        RuleID = "MISSING_RECURRING_CHARGE"
	RuleFeeMismatch          RuleID = "FEE_AMOUNT_MISMATCH"
	RuleDoubleDiscount       RuleID = "DOUBLE_DISCOUNT"
)

// FindingStatus tracks the review lifecycle of a finding.
type FindingStatus string

const (
	StatusOpen       FindingStatus = "Open"
	StatusReviewed   FindingStatus = "Reviewed"
	StatusOverridden FindingStatus = "Overridden"
	StatusClosed     FindingStatus = "Closed"
)

// ValidFindingStatus reports whether s is one of the closed status set.
func ValidFindingStatus(s FindingStatus) bool {
	switch s {
	case StatusOpen, StatusReviewed, StatusOverridden, StatusClosed:
		return true
	}
	return false
}

// AuditFinding is one flagged billing anomaly. Findings are regenerated from
// scratch on every detection pass; FindingID is not stable across passes, so
// consumers needing cross-run identity must key on (UnitID, RuleID, Month).
type AuditFinding struct {
	FindingID   string        `json:"finding_id"`
	UnitID      string        `json:"unit_id"`
	UnitNumber  string        `json:"unit_number"`
	RuleID      RuleID        `json:"rule_id"`
	RuleName    string        `json:"rule_name"`
	Severity    Severity      `json:"severity"`
	Month       *time.Time    `json:"month,omitempty"`
	Delta       *float64      `json:"delta,omitempty"`
	Evidence    Evidence      `json:"evidence,omitempty"`
	Explanation string        `json:"explanation,omitempty"`
	Status      FindingStatus `json:"status"`
	Notes       string        `json:"notes,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	ReviewedAt  *time.Time    `json:"reviewed_at,omitempty"`
	ReviewedBy  string        `json:"reviewed_by,omitempty"`
}

// NewFinding fills construction defaults: a fresh FindingID when absent, Open
// status, and CreatedAt set exactly once.
func NewFinding(f AuditFinding) AuditFinding {
	if f.FindingID == "" {
		f.FindingID = NewFindingID()
	}
	if f.Status == "" {
		f.Status = StatusOpen
	}
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now().UTC()
	}
	return f
}

// NewFindingID generates a random finding identifier.
func NewFindingID() string {
	return fmt.Sprintf("finding_%s", uuid.NewString()[:8])
}

// MonthKey returns the finding's month as a sortable "2006-01" key, with the
// empty string for unit-scoped findings so they sort before any real month.
func (f AuditFinding) MonthKey() string {
	if f.Month == nil {
		return ""
	}
	return f.Month.Format("2006-01")
}
