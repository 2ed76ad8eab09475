// Package storage persists the canonical audit model. The in-memory model
// remains the source of truth during a session; storage is the durable sink
// that detection passes and review actions write through to.
package storage

import (
	"encoding/json"
	"time"

	"github.com/propworks/rentaudit/internal/canonical"
	"gorm.io/datatypes"
)

// UnitRecord is the persisted form of a canonical unit.
type UnitRecord struct {
	UnitID         string     `gorm:"primaryKey" json:"unit_id"`
	UnitNumber     string     `gorm:"not null;index" json:"unit_number"`
	ResidentName   string     `json:"resident_name,omitempty"`
	Status         string     `json:"status,omitempty"`
	IsEmployeeUnit bool       `gorm:"not null;default:false" json:"is_employee_unit"`
	LeaseStart     *time.Time `json:"lease_start,omitempty"`
	LeaseEnd       *time.Time `json:"lease_end,omitempty"`
	BaseRent       *float64   `json:"base_rent,omitempty"`
	CreatedAt      time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (UnitRecord) TableName() string { return "units" }

// TransactionRecord is the persisted form of a recurring transaction.
type TransactionRecord struct {
	TransactionID string     `gorm:"primaryKey" json:"transaction_id"`
	UnitID        string     `gorm:"not null;index" json:"unit_id"`
	UnitNumber    string     `gorm:"not null" json:"unit_number"`
	Category      string     `gorm:"not null;index" json:"category"`
	Subcategory   string     `json:"subcategory,omitempty"`
	Amount        float64    `gorm:"not null" json:"amount"`
	Month         *time.Time `gorm:"index" json:"month,omitempty"`
	Description   string     `json:"description,omitempty"`
	Source        string     `json:"source"`
	CreatedAt     time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (TransactionRecord) TableName() string { return "recurring_transactions" }

// FindingRecord is the persisted form of an audit finding. Evidence is stored
// as the finding's JSON evidence object so exports keep the documented keys.
type FindingRecord struct {
	FindingID   string            `gorm:"primaryKey" json:"finding_id"`
	UnitID      string            `gorm:"not null;index" json:"unit_id"`
	UnitNumber  string            `gorm:"not null" json:"unit_number"`
	RuleID      string            `gorm:"not null;index" json:"rule_id"`
	RuleName    string            `gorm:"not null" json:"rule_name"`
	Severity    string            `gorm:"not null;index" json:"severity"`
	Month       *time.Time        `json:"month,omitempty"`
	Delta       *float64          `json:"delta,omitempty"`
	Evidence    datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"evidence,omitempty"`
	Explanation string            `json:"explanation,omitempty"`
	Status      string            `gorm:"not null;index" json:"status"`
	Notes       string            `json:"notes,omitempty"`
	CreatedAt   time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	ReviewedAt  *time.Time        `json:"reviewed_at,omitempty"`
	ReviewedBy  string            `json:"reviewed_by,omitempty"`
}

func (FindingRecord) TableName() string { return "audit_findings" }

// AuditTrailRecord is one append-only operational event: an import, a
// detection pass, or a reviewer action.
type AuditTrailRecord struct {
	ID        int64             `gorm:"primaryKey" json:"id"`
	Action    string            `gorm:"not null;index" json:"action"`
	Actor     string            `json:"actor,omitempty"`
	TargetID  string            `json:"target_id,omitempty"`
	Details   datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"details,omitempty"`
	CreatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP;index" json:"created_at"`
}

func (AuditTrailRecord) TableName() string { return "audit_trail" }

func toUnitRecord(u canonical.Unit) UnitRecord {
	return UnitRecord{
		UnitID:         u.UnitID,
		UnitNumber:     u.UnitNumber,
		ResidentName:   u.ResidentName,
		Status:         u.Status,
		IsEmployeeUnit: u.IsEmployeeUnit,
		LeaseStart:     u.LeaseStart,
		LeaseEnd:       u.LeaseEnd,
		BaseRent:       u.BaseRent,
	}
}

func toTransactionRecord(t canonical.RecurringTransaction) TransactionRecord {
	return TransactionRecord{
		TransactionID: t.TransactionID,
		UnitID:        t.UnitID,
		UnitNumber:    t.UnitNumber,
		Category:      string(t.Category),
		Subcategory:   t.Subcategory,
		Amount:        t.Amount,
		Month:         t.Month,
		Description:   t.Description,
		Source:        t.Source,
	}
}

func toFindingRecord(f canonical.AuditFinding) FindingRecord {
	return FindingRecord{
		FindingID:   f.FindingID,
		UnitID:      f.UnitID,
		UnitNumber:  f.UnitNumber,
		RuleID:      string(f.RuleID),
		RuleName:    f.RuleName,
		Severity:    string(f.Severity),
		Month:       f.Month,
		Delta:       f.Delta,
		Evidence:    evidenceMap(f.Evidence),
		Explanation: f.Explanation,
		Status:      string(f.Status),
		Notes:       f.Notes,
		CreatedAt:   f.CreatedAt,
		ReviewedAt:  f.ReviewedAt,
		ReviewedBy:  f.ReviewedBy,
	}
}

// evidenceMap flattens a typed evidence value into the generic JSON map the
// database column carries. Marshal errors cannot occur for the evidence
// variants, so a failed round trip degrades to an empty map.
func evidenceMap(e canonical.Evidence) datatypes.JSONMap {
	out := datatypes.JSONMap{}
	if e == nil {
		return out
	}
	raw, err := json.Marshal(e)
	if err != nil {
		return out
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return datatypes.JSONMap{}
	}
	return out
}
