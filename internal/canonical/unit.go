package canonical

import (
	"strings"
	"time"
)

// EmployeeUnitMarker prefixes a resident name on employee-occupied units in
// rent-roll exports.
const EmployeeUnitMarker = "*"

// Unit represents a single rental unit.
type Unit struct {
	UnitID         string     `json:"unit_id"`
	UnitNumber     string     `json:"unit_number"`
	ResidentName   string     `json:"resident_name,omitempty"`
	Status         string     `json:"status,omitempty"` // rent-roll status code: UE, NTV, MTM, VACANT, ...
	IsEmployeeUnit bool       `json:"is_employee_unit"`
	LeaseStart     *time.Time `json:"lease_start,omitempty"`
	LeaseEnd       *time.Time `json:"lease_end,omitempty"`
	BaseRent       *float64   `json:"base_rent,omitempty"`
}

// NewUnit applies construction-time normalization: a resident name carrying
// the employee marker forces IsEmployeeUnit and the marker is stripped from
// the stored name. This happens exactly once, here.
func NewUnit(u Unit) Unit {
	if strings.HasPrefix(u.ResidentName, EmployeeUnitMarker) {
		u.IsEmployeeUnit = true
		u.ResidentName = strings.TrimSpace(strings.TrimLeft(u.ResidentName, EmployeeUnitMarker))
	}
	return u
}

// MergeUnits folds incoming into existing under first-non-null-wins semantics:
// fields already set on existing are kept, empty ones are filled from incoming.
// The employee flag is sticky in either direction.
func MergeUnits(existing, incoming Unit) Unit {
	merged := existing
	if merged.ResidentName == "" {
		merged.ResidentName = incoming.ResidentName
	}
	if merged.Status == "" {
		merged.Status = incoming.Status
	}
	merged.IsEmployeeUnit = existing.IsEmployeeUnit || incoming.IsEmployeeUnit
	if merged.LeaseStart == nil {
		merged.LeaseStart = incoming.LeaseStart
	}
	if merged.LeaseEnd == nil {
		merged.LeaseEnd = incoming.LeaseEnd
	}
	if merged.BaseRent == nil {
		merged.BaseRent = incoming.BaseRent
	}
	return merged
}
