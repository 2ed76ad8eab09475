package canonical

import "time"

// Lease represents a signed lease agreement for a unit.
type Lease struct {
	LeaseID          string     `json:"lease_id"`
	UnitID           string     `json:"unit_id"`
	UnitNumber       string     `json:"unit_number"`
	ResidentName     string     `json:"resident_name"`
	LeaseStart       time.Time  `json:"lease_start"`
	LeaseEnd         time.Time  `json:"lease_end"`
	BaseRent         float64    `json:"base_rent"`
	ConcessionAmount float64    `json:"concession_amount,omitempty"`
	ConcessionMonths []string   `json:"concession_months,omitempty"`
	MoveInDate       *time.Time `json:"move_in_date,omitempty"`
	IsEmployeeUnit   bool       `json:"is_employee_unit"`
}

// IsActive reports whether the lease covers the given date.
func (l Lease) IsActive(now time.Time) bool {
	return !now.Before(l.LeaseStart) && !now.After(l.LeaseEnd)
}

// TermMonths returns the lease term length in whole months.
func (l Lease) TermMonths() int {
	months := (l.LeaseEnd.Year() - l.LeaseStart.Year()) * 12
	months += int(l.LeaseEnd.Month()) - int(l.LeaseStart.Month())
	return months
}
