package canonical

// Evidence is the typed payload backing a finding. One variant exists per
// rule, so explanation rendering is a total switch instead of a dict lookup.
// JSON tags keep the external key names stable for export and persistence.
type Evidence interface {
	isEvidence()
}

// LeaseCliffEvidence backs RuleLeaseCliff findings.
type LeaseCliffEvidence struct {
	PrevMonth string  `json:"prev_month"`
	PrevRent  float64 `json:"prev_rent"`
	CurrMonth string  `json:"curr_month"`
	CurrRent  float64 `json:"curr_rent"`
	DropPct   float64 `json:"drop_pct"`
}

// RentProrationEvidence backs RuleRentProration findings.
type RentProrationEvidence struct {
	ExpectedRent float64 `json:"expected_rent"`
	ActualRent   float64 `json:"actual_rent"`
	Month        string  `json:"month"`
	IsLeaseStart bool    `json:"is_lease_start"`
}

// ConcessionMisalignedEvidence backs RuleConcessionMisaligned findings.
type ConcessionMisalignedEvidence struct {
	ConcessionMonth  string  `json:"concession_month"`
	ConcessionAmount float64 `json:"concession_amount"`
	HasRentInMonth   bool    `json:"has_rent_in_month"`
}

// ExcessiveConcessionEvidence backs RuleExcessiveConcession findings.
type ExcessiveConcessionEvidence struct {
	Month         string  `json:"month"`
	Rent          float64 `json:"rent"`
	Concession    float64 `json:"concession"`
	ConcessionPct float64 `json:"concession_pct"`
}

// MissingChargesEvidence backs RuleMissingCharge findings.
type MissingChargesEvidence struct {
	ExpectedFees []string `json:"expected_fees"`
	ActualFees   []string `json:"actual_fees"`
}

// FeeMismatchEvidence backs RuleFeeMismatch findings.
type FeeMismatchEvidence struct {
	FeeType        string  `json:"fee_type"`
	ExpectedAmount float64 `json:"expected_amount"`
	ActualAmount   float64 `json:"actual_amount"`
	Month          string  `json:"month"`
}

// DoubleDiscountEvidence backs RuleDoubleDiscount findings.
type DoubleDiscountEvidence struct {
	IsEmployeeUnit   bool    `json:"is_employee_unit"`
	ResidentName     string  `json:"resident_name"`
	TotalConcessions float64 `json:"total_concessions"`
	ConcessionCount  int     `json:"concession_count"`
}

func (LeaseCliffEvidence) isEvidence()           {}
func (RentProrationEvidence) isEvidence()        {}
func (ConcessionMisalignedEvidence) isEvidence() {}
func (ExcessiveConcessionEvidence) isEvidence()  {}
func (MissingChargesEvidence) isEvidence()       {}
func (FeeMismatchEvidence) isEvidence()          {}
func (DoubleDiscountEvidence) isEvidence()       {}
