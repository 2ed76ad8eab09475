// Package rules evaluates each unit's transaction history against the fixed
// set of audit checks and emits typed findings. The engine operates on an
// immutable snapshot and never mutates its inputs; a pass is idempotent up to
// finding ids.
package rules

import (
	"math"
	"sort"
	"time"

	"github.com/propworks/rentaudit/internal/canonical"
)

// Config carries the tunable detection thresholds and the fee template.
type Config struct {
	// LeaseCliffThreshold is the month-over-month rent drop fraction above
	// which a lease cliff is flagged.
	LeaseCliffThreshold float64 `mapstructure:"lease_cliff_threshold" json:"lease_cliff_threshold"`
	// ExcessiveConcessionThreshold is the concession/rent fraction above
	// which a month's concessions are flagged.
	ExcessiveConcessionThreshold float64 `mapstructure:"excessive_concession_threshold" json:"excessive_concession_threshold"`
	// FeeTolerance is the dollar tolerance when comparing a fee line against
	// its template amount.
	FeeTolerance float64 `mapstructure:"fee_tolerance" json:"fee_tolerance"`
	// FeeTemplate maps fee display names to expected monthly amounts.
	FeeTemplate map[string]float64 `mapstructure:"fee_template" json:"fee_template"`
}

// DefaultConfig returns the standard thresholds and fee template.
func DefaultConfig() Config {
	return Config{
		LeaseCliffThreshold:          0.20,
		ExcessiveConcessionThreshold: 0.50,
		FeeTolerance:                 0.01,
		FeeTemplate:                  DefaultFeeTemplate(),
	}
}

// A drop beyond this fraction escalates a lease cliff to Critical.
const leaseCliffCriticalDrop = 0.50

// Rent lines within a dollar of base rent are not worth flagging.
const rentTolerance = 1.00

// Engine runs the audit rules over a (units, transactions) snapshot.
type Engine struct {
	cfg          Config
	units        []canonical.Unit
	transactions []canonical.RecurringTransaction

	unitsByID  map[string]canonical.Unit
	txnsByUnit map[string][]canonical.RecurringTransaction

	findings []canonical.AuditFinding
}

// New builds an engine and its lookup indexes.
func New(cfg Config, units []canonical.Unit, transactions []canonical.RecurringTransaction) *Engine {
	e := &Engine{
		cfg:          cfg,
		units:        units,
		transactions: transactions,
		unitsByID:    make(map[string]canonical.Unit, len(units)),
		txnsByUnit:   make(map[string][]canonical.RecurringTransaction),
	}
	for _, u := range units {
		e.unitsByID[u.UnitID] = u
	}
	for _, txn := range transactions {
		e.txnsByUnit[txn.UnitID] = append(e.txnsByUnit[txn.UnitID], txn)
	}
	return e
}

// RunAll executes every rule unconditionally and returns the accumulated
// findings. Rules are independent; execution order only affects insertion
// order, which the detector re-sorts anyway.
func (e *Engine) RunAll() []canonical.AuditFinding {
	e.findings = nil

	e.checkLeaseCliff()
	e.checkRentProration()
	e.checkConcessionMisalignment()
	e.checkExcessiveConcession()
	e.checkMissingRecurringCharges()
	e.checkFeeAmountMismatch()
	e.checkDoubleDiscount()

	return e.findings
}

// checkLeaseCliff flags units whose month-over-month rent drops by more than
// the cliff threshold. Drops beyond leaseCliffCriticalDrop are Critical.
func (e *Engine) checkLeaseCliff() {
	unitMonthlyRent := make(map[string]map[time.Time]float64)
	for _, txn := range e.transactions {
		if txn.Category != canonical.CategoryRent || txn.Month == nil {
			continue
		}
		if unitMonthlyRent[txn.UnitID] == nil {
			unitMonthlyRent[txn.UnitID] = make(map[time.Time]float64)
		}
		unitMonthlyRent[txn.UnitID][*txn.Month] += txn.Amount
	}

	unitIDs := sortedKeys(unitMonthlyRent)
	for _, unitID := range unitIDs {
		monthlyRents := unitMonthlyRent[unitID]
		months := make([]time.Time, 0, len(monthlyRents))
		for m := range monthlyRents {
			months = append(months, m)
		}
		sort.Slice(months, func(i, j int) bool { return months[i].Before(months[j]) })

		for i := 1; i < len(months); i++ {
			prevMonth, currMonth := months[i-1], months[i]
			prevRent, currRent := monthlyRents[prevMonth], monthlyRents[currMonth]
			if prevRent <= 0 {
				continue
			}
			dropPct := (prevRent - currRent) / prevRent
			if dropPct <= e.cfg.LeaseCliffThreshold {
				continue
			}

			severity := canonical.SeverityHigh
			if dropPct > leaseCliffCriticalDrop {
				severity = canonical.SeverityCritical
			}
			month := currMonth
			e.emit(canonical.AuditFinding{
				UnitID:     unitID,
				UnitNumber: e.unitNumber(unitID),
				RuleID:     canonical.RuleLeaseCliff,
				RuleName:   "Lease Cliff Risk",
				Severity:   severity,
				Month:      &month,
				Delta:      floatPtr(-(prevRent - currRent)),
				Evidence: canonical.LeaseCliffEvidence{
					PrevMonth: prevMonth.Format("Jan 2006"),
					PrevRent:  prevRent,
					CurrMonth: currMonth.Format("Jan 2006"),
					CurrRent:  currRent,
					DropPct:   dropPct,
				},
			})
		}
	}
}

// checkRentProration flags rent lines that stray from the unit's base rent.
// A shortfall in the lease-start month is a valid move-in proration; any
// overage is flagged even then, since overages are never prorated.
func (e *Engine) checkRentProration() {
	for _, unit := range e.units {
		if unit.BaseRent == nil {
			continue
		}
		baseRent := *unit.BaseRent

		for _, txn := range e.txnsByUnit[unit.UnitID] {
			if txn.Category != canonical.CategoryRent {
				continue
			}
			if math.Abs(txn.Amount-baseRent) <= rentTolerance {
				continue
			}

			validProration := unit.LeaseStart != nil && txn.Month != nil &&
				txn.Month.Year() == unit.LeaseStart.Year() &&
				txn.Month.Month() == unit.LeaseStart.Month()

			if validProration && txn.Amount <= baseRent {
				continue
			}

			e.emit(canonical.AuditFinding{
				UnitID:     unit.UnitID,
				UnitNumber: unit.UnitNumber,
				RuleID:     canonical.RuleRentProration,
				RuleName:   "Rent Proration Mismatch",
				Severity:   canonical.SeverityMedium,
				Month:      txn.Month,
				Delta:      floatPtr(txn.Amount - baseRent),
				Evidence: canonical.RentProrationEvidence{
					ExpectedRent: baseRent,
					ActualRent:   txn.Amount,
					Month:        monthOrUnknown(txn.Month),
					IsLeaseStart: validProration,
				},
			})
		}
	}
}

// checkConcessionMisalignment flags concessions landing in months where the
// unit has no rent charge.
func (e *Engine) checkConcessionMisalignment() {
	for _, unit := range e.units {
		txns := e.txnsByUnit[unit.UnitID]

		rentMonths := make(map[time.Time]struct{})
		for _, txn := range txns {
			if txn.Category == canonical.CategoryRent && txn.Month != nil {
				rentMonths[*txn.Month] = struct{}{}
			}
		}

		for _, txn := range txns {
			if txn.Category != canonical.CategoryConcession || txn.Month == nil {
				continue
			}
			if _, ok := rentMonths[*txn.Month]; ok {
				continue
			}
			e.emit(canonical.AuditFinding{
				UnitID:     unit.UnitID,
				UnitNumber: unit.UnitNumber,
				RuleID:     canonical.RuleConcessionMisaligned,
				RuleName:   "Concession Misaligned",
				Severity:   canonical.SeverityMedium,
				Month:      txn.Month,
				Delta:      floatPtr(txn.Amount),
				Evidence: canonical.ConcessionMisalignedEvidence{
					ConcessionMonth:  txn.Month.Format("Jan 2006"),
					ConcessionAmount: math.Abs(txn.Amount),
					HasRentInMonth:   false,
				},
			})
		}
	}
}

// checkExcessiveConcession flags months where a unit's concessions exceed the
// configured fraction of its rent. Months without rent are not evaluated.
func (e *Engine) checkExcessiveConcession() {
	type monthTotals struct {
		rent       float64
		concession float64
	}

	for _, unit := range e.units {
		monthly := make(map[time.Time]monthTotals)
		for _, txn := range e.txnsByUnit[unit.UnitID] {
			if txn.Month == nil {
				continue
			}
			totals := monthly[*txn.Month]
			switch txn.Category {
			case canonical.CategoryRent:
				totals.rent += txn.Amount
			case canonical.CategoryConcession:
				totals.concession += math.Abs(txn.Amount)
			}
			monthly[*txn.Month] = totals
		}

		months := make([]time.Time, 0, len(monthly))
		for m := range monthly {
			months = append(months, m)
		}
		sort.Slice(months, func(i, j int) bool { return months[i].Before(months[j]) })

		for _, month := range months {
			totals := monthly[month]
			if totals.rent <= 0 {
				continue
			}
			concPct := totals.concession / totals.rent
			if concPct <= e.cfg.ExcessiveConcessionThreshold {
				continue
			}
			m := month
			e.emit(canonical.AuditFinding{
				UnitID:     unit.UnitID,
				UnitNumber: unit.UnitNumber,
				RuleID:     canonical.RuleExcessiveConcession,
				RuleName:   "Excessive Concession",
				Severity:   canonical.SeverityHigh,
				Month:      &m,
				Delta:      floatPtr(-totals.concession),
				Evidence: canonical.ExcessiveConcessionEvidence{
					Month:         month.Format("Jan 2006"),
					Rent:          totals.rent,
					Concession:    totals.concession,
					ConcessionPct: concPct,
				},
			})
		}
	}
}

// checkMissingRecurringCharges flags units that are charged rent but carry no
// fee lines at all. This is a coarse heuristic; it does not check individual
// fee types.
func (e *Engine) checkMissingRecurringCharges() {
	for _, unit := range e.units {
		var hasRent, hasFee bool
		for _, txn := range e.txnsByUnit[unit.UnitID] {
			switch txn.Category {
			case canonical.CategoryRent:
				hasRent = true
			case canonical.CategoryFee:
				hasFee = true
			}
		}
		if !hasRent || hasFee {
			continue
		}

		e.emit(canonical.AuditFinding{
			UnitID:     unit.UnitID,
			UnitNumber: unit.UnitNumber,
			RuleID:     canonical.RuleMissingCharge,
			RuleName:   "Missing Recurring Charges",
			Severity:   canonical.SeverityLow,
			Evidence: canonical.MissingChargesEvidence{
				ExpectedFees: e.templateFeeNames(),
				ActualFees:   []string{},
			},
		})
	}
}

// checkFeeAmountMismatch compares fee lines against the fee template by
// subcategory. Unknown subcategories are skipped.
func (e *Engine) checkFeeAmountMismatch() {
	for _, txn := range e.transactions {
		if txn.Category != canonical.CategoryFee || txn.Subcategory == "" {
			continue
		}
		templateName, ok := FeeTemplateName(txn.Subcategory)
		if !ok {
			continue
		}
		expected, ok := e.cfg.FeeTemplate[templateName]
		if !ok {
			continue
		}
		if math.Abs(txn.Amount-expected) <= e.cfg.FeeTolerance {
			continue
		}

		unitNumber := txn.UnitNumber
		if unit, ok := e.unitsByID[txn.UnitID]; ok {
			unitNumber = unit.UnitNumber
		}
		e.emit(canonical.AuditFinding{
			UnitID:     txn.UnitID,
			UnitNumber: unitNumber,
			RuleID:     canonical.RuleFeeMismatch,
			RuleName:   "Fee Amount Mismatch",
			Severity:   canonical.SeverityLow,
			Month:      txn.Month,
			Delta:      floatPtr(txn.Amount - expected),
			Evidence: canonical.FeeMismatchEvidence{
				FeeType:        templateName,
				ExpectedAmount: expected,
				ActualAmount:   txn.Amount,
				Month:          monthOrUnknown(txn.Month),
			},
		})
	}
}

// checkDoubleDiscount flags employee units that also carry promotional
// concessions.
func (e *Engine) checkDoubleDiscount() {
	for _, unit := range e.units {
		if !unit.IsEmployeeUnit {
			continue
		}

		var total float64
		var count int
		for _, txn := range e.txnsByUnit[unit.UnitID] {
			if txn.Category == canonical.CategoryConcession {
				total += math.Abs(txn.Amount)
				count++
			}
		}
		if count == 0 {
			continue
		}

		e.emit(canonical.AuditFinding{
			UnitID:     unit.UnitID,
			UnitNumber: unit.UnitNumber,
			RuleID:     canonical.RuleDoubleDiscount,
			RuleName:   "Double Discount Risk",
			Severity:   canonical.SeverityCritical,
			Delta:      floatPtr(-total),
			Evidence: canonical.DoubleDiscountEvidence{
				IsEmployeeUnit:   true,
				ResidentName:     unit.ResidentName,
				TotalConcessions: total,
				ConcessionCount:  count,
			},
		})
	}
}

func (e *Engine) emit(f canonical.AuditFinding) {
	e.findings = append(e.findings, canonical.NewFinding(f))
}

func (e *Engine) unitNumber(unitID string) string {
	if unit, ok := e.unitsByID[unitID]; ok {
		return unit.UnitNumber
	}
	return unitID
}

func (e *Engine) templateFeeNames() []string {
	names := make([]string, 0, len(e.cfg.FeeTemplate))
	for name := range e.cfg.FeeTemplate {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func monthOrUnknown(t *time.Time) string {
	if t == nil {
		return "Unknown"
	}
	return t.Format("Jan 2006")
}

func floatPtr(v float64) *float64 { return &v }

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
