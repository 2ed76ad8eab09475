// Package daterange filters and aggregates recurring transactions by month
// and by unit, and derives month-over-month revenue trends. The engine is a
// pure view over the snapshot it is constructed with.
package daterange

import (
	"sort"
	"time"

	"github.com/propworks/rentaudit/internal/canonical"
)

// Engine aggregates a snapshot of recurring transactions.
type Engine struct {
	transactions []canonical.RecurringTransaction
}

// New builds an engine over a transaction snapshot.
func New(transactions []canonical.RecurringTransaction) *Engine {
	return &Engine{transactions: transactions}
}

// Totals is one aggregation bucket. Concessions and Credits hold unsigned
// magnitudes; Net carries their signed contribution. Both representations are
// kept because downstream reporting depends on each.
type Totals struct {
	Rent        float64 `json:"rent"`
	Concessions float64 `json:"concessions"`
	Fees        float64 `json:"fees"`
	Credits     float64 `json:"credits"`
	Net         float64 `json:"net"`
}

// UnitTotals is the per-unit aggregation bucket.
type UnitTotals struct {
	UnitNumber       string  `json:"unit_number"`
	Rent             float64 `json:"rent"`
	Concessions      float64 `json:"concessions"`
	Fees             float64 `json:"fees"`
	Credits          float64 `json:"credits"`
	Net              float64 `json:"net"`
	TransactionCount int     `json:"transaction_count"`
}

// TrendPoint is one month in the revenue trend. Change and ChangePct are nil
// for the first month.
type TrendPoint struct {
	Month       time.Time `json:"month"`
	Revenue     float64   `json:"revenue"`
	Rent        float64   `json:"rent"`
	Concessions float64   `json:"concessions"`
	Fees        float64   `json:"fees"`
	Change      *float64  `json:"change,omitempty"`
	ChangePct   *float64  `json:"change_pct,omitempty"`
}

// FilterByDateRange returns transactions whose month lies in [start, end]
// inclusive. A nil bound is unbounded on that side; transactions without a
// month are excluded once either bound is supplied.
func (e *Engine) FilterByDateRange(start, end *time.Time) []canonical.RecurringTransaction {
	filtered := e.transactions

	if start != nil {
		next := make([]canonical.RecurringTransaction, 0, len(filtered))
		for _, t := range filtered {
			if t.Month != nil && !t.Month.Before(*start) {
				next = append(next, t)
			}
		}
		filtered = next
	}
	if end != nil {
		next := make([]canonical.RecurringTransaction, 0, len(filtered))
		for _, t := range filtered {
			if t.Month != nil && !t.Month.After(*end) {
				next = append(next, t)
			}
		}
		filtered = next
	}
	return filtered
}

// AggregateByMonth buckets the filtered transactions by month. Rent and fees
// add directly to Net; concessions and credits are stored as magnitudes in
// their own buckets while their (already negative) amounts flow into Net.
func (e *Engine) AggregateByMonth(start, end *time.Time) map[time.Time]Totals {
	monthly := make(map[time.Time]Totals)

	for _, txn := range e.FilterByDateRange(start, end) {
		if txn.Month == nil {
			continue
		}
		month := *txn.Month
		bucket := monthly[month]

		switch txn.Category {
		case canonical.CategoryRent:
			bucket.Rent += txn.Amount
			bucket.Net += txn.Amount
		case canonical.CategoryConcession:
			bucket.Concessions += abs(txn.Amount)
			bucket.Net += txn.Amount
		case canonical.CategoryFee:
			bucket.Fees += txn.Amount
			bucket.Net += txn.Amount
		case canonical.CategoryCredit:
			bucket.Credits += abs(txn.Amount)
			bucket.Net += txn.Amount
		}

		monthly[month] = bucket
	}
	return monthly
}

// AggregateByUnit buckets the filtered transactions by unit id. Net is derived
// from the unsigned bucket totals (rent + fees - concessions - credits) rather
// than accumulated, so the result is independent of transaction order.
func (e *Engine) AggregateByUnit(start, end *time.Time) map[string]UnitTotals {
	units := make(map[string]UnitTotals)

	for _, txn := range e.FilterByDateRange(start, end) {
		bucket, ok := units[txn.UnitID]
		if !ok {
			bucket.UnitNumber = txn.UnitNumber
		}

		switch txn.Category {
		case canonical.CategoryRent:
			bucket.Rent += txn.Amount
		case canonical.CategoryConcession:
			bucket.Concessions += abs(txn.Amount)
		case canonical.CategoryFee:
			bucket.Fees += txn.Amount
		case canonical.CategoryCredit:
			bucket.Credits += abs(txn.Amount)
		}

		bucket.Net = bucket.Rent + bucket.Fees - bucket.Concessions - bucket.Credits
		bucket.TransactionCount++
		units[txn.UnitID] = bucket
	}
	return units
}

// RevenueTrend aggregates by month and computes the month-over-month revenue
// change. The first month carries nil change fields. A jump from zero revenue
// to nonzero is reported as +100%.
func (e *Engine) RevenueTrend(start, end *time.Time) []TrendPoint {
	monthly := e.AggregateByMonth(start, end)

	months := make([]time.Time, 0, len(monthly))
	for month := range monthly {
		months = append(months, month)
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Before(months[j]) })

	trend := make([]TrendPoint, 0, len(months))
	var prevRevenue *float64

	for _, month := range months {
		bucket := monthly[month]
		point := TrendPoint{
			Month:       month,
			Revenue:     bucket.Net,
			Rent:        bucket.Rent,
			Concessions: bucket.Concessions,
			Fees:        bucket.Fees,
		}

		if prevRevenue != nil {
			change := bucket.Net - *prevRevenue
			var pct float64
			switch {
			case *prevRevenue != 0:
				pct = change / *prevRevenue
			case bucket.Net != 0:
				pct = 1
			}
			point.Change = &change
			point.ChangePct = &pct
		}

		trend = append(trend, point)
		revenue := bucket.Net
		prevRevenue = &revenue
	}
	return trend
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
