package canonical

import "time"

// Category is the canonical charge category. The set is closed; free-text
// charge descriptions are mapped into it by CategoryMappings.Normalize.
type Category string

const (
	CategoryRent       Category = "rent"
	CategoryConcession Category = "concession"
	CategoryFee        Category = "fee"
	CategoryCredit     Category = "credit"
	CategoryOther      Category = "other"
)

// RecurringTransaction is one dated charge, credit, fee, or concession line.
// Concession and credit amounts are conventionally negative. Month, when set,
// is normalized to the first of the month in UTC.
type RecurringTransaction struct {
	TransactionID string     `json:"transaction_id"`
	UnitID        string     `json:"unit_id"`
	UnitNumber    string     `json:"unit_number"`
	Category      Category   `json:"category"`
	Subcategory   string     `json:"subcategory,omitempty"`
	Amount        float64    `json:"amount"`
	Month         *time.Time `json:"month,omitempty"`
	Description   string     `json:"description,omitempty"`
	Source        string     `json:"source"`
}

// IsCredit reports whether the line reduces revenue.
func (t RecurringTransaction) IsCredit() bool {
	return t.Amount < 0 || t.Category == CategoryConcession || t.Category == CategoryCredit
}

// IsRent reports whether the line is a rent charge.
func (t RecurringTransaction) IsRent() bool { return t.Category == CategoryRent }

// IsFee reports whether the line is a recurring fee.
func (t RecurringTransaction) IsFee() bool { return t.Category == CategoryFee }

// MonthOf truncates a time to its first-of-month UTC representation.
func MonthOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// MonthLabel renders an optional month as "Jan 2006", or "" when absent.
func MonthLabel(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("Jan 2006")
}
