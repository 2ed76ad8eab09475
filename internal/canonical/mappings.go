package canonical

import "strings"

// FeeCategory maps one fee subcategory to the keywords that identify it.
// Order matters across the table: the first matching subcategory wins, so
// more specific entries ("valet trash") must precede broader ones ("trash").
type FeeCategory struct {
	Subcategory string   `mapstructure:"subcategory" json:"subcategory"`
	Keywords    []string `mapstructure:"keywords" json:"keywords"`
}

// CategoryMappings drives free-text charge description normalization.
// Loaded from external config, with DefaultCategoryMappings as the fallback.
type CategoryMappings struct {
	ConcessionCategories []string      `mapstructure:"concession_categories" json:"concession_categories"`
	CreditCategories     []string      `mapstructure:"credit_categories" json:"credit_categories"`
	RentCategories       []string      `mapstructure:"rent_categories" json:"rent_categories"`
	FeeCategories        []FeeCategory `mapstructure:"fee_categories" json:"fee_categories"`
}

// IsZero reports whether no mapping lists are populated.
func (m CategoryMappings) IsZero() bool {
	return len(m.ConcessionCategories) == 0 &&
		len(m.CreditCategories) == 0 &&
		len(m.RentCategories) == 0 &&
		len(m.FeeCategories) == 0
}

// Normalize maps a free-text charge description to its canonical category and
// optional fee subcategory. Matching is case-insensitive substring matching in
// strict precedence order: concession, credit, rent, fee tables, then other.
// Concession and credit run first because their descriptions often embed rent
// wording ("Rent Concession").
func (m CategoryMappings) Normalize(description string) (Category, string) {
	desc := strings.ToLower(strings.TrimSpace(description))

	for _, term := range m.ConcessionCategories {
		if strings.Contains(desc, strings.ToLower(term)) {
			return CategoryConcession, ""
		}
	}
	for _, term := range m.CreditCategories {
		if strings.Contains(desc, strings.ToLower(term)) {
			return CategoryCredit, ""
		}
	}
	for _, term := range m.RentCategories {
		if strings.Contains(desc, strings.ToLower(term)) {
			return CategoryRent, ""
		}
	}
	for _, fc := range m.FeeCategories {
		for _, term := range fc.Keywords {
			if strings.Contains(desc, strings.ToLower(term)) {
				return CategoryFee, fc.Subcategory
			}
		}
	}
	return CategoryOther, ""
}

// DefaultCategoryMappings returns the built-in mapping table used when no
// external mapping config is available.
func DefaultCategoryMappings() CategoryMappings {
	return CategoryMappings{
		ConcessionCategories: []string{"Concession", "Discount"},
		CreditCategories:     []string{"Credit", "Adjustment"},
		RentCategories:       []string{"Rent", "Base Rent", "Monthly Rent"},
		FeeCategories: []FeeCategory{
			{Subcategory: "billing_fee", Keywords: []string{"billing fee"}},
			{Subcategory: "valet_trash", Keywords: []string{"valet trash"}},
			{Subcategory: "package_locker", Keywords: []string{"package locker", "locker"}},
			{Subcategory: "pest_control", Keywords: []string{"pest control", "pest"}},
			{Subcategory: "cable", Keywords: []string{"cable"}},
			{Subcategory: "cam", Keywords: []string{"cam"}},
			{Subcategory: "hoa", Keywords: []string{"hoa"}},
			{Subcategory: "trash", Keywords: []string{"trash"}},
		},
	}
}
