package rules

import "strings"

// DefaultFeeTemplate is the standard recurring charge schedule: fee display
// name to expected monthly dollar amount. Overridable via the audit config.
func DefaultFeeTemplate() map[string]float64 {
	return map[string]float64{
		"Billing Fee":    5.00,
		"Cable":          55.00,
		"CAM":            10.00,
		"HOA":            2.50,
		"Trash":          10.00,
		"Valet Trash":    35.00,
		"Package Locker": 9.00,
		"Pest Control":   8.00,
	}
}

// feeTemplateNames is the fixed table mapping a normalized fee subcategory to
// its fee-template display name.
var feeTemplateNames = map[string]string{
	"billing_fee":    "Billing Fee",
	"cable":          "Cable",
	"cam":            "CAM",
	"hoa":            "HOA",
	"trash":          "Trash",
	"valet_trash":    "Valet Trash",
	"package_locker": "Package Locker",
	"pest_control":   "Pest Control",
}

// FeeTemplateName resolves a fee subcategory to its template display name.
func FeeTemplateName(subcategory string) (string, bool) {
	name, ok := feeTemplateNames[subcategory]
	return name, ok
}

// NormalizeFeeTemplate restores canonical display-name casing on template
// keys. Config parsers lowercase map keys, and template lookups are by
// display name. Unknown keys pass through unchanged.
func NormalizeFeeTemplate(in map[string]float64) map[string]float64 {
	byLower := make(map[string]string, len(feeTemplateNames))
	for _, name := range feeTemplateNames {
		byLower[strings.ToLower(name)] = name
	}
	out := make(map[string]float64, len(in))
	for key, amount := range in {
		if name, ok := byLower[strings.ToLower(key)]; ok {
			key = name
		}
		out[key] = amount
	}
	return out
}
