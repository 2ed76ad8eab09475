// Package ingest turns property-management CSV exports into canonical units
// and recurring transactions. It is deliberately lenient: header aliases are
// normalized, separator rows are skipped, and malformed cells degrade to
// zero values instead of failing the import.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/propworks/rentaudit/internal/canonical"
	"go.uber.org/zap"
)

// columnAliases maps lowercased export headers to canonical column names.
var columnAliases = map[string]string{
	"unit":        "unit_number",
	"unit #":      "unit_number",
	"unit number": "unit_number",
	"resident":    "resident_name",
	"residents":   "resident_name",
	"tenant":      "resident_name",
	"status":      "status",
	"description": "description",
	"charge":      "description",
	"charge code": "description",
	"amount":      "amount",
	"rent":        "amount",
	"rent amount": "amount",
	"month":       "month",
	"charge month": "month",
	"market rent": "base_rent",
	"base rent":   "base_rent",
	"lease start": "lease_start",
	"lease begin": "lease_start",
	"lease end":   "lease_end",
	"lease expiry": "lease_end",
}

// Result summarizes one parsed document.
type Result struct {
	Units        []canonical.Unit
	Transactions []canonical.RecurringTransaction
	RowsRead     int
	RowsSkipped  int
}

// Importer parses recurring-charge CSV documents.
type Importer struct {
	log   *zap.Logger
	genID *snowflake.Node
}

// NewImporter builds an importer.
func NewImporter(log *zap.Logger, genID *snowflake.Node) *Importer {
	return &Importer{log: log.Named("ingest.csv"), genID: genID}
}

// ParseRentRoll reads a CSV export and produces merged units plus categorized
// transactions. Each charge row yields one transaction; unit fields repeated
// across rows merge under first-non-null-wins semantics.
func (i *Importer) ParseRentRoll(r io.Reader, source string, mappings canonical.CategoryMappings) (Result, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return Result{}, fmt.Errorf("read csv: %w", err)
	}

	var result Result
	var columns map[string]int
	unitIndex := make(map[string]int)

	for _, record := range records {
		if isSeparatorRow(record) {
			result.RowsSkipped++
			continue
		}
		if columns == nil {
			columns = headerIndex(record)
			continue
		}
		result.RowsRead++

		cell := func(name string) string {
			idx, ok := columns[name]
			if !ok || idx >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[idx])
		}

		unitNumber := cell("unit_number")
		if unitNumber == "" {
			result.RowsSkipped++
			continue
		}
		unitID := slug.Make(unitNumber)

		unit := canonical.NewUnit(canonical.Unit{
			UnitID:       unitID,
			UnitNumber:   unitNumber,
			ResidentName: cell("resident_name"),
			Status:       strings.ToUpper(cell("status")),
		})
		if start, ok := ParseDate(cell("lease_start")); ok {
			unit.LeaseStart = &start
		}
		if end, ok := ParseDate(cell("lease_end")); ok {
			unit.LeaseEnd = &end
		}
		if raw := cell("base_rent"); raw != "" {
			if base := ParseCurrency(raw); base != 0 {
				unit.BaseRent = &base
			}
		}

		if idx, ok := unitIndex[unitID]; ok {
			result.Units[idx] = canonical.MergeUnits(result.Units[idx], unit)
		} else {
			unitIndex[unitID] = len(result.Units)
			result.Units = append(result.Units, unit)
		}

		description := cell("description")
		amountRaw := cell("amount")
		if description == "" && amountRaw == "" {
			continue // unit-only row
		}
		if description == "" {
			description = "Rent"
		}

		category, subcategory := mappings.Normalize(description)
		txn := canonical.RecurringTransaction{
			TransactionID: fmt.Sprintf("txn_%s", i.genID.Generate()),
			UnitID:        unitID,
			UnitNumber:    unitNumber,
			Category:      category,
			Subcategory:   subcategory,
			Amount:        ParseCurrency(amountRaw),
			Description:   description,
			Source:        source,
		}
		if month, ok := ParseMonth(cell("month")); ok {
			txn.Month = &month
		}
		result.Transactions = append(result.Transactions, txn)
	}

	i.log.Info("parsed document",
		zap.String("source", source),
		zap.Int("rows", result.RowsRead),
		zap.Int("skipped", result.RowsSkipped),
		zap.Int("units", len(result.Units)),
		zap.Int("transactions", len(result.Transactions)),
	)
	return result, nil
}

// isSeparatorRow reports whether a row is a blank or title row: at most one
// non-empty cell, which property-management exports use as separators.
func isSeparatorRow(record []string) bool {
	nonEmpty := 0
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			nonEmpty++
		}
	}
	return nonEmpty <= 1
}

func headerIndex(record []string) map[string]int {
	columns := make(map[string]int, len(record))
	for idx, header := range record {
		key := strings.ToLower(strings.TrimSpace(header))
		if canonicalName, ok := columnAliases[key]; ok {
			if _, exists := columns[canonicalName]; !exists {
				columns[canonicalName] = idx
			}
		}
	}
	return columns
}
