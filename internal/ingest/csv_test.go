package ingest

import (
	"strings"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/propworks/rentaudit/internal/canonical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestImporter(t *testing.T) *Importer {
	t.Helper()
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	return NewImporter(zap.NewNop(), node)
}

func TestParseRentRoll(t *testing.T) {
	doc := strings.Join([]string{
		"Rent Roll Export",
		"Unit,Resident,Status,Description,Amount,Month,Market Rent,Lease Start,Lease End",
		"101,*Clayton Curtis,UE,Rent,\"$1,200.00\",Jan 2026,\"$1,250.00\",2025-06-01,2026-05-31",
		"101,*Clayton Curtis,UE,Employee Discount,($200.00),Jan 2026,,,",
		"101,*Clayton Curtis,UE,Valet Trash Fee,$35.00,Jan 2026,,,",
		"102,Dana Reyes,NTV,Rent,\"$1,450.00\",Jan 2026,\"$1,450.00\",,",
		",,,,,,,,",
		"103,Pat Quinn,VAC,,,,,,",
	}, "\n")

	imp := newTestImporter(t)
	result, err := imp.ParseRentRoll(strings.NewReader(doc), "rent_roll.csv", canonical.DefaultCategoryMappings())
	require.NoError(t, err)

	assert.Equal(t, 5, result.RowsRead)
	assert.Equal(t, 2, result.RowsSkipped) // title row plus the blank row

	require.Len(t, result.Units, 3)
	u101 := result.Units[0]
	assert.Equal(t, "101", u101.UnitNumber)
	assert.Equal(t, "Clayton Curtis", u101.ResidentName)
	assert.True(t, u101.IsEmployeeUnit)
	assert.Equal(t, "UE", u101.Status)
	require.NotNil(t, u101.BaseRent)
	assert.InDelta(t, 1250, *u101.BaseRent, 1e-9)
	require.NotNil(t, u101.LeaseStart)
	assert.Equal(t, "2025-06-01", u101.LeaseStart.Format("2006-01-02"))

	// Unit-only row still produces a unit, with no transaction.
	assert.Equal(t, "103", result.Units[2].UnitNumber)

	require.Len(t, result.Transactions, 4)
	rent := result.Transactions[0]
	assert.Equal(t, canonical.CategoryRent, rent.Category)
	assert.InDelta(t, 1200, rent.Amount, 1e-9)
	assert.Equal(t, "101", rent.UnitNumber)
	assert.Equal(t, "rent_roll.csv", rent.Source)
	require.NotNil(t, rent.Month)
	assert.Equal(t, "2026-01", rent.Month.Format("2006-01"))
	assert.True(t, strings.HasPrefix(rent.TransactionID, "txn_"))

	discount := result.Transactions[1]
	assert.Equal(t, canonical.CategoryConcession, discount.Category)
	assert.InDelta(t, -200, discount.Amount, 1e-9)

	fee := result.Transactions[2]
	assert.Equal(t, canonical.CategoryFee, fee.Category)
	assert.Equal(t, "valet_trash", fee.Subcategory)
}

func TestParseRentRollMergesRepeatedUnitRows(t *testing.T) {
	doc := strings.Join([]string{
		"Unit,Resident,Status,Description,Amount,Market Rent",
		"201,,OCC,Rent,$900.00,",
		"201,Ira Bell,,Trash Fee,$10.00,$950.00",
	}, "\n")

	imp := newTestImporter(t)
	result, err := imp.ParseRentRoll(strings.NewReader(doc), "export.csv", canonical.DefaultCategoryMappings())
	require.NoError(t, err)

	require.Len(t, result.Units, 1)
	unit := result.Units[0]
	assert.Equal(t, "Ira Bell", unit.ResidentName)
	assert.Equal(t, "OCC", unit.Status)
	require.NotNil(t, unit.BaseRent)
	assert.InDelta(t, 950, *unit.BaseRent, 1e-9)
	require.Len(t, result.Transactions, 2)
}

func TestParseRentRollHeaderAliases(t *testing.T) {
	doc := strings.Join([]string{
		"Unit Number,Tenant,Charge,Rent Amount,Charge Month",
		"A-5,Lee Park,Base Rent,\"$1,000.00\",2026-03",
	}, "\n")

	imp := newTestImporter(t)
	result, err := imp.ParseRentRoll(strings.NewReader(doc), "alias.csv", canonical.DefaultCategoryMappings())
	require.NoError(t, err)

	require.Len(t, result.Units, 1)
	assert.Equal(t, "A-5", result.Units[0].UnitNumber)
	assert.Equal(t, "a-5", result.Units[0].UnitID)
	require.Len(t, result.Transactions, 1)
	assert.Equal(t, canonical.CategoryRent, result.Transactions[0].Category)
	require.NotNil(t, result.Transactions[0].Month)
	assert.Equal(t, "2026-03", result.Transactions[0].Month.Format("2006-01"))
}

func TestParseRentRollRowsWithoutUnitSkipped(t *testing.T) {
	doc := strings.Join([]string{
		"Unit,Description,Amount",
		",Rent,$500.00",
		"301,Rent,$700.00",
	}, "\n")

	imp := newTestImporter(t)
	result, err := imp.ParseRentRoll(strings.NewReader(doc), "x.csv", canonical.DefaultCategoryMappings())
	require.NoError(t, err)

	assert.Equal(t, 2, result.RowsRead)
	assert.Equal(t, 1, result.RowsSkipped)
	require.Len(t, result.Transactions, 1)
	assert.Equal(t, "301", result.Transactions[0].UnitNumber)
}
