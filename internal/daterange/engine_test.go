package daterange

import (
	"math/rand"
	"testing"
	"time"

	"github.com/propworks/rentaudit/internal/canonical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func month(year int, m time.Month) time.Time {
	return time.Date(year, m, 1, 0, 0, 0, 0, time.UTC)
}

func monthPtr(year int, m time.Month) *time.Time {
	v := month(year, m)
	return &v
}

func sampleTransactions() []canonical.RecurringTransaction {
	return []canonical.RecurringTransaction{
		{TransactionID: "t1", UnitID: "a-101", UnitNumber: "A-101", Category: canonical.CategoryRent, Amount: 1200, Month: monthPtr(2026, time.January)},
		{TransactionID: "t2", UnitID: "a-101", UnitNumber: "A-101", Category: canonical.CategoryConcession, Amount: -200, Month: monthPtr(2026, time.January)},
		{TransactionID: "t3", UnitID: "a-101", UnitNumber: "A-101", Category: canonical.CategoryFee, Amount: 35, Month: monthPtr(2026, time.January)},
		{TransactionID: "t4", UnitID: "a-102", UnitNumber: "A-102", Category: canonical.CategoryRent, Amount: 900, Month: monthPtr(2026, time.February)},
		{TransactionID: "t5", UnitID: "a-102", UnitNumber: "A-102", Category: canonical.CategoryCredit, Amount: -50, Month: monthPtr(2026, time.February)},
		{TransactionID: "t6", UnitID: "a-103", UnitNumber: "A-103", Category: canonical.CategoryRent, Amount: 700, Month: nil},
	}
}

func TestFilterByDateRange_NoBoundsKeepsEverything(t *testing.T) {
	e := New(sampleTransactions())

	filtered := e.FilterByDateRange(nil, nil)

	assert.Len(t, filtered, 6, "no bounds means no filtering, monthless lines included")
}

func TestFilterByDateRange_AnyBoundExcludesMonthless(t *testing.T) {
	e := New(sampleTransactions())

	start := month(2026, time.January)
	filtered := e.FilterByDateRange(&start, nil)
	assert.Len(t, filtered, 5)
	for _, txn := range filtered {
		assert.NotNil(t, txn.Month)
	}

	end := month(2026, time.January)
	filtered = e.FilterByDateRange(&start, &end)
	assert.Len(t, filtered, 3)
}

func TestAggregateByMonth_SignConvention(t *testing.T) {
	e := New(sampleTransactions())

	monthly := e.AggregateByMonth(nil, nil)
	require.Len(t, monthly, 2)

	jan := monthly[month(2026, time.January)]
	assert.Equal(t, 1200.0, jan.Rent)
	assert.Equal(t, 200.0, jan.Concessions, "concession bucket holds the magnitude")
	assert.Equal(t, 35.0, jan.Fees)
	assert.InDelta(t, 1035.0, jan.Net, 1e-9, "net carries the signed concession amount")

	feb := monthly[month(2026, time.February)]
	assert.Equal(t, 50.0, feb.Credits)
	assert.InDelta(t, 850.0, feb.Net, 1e-9)
}

func TestAggregateByUnit_NetDerivedFromBuckets(t *testing.T) {
	e := New(sampleTransactions())

	units := e.AggregateByUnit(nil, nil)
	require.Len(t, units, 3, "monthless transactions still aggregate per unit")

	a101 := units["a-101"]
	assert.Equal(t, "A-101", a101.UnitNumber)
	assert.Equal(t, 3, a101.TransactionCount)
	assert.InDelta(t, a101.Rent+a101.Fees-a101.Concessions-a101.Credits, a101.Net, 1e-9)
	assert.InDelta(t, 1035.0, a101.Net, 1e-9)
}

func TestAggregateByUnit_OrderIndependent(t *testing.T) {
	txns := sampleTransactions()
	want := New(txns).AggregateByUnit(nil, nil)

	shuffled := append([]canonical.RecurringTransaction(nil), txns...)
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 10; i++ {
		r.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		assert.Equal(t, want, New(shuffled).AggregateByUnit(nil, nil))
	}
}

func TestRevenueTrend_ChangeComputation(t *testing.T) {
	txns := []canonical.RecurringTransaction{
		{TransactionID: "t1", UnitID: "a-101", Category: canonical.CategoryRent, Amount: 1000, Month: monthPtr(2026, time.January)},
		{TransactionID: "t2", UnitID: "a-101", Category: canonical.CategoryRent, Amount: 1100, Month: monthPtr(2026, time.February)},
		{TransactionID: "t3", UnitID: "a-101", Category: canonical.CategoryRent, Amount: 550, Month: monthPtr(2026, time.March)},
	}
	e := New(txns)

	trend := e.RevenueTrend(nil, nil)
	require.Len(t, trend, 3)

	assert.Nil(t, trend[0].Change, "first month has no baseline")
	assert.Nil(t, trend[0].ChangePct)

	require.NotNil(t, trend[1].Change)
	assert.InDelta(t, 100.0, *trend[1].Change, 1e-9)
	assert.InDelta(t, 0.1, *trend[1].ChangePct, 1e-9)

	assert.InDelta(t, -550.0, *trend[2].Change, 1e-9)
	assert.InDelta(t, -0.5, *trend[2].ChangePct, 1e-9)
}

func TestRevenueTrend_ZeroBaseline(t *testing.T) {
	txns := []canonical.RecurringTransaction{
		// January nets to zero, February is nonzero.
		{TransactionID: "t1", UnitID: "a-101", Category: canonical.CategoryRent, Amount: 500, Month: monthPtr(2026, time.January)},
		{TransactionID: "t2", UnitID: "a-101", Category: canonical.CategoryConcession, Amount: -500, Month: monthPtr(2026, time.January)},
		{TransactionID: "t3", UnitID: "a-101", Category: canonical.CategoryRent, Amount: 800, Month: monthPtr(2026, time.February)},
	}
	e := New(txns)

	trend := e.RevenueTrend(nil, nil)
	require.Len(t, trend, 2)

	require.NotNil(t, trend[1].ChangePct)
	assert.InDelta(t, 1.0, *trend[1].ChangePct, 1e-9, "zero-to-nonzero reports +100%")
}

func TestRevenueTrend_ZeroToZero(t *testing.T) {
	txns := []canonical.RecurringTransaction{
		{TransactionID: "t1", UnitID: "a-101", Category: canonical.CategoryRent, Amount: 500, Month: monthPtr(2026, time.January)},
		{TransactionID: "t2", UnitID: "a-101", Category: canonical.CategoryConcession, Amount: -500, Month: monthPtr(2026, time.January)},
		{TransactionID: "t3", UnitID: "a-101", Category: canonical.CategoryRent, Amount: 300, Month: monthPtr(2026, time.February)},
		{TransactionID: "t4", UnitID: "a-101", Category: canonical.CategoryCredit, Amount: -300, Month: monthPtr(2026, time.February)},
	}
	e := New(txns)

	trend := e.RevenueTrend(nil, nil)
	require.Len(t, trend, 2)
	require.NotNil(t, trend[1].ChangePct)
	assert.Zero(t, *trend[1].ChangePct, "zero-to-zero reports 0%")
}

func TestAggregateByMonth_EmptySnapshot(t *testing.T) {
	e := New(nil)

	assert.Empty(t, e.AggregateByMonth(nil, nil))
	assert.Empty(t, e.AggregateByUnit(nil, nil))
	assert.Empty(t, e.RevenueTrend(nil, nil))
}
