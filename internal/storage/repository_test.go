package storage

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/propworks/rentaudit/internal/canonical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	repo, err := NewRepository(db, zap.NewNop())
	require.NoError(t, err)
	return repo
}

func TestReplaceUnitsSwapsSet(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	base := 1200.0
	require.NoError(t, repo.ReplaceUnits(ctx, []canonical.Unit{
		{UnitID: "101", UnitNumber: "101", ResidentName: "Clayton Curtis", IsEmployeeUnit: true, BaseRent: &base},
		{UnitID: "102", UnitNumber: "102"},
	}))

	var count int64
	require.NoError(t, repo.db.Model(&UnitRecord{}).Count(&count).Error)
	assert.EqualValues(t, 2, count)

	require.NoError(t, repo.ReplaceUnits(ctx, []canonical.Unit{
		{UnitID: "103", UnitNumber: "103"},
	}))
	var units []UnitRecord
	require.NoError(t, repo.db.Find(&units).Error)
	require.Len(t, units, 1)
	assert.Equal(t, "103", units[0].UnitID)
}

func TestReplaceWithEmptySetClears(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.ReplaceTransactions(ctx, []canonical.RecurringTransaction{
		{TransactionID: "txn_1", UnitID: "101", UnitNumber: "101", Category: canonical.CategoryRent, Amount: 1200, Source: "t"},
	}))
	require.NoError(t, repo.ReplaceTransactions(ctx, nil))

	var count int64
	require.NoError(t, repo.db.Model(&TransactionRecord{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestReplaceFindingsPersistsEvidence(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	month := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	delta := -1100.0
	finding := canonical.NewFinding(canonical.AuditFinding{
		UnitID:     "101",
		UnitNumber: "101",
		RuleID:     canonical.RuleLeaseCliff,
		RuleName:   "Lease Expiration Cliff",
		Severity:   canonical.SeverityCritical,
		Month:      &month,
		Delta:      &delta,
		Evidence: canonical.LeaseCliffEvidence{
			PrevMonth: "Jan 2026",
			PrevRent:  2000,
			CurrMonth: "Feb 2026",
			CurrRent:  900,
			DropPct:   0.55,
		},
	})
	require.NoError(t, repo.ReplaceFindings(ctx, []canonical.AuditFinding{finding}))

	records, err := repo.FindingRecords(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	got := records[0]
	assert.Equal(t, finding.FindingID, got.FindingID)
	assert.Equal(t, "LEASE_CLIFF", got.RuleID)
	assert.Equal(t, "Critical", got.Severity)
	assert.Equal(t, "Jan 2026", got.Evidence["prev_month"])
	assert.InDelta(t, 0.55, got.Evidence["drop_pct"].(float64), 1e-9)
}

func TestUpdateFindingReview(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	finding := canonical.NewFinding(canonical.AuditFinding{
		UnitID:     "104",
		UnitNumber: "104",
		RuleID:     canonical.RuleDoubleDiscount,
		RuleName:   "Double Discount",
		Severity:   canonical.SeverityHigh,
	})
	require.NoError(t, repo.ReplaceFindings(ctx, []canonical.AuditFinding{finding}))

	now := time.Now().UTC()
	finding.Status = canonical.StatusOverridden
	finding.Notes = "approved employee discount"
	finding.ReviewedAt = &now
	finding.ReviewedBy = "auditor@propworks.io"
	require.NoError(t, repo.UpdateFindingReview(ctx, finding))

	records, err := repo.FindingRecords(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Overridden", records[0].Status)
	assert.Equal(t, "approved employee discount", records[0].Notes)
	assert.Equal(t, "auditor@propworks.io", records[0].ReviewedBy)
	require.NotNil(t, records[0].ReviewedAt)
}

func TestAuditTrailAppendAndList(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.AppendAuditEvent(ctx, "import", "system", "rent_roll.csv", map[string]any{"rows": 42}))
	require.NoError(t, repo.AppendAuditEvent(ctx, "detection", "system", "", nil))

	events, err := repo.RecentAuditEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "detection", events[0].Action)
	assert.Equal(t, "import", events[1].Action)
	assert.EqualValues(t, 42, events[1].Details["rows"])
}
