package storage

import (
	"context"

	"github.com/propworks/rentaudit/internal/canonical"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Repository writes the canonical model through to the database and keeps the
// append-only operational trail.
type Repository struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewRepository migrates the schema and returns a repository.
func NewRepository(db *gorm.DB, log *zap.Logger) (*Repository, error) {
	if err := db.AutoMigrate(
		&UnitRecord{},
		&TransactionRecord{},
		&FindingRecord{},
		&AuditTrailRecord{},
	); err != nil {
		return nil, err
	}
	return &Repository{db: db, log: log.Named("storage")}, nil
}

// ReplaceUnits swaps the persisted unit set for the given one.
func (r *Repository) ReplaceUnits(ctx context.Context, units []canonical.Unit) error {
	records := make([]UnitRecord, 0, len(units))
	for _, u := range units {
		records = append(records, toUnitRecord(u))
	}
	return r.replace(ctx, &UnitRecord{}, records, len(records))
}

// ReplaceTransactions swaps the persisted transaction set for the given one.
func (r *Repository) ReplaceTransactions(ctx context.Context, txns []canonical.RecurringTransaction) error {
	records := make([]TransactionRecord, 0, len(txns))
	for _, t := range txns {
		records = append(records, toTransactionRecord(t))
	}
	return r.replace(ctx, &TransactionRecord{}, records, len(records))
}

// ReplaceFindings swaps the persisted finding set for the output of a
// detection pass. Findings are regenerated wholesale each pass, so the
// previous set is discarded rather than reconciled.
func (r *Repository) ReplaceFindings(ctx context.Context, findings []canonical.AuditFinding) error {
	records := make([]FindingRecord, 0, len(findings))
	for _, f := range findings {
		records = append(records, toFindingRecord(f))
	}
	return r.replace(ctx, &FindingRecord{}, records, len(records))
}

func (r *Repository) replace(ctx context.Context, model any, records any, count int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(model).Error; err != nil {
			return err
		}
		if count == 0 {
			return nil
		}
		return tx.CreateInBatches(records, 200).Error
	})
}

// UpdateFindingReview persists a reviewer decision on one finding.
func (r *Repository) UpdateFindingReview(ctx context.Context, f canonical.AuditFinding) error {
	return r.db.WithContext(ctx).Model(&FindingRecord{}).
		Where("finding_id = ?", f.FindingID).
		Updates(map[string]any{
			"status":      string(f.Status),
			"notes":       f.Notes,
			"reviewed_at": f.ReviewedAt,
			"reviewed_by": f.ReviewedBy,
		}).Error
}

// AppendAuditEvent records one operational event in the trail.
func (r *Repository) AppendAuditEvent(ctx context.Context, action, actor, targetID string, details map[string]any) error {
	record := AuditTrailRecord{
		Action:   action,
		Actor:    actor,
		TargetID: targetID,
		Details:  datatypes.JSONMap(details),
	}
	if record.Details == nil {
		record.Details = datatypes.JSONMap{}
	}
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		r.log.Warn("audit trail append failed", zap.String("action", action), zap.Error(err))
		return err
	}
	return nil
}

// RecentAuditEvents returns the newest trail entries, newest first.
func (r *Repository) RecentAuditEvents(ctx context.Context, limit int) ([]AuditTrailRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	var events []AuditTrailRecord
	err := r.db.WithContext(ctx).
		Order("created_at desc, id desc").
		Limit(limit).
		Find(&events).Error
	return events, err
}

// FindingRecords returns the persisted findings, for export and inspection.
func (r *Repository) FindingRecords(ctx context.Context) ([]FindingRecord, error) {
	var records []FindingRecord
	err := r.db.WithContext(ctx).Order("created_at, finding_id").Find(&records).Error
	return records, err
}
