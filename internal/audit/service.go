// Package audit is the application service tying the pipeline together:
// document ingest into the canonical model, detection passes, finding review,
// and date-range reporting. One service instance owns one canonical model.
package audit

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/propworks/rentaudit/internal/anomaly"
	"github.com/propworks/rentaudit/internal/canonical"
	"github.com/propworks/rentaudit/internal/config"
	"github.com/propworks/rentaudit/internal/daterange"
	"github.com/propworks/rentaudit/internal/explain"
	"github.com/propworks/rentaudit/internal/ingest"
	"github.com/propworks/rentaudit/internal/observability/metrics"
	"github.com/propworks/rentaudit/internal/storage"
	"go.uber.org/zap"
)

var (
	ErrFindingNotFound = errors.New("finding_not_found")
	ErrInvalidStatus   = errors.New("invalid_finding_status")
)

// ImportSummary reports the outcome of one document import.
type ImportSummary struct {
	Source       string `json:"source"`
	RowsRead     int    `json:"rows_read"`
	RowsSkipped  int    `json:"rows_skipped"`
	Units        int    `json:"units"`
	Transactions int    `json:"transactions"`
}

// DetectionSummary reports the outcome of one detection pass.
type DetectionSummary struct {
	Findings   int                  `json:"findings"`
	Stats      anomaly.SummaryStats `json:"stats"`
	DurationMS int64                `json:"duration_ms"`
}

// FindingFilter narrows finding listings.
type FindingFilter struct {
	Severity canonical.Severity
	RuleID   canonical.RuleID
	UnitID   string
	Status   canonical.FindingStatus
}

// OverrideRequest is a reviewer decision on one finding.
type OverrideRequest struct {
	Status     canonical.FindingStatus
	Notes      string
	ReviewedBy string
}

// Service coordinates ingest, detection, review, and reporting over a single
// canonical model. All methods are safe for concurrent use.
type Service struct {
	mu       sync.Mutex
	model    *canonical.CanonicalModel
	detector *anomaly.Detector

	importer *ingest.Importer
	holder   *config.AuditConfigHolder
	repo     *storage.Repository
	metrics  *metrics.Metrics
	log      *zap.Logger
}

// NewService builds the audit service around an empty canonical model.
func NewService(
	importer *ingest.Importer,
	holder *config.AuditConfigHolder,
	repo *storage.Repository,
	m *metrics.Metrics,
	log *zap.Logger,
) *Service {
	cfg := holder.Get()
	return &Service{
		model:    canonical.NewModel(cfg.Mappings),
		detector: anomaly.New(cfg.Rules, nil, nil),
		importer: importer,
		holder:   holder,
		repo:     repo,
		metrics:  m,
		log:      log.Named("audit"),
	}
}

// ImportRentRoll parses a CSV document into the canonical model and persists
// the merged unit and transaction sets.
func (s *Service) ImportRentRoll(ctx context.Context, r io.Reader, source string) (ImportSummary, error) {
	result, err := s.importer.ParseRentRoll(r, source, s.holder.Get().Mappings)
	if err != nil {
		return ImportSummary{}, err
	}

	s.mu.Lock()
	for _, u := range result.Units {
		s.model.AddUnit(u)
	}
	for _, t := range result.Transactions {
		s.model.AddTransaction(t)
	}
	units := s.model.Units()
	txns := s.model.Transactions()
	s.mu.Unlock()

	if err := s.repo.ReplaceUnits(ctx, units); err != nil {
		return ImportSummary{}, err
	}
	if err := s.repo.ReplaceTransactions(ctx, txns); err != nil {
		return ImportSummary{}, err
	}

	s.metrics.ImportedRows.Add(float64(result.RowsRead))
	summary := ImportSummary{
		Source:       source,
		RowsRead:     result.RowsRead,
		RowsSkipped:  result.RowsSkipped,
		Units:        len(result.Units),
		Transactions: len(result.Transactions),
	}
	_ = s.repo.AppendAuditEvent(ctx, "import", "system", source, map[string]any{
		"rows_read":    summary.RowsRead,
		"rows_skipped": summary.RowsSkipped,
		"units":        summary.Units,
		"transactions": summary.Transactions,
	})
	s.log.Info("imported document",
		zap.String("source", source),
		zap.Int("units", summary.Units),
		zap.Int("transactions", summary.Transactions),
	)
	return summary, nil
}

// RunDetection regenerates all findings from the current model state. The
// previous finding set is replaced wholesale; results are equivalent across
// repeated runs on unchanged data up to generated finding ids.
func (s *Service) RunDetection(ctx context.Context) (DetectionSummary, error) {
	started := time.Now()
	cfg := s.holder.Get()

	s.mu.Lock()
	detector := anomaly.New(cfg.Rules, s.model.Units(), s.model.Transactions())
	findings := detector.Detect()
	for i := range findings {
		findings[i].Explanation = explain.Explain(findings[i])
	}
	s.detector = detector
	s.model.SetFindings(findings)
	s.mu.Unlock()

	if err := s.repo.ReplaceFindings(ctx, findings); err != nil {
		return DetectionSummary{}, err
	}

	duration := time.Since(started)
	s.metrics.DetectionPasses.Inc()
	s.metrics.DetectionSeconds.Observe(duration.Seconds())
	for _, f := range findings {
		s.metrics.FindingsEmitted.WithLabelValues(string(f.Severity)).Inc()
	}

	stats := detector.SummaryStats()
	_ = s.repo.AppendAuditEvent(ctx, "detection", "system", "", map[string]any{
		"findings": len(findings),
		"critical": stats.BySeverity[canonical.SeverityCritical],
		"high":     stats.BySeverity[canonical.SeverityHigh],
	})
	s.log.Info("detection pass complete",
		zap.Int("findings", len(findings)),
		zap.Duration("duration", duration),
	)
	return DetectionSummary{
		Findings:   len(findings),
		Stats:      stats,
		DurationMS: duration.Milliseconds(),
	}, nil
}

// Findings lists current findings, optionally filtered. Order is the ranking
// order of the last detection pass.
func (s *Service) Findings(filter FindingFilter) []canonical.AuditFinding {
	s.mu.Lock()
	all := s.model.Findings()
	s.mu.Unlock()

	out := make([]canonical.AuditFinding, 0, len(all))
	for _, f := range all {
		if filter.Severity != "" && f.Severity != filter.Severity {
			continue
		}
		if filter.RuleID != "" && f.RuleID != filter.RuleID {
			continue
		}
		if filter.UnitID != "" && f.UnitID != filter.UnitID {
			continue
		}
		if filter.Status != "" && f.Status != filter.Status {
			continue
		}
		out = append(out, f)
	}
	return out
}

// Summary returns aggregate counts for the current finding set.
func (s *Service) Summary() anomaly.SummaryStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.detector.SummaryStats()
}

// OverrideFinding applies a reviewer decision to one finding.
func (s *Service) OverrideFinding(ctx context.Context, findingID string, req OverrideRequest) (canonical.AuditFinding, error) {
	if !canonical.ValidFindingStatus(req.Status) {
		return canonical.AuditFinding{}, ErrInvalidStatus
	}

	s.mu.Lock()
	findings := s.model.Findings()
	idx := -1
	for i, f := range findings {
		if f.FindingID == findingID {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return canonical.AuditFinding{}, ErrFindingNotFound
	}
	now := time.Now().UTC()
	findings[idx].Status = req.Status
	if req.Notes != "" {
		findings[idx].Notes = req.Notes
	}
	findings[idx].ReviewedAt = &now
	findings[idx].ReviewedBy = req.ReviewedBy
	updated := findings[idx]
	s.model.SetFindings(findings)
	s.mu.Unlock()

	if err := s.repo.UpdateFindingReview(ctx, updated); err != nil {
		return canonical.AuditFinding{}, err
	}
	_ = s.repo.AppendAuditEvent(ctx, "finding_override", req.ReviewedBy, findingID, map[string]any{
		"status": string(req.Status),
		"notes":  req.Notes,
	})
	return updated, nil
}

// MonthlyAggregates returns per-month revenue totals within the range.
func (s *Service) MonthlyAggregates(start, end *time.Time) map[time.Time]daterange.Totals {
	return s.engine().AggregateByMonth(start, end)
}

// UnitAggregates returns per-unit revenue totals within the range.
func (s *Service) UnitAggregates(start, end *time.Time) map[string]daterange.UnitTotals {
	return s.engine().AggregateByUnit(start, end)
}

// RevenueTrend returns month-over-month revenue movement within the range.
func (s *Service) RevenueTrend(start, end *time.Time) []daterange.TrendPoint {
	return s.engine().RevenueTrend(start, end)
}

// AuditTrail returns recent operational events, newest first.
func (s *Service) AuditTrail(ctx context.Context, limit int) ([]storage.AuditTrailRecord, error) {
	return s.repo.RecentAuditEvents(ctx, limit)
}

// Reset clears the canonical model and the persisted sets.
func (s *Service) Reset(ctx context.Context) error {
	s.mu.Lock()
	s.model.Clear()
	s.detector = anomaly.New(s.holder.Get().Rules, nil, nil)
	s.mu.Unlock()

	if err := s.repo.ReplaceUnits(ctx, nil); err != nil {
		return err
	}
	if err := s.repo.ReplaceTransactions(ctx, nil); err != nil {
		return err
	}
	if err := s.repo.ReplaceFindings(ctx, nil); err != nil {
		return err
	}
	return s.repo.AppendAuditEvent(ctx, "reset", "system", "", nil)
}

func (s *Service) engine() *daterange.Engine {
	s.mu.Lock()
	txns := s.model.Transactions()
	s.mu.Unlock()
	return daterange.New(txns)
}
