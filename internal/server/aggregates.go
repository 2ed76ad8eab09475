package server

import (
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/propworks/rentaudit/internal/daterange"
	"github.com/propworks/rentaudit/internal/ingest"
)

type monthlyAggregate struct {
	Month string `json:"month"`
	daterange.Totals
}

type unitAggregate struct {
	UnitID string `json:"unit_id"`
	daterange.UnitTotals
}

// MonthlyAggregates returns per-month totals within the optional range.
func (s *Server) MonthlyAggregates(c *gin.Context) {
	start, end, ok := s.parseRange(c)
	if !ok {
		return
	}

	byMonth := s.svc.MonthlyAggregates(start, end)
	months := make([]time.Time, 0, len(byMonth))
	for m := range byMonth {
		months = append(months, m)
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Before(months[j]) })

	out := make([]monthlyAggregate, 0, len(months))
	for _, m := range months {
		out = append(out, monthlyAggregate{Month: m.Format("2006-01"), Totals: byMonth[m]})
	}
	c.JSON(http.StatusOK, gin.H{"months": out})
}

// UnitAggregates returns per-unit totals within the optional range.
func (s *Server) UnitAggregates(c *gin.Context) {
	start, end, ok := s.parseRange(c)
	if !ok {
		return
	}

	byUnit := s.svc.UnitAggregates(start, end)
	ids := make([]string, 0, len(byUnit))
	for id := range byUnit {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]unitAggregate, 0, len(ids))
	for _, id := range ids {
		out = append(out, unitAggregate{UnitID: id, UnitTotals: byUnit[id]})
	}
	c.JSON(http.StatusOK, gin.H{"units": out})
}

// RevenueTrend returns month-over-month revenue movement within the range.
func (s *Server) RevenueTrend(c *gin.Context) {
	start, end, ok := s.parseRange(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"trend": s.svc.RevenueTrend(start, end)})
}

// parseRange reads optional "start" and "end" month query parameters. On a
// malformed value it writes the validation error and reports false.
func (s *Server) parseRange(c *gin.Context) (start, end *time.Time, ok bool) {
	if raw := c.Query("start"); raw != "" {
		month, parsed := ingest.ParseMonth(raw)
		if !parsed {
			AbortWithError(c, newValidationError("start", "invalid_month", "start must be a month such as 2026-01"))
			return nil, nil, false
		}
		start = &month
	}
	if raw := c.Query("end"); raw != "" {
		month, parsed := ingest.ParseMonth(raw)
		if !parsed {
			AbortWithError(c, newValidationError("end", "invalid_month", "end must be a month such as 2026-12"))
			return nil, nil, false
		}
		end = &month
	}
	if start != nil && end != nil && end.Before(*start) {
		AbortWithError(c, newValidationError("end", "invalid_range", "end must not precede start"))
		return nil, nil, false
	}
	return start, end, true
}
