package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/propworks/rentaudit/internal/audit"
	"github.com/propworks/rentaudit/internal/canonical"
)

// ListFindings returns the current finding set in ranked order. Optional
// query parameters narrow by severity, rule_id, unit_id, and status.
func (s *Server) ListFindings(c *gin.Context) {
	filter := audit.FindingFilter{
		Severity: canonical.Severity(c.Query("severity")),
		RuleID:   canonical.RuleID(c.Query("rule_id")),
		UnitID:   c.Query("unit_id"),
		Status:   canonical.FindingStatus(c.Query("status")),
	}
	if filter.Status != "" && !canonical.ValidFindingStatus(filter.Status) {
		AbortWithError(c, newValidationError("status", "invalid_status", "unknown finding status"))
		return
	}

	findings := s.svc.Findings(filter)
	c.JSON(http.StatusOK, gin.H{
		"findings": findings,
		"count":    len(findings),
	})
}

// FindingsSummary returns aggregate counts for the current finding set.
func (s *Server) FindingsSummary(c *gin.Context) {
	c.JSON(http.StatusOK, s.svc.Summary())
}

type overrideRequest struct {
	Status     string `json:"status" binding:"required"`
	Notes      string `json:"notes"`
	ReviewedBy string `json:"reviewed_by"`
}

// OverrideFinding applies a reviewer decision to one finding.
func (s *Server) OverrideFinding(c *gin.Context) {
	var req overrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, newValidationError("body", "invalid_body", "status is required"))
		return
	}

	updated, err := s.svc.OverrideFinding(c.Request.Context(), c.Param("id"), audit.OverrideRequest{
		Status:     canonical.FindingStatus(req.Status),
		Notes:      req.Notes,
		ReviewedBy: req.ReviewedBy,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}
