package server

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ImportDocument ingests a rent-roll CSV. The document arrives either as a
// multipart "file" part or as the raw request body with a "source" query
// parameter naming it.
func (s *Server) ImportDocument(c *gin.Context) {
	var (
		reader io.Reader
		source string
	)

	if file, err := c.FormFile("file"); err == nil {
		f, err := file.Open()
		if err != nil {
			AbortWithError(c, err)
			return
		}
		defer f.Close()
		reader = f
		source = file.Filename
	} else {
		reader = c.Request.Body
		source = c.Query("source")
	}
	if source == "" {
		source = "upload.csv"
	}

	summary, err := s.svc.ImportRentRoll(c.Request.Context(), reader, source)
	if err != nil {
		AbortWithError(c, newValidationError("file", "invalid_document", err.Error()))
		return
	}
	c.JSON(http.StatusOK, summary)
}

// RunDetection triggers a full detection pass over the current model.
func (s *Server) RunDetection(c *gin.Context) {
	summary, err := s.svc.RunDetection(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// Reset clears the canonical model and persisted state.
func (s *Server) Reset(c *gin.Context) {
	if err := s.svc.Reset(c.Request.Context()); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// AuditTrail returns recent operational events, newest first.
func (s *Server) AuditTrail(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			AbortWithError(c, newValidationError("limit", "invalid_limit", "limit must be a positive integer"))
			return
		}
		limit = parsed
	}

	events, err := s.svc.AuditTrail(c.Request.Context(), limit)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}
