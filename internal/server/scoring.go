package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
)

func (s *Server) GetRankings(c *gin.Context) {
	windowDays := parseIntQuery(c.Query("window_days"), 0)
	limit := parseIntQuery(c.Query("limit"), 0)

	resp, err := s.engineSvc.Rankings(c.Request.Context(), windowDays, limit)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CompareProviders(c *gin.Context) {
	raw := strings.Split(c.Query("ids"), ",")
	ids := make([]snowflake.ID, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		id, err := snowflake.ParseString(trimmed)
		if err != nil || id == 0 {
			AbortWithError(c, newValidationError("ids", "invalid_id", "invalid provider id "+trimmed))
			return
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		AbortWithError(c, newValidationError("ids", "required", "at least one provider id is required"))
		return
	}

	windowDays := parseIntQuery(c.Query("window_days"), 0)
	resp, err := s.engineSvc.Compare(c.Request.Context(), ids, windowDays)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
