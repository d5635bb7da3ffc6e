package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	settingsdomain "github.com/providerpulse/providerpulse/internal/settings/domain"
)

func (s *Server) GetScoringConfig(c *gin.Context) {
	resp, err := s.settingsSvc.GetScoringConfig(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) SaveScoringConfig(c *gin.Context) {
	var req settingsdomain.ScoringConfig
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.settingsSvc.SaveScoringConfig(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetSchedulerSettings(c *gin.Context) {
	resp, err := s.settingsSvc.GetSchedulerSettings(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) SaveSchedulerSettings(c *gin.Context) {
	var req settingsdomain.SchedulerSettings
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.settingsSvc.SaveSchedulerSettings(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
