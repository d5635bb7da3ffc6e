package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/providerpulse/providerpulse/internal/dispatch"
)

// DispatchSweep fires one sweep immediately, regardless of the recurring
// schedule. Useful after adding providers or changing settings.
func (s *Server) DispatchSweep(c *gin.Context) {
	if err := s.sweeper.Sweep(c.Request.Context()); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"dispatched": true, "enabled": s.dispatcher.Enabled()})
}

func (s *Server) ListJobs(c *gin.Context) {
	queue := strings.TrimSpace(c.DefaultQuery("queue", dispatch.QueueProbeCheck))
	state := dispatch.JobState(strings.TrimSpace(c.DefaultQuery("state", string(dispatch.StateWaiting))))
	limit := parseIntQuery(c.Query("limit"), 0)

	jobs, err := s.dispatcher.ListJobs(c.Request.Context(), queue, state, limit)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": jobs, "enabled": s.dispatcher.Enabled()})
}

func (s *Server) RetryJob(c *gin.Context) {
	queue := strings.TrimSpace(c.Param("queue"))
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		AbortWithError(c, newValidationError("id", "required", "job id is required"))
		return
	}

	job, err := s.dispatcher.RetryJob(c.Request.Context(), queue, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": job, "retried": true})
}
