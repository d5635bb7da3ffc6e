package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	probedomain "github.com/providerpulse/providerpulse/internal/probe/domain"
)

type recordProbeRequest struct {
	ProviderID      string   `json:"provider_id"`
	ProviderModelID *string  `json:"provider_model_id"`
	ProbeType       string   `json:"probe_type"`
	ProbeMethod     string   `json:"probe_method"`
	IsSuccess       bool     `json:"is_success"`
	ResponseTimeMs  *float64 `json:"response_time_ms"`
	StatusCode      *int     `json:"status_code"`
	ErrorMessage    *string  `json:"error_message"`
}

func (s *Server) RecordProbe(c *gin.Context) {
	var req recordProbeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	providerID, err := snowflake.ParseString(strings.TrimSpace(req.ProviderID))
	if err != nil || providerID == 0 {
		AbortWithError(c, newValidationError("provider_id", "invalid_id", "invalid provider id"))
		return
	}

	var providerModelID *snowflake.ID
	if req.ProviderModelID != nil {
		id, err := snowflake.ParseString(strings.TrimSpace(*req.ProviderModelID))
		if err != nil || id == 0 {
			AbortWithError(c, newValidationError("provider_model_id", "invalid_id", "invalid provider model id"))
			return
		}
		providerModelID = &id
	}

	probeType := probedomain.ProbeType(strings.TrimSpace(req.ProbeType))
	if probeType == "" {
		probeType = probedomain.ProbeHealthCheck
	}
	method := probedomain.ProbeMethod(strings.TrimSpace(req.ProbeMethod))
	if method == "" {
		method = probedomain.MethodManual
	}

	resp, err := s.probeSvc.Record(c.Request.Context(), probedomain.RecordInput{
		ProviderID:      providerID,
		ProviderModelID: providerModelID,
		ProbeType:       probeType,
		ProbeMethod:     method,
		IsSuccess:       req.IsSuccess,
		ResponseTimeMs:  req.ResponseTimeMs,
		StatusCode:      req.StatusCode,
		ErrorMessage:    req.ErrorMessage,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListProbes(c *gin.Context) {
	providerID, ok := parseOptionalSnowflakeQuery(c.Query("provider_id"))
	if !ok {
		AbortWithError(c, newValidationError("provider_id", "invalid_id", "invalid provider id"))
		return
	}
	providerModelID, ok := parseOptionalSnowflakeQuery(c.Query("provider_model_id"))
	if !ok {
		AbortWithError(c, newValidationError("provider_model_id", "invalid_id", "invalid provider model id"))
		return
	}
	success, err := parseOptionalBool(c.Query("success"))
	if err != nil {
		AbortWithError(c, newValidationError("success", "invalid_bool", "invalid success filter"))
		return
	}

	filter := probedomain.ListFilter{
		ProviderID:      providerID,
		ProviderModelID: providerModelID,
		ProbeType:       probedomain.ProbeType(strings.TrimSpace(c.Query("probe_type"))),
		Success:         success,
		WindowDays:      parseIntQuery(c.Query("window_days"), 0),
	}
	if filter.ProbeType != "" && !filter.ProbeType.Valid() {
		AbortWithError(c, probedomain.ErrInvalidProbeType)
		return
	}

	page := bindPage(c)
	items, info, err := s.probeSvc.List(c.Request.Context(), filter, page)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": items, "page_info": info})
}

func (s *Server) GetUptimeSummary(c *gin.Context) {
	windowDays := parseIntQuery(c.Query("window_days"), 0)
	resp, err := s.probeSvc.UptimeSummary(c.Request.Context(), windowDays)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetLatencySummary(c *gin.Context) {
	windowDays := parseIntQuery(c.Query("window_days"), 0)
	resp, err := s.probeSvc.LatencySummary(c.Request.Context(), windowDays)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
