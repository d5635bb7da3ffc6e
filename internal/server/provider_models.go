package server

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	pricingdomain "github.com/providerpulse/providerpulse/internal/pricing/domain"
)

func (s *Server) CreateProviderModel(c *gin.Context) {
	var req pricingdomain.CreateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.pricingSvc.CreateLink(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListProviderModels(c *gin.Context) {
	providerID, ok := parseOptionalSnowflakeQuery(c.Query("provider_id"))
	if !ok {
		AbortWithError(c, newValidationError("provider_id", "invalid_id", "invalid provider id"))
		return
	}
	modelID, ok := parseOptionalSnowflakeQuery(c.Query("model_id"))
	if !ok {
		AbortWithError(c, newValidationError("model_id", "invalid_id", "invalid model id"))
		return
	}

	page := bindPage(c)
	items, info, err := s.pricingSvc.List(c.Request.Context(), providerID, modelID, page)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": items, "page_info": info})
}

func (s *Server) GetProviderModel(c *gin.Context) {
	id, ok := parseSnowflakeParam(c, "id")
	if !ok {
		return
	}

	resp, err := s.pricingSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// UpdateProviderModelPrice distinguishes a price field that is absent
// (keep current value) from one set to null (clear the price), so the
// body is decoded field by field.
func (s *Server) UpdateProviderModelPrice(c *gin.Context) {
	id, ok := parseSnowflakeParam(c, "id")
	if !ok {
		return
	}

	var raw map[string]json.RawMessage
	if err := c.ShouldBindJSON(&raw); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	var req pricingdomain.PriceUpdateRequest

	input, ok, err := decodeOptionalPrice(raw, "input_price_per_million")
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if ok {
		req.Input = input
	}
	output, ok, err := decodeOptionalPrice(raw, "output_price_per_million")
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if ok {
		req.Output = output
	}

	if payload, ok := raw["is_available"]; ok {
		if err := json.Unmarshal(payload, &req.IsAvailable); err != nil {
			AbortWithError(c, invalidRequestError())
			return
		}
	}
	if payload, ok := raw["notes"]; ok {
		if err := json.Unmarshal(payload, &req.Notes); err != nil {
			AbortWithError(c, invalidRequestError())
			return
		}
	}

	if req.Input.Set && req.Input.Value != nil && *req.Input.Value < 0 {
		AbortWithError(c, pricingdomain.ErrNegativePrice)
		return
	}
	if req.Output.Set && req.Output.Value != nil && *req.Output.Value < 0 {
		AbortWithError(c, pricingdomain.ErrNegativePrice)
		return
	}

	resp, err := s.pricingSvc.ApplyPriceUpdate(c.Request.Context(), id, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":           resp.ProviderModel,
		"change_type":    resp.ChangeType,
		"change_percent": resp.ChangePercent,
	})
}

func decodeOptionalPrice(raw map[string]json.RawMessage, field string) (pricingdomain.OptionalPrice, bool, error) {
	payload, ok := raw[field]
	if !ok {
		return pricingdomain.OptionalPrice{}, false, nil
	}
	var value *float64
	if err := json.Unmarshal(payload, &value); err != nil {
		return pricingdomain.OptionalPrice{}, false, err
	}
	return pricingdomain.OptionalPrice{Set: true, Value: value}, true, nil
}

func (s *Server) ListPriceHistory(c *gin.Context) {
	providerID, ok := parseOptionalSnowflakeQuery(c.Query("provider_id"))
	if !ok {
		AbortWithError(c, newValidationError("provider_id", "invalid_id", "invalid provider id"))
		return
	}
	modelID, ok := parseOptionalSnowflakeQuery(c.Query("model_id"))
	if !ok {
		AbortWithError(c, newValidationError("model_id", "invalid_id", "invalid model id"))
		return
	}
	providerModelID, ok := parseOptionalSnowflakeQuery(c.Query("provider_model_id"))
	if !ok {
		AbortWithError(c, newValidationError("provider_model_id", "invalid_id", "invalid provider model id"))
		return
	}

	filter := pricingdomain.HistoryFilter{
		ProviderID:      providerID,
		ModelID:         modelID,
		ProviderModelID: providerModelID,
		WindowDays:      parseIntQuery(c.Query("window_days"), 0),
	}

	page := bindPage(c)
	items, info, err := s.pricingSvc.ListHistory(c.Request.Context(), filter, page)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": items, "page_info": info})
}

func (s *Server) GetPriceTrends(c *gin.Context) {
	windowDays := parseIntQuery(c.Query("window_days"), 0)
	resp, err := s.pricingSvc.TrendSummary(c.Request.Context(), windowDays)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
