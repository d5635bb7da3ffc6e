package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	reviewdomain "github.com/providerpulse/providerpulse/internal/review/domain"
)

func (s *Server) CreateReview(c *gin.Context) {
	var req reviewdomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.reviewSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListReviews(c *gin.Context) {
	providerID, ok := parseOptionalSnowflakeQuery(c.Query("provider_id"))
	if !ok {
		AbortWithError(c, newValidationError("provider_id", "invalid_id", "invalid provider id"))
		return
	}

	filter := reviewdomain.ListFilter{
		ProviderID: providerID,
		MinRating:  parseIntQuery(c.Query("min_rating"), 0),
		MaxRating:  parseIntQuery(c.Query("max_rating"), 0),
	}

	page := bindPage(c)
	items, info, err := s.reviewSvc.List(c.Request.Context(), filter, page)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": items, "page_info": info})
}

func (s *Server) UpdateReview(c *gin.Context) {
	id, ok := parseSnowflakeParam(c, "id")
	if !ok {
		return
	}

	var req reviewdomain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.reviewSvc.Update(c.Request.Context(), id, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteReview(c *gin.Context) {
	id, ok := parseSnowflakeParam(c, "id")
	if !ok {
		return
	}

	if err := s.reviewSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
