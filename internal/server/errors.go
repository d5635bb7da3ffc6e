package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	catalogdomain "github.com/providerpulse/providerpulse/internal/catalog/domain"
	"github.com/providerpulse/providerpulse/internal/dispatch"
	pricingdomain "github.com/providerpulse/providerpulse/internal/pricing/domain"
	probedomain "github.com/providerpulse/providerpulse/internal/probe/domain"
	providerdomain "github.com/providerpulse/providerpulse/internal/provider/domain"
	reviewdomain "github.com/providerpulse/providerpulse/internal/review/domain"
	settingsdomain "github.com/providerpulse/providerpulse/internal/settings/domain"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	switch {
	case isNotFound(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: err.Error(),
		}
	case isConflict(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: err.Error(),
		}
	case isValidation(err):
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: err.Error(),
		}
	case errors.Is(err, dispatch.ErrBackendDisabled):
		return http.StatusConflict, errorPayload{
			Type:    "queue_disabled",
			Message: err.Error(),
		}
	}

	return http.StatusInternalServerError, errorPayload{
		Type:    "internal_error",
		Message: "internal server error",
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, providerdomain.ErrNotFound) ||
		errors.Is(err, catalogdomain.ErrNotFound) ||
		errors.Is(err, pricingdomain.ErrProviderModelNotFound) ||
		errors.Is(err, probedomain.ErrProviderNotFound) ||
		errors.Is(err, reviewdomain.ErrNotFound) ||
		errors.Is(err, dispatch.ErrJobNotFound) ||
		errors.Is(err, gorm.ErrRecordNotFound)
}

func isConflict(err error) bool {
	return errors.Is(err, providerdomain.ErrSlugTaken) ||
		errors.Is(err, catalogdomain.ErrNameTaken) ||
		errors.Is(err, pricingdomain.ErrLinkExists)
}

func isValidation(err error) bool {
	switch {
	case errors.Is(err, providerdomain.ErrInvalidStatus),
		errors.Is(err, providerdomain.ErrNameRequired),
		errors.Is(err, catalogdomain.ErrNameRequired),
		errors.Is(err, pricingdomain.ErrInvalidPricingType),
		errors.Is(err, pricingdomain.ErrNegativePrice),
		errors.Is(err, probedomain.ErrInvalidProbeType),
		errors.Is(err, probedomain.ErrInvalidMethod),
		errors.Is(err, reviewdomain.ErrInvalidRating),
		errors.Is(err, reviewdomain.ErrContentRequired),
		errors.Is(err, settingsdomain.ErrWeightSumInvalid),
		errors.Is(err, settingsdomain.ErrIntervalOutOfRange),
		errors.Is(err, settingsdomain.ErrTimeoutOutOfRange),
		errors.Is(err, settingsdomain.ErrMaxJobsOutOfRange),
		errors.Is(err, dispatch.ErrUnknownQueue):
		return true
	}
	return false
}
