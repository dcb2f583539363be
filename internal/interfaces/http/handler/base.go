// Package handler holds the gin handlers of the customer identity API.
package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/customeridentity/backend/internal/domain/shared"
	"github.com/customeridentity/backend/internal/infrastructure/logger"
	"github.com/customeridentity/backend/internal/interfaces/http/dto"
	"github.com/customeridentity/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error sends the standard error body
func (h *BaseHandler) Error(c *gin.Context, status int, message string, details ...string) {
	c.JSON(status, dto.NewErrorResponse(status, message, details...))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string, details ...string) {
	h.Error(c, http.StatusBadRequest, message, details...)
}

// Unauthorized sends a 401 unauthorized response
func (h *BaseHandler) Unauthorized(c *gin.Context, message string, details ...string) {
	h.Error(c, http.StatusUnauthorized, message, details...)
}

// InternalError sends a 500 with the generic message
func (h *BaseHandler) InternalError(c *gin.Context) {
	h.Error(c, http.StatusInternalServerError, dto.MessageUnexpected)
}

// HandleError converts domain errors to HTTP responses. Anything else is
// logged with the request id and answered with a generic 500.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	if domainErr, ok := shared.AsDomainError(err); ok {
		status := dto.GetHTTPStatus(domainErr.Code)
		if status != http.StatusInternalServerError {
			h.Error(c, status, domainErr.Message, domainErr.Details...)
			return
		}
	}

	logger.GetGinLogger(c).Error("Unhandled error",
		zap.String("path", c.Request.URL.Path),
		zap.Error(err))
	h.InternalError(c)
}

// HandleBindingError answers a failed ShouldBind call
func (h *BaseHandler) HandleBindingError(c *gin.Context, err error) {
	h.HandleError(c, bindingError(err))
}

// bindingError classifies a ShouldBind failure by its boundary error code
func bindingError(err error) *shared.DomainError {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return shared.NewDomainError(dto.ErrCodeRequestTooLarge, "Request body exceeds maximum allowed size")
	}
	if details := middleware.ValidationDetails(err); details != nil {
		return shared.NewDomainError(dto.ErrCodeValidation, "Validation failed").WithDetails(details...)
	}

	code := dto.ErrCodeInvalidInput
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) ||
		errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		code = dto.ErrCodeInvalidJSON
	}
	return shared.NewDomainError(code, "Malformed request").WithDetails("The request could not be parsed.")
}

// parseID reads a positive integer path parameter. It writes the 400 response
// itself and reports false when the value is unusable.
func (h *BaseHandler) parseID(c *gin.Context, param string) (int64, bool) {
	raw := c.Param(param)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		h.HandleError(c, invalidID(param, raw))
		return 0, false
	}
	return id, true
}

func invalidID(param, raw string) *shared.DomainError {
	return shared.NewDomainError(dto.ErrCodeInvalidID, "Invalid "+param).
		WithDetails(param + " must be a positive integer, got: " + raw)
}
