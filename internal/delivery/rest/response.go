package rest

import (
	"errors"
	"net/http"
	"time"

	"github.com/NasaVasa/partprice/internal/usecase"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	codeInvalidInput  = "INVALID_INPUT"
	codeUnauthorized  = "UNAUTHORIZED"
	codeForbidden     = "FORBIDDEN"
	codeNotFound      = "NOT_FOUND"
	codeConflict      = "CONFLICT"
	codeInternalError = "INTERNAL_ERROR"
)

type envelope struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message,omitempty"`
	Data      any       `json:"data,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type errorBody struct {
	Success   bool      `json:"success"`
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

func respond(c *gin.Context, status int, message string, data any) {
	c.JSON(status, envelope{Success: true, Message: message, Data: data, Timestamp: time.Now()})
}

func fail(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, errorBody{Success: false, Code: code, Message: message, Timestamp: time.Now()})
}

func (h *Handlers) failWith(c *gin.Context, err error) {
	switch {
	case errors.Is(err, usecase.ErrPartNotFound),
		errors.Is(err, usecase.ErrAlertNotFound),
		errors.Is(err, usecase.ErrNotificationNotFound):
		fail(c, http.StatusNotFound, codeNotFound, err.Error())
	case errors.Is(err, usecase.ErrForbidden):
		fail(c, http.StatusForbidden, codeForbidden, "alert belongs to another user")
	case errors.Is(err, usecase.ErrInvalidTargetPrice),
		errors.Is(err, usecase.ErrInvalidCategory),
		errors.Is(err, usecase.ErrNoKeywords),
		errors.Is(err, usecase.ErrMarketplaceNotConfigured):
		fail(c, http.StatusBadRequest, codeInvalidInput, err.Error())
	case errors.Is(err, usecase.ErrImportInProgress),
		errors.Is(err, usecase.ErrCrawlInProgress):
		fail(c, http.StatusConflict, codeConflict, err.Error())
	default:
		h.logger.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		fail(c, http.StatusInternalServerError, codeInternalError, "internal server error")
	}
}

// importStatus maps a finished import to its HTTP status. The result body is
// returned as is in every case.
func importStatus(result usecase.ImportResult) int {
	if result.Success {
		return http.StatusOK
	}
	switch {
	case errors.Is(result.Err, usecase.ErrImportInProgress):
		return http.StatusConflict
	case errors.Is(result.Err, usecase.ErrMarketplaceNotConfigured),
		errors.Is(result.Err, usecase.ErrInvalidCategory),
		errors.Is(result.Err, usecase.ErrNoKeywords):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
