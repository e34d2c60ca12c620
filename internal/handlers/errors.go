package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/drmelom/technical-test-BTG-Pactual/internal/apperrors"
	"github.com/drmelom/technical-test-BTG-Pactual/internal/middleware"
	"github.com/gin-gonic/gin"
)

// ErrorResponse is the body of every failed API call.
type ErrorResponse struct {
	Error     string `json:"error"`
	ErrorCode string `json:"errorCode"`
}

// statusOf maps an error kind to its HTTP status. Order matters: the first match wins.
func statusOf(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrFundNotFound),
		errors.Is(err, apperrors.ErrSubscriptionNotFound),
		errors.Is(err, apperrors.ErrAccountNotFound),
		errors.Is(err, apperrors.ErrTransactionNotFound),
		errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrFundInactive),
		errors.Is(err, apperrors.ErrBelowMinimumAmount),
		errors.Is(err, apperrors.ErrInsufficientFunds),
		errors.Is(err, apperrors.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrAlreadySubscribed),
		errors.Is(err, apperrors.ErrConcurrencyConflict),
		errors.Is(err, apperrors.ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, apperrors.ErrNotAuthorized):
		return http.StatusForbidden
	case errors.Is(err, apperrors.ErrUnauthorized):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as an ErrorResponse. Internal failures are logged and their details withheld.
func respondError(c *gin.Context, err error, msg string) {
	status := statusOf(err)
	code := apperrors.CodeOf(err)
	if status >= http.StatusInternalServerError {
		middleware.GetLoggerFromCtx(c.Request.Context()).Error(msg, slog.String("error", err.Error()), slog.String("error_code", code))
		c.JSON(status, ErrorResponse{Error: msg, ErrorCode: code})
		return
	}
	c.JSON(status, ErrorResponse{Error: err.Error(), ErrorCode: code})
}

func respondBindError(c *gin.Context, err error, msg string) {
	middleware.GetLoggerFromCtx(c.Request.Context()).Warn(msg, slog.String("error", err.Error()))
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg + ": " + err.Error(), ErrorCode: apperrors.CodeValidation})
}
