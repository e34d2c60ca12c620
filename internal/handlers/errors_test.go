package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/drmelom/technical-test-BTG-Pactual/internal/apperrors"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusOf(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{apperrors.ErrFundNotFound, http.StatusNotFound},
		{fmt.Errorf("%w: 7", apperrors.ErrSubscriptionNotFound), http.StatusNotFound},
		{apperrors.ErrAccountNotFound, http.StatusNotFound},
		{apperrors.ErrTransactionNotFound, http.StatusNotFound},
		{apperrors.ErrFundInactive, http.StatusBadRequest},
		{apperrors.ErrBelowMinimumAmount, http.StatusBadRequest},
		{apperrors.ErrInsufficientFunds, http.StatusBadRequest},
		{apperrors.ErrValidation, http.StatusBadRequest},
		{apperrors.ErrAlreadySubscribed, http.StatusConflict},
		{apperrors.ErrConcurrencyConflict, http.StatusConflict},
		{apperrors.ErrDuplicate, http.StatusConflict},
		{apperrors.ErrNotAuthorized, http.StatusForbidden},
		{apperrors.ErrUnauthorized, http.StatusUnauthorized},
		{apperrors.ErrRefreshTokenExpired, http.StatusUnauthorized},
		{apperrors.ErrOperationFailed, http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, statusOf(tt.err))
		})
	}
}

func TestRespondError_HidesInternalDetails(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/funds/subscribe", nil)

	err := fmt.Errorf("%w: refund of TXN-1 failed: connection reset", apperrors.ErrOperationFailed)
	respondError(c, err, "Failed to subscribe")

	require.Equal(t, http.StatusInternalServerError, w.Code)
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Failed to subscribe", body.Error)
	assert.Equal(t, apperrors.CodeOperationFailed, body.ErrorCode)
}

func TestRespondError_ClientErrorsKeepMessage(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/funds/subscribe", nil)

	respondError(c, fmt.Errorf("%w: need 75000", apperrors.ErrBelowMinimumAmount), "Failed to subscribe")

	require.Equal(t, http.StatusBadRequest, w.Code)
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body.Error, "need 75000")
	assert.Equal(t, apperrors.CodeBelowMinimumAmount, body.ErrorCode)
}
