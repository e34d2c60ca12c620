package handlers

import (
	"net/http"

	portssvc "github.com/drmelom/technical-test-BTG-Pactual/internal/core/ports/services"
	"github.com/drmelom/technical-test-BTG-Pactual/internal/dto"
	"github.com/gin-gonic/gin"
)

type adminHandler struct {
	ledgerService portssvc.LedgerAdminSvc
}

// registerAdminRoutes expects rg to be guarded by middleware.RequireAdmin.
func registerAdminRoutes(rg *gin.RouterGroup, ledgerService portssvc.LedgerAdminSvc) {
	h := &adminHandler{ledgerService: ledgerService}

	txns := rg.Group("/transactions")
	{
		txns.GET("/recent", h.recentTransactions)
		txns.GET("/:transactionID", h.getTransaction)
	}
}

// recentTransactions godoc
// @Summary Recent transactions (admin)
// @Description Returns the newest transactions across all accounts
// @Tags admin
// @Produce  json
// @Param   limit query int false "Maximum number of results" default(50)
// @Success 200 {array} dto.TransactionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /admin/transactions/recent [get]
func (h *adminHandler) recentTransactions(c *gin.Context) {
	var params dto.RecentTransactionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err, "Invalid query parameters")
		return
	}

	txns, err := h.ledgerService.RecentTransactions(c.Request.Context(), params.Limit)
	if err != nil {
		respondError(c, err, "Failed to list recent transactions")
		return
	}
	c.JSON(http.StatusOK, dto.ToTransactionResponses(txns))
}

// getTransaction godoc
// @Summary Get any transaction (admin)
// @Description Retrieves a transaction regardless of its owner
// @Tags admin
// @Produce  json
// @Param   transactionID path string true "Transaction ID"
// @Success 200 {object} dto.TransactionResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /admin/transactions/{transactionID} [get]
func (h *adminHandler) getTransaction(c *gin.Context) {
	txn, err := h.ledgerService.GetTransactionAdmin(c.Request.Context(), c.Param("transactionID"))
	if err != nil {
		respondError(c, err, "Failed to get transaction")
		return
	}
	c.JSON(http.StatusOK, dto.ToTransactionResponse(txn))
}
