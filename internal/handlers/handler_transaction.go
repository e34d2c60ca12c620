package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/drmelom/technical-test-BTG-Pactual/internal/core/ports/services"
	"github.com/drmelom/technical-test-BTG-Pactual/internal/dto"
	"github.com/drmelom/technical-test-BTG-Pactual/internal/middleware"
	"github.com/gin-gonic/gin"
)

type transactionHandler struct {
	ledgerService portssvc.LedgerReaderSvc
}

func newTransactionHandler(ls portssvc.LedgerReaderSvc) *transactionHandler {
	return &transactionHandler{ledgerService: ls}
}

func registerTransactionRoutes(rg *gin.RouterGroup, ledgerService portssvc.LedgerReaderSvc) {
	h := newTransactionHandler(ledgerService)

	txns := rg.Group("/transactions")
	{
		txns.GET("", h.listTransactions)
		txns.GET("/:transactionID", h.getTransaction)
	}
}

// listTransactions godoc
// @Summary List my transactions
// @Description Returns one page of the caller's transaction history, newest first
// @Tags transactions
// @Produce  json
// @Param   page query int false "Page number" default(1)
// @Param   size query int false "Page size" default(20)
// @Param   type query string false "Transaction type" Enums(subscription, cancellation)
// @Param   status query string false "Transaction status" Enums(pending, completed, failed)
// @Success 200 {object} dto.ListTransactionsResponse
// @Failure 400 {object} ErrorResponse "Invalid query parameters"
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse "Account not found"
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /transactions [get]
func (h *transactionHandler) listTransactions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID, ok := requireAccountID(c)
	if !ok {
		return
	}

	var params dto.ListTransactionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err, "Invalid query parameters")
		return
	}

	logger.Debug("Received request to list transactions", slog.Int("page", params.Page), slog.Int("size", params.Size))

	page, err := h.ledgerService.History(c.Request.Context(), accountID, portssvc.HistoryQuery{
		Page:     params.Page,
		PageSize: params.Size,
		Filter:   params.Filter(),
	})
	if err != nil {
		respondError(c, err, "Failed to list transactions")
		return
	}
	c.JSON(http.StatusOK, dto.ToListTransactionsResponse(page))
}

// getTransaction godoc
// @Summary Get one of my transactions
// @Description Retrieves a transaction owned by the caller
// @Tags transactions
// @Produce  json
// @Param   transactionID path string true "Transaction ID"
// @Success 200 {object} dto.TransactionResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse "Transaction belongs to another account"
// @Failure 404 {object} ErrorResponse "Transaction not found"
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /transactions/{transactionID} [get]
func (h *transactionHandler) getTransaction(c *gin.Context) {
	accountID, ok := requireAccountID(c)
	if !ok {
		return
	}

	txn, err := h.ledgerService.GetTransaction(c.Request.Context(), c.Param("transactionID"), accountID)
	if err != nil {
		respondError(c, err, "Failed to get transaction")
		return
	}
	c.JSON(http.StatusOK, dto.ToTransactionResponse(txn))
}
