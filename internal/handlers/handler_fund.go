package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/drmelom/technical-test-BTG-Pactual/internal/apperrors"
	portssvc "github.com/drmelom/technical-test-BTG-Pactual/internal/core/ports/services"
	"github.com/drmelom/technical-test-BTG-Pactual/internal/dto"
	"github.com/drmelom/technical-test-BTG-Pactual/internal/middleware"
	"github.com/gin-gonic/gin"
)

type fundHandler struct {
	fundService     portssvc.FundSvcFacade
	workflowService portssvc.WorkflowSvc
}

func newFundHandler(fs portssvc.FundSvcFacade, ws portssvc.WorkflowSvc) *fundHandler {
	return &fundHandler{
		fundService:     fs,
		workflowService: ws,
	}
}

// registerFundRoutes registers the catalog routes and the rate limited workflow routes.
func registerFundRoutes(rg *gin.RouterGroup, fundService portssvc.FundSvcFacade, workflowService portssvc.WorkflowSvc, workflowLimit gin.HandlerFunc) {
	h := newFundHandler(fundService, workflowService)

	funds := rg.Group("/funds")
	{
		funds.GET("", h.listFunds)
		funds.GET("/subscriptions", h.listSubscriptions)
		funds.GET("/:fundID", h.getFund)
		funds.POST("/subscribe", workflowLimit, h.subscribe)
		funds.POST("/cancel", workflowLimit, h.cancel)
	}
}

// listFunds godoc
// @Summary List funds
// @Description Lists the active funds available for subscription
// @Tags funds
// @Produce  json
// @Success 200 {array} dto.FundResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /funds [get]
func (h *fundHandler) listFunds(c *gin.Context) {
	funds, err := h.fundService.ListFunds(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to list funds")
		return
	}
	c.JSON(http.StatusOK, dto.ToListFundResponse(funds))
}

// getFund godoc
// @Summary Get a fund
// @Description Retrieves a fund by its ID
// @Tags funds
// @Produce  json
// @Param   fundID path int true "Fund ID"
// @Success 200 {object} dto.FundResponse
// @Failure 400 {object} ErrorResponse "Invalid fund ID"
// @Failure 404 {object} ErrorResponse "Fund not found"
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /funds/{fundID} [get]
func (h *fundHandler) getFund(c *gin.Context) {
	fundID, err := strconv.Atoi(c.Param("fundID"))
	if err != nil || fundID <= 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid fund ID", ErrorCode: apperrors.CodeValidation})
		return
	}

	fund, err := h.fundService.GetFund(c.Request.Context(), fundID)
	if err != nil {
		respondError(c, err, "Failed to get fund")
		return
	}
	c.JSON(http.StatusOK, dto.ToFundResponse(fund))
}

// listSubscriptions godoc
// @Summary List my subscriptions
// @Description Lists the caller's active subscriptions
// @Tags funds
// @Produce  json
// @Success 200 {array} dto.SubscriptionResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /funds/subscriptions [get]
func (h *fundHandler) listSubscriptions(c *gin.Context) {
	accountID, ok := requireAccountID(c)
	if !ok {
		return
	}

	subs, err := h.fundService.ListAccountSubscriptions(c.Request.Context(), accountID)
	if err != nil {
		respondError(c, err, "Failed to list subscriptions")
		return
	}
	c.JSON(http.StatusOK, dto.ToSubscriptionResponses(subs))
}

// subscribe godoc
// @Summary Subscribe to a fund
// @Description Debits the amount from the caller's balance and opens a subscription
// @Tags funds
// @Accept  json
// @Produce  json
// @Param   subscription body dto.SubscribeRequest true "Fund and amount"
// @Success 201 {object} dto.SubscribeResponse
// @Failure 400 {object} ErrorResponse "Invalid input, inactive fund, amount below minimum or insufficient balance"
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse "Fund or account not found"
// @Failure 409 {object} ErrorResponse "Already subscribed or concurrent update"
// @Failure 429 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /funds/subscribe [post]
func (h *fundHandler) subscribe(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID, ok := requireAccountID(c)
	if !ok {
		return
	}

	var req dto.SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "Invalid request format")
		return
	}

	logger = logger.With(slog.Int("fund_id", req.FundID))
	logger.Info("Received request to subscribe", slog.String("amount", req.Amount.String()))

	result, err := h.workflowService.Subscribe(c.Request.Context(), accountID, req.FundID, req.Amount)
	if err != nil {
		logger.Warn("Subscription rejected", slog.String("error", err.Error()))
		respondError(c, err, "Failed to subscribe")
		return
	}

	c.JSON(http.StatusCreated, dto.SubscribeResponse{
		TransactionID:  result.TransactionID,
		SubscriptionID: result.SubscriptionID,
		FundID:         req.FundID,
		Amount:         req.Amount,
		NewBalance:     result.NewBalance,
	})
}

// cancel godoc
// @Summary Cancel a fund subscription
// @Description Closes the caller's active subscription and refunds its amount
// @Tags funds
// @Accept  json
// @Produce  json
// @Param   cancellation body dto.CancelRequest true "Fund to cancel"
// @Success 200 {object} dto.CancelResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse "No active subscription"
// @Failure 409 {object} ErrorResponse "Concurrent update"
// @Failure 429 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /funds/cancel [post]
func (h *fundHandler) cancel(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID, ok := requireAccountID(c)
	if !ok {
		return
	}

	var req dto.CancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "Invalid request format")
		return
	}

	logger = logger.With(slog.Int("fund_id", req.FundID))
	logger.Info("Received request to cancel subscription")

	result, err := h.workflowService.Cancel(c.Request.Context(), accountID, req.FundID)
	if err != nil {
		logger.Warn("Cancellation rejected", slog.String("error", err.Error()))
		respondError(c, err, "Failed to cancel subscription")
		return
	}

	c.JSON(http.StatusOK, dto.CancelResponse{
		TransactionID:  result.TransactionID,
		FundID:         req.FundID,
		RefundedAmount: result.RefundedAmount,
		NewBalance:     result.NewBalance,
	})
}

// requireAccountID returns the caller's account ID or writes a 401.
func requireAccountID(c *gin.Context) (string, bool) {
	accountID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		middleware.GetLoggerFromCtx(c.Request.Context()).Error("Account ID not found in context")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized", ErrorCode: apperrors.CodeUnauthorized})
		return "", false
	}
	return accountID, true
}
