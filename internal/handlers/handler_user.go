package handlers

import (
	"net/http"

	"github.com/drmelom/technical-test-BTG-Pactual/internal/apperrors"
	portssvc "github.com/drmelom/technical-test-BTG-Pactual/internal/core/ports/services"
	"github.com/drmelom/technical-test-BTG-Pactual/internal/dto"
	"github.com/drmelom/technical-test-BTG-Pactual/internal/middleware"

	"github.com/gin-gonic/gin"
)

// userHandler handles HTTP requests about the authenticated client.
type userHandler struct {
	accountService portssvc.AccountSvcFacade
}

func newUserHandler(as portssvc.AccountSvcFacade) *userHandler {
	return &userHandler{
		accountService: as,
	}
}

// registerUserRoutes registers all user-related routes.
func registerUserRoutes(rg *gin.RouterGroup, accountService portssvc.AccountSvcFacade) {
	h := newUserHandler(accountService)

	users := rg.Group("/users")
	{
		users.GET("/me", h.getMe)
		users.PUT("/profile", h.updateProfile)
	}
}

// getMe godoc
// @Summary Get the current client
// @Description Returns the authenticated client's profile and balance
// @Tags users
// @Produce  json
// @Success 200 {object} dto.AccountResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Account not found"
// @Failure 500 {object} ErrorResponse "Failed to retrieve account"
// @Security BearerAuth
// @Router /users/me [get]
func (h *userHandler) getMe(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	accountID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Account ID not found in context")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized", ErrorCode: apperrors.CodeUnauthorized})
		return
	}

	account, err := h.accountService.GetAccount(c.Request.Context(), accountID)
	if err != nil {
		respondError(c, err, "Failed to retrieve account")
		return
	}

	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

// updateProfile godoc
// @Summary Update the current client's profile
// @Description Changes name, phone or notification preference. Omitted fields keep their value.
// @Tags users
// @Accept  json
// @Produce  json
// @Param   profile body dto.UpdateProfileRequest true "Profile changes"
// @Success 200 {object} dto.AccountResponse
// @Failure 400 {object} ErrorResponse "Invalid input (e.g. SMS notifications without a phone)"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Account not found"
// @Failure 500 {object} ErrorResponse "Failed to update profile"
// @Security BearerAuth
// @Router /users/profile [put]
func (h *userHandler) updateProfile(c *gin.Context) {
	accountID, ok := requireAccountID(c)
	if !ok {
		return
	}

	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "Invalid request body")
		return
	}

	account, err := h.accountService.UpdateProfile(c.Request.Context(), accountID, req)
	if err != nil {
		respondError(c, err, "Failed to update profile")
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}
