package handlers

import (
	"fmt"

	"github.com/drmelom/technical-test-BTG-Pactual/cmd/docs"
	portssvc "github.com/drmelom/technical-test-BTG-Pactual/internal/core/ports/services"
	"github.com/drmelom/technical-test-BTG-Pactual/internal/dto"
	"github.com/drmelom/technical-test-BTG-Pactual/internal/middleware"
	"github.com/drmelom/technical-test-BTG-Pactual/internal/platform/config"
	"github.com/drmelom/technical-test-BTG-Pactual/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	analytics *utils.PosthogClientWrapper,
) error {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := dto.RegisterValidations(v); err != nil {
			return fmt.Errorf("failed to register request validations: %w", err)
		}
	}

	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	// Register public authentication routes
	if err := registerAuthRoutes(r, cfg, services.Account, services.Token); err != nil {
		return err
	}

	// Setup API v1 routes with Auth Middleware, passing service interfaces
	if err := setupAPIV1Routes(r, cfg, services, analytics); err != nil {
		return err
	}

	setupSwaggerRoutes(r, cfg)
	return nil
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	service *portssvc.ServiceContainer,
	analytics *utils.PosthogClientWrapper,
) error {
	v1 := r.Group("/api/v1", middleware.AuthMiddleware(cfg.JWTSecret), middleware.PosthogMiddleware(analytics))

	workflowLimiter, err := middleware.NewMemoryLimiter(cfg.WorkflowRateLimit)
	if err != nil {
		return fmt.Errorf("invalid WORKFLOW_RATE_LIMIT %q: %w", cfg.WorkflowRateLimit, err)
	}

	registerUserRoutes(v1, service.Account)
	registerFundRoutes(v1, service.Fund, service.Workflow, middleware.RateLimit(workflowLimiter))
	registerTransactionRoutes(v1, service.Ledger)
	registerAdminRoutes(v1.Group("/admin", middleware.RequireAdmin()), service.Ledger)
	return nil
}

// setupSwaggerRoutes configures the swagger documentation routes
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/api/v1"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
