package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/drmelom/technical-test-BTG-Pactual/internal/core/services"
	"github.com/drmelom/technical-test-BTG-Pactual/internal/handlers"
	"github.com/drmelom/technical-test-BTG-Pactual/internal/middleware"
	"github.com/drmelom/technical-test-BTG-Pactual/internal/notifications"
	"github.com/drmelom/technical-test-BTG-Pactual/internal/platform/config"
	"github.com/drmelom/technical-test-BTG-Pactual/internal/utils"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// @title Funds Backend API
// @version 1.0
// @description Subscribe to and cancel investment fund positions, with a ledger of every movement.

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @security BearerAuth
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repos, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to open store", slog.String("driver", cfg.StoreDriver), slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("Store ready", slog.String("driver", cfg.StoreDriver))

	analytics := utils.InitializePosthogClient(cfg.PosthogAPIKey, cfg.PosthogEndpoint, logger)

	// email/sms by preference -> analytics -> async worker pool
	notifier := notifications.NewTrackingNotifier(
		notifications.NewPreferenceRouter(
			notifications.NewEmailNotifier(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.EmailFrom, logger),
			notifications.NewSMSNotifier(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromPhone, logger),
		),
		analytics,
		logger,
	)
	dispatcher := notifications.NewDispatcher(notifier, cfg.NotifierWorkers, cfg.NotifierQueueSize, cfg.NotifierTimeout, logger)

	serviceContainer := services.NewServiceContainer(cfg, repos, dispatcher)

	if err := serviceContainer.Fund.InitializeFunds(ctx); err != nil {
		logger.Error("Failed to seed fund catalog", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if cfg.AdminPassword != "" {
		if err := serviceContainer.Account.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword, cfg.AdminInitialBalance); err != nil {
			logger.Error("Failed to seed admin account", slog.String("error", err.Error()))
			os.Exit(1)
		}
	} else {
		logger.Warn("ADMIN_PASSWORD not set, admin account not seeded")
	}

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(
		middleware.StructuredLoggingMiddleware(logger),
		gin.Recovery(),
		cors.New(cors.Config{
			AllowOrigins:     cfg.CORSOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
			ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
	)

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := handlers.RegisterRoutes(r, cfg, serviceContainer, analytics); err != nil {
		logger.Error("Failed to register routes", slog.String("error", err.Error()))
		os.Exit(1)
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("Server starting", slog.String("port", cfg.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed to run", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", slog.String("error", err.Error()))
	}
	// Workflows have finished; flush queued notifications before the channels go away.
	if err := dispatcher.Close(shutdownCtx); err != nil {
		logger.Warn("Notification queue not fully drained", slog.String("error", err.Error()))
	}
	analytics.Close()
	if repos.Close != nil {
		if err := repos.Close(shutdownCtx); err != nil {
			logger.Error("Failed to close store", slog.String("error", err.Error()))
		}
	}

	logger.Info("Server exited")
}
