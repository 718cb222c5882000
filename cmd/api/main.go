package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	_ "github.com/joho/godotenv/autoload"

	"github.com/sjperalta/workpermit-api/internal/config"
	"github.com/sjperalta/workpermit-api/internal/database"
	"github.com/sjperalta/workpermit-api/internal/handlers"
	"github.com/sjperalta/workpermit-api/internal/jobs"
	"github.com/sjperalta/workpermit-api/internal/mailer"
	"github.com/sjperalta/workpermit-api/internal/middleware"
	"github.com/sjperalta/workpermit-api/internal/repository"
	"github.com/sjperalta/workpermit-api/internal/roles"
	"github.com/sjperalta/workpermit-api/internal/services"
	"github.com/sjperalta/workpermit-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger.Setup(cfg.Environment, cfg.LogLevel)

	// Initialize Sentry when DSN is configured
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			TracesSampleRate: 0.2,
			Environment:      cfg.Environment,
		}); err != nil {
			logger.Error("Sentry initialization failed", "error", err)
		} else {
			logger.Info("Sentry initialized")
		}
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Connect(cfg.DatabaseURL, cfg.IsProduction())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(db); err != nil {
		logger.Error("Failed to migrate database", "error", err)
		os.Exit(1)
	}
	logger.Info("Connected to database")

	tables := cfg.Roles()
	if len(tables.EHSEmails) == 0 {
		logger.Warn("No EHS manager configured: submissions will fail until EHS_MANAGER_EMAIL is set")
	}
	resolver := roles.NewResolver(tables)

	repos := repository.NewRepositories(db)

	worker := jobs.NewWorker(cfg.WorkerCount)
	logger.Info("Started notification worker pool", "processors", cfg.WorkerCount)

	m := mailer.New(cfg)
	logger.Info("Mail channel selected", "channel", m.Channel())

	svcs := services.NewServices(repos, worker, resolver, m, cfg)
	h := handlers.NewHandlers(svcs, resolver, db)

	router := setupRouter(h, cfg, resolver)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	// Pending notifications are delivered before exit
	worker.Shutdown()
	logger.Info("Background worker stopped", "stats", worker.GetStats())

	if cfg.SentryDSN != "" {
		sentry.Flush(5 * time.Second)
	}

	logger.Info("Server exited gracefully")
}

func setupRouter(h *handlers.Handlers, cfg *config.Config, resolver *roles.Resolver) *gin.Engine {
	router := gin.New()

	if cfg.SentryDSN != "" {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	// exports are already zip containers
	router.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/api/v1/admin/export"})))

	handlers.RegisterRoutes(router, h, cfg.JWTSecret, resolver)
	return router
}
