package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"workflow-automation/backend/internal/api"
	"workflow-automation/backend/internal/auth"
	"workflow-automation/backend/internal/config"
	"workflow-automation/backend/internal/engine"
	"workflow-automation/backend/internal/logging"
	"workflow-automation/backend/internal/mcp"
	"workflow-automation/backend/internal/providers"
	"workflow-automation/backend/internal/repository"
	devtls "workflow-automation/backend/internal/tls"
	"workflow-automation/backend/pkg/models"
)

func main() {
	root := &cobra.Command{
		Use:   "server",
		Short: "Workflow automation backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context())
		},
	}
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("configuration loading failed: %w", err)
	}

	logger := logging.NewLogger(cfg.LogLevel)
	logger.Info("Starting workflow automation service", "environment", cfg.Environment)

	dbPool, err := initDatabase(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("database initialization failed: %w", err)
	}
	defer dbPool.Close()
	logger.Info("Database connected")

	pgStore := repository.NewPostgresStore(dbPool)
	if err := pgStore.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("schema setup failed: %w", err)
	}
	store := repository.NewCachingStore(pgStore, cfg.Cache.Size, cfg.Cache.TTL)

	registry := buildRegistry(cfg)
	eng := engine.New(store, registry, logger)
	runner := engine.NewRunner(eng, store, logger, cfg.Engine.MaxConcurrentRuns, cfg.Engine.RunTimeout)

	logger.Info("Execution engine initialized",
		"max_concurrent_runs", cfg.Engine.MaxConcurrentRuns, "run_timeout", cfg.Engine.RunTimeout)

	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Recover())
	e.Use(middleware.Logger())
	e.Use(otelecho.Middleware("workflow-automation"))

	authz, err := auth.New(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("auth initialization failed: %w", err)
	}

	apiServer := api.NewServer(store, runner, logger)
	e.GET("/healthz", apiServer.HandleHealth)

	apiGroup := e.Group("/api/v1")
	apiGroup.Use(authz.RequireAuth)
	apiServer.Register(apiGroup)
	logger.Info("REST API handlers mounted")

	mcpServer := mcp.NewServer(store, runner)
	mcpHandlers := http.NewServeMux()
	mcp.MountHTTPHandlers(mcpHandlers, mcpServer.GetMCPServer())
	e.Any("/mcp/*", echo.WrapHandler(mcpHandlers))
	logger.Info("MCP protocol handlers mounted")

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      e,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("Server starting", "address", cfg.HTTP.Addr, "tls", cfg.TLS.Enable)
		if cfg.TLS.Enable {
			if _, err := os.Stat(cfg.TLS.CertFile); os.IsNotExist(err) && len(cfg.TLS.Hostnames) > 0 {
				if err := devtls.GenerateSelfSignedCert(cfg.TLS.CertFile, cfg.TLS.KeyFile, cfg.TLS.Hostnames); err != nil {
					logger.Error("failed to generate self-signed cert", "error", err)
				}
			}
			serverErrors <- server.ListenAndServeTLS(cfg.TLS.CertFile, cfg.TLS.KeyFile)
		} else {
			serverErrors <- server.ListenAndServe()
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
	case sig := <-shutdown:
		logger.Info("Shutdown signal received", "signal", sig)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
			if err := server.Close(); err != nil {
				logger.Error("Server close error", "error", err)
			}
		}

		// Let in-flight runs reach a terminal status before exiting.
		runner.Wait()
		logger.Info("Server stopped gracefully")
	}

	return nil
}

func buildRegistry(cfg *config.Config) *engine.Registry {
	registry := engine.NewRegistry()
	registry.Register(models.TaskTypeScraping, providers.NewScraper())
	registry.Register(models.TaskTypeSummarization, providers.NewSummarizer(cfg.MLSidecar.URL))
	registry.Register(models.TaskTypeClassification, providers.NewClassifier(cfg.MLSidecar.URL))
	registry.Register(models.TaskTypeEmail, providers.NewEmailSender(providers.EmailConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	}))
	return registry
}

func initDatabase(ctx context.Context, cfg *config.Config, logger *logging.Logger) (*pgxpool.Pool, error) {
	logger.Debug("Initializing database connection")

	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.DB.Host, cfg.DB.Port, cfg.DB.User, cfg.DB.Password, cfg.DB.Name, cfg.DB.SSLMode,
	)

	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// The database may still be coming up alongside the service.
	ping := func() error { return pool.Ping(ctx) }
	b := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 5)
	if err := backoff.Retry(ping, backoff.WithContext(b, ctx)); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}
