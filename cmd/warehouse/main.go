package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/kechei-store/warehouse-api/internal/app"
	"github.com/kechei-store/warehouse-api/internal/auth"
	"github.com/kechei-store/warehouse-api/internal/issuing"
	"github.com/kechei-store/warehouse-api/internal/items"
	"github.com/kechei-store/warehouse-api/internal/masterdata"
	"github.com/kechei-store/warehouse-api/internal/observability"
	"github.com/kechei-store/warehouse-api/internal/platform/cache"
	"github.com/kechei-store/warehouse-api/internal/platform/db"
	"github.com/kechei-store/warehouse-api/internal/rbac"
	"github.com/kechei-store/warehouse-api/internal/receiving"
	"github.com/kechei-store/warehouse-api/internal/reports"
	"github.com/kechei-store/warehouse-api/internal/shared"
	"github.com/kechei-store/warehouse-api/internal/stock"
	"github.com/kechei-store/warehouse-api/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()
	auditLogger := shared.NewAuditLogger(pool)
	rbacMiddleware := rbac.Middleware{Logger: logger}

	tokenStore := auth.NewTokenStore(redisClient, cfg.TokenTTL)
	authRepo := auth.NewRepository(pool)
	authService := auth.NewService(authRepo, tokenStore)
	authService.SetSessionMirror(authRepo)
	authMiddleware := auth.NewMiddleware(logger, authService)
	authHandler := auth.NewHandler(logger, authService, authMiddleware)

	ledger := stock.NewLedger()

	stockRepo := stock.NewRepository(pool)
	stockService := stock.NewService(stockRepo)
	stockHandler := stock.NewHandler(logger, stockService)

	itemsRepo := items.NewRepository(pool)
	itemsService := items.NewService(itemsRepo, auditLogger)
	itemsHandler := items.NewHandler(logger, itemsService, rbacMiddleware)

	receivingRepo := receiving.NewRepository(pool)
	receivingService := receiving.NewService(receivingRepo, ledger, auditLogger)
	receivingService.SetMovementRecorder(metrics)
	receivingHandler := receiving.NewHandler(logger, receivingService, rbacMiddleware)

	issuingRepo := issuing.NewRepository(pool)
	issuingService := issuing.NewService(issuingRepo, ledger, auditLogger)
	issuingService.SetMovementRecorder(metrics)
	issuingHandler := issuing.NewHandler(logger, issuingService, rbacMiddleware)

	masterdataRepo := masterdata.NewRepository(pool)
	masterdataHandler := masterdata.NewHandler(logger, masterdataRepo, rbacMiddleware)

	reportsRepo := reports.NewRepository(pool)
	reportsService := reports.NewService(logger, reportsRepo, redisClient, cfg.ReportCacheTTL)
	reportsHandler := reports.NewHandler(logger, reportsService)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobsClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init jobs client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobsClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()
	jobsHandler := jobs.NewHandler(inspector, jobsClient, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		AuthHandler:       authHandler,
		AuthMiddleware:    authMiddleware,
		ItemsHandler:      itemsHandler,
		StockHandler:      stockHandler,
		ReceivingHandler:  receivingHandler,
		IssuingHandler:    issuingHandler,
		MasterDataHandler: masterdataHandler,
		ReportsHandler:    reportsHandler,
		JobsHandler:       jobsHandler,
		RBACMiddleware:    rbacMiddleware,
		Metrics:           metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
