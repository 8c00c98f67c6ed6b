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
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/grandlivre-erp/grandlivre-erp/internal/accounting/accounts"
	"github.com/grandlivre-erp/grandlivre-erp/internal/accounting/fec"
	"github.com/grandlivre-erp/grandlivre-erp/internal/accounting/fiscalyears"
	"github.com/grandlivre-erp/grandlivre-erp/internal/accounting/journals"
	"github.com/grandlivre-erp/grandlivre-erp/internal/accounting/ledger"
	"github.com/grandlivre-erp/grandlivre-erp/internal/accounting/reports"
	"github.com/grandlivre-erp/grandlivre-erp/internal/app"
	"github.com/grandlivre-erp/grandlivre-erp/internal/observability"
	"github.com/grandlivre-erp/grandlivre-erp/internal/organizations"
	"github.com/grandlivre-erp/grandlivre-erp/internal/rbac"
	"github.com/grandlivre-erp/grandlivre-erp/internal/shared"
	"github.com/grandlivre-erp/grandlivre-erp/jobs"
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

	dbpool, err := pgxpool.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	fecEncoding, err := fec.ParseEncoding(cfg.FECEncoding)
	if err != nil {
		logger.Error("fec encoding", slog.Any("error", err))
		os.Exit(1)
	}

	auditLogger := shared.NewAuditLogger(dbpool)
	rbacService := rbac.NewService(dbpool)
	rbacMiddleware := rbac.Middleware{Service: rbacService, Logger: logger}
	metrics := observability.NewMetrics()

	orgService := organizations.NewService(dbpool)
	orgHandler := organizations.NewHandler(logger, orgService)

	accountsRepo := accounts.NewRepository(dbpool)
	accountsService := accounts.NewService(accountsRepo, auditLogger)
	accountsHandler := accounts.NewHandler(logger, accountsService, rbacMiddleware)

	fiscalYearsRepo := fiscalyears.NewRepository(dbpool)
	fiscalYearsService := fiscalyears.NewService(fiscalYearsRepo, auditLogger)
	fiscalYearsHandler := fiscalyears.NewHandler(logger, fiscalYearsService, rbacMiddleware)

	ledgerRepo := ledger.NewRepository(dbpool)
	ledgerCache := ledger.NewCache(redisClient, cfg.ReportCacheTTL)
	ledgerService := ledger.NewService(ledgerRepo, ledgerCache)
	if err := ledgerCache.ListenForInvalidation(ctx, ""); err != nil {
		logger.Warn("cache invalidation listener", slog.Any("error", err))
	}
	ledgerHandler := ledger.NewHandler(logger, ledgerService, rbacMiddleware)

	journalsRepo := journals.NewRepository(dbpool)
	journalsService := journals.NewService(journalsRepo, accountsRepo, fiscalYearsRepo, auditLogger, ledgerCache)
	journalsHandler := journals.NewHandler(logger, journalsService, rbacMiddleware, metrics)

	reportsHandler := reports.NewHandler(logger, ledgerService, rbacMiddleware)

	fecRepo := fec.NewRepository(dbpool)
	fecService := fec.NewService(fecRepo, orgService, fiscalYearsRepo, auditLogger)
	fecHandler := fec.NewHandler(logger, fecService, rbacMiddleware, fecEncoding)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		AccountsHandler:    accountsHandler,
		FiscalYearsHandler: fiscalYearsHandler,
		JournalsHandler:    journalsHandler,
		LedgerHandler:      ledgerHandler,
		ReportsHandler:     reportsHandler,
		FECHandler:         fecHandler,
		OrgHandler:         orgHandler,
		JobHandler:         jobHandler,
		Metrics:            metrics,
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
