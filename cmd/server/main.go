package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	ledgerapp "github.com/bioinsight/backend/internal/application/ledger"
	"github.com/bioinsight/backend/internal/infrastructure/cache"
	"github.com/bioinsight/backend/internal/infrastructure/config"
	"github.com/bioinsight/backend/internal/infrastructure/event"
	"github.com/bioinsight/backend/internal/infrastructure/logger"
	"github.com/bioinsight/backend/internal/infrastructure/persistence"
	"github.com/bioinsight/backend/internal/infrastructure/telemetry"
	"github.com/bioinsight/backend/internal/interfaces/http/handler"
	"github.com/bioinsight/backend/internal/interfaces/http/middleware"
	"github.com/bioinsight/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting purchase ledger",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	ctx := context.Background()

	// Telemetry
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := meterProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down meter provider", zap.Error(err))
		}
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	ledgerMetrics, err := telemetry.NewLedgerMetrics(telemetry.LedgerMetricsConfig{
		Meter:  meterProvider.Meter("purchase-ledger"),
		Logger: log,
	})
	if err != nil {
		log.Fatal("Failed to create ledger metrics", zap.Error(err))
	}

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh))
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		DBSystem:        "postgresql",
	}, log)
	if err := dbTracing.RegisterOtelGorm(db.DB); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}

	// Event bus: finalized quotes feed the activity log
	eventBus := event.NewInMemoryEventBus(log)
	auditHandler := ledgerapp.NewQuoteFinalizedAuditHandler(persistence.NewGormActivityLogRepository(db.DB), log)
	eventBus.Subscribe(auditHandler)
	log.Info("Event handlers registered", zap.Strings("audit_events", auditHandler.EventTypes()))

	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Application services
	finalizationService := ledgerapp.NewFinalizationService(
		persistence.NewGormLedgerTransactionScope(db.DB),
		ledgerapp.FinalizationConfig{
			Timeout:         cfg.Ledger.FinalizeTimeout,
			DefaultCurrency: cfg.Ledger.Currency(),
		},
		log,
	)
	finalizationService.SetEventPublisher(eventBus)
	finalizationService.SetLedgerMetrics(ledgerMetrics)

	finalizer := ledgerapp.NewRetryingFinalizer(finalizationService, ledgerapp.RetryPolicy{
		MaxAttempts: uint(cfg.Ledger.RetryAttempts),
		BaseDelay:   cfg.Ledger.RetryBaseDelay,
		MaxDelay:    ledgerapp.DefaultRetryPolicy().MaxDelay,
	}, log)
	finalizer.SetLedgerMetrics(ledgerMetrics)

	reportService := ledgerapp.NewReportService(
		persistence.NewGormLedgerEntryRepository(db.DB),
		ledgerapp.ReportConfig{
			Timeout:     cfg.Ledger.SummaryTimeout,
			Currency:    cfg.Ledger.Currency(),
			CacheTTL:    cfg.Ledger.SummaryCacheTTL,
			MaxPageSize: cfg.Ledger.MaxPageSize,
		},
		log,
	)
	reportService.SetLedgerMetrics(ledgerMetrics)

	if cfg.Ledger.SummaryCacheEnabled {
		summaryCache, err := cache.NewSummaryCacheFactory(cfg.Redis, cache.WithLogger(log)).
			Create(ctx, cfg.Ledger.SummaryCacheBackend)
		if err != nil {
			log.Fatal("Failed to create summary cache", zap.Error(err))
		}
		defer func() {
			if err := summaryCache.Close(); err != nil {
				log.Error("Error closing summary cache", zap.Error(err))
			}
		}()
		reportService.SetSummaryCache(summaryCache)
	}

	// HTTP
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Order matters: request id first so every later layer can log and trace it.
	engine.Use(
		middleware.RequestID(),
		logger.Recovery(log),
		middleware.TracingWithConfig(middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     cfg.Telemetry.Enabled,
		}),
		middleware.TracingAttributeInjector(),
		middleware.SpanErrorMarker(),
		middleware.HTTPMetrics(middleware.HTTPMetricsConfig{
			MeterProvider: meterProvider,
			Enabled:       cfg.Telemetry.MetricsEnabled,
		}),
		logger.GinMiddleware(log),
		middleware.Secure(),
		middleware.CORS(),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
	)

	systemHandler := handler.NewSystemHandler(cfg.App.Name, version, db)
	router.NewRouter(engine, router.WithHealthCheck(systemHandler.Health)).
		Register(systemHandler).
		Register(handler.NewLedgerHandler(finalizer, reportService)).
		Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
