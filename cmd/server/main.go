// Package main is the entry point for the restopos API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"restopos/internal/config"
	"restopos/internal/domain/auth"
	"restopos/internal/domain/events"
	"restopos/internal/domain/orders"
	"restopos/internal/domain/reports"
	"restopos/internal/domain/tables"
	v1 "restopos/internal/infrastructure/http/v1"
	natsbus "restopos/internal/infrastructure/messaging/nats"
	"restopos/internal/infrastructure/messaging/rabbitmq"
	"restopos/internal/infrastructure/realtime"
	"restopos/internal/infrastructure/storage/postgres"
	"restopos/internal/infrastructure/storage/postgres/catalog_repo"
	"restopos/internal/infrastructure/storage/postgres/document_repo"
	"restopos/internal/infrastructure/storage/postgres/register_repo"
	"restopos/internal/infrastructure/storage/postgres/report_repo"
	"restopos/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Development: cfg.Development(),
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logger.SetDefault(log)
	defer func() { _ = log.Sync() }()

	// Money is rendered as JSON numbers for the storefront.
	decimal.MarshalJSONWithoutQuotes = true

	ctx := context.Background()
	log.Info("starting restopos server")

	// --- Database ---
	poolCfg := postgres.DefaultPoolConfig(cfg.DatabaseURL)
	poolCfg.MaxConns = cfg.DBMaxConns
	poolCfg.MinConns = cfg.DBMinConns
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Infow("database connection established", "max_conns", poolCfg.MaxConns)

	txManager := postgres.NewTxManager(pool, cfg.StatementTimeout)

	// --- Event transports ---
	hub := realtime.NewHub(nil)
	publishers := events.Fanout{hub}

	if cfg.RabbitMQURL != "" {
		rmq, err := rabbitmq.Dial(cfg.RabbitMQURL, cfg.RabbitMQExchange)
		if err != nil {
			log.Fatalw("failed to connect to rabbitmq", "error", err)
		}
		defer rmq.Close()
		publishers = append(publishers, rmq)
		log.Infow("publishing order events to rabbitmq", "exchange", cfg.RabbitMQExchange)
	}

	if cfg.NATSURL != "" {
		nc, err := natsbus.Connect(cfg.NATSURL, cfg.NATSSubjectPrefix)
		if err != nil {
			log.Fatalw("failed to connect to nats", "error", err)
		}
		defer nc.Close()
		publishers = append(publishers, nc)
		log.Infow("publishing order events to nats", "prefix", cfg.NATSSubjectPrefix)
	}

	// --- Domain ---
	tableRepo := catalog_repo.NewTableRepo(txManager)
	dispatcher := orders.NewDispatcher(
		register_repo.NewStockRepo(txManager),
		publishers,
		cfg.SideEffectTimeout,
	)

	orderService := orders.NewService(orders.Config{
		TxManager: txManager,
		Tables:    tables.NewResolver(tableRepo),
		Repo:      document_repo.NewOrderRepo(txManager),
		Menu:      catalog_repo.NewMenuRepo(txManager),
		Customers: catalog_repo.NewCustomerRepo(txManager),
		Effects:   dispatcher,
		Location:  cfg.ReportLocation,
	})

	reportService := reports.NewService(
		report_repo.NewReportRepo(txManager),
		txManager,
		cfg.ReportLocation,
	)

	jwtService := auth.NewJWTService(auth.DefaultJWTConfig(cfg.JWTSecret))

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Logger:       log,
		JWTValidator: jwtService,
		Orders:       orderService,
		Reports:      reportService,
		Database:     pool,
		OrderStream:  hub.ServeWS,
		Development:  cfg.Development(),
	})

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	statsCtx, stopStats := context.WithCancel(ctx)
	defer stopStats()
	go logPoolStats(statsCtx, pool, 5*time.Minute)

	go func() {
		log.Infow("server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
	}

	// In-flight inventory deductions and notifications finish before the
	// pool and transports close.
	dispatcher.Wait()
	hub.Close()

	log.Info("server stopped")
}

func logPoolStats(ctx context.Context, pool *postgres.Pool, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pool.LogStats(ctx)
		}
	}
}
