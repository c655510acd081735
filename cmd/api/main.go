package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/stockward/inventory-service/config"
	"github.com/stockward/inventory-service/internal/pkg/broker"
	"github.com/stockward/inventory-service/internal/pkg/cache"
	"github.com/stockward/inventory-service/internal/pkg/clock"
	"github.com/stockward/inventory-service/internal/pkg/database"
	"github.com/stockward/inventory-service/internal/pkg/lock"
	"github.com/stockward/inventory-service/internal/pkg/logger"
	"github.com/stockward/inventory-service/internal/pkg/search"
	"github.com/stockward/inventory-service/internal/server"

	"github.com/stockward/inventory-service/internal/alert"
	alertH "github.com/stockward/inventory-service/internal/alert/handler"
	alertNotifier "github.com/stockward/inventory-service/internal/alert/notifier"
	alertRepoPkg "github.com/stockward/inventory-service/internal/alert/repository"
	alertUCPkg "github.com/stockward/inventory-service/internal/alert/usecase"

	invH "github.com/stockward/inventory-service/internal/inventory/handler"
	invListenerPkg "github.com/stockward/inventory-service/internal/inventory/listener"
	invRepoPkg "github.com/stockward/inventory-service/internal/inventory/repository"
	invUCPkg "github.com/stockward/inventory-service/internal/inventory/usecase"

	ledgerH "github.com/stockward/inventory-service/internal/ledger/handler"
	ledgerRepoPkg "github.com/stockward/inventory-service/internal/ledger/repository"
	ledgerUCPkg "github.com/stockward/inventory-service/internal/ledger/usecase"

	resH "github.com/stockward/inventory-service/internal/reservation/handler"
	reaperPkg "github.com/stockward/inventory-service/internal/reservation/reaper"
	resRepoPkg "github.com/stockward/inventory-service/internal/reservation/repository"
	resUCPkg "github.com/stockward/inventory-service/internal/reservation/usecase"

	whH "github.com/stockward/inventory-service/internal/warehouse/handler"
	whRepoPkg "github.com/stockward/inventory-service/internal/warehouse/repository"
	whUCPkg "github.com/stockward/inventory-service/internal/warehouse/usecase"
)

func main() {
	// 1. Load Configuration
	_ = godotenv.Load() // Load .env file if it exists
	cfg := config.LoadEnv()

	// 2. Initialize Logger
	logConfig := &logger.Config{
		IsDevelopment:     false,
		Encoding:          "json",
		Level:             "info",
		DisableCaller:     cfg.Logger.DisableCaller,
		DisableStacktrace: cfg.Logger.DisableStacktrace,
	}
	if cfg.Server.AppEnv == "dev" || cfg.Server.AppEnv == "development" {
		logConfig.IsDevelopment = true
		logConfig.Encoding = cfg.Logger.Encoding
		logConfig.Level = cfg.Logger.Level
	}

	appLogger := logger.New(logConfig)
	defer appLogger.Sync()

	// 3. Connect to Database
	db, err := database.NewPostgres(&database.Config{
		Host:            cfg.Postgres.Host,
		Port:            cfg.Postgres.Port,
		User:            cfg.Postgres.User,
		Password:        cfg.Postgres.Password,
		DBName:          cfg.Postgres.DBName,
		SSLMode:         cfg.Postgres.SSLMode,
		MaxOpenConns:    cfg.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Postgres.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Postgres.ConnMaxLifetime) * time.Second,
		ConnMaxIdleTime: time.Duration(cfg.Postgres.ConnMaxIdleTime) * time.Second,
	})
	if err != nil {
		appLogger.Fatal("could not connect to database", zap.Error(err))
	}
	defer db.Close()
	appLogger.Info("connected to postgres", zap.String("db_name", cfg.Postgres.DBName))

	// 4. Initialize Repositories
	whRepo := whRepoPkg.NewPGRepository(db)
	invRepo := invRepoPkg.NewPGRepository(db)
	ledgerRepo := ledgerRepoPkg.NewPGRepository(db)
	resRepo := resRepoPkg.NewPGRepository(db)
	alertRepo := alertRepoPkg.NewPGRepository(db)

	// 5. Redis-backed locking, with in-process fallback for single-node runs
	var locker lock.Locker
	redisClient, err := cache.NewRedisClient(&cache.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		appLogger.Warn("redis unavailable, falling back to in-process locks", zap.Error(err))
		locker = lock.NewKeyMutex()
	} else {
		defer redisClient.Close()
		appLogger.Info("connected to redis", zap.String("addr", cfg.Redis.Addr))
		locker = redisClient
	}

	// 6. Kafka: order events in, alert notifications out
	kafkaConsumer := broker.NewConsumer(&broker.Config{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.OrdersTopic,
		GroupID: cfg.Kafka.GroupID,
	})
	defer kafkaConsumer.Close()

	alertProducer := broker.NewProducer(&broker.Config{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.AlertsTopic,
	})
	defer alertProducer.Close()
	appLogger.Info("connected to kafka",
		zap.Strings("brokers", cfg.Kafka.Brokers),
		zap.String("orders_topic", cfg.Kafka.OrdersTopic),
		zap.String("alerts_topic", cfg.Kafka.AlertsTopic))

	// 7. Elasticsearch (optional movement indexing)
	var searchClient *search.Client
	if cfg.Elastic.Enabled {
		searchClient, err = search.NewClient(&search.Config{
			Addresses: cfg.Elastic.Addresses,
			Username:  cfg.Elastic.Username,
			Password:  cfg.Elastic.Password,
		})
		if err != nil {
			appLogger.Warn("elasticsearch unavailable, movement indexing disabled", zap.Error(err))
			searchClient = nil
		} else {
			appLogger.Info("connected to elasticsearch", zap.Strings("addresses", cfg.Elastic.Addresses))
		}
	}

	// 8. Initialize UseCases
	clk := clock.System{}

	whUC := whUCPkg.NewWarehouseUseCase(whRepo, clk, appLogger)
	ledgerUC := ledgerUCPkg.NewLedgerUseCase(ledgerRepo, clk, searchClient, appLogger)

	var notifier alert.Notifier = alertNotifier.NewKafkaNotifier(alertProducer)
	alertUC := alertUCPkg.NewAlertUseCase(alertRepo, notifier, clk, appLogger)

	invUC := invUCPkg.NewInventoryUseCase(invRepo, whUC, ledgerUC, alertUC, locker, cfg.Locking, clk, appLogger)
	resUC := resUCPkg.NewReservationUseCase(resRepo, invUC, cfg.Reservation, clk, appLogger)

	// 9. Background workers
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	orderListener := invListenerPkg.NewOrderListener(kafkaConsumer, invUC, appLogger)
	go orderListener.Start(ctx)

	reaper := reaperPkg.New(resRepo, resUC, cfg.Reservation.ReaperInterval, clk, appLogger)
	reaper.Start(ctx)

	// 10. HTTP server
	router := server.NewRouter(&server.Handlers{
		Warehouse:   whH.NewWarehouseHandler(whUC, appLogger),
		Inventory:   invH.NewInventoryHandler(invUC, appLogger),
		Ledger:      ledgerH.NewLedgerHandler(ledgerUC, appLogger),
		Reservation: resH.NewReservationHandler(resUC, appLogger),
		Alert:       alertH.NewAlertHandler(alertUC, appLogger),
	})

	srv := &http.Server{
		Addr:    cfg.Server.HTTPPort,
		Handler: router,
	}

	go func() {
		appLogger.Info("http server listening", zap.String("addr", cfg.Server.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("http server failed", zap.Error(err))
		}
	}()

	// 11. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("shutting down")
	cancel()
	reaper.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("forced shutdown", zap.Error(err))
	}
	appLogger.Info("stopped")
}
