package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/rl1809/commerce-admin/internal/adapter/handler"
	"github.com/rl1809/commerce-admin/internal/adapter/storage"
	"github.com/rl1809/commerce-admin/internal/config"
	"github.com/rl1809/commerce-admin/internal/core/service"
	"github.com/rl1809/commerce-admin/internal/port"
)

const healthCheckInterval = 10 * time.Second

func main() {
	decimal.MarshalJSONWithoutQuotes = true

	rootCmd := &cobra.Command{
		Use:           "commerce-admin",
		Short:         "E-commerce admin API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}
	rootCmd.AddCommand(
		serveCommand(),
		migrateCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "run the HTTP API and gRPC health servers",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
}

func migrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "apply or roll back schema migrations",
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "migrate all the way up",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := bootstrap()
			if err != nil {
				return err
			}
			defer logger.Sync()

			if err := storage.MigrateUp(cfg.DBDriver, cfg.DatabaseDSN, logger); err != nil {
				return err
			}
			logger.Info("migrations applied", zap.String("driver", cfg.DBDriver))
			return nil
		},
	}

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "roll back migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := bootstrap()
			if err != nil {
				return err
			}
			defer logger.Sync()

			if err := storage.MigrateDown(cfg.DBDriver, cfg.DatabaseDSN, steps, logger); err != nil {
				return err
			}
			logger.Info("migrations rolled back", zap.String("driver", cfg.DBDriver), zap.Int("steps", steps))
			return nil
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back, 0 for all")

	cmd.AddCommand(up, down)
	return cmd
}

func bootstrap() (*config.Config, *zap.Logger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if cfg.LogFormat == "console" {
		zc = zap.NewDevelopmentConfig()
	}

	level, err := zap.ParseAtomicLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	zc.Level = level

	return zc.Build()
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	if cfg.AutoMigrate {
		if err := storage.MigrateUp(cfg.DBDriver, cfg.DatabaseDSN, logger); err != nil {
			return err
		}
	}

	// Initialize database
	db, err := storage.Open(ctx, cfg.DBDriver, cfg.DatabaseDSN, storage.PoolConfig{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	})
	if err != nil {
		return err
	}
	defer db.Close()
	logger.Info("connected to database", zap.String("driver", cfg.DBDriver))

	// Initialize Redis when configured
	var idempotency port.IdempotencyStore = storage.NoopIdempotencyStore{}
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			PoolSize: 100,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer rdb.Close()
		idempotency = storage.NewRedisAdapter(rdb)
		logger.Info("connected to redis", zap.String("addr", cfg.RedisAddr))
	} else {
		logger.Info("REDIS_ADDR not set, idempotency keys are not enforced")
	}

	// Initialize services
	store := storage.NewSQLAdapter(db)
	settings := service.Settings{
		DefaultPageSize:          cfg.DefaultPageSize,
		MaxPageSize:              cfg.MaxPageSize,
		DefaultLowStockThreshold: cfg.DefaultLowStockThreshold,
	}
	productService := service.NewProductService(store, settings, logger)
	inventoryService := service.NewInventoryService(store, store, settings, logger)
	salesService := service.NewSalesService(store, store, settings, logger)
	guard := service.NewIdempotencyGuard(idempotency, logger)

	// Health reporting
	healthHandler := handler.NewGRPCHandler(map[string]handler.Pinger{
		"database":    store,
		"idempotency": idempotency,
	}, logger)
	if err := healthHandler.Check(ctx); err != nil {
		logger.Warn("initial health check failed", zap.Error(err))
	}
	go healthHandler.Watch(ctx, healthCheckInterval)

	errCh := make(chan error, 2)

	// Start gRPC server
	grpcServer := grpc.NewServer()
	healthHandler.Register(grpcServer)

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.GRPCAddr, err)
	}
	go func() {
		logger.Info("gRPC server listening", zap.String("addr", cfg.GRPCAddr))
		if err := grpcServer.Serve(lis); err != nil {
			errCh <- fmt.Errorf("gRPC server: %w", err)
		}
	}()

	// Start HTTP server
	httpHandler := handler.NewHTTPHandler(productService, inventoryService, salesService, guard, healthHandler, logger)
	httpServer := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      httpHandler.Routes(cfg.CORSOrigins),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		logger.Info("HTTP server listening", zap.String("addr", cfg.HTTPAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server: %w", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	var serveErr error
	select {
	case sig := <-quit:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	case serveErr = <-errCh:
		logger.Error("server failed, shutting down", zap.Error(serveErr))
	}

	healthHandler.Shutdown()
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP server forced to stop", zap.Error(err))
	}
	logger.Info("HTTP server stopped")

	grpcServer.GracefulStop()
	logger.Info("gRPC server stopped")

	return serveErr
}
