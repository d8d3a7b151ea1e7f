package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	grpcapi "rentmarket-backend/internal/api/grpc"
	httpapi "rentmarket-backend/internal/api/http"
	"rentmarket-backend/internal/app"
	"rentmarket-backend/internal/config"
	"rentmarket-backend/internal/logger"
	"rentmarket-backend/internal/security"
	"rentmarket-backend/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Rent Market backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "http", cfg.GetHTTPAddress(), "grpc", cfg.GetGRPCAddress(), "driver", cfg.Database.Driver)

	ctx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	// Initialize Repositories
	repos, db, err := app.OpenStore(ctx, cfg)
	if err != nil {
		logger.Error("Failed to open store", "error", err)
		log.Fatalf("Failed to open store: %v", err)
	}
	if db != nil {
		defer db.Close()
	}

	// Initialize Notifications
	dispatcher, stopNotifier, err := app.NewNotifier(ctx, cfg, repos)
	if err != nil {
		logger.Error("Failed to start notifications", "error", err)
		log.Fatalf("Failed to start notifications: %v", err)
	}

	// Initialize Services
	tokenManager := security.NewTokenManager(cfg.JWT.Secret, cfg.AccessTokenTTL(), cfg.RefreshTokenTTL())
	authSvc := service.NewAuthService(repos.Users, tokenManager)
	services := httpapi.Services{
		Auth:          authSvc,
		Products:      service.NewProductService(repos.Products),
		Addresses:     service.NewAddressService(repos.Addresses),
		Cart:          service.NewCartService(repos.Carts, repos.Products, cfg.Marketplace.CartSaveAttempts),
		Rentals:       service.NewRentalService(repos.Rentals, repos.Products, repos.Addresses, dispatcher),
		Orders:        service.NewOrderService(repos.Orders, repos.Products, repos.Addresses, repos.Carts, dispatcher, cfg.Marketplace.OrderNumberAttempts),
		Notifications: service.NewNotificationService(repos.Notifications),
	}

	opts := httpapi.Options{RateLimit: cfg.RateLimit}
	var pinger grpcapi.Pinger
	if db != nil {
		opts.DB = db
		pinger = db
	}
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn("Redis is unreachable, rate limiting fails open until it recovers", "addr", cfg.Redis.Addr, "error", err)
		}
		opts.Redis = rdb
	}

	// Set up HTTP server
	httpServer := &http.Server{
		Addr:              cfg.GetHTTPAddress(),
		Handler:           httpapi.NewRouter(services, opts),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 2)

	// Set up gRPC health server
	var grpcServer *grpcapi.Server
	if cfg.Server.GRPCPort != 0 {
		grpcServer = grpcapi.NewServer(pinger)
		lis, err := net.Listen("tcp", cfg.GetGRPCAddress())
		if err != nil {
			logger.Error("Failed to listen", "error", err, "address", cfg.GetGRPCAddress())
			log.Fatalf("Failed to listen: %v", err)
		}
		go grpcServer.Watch(ctx, 15*time.Second)
		go func() {
			logger.Info("gRPC server listening", "address", cfg.GetGRPCAddress())
			errCh <- grpcServer.Serve(lis)
		}()
	}

	go func() {
		logger.Info("HTTP server listening", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-errCh:
		logger.Error("Server stopped unexpectedly", "error", err)
	}

	// Graceful shutdown: stop intake first, then drain notifications.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP shutdown failed", "error", err)
	}
	if grpcServer != nil {
		grpcServer.GracefulStop()
	}
	stopNotifier()
	logger.Info("Server stopped. Goodbye!")
}
