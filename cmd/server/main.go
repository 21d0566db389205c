package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpapi "carrental-backend/internal/api/http"
	"carrental-backend/internal/config"
	"carrental-backend/internal/logger"
	"carrental-backend/internal/metrics"
	"carrental-backend/internal/repository"
	"carrental-backend/internal/repository/memory"
	"carrental-backend/internal/repository/postgres"
	"carrental-backend/internal/security"
	"carrental-backend/internal/service"
)

type repositories struct {
	users    repository.UserRepository
	cars     repository.CarRepository
	bookings repository.BookingRepository
	audit    repository.AuditRepository
	db       *sql.DB
}

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	adminEmail := flag.String("admin-email", "", "Create this admin account on startup if it does not exist")
	adminName := flag.String("admin-name", "Administrator", "Display name for -admin-email")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Car Rental Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress(), "storage", cfg.Storage.Type)
	logger.Info("Pricing configuration", "late_fee_per_day", cfg.Pricing.LateFee().StringFixed(2))

	metrics.Register()

	repos, err := openRepositories(cfg)
	if err != nil {
		logger.Error("Failed to initialize storage", "error", err)
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	if repos.db != nil {
		defer repos.db.Close()
	}

	// Initialize Security
	tokenManager := security.NewTokenManager(cfg.JWT.Secret, time.Duration(cfg.JWT.AccessTokenExpiry)*time.Minute)

	// Initialize Services
	auditSvc := service.NewAuditService(repos.audit)
	userSvc := service.NewUserService(repos.users, auditSvc)
	authSvc := service.NewAuthService(repos.users, tokenManager, auditSvc)
	// Fleet edits and the booking lifecycle share one writer lock.
	writeMu := &sync.Mutex{}
	carSvc := service.NewCarService(repos.cars, auditSvc, service.WithCarWriteLock(writeMu))
	bookingSvc := service.NewBookingService(repos.users, repos.cars, repos.bookings, auditSvc, cfg.Pricing.LateFee(),
		service.WithWriteLock(writeMu))

	if *adminEmail != "" {
		admin, err := userSvc.EnsureAdmin(context.Background(), *adminName, *adminEmail)
		if err != nil {
			log.Fatalf("Failed to bootstrap admin: %v", err)
		}
		logger.Info("Admin account ready", "userID", admin.ID, "email", admin.Email)
	}

	// Initialize HTTP handlers
	router := httpapi.NewRouter(httpapi.Handlers{
		Auth:     httpapi.NewAuthHandler(authSvc),
		Users:    httpapi.NewUserHandler(userSvc, auditSvc),
		Cars:     httpapi.NewCarHandler(carSvc),
		Bookings: httpapi.NewBookingHandler(bookingSvc, time.Now),
	}, tokenManager)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	srv := &http.Server{
		Addr:              cfg.GetServerAddress(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", "error", err)
			log.Fatalf("Failed to serve: %v", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down HTTP server...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("HTTP server shutdown failed", "error", err)
	}
	logger.Info("HTTP server stopped. Goodbye!")
}

func openRepositories(cfg *config.Config) (*repositories, error) {
	if cfg.Storage.Type == config.StorageTypeMemory {
		logger.Info("Using in-memory storage; data is lost on restart")
		store := memory.NewStore()
		return &repositories{users: store.Users, cars: store.Cars, bookings: store.Bookings, audit: store.Audit}, nil
	}

	// Initialize Database
	logger.Debug("Connecting to database...", "connection_string", fmt.Sprintf("%s@%s:%d/%s", cfg.Database.User, cfg.Database.Host, cfg.Database.Port, cfg.Database.Database))
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Test database connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	logger.Info("Database connection established")

	if cfg.Storage.MigrateOnBoot {
		if err := postgres.Migrate(context.Background(), db); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}

	store := postgres.NewStore(db)
	return &repositories{users: store.Users, cars: store.Cars, bookings: store.Bookings, audit: store.Audit, db: store.DB()}, nil
}
