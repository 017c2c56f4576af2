// Package main is the entry point for the car rental API server.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver for goose
	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"
	"github.com/robfig/cron/v3"

	"carrental/internal/config"
	"carrental/internal/handler"
	"carrental/internal/middleware"
	"carrental/internal/repo"
	"carrental/internal/service"
	"carrental/internal/stripe"
	"carrental/migrations"
)

func main() {
	// --- Config -----------------------------------------------------------
	// A .env file is a local-development convenience; in deployment the
	// variables come from the environment and the file is absent.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	// JSON handler writes machine-readable output suitable for log aggregators.
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// --- Database ---------------------------------------------------------
	// pgxpool manages a pool of Postgres connections.
	// New() does not open connections immediately — the first query does.
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Verify the DB is reachable before accepting traffic.
	if err := pool.Ping(context.Background()); err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	slog.Info("database connection established")

	if err := runMigrations(cfg.DatabaseURL); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// --- Services ---------------------------------------------------------
	carRepo := repo.NewCarRepo(pool)
	userRepo := repo.NewUserRepo(pool)
	bookingRepo := repo.NewBookingRepo(pool)

	stripeClient := stripe.NewHTTP(cfg.StripeSecretKey)

	carSvc := service.NewCarService(carRepo, bookingRepo)
	bookingSvc := service.NewBookingService(bookingRepo, carRepo)
	authSvc := service.NewAuthService(userRepo, cfg.JWTSecret, 7*24*time.Hour)
	paymentSvc := service.NewPaymentService(bookingRepo, stripeClient, cfg.CheckoutSuccessURL, cfg.CheckoutCancelURL)

	// --- Background jobs --------------------------------------------------
	// Unpaid pending bookings hold their dates hostage; sweep them hourly.
	sched := cron.New()
	_, err = sched.AddFunc("@hourly", func() {
		n, err := bookingSvc.ExpireStalePending(context.Background(), cfg.PendingTTL)
		if err != nil {
			slog.Error("stale booking sweep failed", "error", err)
			return
		}
		if n > 0 {
			slog.Info("cancelled stale pending bookings", "count", n)
		}
	})
	if err != nil {
		slog.Error("failed to schedule booking sweep", "error", err)
		os.Exit(1)
	}
	sched.Start()
	defer sched.Stop()

	// --- Router -----------------------------------------------------------
	// Middleware is applied in order: RequestID → RealIP → Logger → Recoverer
	// → CORS → body cap → token authentication. Per-route auth requirements
	// are enforced inside handler.Routes.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))
	r.Use(middleware.NewAuthenticator(cfg.JWTSecret))

	srv := handler.NewServer(carSvc, bookingSvc, authSvc, paymentSvc, logger)
	srv.Routes(r)

	// --- HTTP Server ------------------------------------------------------
	// Explicit timeouts prevent slowloris and resource exhaustion attacks.
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown: wait for OS signal, then give in-flight requests
	// up to 15 seconds to complete before forcefully closing.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// runMigrations applies any pending embedded migrations at startup, so a
// fresh database is usable without a separate migrate step. goose needs a
// database/sql handle, so one is opened just for this and closed after.
func runMigrations(dsn string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		return err
	}

	results, err := provider.Up(context.Background())
	if err != nil {
		return err
	}
	if len(results) > 0 {
		slog.Info("applied migrations", "count", len(results))
	}
	return nil
}
