package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/crmbase-app/crmbase-backend/api/routes"
	"github.com/crmbase-app/crmbase-backend/internal/auth"
	"github.com/crmbase-app/crmbase-backend/internal/companies"
	"github.com/crmbase-app/crmbase-backend/internal/contacts"
	"github.com/crmbase-app/crmbase-backend/internal/industries"
	"github.com/crmbase-app/crmbase-backend/internal/notes"
	"github.com/crmbase-app/crmbase-backend/internal/users"
	"github.com/crmbase-app/crmbase-backend/pkg/auth/session"
	"github.com/crmbase-app/crmbase-backend/pkg/config"
	"github.com/crmbase-app/crmbase-backend/pkg/db"
	"github.com/crmbase-app/crmbase-backend/pkg/logger"
	"github.com/crmbase-app/crmbase-backend/pkg/metrics"
	"github.com/crmbase-app/crmbase-backend/pkg/migrate"
	"github.com/crmbase-app/crmbase-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessions, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	userRepo := users.NewRepository(dbClient.DB())
	companyRepo := companies.NewRepository(dbClient.DB())
	noteRepo := notes.NewRepository(dbClient.DB())
	contactRepo := contacts.NewRepository(dbClient.DB())
	industryRepo := industries.NewRepository(dbClient.DB())

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       userRepo,
		TxRunner:       dbClient,
		SessionManager: sessions,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	userService, err := users.NewService(users.ServiceParams{
		Repo:           userRepo,
		SessionManager: sessions,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
		PageSize:       cfg.Pagination.UserPageSize,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create user service", err)
		os.Exit(1)
	}

	companyService, err := companies.NewService(companies.ServiceParams{
		Repo:       companyRepo,
		Industries: industryRepo,
		Notes:      noteRepo,
		Contacts:   contactRepo,
		PageSize:   cfg.Pagination.CompanyPageSize,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create company service", err)
		os.Exit(1)
	}

	noteService, err := notes.NewService(notes.ServiceParams{
		Repo:      noteRepo,
		Companies: companyRepo,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create note service", err)
		os.Exit(1)
	}

	contactService, err := contacts.NewService(contacts.ServiceParams{
		Repo:      contactRepo,
		Companies: companyRepo,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create contact service", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.NewHTTPMetrics(registry)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			sessions,
			httpMetrics,
			registry,
			authService,
			userService,
			companyService,
			noteService,
			contactService,
			industryRepo,
		),
	}

	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-shutdownCtx.Done():
		logg.Info(ctx, "shutdown signal received")
		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(timeoutCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
			os.Exit(1)
		}
	}

	logg.Info(ctx, "api server stopped")
}
