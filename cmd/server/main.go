package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"bulletin/internal/email"
	"bulletin/internal/platform/config"
	"bulletin/internal/platform/httpserver"
	"bulletin/internal/platform/logger"
	"bulletin/internal/platform/middleware"
	"bulletin/internal/platform/postgres"
	"bulletin/internal/subscription/handler"
	"bulletin/internal/subscription/metrics"
	"bulletin/internal/subscription/service"
	"bulletin/internal/subscription/store"
	"bulletin/pkg/platform/audit/publisher"
	auditpostgres "bulletin/pkg/platform/audit/store/postgres"
)

const requestTimeout = 15 * time.Second

// main wires dependencies and owns the server lifecycle. Business logic lives
// in the internal packages.
func main() {
	log := logger.New(slog.LevelInfo)

	cfg, err := config.Load()
	if err != nil {
		log.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(ctx, cfg.Database)
	if err != nil {
		log.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	mailer, err := email.NewClient(cfg.Email)
	if err != nil {
		log.Error("failed to build email client", "error", err)
		os.Exit(1)
	}

	auditPub := publisher.NewPublisher(auditpostgres.New(db), publisher.WithAsyncBuffer(256))
	defer auditPub.Close()

	svc := service.New(
		store.NewPostgres(db),
		mailer,
		newSubscriptionPostgresTx(db),
		cfg.App.BaseURL,
		log,
		service.WithMetrics(metrics.New()),
		service.WithAudit(auditPub),
	)

	router := chi.NewRouter()
	router.Use(middleware.Recovery(log))
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(log))
	router.Use(middleware.Timeout(requestTimeout))
	handler.New(svc, log).Register(router)
	router.Method(http.MethodGet, "/metrics", promhttp.Handler())

	srv := httpserver.New(cfg.App.Addr, router)

	go func() {
		log.Info("starting bulletin server", "addr", cfg.App.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}
