// cmd/identity/main.go
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"donorlink/internal/config"
	"donorlink/internal/identity"
	"donorlink/internal/idp"
	"donorlink/internal/simulator"
	"donorlink/internal/telemetry"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	var cfg config.Identity
	if err := config.ParseEnv(&cfg); err != nil {
		logger.Error("load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	shutdown, err := telemetry.Setup(ctx, "donorlink-identity")
	if err != nil {
		logger.Error("setup tracing", "error", err)
		os.Exit(1)
	}
	defer shutdown(ctx)

	backend := simulator.New(
		simulator.WithLatency(cfg.BackendLatency),
		simulator.WithFailRate(cfg.BackendFail),
	)
	provider := idp.New(
		idp.WithLogger(logger),
		idp.WithBackend(backend),
		idp.WithSigningKey([]byte(cfg.SigningKey)),
	)

	svc := identity.NewManager(provider,
		identity.WithLogger(logger),
		identity.WithRedirectTo(cfg.RedirectTo),
	)
	defer svc.Close()

	handler := identity.NewHandler(svc)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	router.Handle("/metrics", promhttp.Handler())
	router.Route("/api/v1/auth", handler.Routes)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logger.Info("starting identity service", "addr", addr)
	if err := http.ListenAndServe(addr, router); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
