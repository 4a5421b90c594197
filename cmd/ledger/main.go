// cmd/ledger/main.go
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
	"donorlink/internal/ledger"
	"donorlink/internal/simulator"
	"donorlink/internal/telemetry"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	var cfg config.Ledger
	if err := config.ParseEnv(&cfg); err != nil {
		logger.Error("load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	shutdown, err := telemetry.Setup(ctx, "donorlink-ledger")
	if err != nil {
		logger.Error("setup tracing", "error", err)
		os.Exit(1)
	}
	defer shutdown(ctx)

	rewards := ledger.DefaultRewards()
	if cfg.CatalogPath != "" {
		rewards, err = ledger.LoadCatalog(cfg.CatalogPath)
		if err != nil {
			logger.Error("load reward catalog", "path", cfg.CatalogPath, "error", err)
			os.Exit(1)
		}
	}

	backend := simulator.New(
		simulator.WithLatency(cfg.BackendLatency),
		simulator.WithFailRate(cfg.BackendFail),
	)
	svc := ledger.NewService(backend,
		ledger.WithLogger(logger),
		ledger.WithRewards(rewards),
		ledger.WithStartingBalance(cfg.StartingTokens),
		ledger.WithUserID(cfg.UserID),
	)
	handler := ledger.NewHandler(svc)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	router.Handle("/metrics", promhttp.Handler())
	router.Route("/api/v1/tokens", handler.Routes)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logger.Info("starting ledger service", "addr", addr)
	if err := http.ListenAndServe(addr, router); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
