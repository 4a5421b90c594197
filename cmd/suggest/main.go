// cmd/suggest/main.go
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
	"donorlink/internal/suggest"
	"donorlink/internal/telemetry"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	var cfg config.Suggest
	if err := config.ParseEnv(&cfg); err != nil {
		logger.Error("load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	shutdown, err := telemetry.Setup(ctx, "donorlink-suggest")
	if err != nil {
		logger.Error("setup tracing", "error", err)
		os.Exit(1)
	}
	defer shutdown(ctx)

	client, err := suggest.New(cfg.Endpoint, cfg.APIKey, suggest.WithModel(cfg.Model))
	if err != nil {
		logger.Error("create suggestion client", "error", err)
		os.Exit(1)
	}
	handler := suggest.NewHandler(client, logger)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	router.Handle("/metrics", promhttp.Handler())
	router.Route("/api/v1", handler.Routes)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logger.Info("starting suggestion service", "addr", addr)
	if err := http.ListenAndServe(addr, router); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
