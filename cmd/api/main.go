// cmd/api/main.go
package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"

	"donorlink/internal/config"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	var cfg config.Gateway
	if err := config.ParseEnv(&cfg); err != nil {
		logger.Error("load config", "error", err)
		os.Exit(1)
	}

	routes := map[string]string{
		"/api/v1/auth/":       cfg.IdentityAddr,
		"/api/v1/tokens/":     cfg.LedgerAddr,
		"/api/v1/donations":   cfg.DonationsAddr,
		"/api/v1/donations/":  cfg.DonationsAddr,
		"/api/v1/suggestions": cfg.SuggestAddr,
		"/api/v1/impact":      cfg.SuggestAddr,
	}

	mux := http.NewServeMux()
	for prefix, addr := range routes {
		target, err := url.Parse(addr)
		if err != nil {
			logger.Error("parse upstream address", "addr", addr, "error", err)
			os.Exit(1)
		}
		mux.Handle(prefix, httputil.NewSingleHostReverseProxy(target))
	}
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	logger.Info("API gateway listening", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
