// internal/config/config.go

// Package config holds the per-service environment configuration.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Identity configures the identity session service.
type Identity struct {
	Port           int           `env:"DONORLINK_IDENTITY_PORT" envDefault:"8081"`
	SigningKey     string        `env:"DONORLINK_IDENTITY_SIGNING_KEY" envDefault:"dev-signing-key"`
	RedirectTo     string        `env:"DONORLINK_IDENTITY_REDIRECT_TO" envDefault:"http://localhost:3000/"`
	BackendLatency time.Duration `env:"DONORLINK_BACKEND_LATENCY" envDefault:"500ms"`
	BackendFail    float64       `env:"DONORLINK_BACKEND_FAIL_RATE" envDefault:"0"`
}

// Ledger configures the token ledger service.
type Ledger struct {
	Port           int           `env:"DONORLINK_LEDGER_PORT" envDefault:"8082"`
	CatalogPath    string        `env:"DONORLINK_LEDGER_CATALOG" envDefault:""`
	StartingTokens int           `env:"DONORLINK_LEDGER_STARTING_TOKENS" envDefault:"100"`
	UserID         string        `env:"DONORLINK_LEDGER_USER_ID" envDefault:"demo-user"`
	BackendLatency time.Duration `env:"DONORLINK_BACKEND_LATENCY" envDefault:"500ms"`
	BackendFail    float64       `env:"DONORLINK_BACKEND_FAIL_RATE" envDefault:"0"`
}

// Donations configures the donation intake service.
type Donations struct {
	Port           int           `env:"DONORLINK_DONATIONS_PORT" envDefault:"8083"`
	LedgerAddr     string        `env:"DONORLINK_LEDGER_ADDR" envDefault:"http://localhost:8082/api/v1/tokens"`
	BackendLatency time.Duration `env:"DONORLINK_BACKEND_LATENCY" envDefault:"500ms"`
	BackendFail    float64       `env:"DONORLINK_BACKEND_FAIL_RATE" envDefault:"0"`
}

// Suggest configures the donation suggestion service.
type Suggest struct {
	Port     int    `env:"DONORLINK_SUGGEST_PORT" envDefault:"8084"`
	Endpoint string `env:"DONORLINK_SUGGEST_ENDPOINT" envDefault:"https://generativelanguage.googleapis.com/v1/completions"`
	APIKey   string `env:"DONORLINK_SUGGEST_API_KEY"`
	Model    string `env:"DONORLINK_SUGGEST_MODEL" envDefault:"gemini-pro"`
}

// Gateway configures the public API gateway.
type Gateway struct {
	Port          int    `env:"DONORLINK_GATEWAY_PORT" envDefault:"8080"`
	IdentityAddr  string `env:"DONORLINK_IDENTITY_ADDR" envDefault:"http://localhost:8081"`
	LedgerAddr    string `env:"DONORLINK_LEDGER_ADDR" envDefault:"http://localhost:8082"`
	DonationsAddr string `env:"DONORLINK_DONATIONS_ADDR" envDefault:"http://localhost:8083"`
	SuggestAddr   string `env:"DONORLINK_SUGGEST_ADDR" envDefault:"http://localhost:8084"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
