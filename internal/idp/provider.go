// internal/idp/provider.go

// Package idp is an in-memory twin of the external identity service. It
// implements the identity.Provider boundary with real password hashing, JWT
// access tokens, and the exact upstream error wording, so the rest of the
// system exercises the same paths it would against the hosted service.
package idp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"donorlink/internal/identity"
	"donorlink/internal/simulator"
)

var _ identity.Provider = (*Provider)(nil)

// Provider simulates the identity service for a single client session.
type Provider struct {
	backend    *simulator.Backend
	clock      *simulator.Clock
	logger     *slog.Logger
	limiter    *rate.Limiter
	signingKey []byte

	confirmationRequired bool

	mu       sync.Mutex
	accounts map[string]*account // by lowercased email
	current  *identity.Session
	subs     map[int]func(*identity.Session)
	nextSub  int
	outbox   []ResetMail
}

// Option configures the provider.
type Option func(*Provider)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Provider) { p.logger = logger }
}

// WithBackend sets the simulated round-trip boundary.
func WithBackend(b *simulator.Backend) Option {
	return func(p *Provider) { p.backend = b }
}

// WithClock sets the simulated clock.
func WithClock(c *simulator.Clock) Option {
	return func(p *Provider) { p.clock = c }
}

// WithSigningKey sets the JWT signing key.
func WithSigningKey(key []byte) Option {
	return func(p *Provider) { p.signingKey = key }
}

// WithConfirmationRequired controls whether new accounts must confirm their
// email before signing in. On by default, matching the hosted service.
func WithConfirmationRequired(required bool) Option {
	return func(p *Provider) { p.confirmationRequired = required }
}

// WithRateLimit overrides the auth-operation rate limit.
func WithRateLimit(limit rate.Limit, burst int) Option {
	return func(p *Provider) { p.limiter = rate.NewLimiter(limit, burst) }
}

// New creates an empty provider.
func New(opts ...Option) *Provider {
	p := &Provider{
		backend:              simulator.New(),
		clock:                simulator.NewClock(),
		logger:               slog.Default(),
		limiter:              rate.NewLimiter(rate.Every(time.Second), 30),
		signingKey:           []byte("dev-signing-key-change-in-prod"),
		confirmationRequired: true,
		accounts:             make(map[string]*account),
		subs:                 make(map[int]func(*identity.Session)),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Register creates a confirmed account directly, bypassing the sign-up flow.
// Intended for seeding fixtures.
func (p *Provider) Register(email, password string) (string, error) {
	hash, salt, err := hashPassword(password)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	now := p.clock.Now().UTC()
	acct := &account{
		ID:             uuid.NewString(),
		Email:          email,
		PasswordHash:   hash,
		Salt:           salt,
		EmailConfirmed: true,
		ConfirmedAt:    now,
		CreatedAt:      now,
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	key := strings.ToLower(email)
	if _, exists := p.accounts[key]; exists {
		return "", errors.New(msgUserExists)
	}
	p.accounts[key] = acct
	return acct.ID, nil
}

// GetSession returns the current session, or nil when signed out.
func (p *Provider) GetSession(ctx context.Context) (*identity.Session, error) {
	if err := p.backend.RoundTrip(ctx); err != nil {
		return nil, fmt.Errorf("failed to fetch session: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current, nil
}

// OnSessionChange registers an observer; the returned function removes it.
func (p *Provider) OnSessionChange(fn func(*identity.Session)) func() {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := p.nextSub
	p.nextSub++
	p.subs[id] = fn
	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.subs, id)
	}
}

// setSession installs the session and notifies observers outside the lock.
func (p *Provider) setSession(session *identity.Session) {
	p.mu.Lock()
	p.current = session
	subs := make([]func(*identity.Session), 0, len(p.subs))
	for _, fn := range p.subs {
		subs = append(subs, fn)
	}
	p.mu.Unlock()

	for _, fn := range subs {
		fn(session)
	}
}

// SignInWithPassword checks credentials and, on success, installs a session
// and notifies observers.
func (p *Provider) SignInWithPassword(ctx context.Context, email, password string) error {
	if !p.limiter.Allow() {
		return errors.New(msgRateLimited)
	}
	if err := p.backend.RoundTrip(ctx); err != nil {
		return fmt.Errorf("failed to fetch auth endpoint: %w", err)
	}

	p.mu.Lock()
	acct, ok := p.accounts[strings.ToLower(email)]
	p.mu.Unlock()
	if !ok {
		return errors.New(msgInvalidCredentials)
	}

	match, err := verifyPassword(password, acct.Salt, acct.PasswordHash)
	if err != nil || !match {
		return errors.New(msgInvalidCredentials)
	}
	if !acct.EmailConfirmed {
		return errors.New(msgEmailNotConfirmed)
	}

	now := p.clock.Now().UTC()
	token, err := p.mintAccessToken(acct, now)
	if err != nil {
		return err
	}

	confirmedAt := acct.ConfirmedAt
	p.setSession(&identity.Session{
		User: &identity.User{
			ID:               acct.ID,
			Email:            acct.Email,
			EmailConfirmedAt: &confirmedAt,
			CreatedAt:        acct.CreatedAt,
		},
		AccessToken: token,
		ExpiresAt:   now.Add(sessionTTL),
	})
	p.logger.Info("session established", "email", acct.Email)
	return nil
}

// SignUp creates an account. When confirmation is required the account stays
// unconfirmed and a confirmation mail lands in the outbox.
func (p *Provider) SignUp(ctx context.Context, email, password, redirectTo string) error {
	if !p.limiter.Allow() {
		return errors.New(msgRateLimited)
	}
	if err := p.backend.RoundTrip(ctx); err != nil {
		return fmt.Errorf("failed to fetch auth endpoint: %w", err)
	}

	if len(password) < minPasswordLength {
		return errors.New(msgWeakPassword)
	}

	hash, salt, err := hashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	now := p.clock.Now().UTC()
	acct := &account{
		ID:             uuid.NewString(),
		Email:          email,
		PasswordHash:   hash,
		Salt:           salt,
		EmailConfirmed: !p.confirmationRequired,
		CreatedAt:      now,
	}
	if acct.EmailConfirmed {
		acct.ConfirmedAt = now
	}

	p.mu.Lock()
	key := strings.ToLower(email)
	if _, exists := p.accounts[key]; exists {
		p.mu.Unlock()
		return errors.New(msgUserExists)
	}
	p.accounts[key] = acct
	if p.confirmationRequired {
		p.outbox = append(p.outbox, ResetMail{
			Email:      email,
			RedirectTo: redirectTo,
			Kind:       "confirmation",
			SentAt:     now,
		})
	}
	p.mu.Unlock()

	p.logger.Info("account created", "email", email, "confirmation_required", p.confirmationRequired)
	return nil
}

// SignOut terminates the current session and notifies observers.
func (p *Provider) SignOut(ctx context.Context) error {
	if err := p.backend.RoundTrip(ctx); err != nil {
		return fmt.Errorf("failed to fetch auth endpoint: %w", err)
	}
	p.setSession(nil)
	return nil
}

// ResetPasswordForEmail records a reset mail in the outbox. Like the hosted
// service, it succeeds even for unknown addresses.
func (p *Provider) ResetPasswordForEmail(ctx context.Context, email, redirectTo string) error {
	if !p.limiter.Allow() {
		return errors.New(msgRateLimited)
	}
	if err := p.backend.RoundTrip(ctx); err != nil {
		return fmt.Errorf("failed to fetch auth endpoint: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.outbox = append(p.outbox, ResetMail{
		Email:      email,
		RedirectTo: redirectTo,
		Kind:       "reset",
		SentAt:     p.clock.Now().UTC(),
	})
	return nil
}

// ConfirmEmail flips an account to confirmed, as if the user followed the
// confirmation link.
func (p *Provider) ConfirmEmail(email string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	acct, ok := p.accounts[strings.ToLower(email)]
	if !ok {
		return fmt.Errorf("no account for %s", email)
	}
	acct.EmailConfirmed = true
	acct.ConfirmedAt = p.clock.Now().UTC()
	return nil
}

// ExpireSession simulates service-reported expiry: the session is destroyed
// and observers receive a nil replacement.
func (p *Provider) ExpireSession() {
	p.setSession(nil)
}

// Outbox returns a copy of the captured mails.
func (p *Provider) Outbox() []ResetMail {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]ResetMail, len(p.outbox))
	copy(out, p.outbox)
	return out
}
