// internal/identity/implementation.go
package identity

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// manager implements the Service interface.
type manager struct {
	provider   Provider
	logger     *slog.Logger
	tracer     trace.Tracer
	redirectTo string

	mu           sync.Mutex
	user         *User
	initializing bool
	pending      bool
	lastError    ErrorKind

	unsubscribe func()
	initDone    chan struct{}
}

// Option configures the session manager.
type Option func(*manager)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *manager) { m.logger = logger }
}

// WithRedirectTo sets the redirect target sent with sign-up confirmations and
// password-reset emails.
func WithRedirectTo(url string) Option {
	return func(m *manager) { m.redirectTo = url }
}

// NewManager creates a session manager bound to the given identity provider.
// It immediately resolves any existing session in the background and
// subscribes to the provider's change stream; each notification replaces the
// current identity wholesale. Call Close to release the subscription.
func NewManager(provider Provider, opts ...Option) Service {
	m := &manager{
		provider:     provider,
		logger:       slog.Default(),
		tracer:       otel.Tracer("donorlink/identity"),
		initializing: true,
		initDone:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}

	m.unsubscribe = provider.OnSessionChange(m.applySession)

	go func() {
		defer close(m.initDone)
		session, err := provider.GetSession(context.Background())
		if err != nil {
			m.logger.Warn("initial session resolution failed", "err", err)
			m.mu.Lock()
			m.lastError = KindNetworkError
			m.initializing = false
			m.mu.Unlock()
			return
		}
		m.applySession(session)
	}()

	return m
}

// applySession installs a change notification as the authoritative identity.
// Last notification wins; the upstream service delivers in order.
func (m *manager) applySession(session *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if session != nil {
		m.user = session.User
	} else {
		m.user = nil
	}
	m.initializing = false
}

// begin marks an auth operation in flight and clears the prior error.
func (m *manager) begin() {
	m.mu.Lock()
	m.pending = true
	m.lastError = KindNone
	m.mu.Unlock()
}

// settle clears the in-flight flag. Deferred on every operation so pending is
// false after the call settles on every exit path.
func (m *manager) settle() {
	m.mu.Lock()
	m.pending = false
	m.mu.Unlock()
}

func (m *manager) storeError(kind ErrorKind) {
	m.mu.Lock()
	m.lastError = kind
	m.mu.Unlock()
}

// SignIn delegates the credential check to the identity service. On success
// the identity update arrives through the change stream, not here. On failure
// the raw error is classified, stored, and re-signaled to the caller.
func (m *manager) SignIn(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return ErrMissingCredentials
	}

	ctx, span := m.tracer.Start(ctx, "identity.SignIn")
	defer span.End()

	m.begin()
	defer m.settle()

	if err := m.provider.SignInWithPassword(ctx, email, password); err != nil {
		kind := Classify(err)
		span.SetAttributes(attribute.String("auth.error_kind", string(kind)))
		m.logger.Warn("sign-in failed", "kind", kind, "err", err)
		m.storeError(kind)
		return fmt.Errorf("sign in: %w", err)
	}
	return nil
}

// SignUp requests account creation with the configured confirmation redirect.
// Failures are not returned: the classified kind is stored and the result
// reports that no confirmation is pending, so callers must check both.
func (m *manager) SignUp(ctx context.Context, email, password string) SignUpResult {
	if email == "" || password == "" {
		m.storeError(KindUnknownError)
		return SignUpResult{NeedsConfirmation: false}
	}

	ctx, span := m.tracer.Start(ctx, "identity.SignUp")
	defer span.End()

	m.begin()
	defer m.settle()

	if err := m.provider.SignUp(ctx, email, password, m.redirectTo); err != nil {
		kind := Classify(err)
		span.SetAttributes(attribute.String("auth.error_kind", string(kind)))
		m.logger.Warn("sign-up failed", "kind", kind, "err", err)
		m.storeError(kind)
		return SignUpResult{NeedsConfirmation: false}
	}
	return SignUpResult{NeedsConfirmation: true}
}

// SignOut requests session termination. Failures propagate to the caller
// unclassified; pending still ends false.
func (m *manager) SignOut(ctx context.Context) error {
	ctx, span := m.tracer.Start(ctx, "identity.SignOut")
	defer span.End()

	m.begin()
	defer m.settle()

	if err := m.provider.SignOut(ctx); err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	return nil
}

// ResetPassword requests a reset email with the configured redirect target.
func (m *manager) ResetPassword(ctx context.Context, email string) error {
	ctx, span := m.tracer.Start(ctx, "identity.ResetPassword")
	defer span.End()

	m.begin()
	defer m.settle()

	if err := m.provider.ResetPasswordForEmail(ctx, email, m.redirectTo); err != nil {
		kind := Classify(err)
		m.logger.Warn("password reset failed", "kind", kind, "err", err)
		m.storeError(kind)
		return fmt.Errorf("reset password: %w", err)
	}
	return nil
}

// ClearError resets the stored error. Idempotent.
func (m *manager) ClearError() {
	m.storeError(KindNone)
}

// State returns a snapshot of the manager.
func (m *manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return State{
		User:         m.user,
		Initializing: m.initializing,
		Pending:      m.pending,
		LastError:    m.lastError,
	}
}

// Close releases the change-stream subscription.
func (m *manager) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
		m.unsubscribe = nil
	}
}

// waitInitialized blocks until the startup session resolution completes.
// Exposed for tests through the package-internal type assertion.
func (m *manager) waitInitialized() {
	<-m.initDone
}
