// internal/identity/provider.go
package identity

import "context"

// Provider is the boundary to the external identity service. The session
// manager depends only on success or failure, the opaque session object, and
// the human-readable message of any error, which it classifies.
type Provider interface {
	// GetSession returns the current session, or nil when signed out.
	GetSession(ctx context.Context) (*Session, error)

	// OnSessionChange registers an observer for session changes. Each
	// notification is an authoritative replacement of the current session
	// (nil on sign-out or expiry). The returned function unregisters the
	// observer and must be called on teardown.
	OnSessionChange(fn func(*Session)) (unsubscribe func())

	SignInWithPassword(ctx context.Context, email, password string) error
	SignUp(ctx context.Context, email, password, redirectTo string) error
	SignOut(ctx context.Context) error
	ResetPasswordForEmail(ctx context.Context, email, redirectTo string) error
}
