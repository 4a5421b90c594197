// internal/identity/domain.go
package identity

import (
	"errors"
	"time"
)

// User is the opaque user record handed back by the identity service.
type User struct {
	ID               string     `json:"id"`
	Email            string     `json:"email"`
	EmailConfirmedAt *time.Time `json:"email_confirmed_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

// Session represents an authenticated identity as reported by the identity
// service. A nil Session means signed out.
type Session struct {
	User        *User     `json:"user"`
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// ErrorKind is the closed taxonomy of classified auth failures. The zero
// value means no error.
type ErrorKind string

const (
	KindNone               ErrorKind = ""
	KindInvalidCredentials ErrorKind = "invalid_credentials"
	KindEmailNotConfirmed  ErrorKind = "email_not_confirmed"
	KindWeakPassword       ErrorKind = "weak_password"
	KindUserExists         ErrorKind = "user_exists"
	KindNetworkError       ErrorKind = "network_error"
	KindUnknownError       ErrorKind = "unknown_error"
)

// ErrMissingCredentials is returned when SignIn or SignUp is called with an
// empty email or password.
var ErrMissingCredentials = errors.New("email and password are required")

// SignUpResult reports the outcome of a sign-up request. Failures do not
// surface here as an error; callers must also check the manager's LastError.
type SignUpResult struct {
	NeedsConfirmation bool `json:"needs_confirmation"`
}

// State is a point-in-time snapshot of the session manager.
type State struct {
	User         *User     `json:"user"`
	Initializing bool      `json:"initializing"`
	Pending      bool      `json:"pending"`
	LastError    ErrorKind `json:"last_error,omitempty"`
}
