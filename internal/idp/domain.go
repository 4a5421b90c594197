// internal/idp/domain.go
package idp

import "time"

// account is a registered email/password identity.
type account struct {
	ID             string
	Email          string
	PasswordHash   string
	Salt           string
	EmailConfirmed bool
	ConfirmedAt    time.Time
	CreatedAt      time.Time
}

// ResetMail is a password-reset (or confirmation) email captured in the
// outbox instead of being sent.
type ResetMail struct {
	Email      string    `json:"email"`
	RedirectTo string    `json:"redirect_to"`
	Kind       string    `json:"kind"` // "reset" or "confirmation"
	SentAt     time.Time `json:"sent_at"`
}

// Upstream error messages, matching the identity service's wording exactly.
// The session manager's classifier keys on these literals.
const (
	msgInvalidCredentials = "Invalid login credentials"
	msgEmailNotConfirmed  = "Email not confirmed"
	msgWeakPassword       = "Password should be at least 6 characters"
	msgUserExists         = "User already registered"
	msgRateLimited        = "Request rate limit reached"
)

// minPasswordLength mirrors the upstream weak-password rule.
const minPasswordLength = 6
