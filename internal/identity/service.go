// internal/identity/service.go
package identity

import "context"

// Service is the single source of truth for who is signed in. Operations
// delegate to the identity service and normalize its failures; state changes
// flow back through the change-notification stream.
type Service interface {
	SignIn(ctx context.Context, email, password string) error
	SignUp(ctx context.Context, email, password string) SignUpResult
	SignOut(ctx context.Context) error
	ResetPassword(ctx context.Context, email string) error
	ClearError()
	State() State
	Close()
}
