// internal/donations/service.go
package donations

import (
	"context"

	"github.com/google/uuid"
)

// TokenCrediter credits reward tokens to the donor. Implemented by the
// ledger service client.
type TokenCrediter interface {
	EarnTokens(ctx context.Context, amount int) error
}

// Service defines the interface for the donations service.
type Service interface {
	Submit(ctx context.Context, donorID, title, description, condition, category, imageURL string) (*Donation, error)
	Get(ctx context.Context, id uuid.UUID) (*Donation, error)
	ListByDonor(ctx context.Context, donorID string) ([]Donation, error)
	Accept(ctx context.Context, id uuid.UUID) error
}
