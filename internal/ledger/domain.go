// internal/ledger/domain.go
package ledger

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Reward is a redeemable catalog entry.
type Reward struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Description       string    `json:"description,omitempty"`
	ImageURL          string    `json:"image_url,omitempty"`
	TokenCost         int       `json:"token_cost"`
	AvailableQuantity int       `json:"available_quantity"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Exchange is a single redemption transaction. Records are append-only and
// immutable once created.
type Exchange struct {
	ID          uuid.UUID `json:"id"`
	UserID      string    `json:"user_id"`
	RewardID    string    `json:"reward_id"`
	TokenAmount int       `json:"token_amount"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Exchange statuses.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
)

// Validation errors surfaced by ledger operations. Recoverable, no retry.
var (
	ErrInsufficientBalance = errors.New("insufficient token balance")
	ErrRewardNotFound      = errors.New("reward not found")
	ErrOutOfStock          = errors.New("reward out of stock")
	ErrAmountNotPositive   = errors.New("amount must be positive")
)
