// internal/donations/domain.go
package donations

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Donation is a submitted offer of goods.
type Donation struct {
	ID          uuid.UUID `json:"id"`
	DonorID     string    `json:"donor_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Condition   string    `json:"condition"`
	Category    string    `json:"category"`
	ImageURL    string    `json:"image_url,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Donation statuses.
const (
	StatusPending  = "pending"
	StatusAccepted = "accepted"
)

// RewardTokens is the token credit for a successful submission.
const RewardTokens = 50

// Submission form vocabularies.
var (
	Conditions = []string{"new", "like_new", "good", "fair"}
	Categories = []string{"clothing", "food", "furniture", "electronics", "books", "toys", "other"}
)

var (
	ErrNotFound         = errors.New("donation not found")
	ErrInvalidCondition = errors.New("invalid condition")
	ErrInvalidCategory  = errors.New("invalid category")
	ErrMissingTitle     = errors.New("title is required")
)
