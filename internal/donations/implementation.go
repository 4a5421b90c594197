// internal/donations/implementation.go
package donations

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"donorlink/internal/simulator"
)

// service implements the Service interface.
type service struct {
	backend  *simulator.Backend
	crediter TokenCrediter
	logger   *slog.Logger

	mu    sync.Mutex
	items map[uuid.UUID]*Donation
	order []uuid.UUID
}

// NewService creates a donations service. The crediter may be nil, in which
// case submissions simply skip the token credit.
func NewService(backend *simulator.Backend, crediter TokenCrediter, opts ...Option) Service {
	s := &service{
		backend:  backend,
		crediter: crediter,
		logger:   slog.Default(),
		items:    make(map[uuid.UUID]*Donation),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Option configures the donations service.
type Option func(*service)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *service) { s.logger = logger }
}

// Submit validates and stores a donation, then credits the donor's reward
// tokens. The credit is best-effort: a ledger failure is logged and the
// donation stands.
func (s *service) Submit(ctx context.Context, donorID, title, description, condition, category, imageURL string) (*Donation, error) {
	if title == "" {
		return nil, ErrMissingTitle
	}
	if !slices.Contains(Conditions, condition) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCondition, condition)
	}
	if !slices.Contains(Categories, category) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCategory, category)
	}

	if err := s.backend.RoundTrip(ctx); err != nil {
		return nil, fmt.Errorf("submit donation: %w", err)
	}

	now := time.Now().UTC()
	donation := &Donation{
		ID:          uuid.New(),
		DonorID:     donorID,
		Title:       title,
		Description: description,
		Condition:   condition,
		Category:    category,
		ImageURL:    imageURL,
		Status:      StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	s.mu.Lock()
	s.items[donation.ID] = donation
	s.order = append(s.order, donation.ID)
	s.mu.Unlock()

	if s.crediter != nil {
		if err := s.crediter.EarnTokens(ctx, RewardTokens); err != nil {
			s.logger.Warn("token credit failed", "donation_id", donation.ID, "err", err)
		}
	}

	s.logger.Info("donation submitted", "donation_id", donation.ID, "category", category)
	out := *donation
	return &out, nil
}

// Get returns a donation by id.
func (s *service) Get(ctx context.Context, id uuid.UUID) (*Donation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	donation, ok := s.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *donation
	return &out, nil
}

// ListByDonor returns the donor's donations in submission order.
func (s *service) ListByDonor(ctx context.Context, donorID string) ([]Donation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Donation
	for _, id := range s.order {
		if d := s.items[id]; d.DonorID == donorID {
			out = append(out, *d)
		}
	}
	return out, nil
}

// Accept marks a pending donation as accepted by an NGO.
func (s *service) Accept(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	donation, ok := s.items[id]
	if !ok {
		return ErrNotFound
	}
	donation.Status = StatusAccepted
	donation.UpdatedAt = time.Now().UTC()
	return nil
}
