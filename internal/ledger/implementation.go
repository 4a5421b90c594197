// internal/ledger/implementation.go
package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"donorlink/internal/simulator"
)

// service implements the Service interface.
type service struct {
	backend *simulator.Backend
	logger  *slog.Logger
	tracer  trace.Tracer
	userID  string

	mu          sync.Mutex
	balance     int
	totalEarned int
	rewards     []Reward
	exchanges   []Exchange // newest first
	inflight    int
}

// Option configures the ledger service.
type Option func(*service)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *service) { s.logger = logger }
}

// WithRewards replaces the starter catalog.
func WithRewards(rewards []Reward) Option {
	return func(s *service) { s.rewards = rewards }
}

// WithStartingBalance seeds the initial balance and lifetime earned counter.
func WithStartingBalance(balance int) Option {
	return func(s *service) {
		s.balance = balance
		s.totalEarned = balance
	}
}

// WithUserID stamps exchange records with the owning user.
func WithUserID(id string) Option {
	return func(s *service) { s.userID = id }
}

// NewService creates a ledger seeded with the starter balance and catalog.
func NewService(backend *simulator.Backend, opts ...Option) Service {
	s := &service{
		backend:     backend,
		logger:      slog.Default(),
		tracer:      otel.Tracer("donorlink/ledger"),
		userID:      "demo-user",
		balance:     StartingBalance,
		totalEarned: StartingBalance,
		rewards:     DefaultRewards(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// markLoading raises the shared in-flight flag. Concurrent operations overlap
// the flag rather than stack it, so it is a counter underneath.
func (s *service) markLoading() {
	s.mu.Lock()
	s.inflight++
	s.mu.Unlock()
}

func (s *service) unmarkLoading() {
	s.mu.Lock()
	s.inflight--
	s.mu.Unlock()
}

// Earn credits tokens after a backend round-trip. All-or-nothing: a failed
// round-trip leaves both counters untouched.
func (s *service) Earn(ctx context.Context, amount int) error {
	if amount <= 0 {
		return ErrAmountNotPositive
	}

	ctx, span := s.tracer.Start(ctx, "ledger.Earn",
		trace.WithAttributes(attribute.Int("ledger.amount", amount)))
	defer span.End()

	s.markLoading()
	defer s.unmarkLoading()

	if err := s.roundTrip(ctx, "earn"); err != nil {
		earnsTotal.WithLabelValues("backend_error").Inc()
		return fmt.Errorf("earn tokens: %w", err)
	}

	s.mu.Lock()
	s.balance += amount
	s.totalEarned += amount
	s.mu.Unlock()

	earnsTotal.WithLabelValues("ok").Inc()
	tokensEarned.Add(float64(amount))
	s.logger.Info("tokens earned", "amount", amount, "balance", s.Balance())
	return nil
}

// Exchange redeems a reward. Checks run in order with the first failure
// winning: balance covers amount, reward exists, reward in stock. The
// caller-supplied amount is charged as-is; it is not derived from the
// catalog cost. No partial mutation on any failure path.
func (s *service) Exchange(ctx context.Context, rewardID string, amount int) (*Exchange, error) {
	ctx, span := s.tracer.Start(ctx, "ledger.Exchange",
		trace.WithAttributes(
			attribute.String("ledger.reward_id", rewardID),
			attribute.Int("ledger.amount", amount)))
	defer span.End()

	s.markLoading()
	defer s.unmarkLoading()

	// Fail fast before the round-trip, like the backend transaction would.
	s.mu.Lock()
	err := s.validateExchange(rewardID, amount)
	s.mu.Unlock()
	if err != nil {
		exchangesTotal.WithLabelValues(outcomeLabel(err)).Inc()
		return nil, err
	}

	if err := s.roundTrip(ctx, "exchange"); err != nil {
		exchangesTotal.WithLabelValues("backend_error").Inc()
		return nil, fmt.Errorf("exchange tokens: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Re-validate: a concurrent operation may have moved the balance or the
	// stock while this one was suspended. Same checks, same order.
	if err := s.validateExchange(rewardID, amount); err != nil {
		exchangesTotal.WithLabelValues(outcomeLabel(err)).Inc()
		return nil, err
	}

	now := time.Now().UTC()
	record := Exchange{
		ID:          uuid.New(),
		UserID:      s.userID,
		RewardID:    rewardID,
		TokenAmount: amount,
		Status:      StatusCompleted,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	s.balance -= amount
	for i := range s.rewards {
		if s.rewards[i].ID == rewardID {
			s.rewards[i].AvailableQuantity--
			s.rewards[i].UpdatedAt = now
			break
		}
	}
	s.exchanges = append([]Exchange{record}, s.exchanges...)

	exchangesTotal.WithLabelValues("completed").Inc()
	tokensSpent.Add(float64(amount))
	s.logger.Info("reward exchanged", "reward_id", rewardID, "amount", amount, "balance", s.balance)
	return &record, nil
}

// validateExchange runs the ordered checks. Callers hold s.mu.
func (s *service) validateExchange(rewardID string, amount int) error {
	if s.balance < amount {
		return ErrInsufficientBalance
	}
	var reward *Reward
	for i := range s.rewards {
		if s.rewards[i].ID == rewardID {
			reward = &s.rewards[i]
			break
		}
	}
	if reward == nil {
		return ErrRewardNotFound
	}
	if reward.AvailableQuantity <= 0 {
		return ErrOutOfStock
	}
	return nil
}

// RefreshBalance is a placeholder for the future real backend: it suspends on
// the round-trip and succeeds without touching state.
func (s *service) RefreshBalance(ctx context.Context) error {
	ctx, span := s.tracer.Start(ctx, "ledger.RefreshBalance")
	defer span.End()

	s.markLoading()
	defer s.unmarkLoading()

	if err := s.roundTrip(ctx, "refresh"); err != nil {
		return fmt.Errorf("refresh balance: %w", err)
	}
	return nil
}

// roundTrip times the backend suspension for the duration histogram.
func (s *service) roundTrip(ctx context.Context, operation string) error {
	start := time.Now()
	err := s.backend.RoundTrip(ctx)
	roundTripDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	return err
}

// Balance returns the current spendable tokens.
func (s *service) Balance() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balance
}

// TotalEarned returns the lifetime earned counter.
func (s *service) TotalEarned() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalEarned
}

// Rewards returns a copy of the catalog.
func (s *service) Rewards() []Reward {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Reward, len(s.rewards))
	copy(out, s.rewards)
	return out
}

// Exchanges returns a copy of the redemption log, newest first.
func (s *service) Exchanges() []Exchange {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Exchange, len(s.exchanges))
	copy(out, s.exchanges)
	return out
}

// Loading reports whether any ledger operation is in flight.
func (s *service) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inflight > 0
}

func outcomeLabel(err error) string {
	switch err {
	case ErrInsufficientBalance:
		return "insufficient_balance"
	case ErrRewardNotFound:
		return "reward_not_found"
	case ErrOutOfStock:
		return "out_of_stock"
	default:
		return "error"
	}
}
