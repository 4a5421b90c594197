// internal/ledger/service.go
package ledger

import "context"

// Service owns the token economy: balance, lifetime earned counter, reward
// catalog, and the redemption log. Every operation is atomic from the
// caller's perspective and suspends on a backend round-trip before committing.
type Service interface {
	Earn(ctx context.Context, amount int) error
	Exchange(ctx context.Context, rewardID string, amount int) (*Exchange, error)
	RefreshBalance(ctx context.Context) error

	Balance() int
	TotalEarned() int
	Rewards() []Reward
	Exchanges() []Exchange
	Loading() bool
}
