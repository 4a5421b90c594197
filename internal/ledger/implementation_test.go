package ledger

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"donorlink/internal/simulator"
)

func newTestLedger(opts ...Option) Service {
	return NewService(simulator.New(), opts...)
}

// snapshot captures the full observable ledger state for mutation checks.
type snapshot struct {
	balance     int
	totalEarned int
	rewards     []Reward
	exchanges   []Exchange
}

func capture(s Service) snapshot {
	return snapshot{
		balance:     s.Balance(),
		totalEarned: s.TotalEarned(),
		rewards:     s.Rewards(),
		exchanges:   s.Exchanges(),
	}
}

func TestSeededState(t *testing.T) {
	s := newTestLedger()
	assert.Equal(t, 100, s.Balance())
	assert.Equal(t, 100, s.TotalEarned())
	assert.Len(t, s.Rewards(), 3)
	assert.Empty(t, s.Exchanges())
	assert.False(t, s.Loading())
}

func TestEarnAccumulates(t *testing.T) {
	s := newTestLedger()
	amounts := []int{50, 25, 1, 200}
	sum := 0
	for _, a := range amounts {
		require.NoError(t, s.Earn(context.Background(), a))
		sum += a
	}
	assert.Equal(t, 100+sum, s.Balance())
	assert.Equal(t, 100+sum, s.TotalEarned())
}

func TestEarnRejectsNonPositiveAmount(t *testing.T) {
	s := newTestLedger()
	assert.ErrorIs(t, s.Earn(context.Background(), 0), ErrAmountNotPositive)
	assert.ErrorIs(t, s.Earn(context.Background(), -10), ErrAmountNotPositive)
	assert.Equal(t, 100, s.Balance())
}

func TestEarnBackendFailureIsAllOrNothing(t *testing.T) {
	backend := simulator.New()
	s := NewService(backend)

	backend.FailNext(simulator.ErrBackendUnavailable)
	err := s.Earn(context.Background(), 50)
	require.Error(t, err)
	assert.Equal(t, 100, s.Balance())
	assert.Equal(t, 100, s.TotalEarned())
	assert.False(t, s.Loading())
}

func TestExchangeThenEarnScenario(t *testing.T) {
	// Starting balance 100, earn(50) then exchange reward "2" (cost 100, qty 5).
	s := newTestLedger()

	require.NoError(t, s.Earn(context.Background(), 50))
	assert.Equal(t, 150, s.Balance())
	assert.Equal(t, 150, s.TotalEarned())

	record, err := s.Exchange(context.Background(), "2", 100)
	require.NoError(t, err)

	assert.Equal(t, 50, s.Balance())
	assert.Equal(t, 150, s.TotalEarned())
	assert.Equal(t, 100, record.TokenAmount)
	assert.Equal(t, StatusCompleted, record.Status)

	exchanges := s.Exchanges()
	require.Len(t, exchanges, 1)
	assert.Equal(t, record.ID, exchanges[0].ID)
}

func TestExchangeInsufficientBalanceMutatesNothing(t *testing.T) {
	s := newTestLedger()
	before := capture(s)

	_, err := s.Exchange(context.Background(), "1", 150)
	assert.ErrorIs(t, err, ErrInsufficientBalance)
	assert.Equal(t, before, capture(s))
}

func TestExchangeAmountDecoupledFromCatalogCost(t *testing.T) {
	// Reward "1" costs 50 and would be affordable, but the caller-supplied
	// amount of 150 exceeds the balance, so the exchange fails on the
	// balance check alone.
	s := newTestLedger()

	_, err := s.Exchange(context.Background(), "1", 150)
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	// The same reward succeeds with its real cost.
	record, err := s.Exchange(context.Background(), "1", 50)
	require.NoError(t, err)
	assert.Equal(t, 50, record.TokenAmount)
	assert.Equal(t, 50, s.Balance())
}

func TestExchangeUnknownRewardMutatesNothing(t *testing.T) {
	s := newTestLedger()
	before := capture(s)

	_, err := s.Exchange(context.Background(), "999", 10)
	assert.ErrorIs(t, err, ErrRewardNotFound)
	assert.Equal(t, before, capture(s))
}

func TestExchangeOutOfStockMutatesNothing(t *testing.T) {
	rewards := DefaultRewards()
	rewards[0].AvailableQuantity = 0
	s := newTestLedger(WithRewards(rewards))
	before := capture(s)

	_, err := s.Exchange(context.Background(), "1", 50)
	assert.ErrorIs(t, err, ErrOutOfStock)
	assert.Equal(t, before, capture(s))
}

func TestExchangeCheckOrderFirstFailureWins(t *testing.T) {
	// Balance check precedes existence check: an unknown reward with an
	// unaffordable amount reports insufficient_balance.
	s := newTestLedger()
	_, err := s.Exchange(context.Background(), "999", 500)
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	// Existence check precedes stock check.
	rewards := DefaultRewards()
	rewards[0].AvailableQuantity = 0
	s = newTestLedger(WithRewards(rewards))
	_, err = s.Exchange(context.Background(), "999", 10)
	assert.ErrorIs(t, err, ErrRewardNotFound)
}

func TestExchangeAppendsNewestFirstWithUniqueIDs(t *testing.T) {
	s := newTestLedger(WithStartingBalance(1000))

	first, err := s.Exchange(context.Background(), "1", 50)
	require.NoError(t, err)
	second, err := s.Exchange(context.Background(), "2", 100)
	require.NoError(t, err)
	third, err := s.Exchange(context.Background(), "1", 50)
	require.NoError(t, err)

	exchanges := s.Exchanges()
	require.Len(t, exchanges, 3)
	assert.Equal(t, third.ID, exchanges[0].ID)
	assert.Equal(t, second.ID, exchanges[1].ID)
	assert.Equal(t, first.ID, exchanges[2].ID)

	seen := map[string]bool{}
	for _, e := range exchanges {
		assert.False(t, seen[e.ID.String()], "duplicate exchange id %s", e.ID)
		seen[e.ID.String()] = true
		assert.Equal(t, StatusCompleted, e.Status)
	}
}

func TestExchangeDecrementsAvailableQuantity(t *testing.T) {
	s := newTestLedger(WithStartingBalance(1000))

	_, err := s.Exchange(context.Background(), "3", 200)
	require.NoError(t, err)

	for _, reward := range s.Rewards() {
		if reward.ID == "3" {
			assert.Equal(t, 2, reward.AvailableQuantity)
		}
	}
}

func TestExchangeBackendFailureMutatesNothing(t *testing.T) {
	backend := simulator.New()
	s := NewService(backend)
	before := capture(s)

	backend.FailNext(simulator.ErrBackendUnavailable)
	_, err := s.Exchange(context.Background(), "1", 50)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInsufficientBalance)
	assert.Equal(t, before, capture(s))
}

func TestRefreshBalanceIsATrivialSuccessPath(t *testing.T) {
	s := newTestLedger()
	before := capture(s)
	require.NoError(t, s.RefreshBalance(context.Background()))
	assert.Equal(t, before, capture(s))
}

func TestSnapshotsAreCopies(t *testing.T) {
	s := newTestLedger()

	rewards := s.Rewards()
	rewards[0].AvailableQuantity = 0
	_, err := s.Exchange(context.Background(), rewards[0].ID, 50)
	assert.NoError(t, err, "mutating the snapshot must not affect the catalog")
}

func TestConcurrentEarnsSum(t *testing.T) {
	s := newTestLedger()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Earn(context.Background(), 10)
		}()
	}
	wg.Wait()

	assert.Equal(t, 300, s.Balance())
	assert.Equal(t, 300, s.TotalEarned())
	assert.False(t, s.Loading())
}

func TestConcurrentExchangesNeverOverspend(t *testing.T) {
	// Ten concurrent 50-token exchanges against a 100 balance: at most two
	// can commit, the rest fail, and the balance never goes negative.
	s := newTestLedger()

	var wg sync.WaitGroup
	var mu sync.Mutex
	completed := 0
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.Exchange(context.Background(), "1", 50); err == nil {
				mu.Lock()
				completed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 2, completed)
	assert.GreaterOrEqual(t, s.Balance(), 0)
	assert.Equal(t, 0, s.Balance())
	assert.Len(t, s.Exchanges(), 2)
}
