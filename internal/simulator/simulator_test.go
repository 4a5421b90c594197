package simulator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTripDefaultSucceeds(t *testing.T) {
	b := New()
	for i := 0; i < 10; i++ {
		require.NoError(t, b.RoundTrip(context.Background()))
	}
}

func TestRoundTripScriptedFailures(t *testing.T) {
	b := New()
	errBoom := errors.New("boom")
	b.FailNext(errBoom)
	b.FailNext(ErrBackendUnavailable)

	err := b.RoundTrip(context.Background())
	assert.ErrorIs(t, err, errBoom)

	err = b.RoundTrip(context.Background())
	assert.ErrorIs(t, err, ErrBackendUnavailable)

	// Queue drained, back to success.
	assert.NoError(t, b.RoundTrip(context.Background()))
}

func TestRoundTripFailRate(t *testing.T) {
	b := New(WithFailRate(1.0), WithSeed(1))
	err := b.RoundTrip(context.Background())
	assert.ErrorIs(t, err, ErrBackendUnavailable)

	b = New(WithFailRate(0.0), WithSeed(1))
	assert.NoError(t, b.RoundTrip(context.Background()))
}

func TestRoundTripLatency(t *testing.T) {
	b := New(WithLatency(20 * time.Millisecond))
	start := time.Now()
	require.NoError(t, b.RoundTrip(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestClockAdvance(t *testing.T) {
	c := NewClock()
	before := c.Now()
	c.Advance(time.Hour)
	assert.True(t, c.Now().Sub(before) >= time.Hour)

	c.Reset()
	assert.WithinDuration(t, time.Now(), c.Now(), time.Second)
}
