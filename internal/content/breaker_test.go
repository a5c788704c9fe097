package content

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakyStore fails every call with ErrUnavailable while down is set.
type flakyStore struct {
	Store
	down  bool
	calls int
}

func (f *flakyStore) CountClues(ctx context.Context, excluded []int64) (int, error) {
	f.calls++
	if f.down {
		return 0, fmt.Errorf("count: %w", ErrUnavailable)
	}
	return f.Store.CountClues(ctx, excluded)
}

func TestBreakerOpensAfterFailures(t *testing.T) {
	inner := &flakyStore{Store: testFixture(t), down: true}
	cfg := DefaultBreakerConfig("test")
	cfg.MinRequests = 3
	cfg.FailureThreshold = 0.5
	cfg.Timeout = time.Hour
	b := NewBreaker(inner, cfg, zerolog.Nop())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := b.CountClues(ctx, nil)
		require.ErrorIs(t, err, ErrUnavailable)
	}
	assert.Equal(t, gobreaker.StateOpen, b.State())

	// Open breaker fails fast without reaching the store.
	inner.down = false
	_, err := b.CountClues(ctx, nil)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.True(t, errors.Is(err, gobreaker.ErrOpenState))
	assert.Equal(t, 3, inner.calls)
}

func TestBreakerIgnoresNotFound(t *testing.T) {
	cfg := DefaultBreakerConfig("test")
	cfg.MinRequests = 1
	b := NewBreaker(testFixture(t), cfg, zerolog.Nop())
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := b.Country(ctx, 404)
		require.ErrorIs(t, err, ErrNotFound)
	}
	assert.Equal(t, gobreaker.StateClosed, b.State())

	c, err := b.Country(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Alpha", c.Name)

	n, err := b.CountClues(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestBreakerIgnoresCallerCancellation(t *testing.T) {
	s := newSQLiteStore(t)
	require.NoError(t, s.Import(context.Background(), testCountries()))

	cfg := DefaultBreakerConfig("test")
	b := NewBreaker(s, cfg, zerolog.Nop())

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	expired, cancelExpired := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancelExpired()

	for i := 0; i < int(cfg.MinRequests); i++ {
		_, err := b.CountClues(cancelled, nil)
		require.ErrorIs(t, err, context.Canceled)
		_, err = b.Country(expired, 1)
		require.ErrorIs(t, err, context.DeadlineExceeded)
	}
	assert.Equal(t, gobreaker.StateClosed, b.State())

	n, err := b.CountClues(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}
