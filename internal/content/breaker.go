// internal/content/breaker.go
//
// Circuit-breaker decorator for a Store.
// Repeated storage failures open the breaker; while open, calls fail fast with
// ErrUnavailable instead of waiting on a sick database. ErrNotFound is a normal
// answer and never counts as a failure, nor does a cancelled or timed-out caller.

package content

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
)

// BreakerConfig mirrors the gobreaker knobs exposed through configuration.
type BreakerConfig struct {
	Name             string
	MaxRequests      uint32        // allowed in half-open state
	Interval         time.Duration // closed-state counter reset period
	Timeout          time.Duration // open → half-open delay
	FailureThreshold float64       // failure ratio that trips the breaker
	MinRequests      uint32        // requests needed before evaluating the ratio
}

// DefaultBreakerConfig returns conservative defaults.
func DefaultBreakerConfig(name string) BreakerConfig {
	return BreakerConfig{
		Name:             name,
		MaxRequests:      3,
		Interval:         30 * time.Second,
		Timeout:          15 * time.Second,
		FailureThreshold: 0.6,
		MinRequests:      5,
	}
}

// Breaker wraps a Store with a circuit breaker.
type Breaker struct {
	next Store
	cb   *gobreaker.CircuitBreaker
}

// NewBreaker decorates next.
func NewBreaker(next Store, cfg BreakerConfig, logger zerolog.Logger) *Breaker {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("content store breaker state changed")
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNotFound) || callerGaveUp(err)
		},
	})
	return &Breaker{next: next, cb: cb}
}

// callerGaveUp reports errors caused by the caller's context rather than the
// store. They fail the one operation but say nothing about the store's health.
func callerGaveUp(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// State reports the breaker state (closed, half-open, open).
func (b *Breaker) State() gobreaker.State { return b.cb.State() }

func (b *Breaker) ListCountries(ctx context.Context) ([]Country, error) {
	return guard(b, func() ([]Country, error) { return b.next.ListCountries(ctx) })
}

func (b *Breaker) Country(ctx context.Context, id int64) (Country, error) {
	return guard(b, func() (Country, error) { return b.next.Country(ctx, id) })
}

func (b *Breaker) CountClues(ctx context.Context, excluded []int64) (int, error) {
	return guard(b, func() (int, error) { return b.next.CountClues(ctx, excluded) })
}

func (b *Breaker) ClueAt(ctx context.Context, excluded []int64, index int) (Clue, error) {
	return guard(b, func() (Clue, error) { return b.next.ClueAt(ctx, excluded, index) })
}

func (b *Breaker) Facts(ctx context.Context, countryID int64) ([]string, error) {
	return guard(b, func() ([]string, error) { return b.next.Facts(ctx, countryID) })
}

func (b *Breaker) Summaries(ctx context.Context) ([]CountrySummary, error) {
	return guard(b, func() ([]CountrySummary, error) { return b.next.Summaries(ctx) })
}

// guard runs fn through the breaker and restores its typed result.
func guard[T any](b *Breaker, fn func() (T, error)) (T, error) {
	var zero T
	v, err := b.cb.Execute(func() (interface{}, error) {
		out, err := fn()
		return out, err
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return zero, fmt.Errorf("%s: %w: %w", b.cb.Name(), ErrUnavailable, err)
		}
		return zero, err
	}
	out, _ := v.(T)
	return out, nil
}
