// Package resilience guards outbound calls with circuit breakers.
package resilience

import (
	"context"
	"errors"
	"fmt"

	"studycapture/infrastructure/config"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// ErrOpen is returned instead of calling the dependency while its breaker
// is open or its half-open probe budget is spent.
var ErrOpen = errors.New("circuit breaker open")

// StateObserver is told about every breaker state transition.
type StateObserver interface {
	BreakerStateChanged(name string, state gobreaker.State)
}

// Breaker wraps a gobreaker.CircuitBreaker. It never retries; a failed call
// is reported to the caller as-is.
type Breaker struct {
	name string
	cb   *gobreaker.CircuitBreaker
}

// NewBreaker builds a breaker named name. observer may be nil.
func NewBreaker(name string, cfg config.Breaker, logger *zap.Logger, observer StateObserver) *Breaker {
	minRequests := cfg.MinRequests
	ratio := cfg.FailureRatio

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < minRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= ratio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			if observer != nil {
				observer.BreakerStateChanged(name, to)
			}
		},
		// The caller giving up is not a dependency failure.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	})
	if observer != nil {
		observer.BreakerStateChanged(name, gobreaker.StateClosed)
	}

	return &Breaker{name: name, cb: cb}
}

// Name returns the breaker name.
func (b *Breaker) Name() string {
	return b.name
}

// State returns the current breaker state.
func (b *Breaker) State() gobreaker.State {
	return b.cb.State()
}

// Call runs fn through the breaker b. A nil breaker calls fn directly.
func Call[T any](b *Breaker, fn func() (T, error)) (T, error) {
	if b == nil {
		return fn()
	}

	res, err := b.cb.Execute(func() (any, error) {
		return fn()
	})
	if err != nil {
		var zero T
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return zero, fmt.Errorf("%s: %w", b.name, ErrOpen)
		}
		return zero, err
	}
	return res.(T), nil
}
