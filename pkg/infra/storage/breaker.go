package storage

import (
	"fmt"
	"time"

	"github.com/sony/gobreaker"
)

// Breaker shields the API from a misbehaving store: once redis fails
// repeatedly, calls are rejected immediately until the timeout elapses.
type Breaker interface {
	Execute(fn func() error) error
}

type breakerWrapper struct {
	breaker *gobreaker.CircuitBreaker
}

func NewBreaker(name string, timeout time.Duration, maxFailures uint32) Breaker {
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
	}
	return &breakerWrapper{
		breaker: gobreaker.NewCircuitBreaker(settings),
	}
}

func (b *breakerWrapper) Execute(fn func() error) error {
	_, err := b.breaker.Execute(func() (interface{}, error) {
		if err := fn(); err != nil {
			return nil, err
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("breaker (%s): %w", b.breaker.Name(), err)
	}
	return nil
}

// noopBreaker is used in tests where breaker state is irrelevant.
type noopBreaker struct{}

func (noopBreaker) Execute(fn func() error) error { return fn() }
