package remote

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/sony/gobreaker"

	"dorm-reservation-backend/config"
)

func newBreaker(name string, cfg config.BreakerConfig) *gobreaker.CircuitBreaker {
	threshold := cfg.FailureThreshold
	if threshold == 0 {
		threshold = 1
	}
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.HalfOpenMaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Printf("CircuitBreaker %s: %s -> %s", name, from, to)
		},
		IsSuccessful: countsAsSuccess,
	})
}

// countsAsSuccess keeps client errors (4xx) from tripping the breaker: the
// service answered, it just said no.
func countsAsSuccess(err error) bool {
	if err == nil {
		return true
	}
	var se *StatusError
	return errors.As(err, &se) && se.Code < http.StatusInternalServerError
}

// execute runs fn through cb. A short-circuited call returns ErrServiceUnavailable.
func execute(cb *gobreaker.CircuitBreaker, fn func() (any, error)) (any, error) {
	out, err := cb.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %s: %v", ErrServiceUnavailable, cb.Name(), err)
	}
	return out, err
}
