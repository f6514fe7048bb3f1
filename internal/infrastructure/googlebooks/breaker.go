package googlebooks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/avatarctic/bookshelf/internal/core/domain/catalog"
	"github.com/avatarctic/bookshelf/internal/core/ports"
)

const breakerName = "googlebooks"

// BreakerObserver receives circuit breaker state and outcome updates.
type BreakerObserver interface {
	SetState(name string, state float64)
	Transition(name, from, to string)
	Request(name, result string)
}

// BreakerSettings tunes the circuit breaker. Zero values take the defaults.
type BreakerSettings struct {
	MaxRequests  uint32
	Interval     time.Duration
	Timeout      time.Duration
	MinRequests  uint32
	FailureRatio float64
}

// CircuitBreakerClient wraps a CatalogClient so that a failing catalog is
// short-circuited instead of holding every request for the full timeout.
type CircuitBreakerClient struct {
	inner    ports.CatalogClient
	cb       *gobreaker.CircuitBreaker[interface{}]
	observer BreakerObserver
	logger   *logrus.Logger
}

// NewCircuitBreakerClient opens the circuit after 60% failures over at
// least 10 requests in a one minute window and probes again after two
// minutes with up to 3 requests.
func NewCircuitBreakerClient(inner ports.CatalogClient, s BreakerSettings, observer BreakerObserver, logger *logrus.Logger) *CircuitBreakerClient {
	if s.MaxRequests == 0 {
		s.MaxRequests = 3
	}
	if s.Interval <= 0 {
		s.Interval = time.Minute
	}
	if s.Timeout <= 0 {
		s.Timeout = 2 * time.Minute
	}
	if s.MinRequests == 0 {
		s.MinRequests = 10
	}
	if s.FailureRatio <= 0 {
		s.FailureRatio = 0.6
	}

	c := &CircuitBreakerClient{inner: inner, observer: observer, logger: logger}
	if observer != nil {
		observer.SetState(breakerName, stateToFloat(gobreaker.StateClosed))
	}

	c.cb = gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: s.MaxRequests,
		Interval:    s.Interval,
		Timeout:     s.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < s.MinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			trip := ratio >= s.FailureRatio
			if trip && logger != nil {
				logger.WithFields(logrus.Fields{
					"failures":     counts.TotalFailures,
					"failure_rate": ratio * 100,
				}).Warn("googlebooks: opening circuit")
			}
			return trip
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if logger != nil {
				logger.WithFields(logrus.Fields{"from": stateToString(from), "to": stateToString(to)}).Info("googlebooks: circuit state transition")
			}
			if observer != nil {
				observer.SetState(name, stateToFloat(to))
				observer.Transition(name, stateToString(from), stateToString(to))
			}
		},
		// A miss is a healthy answer.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, catalog.ErrNotFound)
		},
		// Requests abandoned by the caller are not counted at all.
		IsExcluded: func(err error) bool {
			return errors.Is(err, context.Canceled)
		},
	})
	return c
}

var _ ports.CatalogClient = (*CircuitBreakerClient)(nil)

func (c *CircuitBreakerClient) Search(ctx context.Context, query string, maxResults int) ([]catalog.Item, error) {
	res, err := c.execute(func() (interface{}, error) {
		return c.inner.Search(ctx, query, maxResults)
	})
	if err != nil {
		return nil, err
	}
	return castResult[[]catalog.Item](res)
}

func (c *CircuitBreakerClient) LookupBook(ctx context.Context, bookID string) (*catalog.Item, error) {
	res, err := c.execute(func() (interface{}, error) {
		return c.inner.LookupBook(ctx, bookID)
	})
	if err != nil {
		return nil, err
	}
	return castResult[*catalog.Item](res)
}

// State returns the current breaker state as a string.
func (c *CircuitBreakerClient) State() string {
	return stateToString(c.cb.State())
}

// IsOpen reports whether requests are currently being rejected.
func (c *CircuitBreakerClient) IsOpen() bool {
	return c.cb.State() == gobreaker.StateOpen
}

func (c *CircuitBreakerClient) execute(fn func() (interface{}, error)) (interface{}, error) {
	res, err := c.cb.Execute(fn)
	if c.observer != nil {
		switch {
		case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
			c.observer.Request(breakerName, "rejected")
		case err != nil && !errors.Is(err, catalog.ErrNotFound):
			c.observer.Request(breakerName, "failure")
		default:
			c.observer.Request(breakerName, "success")
		}
	}
	return res, err
}

func castResult[T any](res interface{}) (T, error) {
	v, ok := res.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("googlebooks: unexpected result type %T", res)
	}
	return v, nil
}

func stateToFloat(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

func stateToString(s gobreaker.State) string {
	switch s {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
