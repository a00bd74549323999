package geosource

import (
	"context"
	"errors"
	"fmt"
	"time"

	"road-route-server/routing"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// BreakerSettings configures the circuit breaker in front of a Source.
type BreakerSettings struct {
	MaxRequests  uint32        // Requests allowed through while half-open
	Interval     time.Duration // Closed-state window after which counts reset
	Timeout      time.Duration // Open-state duration before probing again
	FailureRatio float64       // Trip when failures/requests reaches this ratio
	MinRequests  uint32        // Requests needed before the ratio is considered
}

// DefaultBreakerSettings returns the settings used when none are configured.
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		MaxRequests:  5,
		Interval:     30 * time.Second,
		Timeout:      60 * time.Second,
		FailureRatio: 0.6,
		MinRequests:  5,
	}
}

// BreakerSource fails fast while its wrapped source keeps failing.
type BreakerSource struct {
	next Source
	cb   *gobreaker.CircuitBreaker
}

func NewBreakerSource(next Source, settings BreakerSettings, logger *zap.Logger) *BreakerSource {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        next.Name(),
		MaxRequests: settings.MaxRequests,
		Interval:    settings.Interval,
		Timeout:     settings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < settings.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= settings.FailureRatio
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Geometry source breaker changed state",
				zap.String("source", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
		// A caller giving up is not a source failure.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	})

	return &BreakerSource{next: next, cb: cb}
}

func (s *BreakerSource) Name() string { return s.next.Name() }

// State reports the breaker state.
func (s *BreakerSource) State() gobreaker.State { return s.cb.State() }

func (s *BreakerSource) FetchGeometries(ctx context.Context) ([]routing.Geometry, error) {
	out, err := s.cb.Execute(func() (interface{}, error) {
		return s.next.FetchGeometries(ctx)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%s source unavailable: %w", s.next.Name(), err)
		}
		return nil, err
	}
	return out.([]routing.Geometry), nil
}
