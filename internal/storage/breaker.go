package storage

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sony/gobreaker/v2"

	apperrors "github.com/utafrali/catalog/pkg/errors"
)

// BreakerConfig holds configuration for the asset store circuit breaker.
type BreakerConfig struct {
	// Name identifies this breaker in metrics and logs.
	Name string

	// MaxRequests is the number of trial calls allowed while half-open.
	MaxRequests uint32

	// Interval is the cyclic period of the closed state for clearing counts.
	Interval time.Duration

	// Timeout is how long the breaker stays open before moving to half-open.
	Timeout time.Duration

	// FailureRatio trips the breaker once this share of calls has failed.
	FailureRatio float64

	// MinRequests is the number of calls needed before the ratio is evaluated.
	MinRequests uint32
}

// DefaultBreakerConfig returns defaults for the asset store breaker.
func DefaultBreakerConfig(name string) BreakerConfig {
	return BreakerConfig{
		Name:         name,
		MaxRequests:  1,
		Interval:     60 * time.Second,
		Timeout:      30 * time.Second,
		FailureRatio: 0.5,
		MinRequests:  5,
	}
}

// BreakerMetrics exposes the breaker state as a gauge.
type BreakerMetrics struct {
	state *prometheus.GaugeVec
}

// NewBreakerMetrics creates and registers the breaker state gauge.
func NewBreakerMetrics(reg prometheus.Registerer) *BreakerMetrics {
	m := &BreakerMetrics{
		state: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "circuit_breaker_state",
				Help: "Current state of the circuit breaker (0=closed, 1=half-open, 2=open)",
			},
			[]string{"name"},
		),
	}
	reg.MustRegister(m.state)
	return m
}

func (m *BreakerMetrics) set(name string, state gobreaker.State) {
	if m == nil {
		return
	}
	m.state.WithLabelValues(name).Set(stateToFloat(state))
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// Breaker wraps a Storage with a circuit breaker. Every failure, including a
// call rejected by the open breaker, surfaces as an upstream error.
type Breaker struct {
	next    Storage
	breaker *gobreaker.CircuitBreaker[Asset]
}

// NewBreaker wraps next. metrics may be nil.
func NewBreaker(next Storage, cfg BreakerConfig, metrics *BreakerMetrics, logger *slog.Logger) *Breaker {
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
			metrics.set(name, to)
		},
		// A canceled request says nothing about the store's health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	}
	metrics.set(cfg.Name, gobreaker.StateClosed)

	return &Breaker{
		next:    next,
		breaker: gobreaker.NewCircuitBreaker[Asset](settings),
	}
}

func (b *Breaker) Upload(ctx context.Context, obj Object) (Asset, error) {
	asset, err := b.breaker.Execute(func() (Asset, error) {
		return b.next.Upload(ctx, obj)
	})
	if err != nil {
		return Asset{}, upstream("Image upload failed", err)
	}
	return asset, nil
}

func (b *Breaker) Delete(ctx context.Context, assetID string) error {
	_, err := b.breaker.Execute(func() (Asset, error) {
		return Asset{}, b.next.Delete(ctx, assetID)
	})
	if err != nil {
		return upstream("Image delete failed", err)
	}
	return nil
}

// State returns the current breaker state.
func (b *Breaker) State() gobreaker.State {
	return b.breaker.State()
}

func upstream(msg string, err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return apperrors.Upstream("Asset storage is unavailable", err)
	}
	return apperrors.Upstream(msg, err)
}
