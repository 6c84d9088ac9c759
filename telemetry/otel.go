// Package telemetry exposes OpenTelemetry instrumentation for pools.
package telemetry

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const scopeName = "github.com/coachpo/repool"

// Sizer reports how many spare values a pool currently holds.
type Sizer interface {
	Len() int
}

// Option configures instrument registration.
type Option func(*settings)

type settings struct {
	provider metric.MeterProvider
}

// WithMeterProvider overrides the global meter provider. When the global
// provider is left in place and no SDK is installed, observations go to the
// noop provider and cost nothing.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(s *settings) {
		if mp != nil {
			s.provider = mp
		}
	}
}

// Instrument registers an asynchronous gauge observing the number of spare
// values held by p, labeled with the pool name. Unregister the returned
// registration when the pool is discarded.
func Instrument(name string, p Sizer, opts ...Option) (metric.Registration, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("telemetry: pool name must be non-empty")
	}
	if p == nil {
		return nil, fmt.Errorf("telemetry: pool must be non-nil")
	}

	cfg := settings{provider: otel.GetMeterProvider()}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	meter := cfg.provider.Meter(scopeName)
	idle, err := meter.Int64ObservableGauge(
		"repool.pool.idle_objects",
		metric.WithDescription("Number of spare values currently held by the pool."),
	)
	if err != nil {
		return nil, fmt.Errorf("create idle gauge: %w", err)
	}

	attrs := metric.WithAttributes(attribute.String("pool", name))
	reg, err := meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		o.ObserveInt64(idle, int64(p.Len()), attrs)
		return nil
	}, idle)
	if err != nil {
		return nil, fmt.Errorf("register callback: %w", err)
	}
	return reg, nil
}
