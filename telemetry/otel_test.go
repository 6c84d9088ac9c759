package telemetry

import (
	"context"
	"testing"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/coachpo/repool/pool"
)

func newBuf() []byte { return make([]byte, 0, 16) }

func TestInstrumentObservesPoolDepth(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() {
		if err := provider.Shutdown(context.Background()); err != nil {
			t.Errorf("provider shutdown: %v", err)
		}
	}()

	p := pool.New(3, newBuf)
	reg, err := Instrument("buffers", p, WithMeterProvider(provider))
	if err != nil {
		t.Fatalf("Instrument failed: %v", err)
	}
	defer func() {
		if err := reg.Unregister(); err != nil {
			t.Errorf("unregister: %v", err)
		}
	}()

	if got := collectIdle(t, reader); got != 3 {
		t.Fatalf("expected idle gauge 3, got %d", got)
	}

	g, ok := p.TryPull()
	if !ok {
		t.Fatal("expected pull to succeed")
	}
	if got := collectIdle(t, reader); got != 2 {
		t.Fatalf("expected idle gauge 2 while guard live, got %d", got)
	}

	g.Release()
	if got := collectIdle(t, reader); got != 3 {
		t.Fatalf("expected idle gauge 3 after release, got %d", got)
	}
}

func TestInstrumentValidation(t *testing.T) {
	p := pool.New[[]int](0, nil)
	if _, err := Instrument("  ", p); err == nil {
		t.Fatal("expected error for empty name")
	}
	if _, err := Instrument("buffers", nil); err == nil {
		t.Fatal("expected error for nil pool")
	}
}

func collectIdle(t *testing.T, reader *sdkmetric.ManualReader) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "repool.pool.idle_objects" {
				continue
			}
			gauge, ok := m.Data.(metricdata.Gauge[int64])
			if !ok {
				t.Fatalf("unexpected data type %T", m.Data)
			}
			if len(gauge.DataPoints) != 1 {
				t.Fatalf("expected one data point, got %d", len(gauge.DataPoints))
			}
			return gauge.DataPoints[0].Value
		}
	}
	t.Fatal("idle gauge not found")
	return 0
}
