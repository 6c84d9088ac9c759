package manager

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/coachpo/repool/config"
	"github.com/coachpo/repool/errs"
	"github.com/coachpo/repool/observability"
)

type payload struct {
	data []byte
}

func newPayload() any {
	return &payload{data: make([]byte, 0, 64)}
}

func TestNewManager(t *testing.T) {
	m := New()
	if m == nil {
		t.Fatal("expected non-nil manager")
	}
	if m.pools == nil {
		t.Error("expected pools map to be initialized")
	}
}

func TestRegisterValidation(t *testing.T) {
	m := New()

	if err := m.Register("  ", 1, newPayload); !errs.IsCode(err, errs.CodeInvalid) {
		t.Fatalf("expected invalid_request for empty name, got %v", err)
	}
	if err := m.Register("events", 0, newPayload); !errs.IsCode(err, errs.CodeInvalid) {
		t.Fatalf("expected invalid_request for zero capacity, got %v", err)
	}
	if err := m.Register("events", -1, newPayload); !errs.IsCode(err, errs.CodeInvalid) {
		t.Fatalf("expected invalid_request for negative capacity, got %v", err)
	}
	if err := m.Register("events", 1, nil); !errs.IsCode(err, errs.CodeInvalid) {
		t.Fatalf("expected invalid_request for nil factory, got %v", err)
	}

	if err := m.Register("events", 1, newPayload); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := m.Register("events", 1, newPayload); !errs.IsCode(err, errs.CodeConflict) {
		t.Fatalf("expected conflict for duplicate registration, got %v", err)
	}
}

func TestPullAndRelease(t *testing.T) {
	m := New()
	if err := m.Register("events", 2, newPayload); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	lease, err := m.Pull("events")
	if err != nil {
		t.Fatalf("Pull failed: %v", err)
	}
	if _, ok := lease.Value().(*payload); !ok {
		t.Fatalf("expected *payload value, got %T", lease.Value())
	}
	if m.Active() != 1 {
		t.Fatalf("expected one active lease, got %d", m.Active())
	}

	lease.Release()
	if m.Active() != 0 {
		t.Fatalf("expected no active leases after release, got %d", m.Active())
	}

	lease.Release() // second release settles nothing further
	if m.Active() != 0 {
		t.Fatalf("expected accounting unchanged after repeated release, got %d", m.Active())
	}
}

func TestPullUnknownPool(t *testing.T) {
	m := New()
	_, err := m.Pull("missing")
	if !errors.Is(err, ErrNotRegistered) {
		t.Fatalf("expected ErrNotRegistered, got %v", err)
	}
	if !errs.IsCode(err, errs.CodeNotFound) {
		t.Fatalf("expected not_found code, got %v", err)
	}
}

func TestTryPullReportsSaturation(t *testing.T) {
	m := New()
	if err := m.Register("events", 1, newPayload); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	first, ok, err := m.TryPull("events")
	if err != nil || !ok {
		t.Fatalf("expected successful try-pull, ok=%v err=%v", ok, err)
	}
	if _, ok, err := m.TryPull("events"); err != nil || ok {
		t.Fatalf("expected saturation, ok=%v err=%v", ok, err)
	}

	first.Release()
	if _, ok, err := m.TryPull("events"); err != nil || !ok {
		t.Fatalf("expected released value to be available, ok=%v err=%v", ok, err)
	}
}

func TestPullFallsBackWhenSaturated(t *testing.T) {
	m := New()
	if err := m.Register("events", 1, newPayload); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	first, err := m.Pull("events")
	if err != nil {
		t.Fatalf("first pull: %v", err)
	}
	second, err := m.Pull("events")
	if err != nil {
		t.Fatalf("saturated pull should fall back to the factory: %v", err)
	}
	if first.Value() == second.Value() {
		t.Fatal("expected distinct values for simultaneous leases")
	}

	first.Release()
	second.Release()

	// Both values now live in the pool.
	a, _, _ := m.TryPull("events")
	b, _, _ := m.TryPull("events")
	if a == nil || b == nil {
		t.Fatal("expected pool to have grown to two values")
	}
	a.Release()
	b.Release()
}

func TestLeaseDetach(t *testing.T) {
	m := New()
	if err := m.Register("events", 1, newPayload); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	lease, err := m.Pull("events")
	if err != nil {
		t.Fatalf("Pull failed: %v", err)
	}
	value := lease.Detach()
	if _, ok := value.(*payload); !ok {
		t.Fatalf("expected detached *payload, got %T", value)
	}
	if m.Active() != 0 {
		t.Fatalf("expected detach to settle the lease, got %d active", m.Active())
	}

	if _, ok, _ := m.TryPull("events"); ok {
		t.Fatal("detached value must not remain in the pool")
	}
}

func TestApplyConfig(t *testing.T) {
	m := New()
	cfg := config.Config{Pools: []config.Pool{
		{Name: "events", Capacity: 4},
		{Name: "buffers", Capacity: 2},
	}}
	factories := map[string]func() any{
		"events":  newPayload,
		"buffers": newPayload,
	}

	if err := m.ApplyConfig(cfg, factories); err != nil {
		t.Fatalf("ApplyConfig failed: %v", err)
	}
	for _, name := range []string{"events", "buffers"} {
		lease, err := m.Pull(name)
		if err != nil {
			t.Fatalf("Pull(%s) failed: %v", name, err)
		}
		lease.Release()
	}
}

func TestApplyConfigMissingFactory(t *testing.T) {
	m := New()
	cfg := config.Config{Pools: []config.Pool{{Name: "events", Capacity: 4}}}
	err := m.ApplyConfig(cfg, nil)
	if !errs.IsCode(err, errs.CodeInvalid) {
		t.Fatalf("expected invalid_request, got %v", err)
	}
}

func TestShutdownWaitsForLeases(t *testing.T) {
	m := New()
	if err := m.Register("events", 1, newPayload); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	lease, err := m.Pull("events")
	if err != nil {
		t.Fatalf("Pull failed: %v", err)
	}
	lease.Release()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := m.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}

	if err := m.Register("late", 1, newPayload); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed after shutdown, got %v", err)
	}
	if _, err := m.Pull("events"); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed after shutdown, got %v", err)
	}
}

func TestShutdownTimeoutLogsOutstandingLeases(t *testing.T) {
	var buf bytes.Buffer
	observability.SetLogger(observability.NewWriterLogger(&buf))
	defer observability.SetLogger(nil)

	m := New()
	if err := m.Register("events", 1, newPayload); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	lease, err := m.Pull("events")
	if err != nil {
		t.Fatalf("Pull failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := m.Shutdown(ctx); err == nil {
		t.Fatal("expected shutdown timeout error")
	}

	out := buf.String()
	if !strings.Contains(out, "shutdown timed out") {
		t.Fatalf("expected timeout log entry, got %q", out)
	}
	if !strings.Contains(out, "leak candidate") || !strings.Contains(out, lease.ID()) {
		t.Fatalf("expected leak candidate entry naming lease %s, got %q", lease.ID(), out)
	}
	if !strings.Contains(out, "pool=events") {
		t.Fatalf("expected pool name in leak entry, got %q", out)
	}

	lease.Release()
}
