//go:build debug

package pool

import (
	"fmt"
	"runtime/debug"
	"sync"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
)

// debugState tracks outstanding leases with their acquisition stacks and a
// JSON snapshot of the pulled value. It is compiled in only under the debug
// build tag; release builds carry the no-op variant in debug_off.go.
type debugState struct {
	name   string
	mu     sync.Mutex
	stacks map[string]string
}

func newDebugState(name string) *debugState {
	return &debugState{
		name:   name,
		stacks: make(map[string]string),
	}
}

func (d *debugState) newLease() string {
	if d == nil {
		return ""
	}
	return uuid.NewString()
}

func (d *debugState) recordAcquire(lease string, value any) {
	if d == nil || lease == "" {
		return
	}
	snapshot := "<unserializable>"
	if raw, err := json.Marshal(value); err == nil {
		snapshot = string(raw)
	}
	record := fmt.Sprintf("lease %s value %s\n%s", lease, snapshot, debug.Stack())
	d.mu.Lock()
	d.stacks[lease] = record
	d.mu.Unlock()
}

func (d *debugState) recordRelease(lease string) {
	if d == nil || lease == "" {
		return
	}
	d.mu.Lock()
	delete(d.stacks, lease)
	d.mu.Unlock()
}

func (d *debugState) activeStacks() []string {
	if d == nil {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.stacks) == 0 {
		return nil
	}
	out := make([]string, 0, len(d.stacks))
	for _, record := range d.stacks {
		out = append(out, record)
	}
	return out
}

func (d *debugState) flagDoubleRelease(pool, lease string) {
	panic(fmt.Sprintf("pool %s: double release detected for lease %s\n%s", pool, lease, debug.Stack()))
}
