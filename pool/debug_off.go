//go:build !debug

package pool

type debugState struct{}

func newDebugState(string) *debugState { return nil }

func (d *debugState) newLease() string { return "" }

func (d *debugState) recordAcquire(string, any) {}

func (d *debugState) recordRelease(string) {}

func (d *debugState) activeStacks() []string { return nil }

func (d *debugState) flagDoubleRelease(string, string) {}
