package generation

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"
)

// Gate is a fixed-size slot semaphore bounding concurrent generation
// calls. The generation endpoint is the scarce, externally throttled
// resource in a batch, so one Gate is shared across all sessions while
// file-level workers stay more numerous.
type Gate struct {
	slots chan struct{}

	totalCalls    int64
	totalWaitNs   int64
	currentlyBusy int32
}

// NewGate creates a gate with n slots. n must be positive.
func NewGate(n int) *Gate {
	if n < 1 {
		n = 1
	}
	return &Gate{slots: make(chan struct{}, n)}
}

// Acquire blocks until a slot is free or the context is cancelled.
func (g *Gate) Acquire(ctx context.Context) error {
	start := time.Now()
	select {
	case g.slots <- struct{}{}:
		atomic.AddInt64(&g.totalWaitNs, int64(time.Since(start)))
		atomic.AddInt32(&g.currentlyBusy, 1)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release frees a previously acquired slot.
func (g *Gate) Release() {
	select {
	case <-g.slots:
		atomic.AddInt32(&g.currentlyBusy, -1)
		atomic.AddInt64(&g.totalCalls, 1)
	default:
		// Releasing without holding a slot is a programming error;
		// absorbing it beats corrupting the semaphore.
	}
}

// Metrics reports gate activity.
type GateMetrics struct {
	MaxSlots    int
	ActiveSlots int
	TotalCalls  int64
	TotalWait   time.Duration
}

// Metrics returns a snapshot of gate counters.
func (g *Gate) Metrics() GateMetrics {
	return GateMetrics{
		MaxSlots:    cap(g.slots),
		ActiveSlots: int(atomic.LoadInt32(&g.currentlyBusy)),
		TotalCalls:  atomic.LoadInt64(&g.totalCalls),
		TotalWait:   time.Duration(atomic.LoadInt64(&g.totalWaitNs)),
	}
}

// String renders a human-readable summary.
func (m GateMetrics) String() string {
	avg := time.Duration(0)
	if m.TotalCalls > 0 {
		avg = m.TotalWait / time.Duration(m.TotalCalls)
	}
	return fmt.Sprintf("slots=%d/%d, calls=%d, avg_wait=%v", m.ActiveSlots, m.MaxSlots, m.TotalCalls, avg)
}

// gatedGenerator wraps a Generator with slot acquisition around every
// call. It implements Generator so it can be injected transparently.
type gatedGenerator struct {
	inner Generator
	gate  *Gate
}

// Compile-time assertion that gatedGenerator implements Generator.
var _ Generator = (*gatedGenerator)(nil)

// Gated returns g fronted by the gate. A nil gate returns g unchanged.
func Gated(g Generator, gate *Gate) Generator {
	if gate == nil {
		return g
	}
	return &gatedGenerator{inner: g, gate: gate}
}

func (g *gatedGenerator) Generate(ctx context.Context, req Request) (string, error) {
	if err := g.gate.Acquire(ctx); err != nil {
		return "", &TransportError{Provider: g.inner.Name(), Err: err}
	}
	defer g.gate.Release()
	return g.inner.Generate(ctx, req)
}

func (g *gatedGenerator) Name() string {
	return g.inner.Name()
}
