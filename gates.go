package fairrw

import (
	"sync/atomic"
)

// Holder identifies who owns an RWLock's exclusive token.
type Holder uint32

const (
	HolderNone Holder = iota
	HolderReaders
	HolderWriter
)

func (h Holder) String() string {
	switch h {
	case HolderNone:
		return "none"
	case HolderReaders:
		return "readers"
	case HolderWriter:
		return "writer"
	default:
		return "unknown"
	}
}

// token is an exclusive access token: a binary FairSemaphore that also
// records which side took it, so a release by the wrong side is caught
// instead of silently opening the lock.
type token struct {
	sem    FairSemaphore
	holder atomic.Uint32
}

func (t *token) acquire(h Holder) {
	t.sem.Acquire()
	t.holder.Store(uint32(h))
}

func (t *token) release(h Holder) {
	if !t.holder.CompareAndSwap(uint32(h), uint32(HolderNone)) {
		panic("fairrw: " + h.String() + " released a token held by " + t.current().String())
	}
	t.sem.Release()
}

func (t *token) current() Holder {
	return Holder(t.holder.Load())
}

// counter is an integer that can only change inside its own gate.
// n is stored atomically under the gate and may be loaded without it.
type counter struct {
	gate FairSemaphore
	n    atomic.Int64
}

// apply adds delta and calls fn with the new value before the gate is
// released, so transitions (0→1, 1→0) are observed by exactly one caller.
func (c *counter) apply(delta int64, underflow string, fn func(n int64)) {
	c.gate.Acquire()
	n := c.n.Load() + delta
	if n < 0 {
		c.gate.Release()
		panic(underflow)
	}
	c.n.Store(n)
	if fn != nil {
		fn(n)
	}
	c.gate.Release()
}

func (c *counter) load() int64 {
	return c.n.Load()
}
