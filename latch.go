package fairrw

import (
	"sync/atomic"

	"github.com/llxisdsh/fairrw/internal/opt"
)

// Latch is a one-shot start signal. Goroutines Wait until somebody calls
// Open; after that, Wait never blocks again. It lets a driver line up all
// of its readers and writers and release them together, so that lock
// contention starts at the same instant for every task.
//
// It is zero-value usable. Size: 8 bytes.
type Latch struct {
	_ noCopy
	// state:
	//   bit 0: open flag
	//   bits 1-31: parked waiters
	state atomic.Uint32
	sema  opt.Sema
}

const (
	latchOpenFlag  = 1
	latchOneWaiter = 1 << 1
)

// Open releases every parked waiter. Calling it again is a no-op.
func (e *Latch) Open() {
	for {
		s := e.state.Load()
		if s&latchOpenFlag != 0 {
			return
		}
		if e.state.CompareAndSwap(s, s|latchOpenFlag) {
			for range s >> 1 {
				e.sema.Release(false)
			}
			return
		}
	}
}

// Wait blocks until Open has been called.
func (e *Latch) Wait() {
	for {
		s := e.state.Load()
		if s&latchOpenFlag != 0 {
			return
		}
		if e.state.CompareAndSwap(s, s+latchOneWaiter) {
			e.sema.Acquire()
			// Pairs with the CAS in Open.
			e.state.Load()
			return
		}
	}
}

// IsOpen reports whether Open has been called.
func (e *Latch) IsOpen() bool {
	return e.state.Load()&latchOpenFlag != 0
}

// Waiters returns the number of goroutines parked in Wait.
func (e *Latch) Waiters() int {
	return int(e.state.Load() >> 1)
}
