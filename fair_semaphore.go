package fairrw

import (
	"sync/atomic"

	"github.com/llxisdsh/fairrw/internal/opt"
)

// FairSemaphore is a counting semaphore that guarantees FIFO (First-In-First-Out) order.
//
// Standard semaphores (like golang.org/x/sync/semaphore) generally optimize for
// throughput and may allow barging (new waiters stealing permits), which can lead
// to starvation. FairSemaphore hands permits to waiters strictly in arrival order:
// a newcomer never takes a permit while anyone is queued, and Release passes the
// permit directly to the head of the queue.
//
// The permit count is bounded by the capacity. Releasing into a full semaphore
// is a programming error and panics.
//
// The zero value is a binary semaphore (capacity 1) with its permit available.
//
// Implementation:
// A TicketLock guards a linked list of waiters; each waiter parks on its own
// runtime semaphore, so wakeups are targeted and never stolen.
type FairSemaphore struct {
	_        noCopy
	mu       TicketLock
	capacity int64
	held     int64
	head     *fairWaiter
	tail     *fairWaiter
}

type fairWaiter struct {
	next *fairWaiter
	sema opt.Sema
	// granted is stored by the releaser before the wakeup and loaded by the
	// waiter after it. The runtime semaphore orders the two, but only the
	// atomic pair is visible to the race detector.
	granted atomic.Bool
}

// NewFairSemaphore creates a semaphore with capacity permits, all available.
//
// panic if capacity <= 0.
func NewFairSemaphore(capacity int64) *FairSemaphore {
	return NewFairSemaphoreN(capacity, capacity)
}

// NewFairSemaphoreN creates a semaphore with capacity permits of which initial
// are available.
//
// panic unless 0 <= initial <= capacity and capacity > 0.
func NewFairSemaphoreN(capacity, initial int64) *FairSemaphore {
	if capacity <= 0 {
		panic("fairrw: semaphore capacity must be positive")
	}
	if initial < 0 || initial > capacity {
		panic("fairrw: initial permits out of range")
	}
	return &FairSemaphore{capacity: capacity, held: capacity - initial}
}

func (s *FairSemaphore) limit() int64 {
	if s.capacity == 0 {
		return 1
	}
	return s.capacity
}

// Acquire takes one permit, blocking until one is handed to the caller.
func (s *FairSemaphore) Acquire() {
	s.mu.Lock()
	if s.head == nil && s.held < s.limit() {
		s.held++
		s.mu.Unlock()
		return
	}
	w := &fairWaiter{}
	if s.tail == nil {
		s.head = w
	} else {
		s.tail.next = w
	}
	s.tail = w
	s.mu.Unlock()
	w.sema.Acquire()
	if !w.granted.Load() {
		panic("fairrw: semaphore waiter woken without a permit")
	}
}

// TryAcquire takes one permit if it can do so without waiting.
// It fails while other goroutines are queued, even if a permit is free.
func (s *FairSemaphore) TryAcquire() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.head != nil || s.held >= s.limit() {
		return false
	}
	s.held++
	return true
}

// Release returns one permit. If goroutines are queued, the permit goes to
// the one that has waited longest.
//
// panic if every permit is already available.
func (s *FairSemaphore) Release() {
	s.mu.Lock()
	if w := s.head; w != nil {
		// held stays unchanged: the permit moves straight to w.
		s.head = w.next
		if s.head == nil {
			s.tail = nil
		}
		s.mu.Unlock()
		w.granted.Store(true)
		w.sema.Release(true)
		return
	}
	if s.held == 0 {
		s.mu.Unlock()
		panic("fairrw: semaphore released beyond capacity")
	}
	s.held--
	s.mu.Unlock()
}

// Available returns the number of permits that can be acquired right now.
func (s *FairSemaphore) Available() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.limit() - s.held
}

// Capacity returns the maximum number of permits.
func (s *FairSemaphore) Capacity() int64 {
	return s.limit()
}
