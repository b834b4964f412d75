// Package fairrw provides a fair readers-writers lock and the FIFO
// primitives it is built from.
package fairrw

import (
	"sync"
	"sync/atomic"

	"github.com/llxisdsh/fairrw/internal/opt"
)

// RWLock is a blocking readers-writers lock that does not starve writers.
//
// Any number of readers may hold the lock together; a writer holds it alone.
// Unlike sync.RWMutex the ordering between the two sides is an explicit
// Policy, and every gate inside it serves waiters in FIFO order.
//
// Structure:
//   - resource: exclusive token held by the active writer, or by the
//     first reader of a read group on behalf of the whole group until the
//     last reader of that group leaves.
//   - entry: turnstile every reader passes before registering. Under
//     WriterPreferred the first announced writer closes it and the last
//     one reopens it; under ArrivalOrder every task passes through it, so
//     it doubles as the arrival queue.
//   - readers / writers: counters of registered readers and of writers
//     that announced intent and have not yet unlocked. Each can only change
//     inside its own gate.
//
// Misuse (RUnlock without RLock, Unlock without Lock, unlocking the wrong
// side) panics. Acquisition is not reentrant: a reader that calls RLock
// again while a writer waits deadlocks under WriterPreferred.
//
// The zero value is an unlocked WriterPreferred lock.
type RWLock struct {
	_      noCopy
	policy Policy

	entry   FairSemaphore
	readers counter
	reads   atomic.Uint64

	_ opt.Pad_

	resource token
	writers  counter
	queued   atomic.Int64
	writes   atomic.Uint64
}

// NewRWLock creates an unlocked RWLock.
//
// panic if the policy is unknown.
func NewRWLock(options ...func(*RWLockConfig)) *RWLock {
	var cfg RWLockConfig
	for _, o := range options {
		o(&cfg)
	}
	switch cfg.policy {
	case WriterPreferred, ArrivalOrder:
	default:
		panic("fairrw: unknown policy " + cfg.policy.String())
	}
	return &RWLock{policy: cfg.policy}
}

// Policy returns the ordering policy of the lock.
func (l *RWLock) Policy() Policy {
	return l.policy
}

// RLock locks l for reading.
// It blocks while a writer holds the lock and, depending on the policy,
// while writers are waiting.
func (l *RWLock) RLock() {
	l.entry.Acquire()
	l.readers.apply(1, "", func(n int64) {
		if n == 1 {
			l.resource.acquire(HolderReaders)
		}
	})
	l.entry.Release()
	l.reads.Add(1)
}

// RUnlock undoes a single RLock call. The last reader of a group hands
// the lock to the next writer.
func (l *RWLock) RUnlock() {
	l.readers.apply(-1, "fairrw: RUnlock of unlocked RWLock", func(n int64) {
		if n == 0 {
			l.resource.release(HolderReaders)
		}
	})
}

// Lock locks l for writing. It blocks until no reader group and no other
// writer holds the lock.
func (l *RWLock) Lock() {
	l.queued.Add(1)
	if l.policy == ArrivalOrder {
		l.entry.Acquire()
		l.writers.apply(1, "", nil)
		l.resource.acquire(HolderWriter)
		l.entry.Release()
	} else {
		l.writers.apply(1, "", func(n int64) {
			if n == 1 {
				// First announced writer: stop new read groups from forming.
				l.entry.Acquire()
			}
		})
		l.resource.acquire(HolderWriter)
	}
	l.queued.Add(-1)
	l.writes.Add(1)
}

// Unlock unlocks l for writing. The last announced writer reopens the
// read path.
func (l *RWLock) Unlock() {
	if l.resource.current() == HolderNone {
		panic("fairrw: Unlock of unlocked RWLock")
	}
	l.resource.release(HolderWriter)
	l.writers.apply(-1, "fairrw: Unlock without announced writer", func(n int64) {
		if n == 0 && l.policy == WriterPreferred {
			l.entry.Release()
		}
	})
}

// RLocker returns a sync.Locker whose Lock and Unlock call RLock and
// RUnlock.
func (l *RWLock) RLocker() sync.Locker {
	return (*rlocker)(l)
}

type rlocker RWLock

func (r *rlocker) Lock()   { (*RWLock)(r).RLock() }
func (r *rlocker) Unlock() { (*RWLock)(r).RUnlock() }

// Stats is a point-in-time view of an RWLock. Fields are loaded one at a
// time, so a snapshot taken under contention may mix two instants.
type Stats struct {
	// Readers is the number of registered readers.
	Readers int64
	// PendingWriters counts writers between the start of Lock and the end
	// of Unlock, including the active one.
	PendingWriters int64
	// QueuedWriters counts writers inside Lock that do not hold the lock yet.
	QueuedWriters int64
	// Holder is the side owning the exclusive token.
	Holder Holder
	// Reads and Writes count completed RLock and Lock calls.
	Reads  uint64
	Writes uint64
}

// Stats returns the current counters of l without blocking.
func (l *RWLock) Stats() Stats {
	return Stats{
		Readers:        l.readers.load(),
		PendingWriters: l.writers.load(),
		QueuedWriters:  l.queued.Load(),
		Holder:         l.resource.current(),
		Reads:          l.reads.Load(),
		Writes:         l.writes.Load(),
	}
}
