package opt

import (
	_ "unsafe" // for linkname
)

// Sema is a zero-allocation parking slot backed by the runtime semaphore.
// Release before Acquire is remembered, so a wakeup is never lost.
type Sema uint32

func (s *Sema) Acquire() {
	runtime_semacquire((*uint32)(s))
}

// Release wakes one goroutine parked in Acquire. With handoff the woken
// goroutine runs on the releaser's time slice, which keeps FIFO handoff
// chains from being overtaken by running goroutines.
func (s *Sema) Release(handoff bool) {
	runtime_semrelease((*uint32)(s), handoff, 1)
}

//go:linkname runtime_semacquire sync.runtime_Semacquire
func runtime_semacquire(s *uint32)

//go:linkname runtime_semrelease sync.runtime_Semrelease
func runtime_semrelease(s *uint32, handoff bool, skipframes int)
