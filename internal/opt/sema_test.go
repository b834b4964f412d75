package opt

import (
	"sync"
	"testing"
	"time"
	"unsafe"
)

func TestSemaBlocksUntilRelease(t *testing.T) {
	var s Sema

	done := make(chan struct{})
	go func() {
		s.Acquire()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("Acquire returned before Release")
	case <-time.After(50 * time.Millisecond):
	}

	s.Release(false)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Acquire did not return after Release")
	}
}

func TestSemaReleaseBeforeAcquire(t *testing.T) {
	var s Sema
	s.Release(false)

	done := make(chan struct{})
	go func() {
		s.Acquire()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("pending Release was lost")
	}
}

func TestSemaManyWaiters(t *testing.T) {
	var s Sema
	const n = 10
	var wg sync.WaitGroup
	wg.Add(n)
	for range n {
		go func() {
			defer wg.Done()
			s.Acquire()
		}()
	}

	time.Sleep(50 * time.Millisecond)
	for i := range n {
		s.Release(i%2 == 0)
	}

	ch := make(chan struct{})
	go func() {
		wg.Wait()
		close(ch)
	}()
	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("not all waiters woke up")
	}
}

func TestPadSize(t *testing.T) {
	size := unsafe.Sizeof(Pad_{})
	if size != 0 && size != CacheLineSize_ {
		t.Fatalf("Pad_ size = %d, want 0 or %d", size, CacheLineSize_)
	}
}
