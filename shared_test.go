package fairrw

import (
	"runtime"
	"sync"
	"testing"
)

func TestShared_IncrementIsExact(t *testing.T) {
	forEachPolicy(t, func(t *testing.T, p Policy) {
		v := NewShared(NewRWLock(WithPolicy(p)), 10)
		const writers, cycles = 8, 250
		var wg sync.WaitGroup
		wg.Add(writers)
		for range writers {
			go func() {
				defer wg.Done()
				for range cycles {
					v.Update(func(old int) int {
						// Widen the read-modify-write window.
						runtime.Gosched()
						return old + 1
					})
				}
			}()
		}
		wg.Wait()
		if got, want := v.Load(), 10+writers*cycles; got != want {
			t.Fatalf("value = %d, want %d", got, want)
		}
	})
}

func TestShared_TwoReadersOneWriter(t *testing.T) {
	v := NewShared[int](nil, 0)
	seen := make(chan int, 2)
	var wg sync.WaitGroup
	wg.Add(3)
	for range 2 {
		go func() {
			defer wg.Done()
			v.Read(func(n int) { seen <- n })
		}()
	}
	go func() {
		defer wg.Done()
		v.Update(func(old int) int { return old + 1 })
	}()
	wg.Wait()
	close(seen)

	if got := v.Load(); got != 1 {
		t.Fatalf("value = %d, want 1", got)
	}
	for n := range seen {
		if n != 0 && n != 1 {
			t.Fatalf("reader saw %d, want 0 or 1", n)
		}
	}
}

func TestShared_StoreAndLock(t *testing.T) {
	rw := NewRWLock(WithPolicy(ArrivalOrder))
	v := NewShared(rw, "a")
	if v.Lock() != rw {
		t.Fatal("Lock returned a different RWLock")
	}
	v.Store("b")
	if got := v.Load(); got != "b" {
		t.Fatalf("Load = %q, want b", got)
	}
	if s := rw.Stats(); s.Writes != 1 || s.Reads != 1 {
		t.Fatalf("Reads, Writes = %d, %d, want 1, 1", s.Reads, s.Writes)
	}
}

func TestShared_ReadPanicReleases(t *testing.T) {
	v := NewShared[int](nil, 0)
	mustPanic(t, "panicking reader", func() {
		v.Read(func(int) { panic("boom") })
	})
	v.Store(1)
	if got := v.Lock().Stats().Readers; got != 0 {
		t.Fatalf("Readers = %d after panic, want 0", got)
	}
}

func TestShared_UpdateAfterReaders(t *testing.T) {
	v := NewShared[[]int](nil, []int{1, 2, 3})
	sum := make(chan int, 1)
	inside := make(chan struct{})
	proceed := make(chan struct{})
	go v.Read(func(s []int) {
		close(inside)
		<-proceed
		n := 0
		for _, x := range s {
			n += x
		}
		sum <- n
	})
	<-inside
	done := make(chan struct{})
	go func() {
		defer close(done)
		v.Update(func(s []int) []int {
			s[0] = 100
			return s
		})
	}()
	waitFor(t, "queued writer", func() bool { return v.Lock().Stats().QueuedWriters == 1 })
	close(proceed)
	waitDone(t, "update", done)
	if n := <-sum; n != 6 {
		t.Fatalf("reader sum = %d, want 6", n)
	}
	if got := v.Load()[0]; got != 100 {
		t.Fatalf("v[0] = %d, want 100", got)
	}
}
