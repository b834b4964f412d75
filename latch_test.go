package fairrw

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
	"unsafe"
)

func TestLatchSize(t *testing.T) {
	var e Latch
	if size := unsafe.Sizeof(e); size != 8 {
		t.Errorf("Latch size = %d, want 8", size)
	}
}

func TestLatchBasic(t *testing.T) {
	var e Latch

	start := time.Now()
	time.AfterFunc(100*time.Millisecond, e.Open)

	e.Wait()
	if dur := time.Since(start); dur < 100*time.Millisecond {
		t.Errorf("Wait returned too early: %v", dur)
	}
	if !e.IsOpen() {
		t.Error("IsOpen = false after Open")
	}
}

func TestLatchBroadcast(t *testing.T) {
	var e Latch
	var count int32
	var wg sync.WaitGroup
	const n = 10

	wg.Add(n)
	for range n {
		go func() {
			defer wg.Done()
			e.Wait()
			atomic.AddInt32(&count, 1)
		}()
	}

	deadline := time.Now().Add(2 * time.Second)
	for e.Waiters() < n {
		if time.Now().After(deadline) {
			t.Fatalf("Waiters = %d, want %d", e.Waiters(), n)
		}
		time.Sleep(time.Millisecond)
	}
	if c := atomic.LoadInt32(&count); c != 0 {
		t.Errorf("waiters passed early: %d", c)
	}

	e.Open()
	wg.Wait()

	if c := atomic.LoadInt32(&count); c != n {
		t.Errorf("not all waiters woke up: %d / %d", c, n)
	}
}

func TestLatchOpenBeforeWait(t *testing.T) {
	var e Latch
	e.Open()
	e.Open()

	done := make(chan struct{})
	go func() {
		e.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(100 * time.Millisecond):
		t.Errorf("Wait blocked even though Open was called before")
	}
}

func TestLatchOpenOrdersWaiter(t *testing.T) {
	var e Latch
	x := 0
	got := make(chan int, 1)
	go func() {
		e.Wait()
		got <- x
	}()
	for e.Waiters() < 1 {
		time.Sleep(time.Millisecond)
	}
	x = 42
	e.Open()
	select {
	case v := <-got:
		if v != 42 {
			t.Fatalf("waiter saw %d, want 42", v)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("waiter not released")
	}
}
