package fairrw

// Shared is a value that can only be reached through an RWLock window:
// readers see it between RLock and RUnlock, writers change it between Lock
// and Unlock. Several Shared values may share one lock.
//
// Usage:
//
//	v := NewShared(NewRWLock(), 0)
//	v.Read(func(n int) { fmt.Println(n) })
//	v.Update(func(n int) int { return n + 1 })
type Shared[T any] struct {
	_    noCopy
	lock *RWLock
	v    T
}

// NewShared wraps v behind lock. A nil lock gets a fresh WriterPreferred
// RWLock.
func NewShared[T any](lock *RWLock, v T) *Shared[T] {
	if lock == nil {
		lock = NewRWLock()
	}
	return &Shared[T]{lock: lock, v: v}
}

// Lock returns the RWLock guarding the value.
func (s *Shared[T]) Lock() *RWLock {
	return s.lock
}

// Load returns a copy of the value taken under a read lock.
func (s *Shared[T]) Load() T {
	s.lock.RLock()
	v := s.v
	s.lock.RUnlock()
	return v
}

// Read calls fn with the value while holding a read lock. fn runs
// concurrently with other readers and must not modify shared state
// reachable from the value.
func (s *Shared[T]) Read(fn func(v T)) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	fn(s.v)
}

// Store replaces the value under the write lock.
func (s *Shared[T]) Store(v T) {
	s.lock.Lock()
	s.v = v
	s.lock.Unlock()
}

// Update replaces the value with fn(old) under the write lock and returns
// the new value.
func (s *Shared[T]) Update(fn func(old T) T) T {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.v = fn(s.v)
	return s.v
}
