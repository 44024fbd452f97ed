package server

import (
	"sync"
	"sync/atomic"
)

// snapshot holds an immutable value that readers load without locking.
// Writers serialize on mu and swap in a new value.
type snapshot[T any] struct {
	mu sync.Mutex
	p  atomic.Pointer[T]
}

func newSnapshot[T any](v T) *snapshot[T] {
	s := &snapshot[T]{}
	s.p.Store(&v)
	return s
}

// Load returns the current value. Callers must not mutate shared
// references inside it.
func (s *snapshot[T]) Load() T {
	return *s.p.Load()
}

// Update derives a new value from the current one. When fn fails the
// current value is kept.
func (s *snapshot[T]) Update(fn func(T) (T, error)) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := fn(*s.p.Load())
	if err != nil {
		return *s.p.Load(), err
	}
	s.p.Store(&next)
	return next, nil
}
