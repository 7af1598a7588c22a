package pool

import "sync"

// Synchronized guards a Pool with a mutex for embedders that must share one
// pool between goroutines. The wrapped pool must not be used directly afterwards.
type Synchronized[T comparable] struct {
	mu   sync.Mutex
	pool *Pool[T]
}

func NewSynchronized[T comparable](p *Pool[T]) *Synchronized[T] {
	if p == nil {
		p = New[T](0)
	}
	return &Synchronized[T]{pool: p}
}

func (s *Synchronized[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pool.Len()
}

func (s *Synchronized[T]) Claim() (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pool.Claim()
}

func (s *Synchronized[T]) Release(obj T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pool.Release(obj)
}

func (s *Synchronized[T]) Clear() {
	s.mu.Lock()
	s.pool.Clear()
	s.mu.Unlock()
}
