// Package pool implements a contribution pool: a LIFO free list that only
// holds what callers explicitly give back. It never constructs, resets or
// destroys the objects it stores.
//
// Pools are not safe for concurrent use. Callers that share a pool across
// goroutines must serialize access themselves or wrap it in Synchronized.
package pool

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/l1jgo/poold/internal/core/registry"
)

// ErrNilRelease is returned when a nil object is handed back to a pool.
var ErrNilRelease = errors.New("pool: release of nil object")

// DoubleReleaseError reports an object released while it already sits in the
// free list. Only raised when the diagnostic check is compiled in.
type DoubleReleaseError struct {
	Object any
}

func (e *DoubleReleaseError) Error() string {
	return fmt.Sprintf("pool: object (%v) has already been released (is it being released twice?)", e.Object)
}

// ObjectPool is the contract shared by Pool and Synchronized.
type ObjectPool[T comparable] interface {
	Len() int
	Claim() (T, bool)
	Release(obj T) error
	Clear()
}

// Pool is a LIFO free list of released instances of T.
type Pool[T comparable] struct {
	free []T
}

// New creates an empty pool with room for capacity items before growing.
func New[T comparable](capacity int) *Pool[T] {
	return &Pool[T]{
		free: make([]T, 0, capacity),
	}
}

// Len returns the number of items waiting for reuse.
func (p *Pool[T]) Len() int {
	return len(p.free)
}

// Claim pops the most recently released item. The item is returned as-is;
// resetting it before reuse is the caller's job. Callers must not depend on
// which instance they receive.
func (p *Pool[T]) Claim() (T, bool) {
	n := len(p.free)
	if n == 0 {
		var zero T
		return zero, false
	}
	obj := p.free[n-1]
	var zero T
	p.free[n-1] = zero
	p.free = p.free[:n-1]
	return obj, true
}

// Release pushes obj onto the free list. With diagnostics compiled in, an
// object already present fails with *DoubleReleaseError and is not stored;
// release builds skip the scan and store the duplicate.
func (p *Pool[T]) Release(obj T) error {
	if isNil(obj) {
		return ErrNilRelease
	}
	if diagnostics {
		for _, o := range p.free {
			if o == obj {
				return &DoubleReleaseError{Object: obj}
			}
		}
	}
	p.free = append(p.free, obj)
	return nil
}

// Clear drops every stored item. Nothing is done to the items themselves.
func (p *Pool[T]) Clear() {
	clear(p.free)
	p.free = p.free[:0]
}

// Shared returns the process-wide pool for T, creating it on first use.
// It is never destroyed. Claim and Release on it carry the same
// single-goroutine contract as any other Pool.
func Shared[T comparable]() *Pool[T] {
	return registry.LoadOrStore(registry.Default, func() *Pool[T] {
		return New[T](0)
	})
}

func isNil[T comparable](obj T) bool {
	var zero T
	if obj != zero {
		return false
	}
	switch reflect.TypeOf(&zero).Elem().Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Chan, reflect.UnsafePointer:
		return true
	}
	return false
}
