package registry

import (
	"errors"
	"reflect"
	"sync"
)

// ErrAlreadyRegistered is returned when a service of the same type is already present.
var ErrAlreadyRegistered = errors.New("service already registered")

// Registry maps a Go type to exactly one instance of that type.
// The mutex only guards the map itself; the instances it hands out carry
// their own concurrency contract.
type Registry struct {
	mu      sync.Mutex
	entries map[reflect.Type]any
}

func New() *Registry {
	return &Registry{
		entries: make(map[reflect.Type]any, 16),
	}
}

// Default is the process-wide registry. Created at init, never torn down.
var Default = New()

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Register stores svc under its static type T.
func Register[T any](r *Registry, svc T) error {
	t := typeOf[T]()
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[t]; ok {
		return ErrAlreadyRegistered
	}
	r.entries[t] = svc
	return nil
}

// Unregister drops the instance stored for T, if any.
func Unregister[T any](r *Registry) {
	r.mu.Lock()
	delete(r.entries, typeOf[T]())
	r.mu.Unlock()
}

// Lookup returns the instance stored for T.
func Lookup[T any](r *Registry) (T, bool) {
	r.mu.Lock()
	v, ok := r.entries[typeOf[T]()]
	r.mu.Unlock()
	if !ok {
		var zero T
		return zero, false
	}
	return v.(T), true
}

// LoadOrStore returns the instance stored for T, calling create exactly once
// to build it when absent.
func LoadOrStore[T any](r *Registry, create func() T) T {
	t := typeOf[T]()
	r.mu.Lock()
	defer r.mu.Unlock()
	if v, ok := r.entries[t]; ok {
		return v.(T)
	}
	v := create()
	r.entries[t] = v
	return v
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Reset removes every entry. Intended for tests and shutdown.
func (r *Registry) Reset() {
	r.mu.Lock()
	clear(r.entries)
	r.mu.Unlock()
}
