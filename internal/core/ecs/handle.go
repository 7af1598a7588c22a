package ecs

// Handle is a non-owning reference to an Entity that validates itself on
// every access by comparing the generation it captured against the
// entity's current one. Copy it freely; no registry or notification is involved.
//
// The zero value is an empty handle.
type Handle struct {
	target     *Entity
	generation uint16
}

// NewHandle binds a handle to e at its current generation. A nil e yields
// an empty handle.
func NewHandle(e *Entity) Handle {
	var h Handle
	h.Set(e)
	return h
}

// EmptyHandle returns a handle that refers to nothing.
func EmptyHandle() Handle {
	return Handle{generation: ExpiredGeneration}
}

// Set rebinds h to e, capturing its generation now.
func (h *Handle) Set(e *Entity) {
	if e == nil {
		h.Expire()
		return
	}
	h.target = e
	h.generation = e.generation
}

// Target returns the entity if it has not been recycled since the handle was
// bound and its payload has not been destroyed. Otherwise it returns nil and
// collapses h to empty, so later checks are a single comparison.
func (h *Handle) Target() *Entity {
	if h.generation == ExpiredGeneration {
		return nil
	}
	e := h.target
	if e == nil || e.payload.Destroyed() || e.generation != h.generation {
		h.Expire()
		return nil
	}
	return e
}

// Valid is shorthand for Target() != nil.
func (h *Handle) Valid() bool {
	return h.Target() != nil
}

// Expire drops the reference regardless of whether it is still valid.
// Payloads holding handles to peers call this from ExpireHandles.
func (h *Handle) Expire() {
	h.target = nil
	h.generation = ExpiredGeneration
}

// Generation returns the captured generation, or ExpiredGeneration when empty.
func (h Handle) Generation() uint16 {
	if h.target == nil {
		return ExpiredGeneration
	}
	return h.generation
}
