package ecs

// Lifecycle events published on the world's bus. They carry handles, not raw
// entities, since they are read one tick later.

type EntitySpawned struct {
	Template string
	Handle   Handle
	Reused   bool // claimed from the pool rather than built by the factory
}

type EntityRecycled struct {
	Template   string
	Generation uint16 // generation after the advance
	Pooled     bool   // false when the entity was abandoned instead of pooled
}

type GenerationWrapped struct {
	Template string
	From     uint16
	To       uint16
}
