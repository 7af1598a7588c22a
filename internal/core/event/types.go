package event

import "github.com/google/uuid"

// Host-level events raised by the world state.

// NodeLost is raised when the host destroyed a node's payload outside the
// recycle path and its last handle noticed.
type NodeLost struct {
	NodeID   uuid.UUID
	Template string
}

// FollowerOrphaned is raised when a follower's leader handle went stale.
type FollowerOrphaned struct {
	NodeID   uuid.UUID
	Template string
}
