package world

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/l1jgo/poold/internal/core/ecs"
)

// Node is the host object behind a pooled entity: a positioned scene node.
// The ID names the object itself and survives reuse; the generation of the
// wrapping entity is what distinguishes one spawn from the next.
// Accessed only from the game loop goroutine; no locks needed.
type Node struct {
	ID       uuid.UUID
	Template string
	Name     string
	X        int32
	Y        int32
	Age      int // ticks since last spawn

	// Leader is set for followers. It is expired whenever this node is
	// recycled so that dead followers never pin their leaders.
	Leader ecs.Handle

	active    bool
	destroyed bool
}

// NewNode builds an inactive node for template.
func NewNode(template string) *Node {
	return &Node{
		ID:       uuid.New(),
		Template: template,
		Leader:   ecs.EmptyHandle(),
	}
}

func (n *Node) Activate()       { n.active = true }
func (n *Node) Deactivate()     { n.active = false }
func (n *Node) Destroyed() bool { return n.destroyed }
func (n *Node) Active() bool    { return n.active && !n.destroyed }

// Destroy is the host tearing the node down outside the pool's control.
// Every handle to it goes dead, whatever its generation.
func (n *Node) Destroy() {
	n.active = false
	n.destroyed = true
	n.Leader.Expire()
}

// ExpireHandles drops the leader link on teardown.
func (n *Node) ExpireHandles() {
	n.Leader.Expire()
}

// Reset prepares a claimed node for its next life.
func (n *Node) Reset(name string, x, y int32) {
	n.Name = name
	n.X = x
	n.Y = y
	n.Age = 0
	n.Leader.Expire()
}

func (n *Node) String() string {
	return fmt.Sprintf("%s %q (%s)", n.Template, n.Name, n.ID)
}

// NodeOf returns the Node wrapped by e, or nil if e wraps something else.
func NodeOf(e *ecs.Entity) *Node {
	if e == nil {
		return nil
	}
	n, _ := e.Payload().(*Node)
	return n
}
