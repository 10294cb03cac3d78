package engine

import "github.com/akmonengine/featherserver/actor"

// GroupFilter decides whether a broad-phase pair reaches the narrow phase
type GroupFilter interface {
	CanCollide(a, b *actor.RigidBody) bool
}

// LayerMaskFilter lets a pair through when either body's mask selects the
// other's layer
type LayerMaskFilter struct{}

func (LayerMaskFilter) CanCollide(a, b *actor.RigidBody) bool {
	return LayersInteract(a, b)
}

func LayersInteract(a, b *actor.RigidBody) bool {
	return a.Layer&b.Mask != 0 || b.Layer&a.Mask != 0
}
