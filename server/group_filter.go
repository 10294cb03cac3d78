package server

import (
	"github.com/akmonengine/featherserver/actor"
	"github.com/akmonengine/featherserver/engine"
)

// groupFilter applies collision exceptions and layers, and keeps objects
// without enabled shapes out of the narrow phase
type groupFilter struct{}

func (groupFilter) CanCollide(a, b *actor.RigidBody) bool {
	objA, okA := a.UserData.(collisionObject)
	objB, okB := b.UserData.(collisionObject)
	if !okA || !okB {
		return engine.LayersInteract(a, b)
	}

	if !objA.object().hasEnabledShapes() || !objB.object().hasEnabledShapes() {
		return false
	}

	if bodyA, ok := objA.(*Body); ok && bodyA.excepts(objB.RID()) {
		return false
	}
	if bodyB, ok := objB.(*Body); ok && bodyB.excepts(objA.RID()) {
		return false
	}

	return engine.LayersInteract(a, b)
}
