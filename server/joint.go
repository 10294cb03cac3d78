package server

import (
	"slices"

	"github.com/akmonengine/featherserver/constraint"
	"github.com/akmonengine/featherserver/rid"
	"github.com/go-gl/mathgl/mgl64"
)

type JointType int

const (
	JointTypePin JointType = iota
	JointTypeHinge
	JointTypeSlider
	JointTypeConeTwist
	JointType6DOF
	// JointTypeNone is reported by a joint without a constraint
	JointTypeNone
)

// JointState is the lifecycle of a joint's native constraint
type JointState int

const (
	JointUnbound JointState = iota
	JointBound
	JointDestroyed
)

func (s JointState) String() string {
	switch s {
	case JointUnbound:
		return "unbound"
	case JointBound:
		return "bound"
	}
	return "destroyed"
}

const defaultSolverPriority = 1

type Joint struct {
	rid       rid.RID
	jointType JointType
	state     JointState

	bodyA  *Body
	bodyB  *Body // nil anchors to the world
	localA mgl64.Vec3
	localB mgl64.Vec3

	collisionDisabled bool

	native *constraint.PinJoint
	space  *Space
}

func newJoint() *Joint {
	return &Joint{jointType: JointTypeNone}
}

func (j *Joint) RID() rid.RID      { return j.rid }
func (j *Joint) Type() JointType   { return j.jointType }
func (j *Joint) State() JointState { return j.state }

// bind registers the native constraint with the space of body A
func (j *Joint) bind() {
	if j.bodyA == nil || j.bodyA.space == nil || j.bodyA.rb == nil {
		return
	}
	space := j.bodyA.space

	rbB := j.bodyB.engineBody()
	if j.bodyB != nil && (j.bodyB.space != space || rbB == nil) {
		return
	}

	j.native = constraint.NewPinJoint(j.bodyA.rb, j.localA, rbB, j.localB)
	j.space = space
	space.addJoint(j)
	j.state = JointBound
}

// unbind deregisters from the space before the native constraint is dropped
func (j *Joint) unbind() {
	if j.native == nil {
		return
	}

	j.space.removeJoint(j)
	j.native.Enabled = false
	j.native = nil
	j.space = nil
	j.state = JointUnbound
}

// release unbinds and forgets both bodies
func (j *Joint) release() {
	j.unbind()
	if j.collisionDisabled {
		j.applyExceptions(false)
	}

	for _, b := range []*Body{j.bodyA, j.bodyB} {
		if b != nil {
			b.joints = slices.DeleteFunc(b.joints, func(other *Joint) bool { return other == j })
		}
	}
	j.bodyA, j.bodyB = nil, nil
	j.jointType = JointTypeNone
}

func (j *Joint) destroy() {
	j.release()
	j.state = JointDestroyed
}

func (j *Joint) setBodies(a, b *Body) {
	j.bodyA, j.bodyB = a, b
	a.joints = append(a.joints, j)
	if b != nil {
		b.joints = append(b.joints, j)
	}
	if j.collisionDisabled {
		j.applyExceptions(true)
	}
}

// setCollisionDisabled only touches the exceptions the joint itself added
func (j *Joint) setCollisionDisabled(disabled bool) {
	if j.collisionDisabled == disabled {
		return
	}
	j.collisionDisabled = disabled
	j.applyExceptions(disabled)
}

// applyExceptions is a no-op for a joint anchored to the world
func (j *Joint) applyExceptions(disabled bool) {
	if j.bodyA == nil || j.bodyB == nil {
		return
	}

	if disabled {
		j.bodyA.addException(j.bodyB.rid)
		j.bodyB.addException(j.bodyA.rid)
	} else {
		j.bodyA.removeException(j.bodyB.rid)
		j.bodyB.removeException(j.bodyA.rid)
	}
}
