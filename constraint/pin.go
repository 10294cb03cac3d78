package constraint

import (
	"github.com/akmonengine/featherserver/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// PinJoint ties a point of BodyA to a point of BodyB (ball-and-socket).
// A nil BodyB anchors LocalB in world space.
type PinJoint struct {
	BodyA  *actor.RigidBody
	BodyB  *actor.RigidBody
	LocalA mgl64.Vec3
	LocalB mgl64.Vec3

	Compliance float64
	// Enabled is cleared when the owner unbinds the joint
	Enabled bool
}

func NewPinJoint(a *actor.RigidBody, localA mgl64.Vec3, b *actor.RigidBody, localB mgl64.Vec3) *PinJoint {
	return &PinJoint{
		BodyA:   a,
		BodyB:   b,
		LocalA:  localA,
		LocalB:  localB,
		Enabled: true,
	}
}

// Anchors returns both anchor points in world space
func (j *PinJoint) Anchors() (mgl64.Vec3, mgl64.Vec3) {
	anchorA := j.BodyA.Transform.PointToWorld(j.LocalA)
	anchorB := j.LocalB
	if j.BodyB != nil {
		anchorB = j.BodyB.Transform.PointToWorld(j.LocalB)
	}
	return anchorA, anchorB
}

// Error is the current distance between the two anchors
func (j *PinJoint) Error() float64 {
	anchorA, anchorB := j.Anchors()
	return anchorB.Sub(anchorA).Len()
}

func (j *PinJoint) SolvePosition(dt float64) {
	if !j.Enabled || j.BodyA == nil {
		return
	}

	anchorA, anchorB := j.Anchors()
	delta := anchorB.Sub(anchorA)
	distance := delta.Len()
	if distance < 1e-9 {
		return
	}
	n := delta.Mul(1 / distance)

	if j.BodyA.IsSleeping && distance > 1e-4 {
		j.BodyA.Awake()
	}
	if j.BodyB != nil && j.BodyB.IsSleeping && distance > 1e-4 {
		j.BodyB.Awake()
	}

	invMassA, invInertiaA := inverseMass(j.BodyA), inverseInertia(j.BodyA)
	invMassB, invInertiaB := inverseMass(j.BodyB), inverseInertia(j.BodyB)
	rA := anchorA.Sub(j.BodyA.Transform.Position)
	var rB mgl64.Vec3
	if j.BodyB != nil {
		rB = anchorB.Sub(j.BodyB.Transform.Position)
	}

	weight := generalizedWeight(invMassA, invInertiaA, rA, n) + generalizedWeight(invMassB, invInertiaB, rB, n)
	if weight <= 1e-12 {
		return
	}

	lambda := distance / (weight + j.Compliance/(dt*dt))
	correction := n.Mul(lambda)

	applyPositionCorrection(j.BodyA, invMassA, invInertiaA, correction, rA)
	if j.BodyB != nil {
		applyPositionCorrection(j.BodyB, invMassB, invInertiaB, correction.Mul(-1), rB)
	}
}

// SolveVelocity is a no-op: the pin has no velocity-level terms
func (j *PinJoint) SolveVelocity(dt float64) {}
