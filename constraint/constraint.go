package constraint

import (
	"math"

	"github.com/akmonengine/featherserver/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// Constraint is solved once per substep: positions first, then velocities
type Constraint interface {
	SolvePosition(dt float64)
	SolveVelocity(dt float64)
}

// wakeVelocity is the speed above which a body wakes the sleeping body it touches
const wakeVelocity = 0.2

func ComputeRestitution(matA, matB actor.Material) float64 {
	return (matA.Restitution + matB.Restitution) / 2.0
}

func ComputeStaticFriction(matA, matB actor.Material) float64 {
	return math.Sqrt(matA.StaticFriction * matB.StaticFriction)
}

func ComputeDynamicFriction(matA, matB actor.Material) float64 {
	return math.Sqrt(matA.DynamicFriction * matB.DynamicFriction)
}

// inverseMass treats sleeping bodies as immovable
func inverseMass(rb *actor.RigidBody) float64 {
	if rb == nil || rb.IsSleeping {
		return 0
	}
	return rb.InverseMass()
}

func inverseInertia(rb *actor.RigidBody) mgl64.Mat3 {
	if rb == nil || rb.IsSleeping {
		return mgl64.Mat3{}
	}
	return rb.GetInverseInertiaWorld()
}

// generalizedWeight is w = 1/m + (r × n)ᵀ I⁻¹ (r × n)
func generalizedWeight(invMass float64, invInertia mgl64.Mat3, r, n mgl64.Vec3) float64 {
	rn := r.Cross(n)
	return invMass + invInertia.Mul3x1(rn).Dot(rn)
}

// applyPositionCorrection moves the body by the positional impulse p applied at r
func applyPositionCorrection(rb *actor.RigidBody, invMass float64, invInertia mgl64.Mat3, p, r mgl64.Vec3) {
	if invMass == 0 {
		return
	}

	rb.Transform.Position = rb.Transform.Position.Add(p.Mul(invMass))

	deltaRot := invInertia.Mul3x1(r.Cross(p))
	if deltaRot.Len() > 1e-10 {
		qDelta := mgl64.Quat{W: 1.0, V: deltaRot.Mul(0.5)}.Normalize()
		rb.Transform.Rotation = qDelta.Mul(rb.Transform.Rotation).Normalize()
		rb.Transform.InverseRotation = rb.Transform.Rotation.Inverse()
	}
}

func applyImpulse(rb *actor.RigidBody, invMass float64, invInertia mgl64.Mat3, impulse, r mgl64.Vec3) {
	if invMass == 0 {
		return
	}
	rb.Velocity = rb.Velocity.Add(impulse.Mul(invMass))
	rb.AngularVelocity = rb.AngularVelocity.Add(invInertia.Mul3x1(r.Cross(impulse)))
}

// wakeOnImpact wakes a sleeping dynamic body hit by a moving one
func wakeOnImpact(a, b *actor.RigidBody) {
	if a == nil || b == nil {
		return
	}
	if a.IsSleeping && b.BodyType != actor.BodyTypeStatic && !b.IsSleeping && b.Velocity.Len() > wakeVelocity {
		a.Awake()
	}
	if b.IsSleeping && a.BodyType != actor.BodyTypeStatic && !a.IsSleeping && a.Velocity.Len() > wakeVelocity {
		b.Awake()
	}
}

func clampSmallVelocities(rb *actor.RigidBody) {
	const velocityThreshold = 1e-5

	if rb.Velocity.Len() < velocityThreshold {
		rb.Velocity = mgl64.Vec3{0, 0, 0}
	}
	if rb.AngularVelocity.Len() < velocityThreshold {
		rb.AngularVelocity = mgl64.Vec3{0, 0, 0}
	}
}
