package constraint

import (
	"math"

	"github.com/akmonengine/featherserver/actor"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	// DefaultCompliance controls soft constraint stiffness for contact resolution.
	// Typical range: 1e-10 (very stiff) to 1e-6 (soft)
	DefaultCompliance = 1e-7

	// restitutionThreshold: slower approaches do not bounce
	restitutionThreshold = 0.5
)

type ContactPoint struct {
	Position    mgl64.Vec3
	Penetration float64
}

// ContactConstraint keeps two bodies apart along Normal, which points from A to B
type ContactConstraint struct {
	BodyA  *actor.RigidBody
	BodyB  *actor.RigidBody
	Points []ContactPoint
	Normal mgl64.Vec3
}

func (c *ContactConstraint) MaxPenetration() float64 {
	depth := 0.0
	for _, point := range c.Points {
		depth = math.Max(depth, point.Penetration)
	}
	return depth
}

// SolvePosition resolves penetration with one XPBD correction shared by all points
func (c *ContactConstraint) SolvePosition(dt float64) {
	if len(c.Points) == 0 || (c.BodyA.IsSleeping && c.BodyB.IsSleeping) {
		return
	}
	wakeOnImpact(c.BodyA, c.BodyB)

	bodyA, bodyB := c.BodyA, c.BodyB
	invMassA, invMassB := inverseMass(bodyA), inverseMass(bodyB)
	invInertiaA, invInertiaB := inverseInertia(bodyA), inverseInertia(bodyB)

	var totalWeight, totalPenetration float64
	for _, point := range c.Points {
		if point.Penetration <= 1e-8 {
			continue
		}
		rA := point.Position.Sub(bodyA.Transform.Position)
		rB := point.Position.Sub(bodyB.Transform.Position)

		totalWeight += generalizedWeight(invMassA, invInertiaA, rA, c.Normal)
		totalWeight += generalizedWeight(invMassB, invInertiaB, rB, c.Normal)
		totalPenetration += point.Penetration
	}
	if totalWeight <= 1e-8 {
		return
	}

	alphaTilde := DefaultCompliance / (dt * dt)
	deltaLambda := -totalPenetration / (totalWeight + alphaTilde)
	impulse := c.Normal.Mul(deltaLambda)

	// rotation from the point-averaged lever arm
	var count float64
	var anchor mgl64.Vec3
	for _, point := range c.Points {
		if point.Penetration > 1e-8 {
			anchor = anchor.Add(point.Position)
			count++
		}
	}
	anchor = anchor.Mul(1 / count)
	rA := anchor.Sub(bodyA.Transform.Position)
	rB := anchor.Sub(bodyB.Transform.Position)

	applyPositionCorrection(bodyA, invMassA, invInertiaA, impulse, rA)
	applyPositionCorrection(bodyB, invMassB, invInertiaB, impulse.Mul(-1), rB)
}

// SolveVelocity applies restitution and Coulomb friction point by point
func (c *ContactConstraint) SolveVelocity(dt float64) {
	if len(c.Points) == 0 || (c.BodyA.IsSleeping && c.BodyB.IsSleeping) {
		return
	}

	bodyA, bodyB := c.BodyA, c.BodyB
	invMassA, invMassB := inverseMass(bodyA), inverseMass(bodyB)
	invInertiaA, invInertiaB := inverseInertia(bodyA), inverseInertia(bodyB)

	restitution := ComputeRestitution(bodyA.Material, bodyB.Material)
	staticFriction := ComputeStaticFriction(bodyA.Material, bodyB.Material)
	dynamicFriction := ComputeDynamicFriction(bodyA.Material, bodyB.Material)

	for _, point := range c.Points {
		rA := point.Position.Sub(bodyA.Transform.Position)
		rB := point.Position.Sub(bodyB.Transform.Position)

		relativeVel := bodyB.VelocityAt(point.Position).Sub(bodyA.VelocityAt(point.Position))
		normalVel := relativeVel.Dot(c.Normal)

		prevA := bodyA.PresolveVelocity.Add(bodyA.PresolveAngularVelocity.Cross(rA))
		prevB := bodyB.PresolveVelocity.Add(bodyB.PresolveAngularVelocity.Cross(rB))
		normalVelPrev := prevB.Sub(prevA).Dot(c.Normal)

		weight := generalizedWeight(invMassA, invInertiaA, rA, c.Normal) + generalizedWeight(invMassB, invInertiaB, rB, c.Normal)
		if weight < 1e-10 {
			continue
		}

		targetVel := 0.0
		if -normalVelPrev > restitutionThreshold {
			targetVel = -restitution * normalVelPrev
		}
		lambdaNormal := (targetVel - normalVel) / weight
		// never pull bodies together
		if lambdaNormal <= 0 {
			continue
		}

		normalImpulse := c.Normal.Mul(lambdaNormal)
		applyImpulse(bodyA, invMassA, invInertiaA, normalImpulse.Mul(-1), rA)
		applyImpulse(bodyB, invMassB, invInertiaB, normalImpulse, rB)

		// friction, against the post-normal-impulse sliding velocity
		relativeVel = bodyB.VelocityAt(point.Position).Sub(bodyA.VelocityAt(point.Position))
		tangentVel := relativeVel.Sub(c.Normal.Mul(relativeVel.Dot(c.Normal)))
		tangentSpeed := tangentVel.Len()
		if tangentSpeed < 1e-6 {
			continue
		}
		tangentDir := tangentVel.Mul(1.0 / tangentSpeed)

		weightT := generalizedWeight(invMassA, invInertiaA, rA, tangentDir) + generalizedWeight(invMassB, invInertiaB, rB, tangentDir)
		if weightT < 1e-10 {
			continue
		}

		lambdaTangent := tangentSpeed / weightT
		if lambdaTangent > staticFriction*lambdaNormal {
			lambdaTangent = math.Min(lambdaTangent, dynamicFriction*lambdaNormal)
		}

		frictionImpulse := tangentDir.Mul(-lambdaTangent)
		applyImpulse(bodyA, invMassA, invInertiaA, frictionImpulse.Mul(-1), rA)
		applyImpulse(bodyB, invMassB, invInertiaB, frictionImpulse, rB)
	}

	if invMassA > 0 {
		clampSmallVelocities(bodyA)
	}
	if invMassB > 0 {
		clampSmallVelocities(bodyB)
	}
}
