package actor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// BodyType represents the type of rigid body
type BodyType int

const (
	// BodyTypeDynamic bodies are affected by forces, gravity, and collisions
	BodyTypeDynamic BodyType = iota

	// BodyTypeStatic bodies are immovable and have infinite mass
	BodyTypeStatic

	// BodyTypeKinematic bodies move with their velocity only and push
	// dynamic bodies without being pushed back
	BodyTypeKinematic
)

type Material struct {
	Density     float64
	mass        float64
	Restitution float64 // 0= no rebound, 1= perfect restitution

	StaticFriction  float64
	DynamicFriction float64
	LinearDamping   float64
	AngularDamping  float64
}

func (material Material) GetMass() float64 {
	return material.mass
}

// RigidBody represents a rigid body in the physics simulation
type RigidBody struct {
	// ID is unique inside one engine world, assigned by the owner
	ID uint64

	PreviousTransform Transform
	Transform         Transform

	PresolveVelocity mgl64.Vec3
	Velocity         mgl64.Vec3

	PresolveAngularVelocity mgl64.Vec3
	AngularVelocity         mgl64.Vec3
	InertiaLocal            mgl64.Mat3
	InverseInertiaLocal     mgl64.Mat3

	accumulatedForce  mgl64.Vec3
	accumulatedTorque mgl64.Vec3

	// ConstantForce and ConstantTorque are applied on every step until reset
	ConstantForce  mgl64.Vec3
	ConstantTorque mgl64.Vec3
	GravityScale   float64

	IsSleeping bool
	SleepTimer float64
	CanSleep   bool

	// LockRotation keeps the orientation fixed (linear-only bodies)
	LockRotation bool

	// IsTrigger bodies report overlaps but are never solved
	IsTrigger bool

	Layer uint32
	Mask  uint32

	// UserData is an opaque back-reference owned by the caller
	UserData any

	Material Material
	BodyType BodyType

	Shape Shape
}

// NewRigidBody creates a new rigid body with the given properties
// density is used to calculate mass for dynamic bodies (ignored otherwise)
func NewRigidBody(transform Transform, shape Shape, bodyType BodyType, density float64) *RigidBody {
	if transform.Rotation.Len() == 0 {
		transform.Rotation = mgl64.QuatIdent()
	}
	transform.InverseRotation = transform.Rotation.Inverse()

	rb := &RigidBody{
		PreviousTransform: transform,
		Transform:         transform,
		Shape:             shape,
		BodyType:          bodyType,
		GravityScale:      1,
		CanSleep:          true,
		Layer:             1,
		Mask:              1,
	}

	rb.Material = Material{Density: density}
	if bodyType == BodyTypeDynamic {
		rb.SetMass(shape.ComputeMass(density))
	} else {
		rb.SetMass(math.Inf(1))
	}
	rb.Shape.ComputeAABB(rb.Transform)

	return rb
}

// SetMass overrides the mass derived from density and refreshes the inertia
func (rb *RigidBody) SetMass(mass float64) {
	rb.Material.mass = mass
	rb.RefreshInertia()
}

// RefreshInertia recomputes the inertia tensor from the shape and mass
func (rb *RigidBody) RefreshInertia() {
	if rb.BodyType != BodyTypeDynamic || math.IsInf(rb.Material.mass, 0) || rb.Material.mass <= 0 {
		rb.InertiaLocal = mgl64.Mat3{}
		rb.InverseInertiaLocal = mgl64.Mat3{}
		return
	}

	rb.InertiaLocal = rb.Shape.ComputeInertia(rb.Material.mass)
	if rb.InertiaLocal.Det() == 0 {
		rb.InverseInertiaLocal = mgl64.Mat3{}
		return
	}
	rb.InverseInertiaLocal = rb.InertiaLocal.Inv()
}

// SetShape swaps the collision shape, keeping the current mass
func (rb *RigidBody) SetShape(shape Shape) {
	rb.Shape = shape
	rb.RefreshInertia()
	rb.Shape.ComputeAABB(rb.Transform)
}

// SetBodyType changes the motion mode. Dynamic bodies get their mass back
// from density when it was infinite.
func (rb *RigidBody) SetBodyType(bodyType BodyType) {
	rb.BodyType = bodyType
	if bodyType == BodyTypeDynamic {
		if math.IsInf(rb.Material.mass, 0) || rb.Material.mass <= 0 {
			rb.Material.mass = rb.Shape.ComputeMass(rb.Material.Density)
			if math.IsInf(rb.Material.mass, 0) || rb.Material.mass <= 0 {
				rb.Material.mass = 1
			}
		}
	} else {
		rb.Velocity = mgl64.Vec3{}
		rb.AngularVelocity = mgl64.Vec3{}
		if bodyType == BodyTypeStatic {
			rb.Material.mass = math.Inf(1)
		}
	}
	rb.RefreshInertia()
	rb.Awake()
}

// InverseMass is zero for anything the solver must not move
func (rb *RigidBody) InverseMass() float64 {
	if rb.BodyType != BodyTypeDynamic || rb.IsTrigger {
		return 0
	}
	if math.IsInf(rb.Material.mass, 0) || rb.Material.mass <= 0 {
		return 0
	}

	return 1.0 / rb.Material.mass
}

// SetTransform teleports the body and wakes it up
func (rb *RigidBody) SetTransform(transform Transform) {
	transform.InverseRotation = transform.Rotation.Inverse()
	rb.Transform = transform
	rb.PreviousTransform = transform
	rb.Shape.ComputeAABB(rb.Transform)
	rb.Awake()
}

func (rb *RigidBody) TrySleep(dt float64, timeThreshold float64, velocityThreshold float64) {
	if !rb.CanSleep || rb.BodyType != BodyTypeDynamic {
		return
	}

	if rb.Velocity.Len() < velocityThreshold && rb.AngularVelocity.Len() < velocityThreshold {
		rb.SleepTimer += dt
		if rb.SleepTimer >= timeThreshold {
			rb.Sleep()
		}
	} else {
		rb.SleepTimer = 0
	}
}

func (rb *RigidBody) Sleep() {
	rb.IsSleeping = true
	rb.SleepTimer = 0.0

	rb.Shape.ComputeAABB(rb.Transform)
	rb.ClearForces()
	rb.Velocity = mgl64.Vec3{}
	rb.AngularVelocity = mgl64.Vec3{}
}

func (rb *RigidBody) Awake() {
	rb.IsSleeping = false
	rb.SleepTimer = 0.0
}

func (rb *RigidBody) Integrate(dt float64, gravity mgl64.Vec3) {
	if rb.BodyType == BodyTypeStatic || rb.IsSleeping {
		return
	}

	rb.PreviousTransform.Position = rb.Transform.Position
	rb.PreviousTransform.Rotation = rb.Transform.Rotation

	if rb.BodyType == BodyTypeDynamic {
		// linear
		invMass := rb.InverseMass()
		force := rb.accumulatedForce.Add(rb.ConstantForce)
		acceleration := gravity.Mul(rb.GravityScale).Add(force.Mul(invMass))
		rb.Velocity = rb.Velocity.Add(acceleration.Mul(dt))
		rb.Velocity = rb.Velocity.Mul(math.Exp(-rb.Material.LinearDamping * dt))

		// angular
		if rb.LockRotation {
			rb.AngularVelocity = mgl64.Vec3{}
		} else {
			torque := rb.accumulatedTorque.Add(rb.ConstantTorque)
			angularAccel := rb.GetInverseInertiaWorld().Mul3x1(torque)
			rb.AngularVelocity = rb.AngularVelocity.Add(angularAccel.Mul(dt))
			rb.AngularVelocity = rb.AngularVelocity.Mul(math.Exp(-rb.Material.AngularDamping * dt))
		}
	}

	rb.Transform.Position = rb.Transform.Position.Add(rb.Velocity.Mul(dt))

	if rb.AngularVelocity.Len() > 0 {
		omegaQuat := mgl64.Quat{V: rb.AngularVelocity, W: 0}
		qDot := omegaQuat.Mul(rb.Transform.Rotation).Scale(0.5)
		rb.Transform.Rotation = rb.Transform.Rotation.Add(qDot.Scale(dt)).Normalize()
		rb.Transform.InverseRotation = rb.Transform.Rotation.Inverse()
	}

	rb.PresolveVelocity = rb.Velocity
	rb.PresolveAngularVelocity = rb.AngularVelocity

	rb.Shape.ComputeAABB(rb.Transform)
	rb.ClearForces()
}

// Update derives velocities from the solved positions
func (rb *RigidBody) Update(dt float64) {
	if rb.BodyType != BodyTypeDynamic || rb.IsSleeping || dt <= 0 {
		return
	}

	rb.Velocity = rb.Transform.Position.Sub(rb.PreviousTransform.Position).Mul(1.0 / dt)
	if rb.LockRotation {
		rb.Transform.Rotation = rb.PreviousTransform.Rotation
		rb.Transform.InverseRotation = rb.Transform.Rotation.Inverse()
		rb.AngularVelocity = mgl64.Vec3{}
		return
	}

	qDelta := rb.Transform.Rotation.Mul(rb.PreviousTransform.Rotation.Conjugate()).Normalize()
	if qDelta.W >= 0.0 {
		rb.AngularVelocity = qDelta.V.Mul(2.0 / dt)
	} else {
		rb.AngularVelocity = qDelta.V.Mul(-2.0 / dt)
	}
}

// AddForce accumulates a force (N) for the next step
func (rb *RigidBody) AddForce(force mgl64.Vec3) {
	if rb.BodyType == BodyTypeDynamic {
		rb.Awake()
		rb.accumulatedForce = rb.accumulatedForce.Add(force)
	}
}

// AddForceAtPoint accumulates a force applied at a world point
func (rb *RigidBody) AddForceAtPoint(force, point mgl64.Vec3) {
	rb.AddForce(force)
	rb.AddTorque(point.Sub(rb.Transform.Position).Cross(force))
}

// AddTorque accumulates a torque (N⋅m) for the next step
func (rb *RigidBody) AddTorque(torque mgl64.Vec3) {
	if rb.BodyType == BodyTypeDynamic {
		rb.Awake()
		rb.accumulatedTorque = rb.accumulatedTorque.Add(torque)
	}
}

// ApplyImpulse changes velocity immediately. offset is relative to the
// body position in world space.
func (rb *RigidBody) ApplyImpulse(impulse, offset mgl64.Vec3) {
	if rb.BodyType != BodyTypeDynamic {
		return
	}
	rb.Awake()
	rb.Velocity = rb.Velocity.Add(impulse.Mul(rb.InverseMass()))
	if offset.Len() > 0 {
		rb.ApplyTorqueImpulse(offset.Cross(impulse))
	}
}

func (rb *RigidBody) ApplyTorqueImpulse(impulse mgl64.Vec3) {
	if rb.BodyType != BodyTypeDynamic || rb.LockRotation {
		return
	}
	rb.Awake()
	rb.AngularVelocity = rb.AngularVelocity.Add(rb.GetInverseInertiaWorld().Mul3x1(impulse))
}

func (rb *RigidBody) ClearForces() {
	rb.accumulatedForce = mgl64.Vec3{0, 0, 0}
	rb.accumulatedTorque = mgl64.Vec3{0, 0, 0}
}

func (rb *RigidBody) SupportWorld(direction mgl64.Vec3) mgl64.Vec3 {
	localDirection := rb.Transform.InverseRotation.Rotate(direction)
	localSupport := rb.Shape.Support(localDirection)

	return rb.Transform.PointToWorld(localSupport)
}

// GetInertiaWorld returns R * I_local * R^T
func (rb *RigidBody) GetInertiaWorld() mgl64.Mat3 {
	R := rb.Transform.Rotation.Mat4().Mat3()
	return R.Mul3(rb.InertiaLocal).Mul3(R.Transpose())
}

func (rb *RigidBody) GetInverseInertiaWorld() mgl64.Mat3 {
	if rb.BodyType != BodyTypeDynamic || rb.LockRotation || rb.IsTrigger {
		return mgl64.Mat3{}
	}

	R := rb.Transform.Rotation.Mat4().Mat3()
	return R.Mul3(rb.InverseInertiaLocal).Mul3(R.Transpose())
}

// VelocityAt returns the velocity of a world point rigidly attached to the body
func (rb *RigidBody) VelocityAt(point mgl64.Vec3) mgl64.Vec3 {
	return rb.Velocity.Add(rb.AngularVelocity.Cross(point.Sub(rb.Transform.Position)))
}
