package server

import (
	"slices"

	"github.com/akmonengine/featherserver/actor"
	"github.com/akmonengine/featherserver/rid"
	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"
)

type BodyMode int

const (
	BodyModeStatic BodyMode = iota
	BodyModeKinematic
	BodyModeRigid
	BodyModeRigidLinear
)

type BodyParam int

const (
	BodyParamBounce BodyParam = iota
	BodyParamFriction
	BodyParamMass
	BodyParamInertia
	BodyParamCenterOfMass
	BodyParamGravityScale
	BodyParamLinearDampMode
	BodyParamAngularDampMode
	BodyParamLinearDamp
	BodyParamAngularDamp
)

type BodyState int

const (
	BodyStateTransform BodyState = iota
	BodyStateLinearVelocity
	BodyStateAngularVelocity
	BodyStateSleeping
	BodyStateCanSleep
)

type BodyAxis int

const (
	BodyAxisLinearX BodyAxis = 1 << iota
	BodyAxisLinearY
	BodyAxisLinearZ
	BodyAxisAngularX
	BodyAxisAngularY
	BodyAxisAngularZ
)

// BodyDirectState is the snapshot handed to state sync callbacks
type BodyDirectState struct {
	Body            rid.RID
	InstanceID      int64
	Transform       actor.Transform
	LinearVelocity  mgl64.Vec3
	AngularVelocity mgl64.Vec3
	Sleeping        bool
}

type StateSyncCallback func(state BodyDirectState)

type Body struct {
	objectBase

	mode         BodyMode
	mass         float64
	bounce       float64
	friction     float64
	gravityScale float64
	linearDamp   float64
	angularDamp  float64

	// used while the body has no engine body
	linearVelocity  mgl64.Vec3
	angularVelocity mgl64.Vec3
	sleeping        bool
	canSleep        bool

	constantForce  mgl64.Vec3
	constantTorque mgl64.Vec3
	ccd            bool

	exceptions   []rid.RID
	joints       []*Joint
	syncCallback StateSyncCallback
	syncPending  bool
}

func newBody(logger *zap.Logger) *Body {
	material := defaultMaterial()
	b := &Body{
		objectBase:   newObjectBase(logger),
		mode:         BodyModeRigid,
		mass:         1,
		bounce:       material.Restitution,
		friction:     material.StaticFriction,
		gravityScale: 1,
		canSleep:     true,
	}
	b.self = b
	return b
}

func (b *Body) Mode() BodyMode {
	return b.mode
}

func (b *Body) bodyType() actor.BodyType {
	switch b.mode {
	case BodyModeStatic:
		return actor.BodyTypeStatic
	case BodyModeKinematic:
		return actor.BodyTypeKinematic
	}
	return actor.BodyTypeDynamic
}

func (b *Body) newEngineBody(shape actor.Shape) *actor.RigidBody {
	rb := actor.NewRigidBody(b.transform, shape, b.bodyType(), 1)
	b.pushParams(rb)
	rb.Velocity = b.linearVelocity
	rb.AngularVelocity = b.angularVelocity
	if b.sleeping {
		rb.Sleep()
	}
	return rb
}

// pushParams copies every host-side parameter into the engine body
func (b *Body) pushParams(rb *actor.RigidBody) {
	rb.Material.Restitution = b.bounce
	rb.Material.StaticFriction = b.friction
	rb.Material.DynamicFriction = b.friction
	rb.Material.LinearDamping = b.linearDamp
	rb.Material.AngularDamping = b.angularDamp
	rb.GravityScale = b.gravityScale
	rb.CanSleep = b.canSleep
	rb.LockRotation = b.mode == BodyModeRigidLinear
	rb.ConstantForce = b.constantForce
	rb.ConstantTorque = b.constantTorque
	if rb.BodyType == actor.BodyTypeDynamic {
		rb.SetMass(b.mass)
	}
}

func (b *Body) attach(space *Space) {
	space.bodies = append(space.bodies, b)
}

// detach unbinds the joints of the body; they stay configured but inactive
func (b *Body) detach(space *Space) {
	b.linearVelocity = b.getLinearVelocity()
	b.angularVelocity = b.getAngularVelocity()
	b.sleeping = b.isSleeping()

	for _, j := range b.joints {
		j.unbind()
	}
	space.bodies = slices.DeleteFunc(space.bodies, func(other *Body) bool { return other == b })
	b.syncPending = false
}

func (b *Body) setMode(mode BodyMode) {
	b.mode = mode
	if b.rb != nil {
		b.rb.SetBodyType(b.bodyType())
		b.pushParams(b.rb)
	}
}

func (b *Body) setMass(mass float64) {
	b.mass = mass
	if b.rb != nil && b.rb.BodyType == actor.BodyTypeDynamic {
		b.rb.SetMass(mass)
	}
}

func (b *Body) refreshParams() {
	if b.rb != nil {
		b.pushParams(b.rb)
	}
}

func (b *Body) getLinearVelocity() mgl64.Vec3 {
	if b.rb != nil {
		return b.rb.Velocity
	}
	return b.linearVelocity
}

func (b *Body) setLinearVelocity(v mgl64.Vec3) {
	b.linearVelocity = v
	if b.rb != nil {
		b.rb.Velocity = v
		b.rb.Awake()
	}
}

func (b *Body) getAngularVelocity() mgl64.Vec3 {
	if b.rb != nil {
		return b.rb.AngularVelocity
	}
	return b.angularVelocity
}

func (b *Body) setAngularVelocity(v mgl64.Vec3) {
	b.angularVelocity = v
	if b.rb != nil {
		b.rb.AngularVelocity = v
		b.rb.Awake()
	}
}

func (b *Body) isSleeping() bool {
	if b.rb != nil {
		return b.rb.IsSleeping
	}
	return b.sleeping
}

func (b *Body) setSleeping(sleeping bool) {
	b.sleeping = sleeping
	if b.rb == nil {
		return
	}
	if sleeping {
		b.rb.Sleep()
	} else {
		b.rb.Awake()
	}
}

func (b *Body) setCanSleep(canSleep bool) {
	b.canSleep = canSleep
	if b.rb != nil {
		b.rb.CanSleep = canSleep
		if !canSleep {
			b.rb.Awake()
		}
	}
}

// engineBody is nil-safe for world anchored joints
func (b *Body) engineBody() *actor.RigidBody {
	if b == nil {
		return nil
	}
	return b.rb
}

func (b *Body) excepts(other rid.RID) bool {
	return slices.Contains(b.exceptions, other)
}

func (b *Body) addException(other rid.RID) {
	if !b.excepts(other) {
		b.exceptions = append(b.exceptions, other)
	}
}

func (b *Body) removeException(other rid.RID) {
	b.exceptions = slices.DeleteFunc(b.exceptions, func(r rid.RID) bool { return r == other })
}

func (b *Body) moved() bool {
	return b.rb != nil && b.mode != BodyModeStatic && !b.rb.IsSleeping
}

func (b *Body) directState() BodyDirectState {
	return BodyDirectState{
		Body:            b.rid,
		InstanceID:      b.instanceID,
		Transform:       b.getTransform(),
		LinearVelocity:  b.getLinearVelocity(),
		AngularVelocity: b.getAngularVelocity(),
		Sleeping:        b.isSleeping(),
	}
}
