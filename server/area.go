package server

import (
	"slices"

	"github.com/akmonengine/featherserver/actor"
	"github.com/akmonengine/featherserver/rid"
	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"
)

type AreaParam int

const (
	AreaParamGravityOverrideMode AreaParam = iota
	AreaParamGravity
	AreaParamGravityVector
	AreaParamGravityIsPoint
	AreaParamGravityPointUnitDistance
	AreaParamLinearDampOverrideMode
	AreaParamLinearDamp
	AreaParamAngularDampOverrideMode
	AreaParamAngularDamp
	AreaParamPriority
)

type AreaBodyStatus int

const (
	AreaBodyAdded AreaBodyStatus = iota
	AreaBodyRemoved
)

func (s AreaBodyStatus) String() string {
	if s == AreaBodyAdded {
		return "added"
	}
	return "removed"
}

// AreaMonitorEvent reports an object entering or leaving an area
type AreaMonitorEvent struct {
	Status      AreaBodyStatus
	Object      rid.RID
	InstanceID  int64
	ObjectShape int
	AreaShape   int
}

type MonitorCallback func(event AreaMonitorEvent)

type pendingMonitorEvent struct {
	event  AreaMonitorEvent
	isArea bool
}

type Area struct {
	objectBase

	gravity       float64
	gravityVector mgl64.Vec3
	linearDamp    float64
	angularDamp   float64
	priority      float64

	monitorable         bool
	monitorCallback     MonitorCallback
	areaMonitorCallback MonitorCallback
	pending             []pendingMonitorEvent

	// defaultOf is set on the implicit area of a space
	defaultOf *Space
}

func newArea(logger *zap.Logger, gravity, linearDamp, angularDamp float64) *Area {
	a := &Area{
		objectBase:    newObjectBase(logger),
		gravity:       gravity,
		gravityVector: mgl64.Vec3{0, -1, 0},
		linearDamp:    linearDamp,
		angularDamp:   angularDamp,
	}
	a.self = a
	return a
}

// IsDefault reports whether the area is the implicit area of a space
func (a *Area) IsDefault() bool {
	return a.defaultOf != nil
}

// newEngineBody: areas are kinematic triggers; the default area covers the
// whole space and has no engine body
func (a *Area) newEngineBody(shape actor.Shape) *actor.RigidBody {
	if a.defaultOf != nil {
		return nil
	}
	rb := actor.NewRigidBody(a.transform, shape, actor.BodyTypeKinematic, 0)
	rb.IsTrigger = true
	rb.CanSleep = false
	return rb
}

func (a *Area) attach(space *Space) {
	if a.defaultOf == nil {
		space.areas = append(space.areas, a)
	}
}

func (a *Area) detach(space *Space) {
	space.areas = slices.DeleteFunc(space.areas, func(other *Area) bool { return other == a })
	a.pending = a.pending[:0]
}

// acceleration is the gravity the area applies
func (a *Area) acceleration() mgl64.Vec3 {
	if a.gravityVector.Len() < 1e-12 {
		return mgl64.Vec3{}
	}
	return a.gravityVector.Normalize().Mul(a.gravity)
}

// queue records a monitor event for delivery during the next query flush
func (a *Area) queue(other collisionObject, status AreaBodyStatus) {
	_, isArea := other.(*Area)
	if isArea {
		if a.areaMonitorCallback == nil || !other.(*Area).monitorable {
			return
		}
	} else if a.monitorCallback == nil {
		return
	}

	base := other.object()
	a.pending = append(a.pending, pendingMonitorEvent{
		isArea: isArea,
		event: AreaMonitorEvent{
			Status:      status,
			Object:      base.rid,
			InstanceID:  base.instanceID,
			ObjectShape: max(0, base.firstEnabledShape()),
			AreaShape:   max(0, a.firstEnabledShape()),
		},
	})
}

// flushMonitorEvents delivers queued events in the order they happened
func (a *Area) flushMonitorEvents() {
	pending := a.pending
	a.pending = nil

	for _, p := range pending {
		callback := a.monitorCallback
		if p.isArea {
			callback = a.areaMonitorCallback
		}
		if callback != nil {
			callback(p.event)
		}
	}
}
