package server

import (
	"fmt"

	"github.com/akmonengine/featherserver/actor"
	"github.com/akmonengine/featherserver/rid"
	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"
)

// collisionObject is implemented by *Body and *Area
type collisionObject interface {
	RID() rid.RID
	object() *objectBase
	// newEngineBody returns nil when the object has no engine presence
	newEngineBody(shape actor.Shape) *actor.RigidBody
	attach(space *Space)
	detach(space *Space)
}

type shapeSlot struct {
	shape     *Shape
	transform actor.Transform
	disabled  bool
}

// objectBase holds what bodies and areas share: shape slots, space membership
// and the engine body that represents them while they are in a space
type objectBase struct {
	rid  rid.RID
	self collisionObject

	slots []shapeSlot
	space *Space

	instanceID  int64
	layer       uint32
	mask        uint32
	rayPickable bool
	transform   actor.Transform

	rb     *actor.RigidBody
	logger *zap.Logger
}

func newObjectBase(logger *zap.Logger) objectBase {
	return objectBase{
		instanceID:  -1,
		layer:       1,
		mask:        1,
		rayPickable: true,
		transform:   actor.NewTransform(),
		logger:      logger,
	}
}

func (o *objectBase) RID() rid.RID {
	return o.rid
}

func (o *objectBase) object() *objectBase {
	return o
}

func (o *objectBase) Space() *Space {
	return o.space
}

func (o *objectBase) locked() bool {
	return o.space != nil && o.space.locked
}

func (o *objectBase) checkIndex(idx int) error {
	if idx < 0 || idx >= len(o.slots) {
		return fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, idx, len(o.slots))
	}
	return nil
}

func (o *objectBase) addShape(shape *Shape, transform actor.Transform, disabled bool) error {
	if shape.owner != nil {
		return fmt.Errorf("%w: %s", ErrShapeInUse, shape.rid)
	}

	o.slots = append(o.slots, shapeSlot{shape: shape, transform: transform, disabled: disabled})
	shape.owner = o.self
	o.rebuild()

	return nil
}

func (o *objectBase) setShape(idx int, shape *Shape) error {
	if err := o.checkIndex(idx); err != nil {
		return err
	}
	previous := o.slots[idx].shape
	if previous == shape {
		return nil
	}
	if shape.owner != nil {
		return fmt.Errorf("%w: %s", ErrShapeInUse, shape.rid)
	}

	previous.owner = nil
	o.slots[idx].shape = shape
	shape.owner = o.self
	o.rebuild()

	return nil
}

func (o *objectBase) setShapeTransform(idx int, transform actor.Transform) error {
	if err := o.checkIndex(idx); err != nil {
		return err
	}
	o.slots[idx].transform = transform
	o.rebuild()
	return nil
}

func (o *objectBase) setShapeDisabled(idx int, disabled bool) error {
	if err := o.checkIndex(idx); err != nil {
		return err
	}
	if o.slots[idx].disabled != disabled {
		o.slots[idx].disabled = disabled
		o.rebuild()
	}
	return nil
}

// removeShape compacts the slots: every later index shifts down by one
func (o *objectBase) removeShape(idx int) error {
	if err := o.checkIndex(idx); err != nil {
		return err
	}

	o.slots[idx].shape.owner = nil
	o.slots = append(o.slots[:idx], o.slots[idx+1:]...)
	o.rebuild()

	return nil
}

// removeShapeRef drops the slot of a shape being freed
func (o *objectBase) removeShapeRef(shape *Shape) {
	for idx, slot := range o.slots {
		if slot.shape == shape {
			_ = o.removeShape(idx)
			return
		}
	}
	shape.owner = nil
}

func (o *objectBase) clearShapes() {
	for len(o.slots) > 0 {
		_ = o.removeShape(0)
	}
}

func (o *objectBase) shapeCount() int {
	return len(o.slots)
}

func (o *objectBase) shapeAt(idx int) (*Shape, error) {
	if err := o.checkIndex(idx); err != nil {
		return nil, err
	}
	return o.slots[idx].shape, nil
}

func (o *objectBase) shapeTransform(idx int) (actor.Transform, error) {
	if err := o.checkIndex(idx); err != nil {
		return actor.Transform{}, err
	}
	return o.slots[idx].transform, nil
}

func (o *objectBase) hasEnabledShapes() bool {
	return o.firstEnabledShape() >= 0
}

// firstEnabledShape is the slot index reported by queries and monitors
func (o *objectBase) firstEnabledShape() int {
	for idx, slot := range o.slots {
		if !slot.disabled {
			return idx
		}
	}
	return -1
}

func (o *objectBase) getTransform() actor.Transform {
	if o.rb != nil {
		return o.rb.Transform
	}
	return o.transform
}

func (o *objectBase) setTransform(transform actor.Transform) {
	o.transform = transform
	if o.rb != nil {
		o.rb.SetTransform(transform)
	}
}

func (o *objectBase) setCollisionLayer(layer uint32) {
	o.layer = layer
	if o.rb != nil {
		o.rb.Layer = layer
	}
}

func (o *objectBase) setCollisionMask(mask uint32) {
	o.mask = mask
	if o.rb != nil {
		o.rb.Mask = mask
	}
}

// setSpace moves the object between spaces, creating or removing its engine body
func (o *objectBase) setSpace(space *Space) {
	if o.space == space {
		return
	}

	if previous := o.space; previous != nil {
		o.self.detach(previous)
		if o.rb != nil {
			o.transform = o.rb.Transform
			previous.world.RemoveBody(o.rb)
			o.rb.UserData = nil
			o.rb = nil
		}
	}

	o.space = space
	if space == nil {
		return
	}

	o.rb = o.self.newEngineBody(o.buildShape())
	if o.rb != nil {
		o.rb.UserData = o.self
		o.rb.Layer = o.layer
		o.rb.Mask = o.mask
		space.world.AddBody(o.rb)
	}
	o.self.attach(space)
}

// rebuild pushes the current shape slots into the engine body
func (o *objectBase) rebuild() {
	if o.rb == nil {
		return
	}
	o.rb.SetShape(o.buildShape())
}

// buildShape turns the enabled slots into one engine shape. A world boundary
// is only honored as the sole enabled shape; an object without enabled shapes
// gets an empty compound and is kept out of collisions by the group filter.
func (o *objectBase) buildShape() actor.Shape {
	enabled := make([]shapeSlot, 0, len(o.slots))
	for _, slot := range o.slots {
		if !slot.disabled {
			enabled = append(enabled, slot)
		}
	}

	if len(enabled) == 1 {
		slot := enabled[0]
		if slot.shape.shapeType == ShapeTypeWorldBoundary || isIdentity(slot.transform) {
			shape, err := slot.shape.build(slot.transform)
			if err != nil {
				o.logger.Warn("shape skipped", zap.Stringer("shape", slot.shape.rid), zap.Error(err))
				return actor.NewCompound()
			}
			return shape
		}
	}

	children := make([]actor.CompoundChild, 0, len(enabled))
	for _, slot := range enabled {
		if slot.shape.shapeType == ShapeTypeWorldBoundary {
			o.logger.Warn("world boundary ignored next to other shapes",
				zap.Stringer("object", o.rid), zap.Stringer("shape", slot.shape.rid))
			continue
		}
		shape, err := slot.shape.build(actor.NewTransform())
		if err != nil {
			o.logger.Warn("shape skipped", zap.Stringer("shape", slot.shape.rid), zap.Error(err))
			continue
		}
		children = append(children, actor.CompoundChild{Shape: shape, Offset: slot.transform})
	}

	return actor.NewCompound(children...)
}

func isIdentity(t actor.Transform) bool {
	return t.Position.Len() < 1e-12 && t.Rotation.ApproxEqual(mgl64.QuatIdent())
}

// sanitize fixes zero-value transforms coming from the host
func sanitize(t actor.Transform) actor.Transform {
	return actor.TransformFrom(t.Position, t.Rotation)
}
