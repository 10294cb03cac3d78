package server

import (
	"fmt"

	"github.com/akmonengine/featherserver/actor"
	"github.com/akmonengine/featherserver/engine"
	"github.com/akmonengine/featherserver/rid"
	"github.com/go-gl/mathgl/mgl64"
)

type ShapeType int

const (
	ShapeTypeWorldBoundary ShapeType = iota
	ShapeTypeSeparationRay
	ShapeTypeSphere
	ShapeTypeBox
	ShapeTypeCapsule
	ShapeTypeCylinder
	ShapeTypeConvexPolygon
	ShapeTypeConcavePolygon
	ShapeTypeHeightmap
	ShapeTypeCustom
)

func (t ShapeType) String() string {
	switch t {
	case ShapeTypeWorldBoundary:
		return "world_boundary"
	case ShapeTypeSphere:
		return "sphere"
	case ShapeTypeBox:
		return "box"
	}
	return fmt.Sprintf("shape_type(%d)", int(t))
}

// Plane is the data of a world boundary shape: points p with
// Normal · p = D lie on the boundary
type Plane struct {
	Normal mgl64.Vec3
	D      float64
}

// Shape is a geometry resource. It is owned by its table and referenced by at
// most one collision object at a time.
type Shape struct {
	rid       rid.RID
	shapeType ShapeType

	radius      float64
	halfExtents mgl64.Vec3
	plane       Plane

	// owner is a lookup-only back-reference
	owner collisionObject
}

func newShape(shapeType ShapeType) *Shape {
	return &Shape{
		shapeType:   shapeType,
		radius:      0.5,
		halfExtents: mgl64.Vec3{0.5, 0.5, 0.5},
		plane:       Plane{Normal: mgl64.Vec3{0, 1, 0}},
	}
}

func (s *Shape) RID() rid.RID    { return s.rid }
func (s *Shape) Type() ShapeType { return s.shapeType }

func (s *Shape) Owner() collisionObject {
	return s.owner
}

// data returns the value ShapeGetData reports
func (s *Shape) data() any {
	switch s.shapeType {
	case ShapeTypeSphere:
		return s.radius
	case ShapeTypeBox:
		return s.halfExtents
	case ShapeTypeWorldBoundary:
		return s.plane
	}
	return nil
}

func (s *Shape) setData(data any) error {
	switch s.shapeType {
	case ShapeTypeSphere:
		radius, ok := data.(float64)
		if !ok || radius <= 0 {
			return fmt.Errorf("%w: sphere radius %v", ErrInvalidArgument, data)
		}
		s.radius = radius
	case ShapeTypeBox:
		halfExtents, ok := data.(mgl64.Vec3)
		if !ok || halfExtents.X() <= 0 || halfExtents.Y() <= 0 || halfExtents.Z() <= 0 {
			return fmt.Errorf("%w: box half extents %v", ErrInvalidArgument, data)
		}
		s.halfExtents = halfExtents
	case ShapeTypeWorldBoundary:
		plane, ok := data.(Plane)
		if !ok || plane.Normal.Len() < 1e-9 {
			return fmt.Errorf("%w: world boundary %v", ErrInvalidArgument, data)
		}
		plane.Normal = plane.Normal.Normalize()
		s.plane = plane
	default:
		return fmt.Errorf("%w: %s data", ErrNotImplemented, s.shapeType)
	}
	return nil
}

// build creates a fresh engine shape through the installed factory. A world
// boundary placed by a local transform is folded into the plane itself.
func (s *Shape) build(local actor.Transform) (actor.Shape, error) {
	switch s.shapeType {
	case ShapeTypeSphere:
		return engine.BuildShape(actor.ShapeTypeSphere, engine.ShapeParams{Radius: s.radius})
	case ShapeTypeBox:
		return engine.BuildShape(actor.ShapeTypeBox, engine.ShapeParams{HalfExtents: s.halfExtents})
	case ShapeTypeWorldBoundary:
		normal := local.Rotation.Rotate(s.plane.Normal)
		return engine.BuildShape(actor.ShapeTypePlane, engine.ShapeParams{
			Normal:   normal,
			Distance: s.plane.D + normal.Dot(local.Position),
		})
	}
	return nil, fmt.Errorf("%w: %s", ErrNotImplemented, s.shapeType)
}
