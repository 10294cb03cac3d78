package server

import (
	"github.com/akmonengine/featherserver/rid"
	"go.uber.org/zap"
)

func (s *Server) createShape(shapeType ShapeType) rid.RID {
	shape := newShape(shapeType)
	shape.rid = s.shapes.MakeRID(shape)
	s.logger.Debug("shape created", zap.Stringer("shape", shape.rid), zap.Stringer("type", shapeType))
	return shape.rid
}

func (s *Server) WorldBoundaryShapeCreate() rid.RID {
	return s.createShape(ShapeTypeWorldBoundary)
}

func (s *Server) SphereShapeCreate() rid.RID {
	return s.createShape(ShapeTypeSphere)
}

func (s *Server) BoxShapeCreate() rid.RID {
	return s.createShape(ShapeTypeBox)
}

func (s *Server) SeparationRayShapeCreate() (rid.RID, error) {
	return rid.Invalid, s.notImplemented("separation ray shape")
}

func (s *Server) CapsuleShapeCreate() (rid.RID, error) {
	return rid.Invalid, s.notImplemented("capsule shape")
}

func (s *Server) CylinderShapeCreate() (rid.RID, error) {
	return rid.Invalid, s.notImplemented("cylinder shape")
}

func (s *Server) ConvexPolygonShapeCreate() (rid.RID, error) {
	return rid.Invalid, s.notImplemented("convex polygon shape")
}

func (s *Server) ConcavePolygonShapeCreate() (rid.RID, error) {
	return rid.Invalid, s.notImplemented("concave polygon shape")
}

func (s *Server) HeightmapShapeCreate() (rid.RID, error) {
	return rid.Invalid, s.notImplemented("heightmap shape")
}

func (s *Server) CustomShapeCreate() (rid.RID, error) {
	return rid.Invalid, s.notImplemented("custom shape")
}

// ShapeSetData takes a float64 radius for spheres, an mgl64.Vec3 of half
// extents for boxes and a Plane for world boundaries. The owner, if any, is
// rebuilt with the new geometry.
func (s *Server) ShapeSetData(shapeRID rid.RID, data any) error {
	shape, err := s.shape(shapeRID)
	if err != nil {
		return err
	}
	if shape.owner != nil && shape.owner.object().locked() {
		return ErrSpaceLocked
	}
	if err := shape.setData(data); err != nil {
		return err
	}
	if shape.owner != nil {
		shape.owner.object().rebuild()
	}
	return nil
}

func (s *Server) ShapeGetData(shapeRID rid.RID) (any, error) {
	shape, err := s.shape(shapeRID)
	if err != nil {
		return nil, err
	}
	return shape.data(), nil
}

func (s *Server) ShapeGetType(shapeRID rid.RID) (ShapeType, error) {
	shape, err := s.shape(shapeRID)
	if err != nil {
		return 0, err
	}
	return shape.shapeType, nil
}

func (s *Server) ShapeSetMargin(shapeRID rid.RID, margin float64) error {
	if _, err := s.shape(shapeRID); err != nil {
		return err
	}
	return s.notImplemented("shape margin")
}

func (s *Server) ShapeGetMargin(shapeRID rid.RID) (float64, error) {
	if _, err := s.shape(shapeRID); err != nil {
		return 0, err
	}
	return 0, s.notImplemented("shape margin")
}

func (s *Server) ShapeSetCustomSolverBias(shapeRID rid.RID, bias float64) error {
	if _, err := s.shape(shapeRID); err != nil {
		return err
	}
	return s.notImplemented("shape custom solver bias")
}

func (s *Server) ShapeGetCustomSolverBias(shapeRID rid.RID) (float64, error) {
	if _, err := s.shape(shapeRID); err != nil {
		return 0, err
	}
	return 0, s.notImplemented("shape custom solver bias")
}
