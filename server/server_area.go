package server

import (
	"fmt"

	"github.com/akmonengine/featherserver/actor"
	"github.com/akmonengine/featherserver/rid"
	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"
)

func (s *Server) AreaCreate() rid.RID {
	area := newArea(s.logger, s.cfg.Gravity, 0, 0)
	area.rid = s.areas.MakeRID(area)
	s.logger.Debug("area created", zap.Stringer("area", area.rid))
	return area.rid
}

// paramArea resolves a space RID to its default area
func (s *Server) paramArea(r rid.RID) (*Area, error) {
	if space := s.spaces.GetOrNull(r); space != nil {
		return space.defaultArea, nil
	}
	return s.area(r)
}

// userArea refuses default areas, which only their space may move
func (s *Server) userArea(r rid.RID) (*Area, error) {
	area, err := s.mutableArea(r)
	if err != nil {
		return nil, err
	}
	if area.defaultOf != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, ErrDefaultAreaOwned)
	}
	return area, nil
}

func (s *Server) AreaSetSpace(areaRID, spaceRID rid.RID) error {
	area, err := s.userArea(areaRID)
	if err != nil {
		return err
	}
	return s.assignSpace(&area.objectBase, spaceRID)
}

func (s *Server) AreaGetSpace(areaRID rid.RID) (rid.RID, error) {
	area, err := s.area(areaRID)
	if err != nil {
		return rid.Invalid, err
	}
	return spaceRIDOf(&area.objectBase), nil
}

func (s *Server) AreaAddShape(areaRID, shapeRID rid.RID, transform actor.Transform, disabled bool) error {
	area, err := s.userArea(areaRID)
	if err != nil {
		return err
	}
	return s.addShape(&area.objectBase, shapeRID, transform, disabled)
}

func (s *Server) AreaSetShape(areaRID rid.RID, idx int, shapeRID rid.RID) error {
	area, err := s.userArea(areaRID)
	if err != nil {
		return err
	}
	return s.setShape(&area.objectBase, idx, shapeRID)
}

func (s *Server) AreaSetShapeTransform(areaRID rid.RID, idx int, transform actor.Transform) error {
	area, err := s.userArea(areaRID)
	if err != nil {
		return err
	}
	return area.setShapeTransform(idx, sanitize(transform))
}

func (s *Server) AreaSetShapeDisabled(areaRID rid.RID, idx int, disabled bool) error {
	area, err := s.userArea(areaRID)
	if err != nil {
		return err
	}
	return area.setShapeDisabled(idx, disabled)
}

func (s *Server) AreaGetShapeCount(areaRID rid.RID) (int, error) {
	area, err := s.area(areaRID)
	if err != nil {
		return 0, err
	}
	return area.shapeCount(), nil
}

func (s *Server) AreaGetShape(areaRID rid.RID, idx int) (rid.RID, error) {
	area, err := s.area(areaRID)
	if err != nil {
		return rid.Invalid, err
	}
	return s.shapeRIDAt(&area.objectBase, idx)
}

func (s *Server) AreaGetShapeTransform(areaRID rid.RID, idx int) (actor.Transform, error) {
	area, err := s.area(areaRID)
	if err != nil {
		return actor.Transform{}, err
	}
	return area.shapeTransform(idx)
}

func (s *Server) AreaRemoveShape(areaRID rid.RID, idx int) error {
	area, err := s.userArea(areaRID)
	if err != nil {
		return err
	}
	return area.removeShape(idx)
}

func (s *Server) AreaClearShapes(areaRID rid.RID) error {
	area, err := s.userArea(areaRID)
	if err != nil {
		return err
	}
	area.clearShapes()
	return nil
}

func (s *Server) AreaAttachObjectInstanceID(areaRID rid.RID, id int64) error {
	area, err := s.area(areaRID)
	if err != nil {
		return err
	}
	area.instanceID = id
	return nil
}

func (s *Server) AreaGetObjectInstanceID(areaRID rid.RID) (int64, error) {
	area, err := s.area(areaRID)
	if err != nil {
		return -1, err
	}
	return area.instanceID, nil
}

func (s *Server) AreaSetTransform(areaRID rid.RID, transform actor.Transform) error {
	area, err := s.userArea(areaRID)
	if err != nil {
		return err
	}
	area.setTransform(sanitize(transform))
	return nil
}

func (s *Server) AreaGetTransform(areaRID rid.RID) (actor.Transform, error) {
	area, err := s.area(areaRID)
	if err != nil {
		return actor.Transform{}, err
	}
	return area.getTransform(), nil
}

func (s *Server) AreaSetCollisionLayer(areaRID rid.RID, layer uint32) error {
	area, err := s.mutableArea(areaRID)
	if err != nil {
		return err
	}
	area.setCollisionLayer(layer)
	return nil
}

func (s *Server) AreaGetCollisionLayer(areaRID rid.RID) (uint32, error) {
	area, err := s.area(areaRID)
	if err != nil {
		return 0, err
	}
	return area.layer, nil
}

func (s *Server) AreaSetCollisionMask(areaRID rid.RID, mask uint32) error {
	area, err := s.mutableArea(areaRID)
	if err != nil {
		return err
	}
	area.setCollisionMask(mask)
	return nil
}

func (s *Server) AreaGetCollisionMask(areaRID rid.RID) (uint32, error) {
	area, err := s.area(areaRID)
	if err != nil {
		return 0, err
	}
	return area.mask, nil
}

func (s *Server) AreaSetRayPickable(areaRID rid.RID, pickable bool) error {
	area, err := s.area(areaRID)
	if err != nil {
		return err
	}
	area.rayPickable = pickable
	return nil
}

func (s *Server) AreaSetMonitorable(areaRID rid.RID, monitorable bool) error {
	area, err := s.area(areaRID)
	if err != nil {
		return err
	}
	area.monitorable = monitorable
	return nil
}

// AreaSetMonitorCallback receives bodies entering and leaving the area
func (s *Server) AreaSetMonitorCallback(areaRID rid.RID, callback MonitorCallback) error {
	area, err := s.area(areaRID)
	if err != nil {
		return err
	}
	area.monitorCallback = callback
	return nil
}

// AreaSetAreaMonitorCallback receives monitorable areas entering and leaving
func (s *Server) AreaSetAreaMonitorCallback(areaRID rid.RID, callback MonitorCallback) error {
	area, err := s.area(areaRID)
	if err != nil {
		return err
	}
	area.areaMonitorCallback = callback
	return nil
}

// AreaSetParam also accepts a space RID, addressing the default area of the
// space. Gravity vectors are mgl64.Vec3, GravityIsPoint is a bool and every
// other param is a float64.
func (s *Server) AreaSetParam(areaRID rid.RID, param AreaParam, value any) error {
	area, err := s.paramArea(areaRID)
	if err != nil {
		return err
	}
	if area.locked() {
		return ErrSpaceLocked
	}

	switch param {
	case AreaParamGravityVector:
		v, ok := value.(mgl64.Vec3)
		if !ok {
			return fmt.Errorf("%w: gravity vector %T", ErrInvalidArgument, value)
		}
		area.gravityVector = v
		return nil
	case AreaParamGravityIsPoint:
		point, ok := value.(bool)
		if !ok {
			return fmt.Errorf("%w: gravity is point %T", ErrInvalidArgument, value)
		}
		if point {
			return fmt.Errorf("%w: point gravity", ErrUnsupported)
		}
		return nil
	case AreaParamGravity, AreaParamLinearDamp, AreaParamAngularDamp, AreaParamPriority:
	default:
		return s.notImplemented(fmt.Sprintf("area param %d", param))
	}

	f, ok := value.(float64)
	if !ok {
		return fmt.Errorf("%w: area param %d %T", ErrInvalidArgument, param, value)
	}
	switch param {
	case AreaParamGravity:
		area.gravity = f
	case AreaParamLinearDamp:
		area.linearDamp = f
	case AreaParamAngularDamp:
		area.angularDamp = f
	case AreaParamPriority:
		area.priority = f
	}
	return nil
}

func (s *Server) AreaGetParam(areaRID rid.RID, param AreaParam) (any, error) {
	area, err := s.paramArea(areaRID)
	if err != nil {
		return nil, err
	}

	switch param {
	case AreaParamGravity:
		return area.gravity, nil
	case AreaParamGravityVector:
		return area.gravityVector, nil
	case AreaParamGravityIsPoint:
		return false, nil
	case AreaParamLinearDamp:
		return area.linearDamp, nil
	case AreaParamAngularDamp:
		return area.angularDamp, nil
	case AreaParamPriority:
		return area.priority, nil
	}
	return nil, s.notImplemented(fmt.Sprintf("area param %d", param))
}
