package server

import (
	"fmt"

	"github.com/akmonengine/featherserver/actor"
	"github.com/akmonengine/featherserver/rid"
)

// Shape slot operations shared by the body and area entry points.

// slotShape reports an unknown shape as both an invalid argument and an
// invalid handle
func (s *Server) slotShape(shapeRID rid.RID) (*Shape, error) {
	shape, err := s.shape(shapeRID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	return shape, nil
}

func (s *Server) addShape(o *objectBase, shapeRID rid.RID, transform actor.Transform, disabled bool) error {
	shape, err := s.slotShape(shapeRID)
	if err != nil {
		return err
	}
	return o.addShape(shape, sanitize(transform), disabled)
}

func (s *Server) setShape(o *objectBase, idx int, shapeRID rid.RID) error {
	shape, err := s.slotShape(shapeRID)
	if err != nil {
		return err
	}
	return o.setShape(idx, shape)
}

func (s *Server) shapeRIDAt(o *objectBase, idx int) (rid.RID, error) {
	shape, err := o.shapeAt(idx)
	if err != nil {
		return rid.Invalid, err
	}
	return shape.rid, nil
}

func (s *Server) assignSpace(o *objectBase, spaceRID rid.RID) error {
	space, err := s.optionalSpace(spaceRID)
	if err != nil {
		return err
	}
	if space != nil && space.locked {
		return ErrSpaceLocked
	}
	o.setSpace(space)
	return nil
}

func spaceRIDOf(o *objectBase) rid.RID {
	if o.space == nil {
		return rid.Invalid
	}
	return o.space.rid
}
