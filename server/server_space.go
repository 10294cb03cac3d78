package server

import (
	"fmt"
	"slices"

	"github.com/akmonengine/featherserver/engine"
	"github.com/akmonengine/featherserver/rid"
	"go.uber.org/zap"
)

type SpaceParam int

const (
	SpaceParamContactRecycleRadius SpaceParam = iota
	SpaceParamContactMaxSeparation
	SpaceParamContactMaxAllowedPenetration
	SpaceParamContactDefaultBias
	SpaceParamBodyLinearVelocitySleepThreshold
	SpaceParamBodyAngularVelocitySleepThreshold
	SpaceParamBodyTimeToSleep
	SpaceParamSolverIterations
)

// SpaceCreate builds a space together with its default area
func (s *Server) SpaceCreate() rid.RID {
	var filter engine.GroupFilter = groupFilter{}
	if s.statics != nil {
		filter = s.statics.filter
	}

	// the job system is bound per step, it does not outlive Finish
	space := newSpace(s, nil, filter, s.engineSettings())
	space.rid = s.spaces.MakeRID(space)

	area := newArea(s.logger, s.cfg.Gravity, s.cfg.LinearDamp, s.cfg.AngularDamp)
	area.rid = s.areas.MakeRID(area)
	area.defaultOf = space
	space.defaultArea = area
	area.setSpace(space)

	s.logger.Debug("space created", zap.Stringer("space", space.rid), zap.Stringer("default_area", area.rid))
	return space.rid
}

func (s *Server) SpaceSetActive(spaceRID rid.RID, active bool) error {
	space, err := s.space(spaceRID)
	if err != nil {
		return err
	}
	s.setSpaceActive(space, active)
	return nil
}

func (s *Server) SpaceIsActive(spaceRID rid.RID) (bool, error) {
	space, err := s.space(spaceRID)
	if err != nil {
		return false, err
	}
	return slices.Contains(s.activeSpaces, space), nil
}

func (s *Server) SpaceSetParam(spaceRID rid.RID, param SpaceParam, value float64) error {
	if _, err := s.space(spaceRID); err != nil {
		return err
	}
	return s.notImplemented(fmt.Sprintf("space param %d", param))
}

func (s *Server) SpaceGetParam(spaceRID rid.RID, param SpaceParam) (float64, error) {
	if _, err := s.space(spaceRID); err != nil {
		return 0, err
	}
	return 0, s.notImplemented(fmt.Sprintf("space param %d", param))
}

func (s *Server) SpaceSetDebugContacts(spaceRID rid.RID, maxContacts int) error {
	if _, err := s.space(spaceRID); err != nil {
		return err
	}
	return s.notImplemented("space debug contacts")
}

func (s *Server) SpaceGetContacts(spaceRID rid.RID) ([]float64, error) {
	if _, err := s.space(spaceRID); err != nil {
		return nil, err
	}
	return nil, s.notImplemented("space contacts")
}

// SpaceGetContactCount returns the contacts of the last step
func (s *Server) SpaceGetContactCount(spaceRID rid.RID) (int, error) {
	space, err := s.space(spaceRID)
	if err != nil {
		return 0, err
	}
	return space.contactCount, nil
}

// SpaceGetDirectState is only available inside the sync window
func (s *Server) SpaceGetDirectState(spaceRID rid.RID) (*DirectSpaceState, error) {
	space, err := s.space(spaceRID)
	if err != nil {
		return nil, err
	}
	if !s.doingSync || space.locked {
		return nil, ErrStateUnavailable
	}
	return space.direct, nil
}
