// Package server exposes a retained-mode physics world through opaque
// handles. The host drives it once per frame with Step, Sync, FlushQueries
// and EndSync.
package server

import (
	"fmt"
	"slices"

	"github.com/akmonengine/featherserver/engine"
	"github.com/akmonengine/featherserver/internal/config"
	"github.com/akmonengine/featherserver/rid"
	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

type ProcessInfo int

const (
	ProcessInfoActiveObjects ProcessInfo = iota
	ProcessInfoCollisionPairs
	ProcessInfoIslandCount
)

// Server owns every physics object and drives the active spaces. It must be
// used from a single goroutine.
type Server struct {
	id     uuid.UUID
	cfg    config.Physics
	logger *zap.Logger

	statics *statics

	shapes *rid.Owner[Shape]
	bodies *rid.Owner[Body]
	areas  *rid.Owner[Area]
	spaces *rid.Owner[Space]
	joints *rid.Owner[Joint]

	activeSpaces []*Space

	active          bool
	doingSync       bool
	flushingQueries bool
	stepping        bool
}

func New(cfg config.Physics, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	id := uuid.New()

	return &Server{
		id:     id,
		cfg:    cfg,
		logger: logger.With(zap.Stringer("server_id", id)),
		shapes: rid.NewOwner[Shape](rid.KindShape),
		bodies: rid.NewOwner[Body](rid.KindBody),
		areas:  rid.NewOwner[Area](rid.KindArea),
		spaces: rid.NewOwner[Space](rid.KindSpace),
		joints: rid.NewOwner[Joint](rid.KindJoint),
		active: true,
	}
}

func (s *Server) ID() uuid.UUID {
	return s.id
}

// Init acquires the process-wide engine state
func (s *Server) Init() {
	if s.statics != nil {
		return
	}
	s.statics = acquireStatics(s.cfg, s.logger)

	// shapes attached before the factory was installed were left empty
	s.bodies.Each(func(_ rid.RID, b *Body) bool {
		b.rebuild()
		return true
	})
	s.areas.Each(func(_ rid.RID, a *Area) bool {
		a.rebuild()
		return true
	})

	s.logger.Info("physics server initialized")
}

// Finish releases the engine state; the last server tears it down
func (s *Server) Finish() {
	if s.statics == nil {
		return
	}
	s.statics = nil
	releaseStatics(s.logger)
	s.logger.Info("physics server finished",
		zap.Int("spaces", s.spaces.Count()),
		zap.Int("bodies", s.bodies.Count()),
		zap.Int("areas", s.areas.Count()),
		zap.Int("shapes", s.shapes.Count()),
		zap.Int("joints", s.joints.Count()))
}

func (s *Server) SetActive(active bool) {
	s.active = active
}

func (s *Server) IsActive() bool {
	return s.active
}

// Step advances every active space by dt
func (s *Server) Step(dt float64) error {
	if !s.active {
		return nil
	}
	if s.stepping || s.flushingQueries {
		return ErrReentrantStep
	}
	if s.statics == nil {
		return ErrNotInitialized
	}
	if s.doingSync {
		return ErrSyncWindowOpen
	}
	if dt <= 0 {
		return fmt.Errorf("%w: step %v", ErrInvalidArgument, dt)
	}

	s.stepping = true
	defer func() { s.stepping = false }()

	var err error
	for _, space := range s.activeSpaces {
		space.world.Jobs = s.statics.jobs
		if stepErr := space.Step(dt); stepErr != nil {
			err = multierr.Append(err, fmt.Errorf("space %s: %w", space.rid, stepErr))
		}
	}
	return err
}

// Sync opens the window in which direct state may be read
func (s *Server) Sync() {
	s.doingSync = true
}

// FlushQueries delivers the callbacks queued by the last step
func (s *Server) FlushQueries() error {
	if !s.active {
		return nil
	}
	if s.stepping || s.flushingQueries {
		return ErrReentrantStep
	}

	s.flushingQueries = true
	defer func() { s.flushingQueries = false }()

	for _, space := range slices.Clone(s.activeSpaces) {
		if !space.freed {
			space.CallQueries()
		}
	}
	return nil
}

func (s *Server) EndSync() {
	s.doingSync = false
}

func (s *Server) IsFlushingQueries() bool {
	return s.flushingQueries
}

func (s *Server) GetProcessInfo(info ProcessInfo) int {
	total := 0
	for _, space := range s.activeSpaces {
		switch info {
		case ProcessInfoActiveObjects:
			for _, b := range space.bodies {
				if b.moved() {
					total++
				}
			}
		case ProcessInfoCollisionPairs:
			total += space.contactCount
		case ProcessInfoIslandCount:
			total++
		}
	}
	return total
}

// Free destroys the object behind r, checking shapes, bodies, areas, spaces
// and joints in that order
func (s *Server) Free(r rid.RID) error {
	switch {
	case s.shapes.Owns(r):
		return s.freeShape(r)
	case s.bodies.Owns(r):
		return s.freeBody(r)
	case s.areas.Owns(r):
		return s.freeArea(r)
	case s.spaces.Owns(r):
		return s.freeSpace(r)
	case s.joints.Owns(r):
		return s.freeJoint(r)
	}
	return fmt.Errorf("%w: %s", ErrInvalidHandle, r)
}

func (s *Server) freeShape(r rid.RID) error {
	shape := s.shapes.GetOrNull(r)
	if owner := shape.owner; owner != nil {
		if owner.object().locked() {
			return ErrSpaceLocked
		}
		owner.object().removeShapeRef(shape)
	}

	s.shapes.Free(r)
	s.logger.Debug("shape freed", zap.Stringer("shape", r))
	return nil
}

func (s *Server) freeBody(r rid.RID) error {
	body := s.bodies.GetOrNull(r)
	if body.locked() {
		return ErrSpaceLocked
	}

	for _, j := range slices.Clone(body.joints) {
		j.release()
	}
	s.bodies.Each(func(_ rid.RID, other *Body) bool {
		other.removeException(r)
		return true
	})
	body.setSpace(nil)
	for body.shapeCount() > 0 {
		_ = body.removeShape(0)
	}

	s.bodies.Free(r)
	s.logger.Debug("body freed", zap.Stringer("body", r))
	return nil
}

func (s *Server) freeArea(r rid.RID) error {
	area := s.areas.GetOrNull(r)
	if area.defaultOf != nil {
		return fmt.Errorf("%w: %w", ErrInvalidArgument, ErrDefaultAreaOwned)
	}
	if area.locked() {
		return ErrSpaceLocked
	}

	area.setSpace(nil)
	for area.shapeCount() > 0 {
		_ = area.removeShape(0)
	}

	s.areas.Free(r)
	s.logger.Debug("area freed", zap.Stringer("area", r))
	return nil
}

func (s *Server) freeSpace(r rid.RID) error {
	space := s.spaces.GetOrNull(r)
	if space.locked {
		return ErrSpaceLocked
	}

	s.setSpaceActive(space, false)

	for _, j := range slices.Clone(space.joints) {
		j.unbind()
	}
	for _, b := range slices.Clone(space.bodies) {
		b.setSpace(nil)
	}
	for _, a := range slices.Clone(space.areas) {
		a.setSpace(nil)
	}

	if area := space.defaultArea; area != nil {
		area.setSpace(nil)
		area.defaultOf = nil
		s.areas.Free(area.rid)
		space.defaultArea = nil
	}

	space.freed = true
	s.spaces.Free(r)
	s.logger.Debug("space freed", zap.Stringer("space", r))
	return nil
}

func (s *Server) freeJoint(r rid.RID) error {
	joint := s.joints.GetOrNull(r)
	if joint.space != nil && joint.space.locked {
		return ErrSpaceLocked
	}

	joint.destroy()
	s.joints.Free(r)
	s.logger.Debug("joint freed", zap.Stringer("joint", r))
	return nil
}

func (s *Server) setSpaceActive(space *Space, active bool) {
	idx := slices.Index(s.activeSpaces, space)
	switch {
	case active && idx < 0:
		s.activeSpaces = append(s.activeSpaces, space)
	case !active && idx >= 0:
		s.activeSpaces = slices.Delete(s.activeSpaces, idx, idx+1)
	}
}

func (s *Server) engineSettings() engine.Settings {
	return engine.Settings{
		Substeps:      s.cfg.Substeps,
		CellSize:      s.cfg.GridCellSize,
		Cells:         s.cfg.GridCells,
		SleepTime:     s.cfg.SleepTime,
		SleepVelocity: s.cfg.SleepVelocity,
	}
}

func (s *Server) shape(r rid.RID) (*Shape, error) {
	if shape := s.shapes.GetOrNull(r); shape != nil {
		return shape, nil
	}
	return nil, fmt.Errorf("%w: shape %s", ErrInvalidHandle, r)
}

func (s *Server) body(r rid.RID) (*Body, error) {
	if body := s.bodies.GetOrNull(r); body != nil {
		return body, nil
	}
	return nil, fmt.Errorf("%w: body %s", ErrInvalidHandle, r)
}

// mutableBody also refuses bodies whose space is stepping
func (s *Server) mutableBody(r rid.RID) (*Body, error) {
	body, err := s.body(r)
	if err != nil {
		return nil, err
	}
	if body.locked() {
		return nil, ErrSpaceLocked
	}
	return body, nil
}

func (s *Server) area(r rid.RID) (*Area, error) {
	if area := s.areas.GetOrNull(r); area != nil {
		return area, nil
	}
	return nil, fmt.Errorf("%w: area %s", ErrInvalidHandle, r)
}

func (s *Server) mutableArea(r rid.RID) (*Area, error) {
	area, err := s.area(r)
	if err != nil {
		return nil, err
	}
	if area.locked() {
		return nil, ErrSpaceLocked
	}
	return area, nil
}

func (s *Server) space(r rid.RID) (*Space, error) {
	if space := s.spaces.GetOrNull(r); space != nil {
		return space, nil
	}
	return nil, fmt.Errorf("%w: space %s", ErrInvalidHandle, r)
}

// optionalSpace resolves the zero RID to no space
func (s *Server) optionalSpace(r rid.RID) (*Space, error) {
	if !r.IsValid() {
		return nil, nil
	}
	return s.space(r)
}

func (s *Server) joint(r rid.RID) (*Joint, error) {
	if joint := s.joints.GetOrNull(r); joint != nil {
		return joint, nil
	}
	return nil, fmt.Errorf("%w: joint %s", ErrInvalidHandle, r)
}

func (s *Server) notImplemented(what string) error {
	return fmt.Errorf("%w: %s", ErrNotImplemented, what)
}
