package server

import (
	"slices"

	"github.com/akmonengine/featherserver/engine"
	"github.com/akmonengine/featherserver/rid"
	"go.uber.org/zap"
)

// Space is one simulation world with the bodies, areas and joints assigned to it
type Space struct {
	rid    rid.RID
	server *Server
	world  *engine.World

	bodies []*Body
	areas  []*Area
	joints []*Joint

	defaultArea  *Area
	locked       bool
	freed        bool
	contactCount int
	direct       *DirectSpaceState

	logger *zap.Logger
}

func newSpace(server *Server, jobs *engine.JobSystem, filter engine.GroupFilter, settings engine.Settings) *Space {
	s := &Space{
		server: server,
		world:  engine.NewWorld(jobs, filter, settings),
		logger: server.logger,
	}
	s.direct = &DirectSpaceState{space: s}

	s.world.Events.Subscribe(engine.TRIGGER_ENTER, s.onTrigger)
	s.world.Events.Subscribe(engine.TRIGGER_EXIT, s.onTrigger)

	return s
}

func (s *Space) RID() rid.RID {
	return s.rid
}

// IsLocked is true strictly while the engine steps
func (s *Space) IsLocked() bool {
	return s.locked
}

func (s *Space) DefaultArea() *Area {
	return s.defaultArea
}

func (s *Space) ContactCount() int {
	return s.contactCount
}

func (s *Space) Step(dt float64) error {
	s.applyDefaultArea()

	s.locked = true
	err := s.world.Step(dt)
	s.locked = false
	if err != nil {
		return err
	}

	s.contactCount = s.world.ContactCount()
	for _, b := range s.bodies {
		if b.moved() {
			b.syncPending = true
		}
	}

	return nil
}

// applyDefaultArea pushes the default area gravity and damping into the engine
func (s *Space) applyDefaultArea() {
	area := s.defaultArea
	if area == nil {
		return
	}

	s.world.Gravity = area.acceleration()
	for _, b := range s.bodies {
		if b.rb == nil {
			continue
		}
		b.rb.Material.LinearDamping = b.linearDamp + area.linearDamp
		b.rb.Material.AngularDamping = b.angularDamp + area.angularDamp
	}
}

// onTrigger runs inside the engine step: it only queues
func (s *Space) onTrigger(event engine.Event) {
	pair := event.(engine.PairEvent)

	status := AreaBodyAdded
	if pair.Kind == engine.TRIGGER_EXIT {
		status = AreaBodyRemoved
	}

	self, ok := pair.BodyA.UserData.(collisionObject)
	if !ok {
		return
	}
	other, ok := pair.BodyB.UserData.(collisionObject)
	if !ok {
		return
	}

	if area, ok := self.(*Area); ok {
		area.queue(other, status)
	}
	if area, ok := other.(*Area); ok {
		area.queue(self, status)
	}
}

// CallQueries delivers state sync callbacks, then area monitor events
func (s *Space) CallQueries() {
	for _, b := range slices.Clone(s.bodies) {
		if !b.syncPending {
			continue
		}
		b.syncPending = false
		if b.syncCallback != nil {
			b.syncCallback(b.directState())
		}
	}

	for _, a := range slices.Clone(s.areas) {
		a.flushMonitorEvents()
	}
}

func (s *Space) addJoint(j *Joint) {
	s.joints = append(s.joints, j)
	s.world.AddConstraint(j.native)
}

func (s *Space) removeJoint(j *Joint) {
	s.world.RemoveConstraint(j.native)
	s.joints = slices.DeleteFunc(s.joints, func(other *Joint) bool { return other == j })
}
