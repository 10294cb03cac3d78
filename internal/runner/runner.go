// Package runner loads a scene into a physics server and drives it through
// the frame protocol, recording what the host would observe.
package runner

import (
	"fmt"
	"time"

	"github.com/akmonengine/featherserver/actor"
	"github.com/akmonengine/featherserver/internal/config"
	"github.com/akmonengine/featherserver/rid"
	"github.com/akmonengine/featherserver/server"
	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"
)

// Event is an area monitor event with names instead of handles
type Event struct {
	Frame  int
	Area   string
	Object string
	Status server.AreaBodyStatus
}

type Result struct {
	Frames   int
	Heights  map[string][]float64
	Final    map[string]mgl64.Vec3
	Contacts []int
	Events   []Event
	Elapsed  time.Duration
}

// World is a scene loaded into one space of a server
type World struct {
	srv    *server.Server
	space  rid.RID
	logger *zap.Logger

	bodies []string
	names  map[rid.RID]string
	byName map[string]rid.RID

	frame  int
	events []Event
}

var modes = map[string]server.BodyMode{
	"":             server.BodyModeRigid,
	"rigid":        server.BodyModeRigid,
	"static":       server.BodyModeStatic,
	"kinematic":    server.BodyModeKinematic,
	"rigid_linear": server.BodyModeRigidLinear,
}

func vec(v [3]float64) mgl64.Vec3 {
	return mgl64.Vec3{v[0], v[1], v[2]}
}

func at(v [3]float64) actor.Transform {
	return actor.TransformFrom(vec(v), mgl64.QuatIdent())
}

// Build creates one active space holding every object of scene
func Build(srv *server.Server, scene *config.Scene, logger *zap.Logger) (*World, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	w := &World{
		srv:    srv,
		space:  srv.SpaceCreate(),
		logger: logger,
		names:  make(map[rid.RID]string),
		byName: make(map[string]rid.RID),
	}

	for _, b := range scene.Bodies {
		if err := w.addBody(b); err != nil {
			return nil, fmt.Errorf("body %q: %w", b.Name, err)
		}
	}
	for i, a := range scene.Areas {
		if err := w.addArea(i, a); err != nil {
			return nil, fmt.Errorf("area %d: %w", i, err)
		}
	}
	for i, j := range scene.Joints {
		if err := w.addJoint(j); err != nil {
			return nil, fmt.Errorf("joint %d: %w", i, err)
		}
	}

	if err := srv.SpaceSetActive(w.space, true); err != nil {
		return nil, err
	}
	logger.Info("scene loaded",
		zap.Stringer("space", w.space),
		zap.Int("bodies", len(scene.Bodies)),
		zap.Int("areas", len(scene.Areas)),
		zap.Int("joints", len(scene.Joints)))

	return w, nil
}

func (w *World) Space() rid.RID {
	return w.space
}

// Body returns the handle of the named body
func (w *World) Body(name string) (rid.RID, bool) {
	r, ok := w.byName[name]
	return r, ok
}

func (w *World) shape(s config.SceneShape) (rid.RID, error) {
	switch s.Type {
	case "sphere":
		r := w.srv.SphereShapeCreate()
		return r, w.srv.ShapeSetData(r, s.Radius)
	case "box":
		r := w.srv.BoxShapeCreate()
		return r, w.srv.ShapeSetData(r, vec(s.HalfExtents))
	case "plane":
		r := w.srv.WorldBoundaryShapeCreate()
		return r, w.srv.ShapeSetData(r, server.Plane{Normal: vec(s.Normal), D: s.Distance})
	}
	return rid.Invalid, fmt.Errorf("%w: shape type %q", server.ErrInvalidArgument, s.Type)
}

func (w *World) addBody(b config.SceneBody) error {
	body := w.srv.BodyCreate()
	w.bodies = append(w.bodies, b.Name)
	w.names[body] = b.Name
	w.byName[b.Name] = body

	for _, s := range b.Shapes {
		shape, err := w.shape(s)
		if err != nil {
			return err
		}
		if err := w.srv.BodyAddShape(body, shape, at(s.Offset), false); err != nil {
			return err
		}
	}

	if err := w.srv.BodySetMode(body, modes[b.Mode]); err != nil {
		return err
	}
	if b.Mass > 0 {
		if err := w.srv.BodySetParam(body, server.BodyParamMass, b.Mass); err != nil {
			return err
		}
	}
	if err := w.srv.BodySetParam(body, server.BodyParamBounce, b.Bounce); err != nil {
		return err
	}
	if b.Friction != nil {
		if err := w.srv.BodySetParam(body, server.BodyParamFriction, *b.Friction); err != nil {
			return err
		}
	}
	if b.Layer != 0 {
		if err := w.srv.BodySetCollisionLayer(body, b.Layer); err != nil {
			return err
		}
	}
	if b.Mask != 0 {
		if err := w.srv.BodySetCollisionMask(body, b.Mask); err != nil {
			return err
		}
	}
	if err := w.srv.BodySetTransform(body, at(b.Position)); err != nil {
		return err
	}
	if err := w.srv.BodySetState(body, server.BodyStateLinearVelocity, vec(b.Velocity)); err != nil {
		return err
	}

	return w.srv.BodySetSpace(body, w.space)
}

func (w *World) addArea(idx int, a config.SceneArea) error {
	area := w.srv.AreaCreate()
	name := a.Name
	if name == "" {
		name = fmt.Sprintf("area%d", idx)
	}
	w.names[area] = name

	for _, s := range a.Shapes {
		shape, err := w.shape(s)
		if err != nil {
			return err
		}
		if err := w.srv.AreaAddShape(area, shape, at(s.Offset), false); err != nil {
			return err
		}
	}
	if err := w.srv.AreaSetTransform(area, at(a.Position)); err != nil {
		return err
	}

	record := func(event server.AreaMonitorEvent) {
		w.events = append(w.events, Event{
			Frame:  w.frame,
			Area:   name,
			Object: w.names[event.Object],
			Status: event.Status,
		})
	}
	if err := w.srv.AreaSetMonitorCallback(area, record); err != nil {
		return err
	}
	if err := w.srv.AreaSetAreaMonitorCallback(area, record); err != nil {
		return err
	}
	if err := w.srv.AreaSetMonitorable(area, true); err != nil {
		return err
	}

	return w.srv.AreaSetSpace(area, w.space)
}

func (w *World) addJoint(j config.SceneJoint) error {
	joint := w.srv.JointCreate()
	if err := w.srv.JointDisableCollisionsBetweenBodies(joint, j.NoCollide); err != nil {
		return err
	}
	return w.srv.JointMakePin(joint, w.byName[j.BodyA], vec(j.LocalA), w.byName[j.BodyB], vec(j.LocalB))
}

// Run steps the scene frames times with dt, syncing after every step
func (w *World) Run(frames int, dt float64) (*Result, error) {
	result := &Result{
		Frames:   frames,
		Heights:  make(map[string][]float64, len(w.bodies)),
		Final:    make(map[string]mgl64.Vec3, len(w.bodies)),
		Contacts: make([]int, 0, frames),
	}

	start := time.Now()
	for w.frame = 0; w.frame < frames; w.frame++ {
		if err := w.srv.Step(dt); err != nil {
			return nil, fmt.Errorf("frame %d: %w", w.frame, err)
		}

		w.srv.Sync()
		err := w.srv.FlushQueries()
		if err == nil {
			err = w.sample(result)
		}
		w.srv.EndSync()
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", w.frame, err)
		}
	}
	result.Elapsed = time.Since(start)
	result.Events = w.events

	for _, name := range w.bodies {
		xform, err := w.srv.BodyGetTransform(w.byName[name])
		if err != nil {
			return nil, err
		}
		result.Final[name] = xform.Position
	}

	w.logger.Info("scene finished",
		zap.Int("frames", frames),
		zap.Duration("elapsed", result.Elapsed),
		zap.Int("events", len(result.Events)))

	return result, nil
}

func (w *World) sample(result *Result) error {
	for _, name := range w.bodies {
		xform, err := w.srv.BodyGetTransform(w.byName[name])
		if err != nil {
			return err
		}
		result.Heights[name] = append(result.Heights[name], xform.Position.Y())
	}

	contacts, err := w.srv.SpaceGetContactCount(w.space)
	if err != nil {
		return err
	}
	result.Contacts = append(result.Contacts, contacts)
	return nil
}
