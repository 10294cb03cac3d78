package engine

import (
	"context"
	"math"

	"github.com/akmonengine/featherserver/actor"
	"github.com/akmonengine/featherserver/constraint"
	"github.com/go-gl/mathgl/mgl64"
)

// Settings tune a World
type Settings struct {
	Substeps      int
	CellSize      float64
	Cells         int
	SleepTime     float64
	SleepVelocity float64
}

func DefaultSettings() Settings {
	return Settings{
		Substeps:      8,
		CellSize:      4,
		Cells:         4096,
		SleepTime:     0.5,
		SleepVelocity: 0.05,
	}
}

type World struct {
	Bodies []*actor.RigidBody
	// Gravity acceleration (m/s², or N/kg)
	Gravity  mgl64.Vec3
	Settings Settings

	SpatialGrid *SpatialGrid
	Jobs        *JobSystem
	Filter      GroupFilter

	Events Events

	joints       []constraint.Constraint
	nextID       uint64
	contactCount int
}

// NewWorld builds an empty world. A nil job system runs every phase inline;
// a nil filter uses layer/mask filtering.
func NewWorld(jobs *JobSystem, filter GroupFilter, settings Settings) *World {
	defaults := DefaultSettings()
	if settings.Substeps <= 0 {
		settings.Substeps = defaults.Substeps
	}
	if settings.CellSize <= 0 {
		settings.CellSize = defaults.CellSize
	}
	if settings.Cells <= 0 {
		settings.Cells = defaults.Cells
	}
	if filter == nil {
		filter = LayerMaskFilter{}
	}

	return &World{
		Gravity:     mgl64.Vec3{0, -9.8, 0},
		Settings:    settings,
		SpatialGrid: NewSpatialGrid(settings.CellSize, settings.Cells),
		Jobs:        jobs,
		Filter:      filter,
		Events:      NewEvents(),
	}
}

// AddBody adds a rigid body to the world and gives it a world-unique ID
func (w *World) AddBody(body *actor.RigidBody) {
	w.nextID++
	body.ID = w.nextID
	w.Bodies = append(w.Bodies, body)
}

// RemoveBody removes a rigid body from the world, keeping insertion order
func (w *World) RemoveBody(body *actor.RigidBody) {
	k := -1
	for i, b := range w.Bodies {
		if b == body {
			k = i
			break
		}
	}
	assert(k != -1, "k != -1", "RemoveBody: body is not in this world")

	if k != -1 {
		w.Bodies = append(w.Bodies[:k], w.Bodies[k+1:]...)
	}
	w.Events.forget(body)
}

func (w *World) HasBody(body *actor.RigidBody) bool {
	for _, b := range w.Bodies {
		if b == body {
			return true
		}
	}
	return false
}

// AddConstraint registers a persistent constraint such as a joint
func (w *World) AddConstraint(c constraint.Constraint) {
	w.joints = append(w.joints, c)
}

func (w *World) RemoveConstraint(c constraint.Constraint) bool {
	for i, existing := range w.joints {
		if existing == c {
			w.joints = append(w.joints[:i], w.joints[i+1:]...)
			return true
		}
	}
	return false
}

func (w *World) ConstraintCount() int {
	return len(w.joints)
}

// ContactCount is the number of solved contacts in the last substep of the last step
func (w *World) ContactCount() int {
	return w.contactCount
}

func (w *World) Step(dt float64) error {
	ctx := context.Background()
	h := dt / float64(w.Settings.Substeps)

	for range w.Settings.Substeps {
		if err := w.integrate(ctx, h); err != nil {
			return err
		}

		contacts, err := w.detectCollision(ctx)
		if err != nil {
			return err
		}
		contacts = w.Events.recordCollisions(contacts)
		w.contactCount = len(contacts)

		// one iteration is enough thanks to substeps
		w.solvePosition(h, contacts)

		if err := w.update(ctx, h); err != nil {
			return err
		}

		w.solveVelocity(h, contacts)
		w.trySleep(h)

		for _, c := range contacts {
			releaseContacts(c.Points)
		}
	}

	w.checkFinite()
	w.Events.processSleepEvents(w.Bodies)
	w.Events.flush()
	tracef("step dt=%.4f bodies=%d contacts=%d joints=%d", dt, len(w.Bodies), w.contactCount, len(w.joints))

	return nil
}

func (w *World) integrate(ctx context.Context, h float64) error {
	return ForEach(ctx, w.Jobs, w.Bodies, func(body *actor.RigidBody) {
		body.Integrate(h, w.Gravity)
	})
}

func (w *World) detectCollision(ctx context.Context) ([]*constraint.ContactConstraint, error) {
	w.SpatialGrid.Build(w.Bodies)
	pairs := w.SpatialGrid.FindPairs(w.Bodies)

	n := 0
	for _, pair := range pairs {
		if w.Filter.CanCollide(pair.BodyA, pair.BodyB) {
			pairs[n] = pair
			n++
		}
	}
	pairs = pairs[:n]

	results := make([]*constraint.ContactConstraint, len(pairs))
	err := w.Jobs.Run(ctx, len(pairs), func(start, end int) error {
		for i := start; i < end; i++ {
			results[i] = Collide(pairs[i])
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	contacts := results[:0]
	for _, c := range results {
		if c != nil {
			contacts = append(contacts, c)
		}
	}
	return contacts, nil
}

// solvePosition runs serially: two contacts may share a body
func (w *World) solvePosition(h float64, contacts []*constraint.ContactConstraint) {
	for _, c := range contacts {
		c.SolvePosition(h)
	}
	for _, j := range w.joints {
		j.SolvePosition(h)
	}
}

func (w *World) update(ctx context.Context, h float64) error {
	return ForEach(ctx, w.Jobs, w.Bodies, func(body *actor.RigidBody) {
		body.Update(h)
	})
}

func (w *World) solveVelocity(h float64, contacts []*constraint.ContactConstraint) {
	for _, c := range contacts {
		c.SolveVelocity(h)
	}
	for _, j := range w.joints {
		j.SolveVelocity(h)
	}
}

// trySleep is too cheap per body to be worth a job
func (w *World) trySleep(h float64) {
	for _, body := range w.Bodies {
		body.TrySleep(h, w.Settings.SleepTime, w.Settings.SleepVelocity)
		if !body.IsSleeping {
			body.Shape.ComputeAABB(body.Transform)
		}
	}
}

func (w *World) checkFinite() {
	for _, body := range w.Bodies {
		p := body.Transform.Position
		ok := !math.IsNaN(p.X()+p.Y()+p.Z()) && !math.IsInf(p.X()+p.Y()+p.Z(), 0)
		assert(ok, "isFinite(body.Position)", "body position diverged")
	}
}
