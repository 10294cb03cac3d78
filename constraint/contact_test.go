package constraint

import (
	"math"
	"testing"

	"github.com/akmonengine/featherserver/actor"
	"github.com/go-gl/mathgl/mgl64"
)

func createDynamicBody(position mgl64.Vec3, velocity mgl64.Vec3, density float64) *actor.RigidBody {
	rb := actor.NewRigidBody(
		actor.TransformFrom(position, mgl64.QuatIdent()),
		&actor.Sphere{Radius: 1.0},
		actor.BodyTypeDynamic,
		density,
	)

	rb.Velocity = velocity
	rb.PresolveVelocity = velocity
	rb.Material.Restitution = 0.5

	return rb
}

func createStaticBody(position mgl64.Vec3) *actor.RigidBody {
	return actor.NewRigidBody(
		actor.TransformFrom(position, mgl64.QuatIdent()),
		&actor.Box{HalfExtents: mgl64.Vec3{1, 1, 1}},
		actor.BodyTypeStatic,
		0.0,
	)
}

func TestContactConstraint_SolvePosition(t *testing.T) {
	t.Run("no penetration does nothing", func(t *testing.T) {
		a := createDynamicBody(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{}, 1)
		b := createDynamicBody(mgl64.Vec3{2, 0, 0}, mgl64.Vec3{}, 1)
		c := &ContactConstraint{BodyA: a, BodyB: b, Normal: mgl64.Vec3{1, 0, 0},
			Points: []ContactPoint{{Position: mgl64.Vec3{1, 0, 0}, Penetration: 0}}}

		c.SolvePosition(1.0 / 60.0)
		if a.Transform.Position != (mgl64.Vec3{}) || b.Transform.Position != (mgl64.Vec3{2, 0, 0}) {
			t.Errorf("bodies moved without penetration: %v %v", a.Transform.Position, b.Transform.Position)
		}
	})

	t.Run("equal masses split the correction", func(t *testing.T) {
		a := createDynamicBody(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{}, 1)
		b := createDynamicBody(mgl64.Vec3{1.8, 0, 0}, mgl64.Vec3{}, 1)
		c := &ContactConstraint{BodyA: a, BodyB: b, Normal: mgl64.Vec3{1, 0, 0},
			Points: []ContactPoint{{Position: mgl64.Vec3{0.9, 0, 0}, Penetration: 0.2}}}

		c.SolvePosition(1.0 / 60.0)
		gap := b.Transform.Position.X() - a.Transform.Position.X()
		if math.Abs(gap-2.0) > 1e-3 {
			t.Errorf("gap after solve = %v, want ~2", gap)
		}
		if math.Abs(a.Transform.Position.X()+0.1) > 1e-3 {
			t.Errorf("body A x = %v, want ~-0.1", a.Transform.Position.X())
		}
	})

	t.Run("static body does not move", func(t *testing.T) {
		ground := createStaticBody(mgl64.Vec3{0, -1, 0})
		ball := createDynamicBody(mgl64.Vec3{0, 0.9, 0}, mgl64.Vec3{}, 1)
		c := &ContactConstraint{BodyA: ground, BodyB: ball, Normal: mgl64.Vec3{0, 1, 0},
			Points: []ContactPoint{{Position: mgl64.Vec3{0, -0.05, 0}, Penetration: 0.1}}}

		c.SolvePosition(1.0 / 60.0)
		if ground.Transform.Position != (mgl64.Vec3{0, -1, 0}) {
			t.Errorf("static body moved to %v", ground.Transform.Position)
		}
		if math.Abs(ball.Transform.Position.Y()-1.0) > 1e-3 {
			t.Errorf("ball y = %v, want ~1", ball.Transform.Position.Y())
		}
	})

	t.Run("both sleeping is skipped", func(t *testing.T) {
		a := createDynamicBody(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{}, 1)
		b := createDynamicBody(mgl64.Vec3{1.5, 0, 0}, mgl64.Vec3{}, 1)
		a.Sleep()
		b.Sleep()
		c := &ContactConstraint{BodyA: a, BodyB: b, Normal: mgl64.Vec3{1, 0, 0},
			Points: []ContactPoint{{Position: mgl64.Vec3{0.75, 0, 0}, Penetration: 0.5}}}

		c.SolvePosition(1.0 / 60.0)
		if a.Transform.Position != (mgl64.Vec3{}) {
			t.Errorf("sleeping pair should not be solved")
		}
	})
}

func TestContactConstraint_SolveVelocity(t *testing.T) {
	t.Run("restitution bounces", func(t *testing.T) {
		ground := createStaticBody(mgl64.Vec3{0, -1, 0})
		ball := createDynamicBody(mgl64.Vec3{0, 1, 0}, mgl64.Vec3{0, -4, 0}, 1)
		ball.Material.Restitution = 1
		ground.Material.Restitution = 1
		c := &ContactConstraint{BodyA: ground, BodyB: ball, Normal: mgl64.Vec3{0, 1, 0},
			Points: []ContactPoint{{Position: mgl64.Vec3{0, 0, 0}, Penetration: 0.01}}}

		c.SolveVelocity(1.0 / 60.0)
		if math.Abs(ball.Velocity.Y()-4) > 1e-6 {
			t.Errorf("ball velocity = %v, want +4", ball.Velocity.Y())
		}
	})

	t.Run("slow approach does not bounce", func(t *testing.T) {
		ground := createStaticBody(mgl64.Vec3{0, -1, 0})
		ball := createDynamicBody(mgl64.Vec3{0, 1, 0}, mgl64.Vec3{0, -0.1, 0}, 1)
		c := &ContactConstraint{BodyA: ground, BodyB: ball, Normal: mgl64.Vec3{0, 1, 0},
			Points: []ContactPoint{{Position: mgl64.Vec3{0, 0, 0}, Penetration: 0.01}}}

		c.SolveVelocity(1.0 / 60.0)
		if ball.Velocity.Y() != 0 {
			t.Errorf("ball velocity = %v, want 0", ball.Velocity.Y())
		}
	})

	t.Run("separating bodies are left alone", func(t *testing.T) {
		ground := createStaticBody(mgl64.Vec3{0, -1, 0})
		ball := createDynamicBody(mgl64.Vec3{0, 1, 0}, mgl64.Vec3{0, 3, 0}, 1)
		c := &ContactConstraint{BodyA: ground, BodyB: ball, Normal: mgl64.Vec3{0, 1, 0},
			Points: []ContactPoint{{Position: mgl64.Vec3{0, 0, 0}, Penetration: 0.01}}}

		c.SolveVelocity(1.0 / 60.0)
		if ball.Velocity.Y() != 3 {
			t.Errorf("ball velocity = %v, want 3", ball.Velocity.Y())
		}
	})

	t.Run("friction slows sliding", func(t *testing.T) {
		ground := createStaticBody(mgl64.Vec3{0, -1, 0})
		ground.Material.StaticFriction, ground.Material.DynamicFriction = 0.5, 0.5
		ball := createDynamicBody(mgl64.Vec3{0, 1, 0}, mgl64.Vec3{2, -1, 0}, 1)
		ball.Material.StaticFriction, ball.Material.DynamicFriction = 0.5, 0.5
		ball.Material.Restitution = 0
		c := &ContactConstraint{BodyA: ground, BodyB: ball, Normal: mgl64.Vec3{0, 1, 0},
			Points: []ContactPoint{{Position: mgl64.Vec3{0, 0, 0}, Penetration: 0.01}}}

		c.SolveVelocity(1.0 / 60.0)
		if ball.Velocity.X() >= 2 || ball.Velocity.X() < 0 {
			t.Errorf("tangential velocity = %v, want in [0, 2)", ball.Velocity.X())
		}
	})
}

func TestContactConstraint_MaxPenetration(t *testing.T) {
	c := &ContactConstraint{Points: []ContactPoint{{Penetration: 0.1}, {Penetration: 0.3}, {Penetration: 0.2}}}
	if got := c.MaxPenetration(); got != 0.3 {
		t.Errorf("MaxPenetration() = %v, want 0.3", got)
	}
}

func TestPinJoint(t *testing.T) {
	t.Run("world anchor pulls body back", func(t *testing.T) {
		body := createDynamicBody(mgl64.Vec3{0, -0.5, 0}, mgl64.Vec3{}, 1)
		pin := NewPinJoint(body, mgl64.Vec3{}, nil, mgl64.Vec3{0, 0, 0})

		pin.SolvePosition(1.0 / 60.0)
		if pin.Error() > 1e-6 {
			t.Errorf("pin error after solve = %v, want ~0", pin.Error())
		}
	})

	t.Run("two bodies meet halfway", func(t *testing.T) {
		a := createDynamicBody(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{}, 1)
		b := createDynamicBody(mgl64.Vec3{3, 0, 0}, mgl64.Vec3{}, 1)
		pin := NewPinJoint(a, mgl64.Vec3{1, 0, 0}, b, mgl64.Vec3{-1, 0, 0})

		pin.SolvePosition(1.0 / 60.0)
		if pin.Error() > 1e-3 {
			t.Errorf("pin error after solve = %v", pin.Error())
		}
		if math.Abs(a.Transform.Position.X()-0.5) > 1e-3 {
			t.Errorf("body A x = %v, want ~0.5", a.Transform.Position.X())
		}
	})

	t.Run("disabled pin does nothing", func(t *testing.T) {
		body := createDynamicBody(mgl64.Vec3{0, -2, 0}, mgl64.Vec3{}, 1)
		pin := NewPinJoint(body, mgl64.Vec3{}, nil, mgl64.Vec3{})
		pin.Enabled = false

		pin.SolvePosition(1.0 / 60.0)
		if body.Transform.Position.Y() != -2 {
			t.Errorf("disabled pin moved the body")
		}
	})

	t.Run("wakes sleeping body", func(t *testing.T) {
		body := createDynamicBody(mgl64.Vec3{0, -1, 0}, mgl64.Vec3{}, 1)
		body.Sleep()
		pin := NewPinJoint(body, mgl64.Vec3{}, nil, mgl64.Vec3{})

		pin.SolvePosition(1.0 / 60.0)
		if body.IsSleeping {
			t.Errorf("pin should wake the body it corrects")
		}
	})
}
