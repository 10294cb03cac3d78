package engine

import (
	"math"
	"testing"

	"github.com/akmonengine/featherserver/actor"
	"github.com/go-gl/mathgl/mgl64"
)

func queryWorld() (*World, *actor.RigidBody, *actor.RigidBody, *actor.RigidBody) {
	w := NewWorld(nil, nil, DefaultSettings())
	floor := ground()
	ball := sphereAt(mgl64.Vec3{0, 2, 0}, 1, actor.BodyTypeDynamic)
	crate := boxAt(mgl64.Vec3{5, 1, 0}, mgl64.Vec3{1, 1, 1}, actor.BodyTypeStatic)
	w.AddBody(floor)
	w.AddBody(ball)
	w.AddBody(crate)
	return w, floor, ball, crate
}

func TestIntersectPoint(t *testing.T) {
	w, floor, ball, crate := queryWorld()

	tests := []struct {
		name  string
		point mgl64.Vec3
		want  []*actor.RigidBody
	}{
		{"inside ball", mgl64.Vec3{0, 2.5, 0}, []*actor.RigidBody{ball}},
		{"inside crate", mgl64.Vec3{5.5, 1.5, 0.5}, []*actor.RigidBody{crate}},
		{"below floor", mgl64.Vec3{100, -1, 100}, []*actor.RigidBody{floor}},
		{"ball aabb corner", mgl64.Vec3{0.9, 2.9, 0}, nil},
		{"empty air", mgl64.Vec3{-5, 5, 0}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := w.IntersectPoint(tt.point, nil)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d bodies, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("body %d = %d, want %d", i, got[i].ID, tt.want[i].ID)
				}
			}
		})
	}
}

func TestIntersectPointFilter(t *testing.T) {
	w, _, ball, _ := queryWorld()

	got := w.IntersectPoint(mgl64.Vec3{0, 2, 0}, func(body *actor.RigidBody) bool { return body != ball })
	if len(got) != 0 {
		t.Errorf("filtered query returned %d bodies", len(got))
	}
}

func TestIntersectAABB(t *testing.T) {
	w, floor, ball, crate := queryWorld()

	got := w.IntersectAABB(actor.AABB{Min: mgl64.Vec3{-1, 0.5, -1}, Max: mgl64.Vec3{6, 3, 1}}, nil)
	if len(got) != 2 || got[0] != ball || got[1] != crate {
		t.Errorf("got %v", got)
	}

	got = w.IntersectAABB(actor.AABB{Min: mgl64.Vec3{-1, -0.5, -1}, Max: mgl64.Vec3{1, 0.5, 1}}, nil)
	if len(got) != 1 || got[0] != floor {
		t.Errorf("floor should overlap a box straddling it")
	}
}

func TestCastRay(t *testing.T) {
	w, floor, ball, crate := queryWorld()

	tests := []struct {
		name     string
		from, to mgl64.Vec3
		body     *actor.RigidBody
		position mgl64.Vec3
		normal   mgl64.Vec3
	}{
		{"down onto ball", mgl64.Vec3{0, 10, 0}, mgl64.Vec3{0, -10, 0}, ball, mgl64.Vec3{0, 3, 0}, mgl64.Vec3{0, 1, 0}},
		{"sideways into crate", mgl64.Vec3{10, 1, 0}, mgl64.Vec3{0, 1, 0}, crate, mgl64.Vec3{6, 1, 0}, mgl64.Vec3{1, 0, 0}},
		{"down onto floor", mgl64.Vec3{-5, 10, 0}, mgl64.Vec3{-5, -10, 0}, floor, mgl64.Vec3{-5, 0, 0}, mgl64.Vec3{0, 1, 0}},
		{"too short", mgl64.Vec3{-5, 10, 0}, mgl64.Vec3{-5, 5, 0}, nil, mgl64.Vec3{}, mgl64.Vec3{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hit, ok := w.CastRay(tt.from, tt.to, nil)
			if ok != (tt.body != nil) {
				t.Fatalf("hit = %v, want %v", ok, tt.body != nil)
			}
			if !ok {
				return
			}
			if hit.Body != tt.body {
				t.Errorf("body = %d, want %d", hit.Body.ID, tt.body.ID)
			}
			if !hit.Position.ApproxEqualThreshold(tt.position, 1e-6) {
				t.Errorf("position = %v, want %v", hit.Position, tt.position)
			}
			if !hit.Normal.ApproxEqualThreshold(tt.normal, 1e-6) {
				t.Errorf("normal = %v, want %v", hit.Normal, tt.normal)
			}
			if hit.Fraction < 0 || hit.Fraction > 1 {
				t.Errorf("fraction = %v", hit.Fraction)
			}
		})
	}
}

func TestRaySphereInside(t *testing.T) {
	fraction, _, hit := raySphere(mgl64.Vec3{}, 1, mgl64.Vec3{0.5, 0, 0}, mgl64.Vec3{1, 0, 0})
	if !hit || fraction != 0 {
		t.Errorf("ray starting inside should hit at 0, got %v %v", fraction, hit)
	}
}

func TestRaySlabMiss(t *testing.T) {
	if _, _, _, hit := raySlab(mgl64.Vec3{1, 1, 1}, mgl64.Vec3{-5, 3, 0}, mgl64.Vec3{10, 0, 0}); hit {
		t.Errorf("ray above the box should miss")
	}

	tMin, axis, sign, hit := raySlab(mgl64.Vec3{1, 1, 1}, mgl64.Vec3{-5, 0, 0}, mgl64.Vec3{10, 0, 0})
	if !hit || axis != 0 || sign != -1 || math.Abs(tMin-0.4) > 1e-9 {
		t.Errorf("got t=%v axis=%d sign=%v hit=%v", tMin, axis, sign, hit)
	}
}
