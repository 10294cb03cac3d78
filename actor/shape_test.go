package actor

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func vec3Equal(a, b mgl64.Vec3, tolerance float64) bool {
	return math.Abs(a.X()-b.X()) < tolerance &&
		math.Abs(a.Y()-b.Y()) < tolerance &&
		math.Abs(a.Z()-b.Z()) < tolerance
}

func floatEqual(a, b, tolerance float64) bool {
	return math.Abs(a-b) < tolerance
}

func mat3Equal(a, b mgl64.Mat3, tolerance float64) bool {
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if math.Abs(a.At(i, j)-b.At(i, j)) >= tolerance {
				return false
			}
		}
	}
	return true
}

func TestBoxComputeInertia(t *testing.T) {
	tests := []struct {
		name         string
		box          *Box
		mass         float64
		expectedDiag mgl64.Vec3
	}{
		{"unit cube", &Box{HalfExtents: mgl64.Vec3{1, 1, 1}}, 12.0, mgl64.Vec3{8, 8, 8}},
		{"rectangular box 2x3x4", &Box{HalfExtents: mgl64.Vec3{2, 3, 4}}, 12.0, mgl64.Vec3{100, 80, 52}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.box.ComputeInertia(tt.mass)
			if !mat3Equal(got, mgl64.Diag3(tt.expectedDiag), 1e-9) {
				t.Errorf("ComputeInertia() = %v, want diag %v", got, tt.expectedDiag)
			}
		})
	}
}

func TestSphereComputeMassAndInertia(t *testing.T) {
	s := &Sphere{Radius: 2}

	mass := s.ComputeMass(3)
	want := 3 * (4.0 / 3.0) * math.Pi * 8
	if !floatEqual(mass, want, 1e-9) {
		t.Errorf("ComputeMass() = %v, want %v", mass, want)
	}

	inertia := s.ComputeInertia(10)
	if !floatEqual(inertia.At(0, 0), 16, 1e-9) || !floatEqual(inertia.At(2, 2), 16, 1e-9) {
		t.Errorf("ComputeInertia() = %v, want diag 16", inertia)
	}
}

func TestBoxAABBRotated(t *testing.T) {
	b := &Box{HalfExtents: mgl64.Vec3{1, 1, 1}}
	rot := mgl64.QuatRotate(math.Pi/4, mgl64.Vec3{0, 1, 0})
	b.ComputeAABB(TransformFrom(mgl64.Vec3{0, 5, 0}, rot))

	aabb := b.GetAABB()
	if !floatEqual(aabb.Max.X(), math.Sqrt2, 1e-9) {
		t.Errorf("rotated box max X = %v, want %v", aabb.Max.X(), math.Sqrt2)
	}
	if !floatEqual(aabb.Min.Y(), 4, 1e-9) || !floatEqual(aabb.Max.Y(), 6, 1e-9) {
		t.Errorf("rotated box Y range = [%v, %v], want [4, 6]", aabb.Min.Y(), aabb.Max.Y())
	}
}

func TestSupport(t *testing.T) {
	tests := []struct {
		name  string
		shape Shape
		dir   mgl64.Vec3
		want  mgl64.Vec3
	}{
		{"sphere +x", &Sphere{Radius: 2}, mgl64.Vec3{3, 0, 0}, mgl64.Vec3{2, 0, 0}},
		{"sphere zero direction", &Sphere{Radius: 1}, mgl64.Vec3{}, mgl64.Vec3{1, 0, 0}},
		{"box diagonal", &Box{HalfExtents: mgl64.Vec3{1, 2, 3}}, mgl64.Vec3{-1, 1, -1}, mgl64.Vec3{-1, 2, -3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.shape.Support(tt.dir); !vec3Equal(got, tt.want, 1e-9) {
				t.Errorf("Support(%v) = %v, want %v", tt.dir, got, tt.want)
			}
		})
	}
}

func TestPlaneWorldPlane(t *testing.T) {
	p := &Plane{Normal: mgl64.Vec3{0, 1, 0}, Distance: 2}

	normal, distance := p.WorldPlane(TransformFrom(mgl64.Vec3{0, 3, 0}, mgl64.QuatIdent()))
	if !vec3Equal(normal, mgl64.Vec3{0, 1, 0}, 1e-12) || !floatEqual(distance, 5, 1e-12) {
		t.Errorf("WorldPlane() = (%v, %v), want ({0 1 0}, 5)", normal, distance)
	}

	d := p.SignedDistance(NewTransform(), mgl64.Vec3{7, 3.5, -1})
	if !floatEqual(d, 1.5, 1e-12) {
		t.Errorf("SignedDistance() = %v, want 1.5", d)
	}
}

func TestPlaneAABB(t *testing.T) {
	p := &Plane{Normal: mgl64.Vec3{0, 1, 0}, Distance: 0}
	p.ComputeAABB(NewTransform())

	aabb := p.GetAABB()
	if !floatEqual(aabb.Max.Y(), 0, 1e-12) || !floatEqual(aabb.Min.Y(), -planeThickness, 1e-12) {
		t.Errorf("plane Y slab = [%v, %v], want [-1, 0]", aabb.Min.Y(), aabb.Max.Y())
	}
	if aabb.Max.X() < 1e9 || aabb.Min.Z() > -1e9 {
		t.Errorf("plane should be unbounded along its tangents, got %v", aabb)
	}
	if !math.IsInf(p.ComputeMass(1), 1) {
		t.Errorf("plane mass should be infinite")
	}
}

func TestCompound(t *testing.T) {
	left := CompoundChild{Shape: &Sphere{Radius: 1}, Offset: TransformFrom(mgl64.Vec3{-2, 0, 0}, mgl64.QuatIdent())}
	right := CompoundChild{Shape: &Sphere{Radius: 1}, Offset: TransformFrom(mgl64.Vec3{2, 0, 0}, mgl64.QuatIdent())}
	c := NewCompound(left, right)

	t.Run("mass is sum of children", func(t *testing.T) {
		want := 2 * (&Sphere{Radius: 1}).ComputeMass(1)
		if got := c.ComputeMass(1); !floatEqual(got, want, 1e-9) {
			t.Errorf("ComputeMass() = %v, want %v", got, want)
		}
	})

	t.Run("parallel axis", func(t *testing.T) {
		inertia := c.ComputeInertia(10)
		// each child: 5kg, sphere 2/5*5*1 = 2; shifted by d=2 on X
		if !floatEqual(inertia.At(0, 0), 4, 1e-9) {
			t.Errorf("Ixx = %v, want 4", inertia.At(0, 0))
		}
		if !floatEqual(inertia.At(1, 1), 4+2*5*4, 1e-9) {
			t.Errorf("Iyy = %v, want 44", inertia.At(1, 1))
		}
	})

	t.Run("support picks furthest child", func(t *testing.T) {
		if got := c.Support(mgl64.Vec3{1, 0, 0}); !vec3Equal(got, mgl64.Vec3{3, 0, 0}, 1e-9) {
			t.Errorf("Support(+x) = %v, want {3 0 0}", got)
		}
		if got := c.Support(mgl64.Vec3{-1, 0, 0}); !vec3Equal(got, mgl64.Vec3{-3, 0, 0}, 1e-9) {
			t.Errorf("Support(-x) = %v, want {-3 0 0}", got)
		}
	})

	t.Run("aabb is union", func(t *testing.T) {
		c.ComputeAABB(TransformFrom(mgl64.Vec3{0, 1, 0}, mgl64.QuatIdent()))
		aabb := c.GetAABB()
		if !vec3Equal(aabb.Min, mgl64.Vec3{-3, 0, -1}, 1e-9) || !vec3Equal(aabb.Max, mgl64.Vec3{3, 2, 1}, 1e-9) {
			t.Errorf("AABB = %v", aabb)
		}
	})
}

func TestTransformCompose(t *testing.T) {
	parent := TransformFrom(mgl64.Vec3{1, 0, 0}, mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 0, 1}))
	child := TransformFrom(mgl64.Vec3{1, 0, 0}, mgl64.QuatIdent())

	got := parent.Compose(child)
	if !vec3Equal(got.Position, mgl64.Vec3{1, 1, 0}, 1e-9) {
		t.Errorf("Compose().Position = %v, want {1 1 0}", got.Position)
	}

	p := mgl64.Vec3{0.3, -2, 4}
	if back := parent.PointToLocal(parent.PointToWorld(p)); !vec3Equal(back, p, 1e-9) {
		t.Errorf("PointToLocal(PointToWorld(p)) = %v, want %v", back, p)
	}
}
