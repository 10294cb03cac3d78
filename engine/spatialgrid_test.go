package engine

import (
	"testing"

	"github.com/akmonengine/featherserver/actor"
	"github.com/go-gl/mathgl/mgl64"
)

func sphereAt(position mgl64.Vec3, radius float64, bodyType actor.BodyType) *actor.RigidBody {
	return actor.NewRigidBody(actor.TransformFrom(position, mgl64.QuatIdent()), &actor.Sphere{Radius: radius}, bodyType, 1)
}

func withIDs(bodies ...*actor.RigidBody) []*actor.RigidBody {
	for i, b := range bodies {
		b.ID = uint64(i + 1)
	}
	return bodies
}

func TestWorldToCell(t *testing.T) {
	grid := NewSpatialGrid(1.0, 16)

	tests := []struct {
		name     string
		position mgl64.Vec3
		expected CellKey
	}{
		{"origin", mgl64.Vec3{0, 0, 0}, CellKey{0, 0, 0}},
		{"positive", mgl64.Vec3{1.5, 2.3, 3.7}, CellKey{1, 2, 3}},
		{"negative", mgl64.Vec3{-1.5, -2.3, -3.7}, CellKey{-2, -3, -4}},
		{"huge clamps", mgl64.Vec3{1e20, 0, 0}, CellKey{1 << 30, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := grid.worldToCell(tt.position); got != tt.expected {
				t.Errorf("worldToCell(%v) = %v, want %v", tt.position, got, tt.expected)
			}
		})
	}
}

func TestHashCellInRange(t *testing.T) {
	grid := NewSpatialGrid(1.0, 100)
	if len(grid.cells) != 128 {
		t.Fatalf("cells = %d, want next power of two 128", len(grid.cells))
	}

	for x := -20; x <= 20; x++ {
		for z := -20; z <= 20; z++ {
			if h := grid.hashCell(CellKey{x, -3, z}); h < 0 || h >= len(grid.cells) {
				t.Fatalf("hashCell out of range: %d", h)
			}
		}
	}
}

func TestFindPairs(t *testing.T) {
	t.Run("overlapping once", func(t *testing.T) {
		bodies := withIDs(
			sphereAt(mgl64.Vec3{0, 0, 0}, 1, actor.BodyTypeDynamic),
			sphereAt(mgl64.Vec3{1.5, 0, 0}, 1, actor.BodyTypeDynamic),
			sphereAt(mgl64.Vec3{10, 0, 0}, 1, actor.BodyTypeDynamic),
		)
		grid := NewSpatialGrid(1, 256)
		grid.Build(bodies)

		pairs := grid.FindPairs(bodies)
		if len(pairs) != 1 {
			t.Fatalf("pairs = %d, want 1", len(pairs))
		}
		if pairs[0].BodyA != bodies[0] || pairs[0].BodyB != bodies[1] {
			t.Errorf("pair order should follow insertion order")
		}
	})

	t.Run("static pairs are skipped", func(t *testing.T) {
		bodies := withIDs(
			sphereAt(mgl64.Vec3{0, 0, 0}, 1, actor.BodyTypeStatic),
			sphereAt(mgl64.Vec3{0.5, 0, 0}, 1, actor.BodyTypeStatic),
		)
		grid := NewSpatialGrid(1, 256)
		grid.Build(bodies)

		if pairs := grid.FindPairs(bodies); len(pairs) != 0 {
			t.Errorf("pairs = %d, want 0", len(pairs))
		}
	})

	t.Run("triggers see static bodies", func(t *testing.T) {
		area := sphereAt(mgl64.Vec3{0, 0, 0}, 1, actor.BodyTypeKinematic)
		area.IsTrigger = true
		bodies := withIDs(area, sphereAt(mgl64.Vec3{0.5, 0, 0}, 1, actor.BodyTypeStatic))
		grid := NewSpatialGrid(1, 256)
		grid.Build(bodies)

		if pairs := grid.FindPairs(bodies); len(pairs) != 1 {
			t.Errorf("pairs = %d, want 1", len(pairs))
		}
	})

	t.Run("plane is oversize and pairs with everything nearby", func(t *testing.T) {
		ground := actor.NewRigidBody(actor.NewTransform(), &actor.Plane{Normal: mgl64.Vec3{0, 1, 0}}, actor.BodyTypeStatic, 0)
		bodies := withIDs(
			sphereAt(mgl64.Vec3{0, 0.5, 0}, 1, actor.BodyTypeDynamic),
			ground,
			sphereAt(mgl64.Vec3{50, 0.5, -30}, 1, actor.BodyTypeDynamic),
			sphereAt(mgl64.Vec3{0, 50, 0}, 1, actor.BodyTypeDynamic),
		)
		grid := NewSpatialGrid(2, 256)
		grid.Build(bodies)

		pairs := grid.FindPairs(bodies)
		if len(pairs) != 2 {
			t.Fatalf("pairs = %d, want 2", len(pairs))
		}
		for _, pair := range pairs {
			if pair.BodyB != ground {
				t.Errorf("plane should be paired from the other body, got %v", pair)
			}
		}
	})

	t.Run("both sleeping skipped", func(t *testing.T) {
		a := sphereAt(mgl64.Vec3{0, 0, 0}, 1, actor.BodyTypeDynamic)
		b := sphereAt(mgl64.Vec3{1, 0, 0}, 1, actor.BodyTypeDynamic)
		a.Sleep()
		b.Sleep()
		bodies := withIDs(a, b)
		grid := NewSpatialGrid(1, 256)
		grid.Build(bodies)

		if pairs := grid.FindPairs(bodies); len(pairs) != 0 {
			t.Errorf("pairs = %d, want 0", len(pairs))
		}
	})
}
