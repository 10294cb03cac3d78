package actor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// CompoundChild is one convex shape placed in the compound's local space
type CompoundChild struct {
	Shape  Shape
	Offset Transform
}

// Compound groups several convex shapes rigidly attached to one body.
// Planes are not valid children.
type Compound struct {
	Children []CompoundChild
	aabb     AABB
}

func NewCompound(children ...CompoundChild) *Compound {
	return &Compound{Children: children}
}

func (c *Compound) Type() ShapeType { return ShapeTypeCompound }

func (c *Compound) ComputeAABB(transform Transform) {
	if len(c.Children) == 0 {
		c.aabb = AABB{Min: transform.Position, Max: transform.Position}
		return
	}

	for i, child := range c.Children {
		child.Shape.ComputeAABB(transform.Compose(child.Offset))
		if i == 0 {
			c.aabb = child.Shape.GetAABB()
			continue
		}
		c.aabb = c.aabb.Union(child.Shape.GetAABB())
	}
}

func (c *Compound) GetAABB() AABB {
	return c.aabb
}

func (c *Compound) ComputeMass(density float64) float64 {
	mass := 0.0
	for _, child := range c.Children {
		mass += child.Shape.ComputeMass(density)
	}

	return mass
}

// ComputeInertia distributes mass by child volume and shifts each child
// tensor to the compound origin (parallel axis theorem).
func (c *Compound) ComputeInertia(mass float64) mgl64.Mat3 {
	volume := c.ComputeMass(1)
	if volume == 0 || math.IsInf(volume, 0) {
		return mgl64.Mat3{}
	}

	inertia := mgl64.Mat3{}
	for _, child := range c.Children {
		childMass := mass * child.Shape.ComputeMass(1) / volume
		rotation := child.Offset.Rotation.Mat4().Mat3()
		local := rotation.Mul3(child.Shape.ComputeInertia(childMass)).Mul3(rotation.Transpose())

		d := child.Offset.Position
		shift := mgl64.Ident3().Mul(d.Dot(d)).Sub(outer(d, d)).Mul(childMass)
		inertia = inertia.Add(local.Add(shift))
	}

	return inertia
}

func (c *Compound) Support(direction mgl64.Vec3) mgl64.Vec3 {
	best := mgl64.Vec3{}
	bestDot := math.Inf(-1)

	for _, child := range c.Children {
		localDir := child.Offset.Rotation.Inverse().Rotate(direction)
		point := child.Offset.PointToWorld(child.Shape.Support(localDir))
		if dot := point.Dot(direction); dot > bestDot {
			bestDot = dot
			best = point
		}
	}

	return best
}

func outer(a, b mgl64.Vec3) mgl64.Mat3 {
	// column-major
	return mgl64.Mat3{
		a[0] * b[0], a[1] * b[0], a[2] * b[0],
		a[0] * b[1], a[1] * b[1], a[2] * b[1],
		a[0] * b[2], a[1] * b[2], a[2] * b[2],
	}
}
