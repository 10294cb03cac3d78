package actor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// ShapeType represents the type of collision shape
type ShapeType int

const (
	ShapeTypeSphere ShapeType = iota
	ShapeTypeBox
	ShapeTypePlane
	ShapeTypeCompound
)

func (t ShapeType) String() string {
	switch t {
	case ShapeTypeSphere:
		return "sphere"
	case ShapeTypeBox:
		return "box"
	case ShapeTypePlane:
		return "plane"
	case ShapeTypeCompound:
		return "compound"
	}
	return "unknown"
}

// Shape is the interface that all collision shapes must implement
type Shape interface {
	Type() ShapeType
	// ComputeAABB calculates the axis-aligned bounding box for the shape
	// at the given transform
	ComputeAABB(transform Transform)
	GetAABB() AABB
	// ComputeMass calculates the mass of the shape given a density
	ComputeMass(density float64) float64
	ComputeInertia(mass float64) mgl64.Mat3
	// Support returns the furthest local point along a local direction
	Support(direction mgl64.Vec3) mgl64.Vec3
}

// Box represents an oriented box collision shape
// The box is defined by its half-extents (half-width, half-height, half-depth)
type Box struct {
	HalfExtents mgl64.Vec3
	aabb        AABB
}

func (b *Box) Type() ShapeType { return ShapeTypeBox }

// Corners returns the 8 corners of the box in local space
func (b *Box) Corners() [8]mgl64.Vec3 {
	hx, hy, hz := b.HalfExtents.X(), b.HalfExtents.Y(), b.HalfExtents.Z()
	return [8]mgl64.Vec3{
		{-hx, -hy, -hz},
		{+hx, -hy, -hz},
		{-hx, +hy, -hz},
		{+hx, +hy, -hz},
		{-hx, -hy, +hz},
		{+hx, -hy, +hz},
		{-hx, +hy, +hz},
		{+hx, +hy, +hz},
	}
}

func (b *Box) ComputeAABB(transform Transform) {
	corners := b.Corners()

	worldCorner := transform.PointToWorld(corners[0])
	min := worldCorner
	max := worldCorner

	for i := 1; i < 8; i++ {
		worldCorner = transform.PointToWorld(corners[i])
		for axis := 0; axis < 3; axis++ {
			min[axis] = math.Min(min[axis], worldCorner[axis])
			max[axis] = math.Max(max[axis], worldCorner[axis])
		}
	}

	b.aabb = AABB{Min: min, Max: max}
}

func (b *Box) GetAABB() AABB {
	return b.aabb
}

// ComputeMass calculates the mass of the box
func (b *Box) ComputeMass(density float64) float64 {
	// full dimensions are 2*halfExtents
	volume := 8.0 * b.HalfExtents.X() * b.HalfExtents.Y() * b.HalfExtents.Z()

	return density * volume
}

func (b *Box) ComputeInertia(mass float64) mgl64.Mat3 {
	x := b.HalfExtents.X() * 2
	y := b.HalfExtents.Y() * 2
	z := b.HalfExtents.Z() * 2

	// I = (m/12) * (d1² + d2²)
	factor := mass / 12.0
	return mgl64.Diag3(mgl64.Vec3{
		factor * (y*y + z*z),
		factor * (x*x + z*z),
		factor * (x*x + y*y),
	})
}

func (b *Box) Support(direction mgl64.Vec3) mgl64.Vec3 {
	hx, hy, hz := b.HalfExtents.X(), b.HalfExtents.Y(), b.HalfExtents.Z()

	if direction.X() < 0 {
		hx = -hx
	}
	if direction.Y() < 0 {
		hy = -hy
	}
	if direction.Z() < 0 {
		hz = -hz
	}

	return mgl64.Vec3{hx, hy, hz}
}

// Sphere represents a spherical collision shape
type Sphere struct {
	Radius float64
	aabb   AABB
}

func (s *Sphere) Type() ShapeType { return ShapeTypeSphere }

// ComputeAABB calculates the axis-aligned bounding box for the sphere
func (s *Sphere) ComputeAABB(transform Transform) {
	radiusVec := mgl64.Vec3{s.Radius, s.Radius, s.Radius}

	s.aabb = AABB{
		Min: transform.Position.Sub(radiusVec),
		Max: transform.Position.Add(radiusVec),
	}
}

func (s *Sphere) GetAABB() AABB {
	return s.aabb
}

// ComputeMass calculates the mass of the sphere
func (s *Sphere) ComputeMass(density float64) float64 {
	volume := (4.0 / 3.0) * math.Pi * math.Pow(s.Radius, 3)

	return density * volume
}

func (s *Sphere) ComputeInertia(mass float64) mgl64.Mat3 {
	// I = (2/5) * m * r²
	i := (2.0 / 5.0) * mass * s.Radius * s.Radius

	return mgl64.Diag3(mgl64.Vec3{i, i, i})
}

func (s *Sphere) Support(direction mgl64.Vec3) mgl64.Vec3 {
	if direction.Len() == 0 {
		return mgl64.Vec3{s.Radius, 0, 0}
	}
	return direction.Normalize().Mul(s.Radius)
}

// Plane represents an infinite half-space collision shape.
// Points p with Normal · p = Distance lie on the plane; the solid side is
// opposite the normal. Both values are expressed in the owner's local space.
type Plane struct {
	Normal   mgl64.Vec3 // Plane normal (must be normalized)
	Distance float64
	aabb     AABB
}

const (
	planeExtent    = 1e10
	planeThickness = 1.0
)

func (p *Plane) Type() ShapeType { return ShapeTypePlane }

// WorldPlane returns the normal and distance of the plane once placed by transform
func (p *Plane) WorldPlane(transform Transform) (mgl64.Vec3, float64) {
	normal := transform.Rotation.Rotate(p.Normal).Normalize()
	return normal, p.Distance + normal.Dot(transform.Position)
}

// SignedDistance returns the distance of a world point above the plane
func (p *Plane) SignedDistance(transform Transform, point mgl64.Vec3) float64 {
	normal, distance := p.WorldPlane(transform)
	return normal.Dot(point) - distance
}

func (p *Plane) ComputeAABB(transform Transform) {
	normal, distance := p.WorldPlane(transform)
	surface := normal.Mul(distance)

	min := mgl64.Vec3{-planeExtent, -planeExtent, -planeExtent}
	max := mgl64.Vec3{planeExtent, planeExtent, planeExtent}

	// Only an axis-aligned plane gets a finite slab; tilted planes stay unbounded
	for axis := 0; axis < 3; axis++ {
		if math.Abs(normal[axis]) < 1-1e-9 {
			continue
		}
		if normal[axis] > 0 {
			min[axis] = surface[axis] - planeThickness
			max[axis] = surface[axis]
		} else {
			min[axis] = surface[axis]
			max[axis] = surface[axis] + planeThickness
		}
	}

	p.aabb = AABB{Min: min, Max: max}
}

func (p *Plane) GetAABB() AABB {
	return p.aabb
}

// ComputeMass: planes are always static with infinite mass
func (p *Plane) ComputeMass(density float64) float64 {
	return math.Inf(1)
}

func (p *Plane) ComputeInertia(mass float64) mgl64.Mat3 {
	return mgl64.Mat3{}
}

// Support approximates the half-space with a large slab
func (p *Plane) Support(direction mgl64.Vec3) mgl64.Vec3 {
	const halfSize = 1000.0

	tangent1, tangent2 := TangentBasis(p.Normal)
	point := p.Normal.Mul(p.Distance)
	if direction.Dot(tangent1) < 0 {
		point = point.Sub(tangent1.Mul(halfSize))
	} else {
		point = point.Add(tangent1.Mul(halfSize))
	}
	if direction.Dot(tangent2) < 0 {
		point = point.Sub(tangent2.Mul(halfSize))
	} else {
		point = point.Add(tangent2.Mul(halfSize))
	}
	if direction.Dot(p.Normal) < 0 {
		point = point.Sub(p.Normal.Mul(planeThickness))
	}

	return point
}

// TangentBasis builds two unit vectors orthogonal to normal and to each other
func TangentBasis(normal mgl64.Vec3) (mgl64.Vec3, mgl64.Vec3) {
	var tangent1 mgl64.Vec3
	if math.Abs(normal.X()) > 0.9 {
		tangent1 = mgl64.Vec3{0, 1, 0}
	} else {
		tangent1 = mgl64.Vec3{1, 0, 0}
	}

	tangent1 = tangent1.Sub(normal.Mul(tangent1.Dot(normal))).Normalize()
	tangent2 := normal.Cross(tangent1).Normalize()

	return tangent1, tangent2
}
