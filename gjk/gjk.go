// Package gjk tests two convex bodies for overlap with the Gilbert-Johnson-Keerthi
// algorithm: the bodies intersect when their Minkowski difference contains the origin.
package gjk

import (
	"sync"

	"github.com/akmonengine/featherserver/actor"
	"github.com/go-gl/mathgl/mgl64"
)

const maxIterations = 32

// Simplex holds 1-4 points of the Minkowski difference; Points[Count-1] is
// always the most recent support point.
type Simplex struct {
	Points [4]mgl64.Vec3
	Count  int
}

func (s *Simplex) Reset() {
	s.Count = 0
}

func (s *Simplex) set(points ...mgl64.Vec3) {
	s.Count = copy(s.Points[:], points)
}

var SimplexPool = sync.Pool{
	New: func() interface{} {
		return &Simplex{}
	},
}

// MinkowskiSupport returns support(A, d) - support(B, -d)
func MinkowskiSupport(a, b *actor.RigidBody, direction mgl64.Vec3) mgl64.Vec3 {
	return a.SupportWorld(direction).Sub(b.SupportWorld(direction.Mul(-1)))
}

// Intersect reports whether a and b overlap. On success the simplex usually
// holds a tetrahedron enclosing the origin, the seed for EPA; touching
// contacts may end with fewer points.
func Intersect(a, b *actor.RigidBody, simplex *Simplex) bool {
	direction := b.Transform.Position.Sub(a.Transform.Position)
	if direction.LenSqr() < 1e-8 {
		direction = mgl64.Vec3{1, 0, 0}
	}

	simplex.set(MinkowskiSupport(a, b, direction))
	direction = simplex.Points[0].Mul(-1)
	if direction.LenSqr() < 1e-16 {
		return true
	}

	for i := 0; i < maxIterations; i++ {
		point := MinkowskiSupport(a, b, direction)
		// the new point did not cross the origin: separated
		if point.Dot(direction) <= 0 {
			return false
		}

		simplex.Points[simplex.Count] = point
		simplex.Count++

		if evolve(simplex, &direction) {
			return true
		}
	}

	return false
}

// evolve reduces the simplex to the feature closest to the origin and picks
// the next search direction. It returns true once the origin is enclosed.
func evolve(simplex *Simplex, direction *mgl64.Vec3) bool {
	switch simplex.Count {
	case 2:
		return line(simplex, direction)
	case 3:
		return triangle(simplex, direction)
	case 4:
		return tetrahedron(simplex, direction)
	}
	return false
}

func line(simplex *Simplex, direction *mgl64.Vec3) bool {
	a, b := simplex.Points[1], simplex.Points[0]
	ab := b.Sub(a)
	ao := a.Mul(-1)

	if ab.LenSqr() < 1e-8 || ab.Dot(ao) <= 0 {
		if ao.LenSqr() < 1e-8 {
			return true
		}
		simplex.set(a)
		*direction = ao
		return false
	}

	perp := ab.Cross(ao).Cross(ab)
	if perp.LenSqr() < 1e-8 {
		// origin lies on the segment
		return true
	}

	*direction = perp
	return false
}

func triangle(simplex *Simplex, direction *mgl64.Vec3) bool {
	a, b, c := simplex.Points[2], simplex.Points[1], simplex.Points[0]
	ab := b.Sub(a)
	ac := c.Sub(a)
	ao := a.Mul(-1)
	normal := ab.Cross(ac)

	if normal.LenSqr() < 1e-10 {
		simplex.set(b, a)
		return line(simplex, direction)
	}

	if ab.Cross(normal).Dot(ao) > 0 {
		simplex.set(b, a)
		*direction = ab.Cross(ao).Cross(ab)
		return false
	}
	if normal.Cross(ac).Dot(ao) > 0 {
		simplex.set(c, a)
		*direction = ac.Cross(ao).Cross(ac)
		return false
	}

	if normal.Dot(ao) > 0 {
		*direction = normal
	} else {
		// keep the winding facing the origin
		simplex.set(b, c, a)
		*direction = normal.Mul(-1)
	}

	return false
}

func tetrahedron(simplex *Simplex, direction *mgl64.Vec3) bool {
	a, b, c, d := simplex.Points[3], simplex.Points[2], simplex.Points[1], simplex.Points[0]
	ab := b.Sub(a)
	ac := c.Sub(a)
	ad := d.Sub(a)
	ao := a.Mul(-1)

	faces := [3]struct {
		normal mgl64.Vec3
		keep   [3]mgl64.Vec3
	}{
		{outward(ab.Cross(ac), ad), [3]mgl64.Vec3{c, b, a}},
		{outward(ac.Cross(ad), ab), [3]mgl64.Vec3{d, c, a}},
		{outward(ad.Cross(ab), ac), [3]mgl64.Vec3{b, d, a}},
	}

	for _, face := range faces {
		if face.normal.LenSqr() < 1e-10 {
			simplex.set(c, b, a)
			return triangle(simplex, direction)
		}
	}

	for _, face := range faces {
		if face.normal.Dot(ao) > 0 {
			simplex.set(face.keep[:]...)
			return triangle(simplex, direction)
		}
	}

	return true
}

// outward flips normal so it points away from the opposite vertex
func outward(normal, towardOpposite mgl64.Vec3) mgl64.Vec3 {
	if normal.Dot(towardOpposite) > 0 {
		return normal.Mul(-1)
	}
	return normal
}
