// Package epa computes penetration depth and contact normal for two overlapping
// convex bodies with the Expanding Polytope Algorithm, seeded by the GJK simplex.
package epa

import (
	"errors"
	"math"

	"github.com/akmonengine/featherserver/actor"
	"github.com/akmonengine/featherserver/gjk"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	MaxIterations        = 32
	ConvergenceTolerance = 0.001
	MinFaceDistance      = 0.0001
	NormalSnapThreshold  = 1e-8

	// DegeneratePenetration is used when GJK stopped on a touching contact
	DegeneratePenetration = 0.01
)

var ErrNoConvergence = errors.New("epa: failed to converge")

// Penetration describes how two bodies overlap. Normal points from A to B;
// moving B by Normal*Depth separates them.
type Penetration struct {
	Normal mgl64.Vec3
	Depth  float64
	// Point is the world-space contact point, halfway between the deepest
	// points of both bodies
	Point mgl64.Vec3
}

// Penetrate expands the GJK simplex until the face of the Minkowski difference
// closest to the origin is found.
func Penetrate(a, b *actor.RigidBody, simplex *gjk.Simplex) (Penetration, error) {
	if simplex.Count < 4 {
		return degenerate(a, b, simplex), nil
	}

	polytope := polytopePool.Get().(*Polytope)
	defer polytopePool.Put(polytope)
	polytope.Reset()
	polytope.Seed(simplex)

	for i := 0; i < MaxIterations; i++ {
		if len(polytope.faces) == 0 {
			break
		}

		index := polytope.Closest()
		face := polytope.faces[index]
		if face.Distance < MinFaceDistance && len(polytope.faces) > 1 {
			polytope.remove(index)
			continue
		}

		support := gjk.MinkowskiSupport(a, b, face.Normal)
		if support.Dot(face.Normal)-face.Distance < ConvergenceTolerance {
			return contact(a, b, face.Normal, face.Distance), nil
		}

		if !polytope.Expand(support) {
			return contact(a, b, face.Normal, face.Distance), nil
		}
	}

	return Penetration{}, ErrNoConvergence
}

// degenerate estimates a contact when GJK returned fewer than four points
func degenerate(a, b *actor.RigidBody, simplex *gjk.Simplex) Penetration {
	if simplex.Count >= 2 {
		closest := simplex.Points[0]
		for i := 1; i < simplex.Count; i++ {
			if simplex.Points[i].LenSqr() < closest.LenSqr() {
				closest = simplex.Points[i]
			}
		}
		if closest.Len() > NormalSnapThreshold {
			return contact(a, b, closest.Normalize(), closest.Len())
		}
	}

	normal := b.Transform.Position.Sub(a.Transform.Position)
	if normal.Len() < NormalSnapThreshold {
		normal = mgl64.Vec3{0, 1, 0}
	}

	return contact(a, b, normal.Normalize(), DegeneratePenetration)
}

func contact(a, b *actor.RigidBody, normal mgl64.Vec3, depth float64) Penetration {
	normal = snapNormalToAxis(normal)
	deepestA := a.SupportWorld(normal)
	deepestB := b.SupportWorld(normal.Mul(-1))

	return Penetration{
		Normal: normal,
		Depth:  depth,
		Point:  deepestA.Add(deepestB).Mul(0.5),
	}
}

// snapNormalToAxis clamps nearly-zero components so axis-aligned contacts
// do not drift tangentially.
func snapNormalToAxis(normal mgl64.Vec3) mgl64.Vec3 {
	for i := 0; i < 3; i++ {
		if math.Abs(normal[i]) < NormalSnapThreshold {
			normal[i] = 0
		}
	}

	if normal.Len() < 1e-8 {
		return mgl64.Vec3{0, 1, 0}
	}
	return normal.Normalize()
}
