package engine

import (
	"math"

	"github.com/akmonengine/featherserver/actor"
	"github.com/akmonengine/featherserver/gjk"
	"github.com/go-gl/mathgl/mgl64"
)

// probeRadius is the size of the sphere used to test point containment
const probeRadius = 1e-4

// QueryFilter limits the bodies a query may return; nil accepts all
type QueryFilter func(body *actor.RigidBody) bool

// RayHit is the closest intersection of a ray with a body
type RayHit struct {
	Body     *actor.RigidBody
	Position mgl64.Vec3
	Normal   mgl64.Vec3
	Fraction float64
}

// IntersectPoint returns the bodies containing point, in world order
func (w *World) IntersectPoint(point mgl64.Vec3, filter QueryFilter) []*actor.RigidBody {
	var probe *actor.RigidBody
	var result []*actor.RigidBody

	for _, body := range w.Bodies {
		if filter != nil && !filter(body) {
			continue
		}
		if plane, ok := body.Shape.(*actor.Plane); ok {
			if plane.SignedDistance(body.Transform, point) <= 0 {
				result = append(result, body)
			}
			continue
		}
		if !body.Shape.GetAABB().ContainsPoint(point) {
			continue
		}

		if probe == nil {
			probe = actor.NewRigidBody(actor.TransformFrom(point, mgl64.QuatIdent()), &actor.Sphere{Radius: probeRadius}, actor.BodyTypeStatic, 0)
		}
		simplex := gjk.SimplexPool.Get().(*gjk.Simplex)
		simplex.Reset()
		if gjk.Intersect(body, probe, simplex) {
			result = append(result, body)
		}
		gjk.SimplexPool.Put(simplex)
	}

	return result
}

// IntersectAABB returns the bodies whose bounds overlap box
func (w *World) IntersectAABB(box actor.AABB, filter QueryFilter) []*actor.RigidBody {
	var result []*actor.RigidBody
	for _, body := range w.Bodies {
		if filter != nil && !filter(body) {
			continue
		}
		if body.Shape.GetAABB().Overlaps(box) {
			result = append(result, body)
		}
	}
	return result
}

// CastRay returns the closest body hit by the segment from..to
func (w *World) CastRay(from, to mgl64.Vec3, filter QueryFilter) (RayHit, bool) {
	dir := to.Sub(from)
	best := RayHit{Fraction: math.Inf(1)}

	for _, body := range w.Bodies {
		if filter != nil && !filter(body) {
			continue
		}
		if _, ok := body.Shape.(*actor.Plane); !ok {
			if _, hit := body.Shape.GetAABB().IntersectsRay(from, dir, 1); !hit {
				continue
			}
		}

		fraction, normal, hit := rayShape(body.Shape, body.Transform, from, dir)
		if hit && fraction < best.Fraction {
			best = RayHit{
				Body:     body,
				Position: from.Add(dir.Mul(fraction)),
				Normal:   normal,
				Fraction: fraction,
			}
		}
	}

	return best, best.Body != nil
}

// rayShape intersects the segment from + t*dir, t in [0, 1], with a shape
func rayShape(shape actor.Shape, transform actor.Transform, from, dir mgl64.Vec3) (float64, mgl64.Vec3, bool) {
	switch s := shape.(type) {
	case *actor.Sphere:
		return raySphere(transform.Position, s.Radius, from, dir)
	case *actor.Plane:
		normal, distance := s.WorldPlane(transform)
		denom := normal.Dot(dir)
		start := normal.Dot(from) - distance
		if start <= 0 {
			return 0, normal, true
		}
		if denom >= 0 {
			return 0, mgl64.Vec3{}, false
		}
		t := -start / denom
		return t, normal, t <= 1
	case *actor.Box:
		localFrom := transform.PointToLocal(from)
		localDir := transform.Rotation.Inverse().Rotate(dir)
		t, axis, sign, hit := raySlab(s.HalfExtents, localFrom, localDir)
		if !hit {
			return 0, mgl64.Vec3{}, false
		}
		var localNormal mgl64.Vec3
		localNormal[axis] = sign
		return t, transform.Rotation.Rotate(localNormal), true
	case *actor.Compound:
		best, bestNormal, found := math.Inf(1), mgl64.Vec3{}, false
		for _, child := range s.Children {
			t, n, hit := rayShape(child.Shape, transform.Compose(child.Offset), from, dir)
			if hit && t < best {
				best, bestNormal, found = t, n, true
			}
		}
		return best, bestNormal, found
	}

	return 0, mgl64.Vec3{}, false
}

func raySphere(center mgl64.Vec3, radius float64, from, dir mgl64.Vec3) (float64, mgl64.Vec3, bool) {
	m := from.Sub(center)
	c := m.Dot(m) - radius*radius
	if c <= 0 {
		return 0, m.Normalize(), true
	}

	a := dir.Dot(dir)
	b := m.Dot(dir)
	if a == 0 || b > 0 {
		return 0, mgl64.Vec3{}, false
	}
	disc := b*b - a*c
	if disc < 0 {
		return 0, mgl64.Vec3{}, false
	}

	t := (-b - math.Sqrt(disc)) / a
	if t > 1 {
		return 0, mgl64.Vec3{}, false
	}
	return t, from.Add(dir.Mul(t)).Sub(center).Normalize(), true
}

// raySlab clips a local-space ray against a centered box and reports the
// entry axis and the sign of its face
func raySlab(halfExtents, from, dir mgl64.Vec3) (float64, int, float64, bool) {
	tMin, tMax := 0.0, 1.0
	axis, sign := 0, 0.0

	for i := 0; i < 3; i++ {
		if math.Abs(dir[i]) < 1e-12 {
			if from[i] < -halfExtents[i] || from[i] > halfExtents[i] {
				return 0, 0, 0, false
			}
			continue
		}

		t1 := (-halfExtents[i] - from[i]) / dir[i]
		t2 := (halfExtents[i] - from[i]) / dir[i]
		faceSign := -1.0
		if t1 > t2 {
			t1, t2 = t2, t1
			faceSign = 1.0
		}
		if t1 > tMin {
			tMin, axis, sign = t1, i, faceSign
		}
		tMax = math.Min(tMax, t2)
		if tMin > tMax {
			return 0, 0, 0, false
		}
	}

	if sign == 0 {
		// started inside the box
		sign = 1
		if dir[axis] > 0 {
			sign = -1
		}
	}
	return tMin, axis, sign, true
}
