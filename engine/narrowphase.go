package engine

import (
	"github.com/akmonengine/featherserver/actor"
	"github.com/akmonengine/featherserver/constraint"
	"github.com/akmonengine/featherserver/epa"
	"github.com/akmonengine/featherserver/gjk"
	"github.com/go-gl/mathgl/mgl64"
)

// Collide runs the narrow phase on one pair. It returns nil when the bodies
// do not touch. The contact normal always points from BodyA to BodyB.
func Collide(pair Pair) *constraint.ContactConstraint {
	a, b := pair.BodyA, pair.BodyB

	_, aIsPlane := a.Shape.(*actor.Plane)
	_, bIsPlane := b.Shape.(*actor.Plane)
	switch {
	case aIsPlane && bIsPlane:
		return nil
	case aIsPlane:
		return collidePlane(a, b)
	case bIsPlane:
		return collidePlane(b, a)
	}

	if sa, ok := a.Shape.(*actor.Sphere); ok {
		if sb, ok := b.Shape.(*actor.Sphere); ok {
			return collideSpheres(a, sa, b, sb)
		}
	}

	return collideConvex(a, b)
}

func collideSpheres(a *actor.RigidBody, sa *actor.Sphere, b *actor.RigidBody, sb *actor.Sphere) *constraint.ContactConstraint {
	delta := b.Transform.Position.Sub(a.Transform.Position)
	distance := delta.Len()
	penetration := sa.Radius + sb.Radius - distance
	if penetration <= 0 {
		return nil
	}

	normal := mgl64.Vec3{0, 1, 0}
	if distance > 1e-9 {
		normal = delta.Mul(1 / distance)
	}

	points := append(allocContacts(), constraint.ContactPoint{
		Position:    a.Transform.Position.Add(normal.Mul(sa.Radius - penetration/2)),
		Penetration: penetration,
	})

	return &constraint.ContactConstraint{BodyA: a, BodyB: b, Normal: normal, Points: points}
}

func collideConvex(a, b *actor.RigidBody) *constraint.ContactConstraint {
	simplex := gjk.SimplexPool.Get().(*gjk.Simplex)
	defer gjk.SimplexPool.Put(simplex)
	simplex.Reset()

	if !gjk.Intersect(a, b, simplex) {
		return nil
	}
	// triggers only need the overlap
	if a.IsTrigger || b.IsTrigger {
		return &constraint.ContactConstraint{BodyA: a, BodyB: b, Points: allocContacts()}
	}

	result, err := epa.Penetrate(a, b, simplex)
	if err != nil {
		tracef("narrow phase: bodies %d/%d: %v", a.ID, b.ID, err)
		return nil
	}

	points := append(allocContacts(), constraint.ContactPoint{Position: result.Point, Penetration: result.Depth})

	return &constraint.ContactConstraint{BodyA: a, BodyB: b, Normal: result.Normal, Points: points}
}

// collidePlane handles the half-space analytically: sphere and box corners are
// tested against the plane, compounds child by child.
func collidePlane(planeBody, object *actor.RigidBody) *constraint.ContactConstraint {
	plane := planeBody.Shape.(*actor.Plane)
	normal, distance := plane.WorldPlane(planeBody.Transform)

	points := planeContacts(allocContacts(), normal, distance, object.Shape, object.Transform)
	if len(points) == 0 {
		releaseContacts(points)
		return nil
	}

	return &constraint.ContactConstraint{BodyA: planeBody, BodyB: object, Normal: normal, Points: points}
}

func planeContacts(points []constraint.ContactPoint, normal mgl64.Vec3, distance float64, shape actor.Shape, transform actor.Transform) []constraint.ContactPoint {
	switch s := shape.(type) {
	case *actor.Sphere:
		depth := s.Radius - (normal.Dot(transform.Position) - distance)
		if depth > 0 {
			points = append(points, constraint.ContactPoint{
				Position:    transform.Position.Sub(normal.Mul(s.Radius)),
				Penetration: depth,
			})
		}
	case *actor.Box:
		for _, corner := range s.Corners() {
			world := transform.PointToWorld(corner)
			if depth := distance - normal.Dot(world); depth > 0 {
				points = append(points, constraint.ContactPoint{Position: world, Penetration: depth})
			}
		}
	case *actor.Compound:
		for _, child := range s.Children {
			points = planeContacts(points, normal, distance, child.Shape, transform.Compose(child.Offset))
		}
	default:
		// generic convex: deepest support point only
		localDir := transform.Rotation.Inverse().Rotate(normal.Mul(-1))
		world := transform.PointToWorld(shape.Support(localDir))
		if depth := distance - normal.Dot(world); depth > 0 {
			points = append(points, constraint.ContactPoint{Position: world, Penetration: depth})
		}
	}

	return points
}
