package server

import (
	"math"
	"slices"

	"github.com/akmonengine/featherserver/actor"
	"github.com/akmonengine/featherserver/rid"
	"github.com/go-gl/mathgl/mgl64"
)

// QueryParams selects the objects a direct state query may return
type QueryParams struct {
	CollisionMask     uint32
	Exclude           []rid.RID
	CollideWithBodies bool
	CollideWithAreas  bool
}

func DefaultQueryParams() QueryParams {
	return QueryParams{
		CollisionMask:     math.MaxUint32,
		CollideWithBodies: true,
	}
}

// RayParams adds ray specific options
type RayParams struct {
	QueryParams
	From, To mgl64.Vec3
	// PickRay skips objects that are not ray pickable
	PickRay bool
}

type ShapeResult struct {
	RID        rid.RID
	InstanceID int64
	Shape      int
}

type RayResult struct {
	ShapeResult
	Position mgl64.Vec3
	Normal   mgl64.Vec3
}

// DirectSpaceState answers spatial queries against a space. Every call fails
// with ErrStateUnavailable outside the sync window or while the space steps.
type DirectSpaceState struct {
	space *Space
}

func (d *DirectSpaceState) Space() rid.RID {
	return d.space.rid
}

func (d *DirectSpaceState) check() error {
	if d.space.freed || !d.space.server.doingSync || d.space.locked {
		return ErrStateUnavailable
	}
	return nil
}

func (p QueryParams) filter(pickRay bool) func(rb *actor.RigidBody) bool {
	return func(rb *actor.RigidBody) bool {
		obj, ok := rb.UserData.(collisionObject)
		if !ok {
			return false
		}
		base := obj.object()
		if !base.hasEnabledShapes() {
			return false
		}
		if _, isArea := obj.(*Area); isArea && !p.CollideWithAreas || !isArea && !p.CollideWithBodies {
			return false
		}
		if base.layer&p.CollisionMask == 0 {
			return false
		}
		if pickRay && !base.rayPickable {
			return false
		}
		return !slices.Contains(p.Exclude, base.rid)
	}
}

func shapeResult(rb *actor.RigidBody) ShapeResult {
	base := rb.UserData.(collisionObject).object()
	return ShapeResult{RID: base.rid, InstanceID: base.instanceID, Shape: max(0, base.firstEnabledShape())}
}

// IntersectPoint lists the objects containing point, up to maxResults (0 = all)
func (d *DirectSpaceState) IntersectPoint(point mgl64.Vec3, params QueryParams, maxResults int) ([]ShapeResult, error) {
	if err := d.check(); err != nil {
		return nil, err
	}

	bodies := d.space.world.IntersectPoint(point, params.filter(false))
	return collectResults(bodies, maxResults), nil
}

// IntersectAABB lists the objects whose bounds overlap box
func (d *DirectSpaceState) IntersectAABB(box actor.AABB, params QueryParams, maxResults int) ([]ShapeResult, error) {
	if err := d.check(); err != nil {
		return nil, err
	}

	bodies := d.space.world.IntersectAABB(box, params.filter(false))
	return collectResults(bodies, maxResults), nil
}

// IntersectRay returns the closest hit along the segment
func (d *DirectSpaceState) IntersectRay(params RayParams) (RayResult, bool, error) {
	if err := d.check(); err != nil {
		return RayResult{}, false, err
	}

	hit, ok := d.space.world.CastRay(params.From, params.To, params.filter(params.PickRay))
	if !ok {
		return RayResult{}, false, nil
	}
	return RayResult{ShapeResult: shapeResult(hit.Body), Position: hit.Position, Normal: hit.Normal}, true, nil
}

func collectResults(bodies []*actor.RigidBody, maxResults int) []ShapeResult {
	if maxResults > 0 && len(bodies) > maxResults {
		bodies = bodies[:maxResults]
	}
	results := make([]ShapeResult, 0, len(bodies))
	for _, rb := range bodies {
		results = append(results, shapeResult(rb))
	}
	return results
}
