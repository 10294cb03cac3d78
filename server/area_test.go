package server

import (
	"testing"

	"github.com/akmonengine/featherserver/actor"
	"github.com/akmonengine/featherserver/rid"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// boxArea places an area with a box of the given half extents in space
func boxArea(t *testing.T, s *Server, space rid.RID, halfExtents float64) rid.RID {
	t.Helper()
	shape := s.BoxShapeCreate()
	require.NoError(t, s.ShapeSetData(shape, mgl64.Vec3{halfExtents, halfExtents, halfExtents}))

	area := s.AreaCreate()
	require.NoError(t, s.AreaAddShape(area, shape, actor.NewTransform(), false))
	require.NoError(t, s.AreaSetSpace(area, space))
	return area
}

// floatingBody is a sphere that ignores gravity
func floatingBody(t *testing.T, s *Server, space rid.RID, x, y, z float64) rid.RID {
	t.Helper()
	body := s.BodyCreate()
	require.NoError(t, s.BodyAddShape(body, sphere(t, s, 0.5), actor.NewTransform(), false))
	require.NoError(t, s.BodySetParam(body, BodyParamGravityScale, 0))
	require.NoError(t, s.BodySetTransform(body, at(x, y, z)))
	require.NoError(t, s.BodySetSpace(body, space))
	return body
}

func TestAreaParamsRedirectToDefaultArea(t *testing.T) {
	s := newTestServer(t)
	space := s.SpaceCreate()
	defaultArea := s.spaces.GetOrNull(space).DefaultArea().RID()

	gravity, err := s.AreaGetParam(space, AreaParamGravity)
	require.NoError(t, err)
	assert.Equal(t, 9.8, gravity)

	require.NoError(t, s.AreaSetParam(space, AreaParamGravity, 3.0))
	require.NoError(t, s.AreaSetParam(space, AreaParamGravityVector, mgl64.Vec3{1, 0, 0}))

	gravity, err = s.AreaGetParam(defaultArea, AreaParamGravity)
	require.NoError(t, err)
	assert.Equal(t, 3.0, gravity)
	vector, err := s.AreaGetParam(defaultArea, AreaParamGravityVector)
	require.NoError(t, err)
	assert.Equal(t, mgl64.Vec3{1, 0, 0}, vector)
}

func TestAreaParams(t *testing.T) {
	s := newTestServer(t)
	area := s.AreaCreate()

	tests := []struct {
		name    string
		param   AreaParam
		value   any
		wantErr error
	}{
		{"gravity", AreaParamGravity, 4.0, nil},
		{"linear damp", AreaParamLinearDamp, 0.5, nil},
		{"angular damp", AreaParamAngularDamp, 0.25, nil},
		{"priority", AreaParamPriority, 2.0, nil},
		{"gravity vector", AreaParamGravityVector, mgl64.Vec3{0, 0, -1}, nil},
		{"directional gravity", AreaParamGravityIsPoint, false, nil},
		{"point gravity", AreaParamGravityIsPoint, true, ErrUnsupported},
		{"gravity wrong type", AreaParamGravity, 4, ErrInvalidArgument},
		{"vector wrong type", AreaParamGravityVector, 1.0, ErrInvalidArgument},
		{"override mode", AreaParamGravityOverrideMode, 1.0, ErrNotImplemented},
		{"point unit distance", AreaParamGravityPointUnitDistance, 1.0, ErrNotImplemented},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.AreaSetParam(area, tt.param, tt.value)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)

			got, err := s.AreaGetParam(area, tt.param)
			require.NoError(t, err)
			assert.Equal(t, tt.value, got)
		})
	}

	_, err := s.AreaGetParam(rid.Invalid, AreaParamGravity)
	assert.ErrorIs(t, err, ErrInvalidHandle)
}

func TestZeroGravitySpace(t *testing.T) {
	s := newTestServer(t)
	space, body := activeSpace(t, s, 10)
	require.NoError(t, s.AreaSetParam(space, AreaParamGravity, 0.0))

	for range 30 {
		frameCycle(t, s)
	}

	xform, err := s.BodyGetTransform(body)
	require.NoError(t, err)
	assert.Equal(t, 10.0, xform.Position.Y())
}

func TestAreaMonitorFIFO(t *testing.T) {
	s := newTestServer(t)
	space := s.SpaceCreate()
	require.NoError(t, s.SpaceSetActive(space, true))

	area := boxArea(t, s, space, 2)
	first := floatingBody(t, s, space, -1, 0, 0)
	second := floatingBody(t, s, space, 1, 0, 0)
	require.NoError(t, s.BodyAttachObjectInstanceID(second, 9))

	var events []AreaMonitorEvent
	require.NoError(t, s.AreaSetMonitorCallback(area, func(event AreaMonitorEvent) {
		events = append(events, event)
	}))

	require.NoError(t, s.Step(frame))
	assert.Empty(t, events, "callbacks wait for the query flush")
	s.Sync()
	require.NoError(t, s.FlushQueries())
	s.EndSync()

	require.Len(t, events, 2)
	assert.Equal(t, AreaMonitorEvent{Status: AreaBodyAdded, Object: first, InstanceID: -1}, events[0])
	assert.Equal(t, AreaMonitorEvent{Status: AreaBodyAdded, Object: second, InstanceID: 9}, events[1])

	// staying inside is silent
	frameCycle(t, s)
	assert.Len(t, events, 2)

	require.NoError(t, s.BodySetTransform(second, at(50, 0, 0)))
	frameCycle(t, s)

	require.Len(t, events, 3)
	assert.Equal(t, AreaBodyRemoved, events[2].Status)
	assert.Equal(t, second, events[2].Object)
}

func TestAreaMonitorsMonitorableAreas(t *testing.T) {
	s := newTestServer(t)
	space := s.SpaceCreate()
	require.NoError(t, s.SpaceSetActive(space, true))

	watcher := boxArea(t, s, space, 2)
	hidden := boxArea(t, s, space, 1)
	visible := boxArea(t, s, space, 1)
	require.NoError(t, s.AreaSetTransform(hidden, at(0.5, 0.3, 0.2)))
	require.NoError(t, s.AreaSetTransform(visible, at(-0.5, 0.2, 0.3)))
	require.NoError(t, s.AreaSetMonitorable(visible, true))

	var bodies, areas []AreaMonitorEvent
	require.NoError(t, s.AreaSetMonitorCallback(watcher, func(event AreaMonitorEvent) {
		bodies = append(bodies, event)
	}))
	require.NoError(t, s.AreaSetAreaMonitorCallback(watcher, func(event AreaMonitorEvent) {
		areas = append(areas, event)
	}))

	frameCycle(t, s)

	assert.Empty(t, bodies)
	require.Len(t, areas, 1)
	assert.Equal(t, visible, areas[0].Object)
}

func TestAreaShapeSlots(t *testing.T) {
	s := newTestServer(t)
	area := s.AreaCreate()
	first, second := s.BoxShapeCreate(), s.SphereShapeCreate()

	require.NoError(t, s.AreaAddShape(area, first, at(1, 0, 0), false))
	require.NoError(t, s.AreaAddShape(area, second, at(2, 0, 0), true))
	require.NoError(t, s.AreaSetShapeTransform(area, 1, at(3, 0, 0)))
	require.NoError(t, s.AreaSetShapeDisabled(area, 1, false))

	count, err := s.AreaGetShapeCount(area)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	xform, err := s.AreaGetShapeTransform(area, 1)
	require.NoError(t, err)
	assert.Equal(t, 3.0, xform.Position.X())

	replacement := s.BoxShapeCreate()
	require.NoError(t, s.AreaSetShape(area, 0, replacement))
	got, err := s.AreaGetShape(area, 0)
	require.NoError(t, err)
	assert.Equal(t, replacement, got)

	// the replaced shape is free for another object
	body := s.BodyCreate()
	require.NoError(t, s.BodyAddShape(body, first, actor.NewTransform(), false))

	require.NoError(t, s.AreaRemoveShape(area, 0))
	got, err = s.AreaGetShape(area, 0)
	require.NoError(t, err)
	assert.Equal(t, second, got)

	require.NoError(t, s.AreaClearShapes(area))
	count, err = s.AreaGetShapeCount(area)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestAreaTransformAndFlags(t *testing.T) {
	s := newTestServer(t)
	space := s.SpaceCreate()
	area := boxArea(t, s, space, 1)

	require.NoError(t, s.AreaSetTransform(area, at(0, 4, 0)))
	xform, err := s.AreaGetTransform(area)
	require.NoError(t, err)
	assert.Equal(t, 4.0, xform.Position.Y())
	assert.Equal(t, 4.0, s.areas.GetOrNull(area).rb.Transform.Position.Y())

	require.NoError(t, s.AreaSetCollisionLayer(area, 8))
	require.NoError(t, s.AreaSetCollisionMask(area, 3))
	layer, err := s.AreaGetCollisionLayer(area)
	require.NoError(t, err)
	assert.Equal(t, uint32(8), layer)
	mask, err := s.AreaGetCollisionMask(area)
	require.NoError(t, err)
	assert.Equal(t, uint32(3), mask)

	require.NoError(t, s.AreaAttachObjectInstanceID(area, 12))
	id, err := s.AreaGetObjectInstanceID(area)
	require.NoError(t, err)
	assert.Equal(t, int64(12), id)
	require.NoError(t, s.AreaSetRayPickable(area, false))
}

func TestAreaLeavingSpaceDropsPendingEvents(t *testing.T) {
	s := newTestServer(t)
	space := s.SpaceCreate()
	require.NoError(t, s.SpaceSetActive(space, true))

	area := boxArea(t, s, space, 2)
	floatingBody(t, s, space, 0, 0, 0)

	calls := 0
	require.NoError(t, s.AreaSetMonitorCallback(area, func(AreaMonitorEvent) { calls++ }))

	require.NoError(t, s.Step(frame))
	require.NoError(t, s.AreaSetSpace(area, rid.Invalid))
	s.Sync()
	require.NoError(t, s.FlushQueries())
	s.EndSync()

	assert.Zero(t, calls)
}
