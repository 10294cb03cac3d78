package runner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/akmonengine/featherserver/internal/config"
	"github.com/akmonengine/featherserver/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dropYAML = `
frames: 120
bodies:
  - name: ground
    mode: static
    shapes:
      - type: plane
        normal: [0, 1, 0]
  - name: ball
    position: [0, 3, 0]
    shapes:
      - type: sphere
        radius: 0.5
  - name: bob
    position: [10, 2, 0]
    shapes:
      - type: sphere
        radius: 0.1
areas:
  - name: zone
    position: [0, 2.5, 0]
    shapes:
      - type: box
        half_extents: [0.5, 0.5, 0.5]
joints:
  - type: pin
    body_a: bob
    local_a: [0, 1, 0]
    local_b: [10, 3, 0]
`

func loadScene(t *testing.T, text string) *config.Scene {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scene.yaml")
	require.NoError(t, os.WriteFile(path, []byte(text), 0644))
	scene, err := config.LoadScene(path)
	require.NoError(t, err)
	return scene
}

func newServer(t *testing.T) *server.Server {
	t.Helper()
	srv := server.New(config.DefaultPhysics(), nil)
	srv.Init()
	t.Cleanup(srv.Finish)
	return srv
}

func TestRunDropScene(t *testing.T) {
	scene := loadScene(t, dropYAML)
	w, err := Build(newServer(t), scene, nil)
	require.NoError(t, err)

	result, err := w.Run(scene.Frames, config.DefaultPhysics().TimeStep())
	require.NoError(t, err)

	assert.Equal(t, 120, result.Frames)
	assert.Len(t, result.Heights["ball"], 120)
	assert.Len(t, result.Contacts, 120)
	assert.InDelta(t, 0.5, result.Final["ball"].Y(), 0.05)
	assert.Equal(t, 0.0, result.Final["ground"].Y())

	// the bob hangs one unit below its anchor
	assert.InDelta(t, 2.0, result.Final["bob"].Y(), 0.05)

	require.Len(t, result.Events, 2)
	assert.Equal(t, Event{Frame: 0, Area: "zone", Object: "ball", Status: server.AreaBodyAdded}, result.Events[0])
	assert.Equal(t, "ball", result.Events[1].Object)
	assert.Equal(t, server.AreaBodyRemoved, result.Events[1].Status)
	assert.Greater(t, result.Events[1].Frame, 0)
}

func TestBuildLooksUpBodies(t *testing.T) {
	scene := loadScene(t, dropYAML)
	w, err := Build(newServer(t), scene, nil)
	require.NoError(t, err)

	ball, ok := w.Body("ball")
	require.True(t, ok)
	assert.True(t, ball.IsValid())
	assert.True(t, w.Space().IsValid())

	_, ok = w.Body("missing")
	assert.False(t, ok)
}

func TestBuildRejectsUnknownShape(t *testing.T) {
	scene := &config.Scene{
		Bodies: []config.SceneBody{{Name: "odd", Shapes: []config.SceneShape{{Type: "torus"}}}},
	}

	_, err := Build(newServer(t), scene, nil)
	assert.ErrorIs(t, err, server.ErrInvalidArgument)
}
