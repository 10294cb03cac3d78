package main

import (
	"fmt"
	"log"

	"github.com/akmonengine/featherserver/actor"
	"github.com/akmonengine/featherserver/internal/config"
	"github.com/akmonengine/featherserver/rid"
	"github.com/akmonengine/featherserver/server"
	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"
)

// SetupScene creates a ground plane and a tilted bouncing cube in one active space
func SetupScene(srv *server.Server) (space, plane, cube rid.RID, err error) {
	space = srv.SpaceCreate()

	// Create ground plane (y=0)
	planeShape := srv.WorldBoundaryShapeCreate()
	if err = srv.ShapeSetData(planeShape, server.Plane{Normal: mgl64.Vec3{0, 1, 0}, D: 0}); err != nil {
		return
	}
	plane = srv.BodyCreate()
	if err = srv.BodyAddShape(plane, planeShape, actor.Transform{}, false); err != nil {
		return
	}
	if err = srv.BodySetMode(plane, server.BodyModeStatic); err != nil {
		return
	}
	if err = srv.BodySetSpace(plane, space); err != nil {
		return
	}

	boxShape := srv.BoxShapeCreate()
	if err = srv.ShapeSetData(boxShape, mgl64.Vec3{1.5, 1.5, 1.5}); err != nil {
		return
	}
	cube = srv.BodyCreate()
	if err = srv.BodyAddShape(cube, boxShape, actor.Transform{}, false); err != nil {
		return
	}
	if err = srv.BodySetParam(cube, server.BodyParamBounce, 0.8); err != nil {
		return
	}
	cubeTransform := actor.TransformFrom(mgl64.Vec3{-5.0, 5.0, -5.0}, mgl64.QuatRotate(mgl64.DegToRad(70), mgl64.Vec3{0, 0, 1}))
	if err = srv.BodySetTransform(cube, cubeTransform); err != nil {
		return
	}
	if err = srv.BodySetSpace(cube, space); err != nil {
		return
	}

	err = srv.SpaceSetActive(space, true)
	return
}

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	cfg := config.DefaultPhysics()
	srv := server.New(cfg, logger)
	srv.Init()
	defer srv.Finish()

	_, _, cube, err := SetupScene(srv)
	if err != nil {
		logger.Fatal("scene setup failed", zap.Error(err))
	}

	frame := 0
	err = srv.BodySetStateSyncCallback(cube, func(state server.BodyDirectState) {
		if frame%10 != 0 {
			return
		}
		fmt.Printf("frame %3d  position %v  velocity %v (len=%.3f)  sleeping=%t\n",
			frame,
			state.Transform.Position,
			state.LinearVelocity,
			state.LinearVelocity.Len(),
			state.Sleeping)
	})
	if err != nil {
		logger.Fatal("state sync callback", zap.Error(err))
	}

	dt := cfg.TimeStep()
	const maxSteps int = 200

	for frame = 0; frame < maxSteps; frame++ {
		if err := srv.Step(dt); err != nil {
			logger.Fatal("step failed", zap.Int("frame", frame), zap.Error(err))
		}
		srv.Sync()
		if err := srv.FlushQueries(); err != nil {
			logger.Fatal("flush failed", zap.Int("frame", frame), zap.Error(err))
		}
		srv.EndSync()
	}

	final, _ := srv.BodyGetTransform(cube)
	fmt.Printf("done: cube at %v after %d frames\n", final.Position, maxSteps)
}
