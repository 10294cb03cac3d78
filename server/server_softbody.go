package server

import (
	"github.com/akmonengine/featherserver/actor"
	"github.com/akmonengine/featherserver/rid"
	"github.com/go-gl/mathgl/mgl64"
)

// Soft bodies are not simulated: every entry point fails.

func (s *Server) SoftBodyCreate() (rid.RID, error) {
	return rid.Invalid, ErrSoftBodyUnsupported
}

func (s *Server) SoftBodySetSpace(body, space rid.RID) error {
	return ErrSoftBodyUnsupported
}

func (s *Server) SoftBodyGetSpace(body rid.RID) (rid.RID, error) {
	return rid.Invalid, ErrSoftBodyUnsupported
}

func (s *Server) SoftBodySetMesh(body, mesh rid.RID) error {
	return ErrSoftBodyUnsupported
}

func (s *Server) SoftBodySetTransform(body rid.RID, transform actor.Transform) error {
	return ErrSoftBodyUnsupported
}

func (s *Server) SoftBodySetCollisionLayer(body rid.RID, layer uint32) error {
	return ErrSoftBodyUnsupported
}

func (s *Server) SoftBodySetCollisionMask(body rid.RID, mask uint32) error {
	return ErrSoftBodyUnsupported
}

func (s *Server) SoftBodyAddCollisionException(body, except rid.RID) error {
	return ErrSoftBodyUnsupported
}

func (s *Server) SoftBodySetSimulationPrecision(body rid.RID, precision int) error {
	return ErrSoftBodyUnsupported
}

func (s *Server) SoftBodySetTotalMass(body rid.RID, mass float64) error {
	return ErrSoftBodyUnsupported
}

func (s *Server) SoftBodySetPointPosition(body rid.RID, point int, position mgl64.Vec3) error {
	return ErrSoftBodyUnsupported
}

func (s *Server) SoftBodyGetPointGlobalPosition(body rid.RID, point int) (mgl64.Vec3, error) {
	return mgl64.Vec3{}, ErrSoftBodyUnsupported
}

func (s *Server) SoftBodyPinPoint(body rid.RID, point int, pin bool) error {
	return ErrSoftBodyUnsupported
}

func (s *Server) SoftBodyRemoveAllPinnedPoints(body rid.RID) error {
	return ErrSoftBodyUnsupported
}
