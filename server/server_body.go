package server

import (
	"fmt"

	"github.com/akmonengine/featherserver/actor"
	"github.com/akmonengine/featherserver/rid"
	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"
)

func (s *Server) BodyCreate() rid.RID {
	body := newBody(s.logger)
	body.rid = s.bodies.MakeRID(body)
	s.logger.Debug("body created", zap.Stringer("body", body.rid))
	return body.rid
}

func (s *Server) BodySetSpace(bodyRID, spaceRID rid.RID) error {
	body, err := s.mutableBody(bodyRID)
	if err != nil {
		return err
	}
	return s.assignSpace(&body.objectBase, spaceRID)
}

// BodyGetSpace returns rid.Invalid for a body outside any space
func (s *Server) BodyGetSpace(bodyRID rid.RID) (rid.RID, error) {
	body, err := s.body(bodyRID)
	if err != nil {
		return rid.Invalid, err
	}
	return spaceRIDOf(&body.objectBase), nil
}

func (s *Server) BodySetMode(bodyRID rid.RID, mode BodyMode) error {
	body, err := s.mutableBody(bodyRID)
	if err != nil {
		return err
	}
	if mode < BodyModeStatic || mode > BodyModeRigidLinear {
		return fmt.Errorf("%w: body mode %d", ErrInvalidArgument, mode)
	}
	body.setMode(mode)
	return nil
}

func (s *Server) BodyGetMode(bodyRID rid.RID) (BodyMode, error) {
	body, err := s.body(bodyRID)
	if err != nil {
		return 0, err
	}
	return body.mode, nil
}

func (s *Server) BodyAddShape(bodyRID, shapeRID rid.RID, transform actor.Transform, disabled bool) error {
	body, err := s.mutableBody(bodyRID)
	if err != nil {
		return err
	}
	return s.addShape(&body.objectBase, shapeRID, transform, disabled)
}

func (s *Server) BodySetShape(bodyRID rid.RID, idx int, shapeRID rid.RID) error {
	body, err := s.mutableBody(bodyRID)
	if err != nil {
		return err
	}
	return s.setShape(&body.objectBase, idx, shapeRID)
}

func (s *Server) BodySetShapeTransform(bodyRID rid.RID, idx int, transform actor.Transform) error {
	body, err := s.mutableBody(bodyRID)
	if err != nil {
		return err
	}
	return body.setShapeTransform(idx, sanitize(transform))
}

func (s *Server) BodySetShapeDisabled(bodyRID rid.RID, idx int, disabled bool) error {
	body, err := s.mutableBody(bodyRID)
	if err != nil {
		return err
	}
	return body.setShapeDisabled(idx, disabled)
}

func (s *Server) BodyGetShapeCount(bodyRID rid.RID) (int, error) {
	body, err := s.body(bodyRID)
	if err != nil {
		return 0, err
	}
	return body.shapeCount(), nil
}

func (s *Server) BodyGetShape(bodyRID rid.RID, idx int) (rid.RID, error) {
	body, err := s.body(bodyRID)
	if err != nil {
		return rid.Invalid, err
	}
	return s.shapeRIDAt(&body.objectBase, idx)
}

func (s *Server) BodyGetShapeTransform(bodyRID rid.RID, idx int) (actor.Transform, error) {
	body, err := s.body(bodyRID)
	if err != nil {
		return actor.Transform{}, err
	}
	return body.shapeTransform(idx)
}

func (s *Server) BodyRemoveShape(bodyRID rid.RID, idx int) error {
	body, err := s.mutableBody(bodyRID)
	if err != nil {
		return err
	}
	return body.removeShape(idx)
}

func (s *Server) BodyClearShapes(bodyRID rid.RID) error {
	body, err := s.mutableBody(bodyRID)
	if err != nil {
		return err
	}
	body.clearShapes()
	return nil
}

func (s *Server) BodyAttachObjectInstanceID(bodyRID rid.RID, id int64) error {
	body, err := s.body(bodyRID)
	if err != nil {
		return err
	}
	body.instanceID = id
	return nil
}

func (s *Server) BodyGetObjectInstanceID(bodyRID rid.RID) (int64, error) {
	body, err := s.body(bodyRID)
	if err != nil {
		return -1, err
	}
	return body.instanceID, nil
}

func (s *Server) BodySetCollisionLayer(bodyRID rid.RID, layer uint32) error {
	body, err := s.mutableBody(bodyRID)
	if err != nil {
		return err
	}
	body.setCollisionLayer(layer)
	return nil
}

func (s *Server) BodyGetCollisionLayer(bodyRID rid.RID) (uint32, error) {
	body, err := s.body(bodyRID)
	if err != nil {
		return 0, err
	}
	return body.layer, nil
}

func (s *Server) BodySetCollisionMask(bodyRID rid.RID, mask uint32) error {
	body, err := s.mutableBody(bodyRID)
	if err != nil {
		return err
	}
	body.setCollisionMask(mask)
	return nil
}

func (s *Server) BodyGetCollisionMask(bodyRID rid.RID) (uint32, error) {
	body, err := s.body(bodyRID)
	if err != nil {
		return 0, err
	}
	return body.mask, nil
}

// BodySetCollisionPriority is accepted and ignored; the priority stays 1
func (s *Server) BodySetCollisionPriority(bodyRID rid.RID, priority float64) error {
	body, err := s.body(bodyRID)
	if err != nil {
		return err
	}
	if priority != 1 {
		s.logger.Warn("collision priority is not supported, keeping 1",
			zap.Stringer("body", body.rid), zap.Float64("priority", priority))
	}
	return nil
}

func (s *Server) BodyGetCollisionPriority(bodyRID rid.RID) (float64, error) {
	if _, err := s.body(bodyRID); err != nil {
		return 0, err
	}
	return 1, nil
}

func (s *Server) BodySetRayPickable(bodyRID rid.RID, pickable bool) error {
	body, err := s.body(bodyRID)
	if err != nil {
		return err
	}
	body.rayPickable = pickable
	return nil
}

func (s *Server) BodyIsRayPickable(bodyRID rid.RID) (bool, error) {
	body, err := s.body(bodyRID)
	if err != nil {
		return false, err
	}
	return body.rayPickable, nil
}

func (s *Server) BodySetParam(bodyRID rid.RID, param BodyParam, value float64) error {
	body, err := s.mutableBody(bodyRID)
	if err != nil {
		return err
	}

	switch param {
	case BodyParamBounce:
		if value < 0 || value > 1 {
			return fmt.Errorf("%w: bounce %v", ErrInvalidArgument, value)
		}
		body.bounce = value
	case BodyParamFriction:
		if value < 0 {
			return fmt.Errorf("%w: friction %v", ErrInvalidArgument, value)
		}
		body.friction = value
	case BodyParamMass:
		if value <= 0 {
			return fmt.Errorf("%w: mass %v", ErrInvalidArgument, value)
		}
		body.setMass(value)
		return nil
	case BodyParamGravityScale:
		body.gravityScale = value
	case BodyParamLinearDamp:
		if value < 0 {
			return fmt.Errorf("%w: linear damp %v", ErrInvalidArgument, value)
		}
		body.linearDamp = value
	case BodyParamAngularDamp:
		if value < 0 {
			return fmt.Errorf("%w: angular damp %v", ErrInvalidArgument, value)
		}
		body.angularDamp = value
	default:
		return s.notImplemented(fmt.Sprintf("body param %d", param))
	}

	body.refreshParams()
	return nil
}

func (s *Server) BodyGetParam(bodyRID rid.RID, param BodyParam) (float64, error) {
	body, err := s.body(bodyRID)
	if err != nil {
		return 0, err
	}

	switch param {
	case BodyParamBounce:
		return body.bounce, nil
	case BodyParamFriction:
		return body.friction, nil
	case BodyParamMass:
		return body.mass, nil
	case BodyParamGravityScale:
		return body.gravityScale, nil
	case BodyParamLinearDamp:
		return body.linearDamp, nil
	case BodyParamAngularDamp:
		return body.angularDamp, nil
	}
	return 0, s.notImplemented(fmt.Sprintf("body param %d", param))
}

func (s *Server) BodyResetMassProperties(bodyRID rid.RID) error {
	if _, err := s.body(bodyRID); err != nil {
		return err
	}
	return s.notImplemented("body reset mass properties")
}

// BodySetState takes an actor.Transform for BodyStateTransform, an mgl64.Vec3
// for velocities and a bool for the sleep states
func (s *Server) BodySetState(bodyRID rid.RID, state BodyState, value any) error {
	body, err := s.mutableBody(bodyRID)
	if err != nil {
		return err
	}

	switch state {
	case BodyStateTransform:
		transform, ok := value.(actor.Transform)
		if !ok {
			return fmt.Errorf("%w: transform %T", ErrInvalidArgument, value)
		}
		body.setTransform(sanitize(transform))
	case BodyStateLinearVelocity, BodyStateAngularVelocity:
		v, ok := value.(mgl64.Vec3)
		if !ok {
			return fmt.Errorf("%w: velocity %T", ErrInvalidArgument, value)
		}
		if state == BodyStateLinearVelocity {
			body.setLinearVelocity(v)
		} else {
			body.setAngularVelocity(v)
		}
	case BodyStateSleeping, BodyStateCanSleep:
		flag, ok := value.(bool)
		if !ok {
			return fmt.Errorf("%w: flag %T", ErrInvalidArgument, value)
		}
		if state == BodyStateSleeping {
			body.setSleeping(flag)
		} else {
			body.setCanSleep(flag)
		}
	default:
		return fmt.Errorf("%w: body state %d", ErrInvalidArgument, state)
	}
	return nil
}

func (s *Server) BodyGetState(bodyRID rid.RID, state BodyState) (any, error) {
	body, err := s.body(bodyRID)
	if err != nil {
		return nil, err
	}

	switch state {
	case BodyStateTransform:
		return body.getTransform(), nil
	case BodyStateLinearVelocity:
		return body.getLinearVelocity(), nil
	case BodyStateAngularVelocity:
		return body.getAngularVelocity(), nil
	case BodyStateSleeping:
		return body.isSleeping(), nil
	case BodyStateCanSleep:
		return body.canSleep, nil
	}
	return nil, fmt.Errorf("%w: body state %d", ErrInvalidArgument, state)
}

// BodySetTransform is a shorthand for BodySetState with BodyStateTransform
func (s *Server) BodySetTransform(bodyRID rid.RID, transform actor.Transform) error {
	return s.BodySetState(bodyRID, BodyStateTransform, transform)
}

func (s *Server) BodyGetTransform(bodyRID rid.RID) (actor.Transform, error) {
	body, err := s.body(bodyRID)
	if err != nil {
		return actor.Transform{}, err
	}
	return body.getTransform(), nil
}

// simulated returns the engine body of a body that takes part in a step
func (s *Server) simulated(bodyRID rid.RID) (*actor.RigidBody, error) {
	body, err := s.mutableBody(bodyRID)
	if err != nil {
		return nil, err
	}
	if body.rb == nil {
		return nil, fmt.Errorf("%w: body %s is not in a space", ErrInvalidArgument, body.rid)
	}
	return body.rb, nil
}

func (s *Server) BodyApplyCentralImpulse(bodyRID rid.RID, impulse mgl64.Vec3) error {
	rb, err := s.simulated(bodyRID)
	if err != nil {
		return err
	}
	rb.ApplyImpulse(impulse, mgl64.Vec3{})
	return nil
}

// BodyApplyImpulse applies impulse at position, an offset from the body
// origin in world space
func (s *Server) BodyApplyImpulse(bodyRID rid.RID, impulse, position mgl64.Vec3) error {
	rb, err := s.simulated(bodyRID)
	if err != nil {
		return err
	}
	rb.ApplyImpulse(impulse, position)
	return nil
}

func (s *Server) BodyApplyTorqueImpulse(bodyRID rid.RID, impulse mgl64.Vec3) error {
	rb, err := s.simulated(bodyRID)
	if err != nil {
		return err
	}
	rb.ApplyTorqueImpulse(impulse)
	return nil
}

func (s *Server) BodyApplyCentralForce(bodyRID rid.RID, force mgl64.Vec3) error {
	rb, err := s.simulated(bodyRID)
	if err != nil {
		return err
	}
	rb.AddForce(force)
	return nil
}

func (s *Server) BodyApplyForce(bodyRID rid.RID, force, position mgl64.Vec3) error {
	rb, err := s.simulated(bodyRID)
	if err != nil {
		return err
	}
	rb.AddForceAtPoint(force, rb.Transform.Position.Add(position))
	return nil
}

func (s *Server) BodyApplyTorque(bodyRID rid.RID, torque mgl64.Vec3) error {
	rb, err := s.simulated(bodyRID)
	if err != nil {
		return err
	}
	rb.AddTorque(torque)
	return nil
}

func (s *Server) BodyAddConstantCentralForce(bodyRID rid.RID, force mgl64.Vec3) error {
	return s.BodyAddConstantForce(bodyRID, force, mgl64.Vec3{})
}

func (s *Server) BodyAddConstantForce(bodyRID rid.RID, force, position mgl64.Vec3) error {
	body, err := s.mutableBody(bodyRID)
	if err != nil {
		return err
	}
	body.constantForce = body.constantForce.Add(force)
	body.constantTorque = body.constantTorque.Add(position.Cross(force))
	body.refreshParams()
	return nil
}

func (s *Server) BodyAddConstantTorque(bodyRID rid.RID, torque mgl64.Vec3) error {
	body, err := s.mutableBody(bodyRID)
	if err != nil {
		return err
	}
	body.constantTorque = body.constantTorque.Add(torque)
	body.refreshParams()
	return nil
}

func (s *Server) BodySetConstantForce(bodyRID rid.RID, force mgl64.Vec3) error {
	body, err := s.mutableBody(bodyRID)
	if err != nil {
		return err
	}
	body.constantForce = force
	body.refreshParams()
	return nil
}

func (s *Server) BodyGetConstantForce(bodyRID rid.RID) (mgl64.Vec3, error) {
	body, err := s.body(bodyRID)
	if err != nil {
		return mgl64.Vec3{}, err
	}
	return body.constantForce, nil
}

func (s *Server) BodySetConstantTorque(bodyRID rid.RID, torque mgl64.Vec3) error {
	body, err := s.mutableBody(bodyRID)
	if err != nil {
		return err
	}
	body.constantTorque = torque
	body.refreshParams()
	return nil
}

func (s *Server) BodyGetConstantTorque(bodyRID rid.RID) (mgl64.Vec3, error) {
	body, err := s.body(bodyRID)
	if err != nil {
		return mgl64.Vec3{}, err
	}
	return body.constantTorque, nil
}

// BodySetContinuousCollisionDetection only stores the flag
func (s *Server) BodySetContinuousCollisionDetection(bodyRID rid.RID, enabled bool) error {
	body, err := s.body(bodyRID)
	if err != nil {
		return err
	}
	body.ccd = enabled
	return nil
}

func (s *Server) BodyIsContinuousCollisionDetectionEnabled(bodyRID rid.RID) (bool, error) {
	body, err := s.body(bodyRID)
	if err != nil {
		return false, err
	}
	return body.ccd, nil
}

// BodySetAxisLock is accepted and ignored; every axis stays free
func (s *Server) BodySetAxisLock(bodyRID rid.RID, axis BodyAxis, locked bool) error {
	body, err := s.body(bodyRID)
	if err != nil {
		return err
	}
	if locked {
		s.logger.Warn("axis lock is not supported",
			zap.Stringer("body", body.rid), zap.Int("axis", int(axis)))
	}
	return nil
}

func (s *Server) BodyIsAxisLocked(bodyRID rid.RID, axis BodyAxis) (bool, error) {
	if _, err := s.body(bodyRID); err != nil {
		return false, err
	}
	return false, nil
}

func (s *Server) BodySetAxisVelocity(bodyRID rid.RID, velocity mgl64.Vec3) error {
	if _, err := s.body(bodyRID); err != nil {
		return err
	}
	return s.notImplemented("body axis velocity")
}

func (s *Server) BodyAddCollisionException(bodyRID, exceptRID rid.RID) error {
	body, err := s.body(bodyRID)
	if err != nil {
		return err
	}
	if _, err := s.body(exceptRID); err != nil {
		return err
	}
	body.addException(exceptRID)
	return nil
}

func (s *Server) BodyRemoveCollisionException(bodyRID, exceptRID rid.RID) error {
	body, err := s.body(bodyRID)
	if err != nil {
		return err
	}
	body.removeException(exceptRID)
	return nil
}

func (s *Server) BodyGetCollisionExceptions(bodyRID rid.RID) ([]rid.RID, error) {
	body, err := s.body(bodyRID)
	if err != nil {
		return nil, err
	}
	return append([]rid.RID(nil), body.exceptions...), nil
}

func (s *Server) BodySetMaxContactsReported(bodyRID rid.RID, amount int) error {
	if _, err := s.body(bodyRID); err != nil {
		return err
	}
	return s.notImplemented("body max contacts reported")
}

func (s *Server) BodyGetMaxContactsReported(bodyRID rid.RID) (int, error) {
	if _, err := s.body(bodyRID); err != nil {
		return 0, err
	}
	return 0, s.notImplemented("body max contacts reported")
}

func (s *Server) BodySetContactsReportedDepthThreshold(bodyRID rid.RID, threshold float64) error {
	if _, err := s.body(bodyRID); err != nil {
		return err
	}
	return s.notImplemented("body contacts reported depth threshold")
}

func (s *Server) BodySetOmitForceIntegration(bodyRID rid.RID, enable bool) error {
	if _, err := s.body(bodyRID); err != nil {
		return err
	}
	return s.notImplemented("body omit force integration")
}

func (s *Server) BodySetForceIntegrationCallback(bodyRID rid.RID, callback func(BodyDirectState)) error {
	if _, err := s.body(bodyRID); err != nil {
		return err
	}
	return s.notImplemented("body force integration callback")
}

func (s *Server) BodySetUserFlags(bodyRID rid.RID, flags uint32) error {
	if _, err := s.body(bodyRID); err != nil {
		return err
	}
	return s.notImplemented("body user flags")
}

func (s *Server) BodyTestMotion(bodyRID rid.RID, from actor.Transform, motion mgl64.Vec3) (bool, error) {
	if _, err := s.body(bodyRID); err != nil {
		return false, err
	}
	return false, s.notImplemented("body test motion")
}

func (s *Server) BodyGetDirectState(bodyRID rid.RID) (*BodyDirectState, error) {
	if _, err := s.body(bodyRID); err != nil {
		return nil, err
	}
	return nil, s.notImplemented("body direct state")
}

// BodySetStateSyncCallback registers the callback fired during FlushQueries
// for every body that moved in the last step. A nil callback clears it.
func (s *Server) BodySetStateSyncCallback(bodyRID rid.RID, callback StateSyncCallback) error {
	body, err := s.body(bodyRID)
	if err != nil {
		return err
	}
	body.syncCallback = callback
	return nil
}
