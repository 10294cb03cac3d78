package server

import (
	"fmt"

	"github.com/akmonengine/featherserver/rid"
	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"
)

type PinJointParam int

const (
	PinJointParamBias PinJointParam = iota
	PinJointParamDamping
	PinJointParamImpulseClamp
)

func (s *Server) JointCreate() rid.RID {
	joint := newJoint()
	joint.rid = s.joints.MakeRID(joint)
	s.logger.Debug("joint created", zap.Stringer("joint", joint.rid))
	return joint.rid
}

// JointClear drops the constraint and both bodies; the joint can be made again
func (s *Server) JointClear(jointRID rid.RID) error {
	joint, err := s.joint(jointRID)
	if err != nil {
		return err
	}
	if joint.space != nil && joint.space.locked {
		return ErrSpaceLocked
	}
	joint.release()
	return nil
}

// JointMakePin ties localA on body A to localB on body B. A zero bodyB
// anchors localB in world space.
func (s *Server) JointMakePin(jointRID, bodyA rid.RID, localA mgl64.Vec3, bodyB rid.RID, localB mgl64.Vec3) error {
	joint, err := s.joint(jointRID)
	if err != nil {
		return err
	}
	a, err := s.mutableBody(bodyA)
	if err != nil {
		return err
	}

	var b *Body
	if bodyB.IsValid() {
		if b, err = s.mutableBody(bodyB); err != nil {
			return err
		}
	}

	switch {
	case a == b:
		return fmt.Errorf("%w: joint between %s and itself", ErrInvalidArgument, bodyA)
	case a.space == nil:
		return fmt.Errorf("%w: body %s is not in a space", ErrInvalidArgument, bodyA)
	case b != nil && b.space != a.space:
		return fmt.Errorf("%w: bodies %s and %s are in different spaces", ErrInvalidArgument, bodyA, bodyB)
	case joint.space != nil && joint.space.locked:
		return ErrSpaceLocked
	}

	joint.release()
	joint.jointType = JointTypePin
	joint.localA, joint.localB = localA, localB
	joint.setBodies(a, b)
	joint.bind()

	s.logger.Debug("pin joint bound",
		zap.Stringer("joint", joint.rid), zap.Stringer("body_a", bodyA), zap.Stringer("body_b", bodyB))
	return nil
}

func (s *Server) JointMakeHinge(jointRID, bodyA, bodyB rid.RID) error {
	if _, err := s.joint(jointRID); err != nil {
		return err
	}
	return s.notImplemented("hinge joint")
}

func (s *Server) JointMakeSlider(jointRID, bodyA, bodyB rid.RID) error {
	if _, err := s.joint(jointRID); err != nil {
		return err
	}
	return s.notImplemented("slider joint")
}

func (s *Server) JointMakeConeTwist(jointRID, bodyA, bodyB rid.RID) error {
	if _, err := s.joint(jointRID); err != nil {
		return err
	}
	return s.notImplemented("cone twist joint")
}

func (s *Server) JointMakeGeneric6DOF(jointRID, bodyA, bodyB rid.RID) error {
	if _, err := s.joint(jointRID); err != nil {
		return err
	}
	return s.notImplemented("generic 6DOF joint")
}

func (s *Server) JointGetType(jointRID rid.RID) (JointType, error) {
	joint, err := s.joint(jointRID)
	if err != nil {
		return JointTypeNone, err
	}
	return joint.jointType, nil
}

func (s *Server) JointGetState(jointRID rid.RID) (JointState, error) {
	joint, err := s.joint(jointRID)
	if err != nil {
		return JointDestroyed, err
	}
	return joint.state, nil
}

func (s *Server) pinJoint(jointRID rid.RID) (*Joint, error) {
	joint, err := s.joint(jointRID)
	if err != nil {
		return nil, err
	}
	if joint.jointType != JointTypePin {
		return nil, fmt.Errorf("%w: joint %s is not a pin joint", ErrInvalidArgument, jointRID)
	}
	return joint, nil
}

func (s *Server) PinJointSetLocalA(jointRID rid.RID, local mgl64.Vec3) error {
	joint, err := s.pinJoint(jointRID)
	if err != nil {
		return err
	}
	joint.localA = local
	if joint.native != nil {
		joint.native.LocalA = local
	}
	return nil
}

func (s *Server) PinJointGetLocalA(jointRID rid.RID) (mgl64.Vec3, error) {
	joint, err := s.pinJoint(jointRID)
	if err != nil {
		return mgl64.Vec3{}, err
	}
	return joint.localA, nil
}

func (s *Server) PinJointSetLocalB(jointRID rid.RID, local mgl64.Vec3) error {
	joint, err := s.pinJoint(jointRID)
	if err != nil {
		return err
	}
	joint.localB = local
	if joint.native != nil {
		joint.native.LocalB = local
	}
	return nil
}

func (s *Server) PinJointGetLocalB(jointRID rid.RID) (mgl64.Vec3, error) {
	joint, err := s.pinJoint(jointRID)
	if err != nil {
		return mgl64.Vec3{}, err
	}
	return joint.localB, nil
}

func (s *Server) PinJointSetParam(jointRID rid.RID, param PinJointParam, value float64) error {
	if _, err := s.pinJoint(jointRID); err != nil {
		return err
	}
	return s.notImplemented(fmt.Sprintf("pin joint param %d", param))
}

func (s *Server) PinJointGetParam(jointRID rid.RID, param PinJointParam) (float64, error) {
	if _, err := s.pinJoint(jointRID); err != nil {
		return 0, err
	}
	return 0, s.notImplemented(fmt.Sprintf("pin joint param %d", param))
}

// JointSetParam covers the per-type params of hinge, slider, cone twist and
// 6DOF joints
func (s *Server) JointSetParam(jointRID rid.RID, param int, value float64) error {
	if _, err := s.joint(jointRID); err != nil {
		return err
	}
	return s.notImplemented(fmt.Sprintf("joint param %d", param))
}

func (s *Server) JointGetParam(jointRID rid.RID, param int) (float64, error) {
	if _, err := s.joint(jointRID); err != nil {
		return 0, err
	}
	return 0, s.notImplemented(fmt.Sprintf("joint param %d", param))
}

// JointSetSolverPriority is accepted and ignored; the priority stays 1
func (s *Server) JointSetSolverPriority(jointRID rid.RID, priority int) error {
	joint, err := s.joint(jointRID)
	if err != nil {
		return err
	}
	if priority != defaultSolverPriority {
		s.logger.Warn("joint solver priority is not supported, keeping 1",
			zap.Stringer("joint", joint.rid), zap.Int("priority", priority))
	}
	return nil
}

func (s *Server) JointGetSolverPriority(jointRID rid.RID) (int, error) {
	if _, err := s.joint(jointRID); err != nil {
		return 0, err
	}
	return defaultSolverPriority, nil
}

// JointDisableCollisionsBetweenBodies adds or removes the collision
// exceptions between the two bodies of the joint
func (s *Server) JointDisableCollisionsBetweenBodies(jointRID rid.RID, disable bool) error {
	joint, err := s.joint(jointRID)
	if err != nil {
		return err
	}
	joint.setCollisionDisabled(disable)
	return nil
}

func (s *Server) JointIsDisabledCollisionsBetweenBodies(jointRID rid.RID) (bool, error) {
	joint, err := s.joint(jointRID)
	if err != nil {
		return false, err
	}
	return joint.collisionDisabled, nil
}
