package actor

import "github.com/go-gl/mathgl/mgl64"

// Transform represents a position and orientation in 3D space
type Transform struct {
	Position        mgl64.Vec3
	Rotation        mgl64.Quat
	InverseRotation mgl64.Quat
}

// NewTransform creates an identity transform
func NewTransform() Transform {
	return Transform{
		Position:        mgl64.Vec3{0, 0, 0},
		Rotation:        mgl64.QuatIdent(),
		InverseRotation: mgl64.QuatIdent(),
	}
}

// TransformFrom builds a transform from a position and a rotation.
// The rotation is normalized.
func TransformFrom(position mgl64.Vec3, rotation mgl64.Quat) Transform {
	if rotation.Len() == 0 {
		rotation = mgl64.QuatIdent()
	}
	rotation = rotation.Normalize()

	return Transform{
		Position:        position,
		Rotation:        rotation,
		InverseRotation: rotation.Inverse(),
	}
}

// Compose returns the transform of a child expressed in this transform's frame
func (t Transform) Compose(child Transform) Transform {
	return TransformFrom(
		t.Position.Add(t.Rotation.Rotate(child.Position)),
		t.Rotation.Mul(child.Rotation),
	)
}

// PointToWorld maps a local point to world space
func (t Transform) PointToWorld(local mgl64.Vec3) mgl64.Vec3 {
	return t.Position.Add(t.Rotation.Rotate(local))
}

// PointToLocal maps a world point to local space
func (t Transform) PointToLocal(world mgl64.Vec3) mgl64.Vec3 {
	return t.Rotation.Inverse().Rotate(world.Sub(t.Position))
}
