package math

func TransformCreate() Transform {
	return Transform{Scale: NewVec3One()}
}

func TransformFromPosition(position Vec3) Transform {
	return Transform{Position: position, Scale: NewVec3One()}
}

func TransformFromPositionScale(position Vec3, scale Vec3) Transform {
	return Transform{Position: position, Scale: scale}
}

func (t Transform) WithRotation(axis Vec3, angle float32) Transform {
	t.Axis = axis
	t.Angle = angle
	return t
}

// Matrix returns translation * rotation * scale.
func (t Transform) Matrix() Mat4 {
	m := NewMat4Translation(t.Position)
	if t.Angle != 0 {
		m = m.Mul(NewMat4Rotation(t.Axis, t.Angle))
	}
	return m.Mul(NewMat4Scale(t.Scale))
}
