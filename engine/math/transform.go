package math

func TransformCreate() *Transform {
	return &Transform{
		Position: NewVec3Zero(),
		Scale:    NewVec3One(),
	}
}

func TransformFromPosition(position Vec3) *Transform {
	return &Transform{
		Position: position,
		Scale:    NewVec3One(),
	}
}

func (t *Transform) Translate(translation Vec3) {
	t.Position = t.Position.Add(translation)
}

func (t *Transform) SetParent(parent *Transform) {
	t.Parent = parent
}

// WorldPosition resolves the position through the parent chain. Parent
// scale applies to the child's local position.
func (t *Transform) WorldPosition() Vec3 {
	if t == nil {
		return NewVec3Zero()
	}
	if t.Parent == nil {
		return t.Position
	}
	return t.Parent.WorldPosition().Add(t.Position.Mul(t.Parent.Scale))
}

// Origin returns the integer grid cell the transform sits in. Each component
// is truncated toward zero, so -0.5 maps to 0 and not -1. The world position
// must satisfy InGridRange on every axis.
func (t *Transform) Origin() IVec3 {
	return NewIVec3Truncated(t.WorldPosition())
}
