package math

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const tolerance = 1e-5

func assertMat4(t *testing.T, want, got Mat4) {
	t.Helper()
	for i := range want.Data {
		assert.InDelta(t, want.Data[i], got.Data[i], tolerance, "element %d", i)
	}
}

func TestMat4TranslationIsColumnMajor(t *testing.T) {
	m := NewMat4Translation(NewVec3(1, 2, 3))
	assert.Equal(t, float32(1), m.Data[12])
	assert.Equal(t, float32(2), m.Data[13])
	assert.Equal(t, float32(3), m.Data[14])
	assert.Equal(t, float32(1), m.At(0, 3))
}

func TestMat4MulAppliesRightOperandFirst(t *testing.T) {
	tr := NewMat4Translation(NewVec3(1, 0, 0))
	sc := NewMat4UniformScale(2)

	p := NewVec3(1, 1, 1).Transform(tr.Mul(sc))
	assert.True(t, p.Compare(NewVec3(3, 2, 2), tolerance), "got %v", p)

	p = NewVec3(1, 1, 1).Transform(sc.Mul(tr))
	assert.True(t, p.Compare(NewVec3(4, 2, 2), tolerance), "got %v", p)

	assertMat4(t, tr, NewMat4Identity().Mul(tr))
}

func TestRotation(t *testing.T) {
	r := NewMat4Rotation(NewVec3(0, 0, 1), K_HALF_PI)
	p := NewVec3(1, 0, 0).Transform(r)
	assert.True(t, p.Compare(NewVec3(0, 1, 0), tolerance), "got %v", p)

	v := NewVec3(1, 0, 0).Rotate(NewVec3(0, 0, 2), K_HALF_PI)
	assert.True(t, v.Compare(NewVec3(0, 1, 0), tolerance), "got %v", v)

	assertMat4(t, NewMat4Identity(), NewMat4ScaledAxis(NewVec3Zero()))
	assertMat4(t, r, NewMat4ScaledAxis(NewVec3(0, 0, K_HALF_PI)))
}

func TestPerspectiveMapsNearAndFarToVulkanDepth(t *testing.T) {
	p := NewMat4Perspective(K_THIRD_PI, 4.0/3.0, 0.1, 100)
	depth := func(z float32) float32 {
		clipZ := p.At(2, 2)*z + p.At(2, 3)
		clipW := p.At(3, 2) * z
		return clipZ / clipW
	}
	assert.InDelta(t, 0.0, depth(0.1), tolerance)
	assert.InDelta(t, 1.0, depth(100), tolerance)
}

func TestVec3(t *testing.T) {
	a := NewVec3(1, 0, 0)
	b := NewVec3(0, 1, 0)
	assert.Equal(t, NewVec3(0, 0, 1), a.Cross(b))
	assert.Equal(t, float32(0), a.Dot(b))
	assert.InDelta(t, 1.0, NewVec3(0, 3, 4).Normalized().Length(), tolerance)
	assert.Equal(t, NewVec3Zero(), NewVec3Zero().Normalized())
	assert.Equal(t, [3]float32{1, 0, 0}, a.Array())
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 5, Clamp(7, 0, 5))
	assert.Equal(t, uint32(2), Clamp(uint32(1), 2, 9))
	assert.Equal(t, float32(0.5), Clamp(float32(0.5), 0, 1))
}

func TestTransformMatrix(t *testing.T) {
	tr := TransformFromPositionScale(NewVec3(0, 0, 0.1), NewVec3(0.1, 0.1, 0.1))
	want := NewMat4Translation(NewVec3(0, 0, 0.1)).Mul(NewMat4UniformScale(0.1))
	assertMat4(t, want, tr.Matrix())

	rotated := TransformCreate().WithRotation(NewVec3(0, 0, 1), K_HALF_PI)
	p := NewVec3(1, 0, 0).Transform(rotated.Matrix())
	assert.True(t, p.Compare(NewVec3(0, 1, 0), tolerance), "got %v", p)
}

func TestComputeExtents(t *testing.T) {
	e := ComputeExtents([][3]float32{{-1, 2, 0}, {3, -2, 1}})
	assert.Equal(t, NewVec3(-1, -2, 0), e.Min)
	assert.Equal(t, NewVec3(3, 2, 1), e.Max)
	assert.Equal(t, NewVec3(1, 0, 0.5), e.Center())
	assert.Equal(t, Extents3D{}, ComputeExtents(nil))
}
