package math

import (
	"github.com/chewxy/math32"
	"golang.org/x/exp/constraints"
)

const (
	K_PI        float32 = math32.Pi
	K_HALF_PI   float32 = 0.5 * K_PI
	K_THIRD_PI  float32 = K_PI / 3.0
	K_FLOAT_EPS float32 = 1.192092896e-07
	K_INFINITY  float32 = 1e30
)

// Clamp returns the value `f` clamped to the range [low, high].
// It works for any numeric type (integers and floats).
func Clamp[T constraints.Ordered](f, low, high T) T {
	if f < low {
		return low
	}
	if f > high {
		return high
	}
	return f
}

// ------------------------------------------
// Vector 3
// ------------------------------------------

func NewVec3(x, y, z float32) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

func NewVec3Zero() Vec3 {
	return Vec3{}
}

func NewVec3One() Vec3 {
	return Vec3{X: 1, Y: 1, Z: 1}
}

func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{X: v.X + other.X, Y: v.Y + other.Y, Z: v.Z + other.Z}
}

func (v Vec3) Sub(other Vec3) Vec3 {
	return Vec3{X: v.X - other.X, Y: v.Y - other.Y, Z: v.Z - other.Z}
}

func (v Vec3) MulScalar(scalar float32) Vec3 {
	return Vec3{X: v.X * scalar, Y: v.Y * scalar, Z: v.Z * scalar}
}

func (v Vec3) Dot(other Vec3) float32 {
	return v.X*other.X + v.Y*other.Y + v.Z*other.Z
}

func (v Vec3) Cross(other Vec3) Vec3 {
	return Vec3{
		X: v.Y*other.Z - v.Z*other.Y,
		Y: v.Z*other.X - v.X*other.Z,
		Z: v.X*other.Y - v.Y*other.X,
	}
}

func (v Vec3) LengthSquared() float32 {
	return v.Dot(v)
}

func (v Vec3) Length() float32 {
	return math32.Sqrt(v.LengthSquared())
}

// Normalized returns a unit length copy. The zero vector is returned as is.
func (v Vec3) Normalized() Vec3 {
	l := v.Length()
	if l < K_FLOAT_EPS {
		return v
	}
	return v.MulScalar(1.0 / l)
}

// Rotate turns v around axis by angle radians (right hand rule).
func (v Vec3) Rotate(axis Vec3, angle float32) Vec3 {
	k := axis.Normalized()
	if k.LengthSquared() < K_FLOAT_EPS {
		return v
	}
	s, c := math32.Sincos(angle)
	// Rodrigues: v*cos + (k x v)*sin + k*(k.v)*(1-cos)
	return v.MulScalar(c).
		Add(k.Cross(v).MulScalar(s)).
		Add(k.MulScalar(k.Dot(v) * (1 - c)))
}

// Compare reports whether every component differs by at most tolerance.
func (v Vec3) Compare(other Vec3, tolerance float32) bool {
	return math32.Abs(v.X-other.X) <= tolerance &&
		math32.Abs(v.Y-other.Y) <= tolerance &&
		math32.Abs(v.Z-other.Z) <= tolerance
}

// Transform applies m to the point v (w = 1).
func (v Vec3) Transform(m Mat4) Vec3 {
	return Vec3{
		X: m.At(0, 0)*v.X + m.At(0, 1)*v.Y + m.At(0, 2)*v.Z + m.At(0, 3),
		Y: m.At(1, 0)*v.X + m.At(1, 1)*v.Y + m.At(1, 2)*v.Z + m.At(1, 3),
		Z: m.At(2, 0)*v.X + m.At(2, 1)*v.Y + m.At(2, 2)*v.Z + m.At(2, 3),
	}
}

func (v Vec3) Array() [3]float32 {
	return [3]float32{v.X, v.Y, v.Z}
}

// ------------------------------------------
// Matrix 4
// ------------------------------------------

func NewMat4Identity() Mat4 {
	out := Mat4{}
	out.Data[0] = 1.0
	out.Data[5] = 1.0
	out.Data[10] = 1.0
	out.Data[15] = 1.0
	return out
}

// NewMat4FromRows builds a matrix from four rows, the way it reads on paper.
func NewMat4FromRows(r0, r1, r2, r3 [4]float32) Mat4 {
	out := Mat4{}
	rows := [4][4]float32{r0, r1, r2, r3}
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			out.Data[c*4+r] = rows[r][c]
		}
	}
	return out
}

// At returns the element at row r, column c.
func (mt Mat4) At(r, c int) float32 {
	return mt.Data[c*4+r]
}

// Mul returns mt * other.
func (mt Mat4) Mul(other Mat4) Mat4 {
	out := Mat4{}
	for c := 0; c < 4; c++ {
		for r := 0; r < 4; r++ {
			sum := float32(0)
			for k := 0; k < 4; k++ {
				sum += mt.Data[k*4+r] * other.Data[c*4+k]
			}
			out.Data[c*4+r] = sum
		}
	}
	return out
}

func NewMat4Translation(position Vec3) Mat4 {
	out := NewMat4Identity()
	out.Data[12] = position.X
	out.Data[13] = position.Y
	out.Data[14] = position.Z
	return out
}

func NewMat4Scale(scale Vec3) Mat4 {
	out := NewMat4Identity()
	out.Data[0] = scale.X
	out.Data[5] = scale.Y
	out.Data[10] = scale.Z
	return out
}

func NewMat4UniformScale(s float32) Mat4 {
	return NewMat4Scale(NewVec3(s, s, s))
}

// NewMat4Rotation returns a rotation of angle radians about axis.
func NewMat4Rotation(axis Vec3, angle float32) Mat4 {
	k := axis.Normalized()
	if k.LengthSquared() < K_FLOAT_EPS {
		return NewMat4Identity()
	}
	s, c := math32.Sincos(angle)
	t := 1 - c
	return NewMat4FromRows(
		[4]float32{t*k.X*k.X + c, t*k.X*k.Y - s*k.Z, t*k.X*k.Z + s*k.Y, 0},
		[4]float32{t*k.X*k.Y + s*k.Z, t*k.Y*k.Y + c, t*k.Y*k.Z - s*k.X, 0},
		[4]float32{t*k.X*k.Z - s*k.Y, t*k.Y*k.Z + s*k.X, t*k.Z*k.Z + c, 0},
		[4]float32{0, 0, 0, 1},
	)
}

// NewMat4ScaledAxis rotates about v by |v| radians.
func NewMat4ScaledAxis(v Vec3) Mat4 {
	return NewMat4Rotation(v, v.Length())
}

// NewMat4Perspective builds a right handed projection onto Vulkan clip space
// (depth in [0, 1]) for a camera looking down +z with y pointing down.
func NewMat4Perspective(fovY, aspectRatio, nearClip, farClip float32) Mat4 {
	d := 1.0 / math32.Tan(0.5*fovY)
	return NewMat4FromRows(
		[4]float32{d / aspectRatio, 0, 0, 0},
		[4]float32{0, d, 0, 0},
		[4]float32{0, 0, farClip / (farClip - nearClip), -nearClip * farClip / (farClip - nearClip)},
		[4]float32{0, 0, 1, 0},
	)
}
