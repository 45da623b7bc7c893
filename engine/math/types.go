package math

// Vec3 represents a 3D vector
type Vec3 struct {
	X, Y, Z float32
}

// Mat4 is a 4x4 matrix stored column-major, matching the GLSL mat4 layout.
// Element (row r, column c) lives at Data[c*4+r]. Vectors are columns, so
// A.Mul(B) applies B first.
type Mat4 struct {
	Data [16]float32
}

// Extents3D is an axis aligned bounding box.
type Extents3D struct {
	Min Vec3
	Max Vec3
}

// Transform composes translation, axis rotation and scale into a model
// matrix, in that order of application reversed (scale first).
type Transform struct {
	Position Vec3
	// Rotation axis, need not be normalized. A zero axis means no rotation.
	Axis  Vec3
	Angle float32
	Scale Vec3
}
