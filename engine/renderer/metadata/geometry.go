package metadata

import (
	"github.com/spaghettifunk/vesta/engine/math"
)

/** @brief A vertex holding only a position. */
type Vertex [3]float32

/**
 * @brief Per instance data consumed at vertex binding 1. The model matrix
 * occupies locations 1 to 4 (one column each) and the colour location 5.
 */
type InstanceData struct {
	Model  math.Mat4
	Colour [3]float32
}

const (
	VertexStride   uint32 = 12
	InstanceStride uint32 = 76
	// View followed by projection, two column-major mat4.
	UniformBufferSize uint64 = 128
)

func NewInstanceData(model math.Mat4, colour [3]float32) InstanceData {
	return InstanceData{Model: model, Colour: colour}
}
