package vulkan

import "math"

/** @brief Upper bound for the frame ring depth. */
const VULKAN_MAX_FRAMES_IN_FLIGHT int = 3

/** @brief Fence and acquire waits never time out. */
const VULKAN_WAIT_FOREVER uint64 = math.MaxUint64

const (
	/** @brief Per vertex positions. */
	VULKAN_VERTEX_BINDING uint32 = 0
	/** @brief Per instance model matrix and colour. */
	VULKAN_INSTANCE_BINDING uint32 = 1
	/** @brief Binding of the camera uniform block inside set 0. */
	VULKAN_UNIFORM_BINDING uint32 = 0
)
