package metadata

/** @brief Flags describing how a GPU buffer is used. Can be combined. */
type BufferUsage uint32

const (
	BUFFER_USAGE_VERTEX       BufferUsage = 0x1
	BUFFER_USAGE_UNIFORM      BufferUsage = 0x2
	BUFFER_USAGE_TRANSFER_SRC BufferUsage = 0x4
	BUFFER_USAGE_TRANSFER_DST BufferUsage = 0x8
)

/** @brief Where the memory backing a buffer should live. */
type MemoryResidency uint32

const (
	/** @brief Host visible and coherent, filled by mapping. */
	MEMORY_RESIDENCY_HOST_VISIBLE MemoryResidency = iota
	/** @brief Device local, only reachable through transfers. */
	MEMORY_RESIDENCY_DEVICE_LOCAL
)

/**
 * @brief A single GPU buffer bound to a single memory allocation.
 * Fill overwrites the buffer from offset 0 and never writes past Size.
 */
type Buffer interface {
	Size() uint64
	Fill(data []byte) error
	Destroy()
}

type BufferAllocator interface {
	CreateBuffer(size uint64, usage BufferUsage, residency MemoryResidency) (Buffer, error)
}

type Fence interface {
	// Wait blocks until the fence is signaled.
	Wait() error
	Reset() error
	Destroy()
}

type Semaphore interface {
	Destroy()
}

type Framebuffer interface {
	Destroy()
}

/** @brief The subset of command recording a drawable object needs. */
type CommandRecorder interface {
	BindVertexBuffer(binding uint32, buffer Buffer, offset uint64)
	Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32)
}

type CommandBuffer interface {
	CommandRecorder
	Begin() error
	BeginRenderPass(framebuffer Framebuffer)
	BindPipeline()
	// BindDescriptorSet binds the uniform set of the given ring slot.
	BindDescriptorSet(slot int)
	EndRenderPass()
	End() error
	Free()
}

/**
 * @brief Everything the frame loop needs from a graphics device. The Vulkan
 * backend implements it; tests use an in-memory fake.
 */
type Device interface {
	BufferAllocator

	// ImageCount is the number of swapchain images.
	ImageCount() int
	// FramesInFlight is the depth of the per-frame resource ring.
	FramesInFlight() int

	CreateFence(signaled bool) (Fence, error)
	CreateSemaphore() (Semaphore, error)
	CreateFramebuffer(image uint32) (Framebuffer, error)
	AllocateCommandBuffer() (CommandBuffer, error)

	AcquireNextImage(signal Semaphore) (uint32, error)
	Submit(commandBuffer CommandBuffer, wait, signal Semaphore, fence Fence) error
	Present(image uint32, wait Semaphore) error
	WaitIdle() error

	// UniformBuffer returns the uniform buffer bound to the descriptor set of a ring slot.
	UniformBuffer(slot int) Buffer
	DestroyPipeline()
}
