package renderer

import "github.com/spaghettifunk/vesta/engine/renderer/metadata"

// Drawable is anything the frame loop mirrors to the GPU and records draws
// for. Every method taking a slot only touches resources of that ring slot.
type Drawable interface {
	UpdateVertexBuffer(allocator metadata.BufferAllocator) error
	UpdateInstanceBuffer(allocator metadata.BufferAllocator, slot int) error
	Draw(recorder metadata.CommandRecorder, slot int)
	Destroy()
}

// UniformSource writes the per-frame uniform block, such as the camera
// matrices, into the buffer of the current ring slot.
type UniformSource interface {
	UpdateBuffer(buffer metadata.Buffer) error
}

type RendererType uint8

const (
	Vulkan RendererType = iota
)
