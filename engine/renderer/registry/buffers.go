package registry

import (
	"fmt"

	"github.com/spaghettifunk/vesta/engine/core"
	"github.com/spaghettifunk/vesta/engine/renderer/metadata"
)

const (
	vertexBinding   uint32 = 0
	instanceBinding uint32 = 1
)

// UpdateVertexBuffer creates the vertex buffer on the first call and
// overwrites it afterwards. An empty vertex list creates nothing.
func (r *Registry[V, I]) UpdateVertexBuffer(allocator metadata.BufferAllocator) error {
	data := metadata.AsBytes(r.vertices)
	if len(data) == 0 {
		return nil
	}
	if r.vertexBuffer == nil {
		buffer, err := allocator.CreateBuffer(uint64(len(data)), metadata.BUFFER_USAGE_VERTEX, metadata.MEMORY_RESIDENCY_HOST_VISIBLE)
		if err != nil {
			err = fmt.Errorf("registry %s: failed to create vertex buffer: %w", r.name, err)
			core.LogError(err.Error())
			return err
		}
		r.vertexBuffer = buffer
		core.LogDebug("Registry %s: vertex buffer created (%d bytes).", r.name, len(data))
	}
	return r.vertexBuffer.Fill(data)
}

// UpdateInstanceBuffer copies the visible instances into the buffer of the
// given ring slot. The buffer is created on first use and recreated when
// the visible prefix outgrows it, so it must only be called once the GPU
// has finished with that slot.
func (r *Registry[V, I]) UpdateInstanceBuffer(allocator metadata.BufferAllocator, slot int) error {
	if slot < 0 || slot >= len(r.instanceBuffers) {
		err := fmt.Errorf("registry %s: ring slot %d out of range [0, %d)", r.name, slot, len(r.instanceBuffers))
		core.LogError(err.Error())
		return err
	}

	data := metadata.AsBytes(r.instances[:r.firstInvisible])
	required := max(uint64(len(data)), metadata.SizeOf[I]())

	buffer := r.instanceBuffers[slot]
	if buffer == nil || buffer.Size() < required {
		if buffer != nil {
			buffer.Destroy()
			r.instanceBuffers[slot] = nil
		}
		created, err := allocator.CreateBuffer(required, metadata.BUFFER_USAGE_VERTEX, metadata.MEMORY_RESIDENCY_HOST_VISIBLE)
		if err != nil {
			err = fmt.Errorf("registry %s: failed to create instance buffer for slot %d: %w", r.name, slot, err)
			core.LogError(err.Error())
			return err
		}
		r.instanceBuffers[slot] = created
		buffer = created
		core.LogDebug("Registry %s: instance buffer for slot %d created (%d bytes).", r.name, slot, required)
	}

	if len(data) > 0 {
		if err := buffer.Fill(data); err != nil {
			return err
		}
	}
	r.drawCounts[slot] = uint32(r.firstInvisible)
	return nil
}

// Draw records one instanced draw of the instances mirrored in the given
// slot. Nothing is recorded before both buffers exist or when no instance
// is visible.
func (r *Registry[V, I]) Draw(recorder metadata.CommandRecorder, slot int) {
	if slot < 0 || slot >= len(r.instanceBuffers) {
		return
	}
	instances := r.instanceBuffers[slot]
	count := r.drawCounts[slot]
	if r.vertexBuffer == nil || instances == nil || count == 0 {
		return
	}
	recorder.BindVertexBuffer(vertexBinding, r.vertexBuffer, 0)
	recorder.BindVertexBuffer(instanceBinding, instances, 0)
	recorder.Draw(uint32(len(r.vertices)), count, 0, 0)
}

// Destroy releases every GPU buffer. The registry data stays usable and
// buffers are recreated on the next update.
func (r *Registry[V, I]) Destroy() {
	if r.vertexBuffer != nil {
		r.vertexBuffer.Destroy()
		r.vertexBuffer = nil
	}
	for i, b := range r.instanceBuffers {
		if b != nil {
			b.Destroy()
			r.instanceBuffers[i] = nil
		}
		r.drawCounts[i] = 0
	}
}
