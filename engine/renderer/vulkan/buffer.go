package vulkan

import (
	"fmt"
	"unsafe"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/vesta/engine/core"
	"github.com/spaghettifunk/vesta/engine/renderer/metadata"
)

var _ metadata.Buffer = (*VulkanBuffer)(nil)

// VulkanBuffer is one vk.Buffer bound to its own allocation. It implements
// metadata.Buffer.
type VulkanBuffer struct {
	Handle       vk.Buffer
	Memory       vk.DeviceMemory
	Usage        vk.BufferUsageFlags
	MemoryFlags  vk.MemoryPropertyFlags
	MemoryIndex  int32
	TotalSize    uint64
	IsHostMapped bool

	context *VulkanContext
}

func bufferUsageFlags(usage metadata.BufferUsage) vk.BufferUsageFlags {
	var flags vk.BufferUsageFlagBits
	if usage&metadata.BUFFER_USAGE_VERTEX != 0 {
		flags |= vk.BufferUsageVertexBufferBit
	}
	if usage&metadata.BUFFER_USAGE_UNIFORM != 0 {
		flags |= vk.BufferUsageUniformBufferBit
	}
	if usage&metadata.BUFFER_USAGE_TRANSFER_SRC != 0 {
		flags |= vk.BufferUsageTransferSrcBit
	}
	if usage&metadata.BUFFER_USAGE_TRANSFER_DST != 0 {
		flags |= vk.BufferUsageTransferDstBit
	}
	return vk.BufferUsageFlags(flags)
}

func memoryPropertyFlags(residency metadata.MemoryResidency) vk.MemoryPropertyFlags {
	if residency == metadata.MEMORY_RESIDENCY_DEVICE_LOCAL {
		return vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit)
	}
	return vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit | vk.MemoryPropertyHostCoherentBit)
}

func BufferCreate(context *VulkanContext, size uint64, usage metadata.BufferUsage, residency metadata.MemoryResidency) (*VulkanBuffer, error) {
	if size == 0 {
		err := fmt.Errorf("%w: buffer size must be greater than zero", core.ErrResourceCreation)
		core.LogError(err.Error())
		return nil, err
	}
	outBuffer := &VulkanBuffer{
		Usage:        bufferUsageFlags(usage),
		MemoryFlags:  memoryPropertyFlags(residency),
		TotalSize:    size,
		IsHostMapped: residency == metadata.MEMORY_RESIDENCY_HOST_VISIBLE,
		context:      context,
	}

	bufferInfo := vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        vk.DeviceSize(size),
		Usage:       outBuffer.Usage,
		SharingMode: vk.SharingModeExclusive,
	}

	err := lockPool.SafeCall(BufferManagement, func() error {
		var handle vk.Buffer
		if res := vk.CreateBuffer(context.Device.LogicalDevice, &bufferInfo, context.Allocator, &handle); res != vk.Success {
			return resultError("vkCreateBuffer", res)
		}
		outBuffer.Handle = handle

		var requirements vk.MemoryRequirements
		vk.GetBufferMemoryRequirements(context.Device.LogicalDevice, handle, &requirements)
		requirements.Deref()

		outBuffer.MemoryIndex = context.FindMemoryIndex(requirements.MemoryTypeBits, outBuffer.MemoryFlags)
		if outBuffer.MemoryIndex == -1 {
			return fmt.Errorf("required memory type not found for %d byte buffer", size)
		}

		allocateInfo := vk.MemoryAllocateInfo{
			SType:           vk.StructureTypeMemoryAllocateInfo,
			AllocationSize:  requirements.Size,
			MemoryTypeIndex: uint32(outBuffer.MemoryIndex),
		}
		var memory vk.DeviceMemory
		if res := vk.AllocateMemory(context.Device.LogicalDevice, &allocateInfo, context.Allocator, &memory); res != vk.Success {
			return resultError("vkAllocateMemory", res)
		}
		outBuffer.Memory = memory

		if res := vk.BindBufferMemory(context.Device.LogicalDevice, outBuffer.Handle, outBuffer.Memory, 0); res != vk.Success {
			return resultError("vkBindBufferMemory", res)
		}
		return nil
	})
	if err != nil {
		outBuffer.Destroy()
		err = fmt.Errorf("%w: %w", core.ErrResourceCreation, err)
		core.LogError(err.Error())
		return nil, err
	}
	return outBuffer, nil
}

func (vb *VulkanBuffer) Size() uint64 {
	return vb.TotalSize
}

// Fill maps the whole allocation and copies data to its start.
func (vb *VulkanBuffer) Fill(data []byte) error {
	if vb.Handle == nil {
		return core.ErrAlreadyDestroyed
	}
	if !vb.IsHostMapped {
		return fmt.Errorf("buffer of %d bytes is not host visible", vb.TotalSize)
	}
	if uint64(len(data)) > vb.TotalSize {
		return fmt.Errorf("fill of %d bytes exceeds buffer size %d", len(data), vb.TotalSize)
	}
	if len(data) == 0 {
		return nil
	}
	return lockPool.SafeCall(BufferManagement, func() error {
		var ptr unsafe.Pointer
		if res := vk.MapMemory(vb.context.Device.LogicalDevice, vb.Memory, 0, vk.DeviceSize(len(data)), 0, &ptr); res != vk.Success {
			err := resultError("vkMapMemory", res)
			core.LogError(err.Error())
			return err
		}
		vk.Memcopy(ptr, data)
		vk.UnmapMemory(vb.context.Device.LogicalDevice, vb.Memory)
		return nil
	})
}

func (vb *VulkanBuffer) Destroy() {
	if vb.Memory != nil {
		vk.FreeMemory(vb.context.Device.LogicalDevice, vb.Memory, vb.context.Allocator)
		vb.Memory = nil
	}
	if vb.Handle != nil {
		vk.DestroyBuffer(vb.context.Device.LogicalDevice, vb.Handle, vb.context.Allocator)
		vb.Handle = nil
	}
	vb.TotalSize = 0
}
