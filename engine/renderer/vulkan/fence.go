package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/vesta/engine/core"
)

// VulkanFence implements metadata.Fence.
type VulkanFence struct {
	Handle  vk.Fence
	context *VulkanContext
}

func NewFence(context *VulkanContext, createSignaled bool) (*VulkanFence, error) {
	fenceCreateInfo := vk.FenceCreateInfo{
		SType: vk.StructureTypeFenceCreateInfo,
	}
	// Signaled fences let the first wait on a fresh slot return at once.
	if createSignaled {
		fenceCreateInfo.Flags = vk.FenceCreateFlags(vk.FenceCreateSignaledBit)
	}

	var handle vk.Fence
	if res := vk.CreateFence(context.Device.LogicalDevice, &fenceCreateInfo, context.Allocator, &handle); res != vk.Success {
		err := fmt.Errorf("%w: %w", core.ErrResourceCreation, resultError("vkCreateFence", res))
		core.LogError(err.Error())
		return nil, err
	}
	return &VulkanFence{Handle: handle, context: context}, nil
}

// Wait blocks until the GPU signals the fence.
func (vf *VulkanFence) Wait() error {
	if vf.Handle == nil {
		return core.ErrAlreadyDestroyed
	}
	res := vk.WaitForFences(vf.context.Device.LogicalDevice, 1, []vk.Fence{vf.Handle}, vk.True, VULKAN_WAIT_FOREVER)
	if res != vk.Success {
		err := resultError("vkWaitForFences", res)
		core.LogError(err.Error())
		return err
	}
	return nil
}

func (vf *VulkanFence) Reset() error {
	if vf.Handle == nil {
		return core.ErrAlreadyDestroyed
	}
	return lockPool.SafeCall(SynchronizationManagement, func() error {
		if res := vk.ResetFences(vf.context.Device.LogicalDevice, 1, []vk.Fence{vf.Handle}); res != vk.Success {
			err := resultError("vkResetFences", res)
			core.LogError(err.Error())
			return err
		}
		return nil
	})
}

func (vf *VulkanFence) Destroy() {
	if vf.Handle != nil {
		vk.DestroyFence(vf.context.Device.LogicalDevice, vf.Handle, vf.context.Allocator)
		vf.Handle = nil
	}
}
