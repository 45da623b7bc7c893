package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/vesta/engine/core"
)

// VulkanSemaphore implements metadata.Semaphore.
type VulkanSemaphore struct {
	Handle  vk.Semaphore
	context *VulkanContext
}

func NewSemaphore(context *VulkanContext) (*VulkanSemaphore, error) {
	createInfo := vk.SemaphoreCreateInfo{
		SType: vk.StructureTypeSemaphoreCreateInfo,
	}
	var handle vk.Semaphore
	if res := vk.CreateSemaphore(context.Device.LogicalDevice, &createInfo, context.Allocator, &handle); res != vk.Success {
		err := fmt.Errorf("%w: %w", core.ErrResourceCreation, resultError("vkCreateSemaphore", res))
		core.LogError(err.Error())
		return nil, err
	}
	return &VulkanSemaphore{Handle: handle, context: context}, nil
}

func (vs *VulkanSemaphore) Destroy() {
	if vs.Handle != nil {
		vk.DestroySemaphore(vs.context.Device.LogicalDevice, vs.Handle, vs.context.Allocator)
		vs.Handle = nil
	}
}
