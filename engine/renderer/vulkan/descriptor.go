package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/vesta/engine/core"
	"github.com/spaghettifunk/vesta/engine/renderer/metadata"
)

// VulkanDescriptors holds one uniform buffer and one descriptor set per
// ring slot, all sharing a single layout.
type VulkanDescriptors struct {
	Layout         vk.DescriptorSetLayout
	Pool           vk.DescriptorPool
	Sets           []vk.DescriptorSet
	UniformBuffers []*VulkanBuffer
}

func DescriptorsCreate(context *VulkanContext, slots int) (*VulkanDescriptors, error) {
	descriptors := &VulkanDescriptors{}

	fail := func(call string, res vk.Result) (*VulkanDescriptors, error) {
		descriptors.Destroy(context)
		err := fmt.Errorf("%w: %w", core.ErrResourceCreation, resultError(call, res))
		core.LogError(err.Error())
		return nil, err
	}

	layoutInfo := vk.DescriptorSetLayoutCreateInfo{
		SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
		BindingCount: 1,
		PBindings: []vk.DescriptorSetLayoutBinding{{
			Binding:         VULKAN_UNIFORM_BINDING,
			DescriptorType:  vk.DescriptorTypeUniformBuffer,
			DescriptorCount: 1,
			StageFlags:      vk.ShaderStageFlags(vk.ShaderStageVertexBit),
		}},
	}
	var layout vk.DescriptorSetLayout
	if res := vk.CreateDescriptorSetLayout(context.Device.LogicalDevice, &layoutInfo, context.Allocator, &layout); res != vk.Success {
		return fail("vkCreateDescriptorSetLayout", res)
	}
	descriptors.Layout = layout

	poolInfo := vk.DescriptorPoolCreateInfo{
		SType:         vk.StructureTypeDescriptorPoolCreateInfo,
		MaxSets:       uint32(slots),
		PoolSizeCount: 1,
		PPoolSizes: []vk.DescriptorPoolSize{{
			Type:            vk.DescriptorTypeUniformBuffer,
			DescriptorCount: uint32(slots),
		}},
	}
	var pool vk.DescriptorPool
	if res := vk.CreateDescriptorPool(context.Device.LogicalDevice, &poolInfo, context.Allocator, &pool); res != vk.Success {
		return fail("vkCreateDescriptorPool", res)
	}
	descriptors.Pool = pool

	limits := context.Device.Properties.Limits
	uniformSize := metadata.GetAligned(metadata.UniformBufferSize, uint64(limits.MinUniformBufferOffsetAlignment))
	for i := 0; i < slots; i++ {
		uniform, err := BufferCreate(context, uniformSize, metadata.BUFFER_USAGE_UNIFORM, metadata.MEMORY_RESIDENCY_HOST_VISIBLE)
		if err != nil {
			descriptors.Destroy(context)
			return nil, err
		}
		descriptors.UniformBuffers = append(descriptors.UniformBuffers, uniform)

		var set vk.DescriptorSet
		allocateInfo := vk.DescriptorSetAllocateInfo{
			SType:              vk.StructureTypeDescriptorSetAllocateInfo,
			DescriptorPool:     descriptors.Pool,
			DescriptorSetCount: 1,
			PSetLayouts:        []vk.DescriptorSetLayout{descriptors.Layout},
		}
		if res := vk.AllocateDescriptorSets(context.Device.LogicalDevice, &allocateInfo, &set); res != vk.Success {
			return fail("vkAllocateDescriptorSets", res)
		}
		descriptors.Sets = append(descriptors.Sets, set)

		vk.UpdateDescriptorSets(context.Device.LogicalDevice, 1, []vk.WriteDescriptorSet{{
			SType:           vk.StructureTypeWriteDescriptorSet,
			DstSet:          set,
			DstBinding:      VULKAN_UNIFORM_BINDING,
			DescriptorCount: 1,
			DescriptorType:  vk.DescriptorTypeUniformBuffer,
			PBufferInfo: []vk.DescriptorBufferInfo{{
				Buffer: uniform.Handle,
				Offset: 0,
				Range:  vk.DeviceSize(metadata.UniformBufferSize),
			}},
		}}, 0, nil)
	}

	core.LogDebug("Created %d uniform descriptor sets.", slots)
	return descriptors, nil
}

// Destroy frees the pool, which takes the sets with it, then the layout and
// the uniform buffers.
func (vd *VulkanDescriptors) Destroy(context *VulkanContext) {
	if vd.Pool != nil {
		vk.DestroyDescriptorPool(context.Device.LogicalDevice, vd.Pool, context.Allocator)
		vd.Pool = nil
	}
	vd.Sets = nil
	if vd.Layout != nil {
		vk.DestroyDescriptorSetLayout(context.Device.LogicalDevice, vd.Layout, context.Allocator)
		vd.Layout = nil
	}
	for i := len(vd.UniformBuffers) - 1; i >= 0; i-- {
		vd.UniformBuffers[i].Destroy()
	}
	vd.UniformBuffers = nil
}
