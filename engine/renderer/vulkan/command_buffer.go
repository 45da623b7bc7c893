package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/vesta/engine/core"
	"github.com/spaghettifunk/vesta/engine/renderer/metadata"
)

type VulkanCommandBufferState int

const (
	COMMAND_BUFFER_STATE_READY VulkanCommandBufferState = iota
	COMMAND_BUFFER_STATE_RECORDING
	COMMAND_BUFFER_STATE_IN_RENDER_PASS
	COMMAND_BUFFER_STATE_RECORDING_ENDED
	COMMAND_BUFFER_STATE_SUBMITTED
	COMMAND_BUFFER_STATE_NOT_ALLOCATED
)

var _ metadata.CommandBuffer = (*VulkanCommandBuffer)(nil)

// VulkanCommandBuffer implements metadata.CommandBuffer on top of the
// graphics command pool, the main render pass and the scene pipeline.
type VulkanCommandBuffer struct {
	Handle vk.CommandBuffer
	State  VulkanCommandBufferState

	pool    vk.CommandPool
	context *VulkanContext
}

func NewVulkanCommandBuffer(context *VulkanContext, pool vk.CommandPool, isPrimary bool) (*VulkanCommandBuffer, error) {
	vCommandBuffer := &VulkanCommandBuffer{
		State:   COMMAND_BUFFER_STATE_NOT_ALLOCATED,
		pool:    pool,
		context: context,
	}

	level := vk.CommandBufferLevelSecondary
	if isPrimary {
		level = vk.CommandBufferLevelPrimary
	}

	allocateInfo := vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        pool,
		CommandBufferCount: 1,
		Level:              level,
	}

	handles := make([]vk.CommandBuffer, 1)
	if res := vk.AllocateCommandBuffers(context.Device.LogicalDevice, &allocateInfo, handles); res != vk.Success {
		err := fmt.Errorf("%w: %w", core.ErrResourceCreation, resultError("vkAllocateCommandBuffers", res))
		core.LogError(err.Error())
		return nil, err
	}
	vCommandBuffer.Handle = handles[0]
	vCommandBuffer.State = COMMAND_BUFFER_STATE_READY
	return vCommandBuffer, nil
}

func (v *VulkanCommandBuffer) Free() {
	if v.Handle == nil {
		return
	}
	vk.FreeCommandBuffers(v.context.Device.LogicalDevice, v.pool, 1, []vk.CommandBuffer{v.Handle})
	v.Handle = nil
	v.State = COMMAND_BUFFER_STATE_NOT_ALLOCATED
}

// Begin resets the buffer and starts a one time recording.
func (v *VulkanCommandBuffer) Begin() error {
	if res := vk.ResetCommandBuffer(v.Handle, 0); res != vk.Success {
		err := resultError("vkResetCommandBuffer", res)
		core.LogError(err.Error())
		return err
	}
	v.State = COMMAND_BUFFER_STATE_READY

	beginInfo := vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit),
	}
	if res := vk.BeginCommandBuffer(v.Handle, &beginInfo); res != vk.Success {
		err := resultError("vkBeginCommandBuffer", res)
		core.LogError(err.Error())
		return err
	}
	v.State = COMMAND_BUFFER_STATE_RECORDING
	return nil
}

func (v *VulkanCommandBuffer) BeginRenderPass(framebuffer metadata.Framebuffer) {
	fb, ok := framebuffer.(*VulkanFramebuffer)
	if !ok || fb.Renderpass == nil {
		core.LogError("BeginRenderPass called with a foreign framebuffer")
		return
	}
	fb.Renderpass.Begin(v, fb.Handle)
}

func (v *VulkanCommandBuffer) BindPipeline() {
	v.context.Pipeline.Bind(v, vk.PipelineBindPointGraphics)
}

func (v *VulkanCommandBuffer) BindDescriptorSet(slot int) {
	descriptors := v.context.Descriptors
	if descriptors == nil || slot < 0 || slot >= len(descriptors.Sets) {
		core.LogError("no descriptor set for ring slot %d", slot)
		return
	}
	vk.CmdBindDescriptorSets(v.Handle, vk.PipelineBindPointGraphics, v.context.Pipeline.PipelineLayout,
		0, 1, []vk.DescriptorSet{descriptors.Sets[slot]}, 0, nil)
}

func (v *VulkanCommandBuffer) BindVertexBuffer(binding uint32, buffer metadata.Buffer, offset uint64) {
	vb, ok := buffer.(*VulkanBuffer)
	if !ok || vb.Handle == nil {
		core.LogError("binding %d: not a live vulkan buffer", binding)
		return
	}
	vk.CmdBindVertexBuffers(v.Handle, binding, 1, []vk.Buffer{vb.Handle}, []vk.DeviceSize{vk.DeviceSize(offset)})
}

func (v *VulkanCommandBuffer) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	vk.CmdDraw(v.Handle, vertexCount, instanceCount, firstVertex, firstInstance)
}

func (v *VulkanCommandBuffer) EndRenderPass() {
	vk.CmdEndRenderPass(v.Handle)
	v.State = COMMAND_BUFFER_STATE_RECORDING
}

func (v *VulkanCommandBuffer) End() error {
	if res := vk.EndCommandBuffer(v.Handle); res != vk.Success {
		err := resultError("vkEndCommandBuffer", res)
		core.LogError(err.Error())
		return err
	}
	v.State = COMMAND_BUFFER_STATE_RECORDING_ENDED
	return nil
}

func (v *VulkanCommandBuffer) UpdateSubmitted() {
	v.State = COMMAND_BUFFER_STATE_SUBMITTED
}
