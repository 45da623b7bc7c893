package vulkan

import (
	"fmt"
	"runtime"
	"unsafe"

	"github.com/go-gl/glfw/v3.3/glfw"
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/vesta/engine/core"
	"github.com/spaghettifunk/vesta/engine/platform"
	"github.com/spaghettifunk/vesta/engine/renderer/metadata"
)

const validationLayerName = "VK_LAYER_KHRONOS_validation"

var _ metadata.Device = (*VulkanRenderer)(nil)

type VulkanConfig struct {
	AppName string
	Width   uint32
	Height  uint32
	// Validation enables the Khronos validation layer and the debug report
	// callback when the layer is installed.
	Validation     bool
	VertexShader   []uint32
	FragmentShader []uint32
	ClearColour    [4]float32
	// FramesInFlight is the ring depth. Zero means one slot per swapchain
	// image, capped at VULKAN_MAX_FRAMES_IN_FLIGHT.
	FramesInFlight int
	VSync          bool
}

// VulkanRenderer owns the instance, surface, device, swapchain, render pass,
// descriptors and pipeline. It implements metadata.Device for the frame
// driver.
type VulkanRenderer struct {
	platform *platform.Platform
	config   VulkanConfig
	context  *VulkanContext

	framesInFlight int
	initialized    bool
}

func New(p *platform.Platform, config VulkanConfig) *VulkanRenderer {
	return &VulkanRenderer{
		platform: p,
		config:   config,
		context: &VulkanContext{
			FramebufferWidth:  config.Width,
			FramebufferHeight: config.Height,
			Allocator:         nil,
		},
	}
}

func (vr *VulkanRenderer) Initialize() error {
	procAddr := glfw.GetVulkanGetInstanceProcAddress()
	if procAddr == nil {
		err := fmt.Errorf("%w: GetInstanceProcAddress is nil", core.ErrResourceCreation)
		core.LogError(err.Error())
		return err
	}
	vk.SetGetInstanceProcAddr(procAddr)

	if err := vk.Init(); err != nil {
		err = fmt.Errorf("%w: failed to initialize vulkan: %w", core.ErrResourceCreation, err)
		core.LogError(err.Error())
		return err
	}

	if err := vr.createInstance(); err != nil {
		return err
	}

	if vr.config.Validation {
		if err := vr.createDebugCallback(); err != nil {
			return err
		}
	}

	core.LogDebug("Creating Vulkan surface...")
	surface, err := vr.platform.Window.CreateWindowSurface(vr.context.Instance, nil)
	if err != nil {
		err = fmt.Errorf("%w: vulkan surface creation failed: %w", core.ErrResourceCreation, err)
		core.LogError(err.Error())
		return err
	}
	vr.context.Surface = vk.SurfaceFromPointer(surface)
	core.LogDebug("Vulkan surface created.")

	if err := DeviceCreate(vr.context); err != nil {
		return err
	}

	sc, err := SwapchainCreate(vr.context, vr.context.FramebufferWidth, vr.context.FramebufferHeight, vr.config.VSync)
	if err != nil {
		return err
	}
	vr.context.Swapchain = sc
	vr.context.FramebufferWidth = sc.Extent.Width
	vr.context.FramebufferHeight = sc.Extent.Height

	vr.framesInFlight = ringDepth(vr.config.FramesInFlight, int(sc.ImageCount))

	rp, err := RenderpassCreate(
		vr.context,
		0, 0, float32(sc.Extent.Width), float32(sc.Extent.Height),
		vr.config.ClearColour,
		1.0,
		0)
	if err != nil {
		return err
	}
	vr.context.MainRenderpass = rp

	descriptors, err := DescriptorsCreate(vr.context, vr.framesInFlight)
	if err != nil {
		return err
	}
	vr.context.Descriptors = descriptors

	if err := vr.createPipeline(); err != nil {
		return err
	}

	vr.initialized = true
	core.LogInfo("Vulkan renderer initialized with %d frames in flight.", vr.framesInFlight)
	return nil
}

// ringDepth resolves the configured ring depth against the image count.
func ringDepth(requested, images int) int {
	depth := requested
	if depth <= 0 {
		depth = images
	}
	if depth > VULKAN_MAX_FRAMES_IN_FLIGHT {
		depth = VULKAN_MAX_FRAMES_IN_FLIGHT
	}
	if depth < 1 {
		depth = 1
	}
	return depth
}

func (vr *VulkanRenderer) createInstance() error {
	appInfo := &vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		ApiVersion:         uint32(vk.MakeVersion(1, 0, 0)),
		ApplicationVersion: uint32(vk.MakeVersion(1, 0, 0)),
		PApplicationName:   VulkanSafeString(vr.config.AppName),
		PEngineName:        VulkanSafeString("Vesta"),
	}

	createInfo := vk.InstanceCreateInfo{
		SType:            vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo: appInfo,
	}

	requiredExtensions := vr.platform.GetRequiredExtensionNames()
	if runtime.GOOS == "darwin" {
		requiredExtensions = append(requiredExtensions,
			"VK_KHR_portability_enumeration",
			"VK_KHR_get_physical_device_properties2",
		)
		// VK_INSTANCE_CREATE_ENUMERATE_PORTABILITY_BIT_KHR
		createInfo.Flags |= 1
	}

	var layers []string
	if vr.config.Validation {
		if instanceHasLayer(validationLayerName) {
			layers = append(layers, validationLayerName)
			requiredExtensions = append(requiredExtensions, vk.ExtDebugReportExtensionName)
		} else {
			core.LogWarn("Validation requested but layer %s is missing, continuing without it.", validationLayerName)
			vr.config.Validation = false
		}
	}

	core.LogDebug("Required instance extensions: %v", requiredExtensions)

	createInfo.EnabledExtensionCount = uint32(len(requiredExtensions))
	createInfo.PpEnabledExtensionNames = VulkanSafeStrings(requiredExtensions)
	createInfo.EnabledLayerCount = uint32(len(layers))
	createInfo.PpEnabledLayerNames = VulkanSafeStrings(layers)

	var instance vk.Instance
	if res := vk.CreateInstance(&createInfo, vr.context.Allocator, &instance); res != vk.Success {
		err := fmt.Errorf("%w: %w", core.ErrResourceCreation, resultError("vkCreateInstance", res))
		core.LogError(err.Error())
		return err
	}
	vr.context.Instance = instance
	if err := vk.InitInstance(vr.context.Instance); err != nil {
		err = fmt.Errorf("%w: %w", core.ErrResourceCreation, err)
		core.LogError(err.Error())
		return err
	}

	core.LogInfo("Vulkan Instance created.")
	return nil
}

func instanceHasLayer(name string) bool {
	var count uint32
	if res := vk.EnumerateInstanceLayerProperties(&count, nil); res != vk.Success || count == 0 {
		return false
	}
	available := make([]vk.LayerProperties, count)
	if res := vk.EnumerateInstanceLayerProperties(&count, available); res != vk.Success {
		return false
	}
	for i := range available {
		available[i].Deref()
		end := FindFirstZeroInByteArray(available[i].LayerName[:])
		if string(available[i].LayerName[:end]) == name {
			return true
		}
	}
	return false
}

func (vr *VulkanRenderer) createDebugCallback() error {
	core.LogDebug("Creating Vulkan debugger...")
	debugCreateInfo := vk.DebugReportCallbackCreateInfo{
		SType:       vk.StructureTypeDebugReportCallbackCreateInfo,
		Flags:       vk.DebugReportFlags(vk.DebugReportErrorBit | vk.DebugReportWarningBit | vk.DebugReportPerformanceWarningBit),
		PfnCallback: dbgCallbackFunc,
	}

	var dbg vk.DebugReportCallback
	if res := vk.CreateDebugReportCallback(vr.context.Instance, &debugCreateInfo, vr.context.Allocator, &dbg); res != vk.Success {
		err := fmt.Errorf("%w: %w", core.ErrResourceCreation, resultError("vkCreateDebugReportCallbackEXT", res))
		core.LogError(err.Error())
		return err
	}
	vr.context.debugMessenger = dbg
	core.LogDebug("Vulkan debugger created.")
	return nil
}

func (vr *VulkanRenderer) createPipeline() error {
	vertex, err := NewShaderStage(vr.context, "vertex", vr.config.VertexShader, vk.ShaderStageVertexBit)
	if err != nil {
		return err
	}
	defer vertex.Destroy(vr.context)

	fragment, err := NewShaderStage(vr.context, "fragment", vr.config.FragmentShader, vk.ShaderStageFragmentBit)
	if err != nil {
		return err
	}
	defer fragment.Destroy(vr.context)

	extent := vr.context.Swapchain.Extent
	pipeline, err := NewGraphicsPipeline(vr.context, &VulkanPipelineConfig{
		Renderpass:           vr.context.MainRenderpass,
		Bindings:             InstancedBindings(),
		Attributes:           InstancedAttributes(),
		DescriptorSetLayouts: []vk.DescriptorSetLayout{vr.context.Descriptors.Layout},
		Stages:               []vk.PipelineShaderStageCreateInfo{vertex.ShaderStageCreateInfo, fragment.ShaderStageCreateInfo},
		Viewport: vk.Viewport{
			X:        0,
			Y:        0,
			Width:    float32(extent.Width),
			Height:   float32(extent.Height),
			MinDepth: 0.0,
			MaxDepth: 1.0,
		},
		Scissor: vk.Rect2D{
			Offset: vk.Offset2D{X: 0, Y: 0},
			Extent: extent,
		},
		DepthTest: true,
	})
	if err != nil {
		return err
	}
	vr.context.Pipeline = pipeline
	return nil
}

// Shutdown releases everything Initialize created, in reverse order. The
// frame driver must have been destroyed first.
func (vr *VulkanRenderer) Shutdown() error {
	ctx := vr.context
	if ctx.Device != nil && ctx.Device.LogicalDevice != nil {
		if res := vk.DeviceWaitIdle(ctx.Device.LogicalDevice); res != vk.Success {
			core.LogWarn(resultError("vkDeviceWaitIdle", res).Error())
		}
		vr.DestroyPipeline()
		if ctx.Descriptors != nil {
			ctx.Descriptors.Destroy(ctx)
			ctx.Descriptors = nil
		}
		if ctx.MainRenderpass != nil {
			ctx.MainRenderpass.Destroy(ctx)
			ctx.MainRenderpass = nil
		}
		if ctx.Swapchain != nil {
			ctx.Swapchain.Destroy(ctx)
			ctx.Swapchain = nil
		}
	}
	DeviceDestroy(ctx)

	if ctx.Surface != vk.NullSurface {
		core.LogDebug("Destroying Vulkan surface...")
		vk.DestroySurface(ctx.Instance, ctx.Surface, ctx.Allocator)
		ctx.Surface = vk.NullSurface
	}
	if ctx.debugMessenger != vk.NullDebugReportCallback {
		core.LogDebug("Destroying Vulkan debugger...")
		vk.DestroyDebugReportCallback(ctx.Instance, ctx.debugMessenger, ctx.Allocator)
		ctx.debugMessenger = vk.NullDebugReportCallback
	}
	if ctx.Instance != nil {
		core.LogDebug("Destroying Vulkan instance...")
		vk.DestroyInstance(ctx.Instance, ctx.Allocator)
		ctx.Instance = nil
	}
	vr.initialized = false
	return nil
}

func (vr *VulkanRenderer) CreateBuffer(size uint64, usage metadata.BufferUsage, residency metadata.MemoryResidency) (metadata.Buffer, error) {
	buffer, err := BufferCreate(vr.context, size, usage, residency)
	if err != nil {
		return nil, err
	}
	return buffer, nil
}

func (vr *VulkanRenderer) ImageCount() int {
	if vr.context.Swapchain == nil {
		return 0
	}
	return int(vr.context.Swapchain.ImageCount)
}

func (vr *VulkanRenderer) FramesInFlight() int {
	return vr.framesInFlight
}

func (vr *VulkanRenderer) CreateFence(signaled bool) (metadata.Fence, error) {
	fence, err := NewFence(vr.context, signaled)
	if err != nil {
		return nil, err
	}
	return fence, nil
}

func (vr *VulkanRenderer) CreateSemaphore() (metadata.Semaphore, error) {
	semaphore, err := NewSemaphore(vr.context)
	if err != nil {
		return nil, err
	}
	return semaphore, nil
}

func (vr *VulkanRenderer) CreateFramebuffer(image uint32) (metadata.Framebuffer, error) {
	sc := vr.context.Swapchain
	if int(image) >= len(sc.Views) {
		return nil, fmt.Errorf("%w: no swapchain image %d", core.ErrResourceCreation, image)
	}
	attachments := []vk.ImageView{sc.Views[image], sc.DepthAttachment.View}
	framebuffer, err := FramebufferCreate(vr.context, vr.context.MainRenderpass, sc.Extent.Width, sc.Extent.Height, attachments)
	if err != nil {
		return nil, err
	}
	return framebuffer, nil
}

func (vr *VulkanRenderer) AllocateCommandBuffer() (metadata.CommandBuffer, error) {
	cb, err := NewVulkanCommandBuffer(vr.context, vr.context.Device.GraphicsCommandPool, true)
	if err != nil {
		return nil, err
	}
	return cb, nil
}

func (vr *VulkanRenderer) AcquireNextImage(signal metadata.Semaphore) (uint32, error) {
	semaphore, ok := signal.(*VulkanSemaphore)
	if !ok {
		return 0, fmt.Errorf("acquire: unexpected semaphore type %T", signal)
	}
	return vr.context.Swapchain.AcquireNextImageIndex(vr.context, VULKAN_WAIT_FOREVER, semaphore.Handle)
}

func (vr *VulkanRenderer) Submit(commandBuffer metadata.CommandBuffer, wait, signal metadata.Semaphore, fence metadata.Fence) error {
	cb, ok := commandBuffer.(*VulkanCommandBuffer)
	if !ok {
		return fmt.Errorf("submit: unexpected command buffer type %T", commandBuffer)
	}
	waitSemaphore, ok := wait.(*VulkanSemaphore)
	if !ok {
		return fmt.Errorf("submit: unexpected semaphore type %T", wait)
	}
	signalSemaphore, ok := signal.(*VulkanSemaphore)
	if !ok {
		return fmt.Errorf("submit: unexpected semaphore type %T", signal)
	}
	vf, ok := fence.(*VulkanFence)
	if !ok {
		return fmt.Errorf("submit: unexpected fence type %T", fence)
	}

	submitInfo := vk.SubmitInfo{
		SType:                vk.StructureTypeSubmitInfo,
		WaitSemaphoreCount:   1,
		PWaitSemaphores:      []vk.Semaphore{waitSemaphore.Handle},
		PWaitDstStageMask:    []vk.PipelineStageFlags{vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit)},
		CommandBufferCount:   1,
		PCommandBuffers:      []vk.CommandBuffer{cb.Handle},
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{signalSemaphore.Handle},
	}

	queueIndex := uint32(vr.context.Device.GraphicsQueueIndex)
	if err := lockPool.SafeQueueCall(queueIndex, func() error {
		if res := vk.QueueSubmit(vr.context.Device.GraphicsQueue, 1, []vk.SubmitInfo{submitInfo}, vf.Handle); res != vk.Success {
			return resultError("vkQueueSubmit", res)
		}
		return nil
	}); err != nil {
		core.LogError(err.Error())
		return err
	}
	cb.UpdateSubmitted()
	return nil
}

func (vr *VulkanRenderer) Present(image uint32, wait metadata.Semaphore) error {
	semaphore, ok := wait.(*VulkanSemaphore)
	if !ok {
		return fmt.Errorf("present: unexpected semaphore type %T", wait)
	}
	return vr.context.Swapchain.Present(vr.context, semaphore.Handle, image)
}

func (vr *VulkanRenderer) WaitIdle() error {
	if res := vk.DeviceWaitIdle(vr.context.Device.LogicalDevice); res != vk.Success {
		return resultError("vkDeviceWaitIdle", res)
	}
	return nil
}

func (vr *VulkanRenderer) UniformBuffer(slot int) metadata.Buffer {
	d := vr.context.Descriptors
	if d == nil || slot < 0 || slot >= len(d.UniformBuffers) {
		return nil
	}
	return d.UniformBuffers[slot]
}

func (vr *VulkanRenderer) DestroyPipeline() {
	if vr.context.Pipeline != nil {
		vr.context.Pipeline.Destroy(vr.context)
		vr.context.Pipeline = nil
	}
}

// AspectRatio of the swapchain extent, used to build the projection.
func (vr *VulkanRenderer) AspectRatio() float32 {
	if vr.context.FramebufferHeight == 0 {
		return 1
	}
	return float32(vr.context.FramebufferWidth) / float32(vr.context.FramebufferHeight)
}

func dbgCallbackFunc(flags vk.DebugReportFlags, objectType vk.DebugReportObjectType, object uint64, location uint64, messageCode int32, pLayerPrefix string, pMessage string, pUserData unsafe.Pointer) vk.Bool32 {
	switch {
	case flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0:
		core.LogError("ERROR: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	case flags&vk.DebugReportFlags(vk.DebugReportWarningBit) != 0:
		core.LogWarn("WARNING: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	case flags&vk.DebugReportFlags(vk.DebugReportPerformanceWarningBit) != 0:
		core.LogWarn("PERFORMANCE WARNING: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	default:
		core.LogDebug("[%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	}
	return vk.Bool32(vk.False)
}
