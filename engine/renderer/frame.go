package renderer

import (
	"errors"
	"fmt"

	"github.com/spaghettifunk/vesta/engine/core"
	"github.com/spaghettifunk/vesta/engine/renderer/metadata"
)

// FrameDriver owns the per-frame synchronization objects and runs the
// acquire, wait, update, record, submit, present loop. Resources of ring
// slot s are only written after the fence of s has been waited on.
type FrameDriver struct {
	device   metadata.Device
	uniforms UniformSource

	drawables []Drawable

	// per ring slot
	imageAvailable []metadata.Semaphore
	renderFinished []metadata.Semaphore
	inFlight       []metadata.Fence
	slots          *SlotTracker

	// per swapchain image
	framebuffers   []metadata.Framebuffer
	commandBuffers []metadata.CommandBuffer
	// ring slot whose submission last used the image, -1 if none
	imagesInFlight []int

	currentFrame int
	frameNumber  uint64
	destroyed    bool
}

// NewFrameDriver creates the ring of synchronization objects plus one
// framebuffer and one command buffer per swapchain image. The ring depth
// is the device's frames in flight.
func NewFrameDriver(device metadata.Device) (*FrameDriver, error) {
	frames := max(device.FramesInFlight(), 1)
	images := device.ImageCount()

	fd := &FrameDriver{
		device: device,
		slots:  NewSlotTracker(frames),
	}

	for i := 0; i < frames; i++ {
		available, err := device.CreateSemaphore()
		if err != nil {
			return nil, fd.abort("image available semaphore", err)
		}
		fd.imageAvailable = append(fd.imageAvailable, available)

		finished, err := device.CreateSemaphore()
		if err != nil {
			return nil, fd.abort("render finished semaphore", err)
		}
		fd.renderFinished = append(fd.renderFinished, finished)

		// signaled, so the first wait on every slot returns at once
		fence, err := device.CreateFence(true)
		if err != nil {
			return nil, fd.abort("in flight fence", err)
		}
		fd.inFlight = append(fd.inFlight, fence)
	}

	for i := 0; i < images; i++ {
		fb, err := device.CreateFramebuffer(uint32(i))
		if err != nil {
			return nil, fd.abort("framebuffer", err)
		}
		fd.framebuffers = append(fd.framebuffers, fb)

		cb, err := device.AllocateCommandBuffer()
		if err != nil {
			return nil, fd.abort("command buffer", err)
		}
		fd.commandBuffers = append(fd.commandBuffers, cb)
		fd.imagesInFlight = append(fd.imagesInFlight, -1)
	}

	core.LogInfo("Frame resources created: %d frames in flight, %d images.", frames, images)
	return fd, nil
}

func (fd *FrameDriver) abort(what string, cause error) error {
	fd.releaseRing()
	err := fmt.Errorf("failed to create %s: %w", what, cause)
	if !errors.Is(err, core.ErrResourceCreation) {
		err = fmt.Errorf("%w: %w", core.ErrResourceCreation, err)
	}
	core.LogError(err.Error())
	return err
}

// AddDrawable uploads the vertex data and schedules the drawable for every
// following frame.
func (fd *FrameDriver) AddDrawable(d Drawable) error {
	if fd.destroyed {
		return core.ErrAlreadyDestroyed
	}
	if err := d.UpdateVertexBuffer(fd.device); err != nil {
		return err
	}
	fd.drawables = append(fd.drawables, d)
	return nil
}

func (fd *FrameDriver) SetUniformSource(u UniformSource) {
	fd.uniforms = u
}

func (fd *FrameDriver) CurrentFrame() int {
	return fd.currentFrame
}

func (fd *FrameDriver) FramesInFlight() int {
	return fd.slots.Len()
}

func (fd *FrameDriver) FrameNumber() uint64 {
	return fd.frameNumber
}

// UpdateSlot writes every dynamic buffer of the given ring slot. It fails
// with ErrSlotInFlight when the slot's fence has not been waited on since
// its last submission.
func (fd *FrameDriver) UpdateSlot(slot int) error {
	if err := fd.slots.Check(slot); err != nil {
		core.LogError(err.Error())
		return err
	}
	if fd.uniforms != nil {
		if err := fd.uniforms.UpdateBuffer(fd.device.UniformBuffer(slot)); err != nil {
			return err
		}
	}
	for _, d := range fd.drawables {
		if err := d.UpdateInstanceBuffer(fd.device, slot); err != nil {
			return err
		}
	}
	return nil
}

// DrawFrame runs one iteration of the frame loop. Any error is fatal to
// the run.
func (fd *FrameDriver) DrawFrame() error {
	if fd.destroyed {
		return core.ErrAlreadyDestroyed
	}
	slot := fd.currentFrame

	image, err := fd.device.AcquireNextImage(fd.imageAvailable[slot])
	if err != nil {
		return fd.fail(core.ErrFrameAcquisition, "acquire next image", err)
	}

	if err := fd.waitSlot(slot); err != nil {
		return err
	}

	if err := fd.UpdateSlot(slot); err != nil {
		return err
	}

	// the image may still be rendered by a submission of another slot
	if owner := fd.imagesInFlight[image]; owner >= 0 && owner != slot {
		if err := fd.inFlight[owner].Wait(); err != nil {
			return fd.fail(core.ErrSynchronizationWait, fmt.Sprintf("wait for image %d", image), err)
		}
	}

	cb := fd.commandBuffers[image]
	if err := fd.record(cb, fd.framebuffers[image], slot); err != nil {
		return err
	}

	if err := fd.device.Submit(cb, fd.imageAvailable[slot], fd.renderFinished[slot], fd.inFlight[slot]); err != nil {
		return fd.fail(core.ErrResourceCreation, fmt.Sprintf("submit frame %d", fd.frameNumber), err)
	}
	fd.slots.MarkInFlight(slot)
	fd.imagesInFlight[image] = slot

	if err := fd.device.Present(image, fd.renderFinished[slot]); err != nil {
		return fd.fail(core.ErrFrameAcquisition, "present image", err)
	}

	fd.currentFrame = (fd.currentFrame + 1) % fd.slots.Len()
	fd.frameNumber++
	return nil
}

func (fd *FrameDriver) waitSlot(slot int) error {
	fence := fd.inFlight[slot]
	if err := fence.Wait(); err != nil {
		return fd.fail(core.ErrSynchronizationWait, fmt.Sprintf("wait for slot %d", slot), err)
	}
	if err := fence.Reset(); err != nil {
		return fd.fail(core.ErrSynchronizationWait, fmt.Sprintf("reset fence of slot %d", slot), err)
	}
	fd.slots.MarkRetired(slot)
	return nil
}

func (fd *FrameDriver) record(cb metadata.CommandBuffer, fb metadata.Framebuffer, slot int) error {
	if err := cb.Begin(); err != nil {
		return err
	}
	cb.BeginRenderPass(fb)
	cb.BindPipeline()
	cb.BindDescriptorSet(slot)
	for _, d := range fd.drawables {
		d.Draw(cb, slot)
	}
	cb.EndRenderPass()
	return cb.End()
}

func (fd *FrameDriver) fail(sentinel error, what string, cause error) error {
	var err error
	if errors.Is(cause, sentinel) {
		err = fmt.Errorf("failed to %s: %w", what, cause)
	} else {
		err = fmt.Errorf("failed to %s: %w: %w", what, sentinel, cause)
	}
	core.LogError(err.Error())
	return err
}

// Destroy waits for the device to go idle, then releases the ring, the
// pipeline and every drawable. A second call returns ErrAlreadyDestroyed.
func (fd *FrameDriver) Destroy() error {
	if fd.destroyed {
		return core.ErrAlreadyDestroyed
	}
	fd.destroyed = true

	var idleErr error
	if err := fd.device.WaitIdle(); err != nil {
		idleErr = fmt.Errorf("failed to wait for device idle: %w", err)
		core.LogError(idleErr.Error())
	}

	fd.releaseRing()
	fd.device.DestroyPipeline()
	for i := len(fd.drawables) - 1; i >= 0; i-- {
		fd.drawables[i].Destroy()
	}
	fd.drawables = nil
	return idleErr
}

// releaseRing destroys ring and per image objects in reverse creation order.
func (fd *FrameDriver) releaseRing() {
	for i := len(fd.framebuffers) - 1; i >= 0; i-- {
		if i < len(fd.commandBuffers) {
			fd.commandBuffers[i].Free()
		}
		fd.framebuffers[i].Destroy()
	}
	for i := len(fd.imageAvailable) - 1; i >= 0; i-- {
		if i < len(fd.inFlight) {
			fd.inFlight[i].Destroy()
		}
		if i < len(fd.renderFinished) {
			fd.renderFinished[i].Destroy()
		}
		fd.imageAvailable[i].Destroy()
	}
	fd.framebuffers = nil
	fd.commandBuffers = nil
	fd.imagesInFlight = nil
	fd.inFlight = nil
	fd.renderFinished = nil
	fd.imageAvailable = nil
}
