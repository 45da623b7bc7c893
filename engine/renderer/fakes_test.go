package renderer

import (
	"errors"
	"fmt"

	"github.com/spaghettifunk/vesta/engine/renderer/metadata"
)

// eventLog collects every device call in order.
type eventLog struct {
	events []string
}

func (l *eventLog) add(format string, args ...interface{}) {
	l.events = append(l.events, fmt.Sprintf(format, args...))
}

func (l *eventLog) index(event string) int {
	for i, e := range l.events {
		if e == event {
			return i
		}
	}
	return -1
}

type fakeFence struct {
	id        int
	log       *eventLog
	signaled  bool
	pending   bool
	destroyed bool
	waitErr   error
}

// Wait completes pending GPU work at once.
func (f *fakeFence) Wait() error {
	f.log.add("wait fence %d", f.id)
	if f.waitErr != nil {
		return f.waitErr
	}
	if f.pending {
		f.pending = false
		f.signaled = true
	}
	if !f.signaled {
		return errors.New("wait on unsignaled fence would block forever")
	}
	return nil
}

func (f *fakeFence) Reset() error {
	f.log.add("reset fence %d", f.id)
	f.signaled = false
	return nil
}

func (f *fakeFence) Destroy() {
	f.log.add("destroy fence %d", f.id)
	f.destroyed = true
}

type fakeSemaphore struct {
	id        int
	log       *eventLog
	destroyed bool
}

func (s *fakeSemaphore) Destroy() {
	s.log.add("destroy semaphore %d", s.id)
	s.destroyed = true
}

type fakeFramebuffer struct {
	image uint32
	log   *eventLog
}

func (f *fakeFramebuffer) Destroy() {
	f.log.add("destroy framebuffer %d", f.image)
}

type fakeCommandBuffer struct {
	id  int
	log *eventLog
	ops []string
}

func (c *fakeCommandBuffer) Begin() error {
	c.ops = nil
	c.log.add("record cb %d", c.id)
	c.ops = append(c.ops, "begin")
	return nil
}

func (c *fakeCommandBuffer) BeginRenderPass(fb metadata.Framebuffer) {
	c.ops = append(c.ops, fmt.Sprintf("begin pass %d", fb.(*fakeFramebuffer).image))
}

func (c *fakeCommandBuffer) BindPipeline() {
	c.ops = append(c.ops, "bind pipeline")
}

func (c *fakeCommandBuffer) BindDescriptorSet(slot int) {
	c.ops = append(c.ops, fmt.Sprintf("bind set %d", slot))
}

func (c *fakeCommandBuffer) BindVertexBuffer(binding uint32, buffer metadata.Buffer, offset uint64) {
	c.ops = append(c.ops, fmt.Sprintf("bind vertex %d", binding))
}

func (c *fakeCommandBuffer) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	c.ops = append(c.ops, fmt.Sprintf("draw %d %d %d %d", vertexCount, instanceCount, firstVertex, firstInstance))
}

func (c *fakeCommandBuffer) EndRenderPass() {
	c.ops = append(c.ops, "end pass")
}

func (c *fakeCommandBuffer) End() error {
	c.ops = append(c.ops, "end")
	return nil
}

func (c *fakeCommandBuffer) Free() {
	c.log.add("free cb %d", c.id)
}

type fakeBuffer struct {
	name      string
	log       *eventLog
	size      uint64
	data      []byte
	destroyed bool
}

func (b *fakeBuffer) Size() uint64 { return b.size }

func (b *fakeBuffer) Fill(data []byte) error {
	if uint64(len(data)) > b.size {
		return errors.New("fill overflows buffer")
	}
	b.log.add("fill %s", b.name)
	b.data = append([]byte(nil), data...)
	return nil
}

func (b *fakeBuffer) Destroy() {
	b.destroyed = true
}

type submission struct {
	commandBuffer *fakeCommandBuffer
	ops           []string
	wait, signal  *fakeSemaphore
	fence         *fakeFence
}

type fakeDevice struct {
	log    *eventLog
	images int
	frames int

	// image returned by the n-th acquire; round robin when nil
	acquireOrder []uint32
	acquires     int

	fences         []*fakeFence
	semaphores     []*fakeSemaphore
	commandBuffers []*fakeCommandBuffer
	buffers        []*fakeBuffer
	uniforms       []*fakeBuffer
	submissions    []submission
	presented      []uint32

	acquireErr   error
	presentErr   error
	semaphoreErr error
	submitErr    error
	maxFences    int
}

func newFakeDevice(images, frames int) *fakeDevice {
	d := &fakeDevice{log: &eventLog{}, images: images, frames: frames, maxFences: -1}
	for i := 0; i < frames; i++ {
		d.uniforms = append(d.uniforms, &fakeBuffer{
			name: fmt.Sprintf("uniform %d", i),
			log:  d.log,
			size: metadata.UniformBufferSize,
		})
	}
	return d
}

func (d *fakeDevice) CreateBuffer(size uint64, usage metadata.BufferUsage, residency metadata.MemoryResidency) (metadata.Buffer, error) {
	b := &fakeBuffer{name: fmt.Sprintf("buffer %d", len(d.buffers)), log: d.log, size: size}
	d.buffers = append(d.buffers, b)
	return b, nil
}

func (d *fakeDevice) ImageCount() int     { return d.images }
func (d *fakeDevice) FramesInFlight() int { return d.frames }

func (d *fakeDevice) CreateFence(signaled bool) (metadata.Fence, error) {
	if d.maxFences >= 0 && len(d.fences) >= d.maxFences {
		return nil, errors.New("out of host memory")
	}
	f := &fakeFence{id: len(d.fences), log: d.log, signaled: signaled}
	d.fences = append(d.fences, f)
	return f, nil
}

func (d *fakeDevice) CreateSemaphore() (metadata.Semaphore, error) {
	if d.semaphoreErr != nil {
		return nil, d.semaphoreErr
	}
	s := &fakeSemaphore{id: len(d.semaphores), log: d.log}
	d.semaphores = append(d.semaphores, s)
	return s, nil
}

func (d *fakeDevice) CreateFramebuffer(image uint32) (metadata.Framebuffer, error) {
	return &fakeFramebuffer{image: image, log: d.log}, nil
}

func (d *fakeDevice) AllocateCommandBuffer() (metadata.CommandBuffer, error) {
	cb := &fakeCommandBuffer{id: len(d.commandBuffers), log: d.log}
	d.commandBuffers = append(d.commandBuffers, cb)
	return cb, nil
}

func (d *fakeDevice) AcquireNextImage(signal metadata.Semaphore) (uint32, error) {
	if d.acquireErr != nil {
		return 0, d.acquireErr
	}
	var image uint32
	if d.acquires < len(d.acquireOrder) {
		image = d.acquireOrder[d.acquires]
	} else {
		image = uint32(d.acquires % d.images)
	}
	d.acquires++
	d.log.add("acquire %d semaphore %d", image, signal.(*fakeSemaphore).id)
	return image, nil
}

func (d *fakeDevice) Submit(commandBuffer metadata.CommandBuffer, wait, signal metadata.Semaphore, fence metadata.Fence) error {
	cb := commandBuffer.(*fakeCommandBuffer)
	f := fence.(*fakeFence)
	if d.submitErr != nil {
		return d.submitErr
	}
	if f.signaled {
		return errors.New("submit with a signaled fence")
	}
	f.pending = true
	d.log.add("submit cb %d fence %d", cb.id, f.id)
	d.submissions = append(d.submissions, submission{
		commandBuffer: cb,
		ops:           append([]string(nil), cb.ops...),
		wait:          wait.(*fakeSemaphore),
		signal:        signal.(*fakeSemaphore),
		fence:         f,
	})
	return nil
}

func (d *fakeDevice) Present(image uint32, wait metadata.Semaphore) error {
	if d.presentErr != nil {
		return d.presentErr
	}
	d.log.add("present %d semaphore %d", image, wait.(*fakeSemaphore).id)
	d.presented = append(d.presented, image)
	return nil
}

func (d *fakeDevice) WaitIdle() error {
	d.log.add("idle")
	for _, f := range d.fences {
		if f.pending {
			f.pending = false
			f.signaled = true
		}
	}
	return nil
}

func (d *fakeDevice) UniformBuffer(slot int) metadata.Buffer {
	return d.uniforms[slot]
}

func (d *fakeDevice) DestroyPipeline() {
	d.log.add("destroy pipeline")
}

// countingDrawable records which slots were updated and drawn.
type countingDrawable struct {
	log       *eventLog
	destroyed bool
}

func (c *countingDrawable) UpdateVertexBuffer(allocator metadata.BufferAllocator) error {
	c.log.add("upload vertices")
	return nil
}

func (c *countingDrawable) UpdateInstanceBuffer(allocator metadata.BufferAllocator, slot int) error {
	c.log.add("update slot %d", slot)
	return nil
}

func (c *countingDrawable) Draw(recorder metadata.CommandRecorder, slot int) {
	recorder.Draw(3, 1, 0, 0)
}

func (c *countingDrawable) Destroy() {
	c.log.add("destroy drawable")
	c.destroyed = true
}

type uniformWriter struct {
	writes int
}

func (u *uniformWriter) UpdateBuffer(buffer metadata.Buffer) error {
	u.writes++
	return buffer.Fill(make([]byte, metadata.UniformBufferSize))
}

func fmtEvent(format string, args ...interface{}) string {
	return fmt.Sprintf(format, args...)
}
