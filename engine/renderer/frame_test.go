package renderer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/vesta/engine/core"
	"github.com/spaghettifunk/vesta/engine/math"
	"github.com/spaghettifunk/vesta/engine/renderer/metadata"
	"github.com/spaghettifunk/vesta/engine/renderer/registry"
)

func newDriver(t *testing.T, device *fakeDevice) *FrameDriver {
	t.Helper()
	fd, err := NewFrameDriver(device)
	require.NoError(t, err)
	return fd
}

func TestFirstFrameOrdering(t *testing.T) {
	device := newFakeDevice(3, 2)
	fd := newDriver(t, device)
	fd.SetUniformSource(&uniformWriter{})
	require.NoError(t, fd.AddDrawable(&countingDrawable{log: device.log}))

	require.NoError(t, fd.DrawFrame())

	assert.Equal(t, []string{
		"upload vertices",
		"acquire 0 semaphore 0",
		"wait fence 0",
		"reset fence 0",
		"fill uniform 0",
		"update slot 0",
		"record cb 0",
		"submit cb 0 fence 0",
		"present 0 semaphore 1",
	}, device.log.events)
}

func TestEverySlotIsWaitedBeforeItsBuffersChange(t *testing.T) {
	device := newFakeDevice(3, 2)
	fd := newDriver(t, device)
	uniforms := &uniformWriter{}
	fd.SetUniformSource(uniforms)
	require.NoError(t, fd.AddDrawable(&countingDrawable{log: device.log}))

	for frame := 0; frame < 6; frame++ {
		slot := frame % 2
		assert.Equal(t, slot, fd.CurrentFrame())
		device.log.events = nil

		require.NoError(t, fd.DrawFrame())

		wait := device.log.index(fmtEvent("wait fence %d", slot))
		fill := device.log.index(fmtEvent("fill uniform %d", slot))
		update := device.log.index(fmtEvent("update slot %d", slot))
		submit := device.log.index(fmtEvent("submit cb %d fence %d", frame%3, slot))
		require.GreaterOrEqual(t, wait, 0)
		assert.Less(t, wait, fill)
		assert.Less(t, wait, update)
		assert.Less(t, update, submit)
	}
	assert.Equal(t, 6, uniforms.writes)
	assert.Equal(t, uint64(6), fd.FrameNumber())
	assert.Equal(t, []uint32{0, 1, 2, 0, 1, 2}, device.presented)
}

func TestRingOfTwoRejectsUpdateOfInFlightSlot(t *testing.T) {
	device := newFakeDevice(2, 2)
	fd := newDriver(t, device)

	require.NoError(t, fd.DrawFrame())
	assert.ErrorIs(t, fd.UpdateSlot(0), core.ErrSlotInFlight)
	assert.NoError(t, fd.UpdateSlot(1))

	require.NoError(t, fd.DrawFrame())
	assert.ErrorIs(t, fd.UpdateSlot(0), core.ErrSlotInFlight)
	assert.ErrorIs(t, fd.UpdateSlot(1), core.ErrSlotInFlight)

	// the third frame reuses slot 0 only after waiting on its fence
	require.NoError(t, fd.DrawFrame())
	assert.ErrorIs(t, fd.UpdateSlot(0), core.ErrSlotInFlight)
	assert.Equal(t, 1, fd.CurrentFrame())

	assert.Error(t, fd.UpdateSlot(2))
}

func TestImageStillInFlightIsWaitedOn(t *testing.T) {
	device := newFakeDevice(3, 2)
	device.acquireOrder = []uint32{0, 0, 0}
	fd := newDriver(t, device)
	require.NoError(t, fd.AddDrawable(&countingDrawable{log: device.log}))

	require.NoError(t, fd.DrawFrame())
	device.log.events = nil
	require.NoError(t, fd.DrawFrame())

	ownWait := device.log.index("wait fence 1")
	ownerWait := device.log.index("wait fence 0")
	record := device.log.index("record cb 0")
	require.GreaterOrEqual(t, ownerWait, 0)
	assert.Less(t, ownWait, ownerWait)
	assert.Less(t, ownerWait, record)
}

func TestTriangleEndToEnd(t *testing.T) {
	device := newFakeDevice(2, 2)
	fd := newDriver(t, device)

	triangle := registry.New[metadata.Vertex, metadata.InstanceData]("triangle",
		[]metadata.Vertex{{0, -0.5, 0}, {0.5, 0.5, 0}, {-0.5, 0.5, 0}}, fd.FramesInFlight())
	instance := metadata.NewInstanceData(math.NewMat4Identity(), [3]float32{1, 0, 0})
	triangle.InsertVisibly(instance)
	require.NoError(t, fd.AddDrawable(triangle))

	require.NoError(t, fd.DrawFrame())

	require.Len(t, device.submissions, 1)
	assert.Equal(t, []string{
		"begin",
		"begin pass 0",
		"bind pipeline",
		"bind set 0",
		"bind vertex 0",
		"bind vertex 1",
		"draw 3 1 0 0",
		"end pass",
		"end",
	}, device.submissions[0].ops)
	assert.Equal(t, []uint32{0}, device.presented)

	sub := device.submissions[0]
	assert.Same(t, device.semaphores[0], sub.wait)
	assert.Same(t, device.semaphores[1], sub.signal)
	assert.Same(t, device.fences[0], sub.fence)

	require.Len(t, device.buffers, 2)
	assert.Equal(t, metadata.AsBytes([]metadata.InstanceData{instance}), device.buffers[1].data)
}

func TestFrameErrorsAreClassified(t *testing.T) {
	device := newFakeDevice(2, 2)
	fd := newDriver(t, device)
	device.acquireErr = errors.New("surface lost")
	err := fd.DrawFrame()
	assert.ErrorIs(t, err, core.ErrFrameAcquisition)
	assert.Empty(t, device.submissions)

	device = newFakeDevice(2, 2)
	fd = newDriver(t, device)
	device.fences[0].waitErr = errors.New("device lost")
	err = fd.DrawFrame()
	assert.ErrorIs(t, err, core.ErrSynchronizationWait)
	assert.Empty(t, device.submissions)

	device = newFakeDevice(2, 2)
	fd = newDriver(t, device)
	device.presentErr = errors.New("out of date")
	err = fd.DrawFrame()
	assert.ErrorIs(t, err, core.ErrFrameAcquisition)
	assert.Equal(t, 0, fd.CurrentFrame())
}

func TestSubmitFailureIsResourceCreation(t *testing.T) {
	device := newFakeDevice(2, 2)
	fd := newDriver(t, device)
	device.submitErr = errors.New("out of device memory")

	err := fd.DrawFrame()
	assert.ErrorIs(t, err, core.ErrResourceCreation)
	assert.ErrorContains(t, err, "out of device memory")
	assert.Empty(t, device.submissions)
	assert.Empty(t, device.presented)
	assert.Equal(t, 0, fd.CurrentFrame())
}

func TestDestroyWaitsIdleThenReleasesOnce(t *testing.T) {
	device := newFakeDevice(2, 2)
	fd := newDriver(t, device)
	drawable := &countingDrawable{log: device.log}
	require.NoError(t, fd.AddDrawable(drawable))
	require.NoError(t, fd.DrawFrame())

	device.log.events = nil
	require.NoError(t, fd.Destroy())

	assert.Equal(t, []string{
		"idle",
		"free cb 1",
		"destroy framebuffer 1",
		"free cb 0",
		"destroy framebuffer 0",
		"destroy fence 1",
		"destroy semaphore 3",
		"destroy semaphore 2",
		"destroy fence 0",
		"destroy semaphore 1",
		"destroy semaphore 0",
		"destroy pipeline",
		"destroy drawable",
	}, device.log.events)
	assert.True(t, drawable.destroyed)

	assert.ErrorIs(t, fd.Destroy(), core.ErrAlreadyDestroyed)
	assert.ErrorIs(t, fd.DrawFrame(), core.ErrAlreadyDestroyed)
	assert.ErrorIs(t, fd.AddDrawable(drawable), core.ErrAlreadyDestroyed)
}

func TestCreationFailureReleasesPartialRing(t *testing.T) {
	device := newFakeDevice(2, 2)
	device.maxFences = 1

	fd, err := NewFrameDriver(device)
	assert.Nil(t, fd)
	assert.ErrorIs(t, err, core.ErrResourceCreation)

	for _, s := range device.semaphores {
		assert.True(t, s.destroyed)
	}
	for _, f := range device.fences {
		assert.True(t, f.destroyed)
	}
}

func TestSlotTracker(t *testing.T) {
	tracker := NewSlotTracker(2)
	assert.True(t, tracker.IsRetired(0))
	tracker.MarkInFlight(0)
	assert.False(t, tracker.IsRetired(0))
	assert.ErrorIs(t, tracker.Check(0), core.ErrSlotInFlight)
	tracker.MarkRetired(0)
	assert.NoError(t, tracker.Check(0))
	assert.False(t, tracker.IsRetired(-1))
}
