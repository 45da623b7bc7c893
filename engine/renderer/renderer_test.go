package renderer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/vesta/engine/core"
)

func TestRendererLifecycle(t *testing.T) {
	assert.ErrorIs(t, DrawFrame(), core.ErrResourceCreation)
	assert.ErrorIs(t, AddDrawable(&countingDrawable{log: &eventLog{}}), core.ErrResourceCreation)
	assert.Equal(t, 0, FramesInFlight())
	assert.NoError(t, Shutdown())

	device := newFakeDevice(3, 2)
	require.NoError(t, Initialize(device))
	// a second call keeps the first renderer
	require.NoError(t, Initialize(newFakeDevice(1, 1)))
	assert.Equal(t, 2, FramesInFlight())

	uniforms := &uniformWriter{}
	SetUniformSource(uniforms)
	drawable := &countingDrawable{log: device.log}
	require.NoError(t, AddDrawable(drawable))

	for i := 0; i < 4; i++ {
		require.NoError(t, DrawFrame())
	}
	assert.Equal(t, 4, uniforms.writes)
	assert.Len(t, device.presented, 4)

	require.NoError(t, Shutdown())
	assert.True(t, drawable.destroyed)
	assert.ErrorIs(t, Shutdown(), core.ErrAlreadyDestroyed)
}
