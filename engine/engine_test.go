package engine

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/vesta/engine/core"
	"github.com/spaghettifunk/vesta/engine/renderer/components"
)

func TestSteerCamera(t *testing.T) {
	camera := components.NewCamera()
	start := camera.Position

	assert.True(t, steerCamera(camera, core.KEY_UP))
	assert.InDelta(t, moveStep, camera.Position.Sub(start).Length(), 1e-5)

	assert.True(t, steerCamera(camera, core.KEY_DOWN))
	assert.InDelta(t, 0, camera.Position.Sub(start).Length(), 1e-5)

	view := camera.ViewDirection
	assert.True(t, steerCamera(camera, core.KEY_RIGHT))
	assert.NotEqual(t, view, camera.ViewDirection)
	assert.True(t, steerCamera(camera, core.KEY_LEFT))
	assert.InDelta(t, 0, camera.ViewDirection.Sub(view).Length(), 1e-5)

	down := camera.DownDirection
	assert.True(t, steerCamera(camera, core.KEY_PRIOR))
	assert.NotEqual(t, down, camera.DownDirection)
	assert.True(t, steerCamera(camera, core.KEY_NEXT))
	assert.InDelta(t, 0, camera.DownDirection.Sub(down).Length(), 1e-5)

	assert.False(t, steerCamera(camera, core.KEY_A))
}

func TestEscapeStopsTheLoop(t *testing.T) {
	require.True(t, core.EventSystemInitialize())
	t.Cleanup(func() { core.EventSystemShutdown() })

	e := &Engine{camera: components.NewCamera()}
	e.isRunning.Store(true)
	core.EventRegister(core.EVENT_CODE_APPLICATION_QUIT, e.onEvent)

	handled := e.onKey(core.EventContext{
		Type: core.EVENT_CODE_KEY_PRESSED,
		Data: &core.KeyEvent{KeyCode: core.KEY_ESCAPE, Pressed: true},
	})
	assert.True(t, handled)
	assert.False(t, e.isRunning.Load())
}

func TestOnKeyIgnoresForeignPayload(t *testing.T) {
	e := &Engine{camera: components.NewCamera()}
	assert.False(t, e.onKey(core.EventContext{Type: core.EVENT_CODE_KEY_PRESSED, Data: "x"}))
}

func TestNewRequiresConfig(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)
	_, err = New(&Game{})
	assert.Error(t, err)
}

func TestFrameDrawsAfterStaleHandleUpdate(t *testing.T) {
	e := &Engine{gameInstance: &Game{
		FnUpdate: func(float64) error {
			return fmt.Errorf("blink 3: %w", core.ErrInvalidHandle)
		},
	}}
	drawn := 0
	err := e.frame(0.016, func() error { drawn++; return nil })
	require.NoError(t, err)
	assert.Equal(t, 1, drawn)
}

func TestFrameStopsOnUpdateFailure(t *testing.T) {
	boom := errors.New("script crashed")
	e := &Engine{gameInstance: &Game{
		FnUpdate: func(float64) error { return boom },
	}}
	drawn := 0
	err := e.frame(0.016, func() error { drawn++; return nil })
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, drawn)
}

func TestFrameReturnsDrawError(t *testing.T) {
	e := &Engine{gameInstance: &Game{}}
	err := e.frame(0.016, func() error { return core.ErrFrameAcquisition })
	assert.ErrorIs(t, err, core.ErrFrameAcquisition)
}
