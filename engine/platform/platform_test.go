package platform

import (
	"testing"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/spaghettifunk/vesta/engine/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslateKey(t *testing.T) {
	assert.Equal(t, core.KEY_ESCAPE, translateKey(glfw.KeyEscape))
	assert.Equal(t, core.KEY_PRIOR, translateKey(glfw.KeyPageUp))
	assert.Equal(t, core.KEY_NEXT, translateKey(glfw.KeyPageDown))
	assert.Equal(t, core.KEY_W, translateKey(glfw.KeyW))
	assert.Equal(t, core.KEY_UNKNOWN, translateKey(glfw.KeyF12))
}

func TestQueuedKeysReachInput(t *testing.T) {
	require.True(t, core.EventSystemInitialize())
	require.NoError(t, core.InputInitialize())

	var pressed []core.KeyCode
	core.EventRegister(core.EVENT_CODE_KEY_PRESSED, func(ctx core.EventContext) bool {
		pressed = append(pressed, ctx.Data.(*core.KeyEvent).KeyCode)
		return false
	})

	p, err := New()
	require.NoError(t, err)
	p.queueKey(core.KEY_UP, true)
	p.queueKey(core.KEY_UNKNOWN, true)
	p.queueKey(core.KEY_LEFT, true)
	p.queueKey(core.KEY_UP, false)

	p.drainKeys()
	assert.True(t, p.keys.IsEmpty())
	assert.Equal(t, []core.KeyCode{core.KEY_UP, core.KEY_LEFT}, pressed)
	assert.True(t, core.InputIsKeyDown(core.KEY_LEFT))
	assert.False(t, core.InputIsKeyDown(core.KEY_UP))
}
