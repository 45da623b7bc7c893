package platform

import (
	"errors"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/spaghettifunk/vesta/engine/containers"
	"github.com/spaghettifunk/vesta/engine/core"
)

// keyQueueSize bounds the key events buffered between two PumpMessages calls.
const keyQueueSize = 256

func init() {
	// GLFW event handling must run on the main OS thread
	runtime.LockOSThread()
}

type Platform struct {
	Window *glfw.Window

	keys *containers.RingQueue[core.KeyEvent]
}

func New() (*Platform, error) {
	return &Platform{
		keys: containers.NewRingQueue[core.KeyEvent](keyQueueSize),
	}, nil
}

// Startup opens a fixed size window without a client API, ready for a
// Vulkan surface.
func (p *Platform) Startup(applicationName string, x, y, width, height uint32) error {
	if err := glfw.Init(); err != nil {
		core.LogError("failed to initialize glfw: %s", err)
		return err
	}
	if !glfw.VulkanSupported() {
		glfw.Terminate()
		err := errors.New("glfw reports no Vulkan loader")
		core.LogError(err.Error())
		return err
	}

	glfw.WindowHint(glfw.Visible, glfw.False)
	glfw.WindowHint(glfw.Resizable, glfw.False)
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)

	window, err := glfw.CreateWindow(int(width), int(height), applicationName, nil, nil)
	if err != nil {
		glfw.Terminate()
		core.LogError("failed to create window: %s", err)
		return err
	}
	p.Window = window

	p.Window.SetKeyCallback(p.keyCallback)
	p.Window.SetPos(int(x), int(y))
	p.Window.Show()
	return nil
}

func (p *Platform) Shutdown() error {
	if p.Window != nil {
		p.Window.Destroy()
		p.Window = nil
	}
	glfw.Terminate()
	return nil
}

// PumpMessages polls the window system, forwards queued key events to the
// input system and reports whether the window is still open.
func (p *Platform) PumpMessages() bool {
	glfw.PollEvents()
	p.drainKeys()
	return p.Window != nil && !p.Window.ShouldClose()
}

func (p *Platform) drainKeys() {
	for !p.keys.IsEmpty() {
		ke, err := p.keys.Dequeue()
		if err != nil {
			return
		}
		core.InputProcessKey(ke.KeyCode, ke.Pressed)
	}
}

// GetRequiredExtensionNames lists the instance extensions the window system
// needs to create a surface.
func (p *Platform) GetRequiredExtensionNames() []string {
	return p.Window.GetRequiredInstanceExtensions()
}

func (p *Platform) FramebufferSize() (uint32, uint32) {
	w, h := p.Window.GetFramebufferSize()
	return uint32(w), uint32(h)
}

func (p *Platform) keyCallback(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	p.queueKey(translateKey(key), action != glfw.Release)
}

func (p *Platform) queueKey(code core.KeyCode, pressed bool) {
	if code == core.KEY_UNKNOWN {
		return
	}
	if err := p.keys.Enqueue(core.KeyEvent{KeyCode: code, Pressed: pressed}); err != nil {
		core.LogWarn("dropping key %d: %s", code, err)
	}
}
