package engine

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/spaghettifunk/vesta/engine/assets"
	"github.com/spaghettifunk/vesta/engine/core"
	"github.com/spaghettifunk/vesta/engine/platform"
	"github.com/spaghettifunk/vesta/engine/renderer"
	"github.com/spaghettifunk/vesta/engine/renderer/components"
	"github.com/spaghettifunk/vesta/engine/renderer/metadata"
	"github.com/spaghettifunk/vesta/engine/renderer/vulkan"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
	// Every resource has been released
	EngineStageShutdown
)

const (
	turnStep       float32 = 0.1
	moveStep       float32 = 0.05
	pitchStep      float32 = 0.02
	vertexShader           = "shader.vert"
	fragmentShader         = "shader.frag"
)

type Engine struct {
	currentStage Stage
	gameInstance *Game
	isRunning    atomic.Bool
	platform     *platform.Platform
	assetManager *assets.AssetManager
	backend      *vulkan.VulkanRenderer
	camera       *components.Camera
	clock        *core.Clock
	metrics      *core.Metrics
	lastTime     float64

	shutdownOnce sync.Once
	shutdownErr  error
}

func New(g *Game) (*Engine, error) {
	if g == nil || g.ApplicationConfig == nil {
		err := fmt.Errorf("game and application config are required")
		core.LogError(err.Error())
		return nil, err
	}
	if err := g.ApplicationConfig.Validate(); err != nil {
		return nil, err
	}

	p, err := platform.New()
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}

	am, err := assets.NewAssetManager()
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}

	return &Engine{
		currentStage: EngineStageUninitialized,
		gameInstance: g,
		clock:        core.NewClock(),
		metrics:      core.NewMetrics(),
		platform:     p,
		assetManager: am,
		camera:       components.NewCamera(),
	}, nil
}

func (e *Engine) Initialize() error {
	e.currentStage = EngineStageInitializing
	config := e.gameInstance.ApplicationConfig
	core.SetLogLevel(config.Level())

	// initialize input
	if err := core.InputInitialize(); err != nil {
		return err
	}

	// initialize events
	if !core.EventSystemInitialize() {
		return fmt.Errorf("failed to initialize the event system")
	}

	// register some events
	core.EventRegister(core.EVENT_CODE_APPLICATION_QUIT, e.onEvent)
	core.EventRegister(core.EVENT_CODE_KEY_PRESSED, e.onKey)

	if err := e.platform.Startup(config.Name, config.StartPosX, config.StartPosY, config.StartWidth, config.StartHeight); err != nil {
		return err
	}

	if err := e.assetManager.Initialize(config.ShaderDir, config.AssetDir); err != nil {
		return err
	}
	vert, err := e.loadShader(vertexShader)
	if err != nil {
		return err
	}
	frag, err := e.loadShader(fragmentShader)
	if err != nil {
		return err
	}

	width, height := e.platform.FramebufferSize()
	e.backend = vulkan.New(e.platform, vulkan.VulkanConfig{
		AppName:        config.Name,
		Width:          width,
		Height:         height,
		Validation:     config.Validation,
		VertexShader:   vert,
		FragmentShader: frag,
		ClearColour:    config.ClearColour,
		FramesInFlight: config.FramesInFlight,
		VSync:          config.VSync,
	})
	if err := e.backend.Initialize(); err != nil {
		return err
	}
	if err := renderer.Initialize(e.backend); err != nil {
		return err
	}

	e.camera.SetAspect(e.backend.AspectRatio())
	renderer.SetUniformSource(e.camera)

	e.gameInstance.Assets = e.assetManager
	e.gameInstance.Camera = e.camera
	if e.gameInstance.FnInitialize != nil {
		if err := e.gameInstance.FnInitialize(); err != nil {
			return err
		}
	}

	e.currentStage = EngineStageInitialized
	core.LogInfo("Engine initialized with %d frames in flight", renderer.FramesInFlight())
	return nil
}

func (e *Engine) loadShader(name string) ([]uint32, error) {
	res, err := e.assetManager.LoadAsset(name, metadata.ResourceTypeShader, nil)
	if err != nil {
		return nil, err
	}
	code, ok := res.Data.([]uint32)
	if !ok {
		err := fmt.Errorf("shader `%s` loaded as %T", name, res.Data)
		core.LogError(err.Error())
		return nil, err
	}
	return code, nil
}

// Run drives frames until the window closes, a quit event arrives, or a
// frame fails. The failing frame's error is returned.
func (e *Engine) Run() error {
	if e.currentStage != EngineStageInitialized {
		return fmt.Errorf("engine is not initialized")
	}
	e.currentStage = EngineStageRunning
	e.isRunning.Store(true)

	e.clock.Start()
	e.clock.Update()
	e.lastTime = e.clock.Elapsed()

	for e.isRunning.Load() {
		if !e.platform.PumpMessages() {
			e.isRunning.Store(false)
			break
		}

		e.clock.Update()
		currentTime := e.clock.Elapsed()
		delta := currentTime - e.lastTime

		if err := e.frame(delta, renderer.DrawFrame); err != nil {
			e.isRunning.Store(false)
			return err
		}

		if e.metrics.Update(delta) {
			core.LogDebug("FPS: %.0f, frame time: %.3fms", e.metrics.FPS(), e.metrics.FrameTime())
		}

		core.InputUpdate(delta)
		e.lastTime = currentTime
	}
	return nil
}

// frame runs the game update and then draws. A stale registry handle from
// the update is logged and the frame is still drawn.
func (e *Engine) frame(delta float64, draw func() error) error {
	if e.gameInstance.FnUpdate != nil {
		if err := e.gameInstance.FnUpdate(delta); err != nil {
			if !errors.Is(err, core.ErrInvalidHandle) {
				core.LogError("Game update failed, shutting down.")
				return err
			}
			core.LogWarn(err.Error())
		}
	}
	return draw()
}

// Stop asks the loop to exit after the current frame. Safe to call from
// any goroutine.
func (e *Engine) Stop() {
	e.isRunning.Store(false)
}

// Shutdown waits for the device to go idle and releases everything in
// reverse creation order. Only the first call does any work.
func (e *Engine) Shutdown() error {
	e.shutdownOnce.Do(func() {
		e.currentStage = EngineStageShuttingDown
		e.isRunning.Store(false)

		if e.gameInstance.FnShutdown != nil {
			if err := e.gameInstance.FnShutdown(); err != nil {
				core.LogError(err.Error())
				e.shutdownErr = err
			}
		}
		if err := renderer.Shutdown(); err != nil {
			e.shutdownErr = err
		}
		if e.backend != nil {
			if err := e.backend.Shutdown(); err != nil {
				e.shutdownErr = err
			}
		}
		if err := e.assetManager.Shutdown(); err != nil {
			core.LogWarn(err.Error())
		}
		if err := core.EventSystemShutdown(); err != nil {
			e.shutdownErr = err
		}
		if err := core.InputShutdown(); err != nil {
			e.shutdownErr = err
		}
		if err := e.platform.Shutdown(); err != nil {
			e.shutdownErr = err
		}
		e.currentStage = EngineStageShutdown
	})
	return e.shutdownErr
}

func (e *Engine) onEvent(context core.EventContext) bool {
	if context.Type == core.EVENT_CODE_APPLICATION_QUIT {
		core.LogInfo("EVENT_CODE_APPLICATION_QUIT received, shutting down.")
		e.Stop()
		return true
	}
	return false
}

func (e *Engine) onKey(context core.EventContext) bool {
	ke, ok := context.Data.(*core.KeyEvent)
	if !ok {
		core.LogError("wrong event associated with the event type `%d`", context.Type)
		return false
	}
	if ke.KeyCode == core.KEY_ESCAPE {
		core.EventFire(core.EventContext{Type: core.EVENT_CODE_APPLICATION_QUIT})
		return true
	}
	return steerCamera(e.camera, ke.KeyCode)
}

// steerCamera applies the keyboard bindings and reports whether the key
// was bound.
func steerCamera(camera *components.Camera, key core.KeyCode) bool {
	switch key {
	case core.KEY_RIGHT:
		camera.TurnRight(turnStep)
	case core.KEY_LEFT:
		camera.TurnLeft(turnStep)
	case core.KEY_UP:
		camera.MoveForward(moveStep)
	case core.KEY_DOWN:
		camera.MoveBackward(moveStep)
	case core.KEY_PRIOR:
		camera.TurnUp(pitchStep)
	case core.KEY_NEXT:
		camera.TurnDown(pitchStep)
	default:
		return false
	}
	return true
}
