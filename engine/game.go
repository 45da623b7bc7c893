package engine

import (
	"github.com/spaghettifunk/vesta/engine/assets"
	"github.com/spaghettifunk/vesta/engine/renderer/components"
)

// Game is the application hooked into the engine loop. Assets and Camera
// are filled in by the engine before FnInitialize runs.
type Game struct {
	ApplicationConfig *ApplicationConfig
	Assets            *assets.AssetManager
	Camera            *components.Camera
	State             interface{}
	FnInitialize      Initialize
	FnUpdate          Update
	FnShutdown        Shutdown
}

type Initialize func() error
type Update func(deltaTime float64) error
type Shutdown func() error
