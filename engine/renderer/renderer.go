package renderer

import (
	"fmt"
	"sync"

	"github.com/spaghettifunk/vesta/engine/core"
	"github.com/spaghettifunk/vesta/engine/renderer/metadata"
)

type Renderer struct {
	device metadata.Device
	driver *FrameDriver
}

var initRenderer sync.Once
var renderer *Renderer

var errNotInitialized = fmt.Errorf("renderer not initialized: %w", core.ErrResourceCreation)

// Initialize builds the frame driver on top of an initialized device.
func Initialize(device metadata.Device) error {
	var err error
	initRenderer.Do(func() {
		var driver *FrameDriver
		driver, err = NewFrameDriver(device)
		if err != nil {
			return
		}
		renderer = &Renderer{
			device: device,
			driver: driver,
		}
	})
	if err != nil {
		return err
	}
	if renderer == nil {
		return errNotInitialized
	}
	return nil
}

func AddDrawable(d Drawable) error {
	if renderer == nil {
		return errNotInitialized
	}
	return renderer.driver.AddDrawable(d)
}

func SetUniformSource(u UniformSource) {
	if renderer == nil {
		core.LogWarn("uniform source set before the renderer was initialized")
		return
	}
	renderer.driver.SetUniformSource(u)
}

func FramesInFlight() int {
	if renderer == nil {
		return 0
	}
	return renderer.driver.FramesInFlight()
}

func DrawFrame() error {
	if renderer == nil {
		return errNotInitialized
	}
	if err := renderer.driver.DrawFrame(); err != nil {
		core.LogError("DrawFrame failed. Application shutting down...")
		return err
	}
	return nil
}

// Shutdown releases every frame resource and drawable. The device itself
// is torn down by its owner afterwards.
func Shutdown() error {
	if renderer == nil {
		return nil
	}
	return renderer.driver.Destroy()
}
