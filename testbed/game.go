package testbed

import (
	"fmt"
	"runtime"

	"github.com/spaghettifunk/vesta/engine"
	"github.com/spaghettifunk/vesta/engine/core"
	"github.com/spaghettifunk/vesta/engine/math"
	"github.com/spaghettifunk/vesta/engine/renderer"
	"github.com/spaghettifunk/vesta/engine/renderer/metadata"
	"github.com/spaghettifunk/vesta/engine/renderer/registry"
	"github.com/spaghettifunk/vesta/engine/systems"
)

const (
	spinSpeed    float32 = 0.5
	blinkSeconds float64 = 1.0
)

type TestGame struct {
	*engine.Game
}

type gameState struct {
	scene  *scene
	models []*registry.Model

	elapsed    float64
	sinceBlink float64
}

func NewTestGame(config *engine.ApplicationConfig) *TestGame {
	if config == nil {
		config = engine.DefaultApplicationConfig()
	}
	tg := &TestGame{
		Game: &engine.Game{
			ApplicationConfig: config,
			State:             &gameState{},
		},
	}

	tg.FnInitialize = tg.Initialize
	tg.FnUpdate = tg.Update
	tg.FnShutdown = tg.Shutdown

	return tg
}

func (g *TestGame) state() *gameState {
	return g.State.(*gameState)
}

// Initialize builds the cube scene and one registry per OBJ model found by
// the asset manager, then hands them to the renderer.
func (g *TestGame) Initialize() error {
	core.LogInfo("initializing testbed...")
	state := g.state()
	slots := renderer.FramesInFlight()

	state.scene = buildScene(slots)
	if err := renderer.AddDrawable(state.scene.cubes); err != nil {
		return err
	}

	models, err := g.loadModels(slots)
	if err != nil {
		return err
	}
	for _, model := range models {
		if err := renderer.AddDrawable(model); err != nil {
			return err
		}
		state.models = append(state.models, model)
	}

	core.LogInfo("testbed scene ready: %d cubes, %d models", state.scene.cubes.Len(), len(state.models))
	return nil
}

// loadModels parses every indexed OBJ file on the job system. Models that
// fail to parse are skipped; the rest keep the asset index order.
func (g *TestGame) loadModels(slots int) ([]*registry.Model, error) {
	assets := g.Assets.List(metadata.ResourceTypeModel)
	if len(assets) == 0 {
		return nil, nil
	}

	js, err := systems.NewJobSystem(min(len(assets), runtime.NumCPU()), len(assets))
	if err != nil {
		return nil, err
	}
	defer js.Shutdown()

	loaded := make([]*registry.Model, len(assets))
	for i, asset := range assets {
		i, path := i, asset.Path
		err := js.Submit(systems.JobTask{
			Name: path,
			OnStart: func() (interface{}, error) {
				return g.loadModel(path, slots)
			},
			OnComplete: func(result interface{}) {
				loaded[i] = result.(*registry.Model)
			},
			OnFailure: func(err error) {
				core.LogWarn("skipping model %s", path)
			},
		})
		if err != nil {
			return nil, err
		}
	}
	js.Wait()

	models := make([]*registry.Model, 0, len(loaded))
	for _, m := range loaded {
		if m != nil {
			models = append(models, m)
		}
	}
	return models, nil
}

func (g *TestGame) loadModel(path string, slots int) (*registry.Model, error) {
	res, err := g.Assets.LoadPath(path, nil)
	if err != nil {
		return nil, err
	}
	defer g.Assets.UnloadAsset(res)

	data, ok := res.Data.(*metadata.ModelData)
	if !ok {
		return nil, fmt.Errorf("model loader returned %T", res.Data)
	}
	vertices := make([][3]float32, len(data.Vertices))
	for i, v := range data.Vertices {
		vertices[i] = v
	}
	extents := math.ComputeExtents(vertices)
	center := extents.Center()
	core.LogDebug("model %s: center [%.3f, %.3f, %.3f], radius %.3f", data.Name, center.X, center.Y, center.Z, extents.Radius())

	model := registry.FromModel(data, slots)
	model.InsertVisibly(metadata.NewInstanceData(
		math.NewMat4Translation(math.NewVec3(0.1, 0.2, 0.4)).Mul(math.NewMat4UniformScale(0.01)),
		[3]float32{0, 0, 1},
	))
	return model, nil
}

func (g *TestGame) Update(deltaTime float64) error {
	state := g.state()
	if state.scene == nil {
		return nil
	}
	state.elapsed += deltaTime
	state.sinceBlink += deltaTime

	if err := state.scene.spin(spinSpeed * float32(state.elapsed)); err != nil {
		return err
	}
	if state.sinceBlink >= blinkSeconds {
		state.sinceBlink -= blinkSeconds
		if err := state.scene.blink(); err != nil {
			return err
		}
	}
	return nil
}

// Shutdown drops the references; the renderer owns and destroys the GPU
// side of every drawable.
func (g *TestGame) Shutdown() error {
	state := g.state()
	state.scene = nil
	state.models = nil
	core.LogInfo("testbed shut down")
	return nil
}
