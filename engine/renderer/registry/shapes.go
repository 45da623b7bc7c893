package registry

import (
	"fmt"

	"github.com/spaghettifunk/vesta/engine/assets/loaders"
	"github.com/spaghettifunk/vesta/engine/core"
	"github.com/spaghettifunk/vesta/engine/renderer/metadata"
)

// Model is a registry of coloured instances of a position-only mesh.
type Model = Registry[metadata.Vertex, metadata.InstanceData]

// Cube returns a registry over a 2x2x2 cube centered at the origin,
// 12 triangles with no index buffer.
func Cube(slots int) *Model {
	lbf := metadata.Vertex{-1, 1, -1}
	lbb := metadata.Vertex{-1, 1, 1}
	ltf := metadata.Vertex{-1, -1, -1}
	ltb := metadata.Vertex{-1, -1, 1}
	rbf := metadata.Vertex{1, 1, -1}
	rbb := metadata.Vertex{1, 1, 1}
	rtf := metadata.Vertex{1, -1, -1}
	rtb := metadata.Vertex{1, -1, 1}

	vertices := []metadata.Vertex{
		// bottom
		lbf, lbb, rbb, lbf, rbb, rbf,
		// top
		ltf, rtb, ltb, ltf, rtf, rtb,
		// front
		lbf, rtf, ltf, lbf, rbf, rtf,
		// back
		lbb, ltb, rtb, lbb, rtb, rbb,
		// left
		lbf, ltf, lbb, lbb, ltf, ltb,
		// right
		rbf, rbb, rtf, rbb, rtb, rtf,
	}
	return New[metadata.Vertex, metadata.InstanceData]("cube", vertices, slots)
}

// FromModel builds a registry over a loaded triangle list.
func FromModel(model *metadata.ModelData, slots int) *Model {
	return New[metadata.Vertex, metadata.InstanceData](model.Name, model.Vertices, slots)
}

// FromOBJ parses a Wavefront OBJ file and builds a registry over its faces.
func FromOBJ(path string, slots int) (*Model, error) {
	loader := &loaders.ModelLoader{}
	res, err := loader.Load(path, metadata.ResourceTypeModel, nil)
	if err != nil {
		return nil, err
	}
	model, ok := res.Data.(*metadata.ModelData)
	if !ok {
		err := fmt.Errorf("model loader returned %T for %s", res.Data, path)
		core.LogError(err.Error())
		return nil, err
	}
	return FromModel(model, slots), nil
}
