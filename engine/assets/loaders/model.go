package loaders

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spaghettifunk/vesta/engine/core"
	"github.com/spaghettifunk/vesta/engine/renderer/metadata"
)

// ModelLoader reads Wavefront OBJ files into a flat triangle list. Only
// positions are kept; polygons are fan triangulated. Data is a
// *metadata.ModelData.
type ModelLoader struct{}

func (ml *ModelLoader) Load(path string, assetType metadata.ResourceType, params interface{}) (*metadata.Resource, error) {
	if ext := strings.ToLower(filepath.Ext(path)); ext != ".obj" {
		err := fmt.Errorf("model loader: unsupported format %q", ext)
		core.LogError(err.Error())
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		err = fmt.Errorf("model loader: %w", err)
		core.LogError(err.Error())
		return nil, err
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	model, err := ml.parseOBJ(name, data)
	if err != nil {
		err = fmt.Errorf("model loader: %s: %w", path, err)
		core.LogError(err.Error())
		return nil, err
	}
	core.LogDebug("Loaded model '%s' with %d triangles.", model.Name, len(model.Vertices)/3)

	return &metadata.Resource{
		Name:         resourceName(path, params),
		FullPath:     path,
		ResourceType: metadata.ResourceTypeModel,
		DataSize:     uint64(len(model.Vertices)) * uint64(metadata.VertexStride),
		Data:         model,
	}, nil
}

func (ml *ModelLoader) Unload(res *metadata.Resource) error {
	return unload(res)
}

func (ml *ModelLoader) parseOBJ(name string, data []byte) (*metadata.ModelData, error) {
	model := &metadata.ModelData{Name: name}
	var positions []metadata.Vertex

	scanner := bufio.NewScanner(bytes.NewReader(data))
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		switch fields[0] {
		case "v":
			if len(fields) < 4 {
				return nil, fmt.Errorf("line %d: vertex needs three coordinates", lineNumber)
			}
			var v metadata.Vertex
			for i := 0; i < 3; i++ {
				f, err := strconv.ParseFloat(fields[1+i], 32)
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", lineNumber, err)
				}
				v[i] = float32(f)
			}
			positions = append(positions, v)
		case "f":
			if len(fields) < 4 {
				return nil, fmt.Errorf("line %d: face needs at least three vertices", lineNumber)
			}
			corners := make([]int, 0, len(fields)-1)
			for _, token := range fields[1:] {
				index, err := resolveIndex(token, len(positions))
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", lineNumber, err)
				}
				corners = append(corners, index)
			}
			for i := 1; i+1 < len(corners); i++ {
				model.Vertices = append(model.Vertices,
					positions[corners[0]], positions[corners[i]], positions[corners[i+1]])
			}
		default:
			// normals, texture coordinates, groups and materials are ignored
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(model.Vertices) == 0 {
		return nil, fmt.Errorf("no faces found")
	}
	return model, nil
}

// resolveIndex turns the position part of a face token (v, v/vt, v//vn or
// v/vt/vn) into a zero based index. Negative indices count from the end.
func resolveIndex(token string, count int) (int, error) {
	position, _, _ := strings.Cut(token, "/")
	index, err := strconv.Atoi(position)
	if err != nil {
		return 0, fmt.Errorf("bad face index %q", token)
	}
	switch {
	case index > 0 && index <= count:
		return index - 1, nil
	case index < 0 && -index <= count:
		return count + index, nil
	}
	return 0, fmt.Errorf("face index %d out of range (%d positions)", index, count)
}
