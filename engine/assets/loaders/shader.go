package loaders

import (
	"fmt"
	"os"

	"github.com/spaghettifunk/vesta/engine/core"
	"github.com/spaghettifunk/vesta/engine/renderer/metadata"
)

const spirvMagic uint32 = 0x07230203

// ShaderLoader reads a SPIR-V module. Data is the []uint32 code and
// DataSize its length in bytes.
type ShaderLoader struct{}

func (sl *ShaderLoader) Load(path string, assetType metadata.ResourceType, params interface{}) (*metadata.Resource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		err = fmt.Errorf("shader loader: %w", err)
		core.LogError(err.Error())
		return nil, err
	}
	if len(data) < 4 || len(data)%4 != 0 {
		err := fmt.Errorf("shader loader: %s is %d bytes, not a whole number of SPIR-V words", path, len(data))
		core.LogError(err.Error())
		return nil, err
	}
	code := bytesToBytecode(data)
	if code[0] != spirvMagic {
		err := fmt.Errorf("shader loader: %s does not start with the SPIR-V magic number", path)
		core.LogError(err.Error())
		return nil, err
	}
	return &metadata.Resource{
		Name:         resourceName(path, params),
		FullPath:     path,
		ResourceType: metadata.ResourceTypeShader,
		DataSize:     uint64(len(data)),
		Data:         code,
	}, nil
}

func (sl *ShaderLoader) Unload(res *metadata.Resource) error {
	return unload(res)
}
