package loaders

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spaghettifunk/vesta/engine/core"
	"github.com/spaghettifunk/vesta/engine/renderer/metadata"
)

// BinaryLoader reads a file verbatim. Data is a []byte.
type BinaryLoader struct{}

func (bl *BinaryLoader) Load(path string, assetType metadata.ResourceType, params interface{}) (*metadata.Resource, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		err = fmt.Errorf("binary loader: %w", err)
		core.LogError(err.Error())
		return nil, err
	}
	return &metadata.Resource{
		Name:         resourceName(path, params),
		FullPath:     path,
		ResourceType: metadata.ResourceTypeBinary,
		DataSize:     uint64(len(buf)),
		Data:         buf,
	}, nil
}

func (bl *BinaryLoader) Unload(res *metadata.Resource) error {
	return unload(res)
}

// resourceName takes params["name"] when present, the file name otherwise.
func resourceName(path string, params interface{}) string {
	if p, ok := params.(map[string]string); ok && p["name"] != "" {
		return p["name"]
	}
	return filepath.Base(path)
}

func unload(res *metadata.Resource) error {
	if res == nil {
		return fmt.Errorf("unload: %w", core.ErrInvalidHandle)
	}
	res.Data = nil
	res.DataSize = 0
	return nil
}

func bytesToBytecode(b []byte) []uint32 {
	byteCode := make([]uint32, len(b)/4)
	for i := 0; i < len(byteCode); i++ {
		byteIndex := i * 4
		byteCode[i] = 0
		byteCode[i] |= uint32(b[byteIndex])
		byteCode[i] |= uint32(b[byteIndex+1]) << 8
		byteCode[i] |= uint32(b[byteIndex+2]) << 16
		byteCode[i] |= uint32(b[byteIndex+3]) << 24
	}
	return byteCode
}
