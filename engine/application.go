package engine

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/spaghettifunk/vesta/engine/core"
)

type ApplicationConfig struct {
	// Window starting position x axis, if applicable.
	StartPosX uint32 `toml:"start_pos_x" yaml:"start_pos_x"`
	// Window starting position y axis, if applicable.
	StartPosY uint32 `toml:"start_pos_y" yaml:"start_pos_y"`
	// Window starting width, if applicable.
	StartWidth uint32 `toml:"start_width" yaml:"start_width"`
	// Window starting height, if applicable.
	StartHeight uint32 `toml:"start_height" yaml:"start_height"`
	// The application name used in windowing, if applicable.
	Name     string `toml:"name" yaml:"name"`
	LogLevel string `toml:"log_level" yaml:"log_level"`
	// Directories indexed by the asset manager. Shaders are looked up by
	// name, e.g. "shader.vert" for shader.vert.spv.
	ShaderDir string `toml:"shader_dir" yaml:"shader_dir"`
	AssetDir  string `toml:"asset_dir" yaml:"asset_dir"`
	// Enables VK_LAYER_KHRONOS_validation when it is installed.
	Validation bool `toml:"validation" yaml:"validation"`
	VSync      bool `toml:"vsync" yaml:"vsync"`
	// Ring depth. Zero follows the swapchain image count.
	FramesInFlight int        `toml:"frames_in_flight" yaml:"frames_in_flight"`
	ClearColour    [4]float32 `toml:"clear_colour" yaml:"clear_colour"`
}

func DefaultApplicationConfig() *ApplicationConfig {
	return &ApplicationConfig{
		StartPosX:   100,
		StartPosY:   100,
		StartWidth:  800,
		StartHeight: 600,
		Name:        "Vesta",
		LogLevel:    "info",
		ShaderDir:   "shaders",
		AssetDir:    "assets",
		Validation:  true,
		VSync:       true,
		ClearColour: [4]float32{0, 0, 0.08, 1},
	}
}

// LoadApplicationConfig reads a TOML or YAML file on top of the defaults.
// Keys missing from the file keep their default value.
func LoadApplicationConfig(path string) (*ApplicationConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		err = fmt.Errorf("failed to read config `%s`: %w", path, err)
		core.LogError(err.Error())
		return nil, err
	}

	config := DefaultApplicationConfig()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(config)
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(config)
		// an empty document leaves the defaults untouched
		if errors.Is(err, io.EOF) {
			err = nil
		}
	default:
		err = fmt.Errorf("unsupported config format `%s`", filepath.Ext(path))
	}
	if err != nil {
		err = fmt.Errorf("failed to decode config `%s`: %w", path, err)
		core.LogError(err.Error())
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate rejects values the engine cannot start with.
func (c *ApplicationConfig) Validate() error {
	var err error
	switch {
	case c.StartWidth == 0 || c.StartHeight == 0:
		err = fmt.Errorf("window size %dx%d is empty", c.StartWidth, c.StartHeight)
	case c.FramesInFlight < 0:
		err = fmt.Errorf("frames_in_flight must not be negative, got %d", c.FramesInFlight)
	default:
		_, err = core.ParseLogLevel(c.LogLevel)
	}
	if err != nil {
		err = fmt.Errorf("invalid config: %w", err)
		core.LogError(err.Error())
	}
	return err
}

func (c *ApplicationConfig) Level() core.LogLevel {
	level, err := core.ParseLogLevel(c.LogLevel)
	if err != nil {
		return core.InfoLevel
	}
	return level
}
