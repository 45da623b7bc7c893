//go:build mage

package main

import (
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/target"
)

type Build mg.Namespace

var shaderSources = []string{"shaders/shader.vert", "shaders/shader.frag"}

// Compiles the GLSL sources in shaders/ to SPIR-V next to them.
func (Build) Shaders() error {
	for _, src := range shaderSources {
		out := src + ".spv"
		changed, err := target.Path(out, src)
		if err != nil {
			return err
		}
		if !changed {
			continue
		}
		if _, err := executeCmd("glslc", withArgs(src, "-o", out), withStream()); err != nil {
			return err
		}
	}
	return nil
}

// Builds the vesta binary into bin/.
func (Build) Binary() error {
	mg.Deps(Build.Shaders)
	_, err := executeCmd("go", withArgs("build", "-o", filepath.Join("bin", "vesta"), "."), withStream())
	return err
}

// Runs every package test.
func Test() error {
	_, err := executeCmd("go", withArgs("test", "./..."), withStream())
	return err
}
