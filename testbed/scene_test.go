package testbed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/vesta/engine"
	"github.com/spaghettifunk/vesta/engine/math"
)

func TestBuildScene(t *testing.T) {
	s := buildScene(2)

	// two small cubes, the double grid, the rotated cube and three bars
	assert.Equal(t, 2+2*gridSize*gridSize+1+3, s.cubes.Len())
	assert.Equal(t, s.cubes.Len(), s.cubes.VisibleCount())
	assert.Equal(t, 36, s.cubes.VertexCount())
	assert.Equal(t, 2, s.cubes.Slots())

	bar, ok := s.cubes.Get(s.cubes.Handles()[s.cubes.Len()-3])
	require.True(t, ok)
	assert.Equal(t, [3]float32{1, 0.5, 0.5}, bar.Colour)
	assert.InDelta(t, 0.5, bar.Model.At(0, 3), 1e-6)
	assert.InDelta(t, 0.5, bar.Model.At(0, 0), 1e-6)
}

func TestSceneBlinkTogglesVisibility(t *testing.T) {
	s := buildScene(1)
	total := s.cubes.Len()

	require.NoError(t, s.blink())
	visible, err := s.cubes.IsVisible(s.blinker)
	require.NoError(t, err)
	assert.False(t, visible)
	assert.Equal(t, total-1, s.cubes.VisibleCount())

	require.NoError(t, s.blink())
	visible, err = s.cubes.IsVisible(s.blinker)
	require.NoError(t, err)
	assert.True(t, visible)
	assert.Equal(t, total, s.cubes.VisibleCount())
}

func TestSceneSpin(t *testing.T) {
	s := buildScene(1)
	before, _ := s.cubes.Get(s.spinner)
	require.NoError(t, s.spin(0.3))
	after, _ := s.cubes.Get(s.spinner)

	assert.NotEqual(t, before.Model, after.Model)
	assert.Equal(t, before.Colour, after.Colour)

	// the cube center stays half a unit from the z axis
	center := math.NewVec3(after.Model.At(0, 3), after.Model.At(1, 3), after.Model.At(2, 3))
	assert.InDelta(t, 0.5, center.Length(), 1e-5)
}

func TestUpdateWithoutSceneIsNoop(t *testing.T) {
	g := NewTestGame(nil)
	assert.Equal(t, engine.DefaultApplicationConfig(), g.ApplicationConfig)
	assert.NoError(t, g.Update(0.016))
	assert.NoError(t, g.Shutdown())
}
