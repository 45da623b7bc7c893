package testbed

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/vesta/engine/assets"
)

func TestLoadModelsSkipsBrokenFiles(t *testing.T) {
	root := t.TempDir()
	files := map[string]string{
		"a.obj":      "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n",
		"b.obj":      "v 0 0 0\nv 1 0 0\nv 1 1 0\nv 0 1 0\nf 1 2 3 4\n",
		"broken.obj": "v 0 0 0\nf 1 2 9\n",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(root, name), []byte(content), 0o644))
	}

	am, err := assets.NewAssetManager()
	require.NoError(t, err)
	require.NoError(t, am.Initialize(root))
	defer am.Shutdown()

	g := NewTestGame(nil)
	g.Assets = am

	models, err := g.loadModels(2)
	require.NoError(t, err)
	require.Len(t, models, 2)

	assert.Equal(t, "a", models[0].Name())
	assert.Equal(t, 3, models[0].VertexCount())
	assert.Equal(t, "b", models[1].Name())
	assert.Equal(t, 6, models[1].VertexCount())
	for _, m := range models {
		assert.Equal(t, 1, m.VisibleCount())
		assert.Equal(t, 2, m.Slots())
	}
}

func TestLoadModelsWithoutAssets(t *testing.T) {
	am, err := assets.NewAssetManager()
	require.NoError(t, err)
	require.NoError(t, am.Initialize(t.TempDir()))
	defer am.Shutdown()

	g := NewTestGame(nil)
	g.Assets = am
	models, err := g.loadModels(1)
	require.NoError(t, err)
	assert.Empty(t, models)
}
