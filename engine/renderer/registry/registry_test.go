package registry

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/vesta/engine/core"
	"github.com/spaghettifunk/vesta/engine/renderer/metadata"
)

// checkInvariants verifies the handle map is a bijection onto the dense
// arrays and the visible prefix is in range.
func checkInvariants[V, I any](t *testing.T, r *Registry[V, I]) {
	t.Helper()
	require.Len(t, r.handles, len(r.instances))
	require.Len(t, r.handleToIndex, len(r.instances))
	require.GreaterOrEqual(t, r.firstInvisible, 0)
	require.LessOrEqual(t, r.firstInvisible, len(r.instances))
	for i, h := range r.handles {
		require.Equal(t, i, r.handleToIndex[h], "handle %d", h)
	}
}

func TestRandomOperationsKeepInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	r := New[int, int]("random", []int{1, 2, 3}, 2)

	live := map[Handle]int{}
	visible := map[Handle]bool{}
	seen := map[Handle]bool{}
	pick := func() Handle {
		n := rng.Intn(len(live))
		for h := range live {
			if n == 0 {
				return h
			}
			n--
		}
		panic("unreachable")
	}

	for step := 0; step < 5000; step++ {
		op := rng.Intn(5)
		if len(live) == 0 {
			op = 0
		}
		switch op {
		case 0:
			v := rng.Int()
			var h Handle
			if rng.Intn(2) == 0 {
				h = r.Insert(v)
			} else {
				h = r.InsertVisibly(v)
				visible[h] = true
			}
			require.False(t, seen[h], "handle %d reused", h)
			seen[h] = true
			live[h] = v
		case 1:
			h := pick()
			require.NoError(t, r.MakeVisible(h))
			visible[h] = true
		case 2:
			h := pick()
			require.NoError(t, r.MakeInvisible(h))
			delete(visible, h)
		case 3:
			h := pick()
			v, err := r.Remove(h)
			require.NoError(t, err)
			require.Equal(t, live[h], v)
			delete(live, h)
			delete(visible, h)
		case 4:
			h := pick()
			live[h] = rng.Int()
			require.NoError(t, r.Set(h, live[h]))
		}

		checkInvariants(t, r)
		require.Equal(t, len(live), r.Len())
		require.Equal(t, len(visible), r.VisibleCount())
		for h, v := range live {
			got, ok := r.Get(h)
			require.True(t, ok)
			require.Equal(t, v, got)
			isVisible, err := r.IsVisible(h)
			require.NoError(t, err)
			require.Equal(t, visible[h], isVisible)
		}
	}
}

func TestVisibilityRoundTrip(t *testing.T) {
	r := New[int, string]("", nil, 1)
	assert.NotEmpty(t, r.Name())

	a := r.InsertVisibly("a")
	b := r.InsertVisibly("b")
	c := r.Insert("c")
	assert.Equal(t, 2, r.VisibleCount())

	require.NoError(t, r.MakeInvisible(a))
	assert.Equal(t, 1, r.VisibleCount())
	require.NoError(t, r.MakeVisible(a))
	assert.Equal(t, 2, r.VisibleCount())
	got, ok := r.Get(a)
	require.True(t, ok)
	assert.Equal(t, "a", got)

	// idempotent toggles
	require.NoError(t, r.MakeVisible(a))
	require.NoError(t, r.MakeInvisible(c))
	assert.Equal(t, 2, r.VisibleCount())

	for _, h := range []Handle{a, b} {
		v, err := r.IsVisible(h)
		require.NoError(t, err)
		assert.True(t, v)
	}
	v, err := r.IsVisible(c)
	require.NoError(t, err)
	assert.False(t, v)
	checkInvariants(t, r)
}

func TestRemoveUnknownHandleLeavesStateUnchanged(t *testing.T) {
	r := New[int, int]("remove", nil, 1)
	a := r.InsertVisibly(1)
	b := r.Insert(2)

	_, err := r.Remove(a)
	require.NoError(t, err)

	instances := append([]int(nil), r.instances...)
	handles := r.Handles()
	visible := r.VisibleCount()

	for _, h := range []Handle{a, b + 100} {
		_, err := r.Remove(h)
		assert.ErrorIs(t, err, core.ErrInvalidHandle)
		assert.ErrorIs(t, r.MakeVisible(h), core.ErrInvalidHandle)
		assert.ErrorIs(t, r.MakeInvisible(h), core.ErrInvalidHandle)
		assert.ErrorIs(t, r.Set(h, 9), core.ErrInvalidHandle)
		_, ok := r.Get(h)
		assert.False(t, ok)
	}

	assert.Equal(t, instances, r.instances)
	assert.Equal(t, handles, r.Handles())
	assert.Equal(t, visible, r.VisibleCount())

	// a fresh insert never hands out the removed handle again
	assert.NotEqual(t, a, r.Insert(3))
}

func TestSwapByHandleUpdatesBothHandles(t *testing.T) {
	r := New[int, int]("swap", nil, 1)
	a := r.InsertVisibly(1)
	b := r.Insert(2)

	require.NoError(t, r.SwapByHandle(a, b))
	checkInvariants(t, r)

	va, _ := r.IsVisible(a)
	vb, _ := r.IsVisible(b)
	assert.False(t, va)
	assert.True(t, vb)

	got, _ := r.Get(a)
	assert.Equal(t, 1, got)
	assert.ErrorIs(t, r.SwapByHandle(a, 77), core.ErrInvalidHandle)
}

func TestCubeGeometry(t *testing.T) {
	c := Cube(3)
	assert.Equal(t, 36, c.VertexCount())
	assert.Equal(t, 3, c.Slots())
	for _, v := range c.vertices {
		for _, x := range v {
			assert.Contains(t, []float32{-1, 1}, x)
		}
	}
}

func TestFromModel(t *testing.T) {
	m := FromModel(&metadata.ModelData{
		Name:     "tri",
		Vertices: []metadata.Vertex{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
	}, 2)
	assert.Equal(t, "tri", m.Name())
	assert.Equal(t, 3, m.VertexCount())
}
