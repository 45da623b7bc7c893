package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/vesta/engine/math"
	"github.com/spaghettifunk/vesta/engine/renderer/metadata"
)

func instance(x float32) metadata.InstanceData {
	return metadata.NewInstanceData(math.NewMat4Translation(math.NewVec3(x, 0, 0)), [3]float32{x, 1, 0})
}

func TestDrawIssuesOneCallForVisibleInstances(t *testing.T) {
	const k = 7
	r := Cube(1)
	for i := 0; i < k; i++ {
		r.InsertVisibly(instance(float32(i)))
	}
	r.Insert(instance(100))

	alloc := &fakeAllocator{}
	require.NoError(t, r.UpdateVertexBuffer(alloc))
	require.NoError(t, r.UpdateInstanceBuffer(alloc, 0))

	rec := &fakeRecorder{}
	r.Draw(rec, 0)

	require.Len(t, rec.draws, 1)
	assert.Equal(t, drawCall{vertexCount: 36, instanceCount: k}, rec.draws[0])
	require.Len(t, rec.binds, 2)
	assert.Equal(t, uint32(0), rec.binds[0].binding)
	assert.Same(t, r.vertexBuffer, rec.binds[0].buffer)
	assert.Equal(t, uint32(1), rec.binds[1].binding)
	assert.Same(t, r.instanceBuffers[0], rec.binds[1].buffer)
}

func TestDrawIsNoOpWithoutBuffersOrVisibleInstances(t *testing.T) {
	r := Cube(1)
	r.Insert(instance(1))
	rec := &fakeRecorder{}

	r.Draw(rec, 0)
	assert.Empty(t, rec.draws)

	alloc := &fakeAllocator{}
	require.NoError(t, r.UpdateVertexBuffer(alloc))
	require.NoError(t, r.UpdateInstanceBuffer(alloc, 0))
	r.Draw(rec, 0)
	assert.Empty(t, rec.draws)
	assert.Empty(t, rec.binds)

	r.Draw(rec, 5)
	assert.Empty(t, rec.draws)
}

func TestInstanceBufferHoldsVisiblePrefix(t *testing.T) {
	r := Cube(1)
	a := r.InsertVisibly(instance(1))
	r.Insert(instance(2))
	r.InsertVisibly(instance(3))
	require.NoError(t, r.MakeInvisible(a))

	alloc := &fakeAllocator{}
	require.NoError(t, r.UpdateInstanceBuffer(alloc, 0))

	buf := r.instanceBuffers[0].(*fakeBuffer)
	want := metadata.AsBytes(r.instances[:r.VisibleCount()])
	assert.Equal(t, want, buf.data)
	assert.Len(t, buf.data, int(metadata.InstanceStride))
}

func TestVertexBufferMirrorsVertices(t *testing.T) {
	r := Cube(1)
	alloc := &fakeAllocator{}
	require.NoError(t, r.UpdateVertexBuffer(alloc))
	require.NoError(t, r.UpdateVertexBuffer(alloc))

	require.Len(t, alloc.created, 1)
	assert.Equal(t, uint64(36*metadata.VertexStride), alloc.created[0].Size())
	assert.Equal(t, metadata.AsBytes(r.vertices), alloc.created[0].data)
}

func TestInstanceBufferGrowsAndSlotsAreIndependent(t *testing.T) {
	r := Cube(2)
	r.InsertVisibly(instance(1))

	alloc := &fakeAllocator{}
	require.NoError(t, r.UpdateInstanceBuffer(alloc, 0))
	first := r.instanceBuffers[0].(*fakeBuffer)
	assert.Nil(t, r.instanceBuffers[1])

	r.InsertVisibly(instance(2))
	require.NoError(t, r.UpdateInstanceBuffer(alloc, 0))
	assert.True(t, first.destroyed)
	grown := r.instanceBuffers[0].(*fakeBuffer)
	assert.Equal(t, uint64(2*metadata.InstanceStride), grown.Size())

	require.NoError(t, r.UpdateVertexBuffer(alloc))
	rec := &fakeRecorder{}
	r.Draw(rec, 0)
	r.Draw(rec, 1)
	require.Len(t, rec.draws, 1)
	assert.Equal(t, uint32(2), rec.draws[0].instanceCount)

	// shrinking reuses the buffer and draws the mirrored count
	_, err := r.Remove(r.handles[0])
	require.NoError(t, err)
	require.NoError(t, r.UpdateInstanceBuffer(alloc, 0))
	assert.Same(t, grown, r.instanceBuffers[0].(*fakeBuffer))

	rec = &fakeRecorder{}
	r.Draw(rec, 0)
	require.Len(t, rec.draws, 1)
	assert.Equal(t, uint32(1), rec.draws[0].instanceCount)
}

func TestEmptyInstanceBufferStillCreated(t *testing.T) {
	r := Cube(1)
	alloc := &fakeAllocator{}
	require.NoError(t, r.UpdateInstanceBuffer(alloc, 0))
	require.Len(t, alloc.created, 1)
	assert.Equal(t, uint64(metadata.InstanceStride), alloc.created[0].Size())
	assert.Error(t, r.UpdateInstanceBuffer(alloc, 1))
}

func TestBufferCreationFailureIsReturned(t *testing.T) {
	r := Cube(1)
	r.InsertVisibly(instance(1))
	alloc := &fakeAllocator{fail: true}
	assert.Error(t, r.UpdateVertexBuffer(alloc))
	assert.Error(t, r.UpdateInstanceBuffer(alloc, 0))
	assert.Nil(t, r.vertexBuffer)
}

func TestDestroyReleasesBuffers(t *testing.T) {
	r := Cube(2)
	r.InsertVisibly(instance(1))
	alloc := &fakeAllocator{}
	require.NoError(t, r.UpdateVertexBuffer(alloc))
	require.NoError(t, r.UpdateInstanceBuffer(alloc, 0))
	require.NoError(t, r.UpdateInstanceBuffer(alloc, 1))

	r.Destroy()
	for _, b := range alloc.created {
		assert.True(t, b.destroyed)
	}
	rec := &fakeRecorder{}
	r.Draw(rec, 0)
	assert.Empty(t, rec.draws)
}
