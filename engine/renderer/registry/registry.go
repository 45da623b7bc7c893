package registry

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spaghettifunk/vesta/engine/core"
	"github.com/spaghettifunk/vesta/engine/renderer/metadata"
)

// Handle identifies one record of a Registry. Handles are assigned in
// increasing order and never reused, even after removal.
type Handle uint64

// Registry stores the per-vertex data of one geometry and a dense list of
// instances drawn with it. Instances [0, firstInvisible) are visible, the
// rest are not. Every toggle or removal is a single swap, so the visible
// instances always form the prefix the GPU buffers mirror.
type Registry[V, I any] struct {
	name string

	vertices []V

	instances      []I
	handles        []Handle
	handleToIndex  map[Handle]int
	firstInvisible int
	nextHandle     Handle

	vertexBuffer metadata.Buffer
	// one instance buffer per frame ring slot, with the visible count
	// mirrored at the last update of that slot
	instanceBuffers []metadata.Buffer
	drawCounts      []uint32
}

// New creates a registry over a fixed vertex list. slots is the depth of
// the frame ring; each slot gets its own instance buffer. An empty name is
// replaced with a random one.
func New[V, I any](name string, vertices []V, slots int) *Registry[V, I] {
	if name == "" {
		name = uuid.NewString()
	}
	if slots < 1 {
		slots = 1
	}
	return &Registry[V, I]{
		name:            name,
		vertices:        vertices,
		handleToIndex:   make(map[Handle]int),
		instanceBuffers: make([]metadata.Buffer, slots),
		drawCounts:      make([]uint32, slots),
	}
}

func (r *Registry[V, I]) Name() string {
	return r.name
}

// Len is the number of live records, visible or not.
func (r *Registry[V, I]) Len() int {
	return len(r.instances)
}

func (r *Registry[V, I]) VisibleCount() int {
	return r.firstInvisible
}

func (r *Registry[V, I]) Slots() int {
	return len(r.instanceBuffers)
}

func (r *Registry[V, I]) VertexCount() int {
	return len(r.vertices)
}

// Handles returns the live handles in storage order: visible ones first.
func (r *Registry[V, I]) Handles() []Handle {
	return append([]Handle(nil), r.handles...)
}

// Insert appends an invisible record and returns its handle.
func (r *Registry[V, I]) Insert(instance I) Handle {
	handle := r.nextHandle
	r.nextHandle++

	r.handleToIndex[handle] = len(r.instances)
	r.instances = append(r.instances, instance)
	r.handles = append(r.handles, handle)
	return handle
}

func (r *Registry[V, I]) InsertVisibly(instance I) Handle {
	handle := r.Insert(instance)
	// cannot fail, the handle was just created
	_ = r.MakeVisible(handle)
	return handle
}

// MakeVisible moves the record into the visible prefix. It is a no-op for
// records that are already visible.
func (r *Registry[V, I]) MakeVisible(handle Handle) error {
	index, err := r.indexOf(handle)
	if err != nil {
		return err
	}
	if index < r.firstInvisible {
		return nil
	}
	r.swapByIndex(index, r.firstInvisible)
	r.firstInvisible++
	return nil
}

func (r *Registry[V, I]) MakeInvisible(handle Handle) error {
	index, err := r.indexOf(handle)
	if err != nil {
		return err
	}
	if index >= r.firstInvisible {
		return nil
	}
	r.swapByIndex(index, r.firstInvisible-1)
	r.firstInvisible--
	return nil
}

func (r *Registry[V, I]) IsVisible(handle Handle) (bool, error) {
	index, err := r.indexOf(handle)
	if err != nil {
		return false, err
	}
	return index < r.firstInvisible, nil
}

// Remove deletes the record and returns its instance. An unknown handle
// leaves the registry untouched.
func (r *Registry[V, I]) Remove(handle Handle) (I, error) {
	var zero I
	if err := r.MakeInvisible(handle); err != nil {
		return zero, err
	}
	last := len(r.instances) - 1
	r.swapByIndex(r.handleToIndex[handle], last)

	instance := r.instances[last]
	r.instances[last] = zero
	r.instances = r.instances[:last]
	r.handles = r.handles[:last]
	delete(r.handleToIndex, handle)
	return instance, nil
}

func (r *Registry[V, I]) Get(handle Handle) (I, bool) {
	index, ok := r.handleToIndex[handle]
	if !ok {
		var zero I
		return zero, false
	}
	return r.instances[index], true
}

// Set replaces the instance data of a record. The change reaches the GPU
// on the next instance buffer update.
func (r *Registry[V, I]) Set(handle Handle, instance I) error {
	index, err := r.indexOf(handle)
	if err != nil {
		return err
	}
	r.instances[index] = instance
	return nil
}

// SwapByHandle exchanges the storage positions of two records, and with
// them their visibility.
func (r *Registry[V, I]) SwapByHandle(a, b Handle) error {
	indexA, err := r.indexOf(a)
	if err != nil {
		return err
	}
	indexB, err := r.indexOf(b)
	if err != nil {
		return err
	}
	r.swapByIndex(indexA, indexB)
	return nil
}

func (r *Registry[V, I]) indexOf(handle Handle) (int, error) {
	index, ok := r.handleToIndex[handle]
	if !ok {
		return 0, fmt.Errorf("registry %s: handle %d: %w", r.name, handle, core.ErrInvalidHandle)
	}
	return index, nil
}

func (r *Registry[V, I]) swapByIndex(i, j int) {
	if i == j {
		return
	}
	r.instances[i], r.instances[j] = r.instances[j], r.instances[i]
	r.handles[i], r.handles[j] = r.handles[j], r.handles[i]
	r.handleToIndex[r.handles[i]] = i
	r.handleToIndex[r.handles[j]] = j
}
