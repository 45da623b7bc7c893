package registry

import (
	"errors"

	"github.com/spaghettifunk/vesta/engine/renderer/metadata"
)

type fakeBuffer struct {
	size      uint64
	data      []byte
	destroyed bool
}

func (b *fakeBuffer) Size() uint64 { return b.size }

func (b *fakeBuffer) Fill(data []byte) error {
	if uint64(len(data)) > b.size {
		return errors.New("fill overflows buffer")
	}
	b.data = append([]byte(nil), data...)
	return nil
}

func (b *fakeBuffer) Destroy() { b.destroyed = true }

type fakeAllocator struct {
	created []*fakeBuffer
	fail    bool
}

func (a *fakeAllocator) CreateBuffer(size uint64, usage metadata.BufferUsage, residency metadata.MemoryResidency) (metadata.Buffer, error) {
	if a.fail {
		return nil, errors.New("out of device memory")
	}
	b := &fakeBuffer{size: size}
	a.created = append(a.created, b)
	return b, nil
}

type bindCall struct {
	binding uint32
	buffer  metadata.Buffer
}

type drawCall struct {
	vertexCount, instanceCount, firstVertex, firstInstance uint32
}

type fakeRecorder struct {
	binds []bindCall
	draws []drawCall
}

func (r *fakeRecorder) BindVertexBuffer(binding uint32, buffer metadata.Buffer, offset uint64) {
	r.binds = append(r.binds, bindCall{binding: binding, buffer: buffer})
}

func (r *fakeRecorder) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	r.draws = append(r.draws, drawCall{vertexCount, instanceCount, firstVertex, firstInstance})
}
