package gpu

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
)

// Element is a plain-data type that can be uploaded into a buffer object.
type Element interface {
	~float32 | ~uint32 | ~int32 | ~uint8 | mgl32.Vec2 | mgl32.Vec3 | mgl32.Vec4
}

func rawBytes[T Element](data []T) []byte {
	var zero T
	return unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(data))), len(data)*int(unsafe.Sizeof(zero)))
}

// VertexBuffer is an array buffer filled once at construction.
type VertexBuffer struct {
	dev  Device
	id   uint32
	size int
}

// NewVertexBuffer allocates an array buffer and uploads data into it.
// The buffer is left unbound.
func NewVertexBuffer[T Element](dev Device, data []T) (*VertexBuffer, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("vertex buffer: %w", ErrEmptyBuffer)
	}
	raw := rawBytes(data)

	vb := &VertexBuffer{dev: dev, id: dev.GenBuffer(), size: len(raw)}
	dev.BindBuffer(ArrayBuffer, vb.id)
	dev.BufferData(ArrayBuffer, raw)
	dev.BindBuffer(ArrayBuffer, 0)
	return vb, nil
}

func (vb *VertexBuffer) ID() uint32 { return vb.id }

// Size is the byte size of the uploaded data.
func (vb *VertexBuffer) Size() int { return vb.size }

func (vb *VertexBuffer) Bind()   { vb.dev.BindBuffer(ArrayBuffer, vb.id) }
func (vb *VertexBuffer) Unbind() { vb.dev.BindBuffer(ArrayBuffer, 0) }

// Destroy releases the buffer. Calling it again is a no-op.
func (vb *VertexBuffer) Destroy() {
	if vb.id == 0 {
		return
	}
	vb.dev.DeleteBuffer(vb.id)
	vb.id = 0
}

// IndexBuffer is an element array buffer of uint32 indices.
//
// The data is uploaded through the array buffer target: an element array
// binding is vertex array state and core contexts have no default vertex
// array to hold it. VertexArray.Configure attaches it as the element buffer.
type IndexBuffer struct {
	dev   Device
	id    uint32
	count int32
}

func NewIndexBuffer(dev Device, indices []uint32) (*IndexBuffer, error) {
	if len(indices) == 0 {
		return nil, fmt.Errorf("index buffer: %w", ErrEmptyBuffer)
	}
	ib := &IndexBuffer{dev: dev, id: dev.GenBuffer(), count: int32(len(indices))}
	dev.BindBuffer(ArrayBuffer, ib.id)
	dev.BufferData(ArrayBuffer, rawBytes(indices))
	dev.BindBuffer(ArrayBuffer, 0)
	return ib, nil
}

func (ib *IndexBuffer) ID() uint32 { return ib.id }

// Count is the number of indices.
func (ib *IndexBuffer) Count() int32 { return ib.count }

func (ib *IndexBuffer) Bind()   { ib.dev.BindBuffer(ElementArrayBuffer, ib.id) }
func (ib *IndexBuffer) Unbind() { ib.dev.BindBuffer(ElementArrayBuffer, 0) }

func (ib *IndexBuffer) Destroy() {
	if ib.id == 0 {
		return
	}
	ib.dev.DeleteBuffer(ib.id)
	ib.id = 0
}
