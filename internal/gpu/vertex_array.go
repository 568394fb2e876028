package gpu

import "fmt"

// Binding pairs a vertex buffer with the layout that describes it.
type Binding struct {
	Buffer *VertexBuffer
	Layout *VertexBufferLayout
}

type vaoSlot struct {
	count   int32
	indexed bool
}

// VertexArray owns a fixed number of vertex array objects addressed by slot.
// Each slot is configured in one call and remembers how many vertices (or
// indices) it draws, so geometry and draw count cannot drift apart.
type VertexArray struct {
	dev   Device
	ids   []uint32
	slots []vaoSlot
}

// NewVertexArray generates n vertex array objects.
func NewVertexArray(dev Device, n int) (*VertexArray, error) {
	if n <= 0 {
		return nil, fmt.Errorf("vertex array count %d: %w", n, ErrSlotOutOfRange)
	}
	return &VertexArray{
		dev:   dev,
		ids:   dev.GenVertexArrays(n),
		slots: make([]vaoSlot, n),
	}, nil
}

// Configure records the attribute bindings of slot. Attribute indices run
// continuously across bindings: the first element of the second binding
// follows the last element of the first. When ib is non-nil the slot draws
// indexed. The vertex array and array buffer are unbound on return.
func (va *VertexArray) Configure(slot int, ib *IndexBuffer, bindings ...Binding) error {
	if slot < 0 || slot >= len(va.ids) {
		return fmt.Errorf("configure slot %d of %d: %w", slot, len(va.ids), ErrSlotOutOfRange)
	}
	if len(bindings) == 0 {
		return fmt.Errorf("configure slot %d: no bindings: %w", slot, ErrBadLayout)
	}

	vertices := -1
	for i, b := range bindings {
		if b.Buffer == nil || b.Layout == nil || b.Layout.Stride() == 0 {
			return fmt.Errorf("configure slot %d binding %d: %w", slot, i, ErrBadLayout)
		}
		n := b.Buffer.Size() / int(b.Layout.Stride())
		if vertices >= 0 && n != vertices {
			return fmt.Errorf("configure slot %d binding %d: %d vertices, want %d: %w",
				slot, i, n, vertices, ErrBadLayout)
		}
		vertices = n
	}

	va.dev.BindVertexArray(va.ids[slot])
	var index uint32
	for _, b := range bindings {
		b.Buffer.Bind()
		for _, e := range b.Layout.Elements() {
			va.dev.EnableVertexAttrib(index)
			va.dev.VertexAttribPointer(index, e.Count, e.Type, e.Normalized, b.Layout.Stride(), e.Offset)
			index++
		}
	}
	if ib != nil {
		ib.Bind()
	}
	va.dev.BindVertexArray(0)
	va.dev.BindBuffer(ArrayBuffer, 0)
	if ib != nil {
		va.slots[slot] = vaoSlot{count: ib.Count(), indexed: true}
	} else {
		va.slots[slot] = vaoSlot{count: int32(vertices)}
	}
	return nil
}

// Bind makes slot the current vertex array. It panics on an out-of-range slot.
func (va *VertexArray) Bind(slot int) { va.dev.BindVertexArray(va.ids[slot]) }

func (va *VertexArray) Unbind() { va.dev.BindVertexArray(0) }

// Draw binds slot and issues its triangle draw. Slots that were never
// configured draw nothing.
func (va *VertexArray) Draw(slot int) {
	s := va.slots[slot]
	if s.count == 0 {
		return
	}
	va.Bind(slot)
	if s.indexed {
		va.dev.DrawElements(s.count, UnsignedInt)
	} else {
		va.dev.DrawArrays(0, s.count)
	}
}

// Count returns the vertex or index count recorded for slot.
func (va *VertexArray) Count(slot int) int32 { return va.slots[slot].count }

func (va *VertexArray) ID(slot int) uint32 { return va.ids[slot] }

func (va *VertexArray) Len() int { return len(va.ids) }

// Destroy deletes every slot. Calling it again is a no-op.
func (va *VertexArray) Destroy() {
	if va.ids == nil {
		return
	}
	va.dev.DeleteVertexArrays(va.ids)
	va.ids = nil
	va.slots = nil
}
