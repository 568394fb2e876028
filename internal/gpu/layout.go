package gpu

// VertexBufferElement describes one attribute inside an interleaved buffer.
type VertexBufferElement struct {
	Type       AttribType
	Count      int32
	Normalized bool
	Offset     int
}

// VertexBufferLayout lists the attributes of a vertex buffer in order.
// Attribute offsets and the stride are derived as elements are pushed.
type VertexBufferLayout struct {
	elements []VertexBufferElement
	stride   int32
}

// NewLayout returns an empty layout.
func NewLayout() *VertexBufferLayout {
	return &VertexBufferLayout{}
}

// Push appends an attribute of count scalars of type typ. Byte attributes are
// normalized to [0,1].
func (l *VertexBufferLayout) Push(typ AttribType, count int32) *VertexBufferLayout {
	l.elements = append(l.elements, VertexBufferElement{
		Type:       typ,
		Count:      count,
		Normalized: typ == UnsignedByte,
		Offset:     int(l.stride),
	})
	l.stride += count * typ.Size()
	return l
}

func (l *VertexBufferLayout) Elements() []VertexBufferElement { return l.elements }

// Stride is the byte distance between consecutive vertices.
func (l *VertexBufferLayout) Stride() int32 { return l.stride }
