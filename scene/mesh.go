package scene

import "github.com/go-gl/mathgl/mgl32"

// Mesh holds CPU-side triangle data, expanded so that every three
// consecutive vertices form one triangle. Positions and Normals are parallel.
// GPU upload is managed by the renderer.
type Mesh struct {
	Name      string
	Positions []mgl32.Vec3
	Normals   []mgl32.Vec3
}

// VertexCount is the number of vertices a non-indexed draw of m issues.
func (m *Mesh) VertexCount() int32 { return int32(len(m.Positions)) }

// Bounds returns the axis-aligned box enclosing every position.
func (m *Mesh) Bounds() (lo, hi mgl32.Vec3) {
	if len(m.Positions) == 0 {
		return
	}
	lo, hi = m.Positions[0], m.Positions[0]
	for _, p := range m.Positions[1:] {
		for i := range 3 {
			lo[i] = min(lo[i], p[i])
			hi[i] = max(hi[i], p[i])
		}
	}
	return lo, hi
}

// flatNormals fills Normals with one face normal per triangle.
func (m *Mesh) flatNormals() {
	m.Normals = make([]mgl32.Vec3, len(m.Positions))
	for i := 0; i+2 < len(m.Positions); i += 3 {
		a, b, c := m.Positions[i], m.Positions[i+1], m.Positions[i+2]
		n := b.Sub(a).Cross(c.Sub(a))
		if n.Len() > 0 {
			n = n.Normalize()
		}
		m.Normals[i], m.Normals[i+1], m.Normals[i+2] = n, n, n
	}
}

// GroundPlane is the indexed quad the scene stands on.
type GroundPlane struct {
	Positions []mgl32.Vec3
	Normals   []mgl32.Vec3
	Indices   []uint32
}

// NewGroundPlane returns a y=0 square of the given half extent facing +Y.
func NewGroundPlane(halfExtent float32) GroundPlane {
	s := halfExtent
	up := mgl32.Vec3{0, 1, 0}
	return GroundPlane{
		Positions: []mgl32.Vec3{{s, 0, s}, {-s, 0, s}, {-s, 0, -s}, {s, 0, -s}},
		Normals:   []mgl32.Vec3{up, up, up, up},
		Indices:   []uint32{0, 1, 2, 2, 3, 0},
	}
}
