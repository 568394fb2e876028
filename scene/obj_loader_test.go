package scene

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const triangleOBJ = `# one triangle
v 0 0 0
v 1 0 0
v 0 1 0
vn 0 0 1
f 1//1 2//1 3//1
`

const quadNoNormalsOBJ = `v 0 0 0
v 2 0 0
v 2 0 -2
v 0 0 -2
f 1 2 3 4
`

func TestReadOBJAppliesOffsetExactly(t *testing.T) {
	offset := mgl32.Vec3{1.5, -2, 40}
	plain, err := ReadOBJ("tri", strings.NewReader(triangleOBJ), mgl32.Vec3{})
	require.NoError(t, err)
	moved, err := ReadOBJ("tri", strings.NewReader(triangleOBJ), offset)
	require.NoError(t, err)

	require.Equal(t, int32(3), moved.VertexCount())
	for i := range plain.Positions {
		assert.Equal(t, plain.Positions[i].Add(offset), moved.Positions[i])
	}
	assert.Equal(t, mgl32.Vec3{2.5, -2, 40}, moved.Positions[1])
	assert.Equal(t, plain.Normals, moved.Normals, "normals are not offset")
	assert.Equal(t, mgl32.Vec3{0, 0, 1}, moved.Normals[0])
}

func TestReadOBJTriangulatesAndGeneratesNormals(t *testing.T) {
	m, err := ReadOBJ("quad", strings.NewReader(quadNoNormalsOBJ), mgl32.Vec3{})
	require.NoError(t, err)
	require.Equal(t, int32(6), m.VertexCount())
	require.Len(t, m.Normals, 6)
	for _, n := range m.Normals {
		assert.InDelta(t, 1, n.Y(), 1e-6)
	}

	lo, hi := m.Bounds()
	assert.Equal(t, mgl32.Vec3{0, 0, -2}, lo)
	assert.Equal(t, mgl32.Vec3{2, 0, 0}, hi)
}

func TestReadOBJEmpty(t *testing.T) {
	_, err := ReadOBJ("empty", strings.NewReader("v 0 0 0\n"), mgl32.Vec3{})
	assert.Error(t, err)
}

func TestReadOBJMalformed(t *testing.T) {
	for name, src := range map[string]string{
		"bad number":        "v 0 0 0\nv 1 abc 0\nv 0 1 0\nf 1 2 3\n",
		"face out of range": "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 9\n",
		"truncated vertex":  "v 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n",
	} {
		t.Run(name, func(t *testing.T) {
			m, err := ReadOBJ(name, strings.NewReader(src), mgl32.Vec3{})
			assert.ErrorIs(t, err, ErrMalformedOBJ)
			assert.Nil(t, m)
		})
	}
}

func TestCheckIndices(t *testing.T) {
	assert.NoError(t, checkIndices([]int{0, 1, 2}, 9, 3))
	assert.ErrorIs(t, checkIndices([]int{0, 1}, 9, 3), ErrMalformedOBJ, "not whole triangles")
	assert.ErrorIs(t, checkIndices([]int{0, 1, 3}, 9, 3), ErrMalformedOBJ, "index past the last vertex")
	assert.ErrorIs(t, checkIndices([]int{0, 1, -1}, 9, 3), ErrMalformedOBJ)
	assert.ErrorIs(t, checkIndices([]int{0, 1, 2}, 8, 3), ErrMalformedOBJ, "partial vertex")
}

func TestLoadOBJMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.obj")
	_, err := LoadOBJ(path, mgl32.Vec3{})
	require.Error(t, err)
}

func writeScene(t *testing.T) (dir string, lights, placement string) {
	t.Helper()
	dir = t.TempDir()
	write := func(name, body string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
		return path
	}
	write("tri.obj", triangleOBJ)
	write("quad.obj", quadNoNormalsOBJ)
	lights = write("lights.pos", "x/y/z: 0/10/0\nx/y/z: 5/10/5\n")
	placement = write("scene.txt", "# object 2\n0 1 0\n")
	return dir, lights, placement
}
