package scene

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/udhos/gwob"
)

var (
	ErrEmptyMesh    = errors.New("mesh has no triangles")
	ErrMalformedOBJ = errors.New("malformed obj")
)

// LoadOBJ parses a Wavefront .obj file into a single triangle-expanded Mesh
// and adds offset to every position. Faces with more than three corners are
// triangulated by the parser. When the file carries no normals, flat face
// normals are generated.
func LoadOBJ(path string, offset mgl32.Vec3) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open obj: %w", err)
	}
	defer f.Close()

	m, err := ReadOBJ(filepath.Base(path), f, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// ReadOBJ is LoadOBJ for an already opened source; name labels the mesh and
// parser messages.
func ReadOBJ(name string, r io.Reader, offset mgl32.Vec3) (*Mesh, error) {
	// gwob skips lines it cannot parse and only reports them to the logger,
	// so every report fails the load.
	var problems []error
	opts := &gwob.ObjParserOptions{
		Logger: func(msg string) {
			slog.Debug("obj parser", "file", name, "msg", msg)
			problems = append(problems, errors.New(msg))
		},
	}
	obj, err := gwob.NewObjFromReader(name, bufio.NewReader(r), opts)
	if err != nil {
		return nil, fmt.Errorf("parse obj: %w", err)
	}
	if len(problems) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrMalformedOBJ, errors.Join(problems...))
	}
	if len(obj.Indices) == 0 {
		return nil, ErrEmptyMesh
	}

	// gwob strides and offsets are in bytes over a float32 slice
	stride := obj.StrideSize / 4
	posOff := obj.StrideOffsetPosition / 4
	normOff := obj.StrideOffsetNormal / 4
	if err := checkIndices(obj.Indices, len(obj.Coord), stride); err != nil {
		return nil, err
	}

	m := &Mesh{
		Name:      name,
		Positions: make([]mgl32.Vec3, 0, len(obj.Indices)),
	}
	if obj.NormCoordFound {
		m.Normals = make([]mgl32.Vec3, 0, len(obj.Indices))
	}
	for _, idx := range obj.Indices {
		base := idx * stride
		p := mgl32.Vec3{obj.Coord[base+posOff], obj.Coord[base+posOff+1], obj.Coord[base+posOff+2]}
		m.Positions = append(m.Positions, p.Add(offset))
		if obj.NormCoordFound {
			m.Normals = append(m.Normals, mgl32.Vec3{
				obj.Coord[base+normOff], obj.Coord[base+normOff+1], obj.Coord[base+normOff+2],
			})
		}
	}
	if !obj.NormCoordFound {
		m.flatNormals()
	}
	return m, nil
}

// checkIndices keeps the mesh a whole number of triangles whose corners all
// exist in coords.
func checkIndices(indices []int, coords, stride int) error {
	if len(indices)%3 != 0 {
		return fmt.Errorf("%w: %d indices do not form whole triangles", ErrMalformedOBJ, len(indices))
	}
	if stride <= 0 || coords%stride != 0 {
		return fmt.Errorf("%w: %d coordinates do not fill stride %d", ErrMalformedOBJ, coords, stride)
	}
	vertices := coords / stride
	for _, idx := range indices {
		if idx < 0 || idx >= vertices {
			return fmt.Errorf("%w: index %d out of range of %d vertices", ErrMalformedOBJ, idx, vertices)
		}
	}
	return nil
}
