package scene

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// lightPrefix starts every data line of a light file, e.g.
//
//	x/y/z: 10/20/10
const lightPrefix = "x/y/z:"

var (
	ErrNoLights       = errors.New("no lights defined")
	ErrMalformedLight = errors.New("malformed light line")
)

// LightSet is the ordered list of world-space light positions. It is fixed
// once loaded; index i is the light whose depth maps live in slot i.
type LightSet struct {
	positions []mgl32.Vec3
}

// NewLightSet copies positions into a LightSet.
func NewLightSet(positions ...mgl32.Vec3) (*LightSet, error) {
	if len(positions) == 0 {
		return nil, ErrNoLights
	}
	return &LightSet{positions: append([]mgl32.Vec3(nil), positions...)}, nil
}

// ParseLights reads a light file. Blank lines and lines starting with '#'
// are skipped; every other line must hold one "x/y/z: X/Y/Z" position.
// A malformed line or an empty result yields a nil set and an error.
func ParseLights(r io.Reader) (*LightSet, error) {
	var positions []mgl32.Vec3
	sc := bufio.NewScanner(r)
	for n := 1; sc.Scan(); n++ {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		p, err := parseLightLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n, err)
		}
		positions = append(positions, p)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return NewLightSet(positions...)
}

func parseLightLine(line string) (mgl32.Vec3, error) {
	rest, ok := strings.CutPrefix(line, lightPrefix)
	if !ok {
		return mgl32.Vec3{}, fmt.Errorf("%w: missing %q prefix", ErrMalformedLight, lightPrefix)
	}
	fields := strings.Split(strings.TrimSpace(rest), "/")
	if len(fields) != 3 {
		return mgl32.Vec3{}, fmt.Errorf("%w: want 3 coordinates, got %d", ErrMalformedLight, len(fields))
	}
	var p mgl32.Vec3
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 32)
		if err != nil {
			return mgl32.Vec3{}, fmt.Errorf("%w: %v", ErrMalformedLight, err)
		}
		p[i] = float32(v)
	}
	return p, nil
}

// LoadLights reads the light file at path.
func LoadLights(path string) (*LightSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open lights: %w", err)
	}
	defer f.Close()

	ls, err := ParseLights(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ls, nil
}

// WriteLights writes ls in the format ParseLights reads. Coordinates use the
// shortest representation that parses back to the same float32.
func WriteLights(w io.Writer, ls *LightSet) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# %d light(s)\n", ls.Len())
	for _, p := range ls.positions {
		fmt.Fprintf(bw, "%s %s/%s/%s\n", lightPrefix, formatFloat(p[0]), formatFloat(p[1]), formatFloat(p[2]))
	}
	return bw.Flush()
}

func formatFloat(v float32) string {
	return strconv.FormatFloat(float64(v), 'g', -1, 32)
}

// Len is the number of lights.
func (ls *LightSet) Len() int { return len(ls.positions) }

func (ls *LightSet) Position(i int) mgl32.Vec3 { return ls.positions[i] }

// Positions returns a copy of all light positions in order.
func (ls *LightSet) Positions() []mgl32.Vec3 {
	return append([]mgl32.Vec3(nil), ls.positions...)
}
