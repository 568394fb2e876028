package scene

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

var ErrMalformedPlacement = errors.New("malformed placement file")

const objectHeader = "# object"

// Placements maps a 1-based object number to its world offset. Objects
// without an entry sit at the origin.
type Placements map[int]mgl32.Vec3

// Offset returns the offset of the i-th object of a scene list (0-based).
func (p Placements) Offset(i int) mgl32.Vec3 { return p[i+1] }

// ParsePlacements reads a scene placement file:
//
//	## comment
//	# object 1
//	0 0.5 -3
//
// Each header is followed by a line of three space-separated floats.
func ParsePlacements(r io.Reader) (Placements, error) {
	out := make(Placements)
	sc := bufio.NewScanner(r)
	n := 0
	for sc.Scan() {
		n++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "##") {
			continue
		}
		rest, ok := strings.CutPrefix(line, objectHeader)
		if !ok {
			return nil, fmt.Errorf("line %d: expected %q: %w", n, objectHeader, ErrMalformedPlacement)
		}
		index, err := strconv.Atoi(strings.TrimSpace(rest))
		if err != nil {
			return nil, fmt.Errorf("line %d: object number: %w", n, errors.Join(ErrMalformedPlacement, err))
		}

		if !sc.Scan() {
			return nil, fmt.Errorf("line %d: object %d has no offset line: %w", n, index, ErrMalformedPlacement)
		}
		n++
		fields := strings.Fields(sc.Text())
		if len(fields) != 3 {
			return nil, fmt.Errorf("line %d: want 3 offsets, got %d: %w", n, len(fields), ErrMalformedPlacement)
		}
		var off mgl32.Vec3
		for i, f := range fields {
			v, err := strconv.ParseFloat(f, 32)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", n, errors.Join(ErrMalformedPlacement, err))
			}
			off[i] = float32(v)
		}
		out[index] = off
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func LoadPlacements(path string) (Placements, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open placements: %w", err)
	}
	defer f.Close()

	p, err := ParsePlacements(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// WritePlacements writes p in object-number order.
func WritePlacements(w io.Writer, p Placements) error {
	bw := bufio.NewWriter(w)
	bw.WriteString("## object offsets\n")
	for _, i := range slices.Sorted(maps.Keys(p)) {
		off := p[i]
		fmt.Fprintf(bw, "%s %d\n%s %s %s\n", objectHeader, i, formatFloat(off[0]), formatFloat(off[1]), formatFloat(off[2]))
	}
	return bw.Flush()
}
