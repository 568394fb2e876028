package renderer

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// CPU reference of the depth pass and of the shadow lookup done by the main
// fragment shader. Used to check shadow math without a GL context.

// DepthMap is a CPU depth image in [0,1], row 0 at the bottom.
type DepthMap struct {
	Width, Height int
	Depth         []float32
}

// NewDepthMap returns a map cleared to the far plane.
func NewDepthMap(width, height int) *DepthMap {
	m := &DepthMap{Width: width, Height: height, Depth: make([]float32, width*height)}
	for i := range m.Depth {
		m.Depth[i] = 1
	}
	return m
}

// At returns the depth at texel (x, y). Texels outside the map read as the
// border depth 1, matching the clamp-to-border depth textures.
func (m *DepthMap) At(x, y int) float32 {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return 1
	}
	return m.Depth[y*m.Width+x]
}

// Rasterize writes the nearest depth of every triangle in positions (three
// vertices each, world space) as seen through lightSpace.
func (m *DepthMap) Rasterize(lightSpace mgl32.Mat4, positions []mgl32.Vec3) {
	for i := 0; i+2 < len(positions); i += 3 {
		var v [3]mgl32.Vec3
		behind := false
		for k := range 3 {
			c := lightSpace.Mul4x1(positions[i+k].Vec4(1))
			if c.W() <= 0 {
				behind = true
				break
			}
			ndc := c.Vec3().Mul(1 / c.W())
			v[k] = mgl32.Vec3{
				(ndc.X()*0.5 + 0.5) * float32(m.Width),
				(ndc.Y()*0.5 + 0.5) * float32(m.Height),
				ndc.Z()*0.5 + 0.5,
			}
		}
		if !behind {
			m.triangle(v)
		}
	}
}

func (m *DepthMap) triangle(v [3]mgl32.Vec3) {
	area := edge(v[0], v[1], v[2])
	if area == 0 {
		return
	}
	x0 := max(0, int(math32.Floor(min(v[0].X(), v[1].X(), v[2].X()))))
	x1 := min(m.Width-1, int(math32.Ceil(max(v[0].X(), v[1].X(), v[2].X()))))
	y0 := max(0, int(math32.Floor(min(v[0].Y(), v[1].Y(), v[2].Y()))))
	y1 := min(m.Height-1, int(math32.Ceil(max(v[0].Y(), v[1].Y(), v[2].Y()))))

	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			p := mgl32.Vec3{float32(x) + 0.5, float32(y) + 0.5, 0}
			w0 := edge(v[1], v[2], p) / area
			w1 := edge(v[2], v[0], p) / area
			w2 := edge(v[0], v[1], p) / area
			if w0 < 0 || w1 < 0 || w2 < 0 {
				continue
			}
			z := w0*v[0].Z() + w1*v[1].Z() + w2*v[2].Z()
			if z < 0 || z > 1 {
				continue
			}
			if idx := y*m.Width + x; z < m.Depth[idx] {
				m.Depth[idx] = z
			}
		}
	}
}

func edge(a, b, p mgl32.Vec3) float32 {
	return (b.X()-a.X())*(p.Y()-a.Y()) - (b.Y()-a.Y())*(p.X()-a.X())
}

// ShadowBias is the depth offset used against self-shadowing. It grows as the
// surface turns away from the light.
func ShadowBias(normal, toLight mgl32.Vec3) float32 {
	return math32.Max(0.05*(1-normal.Normalize().Dot(toLight.Normalize())), 0.005)
}

// ShadowFactor returns how much of worldPos is hidden from the light at
// lightPos, from 0 (lit) to 1 (fully shadowed), by 3x3 percentage-closer
// filtering of m. Points beyond the light's far plane are lit.
func ShadowFactor(m *DepthMap, lightSpace mgl32.Mat4, lightPos, worldPos, normal mgl32.Vec3) float32 {
	c := lightSpace.Mul4x1(worldPos.Vec4(1))
	proj := c.Vec3().Mul(1 / c.W()).Mul(0.5).Add(mgl32.Vec3{0.5, 0.5, 0.5})
	if proj.Z() > 1 {
		return 0
	}
	current := proj.Z() - ShadowBias(normal, lightPos.Sub(worldPos))

	tx := int(math32.Floor(proj.X() * float32(m.Width)))
	ty := int(math32.Floor(proj.Y() * float32(m.Height)))
	var shadow float32
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if current > m.At(tx+dx, ty+dy) {
				shadow++
			}
		}
	}
	return shadow / 9
}

// CombinedShadow merges the opaque and translucent shadow factors of one
// light. Translucent occluders block only alpha of the light.
func CombinedShadow(opaque, translucent, alpha float32) float32 {
	return math32.Max(opaque, alpha*translucent)
}

// Attenuation is the distance falloff 1/(a + b·d + c·d²).
func Attenuation(a, b, c, d float32) float32 {
	return 1 / (a + b*d + c*d*d)
}
