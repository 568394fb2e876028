package renderer

import (
	"github.com/go-gl/mathgl/mgl32"

	"shadow-demo/config"
)

var (
	worldUp  = mgl32.Vec3{0, 1, 0}
	altUp    = mgl32.Vec3{0, 0, -1}
	lookAtAt = mgl32.Vec3{0, 0, 0}
)

// LightProjection builds the projection shared by every light. Depth maps
// are square, so the perspective variant uses an aspect of 1.
func LightProjection(cfg config.ShadowConfig) mgl32.Mat4 {
	if cfg.Projection == config.ProjectionOrthographic {
		s := cfg.OrthoSize
		return mgl32.Ortho(-s, s, -s, s, cfg.Near, cfg.Far)
	}
	return mgl32.Perspective(mgl32.DegToRad(cfg.FOV), 1, cfg.Near, cfg.Far)
}

// LightSpaceMatrix maps world space into the clip space of a light at pos
// looking at the origin.
func LightSpaceMatrix(proj mgl32.Mat4, pos mgl32.Vec3) mgl32.Mat4 {
	up := worldUp
	// a light straight above the origin looks along the up axis
	if pos.Normalize().Cross(up).Len() < 1e-4 {
		up = altUp
	}
	return proj.Mul4(mgl32.LookAtV(pos, lookAtAt, up))
}
