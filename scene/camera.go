package scene

import (
	"github.com/go-gl/mathgl/mgl32"

	"shadow-demo/config"
)

// CameraAction is one discrete camera control.
type CameraAction int

const (
	MoveForward CameraAction = iota
	MoveBackward
	MoveLeft
	MoveRight
	TurnLeft
	TurnRight
	TurnUp
	TurnDown
	cameraActionCount
)

// ActionSource reports which camera controls are held this frame.
type ActionSource interface {
	Active(a CameraAction) bool
}

// Camera is a free-flying first-person camera.
type Camera struct {
	Position mgl32.Vec3
	Front    mgl32.Vec3
	Up       mgl32.Vec3
	Speed    float32 // world units per frame
	TurnRate float32 // degrees per frame
	FOV      float32 // degrees
	Near     float32
	Far      float32
}

func NewCamera(cfg config.CameraConfig) *Camera {
	return &Camera{
		Position: cfg.PositionVec(),
		Front:    cfg.FrontVec().Normalize(),
		Up:       cfg.UpVec().Normalize(),
		Speed:    cfg.Speed,
		TurnRate: cfg.TurnRate,
		FOV:      cfg.FOV,
		Near:     cfg.Near,
		Far:      cfg.Far,
	}
}

// Update applies every action that in reports as active.
func (c *Camera) Update(in ActionSource) {
	for a := range cameraActionCount {
		if in.Active(a) {
			c.Apply(a)
		}
	}
}

// Apply performs a single step of action a.
func (c *Camera) Apply(a CameraAction) {
	switch a {
	case MoveForward:
		c.Position = c.Position.Add(c.Front.Mul(c.Speed))
	case MoveBackward:
		c.Position = c.Position.Sub(c.Front.Mul(c.Speed))
	case MoveLeft:
		c.Position = c.Position.Sub(c.Right().Mul(c.Speed))
	case MoveRight:
		c.Position = c.Position.Add(c.Right().Mul(c.Speed))
	case TurnLeft:
		c.turn(c.TurnRate, c.Up)
	case TurnRight:
		c.turn(-c.TurnRate, c.Up)
	case TurnUp:
		c.turn(c.TurnRate, c.Right())
	case TurnDown:
		c.turn(-c.TurnRate, c.Right())
	}
}

func (c *Camera) turn(degrees float32, axis mgl32.Vec3) {
	q := mgl32.QuatRotate(mgl32.DegToRad(degrees), axis)
	front := q.Rotate(c.Front).Normalize()
	// refuse to pitch through the up axis, where Right degenerates
	if front.Cross(c.Up).Len() < 1e-3 {
		return
	}
	c.Front = front
}

// Right is the unit vector to the camera's right.
func (c *Camera) Right() mgl32.Vec3 {
	return c.Front.Cross(c.Up).Normalize()
}

func (c *Camera) View() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position, c.Position.Add(c.Front), c.Up)
}

func (c *Camera) Projection(aspect float32) mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.FOV), aspect, c.Near, c.Far)
}
