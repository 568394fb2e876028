package scene

import (
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shadow-demo/config"
)

func TestLoadScene(t *testing.T) {
	dir, lights, placement := writeScene(t)
	cfg := config.SceneConfig{
		LightsFile:    lights,
		PlacementFile: placement,
		GroundSize:    50,
		Objects: []config.ObjectConfig{
			{Path: filepath.Join(dir, "tri.obj")},
			{Path: filepath.Join(dir, "quad.obj"), Translucent: true},
			{Path: filepath.Join(dir, "tri.obj")},
		},
	}

	var loaded []string
	s, err := Load(cfg, func(path string) { loaded = append(loaded, filepath.Base(path)) })
	require.NoError(t, err)

	assert.Equal(t, []string{"tri.obj", "quad.obj", "tri.obj"}, loaded)
	assert.Equal(t, 2, s.Lights.Len())
	require.Len(t, s.Opaque, 2)
	require.Len(t, s.Translucent, 1)
	assert.Equal(t, mgl32.Vec3{0, 1, 0}, s.Translucent[0].Mesh.Positions[0], "object 2 placed by the placement file")
	assert.Equal(t, mgl32.Vec3{0, 0, 0}, s.Opaque[1].Mesh.Positions[0])
	assert.Equal(t, mgl32.Vec3{50, 0, 50}, s.Ground.Positions[0])
	assert.Equal(t, mgl32.Ident4(), s.Opaque[0].Model())
}

func TestLoadSceneErrors(t *testing.T) {
	dir, lights, placement := writeScene(t)

	_, err := Load(config.SceneConfig{LightsFile: filepath.Join(dir, "none.pos")}, nil)
	assert.Error(t, err)

	_, err = Load(config.SceneConfig{LightsFile: lights, PlacementFile: filepath.Join(dir, "none.txt")}, nil)
	assert.Error(t, err)

	_, err = Load(config.SceneConfig{
		LightsFile:    lights,
		PlacementFile: placement,
		Objects:       []config.ObjectConfig{{Path: filepath.Join(dir, "none.obj")}},
	}, nil)
	assert.ErrorContains(t, err, "scene object 1")
}

func TestGroundPlane(t *testing.T) {
	g := NewGroundPlane(100)
	require.Len(t, g.Positions, 4)
	assert.Equal(t, []uint32{0, 1, 2, 2, 3, 0}, g.Indices)
	for _, n := range g.Normals {
		assert.Equal(t, mgl32.Vec3{0, 1, 0}, n)
	}
}

type heldKeys map[CameraAction]bool

func (h heldKeys) Active(a CameraAction) bool { return h[a] }

func testCamera() *Camera {
	return NewCamera(config.Default().Camera)
}

func TestCameraMove(t *testing.T) {
	c := testCamera()
	start := c.Position

	c.Update(heldKeys{MoveForward: true})
	assert.InDelta(t, start.Z()-c.Speed, c.Position.Z(), 1e-6)

	c.Update(heldKeys{MoveForward: true, MoveBackward: true})
	assert.InDelta(t, start.Z()-c.Speed, c.Position.Z(), 1e-6, "opposite keys cancel")

	c.Update(heldKeys{MoveRight: true})
	assert.InDelta(t, start.X()+c.Speed, c.Position.X(), 1e-6)
}

func TestCameraTurn(t *testing.T) {
	c := testCamera()

	c.Update(heldKeys{TurnLeft: true})
	assert.Less(t, c.Front.X(), float32(0))
	assert.InDelta(t, 1, c.Front.Len(), 1e-5)

	c = testCamera()
	c.Update(heldKeys{TurnUp: true})
	assert.Greater(t, c.Front.Y(), float32(0))

	c = testCamera()
	for range 200 {
		c.Apply(TurnUp)
	}
	assert.Greater(t, c.Front.Cross(c.Up).Len(), float32(1e-3), "pitch stops short of the up axis")
}

func TestCameraMatrices(t *testing.T) {
	c := testCamera()
	origin := c.View().Mul4x1(c.Position.Vec4(1))
	assert.InDelta(t, 0, origin.Vec3().Len(), 1e-5, "camera sits at the view-space origin")

	proj := c.Projection(16.0 / 9.0)
	assert.InDelta(t, proj[5]/proj[0], 16.0/9.0, 1e-5)
}
