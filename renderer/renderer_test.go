package renderer

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shadow-demo/config"
	"shadow-demo/internal/gpu"
	"shadow-demo/internal/gpu/gputest"
	"shadow-demo/scene"
)

var testShaders = Shaders{
	Main:  gpu.ShaderSource{Vertex: "main.vert", Fragment: "main.frag"},
	Depth: gpu.ShaderSource{Vertex: "depth.vert", Fragment: "depth.frag"},
}

func triangleMesh(name string, y float32) *scene.Mesh {
	return &scene.Mesh{
		Name:      name,
		Positions: []mgl32.Vec3{{0, y, 0}, {1, y, 0}, {0, y, 1}},
		Normals:   []mgl32.Vec3{{0, 1, 0}, {0, 1, 0}, {0, 1, 0}},
	}
}

func testScene(t *testing.T, lights ...mgl32.Vec3) *scene.Scene {
	t.Helper()
	if len(lights) == 0 {
		lights = []mgl32.Vec3{{10, 20, 10}, {-10, 15, 5}}
	}
	ls, err := scene.NewLightSet(lights...)
	require.NoError(t, err)
	sc := &scene.Scene{Lights: ls, Ground: scene.NewGroundPlane(20)}
	sc.Add(triangleMesh("a", 1), false)
	sc.Add(triangleMesh("b", 2), false)
	sc.Add(triangleMesh("glass", 3), true)
	return sc
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Shadow.Resolution = 256
	return cfg
}

func newTestRenderer(t *testing.T, dev *gputest.Device, opts ...Option) *Renderer {
	t.Helper()
	r, err := New(dev, testScene(t), testShaders, testConfig(), opts...)
	require.NoError(t, err)
	return r
}

func TestNewBuildsResources(t *testing.T) {
	dev := gputest.NewDevice()
	r := newTestRenderer(t, dev)

	assert.Len(t, dev.Programs, 2)
	assert.Len(t, dev.Framebuffers, 4, "two depth maps per light")
	for _, fb := range dev.Framebuffers {
		tex := dev.Textures[fb.DepthTexture]
		require.NotNil(t, tex)
		assert.Equal(t, gpu.FormatDepth32F, tex.Format)
		assert.Equal(t, int32(256), tex.Width)
	}
	assert.True(t, dev.Enabled[gpu.DepthTest])
	assert.True(t, dev.Enabled[gpu.Blend])
	assert.True(t, dev.BlendingAlpha)

	assert.Equal(t, int32(3), r.opaque.Count(0))
	assert.Equal(t, int32(6), r.ground.Count(0))
	assert.Equal(t, 1, r.trans.Len())
}

func TestRenderFrameOrder(t *testing.T) {
	dev := gputest.NewDevice()
	r := newTestRenderer(t, dev)
	cam := scene.NewCamera(config.Default().Camera)

	require.NoError(t, r.RenderFrame(cam, 1280, 720))

	// per light: ground + 2 opaque into the opaque map, 1 into the translucent
	// map; then ground + 2 opaque + 1 translucent shaded
	require.Len(t, dev.Draws, 2*4+4)

	for i := range 2 {
		depth := dev.Draws[i*4 : i*4+4]
		opFB, transFB := r.opFB[i].ID(), r.transFB[i].ID()
		for k, d := range depth {
			want := opFB
			if k == 3 {
				want = transFB
			}
			assert.Equal(t, want, d.Framebuffer, "light %d draw %d", i, k)
			assert.Equal(t, r.depth.ID(), d.Program)
			assert.Equal(t, [4]int32{0, 0, 256, 256}, d.Viewport)
			assert.Equal(t, r.LightSpace(i), d.Uniforms["lightSpaceMatrix"])
		}
		assert.True(t, depth[0].Indexed, "ground is indexed")
	}

	shade := dev.Draws[8:]
	for k, d := range shade {
		assert.Zero(t, d.Framebuffer)
		assert.Equal(t, r.main.ID(), d.Program)
		assert.Equal(t, [4]int32{0, 0, 1280, 720}, d.Viewport)
		assert.Equal(t, boolUniform(k == 3), d.Uniforms["flag"], "draw %d", k)
		// both maps of both lights are bound for sampling
		assert.Equal(t, r.opDepth.ID(0), d.Textures[0])
		assert.Equal(t, r.transDepth.ID(0), d.Textures[1])
		assert.Equal(t, r.opDepth.ID(1), d.Textures[2])
		assert.Equal(t, r.transDepth.ID(1), d.Textures[3])
		assert.Equal(t, int32(2), d.Uniforms["opShadowMap[1]"])
		assert.Equal(t, int32(3), d.Uniforms["transShadowMap[1]"])
		assert.Equal(t, r.LightSpace(1), d.Uniforms["lightSpaceMatrix[1]"])
	}
	assert.Equal(t, float32(0.3), shade[3].Uniforms["alpha"])
	assert.Equal(t, cam.Position, shade[0].Uniforms["viewPos"])

	// units are released for the next depth pass
	for unit := range uint32(4) {
		assert.Zero(t, dev.Units[unit])
	}
	assert.Zero(t, dev.Program)
}

func boolUniform(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

func TestDepthMapsClearedBeforeDraw(t *testing.T) {
	dev := gputest.NewDevice()
	r := newTestRenderer(t, dev)
	require.NoError(t, r.RenderFrame(scene.NewCamera(config.Default().Camera), 640, 480))

	cleared := map[uint32]bool{}
	for _, c := range dev.Clears {
		if c.Mask&gpu.ClearDepthBit != 0 {
			cleared[c.Framebuffer] = true
		}
	}
	for i := range 2 {
		assert.True(t, cleared[r.opFB[i].ID()], "opaque map %d", i)
		assert.True(t, cleared[r.transFB[i].ID()], "translucent map %d", i)
	}
	assert.True(t, cleared[0], "window cleared")
}

func TestShadingPassRejectsStaleDepthMaps(t *testing.T) {
	dev := gputest.NewDevice()
	r := newTestRenderer(t, dev)
	cam := scene.NewCamera(config.Default().Camera)

	require.NoError(t, r.RenderFrame(cam, 640, 480))

	// a new frame whose depth passes have not run yet
	r.frame++
	err := r.shadingPass(cam, 640, 480)
	assert.ErrorIs(t, err, ErrStaleDepthMap)

	// a frame where only light 0 was rendered
	r.frame++
	r.depthPass(0)
	assert.ErrorIs(t, r.shadingPass(cam, 640, 480), ErrStaleDepthMap)

	r.depthPass(1)
	assert.NoError(t, r.shadingPass(cam, 640, 480))
}

func TestTranslucentBeforeOpaqueIsRejected(t *testing.T) {
	dev := gputest.NewDevice()
	r := newTestRenderer(t, dev)

	r.order.Reset()
	require.NoError(t, r.drawShaded(r.trans, 0, true))
	before := len(dev.Draws)
	assert.ErrorIs(t, r.drawShaded(r.opaque, 0, false), ErrDrawOrder)
	assert.Len(t, dev.Draws, before, "rejected draw is not issued")
}

func TestDrawOrder(t *testing.T) {
	var o DrawOrder
	assert.NoError(t, o.Admit(false))
	assert.NoError(t, o.Admit(true))
	assert.NoError(t, o.Admit(true))
	assert.ErrorIs(t, o.Admit(false), ErrDrawOrder)
	o.Reset()
	assert.NoError(t, o.Admit(false))
}

func TestRenderFrameZeroArea(t *testing.T) {
	dev := gputest.NewDevice()
	r := newTestRenderer(t, dev)
	require.NoError(t, r.RenderFrame(scene.NewCamera(config.Default().Camera), 1280, 0))
	assert.Empty(t, dev.Draws)
}

func TestRenderFrameChecksErrors(t *testing.T) {
	dev := gputest.NewDevice()
	r := newTestRenderer(t, dev, WithErrorChecks(true))
	dev.PendingErrors = []uint32{0x0502}

	require.NoError(t, r.RenderFrame(scene.NewCamera(config.Default().Camera), 640, 480))
	assert.Empty(t, dev.PendingErrors, "errors drained after the first draw")
}

func TestNewFailures(t *testing.T) {
	t.Run("compile", func(t *testing.T) {
		dev := gputest.NewDevice()
		dev.FailCompile[gpu.VertexStage] = "bad"
		_, err := New(dev, testScene(t), testShaders, testConfig())
		assert.ErrorIs(t, err, gpu.ErrShaderCompile)
	})
	t.Run("link", func(t *testing.T) {
		dev := gputest.NewDevice()
		dev.FailLink = "bad"
		_, err := New(dev, testScene(t), testShaders, testConfig())
		assert.ErrorIs(t, err, gpu.ErrShaderLink)
	})
	t.Run("incomplete framebuffer releases everything", func(t *testing.T) {
		dev := gputest.NewDevice()
		dev.Incomplete = true
		_, err := New(dev, testScene(t), testShaders, testConfig())
		assert.ErrorIs(t, err, gpu.ErrFramebufferIncomplete)
		assert.Empty(t, dev.Programs)
		assert.Empty(t, dev.Buffers)
		assert.Empty(t, dev.Textures)
		assert.Empty(t, dev.VertexArrays)
	})
	t.Run("too many lights", func(t *testing.T) {
		lights := make([]mgl32.Vec3, MaxTextureUnits/2+1)
		for i := range lights {
			lights[i] = mgl32.Vec3{float32(i + 1), 10, 0}
		}
		_, err := New(gputest.NewDevice(), testScene(t, lights...), testShaders, testConfig())
		assert.ErrorIs(t, err, ErrTooManyLights)
	})
	t.Run("light at origin", func(t *testing.T) {
		_, err := New(gputest.NewDevice(), testScene(t, mgl32.Vec3{}), testShaders, testConfig())
		assert.ErrorIs(t, err, ErrLightAtOrigin)
	})
}

func TestModelSetBeforeEveryDraw(t *testing.T) {
	sc := testScene(t, mgl32.Vec3{5, 10, 5})
	moved := mgl32.Translate3D(0, 3, 0)
	tilted := mgl32.HomogRotate3DX(0.5)
	sc.Opaque[1].Transform = moved
	sc.Translucent[0].Transform = tilted

	dev := gputest.NewDevice()
	r, err := New(dev, sc, testShaders, testConfig())
	require.NoError(t, err)
	require.NoError(t, r.RenderFrame(scene.NewCamera(config.Default().Camera), 640, 480))

	// ground, a, b into the opaque map, glass into the translucent map, then
	// the same four shaded
	want := []mgl32.Mat4{mgl32.Ident4(), mgl32.Ident4(), moved, tilted}
	require.Len(t, dev.Draws, 8)
	for k, d := range dev.Draws {
		assert.Equal(t, want[k%4], d.Uniforms["model"], "draw %d", k)
	}
}

func TestOpaqueOnlyScene(t *testing.T) {
	ls, err := scene.NewLightSet(mgl32.Vec3{5, 10, 5})
	require.NoError(t, err)
	sc := &scene.Scene{Lights: ls, Ground: scene.NewGroundPlane(10)}
	sc.Add(triangleMesh("a", 1), false)

	dev := gputest.NewDevice()
	r, err := New(dev, sc, testShaders, testConfig())
	require.NoError(t, err)
	assert.Nil(t, r.trans)
	require.NoError(t, r.RenderFrame(scene.NewCamera(config.Default().Camera), 640, 480))
	assert.Len(t, dev.Draws, 2+2)
}

func TestDestroyOnce(t *testing.T) {
	dev := gputest.NewDevice()
	r := newTestRenderer(t, dev)
	r.Destroy()
	r.Destroy()
	assert.Empty(t, dev.Programs)
	assert.Empty(t, dev.Framebuffers)
	assert.Empty(t, dev.Textures)
	assert.Empty(t, dev.Buffers)
	assert.Equal(t, 4, dev.Deleted["framebuffer"])
}
