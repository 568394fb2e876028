// Package renderer draws a scene with per-light shadow maps.
//
// A frame is a depth pass per light followed by a single shading pass. Each
// light owns two depth maps: one holding the ground and the opaque objects,
// one holding the translucent objects. The shading pass samples both.
package renderer

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-gl/mathgl/mgl32"

	"shadow-demo/config"
	"shadow-demo/internal/gpu"
	"shadow-demo/scene"
)

// MaxTextureUnits is the number of fragment texture units every OpenGL 4.1
// context provides. Each light takes two.
const MaxTextureUnits = 16

var (
	ErrDrawOrder     = errors.New("opaque draw after translucent draw")
	ErrStaleDepthMap = errors.New("depth map not written this frame")
	ErrTooManyLights = errors.New("too many lights")
	ErrLightAtOrigin = errors.New("light sits at the origin it looks at")
)

// Shaders holds the sources of both programs. Main must already have its
// light count expanded.
type Shaders struct {
	Main  gpu.ShaderSource
	Depth gpu.ShaderSource
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithErrorChecks drains the device error queue after every draw.
func WithErrorChecks(on bool) Option {
	return func(r *Renderer) { r.checkErrors = on }
}

// WithBackground sets the clear color of the shading pass.
func WithBackground(c mgl32.Vec3) Option {
	return func(r *Renderer) { r.background = c }
}

type lightUniforms struct {
	space, pos, color, opMap, transMap string
}

// Renderer owns every GPU object of a scene. All of it is created in New and
// released in Destroy; drawing a frame allocates nothing on the device.
type Renderer struct {
	dev      gpu.Device
	lighting config.LightingConfig

	main  *gpu.Program
	depth *gpu.Program

	buffers []*gpu.VertexBuffer
	index   *gpu.IndexBuffer
	ground  *gpu.VertexArray
	opaque  *gpu.VertexArray // nil when the scene has no opaque objects
	trans   *gpu.VertexArray // nil when the scene has no translucent objects

	// model matrices, one per slot of opaque and trans
	opModels    []mgl32.Mat4
	transModels []mgl32.Mat4

	resolution int32
	opDepth    *gpu.Texture
	transDepth *gpu.Texture
	opFB       []*gpu.Framebuffer
	transFB    []*gpu.Framebuffer

	lights     []mgl32.Vec3
	lightSpace []mgl32.Mat4
	names      []lightUniforms

	// frame counts RenderFrame calls; the stamps hold the frame in which
	// each depth map was last written.
	frame       uint64
	opStamp     []uint64
	transStamp  []uint64
	order       DrawOrder
	checkErrors bool
	background  mgl32.Vec3
}

// New uploads the scene and builds both programs and every depth map.
// Any failure releases what was already created.
func New(dev gpu.Device, sc *scene.Scene, shaders Shaders, cfg config.Config, opts ...Option) (_ *Renderer, err error) {
	n := sc.Lights.Len()
	if 2*n > MaxTextureUnits {
		return nil, fmt.Errorf("%d lights need %d texture units, have %d: %w", n, 2*n, MaxTextureUnits, ErrTooManyLights)
	}

	r := &Renderer{
		dev:        dev,
		lighting:   cfg.Lighting,
		resolution: int32(cfg.Shadow.Resolution),
		lights:     sc.Lights.Positions(),
		background: mgl32.Vec3(cfg.Lighting.Background),
		opStamp:    make([]uint64, n),
		transStamp: make([]uint64, n),
	}
	for _, o := range opts {
		o(r)
	}
	defer func() {
		if err != nil {
			r.Destroy()
		}
	}()

	proj := LightProjection(cfg.Shadow)
	for i, p := range r.lights {
		if p.Len() == 0 {
			return nil, fmt.Errorf("light %d: %w", i, ErrLightAtOrigin)
		}
		r.lightSpace = append(r.lightSpace, LightSpaceMatrix(proj, p))
		r.names = append(r.names, lightUniforms{
			space:    fmt.Sprintf("lightSpaceMatrix[%d]", i),
			pos:      fmt.Sprintf("lightPos[%d]", i),
			color:    fmt.Sprintf("lightColor[%d]", i),
			opMap:    fmt.Sprintf("opShadowMap[%d]", i),
			transMap: fmt.Sprintf("transShadowMap[%d]", i),
		})
	}

	if r.main, err = gpu.NewProgram(dev, shaders.Main); err != nil {
		return nil, fmt.Errorf("main program: %w", err)
	}
	if r.depth, err = gpu.NewProgram(dev, shaders.Depth); err != nil {
		return nil, fmt.Errorf("depth program: %w", err)
	}

	if err = r.uploadGeometry(sc); err != nil {
		return nil, err
	}
	if err = r.createDepthMaps(n, cfg.Shadow.Resolution); err != nil {
		return nil, err
	}

	dev.Enable(gpu.DepthTest)
	dev.Enable(gpu.Blend)
	dev.BlendAlpha()

	slog.Info("renderer ready",
		"lights", n,
		"opaque", len(sc.Opaque),
		"translucent", len(sc.Translucent),
		"shadow_resolution", r.resolution)
	return r, nil
}

func (r *Renderer) uploadGeometry(sc *scene.Scene) error {
	vec3 := gpu.NewLayout().Push(gpu.Float, 3)

	bindings := func(positions, normals []mgl32.Vec3) ([]gpu.Binding, error) {
		pos, err := gpu.NewVertexBuffer(r.dev, positions)
		if err != nil {
			return nil, err
		}
		r.buffers = append(r.buffers, pos)
		norm, err := gpu.NewVertexBuffer(r.dev, normals)
		if err != nil {
			return nil, err
		}
		r.buffers = append(r.buffers, norm)
		return []gpu.Binding{{Buffer: pos, Layout: vec3}, {Buffer: norm, Layout: vec3}}, nil
	}

	g := sc.Ground
	b, err := bindings(g.Positions, g.Normals)
	if err != nil {
		return fmt.Errorf("ground: %w", err)
	}
	if r.index, err = gpu.NewIndexBuffer(r.dev, g.Indices); err != nil {
		return fmt.Errorf("ground: %w", err)
	}
	if r.ground, err = gpu.NewVertexArray(r.dev, 1); err != nil {
		return err
	}
	if err := r.ground.Configure(0, r.index, b...); err != nil {
		return fmt.Errorf("ground: %w", err)
	}

	upload := func(objs []*scene.Object, models *[]mgl32.Mat4) (*gpu.VertexArray, error) {
		if len(objs) == 0 {
			return nil, nil
		}
		for _, o := range objs {
			*models = append(*models, o.Model())
		}
		va, err := gpu.NewVertexArray(r.dev, len(objs))
		if err != nil {
			return nil, err
		}
		for i, o := range objs {
			b, err := bindings(o.Mesh.Positions, o.Mesh.Normals)
			if err == nil {
				err = va.Configure(i, nil, b...)
			}
			if err != nil {
				va.Destroy()
				return nil, fmt.Errorf("mesh %q: %w", o.Mesh.Name, err)
			}
		}
		return va, nil
	}
	if r.opaque, err = upload(sc.Opaque, &r.opModels); err != nil {
		return err
	}
	if r.trans, err = upload(sc.Translucent, &r.transModels); err != nil {
		return err
	}
	return nil
}

func (r *Renderer) createDepthMaps(n, size int) error {
	var err error
	if r.opDepth, err = gpu.NewDepthTexture(r.dev, n, size, size); err != nil {
		return err
	}
	if r.transDepth, err = gpu.NewDepthTexture(r.dev, n, size, size); err != nil {
		return err
	}
	for i := range n {
		op, err := gpu.NewDepthFramebuffer(r.dev, r.opDepth, i)
		if err != nil {
			return fmt.Errorf("light %d opaque depth map: %w", i, err)
		}
		r.opFB = append(r.opFB, op)
		trans, err := gpu.NewDepthFramebuffer(r.dev, r.transDepth, i)
		if err != nil {
			return fmt.Errorf("light %d translucent depth map: %w", i, err)
		}
		r.transFB = append(r.transFB, trans)
	}
	return nil
}

// LightSpace returns the light-space matrix of light i.
func (r *Renderer) LightSpace(i int) mgl32.Mat4 { return r.lightSpace[i] }

// RenderFrame draws one frame into the default framebuffer of the given size.
// A zero-area target (a minimized window) draws nothing.
func (r *Renderer) RenderFrame(cam *scene.Camera, width, height int32) error {
	if width <= 0 || height <= 0 {
		return nil
	}
	r.frame++
	for i := range r.lights {
		r.depthPass(i)
	}
	return r.shadingPass(cam, width, height)
}

// ── Depth pass ────────────────────────────────────────────────────────────────

func (r *Renderer) depthPass(i int) {
	p := r.depth
	p.Bind()
	p.SetMat4("lightSpaceMatrix", r.lightSpace[i])
	r.dev.Viewport(0, 0, r.resolution, r.resolution)

	r.opFB[i].Bind()
	r.dev.Clear(gpu.ClearDepthBit)
	p.SetMat4("model", mgl32.Ident4())
	r.draw(r.ground, 0, "depth ground")
	r.drawAll(p, r.opaque, r.opModels, "depth opaque")
	r.opFB[i].Unbind()
	r.opStamp[i] = r.frame

	r.transFB[i].Bind()
	r.dev.Clear(gpu.ClearDepthBit)
	r.drawAll(p, r.trans, r.transModels, "depth translucent")
	r.transFB[i].Unbind()
	r.transStamp[i] = r.frame

	p.Unbind()
}

// drawAll draws every slot of va, each preceded by its model matrix.
func (r *Renderer) drawAll(p *gpu.Program, va *gpu.VertexArray, models []mgl32.Mat4, op string) {
	if va == nil {
		return
	}
	for slot := range va.Len() {
		p.SetMat4("model", models[slot])
		r.draw(va, slot, op)
	}
}

func (r *Renderer) draw(va *gpu.VertexArray, slot int, op string) {
	va.Draw(slot)
	if r.checkErrors {
		gpu.CheckError(r.dev, op)
	}
}

// ── Shading pass ──────────────────────────────────────────────────────────────

func (r *Renderer) shadingPass(cam *scene.Camera, width, height int32) error {
	r.dev.Viewport(0, 0, width, height)
	r.dev.ClearColor(r.background[0], r.background[1], r.background[2], 1)
	r.dev.Clear(gpu.ClearColorBit | gpu.ClearDepthBit)

	p := r.main
	p.Bind()
	defer p.Unbind()

	l := r.lighting
	p.SetMat4("view", cam.View())
	p.SetMat4("projection", cam.Projection(float32(width)/float32(height)))
	p.SetVec3("viewPos", cam.Position)
	p.SetVec3("objectColor", l.ObjectColorVec())
	p.SetFloat("ambientStrength", l.Ambient)
	p.SetFloat("diffuseStrength", l.Diffuse)
	p.SetFloat("specularStrength", l.Specular)
	p.SetInt("n", l.Shininess)
	p.SetFloat("att_a", l.AttConstant)
	p.SetFloat("att_b", l.AttLinear)
	p.SetFloat("att_c", l.AttQuad)
	p.SetFloat("alpha", l.Alpha)
	for i, names := range r.names {
		p.SetMat4(names.space, r.lightSpace[i])
		p.SetVec3(names.pos, r.lights[i])
		p.SetVec3(names.color, l.LightColorVec())
	}
	if err := r.bindDepthMaps(); err != nil {
		return err
	}
	defer r.unbindDepthMaps()

	r.order.Reset()
	p.SetMat4("model", mgl32.Ident4())
	p.SetBool("flag", false)
	if err := r.drawShaded(r.ground, 0, false); err != nil {
		return err
	}
	for slot := range r.slots(r.opaque) {
		p.SetMat4("model", r.opModels[slot])
		if err := r.drawShaded(r.opaque, slot, false); err != nil {
			return err
		}
	}
	p.SetBool("flag", true)
	for slot := range r.slots(r.trans) {
		p.SetMat4("model", r.transModels[slot])
		if err := r.drawShaded(r.trans, slot, true); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) slots(va *gpu.VertexArray) int {
	if va == nil {
		return 0
	}
	return va.Len()
}

func (r *Renderer) drawShaded(va *gpu.VertexArray, slot int, translucent bool) error {
	if err := r.order.Admit(translucent); err != nil {
		return err
	}
	op := "shade opaque"
	if translucent {
		op = "shade translucent"
	}
	r.draw(va, slot, op)
	return nil
}

// bindDepthMaps puts the opaque map of light i on unit 2i and the
// translucent map on unit 2i+1. Maps not written this frame are refused.
func (r *Renderer) bindDepthMaps() error {
	for i, names := range r.names {
		if r.opStamp[i] != r.frame || r.transStamp[i] != r.frame {
			return fmt.Errorf("light %d in frame %d: %w", i, r.frame, ErrStaleDepthMap)
		}
		opUnit, transUnit := uint32(2*i), uint32(2*i+1)
		r.opDepth.Bind(i, opUnit)
		r.main.SetInt(names.opMap, int32(opUnit))
		r.transDepth.Bind(i, transUnit)
		r.main.SetInt(names.transMap, int32(transUnit))
	}
	return nil
}

// unbindDepthMaps leaves no depth map bound for sampling while the next
// frame renders into it.
func (r *Renderer) unbindDepthMaps() {
	for i := range r.names {
		r.opDepth.Unbind(uint32(2 * i))
		r.transDepth.Unbind(uint32(2*i + 1))
	}
}

// Destroy releases every GPU object. Calling it again is a no-op.
func (r *Renderer) Destroy() {
	for _, fb := range r.opFB {
		fb.Destroy()
	}
	for _, fb := range r.transFB {
		fb.Destroy()
	}
	r.opFB, r.transFB = nil, nil
	for _, t := range []*gpu.Texture{r.opDepth, r.transDepth} {
		if t != nil {
			t.Destroy()
		}
	}
	for _, va := range []*gpu.VertexArray{r.ground, r.opaque, r.trans} {
		if va != nil {
			va.Destroy()
		}
	}
	for _, b := range r.buffers {
		b.Destroy()
	}
	r.buffers = nil
	if r.index != nil {
		r.index.Destroy()
	}
	for _, p := range []*gpu.Program{r.main, r.depth} {
		if p != nil {
			p.Destroy()
		}
	}
}
