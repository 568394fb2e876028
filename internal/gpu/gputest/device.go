// Package gputest provides a recording gpu.Device for tests.
//
// The fake keeps the binding state a real context would (bound buffers,
// vertex array, texture per unit, framebuffer, program, viewport) and records
// every draw together with the uniform values visible to it.
package gputest

import (
	"fmt"
	"slices"

	"github.com/go-gl/mathgl/mgl32"

	"shadow-demo/internal/gpu"
)

// Attrib is one vertex attribute as recorded into a vertex array.
type Attrib struct {
	Index      uint32
	Buffer     uint32
	Count      int32
	Type       gpu.AttribType
	Normalized bool
	Stride     int32
	Offset     int
}

type VertexArrayState struct {
	Attribs       []Attrib
	ElementBuffer uint32
}

type TextureState struct {
	Format gpu.TextureFormat
	Width  int32
	Height int32
	Pixels []byte
	Params gpu.TextureParams
	Mipmap bool
}

type FramebufferState struct {
	DepthTexture uint32
	NoColor      bool
}

type ProgramState struct {
	Shaders   []uint32
	Linked    bool
	Locations map[string]int32
	Values    map[int32]any
}

// Draw is one recorded draw call.
type Draw struct {
	Framebuffer uint32
	Program     uint32
	VertexArray uint32
	Count       int32
	Indexed     bool
	Viewport    [4]int32
	// Uniforms holds the values of the bound program at draw time, by name.
	Uniforms map[string]any
	// Textures maps texture unit to bound texture at draw time.
	Textures map[uint32]uint32
}

// Clear is one recorded clear call.
type Clear struct {
	Framebuffer uint32
	Mask        gpu.ClearMask
}

// Device is an in-memory gpu.Device. The zero value is not usable; call
// NewDevice.
type Device struct {
	nextID uint32

	Buffers       map[uint32][]byte
	BoundBuffers  map[gpu.BufferTarget]uint32
	VertexArrays  map[uint32]*VertexArrayState
	VertexArray   uint32
	Textures      map[uint32]*TextureState
	ActiveUnit    uint32
	Units         map[uint32]uint32
	Framebuffers  map[uint32]*FramebufferState
	Framebuffer   uint32
	Shaders       map[uint32]gpu.ShaderStage
	Programs      map[uint32]*ProgramState
	Program       uint32
	ViewportRect  [4]int32
	Enabled       map[gpu.Capability]bool
	BlendingAlpha bool

	Draws   []Draw
	Clears  []Clear
	Deleted map[string]int

	// LocationQueries counts GetUniformLocation calls per uniform name.
	LocationQueries map[string]int

	// Failure injection.
	FailCompile     map[gpu.ShaderStage]string
	FailLink        string
	FailValidate    string
	Incomplete      bool
	MissingUniforms []string
	// PendingErrors are returned by GetError in order.
	PendingErrors []uint32
}

var _ gpu.Device = (*Device)(nil)

func NewDevice() *Device {
	return &Device{
		Buffers:         make(map[uint32][]byte),
		BoundBuffers:    make(map[gpu.BufferTarget]uint32),
		VertexArrays:    make(map[uint32]*VertexArrayState),
		Textures:        make(map[uint32]*TextureState),
		Units:           make(map[uint32]uint32),
		Framebuffers:    make(map[uint32]*FramebufferState),
		Shaders:         make(map[uint32]gpu.ShaderStage),
		Programs:        make(map[uint32]*ProgramState),
		Enabled:         make(map[gpu.Capability]bool),
		Deleted:         make(map[string]int),
		LocationQueries: make(map[string]int),
		FailCompile:     make(map[gpu.ShaderStage]string),
	}
}

func (d *Device) gen() uint32 {
	d.nextID++
	return d.nextID
}

// ResetFrame forgets recorded draws and clears.
func (d *Device) ResetFrame() {
	d.Draws = nil
	d.Clears = nil
}

// ── buffers ──

func (d *Device) GenBuffer() uint32 {
	id := d.gen()
	d.Buffers[id] = nil
	return id
}

func (d *Device) BindBuffer(target gpu.BufferTarget, id uint32) {
	d.BoundBuffers[target] = id
	if target == gpu.ElementArrayBuffer && d.VertexArray != 0 {
		d.VertexArrays[d.VertexArray].ElementBuffer = id
	}
}

func (d *Device) BufferData(target gpu.BufferTarget, data []byte) {
	id := d.BoundBuffers[target]
	if id == 0 {
		panic(fmt.Sprintf("gputest: BufferData with no buffer bound to target %d", target))
	}
	d.Buffers[id] = slices.Clone(data)
}

func (d *Device) DeleteBuffer(id uint32) {
	delete(d.Buffers, id)
	d.Deleted["buffer"]++
}

// ── vertex arrays ──

func (d *Device) GenVertexArrays(n int) []uint32 {
	ids := make([]uint32, n)
	for i := range ids {
		ids[i] = d.gen()
		d.VertexArrays[ids[i]] = &VertexArrayState{}
	}
	return ids
}

func (d *Device) BindVertexArray(id uint32) { d.VertexArray = id }

func (d *Device) EnableVertexAttrib(index uint32) {}

func (d *Device) VertexAttribPointer(index uint32, count int32, typ gpu.AttribType, normalized bool, stride int32, offset int) {
	vao := d.VertexArrays[d.VertexArray]
	if vao == nil {
		panic("gputest: VertexAttribPointer with no vertex array bound")
	}
	vao.Attribs = append(vao.Attribs, Attrib{
		Index:      index,
		Buffer:     d.BoundBuffers[gpu.ArrayBuffer],
		Count:      count,
		Type:       typ,
		Normalized: normalized,
		Stride:     stride,
		Offset:     offset,
	})
}

func (d *Device) DeleteVertexArrays(ids []uint32) {
	for _, id := range ids {
		delete(d.VertexArrays, id)
		d.Deleted["vertex array"]++
	}
}

// ── textures ──

func (d *Device) GenTextures(n int) []uint32 {
	ids := make([]uint32, n)
	for i := range ids {
		ids[i] = d.gen()
		d.Textures[ids[i]] = &TextureState{}
	}
	return ids
}

func (d *Device) ActiveTexture(unit uint32) { d.ActiveUnit = unit }

func (d *Device) BindTexture(id uint32) { d.Units[d.ActiveUnit] = id }

func (d *Device) bound() *TextureState {
	t := d.Textures[d.Units[d.ActiveUnit]]
	if t == nil {
		panic("gputest: no texture bound")
	}
	return t
}

func (d *Device) TexImage2D(format gpu.TextureFormat, width, height int32, pixels []byte) {
	t := d.bound()
	t.Format, t.Width, t.Height = format, width, height
	t.Pixels = slices.Clone(pixels)
}

func (d *Device) TexParameters(p gpu.TextureParams) { d.bound().Params = p }

func (d *Device) GenerateMipmap() { d.bound().Mipmap = true }

func (d *Device) DeleteTextures(ids []uint32) {
	for _, id := range ids {
		delete(d.Textures, id)
		d.Deleted["texture"]++
	}
}

// ── framebuffers ──

func (d *Device) GenFramebuffer() uint32 {
	id := d.gen()
	d.Framebuffers[id] = &FramebufferState{}
	return id
}

func (d *Device) BindFramebuffer(id uint32) { d.Framebuffer = id }

func (d *Device) FramebufferDepthTexture(tex uint32) {
	d.Framebuffers[d.Framebuffer].DepthTexture = tex
}

func (d *Device) DisableColorBuffers() { d.Framebuffers[d.Framebuffer].NoColor = true }

func (d *Device) CheckFramebufferStatus() (uint32, bool) {
	fb := d.Framebuffers[d.Framebuffer]
	if d.Incomplete || fb == nil || fb.DepthTexture == 0 {
		return 0x8CD6, false
	}
	return 0x8CD5, true
}

func (d *Device) DeleteFramebuffer(id uint32) {
	delete(d.Framebuffers, id)
	d.Deleted["framebuffer"]++
}

// ── shaders ──

func (d *Device) CreateShader(stage gpu.ShaderStage) uint32 {
	id := d.gen()
	d.Shaders[id] = stage
	return id
}

func (d *Device) CompileShader(id uint32, src string) (bool, string) {
	if msg, ok := d.FailCompile[d.Shaders[id]]; ok {
		return false, msg
	}
	return true, ""
}

func (d *Device) DeleteShader(id uint32) {
	delete(d.Shaders, id)
	d.Deleted["shader"]++
}

func (d *Device) CreateProgram() uint32 {
	id := d.gen()
	d.Programs[id] = &ProgramState{Locations: make(map[string]int32), Values: make(map[int32]any)}
	return id
}

func (d *Device) AttachShader(prog, shader uint32) {
	p := d.Programs[prog]
	p.Shaders = append(p.Shaders, shader)
}

func (d *Device) LinkProgram(prog uint32) (bool, string) {
	if d.FailLink != "" {
		return false, d.FailLink
	}
	d.Programs[prog].Linked = true
	return true, ""
}

func (d *Device) ValidateProgram(prog uint32) (bool, string) {
	return d.FailValidate == "", d.FailValidate
}

func (d *Device) UseProgram(prog uint32) { d.Program = prog }

func (d *Device) DeleteProgram(prog uint32) {
	delete(d.Programs, prog)
	d.Deleted["program"]++
}

func (d *Device) GetUniformLocation(prog uint32, name string) int32 {
	d.LocationQueries[name]++
	if slices.Contains(d.MissingUniforms, name) {
		return -1
	}
	p := d.Programs[prog]
	if loc, ok := p.Locations[name]; ok {
		return loc
	}
	loc := int32(len(p.Locations))
	p.Locations[name] = loc
	return loc
}

func (d *Device) setUniform(loc int32, v any) {
	if loc == -1 {
		return
	}
	p := d.Programs[d.Program]
	if p == nil {
		panic("gputest: uniform write with no program bound")
	}
	p.Values[loc] = v
}

func (d *Device) Uniform1i(loc int32, v int32)            { d.setUniform(loc, v) }
func (d *Device) Uniform1f(loc int32, v float32)          { d.setUniform(loc, v) }
func (d *Device) Uniform3f(loc int32, v mgl32.Vec3)       { d.setUniform(loc, v) }
func (d *Device) UniformMatrix4f(loc int32, m mgl32.Mat4) { d.setUniform(loc, m) }

// Uniform returns the current value of a uniform of prog by name.
func (d *Device) Uniform(prog uint32, name string) (any, bool) {
	p := d.Programs[prog]
	if p == nil {
		return nil, false
	}
	loc, ok := p.Locations[name]
	if !ok {
		return nil, false
	}
	v, ok := p.Values[loc]
	return v, ok
}

// ── frame state ──

func (d *Device) Viewport(x, y, width, height int32) {
	d.ViewportRect = [4]int32{x, y, width, height}
}

func (d *Device) ClearColor(r, g, b, a float32) {}

func (d *Device) Clear(mask gpu.ClearMask) {
	d.Clears = append(d.Clears, Clear{Framebuffer: d.Framebuffer, Mask: mask})
}

func (d *Device) Enable(c gpu.Capability) { d.Enabled[c] = true }

func (d *Device) BlendAlpha() { d.BlendingAlpha = true }

func (d *Device) DrawArrays(first, count int32) { d.record(count, false) }

func (d *Device) DrawElements(count int32, typ gpu.AttribType) { d.record(count, true) }

func (d *Device) record(count int32, indexed bool) {
	draw := Draw{
		Framebuffer: d.Framebuffer,
		Program:     d.Program,
		VertexArray: d.VertexArray,
		Count:       count,
		Indexed:     indexed,
		Viewport:    d.ViewportRect,
		Uniforms:    make(map[string]any),
		Textures:    make(map[uint32]uint32, len(d.Units)),
	}
	if p := d.Programs[d.Program]; p != nil {
		for name, loc := range p.Locations {
			if v, ok := p.Values[loc]; ok {
				draw.Uniforms[name] = v
			}
		}
	}
	for unit, tex := range d.Units {
		if tex != 0 {
			draw.Textures[unit] = tex
		}
	}
	d.Draws = append(d.Draws, draw)
}

func (d *Device) GetError() uint32 {
	if len(d.PendingErrors) == 0 {
		return 0
	}
	code := d.PendingErrors[0]
	d.PendingErrors = d.PendingErrors[1:]
	return code
}
