package opengl

import (
	"fmt"
	"log/slog"
	"strings"
	"unsafe"

	gl "github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"shadow-demo/internal/gpu"
)

// Device implements gpu.Device on an OpenGL 4.1 core context.
type Device struct{}

var _ gpu.Device = Device{}

// NewDevice loads the GL function pointers and logs the driver version.
// Must be called after the GLFW window context is made current.
func NewDevice() (Device, error) {
	if err := gl.Init(); err != nil {
		return Device{}, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	slog.Info("opengl ready",
		"version", gl.GoStr(gl.GetString(gl.VERSION)),
		"renderer", gl.GoStr(gl.GetString(gl.RENDERER)),
		"glsl", gl.GoStr(gl.GetString(gl.SHADING_LANGUAGE_VERSION)))
	return Device{}, nil
}

var bufferTargets = [...]uint32{
	gpu.ArrayBuffer:        gl.ARRAY_BUFFER,
	gpu.ElementArrayBuffer: gl.ELEMENT_ARRAY_BUFFER,
}

var attribTypes = [...]uint32{
	gpu.Float:        gl.FLOAT,
	gpu.UnsignedInt:  gl.UNSIGNED_INT,
	gpu.UnsignedByte: gl.UNSIGNED_BYTE,
}

var filters = [...]int32{
	gpu.Nearest:            gl.NEAREST,
	gpu.Linear:             gl.LINEAR,
	gpu.LinearMipmapLinear: gl.LINEAR_MIPMAP_LINEAR,
}

var wraps = [...]int32{
	gpu.Repeat:        gl.REPEAT,
	gpu.ClampToEdge:   gl.CLAMP_TO_EDGE,
	gpu.ClampToBorder: gl.CLAMP_TO_BORDER,
}

var capabilities = [...]uint32{
	gpu.DepthTest: gl.DEPTH_TEST,
	gpu.Blend:     gl.BLEND,
}

// ── Buffers ───────────────────────────────────────────────────────────────────

func (Device) GenBuffer() uint32 {
	var id uint32
	gl.GenBuffers(1, &id)
	return id
}

func (Device) BindBuffer(target gpu.BufferTarget, id uint32) {
	gl.BindBuffer(bufferTargets[target], id)
}

func (Device) BufferData(target gpu.BufferTarget, data []byte) {
	gl.BufferData(bufferTargets[target], len(data), gl.Ptr(data), gl.STATIC_DRAW)
}

func (Device) DeleteBuffer(id uint32) { gl.DeleteBuffers(1, &id) }

// ── Vertex arrays ─────────────────────────────────────────────────────────────

func (Device) GenVertexArrays(n int) []uint32 {
	ids := make([]uint32, n)
	gl.GenVertexArrays(int32(n), &ids[0])
	return ids
}

func (Device) BindVertexArray(id uint32) { gl.BindVertexArray(id) }

func (Device) EnableVertexAttrib(index uint32) { gl.EnableVertexAttribArray(index) }

func (Device) VertexAttribPointer(index uint32, count int32, typ gpu.AttribType, normalized bool, stride int32, offset int) {
	gl.VertexAttribPointerWithOffset(index, count, attribTypes[typ], normalized, stride, uintptr(offset))
}

func (Device) DeleteVertexArrays(ids []uint32) {
	gl.DeleteVertexArrays(int32(len(ids)), &ids[0])
}

// ── Textures ──────────────────────────────────────────────────────────────────

func (Device) GenTextures(n int) []uint32 {
	ids := make([]uint32, n)
	gl.GenTextures(int32(n), &ids[0])
	return ids
}

func (Device) ActiveTexture(unit uint32) { gl.ActiveTexture(gl.TEXTURE0 + unit) }

func (Device) BindTexture(id uint32) { gl.BindTexture(gl.TEXTURE_2D, id) }

func (Device) TexImage2D(format gpu.TextureFormat, width, height int32, pixels []byte) {
	var ptr unsafe.Pointer
	if len(pixels) > 0 {
		ptr = gl.Ptr(pixels)
	}
	switch format {
	case gpu.FormatDepth32F:
		gl.TexImage2D(gl.TEXTURE_2D, 0, gl.DEPTH_COMPONENT32F, width, height, 0, gl.DEPTH_COMPONENT, gl.FLOAT, ptr)
	default:
		gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, width, height, 0, gl.RGBA, gl.UNSIGNED_BYTE, ptr)
	}
}

func (Device) TexParameters(p gpu.TextureParams) {
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, filters[p.MinFilter])
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, filters[p.MagFilter])
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, wraps[p.Wrap])
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, wraps[p.Wrap])
	if p.Wrap == gpu.ClampToBorder {
		gl.TexParameterfv(gl.TEXTURE_2D, gl.TEXTURE_BORDER_COLOR, &p.Border[0])
	}
}

func (Device) GenerateMipmap() { gl.GenerateMipmap(gl.TEXTURE_2D) }

func (Device) DeleteTextures(ids []uint32) {
	gl.DeleteTextures(int32(len(ids)), &ids[0])
}

// ── Framebuffers ──────────────────────────────────────────────────────────────

func (Device) GenFramebuffer() uint32 {
	var id uint32
	gl.GenFramebuffers(1, &id)
	return id
}

func (Device) BindFramebuffer(id uint32) { gl.BindFramebuffer(gl.FRAMEBUFFER, id) }

func (Device) FramebufferDepthTexture(tex uint32) {
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.TEXTURE_2D, tex, 0)
}

// DisableColorBuffers marks the bound framebuffer as depth-only.
func (Device) DisableColorBuffers() {
	gl.DrawBuffer(gl.NONE)
	gl.ReadBuffer(gl.NONE)
}

func (Device) CheckFramebufferStatus() (uint32, bool) {
	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	return status, status == gl.FRAMEBUFFER_COMPLETE
}

func (Device) DeleteFramebuffer(id uint32) { gl.DeleteFramebuffers(1, &id) }

// ── Shaders ───────────────────────────────────────────────────────────────────

func (Device) CreateShader(stage gpu.ShaderStage) uint32 {
	if stage == gpu.VertexStage {
		return gl.CreateShader(gl.VERTEX_SHADER)
	}
	return gl.CreateShader(gl.FRAGMENT_SHADER)
}

func (Device) CompileShader(id uint32, src string) (bool, string) {
	csrc, free := gl.Strs(src + "\x00")
	gl.ShaderSource(id, 1, csrc, nil)
	free()
	gl.CompileShader(id)

	var status int32
	gl.GetShaderiv(id, gl.COMPILE_STATUS, &status)
	if status == gl.TRUE {
		return true, ""
	}
	var logLen int32
	gl.GetShaderiv(id, gl.INFO_LOG_LENGTH, &logLen)
	log := strings.Repeat("\x00", int(logLen+1))
	gl.GetShaderInfoLog(id, logLen, nil, gl.Str(log))
	return false, strings.TrimRight(log, "\x00")
}

func (Device) DeleteShader(id uint32) { gl.DeleteShader(id) }

func (Device) CreateProgram() uint32 { return gl.CreateProgram() }

func (Device) AttachShader(prog, shader uint32) { gl.AttachShader(prog, shader) }

func (Device) LinkProgram(prog uint32) (bool, string) {
	gl.LinkProgram(prog)
	return programStatus(prog, gl.LINK_STATUS)
}

func (Device) ValidateProgram(prog uint32) (bool, string) {
	gl.ValidateProgram(prog)
	return programStatus(prog, gl.VALIDATE_STATUS)
}

func programStatus(prog, pname uint32) (bool, string) {
	var status int32
	gl.GetProgramiv(prog, pname, &status)
	if status == gl.TRUE {
		return true, ""
	}
	var logLen int32
	gl.GetProgramiv(prog, gl.INFO_LOG_LENGTH, &logLen)
	log := strings.Repeat("\x00", int(logLen+1))
	gl.GetProgramInfoLog(prog, logLen, nil, gl.Str(log))
	return false, strings.TrimRight(log, "\x00")
}

func (Device) UseProgram(prog uint32) { gl.UseProgram(prog) }

func (Device) DeleteProgram(prog uint32) { gl.DeleteProgram(prog) }

func (Device) GetUniformLocation(prog uint32, name string) int32 {
	return gl.GetUniformLocation(prog, gl.Str(name+"\x00"))
}

func (Device) Uniform1i(loc int32, v int32)      { gl.Uniform1i(loc, v) }
func (Device) Uniform1f(loc int32, v float32)    { gl.Uniform1f(loc, v) }
func (Device) Uniform3f(loc int32, v mgl32.Vec3) { gl.Uniform3f(loc, v[0], v[1], v[2]) }

// UniformMatrix4f uploads m as is; mgl32 matrices are already column-major.
func (Device) UniformMatrix4f(loc int32, m mgl32.Mat4) {
	gl.UniformMatrix4fv(loc, 1, false, &m[0])
}

// ── Frame state ───────────────────────────────────────────────────────────────

func (Device) Viewport(x, y, width, height int32) { gl.Viewport(x, y, width, height) }

func (Device) ClearColor(r, g, b, a float32) { gl.ClearColor(r, g, b, a) }

func (Device) Clear(mask gpu.ClearMask) {
	var bits uint32
	if mask&gpu.ClearColorBit != 0 {
		bits |= gl.COLOR_BUFFER_BIT
	}
	if mask&gpu.ClearDepthBit != 0 {
		bits |= gl.DEPTH_BUFFER_BIT
	}
	gl.Clear(bits)
}

func (Device) Enable(c gpu.Capability) { gl.Enable(capabilities[c]) }

func (Device) BlendAlpha() { gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA) }

func (Device) DrawArrays(first, count int32) { gl.DrawArrays(gl.TRIANGLES, first, count) }

func (Device) DrawElements(count int32, typ gpu.AttribType) {
	gl.DrawElementsWithOffset(gl.TRIANGLES, count, attribTypes[typ], 0)
}

func (Device) GetError() uint32 { return gl.GetError() }
