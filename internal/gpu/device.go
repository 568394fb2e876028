// Package gpu wraps the GPU objects used by the shadow renderer: buffers,
// vertex arrays, textures, framebuffers and shader programs.
//
// All wrappers talk to a Device rather than to the GL bindings directly, so
// the package builds and tests without a context. The OpenGL implementation
// lives in internal/opengl; a recording fake lives in gpu/gputest.
//
// None of the types here are safe for concurrent use. Every call must come
// from the thread that owns the GL context.
package gpu

import "github.com/go-gl/mathgl/mgl32"

// BufferTarget selects the binding point of a buffer object.
type BufferTarget int

const (
	ArrayBuffer BufferTarget = iota
	ElementArrayBuffer
)

// AttribType is the scalar type of a vertex attribute or index.
type AttribType int

const (
	Float AttribType = iota
	UnsignedInt
	UnsignedByte
)

// Size returns the size of one scalar of t in bytes.
func (t AttribType) Size() int32 {
	switch t {
	case Float, UnsignedInt:
		return 4
	case UnsignedByte:
		return 1
	}
	return 0
}

func (t AttribType) String() string {
	switch t {
	case Float:
		return "float"
	case UnsignedInt:
		return "uint"
	case UnsignedByte:
		return "ubyte"
	}
	return "unknown"
}

// TextureFormat is the storage format of a 2D texture image.
type TextureFormat int

const (
	FormatRGBA8 TextureFormat = iota
	FormatDepth32F
)

type Filter int

const (
	Nearest Filter = iota
	Linear
	LinearMipmapLinear
)

type Wrap int

const (
	Repeat Wrap = iota
	ClampToEdge
	ClampToBorder
)

// TextureParams is the sampling state applied to the bound texture.
type TextureParams struct {
	MinFilter Filter
	MagFilter Filter
	Wrap      Wrap
	Border    [4]float32 // only used with ClampToBorder
}

type ShaderStage int

const (
	VertexStage ShaderStage = iota
	FragmentStage
)

func (s ShaderStage) String() string {
	if s == VertexStage {
		return "vertex"
	}
	return "fragment"
}

// Capability is a fixed-function toggle.
type Capability int

const (
	DepthTest Capability = iota
	Blend
)

// ClearMask selects which attachments Clear resets.
type ClearMask int

const (
	ClearColorBit ClearMask = 1 << iota
	ClearDepthBit
)

// Device is the subset of the graphics API the wrappers need.
//
// Methods mirror the underlying GL calls one to one; state such as the bound
// texture unit or vertex array is the device's, not the caller's.
type Device interface {
	// buffers
	GenBuffer() uint32
	BindBuffer(target BufferTarget, id uint32)
	BufferData(target BufferTarget, data []byte)
	DeleteBuffer(id uint32)

	// vertex arrays
	GenVertexArrays(n int) []uint32
	BindVertexArray(id uint32)
	EnableVertexAttrib(index uint32)
	VertexAttribPointer(index uint32, count int32, typ AttribType, normalized bool, stride int32, offset int)
	DeleteVertexArrays(ids []uint32)

	// textures
	GenTextures(n int) []uint32
	ActiveTexture(unit uint32)
	BindTexture(id uint32)
	TexImage2D(format TextureFormat, width, height int32, pixels []byte)
	TexParameters(p TextureParams)
	GenerateMipmap()
	DeleteTextures(ids []uint32)

	// framebuffers
	GenFramebuffer() uint32
	BindFramebuffer(id uint32)
	FramebufferDepthTexture(tex uint32)
	DisableColorBuffers()
	CheckFramebufferStatus() (status uint32, complete bool)
	DeleteFramebuffer(id uint32)

	// shaders and programs
	CreateShader(stage ShaderStage) uint32
	CompileShader(id uint32, src string) (ok bool, infoLog string)
	DeleteShader(id uint32)
	CreateProgram() uint32
	AttachShader(prog, shader uint32)
	LinkProgram(prog uint32) (ok bool, infoLog string)
	ValidateProgram(prog uint32) (ok bool, infoLog string)
	UseProgram(prog uint32)
	DeleteProgram(prog uint32)
	GetUniformLocation(prog uint32, name string) int32
	Uniform1i(loc int32, v int32)
	Uniform1f(loc int32, v float32)
	Uniform3f(loc int32, v mgl32.Vec3)
	UniformMatrix4f(loc int32, m mgl32.Mat4)

	// frame state and drawing
	Viewport(x, y, width, height int32)
	ClearColor(r, g, b, a float32)
	Clear(mask ClearMask)
	Enable(c Capability)
	BlendAlpha()
	DrawArrays(first, count int32)
	DrawElements(count int32, typ AttribType)
	GetError() uint32
}
