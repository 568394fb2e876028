package gpu

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// ShaderSource holds the GLSL text of both stages of a program.
type ShaderSource struct {
	Vertex   string
	Fragment string
}

// ParseShaderSource splits a combined shader file into its stages. Each stage
// starts at a line "#shader vertex" or "#shader fragment".
func ParseShaderSource(r io.Reader) (ShaderSource, error) {
	var (
		parts   [2]strings.Builder
		current = -1
		line    int
	)
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line++
		text := sc.Text()
		if tag, ok := strings.CutPrefix(strings.TrimSpace(text), "#shader"); ok {
			switch strings.TrimSpace(tag) {
			case "vertex":
				current = int(VertexStage)
			case "fragment":
				current = int(FragmentStage)
			default:
				return ShaderSource{}, fmt.Errorf("line %d: unknown stage %q: %w", line, strings.TrimSpace(tag), ErrShaderSource)
			}
			continue
		}
		if current < 0 {
			if strings.TrimSpace(text) != "" {
				return ShaderSource{}, fmt.Errorf("line %d: code before first #shader tag: %w", line, ErrShaderSource)
			}
			continue
		}
		parts[current].WriteString(text)
		parts[current].WriteByte('\n')
	}
	if err := sc.Err(); err != nil {
		return ShaderSource{}, err
	}

	src := ShaderSource{Vertex: parts[VertexStage].String(), Fragment: parts[FragmentStage].String()}
	if src.Vertex == "" || src.Fragment == "" {
		return ShaderSource{}, fmt.Errorf("need both vertex and fragment stages: %w", ErrShaderSource)
	}
	return src, nil
}

// LoadShaderSource reads a combined shader file.
func LoadShaderSource(path string) (ShaderSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return ShaderSource{}, fmt.Errorf("open shader: %w", err)
	}
	defer f.Close()

	src, err := ParseShaderSource(f)
	if err != nil {
		return ShaderSource{}, fmt.Errorf("%s: %w", path, err)
	}
	return src, nil
}

// LoadShaderFiles reads one file per stage.
func LoadShaderFiles(vertexPath, fragmentPath string) (ShaderSource, error) {
	vert, err := os.ReadFile(vertexPath)
	if err != nil {
		return ShaderSource{}, fmt.Errorf("read vertex shader: %w", err)
	}
	frag, err := os.ReadFile(fragmentPath)
	if err != nil {
		return ShaderSource{}, fmt.Errorf("read fragment shader: %w", err)
	}
	return ShaderSource{Vertex: string(vert), Fragment: string(frag)}, nil
}

// Program is a linked shader program with a lazily filled uniform location
// cache.
//
// The cache is never invalidated: a Program is linked exactly once in
// NewProgram and never relinked, so locations stay valid for its lifetime.
type Program struct {
	dev       Device
	id        uint32
	locations map[string]int32
}

// NewProgram compiles both stages, links and validates them. Compile and link
// failures return an error carrying the driver's info log. A failed
// validation is only logged, since it depends on the current binding state.
func NewProgram(dev Device, src ShaderSource) (*Program, error) {
	vert, err := compileShader(dev, VertexStage, src.Vertex)
	if err != nil {
		return nil, err
	}
	frag, err := compileShader(dev, FragmentStage, src.Fragment)
	if err != nil {
		dev.DeleteShader(vert)
		return nil, err
	}

	id := dev.CreateProgram()
	dev.AttachShader(id, vert)
	dev.AttachShader(id, frag)
	ok, infoLog := dev.LinkProgram(id)
	dev.DeleteShader(vert)
	dev.DeleteShader(frag)
	if !ok {
		dev.DeleteProgram(id)
		return nil, fmt.Errorf("%w: %s", ErrShaderLink, strings.TrimSpace(infoLog))
	}
	if ok, infoLog := dev.ValidateProgram(id); !ok {
		slog.Warn("shader program validation failed", "program", id, "log", strings.TrimSpace(infoLog))
	}

	return &Program{dev: dev, id: id, locations: make(map[string]int32)}, nil
}

func compileShader(dev Device, stage ShaderStage, src string) (uint32, error) {
	id := dev.CreateShader(stage)
	if ok, infoLog := dev.CompileShader(id, src); !ok {
		dev.DeleteShader(id)
		return 0, fmt.Errorf("%s: %w: %s", stage, ErrShaderCompile, strings.TrimSpace(infoLog))
	}
	return id, nil
}

func (p *Program) ID() uint32 { return p.id }

func (p *Program) Bind()   { p.dev.UseProgram(p.id) }
func (p *Program) Unbind() { p.dev.UseProgram(0) }

// Location returns the location of the named uniform, querying the device
// only on first use. Unknown names resolve to -1 and are reported once.
func (p *Program) Location(name string) int32 {
	if loc, ok := p.locations[name]; ok {
		return loc
	}
	loc := p.dev.GetUniformLocation(p.id, name)
	if loc == -1 {
		slog.Warn("uniform not found", "program", p.id, "name", name)
	}
	p.locations[name] = loc
	return loc
}

// The setters write into the currently bound program. Writes to location -1
// are ignored by the driver.

func (p *Program) SetInt(name string, v int32)       { p.dev.Uniform1i(p.Location(name), v) }
func (p *Program) SetFloat(name string, v float32)   { p.dev.Uniform1f(p.Location(name), v) }
func (p *Program) SetVec3(name string, v mgl32.Vec3) { p.dev.Uniform3f(p.Location(name), v) }
func (p *Program) SetMat4(name string, m mgl32.Mat4) { p.dev.UniformMatrix4f(p.Location(name), m) }

func (p *Program) SetBool(name string, v bool) {
	var i int32
	if v {
		i = 1
	}
	p.SetInt(name, i)
}

// Destroy deletes the program. Calling it again is a no-op.
func (p *Program) Destroy() {
	if p.id == 0 {
		return
	}
	p.dev.DeleteProgram(p.id)
	p.id = 0
}
