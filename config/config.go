// Package config holds the demo's tunables. Every field has a default, so a
// config file only needs the values it changes.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// DefaultPath is loaded by the demo when present.
const DefaultPath = "res/config.toml"

// Light projection kinds.
const (
	ProjectionPerspective  = "perspective"
	ProjectionOrthographic = "orthographic"
)

type Config struct {
	Window   WindowConfig   `toml:"window" yaml:"window"`
	Camera   CameraConfig   `toml:"camera" yaml:"camera"`
	Shadow   ShadowConfig   `toml:"shadow" yaml:"shadow"`
	Lighting LightingConfig `toml:"lighting" yaml:"lighting"`
	Scene    SceneConfig    `toml:"scene" yaml:"scene"`
	Shaders  ShaderConfig   `toml:"shaders" yaml:"shaders"`
	Debug    DebugConfig    `toml:"debug" yaml:"debug"`
}

type WindowConfig struct {
	Width  int    `toml:"width" yaml:"width"`
	Height int    `toml:"height" yaml:"height"`
	Title  string `toml:"title" yaml:"title"`
	VSync  bool   `toml:"vsync" yaml:"vsync"`
}

type CameraConfig struct {
	Position [3]float32 `toml:"position" yaml:"position"`
	Front    [3]float32 `toml:"front" yaml:"front"`
	Up       [3]float32 `toml:"up" yaml:"up"`
	Speed    float32    `toml:"speed" yaml:"speed"`
	TurnRate float32    `toml:"turn_rate" yaml:"turn_rate"` // degrees per frame
	FOV      float32    `toml:"fov" yaml:"fov"`             // degrees
	Near     float32    `toml:"near" yaml:"near"`
	Far      float32    `toml:"far" yaml:"far"`
}

// ShadowConfig describes the depth maps. One projection is shared by every
// light.
type ShadowConfig struct {
	Resolution int     `toml:"resolution" yaml:"resolution"`
	Projection string  `toml:"projection" yaml:"projection"`
	FOV        float32 `toml:"fov" yaml:"fov"` // perspective only, degrees
	OrthoSize  float32 `toml:"ortho_size" yaml:"ortho_size"`
	Near       float32 `toml:"near" yaml:"near"`
	Far        float32 `toml:"far" yaml:"far"`
}

type LightingConfig struct {
	Ambient     float32    `toml:"ambient" yaml:"ambient"`
	Diffuse     float32    `toml:"diffuse" yaml:"diffuse"`
	Specular    float32    `toml:"specular" yaml:"specular"`
	Shininess   int32      `toml:"shininess" yaml:"shininess"`
	AttConstant float32    `toml:"att_constant" yaml:"att_constant"`
	AttLinear   float32    `toml:"att_linear" yaml:"att_linear"`
	AttQuad     float32    `toml:"att_quadratic" yaml:"att_quadratic"`
	Alpha       float32    `toml:"alpha" yaml:"alpha"` // opacity of translucent objects
	ObjectColor [3]float32 `toml:"object_color" yaml:"object_color"`
	LightColor  [3]float32 `toml:"light_color" yaml:"light_color"`
	Background  [3]float32 `toml:"background" yaml:"background"`
}

type ObjectConfig struct {
	Path        string `toml:"path" yaml:"path"`
	Translucent bool   `toml:"translucent" yaml:"translucent"`
}

type SceneConfig struct {
	LightsFile    string         `toml:"lights_file" yaml:"lights_file"`
	PlacementFile string         `toml:"placement_file" yaml:"placement_file"`
	GroundSize    float32        `toml:"ground_size" yaml:"ground_size"` // half extent
	Objects       []ObjectConfig `toml:"objects" yaml:"objects"`
}

type ShaderConfig struct {
	Vertex        string `toml:"vertex" yaml:"vertex"`
	Fragment      string `toml:"fragment" yaml:"fragment"` // template, LIGHT_NUM is substituted
	DepthVertex   string `toml:"depth_vertex" yaml:"depth_vertex"`
	DepthFragment string `toml:"depth_fragment" yaml:"depth_fragment"`
}

type DebugConfig struct {
	LogLevel    string  `toml:"log_level" yaml:"log_level"`
	GLErrors    bool    `toml:"gl_errors" yaml:"gl_errors"`
	FPSInterval float64 `toml:"fps_interval" yaml:"fps_interval"` // seconds, 0 disables
}

// Default returns the stock scene: six opaque and three translucent objects
// above a ground plane.
func Default() Config {
	return Config{
		Window: WindowConfig{Width: 1280, Height: 720, Title: "Shadow Demo", VSync: true},
		Camera: CameraConfig{
			Position: [3]float32{0, 6, 15},
			Front:    [3]float32{0, 0, -1},
			Up:       [3]float32{0, 1, 0},
			Speed:    0.05,
			TurnRate: 1,
			FOV:      45,
			Near:     0.1,
			Far:      200,
		},
		Shadow: ShadowConfig{
			Resolution: 4096,
			Projection: ProjectionPerspective,
			FOV:        90,
			OrthoSize:  20,
			Near:       5,
			Far:        100,
		},
		Lighting: LightingConfig{
			Ambient:     0.5,
			Diffuse:     0.8,
			Specular:    0.5,
			Shininess:   2,
			AttConstant: 0,
			AttLinear:   0,
			AttQuad:     0.02,
			Alpha:       0.3,
			ObjectColor: [3]float32{1, 0.5, 0.31},
			LightColor:  [3]float32{1, 1, 1},
			Background:  [3]float32{0.1, 0.1, 0.1},
		},
		Scene: SceneConfig{
			LightsFile:    "res/lights.pos",
			PlacementFile: "res/objects/scene.txt",
			GroundSize:    100,
			Objects: []ObjectConfig{
				{Path: "res/objects/goblet.obj"},
				{Path: "res/objects/stool.obj"},
				{Path: "res/objects/lamp.obj"},
				{Path: "res/objects/cube.obj"},
				{Path: "res/objects/cylinder.obj"},
				{Path: "res/objects/sphere.obj"},
				{Path: "res/objects/cone.obj", Translucent: true},
				{Path: "res/objects/hexagonal_prism.obj", Translucent: true},
				{Path: "res/objects/torus.obj", Translucent: true},
			},
		},
		Shaders: ShaderConfig{
			Vertex:        "res/shaders/vertex.glsl",
			Fragment:      "res/shaders/fragment.glsl",
			DepthVertex:   "res/shaders/depth_vertex.glsl",
			DepthFragment: "res/shaders/depth_fragment.glsl",
		},
		Debug: DebugConfig{LogLevel: "info", FPSInterval: 1},
	}
}

// Load reads a TOML or YAML file, chosen by extension, over the defaults and
// validates the result. A file that lists objects replaces the default object
// list instead of extending it.
func Load(path string) (Config, error) {
	cfg := Default()
	defaultObjects := cfg.Scene.Objects
	cfg.Scene.Objects = nil

	data, err := os.ReadFile(path)
	if err != nil {
		return Default(), fmt.Errorf("read config: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		err = toml.Unmarshal(data, &cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		return cfg, fmt.Errorf("config %q: unsupported format %q", path, ext)
	}
	if err != nil {
		return cfg, fmt.Errorf("parse config %q: %w", path, err)
	}
	if cfg.Scene.Objects == nil {
		cfg.Scene.Objects = defaultObjects
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %q: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault loads path when it exists and falls back to Default
// otherwise. Any other failure is returned.
func LoadOrDefault(path string) (Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		slog.Debug("no config file, using defaults", "path", path)
		return Default(), nil
	}
	return Load(path)
}

// Validate reports the first invalid value.
func (c Config) Validate() error {
	switch {
	case c.Window.Width <= 0 || c.Window.Height <= 0:
		return fmt.Errorf("window size %dx%d must be positive", c.Window.Width, c.Window.Height)
	case c.Shadow.Resolution <= 0:
		return fmt.Errorf("shadow resolution %d must be positive", c.Shadow.Resolution)
	case c.Shadow.Projection != ProjectionPerspective && c.Shadow.Projection != ProjectionOrthographic:
		return fmt.Errorf("shadow projection %q must be %q or %q",
			c.Shadow.Projection, ProjectionPerspective, ProjectionOrthographic)
	case c.Shadow.Near <= 0 || c.Shadow.Far <= c.Shadow.Near:
		return fmt.Errorf("shadow depth range [%g, %g] is invalid", c.Shadow.Near, c.Shadow.Far)
	case c.Shadow.Projection == ProjectionPerspective && (c.Shadow.FOV <= 0 || c.Shadow.FOV >= 180):
		return fmt.Errorf("shadow fov %g must be in (0, 180)", c.Shadow.FOV)
	case c.Shadow.Projection == ProjectionOrthographic && c.Shadow.OrthoSize <= 0:
		return fmt.Errorf("shadow ortho size %g must be positive", c.Shadow.OrthoSize)
	case c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near:
		return fmt.Errorf("camera depth range [%g, %g] is invalid", c.Camera.Near, c.Camera.Far)
	case c.Camera.FOV <= 0 || c.Camera.FOV >= 180:
		return fmt.Errorf("camera fov %g must be in (0, 180)", c.Camera.FOV)
	case mgl32.Vec3(c.Camera.Front).Len() == 0 || mgl32.Vec3(c.Camera.Up).Len() == 0:
		return errors.New("camera front and up must be non-zero")
	case c.Camera.FrontVec().Normalize().Cross(c.Camera.UpVec().Normalize()).Len() < 1e-3:
		return errors.New("camera front must not be parallel to up")
	case c.Lighting.Ambient < 0 || c.Lighting.Diffuse < 0 || c.Lighting.Specular < 0:
		return errors.New("ambient, diffuse and specular strengths must not be negative")
	case c.Lighting.Shininess < 0:
		return fmt.Errorf("shininess %d must not be negative", c.Lighting.Shininess)
	case c.Lighting.Alpha < 0 || c.Lighting.Alpha > 1:
		return fmt.Errorf("alpha %g must be in [0, 1]", c.Lighting.Alpha)
	case c.Lighting.AttConstant < 0 || c.Lighting.AttLinear < 0 || c.Lighting.AttQuad < 0:
		return errors.New("attenuation coefficients must not be negative")
	case c.Lighting.AttConstant == 0 && c.Lighting.AttLinear == 0 && c.Lighting.AttQuad == 0:
		return errors.New("attenuation coefficients must not all be zero")
	case c.Scene.LightsFile == "":
		return errors.New("scene lights_file is required")
	case c.Scene.GroundSize <= 0:
		return fmt.Errorf("ground size %g must be positive", c.Scene.GroundSize)
	}
	for i, o := range c.Scene.Objects {
		if o.Path == "" {
			return fmt.Errorf("scene object %d has no path", i)
		}
	}
	if _, err := c.Debug.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel into a slog level.
func (d DebugConfig) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(d.LogLevel)); err != nil {
		return 0, fmt.Errorf("log level %q: %w", d.LogLevel, err)
	}
	return l, nil
}

// ── Typed accessors ──

func (c CameraConfig) PositionVec() mgl32.Vec3 { return mgl32.Vec3(c.Position) }
func (c CameraConfig) FrontVec() mgl32.Vec3    { return mgl32.Vec3(c.Front) }
func (c CameraConfig) UpVec() mgl32.Vec3       { return mgl32.Vec3(c.Up) }

func (l LightingConfig) ObjectColorVec() mgl32.Vec3 { return mgl32.Vec3(l.ObjectColor) }
func (l LightingConfig) LightColorVec() mgl32.Vec3  { return mgl32.Vec3(l.LightColor) }
