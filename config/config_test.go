package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 4096, cfg.Shadow.Resolution)
	assert.Len(t, cfg.Scene.Objects, 9)

	translucent := 0
	for _, o := range cfg.Scene.Objects {
		if o.Translucent {
			translucent++
		}
	}
	assert.Equal(t, 3, translucent)
}

func TestLoadTOML(t *testing.T) {
	path := writeFile(t, "demo.toml", `
[shadow]
resolution = 1024
projection = "orthographic"

[lighting]
alpha = 0.5

[[scene.objects]]
path = "a.obj"

[[scene.objects]]
path = "b.obj"
translucent = true
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1024, cfg.Shadow.Resolution)
	assert.Equal(t, ProjectionOrthographic, cfg.Shadow.Projection)
	assert.Equal(t, float32(0.5), cfg.Lighting.Alpha)
	assert.Equal(t, []ObjectConfig{{Path: "a.obj"}, {Path: "b.obj", Translucent: true}}, cfg.Scene.Objects)
	// untouched sections keep their defaults
	assert.Equal(t, 1280, cfg.Window.Width)
	assert.Equal(t, float32(0.02), cfg.Lighting.AttQuad)
}

func TestLoadYAMLKeepsDefaultObjects(t *testing.T) {
	path := writeFile(t, "demo.yaml", `
window:
  width: 800
  height: 600
debug:
  log_level: debug
  gl_errors: true
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 800, cfg.Window.Width)
	assert.True(t, cfg.Debug.GLErrors)
	assert.Len(t, cfg.Scene.Objects, 9)

	lvl, err := cfg.Debug.Level()
	require.NoError(t, err)
	assert.Equal(t, "DEBUG", lvl.String())
}

func TestLoadErrors(t *testing.T) {
	for name, tc := range map[string]struct{ file, body string }{
		"unknown extension": {"demo.ini", "x=1"},
		"bad toml":          {"demo.toml", "[shadow\nresolution = 1"},
		"bad projection":    {"demo.toml", "[shadow]\nprojection = \"fisheye\""},
		"bad alpha":         {"demo.yml", "lighting:\n  alpha: 2"},
		"bad level":         {"demo.yml", "debug:\n  log_level: loud"},
		"zero attenuation":  {"demo.toml", "[lighting]\natt_quadratic = 0.0"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeFile(t, tc.file, tc.body))
			assert.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	_, err = LoadOrDefault(writeFile(t, "demo.toml", "[window]\nwidth = -1"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"window", func(c *Config) { c.Window.Height = 0 }},
		{"shadow resolution", func(c *Config) { c.Shadow.Resolution = 0 }},
		{"shadow range", func(c *Config) { c.Shadow.Far = c.Shadow.Near }},
		{"shadow fov", func(c *Config) { c.Shadow.FOV = 180 }},
		{"ortho size", func(c *Config) { c.Shadow.Projection = ProjectionOrthographic; c.Shadow.OrthoSize = 0 }},
		{"camera range", func(c *Config) { c.Camera.Near = 0 }},
		{"camera front", func(c *Config) { c.Camera.Front = [3]float32{} }},
		{"front along up", func(c *Config) { c.Camera.Front = [3]float32{0, 2, 0} }},
		{"front against up", func(c *Config) { c.Camera.Front = [3]float32{0, -1, 0} }},
		{"negative ambient", func(c *Config) { c.Lighting.Ambient = -0.1 }},
		{"negative specular", func(c *Config) { c.Lighting.Specular = -1 }},
		{"negative shininess", func(c *Config) { c.Lighting.Shininess = -2 }},
		{"negative attenuation", func(c *Config) { c.Lighting.AttLinear = -1 }},
		{"no lights file", func(c *Config) { c.Scene.LightsFile = "" }},
		{"ground", func(c *Config) { c.Scene.GroundSize = 0 }},
		{"object path", func(c *Config) { c.Scene.Objects[0].Path = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
