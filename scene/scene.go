package scene

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"shadow-demo/config"
)

// Object is one mesh of the scene with its occluder class.
type Object struct {
	Mesh        *Mesh
	Translucent bool
	// Transform is applied on top of the placement offset, which is already
	// baked into the vertices. Add sets it to the identity.
	Transform mgl32.Mat4
}

// Scene is everything the renderer draws: lights, the ground plane and the
// loaded objects split by class. Opaque and Translucent keep the order of
// the configured object list.
type Scene struct {
	Lights      *LightSet
	Ground      GroundPlane
	Opaque      []*Object
	Translucent []*Object
}

// Load reads the light file, the placement file and every object listed in
// cfg. The i-th object is offset by placement number i+1. onObject, when not
// nil, is called after each object is loaded.
func Load(cfg config.SceneConfig, onObject func(path string)) (*Scene, error) {
	lights, err := LoadLights(cfg.LightsFile)
	if err != nil {
		return nil, err
	}

	placements := Placements{}
	if cfg.PlacementFile != "" {
		if placements, err = LoadPlacements(cfg.PlacementFile); err != nil {
			return nil, err
		}
	}

	s := &Scene{Lights: lights, Ground: NewGroundPlane(cfg.GroundSize)}
	for i, oc := range cfg.Objects {
		mesh, err := LoadOBJ(oc.Path, placements.Offset(i))
		if err != nil {
			return nil, fmt.Errorf("scene object %d: %w", i+1, err)
		}
		s.Add(mesh, oc.Translucent)
		if onObject != nil {
			onObject(oc.Path)
		}
	}
	return s, nil
}

// Add appends mesh to the list of its class.
func (s *Scene) Add(mesh *Mesh, translucent bool) {
	o := &Object{Mesh: mesh, Translucent: translucent, Transform: mgl32.Ident4()}
	if translucent {
		s.Translucent = append(s.Translucent, o)
	} else {
		s.Opaque = append(s.Opaque, o)
	}
}

// Model is the model matrix uploaded before every draw of o.
func (o *Object) Model() mgl32.Mat4 { return o.Transform }
