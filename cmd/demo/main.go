package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/schollz/progressbar/v3"

	"shadow-demo/config"
	"shadow-demo/core"
	"shadow-demo/internal/gpu"
	"shadow-demo/internal/opengl"
	"shadow-demo/renderer"
	"shadow-demo/scene"
)

func main() {
	if err := run(); err != nil {
		slog.Error("shadow demo failed", "err", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadOrDefault(config.DefaultPath)
	if err != nil {
		return err
	}
	level, err := cfg.Debug.Level()
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	window, err := core.NewWindow(core.WindowConfigFrom(cfg.Window))
	if err != nil {
		return err
	}
	defer window.Destroy()

	dev, err := opengl.NewDevice()
	if err != nil {
		return err
	}

	sc, err := loadScene(cfg.Scene)
	if err != nil {
		return err
	}
	slog.Info("scene loaded",
		"lights", sc.Lights.Len(),
		"opaque", len(sc.Opaque),
		"translucent", len(sc.Translucent))

	shaders, err := loadShaders(cfg.Shaders, sc.Lights.Len())
	if err != nil {
		return err
	}

	r, err := renderer.New(dev, sc, shaders, cfg,
		renderer.WithErrorChecks(cfg.Debug.GLErrors),
		renderer.WithBackground(mgl32.Vec3(cfg.Lighting.Background)))
	if err != nil {
		return err
	}
	defer r.Destroy()

	camera := scene.NewCamera(cfg.Camera)
	input := keyboard{window: window}

	frames := 0
	lastReport := core.Time()
	for !window.ShouldClose() {
		window.PollEvents()
		if window.IsKeyPressed(core.KeyEscape) {
			window.Close()
		}
		camera.Update(input)

		w, h := window.GetFramebufferSize()
		if err := r.RenderFrame(camera, int32(w), int32(h)); err != nil {
			return fmt.Errorf("frame: %w", err)
		}
		window.SwapBuffers()

		frames++
		if cfg.Debug.FPSInterval <= 0 {
			continue
		}
		if elapsed := core.Time() - lastReport; elapsed >= cfg.Debug.FPSInterval {
			fps := float64(frames) / elapsed
			slog.Info("frame timing",
				"ms_per_frame", 1000*elapsed/float64(frames),
				"fps", fps)
			window.SetTitle(fpsTitle(cfg.Window.Title, fps))
			frames = 0
			lastReport = core.Time()
		}
	}
	return nil
}

func fpsTitle(base string, fps float64) string {
	return fmt.Sprintf("%s - FPS: %.0f", base, fps)
}

func loadScene(cfg config.SceneConfig) (*scene.Scene, error) {
	bar := progressbar.NewOptions(len(cfg.Objects),
		progressbar.OptionSetDescription("loading objects"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionClearOnFinish(),
	)
	defer bar.Finish()
	return scene.Load(cfg, func(string) { _ = bar.Add(1) })
}

// loadShaders expands the light count into the main fragment template and
// reads both programs. The main program compiles from the generated cache
// file so the driver sees exactly what is on disk.
func loadShaders(cfg config.ShaderConfig, lights int) (renderer.Shaders, error) {
	if _, err := renderer.GenerateShader(cfg.Fragment, lights); err != nil {
		return renderer.Shaders{}, err
	}
	shading, err := gpu.LoadShaderFiles(cfg.Vertex, renderer.CachePath(cfg.Fragment))
	if err != nil {
		return renderer.Shaders{}, err
	}
	depth, err := gpu.LoadShaderFiles(cfg.DepthVertex, cfg.DepthFragment)
	if err != nil {
		return renderer.Shaders{}, err
	}
	return renderer.Shaders{Main: shading, Depth: depth}, nil
}
