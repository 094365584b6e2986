package engine

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-triangle/engine/config"
	"github.com/Carmen-Shannon/oxy-triangle/engine/model"
	"github.com/Carmen-Shannon/oxy-triangle/engine/profiler"
	"github.com/Carmen-Shannon/oxy-triangle/engine/renderer"
	"github.com/Carmen-Shannon/oxy-triangle/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-triangle/engine/window"
	"go.uber.org/zap"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithLogger sets the logger handed to every component the engine creates.
//
// Parameters:
//   - logger: the logger to use; nil keeps the no-op logger
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithLogger(logger *zap.Logger) EngineBuilderOption {
	return func(e *engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithProfiling enables or disables the phase timing report.
//
// Parameters:
//   - enabled: if true, reports phase timings after the frame is submitted
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithProfiler sets the profiler used to time the run phases.
func WithProfiler(p *profiler.Profiler) EngineBuilderOption {
	return func(e *engine) {
		e.profiler = p
	}
}

// WithWindow sets a custom configured window for the engine to use rather than allowing the engine
// to create one from the configuration. The engine closes it when Run returns.
//
// Parameters:
//   - w: a pre-configured Window instance
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithRenderer sets a ready renderer, skipping adapter and device acquisition. The engine
// releases it when Run returns.
//
// Parameters:
//   - r: a Renderer already attached to a surface
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderer(r renderer.Renderer) EngineBuilderOption {
	return func(e *engine) {
		e.renderer = r
	}
}

// windowOptions maps the window section of cfg to window options.
func windowOptions(cfg *config.Config, logger *zap.Logger) []window.WindowBuilderOption {
	return []window.WindowBuilderOption{
		window.WithTitle(cfg.Window.Title),
		window.WithWidth(cfg.Window.Width),
		window.WithHeight(cfg.Window.Height),
		window.WithLogger(logger),
	}
}

// rendererOptions maps the renderer section and the clear color of cfg to renderer options.
func rendererOptions(cfg *config.Config, logger *zap.Logger) ([]renderer.RendererBuilderOption, error) {
	clearColor, err := cfg.ClearColor()
	if err != nil {
		return nil, err
	}
	mode, err := presentMode(cfg.Renderer.PresentMode)
	if err != nil {
		return nil, err
	}
	pref, err := powerPreference(cfg.Renderer.PowerPreference)
	if err != nil {
		return nil, err
	}
	return []renderer.RendererBuilderOption{
		renderer.WithPresentMode(mode),
		renderer.WithForceSoftwareRenderer(cfg.Renderer.ForceFallbackAdapter),
		renderer.WithPowerPreference(pref),
		renderer.WithClearColor(clearColor),
		renderer.WithLogger(logger),
	}, nil
}

func presentMode(name string) (renderer.PresentMode, error) {
	switch name {
	case "", config.PresentModeVSync:
		return renderer.PresentModeVSync, nil
	case config.PresentModeUncapped:
		return renderer.PresentModeUncapped, nil
	default:
		return 0, fmt.Errorf("%w: present mode %q", config.ErrInvalidConfig, name)
	}
}

func powerPreference(name string) (renderer.PowerPreference, error) {
	switch name {
	case "":
		return renderer.PowerPreferenceDefault, nil
	case config.PowerPreferenceLow:
		return renderer.PowerPreferenceLowPower, nil
	case config.PowerPreferenceHigh:
		return renderer.PowerPreferenceHighPerformance, nil
	default:
		return 0, fmt.Errorf("%w: power preference %q", config.ErrInvalidConfig, name)
	}
}

// newShader builds the program named by the scene section: the file at shader_path, or the
// built-in triangle program.
func newShader(cfg *config.Config, logger *zap.Logger) (shader.Shader, error) {
	opts := []shader.ShaderBuilderOption{
		shader.WithValidation(cfg.Shader.Validate),
		shader.WithEntryPoint(shader.ShaderTypeVertex, cfg.Scene.VertexEntry),
		shader.WithEntryPoint(shader.ShaderTypeFragment, cfg.Scene.FragmentEntry),
		shader.WithLogger(logger),
	}
	if cfg.Scene.ShaderPath != "" {
		return shader.NewShaderFromPath(cfg.Scene.Labels.Shader, cfg.Scene.ShaderPath, opts...)
	}
	return shader.NewShader(cfg.Scene.Labels.Shader, shader.TriangleSource, opts...)
}

func modelOptions(cfg *config.Config) []model.ModelBuilderOption {
	return []model.ModelBuilderOption{
		model.WithName(cfg.Scene.Labels.Buffer),
		model.WithVertices(cfg.Scene.Vertices),
		model.WithComponentsPerVertex(cfg.Scene.ComponentsPerVertex),
	}
}
