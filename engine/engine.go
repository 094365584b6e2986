package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/Carmen-Shannon/oxy-triangle/engine/config"
	"github.com/Carmen-Shannon/oxy-triangle/engine/model"
	"github.com/Carmen-Shannon/oxy-triangle/engine/profiler"
	"github.com/Carmen-Shannon/oxy-triangle/engine/renderer"
	"github.com/Carmen-Shannon/oxy-triangle/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-triangle/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-triangle/engine/scene"
	"github.com/Carmen-Shannon/oxy-triangle/engine/window"
	"go.uber.org/zap"
)

// engine implements the Engine interface.
// Owns every object it creates and releases them in reverse creation order.
type engine struct {
	cfg    *config.Config
	logger *zap.Logger

	profiler         *profiler.Profiler
	profilingEnabled bool

	window   window.Window
	renderer renderer.Renderer
	shader   shader.Shader
	pipeline pipeline.Pipeline
	model    model.Model
	scene    scene.Scene
}

// Engine is the main entry point for the program.
// It acquires the device, uploads the scene, submits its only frame and keeps the window open.
type Engine interface {
	// Window returns the window the frame is presented to, or nil before Run.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// Scene returns the scene built by Run, or nil before resource setup.
	//
	// Returns:
	//   - scene.Scene: the scene instance
	Scene() scene.Scene

	// Profiler returns the profiler timing the run phases.
	Profiler() *profiler.Profiler

	// Run performs device acquisition, resource setup and draw submission once, then pumps window
	// events until the window closes or ctx is cancelled. With Once set in the configuration it
	// returns right after the frame is presented. Everything is released before Run returns.
	//
	// Parameters:
	//   - ctx: cancelling ctx stops the event pump
	//
	// Returns:
	//   - error: the first error of any phase; a cancelled ctx is not an error
	Run(ctx context.Context) error
}

var _ Engine = &engine{}

// NewEngine creates a new Engine for cfg. A nil cfg uses config.Default().
//
// Parameters:
//   - cfg: the run configuration
//   - options: functional options for engine configuration (logger, profiling, window, renderer)
//
// Returns:
//   - Engine: the newly created engine
//   - error: an error wrapping config.ErrInvalidConfig if cfg does not validate
func NewEngine(cfg *config.Config, options ...EngineBuilderOption) (Engine, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &engine{
		cfg:    cfg,
		logger: zap.NewNop(),
	}
	for _, opt := range options {
		opt(e)
	}
	if e.profiler == nil {
		e.profiler = profiler.NewProfiler(e.logger)
	}
	return e, nil
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Scene() scene.Scene {
	return e.scene
}

func (e *engine) Profiler() *profiler.Profiler {
	return e.profiler
}

func (e *engine) Run(ctx context.Context) error {
	// GLFW and the native surface must stay on the thread that created them.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer e.release()

	if err := e.submitFrame(); err != nil {
		return err
	}

	if e.cfg.Once {
		return nil
	}
	e.logger.Info("frame presented, waiting for the window to close")
	if err := e.window.ProcessMessages(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// submitFrame runs the three timed phases and reports their timings when profiling is enabled.
func (e *engine) submitFrame() error {
	if e.profilingEnabled {
		defer e.profiler.Report()
	}
	if err := e.profiler.Track(profiler.PhaseDeviceAcquisition, e.acquireDevice); err != nil {
		return err
	}
	if err := e.profiler.Track(profiler.PhaseResourceSetup, e.setupResources); err != nil {
		return err
	}
	return e.profiler.Track(profiler.PhaseDrawSubmission, e.submitDraw)
}

// acquireDevice opens the window and creates the renderer for it. Either may be supplied through
// WithWindow or WithRenderer, in which case it is used as is.
func (e *engine) acquireDevice() error {
	if e.window == nil {
		w, err := window.NewWindow(windowOptions(e.cfg, e.logger)...)
		if err != nil {
			return fmt.Errorf("open window: %w", err)
		}
		e.window = w
	}

	if e.renderer == nil {
		opts, err := rendererOptions(e.cfg, e.logger)
		if err != nil {
			return err
		}
		r, err := renderer.NewRenderer(renderer.BackendTypeWGPU, e.window, opts...)
		if err != nil {
			return fmt.Errorf("create renderer: %w", err)
		}
		e.renderer = r
	}
	return nil
}

// setupResources compiles the program, describes the pipeline, then uploads the vertex data and
// creates the render pipeline on the device.
func (e *engine) setupResources() error {
	s, err := newShader(e.cfg, e.logger)
	if err != nil {
		return err
	}
	e.shader = s

	if out := e.cfg.Shader.SPIRVOut; out != "" {
		if err := writeSPIRV(s, out); err != nil {
			return err
		}
		e.logger.Info("spir-v written", zap.String("path", out))
	}

	p := pipeline.NewPipeline(e.cfg.Scene.Labels.Pipeline, pipeline.WithShader(s))
	if err := p.Validate(); err != nil {
		return err
	}
	e.pipeline = p

	m, err := model.NewModel(modelOptions(e.cfg)...)
	if err != nil {
		return err
	}
	e.model = m

	e.scene = scene.NewScene("main", e.renderer, scene.WithLogger(e.logger))
	return e.scene.Add(e.model, e.pipeline)
}

// submitDraw records and submits the single frame.
func (e *engine) submitDraw() error {
	return e.scene.Render()
}

// release frees everything in reverse creation order: vertex buffers, then pipelines and shader
// modules with the renderer, then the window.
func (e *engine) release() {
	if e.scene != nil {
		e.scene.Release()
	}
	if e.model != nil {
		e.model.Release()
	}
	if e.renderer != nil {
		e.renderer.Release()
	}
	if e.window != nil {
		if err := e.window.Close(); err != nil && !errors.Is(err, window.ErrNotInitialized) {
			e.logger.Warn("close window", zap.Error(err))
		}
	}
	e.logger.Debug("resources released")
}

// writeSPIRV compiles s to SPIR-V and writes the binary to path.
func writeSPIRV(s shader.Shader, path string) error {
	bin, err := s.CompileSPIRV()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, bin, 0o644); err != nil {
		return fmt.Errorf("write spir-v: %w", err)
	}
	return nil
}
