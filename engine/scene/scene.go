package scene

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-triangle/engine/model"
	"github.com/Carmen-Shannon/oxy-triangle/engine/renderer"
	"github.com/Carmen-Shannon/oxy-triangle/engine/renderer/pipeline"
	"go.uber.org/zap"
)

var (
	// ErrNoRenderer is returned when a scene without a renderer is asked to upload or draw.
	ErrNoRenderer = errors.New("scene has no renderer")

	// ErrEmptyScene is returned by Render when nothing was added.
	ErrEmptyScene = errors.New("scene is empty")

	// ErrAlreadyRendered is returned by Render after the scene's frame was submitted.
	ErrAlreadyRendered = errors.New("scene already rendered")
)

// entry pairs a model with the key of the pipeline that draws it.
type entry struct {
	model       model.Model
	pipelineKey string
}

// scene is the implementation of the Scene interface.
type scene struct {
	mu *sync.Mutex

	name     string
	renderer renderer.Renderer
	entries  []entry
	rendered bool

	logger *zap.Logger
}

// Scene groups the models to draw with the pipelines that draw them and submits them as a single
// frame: one render pass, one draw per model, one submission.
type Scene interface {
	// Name returns the scene's identifier.
	Name() string

	// Renderer returns the scene's renderer.
	Renderer() renderer.Renderer

	// Count returns the number of models added to the scene.
	Count() int

	// Add registers the pipeline with the renderer (once per key) and uploads the model's vertices.
	//
	// Parameters:
	//   - m: the Model to draw
	//   - p: the Pipeline to draw it with
	//
	// Returns:
	//   - error: ErrNoRenderer, or a pipeline or buffer creation error
	Add(m model.Model, p pipeline.Pipeline) error

	// Render records and submits the scene's only frame: BeginFrame, one DrawCall per model in
	// the order they were added, EndFrame and Present.
	//
	// Returns:
	//   - error: ErrEmptyScene, ErrAlreadyRendered, or the first renderer error
	Render() error

	// Rendered reports whether the frame was submitted and presented.
	Rendered() bool

	// Release frees the GPU vertex buffers of all models, last added first.
	Release()
}

var _ Scene = &scene{}

// NewScene creates an empty scene drawing through r.
//
// Parameters:
//   - name: the scene identifier
//   - r: the renderer used for uploads and drawing
//   - options: functional options to configure the scene
//
// Returns:
//   - Scene: the new scene
func NewScene(name string, r renderer.Renderer, options ...SceneBuilderOption) Scene {
	s := &scene{
		mu:       &sync.Mutex{},
		name:     name,
		renderer: r,
		logger:   zap.NewNop(),
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

func (s *scene) Name() string {
	return s.name
}

func (s *scene) Renderer() renderer.Renderer {
	return s.renderer
}

func (s *scene) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *scene) Add(m model.Model, p pipeline.Pipeline) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.renderer == nil {
		return ErrNoRenderer
	}
	if err := s.renderer.RegisterPipelines(p); err != nil {
		return err
	}
	if err := s.renderer.InitVertexBuffer(m); err != nil {
		return err
	}

	s.entries = append(s.entries, entry{model: m, pipelineKey: p.PipelineKey()})
	s.logger.Debug("model added",
		zap.String("scene", s.name),
		zap.String("model", m.Name()),
		zap.String("pipeline", p.PipelineKey()),
	)
	return nil
}

func (s *scene) Render() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.renderer == nil:
		return ErrNoRenderer
	case s.rendered:
		return ErrAlreadyRendered
	case len(s.entries) == 0:
		return ErrEmptyScene
	}

	if err := s.renderer.BeginFrame(); err != nil {
		return fmt.Errorf("scene %s: begin frame: %w", s.name, err)
	}
	for _, e := range s.entries {
		if err := s.renderer.DrawCall(e.pipelineKey, e.model); err != nil {
			return fmt.Errorf("scene %s: draw %s: %w", s.name, e.model.Name(), err)
		}
	}
	if err := s.renderer.EndFrame(); err != nil {
		return fmt.Errorf("scene %s: submit: %w", s.name, err)
	}
	if err := s.renderer.Present(); err != nil {
		return fmt.Errorf("scene %s: present: %w", s.name, err)
	}

	s.rendered = true
	s.logger.Info("frame submitted", zap.String("scene", s.name), zap.Int("draw_calls", len(s.entries)))
	return nil
}

func (s *scene) Rendered() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rendered
}

func (s *scene) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := len(s.entries) - 1; i >= 0; i-- {
		s.entries[i].model.Release()
	}
	s.entries = nil
}
