package renderer

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-triangle/common"
	"github.com/Carmen-Shannon/oxy-triangle/engine/model"
	"github.com/Carmen-Shannon/oxy-triangle/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
	"go.uber.org/zap"
)

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	pipelineCache map[string]pipeline.Pipeline
	// registration order, used to release pipelines in reverse
	pipelineOrder []string

	backendType RendererBackendType
	backend     RendererBackend
	logger      *zap.Logger

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
	powerPreference      PowerPreference
	presentMode          PresentMode
	clearColor           common.Color
}

// Renderer defines the interface for the rendering system.
//
// The Renderer owns the GPU device and the configured surface, turns Pipeline configurations into
// GPU render pipelines, uploads Model vertices, and records one render pass per frame. The GPU
// work itself is delegated to a backend so several API implementations can exist.
type Renderer interface {
	// SurfaceFormat returns the texture format the surface was configured with. Pipelines
	// created by this renderer target this format.
	//
	// Returns:
	//   - wgpu.TextureFormat: the configured surface format
	//   - error: ErrSurfaceNotConfigured before configuration
	SurfaceFormat() (wgpu.TextureFormat, error)

	// Pipeline retrieves the registered Pipeline associated with the given key, or nil.
	//
	// Parameters:
	//   - key: the unique identifier for the Pipeline to retrieve
	//
	// Returns:
	//   - pipeline.Pipeline: the Pipeline associated with the key, or nil if not found
	Pipeline(key string) pipeline.Pipeline

	// Pipelines retrieves a copy of the pipeline cache.
	//
	// Returns:
	//   - map[string]pipeline.Pipeline: a map of pipeline keys to their corresponding Pipeline objects
	Pipelines() map[string]pipeline.Pipeline

	// RegisterPipelines creates the GPU render pipeline of each Pipeline via the backend, then caches
	// it by PipelineKey. Pipelines whose keys are already registered are skipped.
	//
	// Parameters:
	//   - pipelines: the Pipelines to register
	//
	// Returns:
	//   - error: an error wrapping ErrPipelineCreate if creation fails
	RegisterPipelines(pipelines ...pipeline.Pipeline) error

	// InitVertexBuffer uploads the model's vertices into a new GPU vertex buffer stored on the model.
	//
	// Parameters:
	//   - m: the Model to upload
	//
	// Returns:
	//   - error: an error wrapping ErrBufferCreate if allocation or the write fails
	InitVertexBuffer(m model.Model) error

	// BeginFrame acquires the surface texture and begins the render pass that clears it.
	// Must be paired with EndFrame after all DrawCall invocations within the frame.
	//
	// Returns:
	//   - error: ErrFrameInProgress if the previous frame was not presented, or an acquisition error
	BeginFrame() error

	// DrawCall encodes a draw of every vertex of the model with the registered pipeline.
	//
	// Parameters:
	//   - pipelineKey: the key of a registered Pipeline
	//   - m: the Model whose vertex buffer is bound at slot 0
	//
	// Returns:
	//   - error: ErrPipelineNotFound, ErrLayoutMismatch, ErrNoVertexBuffer or ErrNoFrame
	DrawCall(pipelineKey string, m model.Model) error

	// EndFrame ends the render pass and submits the command buffer to the queue. It does not wait
	// for the GPU and does not present.
	EndFrame() error

	// Present shows the submitted frame and releases the surface texture.
	Present() error

	// Release frees the registered pipelines and then the backend's GPU objects.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer acquires a GPU device for the given surface source and configures the surface with
// its preferred format.
//
// Parameters:
//   - backendType: the type of rendering backend to use (e.g., BackendTypeWGPU)
//   - surface: the drawable to present to, typically a window
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: the ready renderer
//   - error: ErrSurfaceUnavailable, ErrAdapterUnavailable or ErrDeviceUnavailable on failure
func NewRenderer(backendType RendererBackendType, surface SurfaceSource, options ...RendererBuilderOption) (Renderer, error) {
	r := newRenderer(backendType, options...)

	var (
		backend RendererBackend
		err     error
	)
	switch backendType {
	case BackendTypeWGPU:
		fallthrough
	default:
		backend, err = newWGPURendererBackend(surface.SurfaceDescriptor(), adapterOptions{
			forceFallbackAdapter: r.forceFallbackAdapter,
			powerPreference:      r.powerPreference,
		}, r.logger)
	}
	if err != nil {
		return nil, err
	}

	if err := r.attach(backend, surface); err != nil {
		backend.Release()
		return nil, err
	}
	return r, nil
}

// newRenderer applies the builder options to a renderer without a backend.
func newRenderer(backendType RendererBackendType, options ...RendererBuilderOption) *renderer {
	r := &renderer{
		mu:            &sync.Mutex{},
		pipelineCache: make(map[string]pipeline.Pipeline),
		backendType:   backendType,
		logger:        zap.NewNop(),
		presentMode:   PresentModeVSync,
		clearColor:    common.DefaultClearColor,
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// attach hands the collected configuration to the backend and configures the surface.
func (r *renderer) attach(backend RendererBackend, surface SurfaceSource) error {
	r.backend = backend
	backend.SetPresentMode(r.presentMode)
	backend.SetClearColor(r.clearColor)
	return backend.ConfigureSurface(surface.Width(), surface.Height())
}

func (r *renderer) SurfaceFormat() (wgpu.TextureFormat, error) {
	format, ok := r.backend.SurfaceFormat()
	if !ok {
		return 0, ErrSurfaceNotConfigured
	}
	return format, nil
}

func (r *renderer) Pipeline(key string) pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pipelineCache[key]
}

func (r *renderer) Pipelines() map[string]pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]pipeline.Pipeline, len(r.pipelineCache))
	for k, p := range r.pipelineCache {
		out[k] = p
	}
	return out
}

func (r *renderer) RegisterPipelines(pipelines ...pipeline.Pipeline) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range pipelines {
		key := p.PipelineKey()
		if _, exists := r.pipelineCache[key]; exists {
			r.logger.Debug("pipeline already registered", zap.String("pipeline", key))
			continue
		}
		if err := r.backend.RegisterRenderPipeline(p); err != nil {
			return err
		}
		r.pipelineCache[key] = p
		r.pipelineOrder = append(r.pipelineOrder, key)
	}
	return nil
}

func (r *renderer) InitVertexBuffer(m model.Model) error {
	return r.backend.InitVertexBuffer(m)
}

func (r *renderer) BeginFrame() error {
	return r.backend.BeginFrame()
}

func (r *renderer) DrawCall(pipelineKey string, m model.Model) error {
	r.mu.Lock()
	p, exists := r.pipelineCache[pipelineKey]
	r.mu.Unlock()

	if !exists {
		return fmt.Errorf("%w: %q", ErrPipelineNotFound, pipelineKey)
	}
	if stride := p.VertexStride(); stride != m.Stride() {
		return fmt.Errorf("%w: pipeline %s expects stride %d, model %s has stride %d",
			ErrLayoutMismatch, pipelineKey, stride, m.Name(), m.Stride())
	}

	return r.backend.DrawCall(p, m)
}

func (r *renderer) EndFrame() error {
	return r.backend.EndFrame()
}

func (r *renderer) Present() error {
	return r.backend.Present()
}

func (r *renderer) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := len(r.pipelineOrder) - 1; i >= 0; i-- {
		key := r.pipelineOrder[i]
		r.pipelineCache[key].Release()
		delete(r.pipelineCache, key)
	}
	r.pipelineOrder = nil

	if r.backend != nil {
		r.backend.Release()
	}
}
