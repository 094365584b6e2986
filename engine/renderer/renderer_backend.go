package renderer

import (
	"errors"

	"github.com/Carmen-Shannon/oxy-triangle/common"
	"github.com/Carmen-Shannon/oxy-triangle/engine/model"
	"github.com/Carmen-Shannon/oxy-triangle/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

var (
	// ErrAdapterUnavailable is returned when no adapter compatible with the surface can be acquired.
	ErrAdapterUnavailable = errors.New("gpu adapter unavailable")

	// ErrDeviceUnavailable is returned when the adapter refuses to create a logical device.
	ErrDeviceUnavailable = errors.New("gpu device unavailable")

	// ErrSurfaceUnavailable is returned when a presentation surface cannot be created or reports no formats.
	ErrSurfaceUnavailable = errors.New("surface unavailable")

	// ErrSurfaceNotConfigured is returned by operations that need the surface format before it is known.
	ErrSurfaceNotConfigured = errors.New("surface not configured")

	// ErrPipelineCreate is returned when a shader module or render pipeline cannot be created.
	ErrPipelineCreate = errors.New("render pipeline creation failed")

	// ErrPipelineNotFound is returned by DrawCall for a key that was never registered.
	ErrPipelineNotFound = errors.New("render pipeline not found")

	// ErrBufferCreate is returned when a vertex buffer cannot be allocated or written.
	ErrBufferCreate = errors.New("vertex buffer creation failed")

	// ErrNoVertexBuffer is returned when drawing a model whose vertices were never uploaded.
	ErrNoVertexBuffer = errors.New("model has no vertex buffer")

	// ErrLayoutMismatch is returned when a model's vertex stride differs from the pipeline's vertex layout.
	ErrLayoutMismatch = errors.New("vertex layout mismatch")

	// ErrFrameInProgress is returned by BeginFrame while a previous frame has not been presented.
	ErrFrameInProgress = errors.New("frame already in progress")

	// ErrNoFrame is returned by draw and submit operations called outside BeginFrame/EndFrame.
	ErrNoFrame = errors.New("no frame in progress")
)

// RendererBackendType identifies the GPU backend implementation used by the Renderer.
type RendererBackendType int

const (
	// BackendTypeWGPU selects the WebGPU-based rendering backend.
	BackendTypeWGPU RendererBackendType = iota
)

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents immediately without waiting for vertical blank.
	PresentModeUncapped
)

// PowerPreference hints which adapter to pick when several are available.
type PowerPreference int

const (
	// PowerPreferenceDefault lets the implementation choose.
	PowerPreferenceDefault PowerPreference = iota

	// PowerPreferenceLowPower prefers an integrated adapter.
	PowerPreferenceLowPower

	// PowerPreferenceHighPerformance prefers a discrete adapter.
	PowerPreferenceHighPerformance
)

// SurfaceSource is the drawable a renderer presents to. A window provides the platform surface
// descriptor and the framebuffer size in pixels.
type SurfaceSource interface {
	SurfaceDescriptor() *wgpu.SurfaceDescriptor
	Width() int
	Height() int
}

// RendererBackend is the top-level backend interface for the Renderer.
// It embeds the concrete backend interface for the selected GPU API.
type RendererBackend interface {
	wgpuRendererBackend
}

type wgpuRendererBackend interface {
	// ConfigureSurface configures the surface with its preferred format for the given size.
	//
	// Parameters:
	//   - width: the surface width in pixels
	//   - height: the surface height in pixels
	//
	// Returns:
	//   - error: ErrSurfaceUnavailable if the surface reports no usable format
	ConfigureSurface(width, height int) error

	// SurfaceFormat returns the configured surface format.
	//
	// Returns:
	//   - wgpu.TextureFormat: the format chosen in ConfigureSurface
	//   - bool: false until the surface is configured
	SurfaceFormat() (wgpu.TextureFormat, bool)

	// SetPresentMode sets the present mode used by the next ConfigureSurface.
	SetPresentMode(mode PresentMode)

	// SetClearColor sets the color the render pass clears the surface texture to.
	SetClearColor(c common.Color)

	// RegisterRenderPipeline creates the shader modules of p and a render pipeline with an
	// automatically derived layout, then stores it on p.
	//
	// Parameters:
	//   - p: the pipeline configuration
	//
	// Returns:
	//   - error: an error wrapping ErrPipelineCreate on failure
	RegisterRenderPipeline(p pipeline.Pipeline) error

	// InitVertexBuffer allocates a vertex buffer sized to the model's bytes, writes them at
	// offset 0 and stores the buffer on the model.
	//
	// Parameters:
	//   - m: the model whose vertices are uploaded
	//
	// Returns:
	//   - error: an error wrapping ErrBufferCreate on failure
	InitVertexBuffer(m model.Model) error

	// BeginFrame acquires the current surface texture, creates a command encoder and begins
	// the render pass that clears the texture.
	BeginFrame() error

	// DrawCall binds the pipeline and the model's vertex buffer at slot 0 and draws all of
	// the model's vertices once.
	DrawCall(p pipeline.Pipeline, m model.Model) error

	// EndFrame ends the render pass, finishes the encoder and submits the command buffer.
	EndFrame() error

	// Present shows the submitted frame and releases the surface texture.
	Present() error

	// Release frees every GPU object the backend created.
	Release()
}
