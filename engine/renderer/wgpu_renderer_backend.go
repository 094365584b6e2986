package renderer

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/Carmen-Shannon/oxy-triangle/common"
	"github.com/Carmen-Shannon/oxy-triangle/engine/model"
	"github.com/Carmen-Shannon/oxy-triangle/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-triangle/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
	"go.uber.org/zap"
)

type wgpuRendererBackendImpl struct {
	mu     *sync.Mutex
	logger *zap.Logger

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface
	device   *wgpu.Device
	queue    *wgpu.Queue

	surfaceFormat *wgpu.TextureFormat
	presentMode   wgpu.PresentMode
	clearColor    common.Color

	// shader modules keyed by shader key, shared by pipelines that use the same program
	shaderModules map[string]*wgpu.ShaderModule

	// frame state between BeginFrame and Present
	frameEncoder *wgpu.CommandEncoder
	framePass    *wgpu.RenderPassEncoder
	frameSurface *wgpu.Texture
	frameView    *wgpu.TextureView
}

var _ RendererBackend = &wgpuRendererBackendImpl{}

// adapterOptions carries the adapter selection settings collected from the builder options.
type adapterOptions struct {
	forceFallbackAdapter bool
	powerPreference      PowerPreference
}

// newWGPURendererBackend performs device acquisition: instance, surface, adapter, device and queue.
// Every failure releases what was already created and returns a wrapped sentinel error.
//
// Parameters:
//   - surfaceDescriptor: the platform surface descriptor of the window
//   - opts: adapter selection settings
//   - logger: the logger for acquisition details
//
// Returns:
//   - RendererBackend: the acquired backend, surface not yet configured
//   - error: ErrSurfaceUnavailable, ErrAdapterUnavailable or ErrDeviceUnavailable
func newWGPURendererBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, opts adapterOptions, logger *zap.Logger) (RendererBackend, error) {
	runtime.LockOSThread()

	b := &wgpuRendererBackendImpl{
		mu:            &sync.Mutex{},
		logger:        logger,
		presentMode:   wgpu.PresentModeFifo,
		clearColor:    common.DefaultClearColor,
		shaderModules: make(map[string]*wgpu.ShaderModule),
	}

	if surfaceDescriptor == nil {
		return nil, fmt.Errorf("%w: no surface descriptor", ErrSurfaceUnavailable)
	}

	b.instance = wgpu.CreateInstance(nil)
	if b.instance == nil {
		return nil, fmt.Errorf("%w: webgpu instance could not be created", ErrAdapterUnavailable)
	}

	b.surface = b.instance.CreateSurface(surfaceDescriptor)
	if b.surface == nil {
		b.Release()
		return nil, ErrSurfaceUnavailable
	}

	adapter, err := b.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: opts.forceFallbackAdapter,
		PowerPreference:      toWGPUPowerPreference(opts.powerPreference),
		CompatibleSurface:    b.surface,
	})
	if err != nil {
		b.Release()
		return nil, fmt.Errorf("%w: %w", ErrAdapterUnavailable, err)
	}
	if adapter == nil {
		b.Release()
		return nil, ErrAdapterUnavailable
	}
	b.adapter = adapter

	info := adapter.GetInfo()
	logger.Info("adapter acquired",
		zap.String("name", info.Name),
		zap.String("driver", info.DriverDescription),
		zap.Any("backend", info.BackendType),
		zap.Bool("fallback", opts.forceFallbackAdapter),
	)

	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
	})
	if err != nil {
		b.Release()
		return nil, fmt.Errorf("%w: %w", ErrDeviceUnavailable, err)
	}
	if device == nil {
		b.Release()
		return nil, ErrDeviceUnavailable
	}
	b.device = device
	b.queue = device.GetQueue()

	logger.Info("device acquired")
	return b, nil
}

func (b *wgpuRendererBackendImpl) ConfigureSurface(width, height int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: invalid surface size %dx%d", ErrSurfaceUnavailable, width, height)
	}

	capabilities := b.surface.GetCapabilities(b.adapter)
	if len(capabilities.Formats) == 0 || len(capabilities.AlphaModes) == 0 {
		return fmt.Errorf("%w: surface reports no formats for this adapter", ErrSurfaceUnavailable)
	}

	format := capabilities.Formats[0]
	b.surface.Configure(b.adapter, b.device, surfaceConfiguration(format, capabilities.AlphaModes[0], width, height, b.presentMode))
	b.surfaceFormat = &format

	b.logger.Info("surface configured",
		zap.Any("format", format),
		zap.Int("width", width),
		zap.Int("height", height),
		zap.Any("present_mode", b.presentMode),
	)
	return nil
}

func (b *wgpuRendererBackendImpl) SurfaceFormat() (wgpu.TextureFormat, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.surfaceFormat == nil {
		return 0, false
	}
	return *b.surfaceFormat, true
}

func (b *wgpuRendererBackendImpl) SetPresentMode(mode PresentMode) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.presentMode = toWGPUPresentMode(mode)
}

func (b *wgpuRendererBackendImpl) SetClearColor(c common.Color) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.clearColor = c
}

func (b *wgpuRendererBackendImpl) RegisterRenderPipeline(p pipeline.Pipeline) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.surfaceFormat == nil {
		return ErrSurfaceNotConfigured
	}
	if err := p.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrPipelineCreate, err)
	}

	vs, err := b.shaderModule(p.Shader(shader.ShaderTypeVertex))
	if err != nil {
		return err
	}
	fs, err := b.shaderModule(p.Shader(shader.ShaderTypeFragment))
	if err != nil {
		return err
	}

	created, err := b.device.CreateRenderPipeline(renderPipelineDescriptor(p, vs, fs, *b.surfaceFormat))
	if err != nil {
		return fmt.Errorf("%w: pipeline %s: %w", ErrPipelineCreate, p.PipelineKey(), err)
	}
	p.SetRenderPipeline(created)

	b.logger.Info("render pipeline created",
		zap.String("pipeline", p.PipelineKey()),
		zap.String("vertex_entry", p.Shader(shader.ShaderTypeVertex).EntryPoint(shader.ShaderTypeVertex)),
		zap.String("fragment_entry", p.Shader(shader.ShaderTypeFragment).EntryPoint(shader.ShaderTypeFragment)),
		zap.Uint64("vertex_stride", p.VertexStride()),
	)
	return nil
}

// shaderModule returns the cached module for s, creating it on first use. Callers hold b.mu.
func (b *wgpuRendererBackendImpl) shaderModule(s shader.Shader) (*wgpu.ShaderModule, error) {
	if m, ok := b.shaderModules[s.Key()]; ok {
		return m, nil
	}
	m, err := b.device.CreateShaderModule(s.Module())
	if err != nil {
		return nil, fmt.Errorf("%w: shader module %s: %w", ErrPipelineCreate, s.Key(), err)
	}
	b.shaderModules[s.Key()] = m
	b.logger.Debug("shader module created", zap.String("shader", s.Key()))
	return m, nil
}

func (b *wgpuRendererBackendImpl) InitVertexBuffer(m model.Model) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	data := m.VertexData()
	buf, err := b.device.CreateBuffer(vertexBufferDescriptor(m.Name(), data))
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrBufferCreate, m.Name(), err)
	}
	if err := b.queue.WriteBuffer(buf, 0, data); err != nil {
		buf.Release()
		return fmt.Errorf("%w: %s: write: %w", ErrBufferCreate, m.Name(), err)
	}
	m.SetVertexBuffer(buf)

	b.logger.Info("vertex buffer uploaded",
		zap.String("model", m.Name()),
		zap.Int("bytes", len(data)),
		zap.Uint32("vertices", m.VertexCount()),
	)
	return nil
}

func (b *wgpuRendererBackendImpl) BeginFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.surfaceFormat == nil {
		return ErrSurfaceNotConfigured
	}
	if b.frameSurface != nil {
		return ErrFrameInProgress
	}

	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		return fmt.Errorf("acquire surface texture: %w", err)
	}

	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return fmt.Errorf("create surface view: %w", err)
	}

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		view.Release()
		surfaceTexture.Release()
		return fmt.Errorf("create command encoder: %w", err)
	}

	b.frameEncoder = encoder
	b.framePass = encoder.BeginRenderPass(renderPassDescriptor(view, b.clearColor))
	b.frameSurface = surfaceTexture
	b.frameView = view

	b.logger.Debug("render pass begun", zap.Stringer("clear_color", b.clearColor))
	return nil
}

func (b *wgpuRendererBackendImpl) DrawCall(p pipeline.Pipeline, m model.Model) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framePass == nil {
		return ErrNoFrame
	}
	if p.RenderPipeline() == nil {
		return fmt.Errorf("%w: %s", ErrPipelineNotFound, p.PipelineKey())
	}
	if m.VertexBuffer() == nil {
		return fmt.Errorf("%w: %s", ErrNoVertexBuffer, m.Name())
	}

	b.framePass.SetPipeline(p.RenderPipeline())
	b.framePass.SetVertexBuffer(0, m.VertexBuffer(), 0, wgpu.WholeSize)
	b.framePass.Draw(m.VertexCount(), 1, 0, 0)

	b.logger.Debug("draw encoded",
		zap.String("pipeline", p.PipelineKey()),
		zap.String("model", m.Name()),
		zap.Uint32("vertices", m.VertexCount()),
	)
	return nil
}

func (b *wgpuRendererBackendImpl) EndFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framePass == nil {
		return ErrNoFrame
	}

	b.framePass.End()
	b.framePass.Release()
	b.framePass = nil

	commandBuffer, err := b.frameEncoder.Finish(nil)
	b.frameEncoder.Release()
	b.frameEncoder = nil
	if err != nil {
		b.releaseFrameTexture()
		return fmt.Errorf("finish command encoder: %w", err)
	}

	b.queue.Submit(commandBuffer)
	commandBuffer.Release()

	b.logger.Info("command buffer submitted")
	return nil
}

func (b *wgpuRendererBackendImpl) Present() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameSurface == nil {
		return ErrNoFrame
	}
	if b.framePass != nil {
		return ErrFrameInProgress
	}

	b.surface.Present()
	b.releaseFrameTexture()
	return nil
}

// releaseFrameTexture drops the surface texture and its view. Callers hold b.mu.
func (b *wgpuRendererBackendImpl) releaseFrameTexture() {
	if b.frameView != nil {
		b.frameView.Release()
		b.frameView = nil
	}
	if b.frameSurface != nil {
		b.frameSurface.Release()
		b.frameSurface = nil
	}
}

func (b *wgpuRendererBackendImpl) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framePass != nil {
		b.framePass.Release()
		b.framePass = nil
	}
	if b.frameEncoder != nil {
		b.frameEncoder.Release()
		b.frameEncoder = nil
	}
	b.releaseFrameTexture()

	for key, m := range b.shaderModules {
		m.Release()
		delete(b.shaderModules, key)
	}
	if b.queue != nil {
		b.queue.Release()
		b.queue = nil
	}
	if b.device != nil {
		b.device.Release()
		b.device = nil
	}
	if b.adapter != nil {
		b.adapter.Release()
		b.adapter = nil
	}
	if b.surface != nil {
		b.surface.Release()
		b.surface = nil
	}
	if b.instance != nil {
		b.instance.Release()
		b.instance = nil
	}
	b.surfaceFormat = nil
}

// surfaceConfiguration builds the surface configuration for a render-attachment swapchain.
//
// Parameters:
//   - format: the preferred surface format
//   - alphaMode: the first alpha mode the surface supports
//   - width: the surface width in pixels
//   - height: the surface height in pixels
//   - presentMode: the wgpu present mode
//
// Returns:
//   - *wgpu.SurfaceConfiguration: the configuration passed to Surface.Configure
func surfaceConfiguration(format wgpu.TextureFormat, alphaMode wgpu.CompositeAlphaMode, width, height int, presentMode wgpu.PresentMode) *wgpu.SurfaceConfiguration {
	return &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      format,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: presentMode,
		AlphaMode:   alphaMode,
	}
}

// vertexBufferDescriptor describes a vertex buffer sized exactly to data that can be written
// through the queue.
func vertexBufferDescriptor(label string, data []byte) *wgpu.BufferDescriptor {
	return &wgpu.BufferDescriptor{
		Label:            label,
		Size:             uint64(len(data)),
		Usage:            wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
		MappedAtCreation: false,
	}
}

// renderPassDescriptor describes the single color attachment pass: the surface view is cleared
// to clear and the result stored.
//
// Parameters:
//   - view: the surface texture view for this frame
//   - clear: the clear color
//
// Returns:
//   - *wgpu.RenderPassDescriptor: the descriptor passed to BeginRenderPass
func renderPassDescriptor(view *wgpu.TextureView, clear common.Color) *wgpu.RenderPassDescriptor {
	return &wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       view,
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: clear.ToWGPU(),
			},
		},
	}
}

// renderPipelineDescriptor describes the render pipeline for p. Layout is left nil so the
// implementation derives it from the shaders, and the single color target uses the surface format.
//
// Parameters:
//   - p: the pipeline configuration
//   - vs: the shader module holding the vertex entry point
//   - fs: the shader module holding the fragment entry point
//   - format: the configured surface format
//
// Returns:
//   - *wgpu.RenderPipelineDescriptor: the descriptor passed to CreateRenderPipeline
func renderPipelineDescriptor(p pipeline.Pipeline, vs, fs *wgpu.ShaderModule, format wgpu.TextureFormat) *wgpu.RenderPipelineDescriptor {
	vertexShader := p.Shader(shader.ShaderTypeVertex)
	fragmentShader := p.Shader(shader.ShaderTypeFragment)

	return &wgpu.RenderPipelineDescriptor{
		Label:  p.PipelineKey(),
		Layout: nil,
		Vertex: wgpu.VertexState{
			Module:     vs,
			EntryPoint: vertexShader.EntryPoint(shader.ShaderTypeVertex),
			Buffers:    p.VertexLayouts(),
		},
		Fragment: &wgpu.FragmentState{
			Module:     fs,
			EntryPoint: fragmentShader.EntryPoint(shader.ShaderTypeFragment),
			Targets: []wgpu.ColorTargetState{
				{
					Format:    format,
					WriteMask: p.WriteMask(),
					Blend:     p.BlendState(),
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  p.Topology(),
			FrontFace: p.FrontFace(),
			CullMode:  p.CullMode(),
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	}
}

func toWGPUPresentMode(mode PresentMode) wgpu.PresentMode {
	switch mode {
	case PresentModeUncapped:
		return wgpu.PresentModeImmediate
	case PresentModeVSync:
		fallthrough
	default:
		return wgpu.PresentModeFifo
	}
}

func toWGPUPowerPreference(pref PowerPreference) wgpu.PowerPreference {
	switch pref {
	case PowerPreferenceLowPower:
		return wgpu.PowerPreferenceLowPower
	case PowerPreferenceHighPerformance:
		return wgpu.PowerPreferenceHighPerformance
	default:
		return wgpu.PowerPreferenceUndefined
	}
}
