package renderer

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-triangle/common"
	"github.com/Carmen-Shannon/oxy-triangle/engine/model"
	"github.com/Carmen-Shannon/oxy-triangle/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

type drawRecord struct {
	pipeline    string
	model       string
	vertexCount uint32
}

// recordingBackend is a RendererBackend that records calls instead of talking to a GPU. It
// enforces the same frame ordering rules as the wgpu backend.
type recordingBackend struct {
	format      wgpu.TextureFormat
	configured  bool
	width       int
	height      int
	presentMode PresentMode
	clearColor  common.Color

	registered []string
	uploads    map[string]uint64

	frameOpen   bool
	passOpen    bool
	beginFrames int
	draws       []drawRecord
	submits     int
	presents    int
	released    bool
}

var _ RendererBackend = &recordingBackend{}

func newRecordingBackend() *recordingBackend {
	return &recordingBackend{
		format:  wgpu.TextureFormatBGRA8UnormSrgb,
		uploads: make(map[string]uint64),
	}
}

func (b *recordingBackend) ConfigureSurface(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: invalid surface size %dx%d", ErrSurfaceUnavailable, width, height)
	}
	b.width, b.height = width, height
	b.configured = true
	return nil
}

func (b *recordingBackend) SurfaceFormat() (wgpu.TextureFormat, bool) {
	return b.format, b.configured
}

func (b *recordingBackend) SetPresentMode(mode PresentMode) {
	b.presentMode = mode
}

func (b *recordingBackend) SetClearColor(c common.Color) {
	b.clearColor = c
}

func (b *recordingBackend) RegisterRenderPipeline(p pipeline.Pipeline) error {
	if !b.configured {
		return ErrSurfaceNotConfigured
	}
	if err := p.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrPipelineCreate, err)
	}
	b.registered = append(b.registered, p.PipelineKey())
	return nil
}

func (b *recordingBackend) InitVertexBuffer(m model.Model) error {
	b.uploads[m.Name()] = m.ByteSize()
	return nil
}

func (b *recordingBackend) BeginFrame() error {
	if !b.configured {
		return ErrSurfaceNotConfigured
	}
	if b.frameOpen {
		return ErrFrameInProgress
	}
	b.frameOpen = true
	b.passOpen = true
	b.beginFrames++
	return nil
}

func (b *recordingBackend) DrawCall(p pipeline.Pipeline, m model.Model) error {
	if !b.passOpen {
		return ErrNoFrame
	}
	if _, ok := b.uploads[m.Name()]; !ok {
		return fmt.Errorf("%w: %s", ErrNoVertexBuffer, m.Name())
	}
	b.draws = append(b.draws, drawRecord{pipeline: p.PipelineKey(), model: m.Name(), vertexCount: m.VertexCount()})
	return nil
}

func (b *recordingBackend) EndFrame() error {
	if !b.passOpen {
		return ErrNoFrame
	}
	b.passOpen = false
	b.submits++
	return nil
}

func (b *recordingBackend) Present() error {
	if !b.frameOpen {
		return ErrNoFrame
	}
	if b.passOpen {
		return ErrFrameInProgress
	}
	b.frameOpen = false
	b.presents++
	return nil
}

func (b *recordingBackend) Release() {
	b.released = true
}

type fakeSurface struct {
	width, height int
}

func (s fakeSurface) SurfaceDescriptor() *wgpu.SurfaceDescriptor { return nil }
func (s fakeSurface) Width() int                                 { return s.width }
func (s fakeSurface) Height() int                                { return s.height }
