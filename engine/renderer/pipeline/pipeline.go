package pipeline

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-triangle/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// ErrInvalidPipeline is returned by Validate when a pipeline cannot be turned into a render pipeline.
var ErrInvalidPipeline = errors.New("invalid pipeline")

// pipeline is the implementation of the Pipeline interface.
// It holds the shader stages, fixed-function state and, once registered, the GPU render pipeline.
type pipeline struct {
	key string

	// vertex and fragment stages may come from the same program
	vertexShader, fragmentShader shader.Shader

	renderPipeline *wgpu.RenderPipeline

	blendEnabled bool
	cullMode     wgpu.CullMode
	topology     wgpu.PrimitiveTopology
	frontFace    wgpu.FrontFace
	writeMask    wgpu.ColorWriteMask
	blendState   *wgpu.BlendState
}

// Pipeline defines the interface for a render pipeline configuration: the vertex and fragment
// shader stages plus the primitive and color target state used when the renderer creates the
// GPU pipeline. The pipeline layout is always derived from the shaders.
type Pipeline interface {
	// PipelineKey returns the unique key associated with this pipeline, used for caching and lookups.
	//
	// Returns:
	//   - string: the unique key for this pipeline
	PipelineKey() string

	// Shader retrieves the shader bound to the given stage.
	//
	// Parameters:
	//   - stage: shader.ShaderTypeVertex or shader.ShaderTypeFragment
	//
	// Returns:
	//   - shader.Shader: the shader for that stage, or nil if not set
	Shader(stage shader.ShaderType) shader.Shader

	// VertexLayouts returns the vertex buffer layouts of the vertex stage.
	VertexLayouts() []wgpu.VertexBufferLayout

	// VertexStride returns the array stride of the vertex buffer bound at slot 0, or 0 if the
	// vertex stage consumes no vertex buffers.
	VertexStride() uint64

	// RenderPipeline returns the GPU pipeline, or nil before the renderer registered it.
	RenderPipeline() *wgpu.RenderPipeline

	// SetRenderPipeline stores the GPU pipeline created by the renderer.
	//
	// Parameters:
	//   - p: the WebGPU render pipeline to set
	SetRenderPipeline(p *wgpu.RenderPipeline)

	BlendEnabled() bool
	CullMode() wgpu.CullMode
	Topology() wgpu.PrimitiveTopology
	FrontFace() wgpu.FrontFace
	WriteMask() wgpu.ColorWriteMask

	// BlendState returns the blend state, or nil when blending is disabled.
	BlendState() *wgpu.BlendState

	// Validate checks that both stages are set and declare an entry point.
	//
	// Returns:
	//   - error: an error wrapping ErrInvalidPipeline describing the first problem found
	Validate() error

	// Release frees the GPU pipeline if one was created.
	Release()
}

var _ Pipeline = &pipeline{}

// NewPipeline is the entry point to create a new Pipeline. Defaults are a triangle list with
// counter-clockwise front faces, no culling, all color channels written and blending disabled.
//
// Parameters:
//   - key: the unique key for this pipeline
//   - opts: a variadic list of PipelineBuilderOption functions to configure the pipeline
//
// Returns:
//   - Pipeline: a new Pipeline instance with the specified configuration
func NewPipeline(key string, opts ...PipelineBuilderOption) Pipeline {
	p := &pipeline{
		key:       key,
		cullMode:  wgpu.CullModeNone,
		topology:  wgpu.PrimitiveTopologyTriangleList,
		frontFace: wgpu.FrontFaceCCW,
		writeMask: wgpu.ColorWriteMaskAll,
		blendState: &wgpu.BlendState{
			Color: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorSrcAlpha,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
			Alpha: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorOne,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *pipeline) PipelineKey() string {
	return p.key
}

func (p *pipeline) Shader(stage shader.ShaderType) shader.Shader {
	switch stage {
	case shader.ShaderTypeVertex:
		return p.vertexShader
	case shader.ShaderTypeFragment:
		return p.fragmentShader
	default:
		return nil
	}
}

func (p *pipeline) VertexLayouts() []wgpu.VertexBufferLayout {
	if p.vertexShader == nil {
		return nil
	}
	return p.vertexShader.VertexLayouts()
}

func (p *pipeline) VertexStride() uint64 {
	layouts := p.VertexLayouts()
	if len(layouts) == 0 {
		return 0
	}
	return layouts[0].ArrayStride
}

func (p *pipeline) RenderPipeline() *wgpu.RenderPipeline {
	return p.renderPipeline
}

func (p *pipeline) SetRenderPipeline(rp *wgpu.RenderPipeline) {
	p.renderPipeline = rp
}

func (p *pipeline) BlendEnabled() bool {
	return p.blendEnabled
}

func (p *pipeline) CullMode() wgpu.CullMode {
	return p.cullMode
}

func (p *pipeline) Topology() wgpu.PrimitiveTopology {
	return p.topology
}

func (p *pipeline) FrontFace() wgpu.FrontFace {
	return p.frontFace
}

func (p *pipeline) WriteMask() wgpu.ColorWriteMask {
	return p.writeMask
}

func (p *pipeline) BlendState() *wgpu.BlendState {
	if !p.blendEnabled {
		return nil
	}
	return p.blendState
}

func (p *pipeline) Validate() error {
	if p.key == "" {
		return fmt.Errorf("%w: empty pipeline key", ErrInvalidPipeline)
	}
	stages := []struct {
		stage shader.ShaderType
		s     shader.Shader
	}{
		{shader.ShaderTypeVertex, p.vertexShader},
		{shader.ShaderTypeFragment, p.fragmentShader},
	}
	for _, st := range stages {
		if st.s == nil {
			return fmt.Errorf("%w: pipeline %s has no %s shader", ErrInvalidPipeline, p.key, st.stage)
		}
		if !st.s.HasStage(st.stage) {
			return fmt.Errorf("%w: pipeline %s: shader %s has no %s entry point", ErrInvalidPipeline, p.key, st.s.Key(), st.stage)
		}
	}
	return nil
}

func (p *pipeline) Release() {
	if p.renderPipeline != nil {
		p.renderPipeline.Release()
		p.renderPipeline = nil
	}
}
