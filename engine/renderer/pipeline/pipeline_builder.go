package pipeline

import (
	"github.com/Carmen-Shannon/oxy-triangle/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// PipelineBuilderOption is a functional option used to configure a Pipeline during construction.
type PipelineBuilderOption func(*pipeline)

// WithVertexShader sets the shader whose vertex entry point feeds this pipeline.
//
// Parameters:
//   - s: the vertex shader
//
// Returns:
//   - PipelineBuilderOption: a function that sets the vertex stage
func WithVertexShader(s shader.Shader) PipelineBuilderOption {
	return func(p *pipeline) {
		p.vertexShader = s
	}
}

// WithFragmentShader sets the shader whose fragment entry point feeds this pipeline.
//
// Parameters:
//   - s: the fragment shader
//
// Returns:
//   - PipelineBuilderOption: a function that sets the fragment stage
func WithFragmentShader(s shader.Shader) PipelineBuilderOption {
	return func(p *pipeline) {
		p.fragmentShader = s
	}
}

// WithShader uses one program for both the vertex and the fragment stage.
//
// Parameters:
//   - s: a shader declaring both a @vertex and a @fragment entry point
//
// Returns:
//   - PipelineBuilderOption: a function that sets both stages
func WithShader(s shader.Shader) PipelineBuilderOption {
	return func(p *pipeline) {
		p.vertexShader = s
		p.fragmentShader = s
	}
}

// WithBlendEnabled toggles blending on the color target.
func WithBlendEnabled(enabled bool) PipelineBuilderOption {
	return func(p *pipeline) {
		p.blendEnabled = enabled
	}
}

// WithCullMode sets which faces are discarded (wgpu.CullModeNone, wgpu.CullModeFront or wgpu.CullModeBack).
func WithCullMode(mode wgpu.CullMode) PipelineBuilderOption {
	return func(p *pipeline) {
		p.cullMode = mode
	}
}

// WithTopology sets how vertices are assembled into primitives.
//
// Parameters:
//   - topology: e.g. wgpu.PrimitiveTopologyTriangleList or wgpu.PrimitiveTopologyLineStrip
//
// Returns:
//   - PipelineBuilderOption: a function that sets the primitive topology
func WithTopology(topology wgpu.PrimitiveTopology) PipelineBuilderOption {
	return func(p *pipeline) {
		p.topology = topology
	}
}

// WithFrontFace sets the winding order of front faces.
func WithFrontFace(frontFace wgpu.FrontFace) PipelineBuilderOption {
	return func(p *pipeline) {
		p.frontFace = frontFace
	}
}

// WithWriteMask sets which color channels the fragment stage writes.
func WithWriteMask(writeMask wgpu.ColorWriteMask) PipelineBuilderOption {
	return func(p *pipeline) {
		p.writeMask = writeMask
	}
}

// WithBlendState replaces the default alpha blend state. It only applies when blending is enabled.
//
// Parameters:
//   - blendState: the color and alpha blend components
//
// Returns:
//   - PipelineBuilderOption: a function that sets the blend state
func WithBlendState(blendState *wgpu.BlendState) PipelineBuilderOption {
	return func(p *pipeline) {
		p.blendState = blendState
	}
}
