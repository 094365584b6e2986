package shader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const instancedSource = `
struct VertexInput {
    @location(0) position: vec3<f32>,
    @location(1) normal: vec3f,
    @location(2) uv: vec2<f32>,
};

struct VertexOutput {
    @builtin(position) clip: vec4<f32>,
    @location(0) uv: vec2<f32>,
};

// @vertex fn commented(...) is not an entry point
@vertex
fn vs(in: VertexInput) -> VertexOutput {
    var out: VertexOutput;
    out.clip = vec4<f32>(in.position, 1.0);
    out.uv = in.uv;
    return out;
}

@fragment
fn fs(in: VertexOutput) -> @location(0) vec4<f32> {
    return vec4<f32>(in.uv, 0.0, 1.0);
}
`

func TestTriangleSourceCompiles(t *testing.T) {
	s, err := NewShader("Triangle Shader", TriangleSource)
	require.NoError(t, err)

	assert.True(t, s.Validated())
	assert.Equal(t, "vertexMain", s.EntryPoint(ShaderTypeVertex))
	assert.Equal(t, "fragmentMain", s.EntryPoint(ShaderTypeFragment))
	assert.True(t, s.HasStage(ShaderTypeVertex))
	assert.True(t, s.HasStage(ShaderTypeFragment))

	require.NotNil(t, s.Module())
	assert.Equal(t, "Triangle Shader", s.Module().Label)
	require.NotNil(t, s.Module().WGSLDescriptor)
	assert.Equal(t, TriangleSource, s.Module().WGSLDescriptor.Code)
}

func TestTriangleSourceVertexLayout(t *testing.T) {
	s, err := NewShader("Triangle Shader", TriangleSource)
	require.NoError(t, err)

	layouts := s.VertexLayouts()
	require.Len(t, layouts, 1)
	assert.Equal(t, uint64(8), layouts[0].ArrayStride)
	assert.Equal(t, wgpu.VertexStepModeVertex, layouts[0].StepMode)
	require.Len(t, layouts[0].Attributes, 1)
	assert.Equal(t, wgpu.VertexAttribute{
		Format:         wgpu.VertexFormatFloat32x2,
		Offset:         0,
		ShaderLocation: 0,
	}, layouts[0].Attributes[0])
}

func TestVertexLayoutsComeFromVertexEntryOnly(t *testing.T) {
	src := `
struct VertexInput {
    @location(0) pos: vec2<f32>,
};

struct FragmentOutput {
    @location(0) color: vec4<f32>,
};

@vertex
fn vs(in: VertexInput) -> @builtin(position) vec4<f32> {
    return vec4<f32>(in.pos, 0.0, 1.0);
}

@fragment
fn fs() -> FragmentOutput {
    var out: FragmentOutput;
    out.color = vec4<f32>(1.0, 0.0, 0.0, 1.0);
    return out;
}
`
	for _, validate := range []bool{true, false} {
		s, err := NewShader("io structs", src, WithValidation(validate))
		require.NoError(t, err)

		layouts := s.VertexLayouts()
		require.Len(t, layouts, 1, "validate=%v", validate)
		assert.Equal(t, uint64(8), layouts[0].ArrayStride)
		require.Len(t, layouts[0].Attributes, 1)
		assert.Equal(t, wgpu.VertexFormatFloat32x2, layouts[0].Attributes[0].Format)
	}
}

func TestNewShaderWithoutValidation(t *testing.T) {
	s, err := NewShader("plain", instancedSource, WithValidation(false))
	require.NoError(t, err)

	assert.False(t, s.Validated())
	assert.Equal(t, "vs", s.EntryPoint(ShaderTypeVertex))
	assert.Equal(t, "fs", s.EntryPoint(ShaderTypeFragment))

	layouts := s.VertexLayouts()
	require.Len(t, layouts, 1)
	assert.Equal(t, uint64(32), layouts[0].ArrayStride)
	require.Len(t, layouts[0].Attributes, 3)
	assert.Equal(t, uint64(12), layouts[0].Attributes[1].Offset)
	assert.Equal(t, uint64(24), layouts[0].Attributes[2].Offset)
	assert.Equal(t, uint32(2), layouts[0].Attributes[2].ShaderLocation)
}

func TestNewShaderRejectsEmptySource(t *testing.T) {
	_, err := NewShader("empty", "")
	require.ErrorIs(t, err, ErrCompile)
}

func TestNewShaderRejectsInvalidSource(t *testing.T) {
	_, err := NewShader("broken", "@vertex fn vertexMain( -> {")
	require.ErrorIs(t, err, ErrCompile)
}

func TestEntryPointOverride(t *testing.T) {
	_, err := NewShader("missing", TriangleSource, WithEntryPoint(ShaderTypeVertex, "doesNotExist"))
	require.ErrorIs(t, err, ErrCompile)

	_, err = NewShader("wrong stage", TriangleSource, WithEntryPoint(ShaderTypeVertex, "fragmentMain"))
	require.ErrorIs(t, err, ErrCompile)

	s, err := NewShader("explicit", TriangleSource,
		WithEntryPoint(ShaderTypeVertex, "vertexMain"),
		WithEntryPoint(ShaderTypeFragment, ""),
	)
	require.NoError(t, err)
	assert.Equal(t, "vertexMain", s.EntryPoint(ShaderTypeVertex))
	assert.Equal(t, "fragmentMain", s.EntryPoint(ShaderTypeFragment))
}

func TestDeclaresEntryPoint(t *testing.T) {
	module, err := compileModule("triangle", TriangleSource)
	require.NoError(t, err)
	s := &shader{key: "triangle", source: TriangleSource}

	assert.True(t, s.declaresEntryPoint(module, ShaderTypeVertex, "vertexMain"))
	assert.False(t, s.declaresEntryPoint(module, ShaderTypeFragment, "vertexMain"))
	assert.False(t, s.declaresEntryPoint(module, ShaderTypeVertex, "missing"))

	// without a module any function of that name is accepted
	assert.True(t, s.declaresEntryPoint(nil, ShaderTypeFragment, "vertexMain"))
	assert.False(t, s.declaresEntryPoint(nil, ShaderTypeVertex, "missing"))
}

func TestNewShaderFromPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "triangle.wgsl")
	require.NoError(t, os.WriteFile(path, []byte(TriangleSource), 0o644))

	s, err := NewShaderFromPath("from file", path)
	require.NoError(t, err)
	assert.Equal(t, "vertexMain", s.EntryPoint(ShaderTypeVertex))

	_, err = NewShaderFromPath("missing", filepath.Join(t.TempDir(), "nope.wgsl"))
	require.Error(t, err)
}

func TestCompileSPIRV(t *testing.T) {
	s, err := NewShader("Triangle Shader", TriangleSource)
	require.NoError(t, err)

	out, err := s.CompileSPIRV()
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(out), 4)
	// SPIR-V magic number 0x07230203, little-endian
	assert.Equal(t, []byte{0x03, 0x02, 0x23, 0x07}, out[:4])
}

func TestShaderTypeString(t *testing.T) {
	assert.Equal(t, "vertex", ShaderTypeVertex.String())
	assert.Equal(t, "fragment", ShaderTypeFragment.String())
	assert.Equal(t, "ShaderType(7)", ShaderType(7).String())
}
