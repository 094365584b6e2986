package shader

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitTopLevel(t *testing.T) {
	parts := splitTopLevel("a: array<f32, 4>, @interpolate(flat, either) @location(1) b: u32, c: f32")
	assert.Equal(t, []string{
		"a: array<f32, 4>",
		"@interpolate(flat, either) @location(1) b: u32",
		"c: f32",
	}, parts)
}

func TestParseDecl(t *testing.T) {
	d, ok := parseDecl("@interpolate(flat, either) @location(3) color: vec4<f32>")
	require.True(t, ok)
	assert.Equal(t, ioDecl{name: "color", typeName: "vec4<f32>", location: 3}, d)
	assert.True(t, d.vertexInput())

	d, ok = parseDecl("@builtin(vertex_index) idx: u32")
	require.True(t, ok)
	assert.True(t, d.builtin)
	assert.Equal(t, -1, d.location)
	assert.False(t, d.vertexInput())

	_, ok = parseDecl("")
	assert.False(t, ok)
	_, ok = parseDecl("@location(0)")
	assert.False(t, ok)
}

func TestVertexInputStructs(t *testing.T) {
	structs := parseStructs(stripComments(`
struct In { @location(0) a: f32, @location(1) b: vec3f, }
struct Out { @builtin(position) p: vec4f, @location(0) c: f32 }
struct Uniforms { scale: f32 }
`))
	require.Len(t, structs, 3)
	assert.Equal(t, "In", structs[0].name)
	assert.Len(t, structs[0].vertexInputs(), 2)
	require.Len(t, structs[1].vertexInputs(), 1)
	assert.Equal(t, "c", structs[1].vertexInputs()[0].name)
	assert.Empty(t, structs[2].vertexInputs())
}

func TestParseVertexLayoutsIgnoresFragmentOutputStruct(t *testing.T) {
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
	layouts := parseVertexLayouts(src, "vs")
	require.Len(t, layouts, 1)
	assert.Equal(t, uint64(8), layouts[0].ArrayStride)
	require.Len(t, layouts[0].Attributes, 1)
	assert.Equal(t, wgpu.VertexFormatFloat32x2, layouts[0].Attributes[0].Format)

	assert.Empty(t, parseVertexLayouts(src, "fs"))
}

func TestParseVertexLayoutsMixedParams(t *testing.T) {
	src := `
struct Instance { @location(1) offset: vec2f, @builtin(instance_index) idx: u32 }

@vertex
fn vs(@location(0) pos: vec2f, inst: Instance) -> @builtin(position) vec4f {
    return vec4f(pos + inst.offset, 0.0, 1.0);
}
`
	layouts := parseVertexLayouts(src, "vs")
	require.Len(t, layouts, 2)
	assert.Equal(t, uint32(0), layouts[0].Attributes[0].ShaderLocation)
	require.Len(t, layouts[1].Attributes, 1)
	assert.Equal(t, uint32(1), layouts[1].Attributes[0].ShaderLocation)
	assert.Equal(t, uint64(8), layouts[1].ArrayStride)
}

func TestStripComments(t *testing.T) {
	src := "fn a() {} // trailing\n/* block /* nested */ still */fn b() {}"
	cleaned := stripComments(src)
	assert.NotContains(t, cleaned, "trailing")
	assert.NotContains(t, cleaned, "nested")
	assert.NotContains(t, cleaned, "still")
	assert.Contains(t, cleaned, "fn a()")
	assert.Contains(t, cleaned, "fn b()")
}

func TestParseEntryPoint(t *testing.T) {
	assert.Equal(t, "vertexMain", parseEntryPoint(TriangleSource, ShaderTypeVertex))
	assert.Equal(t, "fragmentMain", parseEntryPoint(TriangleSource, ShaderTypeFragment))
	assert.Equal(t, "", parseEntryPoint("fn helper() {}", ShaderTypeVertex))
	assert.Equal(t, "", parseEntryPoint(TriangleSource, ShaderType(42)))
}

func TestParseVertexLayoutsSkipsBuiltinParams(t *testing.T) {
	src := `
@vertex
fn vs(@builtin(vertex_index) idx: u32, @location(0) pos: vec2f, @location(1) color: vec4<f32>) -> @builtin(position) vec4f {
    return vec4f(pos, 0.0, 1.0);
}
`
	layouts := parseVertexLayouts(src, "vs")
	require.Len(t, layouts, 1)
	assert.Equal(t, uint64(24), layouts[0].ArrayStride)
	require.Len(t, layouts[0].Attributes, 2)
	assert.Equal(t, wgpu.VertexFormatFloat32x2, layouts[0].Attributes[0].Format)
	assert.Equal(t, wgpu.VertexFormatFloat32x4, layouts[0].Attributes[1].Format)
	assert.Equal(t, uint64(8), layouts[0].Attributes[1].Offset)
	assert.Equal(t, uint32(1), layouts[0].Attributes[1].ShaderLocation)
}

func TestParseVertexLayoutsNoInputs(t *testing.T) {
	src := `
@vertex
fn vs(@builtin(vertex_index) idx: u32) -> @builtin(position) vec4f {
    return vec4f(0.0, 0.0, 0.0, 1.0);
}
`
	assert.Empty(t, parseVertexLayouts(src, "vs"))
	assert.Empty(t, parseVertexLayouts(src, "missing"))
}

func TestHasFunction(t *testing.T) {
	assert.True(t, hasFunction(TriangleSource, "vertexMain"))
	assert.False(t, hasFunction(TriangleSource, "vertex"))
	assert.False(t, hasFunction("// fn hidden() {}", "hidden"))
}
