package shader

import (
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
)

// stripComments drops line comments and (nested) block comments in one pass. Newlines inside
// block comments are kept.
//
// Parameters:
//   - source: raw WGSL source string
//
// Returns:
//   - string: source without comments
func stripComments(source string) string {
	var sb strings.Builder
	sb.Grow(len(source))

	depth := 0
	for i := 0; i < len(source); i++ {
		c := source[i]
		var next byte
		if i+1 < len(source) {
			next = source[i+1]
		}

		switch {
		case c == '/' && next == '*':
			depth++
			i++
		case depth > 0 && c == '*' && next == '/':
			depth--
			i++
		case depth > 0:
			if c == '\n' {
				sb.WriteByte('\n')
			}
		case c == '/' && next == '/':
			for i < len(source) && source[i] != '\n' {
				i++
			}
			if i < len(source) {
				sb.WriteByte('\n')
			}
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}

// splitTopLevel splits s at commas outside <...> and (...), trimming each part. Template
// arguments such as array<f32, 4> and attributes such as @interpolate(flat, either) stay whole.
func splitTopLevel(s string) []string {
	var parts []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<', '(':
			depth++
		case '>', ')':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				parts = append(parts, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	return append(parts, strings.TrimSpace(s[start:]))
}

// vertexBufferLayout packs the inputs back to back in declaration order, one attribute each.
//
// Parameters:
//   - inputs: vertex input declarations
//
// Returns:
//   - wgpu.VertexBufferLayout: per-vertex layout with ArrayStride equal to the packed size
//   - bool: false if an input type has no vertex format
func vertexBufferLayout(inputs []ioDecl) (wgpu.VertexBufferLayout, bool) {
	layout := wgpu.VertexBufferLayout{
		StepMode:   wgpu.VertexStepModeVertex,
		Attributes: make([]wgpu.VertexAttribute, 0, len(inputs)),
	}
	for _, in := range inputs {
		vf, ok := vertexFormats[in.typeName]
		if !ok {
			return wgpu.VertexBufferLayout{}, false
		}
		layout.Attributes = append(layout.Attributes, wgpu.VertexAttribute{
			Format:         vf.format,
			Offset:         layout.ArrayStride,
			ShaderLocation: uint32(in.location),
		})
		layout.ArrayStride += vf.size
	}
	return layout, true
}
