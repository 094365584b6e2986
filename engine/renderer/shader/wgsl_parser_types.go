package shader

import "github.com/cogentcore/webgpu/wgpu"

// vertexFormat is the wgpu vertex format of a WGSL input type and its size in the vertex buffer.
type vertexFormat struct {
	format wgpu.VertexFormat
	size   uint64
}

// ioDecl is a struct member or function parameter with its IO attributes.
type ioDecl struct {
	name     string
	typeName string
	// location is -1 without @location
	location int
	builtin  bool
}

// vertexInput reports whether the declaration is fed from a vertex buffer.
func (d ioDecl) vertexInput() bool {
	return d.location >= 0 && !d.builtin
}

// wgslStruct is a struct declaration found in the source.
type wgslStruct struct {
	name    string
	members []ioDecl
}

// vertexInputs returns the members fed from a vertex buffer, in declaration order.
func (s wgslStruct) vertexInputs() []ioDecl {
	var inputs []ioDecl
	for _, m := range s.members {
		if m.vertexInput() {
			inputs = append(inputs, m)
		}
	}
	return inputs
}
