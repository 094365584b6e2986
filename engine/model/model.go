package model

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-triangle/common"
	"github.com/cogentcore/webgpu/wgpu"
)

// ErrInvalidVertexData is returned when the vertex array cannot be split into whole vertices.
var ErrInvalidVertexData = errors.New("invalid vertex data")

// TriangleVertices is the fixed 2D triangle drawn by the default scene: three vertices, two float components each.
var TriangleVertices = []float32{
	-0.5, -0.5,
	0.5, -0.5,
	0.5, 0.5,
}

// model is the implementation of the Model interface.
type model struct {
	name                string
	vertices            []float32
	componentsPerVertex int

	// vertexBuffer is populated by the Renderer when the vertices are uploaded.
	vertexBuffer *wgpu.Buffer
}

// Model defines the interface for a drawable vertex array.
// A Model owns the host-side float32 vertex data, describes how the data splits into vertices,
// and holds the GPU vertex buffer once the Renderer has uploaded it.
type Model interface {
	// Name retrieves the model identifier, also used as the GPU buffer label.
	//
	// Returns:
	//   - string: the model name
	Name() string

	// Vertices retrieves the host-side vertex components.
	//
	// Returns:
	//   - []float32: the flat vertex component array
	Vertices() []float32

	// VertexData returns a byte view of the vertex components for GPU upload.
	//
	// Returns:
	//   - []byte: the vertex data bytes, sharing memory with Vertices
	VertexData() []byte

	// ComponentsPerVertex returns the number of float components making up one vertex.
	//
	// Returns:
	//   - int: components per vertex (2 for a 2D position)
	ComponentsPerVertex() int

	// VertexCount returns the number of whole vertices, the count passed to the draw call.
	//
	// Returns:
	//   - uint32: len(Vertices) / ComponentsPerVertex
	VertexCount() uint32

	// ByteSize returns the byte length of the vertex data, which is also the GPU buffer size.
	//
	// Returns:
	//   - uint64: size of the vertex data in bytes
	ByteSize() uint64

	// Stride returns the byte distance between consecutive vertices.
	//
	// Returns:
	//   - uint64: ComponentsPerVertex * 4
	Stride() uint64

	// VertexBuffer returns the GPU vertex buffer, or nil if not uploaded.
	//
	// Returns:
	//   - *wgpu.Buffer: the vertex buffer or nil
	VertexBuffer() *wgpu.Buffer

	// SetVertexBuffer stores the GPU vertex buffer created by the Renderer.
	//
	// Parameters:
	//   - buf: the uploaded vertex buffer
	SetVertexBuffer(buf *wgpu.Buffer)

	// Release releases the GPU vertex buffer if one was uploaded.
	Release()
}

var _ Model = &model{}

// NewModel creates a new Model with the provided options and validates that the vertex data
// splits into whole vertices.
//
// Parameters:
//   - options: variadic list of ModelBuilderOption functions to configure the Model
//
// Returns:
//   - Model: the configured Model
//   - error: an error wrapping ErrInvalidVertexData if the data is empty or malformed
func NewModel(options ...ModelBuilderOption) (Model, error) {
	m := &model{
		name:                "Triangle Vertices",
		vertices:            append([]float32(nil), TriangleVertices...),
		componentsPerVertex: 2,
	}
	for _, opt := range options {
		opt(m)
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *model) validate() error {
	if !common.InRange(m.componentsPerVertex, 1, 4) {
		return fmt.Errorf("%w: %d components per vertex, must be between 1 and 4", ErrInvalidVertexData, m.componentsPerVertex)
	}
	if len(m.vertices) == 0 {
		return fmt.Errorf("%w: model %q has no vertices", ErrInvalidVertexData, m.name)
	}
	if len(m.vertices)%m.componentsPerVertex != 0 {
		return fmt.Errorf("%w: %d components is not a multiple of %d", ErrInvalidVertexData, len(m.vertices), m.componentsPerVertex)
	}
	return nil
}

func (m *model) Name() string {
	return m.name
}

func (m *model) Vertices() []float32 {
	return m.vertices
}

func (m *model) VertexData() []byte {
	return common.SliceToBytes(m.vertices)
}

func (m *model) ComponentsPerVertex() int {
	return m.componentsPerVertex
}

func (m *model) VertexCount() uint32 {
	return uint32(len(m.vertices) / m.componentsPerVertex)
}

func (m *model) ByteSize() uint64 {
	return common.ByteLength(m.vertices)
}

func (m *model) Stride() uint64 {
	return uint64(m.componentsPerVertex) * common.Float32Size
}

func (m *model) VertexBuffer() *wgpu.Buffer {
	return m.vertexBuffer
}

func (m *model) SetVertexBuffer(buf *wgpu.Buffer) {
	m.vertexBuffer = buf
}

func (m *model) Release() {
	if m.vertexBuffer != nil {
		m.vertexBuffer.Release()
		m.vertexBuffer = nil
	}
}
