package model

// ModelBuilderOption is a functional option for configuring a Model via NewModel.
type ModelBuilderOption func(*model)

// WithName is an option builder that sets the name of the Model.
//
// Parameters:
//   - name: the model identifier
//
// Returns:
//   - ModelBuilderOption: a function that applies the name option to a model
func WithName(name string) ModelBuilderOption {
	return func(m *model) {
		m.name = name
	}
}

// WithVertices is an option builder that sets the flat vertex component array.
// The model keeps its own copy.
//
// Parameters:
//   - vertices: the vertex components, ComponentsPerVertex floats per vertex
//
// Returns:
//   - ModelBuilderOption: a function that applies the vertices option to a model
func WithVertices(vertices []float32) ModelBuilderOption {
	return func(m *model) {
		m.vertices = append([]float32(nil), vertices...)
	}
}

// WithComponentsPerVertex is an option builder that sets how many float components form one vertex.
//
// Parameters:
//   - n: components per vertex, between 1 and 4
//
// Returns:
//   - ModelBuilderOption: a function that applies the components option to a model
func WithComponentsPerVertex(n int) ModelBuilderOption {
	return func(m *model) {
		m.componentsPerVertex = n
	}
}
