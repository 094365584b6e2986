package shader

import "go.uber.org/zap"

// ShaderBuilderOption is a functional option for configuring a Shader.
type ShaderBuilderOption func(*shader)

// WithValidation toggles full WGSL validation at creation time. When disabled, entry points
// are discovered from the @vertex and @fragment attributes in the source text.
//
// Parameters:
//   - validate: true to parse, lower and validate the program
//
// Returns:
//   - ShaderBuilderOption: a function that applies the validation setting to a shader
func WithValidation(validate bool) ShaderBuilderOption {
	return func(s *shader) {
		s.validate = validate
	}
}

// WithEntryPoint overrides the discovered entry point for a stage. An empty name keeps the
// discovered one.
//
// Parameters:
//   - stage: ShaderTypeVertex or ShaderTypeFragment
//   - name: the function name to use as that stage's entry point
//
// Returns:
//   - ShaderBuilderOption: a function that applies the override to a shader
func WithEntryPoint(stage ShaderType, name string) ShaderBuilderOption {
	return func(s *shader) {
		if name == "" {
			return
		}
		s.overrides[stage] = name
	}
}

// WithLogger sets the logger used to report compile results.
func WithLogger(logger *zap.Logger) ShaderBuilderOption {
	return func(s *shader) {
		if logger != nil {
			s.logger = logger
		}
	}
}
