package shader

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gogpu/naga/ir"
	"go.uber.org/zap"
)

// TriangleSource is the built-in WGSL program. The vertex stage forwards a vec2 position at
// location 0 as a clip-space position and the fragment stage writes opaque red.
//
//go:embed triangle.wgsl
var TriangleSource string

// ErrCompile is returned when WGSL source cannot be parsed, lowered or validated, or when a
// requested entry point does not exist in the source.
var ErrCompile = errors.New("shader compile failed")

// ShaderType identifies the pipeline stage an entry point belongs to.
type ShaderType int

const (
	// ShaderTypeVertex is the vertex shader type, used for vertex processing in render pipelines.
	ShaderTypeVertex ShaderType = iota

	// ShaderTypeFragment is the fragment shader type, used for fragment processing in pair with a vertex shader.
	ShaderTypeFragment
)

func (t ShaderType) String() string {
	switch t {
	case ShaderTypeVertex:
		return "vertex"
	case ShaderTypeFragment:
		return "fragment"
	default:
		return fmt.Sprintf("ShaderType(%d)", int(t))
	}
}

// shader is the implementation of the Shader interface.
// It holds all of the persistent shader data required for pipeline creation.
type shader struct {
	key           string
	source        string
	entryPoints   map[ShaderType]string
	overrides     map[ShaderType]string
	vertexLayouts []wgpu.VertexBufferLayout
	module        *wgpu.ShaderModuleDescriptor
	validate      bool
	validated     bool

	logger *zap.Logger
}

// Shader defines the interface for a loaded and compiled WGSL program. It exposes the program's
// unique key, source code, per-stage entry points and the vertex buffer layouts needed for
// render pipeline creation.
type Shader interface {
	// Key retrieves the unique identifier for this shader, used for caching and lookups.
	//
	// Returns:
	//   - string: the shader's unique key
	Key() string

	// Source retrieves the WGSL shader source code.
	//
	// Returns:
	//   - string: the WGSL source code of the shader
	Source() string

	// EntryPoint returns the entry point name for the given stage.
	//
	// Parameters:
	//   - stage: ShaderTypeVertex or ShaderTypeFragment
	//
	// Returns:
	//   - string: the entry point name, or an empty string if the program has no such stage
	EntryPoint(stage ShaderType) string

	// HasStage reports whether the program declares an entry point for the given stage.
	HasStage(stage ShaderType) bool

	// VertexLayouts retrieves the vertex buffer layouts consumed by the vertex entry point,
	// in buffer slot order.
	//
	// Returns:
	//   - []wgpu.VertexBufferLayout: the vertex buffer layouts, or nil for fragment-only programs
	VertexLayouts() []wgpu.VertexBufferLayout

	// Module returns the wgpu.ShaderModuleDescriptor for this shader, which is built from the NewShader function.
	//
	// Returns:
	//   - *wgpu.ShaderModuleDescriptor: the shader module descriptor containing the WGSL code and label
	Module() *wgpu.ShaderModuleDescriptor

	// Validated reports whether the source passed full WGSL validation when the shader was created.
	Validated() bool

	// CompileSPIRV compiles the source to a SPIR-V binary.
	//
	// Returns:
	//   - []byte: the SPIR-V words in little-endian byte order
	//   - error: an error wrapping ErrCompile if compilation fails
	CompileSPIRV() ([]byte, error)
}

var _ Shader = &shader{}

// NewShader creates a new Shader from WGSL source with all specified options applied.
// The source is compiled to check it, entry points are discovered per stage, and the vertex
// buffer layouts are parsed from the vertex entry point.
//
// Parameters:
//   - key: a unique identifier for the shader, used for caching and as the module label
//   - source: the WGSL source code
//   - options: functional options such as WithValidation and WithEntryPoint
//
// Returns:
//   - Shader: the compiled shader
//   - error: an error wrapping ErrCompile if the source is empty, invalid, or an entry point is missing
func NewShader(key string, source string, options ...ShaderBuilderOption) (Shader, error) {
	s := &shader{
		key:         key,
		source:      source,
		entryPoints: make(map[ShaderType]string),
		overrides:   make(map[ShaderType]string),
		validate:    true,
		logger:      zap.NewNop(),
	}
	for _, opt := range options {
		opt(s)
	}

	if err := s.build(); err != nil {
		return nil, err
	}
	return s, nil
}

// NewShaderFromPath reads WGSL source from a file and creates a Shader from it.
//
// Parameters:
//   - key: a unique identifier for the shader
//   - path: the file path to read WGSL source from
//   - options: functional options passed to NewShader
//
// Returns:
//   - Shader: the compiled shader
//   - error: an error if the file cannot be read or the source does not compile
func NewShaderFromPath(key string, path string, options ...ShaderBuilderOption) (Shader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("shader %s: read source %q: %w", key, path, err)
	}
	return NewShader(key, string(data), options...)
}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) EntryPoint(stage ShaderType) string {
	return s.entryPoints[stage]
}

func (s *shader) HasStage(stage ShaderType) bool {
	return s.entryPoints[stage] != ""
}

func (s *shader) VertexLayouts() []wgpu.VertexBufferLayout {
	return s.vertexLayouts
}

func (s *shader) Module() *wgpu.ShaderModuleDescriptor {
	return s.module
}

func (s *shader) Validated() bool {
	return s.validated
}

func (s *shader) CompileSPIRV() ([]byte, error) {
	return compileSPIRV(s.key, s.source, s.validate)
}

// build compiles the source, resolves the entry point for each stage, parses the vertex
// buffer layouts and builds the shader module descriptor.
func (s *shader) build() error {
	if s.source == "" {
		return fmt.Errorf("%w: shader %s: empty source", ErrCompile, s.key)
	}

	var module *ir.Module
	if s.validate {
		var err error
		if module, err = compileModule(s.key, s.source); err != nil {
			return err
		}
		s.entryPoints = entryPointsFromIR(module)
		s.validated = true
	} else {
		for _, stage := range []ShaderType{ShaderTypeVertex, ShaderTypeFragment} {
			if name := parseEntryPoint(s.source, stage); name != "" {
				s.entryPoints[stage] = name
			}
		}
	}

	for stage, name := range s.overrides {
		if !s.declaresEntryPoint(module, stage, name) {
			return fmt.Errorf("%w: shader %s: %s entry point %q not found", ErrCompile, s.key, stage, name)
		}
		s.entryPoints[stage] = name
	}

	if vs := s.entryPoints[ShaderTypeVertex]; vs != "" {
		s.vertexLayouts = parseVertexLayouts(s.source, vs)
	}

	s.module = &wgpu.ShaderModuleDescriptor{
		Label: s.key,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: s.source,
		},
	}

	s.logger.Debug("shader compiled",
		zap.String("key", s.key),
		zap.Bool("validated", s.validated),
		zap.String("vertex_entry", s.entryPoints[ShaderTypeVertex]),
		zap.String("fragment_entry", s.entryPoints[ShaderTypeFragment]),
		zap.Int("vertex_layouts", len(s.vertexLayouts)),
	)
	return nil
}

// declaresEntryPoint checks an entry point override against the source. With a validated module
// the name must be an entry point of the same stage; otherwise a function of that name is enough.
func (s *shader) declaresEntryPoint(module *ir.Module, stage ShaderType, name string) bool {
	if module == nil {
		return hasFunction(s.source, name)
	}
	for _, ep := range module.EntryPoints {
		if ep.Name == name {
			st, ok := shaderTypeFromStage(ep.Stage)
			return ok && st == stage
		}
	}
	return false
}
