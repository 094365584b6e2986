package shader

import (
	"fmt"

	"github.com/gogpu/naga"
	"github.com/gogpu/naga/ir"
)

// compileModule parses, lowers and validates WGSL source into naga IR.
//
// Parameters:
//   - key: the shader key, used in error messages
//   - source: the WGSL source code
//
// Returns:
//   - *ir.Module: the validated IR module
//   - error: an error wrapping ErrCompile with the first diagnostic
func compileModule(key, source string) (*ir.Module, error) {
	ast, err := naga.Parse(source)
	if err != nil {
		return nil, fmt.Errorf("%w: shader %s: %w", ErrCompile, key, err)
	}

	module, err := naga.LowerWithSource(ast, source)
	if err != nil {
		return nil, fmt.Errorf("%w: shader %s: lower: %w", ErrCompile, key, err)
	}

	validationErrors, err := naga.Validate(module)
	if err != nil {
		return nil, fmt.Errorf("%w: shader %s: validate: %w", ErrCompile, key, err)
	}
	if len(validationErrors) > 0 {
		return nil, fmt.Errorf("%w: shader %s: %s", ErrCompile, key, validationErrors[0].Error())
	}

	return module, nil
}

// compileSPIRV compiles WGSL source to a SPIR-V binary.
func compileSPIRV(key, source string, validate bool) ([]byte, error) {
	opts := naga.DefaultOptions()
	opts.Validate = validate
	out, err := naga.CompileWithOptions(source, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: shader %s: spirv: %w", ErrCompile, key, err)
	}
	return out, nil
}

// entryPointsFromIR maps each render stage to the first entry point declared for it.
// Compute entry points are ignored.
func entryPointsFromIR(module *ir.Module) map[ShaderType]string {
	entryPoints := make(map[ShaderType]string, 2)
	for _, ep := range module.EntryPoints {
		stage, ok := shaderTypeFromStage(ep.Stage)
		if !ok {
			continue
		}
		if _, exists := entryPoints[stage]; !exists {
			entryPoints[stage] = ep.Name
		}
	}
	return entryPoints
}

func shaderTypeFromStage(stage ir.ShaderStage) (ShaderType, bool) {
	switch stage {
	case ir.StageVertex:
		return ShaderTypeVertex, true
	case ir.StageFragment:
		return ShaderTypeFragment, true
	default:
		return 0, false
	}
}
