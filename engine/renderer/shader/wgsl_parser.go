package shader

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
)

// vertexFormats maps WGSL vertex input types, long and short spellings, to vertex formats.
var vertexFormats = func() map[string]vertexFormat {
	table := make(map[string]vertexFormat)
	add := func(format wgpu.VertexFormat, size uint64, names ...string) {
		for _, n := range names {
			table[n] = vertexFormat{format: format, size: size}
		}
	}

	add(wgpu.VertexFormatFloat32, 4, "f32")
	add(wgpu.VertexFormatFloat32x2, 8, "vec2<f32>", "vec2f")
	add(wgpu.VertexFormatFloat32x3, 12, "vec3<f32>", "vec3f")
	add(wgpu.VertexFormatFloat32x4, 16, "vec4<f32>", "vec4f")

	add(wgpu.VertexFormatSint32, 4, "i32")
	add(wgpu.VertexFormatSint32x2, 8, "vec2<i32>", "vec2i")
	add(wgpu.VertexFormatSint32x3, 12, "vec3<i32>", "vec3i")
	add(wgpu.VertexFormatSint32x4, 16, "vec4<i32>", "vec4i")

	add(wgpu.VertexFormatUint32, 4, "u32")
	add(wgpu.VertexFormatUint32x2, 8, "vec2<u32>", "vec2u")
	add(wgpu.VertexFormatUint32x3, 12, "vec3<u32>", "vec3u")
	add(wgpu.VertexFormatUint32x4, 16, "vec4<u32>", "vec4u")

	add(wgpu.VertexFormatFloat16x2, 4, "vec2<f16>", "vec2h")
	add(wgpu.VertexFormatFloat16x4, 8, "vec4<f16>", "vec4h")
	return table
}()

var (
	structRegex     = regexp.MustCompile(`struct\s+(\w+)\s*\{([^}]*)\}`)
	attributeRegex  = regexp.MustCompile(`@(\w+)\s*(?:\(([^)]*)\))?`)
	entryPointRegex = regexp.MustCompile(`(?s)@(vertex|fragment)\b.*?\bfn\s+(\w+)`)
)

// stageAttributes maps stage attribute names to shader types.
var stageAttributes = map[string]ShaderType{
	"vertex":   ShaderTypeVertex,
	"fragment": ShaderTypeFragment,
}

// parseVertexLayouts derives vertex buffer layouts from the parameters of the vertex entry point.
// Buffer slot 0 holds its @location parameters, if it has any; every parameter typed as a struct
// with @location members adds one more slot. Structs the entry point does not take are ignored.
// Inputs with types that have no vertex format are skipped.
//
// Parameters:
//   - source: the raw WGSL source code string
//   - vertexEntry: the vertex entry point whose parameters are inspected
//
// Returns:
//   - []wgpu.VertexBufferLayout: vertex layouts in buffer slot order
func parseVertexLayouts(source, vertexEntry string) []wgpu.VertexBufferLayout {
	cleaned := stripComments(source)
	params, ok := functionParams(cleaned, vertexEntry)
	if !ok {
		return nil
	}

	structs := make(map[string]wgslStruct)
	for _, st := range parseStructs(cleaned) {
		structs[st.name] = st
	}

	var direct []ioDecl
	var groups [][]ioDecl
	for _, p := range params {
		if p.vertexInput() {
			direct = append(direct, p)
			continue
		}
		if st, ok := structs[p.typeName]; ok && !p.builtin {
			groups = append(groups, st.vertexInputs())
		}
	}
	groups = append([][]ioDecl{direct}, groups...)

	var layouts []wgpu.VertexBufferLayout
	for _, inputs := range groups {
		if len(inputs) == 0 {
			continue
		}
		if layout, ok := vertexBufferLayout(inputs); ok {
			layouts = append(layouts, layout)
		}
	}
	return layouts
}

// parseEntryPoint returns the first function marked with the stage attribute of shaderType, or "".
func parseEntryPoint(source string, shaderType ShaderType) string {
	for _, m := range entryPointRegex.FindAllStringSubmatch(stripComments(source), -1) {
		if stage, ok := stageAttributes[m[1]]; ok && stage == shaderType {
			return m[2]
		}
	}
	return ""
}

// hasFunction reports whether the source declares a function with the given name.
func hasFunction(source, name string) bool {
	return functionHeader(name).MatchString(stripComments(source))
}

func functionHeader(name string) *regexp.Regexp {
	return regexp.MustCompile(`\bfn\s+` + regexp.QuoteMeta(name) + `\s*\(`)
}

// functionParams returns the parameters of the named function.
//
// Parameters:
//   - source: WGSL source without comments
//   - name: the function name
//
// Returns:
//   - []ioDecl: the parameters in declaration order
//   - bool: false if the function is not declared or its parameter list is not closed
func functionParams(source, name string) ([]ioDecl, bool) {
	if name == "" {
		return nil, false
	}
	loc := functionHeader(name).FindStringIndex(source)
	if loc == nil {
		return nil, false
	}

	open := 1
	for i := loc[1]; i < len(source); i++ {
		switch source[i] {
		case '(':
			open++
		case ')':
			if open--; open == 0 {
				return parseDecls(source[loc[1]:i]), true
			}
		}
	}
	return nil, false
}

// parseStructs returns every struct declaration in source.
func parseStructs(source string) []wgslStruct {
	var structs []wgslStruct
	for _, m := range structRegex.FindAllStringSubmatch(source, -1) {
		structs = append(structs, wgslStruct{name: m[1], members: parseDecls(m[2])})
	}
	return structs
}

// parseDecls parses a comma separated member or parameter list.
func parseDecls(list string) []ioDecl {
	var decls []ioDecl
	for _, part := range splitTopLevel(list) {
		if d, ok := parseDecl(part); ok {
			decls = append(decls, d)
		}
	}
	return decls
}

// parseDecl parses one "@attr(...) name: type" declaration.
//
// Parameters:
//   - text: a single declaration without the separating comma
//
// Returns:
//   - ioDecl: the declaration with @location and @builtin resolved
//   - bool: false if text is not a name: type pair
func parseDecl(text string) (ioDecl, bool) {
	d := ioDecl{location: -1}
	for _, attr := range attributeRegex.FindAllStringSubmatch(text, -1) {
		switch attr[1] {
		case "location":
			if n, err := strconv.Atoi(strings.TrimSpace(attr[2])); err == nil {
				d.location = n
			}
		case "builtin":
			d.builtin = true
		}
	}

	name, typeName, ok := strings.Cut(attributeRegex.ReplaceAllString(text, ""), ":")
	if !ok {
		return ioDecl{}, false
	}
	d.name = strings.TrimSpace(name)
	d.typeName = strings.TrimSpace(typeName)
	if d.name == "" || d.typeName == "" {
		return ioDecl{}, false
	}
	return d, true
}
