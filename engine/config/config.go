// Package config loads the YAML run configuration: window, renderer, scene, shader and log settings.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Carmen-Shannon/oxy-triangle/common"
	"github.com/Carmen-Shannon/oxy-triangle/engine/model"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig wraps every validation failure reported by Validate.
var ErrInvalidConfig = errors.New("invalid configuration")

const (
	PresentModeVSync    = "vsync"
	PresentModeUncapped = "uncapped"

	PowerPreferenceLow  = "low"
	PowerPreferenceHigh = "high"
)

// Config is the full run configuration.
type Config struct {
	Window   WindowConfig   `yaml:"window"`
	Renderer RendererConfig `yaml:"renderer"`
	Scene    SceneConfig    `yaml:"scene"`
	Shader   ShaderConfig   `yaml:"shader"`
	Log      LogConfig      `yaml:"log"`

	// Once exits right after the frame is presented instead of waiting for the window to close.
	Once bool `yaml:"once"`
}

type WindowConfig struct {
	Title  string `yaml:"title"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

type RendererConfig struct {
	// PresentMode is "vsync" or "uncapped".
	PresentMode          string `yaml:"present_mode"`
	ForceFallbackAdapter bool   `yaml:"force_fallback_adapter"`
	// PowerPreference is "low", "high" or empty for the implementation default.
	PowerPreference string `yaml:"power_preference"`
}

type SceneConfig struct {
	// ClearColor is RGBA in [0, 1].
	ClearColor          []float64 `yaml:"clear_color"`
	Vertices            []float32 `yaml:"vertices"`
	ComponentsPerVertex int       `yaml:"components_per_vertex"`

	// ShaderPath points to a WGSL file. Empty uses the built-in program.
	ShaderPath string `yaml:"shader_path"`
	// VertexEntry and FragmentEntry override the entry points found in the program.
	VertexEntry   string `yaml:"vertex_entry"`
	FragmentEntry string `yaml:"fragment_entry"`

	Labels LabelConfig `yaml:"labels"`
}

// LabelConfig names the GPU objects, as shown by graphics debuggers.
type LabelConfig struct {
	Buffer   string `yaml:"buffer"`
	Shader   string `yaml:"shader"`
	Pipeline string `yaml:"pipeline"`
}

type ShaderConfig struct {
	// Validate runs full WGSL validation before the program reaches the driver.
	Validate bool `yaml:"validate"`
	// SPIRVOut, when set, receives a SPIR-V build of the program.
	SPIRVOut string `yaml:"spirv_out"`
}

type LogConfig struct {
	Level       string `yaml:"level"`
	Environment string `yaml:"environment"`
}

// Default returns the configuration of the stock triangle: a 640x480 window, the built-in program,
// three 2D vertices and a light blue clear color.
func Default() *Config {
	vertices := make([]float32, len(model.TriangleVertices))
	copy(vertices, model.TriangleVertices)

	c := common.DefaultClearColor
	return &Config{
		Window: WindowConfig{
			Title:  "WebGPU Triangle",
			Width:  640,
			Height: 480,
		},
		Renderer: RendererConfig{
			PresentMode: PresentModeVSync,
		},
		Scene: SceneConfig{
			ClearColor:          []float64{c.R, c.G, c.B, c.A},
			Vertices:            vertices,
			ComponentsPerVertex: 2,
			Labels: LabelConfig{
				Buffer:   "Triangle Vertices",
				Shader:   "Triangle Shader",
				Pipeline: "Triangle Pipeline",
			},
		},
		Shader: ShaderConfig{
			Validate: true,
		},
		Log: LogConfig{
			Level:       "info",
			Environment: "development",
		},
	}
}

// Load reads a YAML file over the defaults and validates the result. Keys missing from the file
// keep their default values; unknown keys are an error.
//
// Parameters:
//   - path: the YAML file path
//
// Returns:
//   - *Config: the merged configuration
//   - error: a read, decode or validation error
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %q: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config %q: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every problem in the configuration at once.
//
// Returns:
//   - error: nil, or an error wrapping ErrInvalidConfig and listing each problem
func (c *Config) Validate() error {
	var errs []error

	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window size must be positive, got %dx%d", c.Window.Width, c.Window.Height))
	}

	switch c.Renderer.PresentMode {
	case PresentModeVSync, PresentModeUncapped:
	default:
		errs = append(errs, fmt.Errorf("unknown present_mode %q", c.Renderer.PresentMode))
	}
	switch c.Renderer.PowerPreference {
	case "", PowerPreferenceLow, PowerPreferenceHigh:
	default:
		errs = append(errs, fmt.Errorf("unknown power_preference %q", c.Renderer.PowerPreference))
	}

	if color, err := c.ClearColor(); err != nil {
		errs = append(errs, err)
	} else if !color.Valid() {
		errs = append(errs, fmt.Errorf("clear_color components must be in [0, 1], got %s", color))
	}

	n := c.Scene.ComponentsPerVertex
	switch {
	case !common.InRange(n, 1, 4):
		errs = append(errs, fmt.Errorf("components_per_vertex must be in 1..4, got %d", n))
	case len(c.Scene.Vertices) == 0:
		errs = append(errs, errors.New("vertices must not be empty"))
	case len(c.Scene.Vertices)%n != 0:
		errs = append(errs, fmt.Errorf("%d vertex components do not split into vertices of %d", len(c.Scene.Vertices), n))
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
}

// ClearColor decodes Scene.ClearColor.
func (c *Config) ClearColor() (common.Color, error) {
	return common.ColorFromSlice(c.Scene.ClearColor)
}
