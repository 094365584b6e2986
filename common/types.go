// package common contains common types that are used throughout this module. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// Color is a linear RGBA color with components in the [0, 1] range.
type Color struct {
	R, G, B, A float64
}

// DefaultClearColor is the light blue the render pass clears the surface to when no other color is configured.
var DefaultClearColor = Color{R: 0.6, G: 0.8, B: 0.9, A: 1.0}

// ColorFromSlice builds a Color from a 4-element slice in RGBA order.
//
// Parameters:
//   - rgba: exactly four components
//
// Returns:
//   - Color: the decoded color
//   - error: an error if the slice does not have four components
func ColorFromSlice(rgba []float64) (Color, error) {
	if len(rgba) != 4 {
		return Color{}, fmt.Errorf("color must have 4 components, got %d", len(rgba))
	}
	return Color{R: rgba[0], G: rgba[1], B: rgba[2], A: rgba[3]}, nil
}

// Valid reports whether every component lies in [0, 1].
func (c Color) Valid() bool {
	return InRange(c.R, 0, 1) && InRange(c.G, 0, 1) && InRange(c.B, 0, 1) && InRange(c.A, 0, 1)
}

// ToWGPU converts the color to the wgpu clear value representation.
func (c Color) ToWGPU() wgpu.Color {
	return wgpu.Color{R: c.R, G: c.G, B: c.B, A: c.A}
}

func (c Color) String() string {
	return fmt.Sprintf("rgba(%.2f, %.2f, %.2f, %.2f)", c.R, c.G, c.B, c.A)
}
