package window

import (
	"context"
	"errors"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"go.uber.org/zap"
)

// ErrNotInitialized is returned by operations on a window whose platform window was never created
// or was already closed.
var ErrNotInitialized = errors.New("window is not initialized")

// Window provides the drawable canvas a renderer presents to and the OS event pump that keeps
// it responsive. Wraps platform-specific window implementations with a common interface.
type Window interface {
	// Title returns the title shown in the title bar.
	Title() string

	// SurfaceDescriptor returns a wgpu.SurfaceDescriptor suitable for creating a WebGPU surface.
	// The descriptor is platform-appropriate (Windows HWND, X11 Xlib, Wayland, macOS Metal, etc.)
	// and is created by the wgpuglfw bridge from the underlying GLFW window.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the platform-specific surface descriptor, or nil if window is not initialized
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// IsRunning returns true if the window is still open.
	//
	// Returns:
	//   - bool: true if window is running, false if closed
	IsRunning() bool

	// Close destroys the window and releases platform resources.
	//
	// Returns:
	//   - error: ErrNotInitialized if there is no platform window
	Close() error

	// ProcessMessages pumps OS events until the window is closed, Escape is pressed or ctx is
	// cancelled. Nothing is redrawn while it runs.
	//
	// Parameters:
	//   - ctx: cancelling ctx stops the pump
	//
	// Returns:
	//   - error: ctx.Err() if the pump stopped because of ctx, nil otherwise
	ProcessMessages(ctx context.Context) error

	// Width returns the framebuffer width in pixels.
	//
	// Returns:
	//   - int: width in pixels
	Width() int

	// Height returns the framebuffer height in pixels.
	//
	// Returns:
	//   - int: height in pixels
	Height() int
}

// engineWindow is the implementation of the Window interface.
// Holds window configuration and the GLFW state.
type engineWindow struct {
	// title is the window title displayed in the title bar.
	title string

	// width and height are the framebuffer size in pixels once the window exists,
	// the requested size before.
	width  int
	height int

	// resizable controls whether the user can resize the window. The surface is configured once,
	// so the default is false.
	resizable bool

	// pollInterval is how long one pump iteration waits for events, in seconds.
	pollInterval float64

	// internalWindow holds the platform-specific window data (glfwWindow).
	internalWindow any

	logger *zap.Logger
}

var _ Window = &engineWindow{}

// NewWindow creates and shows a new Window with the specified options.
// Applies default values first, then each option in order.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the visible window
//   - error: an error if the platform window could not be created
func NewWindow(options ...WindowBuilderOption) (Window, error) {
	w := newEngineWindow(options...)
	if w.width <= 0 || w.height <= 0 {
		return nil, fmt.Errorf("invalid window size %dx%d", w.width, w.height)
	}
	if err := newPlatformWindow(w); err != nil {
		return nil, fmt.Errorf("create platform window: %w", err)
	}
	w.logger.Info("window created",
		zap.String("title", w.title),
		zap.Int("framebuffer_width", w.width),
		zap.Int("framebuffer_height", w.height),
	)
	return w, nil
}

func newEngineWindow(options ...WindowBuilderOption) *engineWindow {
	w := &engineWindow{
		title:        "Triangle",
		width:        640,
		height:       480,
		pollInterval: 0.1,
		logger:       zap.NewNop(),
	}
	for _, opt := range options {
		opt(w)
	}
	return w
}

func (w *engineWindow) Title() string {
	return w.title
}

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return platformGetSurfaceDescriptor(w)
}

func (w *engineWindow) IsRunning() bool {
	return platformIsRunningCheck(w)
}

func (w *engineWindow) Close() error {
	if err := platformCloseWindow(w); err != nil {
		return err
	}
	w.internalWindow = nil
	w.logger.Debug("window closed")
	return nil
}

func (w *engineWindow) ProcessMessages(ctx context.Context) error {
	for w.IsRunning() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if !platformProcessMessages(w) {
			break
		}
	}
	return nil
}

func (w *engineWindow) Width() int {
	return w.width
}

func (w *engineWindow) Height() int {
	return w.height
}
