package window

import (
	"github.com/Carmen-Shannon/oxy-triangle/common"
	"go.uber.org/zap"
)

// WindowBuilderOption is a functional option for configuring an engineWindow.
// Use the With* functions to create options.
type WindowBuilderOption func(w *engineWindow)

// WithTitle sets the window title displayed in the title bar. An empty title keeps the default.
//
// Parameters:
//   - title: the window title text
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithTitle(title string) WindowBuilderOption {
	return func(w *engineWindow) {
		w.title = common.Coalesce(title, w.title)
	}
}

// WithWidth sets the requested window width.
//
// Parameters:
//   - width: width in screen coordinates
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithWidth(width int) WindowBuilderOption {
	return func(w *engineWindow) {
		w.width = width
	}
}

// WithHeight sets the requested window height.
//
// Parameters:
//   - height: height in screen coordinates
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithHeight(height int) WindowBuilderOption {
	return func(w *engineWindow) {
		w.height = height
	}
}

// WithResizable allows the user to resize the window.
func WithResizable(resizable bool) WindowBuilderOption {
	return func(w *engineWindow) {
		w.resizable = resizable
	}
}

// WithPollInterval sets how long, in seconds, the event pump blocks waiting for events before
// checking for cancellation. Non-positive values are ignored.
func WithPollInterval(seconds float64) WindowBuilderOption {
	return func(w *engineWindow) {
		if seconds > 0 {
			w.pollInterval = seconds
		}
	}
}

// WithLogger sets the logger for window lifecycle events.
func WithLogger(logger *zap.Logger) WindowBuilderOption {
	return func(w *engineWindow) {
		if logger != nil {
			w.logger = logger
		}
	}
}
