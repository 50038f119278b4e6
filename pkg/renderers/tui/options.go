package tui

import (
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-authwidget/pkg/popup"
)

// Theme captures optional message prefixes.
type Theme struct {
	InfoPrefix  string
	ErrorPrefix string
}

// Option configures the TUI renderer.
type Option func(*Renderer)

// WithPromptDriver overrides the prompt driver used by the renderer.
func WithPromptDriver(driver PromptDriver) Option {
	return func(r *Renderer) {
		if driver != nil {
			r.driver = driver
		}
	}
}

// WithScreen fixes the screen size instead of prompting for it.
func WithScreen(screen popup.Screen) Option {
	return func(r *Renderer) {
		r.screen = screen
	}
}

// WithWaitTimeout bounds how long the session waits for the provider.
func WithWaitTimeout(timeout time.Duration) Option {
	return func(r *Renderer) {
		if timeout > 0 {
			r.waitTimeout = timeout
		}
	}
}

// WithLabels overrides the status caption and the button label.
func WithLabels(status, button string) Option {
	return func(r *Renderer) {
		if status != "" {
			r.statusLabel = status
		}
		if button != "" {
			r.buttonLabel = button
		}
	}
}

// WithTheme applies optional message prefixes.
func WithTheme(theme Theme) Option {
	return func(r *Renderer) {
		r.theme = theme
	}
}

// WithLogger sets the session logger.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Renderer) {
		if logger != nil {
			r.log = logger
		}
	}
}
