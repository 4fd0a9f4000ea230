package tui

import (
	"io"

	"github.com/goliatone/go-tourforms/internal/logger"
)

// OutputFormat controls how a saved record is printed.
type OutputFormat string

const (
	// OutputFormatJSON prints the record as indented JSON.
	OutputFormatJSON OutputFormat = "json"
	// OutputFormatPrettyText prints "Label: value" lines.
	OutputFormatPrettyText OutputFormat = "pretty"
)

// Theme captures message prefixes. Keep it minimal so console logic does not
// depend on ANSI specifics.
type Theme struct {
	InfoPrefix  string
	ErrorPrefix string
}

// AddNewLabel is what the sentinel option reads like in menus.
const AddNewLabel = "+ Add New"

// Option configures the console.
type Option func(*Renderer)

// WithPromptDriver overrides the prompt driver.
func WithPromptDriver(driver PromptDriver) Option {
	return func(r *Renderer) {
		if driver != nil {
			r.driver = driver
		}
	}
}

// WithOutputFormat selects how the saved record is printed.
func WithOutputFormat(format OutputFormat) Option {
	return func(r *Renderer) {
		if format != "" {
			r.outputFormat = format
		}
	}
}

// WithOutput sets where the saved record is printed. Nil disables printing.
func WithOutput(w io.Writer) Option {
	return func(r *Renderer) {
		r.out = w
	}
}

// WithTheme applies message prefixes.
func WithTheme(theme Theme) Option {
	return func(r *Renderer) {
		r.theme = theme
	}
}

// WithLogger wires structured logging.
func WithLogger(l logger.Logger) Option {
	return func(r *Renderer) {
		if l != nil {
			r.logger = l
		}
	}
}
