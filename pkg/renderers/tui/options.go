package tui

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-clinicform/pkg/render"
)

// OutputFormat controls what Render returns once the fill is done.
type OutputFormat string

const (
	// OutputFormatJSON emits the answers as a JSON object.
	OutputFormatJSON OutputFormat = "json"
	// OutputFormatPrettyText emits the paginated text transcript.
	OutputFormatPrettyText OutputFormat = "pretty"
)

// Theme captures the prefixes printed in front of informational lines.
type Theme struct {
	SectionPrefix string
	InfoPrefix    string
	ErrorPrefix   string
}

// DefaultTheme is used when WithTheme is not given.
var DefaultTheme = Theme{
	SectionPrefix: "== ",
	InfoPrefix:    "  ",
	ErrorPrefix:   "  ! ",
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

// WithOutputFormat selects the output serialization format.
func WithOutputFormat(format OutputFormat) Option {
	return func(r *Renderer) {
		if format != "" {
			r.outputFormat = format
		}
	}
}

// WithTheme applies message prefixes.
func WithTheme(theme Theme) Option {
	return func(r *Renderer) {
		r.theme = theme
	}
}

// WithTranslator sets the chrome catalog and locale of prompts.
func WithTranslator(t render.Translator, locale string) Option {
	return func(r *Renderer) {
		r.translator = t
		if locale != "" {
			r.locale = locale
		}
	}
}

// WithLocation sets the time zone used for date defaults.
func WithLocation(loc *time.Location) Option {
	return func(r *Renderer) {
		if loc != nil {
			r.loc = loc
		}
	}
}

// WithLogger sets the logger handed to the sessions Render creates.
func WithLogger(logger zerolog.Logger) Option {
	return func(r *Renderer) {
		r.logger = logger
	}
}
