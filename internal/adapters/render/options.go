package render

import "github.com/okian/challengeboard/internal/domain/measure"

// Option applies a configuration option to the BarRenderer.
type Option func(*BarRenderer)

// WithSize sets the image size in pixels.
func WithSize(width, height int) Option {
	return func(r *BarRenderer) {
		if width > 0 && height > 0 {
			r.width = width
			r.height = height
		}
	}
}

// WithKind titles the chart and the value axis after the measurement kind.
// A later WithTitle replaces the heading but keeps the unit.
func WithKind(kind measure.Kind) Option {
	return func(r *BarRenderer) {
		if kind != nil {
			if r.heading == "" || r.heading == defaultHeading {
				r.heading = kind.Title()
			}
			r.unit = kind.Unit()
		}
	}
}

// WithTitle sets the chart heading, normally the configured challenge title.
func WithTitle(title string) Option {
	return func(r *BarRenderer) {
		if title != "" {
			r.heading = title
		}
	}
}
