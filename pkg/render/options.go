package render

import (
	"strings"

	"github.com/goliatone/go-metaform/pkg/form"
	"github.com/goliatone/go-metaform/pkg/validation"
	"github.com/goliatone/go-metaform/pkg/widgets"
)

// DefaultRef is the top-level node rendered when the location carries no ref.
const DefaultRef = "_"

// Config is the explicit rendering configuration threaded through every
// recursive call. Zero thresholds fall back to the document's `_options` and
// then to meta.DefaultSelectThreshold.
type Config struct {
	UniSelectThreshold   int
	MultiSelectThreshold int
	DefaultRef           string
}

// Option customises a Renderer.
type Option func(*settings)

type settings struct {
	config     Config
	widgets    *widgets.Registry
	validators *validation.Registry
	controller *form.Controller
	hidden     map[string]string
}

// WithConfig replaces the whole configuration record.
func WithConfig(cfg Config) Option {
	return func(s *settings) {
		s.config = cfg
	}
}

// WithUniSelectThreshold sets the item count above which single choices
// render as a dropdown.
func WithUniSelectThreshold(n int) Option {
	return func(s *settings) {
		s.config.UniSelectThreshold = n
	}
}

// WithMultiSelectThreshold sets the item count above which multi choices
// render as a multi-select dropdown.
func WithMultiSelectThreshold(n int) Option {
	return func(s *settings) {
		s.config.MultiSelectThreshold = n
	}
}

// WithDefaultRef overrides the ref used when the location has none.
func WithDefaultRef(ref string) Option {
	return func(s *settings) {
		if trimmed := strings.TrimSpace(ref); trimmed != "" {
			s.config.DefaultRef = trimmed
		}
	}
}

// WithWidgets swaps the widget registry used for choice nodes.
func WithWidgets(reg *widgets.Registry) Option {
	return func(s *settings) {
		if reg != nil {
			s.widgets = reg
		}
	}
}

// WithValidators swaps the registry resolving field check references.
func WithValidators(reg *validation.Registry) Option {
	return func(s *settings) {
		if reg != nil {
			s.validators = reg
		}
	}
}

// WithController swaps the controller attached to rendered forms.
func WithController(controller *form.Controller) Option {
	return func(s *settings) {
		if controller != nil {
			s.controller = controller
		}
	}
}
