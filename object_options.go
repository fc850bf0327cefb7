package taskcore

import (
	"image/color"
	"time"

	"github.com/rs/zerolog"
)

// ObjectOption configures an Object or Composite at construction.
type ObjectOption func(*objectConfig)

type objectConfig struct {
	subject      string
	description  string
	id           string
	created      *time.Time
	modified     time.Time
	fg           *Color
	bg           *Color
	font         *Font
	icon         string
	selectedIcon string
	ordering     int
	status       Status

	publisher *Publisher
	ids       IDGenerator
	clock     Clock
	icons     *IconTable
	logger    zerolog.Logger

	children []*Composite
	expanded []string
}

func applyObjectOptions(opts []ObjectOption) objectConfig {
	cfg := objectConfig{
		status: StatusNew,
		ids:    UUIDGenerator{},
		clock:  time.Now,
		icons:  defaultIcons,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

func WithSubject(subject string) ObjectOption {
	return func(cfg *objectConfig) { cfg.subject = subject }
}

func WithDescription(description string) ObjectOption {
	return func(cfg *objectConfig) { cfg.description = description }
}

// WithID supplies the identifier instead of drawing one from the generator.
func WithID(id string) ObjectOption {
	return func(cfg *objectConfig) { cfg.id = id }
}

// WithCreationDateTime supplies the creation time instead of reading the clock.
func WithCreationDateTime(t time.Time) ObjectOption {
	return func(cfg *objectConfig) { cfg.created = &t }
}

// WithModificationDateTime supplies the modification time. Without it the
// modification time is unknown.
func WithModificationDateTime(t time.Time) ObjectOption {
	return func(cfg *objectConfig) { cfg.modified = t }
}

// WithForegroundColor accepts any color.Color; nil leaves the color unset.
func WithForegroundColor(c color.Color) ObjectOption {
	return func(cfg *objectConfig) { cfg.fg = ColorOf(c) }
}

// WithBackgroundColor accepts any color.Color; nil leaves the color unset.
func WithBackgroundColor(c color.Color) ObjectOption {
	return func(cfg *objectConfig) { cfg.bg = ColorOf(c) }
}

func WithFont(font *Font) ObjectOption {
	return func(cfg *objectConfig) { cfg.font = cloneFont(font) }
}

func WithIcon(icon string) ObjectOption {
	return func(cfg *objectConfig) { cfg.icon = icon }
}

func WithSelectedIcon(icon string) ObjectOption {
	return func(cfg *objectConfig) { cfg.selectedIcon = icon }
}

func WithOrdering(ordering int) ObjectOption {
	return func(cfg *objectConfig) { cfg.ordering = ordering }
}

// WithStatus overrides the initial StatusNew.
func WithStatus(status Status) ObjectOption {
	return func(cfg *objectConfig) { cfg.status = status }
}

// WithPublisher attaches the event bus notifications are sent to. Objects
// without a publisher change silently.
func WithPublisher(publisher *Publisher) ObjectOption {
	return func(cfg *objectConfig) { cfg.publisher = publisher }
}

// WithIDGenerator replaces the default UUID generator.
func WithIDGenerator(ids IDGenerator) ObjectOption {
	return func(cfg *objectConfig) {
		if ids != nil {
			cfg.ids = ids
		}
	}
}

// WithClock replaces time.Now for creation timestamps.
func WithClock(clock Clock) ObjectOption {
	return func(cfg *objectConfig) {
		if clock != nil {
			cfg.clock = clock
		}
	}
}

// WithIconTable replaces the built-in singular/plural icon pairs.
func WithIconTable(icons *IconTable) ObjectOption {
	return func(cfg *objectConfig) {
		if icons != nil {
			cfg.icons = icons
		}
	}
}

func WithLogger(logger zerolog.Logger) ObjectOption {
	return func(cfg *objectConfig) { cfg.logger = logger }
}

// WithChildren attaches children at construction without notifying. It only
// applies to composites.
func WithChildren(children ...*Composite) ObjectOption {
	return func(cfg *objectConfig) {
		cfg.children = append(cfg.children, children...)
	}
}

// WithExpandedContexts marks contexts as expanded. It only applies to
// composites.
func WithExpandedContexts(contexts ...string) ObjectOption {
	return func(cfg *objectConfig) {
		cfg.expanded = append(cfg.expanded, contexts...)
	}
}
