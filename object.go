package taskcore

import (
	"image/color"
	"time"

	"github.com/rs/zerolog"
)

// Item is the contract shared by every entity a Collection holds.
type Item interface {
	ID() string
	Kind() Kind
	Subject() string
	Description() string
	Ordering() int
	CreationDateTime() time.Time
	ModificationDateTime() time.Time
	SetModificationDateTime(time.Time)
	Status() Status
	GetState() State
	SetState(State)
	MarkDeleted()
	MarkNew()
	MarkDirty(force bool)
	CleanDirty()
}

// Object carries identity, attributes and sync status. Every setter notifies
// observers exactly once when the value changes and never when it does not.
// Objects compare by reference.
type Object struct {
	Synchronized

	kind         Kind
	id           string
	subject      string
	description  string
	created      time.Time
	modified     time.Time
	fg           *Color
	bg           *Color
	font         *Font
	icon         string
	selectedIcon string
	ordering     int

	publisher *Publisher
	ids       IDGenerator
	clock     Clock
	icons     *IconTable
	logger    zerolog.Logger

	// self is the outermost value embedding this Object. It is the source of
	// every entry the object reports and where cascades are looked up.
	self Item
}

var _ Item = (*Object)(nil)

// NewObject constructs a leaf entity of kind. All attributes are optional:
// the id comes from the generator, the creation time from the clock, the
// modification time is unknown and the status is StatusNew.
func NewObject(kind Kind, opts ...ObjectOption) *Object {
	o := &Object{}
	o.init(kind, applyObjectOptions(opts), o)
	return o
}

func (o *Object) init(kind Kind, cfg objectConfig, self Item) {
	o.kind = kind
	o.self = self
	o.publisher = cfg.publisher
	o.ids = cfg.ids
	o.clock = cfg.clock
	o.icons = cfg.icons
	o.logger = cfg.logger

	o.id = cfg.id
	if o.id == "" {
		o.id = o.ids.NewID()
	}
	if cfg.created != nil {
		o.created = *cfg.created
	} else {
		o.created = o.clock()
	}
	o.modified = cfg.modified
	o.subject = cfg.subject
	o.description = cfg.description
	o.fg = cloneColor(cfg.fg)
	o.bg = cloneColor(cfg.bg)
	o.font = cloneFont(cfg.font)
	o.icon = cfg.icon
	o.selectedIcon = cfg.selectedIcon
	o.ordering = cfg.ordering
	o.status = cfg.status
}

func (o *Object) ID() string                      { return o.id }
func (o *Object) Kind() Kind                      { return o.kind }
func (o *Object) Subject() string                 { return o.subject }
func (o *Object) Description() string             { return o.description }
func (o *Object) Ordering() int                   { return o.ordering }
func (o *Object) Icon() string                    { return o.icon }
func (o *Object) SelectedIcon() string            { return o.selectedIcon }
func (o *Object) CreationDateTime() time.Time     { return o.created }
func (o *Object) ModificationDateTime() time.Time { return o.modified }
func (o *Object) ForegroundColor() *Color         { return cloneColor(o.fg) }
func (o *Object) BackgroundColor() *Color         { return cloneColor(o.bg) }
func (o *Object) Font() *Font                     { return cloneFont(o.font) }

// Publisher returns the bus the object notifies, possibly nil.
func (o *Object) Publisher() *Publisher { return o.publisher }

// Appearance returns the object's own visual attributes.
func (o *Object) Appearance() Appearance {
	return Appearance{
		ForegroundColor: cloneColor(o.fg),
		BackgroundColor: cloneColor(o.bg),
		Font:            cloneFont(o.font),
		Icon:            o.icon,
		SelectedIcon:    o.selectedIcon,
	}
}

// String returns the subject.
func (o *Object) String() string {
	return o.subject
}

// IsUnknownTime reports whether t is the "unknown" modification time.
func IsUnknownTime(t time.Time) bool {
	return t.IsZero()
}

// SetModificationDateTime records t without notifying.
func (o *Object) SetModificationDateTime(t time.Time) {
	o.modified = t
}

func (o *Object) SetSubject(subject string) {
	ev := &Event{}
	o.setSubject(ev, subject)
	o.notify(ev)
}

func (o *Object) SetDescription(description string) {
	ev := &Event{}
	o.setDescription(ev, description)
	o.notify(ev)
}

func (o *Object) SetOrdering(ordering int) {
	ev := &Event{}
	o.setOrdering(ev, ordering)
	o.notify(ev)
}

// SetForegroundColor accepts any color.Color; nil unsets the color.
func (o *Object) SetForegroundColor(c color.Color) {
	o.setAppearance(func(a *Appearance) { a.ForegroundColor = ColorOf(c) })
}

// SetBackgroundColor accepts any color.Color; nil unsets the color.
func (o *Object) SetBackgroundColor(c color.Color) {
	o.setAppearance(func(a *Appearance) { a.BackgroundColor = ColorOf(c) })
}

// SetFont sets the font; nil unsets it.
func (o *Object) SetFont(font *Font) {
	o.setAppearance(func(a *Appearance) { a.Font = cloneFont(font) })
}

func (o *Object) SetIcon(icon string) {
	o.setAppearance(func(a *Appearance) { a.Icon = icon })
}

func (o *Object) SetSelectedIcon(icon string) {
	o.setAppearance(func(a *Appearance) { a.SelectedIcon = icon })
}

func (o *Object) setAppearance(edit func(*Appearance)) {
	next := o.Appearance()
	edit(&next)
	ev := &Event{}
	if o.assignAppearance(next) {
		o.emitChange(ev, ChangeAppearance)
	}
	o.notify(ev)
}

func (o *Object) setSubject(ev *Event, subject string) {
	if o.subject == subject {
		return
	}
	o.subject = subject
	o.emitChange(ev, ChangeSubject, subject)
}

func (o *Object) setDescription(ev *Event, description string) {
	if o.description == description {
		return
	}
	o.description = description
	o.emitChange(ev, ChangeDescription, description)
}

func (o *Object) setOrdering(ev *Event, ordering int) {
	if o.ordering == ordering {
		return
	}
	o.ordering = ordering
	o.emitChange(ev, ChangeOrdering, ordering)
}

// assignAppearance stores next and reports whether anything changed.
func (o *Object) assignAppearance(next Appearance) bool {
	changed := !colorsEqual(o.fg, next.ForegroundColor) ||
		!colorsEqual(o.bg, next.BackgroundColor) ||
		!fontsEqual(o.font, next.Font) ||
		o.icon != next.Icon ||
		o.selectedIcon != next.SelectedIcon
	if !changed {
		return false
	}
	o.fg = cloneColor(next.ForegroundColor)
	o.bg = cloneColor(next.BackgroundColor)
	o.font = cloneFont(next.Font)
	o.icon = next.Icon
	o.selectedIcon = next.SelectedIcon
	return true
}

type changeCascader interface {
	cascadeChange(ev *Event, change ChangeKind)
}

func (o *Object) emitChange(ev *Event, change ChangeKind, values ...any) {
	ev.AddTypedSource(o.kind.EventType(change), o.self, values...)
	if c, ok := o.self.(changeCascader); ok {
		c.cascadeChange(ev, change)
	}
}

func (o *Object) notify(ev *Event) {
	if ev.Empty() || o.publisher == nil {
		return
	}
	o.publisher.Notify(ev)
}

// Copy returns a new object of the same kind with a fresh id, a creation time
// no earlier than the original's, an unknown modification time and status
// StatusNew. Subject, description, appearance and ordering are duplicated.
func (o *Object) Copy() *Object {
	cp := &Object{}
	cp.init(o.kind, o.copyConfig(), cp)
	return cp
}

func (o *Object) copyConfig() objectConfig {
	created := o.clock()
	if created.Before(o.created) {
		created = o.created
	}
	return objectConfig{
		subject:      o.subject,
		description:  o.description,
		created:      &created,
		fg:           o.fg,
		bg:           o.bg,
		font:         o.font,
		icon:         o.icon,
		selectedIcon: o.selectedIcon,
		ordering:     o.ordering,
		status:       StatusNew,
		publisher:    o.publisher,
		ids:          o.ids,
		clock:        o.clock,
		icons:        o.icons,
		logger:       o.logger,
	}
}
