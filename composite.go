package taskcore

import (
	"fmt"
	"sort"
	"strings"

	"github.com/goliatone/go-taskcore/layering"
)

// DefaultContext is the expansion context used when none is given.
const DefaultContext = "None"

// SubjectSeparator joins ancestor subjects in RecursiveSubject.
const SubjectSeparator = " -> "

// Composite is an Object that owns an ordered list of children. A child has
// exactly one parent at a time; the parent pointer does not own. Subject and
// appearance notifications, and the MarkDeleted, MarkNew and CleanDirty
// transitions, cascade into the subtree within a single event.
type Composite struct {
	Object

	parent   *Composite
	children []*Composite
	expanded map[string]bool
	// formerParent is the composite c was last detached from. A Collection
	// uses it to restore the link when c is added back.
	formerParent *Composite
}

var _ Item = (*Composite)(nil)

// NewComposite constructs a composite of kind. WithChildren attaches children
// silently, detaching them from any previous parent.
func NewComposite(kind Kind, opts ...ObjectOption) *Composite {
	cfg := applyObjectOptions(opts)
	c := &Composite{expanded: map[string]bool{}}
	c.Object.init(kind, cfg, c)
	for _, context := range cfg.expanded {
		c.expanded[normalizeContext(context)] = true
	}
	for _, child := range cfg.children {
		if child == nil || child == c {
			continue
		}
		if child.parent != nil {
			child.parent.detach(child)
		}
		c.attach(child)
	}
	return c
}

func (c *Composite) composite() *Composite { return c }

// Node returns the Composite itself. Types embedding a Composite inherit it,
// which lets callers reach the tree through an Item.
func (c *Composite) Node() *Composite { return c }

// Parent returns the owning composite, or nil for a root.
func (c *Composite) Parent() *Composite {
	return c.parent
}

// Root returns the topmost ancestor, or c itself.
func (c *Composite) Root() *Composite {
	node := c
	for node.parent != nil {
		node = node.parent
	}
	return node
}

// Children returns the children in order.
func (c *Composite) Children() []*Composite {
	return append([]*Composite(nil), c.children...)
}

// ChildCount returns the number of children, deleted ones included.
func (c *Composite) ChildCount() int {
	return len(c.children)
}

// HasChildren reports whether c has at least one child that is not deleted.
func (c *Composite) HasChildren() bool {
	for _, child := range c.children {
		if !child.IsDeleted() {
			return true
		}
	}
	return false
}

// Descendants returns the subtree below c, depth-first in child order.
func (c *Composite) Descendants() []*Composite {
	var out []*Composite
	for _, child := range c.children {
		out = append(out, child)
		out = append(out, child.Descendants()...)
	}
	return out
}

// Ancestors returns the chain above c, root first.
func (c *Composite) Ancestors() []*Composite {
	var out []*Composite
	for node := c.parent; node != nil; node = node.parent {
		out = append(out, node)
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// Family returns the ancestors, c itself and its descendants.
func (c *Composite) Family() []*Composite {
	out := c.Ancestors()
	out = append(out, c)
	return append(out, c.Descendants()...)
}

// Siblings returns the other children of c's parent.
func (c *Composite) Siblings() []*Composite {
	if c.parent == nil {
		return nil
	}
	var out []*Composite
	for _, child := range c.parent.children {
		if child != c {
			out = append(out, child)
		}
	}
	return out
}

// IsAncestorOf reports whether c is above other in the tree.
func (c *Composite) IsAncestorOf(other *Composite) bool {
	for node := other.parent; node != nil; node = node.parent {
		if node == c {
			return true
		}
	}
	return false
}

// AddChild appends child and notifies addChild with c as the source. A child
// that belongs to another composite is moved; the old parent's removeChild
// travels in the same event. Adding c under itself or one of its descendants
// fails with ErrCompositeCycle.
func (c *Composite) AddChild(child *Composite) error {
	if child == nil {
		return nil
	}
	if child == c || child.IsAncestorOf(c) {
		return fmt.Errorf("%w: %s under %s", ErrCompositeCycle, child.id, c.id)
	}
	if child.parent == c {
		return nil
	}
	ev := NewEvent(c.kind.EventType(ChangeAddChild), c.self, child)
	if previous := child.parent; previous != nil {
		previous.detach(child)
		ev.AddTypedSource(previous.kind.EventType(ChangeRemoveChild), previous.self, child)
	}
	c.attach(child)
	c.logger.Debug().Str("parent", c.id).Str("child", child.id).Msg("child added")
	c.notify(ev)
	return nil
}

// RemoveChild detaches child and notifies removeChild with c as the source.
// It fails with ErrNotChild when child is not one of c's children.
func (c *Composite) RemoveChild(child *Composite) error {
	if child == nil || child.parent != c {
		return ErrNotChild
	}
	c.detach(child)
	c.logger.Debug().Str("parent", c.id).Str("child", child.id).Msg("child removed")
	c.notify(NewEvent(c.kind.EventType(ChangeRemoveChild), c.self, child))
	return nil
}

// NewChild creates a composite of the same kind sharing c's publisher,
// generators and logger, and appends it as the last child.
func (c *Composite) NewChild(opts ...ObjectOption) *Composite {
	base := []ObjectOption{
		WithPublisher(c.publisher),
		WithIDGenerator(c.ids),
		WithClock(c.clock),
		WithIconTable(c.icons),
		WithLogger(c.logger),
	}
	child := NewComposite(c.kind, append(base, opts...)...)
	_ = c.AddChild(child)
	return child
}

func (c *Composite) attach(child *Composite) {
	c.children = append(c.children, child)
	child.parent = c
	child.formerParent = nil
}

func (c *Composite) detach(child *Composite) {
	for i, candidate := range c.children {
		if candidate == child {
			c.children = append(c.children[:i], c.children[i+1:]...)
			break
		}
	}
	child.parent = nil
	child.formerParent = c
}

// RecursiveSubject joins the subjects from the root down to c with
// SubjectSeparator.
func (c *Composite) RecursiveSubject() string {
	ancestors := c.Ancestors()
	parts := make([]string, 0, len(ancestors)+1)
	for _, ancestor := range ancestors {
		parts = append(parts, ancestor.subject)
	}
	parts = append(parts, c.subject)
	return strings.Join(parts, SubjectSeparator)
}

// ResolvedAppearance returns c's appearance with every unset attribute taken
// from the nearest ancestor that sets it. Icons are returned as resolved,
// without the plural rule; see RecursiveIcon.
func (c *Composite) ResolvedAppearance() Appearance {
	layers := []Appearance{c.Appearance()}
	for node := c.parent; node != nil; node = node.parent {
		layers = append(layers, node.Appearance())
	}
	return layering.MergeLayers(layers...)
}

func (c *Composite) RecursiveForegroundColor() *Color {
	return c.ResolvedAppearance().ForegroundColor
}

func (c *Composite) RecursiveBackgroundColor() *Color {
	return c.ResolvedAppearance().BackgroundColor
}

func (c *Composite) RecursiveFont() *Font {
	return c.ResolvedAppearance().Font
}

// RecursiveIcon resolves the icon through the ancestors and applies the
// plural rule: with at least one live child the plural counterpart is used,
// while a leaf that inherits a plural icon shows its singular form.
func (c *Composite) RecursiveIcon() string {
	return c.pluralize(c.icon, c.ResolvedAppearance().Icon)
}

// RecursiveSelectedIcon is RecursiveIcon for the selected icon.
func (c *Composite) RecursiveSelectedIcon() string {
	return c.pluralize(c.selectedIcon, c.ResolvedAppearance().SelectedIcon)
}

func (c *Composite) pluralize(own, resolved string) string {
	if resolved == "" {
		return ""
	}
	if c.HasChildren() {
		if plural, ok := c.icons.Plural(resolved); ok {
			return plural
		}
		return resolved
	}
	if own == "" {
		if singular, ok := c.icons.Singular(resolved); ok {
			return singular
		}
	}
	return resolved
}

// Expand sets the expansion flag of context, DefaultContext when empty, and
// notifies expansionChanged when it changes.
func (c *Composite) Expand(context string, expand bool) {
	context = normalizeContext(context)
	if c.expanded[context] == expand {
		return
	}
	if expand {
		c.expanded[context] = true
	} else {
		delete(c.expanded, context)
	}
	c.notify(NewEvent(c.kind.EventType(ChangeExpansion), c.self, expand))
}

// IsExpanded reports the expansion flag of context. Unknown contexts read as
// collapsed.
func (c *Composite) IsExpanded(context string) bool {
	return c.expanded[normalizeContext(context)]
}

// ExpandedContexts returns the contexts explicitly expanded, sorted.
func (c *Composite) ExpandedContexts() []string {
	out := make([]string, 0, len(c.expanded))
	for context := range c.expanded {
		out = append(out, context)
	}
	sort.Strings(out)
	return out
}

func normalizeContext(context string) string {
	if context == "" {
		return DefaultContext
	}
	return context
}

// cascadeChange adds the subject or appearance entry of every descendant:
// their recursive values changed along with c's.
func (c *Composite) cascadeChange(ev *Event, change ChangeKind) {
	if change != ChangeSubject && change != ChangeAppearance {
		return
	}
	for _, child := range c.children {
		if change == ChangeSubject {
			child.emitChange(ev, change, child.subject)
			continue
		}
		child.emitChange(ev, change)
	}
}

func (c *Composite) cascadeStatus(ev *Event, t statusTransition) {
	for _, child := range c.children {
		child.applyTransition(ev, t)
	}
	if len(c.children) > 0 {
		c.logger.Debug().Str("id", c.id).Int("children", len(c.children)).Msg("status cascaded")
	}
}

// Copy returns a detached deep copy: a new composite of the same kind with a
// copied subtree and the expansion contexts expanded at the time of the call.
// Ids are fresh throughout.
func (c *Composite) Copy() *Composite {
	cp := &Composite{expanded: make(map[string]bool, len(c.expanded))}
	cp.Object.init(c.kind, c.copyConfig(), cp)
	for context := range c.expanded {
		cp.expanded[context] = true
	}
	for _, child := range c.children {
		cp.attach(child.Copy())
	}
	return cp
}
