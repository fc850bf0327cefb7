package taskcore

import (
	"regexp"
	"strings"
)

// Filter selects a subset of items, preserving their order.
type Filter interface {
	Apply(items []Item) ([]Item, error)
}

// FilterFunc adapts a function to Filter.
type FilterFunc func(items []Item) ([]Item, error)

// Apply implements Filter.
func (f FilterFunc) Apply(items []Item) ([]Item, error) {
	return f(items)
}

// Chain applies filters in order, each receiving the previous output.
func Chain(filters ...Filter) Filter {
	return FilterFunc(func(items []Item) ([]Item, error) {
		out := append([]Item(nil), items...)
		for _, filter := range filters {
			if filter == nil {
				continue
			}
			var err error
			out, err = filter.Apply(out)
			if err != nil {
				return nil, err
			}
		}
		return out, nil
	})
}

// SearchFilter keeps items whose text contains Text.
//
// An item's text is its subject, plus its description when
// IncludeDescriptions is set. IncludeSubItems appends the text of every
// ancestor, so children of a matching item match too. TreeMode appends the
// text of descendants present in the input and keeps the ancestors of every
// match. An invalid Regexp falls back to a literal search.
type SearchFilter struct {
	Text                string
	MatchCase           bool
	Regexp              bool
	IncludeDescriptions bool
	IncludeSubItems     bool
	TreeMode            bool
}

// Apply implements Filter.
func (f SearchFilter) Apply(items []Item) ([]Item, error) {
	if f.Text == "" {
		return append([]Item(nil), items...), nil
	}
	match := f.predicate()
	present := itemSet(items)
	keep := map[Item]struct{}{}
	for _, item := range items {
		if match(f.itemText(item, present)) {
			keep[item] = struct{}{}
		}
	}
	if f.TreeMode {
		withAncestors(keep)
	}
	return keepInOrder(items, keep), nil
}

func (f SearchFilter) predicate() func(string) bool {
	if f.Regexp {
		pattern := f.Text
		if !f.MatchCase {
			pattern = "(?i)" + pattern
		}
		if rx, err := regexp.Compile(pattern); err == nil {
			return rx.MatchString
		}
	}
	if f.MatchCase {
		return func(text string) bool { return strings.Contains(text, f.Text) }
	}
	needle := strings.ToLower(f.Text)
	return func(text string) bool { return strings.Contains(strings.ToLower(text), needle) }
}

func (f SearchFilter) itemText(item Item, present map[Item]struct{}) string {
	var b strings.Builder
	b.WriteString(f.ownText(item))
	node, ok := item.(compositeNode)
	if !ok {
		return b.String()
	}
	composite := node.composite()
	if f.IncludeSubItems {
		for parent := composite.Parent(); parent != nil; parent = parent.Parent() {
			b.WriteString(f.ownText(parent.self))
		}
	}
	if f.TreeMode {
		var texts []string
		for _, descendant := range composite.Descendants() {
			if _, ok := present[descendant.self]; ok {
				texts = append(texts, f.ownText(descendant.self))
			}
		}
		b.WriteString(strings.Join(texts, " "))
	}
	return b.String()
}

func (f SearchFilter) ownText(item Item) string {
	if f.IncludeDescriptions {
		return item.Subject() + item.Description()
	}
	return item.Subject()
}

// DeletedFilter hides items marked DELETED. In TreeMode the ancestors of
// surviving items are kept even when deleted.
type DeletedFilter struct {
	TreeMode bool
}

// Apply implements Filter.
func (f DeletedFilter) Apply(items []Item) ([]Item, error) {
	keep := map[Item]struct{}{}
	for _, item := range items {
		if item.Status() != StatusDeleted {
			keep[item] = struct{}{}
		}
	}
	if f.TreeMode {
		withAncestors(keep)
	}
	return keepInOrder(items, keep), nil
}

func itemSet(items []Item) map[Item]struct{} {
	set := make(map[Item]struct{}, len(items))
	for _, item := range items {
		set[item] = struct{}{}
	}
	return set
}

func withAncestors(keep map[Item]struct{}) {
	var ancestors []Item
	for item := range keep {
		node, ok := item.(compositeNode)
		if !ok {
			continue
		}
		for _, ancestor := range node.composite().Ancestors() {
			ancestors = append(ancestors, ancestor.self)
		}
	}
	for _, ancestor := range ancestors {
		keep[ancestor] = struct{}{}
	}
}

func keepInOrder(items []Item, keep map[Item]struct{}) []Item {
	out := make([]Item, 0, len(keep))
	for _, item := range items {
		if _, ok := keep[item]; ok {
			out = append(out, item)
		}
	}
	return out
}
