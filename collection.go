package taskcore

import (
	"fmt"

	"github.com/rs/zerolog"
)

// CollectionOption configures a Collection.
type CollectionOption func(*Collection)

// WithCollectionPublisher attaches the bus addItem/removeItem are sent to.
func WithCollectionPublisher(publisher *Publisher) CollectionOption {
	return func(c *Collection) { c.publisher = publisher }
}

func WithCollectionLogger(logger zerolog.Logger) CollectionOption {
	return func(c *Collection) { c.logger = logger }
}

// WithItems seeds the collection without notifying. Seeding that would
// duplicate an id is dropped and logged.
func WithItems(items ...Item) CollectionOption {
	return func(c *Collection) { c.seed = append(c.seed, items...) }
}

// Collection is an ordered container of items with an id index. Composite
// items bring their descendants along: adding a composite adds its subtree and
// removing it removes the subtree.
type Collection struct {
	kind      Kind
	items     []Item
	index     map[string]Item
	publisher *Publisher
	logger    zerolog.Logger
	seed      []Item
}

// NewCollection constructs an empty collection of entities of kind.
func NewCollection(kind Kind, opts ...CollectionOption) *Collection {
	c := &Collection{
		kind:   kind,
		index:  map[string]Item{},
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	seed := c.seed
	c.seed = nil
	if len(seed) > 0 {
		added, err := c.admit(seed)
		if err != nil {
			c.logger.Warn().Err(err).Msg("collection seed dropped")
			return c
		}
		c.insert(added)
	}
	return c
}

func (c *Collection) Kind() Kind { return c.kind }

// Publisher returns the bus the collection notifies, possibly nil.
func (c *Collection) Publisher() *Publisher { return c.publisher }

// AddItemEventType is the token notified when items are added.
func (c *Collection) AddItemEventType() EventType {
	return c.kind.EventType(ChangeAddItem)
}

// RemoveItemEventType is the token notified when items are removed.
func (c *Collection) RemoveItemEventType() EventType {
	return c.kind.EventType(ChangeRemoveItem)
}

// Len returns the number of items.
func (c *Collection) Len() int {
	return len(c.items)
}

// Items returns the items in insertion order.
func (c *Collection) Items() []Item {
	return append([]Item(nil), c.items...)
}

// Contains reports whether item itself, not merely its id, is a member.
func (c *Collection) Contains(item Item) bool {
	if item == nil {
		return false
	}
	member, ok := c.index[item.ID()]
	return ok && member == item
}

// GetObjectByID returns the member with id. It fails with ErrObjectNotFound
// whether the collection is empty or merely lacks the id.
func (c *Collection) GetObjectByID(id string) (Item, error) {
	item, ok := c.index[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrObjectNotFound, id)
	}
	return item, nil
}

// Append adds item, and its descendants when it is a composite.
func (c *Collection) Append(item Item) error {
	return c.Extend(item)
}

// Extend adds items in order, composites followed by their descendants, and
// notifies one addItem carrying every newly added item. Items already in the
// collection are skipped. A different item reusing a member's id fails the
// whole call with ErrDuplicateID and nothing is added.
//
// A composite detached from a parent that is a member after the call is
// added back under that parent, so removing and re-adding a subtree restores
// the hierarchy.
func (c *Collection) Extend(items ...Item) error {
	added, err := c.admit(items)
	if err != nil {
		return err
	}
	if len(added) == 0 {
		return nil
	}
	c.insert(added)
	c.logger.Debug().Str("kind", string(c.kind)).Int("added", len(added)).Msg("items added")
	c.notify(c.AddItemEventType(), added)
	c.reattach(added)
	return nil
}

func (c *Collection) reattach(added []Item) {
	for _, item := range added {
		node, ok := item.(compositeNode)
		if !ok {
			continue
		}
		composite := node.composite()
		former := composite.formerParent
		if composite.parent != nil || former == nil || !c.Contains(former.self) {
			continue
		}
		if err := former.AddChild(composite); err != nil {
			c.logger.Warn().Err(err).Str("id", composite.id).Msg("item not reattached")
		}
	}
}

// admit expands items with their descendants and returns the ones not yet
// present, failing on any id clash.
func (c *Collection) admit(items []Item) ([]Item, error) {
	var added []Item
	pending := map[string]Item{}
	for _, item := range items {
		for _, member := range withDescendants(item) {
			if c.Contains(member) {
				continue
			}
			id := member.ID()
			if existing, ok := c.index[id]; ok && existing != member {
				return nil, fmt.Errorf("%w: %q", ErrDuplicateID, id)
			}
			if existing, ok := pending[id]; ok {
				if existing != member {
					return nil, fmt.Errorf("%w: %q", ErrDuplicateID, id)
				}
				continue
			}
			pending[id] = member
			added = append(added, member)
		}
	}
	return added, nil
}

func (c *Collection) insert(items []Item) {
	for _, item := range items {
		c.items = append(c.items, item)
		c.index[item.ID()] = item
	}
}

// Remove removes item, and its descendants when it is a composite. A member
// whose parent stays in the tree is detached from it until it is added back.
// Removing a non-member fails with ErrNotMember.
func (c *Collection) Remove(item Item) error {
	return c.RemoveItems(item)
}

// RemoveItems removes every item and notifies one removeItem carrying all
// removed items. Validation happens first: if any item is not a member the
// call fails with ErrNotMember and nothing is removed.
func (c *Collection) RemoveItems(items ...Item) error {
	for _, item := range items {
		if !c.Contains(item) {
			id := "<nil>"
			if item != nil {
				id = item.ID()
			}
			return fmt.Errorf("%w: %q", ErrNotMember, id)
		}
	}
	removing := map[Item]struct{}{}
	var removed []Item
	for _, item := range items {
		for _, member := range withDescendants(item) {
			if _, ok := removing[member]; ok || !c.Contains(member) {
				continue
			}
			removing[member] = struct{}{}
			removed = append(removed, member)
		}
	}
	kept := c.items[:0]
	for _, item := range c.items {
		if _, ok := removing[item]; ok {
			delete(c.index, item.ID())
			continue
		}
		kept = append(kept, item)
	}
	for i := len(kept); i < len(c.items); i++ {
		c.items[i] = nil
	}
	c.items = kept
	for _, item := range items {
		node, ok := item.(compositeNode)
		if !ok {
			continue
		}
		composite := node.composite()
		if parent := composite.Parent(); parent != nil {
			if _, alsoRemoved := removing[parent.self]; !alsoRemoved {
				_ = parent.RemoveChild(composite)
			}
		}
	}
	c.logger.Debug().Str("kind", string(c.kind)).Int("removed", len(removed)).Msg("items removed")
	c.notify(c.RemoveItemEventType(), removed)
	return nil
}

// RootItems returns, in order, the members whose parent is not a member.
func (c *Collection) RootItems() []Item {
	var out []Item
	for _, item := range c.items {
		if node, ok := item.(compositeNode); ok {
			if parent := node.composite().Parent(); parent != nil && c.Contains(parent.self) {
				continue
			}
		}
		out = append(out, item)
	}
	return out
}

// AllItemsSorted returns every member in tree order: roots sorted by less,
// each followed by its member descendants, siblings sorted by less. A nil
// less sorts by subject.
func (c *Collection) AllItemsSorted(less func(a, b Item) bool) []Item {
	if less == nil {
		less = BySubject
	}
	var out []Item
	var visit func(items []Item)
	visit = func(items []Item) {
		for _, item := range SortItems(items, less) {
			out = append(out, item)
			node, ok := item.(compositeNode)
			if !ok {
				continue
			}
			var children []Item
			for _, child := range node.composite().children {
				if c.Contains(child.self) {
					children = append(children, child.self)
				}
			}
			visit(children)
		}
	}
	visit(c.RootItems())
	return out
}

func (c *Collection) notify(eventType EventType, items []Item) {
	if c.publisher == nil || len(items) == 0 {
		return
	}
	values := make([]any, len(items))
	for i, item := range items {
		values[i] = item
	}
	c.publisher.Notify(NewEvent(eventType, c, values...))
}

// compositeNode is satisfied by *Composite and by types embedding it.
type compositeNode interface {
	composite() *Composite
}

func withDescendants(item Item) []Item {
	if item == nil {
		return nil
	}
	out := []Item{item}
	node, ok := item.(compositeNode)
	if !ok {
		return out
	}
	for _, descendant := range node.composite().Descendants() {
		out = append(out, descendant.self)
	}
	return out
}
