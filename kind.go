package taskcore

// Kind names a concrete entity type. Every notification token is derived from
// a Kind so that each entity type exposes its own set of event types.
type Kind string

const (
	KindObject     Kind = "object"
	KindTask       Kind = "task"
	KindNote       Kind = "note"
	KindCategory   Kind = "category"
	KindAttachment Kind = "attachment"
	KindEffort     Kind = "effort"
)

// ChangeKind identifies what changed on an entity or collection.
type ChangeKind string

const (
	ChangeSubject        ChangeKind = "subject"
	ChangeDescription    ChangeKind = "description"
	ChangeAppearance     ChangeKind = "appearance"
	ChangeOrdering       ChangeKind = "ordering"
	ChangeAddChild       ChangeKind = "addChild"
	ChangeRemoveChild    ChangeKind = "removeChild"
	ChangeExpansion      ChangeKind = "expansionChanged"
	ChangeMarkDeleted    ChangeKind = "markDeleted"
	ChangeMarkNotDeleted ChangeKind = "markNotDeleted"
	ChangeAddItem        ChangeKind = "addItem"
	ChangeRemoveItem     ChangeKind = "removeItem"
)

// EventType is the token observers register for.
type EventType string

// EventType returns the token for change on entities of kind k, formatted as
// "<kind>.<change>".
func (k Kind) EventType(change ChangeKind) EventType {
	return EventType(string(k) + "." + string(change))
}

// String implements fmt.Stringer.
func (k Kind) String() string {
	return string(k)
}

var objectChanges = []ChangeKind{
	ChangeSubject,
	ChangeDescription,
	ChangeAppearance,
	ChangeOrdering,
}

// ModificationEventTypes lists, in a stable order, the attribute notifications
// a leaf object of kind emits.
func ModificationEventTypes(kind Kind) []EventType {
	types := make([]EventType, 0, len(objectChanges))
	for _, change := range objectChanges {
		types = append(types, kind.EventType(change))
	}
	return types
}

// CompositeModificationEventTypes lists, in a stable order, the notifications
// a composite of kind emits: child membership, the object attributes and the
// expansion state.
func CompositeModificationEventTypes(kind Kind) []EventType {
	types := []EventType{
		kind.EventType(ChangeAddChild),
		kind.EventType(ChangeRemoveChild),
	}
	types = append(types, ModificationEventTypes(kind)...)
	return append(types, kind.EventType(ChangeExpansion))
}

// StatusEventTypes lists the sync status notifications of kind.
func StatusEventTypes(kind Kind) []EventType {
	return []EventType{
		kind.EventType(ChangeMarkDeleted),
		kind.EventType(ChangeMarkNotDeleted),
	}
}
