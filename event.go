package taskcore

// Entry pairs one source with the values it reported for one event type.
type Entry struct {
	Type   EventType
	Source any
	Values []any
}

// Key selects entries of an Event. A nil Source matches every source of Type.
type Key struct {
	Type   EventType
	Source any
}

// Event is a batch of entries delivered to observers in one notification. The
// first entry is the primary one; cascades append secondary entries. Sources
// must be comparable, in practice they are pointers.
//
// The zero value is an empty event ready for AddTypedSource.
type Event struct {
	entries []Entry
}

// NewEvent returns an event whose primary entry is (eventType, source, values).
func NewEvent(eventType EventType, source any, values ...any) *Event {
	e := &Event{}
	e.AddTypedSource(eventType, source, values...)
	return e
}

// AddSource appends source under the primary event type. It is a no-op on an
// empty event, which has no primary type yet.
func (e *Event) AddSource(source any, values ...any) {
	if len(e.entries) == 0 {
		return
	}
	e.AddTypedSource(e.entries[0].Type, source, values...)
}

// AddTypedSource appends source under eventType. Adding a (type, source) pair
// that is already present replaces its values in place.
func (e *Event) AddTypedSource(eventType EventType, source any, values ...any) {
	copied := append([]any(nil), values...)
	for i := range e.entries {
		if e.entries[i].Type == eventType && e.entries[i].Source == source {
			e.entries[i].Values = copied
			return
		}
	}
	e.entries = append(e.entries, Entry{Type: eventType, Source: source, Values: copied})
}

// Type returns the primary event type, or "" when the event is empty.
func (e *Event) Type() EventType {
	if e == nil || len(e.entries) == 0 {
		return ""
	}
	return e.entries[0].Type
}

// Types returns the distinct event types in order of first appearance.
func (e *Event) Types() []EventType {
	if e == nil {
		return nil
	}
	var types []EventType
	seen := make(map[EventType]struct{}, len(e.entries))
	for _, entry := range e.entries {
		if _, ok := seen[entry.Type]; ok {
			continue
		}
		seen[entry.Type] = struct{}{}
		types = append(types, entry.Type)
	}
	return types
}

// Sources returns the sources in entry order. When types are given only
// entries of those types are considered. A source appearing under several
// types is listed once.
func (e *Event) Sources(types ...EventType) []any {
	if e == nil {
		return nil
	}
	var sources []any
	for _, entry := range e.entries {
		if len(types) > 0 && !containsType(types, entry.Type) {
			continue
		}
		if containsSource(sources, entry.Source) {
			continue
		}
		sources = append(sources, entry.Source)
	}
	return sources
}

// Value returns the first value source reported under the primary type.
func (e *Event) Value(source any) any {
	values := e.Values(source)
	if len(values) == 0 {
		return nil
	}
	return values[0]
}

// Values returns the values source reported under the primary type.
func (e *Event) Values(source any) []any {
	values, _ := e.Lookup(e.Type(), source)
	return values
}

// Lookup returns the values reported by source under eventType.
func (e *Event) Lookup(eventType EventType, source any) ([]any, bool) {
	if e == nil {
		return nil, false
	}
	for _, entry := range e.entries {
		if entry.Type == eventType && entry.Source == source {
			return append([]any(nil), entry.Values...), true
		}
	}
	return nil, false
}

// Entries returns a copy of all entries in order.
func (e *Event) Entries() []Entry {
	if e == nil {
		return nil
	}
	out := make([]Entry, len(e.entries))
	for i, entry := range e.entries {
		entry.Values = append([]any(nil), entry.Values...)
		out[i] = entry
	}
	return out
}

// SubEvent returns a new event holding the entries matching any of keys, in
// their original order.
func (e *Event) SubEvent(keys ...Key) *Event {
	sub := &Event{}
	if e == nil {
		return sub
	}
	for _, entry := range e.entries {
		if !matchesAny(keys, entry) {
			continue
		}
		sub.entries = append(sub.entries, Entry{
			Type:   entry.Type,
			Source: entry.Source,
			Values: append([]any(nil), entry.Values...),
		})
	}
	return sub
}

// Len returns the number of entries.
func (e *Event) Len() int {
	if e == nil {
		return 0
	}
	return len(e.entries)
}

// Empty reports whether the event carries no entries.
func (e *Event) Empty() bool {
	return e.Len() == 0
}

func matchesAny(keys []Key, entry Entry) bool {
	for _, key := range keys {
		if key.Type != entry.Type {
			continue
		}
		if key.Source == nil || key.Source == entry.Source {
			return true
		}
	}
	return false
}

func containsType(types []EventType, eventType EventType) bool {
	for _, candidate := range types {
		if candidate == eventType {
			return true
		}
	}
	return false
}

func containsSource(sources []any, source any) bool {
	for _, candidate := range sources {
		if candidate == source {
			return true
		}
	}
	return false
}
