package activity

import (
	"fmt"
	"strings"
	"time"

	taskcore "github.com/goliatone/go-taskcore"
)

// ObjectEventInput describes one change reported for one item.
type ObjectEventInput struct {
	ActorID    string
	UserID     string
	TenantID   string
	Channel    string
	Kind       taskcore.Kind
	Change     taskcore.ChangeKind
	Item       taskcore.Item
	Values     []any
	Metadata   map[string]any
	OccurredAt time.Time
}

// BuildObjectEvent turns input into an activity event with verb
// "<kind>.<change>". The item's subject and status are recorded in the
// metadata, and reported values as "values" with items replaced by their ids.
func BuildObjectEvent(input ObjectEventInput) Event {
	metadata := cloneMap(input.Metadata)
	objectID := ""
	if input.Item != nil {
		objectID = input.Item.ID()
		if input.Kind == "" {
			input.Kind = input.Item.Kind()
		}
		metadata = ensureMetadata(metadata)
		metadata["subject"] = input.Item.Subject()
		metadata["status"] = input.Item.Status().String()
	}
	if len(input.Values) > 0 {
		metadata = ensureMetadata(metadata)
		metadata["values"] = describeValues(input.Values)
	}
	return Event{
		Verb:       string(input.Kind.EventType(input.Change)),
		ActorID:    strings.TrimSpace(input.ActorID),
		UserID:     strings.TrimSpace(input.UserID),
		TenantID:   strings.TrimSpace(input.TenantID),
		ObjectType: string(input.Kind),
		ObjectID:   objectID,
		Channel:    strings.TrimSpace(input.Channel),
		Metadata:   metadata,
		OccurredAt: input.OccurredAt,
	}
}

// EntryInputs converts one notification entry into inputs. An entry reported
// by an item yields one input for that item; a collection entry yields one
// input per added or removed item.
func EntryInputs(entry taskcore.Entry) []ObjectEventInput {
	kind, change, ok := splitEventType(entry.Type)
	if !ok {
		return nil
	}
	if item, isItem := entry.Source.(taskcore.Item); isItem {
		return []ObjectEventInput{{Kind: kind, Change: change, Item: item, Values: entry.Values}}
	}
	var inputs []ObjectEventInput
	for _, value := range entry.Values {
		if item, isItem := value.(taskcore.Item); isItem {
			inputs = append(inputs, ObjectEventInput{Kind: kind, Change: change, Item: item})
		}
	}
	return inputs
}

func splitEventType(eventType taskcore.EventType) (taskcore.Kind, taskcore.ChangeKind, bool) {
	kind, change, ok := strings.Cut(string(eventType), ".")
	if !ok || kind == "" || change == "" {
		return "", "", false
	}
	return taskcore.Kind(kind), taskcore.ChangeKind(change), true
}

func describeValues(values []any) []any {
	out := make([]any, len(values))
	for i, value := range values {
		switch v := value.(type) {
		case taskcore.Item:
			out[i] = v.ID()
		case fmt.Stringer:
			out[i] = v.String()
		default:
			out[i] = v
		}
	}
	return out
}

func ensureMetadata(meta map[string]any) map[string]any {
	if meta == nil {
		return map[string]any{}
	}
	return meta
}
