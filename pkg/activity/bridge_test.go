package activity

import (
	"context"
	"errors"
	"testing"
	"time"

	taskcore "github.com/goliatone/go-taskcore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var bridgeNow = time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

func newTestBridge(t *testing.T, opts ...BridgeOption) (*taskcore.Publisher, *CaptureHook, *Bridge) {
	t.Helper()
	publisher := taskcore.NewPublisher()
	capture := &CaptureHook{}
	emitter := NewEmitter(Hooks{capture}, Config{Enabled: true})
	opts = append([]BridgeOption{WithBridgeClock(func() time.Time { return bridgeNow })}, opts...)
	bridge := NewBridge(publisher, emitter, []taskcore.Kind{taskcore.KindTask}, opts...)
	t.Cleanup(bridge.Close)
	return publisher, capture, bridge
}

func TestBridgeRecordsItemChanges(t *testing.T) {
	publisher, capture, _ := newTestBridge(t)
	task := taskcore.NewComposite(taskcore.KindTask,
		taskcore.WithPublisher(publisher), taskcore.WithID("t1"))

	task.SetSubject("Plan release")
	task.MarkDeleted()

	require.Equal(t, []string{"task.subject", "task.markDeleted"}, capture.Verbs())
	event := capture.Events()[0]
	assert.Equal(t, "task", event.ObjectType)
	assert.Equal(t, "t1", event.ObjectID)
	assert.Equal(t, DefaultChannel, event.Channel)
	assert.True(t, event.OccurredAt.Equal(bridgeNow))
	assert.Equal(t, []any{"Plan release"}, event.Metadata["values"])
	assert.Equal(t, "deleted", capture.Events()[1].Metadata["status"])
}

func TestBridgeSplitsCascadesPerItem(t *testing.T) {
	publisher, capture, _ := newTestBridge(t)
	child := taskcore.NewComposite(taskcore.KindTask, taskcore.WithPublisher(publisher), taskcore.WithID("child"))
	parent := taskcore.NewComposite(taskcore.KindTask,
		taskcore.WithPublisher(publisher), taskcore.WithID("parent"), taskcore.WithChildren(child))

	parent.SetSubject("Renamed")

	events := capture.Events()
	require.Len(t, events, 2)
	assert.Equal(t, "parent", events[0].ObjectID)
	assert.Equal(t, "child", events[1].ObjectID)
}

func TestBridgeRecordsCollectionMembership(t *testing.T) {
	publisher, capture, _ := newTestBridge(t, WithChanges(taskcore.ChangeAddItem, taskcore.ChangeRemoveItem))
	collection := taskcore.NewCollection(taskcore.KindTask, taskcore.WithCollectionPublisher(publisher))
	first := taskcore.NewObject(taskcore.KindTask, taskcore.WithPublisher(publisher), taskcore.WithID("a"))
	second := taskcore.NewObject(taskcore.KindTask, taskcore.WithPublisher(publisher), taskcore.WithID("b"))

	require.NoError(t, collection.Extend(first, second))
	first.SetSubject("ignored")
	require.NoError(t, collection.Remove(second))

	require.Equal(t, []string{"task.addItem", "task.addItem", "task.removeItem"}, capture.Verbs())
	assert.Equal(t, "b", capture.Events()[2].ObjectID)
}

func TestBridgeStopsOnClose(t *testing.T) {
	publisher, capture, bridge := newTestBridge(t)
	task := taskcore.NewObject(taskcore.KindTask, taskcore.WithPublisher(publisher))

	bridge.Close()
	task.SetSubject("after close")

	assert.Empty(t, capture.Events())
}

func TestBridgeKeepsGoingWhenAHookFails(t *testing.T) {
	publisher := taskcore.NewPublisher()
	capture := &CaptureHook{}
	failing := HookFunc(func(context.Context, Event) error { return errors.New("sink down") })
	emitter := NewEmitter(Hooks{failing, capture}, Config{Enabled: true})
	bridge := NewBridge(publisher, emitter, []taskcore.Kind{taskcore.KindNote})
	defer bridge.Close()
	note := taskcore.NewObject(taskcore.KindNote, taskcore.WithPublisher(publisher))

	note.SetSubject("one")
	note.SetSubject("two")

	assert.Len(t, capture.Events(), 2)
}

func TestBuildObjectEventDescribesValues(t *testing.T) {
	parent := taskcore.NewComposite(taskcore.KindCategory, taskcore.WithID("c1"), taskcore.WithSubject("Home"))
	child := taskcore.NewComposite(taskcore.KindCategory, taskcore.WithID("c2"))

	event := BuildObjectEvent(ObjectEventInput{
		ActorID:  " alice ",
		Change:   taskcore.ChangeAddChild,
		Item:     parent,
		Values:   []any{child, taskcore.StatusChanged},
		Metadata: map[string]any{"source": "ui"},
	})

	assert.Equal(t, "category.addChild", event.Verb)
	assert.Equal(t, "category", event.ObjectType)
	assert.Equal(t, "c1", event.ObjectID)
	assert.Equal(t, "alice", event.ActorID)
	assert.Equal(t, []any{"c2", "changed"}, event.Metadata["values"])
	assert.Equal(t, "Home", event.Metadata["subject"])
	assert.Equal(t, "ui", event.Metadata["source"])
}

func TestEntryInputsIgnoresMalformedTypes(t *testing.T) {
	inputs := EntryInputs(taskcore.Entry{Type: "nodot", Source: taskcore.NewObject(taskcore.KindTask)})
	assert.Empty(t, inputs)
}
