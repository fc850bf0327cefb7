package taskcore

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusNamesAndParsing(t *testing.T) {
	cases := map[string]Status{
		"none":     StatusNone,
		"NEW":      StatusNew,
		" Changed": StatusChanged,
		"deleted":  StatusDeleted,
	}
	for name, want := range cases {
		got, err := ParseStatus(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}

	_, err := ParseStatus("archived")
	assert.True(t, errors.Is(err, ErrUnknownStatus))
	assert.Equal(t, "status(9)", Status(9).String())
	assert.False(t, Status(-1).Valid())
}

func statusValue(t *testing.T, ev *Event, eventType EventType, source Item) Status {
	t.Helper()
	values, ok := ev.Lookup(eventType, source)
	require.True(t, ok, "missing %s entry", eventType)
	require.Len(t, values, 1)
	status, ok := values[0].(Status)
	require.True(t, ok)
	return status
}

func TestSyncTransitions(t *testing.T) {
	publisher := NewPublisher()
	rec := watch(publisher, KindNote)
	note := NewObject(KindNote, testObjectOptions(publisher)...)
	deleted := KindNote.EventType(ChangeMarkDeleted)
	notDeleted := KindNote.EventType(ChangeMarkNotDeleted)

	require.True(t, note.IsNew())

	note.CleanDirty()
	assert.Equal(t, StatusNone, note.Status())
	assert.Empty(t, rec.events, "cleaning a new object is silent")

	note.MarkDirty(false)
	assert.True(t, note.IsModified())
	assert.Empty(t, rec.events, "marking dirty is silent without force")

	note.MarkDirty(true)
	require.Len(t, rec.events, 1)
	assert.Equal(t, StatusChanged, statusValue(t, rec.last(), notDeleted, note))

	note.MarkDeleted()
	require.Len(t, rec.events, 2)
	assert.True(t, note.IsDeleted())
	assert.Equal(t, StatusDeleted, statusValue(t, rec.last(), deleted, note))

	note.MarkDeleted()
	assert.Len(t, rec.events, 3, "markDeleted notifies every time")

	note.MarkDirty(false)
	assert.True(t, note.IsDeleted(), "dirty does not resurrect")

	note.CleanDirty()
	require.Len(t, rec.events, 4)
	assert.Equal(t, StatusNone, statusValue(t, rec.last(), notDeleted, note))

	note.MarkNew()
	require.Len(t, rec.events, 5)
	assert.Equal(t, StatusNew, statusValue(t, rec.last(), notDeleted, note))
}

func TestMarkDirtyLeavesNewUntouched(t *testing.T) {
	note := NewObject(KindNote)
	note.MarkDirty(false)
	assert.True(t, note.IsNew())
}
