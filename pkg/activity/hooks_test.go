package activity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeEventTrimsClonesAndDefaults(t *testing.T) {
	meta := map[string]any{"k": "v"}
	recipients := []string{" a ", "b "}
	evt := Event{
		Verb:           " task.subject ",
		ActorID:        " actor ",
		UserID:         " user ",
		TenantID:       " tenant ",
		ObjectType:     " task ",
		ObjectID:       " 42 ",
		Channel:        " tasks ",
		DefinitionCode: " def ",
		Recipients:     recipients,
		Metadata:       meta,
	}

	got := NormalizeEvent(evt)

	assert.Equal(t, "task.subject", got.Verb)
	assert.Equal(t, "task", got.ObjectType)
	assert.Equal(t, "42", got.ObjectID)
	assert.Equal(t, "actor", got.ActorID)
	assert.Equal(t, "user", got.UserID)
	assert.Equal(t, "tenant", got.TenantID)
	assert.Equal(t, "tasks", got.Channel)
	assert.Equal(t, "def", got.DefinitionCode)
	assert.False(t, got.OccurredAt.IsZero())
	assert.Equal(t, "v", got.Metadata["k"])

	got.Metadata["k"] = "changed"
	assert.Equal(t, "v", evt.Metadata["k"], "original metadata untouched")
	got.Recipients[0] = "changed"
	assert.Equal(t, " a ", recipients[0], "original recipients untouched")
}

func TestHooksNotifyShortCircuitsMissingRequired(t *testing.T) {
	capture := &CaptureHook{}
	hooks := Hooks{capture}

	require.NoError(t, hooks.Notify(context.Background(), Event{}))
	assert.Empty(t, capture.Events())
}

func TestHooksNotifyFanOutAndJoinErrors(t *testing.T) {
	errFirst := errors.New("boom1")
	errSecond := errors.New("boom2")
	capture := &CaptureHook{}
	var ctxSeen bool
	hooks := Hooks{
		HookFunc(func(ctx context.Context, event Event) error {
			ctxSeen = ctx != nil
			return nil
		}),
		capture,
		HookFunc(func(context.Context, Event) error { return errFirst }),
		nil,
		HookFunc(func(context.Context, Event) error { return errSecond }),
	}

	err := hooks.Notify(nil, Event{Verb: "task.subject", ObjectType: "task", ObjectID: "1"})

	assert.ErrorIs(t, err, errFirst)
	assert.ErrorIs(t, err, errSecond)
	assert.True(t, ctxSeen, "context falls back to non-nil")
	assert.Len(t, capture.Events(), 1)
}

func TestEmitterDisabledAndEnabled(t *testing.T) {
	capture := &CaptureHook{}
	event := Event{Verb: "task.addItem", ObjectType: "task", ObjectID: "1"}

	disabled := NewEmitter(Hooks{capture}, Config{Enabled: false})
	assert.False(t, disabled.Enabled())
	require.NoError(t, disabled.Emit(context.Background(), event))
	assert.Empty(t, capture.Events())

	enabled := NewEmitter(Hooks{capture}, Config{Enabled: true})
	assert.True(t, enabled.Enabled())
	require.NoError(t, enabled.Emit(context.Background(), event))
	require.Len(t, capture.Events(), 1)
	assert.Equal(t, DefaultChannel, capture.Events()[0].Channel)
}

func TestEmitterPreservesExplicitChannel(t *testing.T) {
	capture := &CaptureHook{}
	emitter := NewEmitter(Hooks{capture}, Config{Enabled: true, Channel: "default"})
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, emitter.Emit(context.Background(), Event{
		Verb:       "task.addItem",
		ObjectType: "task",
		ObjectID:   "1",
		Channel:    "custom",
		OccurredAt: at,
	}))

	require.Len(t, capture.Events(), 1)
	assert.Equal(t, "custom", capture.Events()[0].Channel)
	assert.Equal(t, at, capture.Events()[0].OccurredAt)
}

func TestEmitterFillsActorAndTenant(t *testing.T) {
	capture := &CaptureHook{}
	emitter := NewEmitter(Hooks{nil, capture}, Config{Enabled: true, ActorID: " sync ", TenantID: "acme"})

	require.NoError(t, emitter.Emit(context.Background(), Event{Verb: "task.subject", ObjectType: "task", ObjectID: "1"}))
	require.NoError(t, emitter.Emit(context.Background(), Event{Verb: "task.subject", ObjectType: "task", ObjectID: "2", ActorID: "alice"}))

	events := capture.Events()
	require.Len(t, events, 2)
	assert.Equal(t, "sync", events[0].ActorID)
	assert.Equal(t, "acme", events[0].TenantID)
	assert.Equal(t, "alice", events[1].ActorID)
}

func TestEmitterWithoutHooksIsDisabled(t *testing.T) {
	assert.False(t, NewEmitter(Hooks{nil}, Config{Enabled: true}).Enabled())
	var missing *Emitter
	assert.False(t, missing.Enabled())
}
