package usersink_test

import (
	"context"
	"testing"
	"time"

	taskcore "github.com/goliatone/go-taskcore"
	"github.com/goliatone/go-taskcore/pkg/activity"
	"github.com/goliatone/go-taskcore/pkg/activity/usersink"
	usertypes "github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	records []usertypes.ActivityRecord
	err     error
}

func (s *recordingSink) Log(_ context.Context, record usertypes.ActivityRecord) error {
	s.records = append(s.records, record)
	return s.err
}

func TestHookNotifyMapsEvent(t *testing.T) {
	sink := &recordingSink{}
	hook := usersink.Hook{Sink: sink}

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	actorID := uuid.New()
	userID := uuid.New()
	tenantID := uuid.New()
	objectID := uuid.New().String()

	event := activity.Event{
		Verb:           "task.subject",
		ActorID:        actorID.String(),
		UserID:         userID.String(),
		TenantID:       tenantID.String(),
		ObjectType:     "task",
		ObjectID:       objectID,
		Channel:        "taskcore",
		DefinitionCode: "task:subject",
		Recipients:     []string{"recipient@example.com"},
		Metadata: map[string]any{
			"subject": "Plan release",
		},
		OccurredAt: now,
	}

	require.NoError(t, hook.Notify(context.Background(), event))

	require.Len(t, sink.records, 1)
	record := sink.records[0]
	assert.Equal(t, actorID, record.ActorID)
	assert.Equal(t, userID, record.UserID)
	assert.Equal(t, tenantID, record.TenantID)
	assert.Equal(t, "task.subject", record.Verb)
	assert.Equal(t, "task", record.ObjectType)
	assert.Equal(t, objectID, record.ObjectID)
	assert.Equal(t, "taskcore", record.Channel)
	assert.Equal(t, now, record.OccurredAt)
	assert.Equal(t, "task:subject", record.Data["definition_code"])
	assert.Equal(t, "Plan release", record.Data["subject"])
	assert.Equal(t, []string{"recipient@example.com"}, record.Data["recipients"])
}

func TestHookNotifySkipsMissingVerb(t *testing.T) {
	sink := &recordingSink{}
	hook := usersink.Hook{Sink: sink}

	_ = hook.Notify(context.Background(), activity.Event{})

	assert.Empty(t, sink.records)
}

func TestHookNotifyDefaultsTimestamp(t *testing.T) {
	sink := &recordingSink{}
	hook := usersink.Hook{Sink: sink}

	err := hook.Notify(context.Background(), activity.Event{
		Verb:       "task.addItem",
		ObjectType: "task",
		ObjectID:   "1",
	})
	require.NoError(t, err)
	require.Len(t, sink.records, 1)
	assert.False(t, sink.records[0].OccurredAt.IsZero())
}

func TestHookRecordsBridgedChanges(t *testing.T) {
	sink := &recordingSink{}
	tenant := uuid.New()
	emitter := activity.NewEmitter(activity.Hooks{usersink.Hook{Sink: sink}}, activity.Config{
		Enabled:  true,
		TenantID: tenant.String(),
	})
	publisher := taskcore.NewPublisher()
	bridge := activity.NewBridge(publisher, emitter, []taskcore.Kind{taskcore.KindNote})
	defer bridge.Close()
	note := taskcore.NewObject(taskcore.KindNote, taskcore.WithPublisher(publisher), taskcore.WithID("n1"))

	note.SetDescription("Call back")

	require.Len(t, sink.records, 1)
	record := sink.records[0]
	assert.Equal(t, "note.description", record.Verb)
	assert.Equal(t, "n1", record.ObjectID)
	assert.Equal(t, tenant, record.TenantID)
	assert.Equal(t, uuid.Nil, record.ActorID)
	assert.Equal(t, "new", record.Data["status"])
}
