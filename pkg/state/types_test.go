package state_test

import (
	"testing"

	taskcore "github.com/goliatone/go-taskcore"
	"github.com/goliatone/go-taskcore/pkg/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefIdentifier(t *testing.T) {
	id, err := state.Ref{Kind: taskcore.KindTask, ID: "t1"}.Identifier()
	require.NoError(t, err)
	assert.Equal(t, "task/t1", id)

	_, err = state.Ref{ID: "t1"}.Identifier()
	assert.Error(t, err)
	_, err = state.Ref{Kind: taskcore.KindTask}.Identifier()
	assert.Error(t, err)
}

func TestRefOf(t *testing.T) {
	note := taskcore.NewObject(taskcore.KindNote, taskcore.WithID("n1"))
	assert.Equal(t, state.Ref{Kind: taskcore.KindNote, ID: "n1"}, state.RefOf(note))
}

func TestCheckETag(t *testing.T) {
	assert.NoError(t, state.CheckETag("", "3"))
	assert.NoError(t, state.CheckETag("3", ""))
	assert.NoError(t, state.CheckETag("3", "3"))
	assert.ErrorIs(t, state.CheckETag("2", "3"), state.ErrETagMismatch)
}

func TestCloneMetaCopiesExtra(t *testing.T) {
	meta := state.Meta{ETag: "1", Extra: map[string]string{"source": "import"}}
	clone := state.CloneMeta(meta)
	clone.Extra["source"] = "edit"
	assert.Equal(t, "import", meta.Extra["source"])
}
