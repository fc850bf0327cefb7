// Package statetest holds the behaviour every state.Store implementation must
// share. Store packages call RunStoreContract from their own tests.
package statetest

import (
	"context"
	"errors"
	"testing"
	"time"

	taskcore "github.com/goliatone/go-taskcore"
	"github.com/goliatone/go-taskcore/pkg/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// StoreFactory returns an empty store for one subtest.
type StoreFactory func(t *testing.T) state.Store[taskcore.State]

var epoch = time.Date(2024, time.March, 1, 9, 30, 0, 0, time.UTC)

// Snapshot returns a fully populated state with id.
func Snapshot(id string) taskcore.State {
	return taskcore.State{
		Subject:              "Subject " + id,
		Description:          "Description of " + id,
		ID:                   id,
		Status:               taskcore.StatusNone,
		ForegroundColor:      taskcore.NewColor(255, 0, 0, 255),
		BackgroundColor:      nil,
		Font:                 &taskcore.Font{Family: "Mono", Size: 10, Italic: true},
		Icon:                 "folder_blue_icon",
		SelectedIcon:         "folder_blue_open_icon",
		CreationDateTime:     epoch,
		ModificationDateTime: epoch.Add(time.Minute),
		Ordering:             3,
	}
}

// AssertSnapshot compares states, times by instant.
func AssertSnapshot(t *testing.T, want, got taskcore.State) {
	t.Helper()
	assert.True(t, want.CreationDateTime.Equal(got.CreationDateTime), "creation time %s != %s", want.CreationDateTime, got.CreationDateTime)
	assert.True(t, want.ModificationDateTime.Equal(got.ModificationDateTime), "modification time %s != %s", want.ModificationDateTime, got.ModificationDateTime)
	want.CreationDateTime, got.CreationDateTime = time.Time{}, time.Time{}
	want.ModificationDateTime, got.ModificationDateTime = time.Time{}, time.Time{}
	assert.Equal(t, want, got)
}

// RunStoreContract runs the shared Store cases against stores built by
// newStore.
func RunStoreContract(t *testing.T, newStore StoreFactory) {
	t.Helper()
	ctx := context.Background()
	task := func(id string) state.Ref { return state.Ref{Kind: taskcore.KindTask, ID: id} }

	t.Run("load missing", func(t *testing.T) {
		store := newStore(t)
		_, _, ok, err := store.Load(ctx, task("nope"))
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("invalid ref", func(t *testing.T) {
		store := newStore(t)
		_, err := store.Save(ctx, state.Ref{Kind: taskcore.KindTask}, Snapshot("x"), state.Meta{})
		assert.Error(t, err)
		_, _, _, err = store.Load(ctx, state.Ref{ID: "x"})
		assert.Error(t, err)
	})

	t.Run("save then load", func(t *testing.T) {
		store := newStore(t)
		meta, err := store.Save(ctx, task("t1"), Snapshot("t1"), state.Meta{ParentID: "root"})
		require.NoError(t, err)
		assert.NotEmpty(t, meta.ETag)
		assert.False(t, meta.UpdatedAt.IsZero())

		got, loaded, ok, err := store.Load(ctx, task("t1"))
		require.NoError(t, err)
		require.True(t, ok)
		AssertSnapshot(t, Snapshot("t1"), got)
		assert.Equal(t, meta.ETag, loaded.ETag)
		assert.Equal(t, "root", loaded.ParentID)
	})

	t.Run("save issues a new etag", func(t *testing.T) {
		store := newStore(t)
		first, err := store.Save(ctx, task("t1"), Snapshot("t1"), state.Meta{})
		require.NoError(t, err)
		second, err := store.Save(ctx, task("t1"), Snapshot("t1"), state.Meta{ETag: first.ETag})
		require.NoError(t, err)
		assert.NotEqual(t, first.ETag, second.ETag)
	})

	t.Run("stale etag is rejected", func(t *testing.T) {
		store := newStore(t)
		first, err := store.Save(ctx, task("t1"), Snapshot("t1"), state.Meta{})
		require.NoError(t, err)
		_, err = store.Save(ctx, task("t1"), Snapshot("t1"), state.Meta{ETag: first.ETag})
		require.NoError(t, err)

		_, err = store.Save(ctx, task("t1"), Snapshot("t1"), state.Meta{ETag: first.ETag})
		assert.True(t, errors.Is(err, state.ErrETagMismatch), "got %v", err)
		err = store.Delete(ctx, task("t1"), state.Meta{ETag: first.ETag})
		assert.True(t, errors.Is(err, state.ErrETagMismatch), "got %v", err)
	})

	t.Run("delete", func(t *testing.T) {
		store := newStore(t)
		meta, err := store.Save(ctx, task("t1"), Snapshot("t1"), state.Meta{})
		require.NoError(t, err)
		require.NoError(t, store.Delete(ctx, task("t1"), meta))

		_, _, ok, err := store.Load(ctx, task("t1"))
		require.NoError(t, err)
		assert.False(t, ok)
		err = store.Delete(ctx, task("t1"), state.Meta{})
		assert.True(t, errors.Is(err, state.ErrNotFound), "got %v", err)
	})

	t.Run("list by kind ordered by id", func(t *testing.T) {
		store := newStore(t)
		for _, id := range []string{"b", "c", "a"} {
			_, err := store.Save(ctx, task(id), Snapshot(id), state.Meta{})
			require.NoError(t, err)
		}
		_, err := store.Save(ctx, state.Ref{Kind: taskcore.KindNote, ID: "n"}, Snapshot("n"), state.Meta{})
		require.NoError(t, err)

		entries, err := store.List(ctx, taskcore.KindTask)
		require.NoError(t, err)
		ids := make([]string, 0, len(entries))
		for _, entry := range entries {
			ids = append(ids, entry.Ref.ID)
			assert.Equal(t, taskcore.KindTask, entry.Ref.Kind)
			assert.NotEmpty(t, entry.Meta.ETag)
		}
		assert.Equal(t, []string{"a", "b", "c"}, ids)
		AssertSnapshot(t, Snapshot("a"), entries[0].Snapshot)

		none, err := store.List(ctx, taskcore.KindCategory)
		require.NoError(t, err)
		assert.Empty(t, none)
	})
}
