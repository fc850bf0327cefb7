package sqlitestore_test

import (
	"context"
	"path/filepath"
	"testing"

	taskcore "github.com/goliatone/go-taskcore"
	"github.com/goliatone/go-taskcore/pkg/state"
	"github.com/goliatone/go-taskcore/pkg/state/sqlitestore"
	"github.com/goliatone/go-taskcore/pkg/state/statetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T, path string, opts ...sqlitestore.Option) *sqlitestore.Store {
	t.Helper()
	store, err := sqlitestore.NewStore(path, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStoreContractJSON(t *testing.T) {
	statetest.RunStoreContract(t, func(t *testing.T) state.Store[taskcore.State] {
		return openStore(t, sqlitestore.MemoryPath)
	})
}

func TestStoreContractCBOR(t *testing.T) {
	codec, err := state.NewCBORCodec()
	require.NoError(t, err)
	statetest.RunStoreContract(t, func(t *testing.T) state.Store[taskcore.State] {
		return openStore(t, sqlitestore.MemoryPath, sqlitestore.WithCodec(codec))
	})
}

func TestStoreSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "tasks.db")
	ref := state.Ref{Kind: taskcore.KindTask, ID: "t1"}

	first, err := sqlitestore.NewStore(path)
	require.NoError(t, err)
	saved, err := first.Save(ctx, ref, statetest.Snapshot("t1"), state.Meta{Extra: map[string]string{"origin": "import"}})
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second := openStore(t, path)
	got, meta, ok, err := second.Load(ctx, ref)
	require.NoError(t, err)
	require.True(t, ok)
	statetest.AssertSnapshot(t, statetest.Snapshot("t1"), got)
	assert.Equal(t, saved.ETag, meta.ETag)
	assert.Equal(t, "import", meta.Extra["origin"])
	assert.True(t, saved.UpdatedAt.Equal(meta.UpdatedAt))
}

func TestStoreRejectsPayloadOfAnotherCodec(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "tasks.db")
	ref := state.Ref{Kind: taskcore.KindTask, ID: "t1"}

	jsonStore, err := sqlitestore.NewStore(path)
	require.NoError(t, err)
	_, err = jsonStore.Save(ctx, ref, statetest.Snapshot("t1"), state.Meta{})
	require.NoError(t, err)
	require.NoError(t, jsonStore.Close())

	codec, err := state.NewCBORCodec()
	require.NoError(t, err)
	cborStore := openStore(t, path, sqlitestore.WithCodec(codec))
	_, _, _, err = cborStore.Load(ctx, ref)
	assert.ErrorContains(t, err, "payload codec")
}

func TestSyncerRoundTripThroughSQLite(t *testing.T) {
	ctx := context.Background()
	store := openStore(t, sqlitestore.MemoryPath)
	publisher := taskcore.NewPublisher()
	factory := func(ref state.Ref, _ taskcore.State) (taskcore.Item, error) {
		return taskcore.NewComposite(ref.Kind, taskcore.WithPublisher(publisher), taskcore.WithID(ref.ID)), nil
	}

	writer, err := state.NewSyncer(state.SyncConfig{Store: store})
	require.NoError(t, err)
	source := taskcore.NewCollection(taskcore.KindTask)
	child := taskcore.NewComposite(taskcore.KindTask, taskcore.WithID("child"), taskcore.WithSubject("Write tests"))
	parent := taskcore.NewComposite(taskcore.KindTask,
		taskcore.WithID("parent"), taskcore.WithSubject("Release"), taskcore.WithChildren(child))
	require.NoError(t, source.Append(parent))
	_, err = writer.Push(ctx, source)
	require.NoError(t, err)

	reader, err := state.NewSyncer(state.SyncConfig{Store: store, Factory: factory})
	require.NoError(t, err)
	target := taskcore.NewCollection(taskcore.KindTask)
	_, err = reader.Pull(ctx, target)
	require.NoError(t, err)

	loaded, err := target.GetObjectByID("child")
	require.NoError(t, err)
	assert.Equal(t, "Release -> Write tests", loaded.(*taskcore.Composite).RecursiveSubject())
}
