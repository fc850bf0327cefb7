package state_test

import (
	"testing"

	taskcore "github.com/goliatone/go-taskcore"
	"github.com/goliatone/go-taskcore/pkg/state"
	"github.com/goliatone/go-taskcore/pkg/state/statetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func codecs(t *testing.T) []state.Codec {
	t.Helper()
	cborCodec, err := state.NewCBORCodec()
	require.NoError(t, err)
	return []state.Codec{state.JSONCodec{}, cborCodec}
}

func TestCodecsRoundTripState(t *testing.T) {
	for _, codec := range codecs(t) {
		t.Run(codec.Name(), func(t *testing.T) {
			want := statetest.Snapshot("t1")
			want.Status = taskcore.StatusChanged
			want.BackgroundColor = taskcore.NewColor(1, 2, 3, 128)

			data, err := codec.Encode(want)
			require.NoError(t, err)
			got, err := codec.Decode(data)
			require.NoError(t, err)

			statetest.AssertSnapshot(t, want, got)
		})
	}
}

func TestCodecsKeepUnsetAppearance(t *testing.T) {
	for _, codec := range codecs(t) {
		t.Run(codec.Name(), func(t *testing.T) {
			want := taskcore.State{ID: "bare", Status: taskcore.StatusNew}

			data, err := codec.Encode(want)
			require.NoError(t, err)
			got, err := codec.Decode(data)
			require.NoError(t, err)

			assert.Nil(t, got.ForegroundColor)
			assert.Nil(t, got.Font)
			assert.Equal(t, taskcore.StatusNew, got.Status)
			assert.True(t, got.CreationDateTime.IsZero())
		})
	}
}

func TestCodecsRejectGarbage(t *testing.T) {
	for _, codec := range codecs(t) {
		t.Run(codec.Name(), func(t *testing.T) {
			_, err := codec.Decode([]byte{0xff, 0x00, 0x01})
			assert.Error(t, err)
		})
	}
}
