package taskcore

import (
	"testing"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUUIDGenerator(t *testing.T) {
	id := UUIDGenerator{}.NewID()
	_, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.NotEqual(t, id, UUIDGenerator{}.NewID())
}

func TestULIDGeneratorIsMonotonic(t *testing.T) {
	gen := NewULIDGenerator()
	gen.clock = fixedClock(testEpoch)

	previous := gen.NewID()
	for i := 0; i < 50; i++ {
		next := gen.NewID()
		require.Less(t, previous, next)
		previous = next
	}
	parsed, err := ulid.ParseStrict(previous)
	require.NoError(t, err)
	assert.Equal(t, ulid.Timestamp(testEpoch), parsed.Time())
}

func TestObjectsUseInjectedGenerator(t *testing.T) {
	ids := sequentialIDs("task")
	first := NewObject(KindTask, WithIDGenerator(ids))
	second := NewComposite(KindTask, WithIDGenerator(ids))
	assert.Equal(t, "task-1", first.ID())
	assert.Equal(t, "task-2", second.ID())
}
