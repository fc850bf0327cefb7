package taskcore

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgramCacheEvictsLeastRecentlyUsed(t *testing.T) {
	cache, err := NewProgramCache(2)
	require.NoError(t, err)

	cache.Set("a", 1)
	cache.Set("b", 2)
	_, _ = cache.Get("a")
	cache.Set("c", 3)

	_, ok := cache.Get("b")
	assert.False(t, ok)
	value, ok := cache.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, value)
}

func TestProgramCacheDefaultSize(t *testing.T) {
	cache, err := NewProgramCache(0)
	require.NoError(t, err)
	for i := 0; i < DefaultProgramCacheSize; i++ {
		cache.Set(fmt.Sprintf("rule-%d", i), i)
	}
	_, ok := cache.Get("rule-0")
	assert.True(t, ok)
}
