package taskcore

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultProgramCacheSize bounds NewProgramCache when size is not positive.
const DefaultProgramCacheSize = 256

type lruProgramCache struct {
	cache *lru.Cache[string, any]
}

// NewProgramCache returns a ProgramCache keeping the size most recently used
// programs.
func NewProgramCache(size int) (ProgramCache, error) {
	if size <= 0 {
		size = DefaultProgramCacheSize
	}
	cache, err := lru.New[string, any](size)
	if err != nil {
		return nil, err
	}
	return &lruProgramCache{cache: cache}, nil
}

func (c *lruProgramCache) Get(key string) (any, bool) {
	return c.cache.Get(key)
}

func (c *lruProgramCache) Set(key string, value any) {
	c.cache.Add(key, value)
}
