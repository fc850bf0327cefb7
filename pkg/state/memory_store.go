package state

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	taskcore "github.com/goliatone/go-taskcore"
)

// MemoryStore is an in-memory Store intended for tests and examples. It uses
// Ref.Identifier() as its key and issues increasing numeric ETags.
type MemoryStore[T any] struct {
	mu      sync.RWMutex
	records map[string]memoryRecord[T]
	version uint64
	clock   func() time.Time
}

type memoryRecord[T any] struct {
	ref      Ref
	snapshot T
	meta     Meta
}

func NewMemoryStore[T any]() *MemoryStore[T] {
	return &MemoryStore[T]{
		records: map[string]memoryRecord[T]{},
		clock:   time.Now,
	}
}

func (s *MemoryStore[T]) Load(_ context.Context, ref Ref) (T, Meta, bool, error) {
	var zero T
	key, err := ref.Identifier()
	if err != nil {
		return zero, Meta{}, false, err
	}

	s.mu.RLock()
	record, ok := s.records[key]
	s.mu.RUnlock()
	if !ok {
		return zero, Meta{}, false, nil
	}
	return record.snapshot, CloneMeta(record.meta), true, nil
}

func (s *MemoryStore[T]) Save(_ context.Context, ref Ref, snapshot T, meta Meta) (Meta, error) {
	key, err := ref.Identifier()
	if err != nil {
		return Meta{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if current, ok := s.records[key]; ok {
		if err := CheckETag(meta.ETag, current.meta.ETag); err != nil {
			return Meta{}, err
		}
	}
	s.version++
	saved := CloneMeta(meta)
	saved.ETag = strconv.FormatUint(s.version, 10)
	saved.UpdatedAt = s.clock().UTC()
	s.records[key] = memoryRecord[T]{ref: ref, snapshot: snapshot, meta: saved}
	return CloneMeta(saved), nil
}

func (s *MemoryStore[T]) Delete(_ context.Context, ref Ref, meta Meta) error {
	key, err := ref.Identifier()
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.records[key]
	if !ok {
		return ErrNotFound
	}
	if err := CheckETag(meta.ETag, current.meta.ETag); err != nil {
		return err
	}
	delete(s.records, key)
	return nil
}

func (s *MemoryStore[T]) List(_ context.Context, kind taskcore.Kind) ([]Entry[T], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Entry[T]
	for _, record := range s.records {
		if record.ref.Kind != kind {
			continue
		}
		out = append(out, Entry[T]{Ref: record.ref, Snapshot: record.snapshot, Meta: CloneMeta(record.meta)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ref.ID < out[j].Ref.ID })
	return out, nil
}
