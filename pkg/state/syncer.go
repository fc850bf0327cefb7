package state

import (
	"context"
	"errors"
	"fmt"
	"sync"

	taskcore "github.com/goliatone/go-taskcore"
	"github.com/rs/zerolog"
)

var (
	ErrNoStore   = errors.New("state: store is required")
	ErrNoFactory = errors.New("state: factory is required to create pulled items")
)

// Factory builds a local item for a record the collection does not hold yet.
// The returned item must carry ref.ID; its state is applied by the Syncer.
type Factory func(ref Ref, snapshot taskcore.State) (taskcore.Item, error)

// SyncConfig wires a Syncer.
type SyncConfig struct {
	Store   Store[taskcore.State]
	Factory Factory
	// Tracker, when set, is suspended while pulled state is applied so that
	// loading does not mark items dirty.
	Tracker *Tracker
	Logger  zerolog.Logger
}

// SyncReport lists, by id, what a Push or Pull did.
type SyncReport struct {
	Saved   []string
	Deleted []string
	Loaded  []string
	Created []string
	Skipped []string
	Removed []string
	Failed  []string
}

// Syncer reconciles a Collection with a Store using the sync status of each
// item. It remembers the last ETag seen per record and sends it back on the
// next write.
type Syncer struct {
	store   Store[taskcore.State]
	factory Factory
	tracker *Tracker
	logger  zerolog.Logger

	mu    sync.Mutex
	etags map[string]string
}

func NewSyncer(cfg SyncConfig) (*Syncer, error) {
	if cfg.Store == nil {
		return nil, ErrNoStore
	}
	return &Syncer{
		store:   cfg.Store,
		factory: cfg.Factory,
		tracker: cfg.Tracker,
		logger:  cfg.Logger,
		etags:   map[string]string{},
	}, nil
}

type pushResult struct {
	item   taskcore.Item
	prior  taskcore.Status
	done   bool
	delete bool
}

// Push writes pending changes. New and changed items are saved with status
// none and cleaned; deleted items are removed from the store and then from
// the collection. Items that fail keep the status they had before the push.
// Errors are joined; the report lists what succeeded.
func (s *Syncer) Push(ctx context.Context, collection *taskcore.Collection) (SyncReport, error) {
	var report SyncReport
	var errs []error
	var results []pushResult

	for _, item := range collection.Items() {
		prior := item.Status()
		if prior == taskcore.StatusNone {
			continue
		}
		result := pushResult{item: item, prior: prior, delete: prior == taskcore.StatusDeleted}
		var err error
		if result.delete {
			err = s.remove(ctx, item)
		} else {
			err = s.save(ctx, item)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("state: push %s: %w", item.ID(), err))
			report.Failed = append(report.Failed, item.ID())
		} else {
			result.done = true
			if result.delete {
				report.Deleted = append(report.Deleted, item.ID())
			} else {
				report.Saved = append(report.Saved, item.ID())
			}
		}
		results = append(results, result)
	}

	// Statuses change only after every store call so that a cascading clean
	// cannot hide a pending child.
	var removed []taskcore.Item
	for _, result := range results {
		if !result.done {
			continue
		}
		if result.delete {
			removed = append(removed, result.item)
			continue
		}
		result.item.CleanDirty()
	}
	for _, result := range results {
		if result.done || result.item.Status() == result.prior {
			continue
		}
		restored := result.item.GetState()
		restored.Status = result.prior
		result.item.SetState(restored)
	}
	if len(removed) > 0 {
		if err := collection.RemoveItems(membersOf(collection, removed)...); err != nil {
			errs = append(errs, fmt.Errorf("state: push: %w", err))
		}
	}

	s.logger.Debug().
		Int("saved", len(report.Saved)).
		Int("deleted", len(report.Deleted)).
		Int("failed", len(report.Failed)).
		Msg("push finished")
	return report, errors.Join(errs...)
}

func (s *Syncer) save(ctx context.Context, item taskcore.Item) error {
	ref := RefOf(item)
	key, err := ref.Identifier()
	if err != nil {
		return err
	}
	snapshot := item.GetState()
	snapshot.Status = taskcore.StatusNone
	meta := Meta{ETag: s.etag(key), ParentID: parentID(item)}
	saved, err := s.store.Save(ctx, ref, snapshot, meta)
	if err != nil {
		return err
	}
	s.remember(key, saved.ETag)
	return nil
}

func (s *Syncer) remove(ctx context.Context, item taskcore.Item) error {
	ref := RefOf(item)
	key, err := ref.Identifier()
	if err != nil {
		return err
	}
	err = s.store.Delete(ctx, ref, Meta{ETag: s.etag(key)})
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	s.forget(key)
	return nil
}

// Pull loads every record of the collection's kind. Clean local items take
// the stored state, unknown records are created through the Factory and
// linked to their parent, and clean items whose record disappeared are
// removed. Items with pending changes are left alone and reported as skipped.
func (s *Syncer) Pull(ctx context.Context, collection *taskcore.Collection) (SyncReport, error) {
	var report SyncReport
	entries, err := s.store.List(ctx, collection.Kind())
	if err != nil {
		return report, fmt.Errorf("state: pull %s: %w", collection.Kind(), err)
	}
	if s.tracker != nil {
		resume := s.tracker.Suspend()
		defer resume()
	}

	var errs []error
	seen := map[string]struct{}{}
	local := map[string]taskcore.Item{}
	var created []taskcore.Item
	var parents []string

	for _, entry := range entries {
		seen[entry.Ref.ID] = struct{}{}
		key, err := entry.Ref.Identifier()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		item, lookupErr := collection.GetObjectByID(entry.Ref.ID)
		if lookupErr == nil {
			local[entry.Ref.ID] = item
			if item.Status() != taskcore.StatusNone {
				report.Skipped = append(report.Skipped, item.ID())
				continue
			}
			item.SetState(entry.Snapshot)
			s.remember(key, entry.Meta.ETag)
			report.Loaded = append(report.Loaded, item.ID())
			continue
		}
		if s.factory == nil {
			errs = append(errs, fmt.Errorf("state: pull %s: %w", entry.Ref.ID, ErrNoFactory))
			continue
		}
		item, err = s.factory(entry.Ref, entry.Snapshot)
		if err != nil {
			errs = append(errs, fmt.Errorf("state: pull %s: %w", entry.Ref.ID, err))
			continue
		}
		item.SetState(entry.Snapshot)
		s.remember(key, entry.Meta.ETag)
		local[entry.Ref.ID] = item
		created = append(created, item)
		parents = append(parents, entry.Meta.ParentID)
		report.Created = append(report.Created, item.ID())
	}

	for i, item := range created {
		if parents[i] != "" {
			s.link(item, local[parents[i]])
		}
	}
	if len(created) > 0 {
		if err := collection.Extend(created...); err != nil {
			errs = append(errs, fmt.Errorf("state: pull: %w", err))
		}
	}

	var gone []taskcore.Item
	for _, item := range collection.Items() {
		if _, ok := seen[item.ID()]; ok || item.Status() != taskcore.StatusNone {
			continue
		}
		key, err := RefOf(item).Identifier()
		if err != nil || s.etag(key) == "" {
			continue
		}
		s.forget(key)
		gone = append(gone, item)
		report.Removed = append(report.Removed, item.ID())
	}
	if len(gone) > 0 {
		if err := collection.RemoveItems(membersOf(collection, gone)...); err != nil {
			errs = append(errs, fmt.Errorf("state: pull: %w", err))
		}
	}

	s.logger.Debug().
		Int("loaded", len(report.Loaded)).
		Int("created", len(report.Created)).
		Int("skipped", len(report.Skipped)).
		Int("removed", len(report.Removed)).
		Msg("pull finished")
	return report, errors.Join(errs...)
}

// link attaches a pulled composite under parent. It reports false when the
// item stays a root.
func (s *Syncer) link(item, parent taskcore.Item) bool {
	child, ok := item.(interface{ Node() *taskcore.Composite })
	if !ok || parent == nil {
		return false
	}
	owner, ok := parent.(interface{ Node() *taskcore.Composite })
	if !ok {
		return false
	}
	if err := owner.Node().AddChild(child.Node()); err != nil {
		s.logger.Warn().Err(err).Str("id", item.ID()).Msg("pulled item kept as root")
		return false
	}
	return true
}

// ETag returns the version last seen for ref, if any.
func (s *Syncer) ETag(ref Ref) string {
	key, err := ref.Identifier()
	if err != nil {
		return ""
	}
	return s.etag(key)
}

func (s *Syncer) etag(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.etags[key]
}

func (s *Syncer) remember(key, etag string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.etags[key] = etag
}

func (s *Syncer) forget(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.etags, key)
}

func parentID(item taskcore.Item) string {
	node, ok := item.(interface{ Parent() *taskcore.Composite })
	if !ok {
		return ""
	}
	if parent := node.Parent(); parent != nil {
		return parent.ID()
	}
	return ""
}

// membersOf keeps the items still held by collection whose ancestors are not
// also listed, since removing an ancestor removes its subtree.
func membersOf(collection *taskcore.Collection, items []taskcore.Item) []taskcore.Item {
	listed := map[string]struct{}{}
	for _, item := range items {
		listed[item.ID()] = struct{}{}
	}
	var out []taskcore.Item
	for _, item := range items {
		if !collection.Contains(item) {
			continue
		}
		if hasListedAncestor(item, listed) {
			continue
		}
		out = append(out, item)
	}
	return out
}

func hasListedAncestor(item taskcore.Item, listed map[string]struct{}) bool {
	node, ok := item.(interface{ Parent() *taskcore.Composite })
	if !ok {
		return false
	}
	for parent := node.Parent(); parent != nil; parent = parent.Parent() {
		if _, ok := listed[parent.ID()]; ok {
			return true
		}
	}
	return false
}
