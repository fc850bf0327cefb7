package state

import (
	"strings"
	"sync"
	"time"

	taskcore "github.com/goliatone/go-taskcore"
	"github.com/rs/zerolog"
)

// TrackerOption configures a Tracker.
type TrackerOption func(*Tracker)

// WithTrackerClock sets the source of modification timestamps.
func WithTrackerClock(clock taskcore.Clock) TrackerOption {
	return func(t *Tracker) {
		if clock != nil {
			t.clock = clock
		}
	}
}

func WithTrackerLogger(logger zerolog.Logger) TrackerOption {
	return func(t *Tracker) { t.logger = logger }
}

// Tracker marks items dirty when they report a modification. Every source of
// a subject, description, appearance, ordering, child or expansion
// notification is moved to StatusChanged, unless new or deleted, and gets its
// modification time stamped. Children added or removed are marked as well.
type Tracker struct {
	observers *taskcore.ObserverSet
	clock     taskcore.Clock
	logger    zerolog.Logger

	mu        sync.Mutex
	suspended int
}

// NewTracker starts tracking the given kinds on publisher.
func NewTracker(publisher *taskcore.Publisher, kinds []taskcore.Kind, opts ...TrackerOption) *Tracker {
	t := &Tracker{
		observers: taskcore.NewObserverSet(publisher),
		clock:     time.Now,
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(t)
		}
	}
	for _, kind := range kinds {
		t.observers.RegisterAll(t.onChange, taskcore.CompositeModificationEventTypes(kind), nil)
	}
	return t
}

// Suspend stops tracking until the returned resume function is called. Calls
// nest.
func (t *Tracker) Suspend() (resume func()) {
	t.mu.Lock()
	t.suspended++
	t.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			t.mu.Lock()
			t.suspended--
			t.mu.Unlock()
		})
	}
}

// Close unregisters the tracker.
func (t *Tracker) Close() {
	t.observers.RemoveAll()
}

func (t *Tracker) active() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.suspended == 0
}

func (t *Tracker) onChange(event *taskcore.Event) {
	if !t.active() {
		return
	}
	now := t.clock()
	for _, entry := range event.Entries() {
		t.touch(entry.Source, now)
		if isChildChange(entry.Type) {
			for _, value := range entry.Values {
				t.touch(value, now)
			}
		}
	}
}

func (t *Tracker) touch(target any, now time.Time) {
	item, ok := target.(taskcore.Item)
	if !ok {
		return
	}
	item.MarkDirty(false)
	item.SetModificationDateTime(now)
	t.logger.Debug().Str("id", item.ID()).Stringer("status", item.Status()).Msg("item touched")
}

func isChildChange(eventType taskcore.EventType) bool {
	s := string(eventType)
	return strings.HasSuffix(s, "."+string(taskcore.ChangeAddChild)) ||
		strings.HasSuffix(s, "."+string(taskcore.ChangeRemoveChild))
}
