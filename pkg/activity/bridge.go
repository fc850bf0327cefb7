package activity

import (
	"context"
	"time"

	taskcore "github.com/goliatone/go-taskcore"
	"github.com/rs/zerolog"
)

// BridgeOption configures a Bridge.
type BridgeOption func(*Bridge)

// WithChanges limits the bridge to the given changes. By default every
// modification, status and collection change is forwarded.
func WithChanges(changes ...taskcore.ChangeKind) BridgeOption {
	return func(b *Bridge) { b.changes = append([]taskcore.ChangeKind(nil), changes...) }
}

func WithBridgeClock(clock taskcore.Clock) BridgeOption {
	return func(b *Bridge) {
		if clock != nil {
			b.clock = clock
		}
	}
}

func WithBridgeLogger(logger zerolog.Logger) BridgeOption {
	return func(b *Bridge) { b.logger = logger }
}

var defaultChanges = []taskcore.ChangeKind{
	taskcore.ChangeAddChild,
	taskcore.ChangeRemoveChild,
	taskcore.ChangeSubject,
	taskcore.ChangeDescription,
	taskcore.ChangeAppearance,
	taskcore.ChangeOrdering,
	taskcore.ChangeExpansion,
	taskcore.ChangeMarkDeleted,
	taskcore.ChangeMarkNotDeleted,
	taskcore.ChangeAddItem,
	taskcore.ChangeRemoveItem,
}

// Bridge observes a publisher and emits one activity event per item and
// change. Delivery is synchronous with the notification.
type Bridge struct {
	observers *taskcore.ObserverSet
	emitter   *Emitter
	changes   []taskcore.ChangeKind
	clock     taskcore.Clock
	logger    zerolog.Logger
}

// NewBridge starts forwarding notifications of kinds from publisher to
// emitter.
func NewBridge(publisher *taskcore.Publisher, emitter *Emitter, kinds []taskcore.Kind, opts ...BridgeOption) *Bridge {
	b := &Bridge{
		observers: taskcore.NewObserverSet(publisher),
		emitter:   emitter,
		changes:   defaultChanges,
		clock:     time.Now,
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	for _, kind := range kinds {
		for _, change := range b.changes {
			b.observers.Register(b.forward, kind.EventType(change), nil)
		}
	}
	return b
}

// Close stops forwarding.
func (b *Bridge) Close() {
	b.observers.RemoveAll()
}

func (b *Bridge) forward(event *taskcore.Event) {
	if !b.emitter.Enabled() {
		return
	}
	now := b.clock()
	for _, entry := range event.Entries() {
		for _, input := range EntryInputs(entry) {
			input.OccurredAt = now
			err := b.emitter.Emit(context.Background(), BuildObjectEvent(input))
			if err != nil {
				b.logger.Warn().Err(err).Str("event_type", string(entry.Type)).Msg("activity not recorded")
			}
		}
	}
}
