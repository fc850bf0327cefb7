package taskcore

import (
	"sync"

	"github.com/rs/zerolog"
)

// Observer receives the part of an event it registered for.
type Observer func(event *Event)

// Subscription identifies one registration on a Publisher.
type Subscription struct {
	id        uint64
	eventType EventType
}

// EventType returns the event type the subscription listens to.
func (s Subscription) EventType() EventType {
	return s.eventType
}

type registration struct {
	id        uint64
	observer  Observer
	eventType EventType
	source    any
}

// PublisherOption configures a Publisher.
type PublisherOption func(*Publisher)

// WithPublisherLogger sets the logger used for delivery diagnostics.
func WithPublisherLogger(logger zerolog.Logger) PublisherOption {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// Publisher is the in-process event bus. Delivery is synchronous: Notify
// returns after every matching observer has run. The registry is guarded so
// registration may happen from any goroutine, and observers may register or
// unregister while being notified.
type Publisher struct {
	mu            sync.RWMutex
	next          uint64
	registrations []registration
	logger        zerolog.Logger
}

// NewPublisher constructs an empty Publisher.
func NewPublisher(opts ...PublisherOption) *Publisher {
	p := &Publisher{logger: zerolog.Nop()}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// Register subscribes observer to eventType. A nil source observes every
// source, otherwise only entries reported by source are delivered.
func (p *Publisher) Register(observer Observer, eventType EventType, source any) Subscription {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.next++
	p.registrations = append(p.registrations, registration{
		id:        p.next,
		observer:  observer,
		eventType: eventType,
		source:    source,
	})
	return Subscription{id: p.next, eventType: eventType}
}

// Unregister removes the given subscriptions. Unknown subscriptions are ignored.
func (p *Publisher) Unregister(subs ...Subscription) {
	if len(subs) == 0 {
		return
	}
	ids := make(map[uint64]struct{}, len(subs))
	for _, sub := range subs {
		ids[sub.id] = struct{}{}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	kept := p.registrations[:0]
	for _, reg := range p.registrations {
		if _, drop := ids[reg.id]; drop {
			continue
		}
		kept = append(kept, reg)
	}
	for i := len(kept); i < len(p.registrations); i++ {
		p.registrations[i] = registration{}
	}
	p.registrations = kept
}

// Observers returns how many registrations listen to eventType.
func (p *Publisher) Observers(eventType EventType) int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	count := 0
	for _, reg := range p.registrations {
		if reg.eventType == eventType {
			count++
		}
	}
	return count
}

// Notify delivers event. Each registration, in registration order, receives a
// sub-event holding only the entries that match its type and source; nothing
// is delivered to registrations without a match.
func (p *Publisher) Notify(event *Event) {
	if p == nil || event.Empty() {
		return
	}
	p.mu.RLock()
	regs := make([]registration, len(p.registrations))
	copy(regs, p.registrations)
	p.mu.RUnlock()

	delivered := 0
	for _, reg := range regs {
		if reg.observer == nil {
			continue
		}
		sub := event.SubEvent(Key{Type: reg.eventType, Source: reg.source})
		if sub.Empty() {
			continue
		}
		reg.observer(sub)
		delivered++
	}
	p.logger.Debug().
		Str("event_type", string(event.Type())).
		Int("entries", event.Len()).
		Int("observers", delivered).
		Msg("event delivered")
}

// ObserverSet groups subscriptions so an owner can drop all of them at once.
type ObserverSet struct {
	publisher *Publisher
	mu        sync.Mutex
	subs      []Subscription
}

// NewObserverSet returns an empty set bound to publisher.
func NewObserverSet(publisher *Publisher) *ObserverSet {
	return &ObserverSet{publisher: publisher}
}

// Register subscribes observer through the underlying publisher and tracks
// the subscription.
func (s *ObserverSet) Register(observer Observer, eventType EventType, source any) Subscription {
	sub := s.publisher.Register(observer, eventType, source)
	s.mu.Lock()
	s.subs = append(s.subs, sub)
	s.mu.Unlock()
	return sub
}

// RegisterAll subscribes observer to every type in types.
func (s *ObserverSet) RegisterAll(observer Observer, types []EventType, source any) {
	for _, eventType := range types {
		s.Register(observer, eventType, source)
	}
}

// Len returns the number of tracked subscriptions.
func (s *ObserverSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

// RemoveAll unregisters every tracked subscription.
func (s *ObserverSet) RemoveAll() {
	s.mu.Lock()
	subs := s.subs
	s.subs = nil
	s.mu.Unlock()
	s.publisher.Unregister(subs...)
}
