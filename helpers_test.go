package taskcore

import (
	"fmt"
	"time"
)

var testEpoch = time.Date(2024, time.March, 1, 9, 30, 0, 0, time.UTC)

type recorder struct {
	events []*Event
}

func (r *recorder) observe(event *Event) {
	r.events = append(r.events, event)
}

func (r *recorder) last() *Event {
	if len(r.events) == 0 {
		return nil
	}
	return r.events[len(r.events)-1]
}

func sequentialIDs(prefix string) IDGenerator {
	next := 0
	return IDGeneratorFunc(func() string {
		next++
		return fmt.Sprintf("%s-%d", prefix, next)
	})
}

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

// watch registers a recorder for every status and modification event of kind.
func watch(publisher *Publisher, kind Kind) *recorder {
	rec := &recorder{}
	set := NewObserverSet(publisher)
	set.RegisterAll(rec.observe, CompositeModificationEventTypes(kind), nil)
	set.RegisterAll(rec.observe, StatusEventTypes(kind), nil)
	return rec
}

func testObjectOptions(publisher *Publisher) []ObjectOption {
	return []ObjectOption{
		WithPublisher(publisher),
		WithIDGenerator(sequentialIDs("obj")),
		WithClock(fixedClock(testEpoch)),
	}
}
