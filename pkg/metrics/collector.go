// Package metrics exposes item notifications and sync outcomes as Prometheus
// counters.
package metrics

import (
	"fmt"
	"strings"

	taskcore "github.com/goliatone/go-taskcore"
	"github.com/goliatone/go-taskcore/pkg/state"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "taskcore"

// Collector counts notification entries by kind and change, and sync outcomes
// by operation.
type Collector struct {
	observers     *taskcore.ObserverSet
	notifications *prometheus.CounterVec
	syncItems     *prometheus.CounterVec
}

// NewCollector registers the counters on reg and observes kinds on
// publisher. A nil publisher only enables ObserveSync.
func NewCollector(reg prometheus.Registerer, publisher *taskcore.Publisher, kinds ...taskcore.Kind) (*Collector, error) {
	c := &Collector{
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Notification entries delivered, by item kind and change.",
		}, []string{"kind", "change"}),
		syncItems: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_items_total",
			Help:      "Items handled by push and pull, by outcome.",
		}, []string{"op", "outcome"}),
	}
	if reg != nil {
		for _, collector := range []prometheus.Collector{c.notifications, c.syncItems} {
			if err := reg.Register(collector); err != nil {
				return nil, fmt.Errorf("metrics: register: %w", err)
			}
		}
	}
	if publisher != nil {
		c.observers = taskcore.NewObserverSet(publisher)
		for _, kind := range kinds {
			types := append(taskcore.CompositeModificationEventTypes(kind), taskcore.StatusEventTypes(kind)...)
			types = append(types, kind.EventType(taskcore.ChangeAddItem), kind.EventType(taskcore.ChangeRemoveItem))
			c.observers.RegisterAll(c.count, types, nil)
		}
	}
	return c, nil
}

// Notifications returns the notification counter.
func (c *Collector) Notifications() *prometheus.CounterVec { return c.notifications }

// SyncItems returns the sync outcome counter.
func (c *Collector) SyncItems() *prometheus.CounterVec { return c.syncItems }

// ObserveSync adds the outcome counts of a push or pull report.
func (c *Collector) ObserveSync(op string, report state.SyncReport) {
	outcomes := map[string][]string{
		"saved":   report.Saved,
		"deleted": report.Deleted,
		"loaded":  report.Loaded,
		"created": report.Created,
		"skipped": report.Skipped,
		"removed": report.Removed,
		"failed":  report.Failed,
	}
	for outcome, ids := range outcomes {
		if len(ids) == 0 {
			continue
		}
		c.syncItems.WithLabelValues(op, outcome).Add(float64(len(ids)))
	}
}

// Close stops observing the publisher.
func (c *Collector) Close() {
	if c.observers != nil {
		c.observers.RemoveAll()
	}
}

func (c *Collector) count(event *taskcore.Event) {
	for _, entry := range event.Entries() {
		kind, change, ok := strings.Cut(string(entry.Type), ".")
		if !ok {
			continue
		}
		c.notifications.WithLabelValues(kind, change).Inc()
	}
}
