package metrics_test

import (
	"testing"

	taskcore "github.com/goliatone/go-taskcore"
	"github.com/goliatone/go-taskcore/pkg/metrics"
	"github.com/goliatone/go-taskcore/pkg/state"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorCountsNotificationEntries(t *testing.T) {
	publisher := taskcore.NewPublisher()
	collector, err := metrics.NewCollector(prometheus.NewRegistry(), publisher, taskcore.KindTask)
	require.NoError(t, err)
	defer collector.Close()

	child := taskcore.NewComposite(taskcore.KindTask, taskcore.WithPublisher(publisher))
	parent := taskcore.NewComposite(taskcore.KindTask, taskcore.WithPublisher(publisher), taskcore.WithChildren(child))
	collection := taskcore.NewCollection(taskcore.KindTask, taskcore.WithCollectionPublisher(publisher))
	require.NoError(t, collection.Append(parent))
	parent.SetSubject("Renamed")
	parent.MarkDeleted()

	counter := collector.Notifications()
	assert.Equal(t, 2.0, testutil.ToFloat64(counter.WithLabelValues("task", "subject")))
	assert.Equal(t, 2.0, testutil.ToFloat64(counter.WithLabelValues("task", "markDeleted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(counter.WithLabelValues("task", "addItem")))
}

func TestCollectorIgnoresUnobservedKinds(t *testing.T) {
	publisher := taskcore.NewPublisher()
	collector, err := metrics.NewCollector(prometheus.NewRegistry(), publisher, taskcore.KindTask)
	require.NoError(t, err)
	defer collector.Close()

	taskcore.NewObject(taskcore.KindNote, taskcore.WithPublisher(publisher)).SetSubject("note")

	assert.Equal(t, 0, testutil.CollectAndCount(collector.Notifications()))
}

func TestCollectorObservesSyncReports(t *testing.T) {
	collector, err := metrics.NewCollector(prometheus.NewRegistry(), nil)
	require.NoError(t, err)

	collector.ObserveSync("push", state.SyncReport{Saved: []string{"a", "b"}, Failed: []string{"c"}})
	collector.ObserveSync("push", state.SyncReport{Saved: []string{"d"}})

	assert.Equal(t, 3.0, testutil.ToFloat64(collector.SyncItems().WithLabelValues("push", "saved")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.SyncItems().WithLabelValues("push", "failed")))
}

func TestCollectorRejectsDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := metrics.NewCollector(reg, nil)
	require.NoError(t, err)

	_, err = metrics.NewCollector(reg, nil)
	assert.Error(t, err)
}
