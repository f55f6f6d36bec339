package metrics

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/stuartshay/shot-tracker/internal/position"
	"github.com/stuartshay/shot-tracker/internal/queue"
)

func TestObservePosition(t *testing.T) {
	m := NewMetricsForTesting()

	tests := []struct {
		err     error
		outcome string
	}{
		{nil, "success"},
		{&position.Error{Kind: position.ErrPermissionDenied}, "permission_denied"},
		{&position.Error{Kind: position.ErrTimeout}, "timeout"},
		{&position.Error{Kind: position.ErrPositionUnavailable}, "unavailable"},
		{fmt.Errorf("position request canceled: %w", context.Canceled), "canceled"},
		{errors.New("boom"), "unavailable"},
	}

	for _, tt := range tests {
		m.ObservePosition(tt.err)
	}

	assert.Equal(t, 1.0, testutil.ToFloat64(m.PositionRequests.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PositionRequests.WithLabelValues("permission_denied")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PositionRequests.WithLabelValues("timeout")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.PositionRequests.WithLabelValues("unavailable")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PositionRequests.WithLabelValues("canceled")))
}

func TestObserveJob(t *testing.T) {
	m := NewMetricsForTesting()

	var hook queue.StatusHook = m.ObserveJob
	hook(queue.StatusQueued)
	hook(queue.StatusProcessing)
	hook(queue.StatusCompleted)
	hook(queue.StatusQueued)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ReportJobs.WithLabelValues("queued")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ReportJobs.WithLabelValues("completed")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.ReportJobs.WithLabelValues("failed")))
}

func TestObserveAnalytics(t *testing.T) {
	m := NewMetricsForTesting()

	m.ObserveAnalytics("shot_stats", time.Now().Add(-10*time.Millisecond))
	m.ObserveAnalytics("heat_map", time.Now())

	assert.Equal(t, 2, testutil.CollectAndCount(m.AnalyticsDuration))
}

func TestShotsRecorded(t *testing.T) {
	m := NewMetricsForTesting()

	m.ShotsRecorded.WithLabelValues("device").Inc()
	m.ShotsRecorded.WithLabelValues("explicit").Add(2)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ShotsRecorded.WithLabelValues("explicit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ShotsRecorded.WithLabelValues("device")))
}

func TestQueueCollector(t *testing.T) {
	stats := map[string]int{"total": 4, "queued": 1, "processing": 1, "completed": 2}
	c := NewQueueCollector(func() map[string]int { return stats })

	expected := `
# HELP shot_tracker_report_queue_jobs Round report jobs held by the queue by status.
# TYPE shot_tracker_report_queue_jobs gauge
shot_tracker_report_queue_jobs{status="completed"} 2
shot_tracker_report_queue_jobs{status="failed"} 0
shot_tracker_report_queue_jobs{status="processing"} 1
shot_tracker_report_queue_jobs{status="queued"} 1
`
	assert.NoError(t, testutil.CollectAndCompare(c, strings.NewReader(expected)))

	stats["failed"] = 3
	assert.Equal(t, 4, testutil.CollectAndCount(c))
	assert.NoError(t, testutil.CollectAndCompare(c, strings.NewReader(strings.Replace(expected, `{status="failed"} 0`, `{status="failed"} 3`, 1))))
}
