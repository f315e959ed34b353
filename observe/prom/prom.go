// Package prom exports the runtime's observer events as Prometheus metrics.
package prom

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/NetPo4ki/go-nursery/task"
)

// Metrics implements async.Observer over Prometheus collectors.
type Metrics struct {
	tasksStarted    prometheus.Counter
	tasksFinished   *prometheus.CounterVec
	tasksActive     prometheus.Gauge
	tasksDropped    prometheus.Counter
	cancelRequests  *prometheus.CounterVec
	taskDuration    prometheus.Histogram
	nurseriesOpened *prometheus.CounterVec
	nurseryDuration prometheus.Histogram
}

// New registers the runtime collectors with reg and returns the observer.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		tasksStarted: f.NewCounter(prometheus.CounterOpts{
			Name: "nursery_tasks_started_total",
			Help: "Tasks dispatched by the scheduler.",
		}),
		tasksFinished: f.NewCounterVec(prometheus.CounterOpts{
			Name: "nursery_tasks_finished_total",
			Help: "Tasks gone terminal, by terminal state.",
		}, []string{"state"}),
		tasksActive: f.NewGauge(prometheus.GaugeOpts{
			Name: "nursery_tasks_active",
			Help: "Tasks currently running.",
		}),
		tasksDropped: f.NewCounter(prometheus.CounterOpts{
			Name: "nursery_tasks_dropped_total",
			Help: "Detached tasks discarded at admission.",
		}),
		cancelRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "nursery_cancel_requests_total",
			Help: "Cancellation tokens set, by reason.",
		}, []string{"reason"}),
		taskDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "nursery_task_duration_seconds",
			Help:    "Wall time from dispatch to terminal state.",
			Buckets: prometheus.DefBuckets,
		}),
		nurseriesOpened: f.NewCounterVec(prometheus.CounterOpts{
			Name: "nursery_nurseries_opened_total",
			Help: "Nurseries opened, by error mode.",
		}, []string{"mode"}),
		nurseryDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "nursery_nursery_duration_seconds",
			Help:    "Wall time from nursery open to join.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

func (m *Metrics) TaskStarted(uint64) {
	m.tasksStarted.Inc()
	m.tasksActive.Inc()
}

func (m *Metrics) TaskFinished(_ uint64, dur time.Duration, state task.State, _ error) {
	m.tasksActive.Dec()
	m.tasksFinished.WithLabelValues(state.String()).Inc()
	m.taskDuration.Observe(dur.Seconds())
}

func (m *Metrics) TaskDropped(uint64) {
	m.tasksDropped.Inc()
}

func (m *Metrics) CancelRequested(_ uint64, reason task.Reason) {
	m.cancelRequests.WithLabelValues(reason.String()).Inc()
}

func (m *Metrics) NurseryOpened(_ string, mode string) {
	m.nurseriesOpened.WithLabelValues(mode).Inc()
}

func (m *Metrics) NurseryClosed(_ string, dur time.Duration) {
	m.nurseryDuration.Observe(dur.Seconds())
}
