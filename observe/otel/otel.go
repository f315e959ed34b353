// Package otel exports the runtime's observer events through the
// OpenTelemetry metric API.
package otel

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/NetPo4ki/go-nursery/task"
)

const scopeName = "github.com/NetPo4ki/go-nursery"

// Observer implements async.Observer over OpenTelemetry instruments.
type Observer struct {
	started     metric.Int64Counter
	finished    metric.Int64Counter
	active      metric.Int64UpDownCounter
	dropped     metric.Int64Counter
	cancels     metric.Int64Counter
	taskDur     metric.Float64Histogram
	nurseries   metric.Int64Counter
	nurseryDur  metric.Float64Histogram
}

// New builds the runtime instruments on mp.
func New(mp metric.MeterProvider) (*Observer, error) {
	meter := mp.Meter(scopeName)
	o := &Observer{}
	var err error
	if o.started, err = meter.Int64Counter("nursery.tasks.started",
		metric.WithDescription("Tasks dispatched by the scheduler.")); err != nil {
		return nil, err
	}
	if o.finished, err = meter.Int64Counter("nursery.tasks.finished",
		metric.WithDescription("Tasks gone terminal, by terminal state.")); err != nil {
		return nil, err
	}
	if o.active, err = meter.Int64UpDownCounter("nursery.tasks.active",
		metric.WithDescription("Tasks currently running.")); err != nil {
		return nil, err
	}
	if o.dropped, err = meter.Int64Counter("nursery.tasks.dropped",
		metric.WithDescription("Detached tasks discarded at admission.")); err != nil {
		return nil, err
	}
	if o.cancels, err = meter.Int64Counter("nursery.cancel.requests",
		metric.WithDescription("Cancellation tokens set, by reason.")); err != nil {
		return nil, err
	}
	if o.taskDur, err = meter.Float64Histogram("nursery.task.duration",
		metric.WithDescription("Wall time from dispatch to terminal state."),
		metric.WithUnit("s")); err != nil {
		return nil, err
	}
	if o.nurseries, err = meter.Int64Counter("nursery.nurseries.opened",
		metric.WithDescription("Nurseries opened, by error mode.")); err != nil {
		return nil, err
	}
	if o.nurseryDur, err = meter.Float64Histogram("nursery.nursery.duration",
		metric.WithDescription("Wall time from nursery open to join."),
		metric.WithUnit("s")); err != nil {
		return nil, err
	}
	return o, nil
}

func (o *Observer) TaskStarted(uint64) {
	ctx := context.Background()
	o.started.Add(ctx, 1)
	o.active.Add(ctx, 1)
}

func (o *Observer) TaskFinished(_ uint64, dur time.Duration, state task.State, _ error) {
	ctx := context.Background()
	o.active.Add(ctx, -1)
	o.finished.Add(ctx, 1, metric.WithAttributes(attribute.String("state", state.String())))
	o.taskDur.Record(ctx, dur.Seconds())
}

func (o *Observer) TaskDropped(uint64) {
	o.dropped.Add(context.Background(), 1)
}

func (o *Observer) CancelRequested(_ uint64, reason task.Reason) {
	o.cancels.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String("reason", reason.String())))
}

func (o *Observer) NurseryOpened(_ string, mode string) {
	o.nurseries.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String("mode", mode)))
}

func (o *Observer) NurseryClosed(_ string, dur time.Duration) {
	o.nurseryDur.Record(context.Background(), dur.Seconds())
}
