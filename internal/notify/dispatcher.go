// Package notify delivers notification events to their sinks off the
// request path. Delivery is best effort: a full queue drops the event and a
// failing sink is logged, neither is reported back to the producer.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"rentmarket-backend/internal/domain"
	"rentmarket-backend/internal/logger"
)

// Sink is one delivery channel for notification events.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, event domain.NotificationEvent) error
}

type Options struct {
	QueueSize       int
	Workers         int
	DeliveryTimeout time.Duration
}

type envelope struct {
	ctx   context.Context
	event domain.NotificationEvent
}

// Stats are cumulative counters since the dispatcher started.
type Stats struct {
	Accepted  int64
	Dropped   int64
	Delivered int64
	Failed    int64
}

type Dispatcher struct {
	log     *slog.Logger
	queue   chan envelope
	sinks   []Sink
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup

	accepted  atomic.Int64
	dropped   atomic.Int64
	delivered atomic.Int64
	failed    atomic.Int64
}

// NewDispatcher starts opts.Workers goroutines draining a queue of
// opts.QueueSize events into every sink.
func NewDispatcher(opts Options, sinks ...Sink) *Dispatcher {
	if opts.QueueSize < 1 {
		opts.QueueSize = 256
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.DeliveryTimeout <= 0 {
		opts.DeliveryTimeout = 10 * time.Second
	}
	d := &Dispatcher{
		log:     logger.WithService("notify"),
		queue:   make(chan envelope, opts.QueueSize),
		sinks:   sinks,
		timeout: opts.DeliveryTimeout,
	}
	for i := 0; i < opts.Workers; i++ {
		d.wg.Add(1)
		go d.work(i)
	}
	names := make([]string, 0, len(sinks))
	for _, s := range sinks {
		names = append(names, s.Name())
	}
	d.log.Info("Notification dispatcher started", "workers", opts.Workers, "queueSize", opts.QueueSize, "sinks", names)
	return d
}

// Emit enqueues event without blocking. The caller's cancellation does not
// reach delivery, only its values do.
func (d *Dispatcher) Emit(ctx context.Context, event domain.NotificationEvent) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.dropped.Add(1)
		d.log.Warn("Notification dropped, dispatcher closed", "eventID", event.ID, "kind", event.Kind)
		return
	}
	select {
	case d.queue <- envelope{ctx: context.WithoutCancel(ctx), event: event}:
		d.accepted.Add(1)
	default:
		d.dropped.Add(1)
		d.log.Warn("Notification dropped, queue full", "eventID", event.ID, "kind", event.Kind, "recipientID", event.RecipientID,
			"request_id", logger.RequestIDFromContext(ctx))
	}
}

// Close stops accepting events and waits for queued ones to be delivered.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	d.wg.Wait()
	d.log.Info("Notification dispatcher stopped", "delivered", d.delivered.Load(), "failed", d.failed.Load(), "dropped", d.dropped.Load())
}

func (d *Dispatcher) Stats() Stats {
	return Stats{
		Accepted:  d.accepted.Load(),
		Dropped:   d.dropped.Load(),
		Delivered: d.delivered.Load(),
		Failed:    d.failed.Load(),
	}
}

func (d *Dispatcher) work(id int) {
	defer d.wg.Done()
	for env := range d.queue {
		for _, sink := range d.sinks {
			d.deliver(id, sink, env)
		}
	}
}

func (d *Dispatcher) deliver(worker int, sink Sink, env envelope) {
	ctx, cancel := context.WithTimeout(env.ctx, d.timeout)
	defer cancel()

	err := safeDeliver(ctx, sink, env.event)
	if err != nil {
		d.failed.Add(1)
		d.log.Error("Notification delivery failed",
			"sink", sink.Name(), "worker", worker, "eventID", env.event.ID, "kind", env.event.Kind,
			"recipientID", env.event.RecipientID, "request_id", logger.RequestIDFromContext(env.ctx), "error", err)
		return
	}
	d.delivered.Add(1)
	d.log.Debug("Notification delivered", "sink", sink.Name(), "eventID", env.event.ID)
}

func safeDeliver(ctx context.Context, sink Sink, event domain.NotificationEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("sink panicked: %v", r)
		}
	}()
	return sink.Deliver(ctx, event)
}
