package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/pixperk/handset/pkg/logging"
	"github.com/pixperk/handset/pkg/metrics"
	"github.com/pixperk/handset/pkg/types"
)

const (
	DefaultQueueSize = 256
	DefaultTimeout   = 2 * time.Second
)

// Dispatcher queues events and delivers them to every sink on its own goroutine.
// Publish never blocks: when the queue is full or the dispatcher is closed the event is dropped.
type Dispatcher struct {
	sinks   []Sink
	timeout time.Duration
	logger  *slog.Logger

	mu     sync.RWMutex
	closed bool
	queue  chan types.Event
	done   chan struct{}
}

type DispatcherConfig struct {
	QueueSize int
	Timeout   time.Duration // per sink delivery
	Logger    *slog.Logger
}

// NewDispatcher starts the delivery goroutine. Call Close to drain and stop it.
func NewDispatcher(cfg DispatcherConfig, sinks ...Sink) *Dispatcher {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultQueueSize
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	d := &Dispatcher{
		sinks:   sinks,
		timeout: cfg.Timeout,
		logger:  logging.Ensure(cfg.Logger).With("component", "notify"),
		queue:   make(chan types.Event, cfg.QueueSize),
		done:    make(chan struct{}),
	}
	go d.run()
	return d
}

// Publish enqueues ev and reports whether it was accepted.
func (d *Dispatcher) Publish(ev types.Event) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		metrics.NotifyDroppedTotal.Inc()
		return false
	}

	select {
	case d.queue <- ev:
		return true
	default:
		metrics.NotifyDroppedTotal.Inc()
		d.logger.Warn("event dropped, queue full", "event_id", ev.ID, "kind", ev.Kind, "mobile", ev.Mobile)
		return false
	}
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for ev := range d.queue {
		d.deliver(ev)
	}
}

func (d *Dispatcher) deliver(ev types.Event) {
	for _, sink := range d.sinks {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		err := sink.Notify(ctx, ev)
		cancel()

		if err != nil {
			metrics.NotifyTotal.WithLabelValues(sink.Name(), "error").Inc()
			d.logger.Warn("event delivery failed",
				"sink", sink.Name(), "event_id", ev.ID, "kind", ev.Kind, "mobile", ev.Mobile, "error", err)
			continue
		}
		metrics.NotifyTotal.WithLabelValues(sink.Name(), "ok").Inc()
	}
}

// Close stops accepting events and waits for queued ones to be delivered
// or for ctx to end, whichever comes first.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
