package events

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// EventHandler handles a published event.
type EventHandler func(context.Context, Event) error

// Dispatcher interface allows event publication/subscription.
type Dispatcher interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType EventType, handler EventHandler)
}

// inMemoryDispatcher is a simple synchronous dispatcher, used in tests and as
// the delivery backend of the async dispatcher.
type inMemoryDispatcher struct {
	mu        sync.RWMutex
	listeners map[EventType][]EventHandler
}

// NewInMemoryDispatcher creates a synchronous dispatcher instance.
func NewInMemoryDispatcher() Dispatcher {
	return &inMemoryDispatcher{
		listeners: make(map[EventType][]EventHandler),
	}
}

// Publish synchronously invokes handlers for the given event. Handler errors
// do not stop delivery to the remaining handlers; the joined error is
// returned so queued delivery can retry.
func (d *inMemoryDispatcher) Publish(ctx context.Context, event Event) error {
	d.mu.RLock()
	handlers := append([]EventHandler{}, d.listeners[event.Type]...)
	d.mu.RUnlock()

	var errs []error
	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Subscribe registers a handler for the given event type.
func (d *inMemoryDispatcher) Subscribe(eventType EventType, handler EventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners[eventType] = append(d.listeners[eventType], handler)
}

// AsyncDispatcher queues events on a buffered channel consumed by a single
// worker goroutine, so a slow handler (mail transport) never blocks the
// request that published the event. Each delivery gets a bounded timeout and
// a small number of retries; exhausted deliveries are logged and dropped.
type AsyncDispatcher struct {
	inner          Dispatcher
	queue          chan Event
	logger         *zap.Logger
	deliverTimeout time.Duration
	maxAttempts    int
	done           chan struct{}
	closeOnce      sync.Once
}

// AsyncOptions tunes the dispatcher queue.
type AsyncOptions struct {
	QueueSize      int
	DeliverTimeout time.Duration
	MaxAttempts    int
}

// NewAsyncDispatcher starts the worker goroutine.
func NewAsyncDispatcher(logger *zap.Logger, opts AsyncOptions) *AsyncDispatcher {
	if opts.QueueSize <= 0 {
		opts.QueueSize = 256
	}
	if opts.DeliverTimeout <= 0 {
		opts.DeliverTimeout = 10 * time.Second
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	d := &AsyncDispatcher{
		inner:          NewInMemoryDispatcher(),
		queue:          make(chan Event, opts.QueueSize),
		logger:         logger,
		deliverTimeout: opts.DeliverTimeout,
		maxAttempts:    opts.MaxAttempts,
		done:           make(chan struct{}),
	}
	go d.run()
	return d
}

// Publish enqueues the event and returns immediately. A full queue drops the
// event with a warning rather than blocking the caller.
func (d *AsyncDispatcher) Publish(ctx context.Context, event Event) error {
	select {
	case d.queue <- event:
	default:
		d.logger.Warn("event queue full, dropping event",
			zap.String("event_type", string(event.Type)),
			zap.String("ticket_id", event.TicketID))
	}
	return nil
}

// Subscribe registers a handler for the given event type.
func (d *AsyncDispatcher) Subscribe(eventType EventType, handler EventHandler) {
	d.inner.Subscribe(eventType, handler)
}

// Close stops the worker after draining the queue.
func (d *AsyncDispatcher) Close() {
	d.closeOnce.Do(func() {
		close(d.queue)
		<-d.done
	})
}

func (d *AsyncDispatcher) run() {
	defer close(d.done)
	for event := range d.queue {
		d.deliver(event)
	}
}

func (d *AsyncDispatcher) deliver(event Event) {
	for attempt := 1; attempt <= d.maxAttempts; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), d.deliverTimeout)
		err := d.inner.Publish(ctx, event)
		cancel()
		if err == nil {
			return
		}
		d.logger.Warn("event delivery failed",
			zap.String("event_type", string(event.Type)),
			zap.String("ticket_id", event.TicketID),
			zap.Int("attempt", attempt),
			zap.Error(err))
	}
}
