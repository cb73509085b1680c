package event

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/google/uuid"
	"github.com/svetzal/mojentic-go/pkg/mjerrors"
	"github.com/svetzal/mojentic-go/pkg/safego"
)

const (
	defaultBatchSize    = 5
	defaultPollInterval = 100 * time.Millisecond
)

// DispatcherOption configures a Dispatcher at construction time.
type DispatcherOption func(*Dispatcher)

func WithBatchSize(n int) DispatcherOption {
	return func(d *Dispatcher) {
		if n > 0 {
			d.batchSize = n
		}
	}
}

func WithPollInterval(interval time.Duration) DispatcherOption {
	return func(d *Dispatcher) {
		if interval > 0 {
			d.pollInterval = interval
		}
	}
}

func WithLogger(logger *zap.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// Dispatcher owns a FIFO event queue and, once started, drains it on a
// background goroutine: popping up to batchSize events per iteration,
// delivering clones to every subscriber registered for an event's
// type, and re-enqueueing whatever those subscribers emit.
type Dispatcher struct {
	router       *Router
	batchSize    int
	pollInterval time.Duration
	logger       *zap.Logger

	queueMu sync.Mutex
	queue   []Event

	runMu   sync.Mutex
	running bool
	stop    atomic.Bool
	wg      sync.WaitGroup
}

func NewDispatcher(router *Router, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		router:       router,
		batchSize:    defaultBatchSize,
		pollInterval: defaultPollInterval,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Start launches the background drain loop. It returns a dispatcher
// error if the dispatcher is already running.
func (d *Dispatcher) Start() error {
	d.runMu.Lock()
	defer d.runMu.Unlock()
	if d.running {
		return mjerrors.NewDispatcherError("dispatcher already started")
	}
	d.running = true
	d.stop.Store(false)
	d.wg.Add(1)
	safego.Go(d.logger, "event-dispatcher-loop", d.drainLoop)
	return nil
}

// Stop signals the drain loop to exit and waits for it to finish. It
// is a no-op if the dispatcher is not running.
func (d *Dispatcher) Stop() {
	d.runMu.Lock()
	if !d.running {
		d.runMu.Unlock()
		return
	}
	d.stop.Store(true)
	d.runMu.Unlock()

	d.wg.Wait()

	d.runMu.Lock()
	d.running = false
	d.runMu.Unlock()
}

// Dispatch enqueues event for delivery. If the event has no
// correlation id yet, one is assigned before it becomes visible to the
// drain loop.
func (d *Dispatcher) Dispatch(evt Event) {
	if evt.CorrelationID() == "" {
		evt.SetCorrelationID(uuid.New().String())
	}
	d.queueMu.Lock()
	d.queue = append(d.queue, evt)
	d.queueMu.Unlock()
}

// QueueLen reports the current queue depth.
func (d *Dispatcher) QueueLen() int {
	d.queueMu.Lock()
	defer d.queueMu.Unlock()
	return len(d.queue)
}

// WaitForEmptyQueue polls until the queue is empty or timeout elapses,
// whichever comes first. It returns true if the queue drained in time.
func (d *Dispatcher) WaitForEmptyQueue(ctx context.Context, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	for {
		if d.QueueLen() == 0 {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
		}
	}
}

func (d *Dispatcher) popBatch() []Event {
	d.queueMu.Lock()
	defer d.queueMu.Unlock()
	n := d.batchSize
	if n > len(d.queue) {
		n = len(d.queue)
	}
	batch := d.queue[:n]
	d.queue = d.queue[n:]
	return batch
}

func (d *Dispatcher) requeue(events []Event) {
	if len(events) == 0 {
		return
	}
	d.queueMu.Lock()
	d.queue = append(d.queue, events...)
	d.queueMu.Unlock()
}

func (d *Dispatcher) drainLoop() {
	defer d.wg.Done()
	ctx := context.Background()
	for !d.stop.Load() {
		batch := d.popBatch()
		for _, evt := range batch {
			if evt.Type() == TerminateEventType {
				d.stop.Store(true)
				break
			}
			d.deliver(ctx, evt)
		}
		time.Sleep(d.pollInterval)
	}
}

func (d *Dispatcher) deliver(ctx context.Context, evt Event) {
	subs := d.router.GetSubscribers(evt.Type())
	for _, sub := range subs {
		d.deliverOne(ctx, sub, evt)
	}
}

func (d *Dispatcher) deliverOne(ctx context.Context, sub Subscriber, evt Event) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("subscriber panicked handling event",
				zap.String("event_type", evt.Type()),
				zap.Any("panic", r),
			)
		}
	}()
	newEvents, err := sub.ReceiveEvent(ctx, evt.Clone())
	if err != nil {
		d.logger.Warn("subscriber returned error",
			zap.String("event_type", evt.Type()),
			zap.Error(err),
		)
		return
	}
	d.requeue(newEvents)
}
