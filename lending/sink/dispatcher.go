package sink

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/indraarianggi/nestjs-library-app-sub000/lending/core"
	"github.com/indraarianggi/nestjs-library-app-sub000/lending/shell"
)

const (
	defaultWorkers         = 4
	defaultQueueSize       = 256
	defaultMaxAttempts     = 3
	defaultRetryDelay      = 100 * time.Millisecond
	defaultDeliveryTimeout = 5 * time.Second
)

// Metric names.
const (
	DispatcherQueueDepthMetric = "dispatcher_queue_depth"
	DispatcherDroppedMetric    = "dispatcher_dropped_total"
	DispatcherDeliveredMetric  = "dispatcher_delivered_total"
	DispatcherFailedMetric     = "dispatcher_failed_total"
)

const (
	logMsgDropped       = "sink delivery dropped"
	logMsgAttemptFailed = "sink delivery attempt failed"
	logMsgFailed        = "sink delivery failed"

	logAttrTarget  = "target"
	logAttrAttempt = "attempt"
	logAttrError   = "error"
	logAttrReason  = "reason"
)

var (
	// ErrInvalidWorkers is returned when the worker count is not positive.
	ErrInvalidWorkers = errors.New("dispatcher workers must be positive")

	// ErrInvalidQueueSize is returned when the queue size is negative.
	ErrInvalidQueueSize = errors.New("dispatcher queue size must not be negative")

	// ErrInvalidMaxAttempts is returned when max attempts are not positive.
	ErrInvalidMaxAttempts = errors.New("dispatcher max attempts must be positive")
)

type delivery struct {
	ctx     context.Context
	target  string
	deliver func(ctx context.Context) error
}

// Dispatcher fans committed events out to an AuditSink and a Notifier on a bounded queue
// served by worker goroutines. Publishing never blocks: when the queue is full the delivery is dropped.
type Dispatcher struct {
	audit    AuditSink
	notifier Notifier
	logger   shell.ContextualLogger
	metrics  shell.MetricsCollector

	workers         int
	queueSize       int
	maxAttempts     int
	retryDelay      time.Duration
	deliveryTimeout time.Duration

	queue    chan delivery
	mu       sync.RWMutex
	closed   bool
	wg       sync.WaitGroup
	stopping chan struct{}
	stopOnce sync.Once
}

// Option configures a Dispatcher.
type Option func(*Dispatcher) error

// WithWorkers sets the number of delivery goroutines.
func WithWorkers(workers int) Option {
	return func(d *Dispatcher) error {
		if workers <= 0 {
			return ErrInvalidWorkers
		}

		d.workers = workers

		return nil
	}
}

// WithQueueSize sets how many deliveries may wait for a worker.
func WithQueueSize(size int) Option {
	return func(d *Dispatcher) error {
		if size < 0 {
			return ErrInvalidQueueSize
		}

		d.queueSize = size

		return nil
	}
}

// WithMaxAttempts sets how often one delivery is tried.
func WithMaxAttempts(attempts int) Option {
	return func(d *Dispatcher) error {
		if attempts <= 0 {
			return ErrInvalidMaxAttempts
		}

		d.maxAttempts = attempts

		return nil
	}
}

// WithRetryDelay sets the base delay between attempts; it doubles per attempt.
func WithRetryDelay(delay time.Duration) Option {
	return func(d *Dispatcher) error {
		d.retryDelay = delay
		return nil
	}
}

// WithDeliveryTimeout bounds a single attempt.
func WithDeliveryTimeout(timeout time.Duration) Option {
	return func(d *Dispatcher) error {
		d.deliveryTimeout = timeout
		return nil
	}
}

// WithLogger sets the logger for dropped and failed deliveries.
func WithLogger(logger shell.ContextualLogger) Option {
	return func(d *Dispatcher) error {
		d.logger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(collector shell.MetricsCollector) Option {
	return func(d *Dispatcher) error {
		d.metrics = collector
		return nil
	}
}

// NewDispatcher starts the workers. audit or notifier may be nil to skip that kind of delivery.
func NewDispatcher(audit AuditSink, notifier Notifier, options ...Option) (*Dispatcher, error) {
	d := &Dispatcher{
		audit:           audit,
		notifier:        notifier,
		logger:          slog.Default(),
		workers:         defaultWorkers,
		queueSize:       defaultQueueSize,
		maxAttempts:     defaultMaxAttempts,
		retryDelay:      defaultRetryDelay,
		deliveryTimeout: defaultDeliveryTimeout,
		stopping:        make(chan struct{}),
	}

	for _, option := range options {
		if err := option(d); err != nil {
			return nil, err
		}
	}

	d.queue = make(chan delivery, d.queueSize)

	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.work()
	}

	return d, nil
}

// Publish queues the audit records and notifications derived from committed events.
func (d *Dispatcher) Publish(ctx context.Context, events core.DomainEvents) {
	if d.audit != nil {
		for _, record := range AuditRecordsFrom(events) {
			d.enqueue(ctx, "audit:"+record.Action, func(ctx context.Context) error {
				return d.audit.Record(ctx, record.ActorID, record.Action, record.EntityType, record.EntityID, record.Metadata)
			})
		}
	}

	for _, notification := range NotificationsFrom(events) {
		d.Notify(ctx, notification)
	}
}

// Notify queues one notification.
func (d *Dispatcher) Notify(ctx context.Context, notification Notification) {
	if d.notifier == nil {
		return
	}

	d.enqueue(ctx, "notify:"+string(notification.Kind), func(ctx context.Context) error {
		return d.notifier.Notify(ctx, notification.Kind, notification.MemberID, notification.Payload)
	})
}

// Close stops accepting deliveries and waits until the queue is drained or ctx is done.
// Deliveries still waiting when ctx ends are abandoned.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	drained := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(drained)
	}()

	select {
	case <-drained:
		return nil
	case <-ctx.Done():
		d.stopOnce.Do(func() { close(d.stopping) })
		return ctx.Err()
	}
}

func (d *Dispatcher) enqueue(ctx context.Context, target string, deliver func(ctx context.Context) error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.drop(ctx, target, "dispatcher closed")
		return
	}

	// The delivery outlives the request that published it, but keeps its values for log correlation.
	item := delivery{ctx: context.WithoutCancel(ctx), target: target, deliver: deliver}

	select {
	case d.queue <- item:
		d.recordValue(DispatcherQueueDepthMetric, float64(len(d.queue)))
	default:
		d.drop(ctx, target, "queue full")
	}
}

func (d *Dispatcher) drop(ctx context.Context, target, reason string) {
	d.logger.WarnContext(ctx, logMsgDropped, logAttrTarget, target, logAttrReason, reason)
	d.incrementCounter(DispatcherDroppedMetric, target)
}

func (d *Dispatcher) work() {
	defer d.wg.Done()

	for item := range d.queue {
		d.deliver(item)
	}
}

func (d *Dispatcher) deliver(item delivery) {
	var err error

	for attempt := 1; attempt <= d.maxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-time.After(d.retryDelay * time.Duration(1<<(attempt-2))):
			case <-d.stopping:
				d.fail(item, err)
				return
			}
		}

		attemptCtx, cancel := context.WithTimeout(item.ctx, d.deliveryTimeout)
		err = item.deliver(attemptCtx)
		cancel()

		if err == nil {
			d.incrementCounter(DispatcherDeliveredMetric, item.target)
			return
		}

		d.logger.WarnContext(item.ctx, logMsgAttemptFailed, logAttrTarget, item.target, logAttrAttempt, attempt, logAttrError, err.Error())
	}

	d.fail(item, err)
}

func (d *Dispatcher) fail(item delivery, err error) {
	errMsg := "abandoned"
	if err != nil {
		errMsg = err.Error()
	}

	d.logger.ErrorContext(item.ctx, logMsgFailed, logAttrTarget, item.target, logAttrError, errMsg)
	d.incrementCounter(DispatcherFailedMetric, item.target)
}

func (d *Dispatcher) incrementCounter(name, target string) {
	if d.metrics != nil {
		d.metrics.IncrementCounter(name, map[string]string{logAttrTarget: target})
	}
}

func (d *Dispatcher) recordValue(name string, value float64) {
	if d.metrics != nil {
		d.metrics.RecordValue(name, value, nil)
	}
}
