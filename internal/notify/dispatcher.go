package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"employeeapp/pkg/requestcontext"
)

const (
	defaultWorkers   = 4
	defaultQueueSize = 256
	defaultTimeout   = 5 * time.Second
)

// Dispatcher owns a bounded queue and a pool of delivery workers.
type Dispatcher struct {
	sender  Sender
	logger  *slog.Logger
	metrics *Metrics
	breaker *CircuitBreaker
	tracer  trace.Tracer

	workers int
	timeout time.Duration
	now     func() time.Time

	mu      sync.RWMutex
	closed  bool
	queue   chan Event
	stopped chan struct{}
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithWorkers sets the number of delivery workers.
func WithWorkers(n int) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.workers = n
		}
	}
}

// WithQueueSize sets how many events may wait for a worker.
func WithQueueSize(n int) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.queue = make(chan Event, n)
		}
	}
}

// WithTimeout bounds each delivery attempt.
func WithTimeout(timeout time.Duration) Option {
	return func(d *Dispatcher) {
		if timeout > 0 {
			d.timeout = timeout
		}
	}
}

func WithMetrics(m *Metrics) Option {
	return func(d *Dispatcher) { d.metrics = m }
}

// WithCircuitBreaker drops events without an attempt while the sink is failing.
func WithCircuitBreaker(cb *CircuitBreaker) Option {
	return func(d *Dispatcher) { d.breaker = cb }
}

// WithClock overrides the event timestamp source.
func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) { d.now = now }
}

// NewDispatcher builds a dispatcher. Call Run to start the workers.
func NewDispatcher(sender Sender, logger *slog.Logger, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		sender:  sender,
		logger:  logger,
		tracer:  otel.Tracer("employeeapp/notify"),
		workers: defaultWorkers,
		timeout: defaultTimeout,
		now:     time.Now,
		queue:   make(chan Event, defaultQueueSize),
		stopped: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Notify enqueues an event for subject and returns immediately. A full queue
// or a closed dispatcher drops the event.
func (d *Dispatcher) Notify(ctx context.Context, subject Subject, action string) {
	event := NewEvent(subject, action, d.now())

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.metrics.observe(action, OutcomeClosed)
		d.logger.WarnContext(ctx, "notification dropped: dispatcher closed",
			"action", action,
			"employee_id", subject.EmployeeID.String(),
			"request_id", requestcontext.RequestID(ctx),
		)
		return
	}
	select {
	case d.queue <- event:
		if d.metrics != nil {
			d.metrics.QueueDepth.Set(float64(len(d.queue)))
		}
	default:
		d.metrics.observe(action, OutcomeQueueFull)
		d.logger.WarnContext(ctx, "notification dropped: queue full",
			"action", action,
			"employee_id", subject.EmployeeID.String(),
			"event_id", event.RequestID,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
}

// Run starts the workers and blocks until Close is called and the queue has
// drained. Cancelling ctx does not stop intake: requests still in flight
// during shutdown may enqueue events, so the owner calls Close once the HTTP
// server has stopped.
func (d *Dispatcher) Run(ctx context.Context) error {
	d.logger.InfoContext(ctx, "notification dispatcher started", "workers", d.workers)
	var wg sync.WaitGroup
	for i := 0; i < d.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for event := range d.queue {
				d.deliver(event)
			}
		}()
	}

	<-d.stopped
	wg.Wait()
	d.logger.Info("notification dispatcher drained")
	return nil
}

// Close stops intake. Workers finish what is already queued.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.closed = true
	close(d.queue)
	close(d.stopped)
}

func (d *Dispatcher) deliver(event Event) {
	if d.metrics != nil {
		d.metrics.QueueDepth.Set(float64(len(d.queue)))
	}
	if d.breaker != nil && !d.breaker.Allow() {
		d.metrics.observe(event.Action, OutcomeCircuitOpen)
		d.logger.Warn("notification dropped: circuit open",
			"action", event.Action,
			"event_id", event.RequestID,
		)
		return
	}

	// Delivery outlives the request that produced the event.
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()
	ctx, span := d.tracer.Start(ctx, "notify.deliver", trace.WithAttributes(
		attribute.String("notify.action", event.Action),
		attribute.String("notify.event_id", event.RequestID),
		attribute.Int64("employee.id", int64(event.EmployeeID)),
	))
	defer span.End()

	start := time.Now()
	err := d.sendSafely(ctx, event)
	if d.metrics != nil {
		d.metrics.Duration.Observe(time.Since(start).Seconds())
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "delivery failed")
		d.metrics.observe(event.Action, OutcomeFailed)
		d.logger.Error("notification delivery failed",
			"action", event.Action,
			"event_id", event.RequestID,
			"employee_id", event.EmployeeID.String(),
			"error", err,
		)
		if d.breaker != nil && d.breaker.RecordFailure() {
			d.setCircuitGauge(1)
			d.logger.Warn("notification circuit opened")
		}
		return
	}

	if d.breaker != nil {
		d.breaker.RecordSuccess()
		d.setCircuitGauge(0)
	}
	d.metrics.observe(event.Action, OutcomeDelivered)
	d.logger.Info("notification delivered",
		"action", event.Action,
		"event_id", event.RequestID,
		"employee_id", event.EmployeeID.String(),
	)
}

func (d *Dispatcher) sendSafely(ctx context.Context, event Event) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("sender panicked: %v", rec)
		}
	}()
	return d.sender.Send(ctx, event)
}

func (d *Dispatcher) setCircuitGauge(v float64) {
	if d.metrics != nil {
		d.metrics.CircuitState.Set(v)
	}
}
