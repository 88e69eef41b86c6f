package notify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var ada = Subject{
	EmployeeID: 42,
	FirstName:  "Ada",
	LastName:   "Lovelace",
	Email:      "ada@example.com",
	Salary:     decimal.RequireFromString("5000.00"),
}

// runDispatcher starts d and returns a func that closes it and waits for the
// queue to drain.
func runDispatcher(t *testing.T, d *Dispatcher) func() {
	t.Helper()
	done := make(chan struct{})
	go func() {
		_ = d.Run(context.Background())
		close(done)
	}()
	return func() {
		d.Close()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatal("dispatcher did not drain")
		}
	}
}

func TestNewEvent(t *testing.T) {
	at := time.Date(2026, 3, 1, 9, 30, 0, 0, time.FixedZone("WAT", 3600))
	e1 := NewEvent(ada, ActionSalaryDisbursed, at)
	e2 := NewEvent(ada, ActionSalaryDisbursed, at)

	assert.True(t, strings.HasPrefix(e1.RequestID, "REQ-SALARY_DISBURSED-"))
	assert.NotEqual(t, e1.RequestID, e2.RequestID)
	assert.Equal(t, "Ada Lovelace", e1.Name)
	assert.Equal(t, "2026-03-01T08:30:00Z", e1.Timestamp)

	raw, err := json.Marshal(e1)
	require.NoError(t, err)
	var wire map[string]any
	require.NoError(t, json.Unmarshal(raw, &wire))
	for _, key := range []string{"request_id", "employee_id", "name", "email", "salary", "action", "timestamp"} {
		assert.Contains(t, wire, key)
	}
	assert.Equal(t, float64(42), wire["employee_id"])
}

func TestWebhookDelivery(t *testing.T) {
	var (
		mu       sync.Mutex
		received []Event
		auth     string
		ctype    string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var e Event
		_ = json.NewDecoder(r.Body).Decode(&e)
		mu.Lock()
		received = append(received, e)
		auth = r.Header.Get("Authorization")
		ctype = r.Header.Get("Content-Type")
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	d := NewDispatcher(NewWebhookSender(srv.URL, "static-token", time.Second), discardLogger(), WithMetrics(metrics))
	stop := runDispatcher(t, d)

	d.Notify(context.Background(), ada, ActionSalaryDisbursed)
	stop()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, received, 1)
	assert.Equal(t, ActionSalaryDisbursed, received[0].Action)
	assert.Equal(t, "ada@example.com", received[0].Email)
	assert.True(t, received[0].Salary.Equal(ada.Salary))
	assert.Equal(t, "Bearer static-token", auth)
	assert.Equal(t, "application/json", ctype)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Events.WithLabelValues(ActionSalaryDisbursed, OutcomeDelivered)))
}

func TestWebhookNon2xxIsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	err := NewWebhookSender(srv.URL, "", time.Second).Send(context.Background(), NewEvent(ada, ActionEmployeeCreated, time.Now()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestDeliveryTimeoutIsAbsorbed(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	metrics := NewMetrics(prometheus.NewRegistry())
	d := NewDispatcher(NewWebhookSender(srv.URL, "", time.Minute), discardLogger(),
		WithTimeout(50*time.Millisecond), WithMetrics(metrics))
	stop := runDispatcher(t, d)

	start := time.Now()
	d.Notify(context.Background(), ada, ActionSalaryDisbursed)
	assert.Less(t, time.Since(start), 50*time.Millisecond, "Notify must not wait on delivery")
	stop()

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Events.WithLabelValues(ActionSalaryDisbursed, OutcomeFailed)))
}

func TestQueueFullDropsWithoutBlocking(t *testing.T) {
	block := make(chan struct{})
	var sent atomic.Int32
	sender := SenderFunc(func(ctx context.Context, _ Event) error {
		<-block
		sent.Add(1)
		return nil
	})
	metrics := NewMetrics(prometheus.NewRegistry())
	d := NewDispatcher(sender, discardLogger(), WithWorkers(1), WithQueueSize(1), WithMetrics(metrics))

	// Without running workers the queue holds exactly one event.
	d.Notify(context.Background(), ada, ActionEmployeeCreated)
	d.Notify(context.Background(), ada, ActionEmployeeCreated)
	d.Notify(context.Background(), ada, ActionEmployeeCreated)

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.Events.WithLabelValues(ActionEmployeeCreated, OutcomeQueueFull)))

	stop := runDispatcher(t, d)
	close(block)
	stop()
	assert.Equal(t, int32(1), sent.Load())
}

func TestSenderErrorsAndPanicsAreAbsorbed(t *testing.T) {
	var calls atomic.Int32
	sender := SenderFunc(func(context.Context, Event) error {
		if calls.Add(1) == 1 {
			panic("boom")
		}
		return errors.New("unreachable host")
	})
	metrics := NewMetrics(prometheus.NewRegistry())
	d := NewDispatcher(sender, discardLogger(), WithWorkers(1), WithMetrics(metrics))
	stop := runDispatcher(t, d)

	d.Notify(context.Background(), ada, ActionSalaryDisbursed)
	d.Notify(context.Background(), ada, ActionSalaryDisbursed)
	stop()

	assert.Equal(t, int32(2), calls.Load(), "each event gets exactly one attempt")
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.Events.WithLabelValues(ActionSalaryDisbursed, OutcomeFailed)))
}

func TestNotifyAfterCloseIsDropped(t *testing.T) {
	var calls atomic.Int32
	d := NewDispatcher(SenderFunc(func(context.Context, Event) error {
		calls.Add(1)
		return nil
	}), discardLogger())
	stop := runDispatcher(t, d)
	stop()

	d.Notify(context.Background(), ada, ActionSalaryDisbursed)
	assert.Zero(t, calls.Load())
}

func TestRunKeepsIntakeOpenAfterContextCancel(t *testing.T) {
	delivered := make(chan Event, 1)
	d := NewDispatcher(SenderFunc(func(_ context.Context, e Event) error {
		delivered <- e
		return nil
	}), discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = d.Run(ctx)
		close(done)
	}()

	cancel()
	// A handler finishing during graceful shutdown still notifies.
	d.Notify(context.Background(), ada, ActionSalaryDisbursed)

	select {
	case e := <-delivered:
		assert.Equal(t, ActionSalaryDisbursed, e.Action)
	case <-time.After(2 * time.Second):
		t.Fatal("event enqueued after cancel was not delivered")
	}

	select {
	case <-done:
		t.Fatal("Run returned before Close")
	default:
	}
	d.Close()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("dispatcher did not drain")
	}
}

func TestNoBreakerAttemptsEveryEvent(t *testing.T) {
	var calls atomic.Int32
	sender := SenderFunc(func(context.Context, Event) error {
		calls.Add(1)
		return errors.New("down")
	})
	metrics := NewMetrics(prometheus.NewRegistry())
	d := NewDispatcher(sender, discardLogger(), WithWorkers(1), WithMetrics(metrics))
	stop := runDispatcher(t, d)
	for i := 0; i < 8; i++ {
		d.Notify(context.Background(), ada, ActionSalaryDisbursed)
	}
	stop()

	assert.Equal(t, int32(8), calls.Load(), "each event gets exactly one attempt")
	assert.Equal(t, 8.0, testutil.ToFloat64(metrics.Events.WithLabelValues(ActionSalaryDisbursed, OutcomeFailed)))
	assert.Zero(t, testutil.ToFloat64(metrics.Events.WithLabelValues(ActionSalaryDisbursed, OutcomeCircuitOpen)))
}

func TestCircuitBreakerSkipsAttemptsWhileOpen(t *testing.T) {
	var calls atomic.Int32
	sender := SenderFunc(func(context.Context, Event) error {
		calls.Add(1)
		return errors.New("down")
	})
	metrics := NewMetrics(prometheus.NewRegistry())
	d := NewDispatcher(sender, discardLogger(),
		WithWorkers(1),
		WithMetrics(metrics),
		WithCircuitBreaker(NewCircuitBreaker(2, time.Hour)),
	)
	stop := runDispatcher(t, d)
	for i := 0; i < 5; i++ {
		d.Notify(context.Background(), ada, ActionEmployeeCreated)
	}
	stop()

	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, 3.0, testutil.ToFloat64(metrics.Events.WithLabelValues(ActionEmployeeCreated, OutcomeCircuitOpen)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.CircuitState))
}

func TestCircuitBreakerHalfOpen(t *testing.T) {
	now := time.Now()
	cb := NewCircuitBreaker(1, time.Minute)
	cb.now = func() time.Time { return now }

	assert.True(t, cb.RecordFailure())
	assert.False(t, cb.Allow())

	now = now.Add(2 * time.Minute)
	assert.True(t, cb.Allow(), "one attempt after cooldown")
	assert.True(t, cb.RecordFailure(), "failed trial attempt re-opens")
	assert.False(t, cb.Allow())

	now = now.Add(2 * time.Minute)
	assert.True(t, cb.Allow())
	cb.RecordSuccess()
	assert.False(t, cb.IsOpen())
}
