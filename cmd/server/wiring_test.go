package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"

	"employeeapp/internal/notify"
	"employeeapp/internal/platform/config"
)

// attempts sends n events through a dispatcher built from cfg against a sink
// that always fails and reports how many deliveries were tried.
func attempts(t *testing.T, cfg config.Notify, n int) int32 {
	t.Helper()
	var calls atomic.Int32
	sender := notify.SenderFunc(func(context.Context, notify.Event) error {
		calls.Add(1)
		return errors.New("sink down")
	})
	d := notify.NewDispatcher(sender, slog.New(slog.NewTextHandler(io.Discard, nil)),
		dispatcherOptions(cfg, prometheus.NewRegistry())...)

	done := make(chan struct{})
	go func() {
		_ = d.Run(context.Background())
		close(done)
	}()
	for i := 0; i < n; i++ {
		d.Notify(context.Background(), notify.Subject{EmployeeID: 7}, notify.ActionSalaryDisbursed)
	}
	d.Close()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("dispatcher did not drain")
	}
	return calls.Load()
}

func TestDispatcherOptionsBreakerIsOptIn(t *testing.T) {
	base := config.Notify{Workers: 1, QueueSize: 16, Timeout: time.Second, BreakerCooldown: time.Hour}

	assert.Equal(t, int32(8), attempts(t, base, 8), "default config attempts every event")

	withBreaker := base
	withBreaker.BreakerThreshold = 2
	assert.Equal(t, int32(2), attempts(t, withBreaker, 8))
}
