package monitoring

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/spacesedan/ecsa/internal/metrics"
	"github.com/stretchr/testify/assert"
)

type fakeChecker struct {
	healthy atomic.Bool
	calls   atomic.Int32
}

func (f *fakeChecker) HealthCheck(context.Context) bool {
	f.calls.Add(1)
	return f.healthy.Load()
}

func TestMonitorLLMHealthTracksChecker(t *testing.T) {
	checker := &fakeChecker{}
	checker.healthy.Store(true)

	var healthy atomic.Bool
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		MonitorLLMHealth(ctx, &healthy, checker, 5*time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, healthy.Load, time.Second, time.Millisecond)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.LLMHealthy))

	checker.healthy.Store(false)
	assert.Eventually(t, func() bool { return !healthy.Load() }, time.Second, time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("monitor did not stop after cancel")
	}
	assert.GreaterOrEqual(t, checker.calls.Load(), int32(2))
}
