package monitoring

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/spacesedan/ecsa/internal/metrics"
)

const HEALTHCHECK_TIMER = 15 * time.Second

type HealthChecker interface {
	HealthCheck(ctx context.Context) bool
}

// MonitorLLMHealth probes the chat-completion endpoint once immediately and
// then every interval until ctx is done, storing the result in healthy.
func MonitorLLMHealth(ctx context.Context, healthy *atomic.Bool, checker HealthChecker, interval time.Duration) {
	if interval <= 0 {
		interval = HEALTHCHECK_TIMER
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	probeLLM(ctx, healthy, checker, interval)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			probeLLM(ctx, healthy, checker, interval)
		}
	}
}

func probeLLM(ctx context.Context, healthy *atomic.Bool, checker HealthChecker, timeout time.Duration) {
	checkCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	isHealthy := checker.HealthCheck(checkCtx)
	if isHealthy {
		metrics.LLMHealthy.Set(1)
	} else {
		metrics.LLMHealthy.Set(0)
	}
	wasHealthy := healthy.Swap(isHealthy)

	if !isHealthy {
		slog.Warn("[HealthCheck] LLM endpoint is unhealthy")
	} else if !wasHealthy {
		slog.Info("[HealthCheck] LLM endpoint is healthy")
	}
}
