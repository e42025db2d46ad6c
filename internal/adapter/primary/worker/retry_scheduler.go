package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/orderflow/orderflow/internal/domain/service"
	"github.com/orderflow/orderflow/internal/metrics"
)

// RetryScheduler ticks service.RetryScheduler.RunOnce on a fixed
// interval. It owns nothing but the ticker: the scan logic
// itself lives in the domain layer so it can be unit tested without a
// running goroutine.
type RetryScheduler struct {
	scheduler *service.RetryScheduler
	interval  time.Duration
	logger    *zap.Logger
}

// NewRetryScheduler constructs a RetryScheduler worker.
func NewRetryScheduler(scheduler *service.RetryScheduler, interval time.Duration, logger *zap.Logger) *RetryScheduler {
	return &RetryScheduler{scheduler: scheduler, interval: interval, logger: logger.Named("retry_scheduler_worker")}
}

// Run blocks, ticking RunOnce until ctx is cancelled.
func (w *RetryScheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			res, err := w.scheduler.RunOnce(ctx)
			if err != nil {
				w.logger.Error("retry scan failed", zap.Error(err))
				continue
			}
			metrics.RetryScanOutcomes.WithLabelValues("timed_out").Add(float64(res.TimedOut))
			metrics.RetryScanOutcomes.WithLabelValues("retried").Add(float64(res.Retried))
			metrics.RetryScanOutcomes.WithLabelValues("skipped").Add(float64(res.Skipped))
			metrics.RetryScanOutcomes.WithLabelValues("failed").Add(float64(res.Failed))
			if res.TimedOut > 0 || res.Retried > 0 || res.Failed > 0 {
				w.logger.Info("retry scan completed",
					zap.Int("timed_out", res.TimedOut),
					zap.Int("retried", res.Retried),
					zap.Int("skipped", res.Skipped),
					zap.Int("failed", res.Failed))
			}
		}
	}
}
