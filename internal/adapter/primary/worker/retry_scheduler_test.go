package worker

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestRetryScheduler_Run_exitsOnContextCancellation(t *testing.T) {
	w := NewRetryScheduler(nil, time.Hour, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after context cancellation")
	}
}
