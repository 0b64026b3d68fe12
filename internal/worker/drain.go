package worker

import (
	"context"
	"time"
)

// drainMargin is the time allowed past the render timeout for upload and
// bookkeeping before shutdown gives up on the in-flight job.
const drainMargin = 30 * time.Second

// abandonReserve is the part of the shutdown budget kept back for
// recording an abandoned job as failed.
var abandonReserve = 5 * time.Second

// ShutdownTimeout returns the shutdown budget for a worker whose renders
// are bounded by renderTimeout. A zero renderTimeout keeps the default.
func ShutdownTimeout(renderTimeout, defaultTimeout time.Duration) time.Duration {
	if t := renderTimeout + drainMargin; renderTimeout > 0 && t > defaultTimeout {
		return t
	}
	return defaultTimeout
}

// Drain waits for the worker loop to stop. When ctx's deadline is about to
// pass first, it calls abandon with the reserved time so the in-flight job
// is recorded as failed instead of staying running.
func Drain(ctx context.Context, stopped <-chan struct{}, abandon func(context.Context)) error {
	wait := make(<-chan time.Time)
	if deadline, ok := ctx.Deadline(); ok {
		timer := time.NewTimer(max(time.Until(deadline)-abandonReserve, 0))
		defer timer.Stop()
		wait = timer.C
	}

	select {
	case <-stopped:
		return nil
	case <-wait:
	case <-ctx.Done():
	}

	actx, cancel := context.WithTimeout(context.WithoutCancel(ctx), abandonReserve)
	defer cancel()
	abandon(actx)
	return context.DeadlineExceeded
}
