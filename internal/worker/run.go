// Package worker pulls render job ids off the queue and processes them one
// at a time.
package worker

import (
	"context"
	"time"

	"reelcast/internal/pkg/logger"
)

// popTimeout bounds a single queue wait.
const popTimeout = 30 * time.Second

// retryDelay is the pause after a queue error.
var retryDelay = time.Second

// Run processes jobs until ctx is canceled.
func Run(ctx context.Context, d Deps) error {
	log := logger.OrDefault(d.Log).WithComponent("worker")

	for {
		select {
		case <-ctx.Done():
			log.Info("worker context canceled, stopping")
			return ctx.Err()
		default:
		}

		popCtx, cancel := context.WithTimeout(ctx, popTimeout)
		jobID, err := d.Queue.Pop(popCtx)
		cancel()

		if err != nil {
			if ctx.Err() != nil {
				log.Info("worker stopping due to context cancellation")
				return ctx.Err()
			}

			log.Warn("queue pop error, retrying", "error", err.Error())
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(retryDelay):
			}
			continue
		}

		if jobID == "" {
			continue
		}

		// A job that started runs to completion even if shutdown begins.
		jobCtx := logger.ContextWithJobID(context.WithoutCancel(ctx), jobID)
		jobLog := log.WithJobID(jobID)

		jobLog.Info("processing job")
		startTime := time.Now()

		if err := d.Processor.ProcessJob(jobCtx, jobID); err != nil {
			jobLog.Error("job failed",
				"error", err.Error(),
				"duration_ms", time.Since(startTime).Milliseconds(),
			)
		} else {
			jobLog.Info("job completed",
				"duration_ms", time.Since(startTime).Milliseconds(),
			)
		}
	}
}
