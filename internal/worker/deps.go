package worker

import (
	"context"

	"reelcast/internal/pkg/logger"
)

// Queue hands out job ids.
type Queue interface {
	Pop(ctx context.Context) (string, error)
}

// JobProcessor runs one job.
type JobProcessor interface {
	ProcessJob(ctx context.Context, jobID string) error
}

type Deps struct {
	Queue     Queue
	Processor JobProcessor
	Log       *logger.Logger
}
