// Package processor runs one queued render job: it loads the row, renders
// the text, uploads the video and records the outcome.
package processor

import (
	"context"
	"sync"
	"time"

	"reelcast/internal/models"
	"reelcast/internal/pkg/errors"
	"reelcast/internal/pkg/logger"
	"reelcast/internal/ports"
	"reelcast/internal/render"
)

// JobStore is the part of the render job repository the processor uses.
type JobStore interface {
	Get(ctx context.Context, id string) (*models.RenderJob, error)
	MarkRunning(ctx context.Context, id string) error
	UpdatePhase(ctx context.Context, id, phase, message string) error
	MarkDone(ctx context.Context, id string, out models.JobOutput) error
	MarkFailed(ctx context.Context, id string, code errors.Code, text string) error
}

// Renderer runs a render to completion.
type Renderer interface {
	Render(ctx context.Context, req render.Request) (render.Result, error)
}

type Deps struct {
	Store    JobStore
	Renderer Renderer
	SP       ports.StorageProvider
	Log      *logger.Logger
	// Timeout bounds one render; zero means none.
	Timeout time.Duration
}

type Processor struct {
	store    JobStore
	renderer Renderer
	output   *OutputHandler
	timeout  time.Duration
	log      *logger.Logger

	mu       sync.Mutex
	inFlight string
}

func New(d Deps) *Processor {
	return &Processor{
		store:    d.Store,
		renderer: d.Renderer,
		output:   NewOutputHandler(d.SP),
		timeout:  d.Timeout,
		log:      logger.OrDefault(d.Log).WithComponent("processor"),
	}
}

// SetRenderer installs the renderer. The worker builds the render machine
// with Observe as its observer, so the two are wired after construction.
func (p *Processor) SetRenderer(r Renderer) {
	p.renderer = r
}

// ProcessJob orchestrates one job end to end.
func (p *Processor) ProcessJob(ctx context.Context, jobID string) error {
	log := p.log.FromContext(ctx).WithJobID(jobID)

	// 1. Load the job
	job, err := p.store.Get(ctx, jobID)
	if err != nil {
		return errors.Wrap(err, "processor.fetch", "failed to fetch render job")
	}
	if job.Status == models.JobDone {
		log.Info("job already done, skipping")
		return nil
	}

	p.setInFlight(jobID)
	defer p.setInFlight("")

	// 2. Mark running
	if err := p.store.MarkRunning(ctx, jobID); err != nil {
		return p.failJob(ctx, jobID, errors.Wrap(err, "processor.status", "failed to mark job as running"))
	}

	// 3. Render. Async jobs only use the server's narration key.
	renderCtx := ctx
	if p.timeout > 0 {
		var cancel context.CancelFunc
		renderCtx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	res, err := p.renderer.Render(renderCtx, render.Request{ID: jobID, Text: job.Text})
	if err != nil {
		return p.failJob(ctx, jobID, err)
	}
	log.Debug("render completed", "bytes", len(res.Video), "has_audio", res.HasAudio)

	// 4. Upload
	stored, err := p.output.Store(ctx, jobID, res.Video)
	if err != nil {
		return p.failJob(ctx, jobID, errors.WrapWithCode(err, errors.CodeUnavailable, "processor.upload", "failed to store video"))
	}

	// 5. Record
	err = p.store.MarkDone(ctx, jobID, models.JobOutput{
		EstimatedSeconds: res.EstimatedSeconds,
		DurationSeconds:  res.DurationSeconds,
		HasAudio:         res.HasAudio,
		StorageProvider:  p.output.Provider(),
		VideoObjectKey:   stored.ObjectKey,
		VideoSizeBytes:   stored.Size,
	})
	if err != nil {
		return p.failJob(ctx, jobID, errors.Wrap(err, "processor.save", "failed to save job output"))
	}
	return nil
}

// Observe persists render phase changes. Install it as the render
// machine's observer.
func (p *Processor) Observe(s render.Status) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := p.store.UpdatePhase(ctx, s.JobID, string(s.Phase), s.Message); err != nil {
		p.log.WithJobID(s.JobID).Warn("phase update failed", "phase", string(s.Phase), "error", err.Error())
	}
}

// FailInFlight marks the running job, if any, as failed. The worker calls
// it when shutdown cannot wait for the job to finish, so the row does not
// stay RUNNING. It reports the job id it failed.
func (p *Processor) FailInFlight(ctx context.Context) string {
	p.mu.Lock()
	jobID := p.inFlight
	p.inFlight = ""
	p.mu.Unlock()
	if jobID == "" {
		return ""
	}
	p.failJob(ctx, jobID, errors.New(errors.CodeUnavailable, "worker stopped before the job finished"))
	return jobID
}

func (p *Processor) setInFlight(jobID string) {
	p.mu.Lock()
	p.inFlight = jobID
	p.mu.Unlock()
}

func (p *Processor) failJob(ctx context.Context, jobID string, cause error) error {
	log := p.log.FromContext(ctx).WithJobID(jobID)

	code := errors.GetCode(cause)
	var rcErr *errors.Error
	if errors.As(cause, &rcErr) {
		log.Error("job failed", "code", string(code), "op", rcErr.Op, "error", cause.Error())
	} else {
		log.Error("job failed", "error", cause.Error())
	}

	// Store only the public message; engine diagnostics stay in the logs.
	if err := p.store.MarkFailed(ctx, jobID, code, errors.PublicMessage(cause)); err != nil {
		log.Warn("failed to record job failure", "error", err.Error())
	}
	return cause
}
