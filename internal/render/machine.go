// Package render runs the caption video lifecycle: estimate and wrap the
// caption, fetch optional narration, stage assets and encode.
//
// A Machine executes one job at a time. Every change to the job goes
// through commit, which first checks that the job is still the Machine's
// current one, so a superseded job can never overwrite its successor.
package render

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"reelcast/internal/assets"
	"reelcast/internal/caption"
	"reelcast/internal/compose"
	"reelcast/internal/narration"
	"reelcast/internal/pkg/errors"
	"reelcast/internal/pkg/logger"
)

// Policy decides what happens when Render is called while a job runs.
type Policy int

const (
	// PolicyReplace abandons the running job; its Render returns ErrSuperseded.
	PolicyReplace Policy = iota
	// PolicyReject refuses the new request with ErrBusy.
	PolicyReject
)

// ParsePolicy maps "replace" and "reject" to a Policy.
func ParsePolicy(s string) (Policy, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "replace":
		return PolicyReplace, true
	case "reject":
		return PolicyReject, true
	default:
		return PolicyReplace, false
	}
}

var (
	// ErrSuperseded is returned by a Render whose job was replaced.
	ErrSuperseded = &errors.Error{Code: errors.CodeConflict, Message: "render superseded by a newer request"}
	// ErrBusy is returned under PolicyReject while a job is in flight.
	ErrBusy = &errors.Error{Code: errors.CodeUnavailable, Message: "a render is already in progress"}
)

// FontStager puts the caption font into a job's staged assets.
type FontStager interface {
	StageFont(ctx context.Context, staged *assets.Staged) error
}

// Composer encodes staged assets into a video.
type Composer interface {
	Compose(ctx context.Context, in compose.Input) (compose.Output, error)
}

// Observer receives a Status for every transition. It is called with the
// Machine's lock held and must not call back into the Machine.
type Observer func(Status)

// Options tune a Machine. Zero values use the defaults.
type Options struct {
	WordsPerMinute int
	WrapWidth      int
	Policy         Policy
	Observer       Observer
}

// Request is the input of one render.
type Request struct {
	// ID names the job; empty means a new UUID.
	ID         string
	Text       string
	Credential string
}

// Result is a finished render.
type Result struct {
	JobID            string
	Video            []byte
	EstimatedSeconds int
	DurationSeconds  float64
	HasAudio         bool
	// NarrationSkipped is the narration reason code when audio is absent;
	// empty when present.
	NarrationSkipped string
}

// Machine runs render jobs.
type Machine struct {
	narrator narration.Provider
	fonts    FontStager
	composer Composer
	opts     Options
	log      *logger.Logger

	mu      sync.Mutex
	current *Job
}

// NewMachine wires a Machine. narrator may be nil, in which case every
// render is silent.
func NewMachine(narrator narration.Provider, fonts FontStager, composer Composer, opts Options, log *logger.Logger) *Machine {
	return &Machine{
		narrator: narrator,
		fonts:    fonts,
		composer: composer,
		opts:     opts,
		log:      logger.OrDefault(log).WithComponent("render"),
	}
}

// Current returns a snapshot of the current job, if any.
func (m *Machine) Current() (Status, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return Status{}, false
	}
	return m.current.status(), true
}

// Render runs one job to completion. Invalid input is rejected before any
// transition. On success the returned video is the caller's; the job
// keeps no copy.
func (m *Machine) Render(ctx context.Context, req Request) (Result, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return Result{}, errors.ValidationField("text", "text is required")
	}

	id := req.ID
	if id == "" {
		id = uuid.NewString()
	}
	job := newJob(id, req.Text)
	if err := m.begin(job); err != nil {
		return Result{}, err
	}

	ctx = logger.ContextWithJobID(ctx, job.ID)
	log := m.log.FromContext(ctx)

	if err := m.commit(job, EventStart, nil); err != nil {
		return Result{}, err
	}

	// Preparing
	seconds := caption.EstimateSeconds(req.Text, m.opts.WordsPerMinute)
	wrapped := caption.Wrap(req.Text, m.opts.WrapWidth)
	err := m.commit(job, EventPrepared, func(j *Job) {
		j.DurationSeconds = seconds
		j.WrappedCaption = wrapped
		assets.StageCaption(&j.Staged, wrapped)
	})
	if err != nil {
		return Result{}, err
	}

	// FetchingNarration
	narr := narration.Fetch(ctx, m.narrator, req.Text, req.Credential)
	skipped := narr.Code()
	if skipped != "" {
		log.Warn("narration skipped", "reason", skipped, "error", narr.Reason.Error())
	}
	err = m.commit(job, EventNarrationSettled, func(j *Job) {
		if assets.StageNarration(&j.Staged, narr.Audio) {
			j.Narration = narr.Audio
		}
	})
	if err != nil {
		return Result{}, err
	}

	// StagingAssets
	var staged assets.Staged
	if err := m.fonts.StageFont(ctx, &staged); err != nil {
		return Result{}, m.failWith(job, err, log)
	}
	font, _ := staged.Get(assets.NameFont)
	err = m.commit(job, EventAssetsStaged, func(j *Job) {
		j.Font = font
		j.Staged.Put(assets.NameFont, font)
	})
	if err != nil {
		return Result{}, err
	}

	// Encoding
	input, err := m.encodeInput(job)
	if err != nil {
		return Result{}, err
	}
	out, err := m.composer.Compose(ctx, input)
	if err != nil {
		return Result{}, m.failWith(job, err, log)
	}

	var res Result
	err = m.commit(job, EventEncoded, func(j *Job) {
		j.Output = out.Video
		j.OutputSeconds = out.DurationSeconds
		res = Result{
			JobID:            j.ID,
			Video:            j.Output,
			EstimatedSeconds: j.DurationSeconds,
			DurationSeconds:  j.OutputSeconds,
			HasAudio:         out.HasAudio,
			NarrationSkipped: skipped,
		}
		// Handed off: the job keeps no bytes.
		j.release()
	})
	if err != nil {
		return Result{}, err
	}

	log.Info("render finished",
		"estimated_seconds", res.EstimatedSeconds,
		"duration_seconds", res.DurationSeconds,
		"has_audio", res.HasAudio,
		"bytes", len(res.Video),
	)
	return res, nil
}

// begin installs job as current according to the policy.
func (m *Machine) begin(job *Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if prev := m.current; prev != nil && !prev.Phase.Terminal() {
		if m.opts.Policy == PolicyReject {
			return ErrBusy
		}
		m.log.Info("render superseded", "job_id", prev.ID, "by", job.ID)
	}
	m.current = job
	return nil
}

// commit applies ev to job, runs mutate and notifies the observer. It
// fails with ErrSuperseded when job is no longer current.
func (m *Machine) commit(job *Job, ev Event, mutate func(*Job)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current != job {
		job.release()
		return ErrSuperseded
	}
	next, err := Next(job.Phase, ev)
	if err != nil {
		return errors.WrapWithCode(err, errors.CodeInternal, "render.commit", "invalid render lifecycle step")
	}
	if ev == EventStart {
		job.release()
		job.ErrorCode, job.ErrorMessage = "", ""
	}
	job.Phase = next
	job.Message = next.Message()
	if mutate != nil {
		mutate(job)
	}
	if m.opts.Observer != nil {
		m.opts.Observer(job.status())
	}
	return nil
}

// failWith moves job to Failed and returns cause, or ErrSuperseded if the
// job was replaced meanwhile.
func (m *Machine) failWith(job *Job, cause error, log *logger.Logger) error {
	if err := m.commit(job, EventFail, func(j *Job) { j.fail(cause) }); err != nil {
		return err
	}
	log.Error("render failed", "code", string(errors.GetCode(cause)), "error", cause.Error())
	return cause
}

func (m *Machine) encodeInput(job *Job) (compose.Input, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current != job {
		job.release()
		return compose.Input{}, ErrSuperseded
	}
	staged := job.Staged
	return compose.Input{DurationSeconds: job.DurationSeconds, Staged: &staged}, nil
}

// Isolated runs every Render on a fresh Machine. Independent callers, such
// as separate HTTP requests, then never supersede one another; the policy
// only applies within one caller.
type Isolated struct {
	narrator narration.Provider
	fonts    FontStager
	composer Composer
	opts     Options
	log      *logger.Logger
}

// NewIsolated takes the same arguments as NewMachine.
func NewIsolated(narrator narration.Provider, fonts FontStager, composer Composer, opts Options, log *logger.Logger) *Isolated {
	return &Isolated{narrator: narrator, fonts: fonts, composer: composer, opts: opts, log: log}
}

// Render runs req on its own Machine.
func (i *Isolated) Render(ctx context.Context, req Request) (Result, error) {
	return NewMachine(i.narrator, i.fonts, i.composer, i.opts, i.log).Render(ctx, req)
}
