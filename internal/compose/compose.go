// Package compose drives one encode: it copies a job's staged assets into
// an engine workspace, runs the planned ffmpeg command and reads the video
// back.
package compose

import (
	"context"
	stderrors "errors"
	"fmt"

	"reelcast/internal/assets"
	"reelcast/internal/ffmpeg"
	"reelcast/internal/pkg/errors"
	"reelcast/internal/pkg/logger"
)

// Input is everything an encode needs.
type Input struct {
	DurationSeconds int
	Staged          *assets.Staged
}

// Output is the encoded video.
type Output struct {
	Video []byte
	// DurationSeconds is the probed length, or the planned length when the
	// probe was unavailable.
	DurationSeconds float64
	Probed          bool
	HasAudio        bool
}

// Orchestrator composes videos on an Engine.
type Orchestrator struct {
	engine ffmpeg.Engine
	style  ffmpeg.Style
	log    *logger.Logger
}

// New returns an Orchestrator using style for every render.
func New(engine ffmpeg.Engine, style ffmpeg.Style, log *logger.Logger) *Orchestrator {
	return &Orchestrator{
		engine: engine,
		style:  style,
		log:    logger.OrDefault(log).WithComponent("compose"),
	}
}

// Plan returns the ffmpeg plan Compose would run.
func (o *Orchestrator) Plan(durationSeconds int, withAudio bool) ffmpeg.Plan {
	p := ffmpeg.NewPlan(durationSeconds, withAudio)
	p.Style = o.style
	return p
}

// Load readies the engine. Health checks call it directly.
func (o *Orchestrator) Load(ctx context.Context) error {
	if err := o.engine.Load(ctx); err != nil {
		return errors.Encode("compose.load", err)
	}
	return nil
}

// Compose encodes in.Staged. Every failure is a CodeEncode error; the
// workspace is released on all paths.
func (o *Orchestrator) Compose(ctx context.Context, in Input) (out Output, err error) {
	if in.Staged == nil || !in.Staged.Has(assets.NameFont) || !in.Staged.Has(assets.NameCaption) {
		return Output{}, errors.Encode("compose.input", stderrors.New("font and caption must be staged"))
	}
	if err := o.Load(ctx); err != nil {
		return Output{}, err
	}

	ws, err := o.engine.Open(ctx)
	if err != nil {
		return Output{}, errors.Encode("compose.open", err)
	}
	defer func() {
		if rerr := ws.Release(); rerr != nil {
			o.log.FromContext(ctx).Warn("workspace release failed", "error", rerr.Error())
		}
	}()

	for _, name := range in.Staged.Names() {
		data, _ := in.Staged.Get(name)
		if err := ws.WriteFile(assets.FileName(name), data); err != nil {
			return Output{}, errors.Encode("compose.write", fmt.Errorf("%s: %w", name, err))
		}
	}

	plan := o.Plan(in.DurationSeconds, in.Staged.Has(assets.NameAudio))
	args := ffmpeg.Build(plan)
	o.log.FromContext(ctx).Debug("encoding", "args", args)

	if err := ws.Exec(ctx, args); err != nil {
		return Output{}, errors.Encode("compose.exec", err)
	}

	video, err := ws.ReadFile(plan.OutputFile)
	if err != nil {
		return Output{}, errors.Encode("compose.read", err)
	}
	if len(video) == 0 {
		return Output{}, errors.Encode("compose.read", stderrors.New("empty output"))
	}

	out = Output{
		Video:           video,
		DurationSeconds: float64(in.DurationSeconds),
		HasAudio:        plan.WithAudio,
	}
	probe, err := ws.Probe(ctx, plan.OutputFile)
	switch {
	case err != nil:
		o.log.FromContext(ctx).Debug("probe unavailable", "error", err.Error())
	case probe.DurationSeconds() > 0:
		out.DurationSeconds = probe.DurationSeconds()
		out.Probed = true
	}
	return out, nil
}
