package render

import (
	stderrors "errors"
	"fmt"
)

// Phase is a step of the render lifecycle.
type Phase string

const (
	PhaseIdle              Phase = "idle"
	PhasePreparing         Phase = "preparing"
	PhaseFetchingNarration Phase = "fetching_narration"
	PhaseStagingAssets     Phase = "staging_assets"
	PhaseEncoding          Phase = "encoding"
	PhaseDone              Phase = "done"
	PhaseFailed            Phase = "failed"
)

// Terminal reports whether no further work happens in p.
func (p Phase) Terminal() bool {
	return p == PhaseDone || p == PhaseFailed
}

// Message is the human readable status shown while in p.
func (p Phase) Message() string {
	switch p {
	case PhaseIdle:
		return "Idle"
	case PhasePreparing:
		return "Preparing encoder"
	case PhaseFetchingNarration:
		return "Fetching narration (optional)"
	case PhaseStagingAssets:
		return "Loading font and script"
	case PhaseEncoding:
		return "Rendering video, this can take 30-60s"
	case PhaseDone:
		return "Done"
	case PhaseFailed:
		return "Failed to render"
	default:
		return string(p)
	}
}

// Event drives a transition.
type Event string

const (
	EventStart            Event = "start"
	EventPrepared         Event = "prepared"
	EventNarrationSettled Event = "narration_settled"
	EventAssetsStaged     Event = "assets_staged"
	EventEncoded          Event = "encoded"
	EventFail             Event = "fail"
)

// ErrIllegalTransition is returned by Next for any pair not in the table.
var ErrIllegalTransition = stderrors.New("render: illegal transition")

type edge struct {
	from Phase
	ev   Event
}

var transitions = map[edge]Phase{
	{PhaseIdle, EventStart}:   PhasePreparing,
	{PhaseDone, EventStart}:   PhasePreparing,
	{PhaseFailed, EventStart}: PhasePreparing,

	{PhasePreparing, EventPrepared}:                 PhaseFetchingNarration,
	{PhaseFetchingNarration, EventNarrationSettled}: PhaseStagingAssets,
	{PhaseStagingAssets, EventAssetsStaged}:         PhaseEncoding,
	{PhaseEncoding, EventEncoded}:                   PhaseDone,

	// Only font staging and encoding can fail; narration failures are absorbed.
	{PhaseStagingAssets, EventFail}: PhaseFailed,
	{PhaseEncoding, EventFail}:      PhaseFailed,
}

// Next returns the phase reached from p on ev.
func Next(p Phase, ev Event) (Phase, error) {
	to, ok := transitions[edge{p, ev}]
	if !ok {
		return p, fmt.Errorf("%w: %s on %s", ErrIllegalTransition, p, ev)
	}
	return to, nil
}
