// Package narration turns caption text into spoken audio. Narration is
// optional: Fetch never fails, it reports why audio is absent instead.
package narration

import (
	"context"
	stderrors "errors"
	"strings"

	"reelcast/internal/pkg/errors"
)

// MinTextLength is the shortest text a provider accepts, in runes after
// trimming.
const MinTextLength = 2

// ErrMissingCredential is returned when neither the caller nor the
// environment supplied an API key.
var ErrMissingCredential = stderrors.New("narration: no credential")

var (
	ErrNoProvider = stderrors.New("narration: no provider configured")
	ErrEmptyAudio = stderrors.New("narration: empty audio")
)

// Reason codes reported to callers when narration is absent. Upstream error
// text stays in the logs.
const (
	ReasonNoProvider        = "no_provider"
	ReasonMissingCredential = "missing_credential"
	ReasonTextTooShort      = "text_too_short"
	ReasonTimeout           = "timeout"
	ReasonCanceled          = "canceled"
	ReasonEmptyAudio        = "empty_audio"
	ReasonUpstream          = "upstream_error"
)

// Provider synthesizes speech. credential may be empty, in which case the
// provider falls back to its own configured key if it has one.
type Provider interface {
	Synthesize(ctx context.Context, text, credential string) ([]byte, error)
}

// Result is the outcome of Fetch. Audio is nil when narration is absent and
// Reason then says why.
type Result struct {
	Audio  []byte
	Reason error
}

// Present reports whether audio was produced.
func (r Result) Present() bool {
	return len(r.Audio) > 0
}

// Fetch asks p for narration. Every failure, including a nil provider,
// yields an absent Result rather than an error.
func Fetch(ctx context.Context, p Provider, text, credential string) Result {
	if p == nil {
		return Result{Reason: ErrNoProvider}
	}
	audio, err := p.Synthesize(ctx, text, credential)
	if err != nil {
		return Result{Reason: err}
	}
	if len(audio) == 0 {
		return Result{Reason: ErrEmptyAudio}
	}
	return Result{Audio: audio}
}

// Code is the short reason narration is absent; empty when present.
func (r Result) Code() string {
	if r.Present() {
		return ""
	}
	return ReasonCode(r.Reason)
}

// ReasonCode maps a synthesis failure to one of the Reason codes.
func ReasonCode(err error) string {
	var timeout interface{ Timeout() bool }
	switch {
	case err == nil:
		return ""
	case stderrors.Is(err, ErrNoProvider):
		return ReasonNoProvider
	case stderrors.Is(err, ErrMissingCredential):
		return ReasonMissingCredential
	case stderrors.Is(err, ErrEmptyAudio):
		return ReasonEmptyAudio
	case errors.IsValidation(err):
		return ReasonTextTooShort
	case stderrors.Is(err, context.DeadlineExceeded):
		return ReasonTimeout
	case stderrors.As(err, &timeout) && timeout.Timeout():
		return ReasonTimeout
	case stderrors.Is(err, context.Canceled):
		return ReasonCanceled
	default:
		return ReasonUpstream
	}
}

// ValidateText rejects text too short to narrate.
func ValidateText(text string) error {
	if len([]rune(strings.TrimSpace(text))) < MinTextLength {
		return errors.ValidationField("text", "text is too short to narrate")
	}
	return nil
}

// isAudio accepts audio/* content types and octet streams.
func isAudio(contentType string) bool {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	return strings.HasPrefix(ct, "audio/") || strings.HasPrefix(ct, "application/octet-stream")
}
