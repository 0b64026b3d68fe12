package render

import (
	"reelcast/internal/assets"
	"reelcast/internal/pkg/errors"
)

// Job is one render invocation. A Machine owns at most one current Job.
type Job struct {
	ID         string
	SourceText string

	DurationSeconds int
	WrappedCaption  string
	Narration       []byte
	Font            []byte
	Staged          assets.Staged

	Phase   Phase
	Message string

	Output        []byte
	OutputSeconds float64

	ErrorCode    errors.Code
	ErrorMessage string
}

func newJob(id, text string) *Job {
	return &Job{ID: id, SourceText: text, Phase: PhaseIdle, Message: PhaseIdle.Message()}
}

// HasNarration reports whether narration audio was staged.
func (j *Job) HasNarration() bool {
	return len(j.Narration) > 0
}

// fail records err and drops every byte the job holds.
func (j *Job) fail(err error) {
	j.ErrorCode = errors.GetCode(err)
	j.ErrorMessage = errors.PublicMessage(err)
	j.release()
}

func (j *Job) release() {
	j.Output = nil
	j.Narration = nil
	j.Font = nil
	j.Staged.Clear()
}

// Status is a snapshot published to observers on every transition.
type Status struct {
	JobID        string
	Phase        Phase
	Message      string
	HasNarration bool
	ErrorCode    errors.Code
	ErrorMessage string
}

func (j *Job) status() Status {
	return Status{
		JobID:        j.ID,
		Phase:        j.Phase,
		Message:      j.Message,
		HasNarration: j.HasNarration(),
		ErrorCode:    j.ErrorCode,
		ErrorMessage: j.ErrorMessage,
	}
}
