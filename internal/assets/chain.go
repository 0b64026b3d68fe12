package assets

import (
	"context"
	"errors"
	"fmt"
)

// Source produces the bytes of one asset. Name identifies it in logs.
type Source struct {
	Name  string
	Fetch func(ctx context.Context) ([]byte, error)
}

// Attempt records one failed source.
type Attempt struct {
	Source string
	Err    error
}

// Outcome is the result of FirstSuccess: either Data from Source, or no data
// and the list of failed attempts.
type Outcome struct {
	Data     []byte
	Source   string
	Attempts []Attempt
}

// Exhausted reports whether no source produced data.
func (o Outcome) Exhausted() bool {
	return len(o.Data) == 0
}

// Err joins the failures of every attempt. It is nil when a source succeeded.
func (o Outcome) Err() error {
	if !o.Exhausted() {
		return nil
	}
	if len(o.Attempts) == 0 {
		return errors.New("no sources configured")
	}
	errs := make([]error, 0, len(o.Attempts))
	for _, a := range o.Attempts {
		errs = append(errs, fmt.Errorf("%s: %w", a.Source, a.Err))
	}
	return errors.Join(errs...)
}

// errEmpty is recorded when a source succeeds with no bytes.
var errEmpty = errors.New("empty payload")

// FirstSuccess tries sources in order and returns the first non-empty
// result. A canceled context stops the chain early.
func FirstSuccess(ctx context.Context, sources ...Source) Outcome {
	var out Outcome
	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			out.Attempts = append(out.Attempts, Attempt{Source: src.Name, Err: err})
			return out
		}
		data, err := src.Fetch(ctx)
		if err == nil && len(data) == 0 {
			err = errEmpty
		}
		if err != nil {
			out.Attempts = append(out.Attempts, Attempt{Source: src.Name, Err: err})
			continue
		}
		out.Data = data
		out.Source = src.Name
		return out
	}
	return out
}
