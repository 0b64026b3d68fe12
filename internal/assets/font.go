package assets

import (
	"context"
	"net/http"
	"strings"

	"reelcast/internal/pkg/errors"
	"reelcast/internal/pkg/logger"
)

// FontSource is one entry of the font fallback chain. Either field may be
// empty; Path is tried before URL.
type FontSource struct {
	Path string `toml:"path"`
	URL  string `toml:"url"`
}

// Stager resolves the font for a job through its fallback chain.
type Stager struct {
	fonts  []FontSource
	client *http.Client
	log    *logger.Logger
}

// NewStager builds a Stager for the given chain. client is used for remote
// sources and may be nil.
func NewStager(fonts []FontSource, client *http.Client, log *logger.Logger) *Stager {
	return &Stager{
		fonts:  fonts,
		client: client,
		log:    logger.OrDefault(log).WithComponent("assets"),
	}
}

// Sources expands the chain into ordered sources.
func (s *Stager) Sources() []Source {
	var sources []Source
	for _, f := range s.fonts {
		if p := strings.TrimSpace(f.Path); p != "" {
			sources = append(sources, LocalFile(p))
		}
		if u := strings.TrimSpace(f.URL); u != "" {
			sources = append(sources, RemoteURL(s.client, u))
		}
	}
	return sources
}

// StageFont resolves the font and stores it in staged under NameFont.
// Exhausting the chain returns a CodeFontLoad error and stages nothing.
func (s *Stager) StageFont(ctx context.Context, staged *Staged) error {
	out := FirstSuccess(ctx, s.Sources()...)

	for _, a := range out.Attempts {
		s.log.FromContext(ctx).Debug("font source failed", "source", a.Source, "error", a.Err.Error())
	}
	if out.Exhausted() {
		return errors.FontLoad("assets.font", out.Err())
	}

	s.log.FromContext(ctx).Debug("font staged", "source", out.Source, "bytes", len(out.Data))
	staged.Put(NameFont, out.Data)
	return nil
}

// StageCaption stores the wrapped caption text. It cannot fail.
func StageCaption(staged *Staged, wrapped string) {
	staged.Put(NameCaption, []byte(wrapped))
}

// StageNarration stores narration audio when present and reports whether
// it did.
func StageNarration(staged *Staged, audio []byte) bool {
	if len(audio) == 0 {
		return false
	}
	staged.Put(NameAudio, audio)
	return true
}
