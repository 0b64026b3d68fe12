// Package pipeline assembles the render machine from configuration. The
// CLI, the API and the worker all build their renderer here.
package pipeline

import (
	"net/http"
	"time"

	"reelcast/internal/assets"
	"reelcast/internal/compose"
	"reelcast/internal/config"
	"reelcast/internal/ffmpeg"
	"reelcast/internal/narration"
	"reelcast/internal/pkg/logger"
	"reelcast/internal/render"
)

// Pipeline is a wired renderer.
type Pipeline struct {
	// Machine serves a single caller: the CLI or the worker loop.
	Machine *render.Machine
	// Isolated serves many independent callers, one Machine per render.
	Isolated *render.Isolated
	Composer *compose.Orchestrator
	Engine   *ffmpeg.Local
	Narrator narration.Provider
	Fonts    *assets.Stager
}

// New wires a Pipeline. observer may be nil.
func New(cfg *config.Config, log *logger.Logger, observer render.Observer) *Pipeline {
	log = logger.OrDefault(log)

	engine := ffmpeg.NewLocal(cfg.FFmpeg, log)
	composer := compose.New(engine, cfg.Style, log)
	fonts := assets.NewStager(cfg.Fonts, &http.Client{Timeout: 30 * time.Second}, log)
	narrator := NewNarrator(cfg.Narration)

	policy, _ := render.ParsePolicy(cfg.Render.Policy)
	opts := render.Options{
		WordsPerMinute: cfg.Render.WordsPerMinute,
		WrapWidth:      cfg.Render.WrapWidth,
		Policy:         policy,
		Observer:       observer,
	}

	return &Pipeline{
		Machine:  render.NewMachine(narrator, fonts, composer, opts, log),
		Isolated: render.NewIsolated(narrator, fonts, composer, opts, log),
		Composer: composer,
		Engine:   engine,
		Narrator: narrator,
		Fonts:    fonts,
	}
}

// NewNarrator returns the configured provider, or nil for "none".
func NewNarrator(cfg config.Narration) narration.Provider {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	switch cfg.Provider {
	case "none":
		return nil
	case "http":
		return narration.NewHTTP(cfg.Endpoint, &http.Client{Timeout: timeout})
	default:
		return narration.NewOpenAI(narration.OpenAIConfig{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			Voice:   cfg.Voice,
			Timeout: timeout,
		})
	}
}
