package pipeline

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reelcast/internal/config"
	"reelcast/internal/narration"
	"reelcast/internal/pkg/logger"
)

func TestNewNarrator(t *testing.T) {
	assert.Nil(t, NewNarrator(config.Narration{Provider: "none"}))

	_, ok := NewNarrator(config.Narration{Provider: "http", Endpoint: "http://x"}).(*narration.HTTP)
	assert.True(t, ok)

	_, ok = NewNarrator(config.Narration{Provider: "openai"}).(*narration.OpenAI)
	assert.True(t, ok)
}

func TestNewWiresEverything(t *testing.T) {
	cfg := config.Default()
	p := New(&cfg, logger.Discard(), nil)

	require.NotNil(t, p.Machine)
	assert.NotNil(t, p.Composer)
	assert.Equal(t, "ffmpeg", p.Engine.Binary())
	assert.Len(t, p.Fonts.Sources(), 2)

	plan := p.Composer.Plan(8, false)
	assert.Equal(t, cfg.Style, plan.Style)
}

func TestNewNarratorAppliesTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(3 * time.Second):
		case <-r.Context().Done():
			return
		}
		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write([]byte("late"))
	}))
	defer srv.Close()

	p := NewNarrator(config.Narration{
		Provider:       "openai",
		APIKey:         "k",
		BaseURL:        srv.URL + "/v1/",
		TimeoutSeconds: 1,
	})

	start := time.Now()
	res := narration.Fetch(context.Background(), p, "Hello there", "")
	assert.False(t, res.Present())
	assert.Less(t, time.Since(start), 2500*time.Millisecond)
}
