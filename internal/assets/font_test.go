package assets

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reelcast/internal/pkg/errors"
	"reelcast/internal/pkg/logger"
)

func TestStageFontPrefersLocalFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Inter-Regular.ttf")
	require.NoError(t, os.WriteFile(path, []byte("local-font"), 0o644))

	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		_, _ = w.Write([]byte("remote-font"))
	}))
	defer srv.Close()

	s := NewStager([]FontSource{{Path: path, URL: srv.URL}}, srv.Client(), logger.Discard())
	var staged Staged
	require.NoError(t, s.StageFont(context.Background(), &staged))

	data, ok := staged.Get(NameFont)
	require.True(t, ok)
	assert.Equal(t, "local-font", string(data))
	assert.Zero(t, hits)
}

func TestStageFontFallsBackToRemote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("remote-font"))
	}))
	defer srv.Close()

	missing := filepath.Join(t.TempDir(), "nope.ttf")
	s := NewStager([]FontSource{{Path: missing, URL: srv.URL}}, srv.Client(), logger.Discard())

	var staged Staged
	require.NoError(t, s.StageFont(context.Background(), &staged))
	data, _ := staged.Get(NameFont)
	assert.Equal(t, "remote-font", string(data))
}

func TestStageFontExhaustedIsFontLoad(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	s := NewStager([]FontSource{
		{Path: filepath.Join(t.TempDir(), "missing.ttf")},
		{URL: srv.URL},
	}, srv.Client(), logger.Discard())

	var staged Staged
	err := s.StageFont(context.Background(), &staged)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeFontLoad))
	assert.ErrorContains(t, err, "http 404")
	assert.False(t, staged.Has(NameFont))
}

func TestSourcesOrder(t *testing.T) {
	s := NewStager([]FontSource{
		{Path: "a.ttf", URL: "https://example.test/a.ttf"},
		{URL: " "},
		{Path: "b.ttf"},
	}, nil, logger.Discard())

	var names []string
	for _, src := range s.Sources() {
		names = append(names, src.Name)
	}
	assert.Equal(t, []string{"file:a.ttf", "https://example.test/a.ttf", "file:b.ttf"}, names)
}

func TestStagedLifecycle(t *testing.T) {
	var s Staged
	assert.False(t, s.Has(NameAudio))

	StageCaption(&s, "hello\nworld")
	assert.False(t, StageNarration(&s, nil))
	assert.True(t, StageNarration(&s, []byte("mp3")))

	assert.Equal(t, []string{NameAudio, NameCaption}, s.Names())
	assert.Equal(t, 2, s.Len())

	s.Clear()
	assert.Zero(t, s.Len())
	assert.Empty(t, s.Names())
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "Inter-Regular.ttf", FileName(NameFont))
	assert.Equal(t, "script.txt", FileName(NameCaption))
	assert.Equal(t, "narration.mp3", FileName(NameAudio))
	assert.Equal(t, "other.bin", FileName("other.bin"))
}
