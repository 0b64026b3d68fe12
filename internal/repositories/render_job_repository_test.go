package repositories

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reelcast/internal/models"
	"reelcast/internal/pkg/errors"
)

// newTestRepo connects to REELCAST_TEST_DATABASE_URL or skips.
func newTestRepo(t *testing.T) *RenderJobRepository {
	t.Helper()
	dsn := os.Getenv("REELCAST_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("REELCAST_TEST_DATABASE_URL not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	repo := NewRenderJobRepository(pool)
	require.NoError(t, repo.EnsureSchema(ctx))
	return repo
}

func TestRenderJobLifecycle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	job := &models.RenderJob{ID: uuid.NewString(), Text: "Hello world"}
	require.NoError(t, repo.Create(ctx, job))
	t.Cleanup(func() { _ = repo.Delete(ctx, job.ID) })
	assert.False(t, job.CreatedAt.IsZero())

	err := repo.Create(ctx, &models.RenderJob{ID: job.ID, Text: "dup"})
	assert.True(t, errors.IsCode(err, errors.CodeConflict))

	require.NoError(t, repo.MarkRunning(ctx, job.ID))
	require.NoError(t, repo.UpdatePhase(ctx, job.ID, "encoding", "Rendering video"))

	got, err := repo.Get(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobRunning, got.Status)
	assert.Equal(t, "encoding", got.Phase)
	assert.NotNil(t, got.StartedAt)

	require.NoError(t, repo.MarkDone(ctx, job.ID, models.JobOutput{
		EstimatedSeconds: 8,
		DurationSeconds:  8.02,
		StorageProvider:  "localfs",
		VideoObjectKey:   "renders/" + job.ID + "/short.mp4",
		VideoSizeBytes:   1234,
	}))

	got, err = repo.Get(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobDone, got.Status)
	assert.Equal(t, int64(1234), got.VideoSizeBytes)
	assert.NotNil(t, got.FinishedAt)

	list, err := repo.List(ctx, models.JobDone, 200)
	require.NoError(t, err)
	found := false
	for _, j := range list {
		found = found || j.ID == job.ID
	}
	assert.True(t, found)
}

func TestRenderJobFailedAndMissing(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	job := &models.RenderJob{ID: uuid.NewString(), Text: "x y"}
	require.NoError(t, repo.Create(ctx, job))
	t.Cleanup(func() { _ = repo.Delete(ctx, job.ID) })

	require.NoError(t, repo.MarkFailed(ctx, job.ID, errors.CodeFontLoad, "caption font could not be loaded"))
	got, err := repo.Get(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobFailed, got.Status)
	assert.Equal(t, string(errors.CodeFontLoad), got.ErrorCode)

	_, err = repo.Get(ctx, "missing-"+uuid.NewString())
	assert.True(t, errors.IsCode(err, errors.CodeNotFound))
	assert.True(t, errors.IsCode(repo.MarkRunning(ctx, "missing"), errors.CodeNotFound))
}

func TestTruncateTextKeepsRunes(t *testing.T) {
	assert.Equal(t, "short", truncateText("short", maxErrorText))

	// 999 ASCII bytes then 3-byte runes: byte 2000 falls inside a rune.
	text := strings.Repeat("a", 999) + strings.Repeat("€", 400)
	got := truncateText(text, maxErrorText)

	assert.True(t, utf8.ValidString(got))
	assert.LessOrEqual(t, len(got), maxErrorText)
	assert.Equal(t, 1998, len(got), "the partial rune is dropped")
	assert.True(t, strings.HasPrefix(text, got))
}
