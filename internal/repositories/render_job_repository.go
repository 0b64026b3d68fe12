// Package repositories persists render jobs in Postgres.
package repositories

import (
	"context"
	_ "embed"
	stderrors "errors"
	"unicode/utf8"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"reelcast/internal/httpkit"
	"reelcast/internal/models"
	"reelcast/internal/pkg/errors"
)

//go:embed schema.sql
var schemaSQL string

// maxErrorText bounds stored error text.
const maxErrorText = 2000

const jobColumns = `id, COALESCE(name,''), text, status, phase, COALESCE(message,''),
	COALESCE(estimated_seconds,0), COALESCE(duration_seconds,0), has_audio,
	COALESCE(storage_provider,''), COALESCE(video_object_key,''), COALESCE(video_size_bytes,0),
	COALESCE(error_code,''), COALESCE(error_text,''), created_at, started_at, finished_at`

// RenderJobRepository reads and writes render_jobs.
type RenderJobRepository struct {
	db *pgxpool.Pool
}

func NewRenderJobRepository(db *pgxpool.Pool) *RenderJobRepository {
	return &RenderJobRepository{db: db}
}

// EnsureSchema creates the table and index when missing.
func (r *RenderJobRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schemaSQL); err != nil {
		return errors.Wrap(err, "repositories.schema", "failed to apply schema")
	}
	return nil
}

// Create inserts a QUEUED job and fills CreatedAt.
func (r *RenderJobRepository) Create(ctx context.Context, j *models.RenderJob) error {
	j.Status = models.JobQueued
	if j.Phase == "" {
		j.Phase = "idle"
	}
	err := r.db.QueryRow(ctx, `
		INSERT INTO render_jobs (id, name, text, status, phase)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING created_at
	`, j.ID, nullIfEmpty(j.Name), j.Text, j.Status, j.Phase).Scan(&j.CreatedAt)
	if err != nil {
		if httpkit.IsUniqueViolation(err) {
			return errors.New(errors.CodeConflict, "render job already exists").WithField("id", j.ID)
		}
		return r.wrap(err, "repositories.create", "failed to insert render job")
	}
	return nil
}

// Get returns one job.
func (r *RenderJobRepository) Get(ctx context.Context, id string) (*models.RenderJob, error) {
	row := r.db.QueryRow(ctx, `SELECT `+jobColumns+` FROM render_jobs WHERE id=$1`, id)
	j, err := scanJob(row)
	if err != nil {
		if stderrors.Is(err, pgx.ErrNoRows) {
			return nil, errors.NotFound("render job", id)
		}
		return nil, r.wrap(err, "repositories.get", "failed to load render job")
	}
	return j, nil
}

// List returns the newest jobs, optionally filtered by status.
func (r *RenderJobRepository) List(ctx context.Context, status models.JobStatus, limit int) ([]models.RenderJob, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if status != "" {
		rows, err = r.db.Query(ctx, `SELECT `+jobColumns+` FROM render_jobs
			WHERE status=$1 ORDER BY created_at DESC LIMIT $2`, status, limit)
	} else {
		rows, err = r.db.Query(ctx, `SELECT `+jobColumns+` FROM render_jobs
			ORDER BY created_at DESC LIMIT $1`, limit)
	}
	if err != nil {
		return nil, r.wrap(err, "repositories.list", "failed to list render jobs")
	}
	defer rows.Close()

	out := make([]models.RenderJob, 0, limit)
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, r.wrap(err, "repositories.list", "failed to scan render job")
		}
		out = append(out, *j)
	}
	if err := rows.Err(); err != nil {
		return nil, r.wrap(err, "repositories.list", "failed to list render jobs")
	}
	return out, nil
}

// MarkRunning moves a job to RUNNING and clears previous results.
func (r *RenderJobRepository) MarkRunning(ctx context.Context, id string) error {
	return r.exec(ctx, "repositories.running", `
		UPDATE render_jobs
		SET status='RUNNING', started_at=now(), finished_at=NULL, error_code=NULL, error_text=NULL
		WHERE id=$1`, id)
}

// UpdatePhase records the render machine's current phase.
func (r *RenderJobRepository) UpdatePhase(ctx context.Context, id, phase, message string) error {
	return r.exec(ctx, "repositories.phase",
		`UPDATE render_jobs SET phase=$2, message=$3 WHERE id=$1`, id, phase, message)
}

// MarkDone stores the output and moves the job to DONE.
func (r *RenderJobRepository) MarkDone(ctx context.Context, id string, out models.JobOutput) error {
	return r.exec(ctx, "repositories.done", `
		UPDATE render_jobs
		SET status='DONE', phase='done', finished_at=now(),
		    estimated_seconds=$2, duration_seconds=$3, has_audio=$4,
		    storage_provider=$5, video_object_key=$6, video_size_bytes=$7
		WHERE id=$1`,
		id, out.EstimatedSeconds, out.DurationSeconds, out.HasAudio,
		out.StorageProvider, out.VideoObjectKey, out.VideoSizeBytes)
}

// MarkFailed moves the job to FAILED with a code and message.
func (r *RenderJobRepository) MarkFailed(ctx context.Context, id string, code errors.Code, text string) error {
	return r.exec(ctx, "repositories.failed", `
		UPDATE render_jobs
		SET status='FAILED', finished_at=now(), error_code=$2, error_text=$3
		WHERE id=$1`, id, string(code), truncateText(text, maxErrorText))
}

// truncateText cuts s to at most n bytes without splitting a rune, so the
// result stays valid UTF-8 for a text column.
func truncateText(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// Delete removes a job row.
func (r *RenderJobRepository) Delete(ctx context.Context, id string) error {
	return r.exec(ctx, "repositories.delete", `DELETE FROM render_jobs WHERE id=$1`, id)
}

// Ping checks connectivity.
func (r *RenderJobRepository) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

func (r *RenderJobRepository) exec(ctx context.Context, op, sql string, args ...any) error {
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return r.wrap(err, op, "render job update failed")
	}
	if tag.RowsAffected() == 0 {
		id, _ := args[0].(string)
		return errors.NotFound("render job", id)
	}
	return nil
}

func (r *RenderJobRepository) wrap(err error, op, msg string) error {
	if httpkit.IsUndefinedTable(err) {
		return errors.WrapWithCode(err, errors.CodeUnavailable, op, "render_jobs table missing; run migrations")
	}
	return errors.Wrap(err, op, msg)
}

func scanJob(row pgx.Row) (*models.RenderJob, error) {
	var (
		j      models.RenderJob
		status string
	)
	err := row.Scan(
		&j.ID, &j.Name, &j.Text, &status, &j.Phase, &j.Message,
		&j.EstimatedSeconds, &j.DurationSeconds, &j.HasAudio,
		&j.StorageProvider, &j.VideoObjectKey, &j.VideoSizeBytes,
		&j.ErrorCode, &j.ErrorText, &j.CreatedAt, &j.StartedAt, &j.FinishedAt,
	)
	if err != nil {
		return nil, err
	}
	j.Status = models.JobStatus(status)
	return &j, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
