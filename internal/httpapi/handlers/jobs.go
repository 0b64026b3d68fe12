package handlers

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"reelcast/internal/httpkit"
	"reelcast/internal/models"
	"reelcast/internal/pkg/errors"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// PostJob stores a QUEUED job and pushes its id for the worker.
func (h *Handler) PostJob(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	var req textRequest
	if err := httpkit.DecodeJSON(r, &req, h.maxBody); err != nil {
		return errors.WrapWithCode(err, errors.CodeValidation, "api.jobs.create", "invalid json body")
	}
	if strings.TrimSpace(req.Text) == "" {
		return errors.ValidationField("text", "text is required")
	}

	job := &models.RenderJob{
		ID:   uuid.NewString(),
		Name: strings.TrimSpace(req.Name),
		Text: req.Text,
	}
	if err := h.repo.Create(ctx, job); err != nil {
		return err
	}

	if err := h.queue.Push(ctx, job.ID); err != nil {
		if derr := h.repo.Delete(ctx, job.ID); derr != nil {
			h.log.FromContext(ctx).Warn("failed to drop unqueued job", "job_id", job.ID, "error", derr.Error())
		}
		return errors.WrapWithCode(err, errors.CodeUnavailable, "api.jobs.enqueue", "queue push failed")
	}

	httpkit.WriteJSON(w, http.StatusCreated, map[string]any{"job": job})
	return nil
}

// ListJobs lists recent jobs, optionally filtered by ?status=.
func (h *Handler) ListJobs(w http.ResponseWriter, r *http.Request) error {
	q := r.URL.Query()

	status := models.JobStatus(strings.ToUpper(strings.TrimSpace(q.Get("status"))))
	if status != "" && !status.Valid() {
		return errors.ValidationField("status", "unknown job status")
	}

	limit := defaultListLimit
	if raw := strings.TrimSpace(q.Get("limit")); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 && v <= maxListLimit {
			limit = v
		}
	}

	jobs, err := h.repo.List(r.Context(), status, limit)
	if err != nil {
		return err
	}
	if jobs == nil {
		jobs = []models.RenderJob{}
	}
	httpkit.WriteJSON(w, http.StatusOK, map[string]any{"jobs": jobs})
	return nil
}

func (h *Handler) GetJob(w http.ResponseWriter, r *http.Request) error {
	job, err := h.repo.Get(r.Context(), chi.URLParam(r, "jobId"))
	if err != nil {
		return err
	}
	httpkit.WriteJSON(w, http.StatusOK, map[string]any{"job": job})
	return nil
}

// StreamJobVideo copies a finished job's video out of storage.
func (h *Handler) StreamJobVideo(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	job, err := h.repo.Get(ctx, chi.URLParam(r, "jobId"))
	if err != nil {
		return err
	}
	if job.Status != models.JobDone || job.VideoObjectKey == "" {
		return errors.New(errors.CodeConflict, "video is not ready").
			WithField("status", string(job.Status))
	}

	rc, contentType, size, err := h.sp.GetObject(ctx, job.VideoObjectKey)
	if err != nil {
		return errors.WrapWithCode(err, errors.CodeUnavailable, "api.jobs.video", "storage get failed")
	}
	defer rc.Close()

	if contentType == "" {
		contentType = "video/mp4"
	}
	w.Header().Set("Content-Type", contentType)
	if size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		h.log.FromContext(ctx).Warn("video stream interrupted", "job_id", job.ID, "error", err.Error())
	}
	return nil
}

// DeleteJob removes a job and its stored video.
func (h *Handler) DeleteJob(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	job, err := h.repo.Get(ctx, chi.URLParam(r, "jobId"))
	if err != nil {
		return err
	}
	if job.Status == models.JobRunning {
		return errors.New(errors.CodeConflict, "job is running").WithField("id", job.ID)
	}

	if job.VideoObjectKey != "" {
		if err := h.sp.DeleteObject(ctx, job.VideoObjectKey); err != nil {
			return errors.WrapWithCode(err, errors.CodeUnavailable, "api.jobs.delete", "storage delete failed")
		}
	}
	if err := h.repo.Delete(ctx, job.ID); err != nil {
		return err
	}

	w.WriteHeader(http.StatusNoContent)
	return nil
}
