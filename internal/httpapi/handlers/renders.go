package handlers

import (
	"net/http"
	"strconv"

	"reelcast/internal/httpkit"
	"reelcast/internal/pkg/errors"
	"reelcast/internal/render"
)

// PostRender renders synchronously and answers with the mp4 itself.
func (h *Handler) PostRender(w http.ResponseWriter, r *http.Request) error {
	if h.renderer == nil {
		return errors.Unavailable("renderer")
	}

	var req textRequest
	if err := httpkit.DecodeJSON(r, &req, h.maxBody); err != nil {
		return errors.WrapWithCode(err, errors.CodeValidation, "api.render", "invalid json body")
	}

	res, err := h.renderer.Render(r.Context(), render.Request{
		Text:       req.Text,
		Credential: r.Header.Get(CredentialHeader),
	})
	if err != nil {
		return err
	}

	hdr := w.Header()
	hdr.Set("Content-Type", "video/mp4")
	hdr.Set("Content-Length", strconv.Itoa(len(res.Video)))
	hdr.Set("X-Job-ID", res.JobID)
	hdr.Set("X-Has-Audio", strconv.FormatBool(res.HasAudio))
	hdr.Set("X-Estimated-Seconds", strconv.Itoa(res.EstimatedSeconds))
	hdr.Set("X-Duration-Seconds", strconv.FormatFloat(res.DurationSeconds, 'f', 2, 64))
	if res.NarrationSkipped != "" {
		hdr.Set("X-Narration-Skipped", res.NarrationSkipped)
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Video)
	return nil
}
