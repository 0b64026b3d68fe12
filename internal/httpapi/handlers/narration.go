package handlers

import (
	stderrors "errors"
	"net/http"
	"strconv"

	"reelcast/internal/httpkit"
	"reelcast/internal/narration"
	"reelcast/internal/pkg/errors"
)

// PostNarration proxies text to the narration provider and returns mp3.
func (h *Handler) PostNarration(w http.ResponseWriter, r *http.Request) error {
	var req textRequest
	if err := httpkit.DecodeJSON(r, &req, h.maxBody); err != nil {
		return errors.WrapWithCode(err, errors.CodeValidation, "api.narration", "invalid json body")
	}
	if err := narration.ValidateText(req.Text); err != nil {
		return err
	}
	if h.narrator == nil {
		return errors.Unavailable("narration")
	}

	audio, err := h.narrator.Synthesize(r.Context(), req.Text, r.Header.Get(CredentialHeader))
	switch {
	case stderrors.Is(err, narration.ErrMissingCredential):
		return errors.New(errors.CodeUnauthorized, "missing narration api key")
	case err != nil:
		return errors.WrapWithCode(err, errors.CodeUnavailable, "api.narration", "narration failed")
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("Content-Length", strconv.Itoa(len(audio)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(audio)
	return nil
}
