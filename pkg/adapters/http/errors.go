package http

import (
	"errors"
	"net/http"

	"github.com/aretw0/spectrum/pkg/domain"
	"github.com/aretw0/spectrum/pkg/pipeline"
	"github.com/aretw0/spectrum/pkg/preferences"
)

// StatusFor maps domain errors onto HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrPresetNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidColor),
		errors.Is(err, domain.ErrTooFewColors),
		errors.Is(err, domain.ErrEmptyDirection),
		errors.Is(err, domain.ErrIndexOutOfRange),
		errors.Is(err, domain.ErrUnknownMutation),
		errors.Is(err, pipeline.ErrInputTooLarge),
		errors.Is(err, pipeline.ErrInvalidUTF8),
		errors.Is(err, preferences.ErrUnsupportedLanguage),
		errors.Is(err, preferences.ErrUnsupportedTheme):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrDisposed):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
	}
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}
