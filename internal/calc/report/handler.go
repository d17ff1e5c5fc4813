package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"time"

	"CiviAI/internal/calc/beam"

	"github.com/rs/zerolog"
)

type Handler struct{}

func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	var input Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	var buf bytes.Buffer
	if err := Generate(input, time.Now(), &buf); err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput), errors.Is(err, beam.ErrInvalidInput):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, beam.ErrUnsupportedConfiguration):
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		default:
			zerolog.Ctx(r.Context()).Error().Err(err).Msg("report generation failed")
			http.Error(w, "Report generation error", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": Filename(input.ProjectTitle),
	}))
	w.Write(buf.Bytes())
}
