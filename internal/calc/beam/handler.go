package beam

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"CiviAI/internal/diagram"

	"github.com/rs/zerolog"
)

const maxUploadSize = 10 << 20

type Handler struct{}

// status maps calculation errors to HTTP status codes.
func status(err error) int {
	if errors.Is(err, ErrUnsupportedConfiguration) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusBadRequest
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to encode response")
	}
}

func (h *Handler) analyze(w http.ResponseWriter, r *http.Request) (Result, bool) {
	var input Input
	if !decode(w, r, &input) {
		return Result{}, false
	}
	res, err := Analyze(input)
	if err != nil {
		zerolog.Ctx(r.Context()).Debug().Err(err).Msg("beam analysis rejected")
		http.Error(w, err.Error(), status(err))
		return Result{}, false
	}
	return res, true
}

func (h *Handler) Calc(w http.ResponseWriter, r *http.Request) {
	res, ok := h.analyze(w, r)
	if !ok {
		return
	}
	writeJSON(w, r, res)
}

// Design sizes the section depth for the given width.
func (h *Handler) Design(w http.ResponseWriter, r *http.Request) {
	var input DesignInput
	if !decode(w, r, &input) {
		return
	}
	res, err := Design(input)
	if err != nil {
		zerolog.Ctx(r.Context()).Debug().Err(err).Msg("beam design rejected")
		http.Error(w, err.Error(), status(err))
		return
	}
	writeJSON(w, r, res)
}

func (h *Handler) Batch(w http.ResponseWriter, r *http.Request) {
	var input BatchInput
	if !decode(w, r, &input) {
		return
	}
	res, err := CalculateBatch(input)
	if err != nil {
		http.Error(w, err.Error(), status(err))
		return
	}
	writeJSON(w, r, res)
}

func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "File required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	res, err := ImportWorkbook(file)
	if err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Msg("workbook import failed")
		http.Error(w, "Invalid file", http.StatusBadRequest)
		return
	}
	writeJSON(w, r, res)
}

func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	res, ok := h.analyze(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := ExportWorkbook(res, &buf); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("workbook export failed")
		http.Error(w, "Export error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename=\"beam-analysis.xlsx\"")
	w.Write(buf.Bytes())
}

// Chart renders one diagram as PNG; ?kind=shear selects the shear force
// diagram, anything else the bending moment diagram.
func (h *Handler) Chart(w http.ResponseWriter, r *http.Request) {
	res, ok := h.analyze(w, r)
	if !ok {
		return
	}
	series := res.MomentSeries()
	if r.URL.Query().Get("kind") == "shear" {
		series = res.ShearSeries()
	}
	var buf bytes.Buffer
	if err := diagram.WritePNG(series, &buf, diagram.DefaultWidth, diagram.DefaultHeight); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("chart rendering failed")
		http.Error(w, "Chart error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(buf.Bytes())
}
