package iscode

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"
)

type Handler struct {
	Service *Service
}

type codesResponse struct {
	Codes []Code `json:"codes"`
}

func (h *Handler) Codes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, codesResponse{Codes: h.Service.Knowledge.Codes})
}

func (h *Handler) Lookup(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid request payload"})
		return
	}
	res, err := h.Service.Lookup(r.Context(), req)
	if err != nil {
		if errors.Is(err, ErrInvalidRequest) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
			return
		}
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("is-code lookup failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "Lookup failed"})
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
