package chat

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"
)

type Request struct {
	Messages []Message `json:"messages"`
}

type Response struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// Handler serves POST /api/chat. A nil Backend answers every request with
// a configuration error.
type Handler struct {
	Backend Backend
}

func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	log := zerolog.Ctx(r.Context())

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSON(w, http.StatusBadRequest, errorResponse{Message: "Invalid request: messages array is required"})
		return
	}
	if err := Validate(req.Messages); err != nil {
		WriteJSON(w, http.StatusBadRequest, errorResponse{Message: "Invalid request: messages array is required", Error: err.Error()})
		return
	}
	if h.Backend == nil {
		WriteJSON(w, http.StatusInternalServerError, errorResponse{Message: "Please configure a chat backend (OPENROUTER_API_KEY or CHAT_BACKEND=ollama) in the environment variables."})
		return
	}

	reply, err := h.Backend.Complete(r.Context(), req.Messages)
	if err != nil {
		log.Error().Err(err).Int("messages", len(req.Messages)).Msg("chat completion failed")
		status, body := errorStatus(err)
		WriteJSON(w, status, body)
		return
	}
	WriteJSON(w, http.StatusOK, Response{Message: reply})
}

func errorStatus(err error) (int, errorResponse) {
	switch {
	case errors.Is(err, ErrNotConfigured):
		return http.StatusInternalServerError, errorResponse{Message: "Please configure your OpenRouter API key in the environment variables."}
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, errorResponse{Message: "Invalid API key. Please check your OpenRouter API key configuration."}
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests, errorResponse{Message: "OpenRouter API rate limit reached. Please try again later."}
	default:
		return http.StatusInternalServerError, errorResponse{
			Message: "An error occurred while processing your request. Please try again.",
			Error:   err.Error(),
		}
	}
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
