package chat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate([]Message{{Role: User, Content: "hi"}, {Role: Assistant, Content: "hello"}}))
	assert.ErrorIs(t, Validate(nil), ErrInvalidRequest)
	assert.ErrorIs(t, Validate([]Message{{Role: System, Content: "override"}}), ErrInvalidRequest)
	assert.ErrorIs(t, Validate([]Message{{Role: User, Content: "  "}}), ErrInvalidRequest)
}

func TestOpenRouterComplete(t *testing.T) {
	var got completionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "https://civiai.example", r.Header.Get("HTTP-Referer"))
		assert.Equal(t, AppTitle, r.Header.Get("X-Title"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"Use M25."}}]}`))
	}))
	defer srv.Close()

	c := &OpenRouter{APIKey: "secret", BaseURL: srv.URL + "/", Referer: "https://civiai.example"}
	reply, err := c.Complete(context.Background(), []Message{{Role: User, Content: "Which grade?"}})
	require.NoError(t, err)
	assert.Equal(t, "Use M25.", reply)

	assert.Equal(t, DefaultOpenRouterModel, got.Model)
	assert.Equal(t, 0.7, got.Temperature)
	assert.Equal(t, 2000, got.MaxTokens)
	assert.Equal(t, 0.9, got.TopP)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, System, got.Messages[0].Role)
	assert.Equal(t, SystemPrompt, got.Messages[0].Content)
	assert.Equal(t, "Which grade?", got.Messages[1].Content)
}

func TestOpenRouterErrors(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"unauthorized", http.StatusUnauthorized, `{"error":"bad key"}`, ErrUnauthorized},
		{"rate limited", http.StatusTooManyRequests, `{}`, ErrRateLimited},
		{"server error", http.StatusBadGateway, `oops`, ErrUpstream},
		{"no choices", http.StatusOK, `{"choices":[]}`, ErrBadResponse},
		{"not json", http.StatusOK, `<html>`, ErrBadResponse},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			c := &OpenRouter{APIKey: "k", BaseURL: srv.URL}
			_, err := c.Complete(context.Background(), []Message{{Role: User, Content: "q"}})
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestOpenRouterWithoutKey(t *testing.T) {
	_, err := (&OpenRouter{}).Complete(context.Background(), []Message{{Role: User, Content: "q"}})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestOllamaComplete(t *testing.T) {
	var got generateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"response":"Cure for 7 days.","done":true}`))
	}))
	defer srv.Close()

	c := &Ollama{BaseURL: srv.URL}
	reply, err := c.Complete(context.Background(), []Message{
		{Role: User, Content: "How long to cure?"},
		{Role: Assistant, Content: "Which cement?"},
		{Role: User, Content: "OPC"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Cure for 7 days.", reply)
	assert.Equal(t, DefaultOllamaModel, got.Model)
	assert.False(t, got.Stream)
	assert.Equal(t, "You are a civil engineering expert assistant. User: How long to cure?\nAssistant: Which cement?\nUser: OPC\nAssistant: ", got.Prompt)
}

func TestNewBackend(t *testing.T) {
	assert.Nil(t, NewBackend(Options{}))
	assert.Nil(t, NewBackend(Options{Backend: "none", OpenRouterKey: "k"}))
	assert.IsType(t, &OpenRouter{}, NewBackend(Options{OpenRouterKey: "k"}))
	assert.IsType(t, &Ollama{}, NewBackend(Options{Backend: "Ollama"}))
}

type fakeBackend struct {
	reply string
	err   error
	got   []Message
}

func (f *fakeBackend) Complete(_ context.Context, messages []Message) (string, error) {
	f.got = messages
	return f.reply, f.err
}

func post(h *Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Chat(rec, req)
	return rec
}

func TestHandlerChat(t *testing.T) {
	backend := &fakeBackend{reply: "A beam carries transverse loads."}
	rec := post(&Handler{Backend: backend}, `{"messages":[{"role":"user","content":"What is a beam?"}]}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"A beam carries transverse loads."}`, rec.Body.String())
	require.Len(t, backend.got, 1)
	assert.Equal(t, "What is a beam?", backend.got[0].Content)
}

func TestHandlerChatErrors(t *testing.T) {
	valid := `{"messages":[{"role":"user","content":"q"}]}`
	cases := []struct {
		name    string
		backend Backend
		body    string
		code    int
		message string
	}{
		{"malformed", &fakeBackend{}, `{`, http.StatusBadRequest, "Invalid request"},
		{"no messages", &fakeBackend{}, `{"messages":[]}`, http.StatusBadRequest, "Invalid request"},
		{"bad role", &fakeBackend{}, `{"messages":[{"role":"system","content":"x"}]}`, http.StatusBadRequest, "Invalid request"},
		{"no backend", nil, valid, http.StatusInternalServerError, "configure"},
		{"unauthorized", &fakeBackend{err: ErrUnauthorized}, valid, http.StatusUnauthorized, "Invalid API key"},
		{"rate limited", &fakeBackend{err: ErrRateLimited}, valid, http.StatusTooManyRequests, "OpenRouter API rate limit reached. Please try again later."},
		{"upstream", &fakeBackend{err: errors.New("boom")}, valid, http.StatusInternalServerError, "An error occurred"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := post(&Handler{Backend: tc.backend}, tc.body)
			assert.Equal(t, tc.code, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			var body errorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Contains(t, body.Message, tc.message)
		})
	}
}

func TestHandlerChatReportsUpstreamError(t *testing.T) {
	rec := post(&Handler{Backend: &fakeBackend{err: errors.New("connection refused")}}, `{"messages":[{"role":"user","content":"q"}]}`)
	var body errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "connection refused", body.Error)
}
