// Package llmtest provides a fake OpenAI-compatible chat completions server
// for tests. Nothing in it reaches the network.
package llmtest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	openai "github.com/sashabaranov/go-openai"
)

// Reply builds the response for one chat completion request.
// A status other than 200 makes body an error message.
type Reply func(req openai.ChatCompletionRequest) (status int, body any)

// Server is a recording fake of /v1/chat/completions.
type Server struct {
	srv    *httptest.Server
	reply  Reply
	apiKey string

	mu       sync.Mutex
	requests []openai.ChatCompletionRequest
	auth     []string
}

// Option configures a Server.
type Option func(*Server)

// WithAPIKey makes the server answer 401 unless the bearer token matches key.
func WithAPIKey(key string) Option {
	return func(s *Server) { s.apiKey = key }
}

// NewServer starts a fake server answering with reply. It is closed when
// the test ends.
func NewServer(t testing.TB, reply Reply, opts ...Option) *Server {
	t.Helper()
	s := &Server{reply: reply}
	for _, o := range opts {
		o(s)
	}
	s.srv = httptest.NewServer(s.Handler())
	t.Cleanup(s.srv.Close)
	return s
}

// URL returns the base URL clients should use, including the /v1 prefix.
func (s *Server) URL() string { return s.srv.URL + "/v1" }

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/models", s.handleListModels)
		r.Post("/chat/completions", s.handleChatCompletions)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "unknown endpoint: "+r.URL.Path)
	})
	return r
}

// Requests returns the decoded chat completion requests seen so far.
func (s *Server) Requests() []openai.ChatCompletionRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]openai.ChatCompletionRequest(nil), s.requests...)
}

// Authorizations returns the Authorization headers seen so far.
func (s *Server) Authorizations() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.auth...)
}

func (s *Server) handleListModels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, openai.ModelsList{
		Models: []openai.Model{{ID: openai.GPT3Dot5Turbo, Object: "model", OwnedBy: "llmtest"}},
	})
}

func (s *Server) handleChatCompletions(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.auth = append(s.auth, r.Header.Get("Authorization"))
	s.mu.Unlock()

	if s.apiKey != "" && strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ") != s.apiKey {
		writeError(w, http.StatusUnauthorized, "Incorrect API key provided")
		return
	}

	var req openai.ChatCompletionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Model == "" {
		writeError(w, http.StatusBadRequest, "model is required")
		return
	}

	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.mu.Unlock()

	status, body := s.reply(req)
	if status != http.StatusOK {
		msg, _ := body.(string)
		writeError(w, status, msg)
		return
	}
	writeJSON(w, status, body)
}

// ─── Replies ────────────────────────────────────────────────────────────────

// Completion wraps choices in a chat.completion envelope for req.
func Completion(req openai.ChatCompletionRequest, choices ...openai.ChatCompletionChoice) openai.ChatCompletionResponse {
	if choices == nil {
		choices = []openai.ChatCompletionChoice{}
	}
	return openai.ChatCompletionResponse{
		ID:      "chatcmpl-" + uuid.New().String()[:8],
		Object:  "chat.completion",
		Created: time.Now().Unix(),
		Model:   req.Model,
		Choices: choices,
		Usage: openai.Usage{
			PromptTokens:     12,
			CompletionTokens: 8,
			TotalTokens:      20,
		},
	}
}

// FunctionCallReply answers with a function call carrying the raw args string.
func FunctionCallReply(name, args string) Reply {
	return func(req openai.ChatCompletionRequest) (int, any) {
		return http.StatusOK, Completion(req, openai.ChatCompletionChoice{
			Message: openai.ChatCompletionMessage{
				Role:         openai.ChatMessageRoleAssistant,
				FunctionCall: &openai.FunctionCall{Name: name, Arguments: args},
			},
			FinishReason: openai.FinishReasonFunctionCall,
		})
	}
}

// TextReply answers with plain assistant text and no function call.
func TextReply(text string) Reply {
	return func(req openai.ChatCompletionRequest) (int, any) {
		return http.StatusOK, Completion(req, openai.ChatCompletionChoice{
			Message: openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleAssistant,
				Content: text,
			},
			FinishReason: openai.FinishReasonStop,
		})
	}
}

// NoChoicesReply answers with an empty choices list.
func NoChoicesReply() Reply {
	return func(req openai.ChatCompletionRequest) (int, any) {
		return http.StatusOK, Completion(req)
	}
}

// ErrorReply answers with an OpenAI-style error body.
func ErrorReply(status int, msg string) Reply {
	return func(openai.ChatCompletionRequest) (int, any) {
		return status, msg
	}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    "error",
		},
	})
}
