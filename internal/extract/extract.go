// Package extract asks a chat completion model to call the options function
// for a question and decodes the arguments it returns.
package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/tutu-network/aioncli/internal/config"
	"github.com/tutu-network/aioncli/internal/domain"
)

// ChatClient is the subset of *openai.Client the extractor needs.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// NewClient builds a go-openai client from cfg.
func NewClient(cfg config.OpenAIConfig) (*openai.Client, error) {
	if cfg.APIKey == "" {
		return nil, domain.ErrMissingAPIKey
	}

	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	// Zero means no timeout.
	oc.HTTPClient = &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second}

	return openai.NewClientWithConfig(oc), nil
}

// Extractor sends questions with the options function attached.
type Extractor struct {
	client ChatClient
	model  string
	log    *slog.Logger
}

// New returns an Extractor that talks to client using model.
func New(client ChatClient, model string) *Extractor {
	return &Extractor{
		client: client,
		model:  model,
		log:    slog.Default().With("component", "extract"),
	}
}

// Model returns the model name requests are sent to.
func (e *Extractor) Model() string { return e.model }

// BuildRequest returns the chat completion request for question.
func (e *Extractor) BuildRequest(question string) openai.ChatCompletionRequest {
	return openai.ChatCompletionRequest{
		Model: e.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: question},
		},
		Functions:    Functions(),
		FunctionCall: FunctionCallAuto,
	}
}

// Complete performs one completion call for question. It does not retry.
func (e *Extractor) Complete(ctx context.Context, question string) (openai.ChatCompletionResponse, error) {
	start := time.Now()
	e.log.Debug("completion request", "model", e.model, "question_len", len(question))

	resp, err := e.client.CreateChatCompletion(ctx, e.BuildRequest(question))
	if err != nil {
		return resp, fmt.Errorf("chat completion: %w", err)
	}

	e.log.Debug("completion response",
		"id", resp.ID,
		"choices", len(resp.Choices),
		"total_tokens", resp.Usage.TotalTokens,
		"elapsed", time.Since(start),
	)
	return resp, nil
}

// Extract is Complete followed by ParseArguments. Errors from the call are
// returned as is; parse failures satisfy IsParseError.
func (e *Extractor) Extract(ctx context.Context, question string) (map[string]any, error) {
	resp, err := e.Complete(ctx, question)
	if err != nil {
		return nil, err
	}
	return ParseArguments(resp)
}

// ParseArguments decodes the function call arguments of the first choice.
// Errors wrap domain.ErrNoChoices, domain.ErrNoFunctionCall or
// domain.ErrMalformedArguments.
func ParseArguments(resp openai.ChatCompletionResponse) (map[string]any, error) {
	if len(resp.Choices) == 0 {
		return nil, domain.ErrNoChoices
	}

	msg := resp.Choices[0].Message
	if msg.FunctionCall == nil {
		if msg.Content != "" {
			return nil, fmt.Errorf("%w: model replied %q", domain.ErrNoFunctionCall, msg.Content)
		}
		return nil, domain.ErrNoFunctionCall
	}

	var args map[string]any
	dec := json.NewDecoder(bytes.NewReader([]byte(msg.FunctionCall.Arguments)))
	dec.UseNumber()
	if err := dec.Decode(&args); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedArguments, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing data after object", domain.ErrMalformedArguments)
	}
	// "null" decodes without error.
	if args == nil {
		return nil, fmt.Errorf("%w: got null", domain.ErrMalformedArguments)
	}
	return args, nil
}

// IsParseError reports whether err came from ParseArguments.
func IsParseError(err error) bool {
	return errors.Is(err, domain.ErrNoChoices) ||
		errors.Is(err, domain.ErrNoFunctionCall) ||
		errors.Is(err, domain.ErrMalformedArguments)
}

// FormatArguments renders args as compact JSON with sorted keys.
func FormatArguments(args map[string]any) string {
	data, err := json.Marshal(args)
	if err != nil {
		return fmt.Sprint(args)
	}
	return string(data)
}
