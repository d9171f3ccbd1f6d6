package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors are pure — no infrastructure dependency.

var (
	// Configuration errors
	ErrMissingAPIKey   = errors.New("no API key configured — set OPENAI_API_KEY or openai.api_key in config.toml")
	ErrInvalidConfig   = errors.New("invalid configuration")
	ErrUnknownLogLevel = errors.New("unknown log level")

	// Response parsing errors. The promptai command reports these as text
	// instead of failing the invocation.
	ErrNoChoices          = errors.New("response contains no choices")
	ErrNoFunctionCall     = errors.New("response contains no function call")
	ErrMalformedArguments = errors.New("function call arguments are not a JSON object")
)
