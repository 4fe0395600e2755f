// Package ai defines the narrow capability the recommendation pipeline needs
// from a language model, and provides Anthropic, OpenAI-compatible, and
// Volcengine Ark implementations plus a primary/secondary fallback wrapper.
package ai

import (
	"context"
	"encoding/json"
	"errors"
)

// ErrNoProvider is returned by Chain when no provider is configured.
var ErrNoProvider = errors.New("ai: no provider configured")

// Call is a structured function call returned by the model.
type Call struct {
	// Name is the operation the model chose to call.
	Name string

	// Arguments is the raw JSON object of named arguments, exactly as the
	// vendor returned it. Parsing (and tolerance of malformed values) is the
	// caller's job.
	Arguments json.RawMessage
}

// Response is the outcome of GenerateStructured: either Call is set, or the
// model answered in prose and Text holds it. Text may be empty.
type Response struct {
	Call *Call
	Text string
}

// Client is the interface the agent package uses to talk to a model.
// The concrete implementations live in anthropic.go, openai.go, and ark.go.
// Tests inject a stub that returns canned responses.
type Client interface {
	// GenerateStructured sends prompt together with a declaration of exactly
	// one callable operation. The model may call it or decline and answer in
	// text; both are successful responses. A non-nil error means the request
	// itself failed.
	//
	// Implementations must be safe to call concurrently.
	GenerateStructured(ctx context.Context, prompt string, op Operation, maxTokens int) (Response, error)

	// GenerateText sends prompt and returns the first textual answer, which
	// may be empty.
	GenerateText(ctx context.Context, prompt string, maxTokens int) (string, error)
}
