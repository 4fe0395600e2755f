package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// anthropicClient is the concrete Client backed by the Anthropic Messages API.
type anthropicClient struct {
	client anthropic.Client
	model  string
}

// NewAnthropicClient returns a Client that calls the Anthropic API.
//   - apiKey: your ANTHROPIC_API_KEY
//   - model:  e.g. "claude-haiku-4-5"
//
// Extra options are appended after the defaults, so tests can point the client
// at an httptest server with option.WithBaseURL.
func NewAnthropicClient(apiKey, model string, opts ...option.RequestOption) Client {
	base := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithRequestTimeout(90 * time.Second),
		// Failures surface to the caller; the pipeline never retries.
		option.WithMaxRetries(0),
	}
	return &anthropicClient{
		client: anthropic.NewClient(append(base, opts...)...),
		model:  model,
	}
}

// GenerateStructured declares op as the only tool and returns the first
// tool_use block naming it, or the first text block when the model declined.
func (c *anthropicClient) GenerateStructured(ctx context.Context, prompt string, op Operation, maxTokens int) (Response, error) {
	schema, err := op.schemaMap()
	if err != nil {
		return Response{}, err
	}

	tool := anthropic.ToolParam{
		Name:        op.Name,
		Description: anthropic.String(op.Description),
		InputSchema: anthropic.ToolInputSchemaParam{
			Properties: schema["properties"],
			Required:   op.Required(),
		},
	}

	msg, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: int64(maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
		Tools: []anthropic.ToolUnionParam{{OfTool: &tool}},
	})
	if err != nil {
		return Response{}, fmt.Errorf("ai: anthropic: %w", err)
	}

	var text string
	for _, block := range msg.Content {
		switch block.Type {
		case "tool_use":
			if block.Name == op.Name {
				return Response{Call: &Call{Name: block.Name, Arguments: block.Input}}, nil
			}
		case "text":
			if text == "" {
				text = block.Text
			}
		}
	}
	return Response{Text: text}, nil
}

// GenerateText returns the text of the first text block, or "" when the
// response carried none.
func (c *anthropicClient) GenerateText(ctx context.Context, prompt string, maxTokens int) (string, error) {
	msg, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: int64(maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("ai: anthropic: %w", err)
	}

	for _, block := range msg.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", nil
}
