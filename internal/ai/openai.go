package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/openai/openai-go/v2/shared"
)

// DeepSeekBaseURL is DeepSeek's OpenAI-compatible endpoint.
const DeepSeekBaseURL = "https://api.deepseek.com/v1"

// openAIClient is the concrete Client for any OpenAI-compatible
// /chat/completions endpoint: OpenAI itself, DeepSeek, or a local llama.cpp
// server.
type openAIClient struct {
	client   openai.Client
	model    string
	provider string // used only in error messages
}

// NewOpenAIClient returns a Client that calls an OpenAI-compatible API.
//   - apiKey:  bearer token (any non-empty value for local servers)
//   - model:   e.g. "gpt-4o-mini"
//   - baseURL: empty for api.openai.com, otherwise the server's /v1 root
func NewOpenAIClient(apiKey, model, baseURL string, opts ...option.RequestOption) Client {
	return newOpenAIClient("openai", apiKey, model, baseURL, opts...)
}

// NewDeepSeekClient returns a Client that calls the DeepSeek API.
//   - apiKey: your DEEPSEEK_API_KEY
//   - model:  e.g. "deepseek-chat"
func NewDeepSeekClient(apiKey, model string, opts ...option.RequestOption) Client {
	return newOpenAIClient("deepseek", apiKey, model, DeepSeekBaseURL, opts...)
}

func newOpenAIClient(provider, apiKey, model, baseURL string, opts ...option.RequestOption) Client {
	base := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithRequestTimeout(90 * time.Second),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		base = append(base, option.WithBaseURL(baseURL))
	}
	return &openAIClient{
		client:   openai.NewClient(append(base, opts...)...),
		model:    model,
		provider: provider,
	}
}

// GenerateStructured declares op as a function tool and returns the first
// tool call naming it, or the message content when the model answered in text.
func (c *openAIClient) GenerateStructured(ctx context.Context, prompt string, op Operation, maxTokens int) (Response, error) {
	schema, err := op.schemaMap()
	if err != nil {
		return Response{}, err
	}

	completion, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: shared.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		MaxTokens: openai.Int(int64(maxTokens)),
		Tools: []openai.ChatCompletionToolUnionParam{
			openai.ChatCompletionFunctionTool(shared.FunctionDefinitionParam{
				Name:        op.Name,
				Description: openai.String(op.Description),
				Parameters:  shared.FunctionParameters(schema),
			}),
		},
	})
	if err != nil {
		return Response{}, fmt.Errorf("ai: %s: %w", c.provider, err)
	}
	if len(completion.Choices) == 0 {
		return Response{}, fmt.Errorf("ai: %s: no choices in response", c.provider)
	}

	msg := completion.Choices[0].Message
	for _, tc := range msg.ToolCalls {
		if tc.Function.Name == op.Name {
			return Response{Call: &Call{
				Name:      tc.Function.Name,
				Arguments: json.RawMessage(tc.Function.Arguments),
			}}, nil
		}
	}
	return Response{Text: msg.Content}, nil
}

// GenerateText returns the content of the first choice.
func (c *openAIClient) GenerateText(ctx context.Context, prompt string, maxTokens int) (string, error) {
	completion, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: shared.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		MaxTokens: openai.Int(int64(maxTokens)),
	})
	if err != nil {
		return "", fmt.Errorf("ai: %s: %w", c.provider, err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("ai: %s: no choices in response", c.provider)
	}
	return completion.Choices[0].Message.Content, nil
}
