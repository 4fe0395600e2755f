package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// arkClient is the concrete Client backed by a Volcengine Ark chat model
// through eino. Any eino ToolCallingChatModel works; NewArkClient wires Ark.
type arkClient struct {
	chat    model.ToolCallingChatModel
	timeout time.Duration // per call; zero means the caller's deadline only
}

// NewArkClient returns a Client that calls the Ark API.
//   - apiKey:  your ARK_API_KEY
//   - model:   the Ark endpoint/model ID
//   - timeout: per-call limit, 0 for none
func NewArkClient(ctx context.Context, apiKey, modelID string, timeout time.Duration) (Client, error) {
	chat, err := ark.NewChatModel(ctx, &ark.ChatModelConfig{
		APIKey: apiKey,
		Model:  modelID,
	})
	if err != nil {
		return nil, fmt.Errorf("ai: ark: new chat model: %w", err)
	}
	return &arkClient{chat: chat, timeout: timeout}, nil
}

// GenerateStructured binds op as the model's only tool for this call.
func (c *arkClient) GenerateStructured(ctx context.Context, prompt string, op Operation, maxTokens int) (Response, error) {
	bound, err := c.chat.WithTools([]*schema.ToolInfo{toolInfo(op)})
	if err != nil {
		return Response{}, fmt.Errorf("ai: ark: bind tool: %w", err)
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	msg, err := bound.Generate(ctx,
		[]*schema.Message{schema.UserMessage(prompt)},
		model.WithMaxTokens(maxTokens),
	)
	if err != nil {
		return Response{}, fmt.Errorf("ai: ark: %w", err)
	}
	if msg == nil {
		return Response{}, nil
	}

	for _, tc := range msg.ToolCalls {
		if strings.EqualFold(tc.Function.Name, op.Name) {
			return Response{Call: &Call{
				Name:      op.Name,
				Arguments: json.RawMessage(strings.TrimSpace(tc.Function.Arguments)),
			}}, nil
		}
	}
	return Response{Text: msg.Content}, nil
}

// GenerateText calls the model without tools.
func (c *arkClient) GenerateText(ctx context.Context, prompt string, maxTokens int) (string, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	msg, err := c.chat.Generate(ctx,
		[]*schema.Message{schema.UserMessage(prompt)},
		model.WithMaxTokens(maxTokens),
	)
	if err != nil {
		return "", fmt.Errorf("ai: ark: %w", err)
	}
	if msg == nil {
		return "", nil
	}
	return msg.Content, nil
}

func (c *arkClient) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.timeout)
}

// toolInfo converts an Operation into eino's tool declaration.
func toolInfo(op Operation) *schema.ToolInfo {
	params := make(map[string]*schema.ParameterInfo, len(op.Params))
	for _, p := range op.Params {
		params[p.Name] = &schema.ParameterInfo{
			Type:     dataType(p.Type),
			Desc:     p.Description,
			Required: p.Required,
		}
	}
	return &schema.ToolInfo{
		Name:        op.Name,
		Desc:        op.Description,
		ParamsOneOf: schema.NewParamsOneOfByParams(params),
	}
}

func dataType(t ParamType) schema.DataType {
	switch t {
	case TypeNumber:
		return schema.Number
	case TypeInteger:
		return schema.Integer
	default:
		return schema.String
	}
}
