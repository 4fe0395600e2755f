package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/nyashahama/shopping-agent-backend/internal/ai"
	"github.com/nyashahama/shopping-agent-backend/internal/shopping"
)

// Justifier asks the model to explain an already-decided intent.
type Justifier struct {
	client    ai.Client
	maxTokens int
}

// NewJustifier returns a Justifier. maxTokens <= 0 selects DefaultMaxTokens.
func NewJustifier(client ai.Client, maxTokens int) *Justifier {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	return &Justifier{client: client, maxTokens: maxTokens}
}

// Justify returns the sanitized explanation. Only transport failures are
// errors; an empty answer becomes shopping.NoJustification.
func (j *Justifier) Justify(ctx context.Context, buyerHistory string, intent shopping.Intent) (string, error) {
	text, err := j.client.GenerateText(ctx, justifyPrompt(buyerHistory, intent), j.maxTokens)
	if err != nil {
		return "", fmt.Errorf("agent: justify: %w", err)
	}
	return Sanitize(text), nil
}

func justifyPrompt(buyerHistory string, intent shopping.Intent) string {
	return fmt.Sprintf(`Based on the user's purchase history: %s Now explain and justify:
1. Why you recommended the '%s' category based on the user's purchase history
2. Why this price range ($%s - $%s) matches their preferences`,
		buyerHistory, intent.Category, intent.Lower, intent.Upper)
}

var emphasis = strings.NewReplacer("**", "", "__", "", "*", " ")

// Sanitize strips emphasis markup and surrounding whitespace. It returns
// shopping.NoJustification when nothing is left.
func Sanitize(text string) string {
	cleaned := strings.TrimSpace(emphasis.Replace(text))
	if cleaned == "" {
		return shopping.NoJustification
	}
	return cleaned
}
