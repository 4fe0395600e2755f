package ai

import (
	"context"
	"fmt"
	"log/slog"
)

// fallbackClient wraps two Client implementations. It calls the primary first;
// if that returns an error it logs the failure and tries the secondary.
// A declined tool call is a successful response and never triggers fallback.
type fallbackClient struct {
	primary   Client
	secondary Client
	logger    *slog.Logger
}

// NewFallbackClient returns a Client that calls primary and, on failure,
// falls back to secondary. Either argument may be nil. A nil primary goes
// straight to secondary; with a nil secondary a primary failure is returned
// wrapped. When both are nil every call returns ErrNoProvider.
func NewFallbackClient(primary, secondary Client, logger *slog.Logger) Client {
	return &fallbackClient{
		primary:   primary,
		secondary: secondary,
		logger:    logger,
	}
}

// Chain folds clients into nested fallbacks in priority order. It returns
// ErrNoProvider when clients is empty and the sole client unwrapped when
// there is just one.
func Chain(logger *slog.Logger, clients ...Client) (Client, error) {
	switch len(clients) {
	case 0:
		return nil, ErrNoProvider
	case 1:
		return clients[0], nil
	}
	rest, err := Chain(logger, clients[1:]...)
	if err != nil {
		return nil, err
	}
	return NewFallbackClient(clients[0], rest, logger), nil
}

// GenerateStructured tries the primary Client. If it fails and a secondary is
// configured, it logs the primary error and tries the secondary.
func (f *fallbackClient) GenerateStructured(ctx context.Context, prompt string, op Operation, maxTokens int) (Response, error) {
	if f.primary != nil {
		resp, err := f.primary.GenerateStructured(ctx, prompt, op, maxTokens)
		if err == nil {
			return resp, nil
		}
		f.logger.Warn("ai: primary client failed, trying secondary",
			"error", err,
			"operation", op.Name,
		)
		if f.secondary == nil {
			return Response{}, fmt.Errorf("ai: primary failed and no secondary configured: %w", err)
		}
	}

	if f.secondary == nil {
		return Response{}, ErrNoProvider
	}
	return f.secondary.GenerateStructured(ctx, prompt, op, maxTokens)
}

// GenerateText follows the same primary → secondary policy.
func (f *fallbackClient) GenerateText(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if f.primary != nil {
		text, err := f.primary.GenerateText(ctx, prompt, maxTokens)
		if err == nil {
			return text, nil
		}
		f.logger.Warn("ai: primary client failed, trying secondary", "error", err)
		if f.secondary == nil {
			return "", fmt.Errorf("ai: primary failed and no secondary configured: %w", err)
		}
	}

	if f.secondary == nil {
		return "", ErrNoProvider
	}
	return f.secondary.GenerateText(ctx, prompt, maxTokens)
}
