package ai_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/nyashahama/shopping-agent-backend/internal/ai"
)

// ─── STUBS ────────────────────────────────────────────────────────────────────

type stubClient struct {
	resp      ai.Response
	text      string
	err       error
	calls     int
	textCalls int
}

func (s *stubClient) GenerateStructured(_ context.Context, _ string, _ ai.Operation, _ int) (ai.Response, error) {
	s.calls++
	return s.resp, s.err
}

func (s *stubClient) GenerateText(_ context.Context, _ string, _ int) (string, error) {
	s.textCalls++
	return s.text, s.err
}

// discardLogger returns a *slog.Logger that silently drops all log output.
// fallback.go calls f.logger.Warn(), so a nil logger would panic.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var testOp = ai.Operation{
	Name:        "rank_products",
	Description: "test operation",
	Params: []ai.Param{
		{Name: "category", Type: ai.TypeString, Required: true},
	},
}

// ─── FallbackClient ───────────────────────────────────────────────────────────

func TestFallbackClient_PrimarySucceeds_SecondaryNotCalled(t *testing.T) {
	primary := &stubClient{resp: ai.Response{Call: &ai.Call{
		Name:      "rank_products",
		Arguments: json.RawMessage(`{"category":"Books"}`),
	}}}
	secondary := &stubClient{resp: ai.Response{Text: "secondary"}}

	client := ai.NewFallbackClient(primary, secondary, discardLogger())

	resp, err := client.GenerateStructured(context.Background(), "prompt", testOp, 200)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Call == nil || resp.Call.Name != "rank_products" {
		t.Errorf("expected primary call, got %+v", resp)
	}
	if secondary.calls != 0 {
		t.Errorf("secondary should not be called, got %d calls", secondary.calls)
	}
	if primary.calls != 1 {
		t.Errorf("primary should be called once, got %d calls", primary.calls)
	}
}

func TestFallbackClient_PrimaryDeclines_IsNotAFailure(t *testing.T) {
	primary := &stubClient{resp: ai.Response{Text: "I would rather chat"}}
	secondary := &stubClient{resp: ai.Response{Call: &ai.Call{Name: "rank_products"}}}

	client := ai.NewFallbackClient(primary, secondary, discardLogger())

	resp, err := client.GenerateStructured(context.Background(), "prompt", testOp, 200)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text != "I would rather chat" || resp.Call != nil {
		t.Errorf("expected primary text response, got %+v", resp)
	}
	if secondary.calls != 0 {
		t.Errorf("secondary should not be called, got %d calls", secondary.calls)
	}
}

func TestFallbackClient_PrimaryFails_SecondaryUsed(t *testing.T) {
	primary := &stubClient{err: errors.New("anthropic timeout")}
	secondary := &stubClient{text: "secondary text"}

	client := ai.NewFallbackClient(primary, secondary, discardLogger())

	text, err := client.GenerateText(context.Background(), "prompt", 200)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "secondary text" {
		t.Errorf("expected secondary result, got: %q", text)
	}
	if primary.textCalls != 1 || secondary.textCalls != 1 {
		t.Errorf("expected one call each, got primary=%d secondary=%d", primary.textCalls, secondary.textCalls)
	}
}

func TestFallbackClient_BothFail_ReturnsError(t *testing.T) {
	primary := &stubClient{err: errors.New("primary error")}
	secondary := &stubClient{err: errors.New("secondary error")}

	client := ai.NewFallbackClient(primary, secondary, discardLogger())

	if _, err := client.GenerateStructured(context.Background(), "p", testOp, 200); err == nil {
		t.Fatal("expected error when both clients fail")
	}
}

func TestFallbackClient_NilPrimary_UsesSecondaryDirectly(t *testing.T) {
	secondary := &stubClient{text: "only secondary"}

	client := ai.NewFallbackClient(nil, secondary, discardLogger())

	text, err := client.GenerateText(context.Background(), "p", 200)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "only secondary" {
		t.Errorf("expected secondary result, got: %q", text)
	}
}

func TestFallbackClient_NilSecondary_PrimaryErrorBubbles(t *testing.T) {
	primaryErr := errors.New("primary blew up")
	primary := &stubClient{err: primaryErr}

	client := ai.NewFallbackClient(primary, nil, discardLogger())

	_, err := client.GenerateStructured(context.Background(), "p", testOp, 200)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, primaryErr) {
		t.Errorf("expected to find primaryErr in chain, got: %v", err)
	}
}

func TestFallbackClient_BothNil_ReturnsErrNoProvider(t *testing.T) {
	client := ai.NewFallbackClient(nil, nil, discardLogger())

	if _, err := client.GenerateStructured(context.Background(), "p", testOp, 200); !errors.Is(err, ai.ErrNoProvider) {
		t.Errorf("GenerateStructured: expected ErrNoProvider, got %v", err)
	}
	if _, err := client.GenerateText(context.Background(), "p", 200); !errors.Is(err, ai.ErrNoProvider) {
		t.Errorf("GenerateText: expected ErrNoProvider, got %v", err)
	}
}

// ─── Chain ────────────────────────────────────────────────────────────────────

func TestChain_Empty_ReturnsErrNoProvider(t *testing.T) {
	_, err := ai.Chain(discardLogger())
	if !errors.Is(err, ai.ErrNoProvider) {
		t.Errorf("expected ErrNoProvider, got %v", err)
	}
}

func TestChain_Single_ReturnsClientUnwrapped(t *testing.T) {
	only := &stubClient{}
	got, err := ai.Chain(discardLogger(), only)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != ai.Client(only) {
		t.Errorf("expected the single client back, got %T", got)
	}
}

func TestChain_FallsThroughInOrder(t *testing.T) {
	first := &stubClient{err: errors.New("down")}
	second := &stubClient{err: errors.New("also down")}
	third := &stubClient{text: "third"}

	client, err := ai.Chain(discardLogger(), first, second, third)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	text, err := client.GenerateText(context.Background(), "p", 200)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "third" {
		t.Errorf("got %q, want third", text)
	}
	if first.textCalls != 1 || second.textCalls != 1 || third.textCalls != 1 {
		t.Errorf("calls: %d %d %d", first.textCalls, second.textCalls, third.textCalls)
	}
}
