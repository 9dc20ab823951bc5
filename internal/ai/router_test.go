package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/sashabaranov/go-openai"
)

type fakeProvider struct {
	name     string
	gotOpts  Options
	response *Response
}

func (f *fakeProvider) Complete(ctx context.Context, messages []ChatMessage, opts Options) (*Response, error) {
	f.gotOpts = opts
	if f.response != nil {
		return f.response, nil
	}
	return &Response{Content: f.name, Model: opts.Model}, nil
}

func (f *fakeProvider) Stream(ctx context.Context, messages []ChatMessage, opts Options, sink TokenSink) (Usage, error) {
	f.gotOpts = opts
	for _, token := range []string{"a", "b"} {
		if err := sink(token); err != nil {
			return Usage{}, err
		}
	}
	return Usage{InputTokens: 10, OutputTokens: 2}, nil
}

func newTestRouter() (*Router, *fakeProvider, *fakeProvider) {
	oa := &fakeProvider{name: "openai"}
	an := &fakeProvider{name: "anthropic"}
	r := NewRouter(ProviderOpenAI, "gpt-4-turbo-preview")
	r.Register(ProviderOpenAI, oa)
	r.Register(ProviderAnthropic, an)
	return r, oa, an
}

func TestRouterDispatch(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		want     string
	}{
		{"default provider", "", "openai"},
		{"explicit anthropic", "anthropic", "anthropic"},
		{"unknown falls back to openai", "mistral", "openai"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _, _ := newTestRouter()
			resp, err := r.Complete(context.Background(), nil, Options{Provider: tt.provider})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if resp.Content != tt.want {
				t.Errorf("dispatched to %q, want %q", resp.Content, tt.want)
			}
		})
	}
}

func TestRouterFillsDefaults(t *testing.T) {
	r, oa, _ := newTestRouter()

	_, err := r.Complete(context.Background(), nil, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if oa.gotOpts.Model != "gpt-4-turbo-preview" {
		t.Errorf("model = %q", oa.gotOpts.Model)
	}
	if oa.gotOpts.MaxTokens != 2048 {
		t.Errorf("max tokens = %d", oa.gotOpts.MaxTokens)
	}
	if oa.gotOpts.Temperature != 0.7 {
		t.Errorf("temperature = %v", oa.gotOpts.Temperature)
	}
}

func TestRouterKeepsExplicitOptions(t *testing.T) {
	r, _, an := newTestRouter()

	_, err := r.Complete(context.Background(), nil, Options{
		Provider:    ProviderAnthropic,
		Model:       "claude-3-opus-20240229",
		MaxTokens:   512,
		Temperature: 0.2,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if an.gotOpts.Model != "claude-3-opus-20240229" || an.gotOpts.MaxTokens != 512 {
		t.Errorf("options were overwritten: %+v", an.gotOpts)
	}
}

func TestRouterErrorsWithoutRegisteredProvider(t *testing.T) {
	r := NewRouter(ProviderOpenAI, "gpt-4-turbo-preview")

	_, err := r.Complete(context.Background(), nil, Options{Provider: ProviderOpenAI})
	if !errors.Is(err, ErrProviderUnavailable) {
		t.Fatalf("err = %v, want ErrProviderUnavailable", err)
	}

	// Unknown provider with no openai fallback registered
	r = NewRouter(ProviderAnthropic, "claude-3-opus-20240229")
	r.Register(ProviderAnthropic, &fakeProvider{name: "anthropic"})

	_, err = r.Stream(context.Background(), nil, Options{Provider: "mistral"}, func(string) error { return nil })
	if !errors.Is(err, ErrProviderUnavailable) {
		t.Fatalf("err = %v, want ErrProviderUnavailable", err)
	}
}

func TestRouterStreamReturnsUsage(t *testing.T) {
	r, _, _ := newTestRouter()

	var tokens []string
	usage, err := r.Stream(context.Background(), nil, Options{}, func(token string) error {
		tokens = append(tokens, token)
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tokens) != 2 {
		t.Errorf("got %d tokens", len(tokens))
	}
	if usage.InputTokens != 10 || usage.OutputTokens != 2 {
		t.Errorf("usage = %+v", usage)
	}
}

func TestToOpenAIMessagesDropsToolRole(t *testing.T) {
	messages := []ChatMessage{
		{Role: "system", Content: "be helpful"},
		{Role: "user", Content: "hi"},
		{Role: "tool", Content: `{"ok":true}`, ToolCallID: "call_1"},
		{Role: "assistant", Content: "hello"},
	}

	converted := toOpenAIMessages(messages)
	if len(converted) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(converted))
	}
	for _, m := range converted {
		if m.Role == "tool" {
			t.Error("tool message should have been dropped")
		}
	}
}

func TestToOpenAITools(t *testing.T) {
	tools := toOpenAITools([]ToolDefinition{
		{
			Name:        "lookup_order",
			Description: "Look up an order by ID",
			Parameters: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{"order_id": map[string]interface{}{"type": "string"}},
			},
		},
	})

	if len(tools) != 1 {
		t.Fatalf("expected 1 tool, got %d", len(tools))
	}
	if tools[0].Type != openai.ToolTypeFunction {
		t.Errorf("tool type = %v", tools[0].Type)
	}
	if tools[0].Function.Name != "lookup_order" {
		t.Errorf("tool name = %q", tools[0].Function.Name)
	}
}

func TestToAnthropicMessagesHoistsRoles(t *testing.T) {
	messages := []ChatMessage{
		{Role: "system", Content: "be helpful"},
		{Role: "user", Content: "hi"},
		{Role: "assistant", Content: "hello"},
		{Role: "tool", Content: "result"},
	}

	converted := toAnthropicMessages(messages)
	if len(converted) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(converted))
	}
}
