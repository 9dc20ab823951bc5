package ai

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
)

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// ErrProviderUnavailable is returned when neither the requested provider nor
// the openai fallback has a registered backend
var ErrProviderUnavailable = errors.New("no backend registered for provider")

const (
	defaultMaxTokens   = 2048
	defaultTemperature = 0.7
)

// ChatMessage is the provider-agnostic message shape
type ChatMessage struct {
	Role       string `json:"role"`
	Content    string `json:"content"`
	ToolCallID string `json:"tool_call_id,omitempty"`
	Name       string `json:"name,omitempty"`
}

// ToolCall is a normalized tool invocation request from the model
type ToolCall struct {
	ID        string                 `json:"id"`
	Name      string                 `json:"name"`
	Arguments map[string]interface{} `json:"arguments"`
}

// ToolDefinition is a provider-agnostic tool schema
type ToolDefinition struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Parameters  map[string]interface{} `json:"parameters"`
}

// Usage is normalized token accounting
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Options selects provider, model and sampling parameters for one call
type Options struct {
	Provider    string
	Model       string
	MaxTokens   int
	Temperature float32
	Tools       []ToolDefinition
}

// Response is a normalized completion result
type Response struct {
	Content   string     `json:"content"`
	Model     string     `json:"model"`
	Usage     Usage      `json:"usage"`
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
}

// TokenSink receives incremental tokens during streaming. A non-nil error
// aborts the stream.
type TokenSink func(token string) error

// Provider is one model backend
type Provider interface {
	Complete(ctx context.Context, messages []ChatMessage, opts Options) (*Response, error)
	Stream(ctx context.Context, messages []ChatMessage, opts Options, sink TokenSink) (Usage, error)
}

// Router dispatches chat completions to the selected provider, filling in
// tenant defaults when the caller leaves options empty. Unknown providers
// fall back to OpenAI.
type Router struct {
	providers       map[string]Provider
	defaultProvider string
	defaultModel    string
}

func NewRouter(defaultProvider, defaultModel string) *Router {
	return &Router{
		providers:       make(map[string]Provider),
		defaultProvider: defaultProvider,
		defaultModel:    defaultModel,
	}
}

// Register adds a provider backend under its name
func (r *Router) Register(name string, p Provider) {
	r.providers[name] = p
}

func (r *Router) resolve(opts Options) (Provider, Options, error) {
	if opts.Provider == "" {
		opts.Provider = r.defaultProvider
	}
	if opts.Model == "" {
		opts.Model = r.defaultModel
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = defaultMaxTokens
	}
	if opts.Temperature <= 0 {
		opts.Temperature = defaultTemperature
	}

	p, ok := r.providers[opts.Provider]
	if !ok {
		log.Warn().Str("provider", opts.Provider).Msg("Unknown provider, falling back to openai")
		opts.Provider = ProviderOpenAI
		p, ok = r.providers[ProviderOpenAI]
	}
	if !ok {
		return nil, opts, fmt.Errorf("%w: %s", ErrProviderUnavailable, opts.Provider)
	}
	return p, opts, nil
}

// Complete runs a blocking chat completion
func (r *Router) Complete(ctx context.Context, messages []ChatMessage, opts Options) (*Response, error) {
	p, resolved, err := r.resolve(opts)
	if err != nil {
		return nil, err
	}

	log.Debug().
		Str("provider", resolved.Provider).
		Str("model", resolved.Model).
		Int("messages", len(messages)).
		Msg("Model router: completing")

	return p.Complete(ctx, messages, resolved)
}

// Stream runs a streaming chat completion, writing tokens to sink as they
// arrive and returning final usage from the provider's terminal events.
func (r *Router) Stream(ctx context.Context, messages []ChatMessage, opts Options, sink TokenSink) (Usage, error) {
	p, resolved, err := r.resolve(opts)
	if err != nil {
		return Usage{}, err
	}

	log.Debug().
		Str("provider", resolved.Provider).
		Str("model", resolved.Model).
		Msg("Model router: streaming")

	return p.Stream(ctx, messages, resolved, sink)
}
