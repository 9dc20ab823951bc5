package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/rs/zerolog/log"
)

// AnthropicProvider adapts the Anthropic Messages API to the router contract.
// System messages are hoisted into the dedicated system field.
type AnthropicProvider struct {
	client anthropic.Client
}

func NewAnthropicProvider(client anthropic.Client) *AnthropicProvider {
	return &AnthropicProvider{client: client}
}

func (p *AnthropicProvider) Complete(ctx context.Context, messages []ChatMessage, opts Options) (*Response, error) {
	params, err := p.buildParams(messages, opts)
	if err != nil {
		return nil, err
	}

	msg, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("anthropic completion failed: %w", err)
	}

	out := &Response{
		Model: string(msg.Model),
		Usage: Usage{
			InputTokens:  int(msg.Usage.InputTokens),
			OutputTokens: int(msg.Usage.OutputTokens),
		},
	}

	var content strings.Builder
	for _, block := range msg.Content {
		switch block.Type {
		case "text":
			content.WriteString(block.AsText().Text)
		case "tool_use":
			toolUse := block.AsToolUse()
			args := map[string]interface{}{}
			if len(toolUse.Input) > 0 {
				if err := json.Unmarshal(toolUse.Input, &args); err != nil {
					log.Warn().Err(err).Str("tool", toolUse.Name).Msg("Failed to parse tool use input")
					args = map[string]interface{}{}
				}
			}
			out.ToolCalls = append(out.ToolCalls, ToolCall{
				ID:        toolUse.ID,
				Name:      toolUse.Name,
				Arguments: args,
			})
		}
	}
	out.Content = content.String()

	return out, nil
}

func (p *AnthropicProvider) Stream(ctx context.Context, messages []ChatMessage, opts Options, sink TokenSink) (Usage, error) {
	params, err := p.buildParams(messages, opts)
	if err != nil {
		return Usage{}, err
	}

	stream := p.client.Messages.NewStreaming(ctx, params)

	var usage Usage
	for stream.Next() {
		event := stream.Current()

		switch event.Type {
		case "message_start":
			messageStart := event.AsMessageStart()
			if messageStart.Message.Usage.InputTokens > 0 {
				usage.InputTokens = int(messageStart.Message.Usage.InputTokens)
			}

		case "content_block_delta":
			delta := event.AsContentBlockDelta().Delta
			if delta.Type == "text_delta" && delta.Text != "" {
				if err := sink(delta.Text); err != nil {
					return usage, err
				}
			}

		case "message_delta":
			messageDelta := event.AsMessageDelta()
			if messageDelta.Usage.OutputTokens > 0 {
				usage.OutputTokens = int(messageDelta.Usage.OutputTokens)
			}
		}
	}

	if err := stream.Err(); err != nil {
		return usage, fmt.Errorf("anthropic stream failed: %w", err)
	}
	return usage, nil
}

func (p *AnthropicProvider) buildParams(messages []ChatMessage, opts Options) (anthropic.MessageNewParams, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(opts.Model),
		Messages:  toAnthropicMessages(messages),
		MaxTokens: int64(opts.MaxTokens),
	}

	var system []string
	for _, m := range messages {
		if m.Role == "system" && m.Content != "" {
			system = append(system, m.Content)
		}
	}
	if len(system) > 0 {
		params.System = []anthropic.TextBlockParam{
			{
				Type: "text",
				Text: strings.Join(system, "\n\n"),
			},
		}
	}

	if len(opts.Tools) > 0 {
		tools, err := toAnthropicTools(opts.Tools)
		if err != nil {
			return anthropic.MessageNewParams{}, err
		}
		params.Tools = tools
	}

	return params, nil
}

func toAnthropicMessages(messages []ChatMessage) []anthropic.MessageParam {
	out := make([]anthropic.MessageParam, 0, len(messages))
	for _, m := range messages {
		if m.Role == "system" || m.Role == "tool" {
			continue
		}
		if m.Role == "assistant" {
			out = append(out, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		} else {
			out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}
	return out
}

func toAnthropicTools(tools []ToolDefinition) ([]anthropic.ToolUnionParam, error) {
	out := make([]anthropic.ToolUnionParam, 0, len(tools))
	for _, t := range tools {
		raw, err := json.Marshal(t.Parameters)
		if err != nil {
			return nil, fmt.Errorf("invalid tool schema for %s: %w", t.Name, err)
		}
		var schema anthropic.ToolInputSchemaParam
		if err := json.Unmarshal(raw, &schema); err != nil {
			return nil, fmt.Errorf("invalid tool schema for %s: %w", t.Name, err)
		}

		toolParam := anthropic.ToolUnionParamOfTool(schema, t.Name)
		if toolParam.OfTool == nil {
			return nil, fmt.Errorf("invalid tool schema for %s: missing tool definition", t.Name)
		}
		toolParam.OfTool.Description = anthropic.String(t.Description)
		out = append(out, toolParam)
	}
	return out, nil
}
