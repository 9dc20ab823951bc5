package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"omnichat/internal/ai"
	"omnichat/internal/knowledge"
	"omnichat/internal/safety"
	"omnichat/pkg/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const knowledgeTopK = 5

// Retriever performs tenant-scoped knowledge search
type Retriever interface {
	Search(ctx context.Context, tenantID, queryText string, topK int, userGroups []string) []knowledge.SearchResult
}

// MemoryFormatter renders a user's memories as a prompt block
type MemoryFormatter interface {
	FormatForPrompt(tenantID, userID uuid.UUID) (string, error)
}

// ModelCaller dispatches completions to a model provider
type ModelCaller interface {
	Complete(ctx context.Context, messages []ai.ChatMessage, opts ai.Options) (*ai.Response, error)
	Stream(ctx context.Context, messages []ai.ChatMessage, opts ai.Options, sink ai.TokenSink) (ai.Usage, error)
}

// ToolRunner lists and executes tenant tools
type ToolRunner interface {
	Definitions(tenantID uuid.UUID) ([]ai.ToolDefinition, error)
	ExecuteByName(ctx context.Context, tenantID, conversationID, userID uuid.UUID, name string, inputArgs map[string]interface{}) (*models.ToolExecution, error)
}

// MessageStore persists chat messages
type MessageStore interface {
	Create(message *models.Message) error
}

// Request is one turn of conversation to orchestrate
type Request struct {
	TenantID         uuid.UUID
	UserID           uuid.UUID
	ConversationID   uuid.UUID
	Messages         []ai.ChatMessage
	ToolsEnabled     bool
	KnowledgeEnabled bool
	Options          ai.Options
}

// ToolCallResult is a model-requested tool call paired with its outcome
type ToolCallResult struct {
	ID        string                 `json:"id"`
	Name      string                 `json:"name"`
	Arguments map[string]interface{} `json:"arguments"`
	Result    interface{}            `json:"result,omitempty"`
}

// Result is the assistant turn produced for one request
type Result struct {
	Content     string               `json:"content"`
	Citations   []knowledge.Citation `json:"citations"`
	ToolCalls   []ToolCallResult     `json:"tool_calls"`
	Model       string               `json:"model"`
	Usage       ai.Usage             `json:"usage"`
	SafetyFlags map[string]bool      `json:"safety_flags"`
}

// Event is one frame of a streamed response
type Event struct {
	Type    string    `json:"type"`
	DocID   string    `json:"doc_id,omitempty"`
	Title   string    `json:"title,omitempty"`
	URL     string    `json:"url,omitempty"`
	Snippet string    `json:"snippet,omitempty"`
	Content string    `json:"content,omitempty"`
	Code    string    `json:"code,omitempty"`
	Message string    `json:"message,omitempty"`
	Usage   *ai.Usage `json:"usage,omitempty"`
}

// EventSink receives stream events. A non-nil error aborts the stream.
type EventSink func(event Event) error

// Service assembles prompts, routes model calls, runs tools and persists
// the assistant turn
type Service struct {
	retriever Retriever
	memory    MemoryFormatter
	router    ModelCaller
	tools     ToolRunner
	messages  MessageStore
}

// NewService creates a new orchestrator service
func NewService(retriever Retriever, memory MemoryFormatter, router ModelCaller, tools ToolRunner, messages MessageStore) *Service {
	return &Service{
		retriever: retriever,
		memory:    memory,
		router:    router,
		tools:     tools,
		messages:  messages,
	}
}

// Process runs one blocking orchestration turn. The last request message is
// treated as the user's input for safety screening and retrieval.
func (s *Service) Process(ctx context.Context, req Request) (*Result, error) {
	userMessage := req.Messages[len(req.Messages)-1]

	inputCheck := safety.CheckInput(userMessage.Content)
	if !inputCheck.Safe {
		log.Warn().
			Str("tenant_id", req.TenantID.String()).
			Str("user_id", req.UserID.String()).
			Msg("Safety check failed on input")
		return blockedResult(inputCheck), nil
	}

	fullSystem, citations, err := s.assembleSystem(ctx, req, userMessage.Content, nil)
	if err != nil {
		return nil, err
	}

	assembled := make([]ai.ChatMessage, 0, len(req.Messages)+1)
	assembled = append(assembled, ai.ChatMessage{Role: "system", Content: fullSystem})
	assembled = append(assembled, req.Messages...)

	opts := req.Options
	if req.ToolsEnabled {
		defs, err := s.tools.Definitions(req.TenantID)
		if err != nil {
			return nil, fmt.Errorf("failed to list tools: %w", err)
		}
		if len(defs) > 0 {
			opts.Tools = defs
		}
	}

	modelResult, err := s.router.Complete(ctx, assembled, opts)
	if err != nil {
		return nil, err
	}

	toolResults := s.runToolCalls(ctx, req, modelResult.ToolCalls)

	outputCheck := safety.CheckOutput(modelResult.Content)
	finalContent := modelResult.Content
	if outputCheck.RedactedContent != "" {
		finalContent = outputCheck.RedactedContent
	}

	flags := mergeFlags(inputCheck.Flags, outputCheck.Flags)

	message := &models.Message{
		BaseTenantModel: models.BaseTenantModel{TenantID: req.TenantID},
		ConversationID:  req.ConversationID,
		Role:            "assistant",
		Content:         finalContent,
		Citations:       citationsArray(citations),
		ToolCalls:       toolCallsArray(toolResults),
		ModelUsed:       modelResult.Model,
		TokenCountIn:    modelResult.Usage.InputTokens,
		TokenCountOut:   modelResult.Usage.OutputTokens,
		SafetyFlags:     flagsMap(flags),
	}
	if err := s.messages.Create(message); err != nil {
		return nil, fmt.Errorf("failed to save assistant message: %w", err)
	}

	return &Result{
		Content:     finalContent,
		Citations:   citations,
		ToolCalls:   toolResults,
		Model:       modelResult.Model,
		Usage:       modelResult.Usage,
		SafetyFlags: flags,
	}, nil
}

// StreamProcess runs one streaming turn, emitting citation, token, error
// and done events. Streaming responses are not persisted and do not run
// tools.
func (s *Service) StreamProcess(ctx context.Context, req Request, sink EventSink) error {
	userMessage := req.Messages[len(req.Messages)-1]

	inputCheck := safety.CheckInput(userMessage.Content)
	if !inputCheck.Safe {
		if err := sink(Event{Type: "error", Code: "policy_denied", Message: inputCheck.Reason}); err != nil {
			return err
		}
		return sink(Event{Type: "done", Usage: &ai.Usage{}})
	}

	fullSystem, _, err := s.assembleSystem(ctx, req, userMessage.Content, sink)
	if err != nil {
		return streamFail(sink, "internal_error", err)
	}

	assembled := make([]ai.ChatMessage, 0, len(req.Messages)+1)
	assembled = append(assembled, ai.ChatMessage{Role: "system", Content: fullSystem})
	assembled = append(assembled, req.Messages...)

	usage, err := s.router.Stream(ctx, assembled, req.Options, func(token string) error {
		return sink(Event{Type: "token", Content: token})
	})
	if err != nil {
		return streamFail(sink, "provider_failure", err)
	}

	return sink(Event{Type: "done", Usage: &usage})
}

// streamFail writes the terminal error and done frames so the client can
// always detect completion, even when the provider dies mid-stream.
func streamFail(sink EventSink, code string, cause error) error {
	if err := sink(Event{Type: "error", Code: code, Message: cause.Error()}); err != nil {
		return err
	}
	return sink(Event{Type: "done", Usage: &ai.Usage{}})
}

// assembleSystem builds the full system content (prompt, memory block,
// knowledge context). When sink is non-nil each citation is emitted as an
// event as it is found.
func (s *Service) assembleSystem(ctx context.Context, req Request, query string, sink EventSink) (string, []knowledge.Citation, error) {
	var b strings.Builder
	b.WriteString(buildSystemPrompt(req.TenantID))

	memoryBlock, err := s.memory.FormatForPrompt(req.TenantID, req.UserID)
	if err != nil {
		return "", nil, fmt.Errorf("failed to load user memory: %w", err)
	}
	if memoryBlock != "" {
		b.WriteString("\n\n")
		b.WriteString(memoryBlock)
	}

	var citations []knowledge.Citation
	if req.KnowledgeEnabled && s.retriever != nil {
		results := s.retriever.Search(ctx, req.TenantID.String(), query, knowledgeTopK, nil)
		citations = knowledge.BuildCitations(results)
		if contextBlock := knowledge.BuildContextBlock(results); contextBlock != "" {
			b.WriteString("\n\n")
			b.WriteString(contextBlock)
		}
		if sink != nil {
			for _, c := range citations {
				event := Event{Type: "citation", DocID: c.DocID, Title: c.Title, URL: c.URL, Snippet: c.Snippet}
				if err := sink(event); err != nil {
					return "", nil, err
				}
			}
		}
	}

	return b.String(), citations, nil
}

// runToolCalls executes each model-requested tool call in order. Calls
// naming a tool the tenant does not have are skipped; execution failures
// are surfaced in the result payload rather than aborting the turn.
func (s *Service) runToolCalls(ctx context.Context, req Request, calls []ai.ToolCall) []ToolCallResult {
	results := make([]ToolCallResult, 0, len(calls))
	for _, tc := range calls {
		execution, err := s.tools.ExecuteByName(ctx, req.TenantID, req.ConversationID, req.UserID, tc.Name, tc.Arguments)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warn().Str("tool_name", tc.Name).Msg("Model requested unknown tool")
			continue
		}
		if err != nil {
			log.Error().Err(err).Str("tool_name", tc.Name).Msg("Tool execution failed during orchestration")
			results = append(results, ToolCallResult{
				ID:        tc.ID,
				Name:      tc.Name,
				Arguments: tc.Arguments,
				Result:    map[string]interface{}{"error": "Tool execution failed"},
			})
			continue
		}
		var output interface{}
		if execution.OutputResult != nil {
			output = map[string]interface{}(execution.OutputResult)
		}
		results = append(results, ToolCallResult{
			ID:        tc.ID,
			Name:      tc.Name,
			Arguments: tc.Arguments,
			Result:    output,
		})
	}
	return results
}

func buildSystemPrompt(tenantID uuid.UUID) string {
	return strings.Join([]string{
		"You are a helpful enterprise AI assistant.",
		"Be accurate, professional, and concise.",
		"When citing information from documents, reference the source.",
		"Do not make up information. If you do not know, say so.",
		fmt.Sprintf("Tenant ID: %s", tenantID),
	}, "\n")
}

func blockedResult(check safety.CheckResult) *Result {
	reason := check.Reason
	if reason == "" {
		reason = "Policy violation detected."
	}
	return &Result{
		Content:     fmt.Sprintf("I'm unable to process this request. %s", reason),
		Citations:   []knowledge.Citation{},
		ToolCalls:   []ToolCallResult{},
		Model:       "safety-block",
		Usage:       ai.Usage{},
		SafetyFlags: check.Flags,
	}
}

func mergeFlags(input, output map[string]bool) map[string]bool {
	merged := make(map[string]bool, len(input))
	for k, v := range input {
		merged[k] = v
	}
	for k, v := range output {
		if v {
			merged[k] = true
		}
	}
	return merged
}

func citationsArray(citations []knowledge.Citation) models.JSONArray {
	arr := make(models.JSONArray, 0, len(citations))
	for _, c := range citations {
		arr = append(arr, map[string]interface{}{
			"doc_id":  c.DocID,
			"title":   c.Title,
			"url":     c.URL,
			"snippet": c.Snippet,
		})
	}
	return arr
}

func toolCallsArray(calls []ToolCallResult) models.JSONArray {
	arr := make(models.JSONArray, 0, len(calls))
	for _, tc := range calls {
		entry := map[string]interface{}{
			"id":        tc.ID,
			"name":      tc.Name,
			"arguments": tc.Arguments,
		}
		if tc.Result != nil {
			entry["result"] = tc.Result
		}
		arr = append(arr, entry)
	}
	return arr
}

func flagsMap(flags map[string]bool) models.JSONMap {
	m := make(models.JSONMap, len(flags))
	for k, v := range flags {
		m[k] = v
	}
	return m
}
