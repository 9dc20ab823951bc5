package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"omnichat/internal/ai"
	"omnichat/internal/orchestrator"
	"omnichat/pkg/models"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

type conversationStore interface {
	Create(conversation *models.Conversation) error
	GetByIDAndTenant(id, tenantID uuid.UUID) (*models.Conversation, error)
	ListByTenantAndUser(tenantID, userID uuid.UUID, limit, offset int) (models.PaginationResult[models.ConversationWithMessageCount], error)
	UpdateStatus(id, tenantID uuid.UUID, status string) error
	Touch(id uuid.UUID) error
}

type messageStore interface {
	Create(message *models.Message) error
	ListByConversation(conversationID, tenantID uuid.UUID, limit int) ([]models.Message, error)
}

type orchestratorRunner interface {
	Process(ctx context.Context, req orchestrator.Request) (*orchestrator.Result, error)
	StreamProcess(ctx context.Context, req orchestrator.Request, sink orchestrator.EventSink) error
}

type auditRecorder interface {
	Create(event *models.IntegrationEvent)
}

type ChatHandler struct {
	conversations conversationStore
	messages      messageStore
	orchestrator  orchestratorRunner
	audit         auditRecorder
}

func NewChatHandler(conversations conversationStore, messages messageStore, orch orchestratorRunner, audit auditRecorder) *ChatHandler {
	return &ChatHandler{
		conversations: conversations,
		messages:      messages,
		orchestrator:  orch,
		audit:         audit,
	}
}

// ChatCompletionRequest is the request body for POST /chat/completions
type ChatCompletionRequest struct {
	ConversationID   *uuid.UUID       `json:"conversation_id,omitempty"`
	Messages         []ai.ChatMessage `json:"messages" validate:"required,min=1"`
	Stream           bool             `json:"stream"`
	ToolsEnabled     *bool            `json:"tools_enabled,omitempty"`
	KnowledgeEnabled *bool            `json:"knowledge_enabled,omitempty"`
	Model            string           `json:"model,omitempty"`
	Provider         string           `json:"provider,omitempty"`
	MaxTokens        int              `json:"max_tokens,omitempty"`
	Temperature      float32          `json:"temperature,omitempty"`
}

// ChatCompletionResponse is the blocking response for POST /chat/completions
type ChatCompletionResponse struct {
	ID             uuid.UUID                     `json:"id"`
	ConversationID uuid.UUID                     `json:"conversation_id"`
	Content        string                        `json:"content"`
	Citations      interface{}                   `json:"citations"`
	ToolCalls      []orchestrator.ToolCallResult `json:"tool_calls"`
	Model          string                        `json:"model"`
	Usage          ai.Usage                      `json:"usage"`
	SafetyFlags    map[string]bool               `json:"safety_flags"`
}

// Complete handles POST /chat/completions, blocking or SSE-streamed
func (h *ChatHandler) Complete(c echo.Context) error {
	tenantID := c.Get("tenant_id").(uuid.UUID)
	userID := c.Get("user_id").(uuid.UUID)

	var req ChatCompletionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if len(req.Messages) == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "messages must not be empty"})
	}

	conversationID, err := h.resolveConversationID(req.ConversationID, tenantID, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to create conversation"})
	}

	// Persist the inbound user message before orchestration so the turn is
	// recorded even if the model call fails.
	userMessage := req.Messages[len(req.Messages)-1]
	if err := h.messages.Create(&models.Message{
		BaseTenantModel: models.BaseTenantModel{TenantID: tenantID},
		ConversationID:  conversationID,
		Role:            userMessage.Role,
		Content:         userMessage.Content,
	}); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to save message"})
	}

	orchReq := orchestrator.Request{
		TenantID:         tenantID,
		UserID:           userID,
		ConversationID:   conversationID,
		Messages:         req.Messages,
		ToolsEnabled:     boolOrDefault(req.ToolsEnabled, true),
		KnowledgeEnabled: boolOrDefault(req.KnowledgeEnabled, true),
		Options: ai.Options{
			Provider:    req.Provider,
			Model:       req.Model,
			MaxTokens:   req.MaxTokens,
			Temperature: req.Temperature,
		},
	}

	if req.Stream {
		return h.streamCompletion(c, orchReq)
	}

	result, err := h.orchestrator.Process(c.Request().Context(), orchReq)
	if err != nil {
		log.Error().Err(err).Str("conversation_id", conversationID.String()).Msg("Chat completion failed")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "completion failed"})
	}

	// Bump updated_at so conversation listing orders by latest activity
	if err := h.conversations.Touch(conversationID); err != nil {
		log.Warn().Err(err).Str("conversation_id", conversationID.String()).Msg("Failed to touch conversation")
	}

	return c.JSON(http.StatusOK, ChatCompletionResponse{
		ID:             uuid.New(),
		ConversationID: conversationID,
		Content:        result.Content,
		Citations:      result.Citations,
		ToolCalls:      result.ToolCalls,
		Model:          result.Model,
		Usage:          result.Usage,
		SafetyFlags:    result.SafetyFlags,
	})
}

func (h *ChatHandler) streamCompletion(c echo.Context, req orchestrator.Request) error {
	resp := c.Response()
	resp.Header().Set(echo.HeaderContentType, "text/event-stream")
	resp.Header().Set("Cache-Control", "no-cache")
	resp.Header().Set("Connection", "keep-alive")
	resp.WriteHeader(http.StatusOK)

	err := h.orchestrator.StreamProcess(c.Request().Context(), req, func(event orchestrator.Event) error {
		payload, err := json.Marshal(event)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(resp, "data: %s\n\n", payload); err != nil {
			return err
		}
		resp.Flush()
		return nil
	})
	if err != nil {
		log.Error().Err(err).Msg("Chat stream failed")
	}
	return nil
}

func (h *ChatHandler) resolveConversationID(requested *uuid.UUID, tenantID, userID uuid.UUID) (uuid.UUID, error) {
	if requested != nil {
		return *requested, nil
	}
	conversation := &models.Conversation{
		BaseTenantModel: models.BaseTenantModel{TenantID: tenantID},
		UserID:          userID,
		Channel:         "api",
	}
	if err := h.conversations.Create(conversation); err != nil {
		return uuid.Nil, err
	}
	return conversation.ID, nil
}

// CreateConversationRequest is the request body for POST /conversations
type CreateConversationRequest struct {
	Channel  string         `json:"channel" validate:"omitempty,oneof=web slack teams api mobile discord telegram whatsapp"`
	Metadata models.JSONMap `json:"metadata,omitempty"`
}

// CreateConversation handles POST /conversations
func (h *ChatHandler) CreateConversation(c echo.Context) error {
	tenantID := c.Get("tenant_id").(uuid.UUID)
	userID := c.Get("user_id").(uuid.UUID)

	var req CreateConversationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.Channel == "" {
		req.Channel = "web"
	}

	conversation := &models.Conversation{
		BaseTenantModel: models.BaseTenantModel{TenantID: tenantID},
		UserID:          userID,
		Channel:         req.Channel,
		Metadata:        req.Metadata,
	}
	if err := h.conversations.Create(conversation); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to create conversation"})
	}

	return c.JSON(http.StatusCreated, conversation)
}

// ListConversations handles GET /conversations
func (h *ChatHandler) ListConversations(c echo.Context) error {
	tenantID := c.Get("tenant_id").(uuid.UUID)
	userID := c.Get("user_id").(uuid.UUID)

	limit := intQueryParam(c, "limit", 20)
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	offset := intQueryParam(c, "offset", 0)

	result, err := h.conversations.ListByTenantAndUser(tenantID, userID, limit, offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to list conversations"})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"conversations": result.Data,
		"total":         result.Total,
		"limit":         limit,
		"offset":        offset,
	})
}

// GetConversation handles GET /conversations/:id, returning the
// conversation with its full message history
func (h *ChatHandler) GetConversation(c echo.Context) error {
	tenantID := c.Get("tenant_id").(uuid.UUID)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid conversation ID"})
	}

	conversation, err := h.conversations.GetByIDAndTenant(id, tenantID)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "conversation not found"})
	}

	messages, err := h.messages.ListByConversation(id, tenantID, 0)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to load messages"})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"id":         conversation.ID,
		"channel":    conversation.Channel,
		"status":     conversation.Status,
		"created_at": conversation.CreatedAt,
		"messages":   messages,
	})
}

// ArchiveConversation handles DELETE /conversations/:id (soft: archived)
func (h *ChatHandler) ArchiveConversation(c echo.Context) error {
	tenantID := c.Get("tenant_id").(uuid.UUID)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid conversation ID"})
	}

	if err := h.conversations.UpdateStatus(id, tenantID, models.ConversationArchived); err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "conversation not found"})
	}
	return c.NoContent(http.StatusNoContent)
}

// EscalateRequest is the request body for POST /conversations/:id/escalate
type EscalateRequest struct {
	Reason string `json:"reason,omitempty"`
}

// Escalate handles POST /conversations/:id/escalate, handing the thread to
// a human agent
func (h *ChatHandler) Escalate(c echo.Context) error {
	tenantID := c.Get("tenant_id").(uuid.UUID)
	userID := c.Get("user_id").(uuid.UUID)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid conversation ID"})
	}

	var req EscalateRequest
	_ = c.Bind(&req)
	if req.Reason == "" {
		req.Reason = "user_request"
	}

	if err := h.conversations.UpdateStatus(id, tenantID, models.ConversationEscalated); err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "conversation not found"})
	}

	h.audit.Create(&models.IntegrationEvent{
		BaseTenantModel: models.BaseTenantModel{TenantID: tenantID},
		Platform:        "api",
		EventType:       "conversation.escalated",
		Payload: models.JSONMap{
			"conversation_id": id.String(),
			"actor_id":        userID.String(),
			"reason":          req.Reason,
		},
		Processed: true,
	})

	return c.JSON(http.StatusOK, map[string]interface{}{
		"id":      id,
		"status":  models.ConversationEscalated,
		"message": "Conversation escalated to human agent",
	})
}

func boolOrDefault(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

func intQueryParam(c echo.Context, name string, def int) int {
	raw := c.QueryParam(name)
	if raw == "" {
		return def
	}
	var n int
	if _, err := fmt.Sscanf(raw, "%d", &n); err != nil || n < 0 {
		return def
	}
	return n
}
