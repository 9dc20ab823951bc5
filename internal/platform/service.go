package platform

import (
	"context"

	"omnichat/internal/ai"
	"omnichat/internal/orchestrator"
	"omnichat/pkg/models"

	"github.com/google/uuid"
)

// IdentityResolver maps external platform identities to internal ones
type IdentityResolver interface {
	ResolveUser(integrationID, tenantID uuid.UUID, externalUserID, displayName string) (uuid.UUID, error)
	ResolveConversation(integrationID, tenantID, userID uuid.UUID, externalConvID, channel string) (uuid.UUID, error)
}

// Processor runs one chat turn through the orchestration pipeline
type Processor interface {
	Process(ctx context.Context, req orchestrator.Request) (*orchestrator.Result, error)
}

// EventRecorder appends integration audit events
type EventRecorder interface {
	Create(event *models.IntegrationEvent)
}

// MessageRequest is one inbound platform message to process
type MessageRequest struct {
	IntegrationID  uuid.UUID
	TenantID       uuid.UUID
	Platform       string
	ExternalUserID string
	ExternalConvID string
	Content        string
	DisplayName    string
}

// Reply is what gets sent back to the platform
type Reply struct {
	Content   string
	Citations []ReplyCitation
}

// ReplyCitation is the trimmed citation shape exposed to platforms
type ReplyCitation struct {
	Title string `json:"title"`
	URL   string `json:"url,omitempty"`
}

// Service is the unified entry point for all platform messages: it resolves
// the sender and thread to internal records, then runs the turn through the
// orchestrator with tools and knowledge enabled.
type Service struct {
	identity     IdentityResolver
	orchestrator Processor
	events       EventRecorder
}

// NewService creates a new platform message service
func NewService(identity IdentityResolver, orch Processor, events EventRecorder) *Service {
	return &Service{
		identity:     identity,
		orchestrator: orch,
		events:       events,
	}
}

// ProcessMessage handles one inbound message end to end
func (s *Service) ProcessMessage(ctx context.Context, req MessageRequest) (*Reply, error) {
	userID, err := s.identity.ResolveUser(req.IntegrationID, req.TenantID, req.ExternalUserID, req.DisplayName)
	if err != nil {
		return nil, err
	}
	conversationID, err := s.identity.ResolveConversation(req.IntegrationID, req.TenantID, userID, req.ExternalConvID, req.Platform)
	if err != nil {
		return nil, err
	}

	result, err := s.orchestrator.Process(ctx, orchestrator.Request{
		TenantID:         req.TenantID,
		UserID:           userID,
		ConversationID:   conversationID,
		Messages:         []ai.ChatMessage{{Role: "user", Content: req.Content}},
		ToolsEnabled:     true,
		KnowledgeEnabled: true,
	})
	if err != nil {
		return nil, err
	}

	citations := make([]ReplyCitation, 0, len(result.Citations))
	for _, c := range result.Citations {
		citations = append(citations, ReplyCitation{Title: c.Title, URL: c.URL})
	}
	return &Reply{Content: result.Content, Citations: citations}, nil
}

// LogEvent records one webhook delivery outcome for auditing. Recording
// failures are swallowed by the repository so they never break processing.
func (s *Service) LogEvent(integrationID, tenantID uuid.UUID, platform, eventType string, payload map[string]interface{}, processingErr error) {
	event := &models.IntegrationEvent{
		BaseTenantModel: models.BaseTenantModel{TenantID: tenantID},
		IntegrationID:   integrationID,
		Platform:        platform,
		EventType:       eventType,
		Payload:         models.JSONMap(payload),
		Processed:       processingErr == nil,
	}
	if processingErr != nil {
		event.Error = processingErr.Error()
	}
	s.events.Create(event)
}
