package platform

import (
	"context"
	"errors"
	"testing"

	"omnichat/internal/knowledge"
	"omnichat/internal/orchestrator"
	"omnichat/pkg/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIdentity struct {
	userID uuid.UUID
	convID uuid.UUID
	err    error

	lastDisplayName string
	lastChannel     string
}

func (f *fakeIdentity) ResolveUser(integrationID, tenantID uuid.UUID, externalUserID, displayName string) (uuid.UUID, error) {
	f.lastDisplayName = displayName
	return f.userID, f.err
}

func (f *fakeIdentity) ResolveConversation(integrationID, tenantID, userID uuid.UUID, externalConvID, channel string) (uuid.UUID, error) {
	f.lastChannel = channel
	return f.convID, f.err
}

type fakeProcessor struct {
	result  *orchestrator.Result
	err     error
	lastReq orchestrator.Request
}

func (f *fakeProcessor) Process(ctx context.Context, req orchestrator.Request) (*orchestrator.Result, error) {
	f.lastReq = req
	return f.result, f.err
}

type fakeEvents struct {
	events []*models.IntegrationEvent
}

func (f *fakeEvents) Create(event *models.IntegrationEvent) {
	f.events = append(f.events, event)
}

func TestProcessMessageRunsFullPipeline(t *testing.T) {
	identity := &fakeIdentity{userID: uuid.New(), convID: uuid.New()}
	processor := &fakeProcessor{result: &orchestrator.Result{
		Content: "the answer",
		Citations: []knowledge.Citation{
			{DocID: "d1", Title: "Handbook", URL: "https://kb/h", Snippet: "..."},
		},
	}}
	svc := NewService(identity, processor, &fakeEvents{})

	reply, err := svc.ProcessMessage(context.Background(), MessageRequest{
		IntegrationID:  uuid.New(),
		TenantID:       uuid.New(),
		Platform:       models.PlatformSlack,
		ExternalUserID: "U123",
		ExternalConvID: "C456",
		Content:        "what is the policy?",
		DisplayName:    "Ada",
	})
	require.NoError(t, err)

	assert.Equal(t, "the answer", reply.Content)
	require.Len(t, reply.Citations, 1)
	assert.Equal(t, "Handbook", reply.Citations[0].Title)
	assert.Equal(t, "https://kb/h", reply.Citations[0].URL)

	assert.Equal(t, "Ada", identity.lastDisplayName)
	assert.Equal(t, models.PlatformSlack, identity.lastChannel)

	req := processor.lastReq
	assert.Equal(t, identity.userID, req.UserID)
	assert.Equal(t, identity.convID, req.ConversationID)
	assert.True(t, req.ToolsEnabled)
	assert.True(t, req.KnowledgeEnabled)
	require.Len(t, req.Messages, 1)
	assert.Equal(t, "user", req.Messages[0].Role)
	assert.Equal(t, "what is the policy?", req.Messages[0].Content)
}

func TestProcessMessageIdentityFailure(t *testing.T) {
	identity := &fakeIdentity{err: errors.New("db down")}
	svc := NewService(identity, &fakeProcessor{}, &fakeEvents{})

	_, err := svc.ProcessMessage(context.Background(), MessageRequest{Content: "hi"})
	assert.Error(t, err)
}

func TestLogEvent(t *testing.T) {
	events := &fakeEvents{}
	svc := NewService(&fakeIdentity{}, &fakeProcessor{}, events)

	integrationID := uuid.New()
	tenantID := uuid.New()

	svc.LogEvent(integrationID, tenantID, models.PlatformTelegram, "message",
		map[string]interface{}{"chat_id": "42"}, nil)
	svc.LogEvent(integrationID, tenantID, models.PlatformTelegram, "message",
		map[string]interface{}{"chat_id": "42"}, errors.New("send failed"))

	require.Len(t, events.events, 2)
	assert.True(t, events.events[0].Processed)
	assert.Empty(t, events.events[0].Error)
	assert.False(t, events.events[1].Processed)
	assert.Equal(t, "send failed", events.events[1].Error)
	assert.Equal(t, tenantID, events.events[0].TenantID)
}
