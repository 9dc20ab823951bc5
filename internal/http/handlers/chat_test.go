package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"omnichat/internal/orchestrator"
	"omnichat/pkg/models"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConversationStore struct {
	created    []*models.Conversation
	listLimit  int
	listOffset int
	touched    []uuid.UUID
}

func (f *fakeConversationStore) Create(conversation *models.Conversation) error {
	conversation.ID = uuid.New()
	f.created = append(f.created, conversation)
	return nil
}

func (f *fakeConversationStore) GetByIDAndTenant(id, tenantID uuid.UUID) (*models.Conversation, error) {
	conv := &models.Conversation{}
	conv.ID = id
	conv.TenantID = tenantID
	return conv, nil
}

func (f *fakeConversationStore) ListByTenantAndUser(tenantID, userID uuid.UUID, limit, offset int) (models.PaginationResult[models.ConversationWithMessageCount], error) {
	f.listLimit = limit
	f.listOffset = offset
	return models.PaginationResult[models.ConversationWithMessageCount]{}, nil
}

func (f *fakeConversationStore) UpdateStatus(id, tenantID uuid.UUID, status string) error {
	return nil
}

func (f *fakeConversationStore) Touch(id uuid.UUID) error {
	f.touched = append(f.touched, id)
	return nil
}

type fakeMessageStore struct {
	created []*models.Message
}

func (f *fakeMessageStore) Create(message *models.Message) error {
	f.created = append(f.created, message)
	return nil
}

func (f *fakeMessageStore) ListByConversation(conversationID, tenantID uuid.UUID, limit int) ([]models.Message, error) {
	return nil, nil
}

type fakeOrchestrator struct {
	result *orchestrator.Result
	err    error
}

func (f *fakeOrchestrator) Process(ctx context.Context, req orchestrator.Request) (*orchestrator.Result, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeOrchestrator) StreamProcess(ctx context.Context, req orchestrator.Request, sink orchestrator.EventSink) error {
	return nil
}

type fakeAudit struct {
	events []*models.IntegrationEvent
}

func (f *fakeAudit) Create(event *models.IntegrationEvent) {
	f.events = append(f.events, event)
}

func chatContext(method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("tenant_id", uuid.New())
	c.Set("user_id", uuid.New())
	return c, rec
}

func TestCompleteTouchesConversation(t *testing.T) {
	conversations := &fakeConversationStore{}
	messages := &fakeMessageStore{}
	orch := &fakeOrchestrator{result: &orchestrator.Result{Content: "hi", Model: "gpt-4"}}
	h := NewChatHandler(conversations, messages, orch, &fakeAudit{})

	c, rec := chatContext(http.MethodPost, "/chat/completions", `{"messages":[{"role":"user","content":"hello"}]}`)
	require.NoError(t, h.Complete(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	// Inbound user message is persisted before orchestration
	require.Len(t, messages.created, 1)
	assert.Equal(t, "hello", messages.created[0].Content)

	// The lazily created conversation is bumped for list ordering
	require.Len(t, conversations.created, 1)
	require.Len(t, conversations.touched, 1)
	assert.Equal(t, conversations.created[0].ID, conversations.touched[0])
}

func TestListConversationsNormalizesLimit(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantLimit  int
		wantOffset int
	}{
		{"default", "", 20, 0},
		{"zero limit falls back", "?limit=0", 20, 0},
		{"negative limit falls back", "?limit=-5", 20, 0},
		{"capped at 100", "?limit=500", 100, 0},
		{"explicit", "?limit=5&offset=10", 5, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conversations := &fakeConversationStore{}
			h := NewChatHandler(conversations, &fakeMessageStore{}, &fakeOrchestrator{}, &fakeAudit{})

			c, rec := chatContext(http.MethodGet, "/conversations"+tt.query, "")
			require.NoError(t, h.ListConversations(c))
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.wantLimit, conversations.listLimit)
			assert.Equal(t, tt.wantOffset, conversations.listOffset)
		})
	}
}
