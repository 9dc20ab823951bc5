package tools

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"omnichat/pkg/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type fakeToolStore struct {
	tools map[uuid.UUID]*models.Tool
}

func (f *fakeToolStore) GetEnabledByIDAndTenant(id, tenantID uuid.UUID) (*models.Tool, error) {
	if t, ok := f.tools[id]; ok && t.Enabled {
		return t, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeToolStore) GetEnabledByName(tenantID uuid.UUID, name string) (*models.Tool, error) {
	for _, t := range f.tools {
		if t.Name == name && t.Enabled {
			return t, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeToolStore) ListEnabledByTenant(tenantID uuid.UUID) ([]models.Tool, error) {
	var out []models.Tool
	for _, t := range f.tools {
		if t.Enabled {
			out = append(out, *t)
		}
	}
	return out, nil
}

type fakeExecStore struct {
	executions map[uuid.UUID]*models.ToolExecution
}

func (f *fakeExecStore) Create(e *models.ToolExecution) error {
	e.ID = uuid.New()
	copied := *e
	f.executions[e.ID] = &copied
	return nil
}

func (f *fakeExecStore) GetByIDAndTenant(id, tenantID uuid.UUID) (*models.ToolExecution, error) {
	if e, ok := f.executions[id]; ok {
		copied := *e
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeExecStore) Update(e *models.ToolExecution) error {
	copied := *e
	f.executions[e.ID] = &copied
	return nil
}

type fakeCounter struct {
	count int64
	err   error
}

func (f *fakeCounter) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.count++
	return f.count, nil
}

func newTestService(tool *models.Tool) (*Service, *fakeToolStore, *fakeExecStore, *fakeCounter) {
	toolStore := &fakeToolStore{tools: map[uuid.UUID]*models.Tool{}}
	if tool != nil {
		toolStore.tools[tool.ID] = tool
	}
	execStore := &fakeExecStore{executions: map[uuid.UUID]*models.ToolExecution{}}
	counter := &fakeCounter{}
	return NewService(toolStore, execStore, counter), toolStore, execStore, counter
}

func mockTool(requiresConfirm bool, endpoint models.JSONMap) *models.Tool {
	return &models.Tool{
		BaseTenantModel: models.BaseTenantModel{ID: uuid.New()},
		Name:            "lookup_order",
		Description:     "Look up an order",
		InputSchema:     models.JSONMap{"type": "object"},
		EndpointConfig:  endpoint,
		RequiresConfirm: requiresConfirm,
		RateLimit:       3,
		Enabled:         true,
	}
}

func TestExecuteMockEndpoint(t *testing.T) {
	tool := mockTool(false, models.JSONMap{})
	svc, _, _, _ := newTestService(tool)

	exec, err := svc.Execute(context.Background(), uuid.New(), uuid.New(), tool.ID, uuid.New(),
		map[string]interface{}{"order_id": "42"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exec.Status != models.ExecutionExecuted {
		t.Errorf("status = %q", exec.Status)
	}
	if exec.OutputResult["mock"] != true {
		t.Errorf("expected mock result, got %v", exec.OutputResult)
	}
	if exec.OutputResult["note"] != "No endpoint configured" {
		t.Errorf("note = %v", exec.OutputResult["note"])
	}
}

func TestExecuteHTTPEndpoint(t *testing.T) {
	var gotBody map[string]interface{}
	var gotHeader string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Get("X-Api-Key")
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(map[string]interface{}{"status": "shipped"})
	}))
	defer server.Close()

	tool := mockTool(false, models.JSONMap{
		"url":     server.URL,
		"method":  "post",
		"headers": map[string]interface{}{"X-Api-Key": "secret"},
	})
	svc, _, _, _ := newTestService(tool)

	exec, err := svc.Execute(context.Background(), uuid.New(), uuid.New(), tool.ID, uuid.New(),
		map[string]interface{}{"order_id": "42"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exec.Status != models.ExecutionExecuted {
		t.Errorf("status = %q", exec.Status)
	}
	if exec.OutputResult["status"] != "shipped" {
		t.Errorf("output = %v", exec.OutputResult)
	}
	if gotBody["order_id"] != "42" {
		t.Errorf("endpoint body = %v", gotBody)
	}
	if gotHeader != "secret" {
		t.Errorf("header = %q", gotHeader)
	}
}

func TestExecuteEndpointFailureRecordsFailed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	tool := mockTool(false, models.JSONMap{"url": server.URL})
	svc, _, execStore, _ := newTestService(tool)

	exec, err := svc.Execute(context.Background(), uuid.New(), uuid.New(), tool.ID, uuid.New(), nil)
	if err != nil {
		t.Fatalf("endpoint failure should not surface as error: %v", err)
	}
	if exec.Status != models.ExecutionFailed {
		t.Errorf("status = %q", exec.Status)
	}
	if _, ok := exec.OutputResult["error"]; !ok {
		t.Errorf("expected error in output, got %v", exec.OutputResult)
	}
	if stored := execStore.executions[exec.ID]; stored.Status != models.ExecutionFailed {
		t.Errorf("stored status = %q", stored.Status)
	}
}

func TestExecuteRequiresConfirmStopsAtPending(t *testing.T) {
	tool := mockTool(true, models.JSONMap{})
	svc, _, _, _ := newTestService(tool)

	exec, err := svc.Execute(context.Background(), uuid.New(), uuid.New(), tool.ID, uuid.New(),
		map[string]interface{}{"amount": 100})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exec.Status != models.ExecutionPending {
		t.Errorf("status = %q, want pending", exec.Status)
	}
	if exec.OutputResult != nil {
		t.Errorf("pending execution must have no output, got %v", exec.OutputResult)
	}
}

func TestConfirmRunsPendingExecution(t *testing.T) {
	tool := mockTool(true, models.JSONMap{})
	svc, _, _, _ := newTestService(tool)
	tenantID := uuid.New()

	pending, err := svc.Execute(context.Background(), tenantID, uuid.New(), tool.ID, uuid.New(),
		map[string]interface{}{"amount": 100})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	approver := uuid.New()
	done, err := svc.Confirm(context.Background(), tenantID, pending.ID, approver)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if done.Status != models.ExecutionExecuted {
		t.Errorf("status = %q", done.Status)
	}
	if done.ConfirmedBy == nil || *done.ConfirmedBy != approver {
		t.Errorf("confirmed_by = %v", done.ConfirmedBy)
	}
}

func TestConfirmRejectsNonPending(t *testing.T) {
	tool := mockTool(false, models.JSONMap{})
	svc, _, _, _ := newTestService(tool)
	tenantID := uuid.New()

	exec, err := svc.Execute(context.Background(), tenantID, uuid.New(), tool.ID, uuid.New(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = svc.Confirm(context.Background(), tenantID, exec.ID, uuid.New())
	if !errors.Is(err, ErrNotPending) {
		t.Errorf("err = %v, want ErrNotPending", err)
	}
}

func TestExecuteRateLimit(t *testing.T) {
	tool := mockTool(false, models.JSONMap{})
	svc, _, _, _ := newTestService(tool)
	tenantID, convID, userID := uuid.New(), uuid.New(), uuid.New()

	for i := 0; i < tool.RateLimit; i++ {
		if _, err := svc.Execute(context.Background(), tenantID, convID, tool.ID, userID, nil); err != nil {
			t.Fatalf("call %d unexpectedly failed: %v", i+1, err)
		}
	}

	_, err := svc.Execute(context.Background(), tenantID, convID, tool.ID, userID, nil)
	if !errors.Is(err, ErrRateLimited) {
		t.Errorf("err = %v, want ErrRateLimited", err)
	}
}

func TestRateLimitFailsOpen(t *testing.T) {
	tool := mockTool(false, models.JSONMap{})
	svc, _, _, counter := newTestService(tool)
	counter.err = errors.New("redis down")

	exec, err := svc.Execute(context.Background(), uuid.New(), uuid.New(), tool.ID, uuid.New(), nil)
	if err != nil {
		t.Fatalf("counter failure must not block execution: %v", err)
	}
	if exec.Status != models.ExecutionExecuted {
		t.Errorf("status = %q", exec.Status)
	}
}

func TestExecuteUnknownTool(t *testing.T) {
	svc, _, _, _ := newTestService(nil)

	_, err := svc.Execute(context.Background(), uuid.New(), uuid.New(), uuid.New(), uuid.New(), nil)
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("err = %v, want record not found", err)
	}
}

func TestDefinitions(t *testing.T) {
	tool := mockTool(false, models.JSONMap{})
	svc, _, _, _ := newTestService(tool)

	defs, err := svc.Definitions(uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(defs) != 1 {
		t.Fatalf("expected 1 definition, got %d", len(defs))
	}
	if defs[0].Name != "lookup_order" {
		t.Errorf("name = %q", defs[0].Name)
	}
	if defs[0].Parameters["type"] != "object" {
		t.Errorf("parameters = %v", defs[0].Parameters)
	}
}
