package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"omnichat/internal/ai"
	"omnichat/pkg/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var (
	// ErrRateLimited is returned when a user exhausts a tool's per-minute budget
	ErrRateLimited = errors.New("tool rate limit exceeded")
	// ErrNotPending is returned when confirming an execution that already left
	// the pending state
	ErrNotPending = errors.New("execution not in pending state")
)

// Store persists the tool registry
type Store interface {
	GetEnabledByIDAndTenant(id, tenantID uuid.UUID) (*models.Tool, error)
	GetEnabledByName(tenantID uuid.UUID, name string) (*models.Tool, error)
	ListEnabledByTenant(tenantID uuid.UUID) ([]models.Tool, error)
}

// ExecutionStore persists execution state records
type ExecutionStore interface {
	Create(execution *models.ToolExecution) error
	GetByIDAndTenant(id, tenantID uuid.UUID) (*models.ToolExecution, error)
	Update(execution *models.ToolExecution) error
}

// Counter increments rate-limit counters with a TTL window
type Counter interface {
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

// Service runs registered tools through their execution state machine:
// pending -> confirmed -> executing -> executed|failed, or straight to
// executing when the tool does not require confirmation.
type Service struct {
	tools      Store
	executions ExecutionStore
	counter    Counter
	httpClient *http.Client
}

// NewService creates a new tool execution service
func NewService(tools Store, executions ExecutionStore, counter Counter) *Service {
	return &Service{
		tools:      tools,
		executions: executions,
		counter:    counter,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// CheckRateLimit counts this invocation against the user's fixed 60s window.
// Counter errors fail open.
func (s *Service) CheckRateLimit(ctx context.Context, tenantID, userID, toolID uuid.UUID, limit int) bool {
	key := fmt.Sprintf("rl:tool:%s:%s:%s", tenantID, userID, toolID)
	count, err := s.counter.Incr(ctx, key, time.Minute)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Rate limit counter failed, allowing request")
		return true
	}
	return count <= int64(limit)
}

// Execute runs a tool for a user. Confirmation-gated tools stop at pending
// with no output; everything else runs the endpoint immediately.
func (s *Service) Execute(ctx context.Context, tenantID, conversationID, toolID, userID uuid.UUID, inputArgs map[string]interface{}) (*models.ToolExecution, error) {
	tool, err := s.tools.GetEnabledByIDAndTenant(toolID, tenantID)
	if err != nil {
		return nil, err
	}

	if !s.CheckRateLimit(ctx, tenantID, userID, toolID, tool.RateLimit) {
		return nil, ErrRateLimited
	}

	status := models.ExecutionExecuting
	if tool.RequiresConfirm {
		status = models.ExecutionPending
	}

	execution := &models.ToolExecution{
		BaseTenantModel: models.BaseTenantModel{TenantID: tenantID},
		ToolID:          toolID,
		ConversationID:  conversationID,
		UserID:          userID,
		InputArgs:       models.JSONMap(inputArgs),
		Status:          status,
	}
	if err := s.executions.Create(execution); err != nil {
		return nil, fmt.Errorf("failed to create execution record: %w", err)
	}

	if tool.RequiresConfirm {
		log.Info().
			Str("tool", tool.Name).
			Str("execution_id", execution.ID.String()).
			Str("risk_level", tool.RiskLevel).
			Msg("Tool execution awaiting confirmation")
		return execution, nil
	}

	return s.run(ctx, tool, execution, inputArgs)
}

// ExecuteByName resolves a tool by registry name first, for model-initiated
// calls where only the name is known
func (s *Service) ExecuteByName(ctx context.Context, tenantID, conversationID, userID uuid.UUID, name string, inputArgs map[string]interface{}) (*models.ToolExecution, error) {
	tool, err := s.tools.GetEnabledByName(tenantID, name)
	if err != nil {
		return nil, err
	}
	return s.Execute(ctx, tenantID, conversationID, tool.ID, userID, inputArgs)
}

// Confirm transitions a pending execution to confirmed and runs it. Any
// other starting state is rejected with ErrNotPending.
func (s *Service) Confirm(ctx context.Context, tenantID, executionID, confirmedBy uuid.UUID) (*models.ToolExecution, error) {
	execution, err := s.executions.GetByIDAndTenant(executionID, tenantID)
	if err != nil {
		return nil, err
	}
	if execution.Status != models.ExecutionPending {
		return nil, ErrNotPending
	}

	execution.Status = models.ExecutionConfirmed
	execution.ConfirmedBy = &confirmedBy
	if err := s.executions.Update(execution); err != nil {
		return nil, fmt.Errorf("failed to confirm execution: %w", err)
	}

	tool, err := s.tools.GetEnabledByIDAndTenant(execution.ToolID, tenantID)
	if err != nil {
		return nil, err
	}

	execution.Status = models.ExecutionExecuting
	return s.run(ctx, tool, execution, map[string]interface{}(execution.InputArgs))
}

// run calls the tool endpoint and records the terminal state. Endpoint
// failures land in the record as failed, not as a returned error.
func (s *Service) run(ctx context.Context, tool *models.Tool, execution *models.ToolExecution, args map[string]interface{}) (*models.ToolExecution, error) {
	start := time.Now()

	output, err := s.callEndpoint(ctx, tool, args)
	if err != nil {
		log.Error().Err(err).
			Str("tool", tool.Name).
			Str("execution_id", execution.ID.String()).
			Msg("Tool execution failed")
		execution.Status = models.ExecutionFailed
		execution.OutputResult = models.JSONMap{"error": err.Error()}
	} else {
		execution.Status = models.ExecutionExecuted
		execution.OutputResult = models.JSONMap(output)
	}
	execution.LatencyMS = time.Since(start).Milliseconds()

	if err := s.executions.Update(execution); err != nil {
		return nil, fmt.Errorf("failed to record execution result: %w", err)
	}
	return execution, nil
}

// callEndpoint parses the endpoint config once and dispatches on its kind
func (s *Service) callEndpoint(ctx context.Context, tool *models.Tool, args map[string]interface{}) (map[string]interface{}, error) {
	endpoint, err := ParseEndpoint(tool.EndpointConfig)
	if err != nil {
		return nil, err
	}
	if endpoint.Kind == EndpointMock {
		return map[string]interface{}{
			"mock": true,
			"tool": tool.Name,
			"args": args,
			"note": "No endpoint configured",
		}, nil
	}
	return s.callHTTP(ctx, endpoint, args)
}

func (s *Service) callHTTP(ctx context.Context, endpoint Endpoint, args map[string]interface{}) (map[string]interface{}, error) {
	var body *bytes.Reader
	if endpoint.Method != http.MethodGet {
		payload, err := json.Marshal(args)
		if err != nil {
			return nil, fmt.Errorf("failed to encode tool arguments: %w", err)
		}
		body = bytes.NewReader(payload)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, endpoint.Method, endpoint.URL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build tool request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range endpoint.Headers {
		req.Header.Set(k, v)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tool endpoint unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("tool endpoint returned %d", resp.StatusCode)
	}

	var result map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("tool endpoint returned invalid JSON: %w", err)
	}
	return result, nil
}

// Definitions renders a tenant's enabled tools as model tool schemas
func (s *Service) Definitions(tenantID uuid.UUID) ([]ai.ToolDefinition, error) {
	enabled, err := s.tools.ListEnabledByTenant(tenantID)
	if err != nil {
		return nil, err
	}

	defs := make([]ai.ToolDefinition, 0, len(enabled))
	for _, t := range enabled {
		params := map[string]interface{}(t.InputSchema)
		if params == nil {
			params = map[string]interface{}{"type": "object", "properties": map[string]interface{}{}}
		}
		defs = append(defs, ai.ToolDefinition{
			Name:        t.Name,
			Description: t.Description,
			Parameters:  params,
		})
	}
	return defs, nil
}
