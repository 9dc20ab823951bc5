package handlers

import (
	"errors"
	"net/http"

	"omnichat/internal/tools"
	"omnichat/pkg/models"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type toolStore interface {
	GetByIDAndTenant(id, tenantID uuid.UUID) (*models.Tool, error)
	ListByTenant(tenantID uuid.UUID) ([]models.Tool, error)
	Create(tool *models.Tool) error
	Update(tool *models.Tool) error
	Delete(id, tenantID uuid.UUID) error
}

type ToolHandler struct {
	tools   toolStore
	service *tools.Service
}

func NewToolHandler(store toolStore, service *tools.Service) *ToolHandler {
	return &ToolHandler{tools: store, service: service}
}

// CreateToolRequest is the request body for POST /tools
type CreateToolRequest struct {
	Name            string         `json:"name" validate:"required,max=255"`
	DisplayName     string         `json:"display_name,omitempty"`
	Description     string         `json:"description"`
	InputSchema     models.JSONMap `json:"input_schema" validate:"required"`
	OutputSchema    models.JSONMap `json:"output_schema,omitempty"`
	EndpointConfig  models.JSONMap `json:"endpoint_config" validate:"required"`
	RiskLevel       string         `json:"risk_level" validate:"omitempty,oneof=low medium high critical"`
	RequiresConfirm bool           `json:"requires_confirm"`
	RateLimit       int            `json:"rate_limit" validate:"omitempty,min=1"`
}

// Create handles POST /tools
func (h *ToolHandler) Create(c echo.Context) error {
	tenantID := c.Get("tenant_id").(uuid.UUID)

	var req CreateToolRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if _, err := tools.ParseEndpoint(req.EndpointConfig); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if req.RiskLevel == "" {
		req.RiskLevel = "low"
	}
	if req.RateLimit == 0 {
		req.RateLimit = 10
	}

	tool := &models.Tool{
		BaseTenantModel: models.BaseTenantModel{TenantID: tenantID},
		Name:            req.Name,
		DisplayName:     req.DisplayName,
		Description:     req.Description,
		InputSchema:     req.InputSchema,
		OutputSchema:    req.OutputSchema,
		EndpointConfig:  req.EndpointConfig,
		RiskLevel:       req.RiskLevel,
		RequiresConfirm: req.RequiresConfirm,
		RateLimit:       req.RateLimit,
		Enabled:         true,
	}
	if err := h.tools.Create(tool); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to create tool"})
	}
	return c.JSON(http.StatusCreated, tool)
}

// List handles GET /tools
func (h *ToolHandler) List(c echo.Context) error {
	tenantID := c.Get("tenant_id").(uuid.UUID)

	toolList, err := h.tools.ListByTenant(tenantID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to list tools"})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"tools": toolList})
}

// UpdateToolRequest is the request body for PUT /tools/:id
type UpdateToolRequest struct {
	DisplayName     *string         `json:"display_name,omitempty"`
	Description     *string         `json:"description,omitempty"`
	InputSchema     *models.JSONMap `json:"input_schema,omitempty"`
	OutputSchema    *models.JSONMap `json:"output_schema,omitempty"`
	EndpointConfig  *models.JSONMap `json:"endpoint_config,omitempty"`
	RiskLevel       *string         `json:"risk_level,omitempty" validate:"omitempty,oneof=low medium high critical"`
	RequiresConfirm *bool           `json:"requires_confirm,omitempty"`
	RateLimit       *int            `json:"rate_limit,omitempty" validate:"omitempty,min=1"`
	Enabled         *bool           `json:"enabled,omitempty"`
}

// Update handles PUT /tools/:id
func (h *ToolHandler) Update(c echo.Context) error {
	tenantID := c.Get("tenant_id").(uuid.UUID)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid tool ID"})
	}

	var req UpdateToolRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	tool, err := h.tools.GetByIDAndTenant(id, tenantID)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "tool not found"})
	}

	if req.DisplayName != nil {
		tool.DisplayName = *req.DisplayName
	}
	if req.Description != nil {
		tool.Description = *req.Description
	}
	if req.InputSchema != nil {
		tool.InputSchema = *req.InputSchema
	}
	if req.OutputSchema != nil {
		tool.OutputSchema = *req.OutputSchema
	}
	if req.EndpointConfig != nil {
		if _, err := tools.ParseEndpoint(*req.EndpointConfig); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		tool.EndpointConfig = *req.EndpointConfig
	}
	if req.RiskLevel != nil {
		tool.RiskLevel = *req.RiskLevel
	}
	if req.RequiresConfirm != nil {
		tool.RequiresConfirm = *req.RequiresConfirm
	}
	if req.RateLimit != nil {
		tool.RateLimit = *req.RateLimit
	}
	if req.Enabled != nil {
		tool.Enabled = *req.Enabled
	}

	if err := h.tools.Update(tool); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to update tool"})
	}
	return c.JSON(http.StatusOK, tool)
}

// Delete handles DELETE /tools/:id
func (h *ToolHandler) Delete(c echo.Context) error {
	tenantID := c.Get("tenant_id").(uuid.UUID)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid tool ID"})
	}

	if err := h.tools.Delete(id, tenantID); err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "tool not found"})
	}
	return c.NoContent(http.StatusNoContent)
}

// TestToolRequest is the request body for POST /tools/:id/test
type TestToolRequest struct {
	Args map[string]interface{} `json:"args,omitempty"`
}

// Test handles POST /tools/:id/test, firing the tool against the zero-UUID
// test conversation
func (h *ToolHandler) Test(c echo.Context) error {
	tenantID := c.Get("tenant_id").(uuid.UUID)
	userID := c.Get("user_id").(uuid.UUID)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid tool ID"})
	}

	var req TestToolRequest
	_ = c.Bind(&req)
	if req.Args == nil {
		req.Args = map[string]interface{}{}
	}

	execution, err := h.service.Execute(c.Request().Context(), tenantID, uuid.Nil, id, userID, req.Args)
	if err != nil {
		if errors.Is(err, tools.ErrRateLimited) {
			return c.JSON(http.StatusTooManyRequests, map[string]string{"error": "rate limit exceeded"})
		}
		return c.JSON(http.StatusNotFound, map[string]string{"error": "tool not found"})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"execution": execution})
}

// Confirm handles POST /tools/executions/:id/confirm
func (h *ToolHandler) Confirm(c echo.Context) error {
	tenantID := c.Get("tenant_id").(uuid.UUID)
	userID := c.Get("user_id").(uuid.UUID)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid execution ID"})
	}

	execution, err := h.service.Confirm(c.Request().Context(), tenantID, id, userID)
	if err != nil {
		if errors.Is(err, tools.ErrNotPending) {
			return c.JSON(http.StatusConflict, map[string]string{"error": "execution is not pending confirmation"})
		}
		return c.JSON(http.StatusNotFound, map[string]string{"error": "execution not found"})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"execution": execution})
}
