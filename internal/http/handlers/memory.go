package handlers

import (
	"net/http"

	"omnichat/internal/memory"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type MemoryHandler struct {
	service *memory.Service
}

func NewMemoryHandler(service *memory.Service) *MemoryHandler {
	return &MemoryHandler{service: service}
}

// List handles GET /memory
func (h *MemoryHandler) List(c echo.Context) error {
	tenantID := c.Get("tenant_id").(uuid.UUID)
	userID := c.Get("user_id").(uuid.UUID)

	memories, err := h.service.GetUserMemory(tenantID, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to list memories"})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"memories": memories})
}

// UpsertMemoryRequest is the request body for POST /memory
type UpsertMemoryRequest struct {
	Category string `json:"category" validate:"required"`
	Key      string `json:"key" validate:"required"`
	Value    string `json:"value" validate:"required"`
}

// Upsert handles POST /memory
func (h *MemoryHandler) Upsert(c echo.Context) error {
	tenantID := c.Get("tenant_id").(uuid.UUID)
	userID := c.Get("user_id").(uuid.UUID)

	var req UpsertMemoryRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	entry, err := h.service.Upsert(tenantID, userID, req.Category, req.Key, req.Value)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to save memory"})
	}
	return c.JSON(http.StatusCreated, entry)
}

// UpdateMemoryRequest is the request body for PUT /memory/:id
type UpdateMemoryRequest struct {
	Value string `json:"value" validate:"required"`
}

// Update handles PUT /memory/:id
func (h *MemoryHandler) Update(c echo.Context) error {
	tenantID := c.Get("tenant_id").(uuid.UUID)
	userID := c.Get("user_id").(uuid.UUID)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid memory ID"})
	}

	var req UpdateMemoryRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	entry, err := h.service.Update(id, tenantID, userID, req.Value)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "memory entry not found"})
	}
	return c.JSON(http.StatusOK, entry)
}

// Delete handles DELETE /memory/:id
func (h *MemoryHandler) Delete(c echo.Context) error {
	tenantID := c.Get("tenant_id").(uuid.UUID)
	userID := c.Get("user_id").(uuid.UUID)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid memory ID"})
	}

	if err := h.service.Delete(id, tenantID, userID); err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "memory entry not found"})
	}
	return c.NoContent(http.StatusNoContent)
}

// DeleteAll handles DELETE /memory
func (h *MemoryHandler) DeleteAll(c echo.Context) error {
	tenantID := c.Get("tenant_id").(uuid.UUID)
	userID := c.Get("user_id").(uuid.UUID)

	count, err := h.service.DeleteAll(tenantID, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to delete memories"})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"deleted_count": count,
		"message":       "All memories deleted",
	})
}

// ConsentRequest is the request body for POST /memory/consent
type ConsentRequest struct {
	ConsentGiven *bool `json:"consent_given" validate:"required"`
}

// SetConsent handles POST /memory/consent
func (h *MemoryHandler) SetConsent(c echo.Context) error {
	tenantID := c.Get("tenant_id").(uuid.UUID)
	userID := c.Get("user_id").(uuid.UUID)

	var req ConsentRequest
	if err := c.Bind(&req); err != nil || req.ConsentGiven == nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "consent_given is required"})
	}

	if err := h.service.SetConsent(tenantID, userID, *req.ConsentGiven); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to update consent"})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"consent_given": *req.ConsentGiven,
		"message":       "Consent updated",
	})
}
