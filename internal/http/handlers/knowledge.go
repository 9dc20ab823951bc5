package handlers

import (
	"net/http"

	"omnichat/internal/knowledge"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type KnowledgeHandler struct {
	service *knowledge.Service
}

func NewKnowledgeHandler(service *knowledge.Service) *KnowledgeHandler {
	return &KnowledgeHandler{service: service}
}

// SearchRequest is the request body for POST /knowledge/search
type SearchRequest struct {
	Query      string   `json:"query" validate:"required"`
	TopK       int      `json:"top_k" validate:"omitempty,min=1,max=20"`
	UserGroups []string `json:"user_groups,omitempty"`
}

// Search handles POST /knowledge/search
func (h *KnowledgeHandler) Search(c echo.Context) error {
	tenantID := c.Get("tenant_id").(uuid.UUID)

	var req SearchRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	// Retrieval is optional infrastructure; without it search is empty
	var results []knowledge.SearchResult
	if h.service != nil {
		results = h.service.Search(c.Request().Context(), tenantID.String(), req.Query, req.TopK, req.UserGroups)
	}
	if results == nil {
		results = []knowledge.SearchResult{}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"results": results,
		"query":   req.Query,
		"count":   len(results),
	})
}
