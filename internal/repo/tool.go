package repo

import (
	"omnichat/pkg/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ToolRepository handles tool registry data access
type ToolRepository struct {
	db *gorm.DB
}

// NewToolRepository creates a new tool repository
func NewToolRepository(db *gorm.DB) *ToolRepository {
	return &ToolRepository{db: db}
}

// GetByIDAndTenant gets a tool by ID scoped to a tenant
func (r *ToolRepository) GetByIDAndTenant(id, tenantID uuid.UUID) (*models.Tool, error) {
	var tool models.Tool
	err := r.db.Where("id = ? AND tenant_id = ?", id, tenantID).First(&tool).Error
	if err != nil {
		return nil, err
	}
	return &tool, nil
}

// GetEnabledByIDAndTenant gets an enabled tool by ID scoped to a tenant
func (r *ToolRepository) GetEnabledByIDAndTenant(id, tenantID uuid.UUID) (*models.Tool, error) {
	var tool models.Tool
	err := r.db.Where("id = ? AND tenant_id = ? AND enabled = ?", id, tenantID, true).
		First(&tool).Error
	if err != nil {
		return nil, err
	}
	return &tool, nil
}

// GetEnabledByName finds an enabled tool by its registry name
func (r *ToolRepository) GetEnabledByName(tenantID uuid.UUID, name string) (*models.Tool, error) {
	var tool models.Tool
	err := r.db.Where("tenant_id = ? AND name = ? AND enabled = ?", tenantID, name, true).
		First(&tool).Error
	if err != nil {
		return nil, err
	}
	return &tool, nil
}

// ListByTenant lists all tools for a tenant
func (r *ToolRepository) ListByTenant(tenantID uuid.UUID) ([]models.Tool, error) {
	var tools []models.Tool
	err := r.db.Where("tenant_id = ?", tenantID).Order("name ASC").Find(&tools).Error
	return tools, err
}

// ListEnabledByTenant lists enabled tools, for building model tool schemas
func (r *ToolRepository) ListEnabledByTenant(tenantID uuid.UUID) ([]models.Tool, error) {
	var tools []models.Tool
	err := r.db.Where("tenant_id = ? AND enabled = ?", tenantID, true).
		Order("name ASC").
		Find(&tools).Error
	return tools, err
}

// Create creates a new tool
func (r *ToolRepository) Create(tool *models.Tool) error {
	return r.db.Create(tool).Error
}

// Update updates a tool
func (r *ToolRepository) Update(tool *models.Tool) error {
	return r.db.Save(tool).Error
}

// Delete deletes a tool (soft delete)
func (r *ToolRepository) Delete(id, tenantID uuid.UUID) error {
	result := r.db.Where("id = ? AND tenant_id = ?", id, tenantID).Delete(&models.Tool{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ToolExecutionRepository handles tool execution state records
type ToolExecutionRepository struct {
	db *gorm.DB
}

// NewToolExecutionRepository creates a new tool execution repository
func NewToolExecutionRepository(db *gorm.DB) *ToolExecutionRepository {
	return &ToolExecutionRepository{db: db}
}

// Create creates a new execution record
func (r *ToolExecutionRepository) Create(execution *models.ToolExecution) error {
	return r.db.Create(execution).Error
}

// GetByIDAndTenant gets an execution by ID scoped to a tenant
func (r *ToolExecutionRepository) GetByIDAndTenant(id, tenantID uuid.UUID) (*models.ToolExecution, error) {
	var execution models.ToolExecution
	err := r.db.Where("id = ? AND tenant_id = ?", id, tenantID).First(&execution).Error
	if err != nil {
		return nil, err
	}
	return &execution, nil
}

// Update updates an execution record
func (r *ToolExecutionRepository) Update(execution *models.ToolExecution) error {
	return r.db.Save(execution).Error
}

// ListByConversation lists executions for a conversation, newest first
func (r *ToolExecutionRepository) ListByConversation(conversationID, tenantID uuid.UUID) ([]models.ToolExecution, error) {
	var executions []models.ToolExecution
	err := r.db.Where("conversation_id = ? AND tenant_id = ?", conversationID, tenantID).
		Order("created_at DESC").
		Find(&executions).Error
	return executions, err
}
