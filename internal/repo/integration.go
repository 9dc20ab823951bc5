package repo

import (
	"omnichat/pkg/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// IntegrationRepository handles platform integration data access
type IntegrationRepository struct {
	db *gorm.DB
}

// NewIntegrationRepository creates a new integration repository
func NewIntegrationRepository(db *gorm.DB) *IntegrationRepository {
	return &IntegrationRepository{db: db}
}

// GetByID gets an integration by ID
func (r *IntegrationRepository) GetByID(id uuid.UUID) (*models.Integration, error) {
	var integration models.Integration
	err := r.db.Where("id = ?", id).First(&integration).Error
	if err != nil {
		return nil, err
	}
	return &integration, nil
}

// GetByIDAndTenant gets an integration by ID scoped to a tenant
func (r *IntegrationRepository) GetByIDAndTenant(id, tenantID uuid.UUID) (*models.Integration, error) {
	var integration models.Integration
	err := r.db.Where("id = ? AND tenant_id = ?", id, tenantID).First(&integration).Error
	if err != nil {
		return nil, err
	}
	return &integration, nil
}

// GetEnabledByTenantAndPlatform finds the enabled integration for a platform
func (r *IntegrationRepository) GetEnabledByTenantAndPlatform(tenantID uuid.UUID, platform string) (*models.Integration, error) {
	var integration models.Integration
	err := r.db.Where("tenant_id = ? AND platform = ? AND enabled = ?", tenantID, platform, true).
		First(&integration).Error
	if err != nil {
		return nil, err
	}
	return &integration, nil
}

// ListByTenant lists all integrations for a tenant
func (r *IntegrationRepository) ListByTenant(tenantID uuid.UUID) ([]models.Integration, error) {
	var integrations []models.Integration
	err := r.db.Where("tenant_id = ?", tenantID).Order("created_at ASC").Find(&integrations).Error
	return integrations, err
}

// Create creates a new integration
func (r *IntegrationRepository) Create(integration *models.Integration) error {
	return r.db.Create(integration).Error
}

// Update updates an integration
func (r *IntegrationRepository) Update(integration *models.Integration) error {
	return r.db.Save(integration).Error
}

// Delete deletes an integration (soft delete)
func (r *IntegrationRepository) Delete(id, tenantID uuid.UUID) error {
	result := r.db.Where("id = ? AND tenant_id = ?", id, tenantID).Delete(&models.Integration{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// FindUserMap looks up an external user mapping
func (r *IntegrationRepository) FindUserMap(integrationID uuid.UUID, externalUserID string) (*models.IntegrationUserMap, error) {
	var mapping models.IntegrationUserMap
	err := r.db.Where("integration_id = ? AND external_user_id = ?", integrationID, externalUserID).
		First(&mapping).Error
	if err != nil {
		return nil, err
	}
	return &mapping, nil
}

// CreateUserMap inserts a user mapping. Concurrent inserts for the same
// external user collide on the unique index; the conflict is ignored and the
// caller refetches the winner.
func (r *IntegrationRepository) CreateUserMap(mapping *models.IntegrationUserMap) error {
	return r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(mapping).Error
}

// FindConversationMap looks up an external conversation mapping
func (r *IntegrationRepository) FindConversationMap(integrationID uuid.UUID, externalConvID string) (*models.IntegrationConversationMap, error) {
	var mapping models.IntegrationConversationMap
	err := r.db.Where("integration_id = ? AND external_conversation_id = ?", integrationID, externalConvID).
		First(&mapping).Error
	if err != nil {
		return nil, err
	}
	return &mapping, nil
}

// CreateConversationMap inserts a conversation mapping, ignoring unique
// conflicts the same way as CreateUserMap
func (r *IntegrationRepository) CreateConversationMap(mapping *models.IntegrationConversationMap) error {
	return r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(mapping).Error
}

// IntegrationEventRepository appends webhook processing audit records
type IntegrationEventRepository struct {
	db *gorm.DB
}

// NewIntegrationEventRepository creates a new integration event repository
func NewIntegrationEventRepository(db *gorm.DB) *IntegrationEventRepository {
	return &IntegrationEventRepository{db: db}
}

// Create appends an event row. Failures are logged and swallowed so webhook
// processing never fails on audit writes.
func (r *IntegrationEventRepository) Create(event *models.IntegrationEvent) {
	if err := r.db.Create(event).Error; err != nil {
		log.Error().Err(err).
			Str("platform", event.Platform).
			Str("event_type", event.EventType).
			Msg("Failed to record integration event")
	}
}

// ListByIntegration lists recent events for an integration
func (r *IntegrationEventRepository) ListByIntegration(integrationID, tenantID uuid.UUID, limit int) ([]models.IntegrationEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	var events []models.IntegrationEvent
	err := r.db.Where("integration_id = ? AND tenant_id = ?", integrationID, tenantID).
		Order("created_at DESC").
		Limit(limit).
		Find(&events).Error
	return events, err
}
