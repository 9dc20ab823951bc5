package repo

import (
	"omnichat/pkg/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MemoryRepository handles user memory data access
type MemoryRepository struct {
	db *gorm.DB
}

// NewMemoryRepository creates a new memory repository
func NewMemoryRepository(db *gorm.DB) *MemoryRepository {
	return &MemoryRepository{db: db}
}

// ListActive returns consented, unexpired memories for a user, most recently
// updated first
func (r *MemoryRepository) ListActive(tenantID, userID uuid.UUID) ([]models.MemoryEntry, error) {
	var entries []models.MemoryEntry
	err := r.db.Where("tenant_id = ? AND user_id = ? AND consent_given = ?", tenantID, userID, true).
		Where("expires_at IS NULL OR expires_at > NOW()").
		Order("updated_at DESC").
		Find(&entries).Error
	return entries, err
}

// Upsert inserts a memory entry or updates the value under the
// (user, category, key) unique constraint
func (r *MemoryRepository) Upsert(entry *models.MemoryEntry) error {
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "user_id"},
			{Name: "category"},
			{Name: "key"},
		},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"value":      entry.Value,
			"updated_at": gorm.Expr("NOW()"),
		}),
	}).Create(entry).Error
}

// UpdateValue updates the value of one memory entry
func (r *MemoryRepository) UpdateValue(id, tenantID, userID uuid.UUID, value string) (*models.MemoryEntry, error) {
	result := r.db.Model(&models.MemoryEntry{}).
		Where("id = ? AND tenant_id = ? AND user_id = ?", id, tenantID, userID).
		Update("value", value)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}

	var entry models.MemoryEntry
	if err := r.db.Where("id = ?", id).First(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// Delete permanently removes one memory entry. Hard delete, both for consent
// semantics and so the upsert unique index is freed immediately.
func (r *MemoryRepository) Delete(id, tenantID, userID uuid.UUID) error {
	result := r.db.Unscoped().Where("id = ? AND tenant_id = ? AND user_id = ?", id, tenantID, userID).
		Delete(&models.MemoryEntry{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteAll permanently removes every memory entry for a user and returns
// the count
func (r *MemoryRepository) DeleteAll(tenantID, userID uuid.UUID) (int64, error) {
	result := r.db.Unscoped().Where("tenant_id = ? AND user_id = ?", tenantID, userID).
		Delete(&models.MemoryEntry{})
	return result.RowsAffected, result.Error
}

// SetConsent flips the consent flag across all of a user's memories
func (r *MemoryRepository) SetConsent(tenantID, userID uuid.UUID, consent bool) error {
	return r.db.Model(&models.MemoryEntry{}).
		Where("tenant_id = ? AND user_id = ?", tenantID, userID).
		Update("consent_given", consent).Error
}
