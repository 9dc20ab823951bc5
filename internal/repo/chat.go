package repo

import (
	"omnichat/pkg/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ConversationRepository handles conversation data access
type ConversationRepository struct {
	db *gorm.DB
}

// NewConversationRepository creates a new conversation repository
func NewConversationRepository(db *gorm.DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

// Create creates a new conversation
func (r *ConversationRepository) Create(conversation *models.Conversation) error {
	return r.db.Create(conversation).Error
}

// GetByIDAndTenant gets a conversation by ID scoped to a tenant
func (r *ConversationRepository) GetByIDAndTenant(id, tenantID uuid.UUID) (*models.Conversation, error) {
	var conversation models.Conversation
	err := r.db.Where("id = ? AND tenant_id = ?", id, tenantID).First(&conversation).Error
	if err != nil {
		return nil, err
	}
	return &conversation, nil
}

// ListByTenantAndUser lists a user's conversations with message counts,
// most recently active first. Deleted conversations are excluded.
func (r *ConversationRepository) ListByTenantAndUser(tenantID, userID uuid.UUID, limit, offset int) (models.PaginationResult[models.ConversationWithMessageCount], error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var conversations []models.ConversationWithMessageCount
	var total int64

	base := r.db.Model(&models.Conversation{}).
		Where("tenant_id = ? AND user_id = ? AND status != ?", tenantID, userID, models.ConversationDeleted)

	if err := base.Count(&total).Error; err != nil {
		return models.PaginationResult[models.ConversationWithMessageCount]{}, err
	}

	query := `
		SELECT
			c.*,
			COALESCE(COUNT(m.id), 0) as message_count
		FROM conversations c
		LEFT JOIN messages m ON m.conversation_id = c.id
		WHERE c.tenant_id = ? AND c.user_id = ? AND c.status != ? AND c.deleted_at IS NULL
		GROUP BY c.id
		ORDER BY c.updated_at DESC
		LIMIT ? OFFSET ?
	`
	err := r.db.Raw(query, tenantID, userID, models.ConversationDeleted, limit, offset).Scan(&conversations).Error
	if err != nil {
		return models.PaginationResult[models.ConversationWithMessageCount]{}, err
	}

	return models.PaginationResult[models.ConversationWithMessageCount]{
		Data:       conversations,
		Total:      total,
		Page:       offset/limit + 1,
		PerPage:    limit,
		TotalPages: int((total + int64(limit) - 1) / int64(limit)),
	}, nil
}

// UpdateStatus transitions a conversation's status
func (r *ConversationRepository) UpdateStatus(id, tenantID uuid.UUID, status string) error {
	result := r.db.Model(&models.Conversation{}).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Touch bumps updated_at so ordering reflects latest activity
func (r *ConversationRepository) Touch(id uuid.UUID) error {
	return r.db.Model(&models.Conversation{}).
		Where("id = ?", id).
		Update("updated_at", gorm.Expr("NOW()")).Error
}

// MessageRepository handles message data access. Messages are append-only.
type MessageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a new message repository
func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Create appends a message to a conversation
func (r *MessageRepository) Create(message *models.Message) error {
	return r.db.Create(message).Error
}

// ListByConversation lists messages for a conversation in chronological order
func (r *MessageRepository) ListByConversation(conversationID, tenantID uuid.UUID, limit int) ([]models.Message, error) {
	var messages []models.Message
	query := r.db.Where("conversation_id = ? AND tenant_id = ?", conversationID, tenantID).
		Order("created_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&messages).Error
	return messages, err
}
