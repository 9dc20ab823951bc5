package models

// PaginationResult represents paginated results
type PaginationResult[T any] struct {
	Data       []T   `json:"data"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	TotalPages int   `json:"total_pages"`
}

// ConversationWithMessageCount represents a conversation with its message count
type ConversationWithMessageCount struct {
	Conversation
	MessageCount int64 `json:"message_count"`
}

// GetAllModels returns all models for GORM AutoMigrate
func GetAllModels() []interface{} {
	return []interface{}{
		&Tenant{},
		&User{},
		&Conversation{},
		&Message{},
		&Integration{},
		&IntegrationUserMap{},
		&IntegrationConversationMap{},
		&IntegrationEvent{},
		&Tool{},
		&ToolExecution{},
		&KnowledgeSource{},
		&Document{},
		&DocumentChunk{},
		&MemoryEntry{},
	}
}
