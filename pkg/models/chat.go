package models

import (
	"github.com/google/uuid"
)

// Conversation status values
const (
	ConversationActive    = "active"
	ConversationArchived  = "archived"
	ConversationEscalated = "escalated"
	ConversationDeleted   = "deleted"
)

// Conversation represents one thread between a user and the assistant
type Conversation struct {
	BaseTenantModel
	UserID   uuid.UUID `gorm:"type:uuid;not null;index;constraint:OnDelete:RESTRICT" json:"user_id"`
	Channel  string    `gorm:"not null;default:'web'" json:"channel"` // web, slack, teams, api, mobile, discord, telegram, whatsapp
	Status   string    `gorm:"default:'active'" json:"status"`
	Metadata JSONMap   `gorm:"type:jsonb" json:"metadata"`

	// Relations
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// Message is append-only; rows are never mutated after insert
type Message struct {
	BaseTenantModel
	ConversationID uuid.UUID `gorm:"type:uuid;not null;index;constraint:OnDelete:RESTRICT" json:"conversation_id"`
	Role           string    `gorm:"not null" json:"role"` // user, assistant, system
	Content        string    `gorm:"type:text" json:"content"`
	Citations      JSONArray `gorm:"type:jsonb" json:"citations,omitempty"`
	ToolCalls      JSONArray `gorm:"type:jsonb" json:"tool_calls,omitempty"`
	ModelUsed      string    `json:"model_used,omitempty"`
	TokenCountIn   int       `gorm:"default:0" json:"token_count_in"`
	TokenCountOut  int       `gorm:"default:0" json:"token_count_out"`
	SafetyFlags    JSONMap   `gorm:"type:jsonb" json:"safety_flags,omitempty"`

	// Relations
	Conversation *Conversation `gorm:"foreignKey:ConversationID" json:"conversation,omitempty"`
}
