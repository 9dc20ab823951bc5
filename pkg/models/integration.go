package models

import (
	"github.com/google/uuid"
)

// Platform identifiers for integrations
const (
	PlatformDiscord  = "discord"
	PlatformSlack    = "slack"
	PlatformTelegram = "telegram"
	PlatformTeams    = "teams"
	PlatformWhatsApp = "whatsapp"
)

// Integration is one tenant's connection to an external chat platform
type Integration struct {
	BaseTenantModel
	Platform  string     `gorm:"not null;index" json:"platform" validate:"required,oneof=discord slack telegram teams whatsapp"`
	Name      string     `gorm:"not null" json:"name" validate:"required"`
	Config    JSONMap    `gorm:"type:jsonb" json:"config,omitempty"`
	BotUserID *uuid.UUID `gorm:"type:uuid" json:"bot_user_id,omitempty"`
	Enabled   bool       `gorm:"default:true" json:"enabled"`
}

// IntegrationUserMap maps an external platform user ID to an internal user.
// The unique index makes lazy first-contact creation idempotent across
// concurrent webhook deliveries.
type IntegrationUserMap struct {
	BaseModel
	IntegrationID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_integration_user,priority:1" json:"integration_id"`
	ExternalUserID string    `gorm:"not null;uniqueIndex:idx_integration_user,priority:2" json:"external_user_id"`
	InternalUserID uuid.UUID `gorm:"type:uuid;not null" json:"internal_user_id"`
}

// IntegrationConversationMap maps an external chat/channel/thread ID to an
// internal conversation, scoped per integration so IDs from different
// platforms never collide.
type IntegrationConversationMap struct {
	BaseModel
	IntegrationID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_integration_conv,priority:1" json:"integration_id"`
	ExternalConvID string    `gorm:"not null;uniqueIndex:idx_integration_conv,priority:2" json:"external_conv_id"`
	InternalConvID uuid.UUID `gorm:"type:uuid;not null" json:"internal_conv_id"`
}

// IntegrationEvent records one processed (or failed) webhook delivery for
// later correlation
type IntegrationEvent struct {
	BaseTenantModel
	IntegrationID uuid.UUID `gorm:"type:uuid;not null;index" json:"integration_id"`
	Platform      string    `gorm:"not null" json:"platform"`
	EventType     string    `gorm:"not null" json:"event_type"`
	Payload       JSONMap   `gorm:"type:jsonb" json:"payload,omitempty"`
	Processed     bool      `gorm:"default:false" json:"processed"`
	Error         string    `gorm:"type:text" json:"error,omitempty"`
}
