package models

import (
	"github.com/google/uuid"
)

// Tool execution states
const (
	ExecutionPending   = "pending"
	ExecutionConfirmed = "confirmed"
	ExecutionExecuting = "executing"
	ExecutionExecuted  = "executed"
	ExecutionFailed    = "failed"
)

// Tool is a tenant-scoped callable action exposed to the model
type Tool struct {
	BaseTenantModel
	Name            string  `gorm:"not null;index" json:"name" validate:"required"`
	DisplayName     string  `json:"display_name"`
	Description     string  `gorm:"type:text" json:"description"`
	InputSchema     JSONMap `gorm:"type:jsonb" json:"input_schema"`
	OutputSchema    JSONMap `gorm:"type:jsonb" json:"output_schema,omitempty"`
	EndpointConfig  JSONMap `gorm:"type:jsonb" json:"endpoint_config"`
	RiskLevel       string  `gorm:"default:'low'" json:"risk_level" validate:"omitempty,oneof=low medium high critical"`
	RequiresConfirm bool    `gorm:"default:false" json:"requires_confirm"`
	RateLimit       int     `gorm:"default:10" json:"rate_limit"` // invocations per minute per user
	Enabled         bool    `gorm:"default:true" json:"enabled"`
}

// ToolExecution is one invocation attempt of a tool
type ToolExecution struct {
	BaseTenantModel
	ToolID         uuid.UUID  `gorm:"type:uuid;not null;index" json:"tool_id"`
	ConversationID uuid.UUID  `gorm:"type:uuid;index" json:"conversation_id"`
	UserID         uuid.UUID  `gorm:"type:uuid;not null" json:"user_id"`
	InputArgs      JSONMap    `gorm:"type:jsonb" json:"input_args"`
	OutputResult   JSONMap    `gorm:"type:jsonb" json:"output_result,omitempty"`
	Status         string     `gorm:"not null;default:'pending'" json:"status"`
	ConfirmedBy    *uuid.UUID `gorm:"type:uuid" json:"confirmed_by,omitempty"`
	LatencyMS      int64      `gorm:"default:0" json:"latency_ms"`

	// Relations
	Tool *Tool `gorm:"foreignKey:ToolID" json:"tool,omitempty"`
}
