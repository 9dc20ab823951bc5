package models

import (
	"time"

	"github.com/google/uuid"
)

// MemoryEntry is one durable fact remembered about a user. Entries are only
// surfaced to the model when consent was given and they have not expired.
type MemoryEntry struct {
	BaseTenantModel
	UserID       uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_memory_entry,priority:1" json:"user_id"`
	Category     string     `gorm:"not null;uniqueIndex:idx_memory_entry,priority:2" json:"category"`
	Key          string     `gorm:"not null;uniqueIndex:idx_memory_entry,priority:3" json:"key"`
	Value        string     `gorm:"type:text;not null" json:"value"`
	ConsentGiven bool       `gorm:"default:true" json:"consent_given"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
}

// TableName overrides the default pluralization
func (MemoryEntry) TableName() string { return "user_memories" }
