package models

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Document sensitivity levels
const (
	SensitivityPublic   = "public"
	SensitivityInternal = "internal"
	SensitivityGroup    = "group"
)

// KnowledgeSource is an external system documents are ingested from. The
// ingestion pipeline itself lives outside this service; rows here drive it.
type KnowledgeSource struct {
	BaseTenantModel
	Name             string  `gorm:"not null" json:"name" validate:"required"`
	SourceType       string  `gorm:"not null" json:"source_type"`
	ConnectionConfig JSONMap `gorm:"type:jsonb" json:"connection_config,omitempty"`
	ACLMode          string  `gorm:"default:'rbac'" json:"acl_mode"`
	SyncSchedule     string  `gorm:"default:'0 */4 * * *'" json:"sync_schedule"`
	Status           string  `gorm:"default:'pending'" json:"status"`
}

// Document holds per-document metadata; chunk vectors live in Qdrant
type Document struct {
	BaseTenantModel
	SourceID    *uuid.UUID     `gorm:"type:uuid;index" json:"source_id,omitempty"`
	Title       string         `gorm:"not null" json:"title"`
	URL         string         `json:"url,omitempty"`
	Sensitivity string         `gorm:"default:'internal'" json:"sensitivity"`
	ACLGroups   pq.StringArray `gorm:"type:text[]" json:"acl_groups,omitempty"`
	Metadata    JSONMap        `gorm:"type:jsonb" json:"metadata,omitempty"`
}

// DocumentChunk mirrors one indexed chunk; the embedding itself is stored in
// the vector index keyed by this row's ID
type DocumentChunk struct {
	BaseTenantModel
	DocumentID uuid.UUID `gorm:"type:uuid;not null;index" json:"document_id"`
	Ordinal    int       `gorm:"default:0" json:"ordinal"`
	Content    string    `gorm:"type:text" json:"content"`
	Metadata   JSONMap   `gorm:"type:jsonb" json:"metadata,omitempty"`

	// Relations
	Document *Document `gorm:"foreignKey:DocumentID" json:"document,omitempty"`
}
