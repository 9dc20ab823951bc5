package models

// Tenant represents a company/organization
type Tenant struct {
	BaseModel
	Slug        string `gorm:"uniqueIndex;not null" json:"slug" validate:"required"`
	DisplayName string `gorm:"not null" json:"display_name" validate:"required"`
	Region      string `json:"region"`
	Tier        string `gorm:"default:'standard'" json:"tier"` // standard, enterprise, regulated
	Status      string `gorm:"default:'active'" json:"status"` // active, suspended
}

// User represents a person that can own conversations. Users created from
// platform identities carry an ExternalID and no credential (shadow users).
type User struct {
	BaseTenantModel
	ExternalID  string  `gorm:"index" json:"external_id"`
	DisplayName string  `json:"display_name"`
	Role        string  `gorm:"default:'user'" json:"role"` // user, admin, super_admin
	Metadata    JSONMap `gorm:"type:jsonb" json:"metadata"`
}
