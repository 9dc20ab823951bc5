package identity

import (
	"errors"
	"fmt"

	"omnichat/pkg/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// MappingStore persists external-to-internal identity mappings
type MappingStore interface {
	FindUserMap(integrationID uuid.UUID, externalUserID string) (*models.IntegrationUserMap, error)
	CreateUserMap(mapping *models.IntegrationUserMap) error
	FindConversationMap(integrationID uuid.UUID, externalConvID string) (*models.IntegrationConversationMap, error)
	CreateConversationMap(mapping *models.IntegrationConversationMap) error
}

// UserStore creates shadow user records
type UserStore interface {
	Create(user *models.User) error
}

// ConversationStore creates conversations for first-contact threads
type ConversationStore interface {
	Create(conversation *models.Conversation) error
}

// Resolver maps platform identities onto stable internal user and
// conversation IDs, creating shadow records on first contact. Resolution is
// idempotent: concurrent webhook deliveries for the same external identity
// race on the mapping table's unique index and both end up with the winner.
type Resolver struct {
	mappings      MappingStore
	users         UserStore
	conversations ConversationStore
}

// NewResolver creates a new identity resolver
func NewResolver(mappings MappingStore, users UserStore, conversations ConversationStore) *Resolver {
	return &Resolver{
		mappings:      mappings,
		users:         users,
		conversations: conversations,
	}
}

// ResolveUser returns the internal user ID for an external platform user,
// creating a shadow user and mapping when none exists yet.
func (r *Resolver) ResolveUser(integrationID, tenantID uuid.UUID, externalUserID, displayName string) (uuid.UUID, error) {
	existing, err := r.mappings.FindUserMap(integrationID, externalUserID)
	if err == nil {
		return existing.InternalUserID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return uuid.Nil, fmt.Errorf("failed to look up user mapping: %w", err)
	}

	if displayName == "" {
		displayName = fmt.Sprintf("User %s", externalUserID)
	}

	user := &models.User{
		BaseTenantModel: models.BaseTenantModel{TenantID: tenantID},
		ExternalID:      fmt.Sprintf("integration:%s:%s", integrationID, externalUserID),
		DisplayName:     displayName,
		Role:            "user",
		Metadata: models.JSONMap{
			"integration_id":   integrationID.String(),
			"external_user_id": externalUserID,
		},
	}
	if err := r.users.Create(user); err != nil {
		return uuid.Nil, fmt.Errorf("failed to create shadow user: %w", err)
	}

	mapping := &models.IntegrationUserMap{
		IntegrationID:  integrationID,
		ExternalUserID: externalUserID,
		InternalUserID: user.ID,
	}
	if err := r.mappings.CreateUserMap(mapping); err != nil {
		return uuid.Nil, fmt.Errorf("failed to create user mapping: %w", err)
	}

	// a concurrent resolve may have won the insert; the mapping row is the
	// source of truth either way
	winner, err := r.mappings.FindUserMap(integrationID, externalUserID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to refetch user mapping: %w", err)
	}
	if winner.InternalUserID != user.ID {
		log.Debug().
			Str("integration_id", integrationID.String()).
			Str("external_user_id", externalUserID).
			Msg("Lost shadow-user creation race, using existing mapping")
	}
	return winner.InternalUserID, nil
}

// ResolveConversation returns the internal conversation ID for an external
// chat/channel/thread, creating the conversation and mapping on first contact.
func (r *Resolver) ResolveConversation(integrationID, tenantID, userID uuid.UUID, externalConvID, channel string) (uuid.UUID, error) {
	existing, err := r.mappings.FindConversationMap(integrationID, externalConvID)
	if err == nil {
		return existing.InternalConvID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return uuid.Nil, fmt.Errorf("failed to look up conversation mapping: %w", err)
	}

	conversation := &models.Conversation{
		BaseTenantModel: models.BaseTenantModel{TenantID: tenantID},
		UserID:          userID,
		Channel:         channel,
		Metadata: models.JSONMap{
			"integration_id":   integrationID.String(),
			"external_conv_id": externalConvID,
		},
	}
	if err := r.conversations.Create(conversation); err != nil {
		return uuid.Nil, fmt.Errorf("failed to create conversation: %w", err)
	}

	mapping := &models.IntegrationConversationMap{
		IntegrationID:  integrationID,
		ExternalConvID: externalConvID,
		InternalConvID: conversation.ID,
	}
	if err := r.mappings.CreateConversationMap(mapping); err != nil {
		return uuid.Nil, fmt.Errorf("failed to create conversation mapping: %w", err)
	}

	winner, err := r.mappings.FindConversationMap(integrationID, externalConvID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to refetch conversation mapping: %w", err)
	}
	return winner.InternalConvID, nil
}
