package memory

import (
	"fmt"
	"strings"

	"omnichat/pkg/models"

	"github.com/google/uuid"
)

// Store persists memory entries
type Store interface {
	ListActive(tenantID, userID uuid.UUID) ([]models.MemoryEntry, error)
	Upsert(entry *models.MemoryEntry) error
	UpdateValue(id, tenantID, userID uuid.UUID, value string) (*models.MemoryEntry, error)
	Delete(id, tenantID, userID uuid.UUID) error
	DeleteAll(tenantID, userID uuid.UUID) (int64, error)
	SetConsent(tenantID, userID uuid.UUID, consent bool) error
}

// Service manages consent-gated user memories and renders them for prompts
type Service struct {
	store Store
}

// NewService creates a new memory service
func NewService(store Store) *Service {
	return &Service{store: store}
}

// GetUserMemory returns the user's active memories
func (s *Service) GetUserMemory(tenantID, userID uuid.UUID) ([]models.MemoryEntry, error) {
	return s.store.ListActive(tenantID, userID)
}

// Upsert stores a memory, replacing the value when the (category, key) pair
// already exists
func (s *Service) Upsert(tenantID, userID uuid.UUID, category, key, value string) (*models.MemoryEntry, error) {
	entry := &models.MemoryEntry{
		BaseTenantModel: models.BaseTenantModel{TenantID: tenantID},
		UserID:          userID,
		Category:        category,
		Key:             key,
		Value:           value,
		ConsentGiven:    true,
	}
	if err := s.store.Upsert(entry); err != nil {
		return nil, fmt.Errorf("failed to upsert memory: %w", err)
	}
	return entry, nil
}

// Update changes the value of one memory entry
func (s *Service) Update(id, tenantID, userID uuid.UUID, value string) (*models.MemoryEntry, error) {
	return s.store.UpdateValue(id, tenantID, userID, value)
}

// Delete removes one memory entry
func (s *Service) Delete(id, tenantID, userID uuid.UUID) error {
	return s.store.Delete(id, tenantID, userID)
}

// DeleteAll removes every memory for a user, returning the count removed
func (s *Service) DeleteAll(tenantID, userID uuid.UUID) (int64, error) {
	return s.store.DeleteAll(tenantID, userID)
}

// SetConsent flips the consent flag on all of a user's memories
func (s *Service) SetConsent(tenantID, userID uuid.UUID, consent bool) error {
	return s.store.SetConsent(tenantID, userID, consent)
}

// FormatForPrompt renders active memories as a prompt block. Returns ""
// when the user has none, so prompt assembly can skip the section.
func (s *Service) FormatForPrompt(tenantID, userID uuid.UUID) (string, error) {
	memories, err := s.store.ListActive(tenantID, userID)
	if err != nil {
		return "", err
	}
	if len(memories) == 0 {
		return "", nil
	}

	lines := make([]string, 0, len(memories))
	for _, m := range memories {
		lines = append(lines, fmt.Sprintf("- [%s] %s: %s", m.Category, m.Key, m.Value))
	}
	return "User memories:\n" + strings.Join(lines, "\n"), nil
}
