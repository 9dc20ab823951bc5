package memory

import (
	"testing"

	"omnichat/pkg/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type fakeStore struct {
	entries []models.MemoryEntry
}

func (f *fakeStore) ListActive(tenantID, userID uuid.UUID) ([]models.MemoryEntry, error) {
	return f.entries, nil
}

func (f *fakeStore) Upsert(entry *models.MemoryEntry) error {
	for i, e := range f.entries {
		if e.Category == entry.Category && e.Key == entry.Key {
			f.entries[i].Value = entry.Value
			return nil
		}
	}
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeStore) UpdateValue(id, tenantID, userID uuid.UUID, value string) (*models.MemoryEntry, error) {
	for i, e := range f.entries {
		if e.ID == id {
			f.entries[i].Value = value
			return &f.entries[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeStore) Delete(id, tenantID, userID uuid.UUID) error {
	for i, e := range f.entries {
		if e.ID == id {
			f.entries = append(f.entries[:i], f.entries[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeStore) DeleteAll(tenantID, userID uuid.UUID) (int64, error) {
	n := int64(len(f.entries))
	f.entries = nil
	return n, nil
}

func (f *fakeStore) SetConsent(tenantID, userID uuid.UUID, consent bool) error {
	for i := range f.entries {
		f.entries[i].ConsentGiven = consent
	}
	return nil
}

func TestUpsertReplacesValue(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store)
	tenantID, userID := uuid.New(), uuid.New()

	if _, err := svc.Upsert(tenantID, userID, "preferences", "language", "pt-BR"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Upsert(tenantID, userID, "preferences", "language", "en-US"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(store.entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(store.entries))
	}
	if store.entries[0].Value != "en-US" {
		t.Errorf("value = %q", store.entries[0].Value)
	}
}

func TestFormatForPrompt(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store)
	tenantID, userID := uuid.New(), uuid.New()

	got, err := svc.FormatForPrompt(tenantID, userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "" {
		t.Errorf("empty memories should render empty string, got %q", got)
	}

	svc.Upsert(tenantID, userID, "preferences", "language", "pt-BR")
	svc.Upsert(tenantID, userID, "context", "employer", "Acme Corp")

	got, err = svc.FormatForPrompt(tenantID, userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "User memories:\n- [preferences] language: pt-BR\n- [context] employer: Acme Corp"
	if got != want {
		t.Errorf("prompt block = %q, want %q", got, want)
	}
}

func TestDeleteAllReturnsCount(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store)
	tenantID, userID := uuid.New(), uuid.New()

	svc.Upsert(tenantID, userID, "a", "k1", "v1")
	svc.Upsert(tenantID, userID, "b", "k2", "v2")

	n, err := svc.DeleteAll(tenantID, userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Errorf("deleted %d, want 2", n)
	}
}
