package store

import (
	"context"
)

// Journal action values.
const (
	ActionWatered    = "watered"
	ActionMisted     = "misted"
	ActionFertilized = "fertilized"
	ActionPruned     = "pruned"
	ActionRepotted   = "repotted"
	ActionNote       = "note"
)

// JournalEntry is the object representing a care log entry for a plant.
type JournalEntry struct {
	ID        int32
	CreatorID int32
	PlantID   int32
	CreatedTs int64

	Action string
	Note   string
}

// FindJournalEntry is the find condition for journal entry.
type FindJournalEntry struct {
	ID        *int32
	CreatorID *int32
	PlantID   *int32
	Action    *string
	// CreatedTsAfter filters entries created after the given timestamp,
	// used to find a recent action to attach a note to.
	CreatedTsAfter *int64
	Limit          *int
}

// UpdateJournalEntry is the update request for journal entry.
type UpdateJournalEntry struct {
	ID   int32
	Note *string
}

// CreateJournalEntry creates a new journal entry.
func (s *Store) CreateJournalEntry(ctx context.Context, create *JournalEntry) (*JournalEntry, error) {
	return s.driver.CreateJournalEntry(ctx, create)
}

// ListJournalEntries lists journal entries with filter, newest first.
func (s *Store) ListJournalEntries(ctx context.Context, find *FindJournalEntry) ([]*JournalEntry, error) {
	return s.driver.ListJournalEntries(ctx, find)
}

// UpdateJournalEntry updates a journal entry.
func (s *Store) UpdateJournalEntry(ctx context.Context, update *UpdateJournalEntry) error {
	return s.driver.UpdateJournalEntry(ctx, update)
}
