package store

import (
	"context"
	"database/sql"
)

// Driver is an interface for store driver.
// It contains all methods that store database driver should implement.
type Driver interface {
	GetDB() *sql.DB
	Close() error

	IsInitialized(ctx context.Context) (bool, error)
	Migrate(ctx context.Context) error

	// User model related methods.
	CreateUser(ctx context.Context, create *User) (*User, error)
	ListUsers(ctx context.Context, find *FindUser) ([]*User, error)
	UpdateUser(ctx context.Context, update *UpdateUser) (*User, error)
	DeleteUser(ctx context.Context, delete *DeleteUser) error

	// Plant model related methods.
	CreatePlant(ctx context.Context, create *Plant) (*Plant, error)
	ListPlants(ctx context.Context, find *FindPlant) ([]*Plant, error)
	UpdatePlant(ctx context.Context, update *UpdatePlant) error
	DeletePlant(ctx context.Context, delete *DeletePlant) error

	// Reminder model related methods.
	CreateReminder(ctx context.Context, create *Reminder) (*Reminder, error)
	ListReminders(ctx context.Context, find *FindReminder) ([]*Reminder, error)
	UpdateReminder(ctx context.Context, update *UpdateReminder) error
	DeleteReminder(ctx context.Context, delete *DeleteReminder) error
	// ListUsersWithActiveReminders returns IDs of users that have at least
	// one active reminder, for the daily adjustment batch.
	ListUsersWithActiveReminders(ctx context.Context) ([]int32, error)

	// JournalEntry model related methods.
	CreateJournalEntry(ctx context.Context, create *JournalEntry) (*JournalEntry, error)
	ListJournalEntries(ctx context.Context, find *FindJournalEntry) ([]*JournalEntry, error)
	UpdateJournalEntry(ctx context.Context, update *UpdateJournalEntry) error
}
