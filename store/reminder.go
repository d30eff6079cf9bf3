package store

import (
	"context"
	"time"
)

// Reminder type values handled by the weather adjustment engine are
// TypeWatering and TypeMisting; the rest pass through untouched.
const (
	TypeWatering    = "watering"
	TypeMisting     = "misting"
	TypeFertilizing = "fertilizing"
	TypePruning     = "pruning"
	TypeRepotting   = "repotting"
	TypeInspection  = "inspection"
	TypeCustom      = "custom"
)

// DateLayout is the civil date layout used for due dates.
const DateLayout = "2006-01-02"

// Reminder is the object representing a care reminder.
type Reminder struct {
	ID        int32
	UID       string
	CreatorID int32
	PlantID   int32
	RowStatus RowStatus
	CreatedTs int64
	UpdatedTs int64

	ReminderType       string
	Title              string
	Frequency          string
	CustomIntervalDays *int

	// NextDue is the scheduled due date (civil date, DateLayout).
	NextDue string
	// SkipWeatherAdjustment opts this reminder out of weather adjustments.
	SkipWeatherAdjustment bool
	// WeatherAdjustedDue is a side-channel override set by the adjustment
	// engine and cleared by user action or completion.
	WeatherAdjustedDue      *string
	WeatherAdjustmentReason *string

	IsRecurring     bool
	LastCompletedTs *int64
}

// ParseNextDue parses the due date as midnight UTC.
func (r *Reminder) ParseNextDue() (time.Time, error) {
	return time.Parse(DateLayout, r.NextDue)
}

// ParseAdjustedDue parses the weather-adjusted due date, or returns false
// when no adjustment is present.
func (r *Reminder) ParseAdjustedDue() (time.Time, bool, error) {
	if r.WeatherAdjustedDue == nil || *r.WeatherAdjustedDue == "" {
		return time.Time{}, false, nil
	}
	t, err := time.Parse(DateLayout, *r.WeatherAdjustedDue)
	if err != nil {
		return time.Time{}, false, err
	}
	return t, true, nil
}

// EffectiveDue returns the weather-adjusted due date when present,
// otherwise the scheduled one.
func (r *Reminder) EffectiveDue() string {
	if r.WeatherAdjustedDue != nil && *r.WeatherAdjustedDue != "" {
		return *r.WeatherAdjustedDue
	}
	return r.NextDue
}

// FindReminder is the find condition for reminder.
type FindReminder struct {
	ID           *int32
	UID          *string
	CreatorID    *int32
	PlantID      *int32
	RowStatus    *RowStatus
	ReminderType *string

	// DueOnOrBefore filters on the effective due date (weather-adjusted
	// when present).
	DueOnOrBefore *string
	// DueAfter / DueOnOrBefore together express a window, used by the
	// calendar month view.
	DueAfter *string
}

// UpdateReminder is the update request for reminder.
type UpdateReminder struct {
	ID int32
	// CreatorID scopes the update to the owner when set.
	CreatorID *int32

	UpdatedTs             *int64
	RowStatus             *RowStatus
	Title                 *string
	ReminderType          *string
	Frequency             *string
	CustomIntervalDays    *int
	NextDue               *string
	SkipWeatherAdjustment *bool
	LastCompletedTs       *int64

	WeatherAdjustedDue      *string
	WeatherAdjustmentReason *string
	// ClearWeatherAdjustment resets both weather adjustment columns to NULL.
	ClearWeatherAdjustment bool
}

// DeleteReminder is the delete request for reminder.
type DeleteReminder struct {
	ID int32
}

// CreateReminder creates a new reminder.
func (s *Store) CreateReminder(ctx context.Context, create *Reminder) (*Reminder, error) {
	return s.driver.CreateReminder(ctx, create)
}

// ListReminders lists reminders with filter.
func (s *Store) ListReminders(ctx context.Context, find *FindReminder) ([]*Reminder, error) {
	return s.driver.ListReminders(ctx, find)
}

// GetReminder gets a reminder matching the find condition.
func (s *Store) GetReminder(ctx context.Context, find *FindReminder) (*Reminder, error) {
	list, err := s.driver.ListReminders(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

// UpdateReminder updates a reminder.
func (s *Store) UpdateReminder(ctx context.Context, update *UpdateReminder) error {
	return s.driver.UpdateReminder(ctx, update)
}

// DeleteReminder deletes a reminder.
func (s *Store) DeleteReminder(ctx context.Context, delete *DeleteReminder) error {
	return s.driver.DeleteReminder(ctx, delete)
}

// ListUsersWithActiveReminders returns IDs of users with at least one
// active reminder.
func (s *Store) ListUsersWithActiveReminders(ctx context.Context) ([]int32, error) {
	return s.driver.ListUsersWithActiveReminders(ctx)
}
