package reminder

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/verdanthq/verdant/store"
)

// Service wraps reminder CRUD and lifecycle operations around the store,
// wiring the adjustment evaluator into the due-today read path.
type Service struct {
	store     *store.Store
	evaluator *Evaluator
	now       func() time.Time
}

// NewService creates a reminder service.
func NewService(s *store.Store, evaluator *Evaluator) *Service {
	return &Service{
		store:     s,
		evaluator: evaluator,
		now:       time.Now,
	}
}

// SetNow overrides the clock. Intended for tests.
func (s *Service) SetNow(now func() time.Time) {
	s.now = now
	s.evaluator.SetNow(now)
}

func (s *Service) today() time.Time {
	n := s.now().UTC()
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC)
}

// CreateRequest is the input for Create.
type CreateRequest struct {
	CreatorID             int32
	PlantID               int32
	ReminderType          string
	Title                 string
	Frequency             string
	CustomIntervalDays    *int
	SkipWeatherAdjustment bool
}

// Create validates the frequency, computes the first due date and inserts
// the reminder.
func (s *Service) Create(ctx context.Context, req *CreateRequest) (*store.Reminder, error) {
	intervalDays, ok := FrequencyDays[req.Frequency]
	if !ok && req.Frequency != "custom" {
		return nil, errors.Errorf("invalid frequency: %s", req.Frequency)
	}
	if req.Frequency == "custom" {
		if req.CustomIntervalDays == nil || *req.CustomIntervalDays <= 0 {
			return nil, errors.New("custom_interval_days required for custom frequency")
		}
		intervalDays = *req.CustomIntervalDays
	}

	nextDue := s.today().AddDate(0, 0, intervalDays)

	return s.store.CreateReminder(ctx, &store.Reminder{
		UID:                   uuid.NewString(),
		CreatorID:             req.CreatorID,
		PlantID:               req.PlantID,
		ReminderType:          req.ReminderType,
		Title:                 req.Title,
		Frequency:             req.Frequency,
		CustomIntervalDays:    req.CustomIntervalDays,
		NextDue:               nextDue.Format(store.DateLayout),
		SkipWeatherAdjustment: req.SkipWeatherAdjustment,
		IsRecurring:           req.Frequency != "one_time",
	})
}

// List returns a user's reminders, optionally scoped to one plant.
func (s *Service) List(ctx context.Context, creatorID int32, plantID *int32, activeOnly bool) ([]*store.Reminder, error) {
	find := &store.FindReminder{CreatorID: &creatorID, PlantID: plantID}
	if activeOnly {
		normal := store.Normal
		find.RowStatus = &normal
	}
	return s.store.ListReminders(ctx, find)
}

// Get returns one reminder with an ownership check.
func (s *Service) Get(ctx context.Context, id, creatorID int32) (*store.Reminder, error) {
	rem, err := s.store.GetReminder(ctx, &store.FindReminder{ID: &id, CreatorID: &creatorID})
	if err != nil {
		return nil, err
	}
	if rem == nil {
		return nil, errors.New("reminder not found")
	}
	return rem, nil
}

// DueToday returns the user's due reminders after applying automatic weather
// adjustments, plus the pending suggestions. Without a profile city the raw
// due list is returned with no suggestions.
func (s *Service) DueToday(ctx context.Context, user *store.User) ([]*DueReminder, []*Suggestion, error) {
	normal := store.Normal
	today := s.today().Format(store.DateLayout)
	reminders, err := s.store.ListReminders(ctx, &store.FindReminder{
		CreatorID:     &user.ID,
		RowStatus:     &normal,
		DueOnOrBefore: &today,
	})
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to list due reminders")
	}
	if len(reminders) == 0 {
		return []*DueReminder{}, []*Suggestion{}, nil
	}

	due := make([]*DueReminder, 0, len(reminders))
	if user.City == "" {
		for _, rem := range reminders {
			due = append(due, &DueReminder{Reminder: rem})
		}
		return due, []*Suggestion{}, nil
	}

	plantsByID, err := s.plantsFor(ctx, user.ID, reminders)
	if err != nil {
		return nil, nil, err
	}

	due, _ = s.evaluator.ApplyAutomatic(ctx, s.store, reminders, plantsByID, user.City)
	suggestions := s.evaluator.CollectSuggestions(ctx, reminders, plantsByID, user.City)
	return due, suggestions, nil
}

// Upcoming returns active reminders due within the next `days` days,
// excluding today.
func (s *Service) Upcoming(ctx context.Context, creatorID int32, days int) ([]*store.Reminder, error) {
	if days <= 0 {
		days = 7
	}
	normal := store.Normal
	after := s.today().Format(store.DateLayout)
	until := s.today().AddDate(0, 0, days).Format(store.DateLayout)
	return s.store.ListReminders(ctx, &store.FindReminder{
		CreatorID:     &creatorID,
		RowStatus:     &normal,
		DueAfter:      &after,
		DueOnOrBefore: &until,
	})
}

// Month returns active reminders due within a calendar month, for the
// calendar view.
func (s *Service) Month(ctx context.Context, creatorID int32, year, month int) ([]*store.Reminder, error) {
	if month < 1 || month > 12 {
		return nil, errors.Errorf("invalid month: %d", month)
	}
	normal := store.Normal
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	after := first.AddDate(0, 0, -1).Format(store.DateLayout)
	until := first.AddDate(0, 1, -1).Format(store.DateLayout)
	return s.store.ListReminders(ctx, &store.FindReminder{
		CreatorID:     &creatorID,
		RowStatus:     &normal,
		DueAfter:      &after,
		DueOnOrBefore: &until,
	})
}

// Complete marks a reminder done: advances the schedule, clears any weather
// override and writes a journal entry. One-time reminders are archived.
// A weather adjustment that was in effect is recorded in the journal note.
func (s *Service) Complete(ctx context.Context, id, creatorID int32) error {
	rem, err := s.Get(ctx, id, creatorID)
	if err != nil {
		return err
	}

	weatherReason := ""
	if rem.WeatherAdjustmentReason != nil {
		weatherReason = *rem.WeatherAdjustmentReason
	}

	nowTs := s.now().Unix()
	update := &store.UpdateReminder{
		ID:                     rem.ID,
		CreatorID:              &creatorID,
		UpdatedTs:              &nowTs,
		LastCompletedTs:        &nowTs,
		ClearWeatherAdjustment: true,
	}

	if rem.IsRecurring {
		interval := FrequencyDays[rem.Frequency]
		if rem.Frequency == "custom" && rem.CustomIntervalDays != nil {
			interval = *rem.CustomIntervalDays
		}
		if interval <= 0 {
			interval = 1
		}
		nextDue := s.today().AddDate(0, 0, interval).Format(store.DateLayout)
		update.NextDue = &nextDue
	} else {
		archived := store.Archived
		update.RowStatus = &archived
	}

	if err := s.store.UpdateReminder(ctx, update); err != nil {
		return errors.Wrap(err, "failed to complete reminder")
	}

	note := ""
	if weatherReason != "" {
		note = fmt.Sprintf("[Weather-adjusted from original schedule: %s]", weatherReason)
	}
	if _, err := s.store.CreateJournalEntry(ctx, &store.JournalEntry{
		CreatorID: creatorID,
		PlantID:   rem.PlantID,
		Action:    journalAction(rem.ReminderType),
		Note:      note,
	}); err != nil {
		// Journal logging must not fail the completion.
		return nil
	}
	return nil
}

// Snooze pushes a reminder's schedule out by 1-30 days from today and
// clears any weather override.
func (s *Service) Snooze(ctx context.Context, id, creatorID int32, days int) error {
	if days < 1 || days > 30 {
		return errors.New("snooze days must be between 1 and 30")
	}
	if _, err := s.Get(ctx, id, creatorID); err != nil {
		return err
	}

	nowTs := s.now().Unix()
	nextDue := s.today().AddDate(0, 0, days).Format(store.DateLayout)
	return s.store.UpdateReminder(ctx, &store.UpdateReminder{
		ID:                     id,
		CreatorID:              &creatorID,
		UpdatedTs:              &nowTs,
		NextDue:                &nextDue,
		ClearWeatherAdjustment: true,
	})
}

// AdjustByDays applies a manual adjustment through the weather-adjustment
// side channel so it displays consistently with automatic ones. Range is
// -7 to +30 days; zero is rejected.
func (s *Service) AdjustByDays(ctx context.Context, id, creatorID int32, days int, reason string) error {
	if days < -7 || days > 30 {
		return errors.New("adjustment days must be between -7 and +30")
	}
	if days == 0 {
		return errors.New("cannot adjust by 0 days")
	}

	rem, err := s.Get(ctx, id, creatorID)
	if err != nil {
		return err
	}
	nextDue, err := rem.ParseNextDue()
	if err != nil {
		return errors.Wrap(err, "invalid due date")
	}

	if reason == "" {
		action := "Postponed"
		if days < 0 {
			action = "Advanced"
		}
		reason = fmt.Sprintf("%s by %d day(s)", action, abs(days))
	}

	nowTs := s.now().Unix()
	adjusted := nextDue.AddDate(0, 0, days).Format(store.DateLayout)
	return s.store.UpdateReminder(ctx, &store.UpdateReminder{
		ID:                      id,
		CreatorID:               &creatorID,
		UpdatedTs:               &nowTs,
		WeatherAdjustedDue:      &adjusted,
		WeatherAdjustmentReason: &reason,
	})
}

// ClearWeatherAdjustment reverts a reminder to its original schedule.
func (s *Service) ClearWeatherAdjustment(ctx context.Context, id, creatorID int32) error {
	if _, err := s.Get(ctx, id, creatorID); err != nil {
		return err
	}
	nowTs := s.now().Unix()
	return s.store.UpdateReminder(ctx, &store.UpdateReminder{
		ID:                     id,
		CreatorID:              &creatorID,
		UpdatedTs:              &nowTs,
		ClearWeatherAdjustment: true,
	})
}

// ToggleActive archives an active reminder or reactivates an archived one.
// Reactivation reschedules to tomorrow.
func (s *Service) ToggleActive(ctx context.Context, id, creatorID int32) error {
	rem, err := s.Get(ctx, id, creatorID)
	if err != nil {
		return err
	}

	nowTs := s.now().Unix()
	update := &store.UpdateReminder{
		ID:        id,
		CreatorID: &creatorID,
		UpdatedTs: &nowTs,
	}
	if rem.RowStatus == store.Normal {
		archived := store.Archived
		update.RowStatus = &archived
	} else {
		normal := store.Normal
		update.RowStatus = &normal
		tomorrow := s.today().AddDate(0, 0, 1).Format(store.DateLayout)
		update.NextDue = &tomorrow
	}
	return s.store.UpdateReminder(ctx, update)
}

// Delete soft-deletes by archiving.
func (s *Service) Delete(ctx context.Context, id, creatorID int32) error {
	if _, err := s.Get(ctx, id, creatorID); err != nil {
		return err
	}
	nowTs := s.now().Unix()
	archived := store.Archived
	return s.store.UpdateReminder(ctx, &store.UpdateReminder{
		ID:        id,
		CreatorID: &creatorID,
		UpdatedTs: &nowTs,
		RowStatus: &archived,
	})
}

// Stats summarizes a user's reminders.
type Stats struct {
	TotalReminders    int `json:"total_reminders"`
	ActiveReminders   int `json:"active_reminders"`
	DueToday          int `json:"due_today"`
	Upcoming7Days     int `json:"upcoming_7_days"`
	CompletedThisWeek int `json:"completed_this_week"`
}

// GetStats computes reminder statistics for a user.
func (s *Service) GetStats(ctx context.Context, creatorID int32) (*Stats, error) {
	reminders, err := s.store.ListReminders(ctx, &store.FindReminder{CreatorID: &creatorID})
	if err != nil {
		return nil, err
	}

	today := s.today()
	todayStr := today.Format(store.DateLayout)
	weekAgo := s.now().AddDate(0, 0, -7).Unix()
	upcomingUntil := today.AddDate(0, 0, 7).Format(store.DateLayout)

	stats := &Stats{TotalReminders: len(reminders)}
	for _, rem := range reminders {
		if rem.LastCompletedTs != nil && *rem.LastCompletedTs >= weekAgo {
			stats.CompletedThisWeek++
		}
		if rem.RowStatus != store.Normal {
			continue
		}
		stats.ActiveReminders++
		effective := rem.EffectiveDue()
		if effective <= todayStr {
			stats.DueToday++
		} else if effective <= upcomingUntil {
			stats.Upcoming7Days++
		}
	}
	return stats, nil
}

// plantsFor loads the plants referenced by a reminder batch.
func (s *Service) plantsFor(ctx context.Context, creatorID int32, reminders []*store.Reminder) (map[int32]*store.Plant, error) {
	plants, err := s.store.ListPlants(ctx, &store.FindPlant{CreatorID: &creatorID})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list plants")
	}
	byID := make(map[int32]*store.Plant, len(plants))
	for _, p := range plants {
		byID[p.ID] = p
	}
	return byID, nil
}

func journalAction(reminderType string) string {
	switch reminderType {
	case store.TypeWatering:
		return store.ActionWatered
	case store.TypeMisting:
		return store.ActionMisted
	case store.TypeFertilizing:
		return store.ActionFertilized
	case store.TypePruning:
		return store.ActionPruned
	case store.TypeRepotting:
		return store.ActionRepotted
	}
	return store.ActionNote
}
