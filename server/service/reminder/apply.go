package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/verdanthq/verdant/store"
)

// AdjustmentStore is the persistence surface for automatic adjustments.
type AdjustmentStore interface {
	UpdateReminder(ctx context.Context, update *store.UpdateReminder) error
}

// AppliedAdjustment describes an automatic adjustment attached to a
// still-due reminder.
type AppliedAdjustment struct {
	Action      string         `json:"action"`
	Days        int            `json:"days"`
	Reason      string         `json:"reason"`
	AdjustedDue string         `json:"adjusted_due_date"`
	AdjustedAt  time.Time      `json:"adjusted_at"`
	Details     map[string]any `json:"details"`
}

// DueReminder is a reminder in the due-today view, with its automatic
// adjustment when one was applied.
type DueReminder struct {
	Reminder   *store.Reminder
	Adjustment *AppliedAdjustment
}

// Suggestion is a user-reviewable adjustment notification. Never persisted
// unless the user acts on it.
type Suggestion struct {
	ReminderID     int32          `json:"reminder_id"`
	PlantName      string         `json:"plant_name"`
	SuggestionType string         `json:"suggestion_type"`
	Message        string         `json:"message"`
	ActionLabel    string         `json:"action_label"`
	Days           int            `json:"days"`
	Details        map[string]any `json:"details"`
}

// ApplyAutomatic evaluates each reminder and applies automatic adjustments.
//
// Postponements are clamped so the adjusted date is never today-or-earlier.
// Persistence is best-effort: a failed write is logged and ignored because
// the due-today view does not depend on it. Reminders pushed to a future
// date are excluded from the returned list; everything else passes through.
// The second return value is the number of adjustments applied.
func (e *Evaluator) ApplyAutomatic(ctx context.Context, s AdjustmentStore, reminders []*store.Reminder, plantsByID map[int32]*store.Plant, city string) ([]*DueReminder, int) {
	today := e.today()
	due := make([]*DueReminder, 0, len(reminders))
	applied := 0

	for _, rem := range reminders {
		plant, ok := plantsByID[rem.PlantID]
		if !ok || plant == nil {
			due = append(due, &DueReminder{Reminder: rem})
			continue
		}

		rec := e.Evaluate(ctx, rem, plant, city)
		if rec.Mode != ModeAutomatic || rec.Action == ActionNone {
			due = append(due, &DueReminder{Reminder: rem})
			continue
		}

		nextDue, err := rem.ParseNextDue()
		if err != nil {
			due = append(due, &DueReminder{Reminder: rem})
			continue
		}

		adjustedDue := nextDue.AddDate(0, 0, rec.Days)
		if rec.Action == ActionPostpone && !adjustedDue.After(today) {
			adjustedDue = today.AddDate(0, 0, 1)
		}
		adjustedStr := adjustedDue.Format(store.DateLayout)

		if s != nil {
			update := &store.UpdateReminder{
				ID:                      rem.ID,
				CreatorID:               &rem.CreatorID,
				WeatherAdjustedDue:      &adjustedStr,
				WeatherAdjustmentReason: &rec.Reason,
			}
			if err := s.UpdateReminder(ctx, update); err != nil {
				// Losing one weather annotation must not break the view.
				slog.Warn("failed to persist weather adjustment", "reminder", rem.ID, "error", err)
			}
		}
		applied++

		if adjustedDue.After(today) {
			// No longer due today.
			continue
		}
		due = append(due, &DueReminder{
			Reminder: rem,
			Adjustment: &AppliedAdjustment{
				Action:      rec.Action,
				Days:        rec.Days,
				Reason:      rec.Reason,
				AdjustedDue: adjustedStr,
				AdjustedAt:  e.now(),
				Details:     rec.Details,
			},
		})
	}

	return due, applied
}

// CollectSuggestions evaluates each reminder and returns the suggestion-mode
// recommendations as user-facing notifications. Pure read path.
func (e *Evaluator) CollectSuggestions(ctx context.Context, reminders []*store.Reminder, plantsByID map[int32]*store.Plant, city string) []*Suggestion {
	suggestions := make([]*Suggestion, 0)

	for _, rem := range reminders {
		plant, ok := plantsByID[rem.PlantID]
		if !ok || plant == nil {
			continue
		}

		rec := e.Evaluate(ctx, rem, plant, city)
		if rec.Mode != ModeSuggestion || rec.Action == ActionNone {
			continue
		}
		suggestions = append(suggestions, newSuggestion(rem, plant, rec))
	}

	return suggestions
}

func newSuggestion(rem *store.Reminder, plant *store.Plant, rec *Recommendation) *Suggestion {
	plantName := "Your plant"
	if plant != nil && plant.DisplayName() != "" {
		plantName = plant.DisplayName()
	}

	var message, actionLabel string
	switch rec.Action {
	case ActionPostpone:
		message = fmt.Sprintf("%s Consider postponing %s by %d %s.", rec.Reason, rem.ReminderType, rec.Days, dayWord(rec.Days))
		actionLabel = fmt.Sprintf("Postpone %d %s", rec.Days, dayWord(rec.Days))
	case ActionAdvance:
		days := abs(rec.Days)
		message = fmt.Sprintf("%s Consider advancing %s by %d %s.", rec.Reason, rem.ReminderType, days, dayWord(days))
		actionLabel = fmt.Sprintf("Advance %d %s", days, dayWord(days))
	case ActionSkip:
		message = fmt.Sprintf("%s Consider skipping this %s.", rec.Reason, rem.ReminderType)
		actionLabel = "Skip this reminder"
	default:
		message = rec.Reason
		actionLabel = "Review"
	}

	return &Suggestion{
		ReminderID:     rem.ID,
		PlantName:      plantName,
		SuggestionType: fmt.Sprintf("%s_%s", rec.Action, rem.ReminderType),
		Message:        message,
		ActionLabel:    actionLabel,
		Days:           rec.Days,
		Details:        rec.Details,
	}
}

func dayWord(days int) string {
	if abs(days) > 1 {
		return "days"
	}
	return "day"
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
