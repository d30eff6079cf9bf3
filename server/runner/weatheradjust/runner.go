// Package weatheradjust runs the daily batch job that re-evaluates all
// users' reminders against current weather.
package weatheradjust

import (
	"context"
	"log/slog"
	"time"

	"github.com/verdanthq/verdant/server/service/reminder"
	"github.com/verdanthq/verdant/store"
)

// Stats summarizes one batch run.
type Stats struct {
	TotalUsers     int `json:"total_users"`
	UsersProcessed int `json:"users_processed"`
	TotalAdjusted  int `json:"total_adjusted"`
	Errors         int `json:"errors"`
}

type Runner struct {
	store     *store.Store
	evaluator *reminder.Evaluator
	interval  time.Duration
}

// NewRunner creates the weather adjustment runner with a daily interval.
func NewRunner(s *store.Store, evaluator *reminder.Evaluator) *Runner {
	return &Runner{
		store:     s,
		evaluator: evaluator,
		interval:  24 * time.Hour,
	}
}

// Run starts the background task. Processes once on startup, then daily.
func (r *Runner) Run(ctx context.Context) {
	r.RunOnce(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.RunOnce(ctx)
		case <-ctx.Done():
			slog.Info("weather adjustment runner stopped")
			return
		}
	}
}

// RunOnce executes one batch pass over all users with active reminders.
// Users are processed sequentially; per-user failures are counted and
// skipped so one bad user cannot stall the batch.
func (r *Runner) RunOnce(ctx context.Context) Stats {
	slog.Info("starting daily weather adjustment batch")
	stats := Stats{}

	userIDs, err := r.store.ListUsersWithActiveReminders(ctx)
	if err != nil {
		slog.Error("weather adjustment batch failed to list users", "error", err)
		stats.Errors++
		return stats
	}
	stats.TotalUsers = len(userIDs)

	for _, userID := range userIDs {
		select {
		case <-ctx.Done():
			slog.Info("weather adjustment batch cancelled", "processed", stats.UsersProcessed)
			return stats
		default:
		}

		adjusted, err := r.processUser(ctx, userID)
		if err != nil {
			slog.Error("weather adjustment failed for user", "user", userID, "error", err)
			stats.Errors++
			continue
		}
		if adjusted < 0 {
			// User skipped (no city configured).
			continue
		}
		stats.UsersProcessed++
		stats.TotalAdjusted += adjusted
		if adjusted > 0 {
			slog.Info("weather adjustments applied", "user", userID, "adjusted", adjusted)
		}
	}

	slog.Info("weather adjustment batch completed",
		"usersProcessed", stats.UsersProcessed,
		"totalUsers", stats.TotalUsers,
		"totalAdjusted", stats.TotalAdjusted,
		"errors", stats.Errors)
	return stats
}

// processUser re-evaluates one user's active reminders. Returns -1 when the
// user has no city and is skipped.
func (r *Runner) processUser(ctx context.Context, userID int32) (int, error) {
	user, err := r.store.GetUser(ctx, &store.FindUser{ID: &userID})
	if err != nil {
		return 0, err
	}
	if user == nil || user.City == "" {
		return -1, nil
	}

	normal := store.Normal
	reminders, err := r.store.ListReminders(ctx, &store.FindReminder{
		CreatorID: &userID,
		RowStatus: &normal,
	})
	if err != nil {
		return 0, err
	}
	if len(reminders) == 0 {
		return 0, nil
	}

	plants, err := r.store.ListPlants(ctx, &store.FindPlant{CreatorID: &userID})
	if err != nil {
		return 0, err
	}
	plantsByID := make(map[int32]*store.Plant, len(plants))
	for _, p := range plants {
		plantsByID[p.ID] = p
	}

	_, adjusted := r.evaluator.ApplyAutomatic(ctx, r.store, reminders, plantsByID, user.City)
	return adjusted, nil
}
