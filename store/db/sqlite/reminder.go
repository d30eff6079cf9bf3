package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/pkg/errors"

	"github.com/verdanthq/verdant/store"
)

func (d *DB) CreateReminder(ctx context.Context, create *store.Reminder) (*store.Reminder, error) {
	fields := []string{
		"uid", "creator_id", "plant_id", "reminder_type", "title",
		"frequency", "custom_interval_days", "next_due",
		"skip_weather_adjustment", "is_recurring",
	}
	placeholderValues := []any{
		create.UID, create.CreatorID, create.PlantID, create.ReminderType, create.Title,
		create.Frequency, create.CustomIntervalDays, create.NextDue,
		create.SkipWeatherAdjustment, create.IsRecurring,
	}

	stmt := `INSERT INTO reminder (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(placeholderValues)) + `)
		RETURNING id, row_status, created_ts, updated_ts`

	if err := d.db.QueryRowContext(ctx, stmt, placeholderValues...).Scan(
		&create.ID,
		&create.RowStatus,
		&create.CreatedTs,
		&create.UpdatedTs,
	); err != nil {
		return nil, errors.Wrap(err, "failed to create reminder")
	}

	return create, nil
}

func (d *DB) ListReminders(ctx context.Context, find *store.FindReminder) ([]*store.Reminder, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.ID; v != nil {
		where, args = append(where, "reminder.id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.UID; v != nil {
		where, args = append(where, "reminder.uid = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.CreatorID; v != nil {
		where, args = append(where, "reminder.creator_id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.PlantID; v != nil {
		where, args = append(where, "reminder.plant_id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.RowStatus; v != nil {
		where, args = append(where, "reminder.row_status = "+placeholder(len(args)+1)), append(args, v.String())
	}
	if v := find.ReminderType; v != nil {
		where, args = append(where, "reminder.reminder_type = "+placeholder(len(args)+1)), append(args, *v)
	}
	// Due date filters operate on the effective due date, i.e. the
	// weather-adjusted one when present.
	if v := find.DueOnOrBefore; v != nil {
		where, args = append(where, "COALESCE(reminder.weather_adjusted_due, reminder.next_due) <= "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.DueAfter; v != nil {
		where, args = append(where, "COALESCE(reminder.weather_adjusted_due, reminder.next_due) > "+placeholder(len(args)+1)), append(args, *v)
	}

	query := `
		SELECT
			id, uid, creator_id, plant_id, row_status, created_ts, updated_ts,
			reminder_type, title, frequency, custom_interval_days,
			next_due, skip_weather_adjustment, weather_adjusted_due, weather_adjustment_reason,
			is_recurring, last_completed_ts
		FROM reminder
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY COALESCE(reminder.weather_adjusted_due, reminder.next_due) ASC, reminder.id ASC`

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query reminders")
	}
	defer rows.Close()

	list := make([]*store.Reminder, 0)
	for rows.Next() {
		var reminder store.Reminder
		var customIntervalDays sql.NullInt64
		var adjustedDue, adjustmentReason sql.NullString
		var lastCompletedTs sql.NullInt64

		if err := rows.Scan(
			&reminder.ID,
			&reminder.UID,
			&reminder.CreatorID,
			&reminder.PlantID,
			&reminder.RowStatus,
			&reminder.CreatedTs,
			&reminder.UpdatedTs,
			&reminder.ReminderType,
			&reminder.Title,
			&reminder.Frequency,
			&customIntervalDays,
			&reminder.NextDue,
			&reminder.SkipWeatherAdjustment,
			&adjustedDue,
			&adjustmentReason,
			&reminder.IsRecurring,
			&lastCompletedTs,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan reminder")
		}

		if customIntervalDays.Valid {
			days := int(customIntervalDays.Int64)
			reminder.CustomIntervalDays = &days
		}
		if adjustedDue.Valid {
			reminder.WeatherAdjustedDue = &adjustedDue.String
		}
		if adjustmentReason.Valid {
			reminder.WeatherAdjustmentReason = &adjustmentReason.String
		}
		if lastCompletedTs.Valid {
			reminder.LastCompletedTs = &lastCompletedTs.Int64
		}

		list = append(list, &reminder)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate reminders")
	}

	return list, nil
}

func (d *DB) UpdateReminder(ctx context.Context, update *store.UpdateReminder) error {
	set, args := []string{}, []any{}

	if v := update.UpdatedTs; v != nil {
		set, args = append(set, "updated_ts = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.RowStatus; v != nil {
		set, args = append(set, "row_status = "+placeholder(len(args)+1)), append(args, v.String())
	}
	if v := update.Title; v != nil {
		set, args = append(set, "title = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.ReminderType; v != nil {
		set, args = append(set, "reminder_type = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.Frequency; v != nil {
		set, args = append(set, "frequency = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.CustomIntervalDays; v != nil {
		set, args = append(set, "custom_interval_days = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.NextDue; v != nil {
		set, args = append(set, "next_due = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.SkipWeatherAdjustment; v != nil {
		set, args = append(set, "skip_weather_adjustment = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.LastCompletedTs; v != nil {
		set, args = append(set, "last_completed_ts = "+placeholder(len(args)+1)), append(args, *v)
	}
	if update.ClearWeatherAdjustment {
		set = append(set, "weather_adjusted_due = NULL", "weather_adjustment_reason = NULL")
	} else {
		if v := update.WeatherAdjustedDue; v != nil {
			set, args = append(set, "weather_adjusted_due = "+placeholder(len(args)+1)), append(args, *v)
		}
		if v := update.WeatherAdjustmentReason; v != nil {
			set, args = append(set, "weather_adjustment_reason = "+placeholder(len(args)+1)), append(args, *v)
		}
	}

	if len(set) == 0 {
		return nil
	}

	args = append(args, update.ID)
	stmt := `UPDATE reminder SET ` + strings.Join(set, ", ") + ` WHERE id = ` + placeholder(len(args))
	if v := update.CreatorID; v != nil {
		args = append(args, *v)
		stmt += ` AND creator_id = ` + placeholder(len(args))
	}

	if _, err := d.db.ExecContext(ctx, stmt, args...); err != nil {
		return errors.Wrap(err, "failed to update reminder")
	}

	return nil
}

func (d *DB) DeleteReminder(ctx context.Context, delete *store.DeleteReminder) error {
	result, err := d.db.ExecContext(ctx, `DELETE FROM reminder WHERE id = `+placeholder(1), delete.ID)
	if err != nil {
		return errors.Wrap(err, "failed to delete reminder")
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return errors.New("reminder not found")
	}

	return nil
}

func (d *DB) ListUsersWithActiveReminders(ctx context.Context) ([]int32, error) {
	query := `SELECT DISTINCT creator_id FROM reminder WHERE row_status = 'NORMAL' ORDER BY creator_id ASC`

	rows, err := d.db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query users with active reminders")
	}
	defer rows.Close()

	ids := make([]int32, 0)
	for rows.Next() {
		var id int32
		if err := rows.Scan(&id); err != nil {
			return nil, errors.Wrap(err, "failed to scan creator id")
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate creator ids")
	}

	return ids, nil
}
