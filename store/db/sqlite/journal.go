package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/verdanthq/verdant/store"
)

func (d *DB) CreateJournalEntry(ctx context.Context, create *store.JournalEntry) (*store.JournalEntry, error) {
	fields := []string{"creator_id", "plant_id", "action", "note"}
	placeholderValues := []any{create.CreatorID, create.PlantID, create.Action, create.Note}

	stmt := `INSERT INTO journal_entry (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(placeholderValues)) + `)
		RETURNING id, created_ts`

	if err := d.db.QueryRowContext(ctx, stmt, placeholderValues...).Scan(
		&create.ID,
		&create.CreatedTs,
	); err != nil {
		return nil, errors.Wrap(err, "failed to create journal entry")
	}

	return create, nil
}

func (d *DB) ListJournalEntries(ctx context.Context, find *store.FindJournalEntry) ([]*store.JournalEntry, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.ID; v != nil {
		where, args = append(where, "journal_entry.id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.CreatorID; v != nil {
		where, args = append(where, "journal_entry.creator_id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.PlantID; v != nil {
		where, args = append(where, "journal_entry.plant_id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.Action; v != nil {
		where, args = append(where, "journal_entry.action = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.CreatedTsAfter; v != nil {
		where, args = append(where, "journal_entry.created_ts >= "+placeholder(len(args)+1)), append(args, *v)
	}

	query := `
		SELECT id, creator_id, plant_id, created_ts, action, note
		FROM journal_entry
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY journal_entry.created_ts DESC, journal_entry.id DESC`

	if find.Limit != nil {
		query = fmt.Sprintf("%s LIMIT %d", query, *find.Limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query journal entries")
	}
	defer rows.Close()

	list := make([]*store.JournalEntry, 0)
	for rows.Next() {
		var entry store.JournalEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.CreatorID,
			&entry.PlantID,
			&entry.CreatedTs,
			&entry.Action,
			&entry.Note,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan journal entry")
		}
		list = append(list, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate journal entries")
	}

	return list, nil
}

func (d *DB) UpdateJournalEntry(ctx context.Context, update *store.UpdateJournalEntry) error {
	set, args := []string{}, []any{}

	if v := update.Note; v != nil {
		set, args = append(set, "note = "+placeholder(len(args)+1)), append(args, *v)
	}

	if len(set) == 0 {
		return nil
	}

	args = append(args, update.ID)
	stmt := `UPDATE journal_entry SET ` + strings.Join(set, ", ") + ` WHERE id = ` + placeholder(len(args))
	if _, err := d.db.ExecContext(ctx, stmt, args...); err != nil {
		return errors.Wrap(err, "failed to update journal entry")
	}

	return nil
}
