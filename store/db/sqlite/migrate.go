package sqlite

import (
	"context"

	"github.com/pkg/errors"
)

const schema = `
CREATE TABLE IF NOT EXISTS user (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	row_status TEXT NOT NULL CHECK (row_status IN ('NORMAL', 'ARCHIVED')) DEFAULT 'NORMAL',
	created_ts BIGINT NOT NULL DEFAULT (strftime('%s', 'now')),
	updated_ts BIGINT NOT NULL DEFAULT (strftime('%s', 'now')),
	email TEXT NOT NULL UNIQUE,
	nickname TEXT NOT NULL DEFAULT '',
	city TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS plant (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	uid TEXT NOT NULL UNIQUE,
	creator_id INTEGER NOT NULL,
	row_status TEXT NOT NULL CHECK (row_status IN ('NORMAL', 'ARCHIVED')) DEFAULT 'NORMAL',
	created_ts BIGINT NOT NULL DEFAULT (strftime('%s', 'now')),
	updated_ts BIGINT NOT NULL DEFAULT (strftime('%s', 'now')),
	name TEXT NOT NULL,
	nickname TEXT NOT NULL DEFAULT '',
	species TEXT NOT NULL DEFAULT '',
	location TEXT NOT NULL DEFAULT 'indoor_potted',
	light TEXT NOT NULL DEFAULT '',
	notes TEXT NOT NULL DEFAULT '',
	photo_url TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_plant_creator_id ON plant (creator_id);

CREATE TABLE IF NOT EXISTS reminder (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	uid TEXT NOT NULL UNIQUE,
	creator_id INTEGER NOT NULL,
	plant_id INTEGER NOT NULL,
	row_status TEXT NOT NULL CHECK (row_status IN ('NORMAL', 'ARCHIVED')) DEFAULT 'NORMAL',
	created_ts BIGINT NOT NULL DEFAULT (strftime('%s', 'now')),
	updated_ts BIGINT NOT NULL DEFAULT (strftime('%s', 'now')),
	reminder_type TEXT NOT NULL,
	title TEXT NOT NULL DEFAULT '',
	frequency TEXT NOT NULL DEFAULT 'weekly',
	custom_interval_days INTEGER,
	next_due TEXT NOT NULL,
	skip_weather_adjustment INTEGER NOT NULL DEFAULT 0,
	weather_adjusted_due TEXT,
	weather_adjustment_reason TEXT,
	is_recurring INTEGER NOT NULL DEFAULT 1,
	last_completed_ts BIGINT
);

CREATE INDEX IF NOT EXISTS idx_reminder_creator_id ON reminder (creator_id);
CREATE INDEX IF NOT EXISTS idx_reminder_plant_id ON reminder (plant_id);
CREATE INDEX IF NOT EXISTS idx_reminder_next_due ON reminder (next_due);

CREATE TABLE IF NOT EXISTS journal_entry (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	creator_id INTEGER NOT NULL,
	plant_id INTEGER NOT NULL,
	created_ts BIGINT NOT NULL DEFAULT (strftime('%s', 'now')),
	action TEXT NOT NULL,
	note TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_journal_entry_plant_id ON journal_entry (plant_id);
`

// Migrate applies the schema. Statements are idempotent so the call is safe
// on every startup.
func (d *DB) Migrate(ctx context.Context) error {
	if _, err := d.db.ExecContext(ctx, schema); err != nil {
		return errors.Wrap(err, "failed to apply schema")
	}
	return nil
}
