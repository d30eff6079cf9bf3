package sqlite

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/verdanthq/verdant/store"
)

func (d *DB) CreatePlant(ctx context.Context, create *store.Plant) (*store.Plant, error) {
	fields := []string{"uid", "creator_id", "name", "nickname", "species", "location", "light", "notes", "photo_url"}
	placeholderValues := []any{
		create.UID, create.CreatorID, create.Name, create.Nickname, create.Species,
		create.Location, create.Light, create.Notes, create.PhotoURL,
	}

	stmt := `INSERT INTO plant (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(placeholderValues)) + `)
		RETURNING id, row_status, created_ts, updated_ts`

	if err := d.db.QueryRowContext(ctx, stmt, placeholderValues...).Scan(
		&create.ID,
		&create.RowStatus,
		&create.CreatedTs,
		&create.UpdatedTs,
	); err != nil {
		return nil, errors.Wrap(err, "failed to create plant")
	}

	return create, nil
}

func (d *DB) ListPlants(ctx context.Context, find *store.FindPlant) ([]*store.Plant, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.ID; v != nil {
		where, args = append(where, "plant.id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.UID; v != nil {
		where, args = append(where, "plant.uid = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.CreatorID; v != nil {
		where, args = append(where, "plant.creator_id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.RowStatus; v != nil {
		where, args = append(where, "plant.row_status = "+placeholder(len(args)+1)), append(args, v.String())
	}

	query := `
		SELECT
			id, uid, creator_id, row_status, created_ts, updated_ts,
			name, nickname, species, location, light, notes, photo_url
		FROM plant
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY plant.created_ts DESC, plant.id DESC`

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query plants")
	}
	defer rows.Close()

	list := make([]*store.Plant, 0)
	for rows.Next() {
		var plant store.Plant
		if err := rows.Scan(
			&plant.ID,
			&plant.UID,
			&plant.CreatorID,
			&plant.RowStatus,
			&plant.CreatedTs,
			&plant.UpdatedTs,
			&plant.Name,
			&plant.Nickname,
			&plant.Species,
			&plant.Location,
			&plant.Light,
			&plant.Notes,
			&plant.PhotoURL,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan plant")
		}
		list = append(list, &plant)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate plants")
	}

	return list, nil
}

func (d *DB) UpdatePlant(ctx context.Context, update *store.UpdatePlant) error {
	set, args := []string{}, []any{}

	if v := update.UpdatedTs; v != nil {
		set, args = append(set, "updated_ts = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.RowStatus; v != nil {
		set, args = append(set, "row_status = "+placeholder(len(args)+1)), append(args, v.String())
	}
	if v := update.Name; v != nil {
		set, args = append(set, "name = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.Nickname; v != nil {
		set, args = append(set, "nickname = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.Species; v != nil {
		set, args = append(set, "species = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.Location; v != nil {
		set, args = append(set, "location = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.Light; v != nil {
		set, args = append(set, "light = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.Notes; v != nil {
		set, args = append(set, "notes = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.PhotoURL; v != nil {
		set, args = append(set, "photo_url = "+placeholder(len(args)+1)), append(args, *v)
	}

	if len(set) == 0 {
		return nil
	}

	args = append(args, update.ID)

	stmt := `UPDATE plant SET ` + strings.Join(set, ", ") + ` WHERE id = ` + placeholder(len(args))
	if _, err := d.db.ExecContext(ctx, stmt, args...); err != nil {
		return errors.Wrap(err, "failed to update plant")
	}

	return nil
}

func (d *DB) DeletePlant(ctx context.Context, delete *store.DeletePlant) error {
	result, err := d.db.ExecContext(ctx, `DELETE FROM plant WHERE id = `+placeholder(1), delete.ID)
	if err != nil {
		return errors.Wrap(err, "failed to delete plant")
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return errors.New("plant not found")
	}

	return nil
}
