package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/charlesliao-stock/AIshiftschedule-sub001/pkg/core/model"
	"github.com/charlesliao-stock/AIshiftschedule-sub001/pkg/db"
)

const wishSetColumns = `staff_id, wishes, notes, priority1, priority2, priority3, batch_preference, version, updated_at`

func scanWishSet(row pgx.Row) (model.WishSet, error) {
	var (
		ws                              model.WishSet
		priority1, priority2, priority3 string
		batch                           string
	)
	err := row.Scan(&ws.StaffID, &ws.Wishes, &ws.Notes, &priority1, &priority2, &priority3, &batch, &ws.Version, &ws.UpdatedAt)
	if err != nil {
		return model.WishSet{}, err
	}
	ws.Preferences = model.Preferences{
		Priority1: model.ShiftCode(priority1),
		Priority2: model.ShiftCode(priority2),
		Priority3: model.ShiftCode(priority3),
	}
	ws.BatchPreference = model.ShiftCode(batch)
	return ws, nil
}

// GetWishSet retrieves one participant's wish set
func (d *DB) GetWishSet(ctx context.Context, key db.SubmissionKey) (*model.WishSet, error) {
	row := d.pool.QueryRow(ctx, `
		SELECT `+wishSetColumns+`
		FROM wish_set
		WHERE unit_id = $1 AND year = $2 AND month = $3 AND staff_id = $4
	`, key.UnitID, key.Year, int(key.Month), key.StaffID)

	ws, err := scanWishSet(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("wish set %s: %w", key, db.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query wish set %s: %w", key, err)
	}
	return &ws, nil
}

// ListWishSets retrieves every submitted wish set of a unit-month, ordered by staff id
func (d *DB) ListWishSets(ctx context.Context, key db.MonthKey) ([]model.WishSet, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT `+wishSetColumns+`
		FROM wish_set
		WHERE unit_id = $1 AND year = $2 AND month = $3
		ORDER BY staff_id
	`, key.UnitID, key.Year, int(key.Month))
	if err != nil {
		return nil, fmt.Errorf("failed to query wish sets: %w", err)
	}
	defer rows.Close()

	var sets []model.WishSet
	for rows.Next() {
		ws, err := scanWishSet(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan wish set: %w", err)
		}
		sets = append(sets, ws)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating wish sets: %w", err)
	}

	return sets, nil
}

// UpsertWishSet inserts a first submission or replaces the stored one when its version still matches.
// The request row is share-locked for the write and must still have req's status and version.
func (d *DB) UpsertWishSet(ctx context.Context, req *model.PreScheduleRequest, ws *model.WishSet) error {
	key := db.KeyOf(req)

	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var (
		status  string
		version int
	)
	err = tx.QueryRow(ctx, `
		SELECT status, version
		FROM pre_schedule_request
		WHERE unit_id = $1 AND year = $2 AND month = $3
		FOR SHARE
	`, key.UnitID, key.Year, int(key.Month)).Scan(&status, &version)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("request %s: %w", key, db.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to query request %s: %w", key, err)
	}
	if model.RequestStatus(status) != req.Status || version != req.Version {
		return fmt.Errorf("request %s is no longer %s at version %d: %w", key, req.Status, req.Version, db.ErrConflict)
	}

	prefs := ws.Preferences
	err = tx.QueryRow(ctx, `
		INSERT INTO wish_set (
			unit_id, year, month, staff_id, wishes, notes, priority1, priority2, priority3, batch_preference
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (unit_id, year, month, staff_id) DO UPDATE SET
			wishes = EXCLUDED.wishes,
			notes = EXCLUDED.notes,
			priority1 = EXCLUDED.priority1,
			priority2 = EXCLUDED.priority2,
			priority3 = EXCLUDED.priority3,
			batch_preference = EXCLUDED.batch_preference,
			version = wish_set.version + 1,
			updated_at = NOW()
		WHERE wish_set.version = $11
		RETURNING version, updated_at
	`,
		key.UnitID, key.Year, int(key.Month), ws.StaffID, jsonObject(ws.Wishes), ws.Notes,
		string(prefs.Priority1), string(prefs.Priority2), string(prefs.Priority3), string(ws.BatchPreference),
		ws.Version,
	).Scan(&ws.Version, &ws.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("wish set %s changed since version %d: %w", key.Staff(ws.StaffID), ws.Version, db.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("failed to upsert wish set: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit wish set: %w", err)
	}
	return nil
}
