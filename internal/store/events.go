package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/example/eventd/internal/schedule"
)

const eventColumns = "id, title, description, start_time, end_time, location, owner_id, created_at, updated_at"

// eventRepo implements EventRepository.
type eventRepo struct {
	pool PgxPool
}

func (r *eventRepo) Create(ctx context.Context, ev Event) (*Event, error) {
	defer observeDB(ctx, "db.events.create")()

	ev.StartTime = ev.StartTime.UTC()
	ev.EndTime = ev.EndTime.UTC()
	if !schedule.ValidInterval(ev.StartTime, ev.EndTime) {
		return nil, ErrInvalidInterval
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("begin create event: %w", err)
	}
	defer rollback(ctx, tx)

	if err := lockOwner(ctx, tx, ev.OwnerID); err != nil {
		return nil, err
	}
	if err := checkConflicts(ctx, tx, ev.OwnerID, ev.StartTime, ev.EndTime, 0); err != nil {
		return nil, err
	}

	const q = `INSERT INTO events (title, description, start_time, end_time, location, owner_id)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, created_at`

	created := ev
	err = tx.QueryRow(ctx, q, ev.Title, ev.Description, ev.StartTime, ev.EndTime, ev.Location, ev.OwnerID).
		Scan(&created.ID, &created.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit create event: %w", err)
	}
	return &created, nil
}

func (r *eventRepo) GetOwned(ctx context.Context, id, ownerID int64) (*Event, error) {
	defer observeDB(ctx, "db.events.get_owned")()
	return getOwned(ctx, r.pool, id, ownerID)
}

func (r *eventRepo) ListByOwner(ctx context.Context, ownerID int64, skip, limit int) ([]Event, error) {
	defer observeDB(ctx, "db.events.list_by_owner")()

	const q = `SELECT ` + eventColumns + ` FROM events
WHERE owner_id=$1 ORDER BY id ASC OFFSET $2 LIMIT $3`

	rows, err := r.pool.Query(ctx, q, ownerID, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var ev Event
		if err := scanEvent(rows, &ev); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

func (r *eventRepo) Update(ctx context.Context, id, ownerID int64, patch schedule.EventPatch) (*Event, error) {
	defer observeDB(ctx, "db.events.update")()

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("begin update event: %w", err)
	}
	defer rollback(ctx, tx)

	if err := lockOwner(ctx, tx, ownerID); err != nil {
		return nil, err
	}

	stored, err := getOwned(ctx, tx, id, ownerID)
	if err != nil {
		return nil, err
	}

	// Ordering and conflicts are validated against the merged window, not
	// the raw patch fields: an update touching only one endpoint still has
	// to hold together with the endpoint it keeps.
	start, end := patch.Window(stored.StartTime, stored.EndTime)
	if !schedule.ValidInterval(start, end) {
		return nil, ErrInvalidInterval
	}
	if err := checkConflicts(ctx, tx, ownerID, start, end, id); err != nil {
		return nil, err
	}

	title := stored.Title
	if patch.Title != nil {
		title = *patch.Title
	}
	description := stored.Description
	if patch.Description != nil {
		description = patch.Description
	}
	location := stored.Location
	if patch.Location != nil {
		location = patch.Location
	}

	const q = `UPDATE events
SET title=$1, description=$2, start_time=$3, end_time=$4, location=$5, updated_at=NOW()
WHERE id=$6 AND owner_id=$7
RETURNING ` + eventColumns

	var updated Event
	if err := scanEventRow(tx.QueryRow(ctx, q, title, description, start, end, location, id, ownerID), &updated); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit update event: %w", err)
	}
	return &updated, nil
}

func (r *eventRepo) Delete(ctx context.Context, id, ownerID int64) error {
	defer observeDB(ctx, "db.events.delete")()

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin delete event: %w", err)
	}
	defer rollback(ctx, tx)

	// Ownership gate before touching grant rows, so a foreign id cannot
	// strip another user's grants.
	if _, err := getOwned(ctx, tx, id, ownerID); err != nil {
		return err
	}

	// Grants cascade with the event, inside the same transaction.
	if _, err := tx.Exec(ctx, `DELETE FROM user_permissions WHERE event_id=$1`, id); err != nil {
		return fmt.Errorf("delete event grants: %w", err)
	}

	tag, err := tx.Exec(ctx, `DELETE FROM events WHERE id=$1 AND owner_id=$2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit delete event: %w", err)
	}
	return nil
}

// lockOwner serializes check-then-write sequences for one owner's event set.
// The advisory lock is keyed by owner id and released at transaction end.
func lockOwner(ctx context.Context, tx pgx.Tx, ownerID int64) error {
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, ownerID); err != nil {
		return fmt.Errorf("lock owner %d: %w", ownerID, err)
	}
	return nil
}

// checkConflicts loads the owner's events within the transaction and applies
// the schedule rules to the candidate window. excludeID skips the event being
// updated so it never conflicts with itself; zero excludes nothing.
func checkConflicts(ctx context.Context, tx pgx.Tx, ownerID int64, start, end time.Time, excludeID int64) error {
	const q = `SELECT id, start_time, end_time FROM events WHERE owner_id=$1`

	rows, err := tx.Query(ctx, q, ownerID)
	if err != nil {
		return fmt.Errorf("load owner events: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var s, e time.Time
		if err := rows.Scan(&id, &s, &e); err != nil {
			return fmt.Errorf("scan owner event: %w", err)
		}
		if id == excludeID {
			continue
		}
		if schedule.Conflicts(start, end, s, e) {
			return ErrSchedulingConflict
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("load owner events: %w", err)
	}
	return nil
}

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func getOwned(ctx context.Context, q querier, id, ownerID int64) (*Event, error) {
	const sqlq = `SELECT ` + eventColumns + ` FROM events WHERE id=$1 AND owner_id=$2`

	var ev Event
	if err := scanEventRow(q.QueryRow(ctx, sqlq, id, ownerID), &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}

func scanEventRow(row pgx.Row, ev *Event) error {
	if err := scanEvent(row, ev); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("query event: %w", err)
	}
	return nil
}

func scanEvent(row pgx.Row, ev *Event) error {
	return row.Scan(&ev.ID, &ev.Title, &ev.Description, &ev.StartTime, &ev.EndTime,
		&ev.Location, &ev.OwnerID, &ev.CreatedAt, &ev.UpdatedAt)
}

// rollback is a no-op once the transaction has committed.
func rollback(ctx context.Context, tx pgx.Tx) {
	_ = tx.Rollback(ctx)
}
