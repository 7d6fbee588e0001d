package repository

import (
    "context"
    "database/sql"
    "time"

    "github.com/stepperslife/ticketing/internal/model"
)

// EventRepo provides CRUD operations for events.  Events are owned by
// organizer users; ownership checks live here so every handler enforces
// them the same way.  All timestamps are stored in UTC.
type EventRepo struct {
    db *sql.DB
}

// NewEventRepo returns a new EventRepo bound to the given database.
func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

const eventCols = "id, organizer_id, name, description, location, event_date, price_cents, total_tickets, is_cancelled, created_at, updated_at"

func scanEvent(row *sql.Row) (model.Event, error) {
    var e model.Event
    err := row.Scan(&e.ID, &e.OrganizerID, &e.Name, &e.Description, &e.Location,
        &e.EventDate, &e.PriceCents, &e.TotalTickets, &e.IsCancelled, &e.CreatedAt, &e.UpdatedAt)
    return e, err
}

// Create inserts a new event and returns its generated ID.
func (r *EventRepo) Create(ctx context.Context, e *model.Event) error {
    const q = `INSERT INTO events (organizer_id, name, description, location, event_date, price_cents, total_tickets) VALUES (?, ?, ?, ?, ?, ?, ?)`
    res, err := r.db.ExecContext(ctx, q, e.OrganizerID, e.Name, e.Description, e.Location,
        e.EventDate.UTC(), e.PriceCents, e.TotalTickets)
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    e.ID = uint64(id)
    return nil
}

// GetByID fetches a single event.  sql.ErrNoRows is returned untouched
// so handlers can map it to 404.
func (r *EventRepo) GetByID(ctx context.Context, id uint64) (model.Event, error) {
    const q = `SELECT ` + eventCols + ` FROM events WHERE id = ? LIMIT 1`
    return scanEvent(r.db.QueryRowContext(ctx, q, id))
}

// GetByIDTx is GetByID inside an existing transaction.  Used by check-in
// and claim flows that must read event state consistently with their
// ticket mutation.
func (r *EventRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Event, error) {
    const q = `SELECT ` + eventCols + ` FROM events WHERE id = ? LIMIT 1`
    return scanEvent(tx.QueryRowContext(ctx, q, id))
}

// ListByOrganizer returns the organizer's events, newest event date first.
func (r *EventRepo) ListByOrganizer(ctx context.Context, organizerID uint64) ([]model.Event, error) {
    const q = `SELECT ` + eventCols + ` FROM events WHERE organizer_id = ? ORDER BY event_date DESC`
    rows, err := r.db.QueryContext(ctx, q, organizerID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := []model.Event{}
    for rows.Next() {
        var e model.Event
        if err := rows.Scan(&e.ID, &e.OrganizerID, &e.Name, &e.Description, &e.Location,
            &e.EventDate, &e.PriceCents, &e.TotalTickets, &e.IsCancelled, &e.CreatedAt, &e.UpdatedAt); err != nil {
            return nil, err
        }
        out = append(out, e)
    }
    return out, rows.Err()
}

// Cancel marks an event cancelled if it belongs to organizerID.  Returns
// ErrForbidden when the event exists but is owned by someone else, and
// sql.ErrNoRows when it does not exist.
func (r *EventRepo) Cancel(ctx context.Context, id, organizerID uint64) error {
    var owner uint64
    err := r.db.QueryRowContext(ctx, `SELECT organizer_id FROM events WHERE id = ? LIMIT 1`, id).Scan(&owner)
    if err != nil {
        return err
    }
    if owner != organizerID {
        return ErrForbidden
    }
    _, err = r.db.ExecContext(ctx, `UPDATE events SET is_cancelled = 1, updated_at = ? WHERE id = ?`, time.Now().UTC(), id)
    return err
}
