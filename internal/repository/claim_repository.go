package repository

import (
    "context"
    "database/sql"

    "github.com/stepperslife/ticketing/internal/model"
)

// ClaimRepo persists the append-only ticket_claims audit trail.  Rows are
// only ever inserted, always inside the transaction that also flips the
// ticket's ownership.
type ClaimRepo struct {
    db *sql.DB
}

// NewClaimRepo returns a new ClaimRepo bound to the given database.
func NewClaimRepo(db *sql.DB) *ClaimRepo { return &ClaimRepo{db: db} }

// CreateTx records one completed claim and populates the generated ID.
func (r *ClaimRepo) CreateTx(ctx context.Context, tx *sql.Tx, c *model.TicketClaim) error {
    const q = `INSERT INTO ticket_claims (ticket_id, from_user_id, to_user_id, status, claimed_at, expires_at)
 VALUES (?, ?, ?, ?, ?, ?)`
    res, err := tx.ExecContext(ctx, q, c.TicketID, c.FromUserID, c.ToUserID, c.Status,
        c.ClaimedAt.UTC(), c.ExpiresAt.UTC())
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    c.ID = uint64(id)
    return nil
}

// ListByTicket returns a ticket's claim history, oldest first.
func (r *ClaimRepo) ListByTicket(ctx context.Context, ticketID uint64) ([]model.TicketClaim, error) {
    const q = `SELECT id, ticket_id, from_user_id, to_user_id, status, created_at, claimed_at, expires_at
 FROM ticket_claims WHERE ticket_id = ? ORDER BY id ASC`
    rows, err := r.db.QueryContext(ctx, q, ticketID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := []model.TicketClaim{}
    for rows.Next() {
        var c model.TicketClaim
        if err := rows.Scan(&c.ID, &c.TicketID, &c.FromUserID, &c.ToUserID, &c.Status,
            &c.CreatedAt, &c.ClaimedAt, &c.ExpiresAt); err != nil {
            return nil, err
        }
        out = append(out, c)
    }
    return out, rows.Err()
}
