package repository

import (
    "context"
    "database/sql"
    "time"

    "github.com/stepperslife/ticketing/internal/model"
)

// TicketRepo provides persistence for tickets.  Tickets are created in
// bulk by table sales and mutated by the claim and check-in flows; both
// mutations run inside transactions supplied by the handler so balance
// and audit writes commit atomically with the ticket update.  Backup
// codes are stored normalized (uppercase, no hyphen) under a unique
// index; display formatting is a handler concern.
type TicketRepo struct {
    db *sql.DB
}

// NewTicketRepo returns a new TicketRepo bound to the given database.
func NewTicketRepo(db *sql.DB) *TicketRepo { return &TicketRepo{db: db} }

const ticketCols = `id, event_id, owner_id, original_purchaser_id, group_purchase_id, group_type,
 table_name, seat_label, ticket_type, status, amount_cents, payment_method, payment_reference,
 claim_code, is_claimable, claimed_at, backup_code, checked_in_at, checked_in_by, check_in_method, purchased_at`

func scanTicket(s interface{ Scan(...interface{}) error }) (model.Ticket, error) {
    var t model.Ticket
    var checkedInBy sql.NullInt64
    var checkInMethod sql.NullString
    err := s.Scan(&t.ID, &t.EventID, &t.OwnerID, &t.OriginalPurchaserID, &t.GroupPurchaseID, &t.GroupType,
        &t.TableName, &t.SeatLabel, &t.TicketType, &t.Status, &t.AmountCents, &t.PaymentMethod, &t.PaymentReference,
        &t.ClaimCode, &t.IsClaimable, &t.ClaimedAt, &t.BackupCode, &t.CheckedInAt, &checkedInBy, &checkInMethod, &t.PurchasedAt)
    if err != nil {
        return model.Ticket{}, err
    }
    if checkedInBy.Valid {
        t.CheckedInBy = uint64(checkedInBy.Int64)
    }
    if checkInMethod.Valid {
        t.CheckInMethod = checkInMethod.String
    }
    return t, nil
}

// CreateTx inserts one ticket within the given transaction and populates
// its generated ID.  A backup code collision surfaces as ErrDuplicate so
// the caller can regenerate and retry.
func (r *TicketRepo) CreateTx(ctx context.Context, tx *sql.Tx, t *model.Ticket) error {
    const q = `INSERT INTO tickets (event_id, owner_id, original_purchaser_id, group_purchase_id, group_type,
 table_name, seat_label, ticket_type, status, amount_cents, payment_method, payment_reference,
 claim_code, is_claimable, backup_code, purchased_at)
 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
    res, err := tx.ExecContext(ctx, q, t.EventID, t.OwnerID, t.OriginalPurchaserID, t.GroupPurchaseID, t.GroupType,
        t.TableName, t.SeatLabel, t.TicketType, t.Status, t.AmountCents, t.PaymentMethod, t.PaymentReference,
        t.ClaimCode, t.IsClaimable, t.BackupCode, t.PurchasedAt.UTC())
    if err != nil {
        if isDuplicateKey(err) {
            return ErrDuplicate
        }
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    t.ID = uint64(id)
    return nil
}

// GetByID fetches a single ticket.
func (r *TicketRepo) GetByID(ctx context.Context, id uint64) (model.Ticket, error) {
    const q = `SELECT ` + ticketCols + ` FROM tickets WHERE id = ? LIMIT 1`
    return scanTicket(r.db.QueryRowContext(ctx, q, id))
}

// GetByIDTx is GetByID inside an existing transaction with a row lock,
// serializing concurrent claims and check-ins of the same ticket.
func (r *TicketRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Ticket, error) {
    const q = `SELECT ` + ticketCols + ` FROM tickets WHERE id = ? LIMIT 1 FOR UPDATE`
    return scanTicket(tx.QueryRowContext(ctx, q, id))
}

// GetByBackupCodeTx locks and returns the ticket matching a normalized
// backup code.  The unique index guarantees at most one match.
func (r *TicketRepo) GetByBackupCodeTx(ctx context.Context, tx *sql.Tx, code string) (model.Ticket, error) {
    const q = `SELECT ` + ticketCols + ` FROM tickets WHERE backup_code = ? LIMIT 1 FOR UPDATE`
    return scanTicket(tx.QueryRowContext(ctx, q, code))
}

// TicketWithEvent pairs a ticket with the event fields list and detail
// endpoints render alongside it.
type TicketWithEvent struct {
    Ticket           model.Ticket
    EventName        string
    EventLocation    string
    EventDate        time.Time
    EventIsCancelled bool
}

// ListByOwner returns the user's tickets joined with their events,
// soonest event first.
func (r *TicketRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]TicketWithEvent, error) {
    const q = `SELECT t.id, t.event_id, t.owner_id, t.original_purchaser_id, t.group_purchase_id, t.group_type,
 t.table_name, t.seat_label, t.ticket_type, t.status, t.amount_cents, t.payment_method, t.payment_reference,
 t.claim_code, t.is_claimable, t.claimed_at, t.backup_code, t.checked_in_at, t.checked_in_by, t.check_in_method, t.purchased_at,
 e.name, e.location, e.event_date, e.is_cancelled
 FROM tickets t JOIN events e ON e.id = t.event_id
 WHERE t.owner_id = ? ORDER BY e.event_date ASC, t.id ASC`
    rows, err := r.db.QueryContext(ctx, q, ownerID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := []TicketWithEvent{}
    for rows.Next() {
        var it TicketWithEvent
        t := &it.Ticket
        var checkedInBy sql.NullInt64
        var checkInMethod sql.NullString
        if err := rows.Scan(&t.ID, &t.EventID, &t.OwnerID, &t.OriginalPurchaserID, &t.GroupPurchaseID, &t.GroupType,
            &t.TableName, &t.SeatLabel, &t.TicketType, &t.Status, &t.AmountCents, &t.PaymentMethod, &t.PaymentReference,
            &t.ClaimCode, &t.IsClaimable, &t.ClaimedAt, &t.BackupCode, &t.CheckedInAt, &checkedInBy, &checkInMethod, &t.PurchasedAt,
            &it.EventName, &it.EventLocation, &it.EventDate, &it.EventIsCancelled); err != nil {
            return nil, err
        }
        if checkedInBy.Valid {
            t.CheckedInBy = uint64(checkedInBy.Int64)
        }
        if checkInMethod.Valid {
            t.CheckInMethod = checkInMethod.String
        }
        out = append(out, it)
    }
    return out, rows.Err()
}

// ListByGroup returns the tickets of one table sale in seat order.
func (r *TicketRepo) ListByGroup(ctx context.Context, groupID string) ([]model.Ticket, error) {
    const q = `SELECT ` + ticketCols + ` FROM tickets WHERE group_purchase_id = ? ORDER BY id ASC`
    rows, err := r.db.QueryContext(ctx, q, groupID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := []model.Ticket{}
    for rows.Next() {
        t, err := scanTicket(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, t)
    }
    return out, rows.Err()
}

// TransferTx moves ownership to newOwner and closes the claim window.
// The claim audit row is inserted separately by ClaimRepo in the same
// transaction.
func (r *TicketRepo) TransferTx(ctx context.Context, tx *sql.Tx, ticketID, newOwner uint64, now time.Time) error {
    const q = `UPDATE tickets SET owner_id = ?, is_claimable = 0, claimed_at = ? WHERE id = ?`
    _, err := tx.ExecContext(ctx, q, newOwner, now.UTC(), ticketID)
    return err
}

// CheckInTx marks the ticket used and records who admitted it, when and
// how.  Callers verify eligibility before invoking this.
func (r *TicketRepo) CheckInTx(ctx context.Context, tx *sql.Tx, ticketID, staffID uint64, method string, now time.Time) error {
    const q = `UPDATE tickets SET status = ?, checked_in_at = ?, checked_in_by = ?, check_in_method = ? WHERE id = ?`
    _, err := tx.ExecContext(ctx, q, model.TicketStatusUsed, now.UTC(), staffID, method, ticketID)
    return err
}

// TypeCount is one row of the per-ticket-type check-in breakdown.
type TypeCount struct {
    TicketType string `json:"ticket_type"`
    Total      int    `json:"total"`
    CheckedIn  int    `json:"checked_in"`
}

// RecentCheckIn is one entry of the live check-in feed shown to
// organizers during the event.
type RecentCheckIn struct {
    TicketID    uint64    `json:"ticket_id"`
    SeatLabel   string    `json:"seat_label"`
    TableName   string    `json:"table_name"`
    TicketType  string    `json:"ticket_type"`
    CheckedInAt time.Time `json:"checked_in_at"`
    Method      string    `json:"method"`
}

// CheckinStats aggregates admission progress for one event: overall
// totals, a per-type breakdown and the most recent admissions.
func (r *TicketRepo) CheckinStats(ctx context.Context, eventID uint64) (total, checkedIn int, byType []TypeCount, recent []RecentCheckIn, err error) {
    const agg = `SELECT ticket_type, COUNT(*), SUM(CASE WHEN checked_in_at IS NOT NULL THEN 1 ELSE 0 END)
 FROM tickets WHERE event_id = ? GROUP BY ticket_type`
    rows, err := r.db.QueryContext(ctx, agg, eventID)
    if err != nil {
        return 0, 0, nil, nil, err
    }
    defer rows.Close()
    byType = []TypeCount{}
    for rows.Next() {
        var tc TypeCount
        if err := rows.Scan(&tc.TicketType, &tc.Total, &tc.CheckedIn); err != nil {
            return 0, 0, nil, nil, err
        }
        total += tc.Total
        checkedIn += tc.CheckedIn
        byType = append(byType, tc)
    }
    if err := rows.Err(); err != nil {
        return 0, 0, nil, nil, err
    }

    const rec = `SELECT id, seat_label, table_name, ticket_type, checked_in_at, check_in_method
 FROM tickets WHERE event_id = ? AND checked_in_at IS NOT NULL ORDER BY checked_in_at DESC LIMIT 20`
    rrows, err := r.db.QueryContext(ctx, rec, eventID)
    if err != nil {
        return 0, 0, nil, nil, err
    }
    defer rrows.Close()
    recent = []RecentCheckIn{}
    for rrows.Next() {
        var rc RecentCheckIn
        var method sql.NullString
        if err := rrows.Scan(&rc.TicketID, &rc.SeatLabel, &rc.TableName, &rc.TicketType, &rc.CheckedInAt, &method); err != nil {
            return 0, 0, nil, nil, err
        }
        rc.Method = method.String
        recent = append(recent, rc)
    }
    return total, checkedIn, byType, recent, rrows.Err()
}

// TableSummary is the organizer's view of one sold table: how many seats
// exist, how many have been distributed to other people, how many are in.
type TableSummary struct {
    GroupPurchaseID string `json:"group_purchase_id"`
    TableName       string `json:"table_name"`
    Seats           int    `json:"seats"`
    Distributed     int    `json:"distributed"`
    CheckedIn       int    `json:"checked_in"`
}

// ListTablesByEvent summarizes the table sales of an event.  A seat
// counts as distributed once its owner differs from the original
// purchaser.
func (r *TicketRepo) ListTablesByEvent(ctx context.Context, eventID uint64) ([]TableSummary, error) {
    const q = `SELECT group_purchase_id, table_name, COUNT(*),
 SUM(CASE WHEN owner_id <> original_purchaser_id THEN 1 ELSE 0 END),
 SUM(CASE WHEN checked_in_at IS NOT NULL THEN 1 ELSE 0 END)
 FROM tickets WHERE event_id = ? AND group_type = 'table'
 GROUP BY group_purchase_id, table_name ORDER BY MIN(id) ASC`
    rows, err := r.db.QueryContext(ctx, q, eventID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := []TableSummary{}
    for rows.Next() {
        var ts TableSummary
        if err := rows.Scan(&ts.GroupPurchaseID, &ts.TableName, &ts.Seats, &ts.Distributed, &ts.CheckedIn); err != nil {
            return nil, err
        }
        out = append(out, ts)
    }
    return out, rows.Err()
}
