package repository

import (
    "context"
    "database/sql"
    "errors"
    "time"

    "github.com/stepperslife/ticketing/internal/model"
)

// BalanceRepo persists seller balances and payout requests.  Balance
// rows are created lazily and only ever updated; the ledger package owns
// the arithmetic, this repo owns the locking and persistence.
type BalanceRepo struct {
    db *sql.DB
}

// NewBalanceRepo returns a new BalanceRepo bound to the given database.
func NewBalanceRepo(db *sql.DB) *BalanceRepo { return &BalanceRepo{db: db} }

const balanceCols = `id, user_id, available_cents, pending_cents, total_earnings_cents, total_payouts_cents, last_payout_at, updated_at`

// Get returns the seller's balance, or a zero-valued balance when no row
// exists yet.  Sellers without transactions simply have nothing banked.
func (r *BalanceRepo) Get(ctx context.Context, userID uint64) (model.SellerBalance, error) {
    const q = `SELECT ` + balanceCols + ` FROM seller_balances WHERE user_id = ? LIMIT 1`
    var b model.SellerBalance
    err := r.db.QueryRowContext(ctx, q, userID).Scan(&b.ID, &b.UserID, &b.AvailableCents, &b.PendingCents,
        &b.TotalEarningsCents, &b.TotalPayoutsCents, &b.LastPayoutAt, &b.UpdatedAt)
    if errors.Is(err, sql.ErrNoRows) {
        return model.SellerBalance{UserID: userID}, nil
    }
    return b, err
}

// GetForUpdateTx locks and returns the seller's balance row, inserting a
// zero row first when none exists.  Every balance mutation goes through
// this so concurrent webhooks and payout requests serialize per seller.
func (r *BalanceRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, userID uint64) (model.SellerBalance, error) {
    const q = `SELECT ` + balanceCols + ` FROM seller_balances WHERE user_id = ? LIMIT 1 FOR UPDATE`
    var b model.SellerBalance
    err := tx.QueryRowContext(ctx, q, userID).Scan(&b.ID, &b.UserID, &b.AvailableCents, &b.PendingCents,
        &b.TotalEarningsCents, &b.TotalPayoutsCents, &b.LastPayoutAt, &b.UpdatedAt)
    if errors.Is(err, sql.ErrNoRows) {
        res, ierr := tx.ExecContext(ctx, `INSERT INTO seller_balances (user_id) VALUES (?)`, userID)
        if ierr != nil {
            return model.SellerBalance{}, ierr
        }
        id, ierr := res.LastInsertId()
        if ierr != nil {
            return model.SellerBalance{}, ierr
        }
        return model.SellerBalance{ID: uint64(id), UserID: userID}, nil
    }
    return b, err
}

// SaveTx writes a mutated balance back inside the same transaction that
// locked it.
func (r *BalanceRepo) SaveTx(ctx context.Context, tx *sql.Tx, b *model.SellerBalance) error {
    const q = `UPDATE seller_balances SET available_cents = ?, pending_cents = ?, total_earnings_cents = ?,
 total_payouts_cents = ?, last_payout_at = ?, updated_at = ? WHERE id = ?`
    _, err := tx.ExecContext(ctx, q, b.AvailableCents, b.PendingCents, b.TotalEarningsCents,
        b.TotalPayoutsCents, b.LastPayoutAt, time.Now().UTC(), b.ID)
    return err
}

// CreatePayoutTx inserts a payout request inside the transaction that
// deducted its amount from the available balance.
func (r *BalanceRepo) CreatePayoutTx(ctx context.Context, tx *sql.Tx, p *model.PayoutRequest) error {
    const q = `INSERT INTO payout_requests (id, seller_id, amount_cents, status, account_name, account_number, sort_code, requested_at)
 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
    _, err := tx.ExecContext(ctx, q, p.ID, p.SellerID, p.AmountCents, p.Status,
        p.AccountName, p.AccountNumber, p.SortCode, p.RequestedAt.UTC())
    return err
}

// ListPayoutsBySeller returns the seller's payout requests, newest first.
func (r *BalanceRepo) ListPayoutsBySeller(ctx context.Context, sellerID uint64) ([]model.PayoutRequest, error) {
    const q = `SELECT id, seller_id, amount_cents, status, account_name, account_number, sort_code, requested_at, processed_at
 FROM payout_requests WHERE seller_id = ? ORDER BY requested_at DESC`
    rows, err := r.db.QueryContext(ctx, q, sellerID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := []model.PayoutRequest{}
    for rows.Next() {
        var p model.PayoutRequest
        if err := rows.Scan(&p.ID, &p.SellerID, &p.AmountCents, &p.Status, &p.AccountName,
            &p.AccountNumber, &p.SortCode, &p.RequestedAt, &p.ProcessedAt); err != nil {
            return nil, err
        }
        out = append(out, p)
    }
    return out, rows.Err()
}
