package repository

import (
    "context"
    "database/sql"
    "time"

    "github.com/stepperslife/ticketing/internal/model"
)

// TransactionRepo persists platform transactions.  Fee fields are
// computed by the ledger package before insertion and are immutable
// afterwards; only status and the refund columns change.
type TransactionRepo struct {
    db *sql.DB
}

// NewTransactionRepo returns a new TransactionRepo bound to the given database.
func NewTransactionRepo(db *sql.DB) *TransactionRepo { return &TransactionRepo{db: db} }

const txCols = `id, event_id, event_name, ticket_id, seller_id, buyer_id, buyer_email,
 amount_cents, ticket_count, platform_fee_cents, seller_payout_cents, status,
 payment_provider, payment_id, refund_amount_cents, refunded_at, created_at`

func scanTransaction(s interface{ Scan(...interface{}) error }) (model.PlatformTransaction, error) {
    var t model.PlatformTransaction
    var refund sql.NullInt64
    err := s.Scan(&t.ID, &t.EventID, &t.EventName, &t.TicketID, &t.SellerID, &t.BuyerID, &t.BuyerEmail,
        &t.AmountCents, &t.TicketCount, &t.PlatformFeeCents, &t.SellerPayoutCents, &t.Status,
        &t.PaymentProvider, &t.PaymentID, &refund, &t.RefundedAt, &t.CreatedAt)
    if err != nil {
        return model.PlatformTransaction{}, err
    }
    if refund.Valid {
        t.RefundAmountCents = refund.Int64
    }
    return t, nil
}

// CreateTx inserts a transaction within the given database transaction
// and populates the generated ID.  A duplicate payment_id surfaces as
// ErrConflict because the same external payment must never be recorded
// twice.
func (r *TransactionRepo) CreateTx(ctx context.Context, tx *sql.Tx, t *model.PlatformTransaction) error {
    const q = `INSERT INTO platform_transactions (event_id, event_name, ticket_id, seller_id, buyer_id, buyer_email,
 amount_cents, ticket_count, platform_fee_cents, seller_payout_cents, status, payment_provider, payment_id)
 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
    res, err := tx.ExecContext(ctx, q, t.EventID, t.EventName, t.TicketID, t.SellerID, t.BuyerID, t.BuyerEmail,
        t.AmountCents, t.TicketCount, t.PlatformFeeCents, t.SellerPayoutCents, t.Status, t.PaymentProvider, t.PaymentID)
    if err != nil {
        if isDuplicateKey(err) {
            return ErrConflict
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

// GetByPaymentIDTx locks and returns the transaction for an external
// payment id.  Status transitions read through this so two concurrent
// webhooks serialize.
func (r *TransactionRepo) GetByPaymentIDTx(ctx context.Context, tx *sql.Tx, paymentID string) (model.PlatformTransaction, error) {
    const q = `SELECT ` + txCols + ` FROM platform_transactions WHERE payment_id = ? LIMIT 1 FOR UPDATE`
    return scanTransaction(tx.QueryRowContext(ctx, q, paymentID))
}

// UpdateStatusTx applies a status transition.  For refunds the gross
// refund amount and timestamp are recorded alongside.
func (r *TransactionRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, status string, refundCents int64, refundedAt *time.Time) error {
    if status == model.TxStatusRefunded {
        const q = `UPDATE platform_transactions SET status = ?, refund_amount_cents = ?, refunded_at = ? WHERE id = ?`
        _, err := tx.ExecContext(ctx, q, status, refundCents, refundedAt, id)
        return err
    }
    const q = `UPDATE platform_transactions SET status = ? WHERE id = ?`
    _, err := tx.ExecContext(ctx, q, status, id)
    return err
}

// ListBySeller returns the seller's transactions, newest first.  status
// filters when non-empty; limit caps the result when positive.
func (r *TransactionRepo) ListBySeller(ctx context.Context, sellerID uint64, status string, limit int) ([]model.PlatformTransaction, error) {
    q := `SELECT ` + txCols + ` FROM platform_transactions WHERE seller_id = ?`
    args := []interface{}{sellerID}
    if status != "" {
        q += ` AND status = ?`
        args = append(args, status)
    }
    q += ` ORDER BY created_at DESC, id DESC`
    if limit > 0 {
        q += ` LIMIT ?`
        args = append(args, limit)
    }
    rows, err := r.db.QueryContext(ctx, q, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := []model.PlatformTransaction{}
    for rows.Next() {
        t, err := scanTransaction(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, t)
    }
    return out, rows.Err()
}

// ProviderBreakdown is one row of the per-provider analytics summary.
type ProviderBreakdown struct {
    Provider         string `json:"provider"`
    TransactionCount int    `json:"transaction_count"`
    AmountCents      int64  `json:"amount_cents"`
    PayoutCents      int64  `json:"payout_cents"`
}

// SellerAnalytics aggregates a seller's completed and pending volume.
type SellerAnalytics struct {
    TransactionCount int                 `json:"transaction_count"`
    TicketsSold      int                 `json:"tickets_sold"`
    GrossCents       int64               `json:"gross_cents"`
    PlatformFeeCents int64               `json:"platform_fee_cents"`
    PayoutCents      int64               `json:"payout_cents"`
    RefundedCents    int64               `json:"refunded_cents"`
    Providers        []ProviderBreakdown `json:"providers"`
}

// AnalyticsBySeller computes lifetime totals and a provider breakdown
// over every non-refunded transaction of the seller, plus the refunded
// gross as its own figure.
func (r *TransactionRepo) AnalyticsBySeller(ctx context.Context, sellerID uint64) (SellerAnalytics, error) {
    var a SellerAnalytics
    const totals = `SELECT COUNT(*), COALESCE(SUM(ticket_count),0), COALESCE(SUM(amount_cents),0),
 COALESCE(SUM(platform_fee_cents),0), COALESCE(SUM(seller_payout_cents),0)
 FROM platform_transactions WHERE seller_id = ? AND status <> 'refunded'`
    err := r.db.QueryRowContext(ctx, totals, sellerID).Scan(
        &a.TransactionCount, &a.TicketsSold, &a.GrossCents, &a.PlatformFeeCents, &a.PayoutCents)
    if err != nil {
        return SellerAnalytics{}, err
    }
    const refunded = `SELECT COALESCE(SUM(refund_amount_cents),0) FROM platform_transactions
 WHERE seller_id = ? AND status = 'refunded'`
    if err := r.db.QueryRowContext(ctx, refunded, sellerID).Scan(&a.RefundedCents); err != nil {
        return SellerAnalytics{}, err
    }
    const byProvider = `SELECT payment_provider, COUNT(*), COALESCE(SUM(amount_cents),0), COALESCE(SUM(seller_payout_cents),0)
 FROM platform_transactions WHERE seller_id = ? AND status <> 'refunded'
 GROUP BY payment_provider ORDER BY payment_provider ASC`
    rows, err := r.db.QueryContext(ctx, byProvider, sellerID)
    if err != nil {
        return SellerAnalytics{}, err
    }
    defer rows.Close()
    a.Providers = []ProviderBreakdown{}
    for rows.Next() {
        var pb ProviderBreakdown
        if err := rows.Scan(&pb.Provider, &pb.TransactionCount, &pb.AmountCents, &pb.PayoutCents); err != nil {
            return SellerAnalytics{}, err
        }
        a.Providers = append(a.Providers, pb)
    }
    return a, rows.Err()
}
