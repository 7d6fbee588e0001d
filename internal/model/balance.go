package model

import "time"

// Payout request status values.
const (
    PayoutStatusPending    = "pending"
    PayoutStatusProcessing = "processing"
    PayoutStatusCompleted  = "completed"
    PayoutStatusFailed     = "failed"
)

// SellerBalance is the single running-balance row per seller in the
// `seller_balances` table.  Rows are created lazily on the first
// transaction and mutated additively afterwards; they are never
// deleted or recreated.  Balances never go below zero.
//
// Fields:
//  ID                 – primary key identifier.
//  UserID             – the seller (unique).
//  AvailableCents     – settled funds available for payout.
//  PendingCents       – funds awaiting provider confirmation.
//  TotalEarningsCents – lifetime earnings (never decremented by refunds).
//  TotalPayoutsCents  – lifetime amount paid out.
//  LastPayoutAt       – timestamp of the most recent payout (nullable).
//  UpdatedAt          – last update timestamp.
type SellerBalance struct {
    ID                 uint64     // seller_balances.id
    UserID             uint64     // seller_balances.user_id
    AvailableCents     int64      // seller_balances.available_cents
    PendingCents       int64      // seller_balances.pending_cents
    TotalEarningsCents int64      // seller_balances.total_earnings_cents
    TotalPayoutsCents  int64      // seller_balances.total_payouts_cents
    LastPayoutAt       *time.Time // seller_balances.last_payout_at (nullable)
    UpdatedAt          time.Time  // seller_balances.updated_at
}

// PayoutRequest models a withdrawal request in the `payout_requests`
// table.  The amount is deducted from the seller's available balance
// when the request is created.
//
// Fields:
//  ID            – public UUID of the request.
//  SellerID      – requesting seller.
//  AmountCents   – requested amount in cents.
//  Status        – pending | processing | completed | failed.
//  AccountName   – bank account holder name.
//  AccountNumber – bank account number.
//  SortCode      – bank sort code.
//  RequestedAt   – creation timestamp.
//  ProcessedAt   – when the payout finished (nullable).
type PayoutRequest struct {
    ID            string     // payout_requests.id (uuid)
    SellerID      uint64     // payout_requests.seller_id
    AmountCents   int64      // payout_requests.amount_cents
    Status        string     // payout_requests.status
    AccountName   string     // payout_requests.account_name
    AccountNumber string     // payout_requests.account_number
    SortCode      string     // payout_requests.sort_code
    RequestedAt   time.Time  // payout_requests.requested_at
    ProcessedAt   *time.Time // payout_requests.processed_at (nullable)
}
