package model

import "time"

// Transaction status values.  A transaction is recorded as pending at
// payment time, becomes completed once the provider confirms the
// charge, and may transition to refunded from either state.
const (
    TxStatusPending   = "pending"
    TxStatusCompleted = "completed"
    TxStatusRefunded  = "refunded"
)

// Payment providers supported by the fee schedule.
const (
    ProviderStripe = "stripe"
    ProviderSquare = "square"
    ProviderPayPal = "paypal"
    ProviderZelle  = "zelle"
)

// PlatformTransaction represents one payment in the
// `platform_transactions` table.  Fee fields are computed once at
// record time by the ledger package and never recomputed.
//
// Fields:
//  ID                – primary key identifier.
//  EventID           – event the payment relates to.
//  EventName         – denormalized event name for reporting.
//  TicketID          – first ticket of the purchase.
//  SellerID          – organizer receiving the payout.
//  BuyerID           – purchasing user.
//  BuyerEmail        – purchasing email for receipts.
//  AmountCents       – gross amount in cents.
//  TicketCount       – number of tickets covered by this payment.
//  PlatformFeeCents  – ticket_count × per-ticket platform fee.
//  SellerPayoutCents – amount − platform fee − provider fee.
//  Status            – pending | completed | refunded.
//  PaymentProvider   – stripe | square | paypal | zelle.
//  PaymentID         – unique external payment identifier.
//  RefundAmountCents – gross amount refunded (nullable semantics via 0).
//  RefundedAt        – when the refund was recorded (nullable).
//  CreatedAt         – creation timestamp.
type PlatformTransaction struct {
    ID                uint64     // platform_transactions.id
    EventID           uint64     // platform_transactions.event_id
    EventName         string     // platform_transactions.event_name
    TicketID          uint64     // platform_transactions.ticket_id
    SellerID          uint64     // platform_transactions.seller_id
    BuyerID           uint64     // platform_transactions.buyer_id
    BuyerEmail        string     // platform_transactions.buyer_email
    AmountCents       int64      // platform_transactions.amount_cents
    TicketCount       int        // platform_transactions.ticket_count
    PlatformFeeCents  int64      // platform_transactions.platform_fee_cents
    SellerPayoutCents int64      // platform_transactions.seller_payout_cents
    Status            string     // platform_transactions.status
    PaymentProvider   string     // platform_transactions.payment_provider
    PaymentID         string     // platform_transactions.payment_id
    RefundAmountCents int64      // platform_transactions.refund_amount_cents
    RefundedAt        *time.Time // platform_transactions.refunded_at (nullable)
    CreatedAt         time.Time  // platform_transactions.created_at
}
