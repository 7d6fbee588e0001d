// Package queue defines message payloads exchanged over the message broker.
package queue

// Queue names used on the broker.  Each event type gets its own durable
// queue so downstream consumers can subscribe selectively.
const (
    TicketsIssuedQueue       = "ticket.issued"
    TicketClaimedQueue       = "ticket.claimed"
    TicketCheckedInQueue     = "ticket.checked_in"
    TransactionRecordedQueue = "transaction.recorded"
)

// TicketsIssuedEvent is published once per table sale, after every seat
// of the group has been created.  It contains enough information for
// downstream consumers to log, notify, or trigger analytics without
// querying the primary database.
type TicketsIssuedEvent struct {
    GroupPurchaseID  string `json:"group_purchase_id"`
    EventID          uint64 `json:"event_id"`
    EventName        string `json:"event_name"`
    TableName        string `json:"table_name"`
    SeatCount        int    `json:"seat_count"`
    BuyerID          uint64 `json:"buyer_id"`
    SellerID         uint64 `json:"seller_id"`
    TotalAmountCents int64  `json:"total_amount_cents"`
    Provider         string `json:"provider"`
    IssuedAt         string `json:"issued_at"`
}

// TicketClaimedEvent is published when a seat changes hands through a
// claim link.
type TicketClaimedEvent struct {
    TicketID   uint64 `json:"ticket_id"`
    EventID    uint64 `json:"event_id"`
    EventName  string `json:"event_name"`
    SeatLabel  string `json:"seat_label"`
    FromUserID uint64 `json:"from_user_id"`
    ToUserID   uint64 `json:"to_user_id"`
    ClaimedAt  string `json:"claimed_at"`
}

// TicketCheckedInEvent is published when a ticket is admitted at the
// door.
type TicketCheckedInEvent struct {
    TicketID    uint64 `json:"ticket_id"`
    EventID     uint64 `json:"event_id"`
    EventName   string `json:"event_name"`
    SeatLabel   string `json:"seat_label"`
    TicketType  string `json:"ticket_type"`
    Method      string `json:"method"`
    StaffID     uint64 `json:"staff_id"`
    CheckedInAt string `json:"checked_in_at"`
}

// TransactionRecordedEvent is published when a platform transaction is
// recorded or changes status.
type TransactionRecordedEvent struct {
    PaymentID         string `json:"payment_id"`
    EventID           uint64 `json:"event_id"`
    EventName         string `json:"event_name"`
    SellerID          uint64 `json:"seller_id"`
    AmountCents       int64  `json:"amount_cents"`
    TicketCount       int    `json:"ticket_count"`
    PlatformFeeCents  int64  `json:"platform_fee_cents"`
    SellerPayoutCents int64  `json:"seller_payout_cents"`
    Provider          string `json:"provider"`
    Status            string `json:"status"`
    RecordedAt        string `json:"recorded_at"`
}
