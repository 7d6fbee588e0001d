package model

import "time"

// Ticket status values.  A ticket starts out valid, becomes used at
// check-in, and may end up refunded or cancelled through the payment
// flow.  used, refunded and cancelled are terminal.
const (
    TicketStatusValid     = "valid"
    TicketStatusUsed      = "used"
    TicketStatusRefunded  = "refunded"
    TicketStatusCancelled = "cancelled"
)

// Check-in methods recorded alongside a successful check-in.
const (
    CheckInMethodQR     = "qr"
    CheckInMethodManual = "manual"
    CheckInMethodBackup = "backup_code"
)

// Ticket types sold on the platform.
const (
    TicketTypeGA        = "GA"
    TicketTypeVIP       = "VIP"
    TicketTypeEarlyBird = "EARLY_BIRD"
)

// Ticket represents one admission unit in the `tickets` table.  Tickets
// created as part of a table sale share a GroupPurchaseID and carry a
// claim code so individual seats can be redistributed via claim links.
// OwnerID and OriginalPurchaserID diverge only after a successful
// claim; once they diverge IsClaimable must be false.
//
// Fields:
//  ID                  – primary key identifier.
//  EventID             – event the ticket admits to.
//  OwnerID             – current owner of the ticket.
//  OriginalPurchaserID – user who originally paid for the ticket.
//  GroupPurchaseID     – links tickets sold together (empty for singles).
//  GroupType           – "table" for table sales, empty otherwise.
//  TableName           – label of the purchased table, if any.
//  SeatLabel           – label of the seat within the table ("Seat 3").
//  TicketType          – GA, VIP or EARLY_BIRD.
//  Status              – valid | used | refunded | cancelled.
//  AmountCents         – price paid for this ticket in cents.
//  PaymentMethod       – provider used for the purchase.
//  PaymentReference    – external payment identifier.
//  ClaimCode           – random code embedded in the signed claim token;
//                        cleared semantics are carried by IsClaimable.
//  IsClaimable         – whether the seat can still be transferred.
//  ClaimedAt           – when the seat was claimed (nullable).
//  BackupCode          – unique human-enterable fallback to the QR code.
//  CheckedInAt         – when the ticket was checked in (nullable).
//  CheckedInBy         – staff user who performed the check-in.
//  CheckInMethod       – qr | manual | backup_code.
//  PurchasedAt         – purchase timestamp.
type Ticket struct {
    ID                  uint64     // tickets.id
    EventID             uint64     // tickets.event_id
    OwnerID             uint64     // tickets.owner_id
    OriginalPurchaserID uint64     // tickets.original_purchaser_id
    GroupPurchaseID     string     // tickets.group_purchase_id
    GroupType           string     // tickets.group_type
    TableName           string     // tickets.table_name
    SeatLabel           string     // tickets.seat_label
    TicketType          string     // tickets.ticket_type
    Status              string     // tickets.status
    AmountCents         int64      // tickets.amount_cents
    PaymentMethod       string     // tickets.payment_method
    PaymentReference    string     // tickets.payment_reference
    ClaimCode           string     // tickets.claim_code
    IsClaimable         bool       // tickets.is_claimable
    ClaimedAt           *time.Time // tickets.claimed_at (nullable)
    BackupCode          string     // tickets.backup_code
    CheckedInAt         *time.Time // tickets.checked_in_at (nullable)
    CheckedInBy         uint64     // tickets.checked_in_by (0 when not checked in)
    CheckInMethod       string     // tickets.check_in_method
    PurchasedAt         time.Time  // tickets.purchased_at
}
