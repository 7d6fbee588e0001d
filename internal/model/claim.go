package model

import "time"

// TicketClaim is an append-only audit record of a seat transfer in the
// `ticket_claims` table.  A row is inserted when a claim token is
// redeemed and is never updated afterwards.
//
// Fields:
//  ID         – primary key identifier.
//  TicketID   – the transferred ticket.
//  FromUserID – owner before the transfer.
//  ToUserID   – owner after the transfer.
//  Status     – always "claimed" today; kept for future revocations.
//  CreatedAt  – when the claim was recorded.
//  ClaimedAt  – when the transfer took effect (same as CreatedAt).
//  ExpiresAt  – expiry of the claim token that was redeemed.
type TicketClaim struct {
    ID         uint64    // ticket_claims.id
    TicketID   uint64    // ticket_claims.ticket_id
    FromUserID uint64    // ticket_claims.from_user_id
    ToUserID   uint64    // ticket_claims.to_user_id
    Status     string    // ticket_claims.status
    CreatedAt  time.Time // ticket_claims.created_at
    ClaimedAt  time.Time // ticket_claims.claimed_at
    ExpiresAt  time.Time // ticket_claims.expires_at
}
